package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"swing_bot/internal/modules/config"
)

// Client — тонкий REST-клиент брокера. Только live-аккаунт:
// paper-базу сюда не подставляем ни при каких условиях.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   cfg.Broker.BaseURL,
		apiKey:    cfg.Broker.APIKey,
		apiSecret: cfg.Broker.APISecret,
	}
}

// do выполняет подписанный запрос; body != nil сериализуется sonic-ом.
func (c *Client) do(ctx context.Context, op, method, requestPath string, body any) ([]byte, int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "alpaca."+op)
	defer span.Finish()

	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%s marshal: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%s new request: %w", op, err)
	}

	req.Header.Set("APCA-API-KEY-ID", c.apiKey)
	req.Header.Set("APCA-API-SECRET-KEY", c.apiSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ext.Error.Set(span, true)
		return nil, 0, fmt.Errorf("%s do: %w", op, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	span.SetTag("http.status_code", resp.StatusCode)

	return data, resp.StatusCode, nil
}
