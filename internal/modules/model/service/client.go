package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"swing_bot/internal/modules/config"
)

// Client ходит в сайдкар скоринга за p_up последнего бара.
// Обучение и фичи живут там; бот потребляет только вероятность.
type Client struct {
	http     *http.Client
	scoreURL string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:     &http.Client{Timeout: 5 * time.Second},
		scoreURL: cfg.Model.ScoreURL,
	}
}

// PredictPUp возвращает NaN без ошибки, когда скорер не сконфигурирован или
// обучен под другой интервал: для гейта это штатная деградация в нейтраль.
func (c *Client) PredictPUp(ctx context.Context, interval string) (float64, error) {
	if c.scoreURL == "" {
		return math.NaN(), nil
	}

	q := url.Values{}
	q.Set("interval", interval)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scoreURL+"?"+q.Encode(), nil)
	if err != nil {
		return math.NaN(), fmt.Errorf("PredictPUp new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return math.NaN(), fmt.Errorf("PredictPUp do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return math.NaN(), fmt.Errorf("PredictPUp http %d: %s", resp.StatusCode, string(data))
	}

	var payload struct {
		PUp      *float64 `json:"p_up"`
		Interval string   `json:"interval"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return math.NaN(), fmt.Errorf("PredictPUp decode: %w; body=%s", err, string(data))
	}

	if payload.PUp == nil || payload.Interval != interval {
		return math.NaN(), nil
	}
	return *payload.PUp, nil
}
