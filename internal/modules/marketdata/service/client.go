package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"swing_bot/internal/models"
	"swing_bot/internal/modules/config"
)

// quoteTTL — свежесть кэша из websocket-стрима; старше — ходим в REST.
const quoteTTL = 5 * time.Second

type Client struct {
	cfg *config.Config

	http     *http.Client
	wsDialer *websocket.Dialer

	baseURL   string
	streamURL string
	apiKey    string
	apiSecret string

	loc *time.Location

	mu    sync.RWMutex
	cache map[string]models.Quote
}

func NewClient(cfg *config.Config) (*Client, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("marketdata: load tz: %w", err)
	}
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: 10 * time.Second},
		wsDialer:  &websocket.Dialer{},
		baseURL:   cfg.MarketData.BaseURL,
		streamURL: cfg.MarketData.StreamURL,
		apiKey:    cfg.Broker.APIKey,
		apiSecret: cfg.Broker.APISecret,
		loc:       loc,
		cache:     make(map[string]models.Quote),
	}, nil
}

// GetQuote отдаёт свежий срез из стрима, иначе добирает REST-ом.
func (c *Client) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	c.mu.RLock()
	q, ok := c.cache[symbol]
	c.mu.RUnlock()
	if ok && time.Since(q.TS) < quoteTTL {
		return q, nil
	}
	return c.restQuote(ctx, symbol)
}

func (c *Client) restQuote(ctx context.Context, symbol string) (models.Quote, error) {
	var quoteResp struct {
		Quote struct {
			Bid float64   `json:"bp"`
			Ask float64   `json:"ap"`
			TS  time.Time `json:"t"`
		} `json:"quote"`
	}
	if err := c.getJSON(ctx, "/v2/stocks/"+symbol+"/quotes/latest", &quoteResp); err != nil {
		return models.Quote{}, fmt.Errorf("GetQuote %s: %w", symbol, err)
	}

	var tradeResp struct {
		Trade struct {
			Price float64 `json:"p"`
		} `json:"trade"`
	}
	if err := c.getJSON(ctx, "/v2/stocks/"+symbol+"/trades/latest", &tradeResp); err != nil {
		return models.Quote{}, fmt.Errorf("GetQuote %s last: %w", symbol, err)
	}

	q := models.Quote{
		Symbol: symbol,
		Bid:    quoteResp.Quote.Bid,
		Ask:    quoteResp.Quote.Ask,
		Last:   tradeResp.Trade.Price,
		TS:     time.Now(),
	}

	c.mu.Lock()
	c.cache[symbol] = q
	c.mu.Unlock()

	return q, nil
}

func (c *Client) getJSON(ctx context.Context, requestPath string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+requestPath, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("APCA-API-KEY-ID", c.apiKey)
	req.Header.Set("APCA-API-SECRET-KEY", c.apiSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w; body=%s", err, string(data))
	}
	return nil
}

func (c *Client) updateFromStream(symbol string, update func(q *models.Quote)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.cache[symbol]
	q.Symbol = symbol
	update(&q)
	q.TS = time.Now()
	c.cache[symbol] = q
}
