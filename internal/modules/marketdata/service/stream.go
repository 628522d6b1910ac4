package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"swing_bot/internal/models"
	"swing_bot/pkg/logger"
)

type streamMsg struct {
	Type   string  `json:"T"`
	Symbol string  `json:"S"`
	Bid    float64 `json:"bp"`
	Ask    float64 `json:"ap"`
	Price  float64 `json:"p"`
}

// RunStream держит websocket до отмены контекста: auth, подписка на quotes и
// trades по трём тикерам, обновление кэша. Падение соединения — реконнект
// с паузой, движок в это время живёт на REST-фолбэке.
func (c *Client) RunStream(ctx context.Context) {
	symbols := []string{c.cfg.BaseSymbol, c.cfg.UpSymbol, c.cfg.DownSymbol}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.streamOnce(ctx, symbols); err != nil {
			logger.Error("[MARKETDATA] стрим упал: %v, реконнект через 5s", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (c *Client) streamOnce(ctx context.Context, symbols []string) error {
	conn, _, err := c.wsDialer.DialContext(ctx, c.streamURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	auth, _ := sonic.Marshal(map[string]string{
		"action": "auth",
		"key":    c.apiKey,
		"secret": c.apiSecret,
	})
	if err := conn.WriteMessage(websocket.TextMessage, auth); err != nil {
		return err
	}

	sub, _ := sonic.Marshal(map[string]any{
		"action": "subscribe",
		"quotes": symbols,
		"trades": symbols,
	})
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		return err
	}

	logger.Info("[MARKETDATA] стрим запущен: %v", symbols)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msgs []streamMsg
		if err := sonic.Unmarshal(raw, &msgs); err != nil {
			continue
		}

		for _, m := range msgs {
			switch m.Type {
			case "q":
				c.updateFromStream(m.Symbol, func(q *models.Quote) {
					q.Bid = m.Bid
					q.Ask = m.Ask
				})
			case "t":
				c.updateFromStream(m.Symbol, func(q *models.Quote) {
					q.Last = m.Price
				})
			}
		}
	}
}
