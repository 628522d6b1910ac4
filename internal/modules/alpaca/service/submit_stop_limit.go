package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"swing_bot/internal/models"
)

// SubmitStopLimit — защитный стоп-лимит. Extended hours для стопов брокер
// не принимает, поэтому флага здесь нет: ордер живёт в RTH.
func (c *Client) SubmitStopLimit(
	ctx context.Context,
	symbol string,
	qty float64,
	side models.OrderSide,
	stopPrice float64,
	limitPrice float64,
) (models.Order, error) {
	if qty <= 0 {
		return models.Order{}, fmt.Errorf("SubmitStopLimit: qty <= 0")
	}
	if stopPrice <= 0 || limitPrice <= 0 {
		return models.Order{}, fmt.Errorf("SubmitStopLimit: price <= 0")
	}

	body := map[string]any{
		"symbol":          symbol,
		"qty":             formatQty(qty),
		"side":            string(side),
		"type":            "stop_limit",
		"stop_price":      formatPrice(stopPrice),
		"limit_price":     formatPrice(limitPrice),
		"time_in_force":   "day",
		"client_order_id": "swing-sl-" + uuid.NewString(),
	}

	data, code, err := c.do(ctx, "SubmitStopLimit", http.MethodPost, "/v2/orders", body)
	if err != nil {
		return models.Order{}, err
	}
	if code/100 != 2 {
		return models.Order{}, fmt.Errorf("SubmitStopLimit http %d: %s", code, string(data))
	}

	var payload orderPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.Order{}, fmt.Errorf("SubmitStopLimit decode: %w; body=%s", err, string(data))
	}

	return payload.toModel(), nil
}
