package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"swing_bot/internal/models"
)

func (c *Client) SubmitLimit(
	ctx context.Context,
	symbol string,
	qty float64,
	side models.OrderSide,
	limitPrice float64,
	extendedHours bool,
) (models.Order, error) {
	if qty < 1 {
		return models.Order{}, fmt.Errorf("SubmitLimit: qty < 1")
	}
	if limitPrice <= 0 {
		return models.Order{}, fmt.Errorf("SubmitLimit: limitPrice <= 0")
	}

	body := map[string]any{
		"symbol":          symbol,
		"qty":             formatQty(qty),
		"side":            string(side),
		"type":            "limit",
		"limit_price":     formatPrice(limitPrice),
		"time_in_force":   "day",
		"extended_hours":  extendedHours,
		"client_order_id": "swing-" + uuid.NewString(),
	}

	data, code, err := c.do(ctx, "SubmitLimit", http.MethodPost, "/v2/orders", body)
	if err != nil {
		return models.Order{}, err
	}
	if code/100 != 2 {
		return models.Order{}, fmt.Errorf("SubmitLimit http %d: %s", code, string(data))
	}

	var payload orderPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.Order{}, fmt.Errorf("SubmitLimit decode: %w; body=%s", err, string(data))
	}

	return payload.toModel(), nil
}
