package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"swing_bot/internal/models"
)

func (c *Client) ReplaceLimit(ctx context.Context, orderID string, newLimitPrice float64) (models.Order, error) {
	if newLimitPrice <= 0 {
		return models.Order{}, fmt.Errorf("ReplaceLimit: newLimitPrice <= 0")
	}

	body := map[string]any{
		"limit_price": formatPrice(newLimitPrice),
	}

	data, code, err := c.do(ctx, "ReplaceLimit", http.MethodPatch, "/v2/orders/"+orderID, body)
	if err != nil {
		return models.Order{}, err
	}
	if code/100 != 2 {
		return models.Order{}, fmt.Errorf("ReplaceLimit http %d: %s", code, string(data))
	}

	var payload orderPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.Order{}, fmt.Errorf("ReplaceLimit decode: %w; body=%s", err, string(data))
	}

	return payload.toModel(), nil
}
