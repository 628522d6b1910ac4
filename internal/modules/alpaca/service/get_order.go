package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"swing_bot/internal/models"
)

func (c *Client) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	data, code, err := c.do(ctx, "GetOrder", http.MethodGet, "/v2/orders/"+orderID, nil)
	if err != nil {
		return models.Order{}, err
	}
	if code/100 != 2 {
		return models.Order{}, fmt.Errorf("GetOrder http %d: %s", code, string(data))
	}

	var payload orderPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.Order{}, fmt.Errorf("GetOrder decode: %w; body=%s", err, string(data))
	}

	return payload.toModel(), nil
}
