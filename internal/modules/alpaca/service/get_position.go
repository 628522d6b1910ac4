package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"swing_bot/internal/models"
)

// GetPosition возвращает nil без ошибки, если позиции по символу нет (404).
func (c *Client) GetPosition(ctx context.Context, symbol string) (*models.Position, error) {
	data, code, err := c.do(ctx, "GetPosition", http.MethodGet, "/v2/positions/"+symbol, nil)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return nil, nil
	}
	if code/100 != 2 {
		return nil, fmt.Errorf("GetPosition http %d: %s", code, string(data))
	}

	var payload positionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("GetPosition decode: %w; body=%s", err, string(data))
	}

	pos := payload.toModel()
	return &pos, nil
}
