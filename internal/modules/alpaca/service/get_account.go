package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"swing_bot/internal/models"
)

func (c *Client) GetAccount(ctx context.Context) (models.Account, error) {
	data, code, err := c.do(ctx, "GetAccount", http.MethodGet, "/v2/account", nil)
	if err != nil {
		return models.Account{}, err
	}
	if code/100 != 2 {
		return models.Account{}, fmt.Errorf("GetAccount http %d: %s", code, string(data))
	}

	var payload accountPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.Account{}, fmt.Errorf("GetAccount decode: %w; body=%s", err, string(data))
	}

	return payload.toModel(), nil
}
