package service

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	data, code, err := c.do(ctx, "CancelOrder", http.MethodDelete, "/v2/orders/"+orderID, nil)
	if err != nil {
		return err
	}
	// 404 допустим: ордер уже в терминальном статусе
	if code/100 != 2 && code != http.StatusNotFound {
		return fmt.Errorf("CancelOrder http %d: %s", code, string(data))
	}
	return nil
}
