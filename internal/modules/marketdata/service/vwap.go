package service

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

type barPayload struct {
	TS     time.Time `json:"t"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
}

// VWAPDistanceBps — дистанция последней цены до внутридневного VWAP в bps.
// VWAP якорится на открытие RTH; вне RTH или без баров — ok=false.
func (c *Client) VWAPDistanceBps(ctx context.Context, symbol string) (float64, bool, error) {
	now := time.Now().In(c.loc)
	if !c.rthNow(now) {
		return 0, false, nil
	}

	sessionStart := time.Date(now.Year(), now.Month(), now.Day(), 9, 30, 0, 0, c.loc)

	q := url.Values{}
	q.Set("timeframe", "1Min")
	q.Set("start", sessionStart.UTC().Format(time.RFC3339))
	q.Set("limit", "500")

	var resp struct {
		Bars []barPayload `json:"bars"`
	}
	if err := c.getJSON(ctx, "/v2/stocks/"+symbol+"/bars?"+q.Encode(), &resp); err != nil {
		return 0, false, fmt.Errorf("VWAPDistanceBps %s: %w", symbol, err)
	}
	if len(resp.Bars) == 0 {
		return 0, false, nil
	}

	return VWAPDistance(resp.Bars)
}

// VWAPDistance — чистая арифметика поверх баров: typical price * volume,
// кумулятивно; вынесена отдельно ради тестируемости без сети.
func VWAPDistance(bars []barPayload) (float64, bool, error) {
	var pv, vv float64
	last := 0.0
	for _, b := range bars {
		typical := (b.High + b.Low + b.Close) / 3.0
		pv += typical * b.Volume
		vv += b.Volume
		last = b.Close
	}
	if vv <= 0 || last <= 0 {
		return 0, false, nil
	}
	vwap := pv / vv
	if vwap <= 0 {
		return 0, false, nil
	}
	return ((last - vwap) / vwap) * 10_000.0, true, nil
}

func (c *Client) rthNow(now time.Time) bool {
	minutes := now.Hour()*60 + now.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}
