package service

import (
	"strconv"
	"strings"

	"swing_bot/internal/models"
)

// Брокер отдаёт числа строками; парсим мягко, как есть.
type accountPayload struct {
	Equity                   string `json:"equity"`
	Cash                     string `json:"cash"`
	NonMarginableBuyingPower string `json:"non_marginable_buying_power"`
	DaytradingBuyingPower    string `json:"daytrading_buying_power"`
	TradingBlocked           bool   `json:"trading_blocked"`
	AccountBlocked           bool   `json:"account_blocked"`
	Classification           string `json:"classification"`
	DaytradeCount            int    `json:"daytrade_count"`
	PatternDayTrader         bool   `json:"pattern_day_trader"`
}

func (p accountPayload) toModel() models.Account {
	equity, _ := strconv.ParseFloat(p.Equity, 64)
	cash, _ := strconv.ParseFloat(p.Cash, 64)
	// settled cash прокси: non_marginable_buying_power, fallback на cash
	settled, err := strconv.ParseFloat(p.NonMarginableBuyingPower, 64)
	if err != nil || p.NonMarginableBuyingPower == "" {
		settled = cash
	}
	dtbp, _ := strconv.ParseFloat(p.DaytradingBuyingPower, 64)

	return models.Account{
		Equity:                equity,
		Cash:                  cash,
		SettledCash:           settled,
		DaytradingBuyingPower: dtbp,
		TradingBlocked:        p.TradingBlocked,
		AccountBlocked:        p.AccountBlocked,
		Classification:        p.Classification,
		DaytradeCount:         p.DaytradeCount,
	}
}

type positionPayload struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	AvgEntryPrice string `json:"avg_entry_price"`
}

func (p positionPayload) toModel() models.Position {
	qty, _ := strconv.ParseFloat(p.Qty, 64)
	avg, _ := strconv.ParseFloat(p.AvgEntryPrice, 64)
	return models.Position{Symbol: p.Symbol, Qty: qty, AvgEntryPrice: avg}
}

type orderPayload struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Side       string `json:"side"`
	Status     string `json:"status"`
	Qty        string `json:"qty"`
	FilledQty  string `json:"filled_qty"`
	LimitPrice string `json:"limit_price"`
}

func (p orderPayload) toModel() models.Order {
	qty, _ := strconv.ParseFloat(p.Qty, 64)
	filled, _ := strconv.ParseFloat(p.FilledQty, 64)
	limit, _ := strconv.ParseFloat(p.LimitPrice, 64)
	return models.Order{
		ID:         p.ID,
		Symbol:     p.Symbol,
		Side:       models.OrderSide(strings.ToLower(p.Side)),
		Status:     models.OrderStatus(strings.ToLower(p.Status)),
		Qty:        qty,
		FilledQty:  filled,
		LimitPrice: limit,
	}
}

func formatQty(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

func formatPrice(px float64) string {
	return strconv.FormatFloat(px, 'f', 4, 64)
}
