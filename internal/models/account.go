package models

import "strings"

type Account struct {
	Equity float64
	Cash   float64
	// SettledCash — прокси settled cash (non_marginable_buying_power у брокера).
	SettledCash           float64
	DaytradingBuyingPower float64
	TradingBlocked        bool
	AccountBlocked        bool
	Classification        string // "margin" / "cash"
	DaytradeCount         int
}

// IsMargin — эвристика как в проде: либо classification=margin,
// либо есть ненулевой daytrading buying power.
func (a Account) IsMargin() bool {
	return a.DaytradingBuyingPower > 0 || strings.EqualFold(a.Classification, "margin")
}

type Position struct {
	Symbol        string
	Qty           float64
	AvgEntryPrice float64
}
