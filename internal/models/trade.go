package models

import "time"

const (
	ActionEntry      = "ENTRY"
	ActionExit       = "EXIT"
	ActionTakeProfit = "TP80_EXIT"
)

// TradeRow — одна строка append-only журнала сделок.
// Обязательный минимум: TS/Action/Symbol/Qty/Price/Session/SlippageBps/Note,
// остальные колонки опциональны (0 = пусто в CSV).
type TradeRow struct {
	TS     time.Time
	Action string
	Symbol string
	Qty    float64
	Price  float64

	EntryLimit float64
	ExitLimit  float64
	StopLimit  float64
	CashBefore float64
	CashAfter  float64

	ProbUp       float64
	Sentiment    float64
	P80Threshold float64

	Session        string
	SlippageBps    int
	SpreadBps      float64
	ComponentsJSON string
	Note           string
}
