package signal

import (
	"context"

	"swing_bot/internal/models"
)

type Side string

const (
	SideUp   Side = "UP"
	SideDown Side = "DOWN"
	SideHold Side = "HOLD"
)

// ModelProvider отдаёт p_up по последнему бару. NaN — модельный отказ,
// блендер переживёт его сам.
type ModelProvider interface {
	PredictPUp(ctx context.Context, interval string) (float64, error)
}

// SentimentProvider отдаёт последний дневной скор в [-1,1]; ok=false — скора нет.
type SentimentProvider interface {
	LatestDailySentiment(ctx context.Context) (float64, bool, error)
}

// VWAPProvider отдаёт дистанцию до дневного VWAP базового тикера в bps
// (только RTH; ok=false вне сессии или при нехватке баров).
type VWAPProvider interface {
	VWAPDistanceBps(ctx context.Context, symbol string) (float64, bool, error)
}

type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (models.Quote, error)
}

// DecisionInputs — срез входов на один вызов Decide. Иммутабельный.
type DecisionInputs struct {
	Interval string
	// Sentiment == nil => скор недоступен, блендер подставит нейтраль.
	Sentiment    *float64
	SessionPre   bool
	SessionRTH   bool
	SessionAfter bool
}

// Sample — тегированное значение сигнала: вычисленная нейтраль и
// «отказ, заменён нейтралью» различимы для вызывающего.
type Sample struct {
	Value    float64
	Degraded bool
	Reason   string
}

// DecisionResult — иммутабельный снапшот одного решения гейта.
type DecisionResult struct {
	Side       Side
	Conviction float64
	Gate       float64

	PUp    Sample
	PSent  Sample
	PBlend float64

	SpreadUpBps   float64
	SpreadDownBps float64
	// VWAPBps == nil — вне RTH либо данных не хватило.
	VWAPBps *float64

	Reasons map[string]any
}
