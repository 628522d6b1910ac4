package signal

import (
	"context"
	"errors"
	"math"
	"testing"

	"swing_bot/internal/models"
	"swing_bot/internal/pricing"
)

var testSyms = Symbols{Base: "TSLA", Up: "TSLL", Down: "TSDD"}

type fakeModel struct {
	p   float64
	err error
}

func (f fakeModel) PredictPUp(context.Context, string) (float64, error) { return f.p, f.err }

type fakeSentiment struct {
	score float64
	ok    bool
	err   error
}

func (f fakeSentiment) LatestDailySentiment(context.Context) (float64, bool, error) {
	return f.score, f.ok, f.err
}

type fakeVWAP struct {
	bps float64
	ok  bool
	err error
}

func (f fakeVWAP) VWAPDistanceBps(context.Context, string) (float64, bool, error) {
	return f.bps, f.ok, f.err
}

type fakeQuotes struct {
	bid, ask float64
	err      error
}

func (f fakeQuotes) GetQuote(_ context.Context, symbol string) (models.Quote, error) {
	if f.err != nil {
		return models.Quote{}, f.err
	}
	return models.Quote{
		Symbol: symbol,
		Bid:    f.bid,
		Ask:    f.ask,
		Last:   (f.bid + f.ask) / 2,
	}, nil
}

func testRuntime() models.Runtime {
	return models.Runtime{
		GateThreshold:     0.55,
		WModel:            1.0,
		WSent:             0.0,
		SpreadWideHintBps: 40,
		GateBuffer:        0.02,
		Interval:          "5m",
		Risk:              models.RiskSettings{SpreadMaxBps: 75, SlippageBps: 30},
	}
}

func newTestService(m ModelProvider, v VWAPProvider, q QuoteProvider) *Service {
	return NewService(testSyms, m, fakeSentiment{}, v, q)
}

func TestNormalizeWeights(t *testing.T) {
	for _, c := range [][2]float64{{0.7, 0.3}, {2, 3}, {1, 0}, {0.01, 0.99}} {
		wm, ws := NormalizeWeights(c[0], c[1])
		if math.Abs(wm+ws-1) > 1e-12 {
			t.Errorf("NormalizeWeights(%v,%v): sum=%v", c[0], c[1], wm+ws)
		}
	}
	for _, c := range [][2]float64{{0, 0}, {-1, 0.5}, {-2, -3}} {
		wm, ws := NormalizeWeights(c[0], c[1])
		if wm != 1 || ws != 0 {
			t.Errorf("NormalizeWeights(%v,%v) = (%v,%v), want (1,0)", c[0], c[1], wm, ws)
		}
	}
}

func TestDecideBalancedLongTilt(t *testing.T) {
	rt := testRuntime()
	rt.GateThreshold = 0.52
	rt.GateBuffer = 0.01
	svc := newTestService(fakeModel{p: 0.52}, fakeVWAP{bps: 0, ok: true}, fakeQuotes{bid: 10.00, ask: 10.01})

	res := svc.Decide(context.Background(), DecisionInputs{Interval: "5m", SessionRTH: true}, rt)

	if res.Side != SideUp {
		t.Fatalf("side = %v, want UP", res.Side)
	}
	if !(res.Conviction > 0 && res.Conviction <= 1) {
		t.Errorf("conviction = %v, want (0,1]", res.Conviction)
	}
	if got, _ := res.Reasons["sentiment_available"].(bool); got {
		t.Error("sentiment_available = true, want false")
	}
}

func TestDecideBlocksWideSpread(t *testing.T) {
	// сильный сигнал не пробивает жёсткий блок по спреду
	svc := newTestService(fakeModel{p: 0.8}, fakeVWAP{bps: 0, ok: true}, fakeQuotes{bid: 10.00, ask: 10.08})

	res := svc.Decide(context.Background(), DecisionInputs{Interval: "5m", SessionRTH: true}, testRuntime())

	if res.Side != SideHold {
		t.Fatalf("side = %v, want HOLD", res.Side)
	}
	if res.Conviction != 0 {
		t.Errorf("conviction = %v, want 0", res.Conviction)
	}
	if blocked, _ := res.Reasons["spread_block"].(bool); !blocked {
		t.Error("spread_block reason missing")
	}
}

func TestDecideExtendedHoursBuffer(t *testing.T) {
	svc := newTestService(fakeModel{p: 0.515}, fakeVWAP{}, fakeQuotes{bid: 10.00, ask: 10.01})

	res := svc.Decide(context.Background(), DecisionInputs{Interval: "5m", SessionPre: true}, testRuntime())

	if res.Side != SideHold {
		t.Fatalf("side = %v, want HOLD", res.Side)
	}
	if buffered, _ := res.Reasons["no_trade_buffer"].(bool); !buffered {
		t.Error("no_trade_buffer reason missing")
	}
}

func TestDecideVWAPDisagreementDownweights(t *testing.T) {
	in := DecisionInputs{Interval: "5m", SessionRTH: true}
	quotes := fakeQuotes{bid: 10.00, ask: 10.02}

	agree := newTestService(fakeModel{p: 0.62}, fakeVWAP{bps: 0, ok: true}, quotes).
		Decide(context.Background(), in, testRuntime())
	disagree := newTestService(fakeModel{p: 0.62}, fakeVWAP{bps: -50, ok: true}, quotes).
		Decide(context.Background(), in, testRuntime())

	if agree.Side != SideUp || disagree.Side != SideUp {
		t.Fatalf("sides = %v/%v, want UP/UP", agree.Side, disagree.Side)
	}
	if !(disagree.Conviction < agree.Conviction) {
		t.Errorf("disagree conviction %v not lower than agree %v", disagree.Conviction, agree.Conviction)
	}
	if _, ok := disagree.Reasons["conviction_dw_vwap"]; !ok {
		t.Error("conviction_dw_vwap reason missing")
	}
}

func TestDecideQuoteFailureHolds(t *testing.T) {
	svc := newTestService(fakeModel{p: 0.9}, fakeVWAP{bps: 0, ok: true}, fakeQuotes{err: errors.New("feed down")})

	res := svc.Decide(context.Background(), DecisionInputs{Interval: "5m", SessionRTH: true}, testRuntime())

	if res.Side != SideHold {
		t.Fatalf("side = %v, want HOLD", res.Side)
	}
	if res.SpreadUpBps != pricing.SentinelSpreadBps || res.SpreadDownBps != pricing.SentinelSpreadBps {
		t.Errorf("spreads = %v/%v, want sentinel", res.SpreadUpBps, res.SpreadDownBps)
	}
	if _, ok := res.Reasons["quote_error"]; !ok {
		t.Error("quote_error reason missing")
	}
}

func TestDecideModelNaNDegradesToNeutral(t *testing.T) {
	svc := newTestService(fakeModel{p: math.NaN()}, fakeVWAP{bps: 0, ok: true}, fakeQuotes{bid: 10.00, ask: 10.01})

	res := svc.Decide(context.Background(), DecisionInputs{Interval: "5m", SessionRTH: true}, testRuntime())

	if !res.PUp.Degraded {
		t.Error("PUp not flagged degraded")
	}
	if res.PUp.Value != 0.5 {
		t.Errorf("PUp.Value = %v, want 0.5", res.PUp.Value)
	}
	// нейтральный бленд попадает в буфер
	if res.Side != SideHold {
		t.Errorf("side = %v, want HOLD", res.Side)
	}
}

func TestDecideSentimentMapping(t *testing.T) {
	rt := testRuntime()
	rt.WModel, rt.WSent = 0, 1
	score := 0.5
	svc := newTestService(fakeModel{p: 0.5}, fakeVWAP{bps: 0, ok: true}, fakeQuotes{bid: 10.00, ask: 10.01})

	res := svc.Decide(context.Background(), DecisionInputs{Interval: "5m", Sentiment: &score, SessionRTH: true}, rt)

	if math.Abs(res.PSent.Value-0.75) > 1e-12 {
		t.Errorf("PSent = %v, want 0.75 for score 0.5", res.PSent.Value)
	}
	if res.PSent.Degraded {
		t.Error("PSent flagged degraded with score present")
	}
}
