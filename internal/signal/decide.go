package signal

import (
	"context"
	"fmt"
	"math"

	"swing_bot/internal/models"
	"swing_bot/internal/pricing"
)

// Подстройки гейта. В конфиг их не выносим: это калибровка стратегии,
// а не настройка окружения.
const (
	gateThresholdDefault = 0.55
	gateMin              = 0.45
	gateMax              = 0.70

	gateAdjSpreadWide = 0.02
	gateAdjExtended   = 0.03

	vwapDisagreeBps = 25.0

	convictionDWVwap       = 0.75
	convictionDWWideSpread = 0.85
)

type Symbols struct {
	Base string
	Up   string
	Down string
}

// Service — детерминированный гейт: (модель, сентимент, микроструктура) -> интент.
// Состояния между вызовами нет, можно дёргать конкурентно.
type Service struct {
	syms      Symbols
	model     ModelProvider
	sentiment SentimentProvider
	vwap      VWAPProvider
	quotes    QuoteProvider
}

func NewService(
	syms Symbols,
	model ModelProvider,
	sentiment SentimentProvider,
	vwap VWAPProvider,
	quotes QuoteProvider,
) *Service {
	return &Service{
		syms:      syms,
		model:     model,
		sentiment: sentiment,
		vwap:      vwap,
		quotes:    quotes,
	}
}

// Inputs собирает иммутабельный срез входов под текущий снапшот конфига.
func (s *Service) Inputs(ctx context.Context, rt models.Runtime) DecisionInputs {
	in := DecisionInputs{
		Interval:     rt.Interval,
		SessionPre:   rt.Session.Pre,
		SessionRTH:   rt.Session.RTH,
		SessionAfter: rt.Session.After,
	}
	if score, ok, err := s.sentiment.LatestDailySentiment(ctx); err == nil && ok {
		v := score
		in.Sentiment = &v
	}
	return in
}

// Decide — решение гейта. Никогда не паникует и не возвращает ошибку:
// отказ любого провайдера деградирует в HOLD/нейтраль с диагностикой,
// слепой направленный вход на сбое сигнала исключён.
func (s *Service) Decide(ctx context.Context, in DecisionInputs, rt models.Runtime) (res DecisionResult) {
	reasons := map[string]any{
		"session_pre":   in.SessionPre,
		"session_rth":   in.SessionRTH,
		"session_after": in.SessionAfter,
	}

	baseGate := rt.GateThreshold
	if baseGate <= 0 {
		baseGate = gateThresholdDefault
	}

	defer func() {
		if r := recover(); r != nil {
			reasons["engine_error"] = fmt.Sprintf("%v", r)
			res = holdResult(
				Sample{Value: 0.5, Degraded: true, Reason: "panic"},
				Sample{Value: 0.5, Degraded: true, Reason: "panic"},
				0.5, baseGate,
				pricing.SentinelSpreadBps, pricing.SentinelSpreadBps,
				nil, reasons,
			)
		}
	}()

	// 1. Модельная вероятность
	pUp := Sample{Value: 0.5}
	if raw, err := s.model.PredictPUp(ctx, in.Interval); err != nil {
		pUp.Degraded = true
		pUp.Reason = err.Error()
		reasons["model_error"] = err.Error()
	} else if math.IsNaN(raw) {
		pUp.Degraded = true
		pUp.Reason = "model returned NaN"
		reasons["model_error"] = pUp.Reason
	} else {
		pUp.Value = clamp(raw, 0, 1)
	}

	// 2. Сентимент: [-1,1] -> [0,1], отсутствие = нейтраль
	pSent := Sample{Value: 0.5}
	if in.Sentiment == nil || math.IsNaN(*in.Sentiment) {
		pSent.Degraded = true
		pSent.Reason = "no daily sentiment"
		reasons["sentiment_available"] = false
	} else {
		pSent.Value = clamp((*in.Sentiment+1.0)/2.0, 0, 1)
		reasons["sentiment_available"] = true
	}

	// 3. Блендинг с ренормализацией весов
	wModel, wSent := NormalizeWeights(rt.WModel, rt.WSent)
	pBlend := wModel*pUp.Value + wSent*pSent.Value

	reasons["w_model"] = wModel
	reasons["w_sent"] = wSent
	reasons["p_up"] = pUp.Value
	reasons["p_sent"] = pSent.Value
	reasons["p_blend"] = pBlend

	// 4. Спреды обеих ног
	spreadUp, spreadDown := pricing.SentinelSpreadBps, pricing.SentinelSpreadBps
	qUp, errUp := s.quotes.GetQuote(ctx, s.syms.Up)
	qDown, errDown := s.quotes.GetQuote(ctx, s.syms.Down)
	if errUp != nil || errDown != nil {
		reasons["quote_error"] = fmt.Sprintf("up=%v down=%v", errUp, errDown)
	} else {
		spreadUp = pricing.SpreadBps(qUp.Bid, qUp.Ask)
		spreadDown = pricing.SpreadBps(qDown.Bid, qDown.Ask)
	}
	// битый спред на любой ноге рушит обе в сентинел: торгуем парой
	for key, spread := range map[string]float64{"spread_up": spreadUp, "spread_down": spreadDown} {
		if math.IsNaN(spread) || math.IsInf(spread, 0) || spread < 0 || spread > 100_000 {
			reasons[key+"_invalid"] = true
			spreadUp, spreadDown = pricing.SentinelSpreadBps, pricing.SentinelSpreadBps
			break
		}
	}
	maxSpread := math.Max(spreadUp, spreadDown)
	reasons["spread_bps_up"] = spreadUp
	reasons["spread_bps_down"] = spreadDown
	reasons["max_spread_bps"] = maxSpread

	// 5. VWAP-дистанция базового тикера (только RTH)
	var vwapBps *float64
	if in.SessionRTH {
		if v, ok, err := s.vwap.VWAPDistanceBps(ctx, s.syms.Base); err != nil {
			reasons["vwap_error"] = err.Error()
		} else if ok {
			vwapBps = &v
		}
	}
	if vwapBps != nil {
		reasons["vwap_bps"] = *vwapBps
	} else {
		reasons["vwap_bps"] = "NA"
	}

	gate := baseGate
	reasons["base_gate"] = baseGate

	spreadBlock := float64(rt.Risk.SpreadMaxBps)
	spreadHint := rt.SpreadWideHintBps
	gateBuffer := rt.GateBuffer

	// 6. Жёсткий блок по спреду важнее любой вероятности
	if maxSpread > spreadBlock {
		reasons["spread_block"] = true
		return holdResult(pUp, pSent, pBlend, gate, spreadUp, spreadDown, vwapBps, reasons)
	}

	if maxSpread > spreadHint {
		gate += gateAdjSpreadWide
		reasons["gate_adj_spread"] = gateAdjSpreadWide
	}

	if in.SessionPre || in.SessionAfter {
		gate += gateAdjExtended
		reasons["gate_adj_extended"] = gateAdjExtended
	}

	// 7. Разногласие с VWAP: знак (p_blend-0.5) против знака дистанции
	vwapDisagree := false
	if vwapBps != nil {
		if pBlend >= 0.5 && *vwapBps < -vwapDisagreeBps {
			vwapDisagree = true
		} else if pBlend < 0.5 && *vwapBps > vwapDisagreeBps {
			vwapDisagree = true
		}
		if vwapDisagree {
			gate += gateAdjExtended
			reasons["gate_adj_vwap"] = gateAdjExtended
		}
	}

	gate = clamp(gate, gateMin, gateMax)
	reasons["gate_after_adjustments"] = gate

	// 8. Буфер вокруг монетки
	if math.Abs(pBlend-0.5) < gateBuffer {
		reasons["no_trade_buffer"] = true
		return holdResult(pUp, pSent, pBlend, gate, spreadUp, spreadDown, vwapBps, reasons)
	}

	side := SideDown
	if pBlend >= gate {
		side = SideUp
	}

	gateDistance := math.Max(1e-6, math.Abs(gate-0.5))
	conviction := clamp(math.Abs(pBlend-0.5)/gateDistance, 0, 1)

	if vwapDisagree {
		conviction *= convictionDWVwap
		reasons["conviction_dw_vwap"] = convictionDWVwap
	}
	if maxSpread > spreadHint {
		conviction *= convictionDWWideSpread
		reasons["conviction_dw_spread"] = convictionDWWideSpread
	}
	conviction = clamp(conviction, 0, 1)

	return DecisionResult{
		Side:          side,
		Conviction:    conviction,
		Gate:          gate,
		PUp:           pUp,
		PSent:         pSent,
		PBlend:        pBlend,
		SpreadUpBps:   spreadUp,
		SpreadDownBps: spreadDown,
		VWAPBps:       vwapBps,
		Reasons:       reasons,
	}
}

// NormalizeWeights приводит веса к сумме 1; неположительная сумма — model-only.
func NormalizeWeights(wModel, wSent float64) (float64, float64) {
	total := wModel + wSent
	if total <= 0 {
		return 1.0, 0.0
	}
	return wModel / total, wSent / total
}

func holdResult(
	pUp, pSent Sample,
	pBlend, gate float64,
	spreadUp, spreadDown float64,
	vwapBps *float64,
	reasons map[string]any,
) DecisionResult {
	return DecisionResult{
		Side:          SideHold,
		Conviction:    0,
		Gate:          gate,
		PUp:           pUp,
		PSent:         pSent,
		PBlend:        pBlend,
		SpreadUpBps:   spreadUp,
		SpreadDownBps: spreadDown,
		VWAPBps:       vwapBps,
		Reasons:       reasons,
	}
}

func clamp(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}
