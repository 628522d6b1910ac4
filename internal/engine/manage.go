package engine

import (
	"context"

	"swing_bot/internal/models"
	"swing_bot/internal/signal"
	"swing_bot/pkg/logger"
)

// managePosition — трейлинг тейк-профит P80: ведём пик last с момента
// входа, p80 = avg + 0.8*(peak-avg); откат до p80 при peak>avg — полный
// выход лимиткой. Сам по себе выход не флипает: новая нога появится,
// только если гейт потом сменит сторону.
func (e *Engine) managePosition(ctx context.Context, rt models.Runtime, pos *models.Position, session string, dec signal.DecisionResult) {
	quote, err := e.quotes.GetQuote(ctx, pos.Symbol)
	if err != nil {
		logger.Error("[ENGINE] quote %s: %v", pos.Symbol, err)
		return
	}
	last := quote.Last
	if last <= 0 {
		return
	}

	peak, ok := e.peaks[pos.Symbol]
	if !ok || peak < pos.AvgEntryPrice {
		peak = pos.AvgEntryPrice
	}
	if last > peak {
		peak = last
	}
	e.peaks[pos.Symbol] = peak

	if peak <= pos.AvgEntryPrice {
		return
	}

	p80 := pos.AvgEntryPrice + takeProfitRetrace*(peak-pos.AvgEntryPrice)
	if last > p80 {
		return
	}

	logger.Info("[ENGINE] 💰 TP80 %s: last=%.4f p80=%.4f peak=%.4f avg=%.4f",
		pos.Symbol, last, p80, peak, pos.AvgEntryPrice)

	if e.closeLeg(ctx, rt, pos, session, dec, models.ActionTakeProfit, p80) {
		e.n.Sendf("💰 TP80 %s: зафиксировали по откату к %.4f", pos.Symbol, p80)
	}
}
