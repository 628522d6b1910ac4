package engine

import (
	"context"
	"math"

	"swing_bot/internal/models"
	"swing_bot/internal/pricing"
	"swing_bot/internal/signal"
	"swing_bot/pkg/logger"
)

// openLeg покупает ногу на весь доступный settled cash.
func (e *Engine) openLeg(ctx context.Context, rt models.Runtime, symbol, session string, dec signal.DecisionResult) {
	quote, err := e.quotes.GetQuote(ctx, symbol)
	if err != nil {
		logger.Error("[ENGINE] quote %s: %v", symbol, err)
		return
	}
	limit := pricing.EntryLimit(pricing.Buy, quote.Bid, quote.Ask, quote.Last, rt.Risk.SlippageBps)
	if limit <= 0 {
		return
	}

	acct, err := e.broker.GetAccount(ctx)
	if err != nil {
		logger.Error("[ENGINE] account before entry: %v", err)
		return
	}

	qty := math.Floor(acct.SettledCash / limit)
	if qty < 1 {
		// молча пропускаем: на целую акцию не хватает
		logger.Info("[ENGINE] %s: settled=%.2f limit=%.4f — qty<1, пропуск", symbol, acct.SettledCash, limit)
		return
	}

	filled, fillLimit := e.place(ctx, rt, symbol, qty, models.SideBuy, limit, session)
	if filled < 1 {
		logger.Info("[ENGINE] %s: вход не исполнился (filled=%.0f)", symbol, filled)
		return
	}

	pos := e.confirmPosition(ctx, symbol)
	if pos == nil {
		logger.Error("[ENGINE] %s: позиция не подтвердилась после филла", symbol)
		return
	}

	// пик трейлинга стартует со средней цены входа
	e.peaks[symbol] = pos.AvgEntryPrice

	// защитный стоп сразу после подтверждения; отказ логируем и живём без
	// стопа — вход не откатываем и не ретраим
	stop, stopLimit := pricing.StopLimit(pos.AvgEntryPrice, rt.Risk.StopLossPct, rt.Risk.StopLimitOffsetBps)
	if _, err := e.broker.SubmitStopLimit(ctx, symbol, pos.Qty, models.SideSell, stop, stopLimit); err != nil {
		logger.Error("[ENGINE] %s: защитный стоп не встал: %v", symbol, err)
		e.n.Sendf("⚠️ %s: позиция без защитного стопа: %v", symbol, err)
	}

	acctAfter, _ := e.broker.GetAccount(ctx)

	e.appendTrade(ctx, models.TradeRow{
		TS:             e.now(),
		Action:         models.ActionEntry,
		Symbol:         symbol,
		Qty:            pos.Qty,
		Price:          pos.AvgEntryPrice,
		EntryLimit:     fillLimit,
		StopLimit:      stopLimit,
		CashBefore:     acct.SettledCash,
		CashAfter:      acctAfter.SettledCash,
		ProbUp:         dec.PUp.Value,
		Sentiment:      dec.PSent.Value,
		Session:        session,
		SlippageBps:    rt.Risk.SlippageBps,
		SpreadBps:      pricing.SpreadBps(quote.Bid, quote.Ask),
		ComponentsJSON: componentsJSON(dec),
	})
	e.n.Sendf("📈 ENTRY %s: qty=%.0f avg=%.4f stop=%.4f (%s)", symbol, pos.Qty, pos.AvgEntryPrice, stop, session)
}

// closeLeg продаёт всю ногу; true — позиция полностью закрыта (флип можно
// продолжать).
func (e *Engine) closeLeg(ctx context.Context, rt models.Runtime, pos *models.Position, session string, dec signal.DecisionResult, action string, p80 float64) bool {
	quote, err := e.quotes.GetQuote(ctx, pos.Symbol)
	if err != nil {
		logger.Error("[ENGINE] quote %s: %v", pos.Symbol, err)
		return false
	}
	limit := pricing.EntryLimit(pricing.Sell, quote.Bid, quote.Ask, quote.Last, rt.Risk.SlippageBps)
	if limit <= 0 {
		return false
	}

	filled, fillLimit := e.place(ctx, rt, pos.Symbol, pos.Qty, models.SideSell, limit, session)

	delete(e.peaks, pos.Symbol)

	left, err := e.broker.GetPosition(ctx, pos.Symbol)
	closed := err == nil && (left == nil || left.Qty < 1)

	if filled > 0 {
		e.appendTrade(ctx, models.TradeRow{
			TS:             e.now(),
			Action:         action,
			Symbol:         pos.Symbol,
			Qty:            filled,
			Price:          fillLimit,
			ExitLimit:      fillLimit,
			ProbUp:         dec.PUp.Value,
			Sentiment:      dec.PSent.Value,
			P80Threshold:   p80,
			Session:        session,
			SlippageBps:    rt.Risk.SlippageBps,
			SpreadBps:      pricing.SpreadBps(quote.Bid, quote.Ask),
			Note:           action,
			ComponentsJSON: componentsJSON(dec),
		})
		e.n.Sendf("📉 %s %s: qty=%.0f limit=%.4f (%s)", action, pos.Symbol, filled, fillLimit, session)
	}
	if !closed {
		logger.Error("[ENGINE] %s: нога закрыта не полностью, флип отложен", pos.Symbol)
	}
	return closed
}

// place выбирает путь исполнения по сессии: RTH — обычная DAY-лимитка с
// перегонкой, пре/афтер — FOK-эмуляция короткими окнами.
func (e *Engine) place(ctx context.Context, rt models.Runtime, symbol string, qty float64, side models.OrderSide, limit float64, session string) (float64, float64) {
	if session == SessionRTH {
		return e.submitAndManage(ctx, rt, symbol, qty, side, limit)
	}
	return e.emulatedFok(ctx, rt, symbol, qty, side)
}

func (e *Engine) submitAndManage(ctx context.Context, rt models.Runtime, symbol string, qty float64, side models.OrderSide, limit float64) (float64, float64) {
	ord, err := e.broker.SubmitLimit(ctx, symbol, qty, side, limit, false)
	if err != nil {
		logger.Error("[ENGINE] submit %s %s: %v", side, symbol, err)
		return 0, limit
	}
	if e.m != nil {
		e.m.Orders.WithLabelValues(string(side)).Inc()
	}

	final := e.manageOpenLimit(ctx, rt, ord, symbol, side)
	return final.FilledQty, final.LimitPrice
}

// manageOpenLimit крутит висящую лимитку до терминального статуса.
// Перегонка цены только при выполнении обоих условий: прошло не меньше
// ReplaceMinInterval с прошлой перегонки И цена ушла больше чем на
// ReplaceBpsThreshold. После ReplaceMaxCount подряд — кулдаун по нижней
// границе диапазона, счётчик сбрасывается. Отмена контекста проверяется
// на каждой итерации опроса.
func (e *Engine) manageOpenLimit(ctx context.Context, rt models.Runtime, ord models.Order, symbol string, side models.OrderSide) models.Order {
	cur := ord
	for {
		if !e.sleep(ctx, orderPoll) {
			delete(e.replace, cur.ID)
			return cur
		}

		got, err := e.broker.GetOrder(ctx, cur.ID)
		if err != nil {
			logger.Error("[ENGINE] get order %s: %v", cur.ID, err)
			continue
		}
		cur = got

		if cur.Status.TerminalForManage() {
			delete(e.replace, cur.ID)
			return cur
		}

		quote, err := e.quotes.GetQuote(ctx, symbol)
		if err != nil {
			continue
		}
		want := pricing.EntryLimit(pricingSide(side), quote.Bid, quote.Ask, quote.Last, rt.Risk.SlippageBps)
		if want <= 0 || cur.LimitPrice <= 0 {
			continue
		}

		st := e.replace[cur.ID]
		if st == nil {
			st = &replaceState{}
			e.replace[cur.ID] = st
		}

		now := e.now()
		if now.Before(st.coolingUntil) {
			continue
		}
		if !st.lastReplace.IsZero() && now.Sub(st.lastReplace) < rt.Risk.ReplaceMinInterval {
			continue
		}
		moveBps := math.Abs(want-cur.LimitPrice) / cur.LimitPrice * 10_000
		if moveBps <= float64(rt.Risk.ReplaceBpsThreshold) {
			continue
		}

		newOrd, err := e.broker.ReplaceLimit(ctx, cur.ID, want)
		if err != nil {
			// неудачная перегонка молча завершает попытку, лимитка живёт
			logger.Error("[ENGINE] replace %s: %v", cur.ID, err)
			continue
		}

		st.lastReplace = now
		st.count++
		if st.count >= rt.Risk.ReplaceMaxCount {
			st.coolingUntil = now.Add(rt.Risk.ReplaceCooldownMin)
			st.count = 0
		}
		if e.m != nil {
			e.m.Replaces.Inc()
		}

		// replace у брокера рождает новый order id — переносим состояние
		if newOrd.ID != "" && newOrd.ID != cur.ID {
			delete(e.replace, cur.ID)
			e.replace[newOrd.ID] = st
			cur = newOrd
		}
	}
}

// emulatedFok — серия коротких extended-hours лимиток: подали, подождали
// окно, сняли остаток, пересчитали цену по свежей котировке, повторили.
// Жёсткий потолок FokMaxWindows; финальный частичный филл принимается.
func (e *Engine) emulatedFok(ctx context.Context, rt models.Runtime, symbol string, qty float64, side models.OrderSide) (float64, float64) {
	remaining := qty
	var filled, lastLimit float64

	for attempt := 0; attempt < rt.Risk.FokMaxWindows && remaining >= 1; attempt++ {
		quote, err := e.quotes.GetQuote(ctx, symbol)
		if err != nil {
			logger.Error("[ENGINE] fok quote %s: %v", symbol, err)
			break
		}
		lastLimit = pricing.EntryLimit(pricingSide(side), quote.Bid, quote.Ask, quote.Last, rt.Risk.SlippageBps)
		if lastLimit <= 0 {
			break
		}

		ord, err := e.broker.SubmitLimit(ctx, symbol, remaining, side, lastLimit, true)
		if err != nil {
			logger.Error("[ENGINE] fok submit %s %s: %v", side, symbol, err)
			break
		}
		if e.m != nil {
			e.m.Orders.WithLabelValues(string(side)).Inc()
		}

		if !e.sleep(ctx, rt.Risk.FokWindow) {
			_ = e.broker.CancelOrder(ctx, ord.ID)
			break
		}

		got, err := e.broker.GetOrder(ctx, ord.ID)
		if err != nil {
			logger.Error("[ENGINE] fok get order %s: %v", ord.ID, err)
			break
		}
		if got.Status != models.StatusFilled {
			_ = e.broker.CancelOrder(ctx, ord.ID)
			// после отмены дочитываем фактический филл
			if again, err := e.broker.GetOrder(ctx, ord.ID); err == nil {
				got = again
			}
		}

		filled += got.FilledQty
		remaining -= got.FilledQty
	}
	return filled, lastLimit
}

// confirmPosition ждёт появления позиции у брокера (филл уже есть, но
// позиция может отставать на пару секунд).
func (e *Engine) confirmPosition(ctx context.Context, symbol string) *models.Position {
	for i := 0; i < 8; i++ {
		pos, err := e.broker.GetPosition(ctx, symbol)
		if err == nil && pos != nil && pos.Qty > 0 {
			return pos
		}
		if err != nil {
			logger.Error("[ENGINE] confirm position %s: %v", symbol, err)
		}
		if !e.sleep(ctx, orderPoll) {
			return nil
		}
	}
	return nil
}

func pricingSide(side models.OrderSide) pricing.Side {
	if side == models.SideBuy {
		return pricing.Buy
	}
	return pricing.Sell
}
