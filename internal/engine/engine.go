package engine

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"swing_bot/internal/ledger"
	"swing_bot/internal/models"
	healthsvc "swing_bot/internal/modules/health/service"
	metricssvc "swing_bot/internal/modules/metrics/service"
	"swing_bot/internal/notify"
	"swing_bot/internal/runtime"
	"swing_bot/internal/signal"
	"swing_bot/pkg/logger"
)

const (
	cycleSleep = 500 * time.Millisecond
	orderPoll  = 250 * time.Millisecond

	pdtEquityFloor   = 25_000.0
	pdtDaytradeLimit = 3

	takeProfitRetrace = 0.8
)

// Broker — минимальный срез брокерского API, который нужен движку.
type Broker interface {
	GetAccount(ctx context.Context) (models.Account, error)
	GetPosition(ctx context.Context, symbol string) (*models.Position, error)
	SubmitLimit(ctx context.Context, symbol string, qty float64, side models.OrderSide, limitPrice float64, extendedHours bool) (models.Order, error)
	SubmitStopLimit(ctx context.Context, symbol string, qty float64, side models.OrderSide, stopPrice, limitPrice float64) (models.Order, error)
	ReplaceLimit(ctx context.Context, orderID string, newLimitPrice float64) (models.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (models.Order, error)
}

type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (models.Quote, error)
}

// Decider — гейт решений; движку не важно, кто за ним стоит.
type Decider interface {
	Inputs(ctx context.Context, rt models.Runtime) signal.DecisionInputs
	Decide(ctx context.Context, in signal.DecisionInputs, rt models.Runtime) signal.DecisionResult
}

// replaceState — состояние троттлинга перегонки одной висящей лимитки.
type replaceState struct {
	lastReplace  time.Time
	count        int
	coolingUntil time.Time
}

// Engine — однопоточный исполнитель: один внешний цикл, внутри него
// синхронный менеджмент максимум одного ордера за раз. Карты replace/peaks
// принадлежат только циклу движка, конкурентного доступа к ним нет.
type Engine struct {
	syms   signal.Symbols
	broker Broker
	quotes QuoteProvider
	gate   Decider
	store  *runtime.Store
	trades ledger.Ledger
	n      notify.Notifier
	m      *metricssvc.Metrics
	health *healthsvc.State

	running atomic.Bool

	replace map[string]*replaceState // orderID -> троттлинг
	peaks   map[string]float64       // symbol -> пик last с момента входа

	// подменяются в тестах
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
	loc   *time.Location
}

func New(
	syms signal.Symbols,
	broker Broker,
	quotes QuoteProvider,
	gate Decider,
	store *runtime.Store,
	trades ledger.Ledger,
	n notify.Notifier,
	m *metricssvc.Metrics,
	health *healthsvc.State,
) *Engine {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		logger.Fatal("[ENGINE] load tz: %v", err)
	}
	return &Engine{
		syms:    syms,
		broker:  broker,
		quotes:  quotes,
		gate:    gate,
		store:   store,
		trades:  trades,
		n:       n,
		m:       m,
		health:  health,
		replace: make(map[string]*replaceState),
		peaks:   make(map[string]float64),
		now:     time.Now,
		sleep:   sleepCtx,
		loc:     loc,
	}
}

// Run крутит внешний цикл до отмены контекста. Паника внутри цикла
// гасится: движок логирует и продолжает со следующего тика.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)

	if e.health != nil {
		e.health.SetEngineRunning(true)
		e.health.SetReady(true)
		defer e.health.SetEngineRunning(false)
	}

	logger.Info("[ENGINE] ▶️ старт цикла %s/%s против %s", e.syms.Up, e.syms.Down, e.syms.Base)
	e.n.Sendf("▶️ Движок запущен: %s / %s", e.syms.Up, e.syms.Down)

	for {
		select {
		case <-ctx.Done():
			logger.Info("[ENGINE] ⏹ остановка: %v", ctx.Err())
			e.n.Send("⏹ Движок остановлен")
			return
		default:
		}

		e.safeCycle(ctx)

		if !e.sleep(ctx, cycleSleep) {
			logger.Info("[ENGINE] ⏹ остановка: %v", ctx.Err())
			e.n.Send("⏹ Движок остановлен")
			return
		}
	}
}

func (e *Engine) Running() bool { return e.running.Load() }

func (e *Engine) safeCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[ENGINE] cycle panic: %v", r)
			e.countHold("engine_panic")
		}
	}()
	e.cycle(ctx)
}

// cycle — один проход: гейтинг, решение, сверка позиции с целью.
func (e *Engine) cycle(ctx context.Context) {
	rt := e.store.Snapshot()

	if e.m != nil {
		e.m.Cycles.Inc()
	}
	if e.health != nil {
		e.health.TouchCycle(e.now())
	}

	// 1. Сессионное окно
	session, ok := e.sessionNow(rt.Session)
	if !ok {
		e.countHold("session")
		return
	}

	// 2. Блокировки аккаунта и PDT
	acct, err := e.broker.GetAccount(ctx)
	if err != nil {
		logger.Error("[ENGINE] account: %v", err)
		e.countHold("account_error")
		return
	}
	if e.m != nil {
		e.m.Equity.Set(acct.Equity)
	}
	if acct.TradingBlocked || acct.AccountBlocked {
		logger.Error("[ENGINE] аккаунт заблокирован: trading=%v account=%v", acct.TradingBlocked, acct.AccountBlocked)
		e.countHold("account_blocked")
		return
	}
	if acct.IsMargin() && acct.Equity < pdtEquityFloor && acct.DaytradeCount >= pdtDaytradeLimit {
		logger.Info("[ENGINE] PDT-стоп: equity=%.2f daytrades=%d", acct.Equity, acct.DaytradeCount)
		e.countHold("pdt")
		return
	}

	// 3. Решение гейта
	dec := e.gate.Decide(ctx, e.gate.Inputs(ctx, rt), rt)
	if e.m != nil {
		e.m.Decisions.WithLabelValues(string(dec.Side)).Inc()
		e.m.PBlend.Set(dec.PBlend)
	}
	if e.health != nil {
		e.health.SetLastDecision(string(dec.Side))
	}

	// 4. Спред-гейт всего цикла: худшая нога решает
	maxSpread := math.Max(dec.SpreadUpBps, dec.SpreadDownBps)
	if maxSpread > float64(rt.Risk.SpreadMaxBps) {
		e.countHold("spread")
		return
	}

	// 5. Текущая позиция (инвариант: максимум одна нога)
	posUp, err := e.broker.GetPosition(ctx, e.syms.Up)
	if err != nil {
		logger.Error("[ENGINE] position %s: %v", e.syms.Up, err)
		return
	}
	posDown, err := e.broker.GetPosition(ctx, e.syms.Down)
	if err != nil {
		logger.Error("[ENGINE] position %s: %v", e.syms.Down, err)
		return
	}

	held, heldSide := heldLeg(posUp, posDown)

	// 6. Переходы состояния
	switch dec.Side {
	case signal.SideHold:
		// HOLD никогда не закрывает принудительно: выход только через флип
		if held != nil {
			e.managePosition(ctx, rt, held, session, dec)
		}

	case signal.SideUp:
		switch heldSide {
		case signal.SideUp:
			e.managePosition(ctx, rt, held, session, dec)
		case signal.SideDown:
			// флип: сперва полностью закрыть, потом открыть
			if e.closeLeg(ctx, rt, held, session, dec, models.ActionExit, 0) {
				e.openLeg(ctx, rt, e.syms.Up, session, dec)
			}
		default:
			e.openLeg(ctx, rt, e.syms.Up, session, dec)
		}

	case signal.SideDown:
		switch heldSide {
		case signal.SideDown:
			e.managePosition(ctx, rt, held, session, dec)
		case signal.SideUp:
			if e.closeLeg(ctx, rt, held, session, dec, models.ActionExit, 0) {
				e.openLeg(ctx, rt, e.syms.Down, session, dec)
			}
		default:
			e.openLeg(ctx, rt, e.syms.Down, session, dec)
		}
	}
}

func (e *Engine) countHold(reason string) {
	if e.m != nil {
		e.m.Holds.WithLabelValues(reason).Inc()
	}
}

func heldLeg(posUp, posDown *models.Position) (*models.Position, signal.Side) {
	if posUp != nil && posUp.Qty > 0 {
		return posUp, signal.SideUp
	}
	if posDown != nil && posDown.Qty > 0 {
		return posDown, signal.SideDown
	}
	return nil, signal.SideHold
}

// sleepCtx спит d либо до отмены контекста; false = контекст отменён.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
