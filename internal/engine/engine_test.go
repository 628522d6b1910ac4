package engine

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"swing_bot/internal/models"
	metricssvc "swing_bot/internal/modules/metrics/service"
	"swing_bot/internal/runtime"
	"swing_bot/internal/signal"
	"swing_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// ---- фейки ----

type fakeBroker struct {
	acct      models.Account
	positions map[string]*models.Position
	orders    map[string]*models.Order

	calls []string

	// новая лимитка получает этот статус; filled заполняет FilledQty=qty
	submitStatus models.OrderStatus
	// через столько опросов GetOrder висящий ордер превращается в filled
	fillAfterPolls int
	// частичный филл на каждое FOK-окно
	fokFillPerWindow float64

	polls  int
	nextID int
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		acct:         models.Account{Equity: 50_000, Cash: 10_000, SettledCash: 10_000},
		positions:    map[string]*models.Position{},
		orders:       map[string]*models.Order{},
		submitStatus: models.StatusFilled,
	}
}

func (b *fakeBroker) record(format string, args ...any) {
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

func (b *fakeBroker) GetAccount(context.Context) (models.Account, error) {
	return b.acct, nil
}

func (b *fakeBroker) GetPosition(_ context.Context, symbol string) (*models.Position, error) {
	if p, ok := b.positions[symbol]; ok && p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (b *fakeBroker) SubmitLimit(_ context.Context, symbol string, qty float64, side models.OrderSide, limitPrice float64, extended bool) (models.Order, error) {
	b.nextID++
	ord := models.Order{
		ID:         fmt.Sprintf("o%d", b.nextID),
		Symbol:     symbol,
		Side:       side,
		Status:     b.submitStatus,
		Qty:        qty,
		LimitPrice: limitPrice,
	}
	if ord.Status == models.StatusFilled {
		ord.FilledQty = qty
		b.applyFill(ord)
	}
	b.orders[ord.ID] = &ord
	b.record("submit:%s:%s:ext=%v", side, symbol, extended)
	return ord, nil
}

func (b *fakeBroker) applyFill(ord models.Order) {
	if ord.Side == models.SideBuy {
		b.positions[ord.Symbol] = &models.Position{
			Symbol:        ord.Symbol,
			Qty:           ord.FilledQty,
			AvgEntryPrice: ord.LimitPrice,
		}
		return
	}
	delete(b.positions, ord.Symbol)
}

func (b *fakeBroker) SubmitStopLimit(_ context.Context, symbol string, qty float64, side models.OrderSide, stopPrice, limitPrice float64) (models.Order, error) {
	b.nextID++
	b.record("stop:%s:%s", side, symbol)
	return models.Order{ID: fmt.Sprintf("o%d", b.nextID), Status: models.StatusNew}, nil
}

func (b *fakeBroker) ReplaceLimit(_ context.Context, orderID string, newLimitPrice float64) (models.Order, error) {
	old, ok := b.orders[orderID]
	if !ok {
		return models.Order{}, fmt.Errorf("no order %s", orderID)
	}
	b.nextID++
	repl := *old
	repl.ID = fmt.Sprintf("o%d", b.nextID)
	repl.LimitPrice = newLimitPrice
	b.orders[repl.ID] = &repl
	old.Status = models.StatusReplaced
	b.record("replace:%s", orderID)
	return repl, nil
}

func (b *fakeBroker) CancelOrder(_ context.Context, orderID string) error {
	if ord, ok := b.orders[orderID]; ok && !ord.Status.TerminalForManage() {
		ord.Status = models.StatusCanceled
		if b.fokFillPerWindow > 0 {
			ord.FilledQty = b.fokFillPerWindow
			if ord.FilledQty > ord.Qty {
				ord.FilledQty = ord.Qty
			}
		}
	}
	b.record("cancel:%s", orderID)
	return nil
}

func (b *fakeBroker) GetOrder(_ context.Context, orderID string) (models.Order, error) {
	ord, ok := b.orders[orderID]
	if !ok {
		return models.Order{}, fmt.Errorf("no order %s", orderID)
	}
	if !ord.Status.TerminalForManage() && ord.Status != models.StatusReplaced {
		b.polls++
		if b.fillAfterPolls > 0 && b.polls >= b.fillAfterPolls {
			ord.Status = models.StatusFilled
			ord.FilledQty = ord.Qty
			b.applyFill(*ord)
		}
	}
	return *ord, nil
}

type fakeQuotes struct {
	quotes map[string]models.Quote
}

func (q *fakeQuotes) GetQuote(_ context.Context, symbol string) (models.Quote, error) {
	if v, ok := q.quotes[symbol]; ok {
		v.Symbol = symbol
		return v, nil
	}
	return models.Quote{}, fmt.Errorf("no quote %s", symbol)
}

type fakeDecider struct {
	res   signal.DecisionResult
	calls int
}

func (d *fakeDecider) Inputs(context.Context, models.Runtime) signal.DecisionInputs {
	return signal.DecisionInputs{}
}

func (d *fakeDecider) Decide(context.Context, signal.DecisionInputs, models.Runtime) signal.DecisionResult {
	d.calls++
	return d.res
}

type nopNotifier struct{}

func (nopNotifier) Send(string)          {}
func (nopNotifier) Sendf(string, ...any) {}

// testClock — ручные часы: sleep двигает время вместо ожидания.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) sleep(_ context.Context, d time.Duration) bool {
	c.t = c.t.Add(d)
	return true
}

// ---- сборка ----

func testRuntime() models.Runtime {
	return models.Runtime{
		GateThreshold:     0.55,
		WModel:            0.7,
		WSent:             0.3,
		SpreadWideHintBps: 40,
		GateBuffer:        0.02,
		Interval:          "5m",
		Risk: models.RiskSettings{
			StopLossPct:         0.025,
			StopLimitOffsetBps:  10,
			SlippageBps:         30,
			SpreadMaxBps:        75,
			ReplaceBpsThreshold: 15,
			ReplaceMinInterval:  2500 * time.Millisecond,
			ReplaceMaxCount:     10,
			ReplaceCooldownMin:  10 * time.Second,
			ReplaceCooldownMax:  20 * time.Second,
			FokWindow:           800 * time.Millisecond,
			FokMaxWindows:       3,
		},
		Session: models.SessionToggles{Pre: true, RTH: true, After: false},
	}
}

// понедельник 2026-03-02, 12:00 по Нью-Йорку (EST, RTH)
func rthMoment(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	return time.Date(2026, 3, 2, 12, 0, 0, 0, loc)
}

func newTestEngine(t *testing.T, broker *fakeBroker, quotes *fakeQuotes, dec *fakeDecider) (*Engine, *testClock) {
	t.Helper()
	e := New(
		signal.Symbols{Base: "TSLA", Up: "TSLL", Down: "TSDD"},
		broker,
		quotes,
		dec,
		runtime.NewStore(testRuntime()),
		nil,
		nopNotifier{},
		metricssvc.New(),
		nil,
	)
	clock := &testClock{t: rthMoment(t)}
	e.now = clock.now
	e.sleep = clock.sleep
	return e, clock
}

func goodQuotes() *fakeQuotes {
	return &fakeQuotes{quotes: map[string]models.Quote{
		"TSLA": {Bid: 250.00, Ask: 250.10, Last: 250.05},
		"TSLL": {Bid: 10.00, Ask: 10.01, Last: 10.00},
		"TSDD": {Bid: 20.00, Ask: 20.02, Last: 20.01},
	}}
}

func upDecision() signal.DecisionResult {
	return signal.DecisionResult{
		Side:          signal.SideUp,
		Conviction:    0.8,
		Gate:          0.55,
		PUp:           signal.Sample{Value: 0.62},
		PSent:         signal.Sample{Value: 0.55},
		PBlend:        0.6,
		SpreadUpBps:   10,
		SpreadDownBps: 10,
	}
}

func countPrefix(calls []string, prefix string) int {
	n := 0
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// ---- тесты ----

func TestCycleOpensUpLegFromFlat(t *testing.T) {
	broker := newFakeBroker()
	dec := &fakeDecider{res: upDecision()}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)

	e.cycle(context.Background())

	if got := countPrefix(broker.calls, "submit:buy:TSLL"); got != 1 {
		t.Fatalf("ожидали 1 покупку TSLL, got %d; calls=%v", got, broker.calls)
	}
	if got := countPrefix(broker.calls, "stop:sell:TSLL"); got != 1 {
		t.Fatalf("защитный стоп не выставлен; calls=%v", broker.calls)
	}
	pos := broker.positions["TSLL"]
	if pos == nil || pos.Qty < 1 {
		t.Fatalf("позиция не открыта: %+v", pos)
	}
	if _, ok := e.peaks["TSLL"]; !ok {
		t.Fatal("пик трейлинга не инициализирован")
	}
}

func TestFlipClosesDownBeforeOpeningUp(t *testing.T) {
	broker := newFakeBroker()
	broker.positions["TSDD"] = &models.Position{Symbol: "TSDD", Qty: 100, AvgEntryPrice: 20.50}
	dec := &fakeDecider{res: upDecision()}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)

	e.cycle(context.Background())

	sellIdx, buyIdx := -1, -1
	for i, c := range broker.calls {
		if strings.HasPrefix(c, "submit:sell:TSDD") && sellIdx == -1 {
			sellIdx = i
		}
		if strings.HasPrefix(c, "submit:buy:TSLL") && buyIdx == -1 {
			buyIdx = i
		}
	}
	if sellIdx == -1 || buyIdx == -1 {
		t.Fatalf("флип не состоялся: calls=%v", broker.calls)
	}
	if sellIdx > buyIdx {
		t.Fatalf("покупка раньше закрытия: calls=%v", broker.calls)
	}
	if broker.positions["TSDD"] != nil {
		t.Fatal("нога TSDD осталась после флипа")
	}
}

func TestFlipAbortsWhenCloseFails(t *testing.T) {
	broker := newFakeBroker()
	broker.positions["TSDD"] = &models.Position{Symbol: "TSDD", Qty: 100, AvgEntryPrice: 20.50}
	// продажа зависает и отменяется без филла: нога остаётся
	broker.submitStatus = models.StatusRejected
	dec := &fakeDecider{res: upDecision()}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)

	e.cycle(context.Background())

	if got := countPrefix(broker.calls, "submit:buy:TSLL"); got != 0 {
		t.Fatalf("открыли вторую ногу при незакрытой первой: calls=%v", broker.calls)
	}
}

func TestHoldNeverForceCloses(t *testing.T) {
	broker := newFakeBroker()
	broker.positions["TSLL"] = &models.Position{Symbol: "TSLL", Qty: 100, AvgEntryPrice: 10.00}
	dec := &fakeDecider{res: signal.DecisionResult{Side: signal.SideHold, SpreadUpBps: 10, SpreadDownBps: 10}}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)
	e.peaks["TSLL"] = 10.00

	e.cycle(context.Background())

	if got := countPrefix(broker.calls, "submit:sell"); got != 0 {
		t.Fatalf("HOLD закрыл позицию: calls=%v", broker.calls)
	}
	if broker.positions["TSLL"] == nil {
		t.Fatal("позиция исчезла на HOLD")
	}
}

func TestSpreadGateSkipsCycle(t *testing.T) {
	broker := newFakeBroker()
	res := upDecision()
	res.SpreadUpBps = 10
	res.SpreadDownBps = 200 // худшая нога решает
	dec := &fakeDecider{res: res}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)

	e.cycle(context.Background())

	if len(broker.calls) != 0 {
		t.Fatalf("широкий спред не заблокировал цикл: calls=%v", broker.calls)
	}
}

func TestPDTRestrictionSkipsCycle(t *testing.T) {
	broker := newFakeBroker()
	broker.acct = models.Account{
		Equity:                20_000,
		SettledCash:           10_000,
		DaytradingBuyingPower: 80_000,
		DaytradeCount:         3,
	}
	dec := &fakeDecider{res: upDecision()}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)

	e.cycle(context.Background())

	if dec.calls != 0 {
		t.Fatal("PDT-стоп должен срабатывать до решения гейта")
	}
	if len(broker.calls) != 0 {
		t.Fatalf("PDT-стоп не заблокировал цикл: calls=%v", broker.calls)
	}
}

func TestBlockedAccountSkipsCycle(t *testing.T) {
	broker := newFakeBroker()
	broker.acct.TradingBlocked = true
	dec := &fakeDecider{res: upDecision()}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)

	e.cycle(context.Background())

	if dec.calls != 0 || len(broker.calls) != 0 {
		t.Fatalf("заблокированный аккаунт торговал: calls=%v", broker.calls)
	}
}

func TestSessionWindowSkipsWeekend(t *testing.T) {
	broker := newFakeBroker()
	dec := &fakeDecider{res: upDecision()}
	e, clock := newTestEngine(t, broker, goodQuotes(), dec)
	clock.t = clock.t.AddDate(0, 0, 5) // суббота

	e.cycle(context.Background())

	if dec.calls != 0 {
		t.Fatal("в выходной решений быть не должно")
	}
}

func TestQtyBelowOneIsSkipped(t *testing.T) {
	broker := newFakeBroker()
	broker.acct.SettledCash = 5 // на одну акцию TSLL (~10) не хватает
	dec := &fakeDecider{res: upDecision()}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)

	e.cycle(context.Background())

	if got := countPrefix(broker.calls, "submit:"); got != 0 {
		t.Fatalf("qty<1 должен молча пропускаться: calls=%v", broker.calls)
	}
}

func TestReplaceThrottleRespectsMinInterval(t *testing.T) {
	broker := newFakeBroker()
	broker.submitStatus = models.StatusAccepted
	broker.fillAfterPolls = 30
	quotes := goodQuotes()
	// котировка далеко от висящей цены: порог по bps всегда пройден
	quotes.quotes["TSLL"] = models.Quote{Bid: 10.50, Ask: 10.51, Last: 10.50}
	dec := &fakeDecider{}
	e, _ := newTestEngine(t, broker, quotes, dec)

	rt := testRuntime()
	ord, _ := broker.SubmitLimit(context.Background(), "TSLL", 100, models.SideBuy, 10.00, false)
	final := e.manageOpenLimit(context.Background(), rt, ord, "TSLL", models.SideBuy)

	if !final.Status.TerminalForManage() {
		t.Fatalf("менеджмент закончился не терминально: %+v", final)
	}
	// 30 опросов по 250ms = 7.5s; интервал 2.5s допускает перегонки на
	// ~0s, ~2.5s, ~5s — не больше четырёх, без троттлинга было бы ~30
	got := countPrefix(broker.calls, "replace:")
	if got == 0 {
		t.Fatal("ни одной перегонки при уехавшей цене")
	}
	if got > 4 {
		t.Fatalf("троттлинг не работает: %d перегонок, calls=%v", got, broker.calls)
	}
	if len(e.replace) != 0 {
		t.Fatalf("состояние перегонки не очищено: %v", e.replace)
	}
}

func TestReplaceSmallMoveDoesNotReplace(t *testing.T) {
	broker := newFakeBroker()
	broker.submitStatus = models.StatusAccepted
	broker.fillAfterPolls = 10
	dec := &fakeDecider{}
	quotes := goodQuotes() // want ~10.04 против resting 10.03 — меньше 15 bps
	e, _ := newTestEngine(t, broker, quotes, dec)

	rt := testRuntime()
	ord, _ := broker.SubmitLimit(context.Background(), "TSLL", 100, models.SideBuy, 10.03, false)
	e.manageOpenLimit(context.Background(), rt, ord, "TSLL", models.SideBuy)

	if got := countPrefix(broker.calls, "replace:"); got != 0 {
		t.Fatalf("перегонка при движении меньше порога: calls=%v", broker.calls)
	}
}

func TestReplaceCooldownAfterMaxCount(t *testing.T) {
	broker := newFakeBroker()
	broker.submitStatus = models.StatusAccepted
	broker.fillAfterPolls = 20
	quotes := goodQuotes()
	quotes.quotes["TSLL"] = models.Quote{Bid: 10.50, Ask: 10.51, Last: 10.50}
	dec := &fakeDecider{}
	e, _ := newTestEngine(t, broker, quotes, dec)

	rt := testRuntime()
	rt.Risk.ReplaceMinInterval = 0
	rt.Risk.ReplaceMaxCount = 2
	rt.Risk.ReplaceCooldownMin = 10 * time.Second // 40 опросов

	ord, _ := broker.SubmitLimit(context.Background(), "TSLL", 100, models.SideBuy, 10.00, false)
	e.manageOpenLimit(context.Background(), rt, ord, "TSLL", models.SideBuy)

	// 20 опросов по 250ms = 5s < кулдауна: ровно ReplaceMaxCount перегонок
	if got := countPrefix(broker.calls, "replace:"); got != 2 {
		t.Fatalf("ожидали 2 перегонки до кулдауна, got %d; calls=%v", got, broker.calls)
	}
}

func TestManageOpenLimitStopsOnContextCancel(t *testing.T) {
	broker := newFakeBroker()
	broker.submitStatus = models.StatusAccepted // никогда не наполнится
	dec := &fakeDecider{}
	e, clock := newTestEngine(t, broker, goodQuotes(), dec)

	cancelAfter := 5
	e.sleep = func(ctx context.Context, d time.Duration) bool {
		clock.t = clock.t.Add(d)
		cancelAfter--
		return cancelAfter > 0
	}

	rt := testRuntime()
	ord, _ := broker.SubmitLimit(context.Background(), "TSLL", 100, models.SideBuy, 10.00, false)
	final := e.manageOpenLimit(context.Background(), rt, ord, "TSLL", models.SideBuy)

	if final.Status.TerminalForManage() {
		t.Fatal("ордер не должен был дойти до терминального статуса")
	}
	if len(e.replace) != 0 {
		t.Fatal("состояние перегонки не очищено при отмене")
	}
}

func TestEmulatedFokWindowsAndPartials(t *testing.T) {
	broker := newFakeBroker()
	broker.submitStatus = models.StatusAccepted
	broker.fokFillPerWindow = 2
	dec := &fakeDecider{}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)

	rt := testRuntime()
	filled, limit := e.emulatedFok(context.Background(), rt, "TSLL", 10, models.SideBuy)

	if got := countPrefix(broker.calls, "submit:buy:TSLL:ext=true"); got != rt.Risk.FokMaxWindows {
		t.Fatalf("ожидали %d FOK-окон, got %d; calls=%v", rt.Risk.FokMaxWindows, got, broker.calls)
	}
	if got := countPrefix(broker.calls, "cancel:"); got != rt.Risk.FokMaxWindows {
		t.Fatalf("остаток не снимался; calls=%v", broker.calls)
	}
	// 3 окна по 2 акции: финальный частичный филл принимается как есть
	if filled != 6 {
		t.Fatalf("filled=%v, ожидали 6", filled)
	}
	if limit <= 0 {
		t.Fatalf("limit=%v", limit)
	}
}

func TestEmulatedFokFullFillStopsEarly(t *testing.T) {
	broker := newFakeBroker()
	dec := &fakeDecider{}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)

	rt := testRuntime()
	filled, _ := e.emulatedFok(context.Background(), rt, "TSLL", 10, models.SideBuy)

	if filled != 10 {
		t.Fatalf("filled=%v, ожидали 10", filled)
	}
	if got := countPrefix(broker.calls, "submit:buy:TSLL"); got != 1 {
		t.Fatalf("полный филл первым окном должен завершать серию: calls=%v", broker.calls)
	}
}

func TestTakeProfitP80(t *testing.T) {
	broker := newFakeBroker()
	broker.positions["TSLL"] = &models.Position{Symbol: "TSLL", Qty: 100, AvgEntryPrice: 10.00}
	quotes := goodQuotes()
	res := upDecision()
	dec := &fakeDecider{res: res}
	e, _ := newTestEngine(t, broker, quotes, dec)

	rt := testRuntime()
	pos := &models.Position{Symbol: "TSLL", Qty: 100, AvgEntryPrice: 10.00}

	// разгон: last=12 задирает пик, p80=11.6, выхода нет
	quotes.quotes["TSLL"] = models.Quote{Bid: 11.99, Ask: 12.01, Last: 12.00}
	e.managePosition(context.Background(), rt, pos, SessionRTH, res)
	if got := countPrefix(broker.calls, "submit:sell"); got != 0 {
		t.Fatalf("выход до отката: calls=%v", broker.calls)
	}
	if e.peaks["TSLL"] != 12.00 {
		t.Fatalf("пик=%v, ожидали 12", e.peaks["TSLL"])
	}

	// откат к 11.5 <= p80(11.6): полный выход
	quotes.quotes["TSLL"] = models.Quote{Bid: 11.49, Ask: 11.51, Last: 11.50}
	e.managePosition(context.Background(), rt, pos, SessionRTH, res)
	if got := countPrefix(broker.calls, "submit:sell:TSLL"); got != 1 {
		t.Fatalf("TP80 не сработал: calls=%v", broker.calls)
	}
	if _, ok := e.peaks["TSLL"]; ok {
		t.Fatal("пик не очищен после выхода")
	}
}

func TestTakeProfitNeedsPeakAboveEntry(t *testing.T) {
	broker := newFakeBroker()
	quotes := goodQuotes()
	res := upDecision()
	dec := &fakeDecider{res: res}
	e, _ := newTestEngine(t, broker, quotes, dec)

	rt := testRuntime()
	pos := &models.Position{Symbol: "TSLL", Qty: 100, AvgEntryPrice: 10.00}

	// цена ниже входа: пик не выше avg, выхода нет
	quotes.quotes["TSLL"] = models.Quote{Bid: 9.49, Ask: 9.51, Last: 9.50}
	e.managePosition(context.Background(), rt, pos, SessionRTH, res)

	if got := countPrefix(broker.calls, "submit:sell"); got != 0 {
		t.Fatalf("выход без прибыльного пика: calls=%v", broker.calls)
	}
}

func TestSessionLabels(t *testing.T) {
	broker := newFakeBroker()
	dec := &fakeDecider{}
	e, clock := newTestEngine(t, broker, goodQuotes(), dec)
	loc := clock.t.Location()

	cases := []struct {
		hour, min int
		toggles   models.SessionToggles
		label     string
		ok        bool
	}{
		{5, 0, models.SessionToggles{Pre: true}, SessionPre, true},
		{5, 0, models.SessionToggles{RTH: true}, SessionPre, false},
		{9, 30, models.SessionToggles{RTH: true}, SessionRTH, true},
		{15, 59, models.SessionToggles{RTH: true}, SessionRTH, true},
		{16, 0, models.SessionToggles{After: true}, SessionAfter, true},
		{16, 0, models.SessionToggles{RTH: true}, SessionAfter, false},
		{21, 0, models.SessionToggles{Pre: true, RTH: true, After: true}, "", false},
		{3, 0, models.SessionToggles{Pre: true, RTH: true, After: true}, "", false},
	}
	for _, tc := range cases {
		clock.t = time.Date(2026, 3, 2, tc.hour, tc.min, 0, 0, loc)
		label, ok := e.sessionNow(tc.toggles)
		if ok != tc.ok || (ok && label != tc.label) {
			t.Errorf("%02d:%02d %+v: got (%q,%v), want (%q,%v)",
				tc.hour, tc.min, tc.toggles, label, ok, tc.label, tc.ok)
		}
	}
}

func TestCyclePanicIsContained(t *testing.T) {
	broker := newFakeBroker()
	dec := &fakeDecider{res: upDecision()}
	e, _ := newTestEngine(t, broker, goodQuotes(), dec)
	e.quotes = nil // паника внутри цикла

	e.safeCycle(context.Background()) // не должен ронять тест
}
