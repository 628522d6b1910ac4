package pricing

import "math"

// SentinelSpreadBps возвращается для битых котировок: заведомо больше любого
// разумного spread_max_bps, поэтому такая котировка гарантированно блокирует вход.
const SentinelSpreadBps = 999999.0

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

func Bps(x int) float64 {
	return float64(x) / 10_000.0
}

// SpreadBps — спред в базисных пунктах от мида.
func SpreadBps(bid, ask float64) float64 {
	if bid <= 0 || ask <= 0 {
		return SentinelSpreadBps
	}
	mid := (bid + ask) / 2.0
	return ((ask - bid) / mid) * 10_000.0
}

// EntryLimit — лимитная цена входа/выхода.
//
//	BUY  = min(ask*(1+s), last*(1+s))
//	SELL = max(bid*(1-s), last*(1-s))
//
// Берём более консервативную из котировки и last: не гонимся за протухшей
// котировкой и не переплачиваем за кросс.
func EntryLimit(side Side, bid, ask, last float64, slippageBps int) float64 {
	s := Bps(slippageBps)
	if side == Buy {
		return math.Min(ask*(1+s), last*(1+s))
	}
	return math.Max(bid*(1-s), last*(1-s))
}

// StopLimit — стоп и лимит защитного стоп-лимита от средней цены входа.
//
//	stop  = avg*(1-stopLossPct)
//	limit = stop*(1-offsetBps)
//
// Для положительных входов limit < stop < avg.
func StopLimit(entryAvg, stopLossPct float64, limitOffsetBps int) (stop, limit float64) {
	stop = entryAvg * (1 - stopLossPct)
	limit = stop * (1 - Bps(limitOffsetBps))
	return round4(stop), round4(limit)
}

func round4(x float64) float64 {
	return math.Round(x*10_000) / 10_000
}
