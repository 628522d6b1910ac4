package models

import "time"

// Quote — NBBO-срез по одному тикеру. bid<=ask для валидных данных,
// невалидные (<=0) котировки не ошибка: прайсер вернёт сентинел-спред.
type Quote struct {
	Symbol string
	Bid    float64
	Ask    float64
	Last   float64
	TS     time.Time
}

func (q Quote) Valid() bool {
	return q.Bid > 0 && q.Ask > 0 && q.Last > 0
}
