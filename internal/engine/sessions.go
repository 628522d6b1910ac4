package engine

import (
	"time"

	"swing_bot/internal/models"
)

const (
	SessionPre   = "pre"
	SessionRTH   = "rth"
	SessionAfter = "after"
)

// sessionNow — метка текущего торгового окна по Нью-Йорку.
// pre 04:00–09:30, rth 09:30–16:00, after 16:00–20:00; выходные закрыты.
// ok=false — вне всех включённых окон, цикл пропускается.
func (e *Engine) sessionNow(t models.SessionToggles) (string, bool) {
	now := e.now().In(e.loc)
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return "", false
	}

	minutes := now.Hour()*60 + now.Minute()
	switch {
	case minutes >= 4*60 && minutes < 9*60+30:
		return SessionPre, t.Pre
	case minutes >= 9*60+30 && minutes < 16*60:
		return SessionRTH, t.RTH
	case minutes >= 16*60 && minutes < 20*60:
		return SessionAfter, t.After
	}
	return "", false
}
