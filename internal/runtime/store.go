package runtime

import (
	"sync"

	"swing_bot/internal/models"
)

// Store — владелец рантайм-конфига. Снаружи (телеграм-команды, админка)
// значения можно менять целиком или точечно, движок и блендер берут
// по одному снапшоту на цикл. Никакого скрытого глобального стейта.
type Store struct {
	mu sync.RWMutex
	rt models.Runtime
}

func NewStore(initial models.Runtime) *Store {
	return &Store{rt: initial}
}

// Snapshot — копия по значению; читающая сторона дальше работает без лока.
func (s *Store) Snapshot() models.Runtime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rt
}

func (s *Store) Set(rt models.Runtime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rt = rt
}

// Update — точечная правка под локом.
func (s *Store) Update(fn func(rt *models.Runtime)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.rt)
}

func (s *Store) SetSessions(toggles models.SessionToggles) {
	s.Update(func(rt *models.Runtime) { rt.Session = toggles })
}

func (s *Store) SetGate(gate float64) {
	s.Update(func(rt *models.Runtime) { rt.GateThreshold = gate })
}
