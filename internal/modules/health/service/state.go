package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	engineRunning atomic.Bool
	lastCycleUnix atomic.Int64 // unix seconds
	lastDecision  atomic.Value // string: up / down / hold
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	s.lastDecision.Store("")
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetEngineRunning(v bool) { s.engineRunning.Store(v) }
func (s *State) EngineRunning() bool     { return s.engineRunning.Load() }

func (s *State) TouchCycle(t time.Time) { s.lastCycleUnix.Store(t.Unix()) }
func (s *State) LastCycle() time.Time {
	u := s.lastCycleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) SetLastDecision(side string) { s.lastDecision.Store(side) }
func (s *State) LastDecision() string        { return s.lastDecision.Load().(string) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
