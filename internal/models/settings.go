package models

import "time"

// RiskSettings — иммутабельный набор риск-параметров на один снапшот.
type RiskSettings struct {
	StopLossPct        float64
	StopLimitOffsetBps int
	SlippageBps        int
	SpreadMaxBps       int

	ReplaceBpsThreshold int
	ReplaceMinInterval  time.Duration
	ReplaceMaxCount     int
	// ReplaceCooldown — диапазон кулдауна; используем нижнюю границу.
	ReplaceCooldownMin time.Duration
	ReplaceCooldownMax time.Duration

	FokWindow     time.Duration
	FokMaxWindows int
}

type SessionToggles struct {
	Pre   bool
	RTH   bool
	After bool
}

// Runtime — снапшот рантайм-конфига на один тик/решение.
// Вместо глобального мутабельного синглтона: движок и блендер берут
// по снапшоту за цикл, «читай последнее значение на тик» сохраняется.
type Runtime struct {
	GateThreshold float64
	WModel        float64
	WSent         float64

	SpreadWideHintBps float64
	GateBuffer        float64

	Interval string
	Risk     RiskSettings
	Session  SessionToggles
}
