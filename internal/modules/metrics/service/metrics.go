package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics — счётчики движка для /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	Cycles    prometheus.Counter
	Decisions *prometheus.CounterVec
	Holds     *prometheus.CounterVec
	Orders    *prometheus.CounterVec
	Replaces  prometheus.Counter
	Equity    prometheus.Gauge
	PBlend    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bot_cycles_total",
			Help: "Executor cycles completed",
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_decisions_total",
			Help: "Gate decisions by side",
		}, []string{"side"}),
		Holds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_holds_total",
			Help: "HOLD decisions by reason",
		}, []string{"reason"}),
		Orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders submitted by side",
		}, []string{"side"}),
		Replaces: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bot_order_replaces_total",
			Help: "Resting limit price replacements",
		}),
		Equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bot_equity_usd",
			Help: "Account equity snapshot",
		}),
		PBlend: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bot_p_blend",
			Help: "Last blended probability",
		}),
	}

	m.Registry.MustRegister(
		m.Cycles, m.Decisions, m.Holds, m.Orders, m.Replaces, m.Equity, m.PBlend,
	)
	return m
}
