package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"swing_bot/internal/engine"
	"swing_bot/internal/ledger"
	"swing_bot/internal/modules/alpaca"
	"swing_bot/internal/modules/config"
	"swing_bot/internal/modules/health"
	"swing_bot/internal/modules/marketdata"
	"swing_bot/internal/modules/metrics"
	"swing_bot/internal/modules/model"
	"swing_bot/internal/modules/postgres"
	"swing_bot/internal/modules/sentiment"
	"swing_bot/internal/notify"
	"swing_bot/pkg/logger"
	"swing_bot/pkg/tracing"
)

const serviceName = "swing_bot"

func main() {
	logger.SetServiceName(serviceName)
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	tracing.SetServiceName(serviceName)

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		alpaca.Module(),
		marketdata.Module(),
		model.Module(),
		sentiment.Module(),
		ledger.Module(),
		notify.Module(),
		metrics.Module(),
		health.Module(),
		engine.Module(),
		fx.Invoke(initTracing),
	)
	app.Run()
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) {
	if cfg.Jaeger.Host == "" {
		return
	}
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Jaeger.Host,
		Port: cfg.Jaeger.Port,
	})
	if err != nil {
		logger.Error("[TRACING] jaeger недоступен: %v", err)
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
}
