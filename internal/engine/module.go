package engine

import (
	"context"

	"go.uber.org/fx"

	"swing_bot/internal/ledger"
	alpacasvc "swing_bot/internal/modules/alpaca/service"
	"swing_bot/internal/modules/config"
	healthsvc "swing_bot/internal/modules/health/service"
	mdsvc "swing_bot/internal/modules/marketdata/service"
	metricssvc "swing_bot/internal/modules/metrics/service"
	modelsvc "swing_bot/internal/modules/model/service"
	sentsvc "swing_bot/internal/modules/sentiment/service"
	"swing_bot/internal/notify"
	"swing_bot/internal/runtime"
	"swing_bot/internal/signal"
)

// Module собирает гейт и движок из клиентов и запускает цикл фоном.
func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			func(cfg *config.Config) signal.Symbols {
				return signal.Symbols{
					Base: cfg.BaseSymbol,
					Up:   cfg.UpSymbol,
					Down: cfg.DownSymbol,
				}
			},
			func(
				syms signal.Symbols,
				model *modelsvc.Client,
				sentiment *sentsvc.Store,
				md *mdsvc.Client,
			) *signal.Service {
				return signal.NewService(syms, model, sentiment, md, md)
			},
			func(
				syms signal.Symbols,
				broker *alpacasvc.Client,
				md *mdsvc.Client,
				gate *signal.Service,
				store *runtime.Store,
				trades ledger.Ledger,
				n notify.Notifier,
				m *metricssvc.Metrics,
				health *healthsvc.State,
			) *Engine {
				return New(syms, broker, md, gate, store, trades, n, m, health)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, e *Engine, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go e.Run(ctx)
					return nil
				},
			})
		}),
	)
}
