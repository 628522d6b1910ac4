package config

import (
	"go.uber.org/fx"

	"swing_bot/internal/runtime"
)

// Module регистрируем конфиг и рантайм-стор как fx-провайдеры.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
			func(cfg *Config) *runtime.Store {
				return runtime.NewStore(cfg.DefaultRuntime())
			},
		),
	)
}
