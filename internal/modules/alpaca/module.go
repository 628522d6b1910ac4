package alpaca

import (
	"go.uber.org/fx"

	"swing_bot/internal/modules/alpaca/service"
)

func Module() fx.Option {
	return fx.Module("alpaca",
		fx.Provide(
			service.NewClient,
		),
	)
}
