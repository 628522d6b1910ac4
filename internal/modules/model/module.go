package model

import (
	"go.uber.org/fx"

	"swing_bot/internal/modules/model/service"
)

func Module() fx.Option {
	return fx.Module("model",
		fx.Provide(
			service.NewClient,
		),
	)
}
