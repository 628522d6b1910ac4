package marketdata

import (
	"context"

	"go.uber.org/fx"

	"swing_bot/internal/modules/marketdata/service"
)

func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(
			service.NewClient,
		),
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go c.RunStream(ctx)
					return nil
				},
			})
		}),
	)
}
