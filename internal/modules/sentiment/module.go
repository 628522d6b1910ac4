package sentiment

import (
	"go.uber.org/fx"

	"swing_bot/internal/modules/sentiment/service"
	"swing_bot/pkg/db"
)

func Module() fx.Option {
	return fx.Module("sentiment",
		fx.Provide(
			func(txm *db.PgTxManager) *service.Store {
				if txm == nil {
					return service.NewStore(nil)
				}
				return service.NewStore(txm)
			},
		),
	)
}
