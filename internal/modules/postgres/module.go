package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"swing_bot/internal/modules/config"
	"swing_bot/pkg/db"
	"swing_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				if cfg.DB == "" {
					// без DSN бот живёт на CSV-журнале и без сентимента
					logger.Info("[PG] db_dsn пуст, postgres отключён")
					return nil, nil
				}

				pool, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create pool: %w", err)
				}

				if err = pool.Ping(ctx); err != nil {
					return nil, err
				}

				return db.NewPgTxManager(pool), nil
			},
		),
	)
}
