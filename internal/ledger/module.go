package ledger

import (
	"go.uber.org/fx"

	"swing_bot/internal/modules/config"
	"swing_bot/pkg/db"
	"swing_bot/pkg/logger"
)

// Module собирает фан-аут журнала: CSV всегда, postgres и kafka — по конфигу.
func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(
			func(cfg *config.Config, txm *db.PgTxManager) (Ledger, error) {
				csvLedger, err := NewCSV(cfg.DataDir)
				if err != nil {
					return nil, err
				}
				sinks := Multi{csvLedger}

				if txm != nil {
					sinks = append(sinks, NewPg(txm))
				}

				if len(cfg.Kafka.Brokers) > 0 {
					k, err := NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
					if err != nil {
						// журнал обязателен, кафка — нет
						logger.Error("[LEDGER] kafka недоступна, едем без неё: %v", err)
					} else {
						sinks = append(sinks, k)
					}
				}

				return sinks, nil
			},
		),
	)
}
