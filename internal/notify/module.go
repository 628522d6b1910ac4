package notify

import (
	"go.uber.org/fx"

	"swing_bot/internal/modules/config"
	"swing_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			func(cfg *config.Config) Notifier {
				if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
					return NewStdout()
				}
				t, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
				if err != nil {
					logger.Error("[NOTIFY] telegram недоступен, fallback в stdout: %v", err)
					return NewStdout()
				}
				return t
			},
		),
	)
}
