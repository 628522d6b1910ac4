package ledger

import (
	"context"

	"swing_bot/internal/models"
	"swing_bot/pkg/logger"
)

// Ledger — append-only журнал сделок. Запись по одной строке на действие.
type Ledger interface {
	Append(ctx context.Context, row models.TradeRow) error
}

// Multi раскладывает строку по всем приёмникам. Отказ одного приёмника не
// мешает остальным: журнал best-effort, сделка уже совершена.
type Multi []Ledger

func (m Multi) Append(ctx context.Context, row models.TradeRow) error {
	var firstErr error
	for _, l := range m {
		if err := l.Append(ctx, row); err != nil {
			logger.Error("[LEDGER] append: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
