package engine

import (
	"context"

	"github.com/bytedance/sonic"

	"swing_bot/internal/models"
	"swing_bot/internal/signal"
	"swing_bot/pkg/logger"
)

// appendTrade — журнал best-effort: сделка уже совершена, отказ записи
// не должен ронять цикл.
func (e *Engine) appendTrade(ctx context.Context, row models.TradeRow) {
	if e.trades == nil {
		return
	}
	if err := e.trades.Append(ctx, row); err != nil {
		logger.Error("[ENGINE] trade log: %v", err)
	}
}

func componentsJSON(dec signal.DecisionResult) string {
	if len(dec.Reasons) == 0 {
		return ""
	}
	data, err := sonic.Marshal(dec.Reasons)
	if err != nil {
		return ""
	}
	return string(data)
}
