package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"swing_bot/internal/models"
	"swing_bot/pkg/db"
)

// PgLedger дублирует журнал в postgres — по нему строятся выгрузки и сверка.
type PgLedger struct {
	db db.TxManager
}

func NewPg(txm db.TxManager) *PgLedger {
	return &PgLedger{db: txm}
}

func (l *PgLedger) Append(ctx context.Context, row models.TradeRow) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Append: %w", err)
		}
	}()

	return l.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO trades
			   (ts, action, symbol, qty, px, stop_limit, cash_before, cash_after,
			    prob_up, sentiment, p80_threshold, session, slippage_bps, spread_bps,
			    decision_components, note)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
			row.TS, row.Action, row.Symbol, row.Qty, row.Price,
			row.StopLimit, row.CashBefore, row.CashAfter,
			row.ProbUp, row.Sentiment, row.P80Threshold,
			row.Session, row.SlippageBps, row.SpreadBps,
			row.ComponentsJSON, row.Note,
		)
		return err
	})
}
