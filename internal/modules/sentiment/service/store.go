package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"swing_bot/pkg/db"
)

// дневной скор старше этого окна считаем протухшим
const maxAge = 3 * 24 * time.Hour

// Store читает последний дневной сентимент из postgres.
// Сбор и скоринг новостей пишет в эту таблицу отдельный процесс.
type Store struct {
	db db.TxManager
}

func NewStore(txm db.TxManager) *Store {
	return &Store{db: txm}
}

// LatestDailySentiment — последний daily_score в [-1,1]; ok=false если
// стора нет, строка отсутствует или протухла.
func (s *Store) LatestDailySentiment(ctx context.Context) (score float64, ok bool, err error) {
	if s.db == nil {
		return 0, false, nil
	}
	defer func() {
		if err != nil {
			err = fmt.Errorf("sentiment.LatestDailySentiment: %w", err)
		}
	}()

	var asOf time.Time
	row := s.db.Conn().QueryRow(ctx,
		`SELECT daily_score, as_of FROM sentiment_daily ORDER BY as_of DESC LIMIT 1`)
	if err := row.Scan(&score, &asOf); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}

	if time.Since(asOf) > maxAge {
		return 0, false, nil
	}
	return score, true, nil
}
