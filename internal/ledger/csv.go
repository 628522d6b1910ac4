package ledger

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"swing_bot/internal/models"
)

var csvHeader = []string{
	"ts", "action", "symbol", "qty", "px",
	"entry_limit", "exit_limit", "stop_limit", "cash_before", "cash_after",
	"prob_up", "sentiment", "p80_threshold",
	"session", "slippage_bps_used", "spread_bps", "decision_components_json", "note",
}

// CSVLedger — основной журнал: файл trades.csv в каталоге данных.
type CSVLedger struct {
	mu   sync.Mutex
	path string
}

func NewCSV(dataDir string) (*CSVLedger, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	path := filepath.Join(dataDir, "trades.csv")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrap(err, "create trades.csv")
		}
		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, "write header")
		}
		w.Flush()
		if err := f.Close(); err != nil {
			return nil, errors.Wrap(err, "close trades.csv")
		}
	}

	return &CSVLedger{path: path}, nil
}

func (l *CSVLedger) Append(_ context.Context, row models.TradeRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open trades.csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvRecord(row)); err != nil {
		return errors.Wrap(err, "write row")
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush row")
}

func csvRecord(row models.TradeRow) []string {
	return []string{
		row.TS.Format(time.RFC3339),
		row.Action,
		row.Symbol,
		fmtF(row.Qty),
		fmtF(row.Price),
		fmtOpt(row.EntryLimit),
		fmtOpt(row.ExitLimit),
		fmtOpt(row.StopLimit),
		fmtOpt(row.CashBefore),
		fmtOpt(row.CashAfter),
		fmtOpt(row.ProbUp),
		fmtOpt(row.Sentiment),
		fmtOpt(row.P80Threshold),
		row.Session,
		strconv.Itoa(row.SlippageBps),
		fmtOpt(row.SpreadBps),
		row.ComponentsJSON,
		row.Note,
	}
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// опциональные колонки: ноль — «не заполнено»
func fmtOpt(v float64) string {
	if v == 0 {
		return ""
	}
	return fmtF(v)
}
