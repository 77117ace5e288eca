package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrifleet/internal/domain/models"
)

const ledgerTimestamp = "2006-01-02 15:04:05"

// Ledger records fleet operations as spreadsheet rows.
type Ledger struct {
	repo   Repository
	logger *zap.Logger
}

// NewLedger wraps a row repository.
func NewLedger(repo Repository, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{repo: repo, logger: logger}
}

// Append writes one ledger row.
func (l *Ledger) Append(ctx context.Context, entry models.LedgerEntry) error {
	values := []interface{}{
		entry.Date.UTC().Format(ledgerTimestamp),
		entry.Serial,
		entry.Kind,
		entry.Operation,
		string(entry.Outcome),
		entry.Detail,
	}
	if err := l.repo.AppendRow(ctx, values); err != nil {
		return fmt.Errorf("append ledger entry for %s: %w", entry.Serial, err)
	}
	return nil
}

// Entries returns the rows dated within [start, end]. Malformed rows are
// skipped; the detail column may be missing when it was empty.
func (l *Ledger) Entries(ctx context.Context, start, end time.Time) ([]models.LedgerEntry, error) {
	rows, err := l.repo.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger rows: %w", err)
	}

	var entries []models.LedgerEntry
	for _, row := range rows {
		if len(row) < len(LedgerHeader)-1 {
			continue
		}

		date, err := time.Parse(ledgerTimestamp, cell(row, 0))
		if err != nil {
			l.logger.Debug("skip ledger row with invalid date", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}

		entries = append(entries, models.LedgerEntry{
			Date:      date,
			Serial:    cell(row, 1),
			Kind:      cell(row, 2),
			Operation: cell(row, 3),
			Outcome:   models.Outcome(cell(row, 4)),
			Detail:    cell(row, 5),
		})
	}
	return entries, nil
}

func cell(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

// MemoryRepository keeps ledger rows in process. It stands in for the
// spreadsheet when no credentials are configured.
type MemoryRepository struct {
	mu   sync.Mutex
	rows [][]interface{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) AppendRow(_ context.Context, row []interface{}) error {
	if len(row) != len(LedgerHeader) {
		return fmt.Errorf("%w: got %d", ErrRowShape, len(row))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, append([]interface{}(nil), row...))
	return nil
}

func (m *MemoryRepository) Rows(context.Context) ([][]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]interface{}(nil), m.rows...), nil
}
