package sheets

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/agrifleet/internal/config"
)

// LedgerHeader names the ledger columns in order.
var LedgerHeader = []interface{}{"Date", "Serial", "Kind", "Operation", "Outcome", "Detail"}

// ErrRowShape indicates a row that does not have one cell per ledger column.
var ErrRowShape = errors.New("ledger row must have one value per column")

// Repository stores ledger rows. Rows never include the header.
type Repository interface {
	AppendRow(ctx context.Context, row []interface{}) error
	Rows(ctx context.Context) ([][]interface{}, error)
}

// GoogleSheetRepository keeps the ledger on one tab of a spreadsheet.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	tab           string
	logger        *zap.Logger
}

// NewGoogleSheetRepository connects to the spreadsheet and writes the header
// row when the ledger tab is still empty.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Enabled() {
		return nil, errors.New("sheets credentials path and spreadsheet id are required")
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	tab := cfg.LedgerTab
	if tab == "" {
		tab = "Ledger"
	}

	repo := &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		tab:           tab,
		logger:        logger,
	}
	if err := repo.ensureHeader(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *GoogleSheetRepository) ledgerRange() string {
	return fmt.Sprintf("%s!A:%c", r.tab, 'A'+len(LedgerHeader)-1)
}

func (r *GoogleSheetRepository) headerRange() string {
	return fmt.Sprintf("%s!A1:%c1", r.tab, 'A'+len(LedgerHeader)-1)
}

func (r *GoogleSheetRepository) ensureHeader(ctx context.Context) error {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.headerRange()).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read ledger header on %s: %w", r.tab, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{LedgerHeader}}
	if _, err := r.service.Spreadsheets.Values.Update(r.spreadsheetID, r.headerRange(), payload).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("write ledger header on %s: %w", r.tab, err)
	}

	r.logger.Info("ledger header written", zap.String("tab", r.tab))
	return nil
}

// AppendRow adds one ledger row below the existing ones.
func (r *GoogleSheetRepository) AppendRow(ctx context.Context, row []interface{}) error {
	if len(row) != len(LedgerHeader) {
		return fmt.Errorf("%w: got %d", ErrRowShape, len(row))
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, r.ledgerRange(), payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append ledger row on %s: %w", r.tab, err)
	}

	r.logger.Debug("ledger row appended", zap.String("tab", r.tab))
	return nil
}

// Rows reads every ledger row, header excluded.
func (r *GoogleSheetRepository) Rows(ctx context.Context) ([][]interface{}, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.ledgerRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ledger on %s: %w", r.tab, err)
	}
	return withoutHeader(resp.Values), nil
}

func withoutHeader(rows [][]interface{}) [][]interface{} {
	if len(rows) > 0 && isHeader(rows[0]) {
		return rows[1:]
	}
	return rows
}

func isHeader(row []interface{}) bool {
	return slices.EqualFunc(row, LedgerHeader, func(a, b interface{}) bool {
		return fmt.Sprint(a) == fmt.Sprint(b)
	})
}
