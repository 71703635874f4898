// Package google appends confirmed transactions to a Google
// spreadsheet through a service account. Export is one-way: the
// spreadsheet is a reporting surface, never a source of truth.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"monevo/internal/config"
	"monevo/internal/core"
	"monevo/internal/log"
)

var headerRow = []any{"Data", "Tipo", "Categoria", "Descrição", "Valor"}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// New creates an Exporter from the validated configuration.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Exporter, error) {
	if !cfg.ExportConfigured() {
		return nil, errors.New("export target not configured (set GOOGLE_SPREADSHEET_ID)")
	}

	credentialsJSON, err := readCredentials(cfg)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithTokenSource(creds.TokenSource),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
		logger:        logger.WithComponent(log.ComponentExport),
	}, nil
}

func readCredentials(cfg *config.Config) ([]byte, error) {
	if json := strings.TrimSpace(cfg.GoogleCredentialsJSON); json != "" {
		return []byte(json), nil
	}
	if cfg.GoogleCredentialsFile != "" {
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
}

func buildRows(txs []core.Transaction, includeHeader bool) [][]any {
	var rows [][]any
	if includeHeader {
		rows = append(rows, headerRow)
	}
	for _, tx := range txs {
		rows = append(rows, []any{
			tx.Date.Format("2006-01-02"),
			core.TransactionTypeToWire(tx.Type),
			tx.Category,
			tx.Description,
			tx.Amount,
		})
	}
	return rows
}

// ExportTransactions appends the given transactions as rows, writing
// the header first when the sheet is empty. Returns the number of rows
// appended.
func (e *Exporter) ExportTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	if e.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	if len(txs) == 0 {
		return 0, nil
	}

	rng := fmt.Sprintf("%s!A:A", e.sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get sheet dimensions for %s: %w", e.sheetName, err)
	}

	vr := &gsheet.ValueRange{Values: buildRows(txs, len(resp.Values) == 0)}
	_, err = e.svc.Spreadsheets.Values.Append(e.spreadsheetID, fmt.Sprintf("%s!A1", e.sheetName), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append rows to sheet %s: %w", e.sheetName, err)
	}

	e.logger.InfoContext(ctx, "transactions exported",
		log.FieldOperation, log.OpExport, log.FieldCount, len(txs))
	return len(txs), nil
}
