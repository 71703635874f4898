// Package snapshot persists the last confirmed server state to a local
// SQLite database. The cache is write-behind: only entities the server
// has already acknowledged are stored, so a reload after a crash or in
// offline conditions shows a stale but consistent view.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"monevo/internal/core"
	"monevo/internal/log"

	_ "modernc.org/sqlite"
)

const metaSavedAt = "saved_at"

type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewRepository(dbPath string, logger *log.Logger) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Repository{
		db:     db,
		logger: logger.WithComponent(log.ComponentSnapshot),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveGoals replaces the cached goal collection in a single
// transaction.
func (r *Repository) SaveGoals(ctx context.Context, goals []core.Goal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM goals`); err != nil {
		return fmt.Errorf("clear goals: %w", err)
	}
	for _, g := range goals {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO goals (id, title, description, category, target, current, deadline)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			g.ID, g.Title, g.Description, g.Category, g.Target, g.Current, g.Deadline)
		if err != nil {
			return fmt.Errorf("insert goal %s: %w", g.ID, err)
		}
	}
	if err := stampSavedAt(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.DebugContext(ctx, "goals cached", log.FieldCount, len(goals))
	return nil
}

// Goals returns the cached goal collection with category styles
// reattached.
func (r *Repository) Goals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, category, target, current, deadline
		FROM goals ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		var g core.Goal
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.Category, &g.Target, &g.Current, &g.Deadline); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Style = core.StyleForCategory(g.Category)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// SaveTransactions replaces the cached transaction collection.
func (r *Repository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, t := range txs {
		_, err := dbTx.ExecContext(ctx, `
			INSERT INTO transactions (id, type, category, description, amount, date)
			VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, core.TransactionTypeToWire(t.Type), t.Category, t.Description,
			t.Amount, t.Date.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	if err := stampSavedAt(ctx, dbTx); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.DebugContext(ctx, "transactions cached", log.FieldCount, len(txs))
	return nil
}

// Transactions returns the cached transactions, newest first.
func (r *Repository) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, category, description, amount, date
		FROM transactions ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			t        core.Transaction
			tipo     string
			dateText string
		)
		if err := rows.Scan(&t.ID, &tipo, &t.Category, &t.Description, &t.Amount, &dateText); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionTypeFromWire(tipo)
		date, err := time.Parse(time.RFC3339, dateText)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", dateText, err)
		}
		t.Date = date
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// SavedAt returns when the cache was last written, or the zero time
// when it never was.
func (r *Repository) SavedAt(ctx context.Context) (time.Time, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, metaSavedAt).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query saved_at: %w", err)
	}
	return time.Parse(time.RFC3339, value)
}

func stampSavedAt(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaSavedAt, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("stamp saved_at: %w", err)
	}
	return nil
}
