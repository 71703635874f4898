package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"monevo/internal/api"
	"monevo/internal/core"
	"monevo/internal/export/google"
	"monevo/internal/report"
	"monevo/internal/snapshot"
)

func (a *app) openSnapshot() (*snapshot.Repository, error) {
	return snapshot.NewRepository(a.cfg.SnapshotDBPath, a.logger)
}

func (a *app) printSnapshotAge(ctx context.Context, repo *snapshot.Repository) {
	stamp, err := repo.SavedAt(ctx)
	if err != nil || stamp.IsZero() {
		return
	}
	fmt.Fprintf(a.stdout, "(snapshot de %s)\n", stamp.Local().Format("2006-01-02 15:04"))
}

// cmdSync pulls goals and transactions from the server and rewrites the
// local snapshot with the confirmed state.
func (a *app) cmdSync(ctx context.Context) error {
	a.sync.LoadGoals(ctx)
	if msg := a.sync.GoalsError(); msg != "" {
		return fmt.Errorf("load goals: %s", msg)
	}
	a.sync.LoadTransactions(ctx, api.TransactionFilter{})
	if msg := a.sync.TransactionsError(); msg != "" {
		return fmt.Errorf("load transactions: %s", msg)
	}

	repo, err := a.openSnapshot()
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.SaveGoals(ctx, a.sync.Goals()); err != nil {
		return err
	}
	if err := repo.SaveTransactions(ctx, a.sync.Transactions()); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Snapshot atualizado: %d metas, %d transações.\n",
		len(a.sync.Goals()), len(a.sync.Transactions()))
	return nil
}

func (a *app) cmdReport(ctx context.Context, args []string) error {
	now := time.Now()
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	year := fs.Int("year", now.Year(), "Report year")
	month := fs.Int("month", int(now.Month()), "Report month (1-12)")
	outDir := fs.String("out", a.cfg.ReportDir, "Output directory")
	offline := fs.Bool("offline", false, "Use the local snapshot instead of the server")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *month < 1 || *month > 12 {
		return fmt.Errorf("invalid month %d", *month)
	}

	txs, goals, err := a.reportData(ctx, *offline)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	renderer := report.NewRenderer()
	prefix := fmt.Sprintf("monevo-%04d-%02d", *year, *month)
	wrote := 0

	charts := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{prefix + "-trend.png", func() ([]byte, error) { return renderer.MonthlyTrend(txs, *year, *month) }},
		{prefix + "-categories.png", func() ([]byte, error) { return renderer.CategoryBreakdown(txs, *year, *month) }},
		{prefix + "-goals.png", func() ([]byte, error) { return renderer.GoalProgress(goals) }},
	}
	for _, c := range charts {
		png, err := c.render()
		if err != nil {
			return err
		}
		if png == nil {
			continue
		}
		path := filepath.Join(*outDir, c.name)
		if err := os.WriteFile(path, png, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintln(a.stdout, path)
		wrote++
	}

	if wrote == 0 {
		fmt.Fprintln(a.stdout, "Sem dados para o período.")
	}
	return nil
}

func (a *app) reportData(ctx context.Context, offline bool) ([]core.Transaction, []core.Goal, error) {
	if offline {
		repo, err := a.openSnapshot()
		if err != nil {
			return nil, nil, err
		}
		defer repo.Close()

		txs, err := repo.Transactions(ctx)
		if err != nil {
			return nil, nil, err
		}
		goals, err := repo.Goals(ctx)
		if err != nil {
			return nil, nil, err
		}
		a.printSnapshotAge(ctx, repo)
		return txs, goals, nil
	}

	a.sync.LoadTransactions(ctx, api.TransactionFilter{})
	if msg := a.sync.TransactionsError(); msg != "" {
		return nil, nil, fmt.Errorf("load transactions: %s", msg)
	}
	a.sync.LoadGoals(ctx)
	if msg := a.sync.GoalsError(); msg != "" {
		return nil, nil, fmt.Errorf("load goals: %s", msg)
	}
	return a.sync.Transactions(), a.sync.Goals(), nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	from := fs.String("from", "", "Start date as YYYY-MM-DD")
	to := fs.String("to", "", "End date as YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter, err := parseFilter(*from, *to)
	if err != nil {
		return err
	}

	a.sync.LoadTransactions(ctx, filter)
	if msg := a.sync.TransactionsError(); msg != "" {
		return fmt.Errorf("load transactions: %s", msg)
	}

	exporter, err := google.New(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}

	count, err := exporter.ExportTransactions(ctx, a.sync.Transactions())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%d transações exportadas para a planilha.\n", count)
	return nil
}
