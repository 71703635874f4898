package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"monevo/internal/api"
	"monevo/internal/core"
)

func (a *app) cmdGoals(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: monevo goals <list|add|update|delete> [flags]")
	}

	switch args[0] {
	case "list":
		return a.goalsList(ctx, args[1:])
	case "add":
		return a.goalsAdd(ctx, args[1:])
	case "update":
		return a.goalsUpdate(ctx, args[1:])
	case "delete":
		return a.goalsDelete(ctx, args[1:])
	default:
		return fmt.Errorf("unknown goals subcommand %q", args[0])
	}
}

func (a *app) goalsList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("goals list", flag.ContinueOnError)
	offline := fs.Bool("offline", false, "Read the local snapshot instead of the server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var goals []core.Goal
	if *offline {
		repo, err := a.openSnapshot()
		if err != nil {
			return err
		}
		defer repo.Close()
		goals, err = repo.Goals(ctx)
		if err != nil {
			return err
		}
		a.printSnapshotAge(ctx, repo)
	} else {
		a.sync.LoadGoals(ctx)
		if msg := a.sync.GoalsError(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		goals = a.sync.Goals()
	}

	if len(goals) == 0 {
		fmt.Fprintln(a.stdout, "Nenhuma meta cadastrada.")
		return nil
	}
	for _, g := range goals {
		line := fmt.Sprintf("%-6s %-30s %10.2f / %-10.2f (%3.0f%%)",
			g.ID, g.Title, g.Current, g.Target, g.Progress()*100)
		if g.Deadline != "" {
			line += "  até " + g.Deadline
		}
		fmt.Fprintln(a.stdout, line)
	}
	return nil
}

func (a *app) goalsAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("goals add", flag.ContinueOnError)
	title := fs.String("title", "", "Goal title")
	description := fs.String("description", "", "Optional description")
	category := fs.String("category", "", "Category, e.g. Viagem or Reserva")
	target := fs.Float64("target", 0, "Target amount")
	current := fs.Float64("current", 0, "Amount already saved")
	deadline := fs.String("deadline", "", "Deadline as YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := a.sync.AddGoal(ctx, core.GoalDraft{
		Title:       *title,
		Description: *description,
		Category:    *category,
		Target:      *target,
		Current:     *current,
		Deadline:    *deadline,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Meta criada: %s (id %s)\n", created.Title, created.ID)
	return nil
}

func (a *app) goalsUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("goals update", flag.ContinueOnError)
	id := fs.String("id", "", "Goal id")
	title := fs.String("title", "", "New title")
	current := fs.Float64("current", -1, "New saved amount")
	target := fs.Float64("target", -1, "New target amount")
	deadline := fs.String("deadline", "", "New deadline as YYYY-MM-DD (\"none\" clears it)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("missing required flag: id")
	}

	var patch core.GoalPatch
	if *title != "" {
		patch.Title = title
	}
	if *current >= 0 {
		patch.Current = current
	}
	if *target >= 0 {
		patch.Target = target
	}
	if *deadline != "" {
		value := *deadline
		if value == "none" {
			value = ""
		}
		patch.Deadline = &value
	}

	updated, err := a.sync.UpdateGoal(ctx, *id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Meta atualizada: %s (%.2f / %.2f)\n", updated.Title, updated.Current, updated.Target)
	return nil
}

func (a *app) goalsDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("goals delete", flag.ContinueOnError)
	id := fs.String("id", "", "Goal id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("missing required flag: id")
	}

	if err := a.sync.DeleteGoal(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Meta excluída.")
	return nil
}

func (a *app) cmdTransactions(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: monevo tx <list|add|delete> [flags]")
	}

	switch args[0] {
	case "list":
		return a.txList(ctx, args[1:])
	case "add":
		return a.txAdd(ctx, args[1:])
	case "delete":
		return a.txDelete(ctx, args[1:])
	default:
		return fmt.Errorf("unknown tx subcommand %q", args[0])
	}
}

func (a *app) txList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tx list", flag.ContinueOnError)
	from := fs.String("from", "", "Start date as YYYY-MM-DD")
	to := fs.String("to", "", "End date as YYYY-MM-DD")
	offline := fs.Bool("offline", false, "Read the local snapshot instead of the server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var txs []core.Transaction
	if *offline {
		repo, err := a.openSnapshot()
		if err != nil {
			return err
		}
		defer repo.Close()
		txs, err = repo.Transactions(ctx)
		if err != nil {
			return err
		}
		a.printSnapshotAge(ctx, repo)
	} else {
		filter, err := parseFilter(*from, *to)
		if err != nil {
			return err
		}
		a.sync.LoadTransactions(ctx, filter)
		if msg := a.sync.TransactionsError(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		txs = a.sync.Transactions()
	}

	if len(txs) == 0 {
		fmt.Fprintln(a.stdout, "Nenhuma transação encontrada.")
		return nil
	}
	for _, tx := range txs {
		fmt.Fprintf(a.stdout, "%-6s %s %-12s %-20s %-30s %10.2f\n",
			tx.ID, tx.Date.Format("2006-01-02"),
			core.TransactionTypeToWire(tx.Type), tx.Category, tx.Description, tx.Amount)
	}
	return nil
}

func parseFilter(from, to string) (api.TransactionFilter, error) {
	var filter api.TransactionFilter
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, fmt.Errorf("invalid -from date: %w", err)
		}
		filter.From = &t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, fmt.Errorf("invalid -to date: %w", err)
		}
		filter.To = &t
	}
	return filter, nil
}

func (a *app) txAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tx add", flag.ContinueOnError)
	tipo := fs.String("type", "despesa", "Type: receita, despesa or investimento")
	category := fs.String("category", "", "Category name")
	description := fs.String("description", "", "Description")
	amount := fs.Float64("amount", 0, "Amount")
	date := fs.String("date", "", "Date as YYYY-MM-DD (defaults to today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	when := time.Now()
	if *date != "" {
		parsed, err := time.Parse("2006-01-02", *date)
		if err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
		when = parsed
	}

	created, err := a.sync.AddTransaction(ctx, core.TransactionDraft{
		Type:        core.TransactionTypeFromWire(*tipo),
		Category:    *category,
		Description: *description,
		Amount:      *amount,
		Date:        when,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Transação registrada (id %s): %s %.2f\n",
		created.ID, created.Description, created.Amount)
	return nil
}

func (a *app) txDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tx delete", flag.ContinueOnError)
	id := fs.String("id", "", "Transaction id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("missing required flag: id")
	}

	if err := a.sync.DeleteTransaction(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Transação excluída.")
	return nil
}

func (a *app) cmdNotifications(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		a.sync.LoadNotifications(ctx)
		notes := a.sync.Notifications()
		if len(notes) == 0 {
			fmt.Fprintln(a.stdout, "Nenhuma notificação.")
			return nil
		}
		for _, n := range notes {
			marker := " "
			if !n.Read {
				marker = "*"
			}
			fmt.Fprintf(a.stdout, "%s %-6s %s", marker, n.ID, n.Title)
			if n.Message != "" {
				fmt.Fprintf(a.stdout, " - %s", n.Message)
			}
			fmt.Fprintln(a.stdout)
		}
		return nil
	case "read":
		fs := flag.NewFlagSet("notifications read", flag.ContinueOnError)
		id := fs.String("id", "", "Notification id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" {
			return fmt.Errorf("missing required flag: id")
		}
		return a.sync.MarkNotificationRead(ctx, *id)
	default:
		return fmt.Errorf("unknown notifications subcommand %q", args[0])
	}
}

func (a *app) cmdPlan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	id := fs.String("id", "", "Plan id (generated when omitted)")
	title := fs.String("title", "", "Plan title")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return fmt.Errorf("missing required flag: title")
	}

	plan := a.sync.ActivatePlan(*id, *title)
	fmt.Fprintf(a.stdout, "Plano ativado: %s (id %s)\n", plan.Title, plan.ID)
	return nil
}
