package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"monevo/internal/api"
	"monevo/internal/cli"
	"monevo/internal/config"
	"monevo/internal/log"
	"monevo/internal/state"
)

const usage = `Usage: monevo <command> [flags]

Commands:
  login          Sign in with email and password
  register       Create an account and sign in
  callback       Complete a Google sign-in redirect
  logout         Clear the stored session
  whoami         Show the authenticated user
  goals          Manage goals (list, add, update, delete)
  tx             Manage transactions (list, add, delete)
  notifications  List notifications and mark them read
  plan           Activate a financial plan
  sync           Refresh the local snapshot from the server
  report         Render monthly PNG reports
  export         Append transactions to a Google spreadsheet
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the wired components every command needs.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	client *api.Client
	sync   *state.Synchronizer
	stdin  io.Reader
	stdout io.Writer
}

func newApp(stdin io.Reader, stdout io.Writer) *app {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	sessions := cli.InitSessionStore(logger, cfg.StateDir)
	client := api.New(cfg.APIBaseURL, sessions,
		api.WithLogger(logger),
		api.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}))
	sync := state.New(client, sessions,
		state.WithLogger(logger),
		state.WithExpiryNotifier(func() {
			fmt.Fprintln(stdout, "Sessão expirada. Faça login novamente.")
		}))
	client.SetExpiryHandler(sync.SessionExpired)

	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		sync:   sync,
		stdin:  stdin,
		stdout: stdout,
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	command, rest := args[0], args[1:]
	if command == "help" || command == "-h" || command == "--help" {
		fmt.Fprint(stdout, usage)
		return nil
	}

	a := newApp(stdin, stdout)
	defer a.sync.Close()
	ctx := context.Background()

	switch command {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "callback":
		return a.cmdCallback(ctx, rest)
	case "logout":
		return a.cmdLogout()
	case "whoami":
		return a.cmdWhoami(ctx)
	case "goals":
		return a.cmdGoals(ctx, rest)
	case "tx":
		return a.cmdTransactions(ctx, rest)
	case "notifications":
		return a.cmdNotifications(ctx, rest)
	case "plan":
		return a.cmdPlan(rest)
	case "sync":
		return a.cmdSync(ctx)
	case "report":
		return a.cmdReport(ctx, rest)
	case "export":
		return a.cmdExport(ctx, rest)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
