package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"monevo/internal/cli"
	"monevo/internal/state"
)

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Password (prompts when omitted)")
	google := fs.Bool("google", false, "Print the Google sign-in URL instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *google {
		fmt.Fprintln(a.stdout, "Open this URL in a browser to sign in:")
		fmt.Fprintln(a.stdout, a.client.GoogleLoginURL())
		fmt.Fprintln(a.stdout, "Then run: monevo callback -token <token>")
		return nil
	}

	if *email == "" {
		fmt.Fprint(a.stdout, "Email: ")
		line, err := cli.ReadLine(a.stdin)
		if err != nil {
			return err
		}
		*email = line
	}
	if *password == "" {
		fmt.Fprint(a.stdout, "Senha: ")
		pw, err := cli.ReadPassword(a.stdin)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		fmt.Fprintln(a.stdout)
		*password = pw
	}

	if err := a.sync.Login(ctx, *email, *password); err != nil {
		return err
	}

	user := a.sync.CurrentUser()
	fmt.Fprintf(a.stdout, "Bem-vindo, %s!\n", user.Name)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		return fmt.Errorf("missing required flags: name, email")
	}

	fmt.Fprint(a.stdout, "Senha: ")
	password, err := cli.ReadPassword(a.stdin)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	fmt.Fprintln(a.stdout)
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if err := a.sync.Register(ctx, *name, *email, password); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Conta criada. Bem-vindo, %s!\n", a.sync.CurrentUser().Name)
	return nil
}

// cmdCallback finishes the browser OAuth flow. The redirect hands the
// user a token (or an error), which is only trusted after the backend
// confirms the identity behind it.
func (a *app) cmdCallback(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("callback", flag.ContinueOnError)
	token := fs.String("token", "", "Token from the redirect URL")
	callbackErr := fs.String("error", "", "Error from the redirect URL, if any")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.sync.HandleOAuthCallback(ctx, *token, *callbackErr); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Bem-vindo, %s!\n", a.sync.CurrentUser().Name)
	return nil
}

func (a *app) cmdLogout() error {
	if err := a.sync.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Sessão encerrada.")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	if a.sync.Phase() != state.Authenticated {
		fmt.Fprintln(a.stdout, "Não autenticado.")
		return nil
	}

	// Revalidate against the server so a stale token surfaces now
	// instead of on the next mutation.
	user, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s <%s> (id %d)\n", user.Name, user.Email, user.ID)

	profile, err := a.client.Profile(ctx)
	if err == nil && !profile.OnboardingComplete {
		fmt.Fprintln(a.stdout, "Perfil incompleto: finalize o onboarding no aplicativo.")
	}
	return nil
}
