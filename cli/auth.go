// ABOUTME: Auth CLI commands
// ABOUTME: login, logout, and whoami against the backend token endpoint
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/fleetcall/dispatchctl/api"
	"github.com/fleetcall/dispatchctl/config"
)

// LoginCommand exchanges credentials for a token and persists the session.
func LoginCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email (required)")
	_ = fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	password := os.Getenv("DISPATCH_PASSWORD")
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(string(raw))
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tok, err := api.Login(ctx, app.Config.BaseURL, *email, password)
	if err != nil {
		return err
	}

	session := config.FromToken(*email, tok)
	if err := config.SaveSession(app.Config.SessionPath, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Printf("✓ Logged in as %s\n", *email)
	return nil
}

// LogoutCommand clears the stored session.
func LogoutCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := config.ClearSession(app.Config.SessionPath); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Println("✓ Logged out")
	return nil
}

// WhoamiCommand prints the active session.
func WhoamiCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	_ = fs.Parse(args)

	if app.Session == nil {
		return config.ErrNotLoggedIn
	}

	fmt.Printf("Logged in as: %s\n", app.Session.Email)
	fmt.Printf("Backend: %s\n", app.Config.BaseURL)
	if !app.Session.Expiry.IsZero() {
		fmt.Printf("Token expires: %s\n", app.Session.Expiry.Format(time.RFC3339))
	}
	return nil
}
