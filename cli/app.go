// ABOUTME: Shared command context for the dispatch console CLI
// ABOUTME: Bundles config, API client, cache DB, and logger for commands
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fleetcall/dispatchctl/api"
	"github.com/fleetcall/dispatchctl/config"
	"github.com/fleetcall/dispatchctl/logger"
)

// Version is stamped into the MCP server identity and --version output.
const Version = "0.1.0"

// App is everything a command needs. Client is nil until a session exists;
// commands that talk to the backend call RequireClient first.
type App struct {
	Config  *config.Config
	Client  *api.Client
	DB      *sql.DB
	Session *config.Session
	Log     *logrus.Entry
}

// NewApp loads the stored session (if any) and builds an authenticated API
// client around it.
func NewApp(cfg *config.Config, database *sql.DB) *App {
	app := &App{
		Config: cfg,
		DB:     database,
		Log:    logger.New().WithComponent("cli"),
	}

	session, err := config.LoadSession(cfg.SessionPath)
	if err != nil {
		// Not logged in yet; login/logout still work
		return app
	}

	app.Session = session
	app.Client = api.NewClient(cfg.BaseURL,
		api.WithTokenSource(api.TokenSource(context.Background(), cfg.BaseURL, session.Token())))
	return app
}

// RequireClient fails with a login hint when no session is stored.
func (a *App) RequireClient() (*api.Client, error) {
	if a.Client == nil {
		return nil, config.ErrNotLoggedIn
	}
	return a.Client, nil
}

// SocketToken returns the bearer token for the realtime channel.
func (a *App) SocketToken() string {
	if a.Session == nil {
		return ""
	}
	return a.Session.AccessToken
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	var answer string
	_, _ = fmt.Scanln(&answer)
	return answer == "y" || answer == "Y" || answer == "yes"
}
