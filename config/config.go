// ABOUTME: Environment-driven configuration for the dispatch console
// ABOUTME: Loads .env, resolves XDG paths for the cache DB and session file
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const (
	defaultBaseURL = "http://localhost:8000"
	appDirName     = "dispatchctl"
)

type Config struct {
	// BaseURL is the dispatch backend, e.g. https://dispatch.example.com
	BaseURL string
	// SocketURL is the realtime endpoint; derived from BaseURL when unset.
	SocketURL string
	// DBPath is the local SQLite cache.
	DBPath string
	// SessionPath holds the persisted auth session.
	SessionPath string
	// AudioInputDevice / AudioOutputDevice are optional device name hints
	// for web calls.
	AudioInputDevice  string
	AudioOutputDevice string
}

// Load reads .env (if present) and the environment. Explicit overrides win.
func Load() (*Config, error) {
	// Missing .env is fine; env vars may be set another way
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:           getenv("DISPATCH_API_URL", defaultBaseURL),
		SocketURL:         os.Getenv("DISPATCH_WS_URL"),
		AudioInputDevice:  os.Getenv("DISPATCH_AUDIO_INPUT"),
		AudioOutputDevice: os.Getenv("DISPATCH_AUDIO_OUTPUT"),
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.SocketURL == "" {
		cfg.SocketURL = DeriveSocketURL(cfg.BaseURL)
	}

	dbPath, err := xdg.DataFile(filepath.Join(appDirName, "cache.db"))
	if err != nil {
		return nil, err
	}
	cfg.DBPath = getenv("DISPATCH_DB_PATH", dbPath)

	sessionPath, err := xdg.StateFile(filepath.Join(appDirName, "session.json"))
	if err != nil {
		return nil, err
	}
	cfg.SessionPath = sessionPath

	return cfg, nil
}

// DeriveSocketURL maps the REST base URL onto the websocket endpoint.
func DeriveSocketURL(baseURL string) string {
	ws := baseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return strings.TrimRight(ws, "/") + "/ws"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
