// ABOUTME: Tests for the CLI commands
// ABOUTME: Drives commands against a stub backend and a temp cache
package cli

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/fleetcall/dispatchctl/api"
	"github.com/fleetcall/dispatchctl/config"
	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/models"
)

func testApp(t *testing.T, handler http.Handler) (*App, *sql.DB) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	cfg := &config.Config{
		BaseURL:     srv.URL,
		SocketURL:   config.DeriveSocketURL(srv.URL),
		SessionPath: filepath.Join(t.TempDir(), "session.json"),
	}

	app := &App{
		Config:  cfg,
		DB:      database,
		Session: &config.Session{Email: "ops@example.com", AccessToken: "test-token"},
		Client:  api.NewClient(srv.URL, api.WithTokenSource(api.StaticTokenSource("test-token"))),
		Log:     logrus.NewEntry(logrus.New()),
	}
	return app, database
}

func TestListAgentsCommandCachesResults(t *testing.T) {
	agent := models.DefaultAgentConfig(models.ScenarioCheckIn)
	agent.ID = 3
	agent.Name = "Standard Check-in"
	agent.Prompts = models.Prompts{
		Opening:  "Hi, this is dispatch calling about your load.",
		FollowUp: "Can you give me a status update on your location?",
		Closing:  "Thanks, drive safe out there.",
	}

	app, database := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/agents" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(models.AgentConfigPage{
			Configs: []models.AgentConfig{agent},
			Total:   1, Page: 1, PerPage: 50,
		})
	}))

	if err := ListAgentsCommand(app, nil); err != nil {
		t.Fatalf("ListAgentsCommand failed: %v", err)
	}

	cached, err := db.GetAgent(database, 3)
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if cached == nil || cached.Name != "Standard Check-in" {
		t.Errorf("agent not cached: %+v", cached)
	}
}

func TestListCallsCommandCachedSkipsBackend(t *testing.T) {
	requests := 0
	app, database := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	seed := &models.Call{ID: 2, DriverName: "Sam Reyes", LoadNumber: "LD-8",
		AgentConfigID: 1, CallType: models.CallTypePhone, Status: models.StatusCompleted}
	if err := db.PutCall(database, seed); err != nil {
		t.Fatalf("PutCall failed: %v", err)
	}

	if err := ListCallsCommand(app, []string{"--cached"}); err != nil {
		t.Fatalf("ListCallsCommand failed: %v", err)
	}
	if requests != 0 {
		t.Errorf("cached listing hit the server %d time(s)", requests)
	}
}

func TestInitiateCallCommandRequiresAgent(t *testing.T) {
	app, _ := testApp(t, http.NotFoundHandler())

	err := InitiateCallCommand(app, []string{"--driver", "Maria Lopez", "--phone", "5551234567", "--load", "LD-1"})
	if err == nil {
		t.Fatal("expected error for missing --agent")
	}
}

func TestInitiateCallCommandValidatesBeforePost(t *testing.T) {
	requests := 0
	app, _ := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	// Too-short phone number fails client-side
	err := InitiateCallCommand(app, []string{
		"--driver", "Maria Lopez", "--phone", "123", "--load", "LD-1", "--agent", "1",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if requests != 0 {
		t.Errorf("invalid request reached the server %d time(s)", requests)
	}
}

func TestCallStatusCommandUpdatesCache(t *testing.T) {
	app, database := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/calls/9/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(models.CallStatusUpdate{
			CallID: 9, Status: models.StatusCompleted, Duration: 42,
		})
	}))

	// Seed the cache with the in-flight version of the call
	seed := &models.Call{ID: 9, DriverName: "Sam Reyes", LoadNumber: "LD-2",
		AgentConfigID: 1, CallType: models.CallTypePhone, Status: models.StatusInProgress}
	if err := db.PutCall(database, seed); err != nil {
		t.Fatalf("PutCall failed: %v", err)
	}

	if err := CallStatusCommand(app, []string{"9"}); err != nil {
		t.Fatalf("CallStatusCommand failed: %v", err)
	}

	cached, err := db.GetCall(database, 9)
	if err != nil {
		t.Fatalf("GetCall failed: %v", err)
	}
	if cached.Status != models.StatusCompleted || cached.Duration != 42 {
		t.Errorf("cache not updated: %+v", cached)
	}
}

func TestDeleteAgentCommandInvalidatesCache(t *testing.T) {
	app, database := testApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && r.URL.Path == "/api/v1/agents/5" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	agent := models.DefaultAgentConfig(models.ScenarioEmergency)
	agent.ID = 5
	agent.Name = "Emergency Agent"
	if err := db.PutAgent(database, &agent); err != nil {
		t.Fatalf("PutAgent failed: %v", err)
	}

	if err := DeleteAgentCommand(app, []string{"--force", "5"}); err != nil {
		t.Fatalf("DeleteAgentCommand failed: %v", err)
	}

	cached, err := db.GetAgent(database, 5)
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if cached != nil {
		t.Errorf("agent still cached after delete: %+v", cached)
	}
}

func TestRequireClientWithoutSession(t *testing.T) {
	app := &App{Config: &config.Config{}}
	if _, err := app.RequireClient(); err != config.ErrNotLoggedIn {
		t.Errorf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestAnalyticsCommandBoundsDays(t *testing.T) {
	app, _ := testApp(t, http.NotFoundHandler())
	if err := AnalyticsCommand(app, []string{"--days", "365"}); err == nil {
		t.Fatal("expected error for out-of-range days")
	}
}
