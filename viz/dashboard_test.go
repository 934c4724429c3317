// ABOUTME: Tests for dashboard statistics generation
// ABOUTME: Runs against a temporary cache database
package viz

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestGenerateDashboardStats(t *testing.T) {
	database := setupTestDB(t)

	now := time.Now()
	calls := []models.Call{
		{ID: 1, DriverName: "Maria Lopez", LoadNumber: "LD-1", AgentConfigID: 1,
			CallType: models.CallTypePhone, Status: models.StatusCompleted,
			CallOutcome: models.OutcomeInTransitUpdate, Duration: 90, UpdatedAt: now},
		{ID: 2, DriverName: "Sam Reyes", LoadNumber: "LD-2", AgentConfigID: 1,
			CallType: models.CallTypePhone, Status: models.StatusCompleted,
			CallOutcome: models.OutcomeEmergencyEscalation, Duration: 60, UpdatedAt: now},
		{ID: 3, DriverName: "Lee Chan", LoadNumber: "LD-3", AgentConfigID: 2,
			CallType: models.CallTypePhone, Status: models.StatusInProgress,
			UpdatedAt: now.Add(-30 * time.Minute)},
	}
	if err := db.PutCalls(database, calls); err != nil {
		t.Fatalf("PutCalls failed: %v", err)
	}

	agent := models.DefaultAgentConfig(models.ScenarioCheckIn)
	agent.ID = 1
	agent.Name = "Check-in Agent"
	agent.IsDeployed = true
	if err := db.PutAgent(database, &agent); err != nil {
		t.Fatalf("PutAgent failed: %v", err)
	}

	stats, err := GenerateDashboardStats(database)
	if err != nil {
		t.Fatalf("GenerateDashboardStats failed: %v", err)
	}

	if stats.TotalCalls != 3 {
		t.Errorf("TotalCalls = %d, want 3", stats.TotalCalls)
	}
	if stats.CallsByStatus[models.StatusCompleted] != 2 {
		t.Errorf("completed = %d, want 2", stats.CallsByStatus[models.StatusCompleted])
	}
	if stats.EmergencyCount != 1 {
		t.Errorf("EmergencyCount = %d, want 1", stats.EmergencyCount)
	}
	if stats.ActiveCalls != 1 {
		t.Errorf("ActiveCalls = %d, want 1", stats.ActiveCalls)
	}
	if len(stats.StalledCalls) != 1 || stats.StalledCalls[0].ID != 3 {
		t.Errorf("StalledCalls = %+v, want call 3", stats.StalledCalls)
	}
	if stats.DeployedAgents != 1 {
		t.Errorf("DeployedAgents = %d, want 1", stats.DeployedAgents)
	}
	if stats.AverageDuration != 75 {
		t.Errorf("AverageDuration = %.1f, want 75", stats.AverageDuration)
	}
}

func TestRenderDashboard(t *testing.T) {
	stats := &DashboardStats{
		CallsByStatus: map[models.CallStatus]int{
			models.StatusCompleted: 4,
			models.StatusFailed:    1,
		},
		CallsByOutcome: map[string]int{
			models.OutcomeInTransitUpdate: 4,
		},
		TotalCalls:     5,
		TotalAgents:    2,
		EmergencyCount: 1,
	}

	out := RenderDashboard(stats)
	for _, want := range []string{"DISPATCH OPERATIONS DASHBOARD", "completed", "In-Transit Update", "emergency escalation"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard output missing %q", want)
		}
	}
}
