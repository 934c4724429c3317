// ABOUTME: Tests for the agent and call cache
// ABOUTME: Covers upserts, filtered listing, status pushes, and invalidation
package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleetcall/dispatchctl/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleAgent(id int, scenario models.ScenarioType) models.AgentConfig {
	cfg := models.DefaultAgentConfig(scenario)
	cfg.ID = id
	cfg.Name = "Agent"
	cfg.Version = 1
	cfg.UpdatedAt = time.Now()
	return cfg
}

func sampleCall(id int, status models.CallStatus) models.Call {
	return models.Call{
		ID:            id,
		DriverName:    "Maria Lopez",
		LoadNumber:    "LD-4471",
		AgentConfigID: 1,
		CallType:      models.CallTypePhone,
		Status:        status,
		UpdatedAt:     time.Now(),
	}
}

func TestPutAndGetAgent(t *testing.T) {
	db := setupTestDB(t)

	cfg := sampleAgent(3, models.ScenarioCheckIn)
	if err := PutAgent(db, &cfg); err != nil {
		t.Fatalf("PutAgent failed: %v", err)
	}

	got, err := GetAgent(db, 3)
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if got == nil || got.ID != 3 || got.ScenarioType != models.ScenarioCheckIn {
		t.Errorf("unexpected agent: %+v", got)
	}
	if len(got.Flow.DataExtractionPoints) != 7 {
		t.Errorf("payload round-trip lost extraction fields: %v", got.Flow.DataExtractionPoints)
	}
}

func TestPutAgentUpserts(t *testing.T) {
	db := setupTestDB(t)

	cfg := sampleAgent(3, models.ScenarioCheckIn)
	if err := PutAgent(db, &cfg); err != nil {
		t.Fatalf("PutAgent failed: %v", err)
	}

	cfg.Version = 2
	cfg.IsDeployed = true
	if err := PutAgent(db, &cfg); err != nil {
		t.Fatalf("second PutAgent failed: %v", err)
	}

	got, err := GetAgent(db, 3)
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if got.Version != 2 || !got.IsDeployed {
		t.Errorf("upsert did not apply: %+v", got)
	}

	agents, err := ListAgents(db, "", 10)
	if err != nil {
		t.Fatalf("ListAgents failed: %v", err)
	}
	if len(agents) != 1 {
		t.Errorf("expected 1 agent after upsert, got %d", len(agents))
	}
}

func TestListAgentsScenarioFilter(t *testing.T) {
	db := setupTestDB(t)

	a := sampleAgent(1, models.ScenarioCheckIn)
	b := sampleAgent(2, models.ScenarioEmergency)
	if err := PutAgents(db, []models.AgentConfig{a, b}); err != nil {
		t.Fatalf("PutAgents failed: %v", err)
	}

	emergencies, err := ListAgents(db, models.ScenarioEmergency, 10)
	if err != nil {
		t.Fatalf("ListAgents failed: %v", err)
	}
	if len(emergencies) != 1 || emergencies[0].ID != 2 {
		t.Errorf("scenario filter failed: %+v", emergencies)
	}
}

func TestInvalidateAgent(t *testing.T) {
	db := setupTestDB(t)

	cfg := sampleAgent(5, models.ScenarioCheckIn)
	if err := PutAgent(db, &cfg); err != nil {
		t.Fatalf("PutAgent failed: %v", err)
	}
	if err := InvalidateAgent(db, 5); err != nil {
		t.Fatalf("InvalidateAgent failed: %v", err)
	}

	got, err := GetAgent(db, 5)
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if got != nil {
		t.Errorf("agent should be gone after invalidation: %+v", got)
	}
}

func TestCallStatusPush(t *testing.T) {
	db := setupTestDB(t)

	call := sampleCall(12, models.StatusInitiated)
	if err := PutCall(db, &call); err != nil {
		t.Fatalf("PutCall failed: %v", err)
	}

	err := UpdateCallStatus(db, &models.CallStatusUpdate{
		CallID:    12,
		Status:    models.StatusCompleted,
		Duration:  95,
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpdateCallStatus failed: %v", err)
	}

	got, err := GetCall(db, 12)
	if err != nil {
		t.Fatalf("GetCall failed: %v", err)
	}
	if got.Status != models.StatusCompleted || got.Duration != 95 {
		t.Errorf("status push not applied: %+v", got)
	}
}

func TestUpdateCallStatusForUnknownCallIsNoop(t *testing.T) {
	db := setupTestDB(t)

	err := UpdateCallStatus(db, &models.CallStatusUpdate{CallID: 999, Status: models.StatusFailed})
	if err != nil {
		t.Errorf("unknown call should be a no-op, got %v", err)
	}
}

func TestListCallsStatusFilter(t *testing.T) {
	db := setupTestDB(t)

	calls := []models.Call{
		sampleCall(1, models.StatusCompleted),
		sampleCall(2, models.StatusFailed),
		sampleCall(3, models.StatusCompleted),
	}
	if err := PutCalls(db, calls); err != nil {
		t.Fatalf("PutCalls failed: %v", err)
	}

	completed, err := ListCalls(db, models.StatusCompleted, 10)
	if err != nil {
		t.Fatalf("ListCalls failed: %v", err)
	}
	if len(completed) != 2 {
		t.Errorf("expected 2 completed calls, got %d", len(completed))
	}

	all, err := ListCalls(db, "", 10)
	if err != nil {
		t.Fatalf("ListCalls failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 calls, got %d", len(all))
	}
}
