// ABOUTME: Tests for agent endpoints and submit-time normalization
// ABOUTME: Verifies the scenario-fixed extraction list reaches the wire
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/fleetcall/dispatchctl/models"
)

func TestCreateAgentForcesEmergencyExtractionList(t *testing.T) {
	var posted models.AgentConfig
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(posted)
	}))

	cfg := models.DefaultAgentConfig(models.ScenarioEmergency)
	cfg.Name = "Emergency Protocol"
	cfg.Prompts = models.Prompts{
		Opening:  "Hi, this is Dispatch with an important safety check.",
		FollowUp: "Are you and the vehicle in a safe location right now?",
		Closing:  "Help is on the way, stay with the vehicle.",
	}
	cfg.VoiceSettings.VoiceSpeed = 1.0
	cfg.VoiceSettings.InterruptionSensitivity = 0.9
	cfg.VoiceSettings.Backchanneling = false
	cfg.VoiceSettings.FillerWords = false
	// Caller-supplied list must be ignored
	cfg.Flow.DataExtractionPoints = []string{"bogus_field"}

	if _, err := client.CreateAgent(context.Background(), &cfg); err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}

	want := models.EmergencyExtractionFields
	got := posted.Flow.DataExtractionPoints
	if len(got) != len(want) {
		t.Fatalf("posted %d extraction fields, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCreateAgentRejectsInvalidBeforePost(t *testing.T) {
	called := false
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	cfg := models.DefaultAgentConfig(models.ScenarioCheckIn)
	cfg.Name = "ok name"
	cfg.Prompts.Opening = "too short"

	if _, err := client.CreateAgent(context.Background(), &cfg); err == nil {
		t.Fatal("expected validation error")
	}
	if called {
		t.Error("invalid config should never reach the server")
	}
}

func TestDeployAgent(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/agents/4/deploy" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(models.AgentConfig{ID: 4, IsDeployed: true, Version: 2})
	}))

	cfg, err := client.DeployAgent(context.Background(), 4)
	if err != nil {
		t.Fatalf("DeployAgent failed: %v", err)
	}
	if !cfg.IsDeployed || cfg.Version != 2 {
		t.Errorf("unexpected deploy result: %+v", cfg)
	}
}
