// ABOUTME: Tests for the MCP tool handlers
// ABOUTME: Runs handlers against a stub backend server
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcall/dispatchctl/api"
	"github.com/fleetcall/dispatchctl/models"
)

func stubBackend(t *testing.T, routes map[string]any) *api.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		payload, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, api.WithTokenSource(api.StaticTokenSource("test-token")))
}

func TestListAgentsTool(t *testing.T) {
	client := stubBackend(t, map[string]any{
		"GET /api/v1/agents": models.AgentConfigPage{
			Configs: []models.AgentConfig{{ID: 1, Name: "Check-in Agent", ScenarioType: models.ScenarioCheckIn}},
			Total:   1,
		},
	})

	h := NewAgentHandlers(client)
	_, out, err := h.ListAgents(t.Context(), nil, ListAgentsInput{})
	require.NoError(t, err)
	require.Len(t, out.Configs, 1)
	assert.Equal(t, 1, out.Total)
	assert.Equal(t, "Check-in Agent", out.Configs[0].Name)
}

func TestGetAgentRequiresID(t *testing.T) {
	h := NewAgentHandlers(stubBackend(t, nil))
	_, _, err := h.GetAgent(t.Context(), nil, GetAgentInput{})
	assert.Error(t, err)
}

func TestInitiateCallTool(t *testing.T) {
	client := stubBackend(t, map[string]any{
		"POST /api/v1/calls/initiate": models.Call{
			ID: 7, DriverName: "Maria Lopez", Status: models.StatusInitiated,
		},
	})

	h := NewCallHandlers(client)
	_, call, err := h.InitiateCall(t.Context(), nil, InitiateCallInput{
		DriverName:    "Maria Lopez",
		PhoneNumber:   "5551234567",
		LoadNumber:    "LD-4471",
		AgentConfigID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, call.ID)
	assert.Equal(t, models.StatusInitiated, call.Status)
}

func TestInitiateCallRejectsBadPhone(t *testing.T) {
	h := NewCallHandlers(stubBackend(t, nil))
	_, _, err := h.InitiateCall(t.Context(), nil, InitiateCallInput{
		DriverName:    "Maria Lopez",
		PhoneNumber:   "123",
		LoadNumber:    "LD-4471",
		AgentConfigID: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phone_number")
}

func TestGetAnalyticsBoundsDays(t *testing.T) {
	h := NewAnalyticsHandlers(stubBackend(t, nil))
	_, _, err := h.GetAnalytics(t.Context(), nil, GetAnalyticsInput{Days: 365})
	assert.Error(t, err)
}

func TestGetAnalyticsDefaultsWindow(t *testing.T) {
	client := stubBackend(t, map[string]any{
		"GET /api/v1/calls/analytics/summary": models.AnalyticsSummary{
			PeriodDays: 7, TotalCalls: 12, SuccessRate: 75,
		},
	})

	h := NewAnalyticsHandlers(client)
	_, summary, err := h.GetAnalytics(t.Context(), nil, GetAnalyticsInput{})
	require.NoError(t, err)
	assert.Equal(t, 12, summary.TotalCalls)
}
