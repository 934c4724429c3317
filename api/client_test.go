// ABOUTME: Tests for the REST client core behavior
// ABOUTME: Covers auth headers, 204 handling, and error translation
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fleetcall/dispatchctl/models"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, WithTokenSource(StaticTokenSource("test-token")))
	return client, srv
}

func TestBearerHeaderAttached(t *testing.T) {
	var gotAuth string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(models.AgentConfigPage{})
	}))

	if _, err := client.ListAgents(context.Background(), "", 0, 0); err != nil {
		t.Fatalf("ListAgents failed: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
}

func TestDelete204DoesNotParseBody(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.DeleteAgent(context.Background(), 7); err != nil {
		t.Fatalf("DeleteAgent failed: %v", err)
	}
}

func TestErrorDetailSurfaced(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Agent configuration not found"})
	}))

	_, err := client.GetAgent(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 404 || apiErr.Detail != "Agent configuration not found" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should be true")
	}
}

func TestErrorWithoutDetailFallsBack(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.GetAgent(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Detail != "Bad Gateway" {
		t.Errorf("Detail = %q, want status text fallback", apiErr.Detail)
	}
}

func TestTransportErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL)
	_, err := client.GetAgent(context.Background(), 1)

	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if tErr.Op != http.MethodGet {
		t.Errorf("Op = %q, want GET", tErr.Op)
	}
}

func TestListCallsQueryParams(t *testing.T) {
	var gotQuery string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(models.CallPage{})
	}))

	_, err := client.ListCalls(context.Background(), CallFilter{
		Status:  models.StatusCompleted,
		Page:    2,
		PerPage: 25,
	})
	if err != nil {
		t.Fatalf("ListCalls failed: %v", err)
	}
	if gotQuery != "page=2&per_page=25&status=completed" {
		t.Errorf("query = %q", gotQuery)
	}
}
