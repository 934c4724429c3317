// ABOUTME: Tests for the realtime listener
// ABOUTME: Covers event fan-out, room joins, and reconnect give-up behavior
package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/fleetcall/dispatchctl/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestEventsDispatchedToSubscribers(t *testing.T) {
	received := make(chan Event, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		update := models.CallStatusUpdate{CallID: 12, Status: models.StatusInProgress}
		data, _ := json.Marshal(update)
		_ = conn.WriteJSON(Envelope{Event: EventCallStatusUpdate, Data: data})
		_ = conn.WriteJSON(Envelope{Event: EventEmergencyDetected, Data: json.RawMessage(`{"call_id":12}`)})

		// Hold the connection open until the client hangs up
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	l := NewListener(wsURL(srv))
	l.Subscribe(EventCallStatusUpdate, func(ev Event) { received <- ev })
	l.Subscribe("*", func(ev Event) { received <- ev })

	if err := l.Connect(t.Context()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer l.Close()

	// status update reaches both the named and wildcard subscriber, the
	// emergency event only the wildcard one
	names := map[string]int{}
	for i := 0; i < 3; i++ {
		select {
		case ev := <-received:
			names[ev.Name]++
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d events: %v", i, names)
		}
	}
	if names[EventCallStatusUpdate] != 2 || names[EventEmergencyDetected] != 1 {
		t.Errorf("unexpected dispatch counts: %v", names)
	}
}

func TestStatusPayloadDecodes(t *testing.T) {
	data, _ := json.Marshal(models.CallStatusUpdate{CallID: 7, Status: models.StatusCompleted, Duration: 95})
	ev := Event{Name: EventCallStatusUpdate, Data: data}

	var update models.CallStatusUpdate
	if err := ev.Decode(&update); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if update.CallID != 7 || update.Status != models.StatusCompleted || update.Duration != 95 {
		t.Errorf("unexpected payload: %+v", update)
	}
}

func TestJoinCallRoomEmitted(t *testing.T) {
	got := make(chan Envelope, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var env Envelope
		if err := conn.ReadJSON(&env); err == nil {
			got <- env
		}
	}))
	defer srv.Close()

	l := NewListener(wsURL(srv))
	if err := l.Connect(t.Context()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer l.Close()

	if err := l.JoinCallRoom(42); err != nil {
		t.Fatalf("JoinCallRoom failed: %v", err)
	}

	select {
	case env := <-got:
		if env.Event != "join_call_room" {
			t.Errorf("event = %q, want join_call_room", env.Event)
		}
		var payload roomPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.CallID != 42 {
			t.Errorf("payload = %s", env.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("join_call_room never arrived")
	}
}

func TestReconnectStopsAfterMaxAttempts(t *testing.T) {
	var attempts atomic.Int64
	first := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n == 1 {
			// First connection succeeds, then drops immediately
			conn, err := upgrader.Upgrade(w, r, nil)
			if err == nil {
				_ = conn.Close()
			}
			close(first)
			return
		}
		// Every reconnect is refused
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := NewListener(wsURL(srv), WithReconnectPolicy(time.Millisecond, 5*time.Millisecond, 3))
	if err := l.Connect(t.Context()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer l.Close()

	<-first
	// 1 initial dial + (1 immediate retry + 3 backed-off retries)
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if attempts.Load() >= 5 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	settled := attempts.Load()
	time.Sleep(100 * time.Millisecond)
	if attempts.Load() != settled {
		t.Errorf("reconnects continued past the attempt cap: %d -> %d", settled, attempts.Load())
	}
	if settled != 5 {
		t.Errorf("total dials = %d, want 5", settled)
	}
}

func TestBackoffDelaysDoubleAndCap(t *testing.T) {
	l := NewListener("ws://unused", WithReconnectPolicy(time.Second, 30*time.Second, 5))
	policy := l.newBackoff()

	want := []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
	}
	for i, w := range want {
		got := policy.NextBackOff()
		if got != w {
			t.Errorf("delay %d = %v, want %v", i, got, w)
		}
	}
	if policy.NextBackOff() != backoff.Stop {
		t.Error("expected backoff.Stop after max attempts")
	}
}

func TestBackoffNeverExceedsCap(t *testing.T) {
	l := NewListener("ws://unused", WithReconnectPolicy(time.Second, 4*time.Second, 10))
	policy := l.newBackoff()

	for i := 0; i < 10; i++ {
		d := policy.NextBackOff()
		if d == backoff.Stop {
			break
		}
		if d > 4*time.Second {
			t.Errorf("delay %d = %v exceeds 4s cap", i, d)
		}
	}
}
