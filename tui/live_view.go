package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/models"
	"github.com/fleetcall/dispatchctl/realtime"
)

const (
	liveFeedLimit = 200
	// emergencyBannerFor keeps the banner up long enough to be seen even if
	// events keep scrolling.
	emergencyBannerFor = 30 * time.Second
)

// applyEvent folds one realtime event into the model: the live feed, the
// cache, and the emergency banner.
func (m Model) applyEvent(ev realtime.Event) Model {
	line := ""

	switch ev.Name {
	case realtime.EventCallInitiated:
		var call models.Call
		if ev.Decode(&call) == nil {
			_ = db.PutCall(m.db, &call)
			line = fmt.Sprintf("call #%d initiated: %s / load %s", call.ID, call.DriverName, call.LoadNumber)
		}
	case realtime.EventCallStatusUpdate, realtime.EventCallCompleted:
		var update models.CallStatusUpdate
		if ev.Decode(&update) == nil {
			_ = db.UpdateCallStatus(m.db, &update)
			line = fmt.Sprintf("call #%d → %s", update.CallID, update.Status)
		}
	case realtime.EventConversationUpdate:
		var turn struct {
			CallID  int    `json:"call_id"`
			Speaker string `json:"speaker"`
			Message string `json:"message"`
		}
		if ev.Decode(&turn) == nil {
			line = fmt.Sprintf("call #%d %s: %s", turn.CallID, turn.Speaker, turn.Message)
		}
	case realtime.EventEmergencyDetected, realtime.EventEmergencyProtocol:
		var alert struct {
			CallID int `json:"call_id"`
		}
		if ev.Decode(&alert) == nil {
			m.emergencyCall = alert.CallID
			m.emergencySeen = ev.ReceivedAt
			line = fmt.Sprintf("EMERGENCY on call #%d (%s)", alert.CallID, ev.Name)
		}
	}

	if line == "" {
		line = fmt.Sprintf("%s %s", ev.Name, string(ev.Data))
	}

	m.liveFeed = append(m.liveFeed, liveEntry{At: ev.ReceivedAt, Line: line})
	if len(m.liveFeed) > liveFeedLimit {
		m.liveFeed = m.liveFeed[len(m.liveFeed)-liveFeedLimit:]
	}
	return m
}

func (m Model) renderLiveView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("LIVE MONITOR"))
	s.WriteString("\n")

	if m.emergencyCall > 0 && time.Since(m.emergencySeen) < emergencyBannerFor {
		s.WriteString(bannerStyle.Render(fmt.Sprintf(" 🚨 EMERGENCY DETECTED ON CALL #%d ", m.emergencyCall)))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	if m.listener == nil {
		s.WriteString("Realtime channel unavailable; reconnect by restarting the console\n")
	} else if m.watchingCallID > 0 {
		s.WriteString(fmt.Sprintf("Watching call #%d\n\n", m.watchingCallID))
	}

	if len(m.liveFeed) == 0 {
		s.WriteString("Waiting for events...\n")
	}

	// Newest at the bottom, clipped to the window
	visible := m.height - 10
	if visible < 1 {
		visible = 1
	}
	start := len(m.liveFeed) - visible
	if start < 0 {
		start = 0
	}
	for _, entry := range m.liveFeed[start:] {
		s.WriteString(fmt.Sprintf("[%s] %s\n", entry.At.Format("15:04:05"), entry.Line))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Esc: Back • c: Clear • q: Quit"))
	return s.String()
}

func (m Model) handleLiveKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.watchingCallID > 0 && m.listener != nil {
			_ = m.listener.LeaveCallRoom(m.watchingCallID)
		}
		m.watchingCallID = 0
		m.viewMode = ViewList
	case "c":
		m.liveFeed = nil
		m.emergencyCall = 0
	}
	return m, nil
}
