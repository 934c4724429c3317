package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fleetcall/dispatchctl/db"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(22)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DETAIL VIEW"))
	s.WriteString("\n\n")

	switch m.entityType {
	case EntityAgents:
		s.WriteString(m.renderAgentDetail())
	default:
		s.WriteString(m.renderCallDetail())
	}

	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(m.renderDetailHelp())
	return s.String()
}

func (m Model) renderAgentDetail() string {
	agent, err := db.GetAgent(m.db, m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if agent == nil {
		return "Agent not in cache; press r to refresh"
	}

	var s strings.Builder
	s.WriteString(m.renderField("Name", agent.Name))
	s.WriteString(m.renderField("Scenario", string(agent.ScenarioType)))
	s.WriteString(m.renderField("Description", agent.Description))
	s.WriteString(m.renderField("Active", fmt.Sprintf("%t", agent.IsActive)))
	s.WriteString(m.renderField("Deployed", fmt.Sprintf("%t (version %d)", agent.IsDeployed, agent.Version)))

	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("PROMPTS"))
	s.WriteString("\n")
	s.WriteString(m.renderField("Opening", agent.Prompts.Opening))
	s.WriteString(m.renderField("Follow-up", agent.Prompts.FollowUp))
	s.WriteString(m.renderField("Closing", agent.Prompts.Closing))
	if agent.Prompts.EmergencyTrigger != "" {
		s.WriteString(m.renderField("Emergency trigger", agent.Prompts.EmergencyTrigger))
	}

	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("FLOW"))
	s.WriteString("\n")
	s.WriteString(m.renderField("Max turns", fmt.Sprintf("%d", agent.Flow.MaxTurns)))
	s.WriteString(m.renderField("Timeout", fmt.Sprintf("%ds", agent.Flow.TimeoutSeconds)))
	s.WriteString(m.renderField("Emergency keywords", strings.Join(agent.Flow.EmergencyKeywords, ", ")))
	s.WriteString(m.renderField("Extraction fields", strings.Join(agent.Flow.DataExtractionPoints, ", ")))

	return s.String()
}

func (m Model) renderCallDetail() string {
	call, err := db.GetCall(m.db, m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if call == nil {
		return "Call not in cache; press r to refresh"
	}

	var s strings.Builder
	s.WriteString(m.renderField("Driver", call.DriverName))
	s.WriteString(m.renderField("Load", call.LoadNumber))
	s.WriteString(m.renderField("Type", string(call.CallType)))
	s.WriteString(m.renderField("Status", string(call.Status)))
	s.WriteString(m.renderField("Outcome", call.CallOutcome))
	if call.PhoneNumber != "" {
		s.WriteString(m.renderField("Phone", call.PhoneNumber))
	}
	if call.Duration > 0 {
		s.WriteString(m.renderField("Duration", fmt.Sprintf("%ds", call.Duration)))
	}
	if call.Confidence > 0 {
		s.WriteString(m.renderField("Confidence", fmt.Sprintf("%.2f", call.Confidence)))
	}
	if call.ErrorMessage != "" {
		s.WriteString(m.renderField("Error", call.ErrorMessage))
	}

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	var help []string
	if m.entityType == EntityAgents {
		help = []string{"Esc: Back", "d: Delete", "q: Quit"}
	} else {
		help = []string{"Esc: Back", "t: Transcript", "w: Watch live", "q: Quit"}
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.err = nil
	case "d":
		if m.entityType == EntityAgents {
			m.viewMode = ViewConfirmDelete
			m.deleteMessage = fmt.Sprintf("Delete agent config %d?", m.selectedID)
		}
	case "t":
		if m.entityType != EntityAgents {
			return m, m.fetchTranscriptCmd(m.selectedID)
		}
	case "w":
		if m.entityType != EntityAgents {
			m.watchingCallID = m.selectedID
			m.viewMode = ViewLive
			if m.listener != nil {
				_ = m.listener.JoinCallRoom(m.selectedID)
			}
		}
	}

	return m, nil
}

func (m Model) fetchTranscriptCmd(callID int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		transcript, err := client.GetTranscript(ctx, callID)
		if err != nil {
			return errMsg{err}
		}
		return transcriptMsg{transcript}
	}
}
