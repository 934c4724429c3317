package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	agentTurnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	driverTurnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	emergencyTurnStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))
)

func (m Model) renderTranscriptView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("TRANSCRIPT"))
	s.WriteString("\n\n")

	if m.transcript == nil {
		s.WriteString("No transcript loaded\n")
	} else {
		s.WriteString(fmt.Sprintf("Call #%d — %s / load %s\n\n",
			m.transcript.CallID, m.transcript.DriverName, m.transcript.LoadNumber))

		for _, turn := range m.transcript.Turns {
			style := driverTurnStyle
			if turn.Speaker == "agent" {
				style = agentTurnStyle
			}

			line := fmt.Sprintf("[%02d] %-6s %s", turn.TurnNumber, turn.Speaker+":", turn.Message)
			if turn.EmergencyDetected {
				line += "  ⚠ " + strings.Join(turn.EmergencyKeywords, ", ")
				style = emergencyTurnStyle
			}
			s.WriteString(style.Render(line))
			s.WriteString("\n")
		}

		if len(m.transcript.StructuredData) > 0 {
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Bold(true).Render("EXTRACTED DATA"))
			s.WriteString("\n")
			for key, value := range m.transcript.StructuredData {
				s.WriteString(fmt.Sprintf("  %s: %v\n", key, value))
			}
		}

		if m.transcript.TotalDuration > 0 {
			s.WriteString(fmt.Sprintf("\nDuration: %ds", m.transcript.TotalDuration))
			if m.transcript.Confidence > 0 {
				s.WriteString(fmt.Sprintf("  Confidence: %.2f", m.transcript.Confidence))
			}
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Esc: Back • q: Quit"))
	return s.String()
}

func (m Model) handleTranscriptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = ViewDetail
		m.transcript = nil
	}
	return m, nil
}
