package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fleetcall/dispatchctl/db"
)

func (m Model) renderConfirmDeleteView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("CONFIRM DELETE"))
	s.WriteString("\n\n")
	s.WriteString(m.deleteMessage)
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n\n")
	}

	s.WriteString(helpStyle.Render("y: Delete • n/Esc: Cancel"))
	return s.String()
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		return m, m.deleteAgentCmd(m.selectedID)
	case "n", "esc":
		m.viewMode = ViewDetail
	}
	return m, nil
}

func (m Model) deleteAgentCmd(id int) tea.Cmd {
	client, database := m.client, m.db
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if err := client.DeleteAgent(ctx, id); err != nil {
			return errMsg{err}
		}
		_ = db.InvalidateAgent(database, id)
		return deletedMsg{id}
	}
}
