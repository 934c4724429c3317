package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/models"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DISPATCH CONSOLE"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	s.WriteString(m.renderTable())
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	} else if m.status != "" {
		s.WriteString(helpStyle.Render(m.status))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())
	return s.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"Agents", "Calls", "Active"}
	var rendered []string

	for i, tab := range tabs {
		if EntityType(i) == m.entityType {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	switch m.entityType {
	case EntityAgents:
		return m.renderAgentsTable()
	case EntityCalls:
		return m.renderCallsTable(m.cachedCalls())
	case EntityActive:
		return m.renderCallsTable(m.activeCalls())
	}
	return ""
}

func (m Model) cachedAgents() []models.AgentConfig {
	agents, _ := db.ListAgents(m.db, "", 100)
	return agents
}

func (m Model) cachedCalls() []models.Call {
	calls, _ := db.ListCalls(m.db, "", 100)
	return calls
}

func (m Model) activeCalls() []models.Call {
	var active []models.Call
	for _, call := range m.cachedCalls() {
		if !call.Status.IsTerminal() {
			active = append(active, call)
		}
	}
	return active
}

func (m Model) renderAgentsTable() string {
	agents := m.cachedAgents()

	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Name", Width: 30},
		{Title: "Scenario", Width: 12},
		{Title: "Deployed", Width: 9},
		{Title: "Version", Width: 8},
	}

	var rows []table.Row
	for _, agent := range agents {
		deployed := "no"
		if agent.IsDeployed {
			deployed = "yes"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", agent.ID),
			agent.Name,
			string(agent.ScenarioType),
			deployed,
			fmt.Sprintf("%d", agent.Version),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.height-12),
	)
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}
	return t.View()
}

func (m Model) renderCallsTable(calls []models.Call) string {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Driver", Width: 20},
		{Title: "Load", Width: 10},
		{Title: "Status", Width: 12},
		{Title: "Outcome", Width: 22},
		{Title: "Duration", Width: 8},
	}

	var rows []table.Row
	for _, call := range calls {
		duration := "-"
		if call.Duration > 0 {
			duration = fmt.Sprintf("%ds", call.Duration)
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", call.ID),
			call.DriverName,
			call.LoadNumber,
			string(call.Status),
			call.CallOutcome,
			duration,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.height-12),
	)
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}
	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View details",
		"n: New agent",
		"l: Live monitor",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		m.selectedRow++
	case "tab":
		m.entityType = (m.entityType + 1) % 3
		m.selectedRow = 0
	case "enter":
		if id, ok := m.getSelectedID(); ok {
			m.viewMode = ViewDetail
			m.selectedID = id
		}
	case "n":
		m.viewMode = ViewWizard
		m.wizard = newWizardState()
	case "l":
		m.viewMode = ViewLive
	case "r":
		m.status = "refreshing..."
		return m, m.refreshCmd()
	}

	return m, nil
}

func (m Model) getSelectedID() (int, bool) {
	switch m.entityType {
	case EntityAgents:
		agents := m.cachedAgents()
		if m.selectedRow < len(agents) {
			return agents[m.selectedRow].ID, true
		}
	case EntityCalls:
		calls := m.cachedCalls()
		if m.selectedRow < len(calls) {
			return calls[m.selectedRow].ID, true
		}
	case EntityActive:
		calls := m.activeCalls()
		if m.selectedRow < len(calls) {
			return calls[m.selectedRow].ID, true
		}
	}
	return 0, false
}
