// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides interactive full-screen dashboard for dispatch operations
package tui

import (
	"context"
	"database/sql"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fleetcall/dispatchctl/api"
	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/models"
	"github.com/fleetcall/dispatchctl/realtime"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewTranscript
	ViewWizard
	ViewLive
	ViewConfirmDelete
)

// EntityType represents which tab the list view shows
type EntityType int

const (
	EntityAgents EntityType = iota
	EntityCalls
	EntityActive
)

const fetchTimeout = 30 * time.Second

// Model is the main bubbletea model
type Model struct {
	db       *sql.DB
	client   *api.Client
	listener *realtime.Listener
	events   chan realtime.Event

	viewMode   ViewMode
	entityType EntityType

	// List view state
	selectedRow int

	// Detail view state
	selectedID int

	// Transcript view state
	transcript *models.Transcript

	// Wizard state
	wizard wizardState

	// Live monitor state
	liveFeed       []liveEntry
	emergencyCall  int
	emergencySeen  time.Time
	watchingCallID int

	// Delete confirmation state
	deleteMessage string

	// UI state
	status string
	width  int
	height int
	err    error
}

type liveEntry struct {
	At   time.Time
	Line string
}

// NewModel creates a new TUI model. listener may be nil when the realtime
// channel is unavailable; the live view then shows a hint instead of events.
func NewModel(database *sql.DB, client *api.Client, listener *realtime.Listener) Model {
	return Model{
		db:       database,
		client:   client,
		listener: listener,
		events:   make(chan realtime.Event, 64),
		viewMode: ViewList,
		width:    80,
		height:   24,
	}
}

// Run connects the realtime listener and blocks in the bubbletea event loop.
func Run(database *sql.DB, client *api.Client, listener *realtime.Listener) error {
	m := NewModel(database, client, listener)

	if listener != nil {
		unsubscribe := listener.Subscribe("*", func(ev realtime.Event) {
			select {
			case m.events <- ev:
			default:
				// UI is behind; drop rather than block the read loop
			}
		})
		defer unsubscribe()

		if err := listener.Connect(context.Background()); err == nil {
			defer listener.Close()
		} else {
			m.listener = nil
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.waitForEvent())
}

// Messages produced by commands.
type refreshedMsg struct{}
type transcriptMsg struct{ transcript *models.Transcript }
type wizardDoneMsg struct{ created *models.AgentConfig }
type deletedMsg struct{ id int }
type errMsg struct{ err error }
type eventMsg struct{ event realtime.Event }

// refreshCmd pulls fresh agents and calls into the local cache.
func (m Model) refreshCmd() tea.Cmd {
	client, database := m.client, m.db
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		agents, err := client.ListAgents(ctx, "", 1, 100)
		if err != nil {
			return errMsg{err}
		}
		if err := db.PutAgents(database, agents.Configs); err != nil {
			return errMsg{err}
		}

		calls, err := client.ListCalls(ctx, api.CallFilter{PerPage: 100})
		if err != nil {
			return errMsg{err}
		}
		if err := db.PutCalls(database, calls.Calls); err != nil {
			return errMsg{err}
		}

		return refreshedMsg{}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg{ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshedMsg:
		m.status = "refreshed"
		m.err = nil
		return m, nil

	case transcriptMsg:
		m.transcript = msg.transcript
		m.viewMode = ViewTranscript
		return m, nil

	case wizardDoneMsg:
		m.wizard = wizardState{}
		m.viewMode = ViewList
		m.entityType = EntityAgents
		m.status = "agent created: " + msg.created.Name
		return m, m.refreshCmd()

	case deletedMsg:
		m.viewMode = ViewList
		m.status = "agent deleted"
		return m, m.refreshCmd()

	case errMsg:
		m.err = msg.err
		m.wizard.pending = false
		return m, nil

	case eventMsg:
		m = m.applyEvent(msg.event)
		return m, m.waitForEvent()
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewTranscript:
		return m.renderTranscriptView()
	case ViewWizard:
		return m.renderWizardView()
	case ViewLive:
		return m.renderLiveView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The wizard owns all keys so typing never triggers shortcuts
	if m.viewMode == ViewWizard {
		return m.handleWizardKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewTranscript:
		return m.handleTranscriptKeys(msg)
	case ViewLive:
		return m.handleLiveKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("196")).
			Padding(0, 1)
)
