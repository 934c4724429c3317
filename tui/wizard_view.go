package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fleetcall/dispatchctl/models"
)

// wizardStep is one page of the agent creation flow.
type wizardStep int

const (
	stepBasics wizardStep = iota
	stepPrompts
	stepVoice
	stepFlow
	stepReview
)

var stepTitles = map[wizardStep]string{
	stepBasics:  "BASICS",
	stepPrompts: "PROMPTS",
	stepVoice:   "VOICE SETTINGS",
	stepFlow:    "CONVERSATION FLOW",
	stepReview:  "REVIEW",
}

// stepFields maps each step to the validation-error prefixes it owns, so a
// step only gates on its own fields.
var stepFields = map[wizardStep][]string{
	stepBasics:  {"name", "description", "scenario_type"},
	stepPrompts: {"prompts."},
	stepVoice:   {"voice_settings."},
	stepFlow:    {"conversation_flow."},
}

type wizardState struct {
	step       wizardStep
	inputs     []textinput.Model
	focusIndex int
	cfg        models.AgentConfig
	errs       models.ValidationErrors
	// pending guards against double submit while the create is in flight
	pending bool
}

func newWizardState() wizardState {
	w := wizardState{
		cfg: models.DefaultAgentConfig(models.ScenarioCheckIn),
	}
	w.cfg.IsActive = true
	w.inputs = w.buildInputs()
	w.focusIndex = 0
	w.updateFocus()
	return w
}

func newInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.SetValue(value)
	return in
}

func (w wizardState) buildInputs() []textinput.Model {
	cfg := w.cfg
	switch w.step {
	case stepBasics:
		return []textinput.Model{
			newInput("Name", cfg.Name, 100),
			newInput("Description", cfg.Description, 500),
			newInput("Scenario (check_in or emergency)", string(cfg.ScenarioType), 20),
		}
	case stepPrompts:
		return []textinput.Model{
			newInput("Opening prompt", cfg.Prompts.Opening, 1000),
			newInput("Follow-up prompt", cfg.Prompts.FollowUp, 1000),
			newInput("Closing prompt", cfg.Prompts.Closing, 500),
			newInput("Emergency trigger prompt (optional)", cfg.Prompts.EmergencyTrigger, 1000),
		}
	case stepVoice:
		return []textinput.Model{
			newInput("Voice speed (0.5-2.0)", formatFloat(cfg.VoiceSettings.VoiceSpeed), 8),
			newInput("Voice temperature (0-2)", formatFloat(cfg.VoiceSettings.VoiceTemperature), 8),
			newInput("Responsiveness (0-2)", formatFloat(cfg.VoiceSettings.Responsiveness), 8),
			newInput("Interruption sensitivity (0-1)", formatFloat(cfg.VoiceSettings.InterruptionSensitivity), 8),
		}
	case stepFlow:
		return []textinput.Model{
			newInput("Max turns (5-50)", strconv.Itoa(cfg.Flow.MaxTurns), 4),
			newInput("Timeout seconds (30-300)", strconv.Itoa(cfg.Flow.TimeoutSeconds), 4),
			newInput("Retry attempts (1-5)", strconv.Itoa(cfg.Flow.RetryAttempts), 2),
			newInput("Emergency keywords (comma separated)", strings.Join(cfg.Flow.EmergencyKeywords, ", "), 500),
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (w *wizardState) updateFocus() {
	for i := range w.inputs {
		if i == w.focusIndex {
			w.inputs[i].Focus()
		} else {
			w.inputs[i].Blur()
		}
	}
}

// applyInputs copies the current step's input values into the config.
// Numeric parse failures surface as field errors.
func (w *wizardState) applyInputs() models.ValidationErrors {
	var errs models.ValidationErrors

	parseFloat := func(field, raw string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			errs = append(errs, &models.ValidationError{Field: field, Message: "must be a number"})
		}
		return v
	}
	parseInt := func(field, raw string) int {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, &models.ValidationError{Field: field, Message: "must be a whole number"})
		}
		return v
	}

	switch w.step {
	case stepBasics:
		w.cfg.Name = w.inputs[0].Value()
		w.cfg.Description = w.inputs[1].Value()
		w.cfg.ScenarioType = models.ScenarioType(strings.TrimSpace(w.inputs[2].Value()))
	case stepPrompts:
		w.cfg.Prompts.Opening = w.inputs[0].Value()
		w.cfg.Prompts.FollowUp = w.inputs[1].Value()
		w.cfg.Prompts.Closing = w.inputs[2].Value()
		w.cfg.Prompts.EmergencyTrigger = w.inputs[3].Value()
	case stepVoice:
		w.cfg.VoiceSettings.VoiceSpeed = parseFloat("voice_settings.voice_speed", w.inputs[0].Value())
		w.cfg.VoiceSettings.VoiceTemperature = parseFloat("voice_settings.voice_temperature", w.inputs[1].Value())
		w.cfg.VoiceSettings.Responsiveness = parseFloat("voice_settings.responsiveness", w.inputs[2].Value())
		w.cfg.VoiceSettings.InterruptionSensitivity = parseFloat("voice_settings.interruption_sensitivity", w.inputs[3].Value())
	case stepFlow:
		w.cfg.Flow.MaxTurns = parseInt("conversation_flow.max_turns", w.inputs[0].Value())
		w.cfg.Flow.TimeoutSeconds = parseInt("conversation_flow.timeout_seconds", w.inputs[1].Value())
		w.cfg.Flow.RetryAttempts = parseInt("conversation_flow.retry_attempts", w.inputs[2].Value())
		w.cfg.Flow.EmergencyKeywords = splitKeywords(w.inputs[3].Value())
	}
	return errs
}

func splitKeywords(raw string) []string {
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// stepErrors validates the full config and keeps only this step's fields.
func (w *wizardState) stepErrors() models.ValidationErrors {
	errs := w.applyInputs()
	if len(errs) > 0 {
		return errs
	}

	err := w.cfg.Validate()
	if err == nil {
		return nil
	}
	all, ok := err.(models.ValidationErrors)
	if !ok {
		return models.ValidationErrors{&models.ValidationError{Field: "config", Message: err.Error()}}
	}

	var out models.ValidationErrors
	for _, prefix := range stepFields[w.step] {
		out = append(out, all.Filter(prefix)...)
	}
	return out
}

// advance moves to the next step if this one validates.
func (w *wizardState) advance() bool {
	if errs := w.stepErrors(); len(errs) > 0 {
		w.errs = errs
		return false
	}

	w.errs = nil
	w.step++
	w.inputs = w.buildInputs()
	w.focusIndex = 0
	w.updateFocus()
	return true
}

func (w *wizardState) back() {
	if w.step == stepBasics {
		return
	}
	// Keep whatever was typed; bounds re-check on the way forward
	_ = w.applyInputs()
	w.errs = nil
	w.step--
	w.inputs = w.buildInputs()
	w.focusIndex = 0
	w.updateFocus()
}

func (m Model) renderWizardView() string {
	var s strings.Builder
	w := m.wizard

	s.WriteString(titleStyle.Render(fmt.Sprintf("NEW AGENT — STEP %d/5: %s", w.step+1, stepTitles[w.step])))
	s.WriteString("\n\n")

	if w.step == stepReview {
		s.WriteString(m.renderWizardReview())
	} else {
		for i, input := range w.inputs {
			if i == w.focusIndex {
				s.WriteString("> ")
			} else {
				s.WriteString("  ")
			}
			s.WriteString(input.View())
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	for _, e := range w.errs {
		s.WriteString(errorStyle.Render("✗ " + e.Error()))
		s.WriteString("\n")
	}

	if w.step == stepReview {
		if w.pending {
			s.WriteString(helpStyle.Render("Creating..."))
		} else {
			s.WriteString(helpStyle.Render("Enter: Create • Esc: Back"))
		}
	} else {
		s.WriteString(helpStyle.Render("Tab: Next field • Enter: Next step • Esc: Back"))
	}
	return s.String()
}

func (m Model) renderWizardReview() string {
	var s strings.Builder
	cfg := m.wizard.cfg

	// The review shows what will actually be submitted, including the
	// extraction list derived from the scenario.
	derived := cfg
	derived.Normalize()

	s.WriteString(m.renderField("Name", derived.Name))
	s.WriteString(m.renderField("Scenario", string(derived.ScenarioType)))
	s.WriteString(m.renderField("Opening", derived.Prompts.Opening))
	s.WriteString(m.renderField("Follow-up", derived.Prompts.FollowUp))
	s.WriteString(m.renderField("Closing", derived.Prompts.Closing))
	s.WriteString(m.renderField("Voice speed", formatFloat(derived.VoiceSettings.VoiceSpeed)))
	s.WriteString(m.renderField("Max turns", strconv.Itoa(derived.Flow.MaxTurns)))
	s.WriteString(m.renderField("Emergency keywords", strings.Join(derived.Flow.EmergencyKeywords, ", ")))

	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("EXTRACTION FIELDS (fixed per scenario)"))
	s.WriteString("\n")
	for _, field := range derived.Flow.DataExtractionPoints {
		s.WriteString("  • " + field + "\n")
	}
	return s.String()
}

func (m Model) handleWizardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := &m.wizard

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if w.step == stepBasics {
			m.viewMode = ViewList
			m.wizard = wizardState{}
		} else {
			w.back()
		}
		return m, nil
	case "tab", "down":
		if len(w.inputs) > 0 {
			w.focusIndex = (w.focusIndex + 1) % len(w.inputs)
			w.updateFocus()
		}
		return m, nil
	case "shift+tab", "up":
		if len(w.inputs) > 0 {
			w.focusIndex = (w.focusIndex + len(w.inputs) - 1) % len(w.inputs)
			w.updateFocus()
		}
		return m, nil
	case "enter":
		if w.step == stepReview {
			if w.pending {
				return m, nil
			}
			w.pending = true
			return m, m.submitWizardCmd(w.cfg)
		}
		w.advance()
		return m, nil
	}

	if len(w.inputs) > 0 {
		var cmd tea.Cmd
		w.inputs[w.focusIndex], cmd = w.inputs[w.focusIndex].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) submitWizardCmd(cfg models.AgentConfig) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		created, err := client.CreateAgent(ctx, &cfg)
		if err != nil {
			return errMsg{err}
		}
		return wizardDoneMsg{created}
	}
}
