// ABOUTME: Client-side validation for agent configs and call requests
// ABOUTME: Mirrors the backend's field bounds so bad input fails before the POST
package models

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError names the field that failed so forms can highlight it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every failed field from one pass.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// Filter returns only the errors for fields under the given prefix, so a
// wizard step can gate on its own fields.
func (e ValidationErrors) Filter(prefix string) ValidationErrors {
	var out ValidationErrors
	for _, v := range e {
		if strings.HasPrefix(v.Field, prefix) {
			out = append(out, v)
		}
	}
	return out
}

type strRule struct {
	field    string
	value    string
	min, max int
	required bool
}

type numRule struct {
	field    string
	value    float64
	min, max float64
}

type intRule struct {
	field    string
	value    int
	min, max int
}

func checkStr(errs ValidationErrors, r strRule) ValidationErrors {
	n := len(strings.TrimSpace(r.value))
	if n == 0 {
		if r.required {
			errs = append(errs, &ValidationError{r.field, "is required"})
		}
		return errs
	}
	if n < r.min {
		errs = append(errs, &ValidationError{r.field, fmt.Sprintf("must be at least %d characters", r.min)})
	}
	if r.max > 0 && n > r.max {
		errs = append(errs, &ValidationError{r.field, fmt.Sprintf("must be at most %d characters", r.max)})
	}
	return errs
}

func checkNum(errs ValidationErrors, r numRule) ValidationErrors {
	if r.value < r.min || r.value > r.max {
		errs = append(errs, &ValidationError{r.field, fmt.Sprintf("must be between %g and %g", r.min, r.max)})
	}
	return errs
}

func checkInt(errs ValidationErrors, r intRule) ValidationErrors {
	if r.value < r.min || r.value > r.max {
		errs = append(errs, &ValidationError{r.field, fmt.Sprintf("must be between %d and %d", r.min, r.max)})
	}
	return errs
}

// Validate checks an agent config against the backend's field bounds.
func (c *AgentConfig) Validate() error {
	var errs ValidationErrors

	errs = checkStr(errs, strRule{"name", c.Name, 3, 100, true})
	errs = checkStr(errs, strRule{"description", c.Description, 0, 500, false})

	switch c.ScenarioType {
	case ScenarioCheckIn, ScenarioEmergency:
	default:
		errs = append(errs, &ValidationError{"scenario_type", "must be check_in or emergency"})
	}

	errs = checkStr(errs, strRule{"prompts.opening", c.Prompts.Opening, 10, 1000, true})
	errs = checkStr(errs, strRule{"prompts.follow_up", c.Prompts.FollowUp, 10, 1000, true})
	errs = checkStr(errs, strRule{"prompts.closing", c.Prompts.Closing, 10, 500, true})
	errs = checkStr(errs, strRule{"prompts.emergency_trigger", c.Prompts.EmergencyTrigger, 0, 1000, false})

	errs = checkNum(errs, numRule{"voice_settings.interruption_sensitivity", c.VoiceSettings.InterruptionSensitivity, 0.0, 1.0})
	errs = checkNum(errs, numRule{"voice_settings.voice_speed", c.VoiceSettings.VoiceSpeed, 0.5, 2.0})
	errs = checkNum(errs, numRule{"voice_settings.voice_temperature", c.VoiceSettings.VoiceTemperature, 0.0, 2.0})
	errs = checkNum(errs, numRule{"voice_settings.responsiveness", c.VoiceSettings.Responsiveness, 0.0, 2.0})

	errs = checkInt(errs, intRule{"conversation_flow.max_turns", c.Flow.MaxTurns, 5, 50})
	errs = checkInt(errs, intRule{"conversation_flow.timeout_seconds", c.Flow.TimeoutSeconds, 30, 300})
	errs = checkInt(errs, intRule{"conversation_flow.retry_attempts", c.Flow.RetryAttempts, 1, 5})

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize forces the scenario-derived fields before submit. The extraction
// list is never taken from the caller; it is always the fixed list for the
// scenario. Empty keyword lists fall back to the defaults.
func (c *AgentConfig) Normalize() {
	c.Flow.DataExtractionPoints = ExtractionFieldsFor(c.ScenarioType)
	if len(c.Flow.EmergencyKeywords) == 0 {
		c.Flow.EmergencyKeywords = append([]string(nil), DefaultEmergencyKeywords...)
	}
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone strips formatting and returns the E.164 form. US numbers
// get a +1 prefix; anything outside 10-15 digits is rejected.
func NormalizePhone(raw string) (string, error) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) < 10 || len(digits) > 15 {
		return "", &ValidationError{"phone_number", "must be between 10-15 digits"}
	}
	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits, nil
	case len(digits) == 10:
		return "+1" + digits, nil
	default:
		return "+" + digits, nil
	}
}

// Validate checks a call request. Phone number is only required (and
// normalized) for phone calls; web calls carry audio in-session.
func (r *CallInitiateRequest) Validate() error {
	var errs ValidationErrors

	errs = checkStr(errs, strRule{"driver_name", r.DriverName, 2, 100, true})
	errs = checkStr(errs, strRule{"load_number", r.LoadNumber, 3, 50, true})

	if r.AgentConfigID <= 0 {
		errs = append(errs, &ValidationError{"agent_config_id", "is required"})
	}

	switch r.CallType {
	case CallTypePhone:
		if strings.TrimSpace(r.PhoneNumber) == "" {
			errs = append(errs, &ValidationError{"phone_number", "is required for phone calls"})
		} else if normalized, err := NormalizePhone(r.PhoneNumber); err != nil {
			errs = append(errs, err.(*ValidationError))
		} else {
			r.PhoneNumber = normalized
		}
	case CallTypeWeb:
		if strings.TrimSpace(r.PhoneNumber) != "" {
			if normalized, err := NormalizePhone(r.PhoneNumber); err == nil {
				r.PhoneNumber = normalized
			}
		}
	default:
		errs = append(errs, &ValidationError{"call_type", "must be phone_call or web_call"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
