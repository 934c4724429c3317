// ABOUTME: Tests for agent config and call request validation
// ABOUTME: Covers field bounds, phone normalization, and scenario-derived fields
package models

import (
	"errors"
	"strings"
	"testing"
)

func validConfig(scenario ScenarioType) AgentConfig {
	cfg := DefaultAgentConfig(scenario)
	cfg.Name = "Dispatch Check-In"
	cfg.Prompts = Prompts{
		Opening:  "Hi, this is Dispatch calling about load delivery status.",
		FollowUp: "Can you give me your current location and ETA?",
		Closing:  "Thanks, drive safe and remember the POD.",
	}
	return cfg
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	out := make(map[string]string)
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}

func TestValidConfigPasses(t *testing.T) {
	cfg := validConfig(ScenarioCheckIn)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestNameBounds(t *testing.T) {
	cfg := validConfig(ScenarioCheckIn)
	cfg.Name = "ab"
	fields := fieldErrors(t, cfg.Validate())
	if _, ok := fields["name"]; !ok {
		t.Error("expected name error for 2-char name")
	}

	cfg.Name = strings.Repeat("x", 101)
	fields = fieldErrors(t, cfg.Validate())
	if _, ok := fields["name"]; !ok {
		t.Error("expected name error for 101-char name")
	}
}

func TestVoiceSpeedRange(t *testing.T) {
	for _, speed := range []float64{0.4, 2.1, -1} {
		cfg := validConfig(ScenarioCheckIn)
		cfg.VoiceSettings.VoiceSpeed = speed
		fields := fieldErrors(t, cfg.Validate())
		if _, ok := fields["voice_settings.voice_speed"]; !ok {
			t.Errorf("expected voice_speed error for %v", speed)
		}
	}

	for _, speed := range []float64{0.5, 1.0, 2.0} {
		cfg := validConfig(ScenarioCheckIn)
		cfg.VoiceSettings.VoiceSpeed = speed
		if err := cfg.Validate(); err != nil {
			t.Errorf("speed %v should be valid: %v", speed, err)
		}
	}
}

func TestInterruptionSensitivityRange(t *testing.T) {
	cfg := validConfig(ScenarioCheckIn)
	cfg.VoiceSettings.InterruptionSensitivity = 1.5
	fields := fieldErrors(t, cfg.Validate())
	if _, ok := fields["voice_settings.interruption_sensitivity"]; !ok {
		t.Error("expected interruption_sensitivity error for 1.5")
	}
}

func TestPromptMinLengths(t *testing.T) {
	cfg := validConfig(ScenarioCheckIn)
	cfg.Prompts.Opening = "Hi there"
	fields := fieldErrors(t, cfg.Validate())
	if _, ok := fields["prompts.opening"]; !ok {
		t.Error("expected prompts.opening error for short prompt")
	}
}

func TestFlowBounds(t *testing.T) {
	cfg := validConfig(ScenarioCheckIn)
	cfg.Flow.MaxTurns = 51
	cfg.Flow.TimeoutSeconds = 10
	cfg.Flow.RetryAttempts = 0
	fields := fieldErrors(t, cfg.Validate())
	for _, field := range []string{
		"conversation_flow.max_turns",
		"conversation_flow.timeout_seconds",
		"conversation_flow.retry_attempts",
	} {
		if _, ok := fields[field]; !ok {
			t.Errorf("expected error for %s", field)
		}
	}
}

func TestNormalizeReplacesExtractionPoints(t *testing.T) {
	cfg := validConfig(ScenarioEmergency)
	cfg.Flow.DataExtractionPoints = []string{"whatever", "the", "caller", "sent"}
	cfg.Normalize()

	if len(cfg.Flow.DataExtractionPoints) != 7 {
		t.Fatalf("expected 7 extraction fields, got %d", len(cfg.Flow.DataExtractionPoints))
	}
	for i, want := range EmergencyExtractionFields {
		if cfg.Flow.DataExtractionPoints[i] != want {
			t.Errorf("field %d = %q, want %q", i, cfg.Flow.DataExtractionPoints[i], want)
		}
	}
}

func TestNormalizeCheckInList(t *testing.T) {
	cfg := validConfig(ScenarioCheckIn)
	cfg.Flow.DataExtractionPoints = nil
	cfg.Normalize()

	want := []string{
		"call_outcome", "driver_status", "current_location", "eta",
		"delay_reason", "unloading_status", "pod_reminder_acknowledged",
	}
	if len(cfg.Flow.DataExtractionPoints) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(cfg.Flow.DataExtractionPoints))
	}
	for i := range want {
		if cfg.Flow.DataExtractionPoints[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, cfg.Flow.DataExtractionPoints[i], want[i])
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(312) 555-0142", "+13125550142"},
		{"13125550142", "+13125550142"},
		{"+1 312 555 0142", "+13125550142"},
		{"447911123456", "+447911123456"},
	}
	for _, c := range cases {
		got, err := NormalizePhone(c.in)
		if err != nil {
			t.Errorf("NormalizePhone(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	for _, bad := range []string{"555-0142", "1234567890123456", ""} {
		if _, err := NormalizePhone(bad); err == nil {
			t.Errorf("NormalizePhone(%q) should fail", bad)
		}
	}
}

func TestCallRequestPhoneRequiredForPhoneCalls(t *testing.T) {
	req := CallInitiateRequest{
		DriverName:    "Maria Lopez",
		LoadNumber:    "LD-4471",
		AgentConfigID: 3,
		CallType:      CallTypePhone,
	}
	fields := fieldErrors(t, req.Validate())
	if _, ok := fields["phone_number"]; !ok {
		t.Error("expected phone_number error for phone call without number")
	}

	req.CallType = CallTypeWeb
	if err := req.Validate(); err != nil {
		t.Errorf("web call without phone should validate: %v", err)
	}
}

func TestCallRequestNormalizesPhone(t *testing.T) {
	req := CallInitiateRequest{
		DriverName:    "Maria Lopez",
		PhoneNumber:   "(312) 555-0142",
		LoadNumber:    "LD-4471",
		AgentConfigID: 3,
		CallType:      CallTypePhone,
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if req.PhoneNumber != "+13125550142" {
		t.Errorf("phone = %q, want +13125550142", req.PhoneNumber)
	}
}

func TestValidationErrorsFilter(t *testing.T) {
	cfg := validConfig(ScenarioCheckIn)
	cfg.Name = "x"
	cfg.Prompts.Opening = "short"
	err := cfg.Validate()

	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	prompts := errs.Filter("prompts.")
	if len(prompts) != 1 || prompts[0].Field != "prompts.opening" {
		t.Errorf("Filter(prompts.) = %v, want only prompts.opening", prompts)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	terminal := []CallStatus{StatusCompleted, StatusFailed, StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []CallStatus{StatusInitiated, StatusInProgress} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
