// ABOUTME: Data models for dispatch voice-agent entities
// ABOUTME: Defines AgentConfig, Call, Transcript, and AnalyticsSummary structs
package models

import (
	"time"
)

type ScenarioType string

const (
	ScenarioCheckIn   ScenarioType = "check_in"
	ScenarioEmergency ScenarioType = "emergency"
)

type CallType string

const (
	CallTypePhone CallType = "phone_call"
	CallTypeWeb   CallType = "web_call"
)

type CallStatus string

const (
	StatusInitiated  CallStatus = "initiated"
	StatusInProgress CallStatus = "in_progress"
	StatusCompleted  CallStatus = "completed"
	StatusFailed     CallStatus = "failed"
	StatusCancelled  CallStatus = "cancelled"
)

// Call outcome classifications as reported by the backend.
const (
	OutcomeInTransitUpdate     = "In-Transit Update"
	OutcomeArrivalConfirmation = "Arrival Confirmation"
	OutcomeEmergencyEscalation = "Emergency Escalation"
)

// Driver status values extracted from check-in calls.
const (
	DriverDriving   = "Driving"
	DriverDelayed   = "Delayed"
	DriverArrived   = "Arrived"
	DriverUnloading = "Unloading"
)

// Emergency type values extracted from emergency calls.
const (
	EmergencyAccident  = "Accident"
	EmergencyBreakdown = "Breakdown"
	EmergencyMedical   = "Medical"
	EmergencyOther     = "Other"
)

type Prompts struct {
	Opening          string   `json:"opening"`
	FollowUp         string   `json:"follow_up"`
	Closing          string   `json:"closing"`
	EmergencyTrigger string   `json:"emergency_trigger,omitempty"`
	ProbingQuestions []string `json:"probing_questions,omitempty"`
}

type VoiceSettings struct {
	Backchanneling          bool    `json:"backchanneling"`
	FillerWords             bool    `json:"filler_words"`
	InterruptionSensitivity float64 `json:"interruption_sensitivity"`
	VoiceSpeed              float64 `json:"voice_speed"`
	VoiceTemperature        float64 `json:"voice_temperature"`
	Responsiveness          float64 `json:"responsiveness"`
}

type ConversationFlow struct {
	MaxTurns             int      `json:"max_turns"`
	TimeoutSeconds       int      `json:"timeout_seconds"`
	RetryAttempts        int      `json:"retry_attempts"`
	EmergencyKeywords    []string `json:"emergency_keywords"`
	DataExtractionPoints []string `json:"data_extraction_points"`
}

type AgentConfig struct {
	ID              int              `json:"id,omitempty"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	ScenarioType    ScenarioType     `json:"scenario_type"`
	Prompts         Prompts          `json:"prompts"`
	VoiceSettings   VoiceSettings    `json:"voice_settings"`
	Flow            ConversationFlow `json:"conversation_flow"`
	ProviderAgentID string           `json:"retell_agent_id,omitempty"`
	IsActive        bool             `json:"is_active"`
	IsDeployed      bool             `json:"is_deployed"`
	Version         int              `json:"version,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type Call struct {
	ID             int        `json:"id"`
	ProviderCallID string     `json:"retell_call_id,omitempty"`
	DriverName     string     `json:"driver_name"`
	PhoneNumber    string     `json:"phone_number,omitempty"`
	LoadNumber     string     `json:"load_number"`
	AgentConfigID  int        `json:"agent_config_id"`
	CallType       CallType   `json:"call_type"`
	Status         CallStatus `json:"status"`
	CallOutcome    string     `json:"call_outcome,omitempty"`
	Duration       int        `json:"duration,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Confidence     float64    `json:"extraction_confidence,omitempty"`
	QualityScore   float64    `json:"conversation_quality_score,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CallDetail is a Call plus transcript and extracted structured data.
type CallDetail struct {
	Call
	RawTranscript   string         `json:"raw_transcript,omitempty"`
	StructuredData  map[string]any `json:"structured_data,omitempty"`
	AgentConfigName string         `json:"agent_config_name,omitempty"`
	ScenarioType    ScenarioType   `json:"scenario_type,omitempty"`
}

type TranscriptTurn struct {
	TurnNumber        int       `json:"turn_number"`
	Speaker           string    `json:"speaker"` // "agent" or "driver"
	Message           string    `json:"message"`
	Timestamp         time.Time `json:"timestamp"`
	Confidence        float64   `json:"confidence_score,omitempty"`
	EmergencyDetected bool      `json:"emergency_trigger_detected"`
	EmergencyKeywords []string  `json:"emergency_keywords,omitempty"`
}

type Transcript struct {
	CallID         int              `json:"call_id"`
	DriverName     string           `json:"driver_name"`
	LoadNumber     string           `json:"load_number"`
	TotalDuration  int              `json:"total_duration,omitempty"`
	Turns          []TranscriptTurn `json:"turns"`
	StructuredData map[string]any   `json:"structured_data,omitempty"`
	Confidence     float64          `json:"extraction_confidence,omitempty"`
}

type AnalyticsSummary struct {
	PeriodDays      int            `json:"period_days"`
	TotalCalls      int            `json:"total_calls"`
	CompletedCalls  int            `json:"completed_calls"`
	FailedCalls     int            `json:"failed_calls"`
	SuccessRate     float64        `json:"success_rate"`
	AverageDuration float64        `json:"average_duration_seconds"`
	CallOutcomes    map[string]int `json:"call_outcomes"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// CallStatusUpdate is the shape pushed on the realtime channel and returned
// by GET /calls/{id}/status.
type CallStatusUpdate struct {
	CallID    int        `json:"call_id"`
	Status    CallStatus `json:"status"`
	Duration  int        `json:"duration,omitempty"`
	Message   string     `json:"message,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

type CallInitiateRequest struct {
	DriverName    string   `json:"driver_name"`
	PhoneNumber   string   `json:"phone_number,omitempty"`
	LoadNumber    string   `json:"load_number"`
	AgentConfigID int      `json:"agent_config_id"`
	CallType      CallType `json:"call_type"`
}

// WebCallSession is returned when a call is initiated with call_type
// web_call: where to dial the audio stream and the one-time token for it.
type WebCallSession struct {
	Call        Call   `json:"call"`
	AudioWSURL  string `json:"audio_ws_url"`
	AccessToken string `json:"access_token"`
}

// DefaultEmergencyKeywords trigger the emergency protocol mid-conversation.
var DefaultEmergencyKeywords = []string{
	"emergency", "accident", "blowout", "medical", "breakdown", "crash", "injured",
}

// CheckInExtractionFields is the fixed extraction list for check-in calls.
var CheckInExtractionFields = []string{
	"call_outcome",
	"driver_status",
	"current_location",
	"eta",
	"delay_reason",
	"unloading_status",
	"pod_reminder_acknowledged",
}

// EmergencyExtractionFields is the fixed extraction list for emergency calls.
var EmergencyExtractionFields = []string{
	"call_outcome",
	"emergency_type",
	"safety_status",
	"injury_status",
	"emergency_location",
	"load_secure",
	"escalation_status",
}

// ExtractionFieldsFor returns the extraction list a scenario carries. The
// backend derives structured data from exactly these fields, so any
// caller-supplied list is replaced with this one before submit.
func ExtractionFieldsFor(scenario ScenarioType) []string {
	switch scenario {
	case ScenarioEmergency:
		return append([]string(nil), EmergencyExtractionFields...)
	default:
		return append([]string(nil), CheckInExtractionFields...)
	}
}

// DefaultAgentConfig returns a config pre-filled with the backend defaults
// for the given scenario.
func DefaultAgentConfig(scenario ScenarioType) AgentConfig {
	return AgentConfig{
		ScenarioType: scenario,
		VoiceSettings: VoiceSettings{
			Backchanneling:          true,
			FillerWords:             true,
			InterruptionSensitivity: 0.5,
			VoiceSpeed:              1.0,
			VoiceTemperature:        0.7,
			Responsiveness:          1.0,
		},
		Flow: ConversationFlow{
			MaxTurns:             20,
			TimeoutSeconds:       120,
			RetryAttempts:        3,
			EmergencyKeywords:    append([]string(nil), DefaultEmergencyKeywords...),
			DataExtractionPoints: ExtractionFieldsFor(scenario),
		},
	}
}

// AgentConfigPage is the paginated agent list envelope.
type AgentConfigPage struct {
	Configs []AgentConfig `json:"configs"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	HasNext bool          `json:"has_next"`
	HasPrev bool          `json:"has_prev"`
}

// CallPage is the paginated call list envelope.
type CallPage struct {
	Calls   []Call `json:"calls"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	HasNext bool   `json:"has_next"`
	HasPrev bool   `json:"has_prev"`
}

// IsTerminal reports whether a call status can no longer change.
func (s CallStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}
