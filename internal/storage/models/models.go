package models

import "time"

const (
	EmergencyStatusActive   = "active"
	EmergencyStatusResolved = "resolved"

	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"

	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"

	CallStatusRinging = "ringing"
	CallStatusActive  = "active"
	CallStatusEnded   = "ended"
	CallStatusMissed  = "missed"
)

// Sample is one stored biometric reading from health_realtime or
// health_aggregated. Value is a pointer because the phone app occasionally
// uploads rows without a numeric value.
type Sample struct {
	ID         string   `json:"id,omitempty"`
	Email      string   `json:"email"`
	MetricName string   `json:"metric_name"`
	Value      *float64 `json:"value"`
	Units      string   `json:"units,omitempty"`
	Timestamp  string   `json:"timestamp"`
}

// AbnormalFinding is a sample whose value fell outside its metric's
// configured normal band. Collected per evaluation pass, never persisted.
type AbnormalFinding struct {
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Timestamp string  `json:"timestamp"`
}

// MetricSnapshot is the per-metric rollup fed to the AI analyzer. Stats are
// pointers so "no data in that window" survives serialization into the
// prompt as a distinguishable absence.
type MetricSnapshot struct {
	MetricName        string   `json:"metric_name"`
	LastHourCurrent   *float64 `json:"last_hour_current"`
	LastHourCurrentTS string   `json:"last_hour_current_ts,omitempty"`
	LastHourAvg       *float64 `json:"last_hour_avg"`
	LastHourLow       *float64 `json:"last_hour_low"`
	LastHourHigh      *float64 `json:"last_hour_high"`
	TodayAvg          *float64 `json:"today_avg"`
	TodayLow          *float64 `json:"today_low"`
	TodayHigh         *float64 `json:"today_high"`
}

// Emergency rows carry the single invariant of the escalation pipeline:
// at most one active emergency per conversation.
type Emergency struct {
	ID             string     `json:"id,omitempty"`
	PatientID      string     `json:"patient_id"`
	DoctorID       string     `json:"doctor_id"`
	ConversationID int64      `json:"conversation_id"`
	VideoCallID    *string    `json:"video_call_id"`
	Status         string     `json:"status"`
	CreatedAt      string     `json:"created_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

type Alert struct {
	ID             string         `json:"id,omitempty"`
	PatientID      string         `json:"patient_id"`
	PatientEmail   string         `json:"patient_email"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	AlertType      string         `json:"alert_type"`
	Severity       string         `json:"severity"`
	Status         string         `json:"status"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	EmergencyID    *string        `json:"emergency_id,omitempty"`
	AcknowledgedBy *string        `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at,omitempty"`
	CreatedAt      string         `json:"created_at,omitempty"`
}

// EmergencyCheckJob is a row of emergency_check_queue. Rows are created by a
// storage trigger when suspicious samples land; this service only consumes
// them. Status is monotonic: pending -> processing -> completed|failed.
type EmergencyCheckJob struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	MetricSource string  `json:"metric_source,omitempty"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message,omitempty"`
	ProcessedAt  *string `json:"processed_at,omitempty"`
}

type Conversation struct {
	ID        int64  `json:"id"`
	PatientID string `json:"patient_id"`
	CreatedAt string `json:"created_at"`
}

type DoctorLink struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Status    string `json:"status"`
}

type Profile struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type VideoCall struct {
	ID             int64   `json:"id,omitempty"`
	ConversationID int64   `json:"conversation_id"`
	Provider       string  `json:"provider"`
	RoomName       string  `json:"room_name"`
	RoomURL        string  `json:"room_url"`
	StartedBy      string  `json:"started_by"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at,omitempty"`
	StartedAt      *string `json:"started_at,omitempty"`
	EndedAt        *string `json:"ended_at,omitempty"`
}
