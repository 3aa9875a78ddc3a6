package model

import (
	"encoding/json"
	"errors"
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusPaused    EnrollmentStatus = "paused"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusReplied   EnrollmentStatus = "replied"
	EnrollmentStatusFailed    EnrollmentStatus = "failed"
	EnrollmentStatusWithdrawn EnrollmentStatus = "withdrawn"
	EnrollmentStatusParked    EnrollmentStatus = "parked"
)

type PipelinePhase string

const (
	PhaseApertura     PipelinePhase = "apertura"
	PhaseCalificacion PipelinePhase = "calificacion"
	PhaseValor        PipelinePhase = "valor"
	PhaseNurture      PipelinePhase = "nurture"
	PhaseReactivacion PipelinePhase = "reactivacion"
)

const (
	MaxMessagesPerPhase     = 2
	MaxNurtureTouches       = 4
	MaxReactivationAttempts = 1
	NurtureCadenceMinDays   = 42
	NurtureCadenceMaxDays   = 56
	ReactivationSilenceDays = 30
)

// PhaseAnalysis is the LM phase-response-analyzer's structured decision,
// stored verbatim for the read-side intelligence surface (§4.3.6).
type PhaseAnalysis struct {
	Outcome        string   `json:"outcome"`
	NextPhase      *string  `json:"next_phase"`
	Sentiment      string   `json:"sentiment"`
	BuyingSignals  []string `json:"buying_signals"`
	SignalStrength string   `json:"signal_strength"`
	SuggestedAngle string   `json:"suggested_angle"`
	Reason         string   `json:"reason"`
}

// MessageSent is one entry in the enrollment's keyed outbound-message log.
type MessageSent struct {
	StepOrKey string    `json:"step_or_key"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sent_at"`
}

// Enrollment is one lead's participation in one sequence — the unit the
// classic and pipeline engines advance on every tick.
type Enrollment struct {
	ID                 string
	SequenceID         string
	LeadID             string
	UserID             string
	Status             EnrollmentStatus
	CurrentStepOrder   int
	NextStepDueAt      *time.Time
	LastStepCompletedAt *time.Time
	MessagesSent       []MessageSent
	FailedReason       *string
	EnrolledAt         time.Time
	CompletedAt        *time.Time

	// Pipeline-only fields (nil/zero in classic mode).
	CurrentPhase        *PipelinePhase
	PhaseEnteredAt       *time.Time
	LastResponseAt       *time.Time
	LastResponseText     *string
	PhaseAnalysis        *PhaseAnalysis
	MessagesInPhase      int
	NurtureCount         int
	ReactivationCount    int
	TotalMessagesSent    int

	// Retry bookkeeping for the classic engine's consecutive-failure cap
	// (§9 Open Question 1) — not part of the persisted spec entity's
	// visible surface but required to implement its retry policy.
	ConsecutiveFailures int
	LastFailureCount    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Enrollment) MessagesSentJSON() ([]byte, error) {
	return json.Marshal(e.MessagesSent)
}

func (e *Enrollment) PhaseAnalysisJSON() ([]byte, error) {
	if e.PhaseAnalysis == nil {
		return nil, nil
	}
	return json.Marshal(e.PhaseAnalysis)
}

type EnrollmentDTO struct {
	ID               string     `json:"id"`
	SequenceID       string     `json:"sequence_id"`
	LeadID           string     `json:"lead_id"`
	Status           string     `json:"status"`
	CurrentStepOrder int        `json:"current_step_order,omitempty"`
	NextStepDueAt    *time.Time `json:"next_step_due_at,omitempty"`
	FailedReason     *string    `json:"failed_reason,omitempty"`
	EnrolledAt       time.Time  `json:"enrolled_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`

	CurrentPhase      *string        `json:"current_phase,omitempty"`
	PhaseEnteredAt    *time.Time     `json:"phase_entered_at,omitempty"`
	LastResponseAt    *time.Time     `json:"last_response_at,omitempty"`
	PhaseAnalysis     *PhaseAnalysis `json:"phase_analysis,omitempty"`
	MessagesInPhase   int            `json:"messages_in_phase,omitempty"`
	NurtureCount      int            `json:"nurture_count,omitempty"`
	ReactivationCount int            `json:"reactivation_count,omitempty"`
	TotalMessagesSent int            `json:"total_messages_sent,omitempty"`
}

func (e *Enrollment) ToDTO() *EnrollmentDTO {
	dto := &EnrollmentDTO{
		ID:                e.ID,
		SequenceID:        e.SequenceID,
		LeadID:            e.LeadID,
		Status:            string(e.Status),
		CurrentStepOrder:  e.CurrentStepOrder,
		NextStepDueAt:     e.NextStepDueAt,
		FailedReason:      e.FailedReason,
		EnrolledAt:        e.EnrolledAt,
		CompletedAt:       e.CompletedAt,
		PhaseEnteredAt:    e.PhaseEnteredAt,
		LastResponseAt:    e.LastResponseAt,
		PhaseAnalysis:     e.PhaseAnalysis,
		MessagesInPhase:   e.MessagesInPhase,
		NurtureCount:      e.NurtureCount,
		ReactivationCount: e.ReactivationCount,
		TotalMessagesSent: e.TotalMessagesSent,
	}
	if e.CurrentPhase != nil {
		s := string(*e.CurrentPhase)
		dto.CurrentPhase = &s
	}
	return dto
}

type EnrollRequest struct {
	SequenceID string   `json:"sequence_id" binding:"required"`
	LeadIDs    []string `json:"lead_ids" binding:"required"`
}

type EnrollResult struct {
	Enrolled      []string `json:"enrolled"`
	Skipped       []string `json:"skipped"`
	Errors        []string `json:"errors"`
	AutoActivated bool     `json:"auto_activated"`
}

var (
	ErrEnrollmentNotFound     = errors.New("enrollment not found")
	ErrLeadAlreadyActive      = errors.New("lead already has an active enrollment")
	ErrSequenceNotActivatable = errors.New("sequence must be draft or active to enroll leads")
)

type ErrorCode string

const (
	CodeEnrollmentNotFound     ErrorCode = "ENROLLMENT_NOT_FOUND"
	CodeLeadAlreadyActive      ErrorCode = "LEAD_ALREADY_ACTIVE"
	CodeSequenceNotActivatable ErrorCode = "SEQUENCE_NOT_ACTIVATABLE"
	CodeInternalError          ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrEnrollmentNotFound):
		return CodeEnrollmentNotFound
	case errors.Is(err, ErrLeadAlreadyActive):
		return CodeLeadAlreadyActive
	case errors.Is(err, ErrSequenceNotActivatable):
		return CodeSequenceNotActivatable
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrEnrollmentNotFound):
		return "Enrollment not found"
	case errors.Is(err, ErrLeadAlreadyActive):
		return "Lead already has an active enrollment"
	case errors.Is(err, ErrSequenceNotActivatable):
		return "Sequence must be draft or active to enroll leads"
	default:
		return "Internal server error"
	}
}
