package model

import (
	"errors"
	"time"
)

// LeadStatus tracks a lead's position in the outreach lifecycle. Distinct
// from SequenceEnrollment.Status (§3): this is the lead-level summary the
// CRUD surface displays, updated as a side effect of engine transitions.
type LeadStatus string

const (
	LeadStatusNew               LeadStatus = "new"
	LeadStatusInvitationSent    LeadStatus = "invitation_sent"
	LeadStatusConnected         LeadStatus = "connected"
	LeadStatusInConversation    LeadStatus = "in_conversation"
	LeadStatusMeetingScheduled  LeadStatus = "meeting_scheduled"
	LeadStatusDisqualified      LeadStatus = "disqualified"
)

// EmailVerifiedStatus mirrors the out-of-core email verifier's result shape.
type EmailVerifiedStatus string

const (
	EmailUnknown EmailVerifiedStatus = "unknown"
	EmailValid   EmailVerifiedStatus = "valid"
	EmailInvalid EmailVerifiedStatus = "invalid"
	EmailRisky   EmailVerifiedStatus = "risky"
)

// ScoreLabel is the LM lead-scorer's coarse banding of Score.
type ScoreLabel string

const (
	ScoreHot  ScoreLabel = "hot"
	ScoreWarm ScoreLabel = "warm"
	ScoreCold ScoreLabel = "cold"
)

// Lead is a target contact person.
type Lead struct {
	ID                string
	UserID            string
	CampaignID        *string
	FirstName         string
	LastName          string
	Title             string
	CompanyName       string
	Email             *string
	EmailVerified     EmailVerifiedStatus
	ExternalProfileURL string
	ExternalChatID    *string
	Status            LeadStatus
	Score             int
	ScoreLabel        ScoreLabel
	ScoreReason       string
	ConnectionMessage string
	ConnectionSentAt  *time.Time
	ConnectedAt       *time.Time
	LastMessageAt     *time.Time
	ActiveSequenceID  *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DisplayName mirrors original_source/backend/app/models/lead.py's
// display_name property.
func (l *Lead) DisplayName() string {
	name := l.FirstName
	if l.LastName != "" {
		if name != "" {
			name += " "
		}
		name += l.LastName
	}
	if name == "" {
		return l.CompanyName
	}
	return name
}

type LeadDTO struct {
	ID                 string     `json:"id"`
	CampaignID         *string    `json:"campaign_id,omitempty"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Title              string     `json:"title"`
	CompanyName        string     `json:"company_name"`
	Email              *string    `json:"email,omitempty"`
	EmailVerified      string     `json:"email_verified"`
	ExternalProfileURL string     `json:"external_profile_url"`
	ExternalChatID     *string    `json:"external_chat_id,omitempty"`
	Status             string     `json:"status"`
	Score              int        `json:"score"`
	ScoreLabel         string     `json:"score_label"`
	ScoreReason        string     `json:"score_reason,omitempty"`
	ConnectionMessage  string     `json:"connection_message,omitempty"`
	ConnectionSentAt   *time.Time `json:"connection_sent_at,omitempty"`
	ConnectedAt        *time.Time `json:"connected_at,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	ActiveSequenceID   *string    `json:"active_sequence_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (l *Lead) ToDTO() *LeadDTO {
	return &LeadDTO{
		ID:                 l.ID,
		CampaignID:         l.CampaignID,
		FirstName:          l.FirstName,
		LastName:           l.LastName,
		Title:              l.Title,
		CompanyName:        l.CompanyName,
		Email:              l.Email,
		EmailVerified:      string(l.EmailVerified),
		ExternalProfileURL: l.ExternalProfileURL,
		ExternalChatID:     l.ExternalChatID,
		Status:             string(l.Status),
		Score:              l.Score,
		ScoreLabel:         string(l.ScoreLabel),
		ScoreReason:        l.ScoreReason,
		ConnectionMessage:  l.ConnectionMessage,
		ConnectionSentAt:   l.ConnectionSentAt,
		ConnectedAt:        l.ConnectedAt,
		LastMessageAt:      l.LastMessageAt,
		ActiveSequenceID:   l.ActiveSequenceID,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

type CreateLeadRequest struct {
	CampaignID         *string `json:"campaign_id,omitempty"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Title              string  `json:"title"`
	CompanyName        string  `json:"company_name"`
	Email              *string `json:"email,omitempty"`
	ExternalProfileURL string  `json:"external_profile_url" binding:"required"`
}

// SearchParseRequest is a recruiter's free-text lead search, translated into
// structured filters by the LM analyzer (§4.3 item 1).
type SearchParseRequest struct {
	Query string `json:"query" binding:"required"`
}

type SearchParseResult struct {
	Filters        map[string]interface{} `json:"filters"`
	Interpretation string                  `json:"interpretation"`
	Confidence     float64                 `json:"confidence"`
}

// ScoreResult is the LM lead-scorer's verdict, persisted onto the lead.
type ScoreResult struct {
	Score  int    `json:"score"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

type UpdateLeadRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Title       *string `json:"title,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	CampaignID  *string `json:"campaign_id,omitempty"`
}

var (
	ErrLeadNotFound            = errors.New("lead not found")
	ErrExternalProfileURLRequired = errors.New("external profile url is required")
	ErrLeadAlreadyEnrolled     = errors.New("lead already has an active sequence enrollment")
)

type ErrorCode string

const (
	CodeLeadNotFound               ErrorCode = "LEAD_NOT_FOUND"
	CodeExternalProfileURLRequired ErrorCode = "EXTERNAL_PROFILE_URL_REQUIRED"
	CodeLeadAlreadyEnrolled        ErrorCode = "LEAD_ALREADY_ENROLLED"
	CodeInternalError              ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		return CodeLeadNotFound
	case errors.Is(err, ErrExternalProfileURLRequired):
		return CodeExternalProfileURLRequired
	case errors.Is(err, ErrLeadAlreadyEnrolled):
		return CodeLeadAlreadyEnrolled
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		return "Lead not found"
	case errors.Is(err, ErrExternalProfileURLRequired):
		return "External profile URL is required"
	case errors.Is(err, ErrLeadAlreadyEnrolled):
		return "Lead already has an active sequence enrollment"
	default:
		return "Internal server error"
	}
}
