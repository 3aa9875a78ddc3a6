package model

import (
	"errors"
	"time"
)

type SequenceStatus string

const (
	SequenceStatusDraft    SequenceStatus = "draft"
	SequenceStatusActive   SequenceStatus = "active"
	SequenceStatusPaused   SequenceStatus = "paused"
	SequenceStatusArchived SequenceStatus = "archived"
)

type SequenceMode string

const (
	SequenceModeClassic      SequenceMode = "classic"
	SequenceModeSmartPipeline SequenceMode = "smart_pipeline"
)

type MessageStrategy string

const (
	StrategyHybrid  MessageStrategy = "hybrid"
	StrategyDirect  MessageStrategy = "direct"
	StrategyGradual MessageStrategy = "gradual"
)

// Sequence is a workflow template: either a classic list of timer-driven
// steps or a smart-pipeline five-phase state machine.
type Sequence struct {
	ID                string
	UserID            string
	Name              string
	Status            SequenceStatus
	Mode              SequenceMode
	BusinessProfileID *string
	MessageStrategy   MessageStrategy
	EnrolledCount     int
	ActiveCount       int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type SequenceDTO struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Status            string    `json:"status"`
	Mode              string    `json:"mode"`
	BusinessProfileID *string   `json:"business_profile_id,omitempty"`
	MessageStrategy   string    `json:"message_strategy"`
	EnrolledCount     int       `json:"enrolled_count"`
	ActiveCount       int       `json:"active_count"`
	Steps             []*SequenceStepDTO `json:"steps,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (s *Sequence) ToDTO() *SequenceDTO {
	return &SequenceDTO{
		ID:                s.ID,
		Name:              s.Name,
		Status:            string(s.Status),
		Mode:              string(s.Mode),
		BusinessProfileID: s.BusinessProfileID,
		MessageStrategy:   string(s.MessageStrategy),
		EnrolledCount:     s.EnrolledCount,
		ActiveCount:       s.ActiveCount,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

type CreateSequenceRequest struct {
	Name              string  `json:"name" binding:"required"`
	Mode              string  `json:"mode" binding:"required"`
	BusinessProfileID *string `json:"business_profile_id,omitempty"`
	MessageStrategy   string  `json:"message_strategy,omitempty"`
	Steps             []CreateSequenceStepRequest `json:"steps,omitempty"`
}

type UpdateSequenceRequest struct {
	Name              *string `json:"name,omitempty"`
	Status            *string `json:"status,omitempty"`
	BusinessProfileID *string `json:"business_profile_id,omitempty"`
	MessageStrategy   *string `json:"message_strategy,omitempty"`
}

var (
	ErrSequenceNotFound       = errors.New("sequence not found")
	ErrSequenceNameRequired   = errors.New("sequence name is required")
	ErrInvalidSequenceMode    = errors.New("sequence mode must be classic or smart_pipeline")
	ErrInvalidSequenceStatus  = errors.New("invalid sequence status")
	ErrClassicRequiresSteps   = errors.New("classic sequences require at least one step")
)

type ErrorCode string

const (
	CodeSequenceNotFound      ErrorCode = "SEQUENCE_NOT_FOUND"
	CodeSequenceNameRequired  ErrorCode = "SEQUENCE_NAME_REQUIRED"
	CodeInvalidSequenceMode   ErrorCode = "INVALID_SEQUENCE_MODE"
	CodeInvalidSequenceStatus ErrorCode = "INVALID_SEQUENCE_STATUS"
	CodeClassicRequiresSteps  ErrorCode = "CLASSIC_REQUIRES_STEPS"
	CodeInternalError         ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrSequenceNotFound):
		return CodeSequenceNotFound
	case errors.Is(err, ErrSequenceNameRequired):
		return CodeSequenceNameRequired
	case errors.Is(err, ErrInvalidSequenceMode):
		return CodeInvalidSequenceMode
	case errors.Is(err, ErrInvalidSequenceStatus):
		return CodeInvalidSequenceStatus
	case errors.Is(err, ErrClassicRequiresSteps):
		return CodeClassicRequiresSteps
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrSequenceNotFound):
		return "Sequence not found"
	case errors.Is(err, ErrSequenceNameRequired):
		return "Sequence name is required"
	case errors.Is(err, ErrInvalidSequenceMode):
		return "Sequence mode must be classic or smart_pipeline"
	case errors.Is(err, ErrInvalidSequenceStatus):
		return "Invalid sequence status"
	case errors.Is(err, ErrClassicRequiresSteps):
		return "Classic sequences require at least one step"
	default:
		return "Internal server error"
	}
}
