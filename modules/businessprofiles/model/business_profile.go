package model

import (
	"errors"
	"time"
)

// BusinessProfile is the authoring context the LM uses to personalize
// outbound messages.
type BusinessProfile struct {
	ID                     string
	UserID                 string
	Name                   string
	IsDefault              bool
	IdealCustomerDesc      string
	TargetIndustries       []string
	TargetCompanySizes     []string
	TargetTitles           []string
	TargetLocations        []string
	ValueProposition       string
	SenderName             string
	SenderTitle            string
	MessageStrategy        string // hybrid, direct, gradual — default for sequences using this profile
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type BusinessProfileDTO struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	IsDefault          bool      `json:"is_default"`
	IdealCustomerDesc  string    `json:"ideal_customer_description"`
	TargetIndustries   []string  `json:"target_industries"`
	TargetCompanySizes []string  `json:"target_company_sizes"`
	TargetTitles       []string  `json:"target_titles"`
	TargetLocations    []string  `json:"target_locations"`
	ValueProposition   string    `json:"value_proposition"`
	SenderName         string    `json:"sender_name"`
	SenderTitle        string    `json:"sender_title"`
	MessageStrategy    string    `json:"message_strategy"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (p *BusinessProfile) ToDTO() *BusinessProfileDTO {
	return &BusinessProfileDTO{
		ID:                 p.ID,
		Name:               p.Name,
		IsDefault:          p.IsDefault,
		IdealCustomerDesc:  p.IdealCustomerDesc,
		TargetIndustries:   p.TargetIndustries,
		TargetCompanySizes: p.TargetCompanySizes,
		TargetTitles:       p.TargetTitles,
		TargetLocations:    p.TargetLocations,
		ValueProposition:   p.ValueProposition,
		SenderName:         p.SenderName,
		SenderTitle:        p.SenderTitle,
		MessageStrategy:    p.MessageStrategy,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

type CreateBusinessProfileRequest struct {
	Name              string   `json:"name" binding:"required,min=1,max=255"`
	IsDefault         bool     `json:"is_default"`
	IdealCustomerDesc string   `json:"ideal_customer_description"`
	TargetIndustries  []string `json:"target_industries"`
	TargetCompanySizes []string `json:"target_company_sizes"`
	TargetTitles      []string `json:"target_titles"`
	TargetLocations   []string `json:"target_locations"`
	ValueProposition  string   `json:"value_proposition"`
	SenderName        string   `json:"sender_name" binding:"required"`
	SenderTitle       string   `json:"sender_title"`
	MessageStrategy   string   `json:"message_strategy"`
}

var (
	ErrBusinessProfileNotFound = errors.New("business profile not found")
	ErrNoDefaultProfile        = errors.New("no default business profile configured")
	ErrSenderNameRequired      = errors.New("sender name is required")
)

type ErrorCode string

const (
	CodeBusinessProfileNotFound ErrorCode = "BUSINESS_PROFILE_NOT_FOUND"
	CodeNoDefaultProfile        ErrorCode = "NO_DEFAULT_PROFILE"
	CodeSenderNameRequired      ErrorCode = "SENDER_NAME_REQUIRED"
	CodeInternalError           ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrBusinessProfileNotFound):
		return CodeBusinessProfileNotFound
	case errors.Is(err, ErrNoDefaultProfile):
		return CodeNoDefaultProfile
	case errors.Is(err, ErrSenderNameRequired):
		return CodeSenderNameRequired
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrBusinessProfileNotFound):
		return "Business profile not found"
	case errors.Is(err, ErrNoDefaultProfile):
		return "No default business profile exists for this user"
	case errors.Is(err, ErrSenderNameRequired):
		return "Sender name is required"
	default:
		return "Internal server error"
	}
}
