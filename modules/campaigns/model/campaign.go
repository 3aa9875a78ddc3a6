package model

import (
	"errors"
	"time"
)

// Campaign groups leads acquired together.
type Campaign struct {
	ID                string
	UserID            string
	Name              string
	BusinessProfileID *string
	LeadCount         int
	ActiveLeadCount   int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CampaignDTO is the API-facing view, enriched with denormalized counts.
type CampaignDTO struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	BusinessProfileID *string   `json:"business_profile_id,omitempty"`
	LeadCount         int       `json:"lead_count"`
	ActiveLeadCount   int       `json:"active_lead_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (c *Campaign) ToDTO() *CampaignDTO {
	return &CampaignDTO{
		ID:                c.ID,
		Name:              c.Name,
		BusinessProfileID: c.BusinessProfileID,
		LeadCount:         c.LeadCount,
		ActiveLeadCount:   c.ActiveLeadCount,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

type CreateCampaignRequest struct {
	Name              string  `json:"name" binding:"required,min=1,max=255"`
	BusinessProfileID *string `json:"business_profile_id,omitempty"`
}

type UpdateCampaignRequest struct {
	Name              *string `json:"name,omitempty"`
	BusinessProfileID *string `json:"business_profile_id,omitempty"`
}

var (
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrCampaignNameRequired = errors.New("campaign name is required")
)

type ErrorCode string

const (
	CodeCampaignNotFound     ErrorCode = "CAMPAIGN_NOT_FOUND"
	CodeCampaignNameRequired ErrorCode = "CAMPAIGN_NAME_REQUIRED"
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrCampaignNotFound):
		return CodeCampaignNotFound
	case errors.Is(err, ErrCampaignNameRequired):
		return CodeCampaignNameRequired
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrCampaignNotFound):
		return "Campaign not found"
	case errors.Is(err, ErrCampaignNameRequired):
		return "Campaign name is required"
	default:
		return "Internal server error"
	}
}
