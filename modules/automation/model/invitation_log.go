package model

import "time"

// InvitationLog is an append-only record of each invitation send attempt,
// denormalizing lead/campaign fields so the history reads without a join.
type InvitationLog struct {
	ID               string
	UserID           string
	LeadID           string
	CampaignID       *string
	EnrollmentID     *string
	LeadName         string
	CampaignName     string
	MessagePreview   string
	Success          bool
	ProviderStatusCode *int
	FailureReason    *string
	CreatedAt        time.Time
}

type InvitationLogDTO struct {
	ID                 string    `json:"id"`
	LeadID             string    `json:"lead_id"`
	CampaignID         *string   `json:"campaign_id,omitempty"`
	LeadName           string    `json:"lead_name"`
	CampaignName       string    `json:"campaign_name,omitempty"`
	MessagePreview     string    `json:"message_preview"`
	Success            bool      `json:"success"`
	ProviderStatusCode *int      `json:"provider_status_code,omitempty"`
	FailureReason      *string   `json:"failure_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func (l *InvitationLog) ToDTO() *InvitationLogDTO {
	return &InvitationLogDTO{
		ID:                 l.ID,
		LeadID:              l.LeadID,
		CampaignID:          l.CampaignID,
		LeadName:            l.LeadName,
		CampaignName:        l.CampaignName,
		MessagePreview:      l.MessagePreview,
		Success:             l.Success,
		ProviderStatusCode:  l.ProviderStatusCode,
		FailureReason:       l.FailureReason,
		CreatedAt:           l.CreatedAt,
	}
}
