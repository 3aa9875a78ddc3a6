package ports

import (
	"context"

	"github.com/outreach-engine/scheduler/modules/leads/model"
)

type ListOptions struct {
	Limit         int
	Offset        int
	CampaignID    *string
	Status        *string
	MinScore      *int
}

// LeadRepository defines data access for Lead.
type LeadRepository interface {
	Create(ctx context.Context, lead *model.Lead) error
	GetByID(ctx context.Context, userID, leadID string) (*model.Lead, error)
	List(ctx context.Context, userID string, opts *ListOptions) ([]*model.LeadDTO, int, error)
	Update(ctx context.Context, lead *model.Lead) error
	Delete(ctx context.Context, userID, leadID string) error

	// SetActiveSequence atomically sets or clears a lead's active_sequence_id
	// (invariant I3). Passing nil clears it.
	SetActiveSequence(ctx context.Context, leadID string, enrollmentID *string) error

	// ListByCampaignFiltered returns leads matching the automation settings'
	// target filters (min score, target statuses), used by the invitation
	// phase to pick the next lead to invite.
	ListByCampaignFiltered(ctx context.Context, userID string, campaignID *string, minScore int, targetStatuses []string, limit int) ([]*model.Lead, error)
}
