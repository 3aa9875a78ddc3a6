package ports

import (
	"context"

	"github.com/outreach-engine/scheduler/modules/campaigns/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// CampaignRepository defines data access for Campaign.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *model.Campaign) error
	GetByID(ctx context.Context, userID, campaignID string) (*model.Campaign, error)
	List(ctx context.Context, userID string, opts *ListOptions) ([]*model.CampaignDTO, int, error)
	Update(ctx context.Context, campaign *model.Campaign) error
	Delete(ctx context.Context, userID, campaignID string) error
}
