package ports

import (
	"context"

	"github.com/outreach-engine/scheduler/modules/businessprofiles/model"
)

// BusinessProfileRepository defines data access for BusinessProfile.
type BusinessProfileRepository interface {
	Create(ctx context.Context, profile *model.BusinessProfile) error
	GetByID(ctx context.Context, userID, profileID string) (*model.BusinessProfile, error)
	GetDefault(ctx context.Context, userID string) (*model.BusinessProfile, error)
	List(ctx context.Context, userID string) ([]*model.BusinessProfile, error)
	Update(ctx context.Context, profile *model.BusinessProfile) error
	Delete(ctx context.Context, userID, profileID string) error
	// ClearDefault unsets is_default on every profile of the user except keepID.
	ClearDefault(ctx context.Context, userID, keepID string) error
}
