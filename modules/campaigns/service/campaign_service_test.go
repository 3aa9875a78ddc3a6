package service

import (
	"context"
	"errors"
	"testing"

	"github.com/outreach-engine/scheduler/modules/campaigns/model"
	"github.com/outreach-engine/scheduler/modules/campaigns/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCampaignRepository struct {
	CreateFunc  func(ctx context.Context, c *model.Campaign) error
	GetByIDFunc func(ctx context.Context, userID, campaignID string) (*model.Campaign, error)
	ListFunc    func(ctx context.Context, userID string, opts *ports.ListOptions) ([]*model.CampaignDTO, int, error)
	UpdateFunc  func(ctx context.Context, c *model.Campaign) error
	DeleteFunc  func(ctx context.Context, userID, campaignID string) error
}

func (m *mockCampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	return m.CreateFunc(ctx, c)
}

func (m *mockCampaignRepository) GetByID(ctx context.Context, userID, campaignID string) (*model.Campaign, error) {
	return m.GetByIDFunc(ctx, userID, campaignID)
}

func (m *mockCampaignRepository) List(ctx context.Context, userID string, opts *ports.ListOptions) ([]*model.CampaignDTO, int, error) {
	return m.ListFunc(ctx, userID, opts)
}

func (m *mockCampaignRepository) Update(ctx context.Context, c *model.Campaign) error {
	return m.UpdateFunc(ctx, c)
}

func (m *mockCampaignRepository) Delete(ctx context.Context, userID, campaignID string) error {
	return m.DeleteFunc(ctx, userID, campaignID)
}

func TestCampaignService_Create(t *testing.T) {
	t.Run("rejects a blank name", func(t *testing.T) {
		svc := NewCampaignService(&mockCampaignRepository{})

		result, err := svc.Create(context.Background(), "user-1", &model.CreateCampaignRequest{Name: "   "})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, model.ErrCampaignNameRequired)
	})

	t.Run("trims the name and persists", func(t *testing.T) {
		var created *model.Campaign
		repo := &mockCampaignRepository{
			CreateFunc: func(ctx context.Context, c *model.Campaign) error {
				c.ID = "campaign-1"
				created = c
				return nil
			},
		}
		svc := NewCampaignService(repo)

		result, err := svc.Create(context.Background(), "user-1", &model.CreateCampaignRequest{Name: "  Q3 Outreach  "})

		require.NoError(t, err)
		assert.Equal(t, "Q3 Outreach", created.Name)
		assert.Equal(t, "campaign-1", result.ID)
	})
}

func TestCampaignService_Update(t *testing.T) {
	t.Run("propagates the not-found error from the lookup", func(t *testing.T) {
		repo := &mockCampaignRepository{
			GetByIDFunc: func(ctx context.Context, userID, campaignID string) (*model.Campaign, error) {
				return nil, model.ErrCampaignNotFound
			},
		}
		svc := NewCampaignService(repo)

		result, err := svc.Update(context.Background(), "user-1", "campaign-1", &model.UpdateCampaignRequest{})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, model.ErrCampaignNotFound)
	})

	t.Run("rejects clearing the name to blank", func(t *testing.T) {
		blank := "   "
		repo := &mockCampaignRepository{
			GetByIDFunc: func(ctx context.Context, userID, campaignID string) (*model.Campaign, error) {
				return &model.Campaign{ID: campaignID, UserID: userID, Name: "Old Name"}, nil
			},
		}
		svc := NewCampaignService(repo)

		result, err := svc.Update(context.Background(), "user-1", "campaign-1", &model.UpdateCampaignRequest{Name: &blank})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, model.ErrCampaignNameRequired)
	})

	t.Run("updates only the fields provided", func(t *testing.T) {
		newName := "Renamed Campaign"
		var updated *model.Campaign
		repo := &mockCampaignRepository{
			GetByIDFunc: func(ctx context.Context, userID, campaignID string) (*model.Campaign, error) {
				return &model.Campaign{ID: campaignID, UserID: userID, Name: "Old Name"}, nil
			},
			UpdateFunc: func(ctx context.Context, c *model.Campaign) error {
				updated = c
				return nil
			},
		}
		svc := NewCampaignService(repo)

		_, err := svc.Update(context.Background(), "user-1", "campaign-1", &model.UpdateCampaignRequest{Name: &newName})

		require.NoError(t, err)
		assert.Equal(t, newName, updated.Name)
	})
}

func TestCampaignService_Delete(t *testing.T) {
	expectedErr := errors.New("database error")
	repo := &mockCampaignRepository{
		DeleteFunc: func(ctx context.Context, userID, campaignID string) error {
			return expectedErr
		},
	}
	svc := NewCampaignService(repo)

	err := svc.Delete(context.Background(), "user-1", "campaign-1")

	assert.Equal(t, expectedErr, err)
}
