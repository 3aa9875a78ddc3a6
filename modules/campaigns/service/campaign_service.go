package service

import (
	"context"
	"strings"

	"github.com/outreach-engine/scheduler/modules/campaigns/model"
	"github.com/outreach-engine/scheduler/modules/campaigns/ports"
)

type CampaignService struct {
	repo ports.CampaignRepository
}

func NewCampaignService(repo ports.CampaignRepository) *CampaignService {
	return &CampaignService{repo: repo}
}

func (s *CampaignService) Create(ctx context.Context, userID string, req *model.CreateCampaignRequest) (*model.CampaignDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrCampaignNameRequired
	}

	campaign := &model.Campaign{
		UserID:            userID,
		Name:              name,
		BusinessProfileID: req.BusinessProfileID,
	}
	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign.ToDTO(), nil
}

func (s *CampaignService) GetByID(ctx context.Context, userID, campaignID string) (*model.CampaignDTO, error) {
	campaign, err := s.repo.GetByID(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	return campaign.ToDTO(), nil
}

func (s *CampaignService) List(ctx context.Context, userID string, limit, offset int) ([]*model.CampaignDTO, int, error) {
	return s.repo.List(ctx, userID, &ports.ListOptions{Limit: limit, Offset: offset})
}

func (s *CampaignService) Update(ctx context.Context, userID, campaignID string, req *model.UpdateCampaignRequest) (*model.CampaignDTO, error) {
	campaign, err := s.repo.GetByID(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, model.ErrCampaignNameRequired
		}
		campaign.Name = name
	}
	if req.BusinessProfileID != nil {
		campaign.BusinessProfileID = req.BusinessProfileID
	}
	if err := s.repo.Update(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign.ToDTO(), nil
}

func (s *CampaignService) Delete(ctx context.Context, userID, campaignID string) error {
	return s.repo.Delete(ctx, userID, campaignID)
}
