package service

import (
	"context"
	"strings"

	"github.com/outreach-engine/scheduler/modules/businessprofiles/model"
	"github.com/outreach-engine/scheduler/modules/businessprofiles/ports"
)

// BusinessProfileService enforces the "at most one default profile per user" rule.
type BusinessProfileService struct {
	repo ports.BusinessProfileRepository
}

func NewBusinessProfileService(repo ports.BusinessProfileRepository) *BusinessProfileService {
	return &BusinessProfileService{repo: repo}
}

func (s *BusinessProfileService) Create(ctx context.Context, userID string, req *model.CreateBusinessProfileRequest) (*model.BusinessProfileDTO, error) {
	if strings.TrimSpace(req.SenderName) == "" {
		return nil, model.ErrSenderNameRequired
	}

	strategy := req.MessageStrategy
	if strategy == "" {
		strategy = "hybrid"
	}

	profile := &model.BusinessProfile{
		UserID:             userID,
		Name:               req.Name,
		IsDefault:          req.IsDefault,
		IdealCustomerDesc:  req.IdealCustomerDesc,
		TargetIndustries:   req.TargetIndustries,
		TargetCompanySizes: req.TargetCompanySizes,
		TargetTitles:       req.TargetTitles,
		TargetLocations:    req.TargetLocations,
		ValueProposition:   req.ValueProposition,
		SenderName:         req.SenderName,
		SenderTitle:        req.SenderTitle,
		MessageStrategy:    strategy,
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}

	if profile.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID, profile.ID); err != nil {
			return nil, err
		}
	}

	return profile.ToDTO(), nil
}

func (s *BusinessProfileService) GetDefault(ctx context.Context, userID string) (*model.BusinessProfileDTO, error) {
	profile, err := s.repo.GetDefault(ctx, userID)
	if err != nil {
		if err == model.ErrBusinessProfileNotFound {
			return nil, model.ErrNoDefaultProfile
		}
		return nil, err
	}
	return profile.ToDTO(), nil
}

func (s *BusinessProfileService) List(ctx context.Context, userID string) ([]*model.BusinessProfileDTO, error) {
	profiles, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]*model.BusinessProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		dtos = append(dtos, p.ToDTO())
	}
	return dtos, nil
}

func (s *BusinessProfileService) SetDefault(ctx context.Context, userID, profileID string) error {
	profile, err := s.repo.GetByID(ctx, userID, profileID)
	if err != nil {
		return err
	}
	profile.IsDefault = true
	if err := s.repo.Update(ctx, profile); err != nil {
		return err
	}
	return s.repo.ClearDefault(ctx, userID, profileID)
}

func (s *BusinessProfileService) Delete(ctx context.Context, userID, profileID string) error {
	return s.repo.Delete(ctx, userID, profileID)
}
