package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/outreach-engine/scheduler/internal/engine/analyzer"
	"github.com/outreach-engine/scheduler/internal/engine/shared"
	businessPorts "github.com/outreach-engine/scheduler/modules/businessprofiles/ports"
	"github.com/outreach-engine/scheduler/modules/leads/model"
	"github.com/outreach-engine/scheduler/modules/leads/ports"
)

type LeadService struct {
	repo     ports.LeadRepository
	profiles businessPorts.BusinessProfileRepository
	lm       *analyzer.Analyzer
}

func NewLeadService(repo ports.LeadRepository, profiles businessPorts.BusinessProfileRepository, lm *analyzer.Analyzer) *LeadService {
	return &LeadService{repo: repo, profiles: profiles, lm: lm}
}

func (s *LeadService) Create(ctx context.Context, userID string, req *model.CreateLeadRequest) (*model.LeadDTO, error) {
	url := strings.TrimSpace(req.ExternalProfileURL)
	if url == "" {
		return nil, model.ErrExternalProfileURLRequired
	}

	lead := &model.Lead{
		UserID:             userID,
		CampaignID:         req.CampaignID,
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Title:              strings.TrimSpace(req.Title),
		CompanyName:        strings.TrimSpace(req.CompanyName),
		Email:              req.Email,
		ExternalProfileURL: url,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead.ToDTO(), nil
}

func (s *LeadService) GetByID(ctx context.Context, userID, leadID string) (*model.LeadDTO, error) {
	lead, err := s.repo.GetByID(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	return lead.ToDTO(), nil
}

func (s *LeadService) List(ctx context.Context, userID string, opts *ports.ListOptions) ([]*model.LeadDTO, int, error) {
	return s.repo.List(ctx, userID, opts)
}

func (s *LeadService) Update(ctx context.Context, userID, leadID string, req *model.UpdateLeadRequest) (*model.LeadDTO, error) {
	lead, err := s.repo.GetByID(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		lead.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		lead.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Title != nil {
		lead.Title = strings.TrimSpace(*req.Title)
	}
	if req.CompanyName != nil {
		lead.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.Email != nil {
		lead.Email = req.Email
	}
	if req.CampaignID != nil {
		lead.CampaignID = req.CampaignID
	}
	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}
	return lead.ToDTO(), nil
}

func (s *LeadService) Delete(ctx context.Context, userID, leadID string) error {
	return s.repo.Delete(ctx, userID, leadID)
}

// Enroll marks a lead as having an active sequence enrollment, enforcing
// invariant I3 (a lead can be enrolled in at most one sequence at a time).
func (s *LeadService) Enroll(ctx context.Context, userID, leadID, enrollmentID string) error {
	lead, err := s.repo.GetByID(ctx, userID, leadID)
	if err != nil {
		return err
	}
	if lead.ActiveSequenceID != nil {
		return model.ErrLeadAlreadyEnrolled
	}
	return s.repo.SetActiveSequence(ctx, leadID, &enrollmentID)
}

// Unenroll clears a lead's active sequence, making it eligible for enrollment again.
func (s *LeadService) Unenroll(ctx context.Context, leadID string) error {
	return s.repo.SetActiveSequence(ctx, leadID, nil)
}

// ParseSearchFilters translates a recruiter's free-text query into
// structured lead filters (§4.3 item 1, SPEC_FULL SUPPLEMENT).
func (s *LeadService) ParseSearchFilters(ctx context.Context, query string) (*model.SearchParseResult, error) {
	result, err := s.lm.ParseSearchFilters(ctx, query)
	if err != nil {
		return nil, err
	}
	return &model.SearchParseResult{
		Filters:        result.Filters,
		Interpretation: result.Interpretation,
		Confidence:     result.Confidence,
	}, nil
}

// Score runs the LM lead-scorer against the user's default business profile
// and persists the verdict onto the lead (§4.3 item 2, SPEC_FULL SUPPLEMENT).
func (s *LeadService) Score(ctx context.Context, userID, leadID string) (*model.LeadDTO, error) {
	lead, err := s.repo.GetByID(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetDefault(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("default business profile required to score a lead: %w", err)
	}

	result, err := s.lm.ScoreLead(ctx, shared.FormatBusinessProfile(profile), shared.FormatLead(lead))
	if err != nil {
		return nil, err
	}

	lead.Score = result.Score
	lead.ScoreLabel = model.ScoreLabel(result.Label)
	lead.ScoreReason = result.Reason
	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}
	return lead.ToDTO(), nil
}

// NextInvitationCandidates returns unenrolled leads matching the automation
// settings' target filters, in creation order, used by the invitation phase.
func (s *LeadService) NextInvitationCandidates(ctx context.Context, userID string, campaignID *string, minScore int, targetStatuses []string, limit int) ([]*model.Lead, error) {
	return s.repo.ListByCampaignFiltered(ctx, userID, campaignID, minScore, targetStatuses, limit)
}
