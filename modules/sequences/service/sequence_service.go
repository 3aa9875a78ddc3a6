package service

import (
	"context"
	"strings"

	"github.com/outreach-engine/scheduler/modules/sequences/model"
	"github.com/outreach-engine/scheduler/modules/sequences/ports"
)

type SequenceService struct {
	repo ports.SequenceRepository
}

func NewSequenceService(repo ports.SequenceRepository) *SequenceService {
	return &SequenceService{repo: repo}
}

func (s *SequenceService) Create(ctx context.Context, userID string, req *model.CreateSequenceRequest) (*model.SequenceDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrSequenceNameRequired
	}

	mode := model.SequenceMode(req.Mode)
	if mode != model.SequenceModeClassic && mode != model.SequenceModeSmartPipeline {
		return nil, model.ErrInvalidSequenceMode
	}
	if mode == model.SequenceModeClassic && len(req.Steps) == 0 {
		return nil, model.ErrClassicRequiresSteps
	}

	strategy := model.MessageStrategy(req.MessageStrategy)
	if strategy == "" {
		strategy = model.StrategyHybrid
	}

	sequence := &model.Sequence{
		UserID:            userID,
		Name:              name,
		Status:            model.SequenceStatusDraft,
		Mode:              mode,
		BusinessProfileID: req.BusinessProfileID,
		MessageStrategy:   strategy,
	}

	var steps []*model.SequenceStep
	for i, stepReq := range req.Steps {
		steps = append(steps, &model.SequenceStep{
			StepOrder:     i + 1,
			StepType:      model.StepType(stepReq.StepType),
			DelayDays:     stepReq.DelayDays,
			PromptContext: stepReq.PromptContext,
		})
	}

	if err := s.repo.Create(ctx, sequence, steps); err != nil {
		return nil, err
	}
	dto := sequence.ToDTO()
	for _, st := range steps {
		dto.Steps = append(dto.Steps, st.ToDTO())
	}
	return dto, nil
}

func (s *SequenceService) GetByID(ctx context.Context, userID, sequenceID string) (*model.SequenceDTO, error) {
	sequence, steps, err := s.repo.GetByID(ctx, userID, sequenceID)
	if err != nil {
		return nil, err
	}
	dto := sequence.ToDTO()
	for _, st := range steps {
		dto.Steps = append(dto.Steps, st.ToDTO())
	}
	return dto, nil
}

func (s *SequenceService) List(ctx context.Context, userID string, opts *ports.ListOptions) ([]*model.SequenceDTO, int, error) {
	return s.repo.List(ctx, userID, opts)
}

func (s *SequenceService) Update(ctx context.Context, userID, sequenceID string, req *model.UpdateSequenceRequest) (*model.SequenceDTO, error) {
	sequence, steps, err := s.repo.GetByID(ctx, userID, sequenceID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, model.ErrSequenceNameRequired
		}
		sequence.Name = name
	}
	if req.Status != nil {
		status := model.SequenceStatus(*req.Status)
		switch status {
		case model.SequenceStatusDraft, model.SequenceStatusActive, model.SequenceStatusPaused, model.SequenceStatusArchived:
			sequence.Status = status
		default:
			return nil, model.ErrInvalidSequenceStatus
		}
	}
	if req.BusinessProfileID != nil {
		sequence.BusinessProfileID = req.BusinessProfileID
	}
	if req.MessageStrategy != nil {
		sequence.MessageStrategy = model.MessageStrategy(*req.MessageStrategy)
	}

	if err := s.repo.Update(ctx, sequence); err != nil {
		return nil, err
	}
	dto := sequence.ToDTO()
	for _, st := range steps {
		dto.Steps = append(dto.Steps, st.ToDTO())
	}
	return dto, nil
}

func (s *SequenceService) Delete(ctx context.Context, userID, sequenceID string) error {
	return s.repo.Delete(ctx, userID, sequenceID)
}

// ReplaceSteps overwrites a classic sequence's step list, renumbering
// step_order contiguously from 1.
func (s *SequenceService) ReplaceSteps(ctx context.Context, userID, sequenceID string, stepReqs []model.CreateSequenceStepRequest) (*model.SequenceDTO, error) {
	sequence, _, err := s.repo.GetByID(ctx, userID, sequenceID)
	if err != nil {
		return nil, err
	}
	if sequence.Mode != model.SequenceModeClassic {
		return nil, model.ErrInvalidSequenceMode
	}
	if len(stepReqs) == 0 {
		return nil, model.ErrClassicRequiresSteps
	}

	var steps []*model.SequenceStep
	for i, stepReq := range stepReqs {
		steps = append(steps, &model.SequenceStep{
			StepOrder:     i + 1,
			StepType:      model.StepType(stepReq.StepType),
			DelayDays:     stepReq.DelayDays,
			PromptContext: stepReq.PromptContext,
		})
	}

	if err := s.repo.ReplaceSteps(ctx, sequenceID, steps); err != nil {
		return nil, err
	}
	dto := sequence.ToDTO()
	for _, st := range steps {
		dto.Steps = append(dto.Steps, st.ToDTO())
	}
	return dto, nil
}
