package service

import (
	"context"
	"time"

	"github.com/outreach-engine/scheduler/modules/enrollments/model"
	"github.com/outreach-engine/scheduler/modules/enrollments/ports"
	leadPorts "github.com/outreach-engine/scheduler/modules/leads/ports"
	sequenceModel "github.com/outreach-engine/scheduler/modules/sequences/model"
	sequencePorts "github.com/outreach-engine/scheduler/modules/sequences/ports"
)

type EnrollmentService struct {
	repo         ports.EnrollmentRepository
	leadRepo     leadPorts.LeadRepository
	sequenceRepo sequencePorts.SequenceRepository
}

func NewEnrollmentService(repo ports.EnrollmentRepository, leadRepo leadPorts.LeadRepository, sequenceRepo sequencePorts.SequenceRepository) *EnrollmentService {
	return &EnrollmentService{repo: repo, leadRepo: leadRepo, sequenceRepo: sequenceRepo}
}

// Enroll implements the CRUD-surface enroll operation (spec §6): enrolls
// every lead not already in another active sequence, auto-activating a
// draft sequence on its first successful enrollment.
func (s *EnrollmentService) Enroll(ctx context.Context, userID string, req *model.EnrollRequest) (*model.EnrollResult, error) {
	sequence, _, err := s.sequenceRepo.GetByID(ctx, userID, req.SequenceID)
	if err != nil {
		return nil, err
	}
	if sequence.Status != sequenceModel.SequenceStatusDraft && sequence.Status != sequenceModel.SequenceStatusActive {
		return nil, model.ErrSequenceNotActivatable
	}

	result := &model.EnrollResult{}
	now := time.Now().UTC()

	for _, leadID := range req.LeadIDs {
		lead, err := s.leadRepo.GetByID(ctx, userID, leadID)
		if err != nil {
			result.Errors = append(result.Errors, leadID+": "+err.Error())
			continue
		}
		if lead.ActiveSequenceID != nil {
			result.Skipped = append(result.Skipped, leadID)
			continue
		}

		enrollment := &model.Enrollment{
			SequenceID:       req.SequenceID,
			LeadID:           leadID,
			UserID:           userID,
			Status:           model.EnrollmentStatusActive,
			CurrentStepOrder: 1,
			NextStepDueAt:    &now,
			EnrolledAt:       now,
		}
		if sequence.Mode == sequenceModel.SequenceModeSmartPipeline {
			// Awaiting connection: current_phase stays null until
			// acceptance is detected (§4.6).
			enrollment.CurrentStepOrder = 0
		}

		if err := s.repo.Create(ctx, enrollment); err != nil {
			result.Errors = append(result.Errors, leadID+": "+err.Error())
			continue
		}
		if err := s.leadRepo.SetActiveSequence(ctx, leadID, &enrollment.ID); err != nil {
			result.Errors = append(result.Errors, leadID+": "+err.Error())
			continue
		}
		result.Enrolled = append(result.Enrolled, enrollment.ID)
	}

	if len(result.Enrolled) > 0 && sequence.Status == sequenceModel.SequenceStatusDraft {
		sequence.Status = sequenceModel.SequenceStatusActive
		if err := s.sequenceRepo.Update(ctx, sequence); err == nil {
			result.AutoActivated = true
		}
	}

	return result, nil
}

// Unenroll flips status to withdrawn and clears the lead's active sequence
// link (spec §6).
func (s *EnrollmentService) Unenroll(ctx context.Context, userID, sequenceID string, leadIDs []string) error {
	for _, leadID := range leadIDs {
		enrollment, err := s.repo.GetActiveByLead(ctx, leadID)
		if err != nil {
			continue
		}
		if enrollment.SequenceID != sequenceID {
			continue
		}
		enrollment.Status = model.EnrollmentStatusWithdrawn
		if err := s.repo.Update(ctx, enrollment); err != nil {
			return err
		}
		if err := s.leadRepo.SetActiveSequence(ctx, leadID, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *EnrollmentService) PauseSequence(ctx context.Context, userID, sequenceID string) (int, error) {
	sequence, _, err := s.sequenceRepo.GetByID(ctx, userID, sequenceID)
	if err != nil {
		return 0, err
	}
	sequence.Status = sequenceModel.SequenceStatusPaused
	if err := s.sequenceRepo.Update(ctx, sequence); err != nil {
		return 0, err
	}
	return s.repo.BulkSetStatus(ctx, sequenceID, model.EnrollmentStatusActive, model.EnrollmentStatusPaused)
}

func (s *EnrollmentService) ResumeSequence(ctx context.Context, userID, sequenceID string) (int, error) {
	sequence, _, err := s.sequenceRepo.GetByID(ctx, userID, sequenceID)
	if err != nil {
		return 0, err
	}
	sequence.Status = sequenceModel.SequenceStatusActive
	if err := s.sequenceRepo.Update(ctx, sequence); err != nil {
		return 0, err
	}
	return s.repo.BulkSetStatus(ctx, sequenceID, model.EnrollmentStatusPaused, model.EnrollmentStatusActive)
}

func (s *EnrollmentService) ArchiveSequence(ctx context.Context, userID, sequenceID string) error {
	sequence, _, err := s.sequenceRepo.GetByID(ctx, userID, sequenceID)
	if err != nil {
		return err
	}
	sequence.Status = sequenceModel.SequenceStatusArchived
	return s.sequenceRepo.Update(ctx, sequence)
}

func (s *EnrollmentService) ListBySequence(ctx context.Context, userID, sequenceID string, limit, offset int) ([]*model.EnrollmentDTO, int, error) {
	return s.repo.ListBySequence(ctx, userID, sequenceID, limit, offset)
}

func (s *EnrollmentService) Stats(ctx context.Context, userID, sequenceID string) (*ports.SequenceStats, error) {
	return s.repo.Stats(ctx, userID, sequenceID)
}
