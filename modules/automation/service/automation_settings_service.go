package service

import (
	"context"
	"time"

	"github.com/outreach-engine/scheduler/modules/automation/model"
	"github.com/outreach-engine/scheduler/modules/automation/ports"
)

type AutomationSettingsService struct {
	settingsRepo ports.AutomationSettingsRepository
	logRepo      ports.InvitationLogRepository
}

func NewAutomationSettingsService(settingsRepo ports.AutomationSettingsRepository, logRepo ports.InvitationLogRepository) *AutomationSettingsService {
	return &AutomationSettingsService{settingsRepo: settingsRepo, logRepo: logRepo}
}

// GetOrCreate returns a user's automation settings, seeding the conservative
// defaults on first access.
func (s *AutomationSettingsService) GetOrCreate(ctx context.Context, userID string) (*model.AutomationSettingsDTO, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		if err != model.ErrAutomationSettingsNotFound {
			return nil, err
		}
		settings = model.DefaultAutomationSettings(userID)
		if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
			return nil, err
		}
	}
	return settings.ToDTO(), nil
}

func (s *AutomationSettingsService) Update(ctx context.Context, userID string, req *model.UpdateAutomationSettingsRequest) (*model.AutomationSettingsDTO, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		if err != model.ErrAutomationSettingsNotFound {
			return nil, err
		}
		settings = model.DefaultAutomationSettings(userID)
	}

	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}
	if req.StartHour != nil {
		settings.StartHour = *req.StartHour
	}
	if req.StartMinute != nil {
		settings.StartMinute = *req.StartMinute
	}
	if req.EndHour != nil {
		settings.EndHour = *req.EndHour
	}
	if req.EndMinute != nil {
		settings.EndMinute = *req.EndMinute
	}
	if req.WorkingDays != nil {
		settings.WorkingDays = *req.WorkingDays
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, model.ErrInvalidTimezone
		}
		settings.Timezone = *req.Timezone
	}
	if req.DailyLimit != nil {
		if *req.DailyLimit > model.MaxDailyLimit {
			return nil, model.ErrDailyLimitExceedsCap
		}
		settings.DailyLimit = *req.DailyLimit
	}
	if req.MinDelaySeconds != nil {
		settings.MinDelaySeconds = *req.MinDelaySeconds
	}
	if req.MaxDelaySeconds != nil {
		settings.MaxDelaySeconds = *req.MaxDelaySeconds
	}
	if settings.MinDelaySeconds > settings.MaxDelaySeconds {
		return nil, model.ErrInvalidDelayRange
	}
	if req.MinLeadScore != nil {
		settings.MinLeadScore = *req.MinLeadScore
	}
	if req.TargetStatuses != nil {
		settings.TargetStatuses = req.TargetStatuses
	}
	if req.TargetCampaignID != nil {
		settings.TargetCampaignID = req.TargetCampaignID
	}

	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings.ToDTO(), nil
}

func (s *AutomationSettingsService) ListInvitationLogs(ctx context.Context, userID string, limit, offset int) ([]*model.InvitationLogDTO, int, error) {
	return s.logRepo.ListByUser(ctx, userID, limit, offset)
}
