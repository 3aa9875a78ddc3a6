package service

import (
	"context"
	"testing"
	"time"

	"github.com/outreach-engine/scheduler/modules/automation/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAutomationSettingsRepository struct {
	GetByUserIDFunc              func(ctx context.Context, userID string) (*model.AutomationSettings, error)
	UpsertFunc                   func(ctx context.Context, settings *model.AutomationSettings) error
	IncrementDailyCounterFunc    func(ctx context.Context, userID string, at time.Time) error
	ResetDailyCounterIfStaleFunc func(ctx context.Context, userID string) (*model.AutomationSettings, error)
	ListEnabledFunc              func(ctx context.Context) ([]*model.AutomationSettings, error)
}

func (m *mockAutomationSettingsRepository) GetByUserID(ctx context.Context, userID string) (*model.AutomationSettings, error) {
	return m.GetByUserIDFunc(ctx, userID)
}

func (m *mockAutomationSettingsRepository) Upsert(ctx context.Context, settings *model.AutomationSettings) error {
	return m.UpsertFunc(ctx, settings)
}

func (m *mockAutomationSettingsRepository) IncrementDailyCounter(ctx context.Context, userID string, at time.Time) error {
	if m.IncrementDailyCounterFunc != nil {
		return m.IncrementDailyCounterFunc(ctx, userID, at)
	}
	return nil
}

func (m *mockAutomationSettingsRepository) ResetDailyCounterIfStale(ctx context.Context, userID string) (*model.AutomationSettings, error) {
	return m.ResetDailyCounterIfStaleFunc(ctx, userID)
}

func (m *mockAutomationSettingsRepository) ListEnabled(ctx context.Context) ([]*model.AutomationSettings, error) {
	return m.ListEnabledFunc(ctx)
}

type mockInvitationLogRepository struct {
	CreateFunc     func(ctx context.Context, log *model.InvitationLog) error
	ListByUserFunc func(ctx context.Context, userID string, limit, offset int) ([]*model.InvitationLogDTO, int, error)
}

func (m *mockInvitationLogRepository) Create(ctx context.Context, log *model.InvitationLog) error {
	return m.CreateFunc(ctx, log)
}

func (m *mockInvitationLogRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.InvitationLogDTO, int, error) {
	return m.ListByUserFunc(ctx, userID, limit, offset)
}

func TestAutomationSettingsService_GetOrCreate(t *testing.T) {
	t.Run("seeds conservative defaults on first access", func(t *testing.T) {
		var upserted *model.AutomationSettings
		repo := &mockAutomationSettingsRepository{
			GetByUserIDFunc: func(ctx context.Context, userID string) (*model.AutomationSettings, error) {
				return nil, model.ErrAutomationSettingsNotFound
			},
			UpsertFunc: func(ctx context.Context, settings *model.AutomationSettings) error {
				upserted = settings
				return nil
			},
		}
		svc := NewAutomationSettingsService(repo, &mockInvitationLogRepository{})

		result, err := svc.GetOrCreate(context.Background(), "user-1")

		require.NoError(t, err)
		require.NotNil(t, upserted)
		assert.False(t, result.Enabled)
	})

	t.Run("returns the existing settings without upserting", func(t *testing.T) {
		upsertCalled := false
		repo := &mockAutomationSettingsRepository{
			GetByUserIDFunc: func(ctx context.Context, userID string) (*model.AutomationSettings, error) {
				return &model.AutomationSettings{UserID: userID, Enabled: true, DailyLimit: 15}, nil
			},
			UpsertFunc: func(ctx context.Context, settings *model.AutomationSettings) error {
				upsertCalled = true
				return nil
			},
		}
		svc := NewAutomationSettingsService(repo, &mockInvitationLogRepository{})

		result, err := svc.GetOrCreate(context.Background(), "user-1")

		require.NoError(t, err)
		assert.False(t, upsertCalled)
		assert.True(t, result.Enabled)
	})
}

func TestAutomationSettingsService_Update(t *testing.T) {
	newSettings := func() *model.AutomationSettings {
		return &model.AutomationSettings{UserID: "user-1", DailyLimit: 15, MinDelaySeconds: 30, MaxDelaySeconds: 120}
	}

	t.Run("rejects a daily limit over the cap", func(t *testing.T) {
		repo := &mockAutomationSettingsRepository{
			GetByUserIDFunc: func(ctx context.Context, userID string) (*model.AutomationSettings, error) {
				return newSettings(), nil
			},
		}
		svc := NewAutomationSettingsService(repo, &mockInvitationLogRepository{})

		overCap := model.MaxDailyLimit + 1
		result, err := svc.Update(context.Background(), "user-1", &model.UpdateAutomationSettingsRequest{DailyLimit: &overCap})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, model.ErrDailyLimitExceedsCap)
	})

	t.Run("rejects an invalid timezone", func(t *testing.T) {
		repo := &mockAutomationSettingsRepository{
			GetByUserIDFunc: func(ctx context.Context, userID string) (*model.AutomationSettings, error) {
				return newSettings(), nil
			},
		}
		svc := NewAutomationSettingsService(repo, &mockInvitationLogRepository{})

		tz := "Not/A_Timezone"
		result, err := svc.Update(context.Background(), "user-1", &model.UpdateAutomationSettingsRequest{Timezone: &tz})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, model.ErrInvalidTimezone)
	})

	t.Run("rejects min delay greater than max delay", func(t *testing.T) {
		repo := &mockAutomationSettingsRepository{
			GetByUserIDFunc: func(ctx context.Context, userID string) (*model.AutomationSettings, error) {
				return newSettings(), nil
			},
		}
		svc := NewAutomationSettingsService(repo, &mockInvitationLogRepository{})

		min, max := 200, 100
		result, err := svc.Update(context.Background(), "user-1", &model.UpdateAutomationSettingsRequest{
			MinDelaySeconds: &min, MaxDelaySeconds: &max,
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, model.ErrInvalidDelayRange)
	})

	t.Run("applies valid partial updates and persists", func(t *testing.T) {
		var upserted *model.AutomationSettings
		repo := &mockAutomationSettingsRepository{
			GetByUserIDFunc: func(ctx context.Context, userID string) (*model.AutomationSettings, error) {
				return newSettings(), nil
			},
			UpsertFunc: func(ctx context.Context, settings *model.AutomationSettings) error {
				upserted = settings
				return nil
			},
		}
		svc := NewAutomationSettingsService(repo, &mockInvitationLogRepository{})

		enabled := true
		limit := 20
		result, err := svc.Update(context.Background(), "user-1", &model.UpdateAutomationSettingsRequest{
			Enabled: &enabled, DailyLimit: &limit,
		})

		require.NoError(t, err)
		assert.True(t, upserted.Enabled)
		assert.Equal(t, 20, upserted.DailyLimit)
		assert.Equal(t, 20, result.DailyLimit)
	})
}

func TestAutomationSettingsService_ListInvitationLogs(t *testing.T) {
	expected := []*model.InvitationLogDTO{{ID: "log-1"}}
	repo := &mockInvitationLogRepository{
		ListByUserFunc: func(ctx context.Context, userID string, limit, offset int) ([]*model.InvitationLogDTO, int, error) {
			return expected, 1, nil
		},
	}
	svc := NewAutomationSettingsService(&mockAutomationSettingsRepository{}, repo)

	result, total, err := svc.ListInvitationLogs(context.Background(), "user-1", 10, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, expected, result)
}
