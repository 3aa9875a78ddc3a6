package ports

import (
	"context"
	"time"

	"github.com/outreach-engine/scheduler/modules/automation/model"
)

// AutomationSettingsRepository persists per-user automation configuration
// and the daily send counter it guards.
type AutomationSettingsRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.AutomationSettings, error)
	Upsert(ctx context.Context, settings *model.AutomationSettings) error

	// IncrementDailyCounter atomically bumps invitations_sent_today and sets
	// last_invitation_at, used by the scheduler after a successful send.
	IncrementDailyCounter(ctx context.Context, userID string, at time.Time) error

	// ResetDailyCounterIfStale implements reset_counter_if_new_day: if
	// last_reset_date precedes the UTC calendar day of `now`, zero the
	// counter and advance last_reset_date. Returns the settings post-reset.
	ResetDailyCounterIfStale(ctx context.Context, userID string) (*model.AutomationSettings, error)

	// ListEnabled returns every user with automation enabled, used by the
	// scheduler loop's invitation phase to iterate eligible users.
	ListEnabled(ctx context.Context) ([]*model.AutomationSettings, error)
}

type InvitationLogRepository interface {
	Create(ctx context.Context, log *model.InvitationLog) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.InvitationLogDTO, int, error)
}
