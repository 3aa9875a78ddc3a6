package repository

import (
	"context"
	"errors"
	"time"

	"github.com/outreach-engine/scheduler/modules/automation/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AutomationSettingsRepository struct {
	pool *pgxpool.Pool
}

func NewAutomationSettingsRepository(pool *pgxpool.Pool) *AutomationSettingsRepository {
	return &AutomationSettingsRepository{pool: pool}
}

const settingsColumns = `user_id, enabled, start_hour, start_minute, end_hour, end_minute,
	working_days, timezone, daily_limit, min_delay_seconds, max_delay_seconds,
	min_lead_score, target_statuses, target_campaign_id, invitations_sent_today,
	last_invitation_at, last_reset_date, created_at, updated_at`

func scanSettings(row pgx.Row) (*model.AutomationSettings, error) {
	s := &model.AutomationSettings{}
	err := row.Scan(
		&s.UserID, &s.Enabled, &s.StartHour, &s.StartMinute, &s.EndHour, &s.EndMinute,
		&s.WorkingDays, &s.Timezone, &s.DailyLimit, &s.MinDelaySeconds, &s.MaxDelaySeconds,
		&s.MinLeadScore, &s.TargetStatuses, &s.TargetCampaignID, &s.InvitationsSentToday,
		&s.LastInvitationAt, &s.LastResetDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAutomationSettingsNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *AutomationSettingsRepository) GetByUserID(ctx context.Context, userID string) (*model.AutomationSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM automation_settings WHERE user_id = $1`
	return scanSettings(r.pool.QueryRow(ctx, query, userID))
}

func (r *AutomationSettingsRepository) Upsert(ctx context.Context, s *model.AutomationSettings) error {
	now := time.Now().UTC()
	s.UpdatedAt = now
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	query := `
		INSERT INTO automation_settings (` + settingsColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			start_hour = EXCLUDED.start_hour,
			start_minute = EXCLUDED.start_minute,
			end_hour = EXCLUDED.end_hour,
			end_minute = EXCLUDED.end_minute,
			working_days = EXCLUDED.working_days,
			timezone = EXCLUDED.timezone,
			daily_limit = EXCLUDED.daily_limit,
			min_delay_seconds = EXCLUDED.min_delay_seconds,
			max_delay_seconds = EXCLUDED.max_delay_seconds,
			min_lead_score = EXCLUDED.min_lead_score,
			target_statuses = EXCLUDED.target_statuses,
			target_campaign_id = EXCLUDED.target_campaign_id,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		s.UserID, s.Enabled, s.StartHour, s.StartMinute, s.EndHour, s.EndMinute,
		s.WorkingDays, s.Timezone, s.DailyLimit, s.MinDelaySeconds, s.MaxDelaySeconds,
		s.MinLeadScore, s.TargetStatuses, s.TargetCampaignID, s.InvitationsSentToday,
		s.LastInvitationAt, s.LastResetDate, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *AutomationSettingsRepository) IncrementDailyCounter(ctx context.Context, userID string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE automation_settings
		SET invitations_sent_today = invitations_sent_today + 1,
			last_invitation_at = $2,
			updated_at = $2
		WHERE user_id = $1
	`, userID, at)
	return err
}

// ResetDailyCounterIfStale implements reset_counter_if_new_day (§4.4):
// the comparison is against the UTC calendar date, not a rolling 24h window.
func (r *AutomationSettingsRepository) ResetDailyCounterIfStale(ctx context.Context, userID string) (*model.AutomationSettings, error) {
	_, err := r.pool.Exec(ctx, `
		UPDATE automation_settings
		SET invitations_sent_today = 0,
			last_reset_date = now(),
			updated_at = now()
		WHERE user_id = $1 AND last_reset_date::date < (now() AT TIME ZONE 'UTC')::date
	`, userID)
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

func (r *AutomationSettingsRepository) ListEnabled(ctx context.Context) ([]*model.AutomationSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM automation_settings WHERE enabled = true`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AutomationSettings
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
