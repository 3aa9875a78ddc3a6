package repository

import (
	"context"
	"time"

	"github.com/outreach-engine/scheduler/modules/automation/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvitationLogRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationLogRepository(pool *pgxpool.Pool) *InvitationLogRepository {
	return &InvitationLogRepository{pool: pool}
}

func (r *InvitationLogRepository) Create(ctx context.Context, log *model.InvitationLog) error {
	log.ID = uuid.New().String()
	log.CreatedAt = time.Now().UTC()
	query := `
		INSERT INTO invitation_logs (
			id, user_id, lead_id, campaign_id, enrollment_id, lead_name, campaign_name,
			message_preview, success, provider_status_code, failure_reason, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err := r.pool.Exec(ctx, query,
		log.ID, log.UserID, log.LeadID, log.CampaignID, log.EnrollmentID, log.LeadName, log.CampaignName,
		log.MessagePreview, log.Success, log.ProviderStatusCode, log.FailureReason, log.CreatedAt,
	)
	return err
}

func (r *InvitationLogRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.InvitationLogDTO, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invitation_logs WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, lead_id, campaign_id, enrollment_id, lead_name, campaign_name,
			message_preview, success, provider_status_code, failure_reason, created_at
		FROM invitation_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.InvitationLogDTO
	for rows.Next() {
		l := &model.InvitationLog{}
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.LeadID, &l.CampaignID, &l.EnrollmentID, &l.LeadName, &l.CampaignName,
			&l.MessagePreview, &l.Success, &l.ProviderStatusCode, &l.FailureReason, &l.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, l.ToDTO())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
