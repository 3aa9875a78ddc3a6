package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/outreach-engine/scheduler/modules/leads/model"
	"github.com/outreach-engine/scheduler/modules/leads/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeadRepository implements ports.LeadRepository.
type LeadRepository struct {
	pool *pgxpool.Pool
}

func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

const leadColumns = `id, user_id, campaign_id, first_name, last_name, title, company_name,
	email, email_verified, external_profile_url, external_chat_id, status,
	score, score_label, score_reason, connection_message, connection_sent_at,
	connected_at, last_message_at, active_sequence_id, created_at, updated_at`

func scanLead(row pgx.Row) (*model.Lead, error) {
	l := &model.Lead{}
	err := row.Scan(
		&l.ID, &l.UserID, &l.CampaignID, &l.FirstName, &l.LastName, &l.Title, &l.CompanyName,
		&l.Email, &l.EmailVerified, &l.ExternalProfileURL, &l.ExternalChatID, &l.Status,
		&l.Score, &l.ScoreLabel, &l.ScoreReason, &l.ConnectionMessage, &l.ConnectionSentAt,
		&l.ConnectedAt, &l.LastMessageAt, &l.ActiveSequenceID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLeadNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	lead.ID = uuid.New().String()
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	if lead.EmailVerified == "" {
		lead.EmailVerified = model.EmailUnknown
	}
	if lead.ScoreLabel == "" {
		lead.ScoreLabel = model.ScoreCold
	}

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	`
	_, err := r.pool.Exec(ctx, query,
		lead.ID, lead.UserID, lead.CampaignID, lead.FirstName, lead.LastName, lead.Title, lead.CompanyName,
		lead.Email, lead.EmailVerified, lead.ExternalProfileURL, lead.ExternalChatID, lead.Status,
		lead.Score, lead.ScoreLabel, lead.ScoreReason, lead.ConnectionMessage, lead.ConnectionSentAt,
		lead.ConnectedAt, lead.LastMessageAt, lead.ActiveSequenceID, lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) GetByID(ctx context.Context, userID, leadID string) (*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND user_id = $2`
	return scanLead(r.pool.QueryRow(ctx, query, leadID, userID))
}

func (r *LeadRepository) List(ctx context.Context, userID string, opts *ports.ListOptions) ([]*model.LeadDTO, int, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	if opts.CampaignID != nil {
		args = append(args, *opts.CampaignID)
		where = append(where, fmt.Sprintf("campaign_id = $%d", len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if opts.MinScore != nil {
		args = append(args, *opts.MinScore)
		where = append(where, fmt.Sprintf("score >= $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM leads WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM leads WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var leads []*model.LeadDTO
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, l.ToDTO())
	}
	return leads, total, rows.Err()
}

func (r *LeadRepository) Update(ctx context.Context, lead *model.Lead) error {
	query := `
		UPDATE leads SET
			campaign_id = $3, first_name = $4, last_name = $5, title = $6, company_name = $7,
			email = $8, email_verified = $9, external_profile_url = $10, external_chat_id = $11,
			status = $12, score = $13, score_label = $14, score_reason = $15, connection_message = $16,
			connection_sent_at = $17, connected_at = $18, last_message_at = $19, active_sequence_id = $20,
			updated_at = $21
		WHERE id = $1 AND user_id = $2
	`
	lead.UpdatedAt = time.Now().UTC()
	result, err := r.pool.Exec(ctx, query,
		lead.ID, lead.UserID, lead.CampaignID, lead.FirstName, lead.LastName, lead.Title, lead.CompanyName,
		lead.Email, lead.EmailVerified, lead.ExternalProfileURL, lead.ExternalChatID,
		lead.Status, lead.Score, lead.ScoreLabel, lead.ScoreReason, lead.ConnectionMessage,
		lead.ConnectionSentAt, lead.ConnectedAt, lead.LastMessageAt, lead.ActiveSequenceID, lead.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, userID, leadID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, leadID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) SetActiveSequence(ctx context.Context, leadID string, enrollmentID *string) error {
	_, err := r.pool.Exec(ctx, `UPDATE leads SET active_sequence_id = $2, updated_at = now() WHERE id = $1`, leadID, enrollmentID)
	return err
}

func (r *LeadRepository) ListByCampaignFiltered(ctx context.Context, userID string, campaignID *string, minScore int, targetStatuses []string, limit int) ([]*model.Lead, error) {
	where := []string{"user_id = $1", "score >= $2", "active_sequence_id IS NULL"}
	args := []interface{}{userID, minScore}

	if campaignID != nil {
		args = append(args, *campaignID)
		where = append(where, fmt.Sprintf("campaign_id = $%d", len(args)))
	}
	if len(targetStatuses) > 0 {
		args = append(args, targetStatuses)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s FROM leads WHERE %s
		ORDER BY created_at ASC
		LIMIT $%d
	`, leadColumns, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
