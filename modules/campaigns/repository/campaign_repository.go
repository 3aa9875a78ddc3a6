package repository

import (
	"context"
	"errors"
	"time"

	"github.com/outreach-engine/scheduler/modules/campaigns/model"
	"github.com/outreach-engine/scheduler/modules/campaigns/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CampaignRepository implements ports.CampaignRepository.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

func (r *CampaignRepository) Create(ctx context.Context, campaign *model.Campaign) error {
	query := `
		INSERT INTO campaigns (id, user_id, name, business_profile_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	campaign.ID = uuid.New().String()
	now := time.Now().UTC()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query, campaign.ID, campaign.UserID, campaign.Name, campaign.BusinessProfileID, campaign.CreatedAt, campaign.UpdatedAt)
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, userID, campaignID string) (*model.Campaign, error) {
	query := `
		SELECT id, user_id, name, business_profile_id, created_at, updated_at
		FROM campaigns
		WHERE id = $1 AND user_id = $2
	`
	c := &model.Campaign{}
	err := r.pool.QueryRow(ctx, query, campaignID, userID).Scan(
		&c.ID, &c.UserID, &c.Name, &c.BusinessProfileID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCampaignNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context, userID string, opts *ports.ListOptions) ([]*model.CampaignDTO, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM campaigns WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			c.id, c.user_id, c.name, c.business_profile_id, c.created_at, c.updated_at,
			COUNT(l.id) AS lead_count,
			COUNT(l.id) FILTER (WHERE l.active_sequence_id IS NOT NULL) AS active_lead_count
		FROM campaigns c
		LEFT JOIN leads l ON l.campaign_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.id
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var campaigns []*model.CampaignDTO
	for rows.Next() {
		c := &model.Campaign{}
		var leadCount, activeLeadCount int
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.BusinessProfileID, &c.CreatedAt, &c.UpdatedAt, &leadCount, &activeLeadCount); err != nil {
			return nil, 0, err
		}
		dto := c.ToDTO()
		dto.LeadCount = leadCount
		dto.ActiveLeadCount = activeLeadCount
		campaigns = append(campaigns, dto)
	}
	return campaigns, total, rows.Err()
}

func (r *CampaignRepository) Update(ctx context.Context, campaign *model.Campaign) error {
	query := `
		UPDATE campaigns SET name = $3, business_profile_id = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
	`
	campaign.UpdatedAt = time.Now().UTC()
	result, err := r.pool.Exec(ctx, query, campaign.ID, campaign.UserID, campaign.Name, campaign.BusinessProfileID, campaign.UpdatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrCampaignNotFound
	}
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, userID, campaignID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1 AND user_id = $2`, campaignID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrCampaignNotFound
	}
	return nil
}
