package repository

import (
	"context"
	"errors"
	"time"

	"github.com/outreach-engine/scheduler/modules/businessprofiles/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BusinessProfileRepository implements ports.BusinessProfileRepository.
type BusinessProfileRepository struct {
	pool *pgxpool.Pool
}

func NewBusinessProfileRepository(pool *pgxpool.Pool) *BusinessProfileRepository {
	return &BusinessProfileRepository{pool: pool}
}

func (r *BusinessProfileRepository) Create(ctx context.Context, p *model.BusinessProfile) error {
	query := `
		INSERT INTO business_profiles
			(id, user_id, name, is_default, ideal_customer_description, target_industries,
			 target_company_sizes, target_titles, target_locations, value_proposition,
			 sender_name, sender_title, message_strategy, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	p.ID = uuid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.IsDefault, p.IdealCustomerDesc, p.TargetIndustries,
		p.TargetCompanySizes, p.TargetTitles, p.TargetLocations, p.ValueProposition,
		p.SenderName, p.SenderTitle, p.MessageStrategy, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *BusinessProfileRepository) scanRow(row pgx.Row) (*model.BusinessProfile, error) {
	p := &model.BusinessProfile{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.IsDefault, &p.IdealCustomerDesc, &p.TargetIndustries,
		&p.TargetCompanySizes, &p.TargetTitles, &p.TargetLocations, &p.ValueProposition,
		&p.SenderName, &p.SenderTitle, &p.MessageStrategy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBusinessProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

const selectColumns = `id, user_id, name, is_default, ideal_customer_description, target_industries,
	target_company_sizes, target_titles, target_locations, value_proposition,
	sender_name, sender_title, message_strategy, created_at, updated_at`

func (r *BusinessProfileRepository) GetByID(ctx context.Context, userID, profileID string) (*model.BusinessProfile, error) {
	query := `SELECT ` + selectColumns + ` FROM business_profiles WHERE id = $1 AND user_id = $2`
	return r.scanRow(r.pool.QueryRow(ctx, query, profileID, userID))
}

func (r *BusinessProfileRepository) GetDefault(ctx context.Context, userID string) (*model.BusinessProfile, error) {
	query := `SELECT ` + selectColumns + ` FROM business_profiles WHERE user_id = $1 AND is_default = true LIMIT 1`
	return r.scanRow(r.pool.QueryRow(ctx, query, userID))
}

func (r *BusinessProfileRepository) List(ctx context.Context, userID string) ([]*model.BusinessProfile, error) {
	query := `SELECT ` + selectColumns + ` FROM business_profiles WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*model.BusinessProfile
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *BusinessProfileRepository) Update(ctx context.Context, p *model.BusinessProfile) error {
	query := `
		UPDATE business_profiles
		SET name = $3, is_default = $4, ideal_customer_description = $5, target_industries = $6,
		    target_company_sizes = $7, target_titles = $8, target_locations = $9,
		    value_proposition = $10, sender_name = $11, sender_title = $12,
		    message_strategy = $13, updated_at = $14
		WHERE id = $1 AND user_id = $2
	`
	p.UpdatedAt = time.Now().UTC()
	result, err := r.pool.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.IsDefault, p.IdealCustomerDesc, p.TargetIndustries,
		p.TargetCompanySizes, p.TargetTitles, p.TargetLocations, p.ValueProposition,
		p.SenderName, p.SenderTitle, p.MessageStrategy, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrBusinessProfileNotFound
	}
	return nil
}

func (r *BusinessProfileRepository) Delete(ctx context.Context, userID, profileID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM business_profiles WHERE id = $1 AND user_id = $2`, profileID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrBusinessProfileNotFound
	}
	return nil
}

func (r *BusinessProfileRepository) ClearDefault(ctx context.Context, userID, keepID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE business_profiles SET is_default = false WHERE user_id = $1 AND id != $2`, userID, keepID)
	return err
}
