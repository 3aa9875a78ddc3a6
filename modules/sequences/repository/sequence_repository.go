package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/outreach-engine/scheduler/modules/sequences/model"
	"github.com/outreach-engine/scheduler/modules/sequences/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SequenceRepository struct {
	pool *pgxpool.Pool
}

func NewSequenceRepository(pool *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{pool: pool}
}

const sequenceColumns = `id, user_id, name, status, mode, business_profile_id, message_strategy, created_at, updated_at`

func scanSequence(row pgx.Row) (*model.Sequence, error) {
	s := &model.Sequence{}
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Status, &s.Mode, &s.BusinessProfileID, &s.MessageStrategy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSequenceNotFound
		}
		return nil, err
	}
	return s, nil
}

func scanStep(row pgx.Row) (*model.SequenceStep, error) {
	st := &model.SequenceStep{}
	err := row.Scan(&st.ID, &st.SequenceID, &st.StepOrder, &st.StepType, &st.DelayDays, &st.PromptContext)
	return st, err
}

func (r *SequenceRepository) Create(ctx context.Context, sequence *model.Sequence, steps []*model.SequenceStep) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	sequence.ID = uuid.New().String()
	now := time.Now().UTC()
	sequence.CreatedAt = now
	sequence.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO sequences (`+sequenceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, sequence.ID, sequence.UserID, sequence.Name, sequence.Status, sequence.Mode,
		sequence.BusinessProfileID, sequence.MessageStrategy, sequence.CreatedAt, sequence.UpdatedAt)
	if err != nil {
		return err
	}

	for _, step := range steps {
		step.ID = uuid.New().String()
		step.SequenceID = sequence.ID
		_, err = tx.Exec(ctx, `
			INSERT INTO sequence_steps (id, sequence_id, step_order, step_type, delay_days, prompt_context)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, step.ID, step.SequenceID, step.StepOrder, step.StepType, step.DelayDays, step.PromptContext)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *SequenceRepository) GetByID(ctx context.Context, userID, sequenceID string) (*model.Sequence, []*model.SequenceStep, error) {
	query := `SELECT ` + sequenceColumns + ` FROM sequences WHERE id = $1 AND user_id = $2`
	sequence, err := scanSequence(r.pool.QueryRow(ctx, query, sequenceID, userID))
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, sequence_id, step_order, step_type, delay_days, prompt_context
		FROM sequence_steps WHERE sequence_id = $1 ORDER BY step_order ASC
	`, sequenceID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var steps []*model.SequenceStep
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, nil, err
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return sequence, steps, nil
}

func (r *SequenceRepository) List(ctx context.Context, userID string, opts *ports.ListOptions) ([]*model.SequenceDTO, int, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	if opts.Mode != nil {
		args = append(args, *opts.Mode)
		where = append(where, fmt.Sprintf("mode = $%d", len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sequences WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	qualifiedWhere := "s." + strings.ReplaceAll(whereClause, " AND ", " AND s.")

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(`
		SELECT s.id, s.user_id, s.name, s.status, s.mode, s.business_profile_id,
			s.message_strategy, s.created_at, s.updated_at,
			COUNT(e.id) AS enrolled_count,
			COUNT(e.id) FILTER (WHERE e.status = 'active') AS active_count
		FROM sequences s
		LEFT JOIN sequence_enrollments e ON e.sequence_id = s.id
		WHERE %s
		GROUP BY s.id
		ORDER BY s.created_at DESC
		LIMIT $%d OFFSET $%d
	`, qualifiedWhere, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.SequenceDTO
	for rows.Next() {
		s := &model.Sequence{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Status, &s.Mode, &s.BusinessProfileID,
			&s.MessageStrategy, &s.CreatedAt, &s.UpdatedAt, &s.EnrolledCount, &s.ActiveCount); err != nil {
			return nil, 0, err
		}
		out = append(out, s.ToDTO())
	}
	return out, total, rows.Err()
}

func (r *SequenceRepository) Update(ctx context.Context, sequence *model.Sequence) error {
	sequence.UpdatedAt = time.Now().UTC()
	result, err := r.pool.Exec(ctx, `
		UPDATE sequences SET name = $3, status = $4, business_profile_id = $5,
			message_strategy = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
	`, sequence.ID, sequence.UserID, sequence.Name, sequence.Status, sequence.BusinessProfileID,
		sequence.MessageStrategy, sequence.UpdatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrSequenceNotFound
	}
	return nil
}

func (r *SequenceRepository) Delete(ctx context.Context, userID, sequenceID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM sequences WHERE id = $1 AND user_id = $2`, sequenceID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrSequenceNotFound
	}
	return nil
}

func (r *SequenceRepository) ReplaceSteps(ctx context.Context, sequenceID string, steps []*model.SequenceStep) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sequence_steps WHERE sequence_id = $1`, sequenceID); err != nil {
		return err
	}
	for _, step := range steps {
		step.ID = uuid.New().String()
		step.SequenceID = sequenceID
		if _, err := tx.Exec(ctx, `
			INSERT INTO sequence_steps (id, sequence_id, step_order, step_type, delay_days, prompt_context)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, step.ID, step.SequenceID, step.StepOrder, step.StepType, step.DelayDays, step.PromptContext); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *SequenceRepository) ListActive(ctx context.Context, userID string) ([]*model.Sequence, error) {
	query := `SELECT ` + sequenceColumns + ` FROM sequences WHERE user_id = $1 AND status = 'active'`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Sequence
	for rows.Next() {
		s, err := scanSequence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
