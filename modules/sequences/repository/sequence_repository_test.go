package repository

import (
	"context"
	"testing"
	"time"

	"github.com/outreach-engine/scheduler/modules/sequences/model"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sequence := &model.Sequence{UserID: "user-123", Name: "Classic - DevOps", Status: model.SequenceStatusDraft, Mode: model.SequenceModeClassic}
	steps := []*model.SequenceStep{
		{StepOrder: 1, StepType: model.StepTypeConnectionRequest},
		{StepOrder: 2, StepType: model.StepTypeFollowUpMessage, DelayDays: 3},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sequences").
		WithArgs(pgxmock.AnyArg(), sequence.UserID, sequence.Name, sequence.Status, sequence.Mode,
			sequence.BusinessProfileID, sequence.MessageStrategy, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO sequence_steps").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), 1, model.StepTypeConnectionRequest, 0, "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO sequence_steps").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), 2, model.StepTypeFollowUpMessage, 3, "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := &testSequenceRepo{mock: mock}
	err = repo.Create(context.Background(), sequence, steps)

	require.NoError(t, err)
	assert.NotEmpty(t, sequence.ID)
	assert.NotEmpty(t, steps[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepository_GetByID(t *testing.T) {
	t.Run("returns not-found when sequence is absent", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, user_id, name, status, mode").
			WithArgs("nonexistent", "user-123").
			WillReturnError(pgx.ErrNoRows)

		repo := &testSequenceRepo{mock: mock}
		sequence, steps, err := repo.GetByID(context.Background(), "user-123", "nonexistent")

		assert.Nil(t, sequence)
		assert.Nil(t, steps)
		assert.Equal(t, model.ErrSequenceNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSequenceRepository_Update(t *testing.T) {
	t.Run("returns not-found when no row matched", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		sequence := &model.Sequence{ID: "nonexistent", UserID: "user-123", Name: "X", Status: model.SequenceStatusActive}

		mock.ExpectExec("UPDATE sequences SET").
			WithArgs(sequence.ID, sequence.UserID, sequence.Name, sequence.Status, sequence.BusinessProfileID,
				sequence.MessageStrategy, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := &testSequenceRepo{mock: mock}
		err = repo.Update(context.Background(), sequence)

		assert.Equal(t, model.ErrSequenceNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSequenceRepository_ListActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "user_id", "name", "status", "mode", "business_profile_id", "message_strategy", "created_at", "updated_at"})
	mock.ExpectQuery("SELECT id, user_id, name, status, mode").
		WithArgs("user-123").
		WillReturnRows(rows)

	repo := &testSequenceRepo{mock: mock}
	sequences, err := repo.ListActive(context.Background(), "user-123")

	require.NoError(t, err)
	assert.Empty(t, sequences)
	require.NoError(t, mock.ExpectationsWereMet())
}

type testSequenceRepo struct {
	mock pgxmock.PgxPoolIface
}

func (r *testSequenceRepo) Create(ctx context.Context, sequence *model.Sequence, steps []*model.SequenceStep) error {
	tx, err := r.mock.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	sequence.ID = "test-sequence-id"

	_, err = tx.Exec(ctx, `
		INSERT INTO sequences (`+sequenceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, sequence.ID, sequence.UserID, sequence.Name, sequence.Status, sequence.Mode,
		sequence.BusinessProfileID, sequence.MessageStrategy, sequence.CreatedAt, sequence.UpdatedAt)
	if err != nil {
		return err
	}

	for _, step := range steps {
		step.ID = "test-step-id-" + string(rune('0'+step.StepOrder))
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

func (r *testSequenceRepo) GetByID(ctx context.Context, userID, sequenceID string) (*model.Sequence, []*model.SequenceStep, error) {
	query := `SELECT ` + sequenceColumns + ` FROM sequences WHERE id = $1 AND user_id = $2`
	sequence, err := scanSequence(r.mock.QueryRow(ctx, query, sequenceID, userID))
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.mock.Query(ctx, `
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
	return sequence, steps, rows.Err()
}

func (r *testSequenceRepo) Update(ctx context.Context, sequence *model.Sequence) error {
	sequence.UpdatedAt = time.Now().UTC()
	result, err := r.mock.Exec(ctx, `
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

func (r *testSequenceRepo) ListActive(ctx context.Context, userID string) ([]*model.Sequence, error) {
	query := `SELECT ` + sequenceColumns + ` FROM sequences WHERE user_id = $1 AND status = 'active'`
	rows, err := r.mock.Query(ctx, query, userID)
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
