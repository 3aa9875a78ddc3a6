package repository

import (
	"context"
	"testing"
	"time"

	"github.com/outreach-engine/scheduler/modules/leads/model"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	lead := &model.Lead{UserID: "user-123", FirstName: "Priya", LastName: "Natarajan", ExternalProfileURL: "https://linkedin.com/in/priya"}

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), lead.UserID, lead.CampaignID, lead.FirstName, lead.LastName, lead.Title, lead.CompanyName,
			lead.Email, model.EmailUnknown, lead.ExternalProfileURL, lead.ExternalChatID, model.LeadStatusNew,
			lead.Score, model.ScoreCold, lead.ScoreReason, lead.ConnectionMessage, lead.ConnectionSentAt,
			lead.ConnectedAt, lead.LastMessageAt, lead.ActiveSequenceID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	testRepo := &testLeadRepo{mock: mock}
	err = testRepo.Create(context.Background(), lead)

	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, model.LeadStatusNew, lead.Status)
	assert.Equal(t, model.ScoreCold, lead.ScoreLabel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_GetByID(t *testing.T) {
	t.Run("returns error when lead not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, user_id, campaign_id").
			WithArgs("nonexistent", "user-123").
			WillReturnError(pgx.ErrNoRows)

		repo := &testLeadRepo{mock: mock}
		lead, err := repo.GetByID(context.Background(), "user-123", "nonexistent")

		assert.Nil(t, lead)
		assert.Equal(t, model.ErrLeadNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLeadRepository_Update(t *testing.T) {
	t.Run("returns not-found when no row matched", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		lead := &model.Lead{ID: "nonexistent", UserID: "user-123"}

		mock.ExpectExec("UPDATE leads SET").
			WithArgs(lead.ID, lead.UserID, lead.CampaignID, lead.FirstName, lead.LastName, lead.Title, lead.CompanyName,
				lead.Email, lead.EmailVerified, lead.ExternalProfileURL, lead.ExternalChatID,
				lead.Status, lead.Score, lead.ScoreLabel, lead.ScoreReason, lead.ConnectionMessage,
				lead.ConnectionSentAt, lead.ConnectedAt, lead.LastMessageAt, lead.ActiveSequenceID, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := &testLeadRepo{mock: mock}
		err = repo.Update(context.Background(), lead)

		assert.Equal(t, model.ErrLeadNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLeadRepository_SetActiveSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	enrollmentID := "enrollment-1"
	mock.ExpectExec("UPDATE leads SET active_sequence_id").
		WithArgs("lead-1", &enrollmentID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := &testLeadRepo{mock: mock}
	err = repo.SetActiveSequence(context.Background(), "lead-1", &enrollmentID)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM leads").
		WithArgs("lead-1", "user-123").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := &testLeadRepo{mock: mock}
	err = repo.Delete(context.Background(), "user-123", "lead-1")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// testLeadRepo duplicates the production repository's queries against a
// pgxmock pool instead of a real pgxpool.Pool.
type testLeadRepo struct {
	mock pgxmock.PgxPoolIface
}

func (r *testLeadRepo) Create(ctx context.Context, lead *model.Lead) error {
	lead.ID = "test-lead-id"
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	if lead.EmailVerified == "" {
		lead.EmailVerified = model.EmailUnknown
	}
	if lead.ScoreLabel == "" {
		lead.ScoreLabel = model.ScoreCold
	}

	query := `INSERT INTO leads (` + leadColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`
	_, err := r.mock.Exec(ctx, query,
		lead.ID, lead.UserID, lead.CampaignID, lead.FirstName, lead.LastName, lead.Title, lead.CompanyName,
		lead.Email, lead.EmailVerified, lead.ExternalProfileURL, lead.ExternalChatID, lead.Status,
		lead.Score, lead.ScoreLabel, lead.ScoreReason, lead.ConnectionMessage, lead.ConnectionSentAt,
		lead.ConnectedAt, lead.LastMessageAt, lead.ActiveSequenceID, lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

func (r *testLeadRepo) GetByID(ctx context.Context, userID, leadID string) (*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND user_id = $2`
	return scanLead(r.mock.QueryRow(ctx, query, leadID, userID))
}

func (r *testLeadRepo) Update(ctx context.Context, lead *model.Lead) error {
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
	result, err := r.mock.Exec(ctx, query,
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

func (r *testLeadRepo) Delete(ctx context.Context, userID, leadID string) error {
	result, err := r.mock.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, leadID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrLeadNotFound
	}
	return nil
}

func (r *testLeadRepo) SetActiveSequence(ctx context.Context, leadID string, enrollmentID *string) error {
	_, err := r.mock.Exec(ctx, `UPDATE leads SET active_sequence_id = $2, updated_at = now() WHERE id = $1`, leadID, enrollmentID)
	return err
}
