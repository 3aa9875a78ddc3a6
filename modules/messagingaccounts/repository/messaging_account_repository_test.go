package repository

import (
	"context"
	"testing"
	"time"

	"github.com/outreach-engine/scheduler/modules/messagingaccounts/model"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagingAccountRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	account := &model.MessagingAccount{UserID: "user-123", ExternalAccountID: "ext-1", EncryptedAPIKey: "enc", Connected: true, ConnectionState: model.ConnectionOK}

	mock.ExpectExec("INSERT INTO messaging_accounts").
		WithArgs(pgxmock.AnyArg(), account.UserID, account.ExternalAccountID, account.EncryptedAPIKey,
			account.Connected, account.ConnectionState, account.PendingCheckpointType, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := &testMessagingAccountRepo{mock: mock}
	err = repo.Create(context.Background(), account)

	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMessagingAccountRepository_GetByUserID(t *testing.T) {
	t.Run("returns not-found when no account exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, user_id, external_account_id").
			WithArgs("user-123").
			WillReturnError(pgx.ErrNoRows)

		repo := &testMessagingAccountRepo{mock: mock}
		account, err := repo.GetByUserID(context.Background(), "user-123")

		assert.Nil(t, account)
		assert.Equal(t, model.ErrMessagingAccountNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMessagingAccountRepository_Update(t *testing.T) {
	t.Run("returns not-found when no row matched", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		account := &model.MessagingAccount{UserID: "nonexistent", ExternalAccountID: "ext-1", EncryptedAPIKey: "enc", Connected: true, ConnectionState: model.ConnectionOK}

		mock.ExpectExec("UPDATE messaging_accounts").
			WithArgs(account.UserID, account.ExternalAccountID, account.EncryptedAPIKey,
				account.Connected, account.ConnectionState, account.PendingCheckpointType, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := &testMessagingAccountRepo{mock: mock}
		err = repo.Update(context.Background(), account)

		assert.Equal(t, model.ErrMessagingAccountNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMessagingAccountRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM messaging_accounts").
		WithArgs("user-123").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := &testMessagingAccountRepo{mock: mock}
	err = repo.Delete(context.Background(), "user-123")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMessagingAccountRepository_ListConnected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "external_account_id", "encrypted_api_key", "connected", "connection_state", "pending_checkpoint_type", "created_at", "updated_at",
	}).AddRow("acct-1", "user-123", "ext-1", "enc", true, model.ConnectionOK, nil, now, now)

	mock.ExpectQuery("SELECT id, user_id, external_account_id").
		WillReturnRows(rows)

	repo := &testMessagingAccountRepo{mock: mock}
	accounts, err := repo.ListConnected(context.Background())

	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].Connected)
	require.NoError(t, mock.ExpectationsWereMet())
}

// testMessagingAccountRepo duplicates the production repository's queries
// against a pgxmock pool instead of a real pgxpool.Pool.
type testMessagingAccountRepo struct {
	mock pgxmock.PgxPoolIface
}

func (r *testMessagingAccountRepo) Create(ctx context.Context, account *model.MessagingAccount) error {
	query := `
		INSERT INTO messaging_accounts
			(id, user_id, external_account_id, encrypted_api_key, connected, connection_state, pending_checkpoint_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	account.ID = "test-account-id"
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := r.mock.Exec(ctx, query,
		account.ID, account.UserID, account.ExternalAccountID, account.EncryptedAPIKey,
		account.Connected, account.ConnectionState, account.PendingCheckpointType,
		account.CreatedAt, account.UpdatedAt,
	)
	return err
}

func (r *testMessagingAccountRepo) GetByUserID(ctx context.Context, userID string) (*model.MessagingAccount, error) {
	query := `
		SELECT id, user_id, external_account_id, encrypted_api_key, connected, connection_state, pending_checkpoint_type, created_at, updated_at
		FROM messaging_accounts
		WHERE user_id = $1
	`

	a := &model.MessagingAccount{}
	err := r.mock.QueryRow(ctx, query, userID).Scan(
		&a.ID, &a.UserID, &a.ExternalAccountID, &a.EncryptedAPIKey,
		&a.Connected, &a.ConnectionState, &a.PendingCheckpointType,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, model.ErrMessagingAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *testMessagingAccountRepo) Update(ctx context.Context, account *model.MessagingAccount) error {
	query := `
		UPDATE messaging_accounts
		SET external_account_id = $2, encrypted_api_key = $3, connected = $4,
		    connection_state = $5, pending_checkpoint_type = $6, updated_at = $7
		WHERE user_id = $1
	`

	account.UpdatedAt = time.Now().UTC()
	result, err := r.mock.Exec(ctx, query,
		account.UserID, account.ExternalAccountID, account.EncryptedAPIKey,
		account.Connected, account.ConnectionState, account.PendingCheckpointType,
		account.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrMessagingAccountNotFound
	}
	return nil
}

func (r *testMessagingAccountRepo) Delete(ctx context.Context, userID string) error {
	result, err := r.mock.Exec(ctx, `DELETE FROM messaging_accounts WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrMessagingAccountNotFound
	}
	return nil
}

func (r *testMessagingAccountRepo) ListConnected(ctx context.Context) ([]*model.MessagingAccount, error) {
	query := `
		SELECT id, user_id, external_account_id, encrypted_api_key, connected, connection_state, pending_checkpoint_type, created_at, updated_at
		FROM messaging_accounts
		WHERE connected = true
		ORDER BY created_at ASC
	`
	rows, err := r.mock.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.MessagingAccount
	for rows.Next() {
		a := &model.MessagingAccount{}
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ExternalAccountID, &a.EncryptedAPIKey,
			&a.Connected, &a.ConnectionState, &a.PendingCheckpointType,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
