package repository

import (
	"context"
	"errors"
	"time"

	"github.com/outreach-engine/scheduler/modules/messagingaccounts/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessagingAccountRepository implements ports.MessagingAccountRepository.
type MessagingAccountRepository struct {
	pool *pgxpool.Pool
}

func NewMessagingAccountRepository(pool *pgxpool.Pool) *MessagingAccountRepository {
	return &MessagingAccountRepository{pool: pool}
}

func (r *MessagingAccountRepository) Create(ctx context.Context, account *model.MessagingAccount) error {
	query := `
		INSERT INTO messaging_accounts
			(id, user_id, external_account_id, encrypted_api_key, connected, connection_state, pending_checkpoint_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	account.ID = uuid.New().String()
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.UserID,
		account.ExternalAccountID,
		account.EncryptedAPIKey,
		account.Connected,
		account.ConnectionState,
		account.PendingCheckpointType,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return nil
}

func (r *MessagingAccountRepository) GetByUserID(ctx context.Context, userID string) (*model.MessagingAccount, error) {
	query := `
		SELECT id, user_id, external_account_id, encrypted_api_key, connected, connection_state, pending_checkpoint_type, created_at, updated_at
		FROM messaging_accounts
		WHERE user_id = $1
	`

	a := &model.MessagingAccount{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&a.ID, &a.UserID, &a.ExternalAccountID, &a.EncryptedAPIKey,
		&a.Connected, &a.ConnectionState, &a.PendingCheckpointType,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrMessagingAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *MessagingAccountRepository) Update(ctx context.Context, account *model.MessagingAccount) error {
	query := `
		UPDATE messaging_accounts
		SET external_account_id = $2, encrypted_api_key = $3, connected = $4,
		    connection_state = $5, pending_checkpoint_type = $6, updated_at = $7
		WHERE user_id = $1
	`

	account.UpdatedAt = time.Now().UTC()
	result, err := r.pool.Exec(ctx, query,
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

func (r *MessagingAccountRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM messaging_accounts WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrMessagingAccountNotFound
	}
	return nil
}

func (r *MessagingAccountRepository) ListConnected(ctx context.Context) ([]*model.MessagingAccount, error) {
	query := `
		SELECT id, user_id, external_account_id, encrypted_api_key, connected, connection_state, pending_checkpoint_type, created_at, updated_at
		FROM messaging_accounts
		WHERE connected = true
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
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
