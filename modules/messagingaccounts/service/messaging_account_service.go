package service

import (
	"context"
	"strings"

	"github.com/outreach-engine/scheduler/internal/platform/crypto"
	"github.com/outreach-engine/scheduler/modules/messagingaccounts/model"
	"github.com/outreach-engine/scheduler/modules/messagingaccounts/ports"
)

// MessagingAccountService connects/disconnects a user's external-network
// account, encrypting the provider API key at rest.
type MessagingAccountService struct {
	repo ports.MessagingAccountRepository
	box  *crypto.CredentialBox
}

func NewMessagingAccountService(repo ports.MessagingAccountRepository, box *crypto.CredentialBox) *MessagingAccountService {
	return &MessagingAccountService{repo: repo, box: box}
}

// Connect stores a new (or replaces an existing) account's credentials.
func (s *MessagingAccountService) Connect(ctx context.Context, userID, externalAccountID, apiKey string) (*model.MessagingAccountDTO, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, model.ErrAPIKeyRequired
	}

	encrypted, err := s.box.Encrypt(apiKey)
	if err != nil {
		return nil, err
	}

	account := &model.MessagingAccount{
		UserID:            userID,
		ExternalAccountID: externalAccountID,
		EncryptedAPIKey:   encrypted,
		Connected:         true,
		ConnectionState:   model.ConnectionOK,
	}

	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if err != model.ErrMessagingAccountNotFound {
			return nil, err
		}
		if err := s.repo.Create(ctx, account); err != nil {
			return nil, err
		}
		return account.ToDTO(), nil
	}

	existing.ExternalAccountID = externalAccountID
	existing.EncryptedAPIKey = encrypted
	existing.Connected = true
	existing.ConnectionState = model.ConnectionOK
	existing.PendingCheckpointType = nil
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing.ToDTO(), nil
}

// Disconnect clears the connected flag without deleting the credentials row,
// mirroring the source's "disconnect" semantics (state retained for audit).
func (s *MessagingAccountService) Disconnect(ctx context.Context, userID string) error {
	account, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	account.Connected = false
	account.ConnectionState = model.ConnectionCredential
	return s.repo.Update(ctx, account)
}

func (s *MessagingAccountService) GetStatus(ctx context.Context, userID string) (*model.MessagingAccountDTO, error) {
	account, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return account.ToDTO(), nil
}

// DecryptedAPIKey is used only by the scheduler/messaging client, never the
// HTTP handlers.
func (s *MessagingAccountService) DecryptedAPIKey(account *model.MessagingAccount) (string, error) {
	return s.box.Decrypt(account.EncryptedAPIKey)
}
