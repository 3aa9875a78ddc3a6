package model

import (
	"errors"
	"time"
)

// ConnectionState mirrors the external messaging provider's account health.
type ConnectionState string

const (
	ConnectionOK         ConnectionState = "OK"
	ConnectionCredential ConnectionState = "CREDENTIALS"
	ConnectionCheckpoint ConnectionState = "CHECKPOINT"
)

// MessagingAccount holds one user's credentials and link state for the
// external network. One per user.
type MessagingAccount struct {
	ID                    string
	UserID                string
	ExternalAccountID     string
	EncryptedAPIKey       string
	Connected             bool
	ConnectionState       ConnectionState
	PendingCheckpointType *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// MessagingAccountDTO is the API-facing view; the encrypted key never leaves
// this process.
type MessagingAccountDTO struct {
	ID                    string          `json:"id"`
	ExternalAccountID     string          `json:"external_account_id"`
	Connected             bool            `json:"connected"`
	ConnectionState       ConnectionState `json:"connection_state"`
	PendingCheckpointType *string         `json:"pending_checkpoint_type,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (a *MessagingAccount) ToDTO() *MessagingAccountDTO {
	return &MessagingAccountDTO{
		ID:                    a.ID,
		ExternalAccountID:     a.ExternalAccountID,
		Connected:             a.Connected,
		ConnectionState:       a.ConnectionState,
		PendingCheckpointType: a.PendingCheckpointType,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

var (
	ErrMessagingAccountNotFound      = errors.New("messaging account not found")
	ErrMessagingAccountAlreadyExists = errors.New("messaging account already exists for user")
	ErrAPIKeyRequired                = errors.New("external api key is required")
)

type ErrorCode string

const (
	CodeMessagingAccountNotFound      ErrorCode = "MESSAGING_ACCOUNT_NOT_FOUND"
	CodeMessagingAccountAlreadyExists ErrorCode = "MESSAGING_ACCOUNT_ALREADY_EXISTS"
	CodeAPIKeyRequired                ErrorCode = "API_KEY_REQUIRED"
	CodeInternalError                 ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrMessagingAccountNotFound):
		return CodeMessagingAccountNotFound
	case errors.Is(err, ErrMessagingAccountAlreadyExists):
		return CodeMessagingAccountAlreadyExists
	case errors.Is(err, ErrAPIKeyRequired):
		return CodeAPIKeyRequired
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrMessagingAccountNotFound):
		return "Messaging account not found"
	case errors.Is(err, ErrMessagingAccountAlreadyExists):
		return "Messaging account already exists for this user"
	case errors.Is(err, ErrAPIKeyRequired):
		return "External API key is required"
	default:
		return "Internal server error"
	}
}
