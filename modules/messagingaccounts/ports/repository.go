package ports

import (
	"context"

	"github.com/outreach-engine/scheduler/modules/messagingaccounts/model"
)

// MessagingAccountRepository defines data access for MessagingAccount.
type MessagingAccountRepository interface {
	Create(ctx context.Context, account *model.MessagingAccount) error
	GetByUserID(ctx context.Context, userID string) (*model.MessagingAccount, error)
	Update(ctx context.Context, account *model.MessagingAccount) error
	Delete(ctx context.Context, userID string) error
	// ListConnected returns every connected account, used by the scheduler
	// loop to enumerate users with automation eligible to run.
	ListConnected(ctx context.Context) ([]*model.MessagingAccount, error)
}
