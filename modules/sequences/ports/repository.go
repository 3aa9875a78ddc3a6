package ports

import (
	"context"

	"github.com/outreach-engine/scheduler/modules/sequences/model"
)

type ListOptions struct {
	Limit  int
	Offset int
	Mode   *string
	Status *string
}

type SequenceRepository interface {
	Create(ctx context.Context, sequence *model.Sequence, steps []*model.SequenceStep) error
	GetByID(ctx context.Context, userID, sequenceID string) (*model.Sequence, []*model.SequenceStep, error)
	List(ctx context.Context, userID string, opts *ListOptions) ([]*model.SequenceDTO, int, error)
	Update(ctx context.Context, sequence *model.Sequence) error
	Delete(ctx context.Context, userID, sequenceID string) error

	// ReplaceSteps atomically replaces a classic sequence's step list.
	ReplaceSteps(ctx context.Context, sequenceID string, steps []*model.SequenceStep) error

	// ListActive returns every active sequence belonging to a user, used by
	// the scheduler loop to discover work.
	ListActive(ctx context.Context, userID string) ([]*model.Sequence, error)
}
