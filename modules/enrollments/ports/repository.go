package ports

import (
	"context"

	"github.com/outreach-engine/scheduler/modules/enrollments/model"
)

// PhaseStats is the read-only per-phase breakdown of a sequence's
// enrollments (spec §6 "Read-only stats").
type PhaseStats struct {
	Phase  string
	Count  int
}

type SequenceStats struct {
	Enrolled int
	Active   int
	Replied  int
	Parked   int
	Meeting  int
	Failed   int
	Phases   []PhaseStats
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	GetByID(ctx context.Context, userID, enrollmentID string) (*model.Enrollment, error)
	GetActiveByLead(ctx context.Context, leadID string) (*model.Enrollment, error)
	ListBySequence(ctx context.Context, userID, sequenceID string, limit, offset int) ([]*model.EnrollmentDTO, int, error)
	Update(ctx context.Context, enrollment *model.Enrollment) error

	// BulkSetStatus updates every active enrollment of a sequence to a new
	// status, used by pause_sequence/resume_sequence.
	BulkSetStatus(ctx context.Context, sequenceID string, from, to model.EnrollmentStatus) (int, error)

	// DueClassicStepEnrollments returns one user's active classic/pipeline
	// enrollments whose next_step_due_at has elapsed, bounded by
	// max_batch_per_tick.
	DueClassicStepEnrollments(ctx context.Context, userID string, limit int) ([]*model.Enrollment, error)

	// AwaitingAcceptanceEnrollments returns one user's classic and pipeline
	// enrollments parked at step 1 / awaiting-connection with
	// next_step_due_at null, used by the connection-acceptance scan.
	AwaitingAcceptanceEnrollments(ctx context.Context, userID string, limit int) ([]*model.Enrollment, error)

	// ActivePipelineEnrollments returns one user's pipeline enrollments with
	// a non-null current_phase, used by the reply-detection and
	// time-based-transition phases.
	ActivePipelineEnrollments(ctx context.Context, userID string, limit int) ([]*model.Enrollment, error)

	Stats(ctx context.Context, userID, sequenceID string) (*SequenceStats, error)
}
