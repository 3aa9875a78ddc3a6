package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/outreach-engine/scheduler/modules/enrollments/model"
	"github.com/outreach-engine/scheduler/modules/enrollments/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

const enrollmentColumns = `id, sequence_id, lead_id, user_id, status, current_step_order,
	next_step_due_at, last_step_completed_at, messages_sent, failed_reason, enrolled_at, completed_at,
	current_phase, phase_entered_at, last_response_at, last_response_text, phase_analysis,
	messages_in_phase, nurture_count, reactivation_count, total_messages_sent,
	consecutive_failures, last_failure_count, created_at, updated_at`

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	var messagesSentRaw, phaseAnalysisRaw []byte

	err := row.Scan(
		&e.ID, &e.SequenceID, &e.LeadID, &e.UserID, &e.Status, &e.CurrentStepOrder,
		&e.NextStepDueAt, &e.LastStepCompletedAt, &messagesSentRaw, &e.FailedReason, &e.EnrolledAt, &e.CompletedAt,
		&e.CurrentPhase, &e.PhaseEnteredAt, &e.LastResponseAt, &e.LastResponseText, &phaseAnalysisRaw,
		&e.MessagesInPhase, &e.NurtureCount, &e.ReactivationCount, &e.TotalMessagesSent,
		&e.ConsecutiveFailures, &e.LastFailureCount, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEnrollmentNotFound
		}
		return nil, err
	}

	if len(messagesSentRaw) > 0 {
		if err := json.Unmarshal(messagesSentRaw, &e.MessagesSent); err != nil {
			return nil, err
		}
	}
	if len(phaseAnalysisRaw) > 0 {
		analysis := &model.PhaseAnalysis{}
		if err := json.Unmarshal(phaseAnalysisRaw, analysis); err != nil {
			return nil, err
		}
		e.PhaseAnalysis = analysis
	}
	return e, nil
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	e.ID = uuid.New().String()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = now
	}

	messagesSent, err := e.MessagesSentJSON()
	if err != nil {
		return err
	}
	phaseAnalysis, err := e.PhaseAnalysisJSON()
	if err != nil {
		return err
	}

	query := `INSERT INTO sequence_enrollments (` + enrollmentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`
	_, err = r.pool.Exec(ctx, query,
		e.ID, e.SequenceID, e.LeadID, e.UserID, e.Status, e.CurrentStepOrder,
		e.NextStepDueAt, e.LastStepCompletedAt, messagesSent, e.FailedReason, e.EnrolledAt, e.CompletedAt,
		e.CurrentPhase, e.PhaseEnteredAt, e.LastResponseAt, e.LastResponseText, phaseAnalysis,
		e.MessagesInPhase, e.NurtureCount, e.ReactivationCount, e.TotalMessagesSent,
		e.ConsecutiveFailures, e.LastFailureCount, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, userID, enrollmentID string) (*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM sequence_enrollments WHERE id = $1 AND user_id = $2`
	return scanEnrollment(r.pool.QueryRow(ctx, query, enrollmentID, userID))
}

func (r *EnrollmentRepository) GetActiveByLead(ctx context.Context, leadID string) (*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM sequence_enrollments WHERE lead_id = $1 AND status = 'active'`
	return scanEnrollment(r.pool.QueryRow(ctx, query, leadID))
}

func (r *EnrollmentRepository) ListBySequence(ctx context.Context, userID, sequenceID string, limit, offset int) ([]*model.EnrollmentDTO, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM sequence_enrollments WHERE user_id = $1 AND sequence_id = $2
	`, userID, sequenceID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + enrollmentColumns + ` FROM sequence_enrollments
		WHERE user_id = $1 AND sequence_id = $2
		ORDER BY enrolled_at ASC
		LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, userID, sequenceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.EnrollmentDTO
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e.ToDTO())
	}
	return out, total, rows.Err()
}

func (r *EnrollmentRepository) Update(ctx context.Context, e *model.Enrollment) error {
	e.UpdatedAt = time.Now().UTC()
	messagesSent, err := e.MessagesSentJSON()
	if err != nil {
		return err
	}
	phaseAnalysis, err := e.PhaseAnalysisJSON()
	if err != nil {
		return err
	}

	query := `
		UPDATE sequence_enrollments SET
			status = $3, current_step_order = $4, next_step_due_at = $5,
			last_step_completed_at = $6, messages_sent = $7, failed_reason = $8, completed_at = $9,
			current_phase = $10, phase_entered_at = $11, last_response_at = $12, last_response_text = $13,
			phase_analysis = $14, messages_in_phase = $15, nurture_count = $16, reactivation_count = $17,
			total_messages_sent = $18, consecutive_failures = $19, last_failure_count = $20, updated_at = $21
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.pool.Exec(ctx, query,
		e.ID, e.UserID, e.Status, e.CurrentStepOrder, e.NextStepDueAt,
		e.LastStepCompletedAt, messagesSent, e.FailedReason, e.CompletedAt,
		e.CurrentPhase, e.PhaseEnteredAt, e.LastResponseAt, e.LastResponseText,
		phaseAnalysis, e.MessagesInPhase, e.NurtureCount, e.ReactivationCount,
		e.TotalMessagesSent, e.ConsecutiveFailures, e.LastFailureCount, e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrEnrollmentNotFound
	}
	return nil
}

func (r *EnrollmentRepository) BulkSetStatus(ctx context.Context, sequenceID string, from, to model.EnrollmentStatus) (int, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE sequence_enrollments SET status = $3, updated_at = now()
		WHERE sequence_id = $1 AND status = $2
	`, sequenceID, from, to)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func (r *EnrollmentRepository) queryEnrollments(ctx context.Context, query string, args ...interface{}) ([]*model.Enrollment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EnrollmentRepository) DueClassicStepEnrollments(ctx context.Context, userID string, limit int) ([]*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM sequence_enrollments
		WHERE user_id = $1 AND status = 'active' AND current_phase IS NULL
			AND next_step_due_at IS NOT NULL AND next_step_due_at <= now()
		ORDER BY created_at ASC LIMIT $2`
	return r.queryEnrollments(ctx, query, userID, limit)
}

// AwaitingAcceptanceEnrollments returns enrollments whose connection request
// has been sent (or, for smart_pipeline, whose lead has not yet accepted)
// but acceptance has not yet been detected — current_step_order is either 1
// (classic, step 1 sent) or 0 (pipeline, awaiting connection before phase
// assignment). Both shapes are scanned together by connection-change
// detection since acceptance is detected the same way for either mode.
func (r *EnrollmentRepository) AwaitingAcceptanceEnrollments(ctx context.Context, userID string, limit int) ([]*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM sequence_enrollments
		WHERE user_id = $1 AND status = 'active' AND current_step_order IN (0, 1) AND next_step_due_at IS NULL
			AND current_phase IS NULL
		ORDER BY created_at ASC LIMIT $2`
	return r.queryEnrollments(ctx, query, userID, limit)
}

func (r *EnrollmentRepository) ActivePipelineEnrollments(ctx context.Context, userID string, limit int) ([]*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM sequence_enrollments
		WHERE user_id = $1 AND status = 'active' AND current_phase IS NOT NULL
		ORDER BY created_at ASC LIMIT $2`
	return r.queryEnrollments(ctx, query, userID, limit)
}

func (r *EnrollmentRepository) Stats(ctx context.Context, userID, sequenceID string) (*ports.SequenceStats, error) {
	stats := &ports.SequenceStats{}

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'replied'),
			COUNT(*) FILTER (WHERE status = 'parked'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM sequence_enrollments WHERE user_id = $1 AND sequence_id = $2
	`, userID, sequenceID).Scan(&stats.Enrolled, &stats.Active, &stats.Replied, &stats.Parked, &stats.Meeting, &stats.Failed)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT current_phase, COUNT(*) FROM sequence_enrollments
		WHERE user_id = $1 AND sequence_id = $2 AND current_phase IS NOT NULL
		GROUP BY current_phase
	`, userID, sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var phase string
		var count int
		if err := rows.Scan(&phase, &count); err != nil {
			return nil, err
		}
		stats.Phases = append(stats.Phases, ports.PhaseStats{Phase: phase, Count: count})
	}
	return stats, rows.Err()
}
