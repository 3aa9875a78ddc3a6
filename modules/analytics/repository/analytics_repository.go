package repository

import (
	"context"

	"github.com/outreach-engine/scheduler/modules/analytics/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBPool is the subset of pgxpool.Pool this repository needs, narrowed for
// testing with pgxmock.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type AnalyticsRepository struct {
	pool DBPool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

func NewAnalyticsRepositoryWithPool(pool DBPool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// GetOverview rolls up sequence and enrollment counts for the user.
func (r *AnalyticsRepository) GetOverview(ctx context.Context, userID string) (*model.PipelineOverview, error) {
	query := `
		WITH seq_stats AS (
			SELECT
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE status = 'active') AS active
			FROM sequences WHERE user_id = $1
		),
		enrollment_stats AS (
			SELECT
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE status = 'active') AS active,
				COUNT(*) FILTER (WHERE status = 'replied') AS replied,
				COUNT(*) FILTER (WHERE status = 'completed' AND current_phase IS NOT NULL) AS meeting,
				COUNT(*) FILTER (WHERE status = 'parked') AS parked,
				COUNT(*) FILTER (WHERE status = 'failed') AS failed
			FROM sequence_enrollments WHERE user_id = $1
		)
		SELECT
			COALESCE(seq_stats.total, 0), COALESCE(seq_stats.active, 0),
			COALESCE(enrollment_stats.total, 0), COALESCE(enrollment_stats.active, 0),
			COALESCE(enrollment_stats.replied, 0), COALESCE(enrollment_stats.meeting, 0),
			COALESCE(enrollment_stats.parked, 0), COALESCE(enrollment_stats.failed, 0),
			CASE WHEN enrollment_stats.total > 0
				THEN ROUND((enrollment_stats.replied::numeric / enrollment_stats.total) * 100, 2)
				ELSE 0 END
		FROM seq_stats CROSS JOIN enrollment_stats
	`
	o := &model.PipelineOverview{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&o.TotalSequences, &o.ActiveSequences,
		&o.TotalEnrollments, &o.ActiveEnrollments,
		&o.RepliedCount, &o.MeetingCount, &o.ParkedCount, &o.FailedCount,
		&o.ReplyRate,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// GetPhaseFunnel returns how many active smart_pipeline enrollments sit in
// each of the five phases, ordered apertura -> nurture/reactivacion last.
func (r *AnalyticsRepository) GetPhaseFunnel(ctx context.Context, userID string) (*model.PhaseFunnel, error) {
	query := `
		SELECT current_phase, COUNT(*)
		FROM sequence_enrollments
		WHERE user_id = $1 AND status = 'active' AND current_phase IS NOT NULL
		GROUP BY current_phase
		ORDER BY CASE current_phase
			WHEN 'apertura' THEN 1
			WHEN 'calificacion' THEN 2
			WHEN 'valor' THEN 3
			WHEN 'reactivacion' THEN 4
			WHEN 'nurture' THEN 5
			ELSE 6
		END
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []model.PhaseStage
	for rows.Next() {
		var s model.PhaseStage
		if err := rows.Scan(&s.Phase, &s.Count); err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &model.PhaseFunnel{Stages: stages}, nil
}
