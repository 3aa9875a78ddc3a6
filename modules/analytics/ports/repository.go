package ports

import (
	"context"

	"github.com/outreach-engine/scheduler/modules/analytics/model"
)

// AnalyticsRepository aggregates read-side rollups over sequences and
// sequence_enrollments; the LM auxiliary ops (signals, stage advice,
// sentiment, reply suggestion) are served directly by AnalyticsService
// against the enrollments/leads repositories instead, since they need a
// single enrollment's conversation, not an aggregate.
type AnalyticsRepository interface {
	GetOverview(ctx context.Context, userID string) (*model.PipelineOverview, error)
	GetPhaseFunnel(ctx context.Context, userID string) (*model.PhaseFunnel, error)
}
