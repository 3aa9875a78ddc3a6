package service

import (
	"context"
	"strings"

	"github.com/outreach-engine/scheduler/internal/engine/analyzer"
	"github.com/outreach-engine/scheduler/internal/engine/shared"
	"github.com/outreach-engine/scheduler/modules/analytics/model"
	"github.com/outreach-engine/scheduler/modules/analytics/ports"
	enrollmentPorts "github.com/outreach-engine/scheduler/modules/enrollments/ports"
	leadPorts "github.com/outreach-engine/scheduler/modules/leads/ports"
)

// AnalyticsService serves the read-side rollups plus the LM auxiliary ops
// that spec §4.3 item 7 calls out as "auxiliary, not part of the core loop":
// buying-signal detection, stage-transition advice, sentiment analysis, and
// reply-suggestion, all scoped to one lead's active enrollment conversation.
type AnalyticsService struct {
	repo        ports.AnalyticsRepository
	enrollments enrollmentPorts.EnrollmentRepository
	leads       leadPorts.LeadRepository
	lm          *analyzer.Analyzer
}

func NewAnalyticsService(repo ports.AnalyticsRepository, enrollments enrollmentPorts.EnrollmentRepository, leads leadPorts.LeadRepository, lm *analyzer.Analyzer) *AnalyticsService {
	return &AnalyticsService{repo: repo, enrollments: enrollments, leads: leads, lm: lm}
}

func (s *AnalyticsService) GetOverview(ctx context.Context, userID string) (*model.PipelineOverview, error) {
	return s.repo.GetOverview(ctx, userID)
}

func (s *AnalyticsService) GetPhaseFunnel(ctx context.Context, userID string) (*model.PhaseFunnel, error) {
	return s.repo.GetPhaseFunnel(ctx, userID)
}

// conversationFor resolves a lead's active enrollment and renders its
// message history plus latest inbound reply as one prompt-ready string.
func (s *AnalyticsService) conversationFor(ctx context.Context, userID, leadID string) (string, error) {
	lead, err := s.leads.GetByID(ctx, userID, leadID)
	if err != nil {
		return "", err
	}
	if lead.ActiveSequenceID == nil {
		return "", model.ErrLeadHasNoActiveEnrollment
	}
	en, err := s.enrollments.GetByID(ctx, userID, *lead.ActiveSequenceID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(shared.FormatConversation(en))
	b.WriteString(shared.FormatLastResponse(en))
	return b.String(), nil
}

func (s *AnalyticsService) DetectBuyingSignals(ctx context.Context, userID, leadID string) (*model.BuyingSignalsResult, error) {
	conversation, err := s.conversationFor(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	result, err := s.lm.DetectBuyingSignals(ctx, conversation)
	if err != nil {
		return nil, err
	}
	return &model.BuyingSignalsResult{BuyingSignals: result.BuyingSignals, SignalStrength: result.SignalStrength}, nil
}

func (s *AnalyticsService) RecommendStageTransition(ctx context.Context, userID, leadID, currentPhase string) (*model.StageAdvice, error) {
	conversation, err := s.conversationFor(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	advice, err := s.lm.RecommendStageTransition(ctx, conversation, currentPhase)
	if err != nil {
		return nil, err
	}
	return &model.StageAdvice{RecommendedPhase: advice.RecommendedPhase, Reason: advice.Reason, Confidence: advice.Confidence}, nil
}

func (s *AnalyticsService) AnalyzeSentiment(ctx context.Context, userID, leadID string) (*model.SentimentReport, error) {
	conversation, err := s.conversationFor(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	result, err := s.lm.AnalyzeSentiment(ctx, conversation)
	if err != nil {
		return nil, err
	}
	return &model.SentimentReport{Sentiment: result.Sentiment, Reason: result.Reason}, nil
}

func (s *AnalyticsService) SuggestReply(ctx context.Context, userID, leadID, instruction string) (*model.ReplySuggestion, error) {
	conversation, err := s.conversationFor(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	text, err := s.lm.GenerateConversationReply(ctx, conversation, instruction)
	if err != nil {
		return nil, err
	}
	return &model.ReplySuggestion{Suggestion: text}, nil
}
