package model

import "errors"

// PipelineOverview is the read-side rollup of every sequence/enrollment the
// user owns, across both classic and smart_pipeline modes.
type PipelineOverview struct {
	TotalSequences    int     `json:"total_sequences"`
	ActiveSequences   int     `json:"active_sequences"`
	TotalEnrollments  int     `json:"total_enrollments"`
	ActiveEnrollments int     `json:"active_enrollments"`
	RepliedCount      int     `json:"replied_count"`
	MeetingCount      int     `json:"meeting_count"`
	ParkedCount       int     `json:"parked_count"`
	FailedCount       int     `json:"failed_count"`
	ReplyRate         float64 `json:"reply_rate"`
}

// PhaseStage is one smart_pipeline phase's current occupancy.
type PhaseStage struct {
	Phase string `json:"phase"`
	Count int    `json:"count"`
}

// PhaseFunnel is the distribution of active smart_pipeline enrollments
// across the five phases, used to spot where leads are stalling.
type PhaseFunnel struct {
	Stages []PhaseStage `json:"stages"`
}

// BuyingSignalsResult is LMAnalyzer.DetectBuyingSignals' verdict for one
// lead's conversation (§4.3 item 7, auxiliary to the core loop).
type BuyingSignalsResult struct {
	BuyingSignals  []string `json:"buying_signals"`
	SignalStrength string   `json:"signal_strength"`
}

// StageAdvice is LMAnalyzer.RecommendStageTransition's verdict.
type StageAdvice struct {
	RecommendedPhase string  `json:"recommended_phase"`
	Reason           string  `json:"reason"`
	Confidence       float64 `json:"confidence"`
}

// SentimentReport is LMAnalyzer.AnalyzeSentiment's verdict.
type SentimentReport struct {
	Sentiment string `json:"sentiment"`
	Reason    string `json:"reason"`
}

// ReplySuggestion is one human-in-the-loop draft reply.
type ReplySuggestion struct {
	Suggestion string `json:"suggestion"`
}

type ReplySuggestionRequest struct {
	Instruction string `json:"instruction"`
}

var ErrLeadHasNoActiveEnrollment = errors.New("lead has no active sequence enrollment")

type ErrorCode string

const (
	CodeLeadHasNoActiveEnrollment ErrorCode = "LEAD_HAS_NO_ACTIVE_ENROLLMENT"
	CodeInternalError             ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrLeadHasNoActiveEnrollment):
		return CodeLeadHasNoActiveEnrollment
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrLeadHasNoActiveEnrollment):
		return "Lead has no active sequence enrollment to analyze"
	default:
		return "Internal server error"
	}
}
