// Package analyzer is the LM Analyzer (spec §4.3): every language-model
// decision the engines consume, wrapped around internal/platform/llm.Client.
// Parse failures are recoverable everywhere here — a conservative default is
// substituted, never propagated as a hard error; the failure is not logged.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Analyzer struct {
	lm Completer
}

func New(lm Completer) *Analyzer {
	return &Analyzer{lm: lm}
}

var seniorKeywords = []string{"director", "vp", "founder", "ceo", "chief", "head of"}

// ResolveStrategy implements the hybrid strategy selector: hybrid picks
// direct when the contact's title matches a senior keyword, else gradual.
func ResolveStrategy(strategy, title string) string {
	if strategy != "hybrid" {
		return strategy
	}
	lower := strings.ToLower(title)
	for _, kw := range seniorKeywords {
		if strings.Contains(lower, kw) {
			return "direct"
		}
	}
	return "gradual"
}

// SearchFilterResult is LM op 1's output contract.
type SearchFilterResult struct {
	Filters        map[string]interface{} `json:"filters"`
	Interpretation string                  `json:"interpretation"`
	Confidence     float64                 `json:"confidence"`
}

func (a *Analyzer) ParseSearchFilters(ctx context.Context, query string) (*SearchFilterResult, error) {
	system := "You translate a recruiter's natural-language search into structured lead filters. " +
		"Constrain industries to a closed enumerated set and company sizes to one of " +
		"1-10, 11-50, 51-200, 201-500, 501-1000, 1001-5000, 5001-10000, 10001+. " +
		"Respond with strict JSON: {\"filters\": object, \"interpretation\": string, \"confidence\": number 0..1}."
	text, err := a.lm.Complete(ctx, system, query)
	if err != nil {
		return nil, err
	}
	var out SearchFilterResult
	if err := unmarshalJSON(text, &out); err != nil {
		return &SearchFilterResult{Filters: map[string]interface{}{}, Interpretation: "could not parse query", Confidence: 0}, nil
	}
	return &out, nil
}

// ScoreResult is LM op 2's output contract.
type ScoreResult struct {
	Score  int    `json:"score"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

func (a *Analyzer) ScoreLead(ctx context.Context, businessContext, leadContext string) (*ScoreResult, error) {
	system := "You score how well a lead matches a business's ideal customer profile, 0-100. " +
		"Respond with strict JSON: {\"score\": integer, \"label\": \"hot\"|\"warm\"|\"cold\", \"reason\": string}."
	user := fmt.Sprintf("Business profile:\n%s\n\nLead:\n%s", businessContext, leadContext)
	text, err := a.lm.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}
	var out ScoreResult
	if err := unmarshalJSON(text, &out); err != nil {
		return &ScoreResult{Score: 50, Label: "warm", Reason: "default — LM response could not be parsed"}, nil
	}
	out.Label = bandLabel(out.Score)
	return &out, nil
}

func bandLabel(score int) string {
	switch {
	case score >= 80:
		return "hot"
	case score >= 50:
		return "warm"
	default:
		return "cold"
	}
}

const maxConnectionMessageChars = 300

// AuthorConnectionMessage implements LM op 3: hard-capped at 300 characters,
// truncated to the last word boundary at or after char 250 on overrun.
func (a *Analyzer) AuthorConnectionMessage(ctx context.Context, businessContext, leadContext, strategy string) (string, error) {
	system := fmt.Sprintf(
		"You write a LinkedIn connection request note, at most %d characters. "+
			"Strategy %q: %s Respond with only the message text, no quotes or preamble.",
		maxConnectionMessageChars, strategy, strategyInstruction(strategy),
	)
	user := fmt.Sprintf("Business profile:\n%s\n\nLead:\n%s", businessContext, leadContext)
	text, err := a.lm.Complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	return truncateToWordBoundary(strings.TrimSpace(text), maxConnectionMessageChars, 250), nil
}

func strategyInstruction(strategy string) string {
	if strategy == "direct" {
		return "Mention the sender's offering by name."
	}
	return "Do not mention the sender's offering by name; keep it purely relational."
}

const maxFollowUpChars = 500

// AuthorFollowUp implements LM op 4.
func (a *Analyzer) AuthorFollowUp(ctx context.Context, stepIndex, totalSteps int, conversation, promptContext, businessContext string) (string, error) {
	system := fmt.Sprintf(
		"You write follow-up message %d of %d in an outreach sequence, at most %d characters. "+
			"Respond with only the message text.", stepIndex, totalSteps, maxFollowUpChars,
	)
	user := conversation
	if businessContext != "" {
		user = fmt.Sprintf("Business profile:\n%s\n\n%s", businessContext, user)
	}
	if promptContext != "" {
		user = fmt.Sprintf("%s\n\nAdditional context: %s", user, promptContext)
	}
	text, err := a.lm.Complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	return truncateToWordBoundary(strings.TrimSpace(text), maxFollowUpChars, maxFollowUpChars-50), nil
}

var phaseCharCaps = map[string][2]int{
	"apertura":      {200, 300},
	"calificacion":  {250, 400},
	"valor":         {300, 500},
	"nurture":       {200, 350},
	"reactivacion":  {200, 350},
}

// AuthorPhaseMessage implements LM op 5.
func (a *Analyzer) AuthorPhaseMessage(ctx context.Context, phase, conversation, previousAnalysis string, messagesInPhase int) (string, error) {
	cap := 500
	if band, ok := phaseCharCaps[phase]; ok {
		cap = band[1]
	}
	system := fmt.Sprintf(
		"You write the next outbound message for pipeline phase %q, at most %d characters. "+
			"This is message number %d in this phase. Prior phase analysis: %s. "+
			"Respond with only the message text.", phase, cap, messagesInPhase+1, previousAnalysis,
	)
	text, err := a.lm.Complete(ctx, system, conversation)
	if err != nil {
		return "", err
	}
	return truncateToWordBoundary(strings.TrimSpace(text), cap, cap-50), nil
}

// PhaseAnalysis is LM op 6's strict JSON output contract.
type PhaseAnalysis struct {
	Outcome         string   `json:"outcome"`
	NextPhase       *string  `json:"next_phase"`
	Sentiment       string   `json:"sentiment"`
	BuyingSignals   []string `json:"buying_signals"`
	SignalStrength  string   `json:"signal_strength"`
	SuggestedAngle  string   `json:"suggested_angle"`
	Reason          string   `json:"reason"`
}

// AnalyzePhaseResponse implements LM op 6, the pipeline's decision function,
// plus the I5 post-filter: messages_in_phase >= 2 and outcome == stay is
// overwritten to nurture regardless of what the LM returned.
func (a *Analyzer) AnalyzePhaseResponse(ctx context.Context, conversation, currentPhase, leadContext, senderContext string, messagesInPhase int) (*PhaseAnalysis, error) {
	system := "You are the decision function of an outreach pipeline state machine. " +
		"Given the conversation so far, decide what happens next. Respond with strict JSON: " +
		`{"outcome":"advance|stay|nurture|park|meeting|exit","next_phase":"apertura|calificacion|valor|nurture|reactivacion|null",` +
		`"sentiment":"hot|warm|cold","buying_signals":[string],"signal_strength":"strong|moderate|weak|none",` +
		`"suggested_angle":string,"reason":string}`
	user := fmt.Sprintf(
		"Current phase: %s\nMessages sent in this phase: %d\n\nSender context:\n%s\n\nLead:\n%s\n\nConversation:\n%s",
		currentPhase, messagesInPhase, senderContext, leadContext, conversation,
	)
	text, err := a.lm.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}
	var out PhaseAnalysis
	if err := unmarshalJSON(text, &out); err != nil {
		return conservativeDefault(), nil
	}
	if messagesInPhase >= 2 && out.Outcome == "stay" {
		out.Outcome = "nurture"
		nurture := "nurture"
		out.NextPhase = &nurture
	}
	return &out, nil
}

func conservativeDefault() *PhaseAnalysis {
	return &PhaseAnalysis{
		Outcome:        "stay",
		Sentiment:      "warm",
		SignalStrength: "none",
		Reason:         "default — LM response could not be parsed",
	}
}

// SignalsResult is the auxiliary buying-signals detector's output (LM op 7,
// read-side only, not part of the core loop).
type SignalsResult struct {
	BuyingSignals  []string `json:"buying_signals"`
	SignalStrength string   `json:"signal_strength"`
}

func (a *Analyzer) DetectBuyingSignals(ctx context.Context, conversation string) (*SignalsResult, error) {
	system := "Extract buying signals from this conversation. Respond with strict JSON: " +
		`{"buying_signals":[string],"signal_strength":"strong|moderate|weak|none"}`
	text, err := a.lm.Complete(ctx, system, conversation)
	if err != nil {
		return nil, err
	}
	var out SignalsResult
	if err := unmarshalJSON(text, &out); err != nil {
		return &SignalsResult{SignalStrength: "none"}, nil
	}
	return &out, nil
}

// StageAdvice is the auxiliary stage-transition advisor's output (LM op 7).
type StageAdvice struct {
	RecommendedPhase string `json:"recommended_phase"`
	Reason           string `json:"reason"`
	Confidence       float64 `json:"confidence"`
}

func (a *Analyzer) RecommendStageTransition(ctx context.Context, conversation, currentPhase string) (*StageAdvice, error) {
	system := "Advise whether this pipeline enrollment should transition phases. Respond with strict JSON: " +
		`{"recommended_phase":string,"reason":string,"confidence":number 0..1}`
	user := fmt.Sprintf("Current phase: %s\n\nConversation:\n%s", currentPhase, conversation)
	text, err := a.lm.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}
	var out StageAdvice
	if err := unmarshalJSON(text, &out); err != nil {
		return &StageAdvice{RecommendedPhase: currentPhase, Reason: "default — LM response could not be parsed"}, nil
	}
	return &out, nil
}

// SentimentResult is the standalone sentiment-analysis op's output.
type SentimentResult struct {
	Sentiment string `json:"sentiment"`
	Reason    string `json:"reason"`
}

func (a *Analyzer) AnalyzeSentiment(ctx context.Context, conversation string) (*SentimentResult, error) {
	system := "Classify the sentiment of this conversation as hot, warm, or cold. Respond with strict JSON: " +
		`{"sentiment":"hot|warm|cold","reason":string}`
	text, err := a.lm.Complete(ctx, system, conversation)
	if err != nil {
		return nil, err
	}
	var out SentimentResult
	if err := unmarshalJSON(text, &out); err != nil {
		return &SentimentResult{Sentiment: "warm", Reason: "default — LM response could not be parsed"}, nil
	}
	return &out, nil
}

// GenerateConversationReply is the human-in-the-loop "suggest a reply" op.
func (a *Analyzer) GenerateConversationReply(ctx context.Context, conversation, instruction string) (string, error) {
	system := "You draft a suggested reply to the lead's most recent message in this outreach conversation. " +
		"Respond with only the message text."
	user := conversation
	if instruction != "" {
		user = fmt.Sprintf("%s\n\nInstruction: %s", conversation, instruction)
	}
	text, err := a.lm.Complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// unmarshalJSON tolerates an LM response wrapped in a ```json fence.
func unmarshalJSON(text string, out interface{}) error {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	return json.Unmarshal([]byte(trimmed), out)
}

func truncateToWordBoundary(text string, hardCap, minBoundary int) string {
	if len(text) <= hardCap {
		return text
	}
	truncated := text[:hardCap]
	if idx := strings.LastIndex(truncated, " "); idx >= minBoundary {
		return truncated[:idx]
	}
	return truncated
}
