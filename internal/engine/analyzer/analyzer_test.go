package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response string
	err      error
	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestResolveStrategy(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		title    string
		want     string
	}{
		{"non-hybrid strategy passes through unchanged", "direct", "VP Engineering", "direct"},
		{"hybrid with a senior title resolves to direct", "hybrid", "VP of Engineering", "direct"},
		{"hybrid with founder title resolves to direct", "hybrid", "Founder", "direct"},
		{"hybrid with a non-senior title resolves to gradual", "hybrid", "Software Engineer", "gradual"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStrategy(tt.strategy, tt.title))
		})
	}
}

func TestAnalyzer_ParseSearchFilters(t *testing.T) {
	t.Run("parses a well-formed LM response", func(t *testing.T) {
		lm := &fakeCompleter{response: `{"filters":{"industry":"SaaS"},"interpretation":"SaaS leads","confidence":0.9}`}
		a := New(lm)

		result, err := a.ParseSearchFilters(context.Background(), "find me SaaS VPs")
		require.NoError(t, err)
		assert.Equal(t, "SaaS leads", result.Interpretation)
		assert.Equal(t, 0.9, result.Confidence)
	})

	t.Run("falls back to a conservative default on unparseable output", func(t *testing.T) {
		lm := &fakeCompleter{response: "not json at all"}
		a := New(lm)

		result, err := a.ParseSearchFilters(context.Background(), "find me SaaS VPs")
		require.NoError(t, err)
		assert.Equal(t, "could not parse query", result.Interpretation)
		assert.Equal(t, float64(0), result.Confidence)
	})

	t.Run("propagates the completer error", func(t *testing.T) {
		wantErr := errors.New("lm unavailable")
		lm := &fakeCompleter{err: wantErr}
		a := New(lm)

		_, err := a.ParseSearchFilters(context.Background(), "query")
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestAnalyzer_ScoreLead(t *testing.T) {
	t.Run("rebands the label from the returned score regardless of what the LM said", func(t *testing.T) {
		lm := &fakeCompleter{response: `{"score":85,"label":"warm","reason":"strong fit"}`}
		a := New(lm)

		result, err := a.ScoreLead(context.Background(), "business context", "lead context")
		require.NoError(t, err)
		assert.Equal(t, 85, result.Score)
		assert.Equal(t, "hot", result.Label, "score of 85 must band to hot even though the LM said warm")
	})

	t.Run("falls back to a warm default on unparseable output", func(t *testing.T) {
		lm := &fakeCompleter{response: "garbage"}
		a := New(lm)

		result, err := a.ScoreLead(context.Background(), "b", "l")
		require.NoError(t, err)
		assert.Equal(t, 50, result.Score)
		assert.Equal(t, "warm", result.Label)
	})
}

func TestBandLabel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "hot"},
		{80, "hot"},
		{79, "warm"},
		{50, "warm"},
		{49, "cold"},
		{0, "cold"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bandLabel(tt.score))
	}
}

func TestAnalyzer_AuthorConnectionMessage(t *testing.T) {
	t.Run("passes through a short message unchanged", func(t *testing.T) {
		lm := &fakeCompleter{response: "  Loved your work on the platform team!  "}
		a := New(lm)

		msg, err := a.AuthorConnectionMessage(context.Background(), "b", "l", "gradual")
		require.NoError(t, err)
		assert.Equal(t, "Loved your work on the platform team!", msg)
	})

	t.Run("truncates an overlong message at a word boundary", func(t *testing.T) {
		words := make([]string, 0, 60)
		valid := make(map[string]bool, 60)
		for i := 0; i < 60; i++ {
			w := fmt.Sprintf("word%d", i)
			words = append(words, w)
			valid[w] = true
		}
		longText := strings.Join(words, " ")
		lm := &fakeCompleter{response: longText}
		a := New(lm)

		msg, err := a.AuthorConnectionMessage(context.Background(), "b", "l", "direct")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(msg), maxConnectionMessageChars)
		for _, w := range strings.Fields(msg) {
			assert.True(t, valid[w], "every word in the truncated message must be a complete word from the source, never cut mid-word: got %q", w)
		}
	})

	t.Run("direct strategy instructs the LM to name the offering", func(t *testing.T) {
		lm := &fakeCompleter{response: "ok"}
		a := New(lm)

		_, err := a.AuthorConnectionMessage(context.Background(), "b", "l", "direct")
		require.NoError(t, err)
		assert.Contains(t, lm.lastSystem, "Mention the sender's offering by name")
	})

	t.Run("gradual strategy instructs the LM to stay purely relational", func(t *testing.T) {
		lm := &fakeCompleter{response: "ok"}
		a := New(lm)

		_, err := a.AuthorConnectionMessage(context.Background(), "b", "l", "gradual")
		require.NoError(t, err)
		assert.Contains(t, lm.lastSystem, "Do not mention the sender's offering by name")
	})
}

func TestAnalyzer_AuthorFollowUp(t *testing.T) {
	lm := &fakeCompleter{response: "Following up on my last note"}
	a := New(lm)

	msg, err := a.AuthorFollowUp(context.Background(), 2, 4, "conversation so far", "mentioned interest in pricing", "Acme Corp sells widgets")
	require.NoError(t, err)
	assert.Equal(t, "Following up on my last note", msg)
	assert.Contains(t, lm.lastSystem, "follow-up message 2 of 4")
	assert.Contains(t, lm.lastUser, "mentioned interest in pricing")
	assert.Contains(t, lm.lastUser, "Acme Corp sells widgets")
}

func TestAnalyzer_AuthorPhaseMessage(t *testing.T) {
	t.Run("uses the phase's character cap", func(t *testing.T) {
		lm := &fakeCompleter{response: "ok"}
		a := New(lm)

		_, err := a.AuthorPhaseMessage(context.Background(), "apertura", "conversation", "", 0)
		require.NoError(t, err)
		assert.Contains(t, lm.lastSystem, "300")
	})

	t.Run("falls back to the default cap for an unknown phase", func(t *testing.T) {
		lm := &fakeCompleter{response: "ok"}
		a := New(lm)

		_, err := a.AuthorPhaseMessage(context.Background(), "unknown-phase", "conversation", "", 0)
		require.NoError(t, err)
		assert.Contains(t, lm.lastSystem, "500")
	})
}

func TestAnalyzer_AnalyzePhaseResponse(t *testing.T) {
	t.Run("parses a well-formed decision", func(t *testing.T) {
		lm := &fakeCompleter{response: `{"outcome":"advance","next_phase":"valor","sentiment":"hot",` +
			`"buying_signals":["asked about pricing"],"signal_strength":"strong","suggested_angle":"ROI","reason":"engaged"}`}
		a := New(lm)

		result, err := a.AnalyzePhaseResponse(context.Background(), "conversation", "calificacion", "lead", "sender", 1)
		require.NoError(t, err)
		assert.Equal(t, "advance", result.Outcome)
		require.NotNil(t, result.NextPhase)
		assert.Equal(t, "valor", *result.NextPhase)
	})

	t.Run("overrides a stay outcome to nurture once two messages have been sent in phase", func(t *testing.T) {
		lm := &fakeCompleter{response: `{"outcome":"stay","sentiment":"warm","signal_strength":"weak","reason":"no reply yet"}`}
		a := New(lm)

		result, err := a.AnalyzePhaseResponse(context.Background(), "conversation", "apertura", "lead", "sender", 2)
		require.NoError(t, err)
		assert.Equal(t, "nurture", result.Outcome)
		require.NotNil(t, result.NextPhase)
		assert.Equal(t, "nurture", *result.NextPhase)
	})

	t.Run("does not override a stay outcome before the second message in phase", func(t *testing.T) {
		lm := &fakeCompleter{response: `{"outcome":"stay","sentiment":"warm","signal_strength":"weak","reason":"no reply yet"}`}
		a := New(lm)

		result, err := a.AnalyzePhaseResponse(context.Background(), "conversation", "apertura", "lead", "sender", 1)
		require.NoError(t, err)
		assert.Equal(t, "stay", result.Outcome)
	})

	t.Run("falls back to the conservative default on unparseable output", func(t *testing.T) {
		lm := &fakeCompleter{response: "not json"}
		a := New(lm)

		result, err := a.AnalyzePhaseResponse(context.Background(), "conversation", "apertura", "lead", "sender", 0)
		require.NoError(t, err)
		assert.Equal(t, "stay", result.Outcome)
		assert.Equal(t, "warm", result.Sentiment)
	})
}

func TestAnalyzer_DetectBuyingSignals(t *testing.T) {
	t.Run("parses detected signals", func(t *testing.T) {
		lm := &fakeCompleter{response: `{"buying_signals":["asked about timeline"],"signal_strength":"moderate"}`}
		a := New(lm)

		result, err := a.DetectBuyingSignals(context.Background(), "conversation")
		require.NoError(t, err)
		assert.Equal(t, []string{"asked about timeline"}, result.BuyingSignals)
		assert.Equal(t, "moderate", result.SignalStrength)
	})

	t.Run("falls back to none on unparseable output", func(t *testing.T) {
		lm := &fakeCompleter{response: "garbage"}
		a := New(lm)

		result, err := a.DetectBuyingSignals(context.Background(), "conversation")
		require.NoError(t, err)
		assert.Equal(t, "none", result.SignalStrength)
	})
}

func TestAnalyzer_RecommendStageTransition(t *testing.T) {
	t.Run("falls back to the current phase on unparseable output", func(t *testing.T) {
		lm := &fakeCompleter{response: "garbage"}
		a := New(lm)

		result, err := a.RecommendStageTransition(context.Background(), "conversation", "valor")
		require.NoError(t, err)
		assert.Equal(t, "valor", result.RecommendedPhase)
	})
}

func TestAnalyzer_AnalyzeSentiment(t *testing.T) {
	t.Run("falls back to warm on unparseable output", func(t *testing.T) {
		lm := &fakeCompleter{response: "garbage"}
		a := New(lm)

		result, err := a.AnalyzeSentiment(context.Background(), "conversation")
		require.NoError(t, err)
		assert.Equal(t, "warm", result.Sentiment)
	})
}

func TestAnalyzer_GenerateConversationReply(t *testing.T) {
	lm := &fakeCompleter{response: "  Sure, happy to chat next week.  "}
	a := New(lm)

	reply, err := a.GenerateConversationReply(context.Background(), "conversation", "keep it brief")
	require.NoError(t, err)
	assert.Equal(t, "Sure, happy to chat next week.", reply)
	assert.Contains(t, lm.lastUser, "keep it brief")
}

func TestUnmarshalJSON_TolerantOfCodeFence(t *testing.T) {
	var out ScoreResult
	err := unmarshalJSON("```json\n{\"score\":70,\"label\":\"warm\",\"reason\":\"ok\"}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, 70, out.Score)
}

func TestTruncateToWordBoundary(t *testing.T) {
	t.Run("returns text unchanged when under the cap", func(t *testing.T) {
		assert.Equal(t, "short", truncateToWordBoundary("short", 300, 250))
	})

	t.Run("truncates at the last space at or after the minimum boundary", func(t *testing.T) {
		text := strings.Repeat("a", 260) + " " + strings.Repeat("b", 60)
		got := truncateToWordBoundary(text, 300, 250)
		assert.Equal(t, strings.Repeat("a", 260), got)
	})
}
