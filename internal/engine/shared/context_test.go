package shared

import (
	"testing"
	"time"

	businessModel "github.com/outreach-engine/scheduler/modules/businessprofiles/model"
	"github.com/outreach-engine/scheduler/modules/enrollments/model"
	leadModel "github.com/outreach-engine/scheduler/modules/leads/model"

	"github.com/stretchr/testify/assert"
)

func TestFormatBusinessProfile(t *testing.T) {
	t.Run("nil profile", func(t *testing.T) {
		assert.Equal(t, "No business profile configured.", FormatBusinessProfile(nil))
	})

	t.Run("renders targeting fields when present", func(t *testing.T) {
		p := &businessModel.BusinessProfile{
			SenderName:         "Dana Lee",
			SenderTitle:        "Head of Growth",
			ValueProposition:   "Cuts onboarding time in half",
			IdealCustomerDesc:  "Series B SaaS companies",
			TargetIndustries:   []string{"SaaS", "Fintech"},
			TargetTitles:       []string{"VP Engineering"},
			TargetCompanySizes: []string{"51-200"},
			TargetLocations:    []string{"US"},
		}
		out := FormatBusinessProfile(p)
		assert.Contains(t, out, "Dana Lee (Head of Growth)")
		assert.Contains(t, out, "Cuts onboarding time in half")
		assert.Contains(t, out, "SaaS, Fintech")
		assert.Contains(t, out, "VP Engineering")
		assert.Contains(t, out, "51-200")
		assert.Contains(t, out, "US")
	})

	t.Run("omits empty targeting slices", func(t *testing.T) {
		p := &businessModel.BusinessProfile{SenderName: "Dana Lee"}
		out := FormatBusinessProfile(p)
		assert.NotContains(t, out, "Target industries")
		assert.NotContains(t, out, "Target titles")
	})
}

func TestFormatLead(t *testing.T) {
	t.Run("nil lead", func(t *testing.T) {
		assert.Equal(t, "No lead data.", FormatLead(nil))
	})

	t.Run("includes score reasoning when scored", func(t *testing.T) {
		l := &leadModel.Lead{
			FirstName:   "Priya",
			LastName:    "Singh",
			Title:       "VP Engineering",
			CompanyName: "Acme Corp",
			Score:       82,
			ScoreLabel:  leadModel.ScoreHot,
			ScoreReason: "Fast-growing engineering org",
		}
		out := FormatLead(l)
		assert.Contains(t, out, "Priya Singh")
		assert.Contains(t, out, "VP Engineering at Acme Corp")
		assert.Contains(t, out, "82 (hot)")
		assert.Contains(t, out, "Fast-growing engineering org")
	})

	t.Run("omits score line when unscored", func(t *testing.T) {
		l := &leadModel.Lead{FirstName: "Priya", LastName: "Singh"}
		out := FormatLead(l)
		assert.NotContains(t, out, "Lead score")
	})
}

func TestFormatConversation(t *testing.T) {
	t.Run("nil enrollment", func(t *testing.T) {
		assert.Equal(t, "No messages sent yet.", FormatConversation(nil))
	})

	t.Run("no messages sent", func(t *testing.T) {
		assert.Equal(t, "No messages sent yet.", FormatConversation(&model.Enrollment{}))
	})

	t.Run("renders messages oldest first", func(t *testing.T) {
		sentAt := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
		e := &model.Enrollment{
			MessagesSent: []model.MessageSent{
				{StepOrKey: "step_1", Text: "Loved your work on the platform team", SentAt: sentAt},
			},
		}
		out := FormatConversation(e)
		assert.Contains(t, out, "2026-01-10 09:30")
		assert.Contains(t, out, "step_1")
		assert.Contains(t, out, "Loved your work on the platform team")
	})
}

func TestFormatLastResponse(t *testing.T) {
	t.Run("nil enrollment", func(t *testing.T) {
		assert.Equal(t, "No response received.", FormatLastResponse(nil))
	})

	t.Run("no response recorded", func(t *testing.T) {
		assert.Equal(t, "No response received.", FormatLastResponse(&model.Enrollment{}))
	})

	t.Run("renders the response with its timestamp", func(t *testing.T) {
		respAt := time.Date(2026, 1, 12, 14, 0, 0, 0, time.UTC)
		text := "Sure, happy to chat next week"
		e := &model.Enrollment{LastResponseAt: &respAt, LastResponseText: &text}
		out := FormatLastResponse(e)
		assert.Contains(t, out, "2026-01-12 14:00")
		assert.Contains(t, out, "Sure, happy to chat next week")
	})

	t.Run("falls back to unknown time when timestamp missing", func(t *testing.T) {
		text := "Sure, happy to chat next week"
		e := &model.Enrollment{LastResponseText: &text}
		out := FormatLastResponse(e)
		assert.Contains(t, out, "unknown time")
	})
}
