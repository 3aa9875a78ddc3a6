// Package shared holds the prompt-context formatting the classic and
// pipeline engines both need. Grounded on the original, where
// sequence_scheduler.py and pipeline_scheduler.py each carried their own
// near-identical copy of "format business profile" / "format lead" /
// "format conversation" — collapsed here into one shared implementation so
// the two engines build their prompts from a single source of truth.
package shared

import (
	"fmt"
	"strings"

	businessModel "github.com/outreach-engine/scheduler/modules/businessprofiles/model"
	"github.com/outreach-engine/scheduler/modules/enrollments/model"
	leadModel "github.com/outreach-engine/scheduler/modules/leads/model"
)

// FormatBusinessProfile renders the authoring context the LM uses to write
// and reason about outbound messages.
func FormatBusinessProfile(p *businessModel.BusinessProfile) string {
	if p == nil {
		return "No business profile configured."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Sender: %s (%s)\n", p.SenderName, p.SenderTitle)
	fmt.Fprintf(&b, "Value proposition: %s\n", p.ValueProposition)
	fmt.Fprintf(&b, "Ideal customer: %s\n", p.IdealCustomerDesc)
	if len(p.TargetIndustries) > 0 {
		fmt.Fprintf(&b, "Target industries: %s\n", strings.Join(p.TargetIndustries, ", "))
	}
	if len(p.TargetTitles) > 0 {
		fmt.Fprintf(&b, "Target titles: %s\n", strings.Join(p.TargetTitles, ", "))
	}
	if len(p.TargetCompanySizes) > 0 {
		fmt.Fprintf(&b, "Target company sizes: %s\n", strings.Join(p.TargetCompanySizes, ", "))
	}
	if len(p.TargetLocations) > 0 {
		fmt.Fprintf(&b, "Target locations: %s\n", strings.Join(p.TargetLocations, ", "))
	}
	return b.String()
}

// FormatLead renders the target person the message is being written for.
func FormatLead(l *leadModel.Lead) string {
	if l == nil {
		return "No lead data."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s %s\n", l.FirstName, l.LastName)
	fmt.Fprintf(&b, "Title: %s at %s\n", l.Title, l.CompanyName)
	if l.ScoreReason != "" {
		fmt.Fprintf(&b, "Lead score: %d (%s) — %s\n", l.Score, l.ScoreLabel, l.ScoreReason)
	}
	return b.String()
}

// FormatConversation renders the messages sent so far in an enrollment,
// oldest first, for inclusion in an LM prompt's turn history.
func FormatConversation(enrollment *model.Enrollment) string {
	if enrollment == nil || len(enrollment.MessagesSent) == 0 {
		return "No messages sent yet."
	}
	var b strings.Builder
	for _, m := range enrollment.MessagesSent {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.SentAt.Format("2006-01-02 15:04"), m.StepOrKey, m.Text)
	}
	return b.String()
}

// FormatLastResponse renders the lead's most recent inbound reply for an LM
// prompt; the analytics service is its caller.
func FormatLastResponse(enrollment *model.Enrollment) string {
	if enrollment == nil || enrollment.LastResponseText == nil {
		return "No response received."
	}
	when := "unknown time"
	if enrollment.LastResponseAt != nil {
		when = enrollment.LastResponseAt.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("[%s] %s", when, *enrollment.LastResponseText)
}
