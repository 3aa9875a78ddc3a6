// Package classic implements the Classic Sequence Engine (spec §4.5): the
// linear connection-request-then-follow-up state machine driven by
// next_step_due_at timers.
package classic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/outreach-engine/scheduler/internal/engine/analyzer"
	gate "github.com/outreach-engine/scheduler/internal/engine/automation"
	"github.com/outreach-engine/scheduler/internal/engine/messaging"
	"github.com/outreach-engine/scheduler/internal/engine/shared"
	"github.com/outreach-engine/scheduler/internal/platform/logger"

	automationModel "github.com/outreach-engine/scheduler/modules/automation/model"
	automationPorts "github.com/outreach-engine/scheduler/modules/automation/ports"
	businessModel "github.com/outreach-engine/scheduler/modules/businessprofiles/model"
	businessPorts "github.com/outreach-engine/scheduler/modules/businessprofiles/ports"
	enrollmentModel "github.com/outreach-engine/scheduler/modules/enrollments/model"
	enrollmentPorts "github.com/outreach-engine/scheduler/modules/enrollments/ports"
	leadModel "github.com/outreach-engine/scheduler/modules/leads/model"
	leadPorts "github.com/outreach-engine/scheduler/modules/leads/ports"
	sequenceModel "github.com/outreach-engine/scheduler/modules/sequences/model"
	sequencePorts "github.com/outreach-engine/scheduler/modules/sequences/ports"
)

const maxConsecutiveFailures = 5

// Engine drives classic enrollments forward one work unit at a time. Each
// exported method processes a single enrollment/invitation and is meant to
// be called in a loop by the scheduler, which owns batching and commit
// boundaries (spec §4.8: one enrollment in one phase is one transaction).
type Engine struct {
	enrollments enrollmentPorts.EnrollmentRepository
	sequences   sequencePorts.SequenceRepository
	leads       leadPorts.LeadRepository
	profiles    businessPorts.BusinessProfileRepository
	settings    automationPorts.AutomationSettingsRepository
	invitations automationPorts.InvitationLogRepository
	msg         *messaging.Client
	lm          *analyzer.Analyzer
	guard       *gate.SendGuard
	quota       *gate.QuotaMirror
	log         *logger.Logger
}

func NewEngine(
	enrollments enrollmentPorts.EnrollmentRepository,
	sequences sequencePorts.SequenceRepository,
	leads leadPorts.LeadRepository,
	profiles businessPorts.BusinessProfileRepository,
	settings automationPorts.AutomationSettingsRepository,
	invitations automationPorts.InvitationLogRepository,
	msg *messaging.Client,
	lm *analyzer.Analyzer,
	guard *gate.SendGuard,
	quota *gate.QuotaMirror,
	log *logger.Logger,
) *Engine {
	return &Engine{
		guard:       guard,
		quota:       quota,
		enrollments: enrollments,
		sequences:   sequences,
		leads:       leads,
		profiles:    profiles,
		settings:    settings,
		invitations: invitations,
		msg:         msg,
		lm:          lm,
		log:         log,
	}
}

// SendNextInvitation implements the step-1 connection-request send for one
// candidate lead of one user, gated by the Automation Gate's quota and
// working-hours check.
func (e *Engine) SendNextInvitation(ctx context.Context, userID string) error {
	settings, err := e.settings.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, automationModel.ErrAutomationSettingsNotFound) {
			return nil
		}
		return err
	}

	now := time.Now().UTC()
	if gate.NeedsCounterReset(settings, now) {
		reset, err := e.settings.ResetDailyCounterIfStale(ctx, userID)
		if err != nil {
			return err
		}
		settings = reset
	}
	if !gate.CanSendInvitation(settings, now) {
		return nil
	}

	due, err := e.enrollments.DueClassicStepEnrollments(ctx, userID, 1)
	if err != nil {
		return err
	}
	candidate := firstStepOneDue(due)
	if candidate == nil {
		return nil
	}

	return e.sendInvitation(ctx, settings, candidate)
}

func firstStepOneDue(enrollments []*enrollmentModel.Enrollment) *enrollmentModel.Enrollment {
	for _, en := range enrollments {
		if en.CurrentStepOrder <= 1 {
			return en
		}
	}
	return nil
}

func (e *Engine) sendInvitation(ctx context.Context, settings *automationModel.AutomationSettings, en *enrollmentModel.Enrollment) error {
	lead, err := e.leads.GetByID(ctx, en.UserID, en.LeadID)
	if err != nil {
		return e.fail(ctx, en, "lead missing: "+err.Error())
	}

	handle := messaging.ExtractHandle(lead.ExternalProfileURL)
	if handle == "" {
		return e.fail(ctx, en, "could not extract provider id from profile url")
	}

	profile, err := e.defaultProfile(ctx, en.UserID)
	if err != nil {
		return err
	}
	seq, _, err := e.sequences.GetByID(ctx, en.UserID, en.SequenceID)
	if err != nil {
		return err
	}
	strategy := analyzer.ResolveStrategy(string(seq.MessageStrategy), lead.Title)

	message := lead.ConnectionMessage
	if message == "" {
		message, err = e.lm.AuthorConnectionMessage(ctx, shared.FormatBusinessProfile(profile), shared.FormatLead(lead), strategy)
		if err != nil {
			return e.logInvitation(ctx, en, lead, false, nil, fmt.Sprintf("message authoring failed: %v", err))
		}
	}

	acquired, err := e.guard.Acquire(ctx, en.ID, en.CurrentStepOrder)
	if err != nil {
		return err
	}
	if !acquired {
		return nil // another scheduler instance already has this send in flight
	}
	defer e.guard.Release(ctx, en.ID, en.CurrentStepOrder)

	result, err := e.msg.SendInvitation(ctx, handle, message)
	if err != nil {
		return e.logInvitation(ctx, en, lead, false, nil, err.Error())
	}
	if !result.Success {
		return e.logInvitation(ctx, en, lead, false, &result.StatusCode, result.Error)
	}

	lead.Status = leadModel.LeadStatusInvitationSent
	lead.ConnectionMessage = message
	now := time.Now().UTC()
	lead.ConnectionSentAt = &now
	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}

	en.LastStepCompletedAt = &now
	en.NextStepDueAt = nil
	en.ConsecutiveFailures = 0
	if err := e.enrollments.Update(ctx, en); err != nil {
		return err
	}

	if err := e.settings.IncrementDailyCounter(ctx, en.UserID, now); err != nil {
		return err
	}
	if _, err := e.quota.Increment(ctx, en.UserID, now); err != nil {
		e.log.WithUserID(en.UserID).WithError(err.Error()).Warn("quota mirror increment failed, Postgres remains authoritative")
	}

	return e.logInvitation(ctx, en, lead, true, &result.StatusCode, "")
}

func (e *Engine) logInvitation(ctx context.Context, en *enrollmentModel.Enrollment, lead *leadModel.Lead, success bool, statusCode *int, failureReason string) error {
	log := &automationModel.InvitationLog{
		UserID:         en.UserID,
		LeadID:         lead.ID,
		CampaignID:     lead.CampaignID,
		EnrollmentID:   &en.ID,
		LeadName:       lead.DisplayName(),
		MessagePreview: truncate(lead.ConnectionMessage, 80),
		Success:        success,
	}
	if statusCode != nil {
		log.ProviderStatusCode = statusCode
	}
	if failureReason != "" {
		log.FailureReason = &failureReason
	}
	if err := e.invitations.Create(ctx, log); err != nil {
		return err
	}
	if !success {
		return e.recordTransientFailure(ctx, en, failureReason)
	}
	return nil
}

// ProcessDueActions advances the due classic follow-up steps (step 2 onward)
// of one user, up to limit enrollments per call. Respects working
// hours: outside the window, due follow-ups are left pending for the next
// tick rather than sent (spec §4.5 "outside working hours: defer silently").
func (e *Engine) ProcessDueActions(ctx context.Context, userID string, limit int) error {
	settings, err := e.settings.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, automationModel.ErrAutomationSettingsNotFound) {
			return nil
		}
		return err
	}

	due, err := e.enrollments.DueClassicStepEnrollments(ctx, userID, limit)
	if err != nil {
		return err
	}
	for _, en := range due {
		if en.CurrentStepOrder < 2 {
			continue // step 1 is handled by SendNextInvitation, gated by quota
		}
		if err := e.advanceFollowUp(ctx, settings, en); err != nil {
			e.log.WithEnrollmentID(en.ID).WithError(err.Error()).Error("classic follow-up step failed")
		}
	}
	return nil
}

func (e *Engine) advanceFollowUp(ctx context.Context, settings *automationModel.AutomationSettings, en *enrollmentModel.Enrollment) error {
	if !gate.InWorkingHours(settings, time.Now().UTC()) {
		return nil // outside working hours; retry next tick, next_step_due_at unchanged
	}

	lead, err := e.leads.GetByID(ctx, en.UserID, en.LeadID)
	if err != nil {
		return e.fail(ctx, en, "lead missing: "+err.Error())
	}
	if lead.ExternalChatID == nil {
		return nil // no provider chat id yet; wait for connection-acceptance scan
	}

	_, steps, err := e.sequences.GetByID(ctx, en.UserID, en.SequenceID)
	if err != nil {
		return err
	}
	step := stepAt(steps, en.CurrentStepOrder)
	if step == nil {
		return e.completeSequence(ctx, en)
	}

	profile, err := e.defaultProfile(ctx, en.UserID)
	if err != nil {
		return err
	}

	text, err := e.lm.AuthorFollowUp(ctx, step.StepOrder, len(steps), shared.FormatConversation(en), step.PromptContext, shared.FormatBusinessProfile(profile))
	if err != nil {
		return e.recordTransientFailure(ctx, en, err.Error())
	}

	acquired, err := e.guard.Acquire(ctx, en.ID, en.CurrentStepOrder)
	if err != nil {
		return err
	}
	if !acquired {
		return nil
	}
	defer e.guard.Release(ctx, en.ID, en.CurrentStepOrder)

	result, err := e.msg.SendMessage(ctx, *lead.ExternalChatID, text)
	if err != nil {
		return e.recordTransientFailure(ctx, en, err.Error())
	}
	if !result.Success {
		return e.recordTransientFailure(ctx, en, result.Error)
	}

	now := time.Now().UTC()
	en.MessagesSent = append(en.MessagesSent, enrollmentModel.MessageSent{
		StepOrKey: fmt.Sprintf("step-%d", step.StepOrder),
		Text:      text,
		SentAt:    now,
	})
	en.LastStepCompletedAt = &now
	en.ConsecutiveFailures = 0

	next := stepAt(steps, en.CurrentStepOrder+1)
	if next == nil {
		en.Status = enrollmentModel.EnrollmentStatusCompleted
		en.NextStepDueAt = nil
		en.CompletedAt = &now
	} else {
		en.CurrentStepOrder = next.StepOrder
		due := now.AddDate(0, 0, next.DelayDays)
		en.NextStepDueAt = &due
	}
	return e.enrollments.Update(ctx, en)
}

func (e *Engine) completeSequence(ctx context.Context, en *enrollmentModel.Enrollment) error {
	now := time.Now().UTC()
	en.Status = enrollmentModel.EnrollmentStatusCompleted
	en.NextStepDueAt = nil
	en.CompletedAt = &now
	return e.enrollments.Update(ctx, en)
}

// DetectConnectionChanges scans for newly-accepted connections across both
// classic and smart_pipeline enrollments. It advances classic enrollments to
// step 2 itself; for pipeline enrollments it only updates the lead and
// returns them, since starting the pipeline is the pipeline engine's job.
func (e *Engine) DetectConnectionChanges(ctx context.Context, userID string, limit int) ([]*enrollmentModel.Enrollment, error) {
	awaiting, err := e.enrollments.AwaitingAcceptanceEnrollments(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(awaiting) == 0 {
		return nil, nil
	}

	chatsResult, err := e.msg.ListChats(ctx, 100)
	if err != nil || !chatsResult.Success {
		return nil, nil // provider hiccup; retried next cycle
	}
	chatIDByHandle, err := messaging.ParseChatHandles(chatsResult.Data)
	if err != nil {
		return nil, nil
	}

	var newlyConnectedPipelines []*enrollmentModel.Enrollment
	for _, en := range awaiting {
		lead, err := e.leads.GetByID(ctx, en.UserID, en.LeadID)
		if err != nil {
			continue
		}
		handle := messaging.ExtractHandle(lead.ExternalProfileURL)
		chatID, found := chatIDByHandle[handle]
		if !found {
			continue
		}

		now := time.Now().UTC()
		lead.ExternalChatID = &chatID
		lead.Status = leadModel.LeadStatusConnected
		lead.ConnectedAt = &now
		if err := e.leads.Update(ctx, lead); err != nil {
			return nil, err
		}

		if en.CurrentPhase == nil && en.CurrentStepOrder == 0 {
			newlyConnectedPipelines = append(newlyConnectedPipelines, en)
			continue // smart_pipeline mode: the pipeline engine takes it from here
		}

		seq, steps, err := e.sequences.GetByID(ctx, en.UserID, en.SequenceID)
		if err != nil {
			return nil, err
		}
		_ = seq
		next := stepAt(steps, 2)
		if next == nil {
			en.Status = enrollmentModel.EnrollmentStatusCompleted
			en.CompletedAt = &now
		} else {
			en.CurrentStepOrder = 2
			due := now.AddDate(0, 0, next.DelayDays)
			en.NextStepDueAt = &due
		}
		if err := e.enrollments.Update(ctx, en); err != nil {
			return nil, err
		}
	}
	return newlyConnectedPipelines, nil
}

// DetectRepliesClassic scans chat messages for classic enrollments awaiting
// a reply and auto-exits on the first inbound message.
func (e *Engine) DetectRepliesClassic(ctx context.Context, userID string, limit int) error {
	due, err := e.enrollments.DueClassicStepEnrollments(ctx, userID, limit)
	if err != nil {
		return err
	}
	active, err := e.enrollments.AwaitingAcceptanceEnrollments(ctx, userID, limit)
	if err != nil {
		return err
	}
	candidates := append(due, active...)

	for _, en := range candidates {
		lead, err := e.leads.GetByID(ctx, en.UserID, en.LeadID)
		if err != nil || lead.ExternalChatID == nil {
			continue
		}

		result, hasNew, err := e.msg.ListChatMessagesCached(ctx, *lead.ExternalChatID, 20)
		if err != nil || !hasNew {
			continue
		}
		lastText, lastAt, ok := messaging.LastInboundMessage(result)
		if !ok {
			continue
		}

		en.Status = enrollmentModel.EnrollmentStatusReplied
		en.NextStepDueAt = nil
		lead.Status = leadModel.LeadStatusInConversation
		lead.LastMessageAt = &lastAt
		_ = lastText
		if err := e.leads.Update(ctx, lead); err != nil {
			return err
		}
		if err := e.enrollments.Update(ctx, en); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) recordTransientFailure(ctx context.Context, en *enrollmentModel.Enrollment, reason string) error {
	en.ConsecutiveFailures++
	en.LastFailureCount = en.ConsecutiveFailures
	if en.ConsecutiveFailures >= maxConsecutiveFailures {
		return e.fail(ctx, en, "max retries exceeded")
	}
	return e.enrollments.Update(ctx, en)
}

func (e *Engine) fail(ctx context.Context, en *enrollmentModel.Enrollment, reason string) error {
	en.Status = enrollmentModel.EnrollmentStatusFailed
	en.FailedReason = &reason
	en.NextStepDueAt = nil
	return e.enrollments.Update(ctx, en)
}

func (e *Engine) defaultProfile(ctx context.Context, userID string) (*businessModel.BusinessProfile, error) {
	profile, err := e.profiles.GetDefault(ctx, userID)
	if err != nil {
		if errors.Is(err, businessModel.ErrNoDefaultProfile) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func stepAt(steps []*sequenceModel.SequenceStep, order int) *sequenceModel.SequenceStep {
	for _, s := range steps {
		if s.StepOrder == order {
			return s
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
