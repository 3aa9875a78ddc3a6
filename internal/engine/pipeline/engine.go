// Package pipeline implements the Pipeline State Engine (spec §4.6): the
// five-phase response-driven state machine for smart_pipeline enrollments.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
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
)

type Engine struct {
	enrollments enrollmentPorts.EnrollmentRepository
	leads       leadPorts.LeadRepository
	profiles    businessPorts.BusinessProfileRepository
	settings    automationPorts.AutomationSettingsRepository
	msg         *messaging.Client
	lm          *analyzer.Analyzer
	guard       *gate.SendGuard
	log         *logger.Logger
}

func NewEngine(
	enrollments enrollmentPorts.EnrollmentRepository,
	leads leadPorts.LeadRepository,
	profiles businessPorts.BusinessProfileRepository,
	settings automationPorts.AutomationSettingsRepository,
	msg *messaging.Client,
	lm *analyzer.Analyzer,
	guard *gate.SendGuard,
	log *logger.Logger,
) *Engine {
	return &Engine{enrollments: enrollments, leads: leads, profiles: profiles, settings: settings, msg: msg, lm: lm, guard: guard, log: log}
}

// OnAcceptanceDetected starts the pipeline for an enrollment whose
// connection request was just accepted (spec §4.6 top transition). Called
// by the same connection-change scan the classic engine uses, once it
// recognizes the enrollment is smart_pipeline mode (current_step_order 0).
func (e *Engine) OnAcceptanceDetected(ctx context.Context, en *enrollmentModel.Enrollment) error {
	now := time.Now().UTC()
	apertura := enrollmentModel.PhaseApertura
	en.CurrentPhase = &apertura
	en.PhaseEnteredAt = &now
	en.MessagesInPhase = 0

	settings, err := e.settings.GetByUserID(ctx, en.UserID)
	if err != nil && !errors.Is(err, automationModel.ErrAutomationSettingsNotFound) {
		return err
	}
	if settings != nil && gate.InWorkingHours(settings, now) {
		if err := e.sendPhaseMessage(ctx, en, now); err != nil {
			retryAt := now.Add(5 * time.Minute)
			en.NextStepDueAt = &retryAt
			if uerr := e.enrollments.Update(ctx, en); uerr != nil {
				return uerr
			}
			return err
		}
	} else {
		en.NextStepDueAt = &now
	}
	return e.enrollments.Update(ctx, en)
}

// ProcessInboundReply implements the per-phase outcome switch (spec §4.6
// middle block), invoked once per enrollment found to have a new inbound
// message by the reply-detection phase.
func (e *Engine) ProcessInboundReply(ctx context.Context, en *enrollmentModel.Enrollment, replyText string, replyAt time.Time) error {
	if en.CurrentPhase == nil {
		return nil
	}
	lead, err := e.leads.GetByID(ctx, en.UserID, en.LeadID)
	if err != nil {
		return err
	}

	en.LastResponseAt = &replyAt
	en.LastResponseText = &replyText
	lead.LastMessageAt = &replyAt
	lead.Status = leadModel.LeadStatusInConversation

	profile, err := e.defaultProfile(ctx, en.UserID)
	if err != nil {
		return err
	}

	analysis, err := e.lm.AnalyzePhaseResponse(ctx, shared.FormatConversation(en), string(*en.CurrentPhase),
		shared.FormatLead(lead), shared.FormatBusinessProfile(profile), en.MessagesInPhase)
	if err != nil {
		return err
	}

	en.PhaseAnalysis = &enrollmentModel.PhaseAnalysis{
		Outcome:        analysis.Outcome,
		NextPhase:      analysis.NextPhase,
		Sentiment:      analysis.Sentiment,
		BuyingSignals:  analysis.BuyingSignals,
		SignalStrength: analysis.SignalStrength,
		SuggestedAngle: analysis.SuggestedAngle,
		Reason:         analysis.Reason,
	}
	lead.ScoreReason = analysis.Reason
	switch analysis.Sentiment {
	case "hot":
		lead.ScoreLabel = leadModel.ScoreHot
	case "cold":
		lead.ScoreLabel = leadModel.ScoreCold
	default:
		lead.ScoreLabel = leadModel.ScoreWarm
	}

	now := time.Now().UTC()
	switch analysis.Outcome {
	case "advance":
		if analysis.NextPhase != nil {
			next := enrollmentModel.PipelinePhase(*analysis.NextPhase)
			en.CurrentPhase = &next
		}
		en.PhaseEnteredAt = &now
		en.MessagesInPhase = 0
		if err := e.sendPhaseMessage(ctx, en, now); err != nil {
			return err
		}
	case "stay":
		if err := e.sendPhaseMessage(ctx, en, now); err != nil {
			return err
		}
	case "nurture":
		nurture := enrollmentModel.PhaseNurture
		en.CurrentPhase = &nurture
		en.PhaseEnteredAt = &now
		en.MessagesInPhase = 0
		due := now.AddDate(0, 0, nurtureCadenceDays())
		en.NextStepDueAt = &due
	case "meeting":
		en.Status = enrollmentModel.EnrollmentStatusCompleted
		en.CompletedAt = &now
		lead.Status = leadModel.LeadStatusMeetingScheduled
		lead.ActiveSequenceID = nil
	case "park":
		en.Status = enrollmentModel.EnrollmentStatusParked
		lead.ActiveSequenceID = nil
	case "exit":
		en.Status = enrollmentModel.EnrollmentStatusCompleted
		en.CompletedAt = &now
		lead.Status = leadModel.LeadStatusDisqualified
		lead.ActiveSequenceID = nil
	default:
		e.log.WithEnrollmentID(en.ID).Warn("unrecognized phase analysis outcome, treating as stay")
	}

	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}
	return e.enrollments.Update(ctx, en)
}

// DetectRepliesPipeline scans one user's in-progress pipeline enrollments
// for new inbound messages and routes each to ProcessInboundReply.
func (e *Engine) DetectRepliesPipeline(ctx context.Context, userID string, limit int) error {
	enrollments, err := e.enrollments.ActivePipelineEnrollments(ctx, userID, limit)
	if err != nil {
		return err
	}

	for _, en := range enrollments {
		lead, err := e.leads.GetByID(ctx, en.UserID, en.LeadID)
		if err != nil || lead.ExternalChatID == nil {
			continue
		}
		result, hasNew, err := e.msg.ListChatMessagesCached(ctx, *lead.ExternalChatID, 20)
		if err != nil || !hasNew {
			continue
		}
		text, at, ok := messaging.LastInboundMessage(result)
		if !ok {
			continue
		}
		if err := e.ProcessInboundReply(ctx, en, text, at); err != nil {
			e.log.WithEnrollmentID(en.ID).WithError(err.Error()).Error("pipeline reply processing failed")
		}
	}
	return nil
}

// ProcessTimeBasedTransitions evaluates the three time triggers (spec §4.6
// bottom block) for one user's active pipeline enrollments.
func (e *Engine) ProcessTimeBasedTransitions(ctx context.Context, userID string, limit int) error {
	enrollments, err := e.enrollments.ActivePipelineEnrollments(ctx, userID, limit)
	if err != nil {
		return err
	}

	settings, err := e.settings.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, automationModel.ErrAutomationSettingsNotFound) {
		return err
	}
	now := time.Now().UTC()
	inHours := settings != nil && gate.InWorkingHours(settings, now)

	for _, en := range enrollments {
		if en.CurrentPhase == nil {
			continue
		}
		var err error
		switch {
		case *en.CurrentPhase == enrollmentModel.PhaseNurture && dueNow(en.NextStepDueAt, now):
			err = e.handleNurtureDue(ctx, en, inHours, now)
		case isProgressionPhase(*en.CurrentPhase) && silentInProgression(en, now):
			err = e.handleSilentInProgression(ctx, en, inHours, now)
		case *en.CurrentPhase == enrollmentModel.PhaseApertura && en.MessagesInPhase == 0 && dueNow(en.NextStepDueAt, now):
			err = e.handleDeferredApertura(ctx, en, inHours, now)
		}
		if err != nil {
			e.log.WithEnrollmentID(en.ID).WithPhase(string(*en.CurrentPhase)).WithError(err.Error()).Error("pipeline time-based transition failed")
		}
	}
	return nil
}

func (e *Engine) handleNurtureDue(ctx context.Context, en *enrollmentModel.Enrollment, inHours bool, now time.Time) error {
	if en.NurtureCount >= enrollmentModel.MaxNurtureTouches {
		en.Status = enrollmentModel.EnrollmentStatusParked
		if err := e.clearLeadSequence(ctx, en); err != nil {
			return err
		}
		return e.enrollments.Update(ctx, en)
	}
	if !inHours {
		return nil
	}
	if err := e.sendPhaseMessage(ctx, en, now); err != nil {
		return err
	}
	en.NurtureCount++
	due := now.AddDate(0, 0, nurtureCadenceDays())
	en.NextStepDueAt = &due
	return e.enrollments.Update(ctx, en)
}

func (e *Engine) handleSilentInProgression(ctx context.Context, en *enrollmentModel.Enrollment, inHours bool, now time.Time) error {
	if en.ReactivationCount >= enrollmentModel.MaxReactivationAttempts {
		nurture := enrollmentModel.PhaseNurture
		en.CurrentPhase = &nurture
		en.PhaseEnteredAt = &now
		en.MessagesInPhase = 0
		due := now.AddDate(0, 0, nurtureCadenceDays())
		en.NextStepDueAt = &due
		return e.enrollments.Update(ctx, en)
	}
	if !inHours {
		return nil
	}
	reactivacion := enrollmentModel.PhaseReactivacion
	en.CurrentPhase = &reactivacion
	en.PhaseEnteredAt = &now
	en.MessagesInPhase = 0
	en.ReactivationCount++
	if err := e.sendPhaseMessage(ctx, en, now); err != nil {
		return err
	}
	return e.enrollments.Update(ctx, en)
}

func (e *Engine) handleDeferredApertura(ctx context.Context, en *enrollmentModel.Enrollment, inHours bool, now time.Time) error {
	if !inHours {
		return nil
	}
	if err := e.sendPhaseMessage(ctx, en, now); err != nil {
		return err
	}
	en.NextStepDueAt = nil
	return e.enrollments.Update(ctx, en)
}

// sendPhaseMessage authors and sends the next message for the enrollment's
// current phase, incrementing messages_in_phase/total_messages_sent on
// success only (spec §4.8: state advances only after success=true).
func (e *Engine) sendPhaseMessage(ctx context.Context, en *enrollmentModel.Enrollment, now time.Time) error {
	lead, err := e.leads.GetByID(ctx, en.UserID, en.LeadID)
	if err != nil {
		return err
	}
	if lead.ExternalChatID == nil {
		en.NextStepDueAt = &now
		return nil
	}

	var prevAnalysis string
	if en.PhaseAnalysis != nil {
		prevAnalysis = en.PhaseAnalysis.Reason
	}
	text, err := e.lm.AuthorPhaseMessage(ctx, string(*en.CurrentPhase), shared.FormatConversation(en), prevAnalysis, en.MessagesInPhase)
	if err != nil {
		return fmt.Errorf("phase message authoring failed: %w", err)
	}

	// Guard key uses the running message count as the per-attempt
	// dimension, since current_step_order stays 0 for the whole pipeline
	// lifetime and can't distinguish one phase message from the next.
	acquired, err := e.guard.Acquire(ctx, en.ID, len(en.MessagesSent))
	if err != nil {
		return err
	}
	if !acquired {
		return nil
	}
	defer e.guard.Release(ctx, en.ID, len(en.MessagesSent))

	result, err := e.msg.SendMessage(ctx, *lead.ExternalChatID, text)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("send_message failed: %s", result.Error)
	}

	en.MessagesSent = append(en.MessagesSent, enrollmentModel.MessageSent{
		StepOrKey: string(*en.CurrentPhase),
		Text:      text,
		SentAt:    now,
	})
	en.MessagesInPhase++
	en.TotalMessagesSent++
	return nil
}

func (e *Engine) clearLeadSequence(ctx context.Context, en *enrollmentModel.Enrollment) error {
	return e.leads.SetActiveSequence(ctx, en.LeadID, nil)
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

func nurtureCadenceDays() int {
	span := enrollmentModel.NurtureCadenceMaxDays - enrollmentModel.NurtureCadenceMinDays
	return enrollmentModel.NurtureCadenceMinDays + rand.Intn(span+1)
}

func dueNow(due *time.Time, now time.Time) bool {
	return due != nil && !due.After(now)
}

func isProgressionPhase(phase enrollmentModel.PipelinePhase) bool {
	switch phase {
	case enrollmentModel.PhaseApertura, enrollmentModel.PhaseCalificacion, enrollmentModel.PhaseValor:
		return true
	default:
		return false
	}
}

func silentInProgression(en *enrollmentModel.Enrollment, now time.Time) bool {
	if en.PhaseEnteredAt == nil {
		return false
	}
	threshold := now.AddDate(0, 0, -enrollmentModel.ReactivationSilenceDays)
	if en.PhaseEnteredAt.After(threshold) {
		return false
	}
	return en.LastResponseAt == nil || en.LastResponseAt.Before(*en.PhaseEnteredAt)
}
