// Package scheduler implements the cooperative tick loop (spec §4.7) that
// drives the classic and pipeline engines across every connected user.
// Grounded on scheduler_service.py's tick/phase cadence and start/stop
// pattern, translated from module-level asyncio globals into a Go struct
// owning its own stop channel.
package scheduler

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/outreach-engine/scheduler/internal/config"
	"github.com/outreach-engine/scheduler/internal/engine/analyzer"
	gate "github.com/outreach-engine/scheduler/internal/engine/automation"
	"github.com/outreach-engine/scheduler/internal/engine/classic"
	"github.com/outreach-engine/scheduler/internal/engine/messaging"
	"github.com/outreach-engine/scheduler/internal/engine/pipeline"
	"github.com/outreach-engine/scheduler/internal/platform/cache"
	"github.com/outreach-engine/scheduler/internal/platform/llm"
	"github.com/outreach-engine/scheduler/internal/platform/logger"

	automationPorts "github.com/outreach-engine/scheduler/modules/automation/ports"
	businessPorts "github.com/outreach-engine/scheduler/modules/businessprofiles/ports"
	enrollmentPorts "github.com/outreach-engine/scheduler/modules/enrollments/ports"
	leadPorts "github.com/outreach-engine/scheduler/modules/leads/ports"
	messagingaccountsPorts "github.com/outreach-engine/scheduler/modules/messagingaccounts/ports"
	messagingaccountsService "github.com/outreach-engine/scheduler/modules/messagingaccounts/service"
	sequencePorts "github.com/outreach-engine/scheduler/modules/sequences/ports"
)

// phaseRedrawMin/Max bound the uniform-random tick delay P2-P4 redraw after
// every fire (spec §4.7: "the anti-fingerprinting measure for polling").
const (
	phaseRedrawMin = 55
	phaseRedrawMax = 65
)

// phase tracks one of P2/P3/P4's independent next-due tick counter.
type phase struct {
	name    string
	dueAt   int64
	initial [2]int
	run     func(ctx context.Context, userID string) error
}

func (p *phase) due(tick int64) bool {
	return tick >= p.dueAt
}

func (p *phase) redraw(tick int64) {
	span := phaseRedrawMax - phaseRedrawMin
	p.dueAt = tick + int64(phaseRedrawMin+rand.Intn(span+1))
}

// Loop owns the tick goroutine and all per-user engine instances.
type Loop struct {
	cfg         config.AutomationConfig
	llmCfg      config.LMConfig
	messagingCfg config.MessagingConfig

	accounts    messagingaccountsPorts.MessagingAccountRepository
	accountSvc  *messagingaccountsService.MessagingAccountService
	settings    automationPorts.AutomationSettingsRepository
	invitations automationPorts.InvitationLogRepository
	sequences   sequencePorts.SequenceRepository
	enrollments enrollmentPorts.EnrollmentRepository
	leads       leadPorts.LeadRepository
	profiles    businessPorts.BusinessProfileRepository

	respCache *cache.ResponseCache
	analyzer  *analyzer.Analyzer
	guard     *gate.SendGuard
	quota     *gate.QuotaMirror
	log       *logger.Logger

	tick    int64
	phases  []*phase
	stopCh  chan struct{}
	stopped chan struct{}
}

type Deps struct {
	AutomationCfg config.AutomationConfig
	LMCfg         config.LMConfig
	MessagingCfg  config.MessagingConfig

	Accounts    messagingaccountsPorts.MessagingAccountRepository
	AccountSvc  *messagingaccountsService.MessagingAccountService
	Settings    automationPorts.AutomationSettingsRepository
	Invitations automationPorts.InvitationLogRepository
	Sequences   sequencePorts.SequenceRepository
	Enrollments enrollmentPorts.EnrollmentRepository
	Leads       leadPorts.LeadRepository
	Profiles    businessPorts.BusinessProfileRepository

	ResponseCache *cache.ResponseCache
	Guard         *gate.SendGuard
	Quota         *gate.QuotaMirror
	Log           *logger.Logger
}

func NewLoop(d Deps) (*Loop, error) {
	lmClient, err := llm.New(llm.Config{
		APIKey:    d.LMCfg.APIKey,
		Model:     d.LMCfg.Model,
		MaxTokens: int64(d.LMCfg.MaxTokens),
	})
	if err != nil {
		return nil, err
	}

	l := &Loop{
		cfg:          d.AutomationCfg,
		llmCfg:       d.LMCfg,
		messagingCfg: d.MessagingCfg,
		accounts:     d.Accounts,
		accountSvc:   d.AccountSvc,
		settings:     d.Settings,
		invitations:  d.Invitations,
		sequences:    d.Sequences,
		enrollments:  d.Enrollments,
		leads:        d.Leads,
		profiles:     d.Profiles,
		respCache:    d.ResponseCache,
		analyzer:     analyzer.New(lmClient),
		guard:        d.Guard,
		quota:        d.Quota,
		log:          d.Log,
		stopCh:       make(chan struct{}),
		stopped:      make(chan struct{}),
	}

	l.phases = []*phase{
		{name: "connection_changes", initial: [2]int{55, 65}, run: l.runConnectionChanges},
		{name: "replies_classic", initial: [2]int{25, 35}, run: l.runRepliesClassic},
		{name: "pipeline_replies_and_transitions", initial: [2]int{40, 50}, run: l.runPipelineRepliesAndTransitions},
	}
	for _, p := range l.phases {
		span := p.initial[1] - p.initial[0]
		p.dueAt = int64(p.initial[0] + rand.Intn(span+1))
	}
	return l, nil
}

// Start runs the tick loop until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.SchedulerTickPeriod)
	defer ticker.Stop()
	defer close(l.stopped)

	l.log.Info("scheduler loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.Info("scheduler loop stopping: context cancelled")
			return
		case <-l.stopCh:
			l.log.Info("scheduler loop stopping: stop requested")
			return
		case <-ticker.C:
			l.tick++
			l.runTick(ctx)
		}
	}
}

// Stop signals the loop to exit and blocks until it has.
func (l *Loop) Stop() {
	close(l.stopCh)
	<-l.stopped
}

func (l *Loop) runTick(ctx context.Context) {
	tickLog := l.log.WithTick(l.tick)

	userIDs, err := l.activeUserIDs(ctx)
	if err != nil {
		tickLog.WithError(err.Error()).Error("failed to list active users for tick")
		return
	}

	// P1 runs every tick.
	l.runPhaseAcrossUsers(ctx, tickLog, "invitations_and_due_actions", userIDs, l.runInvitationsAndDueActions)

	for _, p := range l.phases {
		if !p.due(l.tick) {
			continue
		}
		l.runPhaseAcrossUsers(ctx, tickLog, p.name, userIDs, p.run)
		p.redraw(l.tick)
	}
}

// runPhaseAcrossUsers fans the phase's per-user work out with errgroup,
// bounded implicitly by len(userIDs); each user's work commits its own
// state independent of the others (spec §4.7: "two engines may interleave
// freely because they commit only after their own work unit completes").
func (l *Loop) runPhaseAcrossUsers(ctx context.Context, log *logger.Logger, phaseName string, userIDs []string, fn func(ctx context.Context, userID string) error) {
	g, gctx := errgroup.WithContext(ctx)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if err := fn(gctx, userID); err != nil {
				log.WithUserID(userID).WithPhase(phaseName).WithError(err.Error()).Error("scheduler phase failed for user")
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (l *Loop) activeUserIDs(ctx context.Context) ([]string, error) {
	connected, err := l.accounts.ListConnected(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(connected))
	for _, acc := range connected {
		if acc.Connected {
			ids = append(ids, acc.UserID)
		}
	}
	return ids, nil
}

func (l *Loop) runInvitationsAndDueActions(ctx context.Context, userID string) error {
	classicEngine, pipelineEngine, err := l.enginesFor(ctx, userID)
	if err != nil {
		return err
	}
	if err := classicEngine.SendNextInvitation(ctx, userID); err != nil {
		return err
	}
	if err := classicEngine.ProcessDueActions(ctx, userID, l.cfg.MaxBatchPerTick); err != nil {
		return err
	}
	return pipelineEngine.ProcessTimeBasedTransitions(ctx, userID, l.cfg.MaxBatchPerTick)
}

func (l *Loop) runConnectionChanges(ctx context.Context, userID string) error {
	classicEngine, pipelineEngine, err := l.enginesFor(ctx, userID)
	if err != nil {
		return err
	}
	newlyConnectedPipelines, err := classicEngine.DetectConnectionChanges(ctx, userID, l.cfg.MaxBatchPerTick)
	if err != nil {
		return err
	}
	for _, en := range newlyConnectedPipelines {
		if err := pipelineEngine.OnAcceptanceDetected(ctx, en); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) runRepliesClassic(ctx context.Context, userID string) error {
	classicEngine, _, err := l.enginesFor(ctx, userID)
	if err != nil {
		return err
	}
	return classicEngine.DetectRepliesClassic(ctx, userID, l.cfg.MaxBatchPerTick)
}

func (l *Loop) runPipelineRepliesAndTransitions(ctx context.Context, userID string) error {
	_, pipelineEngine, err := l.enginesFor(ctx, userID)
	if err != nil {
		return err
	}
	if err := pipelineEngine.DetectRepliesPipeline(ctx, userID, l.cfg.MaxBatchPerTick); err != nil {
		return err
	}
	return pipelineEngine.ProcessTimeBasedTransitions(ctx, userID, l.cfg.MaxBatchPerTick)
}

// enginesFor builds a messaging client scoped to one user's decrypted
// credentials, paired with the process-wide LM analyzer and Response Cache.
func (l *Loop) enginesFor(ctx context.Context, userID string) (*classic.Engine, *pipeline.Engine, error) {
	account, err := l.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	apiKey, err := l.accountSvc.DecryptedAPIKey(account)
	if err != nil {
		return nil, nil, err
	}

	msgClient := messaging.New(l.messagingCfg.BaseURL, apiKey, account.ExternalAccountID, l.messagingCfg.Timeout, l.respCache)

	classicEngine := classic.NewEngine(l.enrollments, l.sequences, l.leads, l.profiles, l.settings, l.invitations, msgClient, l.analyzer, l.guard, l.quota, l.log)
	pipelineEngine := pipeline.NewEngine(l.enrollments, l.leads, l.profiles, l.settings, msgClient, l.analyzer, l.guard, l.log)
	return classicEngine, pipelineEngine, nil
}
