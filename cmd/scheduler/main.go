package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/outreach-engine/scheduler/internal/config"
	"github.com/outreach-engine/scheduler/internal/engine/automation"
	"github.com/outreach-engine/scheduler/internal/engine/scheduler"
	"github.com/outreach-engine/scheduler/internal/platform/cache"
	"github.com/outreach-engine/scheduler/internal/platform/crypto"
	"github.com/outreach-engine/scheduler/internal/platform/logger"
	"github.com/outreach-engine/scheduler/internal/platform/postgres"
	"github.com/outreach-engine/scheduler/internal/platform/redis"

	automationRepo "github.com/outreach-engine/scheduler/modules/automation/repository"
	businessProfileRepo "github.com/outreach-engine/scheduler/modules/businessprofiles/repository"
	enrollmentRepo "github.com/outreach-engine/scheduler/modules/enrollments/repository"
	leadRepo "github.com/outreach-engine/scheduler/modules/leads/repository"
	messagingAccountRepo "github.com/outreach-engine/scheduler/modules/messagingaccounts/repository"
	messagingAccountService "github.com/outreach-engine/scheduler/modules/messagingaccounts/service"
	sequenceRepo "github.com/outreach-engine/scheduler/modules/sequences/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// cmd/scheduler runs the tick loop (spec §4.7) as its own process, separate
// from the HTTP API server, so a slow LM call or provider outage never
// blocks request handling.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgClient.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	credentialBox, err := crypto.NewCredentialBox([]byte(cfg.Encryption.CredentialKey))
	if err != nil {
		appLogger.Fatal("Failed to initialize credential box", zap.Error(err))
	}

	accounts := messagingAccountRepo.NewMessagingAccountRepository(pgClient.Pool)
	settings := automationRepo.NewAutomationSettingsRepository(pgClient.Pool)
	invitations := automationRepo.NewInvitationLogRepository(pgClient.Pool)
	sequences := sequenceRepo.NewSequenceRepository(pgClient.Pool)
	enrollments := enrollmentRepo.NewEnrollmentRepository(pgClient.Pool)
	leads := leadRepo.NewLeadRepository(pgClient.Pool)
	profiles := businessProfileRepo.NewBusinessProfileRepository(pgClient.Pool)
	accountSvc := messagingAccountService.NewMessagingAccountService(accounts, credentialBox)

	loop, err := scheduler.NewLoop(scheduler.Deps{
		AutomationCfg: cfg.Automation,
		LMCfg:         cfg.LM,
		MessagingCfg:  cfg.Messaging,

		Accounts:    accounts,
		AccountSvc:  accountSvc,
		Settings:    settings,
		Invitations: invitations,
		Sequences:   sequences,
		Enrollments: enrollments,
		Leads:       leads,
		Profiles:    profiles,

		ResponseCache: cache.NewResponseCache(),
		Guard:         automation.NewSendGuard(redisClient.Client, 0),
		Quota:         automation.NewQuotaMirror(redisClient.Client),
		Log:           appLogger,
	})
	if err != nil {
		appLogger.Fatal("Failed to build scheduler loop", zap.Error(err))
	}

	appLogger.Info("Starting outreach scheduler loop",
		zap.String("env", cfg.Server.Env),
		zap.Duration("tick_period", cfg.Automation.SchedulerTickPeriod),
	)

	go loop.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down scheduler loop...")
	cancel()
	loop.Stop()
	appLogger.Info("Scheduler loop exited")
}
