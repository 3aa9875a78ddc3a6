package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/outreach-engine/scheduler/docs" // swagger docs

	"github.com/outreach-engine/scheduler/internal/config"
	"github.com/outreach-engine/scheduler/internal/engine/analyzer"
	"github.com/outreach-engine/scheduler/internal/platform/auth"
	"github.com/outreach-engine/scheduler/internal/platform/crypto"
	httpPlatform "github.com/outreach-engine/scheduler/internal/platform/http"
	"github.com/outreach-engine/scheduler/internal/platform/llm"
	"github.com/outreach-engine/scheduler/internal/platform/logger"
	"github.com/outreach-engine/scheduler/internal/platform/postgres"
	"github.com/outreach-engine/scheduler/internal/platform/redis"

	authHandler "github.com/outreach-engine/scheduler/modules/auth/handler"
	authRepo "github.com/outreach-engine/scheduler/modules/auth/repository"
	authService "github.com/outreach-engine/scheduler/modules/auth/service"
	userRepo "github.com/outreach-engine/scheduler/modules/users/repository"

	analyticsHandler "github.com/outreach-engine/scheduler/modules/analytics/handler"
	analyticsRepo "github.com/outreach-engine/scheduler/modules/analytics/repository"
	analyticsService "github.com/outreach-engine/scheduler/modules/analytics/service"

	automationHandler "github.com/outreach-engine/scheduler/modules/automation/handler"
	automationRepo "github.com/outreach-engine/scheduler/modules/automation/repository"
	automationService "github.com/outreach-engine/scheduler/modules/automation/service"

	businessProfileHandler "github.com/outreach-engine/scheduler/modules/businessprofiles/handler"
	businessProfileRepo "github.com/outreach-engine/scheduler/modules/businessprofiles/repository"
	businessProfileService "github.com/outreach-engine/scheduler/modules/businessprofiles/service"

	campaignHandler "github.com/outreach-engine/scheduler/modules/campaigns/handler"
	campaignRepo "github.com/outreach-engine/scheduler/modules/campaigns/repository"
	campaignService "github.com/outreach-engine/scheduler/modules/campaigns/service"

	enrollmentHandler "github.com/outreach-engine/scheduler/modules/enrollments/handler"
	enrollmentRepo "github.com/outreach-engine/scheduler/modules/enrollments/repository"
	enrollmentService "github.com/outreach-engine/scheduler/modules/enrollments/service"

	leadHandler "github.com/outreach-engine/scheduler/modules/leads/handler"
	leadRepo "github.com/outreach-engine/scheduler/modules/leads/repository"
	leadService "github.com/outreach-engine/scheduler/modules/leads/service"

	messagingAccountHandler "github.com/outreach-engine/scheduler/modules/messagingaccounts/handler"
	messagingAccountRepo "github.com/outreach-engine/scheduler/modules/messagingaccounts/repository"
	messagingAccountService "github.com/outreach-engine/scheduler/modules/messagingaccounts/service"

	sequenceHandler "github.com/outreach-engine/scheduler/modules/sequences/handler"
	sequenceRepo "github.com/outreach-engine/scheduler/modules/sequences/repository"
	sequenceService "github.com/outreach-engine/scheduler/modules/sequences/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Outreach Scheduler API
// @version 1.0
// @description Outreach scheduling and pipeline state engine: a modular monolith backend that enrolls leads into classic timer-driven sequences or response-driven smart pipelines.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@outreach-engine.example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @x-extension-openapi {"example": "value on a json format"}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting outreach scheduler API server",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	// Initialize PostgreSQL
	pgClient, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgClient.Close()
	logger.Info("Connected to PostgreSQL")

	// Run database migrations (MANDATORY: must run before HTTP server starts)
	migrationsPath := "./migrations"
	if err := postgres.RunMigrations(ctx, cfg.Database, logger, migrationsPath); err != nil {
		logger.Fatal("Failed to run database migrations",
			zap.Error(err),
			zap.String("migrations_path", migrationsPath),
		)
	}

	// Initialize Redis
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Initialize the credential box that encrypts messaging-account API keys at rest
	credentialBox, err := crypto.NewCredentialBox([]byte(cfg.Encryption.CredentialKey))
	if err != nil {
		logger.Fatal("Failed to initialize credential box", zap.Error(err))
	}

	// Initialize the LM analyzer (optional - degrade gracefully without an API key)
	var lmAnalyzer *analyzer.Analyzer
	if cfg.LM.APIKey != "" {
		lmClient, err := llm.New(llm.Config{APIKey: cfg.LM.APIKey, Model: cfg.LM.Model, MaxTokens: int64(cfg.LM.MaxTokens)})
		if err != nil {
			logger.Warn("Failed to initialize LM client, LM-backed endpoints will error", zap.Error(err))
		} else {
			lmAnalyzer = analyzer.New(lmClient)
			logger.Info("LM analyzer initialized", zap.String("model", cfg.LM.Model))
		}
	} else {
		logger.Info("ANTHROPIC_API_KEY not provided, LM-backed endpoints will be disabled")
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpPlatform.RequestIDMiddleware())
	router.Use(httpPlatform.LoggerMiddleware(logger))
	router.Use(httpPlatform.CORSMiddleware())

	// Swagger documentation (available in development)
	if cfg.Server.Env != "production" {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		logger.Info("Swagger UI available at /swagger/index.html")
	}

	// Health check endpoint
	router.GET("/health", healthCheckHandler(ctx, pgClient, redisClient))

	// Ping endpoint
	router.GET("/ping", pingHandler)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Auth middleware
	authMiddleware := auth.AuthMiddleware(jwtManager)

	// Initialize repositories
	userRepository := userRepo.NewUserRepository(pgClient.Pool)
	tokenRepository := authRepo.NewRefreshTokenRepository(pgClient.Pool)
	messagingAccountRepository := messagingAccountRepo.NewMessagingAccountRepository(pgClient.Pool)
	businessProfileRepository := businessProfileRepo.NewBusinessProfileRepository(pgClient.Pool)
	campaignRepository := campaignRepo.NewCampaignRepository(pgClient.Pool)
	leadRepository := leadRepo.NewLeadRepository(pgClient.Pool)
	automationSettingsRepository := automationRepo.NewAutomationSettingsRepository(pgClient.Pool)
	invitationLogRepository := automationRepo.NewInvitationLogRepository(pgClient.Pool)
	sequenceRepository := sequenceRepo.NewSequenceRepository(pgClient.Pool)
	enrollmentRepository := enrollmentRepo.NewEnrollmentRepository(pgClient.Pool)
	analyticsRepository := analyticsRepo.NewAnalyticsRepository(pgClient.Pool)

	// Initialize services
	authSvc := authService.NewAuthService(
		userRepository,
		tokenRepository,
		jwtManager,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	messagingAccountSvc := messagingAccountService.NewMessagingAccountService(messagingAccountRepository, credentialBox)
	businessProfileSvc := businessProfileService.NewBusinessProfileService(businessProfileRepository)
	campaignSvc := campaignService.NewCampaignService(campaignRepository)
	leadSvc := leadService.NewLeadService(leadRepository, businessProfileRepository, lmAnalyzer)
	automationSvc := automationService.NewAutomationSettingsService(automationSettingsRepository, invitationLogRepository)
	sequenceSvc := sequenceService.NewSequenceService(sequenceRepository)
	enrollmentSvc := enrollmentService.NewEnrollmentService(enrollmentRepository, leadRepository, sequenceRepository)
	analyticsSvc := analyticsService.NewAnalyticsService(analyticsRepository, enrollmentRepository, leadRepository, lmAnalyzer)

	// Initialize handlers
	authHdl := authHandler.NewAuthHandler(authSvc)
	messagingAccountHdl := messagingAccountHandler.NewMessagingAccountHandler(messagingAccountSvc)
	businessProfileHdl := businessProfileHandler.NewBusinessProfileHandler(businessProfileSvc)
	campaignHdl := campaignHandler.NewCampaignHandler(campaignSvc)
	leadHdl := leadHandler.NewLeadHandler(leadSvc)
	automationHdl := automationHandler.NewAutomationSettingsHandler(automationSvc)
	sequenceHdl := sequenceHandler.NewSequenceHandler(sequenceSvc)
	enrollmentHdl := enrollmentHandler.NewEnrollmentHandler(enrollmentSvc)
	analyticsHdl := analyticsHandler.NewAnalyticsHandler(analyticsSvc)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Register module routes
		authHdl.RegisterRoutes(v1)
		messagingAccountHdl.RegisterRoutes(v1, authMiddleware)
		businessProfileHdl.RegisterRoutes(v1, authMiddleware)
		campaignHdl.RegisterRoutes(v1, authMiddleware)
		leadHdl.RegisterRoutes(v1, authMiddleware)
		automationHdl.RegisterRoutes(v1, authMiddleware)
		sequenceHdl.RegisterRoutes(v1, authMiddleware)
		enrollmentHdl.RegisterRoutes(v1, authMiddleware)
		analyticsHdl.RegisterRoutes(v1, authMiddleware)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// healthCheckHandler godoc
// @Summary Health Check
// @Description Check the health status of the application and its dependencies
// @Tags system
// @Produce json
// @Success 200 {object} http.HealthResponse
// @Router /health [get]
func healthCheckHandler(ctx context.Context, pgClient *postgres.Client, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		services := make(map[string]string)

		// Check PostgreSQL
		if err := pgClient.Health(ctx); err != nil {
			services["postgres"] = "down"
		} else {
			services["postgres"] = "up"
		}

		// Check Redis
		if err := redisClient.Health(ctx); err != nil {
			services["redis"] = "down"
		} else {
			services["redis"] = "up"
		}

		httpPlatform.RespondWithHealth(c, services)
	}
}

// pingHandler godoc
// @Summary Ping
// @Description Simple ping endpoint to check if the API is responding
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func pingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
