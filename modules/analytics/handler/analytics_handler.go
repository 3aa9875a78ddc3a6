package handler

import (
	"net/http"

	"github.com/outreach-engine/scheduler/internal/platform/auth"
	httpPlatform "github.com/outreach-engine/scheduler/internal/platform/http"
	"github.com/outreach-engine/scheduler/modules/analytics/model"
	"github.com/outreach-engine/scheduler/modules/analytics/service"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetOverview godoc
// @Summary Get pipeline overview
// @Description Get sequence and enrollment rollups for the authenticated user
// @Tags analytics
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.PipelineOverview
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	userID, ok := auth.MustGetUserID(c)
	if !ok {
		return
	}

	overview, err := h.service.GetOverview(c.Request.Context(), userID)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "ANALYTICS_ERROR", "Failed to get pipeline overview")
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, overview)
}

// GetFunnel godoc
// @Summary Get smart pipeline phase funnel
// @Description Get active smart_pipeline enrollment counts per phase
// @Tags analytics
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.PhaseFunnel
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /analytics/funnel [get]
func (h *AnalyticsHandler) GetFunnel(c *gin.Context) {
	userID, ok := auth.MustGetUserID(c)
	if !ok {
		return
	}

	funnel, err := h.service.GetPhaseFunnel(c.Request.Context(), userID)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "ANALYTICS_ERROR", "Failed to get phase funnel")
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, funnel)
}

func (h *AnalyticsHandler) respondAnalysisError(c *gin.Context, err error) {
	code := model.GetErrorCode(err)
	status := http.StatusInternalServerError
	if code == model.CodeLeadHasNoActiveEnrollment {
		status = http.StatusConflict
	}
	httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
}

// DetectSignals godoc
// @Summary Detect buying signals in a lead's conversation
// @Tags analytics
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.BuyingSignalsResult
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Failure 409 {object} httpPlatform.ErrorResponse
// @Router /analytics/leads/{id}/signals [post]
func (h *AnalyticsHandler) DetectSignals(c *gin.Context) {
	userID, ok := auth.MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.service.DetectBuyingSignals(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, result)
}

// StageAdvice godoc
// @Summary Recommend a phase transition for a lead's conversation
// @Tags analytics
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.StageAdvice
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Failure 409 {object} httpPlatform.ErrorResponse
// @Router /analytics/leads/{id}/stage-advice [post]
func (h *AnalyticsHandler) StageAdvice(c *gin.Context) {
	userID, ok := auth.MustGetUserID(c)
	if !ok {
		return
	}

	advice, err := h.service.RecommendStageTransition(c.Request.Context(), userID, c.Param("id"), c.Query("current_phase"))
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, advice)
}

// Sentiment godoc
// @Summary Analyze sentiment of a lead's conversation
// @Tags analytics
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.SentimentReport
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Failure 409 {object} httpPlatform.ErrorResponse
// @Router /analytics/leads/{id}/sentiment [post]
func (h *AnalyticsHandler) Sentiment(c *gin.Context) {
	userID, ok := auth.MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.service.AnalyzeSentiment(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, report)
}

// SuggestReply godoc
// @Summary Draft a human-in-the-loop reply suggestion for a lead's conversation
// @Tags analytics
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} model.ReplySuggestion
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Failure 409 {object} httpPlatform.ErrorResponse
// @Router /analytics/leads/{id}/reply-suggestion [post]
func (h *AnalyticsHandler) SuggestReply(c *gin.Context) {
	userID, ok := auth.MustGetUserID(c)
	if !ok {
		return
	}

	var req model.ReplySuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	suggestion, err := h.service.SuggestReply(c.Request.Context(), userID, c.Param("id"), req.Instruction)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, suggestion)
}

// RegisterRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	analytics := router.Group("/analytics")
	analytics.Use(authMiddleware)
	{
		analytics.GET("/overview", h.GetOverview)
		analytics.GET("/funnel", h.GetFunnel)
		analytics.POST("/leads/:id/signals", h.DetectSignals)
		analytics.POST("/leads/:id/stage-advice", h.StageAdvice)
		analytics.POST("/leads/:id/sentiment", h.Sentiment)
		analytics.POST("/leads/:id/reply-suggestion", h.SuggestReply)
	}
}
