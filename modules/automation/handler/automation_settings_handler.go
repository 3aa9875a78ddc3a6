package handler

import (
	"net/http"

	"github.com/outreach-engine/scheduler/internal/platform/auth"
	httpPlatform "github.com/outreach-engine/scheduler/internal/platform/http"
	"github.com/outreach-engine/scheduler/modules/automation/model"
	"github.com/outreach-engine/scheduler/modules/automation/service"

	"github.com/gin-gonic/gin"
)

type AutomationSettingsHandler struct {
	service *service.AutomationSettingsService
}

func NewAutomationSettingsHandler(service *service.AutomationSettingsService) *AutomationSettingsHandler {
	return &AutomationSettingsHandler{service: service}
}

func (h *AutomationSettingsHandler) Get(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	settings, err := h.service.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, settings)
}

func (h *AutomationSettingsHandler) Update(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req model.UpdateAutomationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	settings, err := h.service.Update(c.Request.Context(), userID, &req)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		switch code {
		case model.CodeInvalidTimezone, model.CodeInvalidDelayRange, model.CodeDailyLimitExceedsCap:
			status = http.StatusBadRequest
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, settings)
}

func (h *AutomationSettingsHandler) ListInvitationLogs(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	params, err := httpPlatform.ParsePaginationParams(c)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid pagination parameters")
		return
	}

	logs, total, err := h.service.ListInvitationLogs(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	httpPlatform.RespondWithPagination(c, http.StatusOK, logs, params.Limit, params.Offset, total)
}

func (h *AutomationSettingsHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	automation := router.Group("/automation")
	automation.Use(authMiddleware)
	{
		automation.GET("/settings", h.Get)
		automation.PATCH("/settings", h.Update)
		automation.GET("/invitation-logs", h.ListInvitationLogs)
	}
}
