package handler

import (
	"net/http"

	"github.com/outreach-engine/scheduler/internal/platform/auth"
	httpPlatform "github.com/outreach-engine/scheduler/internal/platform/http"
	"github.com/outreach-engine/scheduler/modules/messagingaccounts/model"
	"github.com/outreach-engine/scheduler/modules/messagingaccounts/service"

	"github.com/gin-gonic/gin"
)

// MessagingAccountHandler exposes connect/disconnect/status over HTTP.
type MessagingAccountHandler struct {
	service *service.MessagingAccountService
}

func NewMessagingAccountHandler(service *service.MessagingAccountService) *MessagingAccountHandler {
	return &MessagingAccountHandler{service: service}
}

type connectRequest struct {
	ExternalAccountID string `json:"external_account_id" binding:"required"`
	APIKey            string `json:"api_key" binding:"required"`
}

func (h *MessagingAccountHandler) Connect(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	account, err := h.service.Connect(c.Request.Context(), userID, req.ExternalAccountID, req.APIKey)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeAPIKeyRequired {
			status = http.StatusBadRequest
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, account)
}

func (h *MessagingAccountHandler) Disconnect(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.service.Disconnect(c.Request.Context(), userID); err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeMessagingAccountNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{"disconnected": true})
}

func (h *MessagingAccountHandler) Status(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	account, err := h.service.GetStatus(c.Request.Context(), userID)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeMessagingAccountNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, account)
}

// RegisterRoutes registers messaging-account routes.
func (h *MessagingAccountHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	accounts := router.Group("/messaging-account")
	accounts.Use(authMiddleware)
	{
		accounts.POST("/connect", h.Connect)
		accounts.POST("/disconnect", h.Disconnect)
		accounts.GET("/status", h.Status)
	}
}
