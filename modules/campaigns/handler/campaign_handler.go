package handler

import (
	"net/http"

	"github.com/outreach-engine/scheduler/internal/platform/auth"
	httpPlatform "github.com/outreach-engine/scheduler/internal/platform/http"
	"github.com/outreach-engine/scheduler/modules/campaigns/model"
	"github.com/outreach-engine/scheduler/modules/campaigns/service"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	service *service.CampaignService
}

func NewCampaignHandler(service *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{service: service}
}

func (h *CampaignHandler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req model.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	campaign, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeCampaignNameRequired {
			status = http.StatusBadRequest
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusCreated, campaign)
}

func (h *CampaignHandler) Get(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	campaign, err := h.service.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeCampaignNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, campaign)
}

func (h *CampaignHandler) List(c *gin.Context) {
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

	campaigns, total, err := h.service.List(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	httpPlatform.RespondWithPagination(c, http.StatusOK, campaigns, params.Limit, params.Offset, total)
}

func (h *CampaignHandler) Update(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req model.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	campaign, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		switch code {
		case model.CodeCampaignNotFound:
			status = http.StatusNotFound
		case model.CodeCampaignNameRequired:
			status = http.StatusBadRequest
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, campaign)
}

func (h *CampaignHandler) Delete(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeCampaignNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CampaignHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	campaigns := router.Group("/campaigns")
	campaigns.Use(authMiddleware)
	{
		campaigns.POST("", h.Create)
		campaigns.GET("", h.List)
		campaigns.GET("/:id", h.Get)
		campaigns.PATCH("/:id", h.Update)
		campaigns.DELETE("/:id", h.Delete)
	}
}
