package handler

import (
	"net/http"

	"github.com/outreach-engine/scheduler/internal/platform/auth"
	httpPlatform "github.com/outreach-engine/scheduler/internal/platform/http"
	"github.com/outreach-engine/scheduler/modules/leads/model"
	"github.com/outreach-engine/scheduler/modules/leads/ports"
	"github.com/outreach-engine/scheduler/modules/leads/service"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	service *service.LeadService
}

func NewLeadHandler(service *service.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

func (h *LeadHandler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req model.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	lead, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeExternalProfileURLRequired {
			status = http.StatusBadRequest
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusCreated, lead)
}

func (h *LeadHandler) Get(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	lead, err := h.service.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeLeadNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, lead)
}

func (h *LeadHandler) List(c *gin.Context) {
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

	opts := &ports.ListOptions{Limit: params.Limit, Offset: params.Offset}
	if campaignID := c.Query("campaign_id"); campaignID != "" {
		opts.CampaignID = &campaignID
	}
	if status := c.Query("status"); status != "" {
		opts.Status = &status
	}

	leads, total, err := h.service.List(c.Request.Context(), userID, opts)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	httpPlatform.RespondWithPagination(c, http.StatusOK, leads, params.Limit, params.Offset, total)
}

func (h *LeadHandler) Update(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req model.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	lead, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeLeadNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, lead)
}

func (h *LeadHandler) Delete(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeLeadNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	c.Status(http.StatusNoContent)
}

// ParseSearch translates a free-text search query into structured lead
// filters. Read-only: callers still drive List with the returned filters.
func (h *LeadHandler) ParseSearch(c *gin.Context) {
	if _, exists := auth.GetUserID(c); !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req model.SearchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	result, err := h.service.ParseSearchFilters(c.Request.Context(), req.Query)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "SEARCH_PARSE_ERROR", "Failed to parse search query")
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, result)
}

// Score runs the LM lead scorer and persists the verdict onto the lead.
func (h *LeadHandler) Score(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	lead, err := h.service.Score(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeLeadNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, lead)
}

func (h *LeadHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	leads := router.Group("/leads")
	leads.Use(authMiddleware)
	{
		leads.POST("", h.Create)
		leads.GET("", h.List)
		leads.POST("/search/parse", h.ParseSearch)
		leads.GET("/:id", h.Get)
		leads.PATCH("/:id", h.Update)
		leads.DELETE("/:id", h.Delete)
		leads.POST("/:id/score", h.Score)
	}
}
