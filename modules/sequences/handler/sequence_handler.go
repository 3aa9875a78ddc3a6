package handler

import (
	"net/http"

	"github.com/outreach-engine/scheduler/internal/platform/auth"
	httpPlatform "github.com/outreach-engine/scheduler/internal/platform/http"
	"github.com/outreach-engine/scheduler/modules/sequences/model"
	"github.com/outreach-engine/scheduler/modules/sequences/ports"
	"github.com/outreach-engine/scheduler/modules/sequences/service"

	"github.com/gin-gonic/gin"
)

type SequenceHandler struct {
	service *service.SequenceService
}

func NewSequenceHandler(service *service.SequenceService) *SequenceHandler {
	return &SequenceHandler{service: service}
}

func (h *SequenceHandler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req model.CreateSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	sequence, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		switch code {
		case model.CodeSequenceNameRequired, model.CodeInvalidSequenceMode, model.CodeClassicRequiresSteps:
			status = http.StatusBadRequest
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusCreated, sequence)
}

func (h *SequenceHandler) Get(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	sequence, err := h.service.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeSequenceNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, sequence)
}

func (h *SequenceHandler) List(c *gin.Context) {
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
	if mode := c.Query("mode"); mode != "" {
		opts.Mode = &mode
	}
	if status := c.Query("status"); status != "" {
		opts.Status = &status
	}

	sequences, total, err := h.service.List(c.Request.Context(), userID, opts)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	httpPlatform.RespondWithPagination(c, http.StatusOK, sequences, params.Limit, params.Offset, total)
}

func (h *SequenceHandler) Update(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req model.UpdateSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	sequence, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		switch code {
		case model.CodeSequenceNotFound:
			status = http.StatusNotFound
		case model.CodeSequenceNameRequired, model.CodeInvalidSequenceStatus:
			status = http.StatusBadRequest
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, sequence)
}

func (h *SequenceHandler) Delete(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeSequenceNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SequenceHandler) ReplaceSteps(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req struct {
		Steps []model.CreateSequenceStepRequest `json:"steps" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	sequence, err := h.service.ReplaceSteps(c.Request.Context(), userID, c.Param("id"), req.Steps)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		switch code {
		case model.CodeSequenceNotFound:
			status = http.StatusNotFound
		case model.CodeInvalidSequenceMode, model.CodeClassicRequiresSteps:
			status = http.StatusBadRequest
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, sequence)
}

func (h *SequenceHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	sequences := router.Group("/sequences")
	sequences.Use(authMiddleware)
	{
		sequences.POST("", h.Create)
		sequences.GET("", h.List)
		sequences.GET("/:id", h.Get)
		sequences.PATCH("/:id", h.Update)
		sequences.DELETE("/:id", h.Delete)
		sequences.PUT("/:id/steps", h.ReplaceSteps)
	}
}
