package handler

import (
	"errors"
	"net/http"

	"github.com/outreach-engine/scheduler/internal/platform/auth"
	httpPlatform "github.com/outreach-engine/scheduler/internal/platform/http"
	"github.com/outreach-engine/scheduler/modules/enrollments/model"
	"github.com/outreach-engine/scheduler/modules/enrollments/service"
	sequenceModel "github.com/outreach-engine/scheduler/modules/sequences/model"

	"github.com/gin-gonic/gin"
)

// errorResponse translates a domain error into an HTTP status and body,
// recognizing both the enrollments and sequences error sentinels since
// enrollment operations read through to a sequence.
func errorResponse(c *gin.Context, err error) {
	if errors.Is(err, sequenceModel.ErrSequenceNotFound) {
		httpPlatform.RespondWithError(c, http.StatusNotFound, string(sequenceModel.CodeSequenceNotFound), sequenceModel.GetErrorMessage(err))
		return
	}
	code := model.GetErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case model.CodeSequenceNotActivatable:
		status = http.StatusBadRequest
	case model.CodeEnrollmentNotFound:
		status = http.StatusNotFound
	}
	httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
}

type EnrollmentHandler struct {
	service *service.EnrollmentService
}

func NewEnrollmentHandler(service *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req model.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	result, err := h.service.Enroll(c.Request.Context(), userID, &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, result)
}

func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req struct {
		LeadIDs []string `json:"lead_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	if err := h.service.Unenroll(c.Request.Context(), userID, c.Param("id"), req.LeadIDs); err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *EnrollmentHandler) Pause(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	count, err := h.service.PauseSequence(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{"paused_count": count})
}

func (h *EnrollmentHandler) Resume(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	count, err := h.service.ResumeSequence(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{"resumed_count": count})
}

func (h *EnrollmentHandler) Archive(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.service.ArchiveSequence(c.Request.Context(), userID, c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *EnrollmentHandler) List(c *gin.Context) {
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

	enrollments, total, err := h.service.ListBySequence(c.Request.Context(), userID, c.Param("id"), params.Limit, params.Offset)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	httpPlatform.RespondWithPagination(c, http.StatusOK, enrollments, params.Limit, params.Offset, total)
}

func (h *EnrollmentHandler) Stats(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, stats)
}

func (h *EnrollmentHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	sequences := router.Group("/sequences")
	sequences.Use(authMiddleware)
	{
		sequences.POST("/enroll", h.Enroll)
		sequences.POST("/:id/unenroll", h.Unenroll)
		sequences.POST("/:id/pause", h.Pause)
		sequences.POST("/:id/resume", h.Resume)
		sequences.POST("/:id/archive", h.Archive)
		sequences.GET("/:id/enrollments", h.List)
		sequences.GET("/:id/stats", h.Stats)
	}
}
