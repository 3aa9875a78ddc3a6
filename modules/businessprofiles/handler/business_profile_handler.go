package handler

import (
	"net/http"

	"github.com/outreach-engine/scheduler/internal/platform/auth"
	httpPlatform "github.com/outreach-engine/scheduler/internal/platform/http"
	"github.com/outreach-engine/scheduler/modules/businessprofiles/model"
	"github.com/outreach-engine/scheduler/modules/businessprofiles/service"

	"github.com/gin-gonic/gin"
)

type BusinessProfileHandler struct {
	service *service.BusinessProfileService
}

func NewBusinessProfileHandler(service *service.BusinessProfileService) *BusinessProfileHandler {
	return &BusinessProfileHandler{service: service}
}

func (h *BusinessProfileHandler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req model.CreateBusinessProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	profile, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeSenderNameRequired {
			status = http.StatusBadRequest
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusCreated, profile)
}

func (h *BusinessProfileHandler) List(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	profiles, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, profiles)
}

func (h *BusinessProfileHandler) SetDefault(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.service.SetDefault(c.Request.Context(), userID, c.Param("id")); err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeBusinessProfileNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{"is_default": true})
}

func (h *BusinessProfileHandler) Delete(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		code := model.GetErrorCode(err)
		status := http.StatusInternalServerError
		if code == model.CodeBusinessProfileNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(code), model.GetErrorMessage(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *BusinessProfileHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	profiles := router.Group("/business-profiles")
	profiles.Use(authMiddleware)
	{
		profiles.POST("", h.Create)
		profiles.GET("", h.List)
		profiles.POST("/:id/default", h.SetDefault)
		profiles.DELETE("/:id", h.Delete)
	}
}
