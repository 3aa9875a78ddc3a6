package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/outreach-engine/scheduler/modules/businessprofiles/model"
	"github.com/outreach-engine/scheduler/modules/businessprofiles/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBusinessProfileRepository struct {
	CreateFunc       func(ctx context.Context, profile *model.BusinessProfile) error
	GetByIDFunc      func(ctx context.Context, userID, profileID string) (*model.BusinessProfile, error)
	GetDefaultFunc   func(ctx context.Context, userID string) (*model.BusinessProfile, error)
	ListFunc         func(ctx context.Context, userID string) ([]*model.BusinessProfile, error)
	UpdateFunc       func(ctx context.Context, profile *model.BusinessProfile) error
	DeleteFunc       func(ctx context.Context, userID, profileID string) error
	ClearDefaultFunc func(ctx context.Context, userID, keepID string) error
}

func (m *mockBusinessProfileRepository) Create(ctx context.Context, profile *model.BusinessProfile) error {
	return m.CreateFunc(ctx, profile)
}
func (m *mockBusinessProfileRepository) GetByID(ctx context.Context, userID, profileID string) (*model.BusinessProfile, error) {
	return m.GetByIDFunc(ctx, userID, profileID)
}
func (m *mockBusinessProfileRepository) GetDefault(ctx context.Context, userID string) (*model.BusinessProfile, error) {
	return m.GetDefaultFunc(ctx, userID)
}
func (m *mockBusinessProfileRepository) List(ctx context.Context, userID string) ([]*model.BusinessProfile, error) {
	return m.ListFunc(ctx, userID)
}
func (m *mockBusinessProfileRepository) Update(ctx context.Context, profile *model.BusinessProfile) error {
	return m.UpdateFunc(ctx, profile)
}
func (m *mockBusinessProfileRepository) Delete(ctx context.Context, userID, profileID string) error {
	return m.DeleteFunc(ctx, userID, profileID)
}
func (m *mockBusinessProfileRepository) ClearDefault(ctx context.Context, userID, keepID string) error {
	return m.ClearDefaultFunc(ctx, userID, keepID)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func mockAuthMiddleware(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func TestBusinessProfileHandler_Create(t *testing.T) {
	userID := "user-123"

	t.Run("creates profile successfully", func(t *testing.T) {
		repo := &mockBusinessProfileRepository{
			CreateFunc: func(ctx context.Context, profile *model.BusinessProfile) error {
				profile.ID = "profile-1"
				return nil
			},
		}
		svc := service.NewBusinessProfileService(repo)
		h := NewBusinessProfileHandler(svc)

		router := setupTestRouter()
		router.POST("/business-profiles", mockAuthMiddleware(userID), h.Create)

		body := `{"name":"Default","sender_name":"Priya Natarajan"}`
		req, _ := http.NewRequest(http.MethodPost, "/business-profiles", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("returns 400 when sender name is missing", func(t *testing.T) {
		repo := &mockBusinessProfileRepository{}
		svc := service.NewBusinessProfileService(repo)
		h := NewBusinessProfileHandler(svc)

		router := setupTestRouter()
		router.POST("/business-profiles", mockAuthMiddleware(userID), h.Create)

		body := `{"name":"Default"}`
		req, _ := http.NewRequest(http.MethodPost, "/business-profiles", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 401 when not authenticated", func(t *testing.T) {
		repo := &mockBusinessProfileRepository{}
		svc := service.NewBusinessProfileService(repo)
		h := NewBusinessProfileHandler(svc)

		router := setupTestRouter()
		router.POST("/business-profiles", h.Create)

		req, _ := http.NewRequest(http.MethodPost, "/business-profiles", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBusinessProfileHandler_List(t *testing.T) {
	userID := "user-123"
	repo := &mockBusinessProfileRepository{
		ListFunc: func(ctx context.Context, uid string) ([]*model.BusinessProfile, error) {
			return []*model.BusinessProfile{{ID: "profile-1", UserID: userID, Name: "Default"}}, nil
		},
	}
	svc := service.NewBusinessProfileService(repo)
	h := NewBusinessProfileHandler(svc)

	router := setupTestRouter()
	router.GET("/business-profiles", mockAuthMiddleware(userID), h.List)

	req, _ := http.NewRequest(http.MethodGet, "/business-profiles", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var profiles []model.BusinessProfileDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "Default", profiles[0].Name)
}

func TestBusinessProfileHandler_SetDefault(t *testing.T) {
	t.Run("returns 404 when profile not found", func(t *testing.T) {
		repo := &mockBusinessProfileRepository{
			GetByIDFunc: func(ctx context.Context, userID, profileID string) (*model.BusinessProfile, error) {
				return nil, model.ErrBusinessProfileNotFound
			},
		}
		svc := service.NewBusinessProfileService(repo)
		h := NewBusinessProfileHandler(svc)

		router := setupTestRouter()
		router.POST("/business-profiles/:id/default", mockAuthMiddleware("user-123"), h.SetDefault)

		req, _ := http.NewRequest(http.MethodPost, "/business-profiles/nonexistent/default", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBusinessProfileHandler_Delete(t *testing.T) {
	repo := &mockBusinessProfileRepository{
		DeleteFunc: func(ctx context.Context, userID, profileID string) error {
			return nil
		},
	}
	svc := service.NewBusinessProfileService(repo)
	h := NewBusinessProfileHandler(svc)

	router := setupTestRouter()
	router.DELETE("/business-profiles/:id", mockAuthMiddleware("user-123"), h.Delete)

	req, _ := http.NewRequest(http.MethodDelete, "/business-profiles/profile-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
