package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookcircle/bookcircle-api/internal/domain"
	"github.com/bookcircle/bookcircle-api/internal/service"
	"github.com/bookcircle/bookcircle-api/internal/store"
)

func TestUpdateDetailsHandler(t *testing.T) {
	t.Parallel()

	var gotParams service.UpdateDetailsParams
	userService := &stubUserService{
		updateDetailsFn: func(_ context.Context, params service.UpdateDetailsParams) error {
			gotParams = params
			return nil
		},
	}
	handler := NewUserHandler(userService, testLogger())

	req := newJSONRequest(t, http.MethodPut, "/api/user", map[string]interface{}{
		"username":    "alice-updated",
		"email":       "alice-new@example.com",
		"password":    "newpassword456",
		"description": "still reading",
	})
	rec := httptest.NewRecorder()
	handler.UpdateDetails(rec, asUser(req, 7))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotParams.UserID, "the target user comes from the token, not the payload")
	assert.Equal(t, "alice-updated", gotParams.Username)

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "alice-new@example.com", resp.Email)
	assert.Empty(t, resp.Token)
}

func TestUpdateDetailsHandler_Unauthenticated(t *testing.T) {
	t.Parallel()

	handler := NewUserHandler(&stubUserService{}, testLogger())

	req := newJSONRequest(t, http.MethodPut, "/api/user", map[string]interface{}{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	rec := httptest.NewRecorder()
	handler.UpdateDetails(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProfileHandler(t *testing.T) {
	t.Parallel()

	var gotUserID int64
	userService := &stubUserService{
		getUserFn: func(_ context.Context, userID int64) (*domain.User, error) {
			gotUserID = userID
			return &domain.User{
				ID:          userID,
				Username:    "alice",
				Email:       "alice@example.com",
				ImageURL:    "https://img.example.com/a.png",
				Description: "avid reader",
			}, nil
		},
	}
	handler := NewUserHandler(userService, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	rec := httptest.NewRecorder()
	handler.GetProfile(rec, asUser(req, 7))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotUserID, "the profile comes from the token's user")

	var resp UserResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.Equal(t, "avid reader", resp.Description)
}

func TestGetProfileHandler_Unauthenticated(t *testing.T) {
	t.Parallel()

	handler := NewUserHandler(&stubUserService{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	rec := httptest.NewRecorder()
	handler.GetProfile(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProfileHandler_UnknownUser(t *testing.T) {
	t.Parallel()

	userService := &stubUserService{
		getUserFn: func(context.Context, int64) (*domain.User, error) {
			return nil, store.ErrUserNotFound
		},
	}
	handler := NewUserHandler(userService, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	rec := httptest.NewRecorder()
	handler.GetProfile(rec, asUser(req, 7))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateDetailsHandler_EmailConflict(t *testing.T) {
	t.Parallel()

	userService := &stubUserService{
		updateDetailsFn: func(context.Context, service.UpdateDetailsParams) error {
			return store.ErrEmailExists
		},
	}
	handler := NewUserHandler(userService, testLogger())

	req := newJSONRequest(t, http.MethodPut, "/api/user", map[string]interface{}{
		"username": "alice",
		"email":    "taken@example.com",
		"password": "password123",
	})
	rec := httptest.NewRecorder()
	handler.UpdateDetails(rec, asUser(req, 7))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateDetailsHandler_InvalidPayload(t *testing.T) {
	t.Parallel()

	handler := NewUserHandler(&stubUserService{}, testLogger())

	req := newJSONRequest(t, http.MethodPut, "/api/user", map[string]interface{}{
		"username": "alice",
		"email":    "not-an-email",
		"password": "password123",
	})
	rec := httptest.NewRecorder()
	handler.UpdateDetails(rec, asUser(req, 7))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
