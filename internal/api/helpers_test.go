package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/bookcircle/bookcircle-api/internal/api/shared"
	"github.com/bookcircle/bookcircle-api/internal/domain"
	"github.com/bookcircle/bookcircle-api/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubUserService implements service.UserService with function fields so
// each test configures only the calls it expects.
type stubUserService struct {
	signUpFn        func(ctx context.Context, params service.SignUpParams) (*domain.User, error)
	signInFn        func(ctx context.Context, email, password string) (string, *domain.User, error)
	getUserFn       func(ctx context.Context, userID int64) (*domain.User, error)
	updateDetailsFn func(ctx context.Context, params service.UpdateDetailsParams) error
}

var _ service.UserService = (*stubUserService)(nil)

func (s *stubUserService) SignUp(ctx context.Context, params service.SignUpParams) (*domain.User, error) {
	return s.signUpFn(ctx, params)
}

func (s *stubUserService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubUserService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.getUserFn(ctx, userID)
}

func (s *stubUserService) UpdateDetails(ctx context.Context, params service.UpdateDetailsParams) error {
	return s.updateDetailsFn(ctx, params)
}

// stubGroupService implements service.GroupService the same way.
type stubGroupService struct {
	createGroupFn       func(ctx context.Context, name, description, imageURL string, creatorID int64) (*domain.Group, error)
	sendJoinRequestFn   func(ctx context.Context, groupID, userID int64) error
	removeJoinRequestFn func(ctx context.Context, groupID, userID int64) error
	isAdminFn           func(ctx context.Context, userID, groupID int64) (bool, error)
	acceptUserRequestFn func(ctx context.Context, groupID, userID, adminID int64) error
	removeUserRequestFn func(ctx context.Context, groupID, userID, adminID int64) error
	getGroupsByUserFn   func(ctx context.Context, userID int64) ([]*domain.Group, error)
	getGroupByIDFn      func(ctx context.Context, groupID int64) (*domain.Group, error)
	getMembersFn        func(ctx context.Context, groupID int64) ([]*domain.GroupMember, error)
	getRequestsFn       func(ctx context.Context, groupID int64) ([]*domain.GroupMember, error)
}

var _ service.GroupService = (*stubGroupService)(nil)

func (s *stubGroupService) CreateGroup(ctx context.Context, name, description, imageURL string, creatorID int64) (*domain.Group, error) {
	return s.createGroupFn(ctx, name, description, imageURL, creatorID)
}

func (s *stubGroupService) SendJoinRequest(ctx context.Context, groupID, userID int64) error {
	return s.sendJoinRequestFn(ctx, groupID, userID)
}

func (s *stubGroupService) RemoveJoinRequest(ctx context.Context, groupID, userID int64) error {
	return s.removeJoinRequestFn(ctx, groupID, userID)
}

func (s *stubGroupService) IsAdmin(ctx context.Context, userID, groupID int64) (bool, error) {
	return s.isAdminFn(ctx, userID, groupID)
}

func (s *stubGroupService) AcceptUserRequest(ctx context.Context, groupID, userID, adminID int64) error {
	return s.acceptUserRequestFn(ctx, groupID, userID, adminID)
}

func (s *stubGroupService) RemoveUserRequest(ctx context.Context, groupID, userID, adminID int64) error {
	return s.removeUserRequestFn(ctx, groupID, userID, adminID)
}

func (s *stubGroupService) GetGroupsByUserID(ctx context.Context, userID int64) ([]*domain.Group, error) {
	return s.getGroupsByUserFn(ctx, userID)
}

func (s *stubGroupService) GetGroupByID(ctx context.Context, groupID int64) (*domain.Group, error) {
	return s.getGroupByIDFn(ctx, groupID)
}

func (s *stubGroupService) GetMembersByGroupID(ctx context.Context, groupID int64) ([]*domain.GroupMember, error) {
	return s.getMembersFn(ctx, groupID)
}

func (s *stubGroupService) GetRequestsByGroupID(ctx context.Context, groupID int64) ([]*domain.GroupMember, error) {
	return s.getRequestsFn(ctx, groupID)
}

// stubPostService implements service.PostService.
type stubPostService struct {
	getPostsFn         func(ctx context.Context) ([]*domain.Post, error)
	addBookAndReviewFn func(ctx context.Context, params service.AddBookAndReviewParams) (*domain.Review, error)
}

var _ service.PostService = (*stubPostService)(nil)

func (s *stubPostService) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.getPostsFn(ctx)
}

func (s *stubPostService) AddBookAndReview(ctx context.Context, params service.AddBookAndReviewParams) (*domain.Review, error) {
	return s.addBookAndReviewFn(ctx, params)
}

// newJSONRequest builds a request with a JSON-encoded body.
func newJSONRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser attaches an authenticated user ID to the request context the way
// the auth middleware would.
func asUser(r *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	return r.WithContext(ctx)
}

// withPathParams attaches chi URL parameters so handlers can be exercised
// without a full router.
func withPathParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
