package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/bookcircle/bookcircle-api/internal/api/shared"
	"github.com/bookcircle/bookcircle-api/internal/service"
)

// GroupHandler handles group and membership-workflow API requests.
type GroupHandler struct {
	groupService service.GroupService
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewGroupHandler creates a new GroupHandler with the given dependencies.
func NewGroupHandler(groupService service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		validator:    validator.New(),
		logger:       logger.With("component", "group_handler"),
	}
}

// CreateGroup handles the POST /api/groups endpoint.
// The authenticated user becomes the group's first admin and member.
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateGroupRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), req.Name, req.Description, req.ImageURL, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewGroupResponse(group))
}

// ListMyGroups handles the GET /api/groups endpoint.
// Returns the groups the authenticated user belongs to or has requested to
// join, each annotated with membership status and member count.
func (h *GroupHandler) ListMyGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	groups, err := h.groupService.GetGroupsByUserID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewGroupListResponse(groups))
}

// GetGroup handles the GET /api/groups/{groupID} endpoint.
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := getPathID(r, "groupID")
	if err != nil {
		HandleAPIError(w, r, err, err.Error())
		return
	}

	group, err := h.groupService.GetGroupByID(r.Context(), groupID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewGroupResponse(group))
}

// ListMembers handles the GET /api/groups/{groupID}/members endpoint.
// An empty roster is a valid 200 response with an empty array.
func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := getPathID(r, "groupID")
	if err != nil {
		HandleAPIError(w, r, err, err.Error())
		return
	}

	members, err := h.groupService.GetMembersByGroupID(r.Context(), groupID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, members)
}

// ListRequests handles the GET /api/groups/{groupID}/requests endpoint.
func (h *GroupHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	groupID, err := getPathID(r, "groupID")
	if err != nil {
		HandleAPIError(w, r, err, err.Error())
		return
	}

	requests, err := h.groupService.GetRequestsByGroupID(r.Context(), groupID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, requests)
}

// SendJoinRequest handles the POST /api/groups/{groupID}/requests endpoint.
// The authenticated user requests to join the group.
func (h *GroupHandler) SendJoinRequest(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := requireUserAndPathID(w, r, "groupID")
	if !ok {
		return
	}

	if err := h.groupService.SendJoinRequest(r.Context(), groupID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, map[string]string{
		"message": "Join request sent successfully",
	})
}

// WithdrawJoinRequest handles the DELETE /api/groups/{groupID}/requests
// endpoint. The authenticated user withdraws their own pending request.
func (h *GroupHandler) WithdrawJoinRequest(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := requireUserAndPathID(w, r, "groupID")
	if !ok {
		return
	}

	if err := h.groupService.RemoveJoinRequest(r.Context(), groupID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "Join request successfully removed",
	})
}

// AcceptJoinRequest handles the POST
// /api/groups/{groupID}/requests/{userID}/accept endpoint. Only group
// admins may accept; the requester becomes a member atomically.
func (h *GroupHandler) AcceptJoinRequest(w http.ResponseWriter, r *http.Request) {
	adminID, groupID, ok := requireUserAndPathID(w, r, "groupID")
	if !ok {
		return
	}

	userID, err := getPathID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, err.Error())
		return
	}

	if err := h.groupService.AcceptUserRequest(r.Context(), groupID, userID, adminID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "User successfully added to the group",
	})
}

// RejectJoinRequest handles the POST
// /api/groups/{groupID}/requests/{userID}/reject endpoint.
func (h *GroupHandler) RejectJoinRequest(w http.ResponseWriter, r *http.Request) {
	adminID, groupID, ok := requireUserAndPathID(w, r, "groupID")
	if !ok {
		return
	}

	userID, err := getPathID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, err.Error())
		return
	}

	if err := h.groupService.RemoveUserRequest(r.Context(), groupID, userID, adminID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "User request successfully removed",
	})
}
