package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookcircle/bookcircle-api/internal/domain"
	"github.com/bookcircle/bookcircle-api/internal/store"
)

// GroupService provides group lifecycle and membership workflow operations.
// A (group, user) pair transitions between three states: no relation, a
// pending join request, and full membership. All multi-table transitions
// run inside a single transaction so a crash or a concurrent moderator can
// never leave the pair in a half-state.
type GroupService interface {
	// CreateGroup creates a group and makes the creator both admin and
	// member, atomically. The returned group has MemberCount 1.
	CreateGroup(ctx context.Context, name, description, imageURL string, creatorID int64) (*domain.Group, error)

	// SendJoinRequest records a user's intent to join a group.
	// Returns store.ErrAlreadyMember if the user already belongs to the
	// group and store.ErrRequestExists if a request is already pending.
	SendJoinRequest(ctx context.Context, groupID, userID int64) error

	// RemoveJoinRequest withdraws the user's own pending request.
	// Returns store.ErrRequestNotFound if no request exists.
	RemoveJoinRequest(ctx context.Context, groupID, userID int64) error

	// IsAdmin reports whether the user holds an admin relation for the group.
	IsAdmin(ctx context.Context, userID, groupID int64) (bool, error)

	// AcceptUserRequest promotes a pending request to full membership,
	// atomically deleting the request row and inserting the member row.
	// Returns ErrNotGroupAdmin if adminID is not an admin of the group,
	// and store.ErrRequestNotFound if the request is gone (including the
	// case of a concurrent moderator having already consumed it).
	AcceptUserRequest(ctx context.Context, groupID, userID, adminID int64) error

	// RemoveUserRequest rejects a pending request.
	// Same authorization and not-found semantics as AcceptUserRequest.
	RemoveUserRequest(ctx context.Context, groupID, userID, adminID int64) error

	// GetGroupsByUserID lists the groups the user belongs to or has
	// requested to join, annotated with membership status and member count.
	GetGroupsByUserID(ctx context.Context, userID int64) ([]*domain.Group, error)

	// GetGroupByID retrieves a single group with its member count.
	GetGroupByID(ctx context.Context, groupID int64) (*domain.Group, error)

	// GetMembersByGroupID lists the group's members. An empty roster is an
	// empty slice, not an error.
	GetMembersByGroupID(ctx context.Context, groupID int64) ([]*domain.GroupMember, error)

	// GetRequestsByGroupID lists the group's pending join requests, with
	// the same empty-slice semantics.
	GetRequestsByGroupID(ctx context.Context, groupID int64) ([]*domain.GroupMember, error)
}

// GroupServiceImpl implements the GroupService interface.
type GroupServiceImpl struct {
	groupStore store.GroupStore
	db         *sql.DB
	logger     *slog.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(groupStore store.GroupStore, db *sql.DB, logger *slog.Logger) *GroupServiceImpl {
	return &GroupServiceImpl{
		groupStore: groupStore,
		db:         db,
		logger:     logger.With("component", "group_service"),
	}
}

var _ GroupService = (*GroupServiceImpl)(nil)

// CreateGroup creates a group and its creator's admin and member relations
// in one transaction. Any failure rolls back all three inserts, so an
// orphan group row is never visible.
func (s *GroupServiceImpl) CreateGroup(
	ctx context.Context,
	name, description, imageURL string,
	creatorID int64,
) (*domain.Group, error) {
	group, err := domain.NewGroup(name, description, imageURL)
	if err != nil {
		s.logger.Debug("group payload failed domain validation", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.groupStore.WithTx(tx)

		if err := txStore.CreateGroup(ctx, group); err != nil {
			return err
		}
		if err := txStore.AddAdmin(ctx, group.ID, creatorID); err != nil {
			return err
		}
		return txStore.AddMember(ctx, group.ID, creatorID)
	})
	if err != nil {
		s.logger.Error("failed to create group",
			"error", err,
			"group_name", name,
			"creator_id", creatorID)
		return nil, err
	}

	group.MemberCount = 1
	group.MembershipStatus = domain.MembershipMember

	s.logger.Info("group created",
		"group_id", group.ID,
		"creator_id", creatorID)
	return group, nil
}

// SendJoinRequest records a pending join request for the pair.
// Existing membership is checked first so the caller gets the more specific
// conflict; the unique constraint on the request table closes the race.
func (s *GroupServiceImpl) SendJoinRequest(ctx context.Context, groupID, userID int64) error {
	isMember, err := s.groupStore.IsMember(ctx, groupID, userID)
	if err != nil {
		s.logger.Error("failed to check membership before join request",
			"error", err,
			"group_id", groupID,
			"user_id", userID)
		return err
	}
	if isMember {
		s.logger.Debug("join request rejected: already a member",
			"group_id", groupID,
			"user_id", userID)
		return store.ErrAlreadyMember
	}

	req := &domain.JoinRequest{GroupID: groupID, UserID: userID}
	if err := s.groupStore.CreateJoinRequest(ctx, req); err != nil {
		return err
	}

	s.logger.Info("join request sent",
		"group_id", groupID,
		"user_id", userID)
	return nil
}

// RemoveJoinRequest withdraws the user's own pending request.
func (s *GroupServiceImpl) RemoveJoinRequest(ctx context.Context, groupID, userID int64) error {
	if err := s.groupStore.DeleteJoinRequest(ctx, groupID, userID); err != nil {
		return err
	}

	s.logger.Info("join request withdrawn",
		"group_id", groupID,
		"user_id", userID)
	return nil
}

// IsAdmin reports whether the user is an admin of the group.
func (s *GroupServiceImpl) IsAdmin(ctx context.Context, userID, groupID int64) (bool, error) {
	return s.groupStore.IsAdmin(ctx, userID, groupID)
}

// requireAdmin returns ErrNotGroupAdmin unless adminID holds an admin
// relation for the group.
func (s *GroupServiceImpl) requireAdmin(ctx context.Context, adminID, groupID int64) error {
	isAdmin, err := s.groupStore.IsAdmin(ctx, adminID, groupID)
	if err != nil {
		s.logger.Error("failed to check admin status",
			"error", err,
			"group_id", groupID,
			"admin_id", adminID)
		return err
	}
	if !isAdmin {
		s.logger.Debug("moderation rejected: not a group admin",
			"group_id", groupID,
			"admin_id", adminID)
		return ErrNotGroupAdmin
	}
	return nil
}

// AcceptUserRequest promotes a pending join request to membership.
// The delete and insert run in one transaction: if the request row is
// already gone (concurrent accept/reject), the delete affects zero rows,
// the transaction rolls back, and the caller sees ErrRequestNotFound.
func (s *GroupServiceImpl) AcceptUserRequest(ctx context.Context, groupID, userID, adminID int64) error {
	if err := s.requireAdmin(ctx, adminID, groupID); err != nil {
		return err
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.groupStore.WithTx(tx)

		if err := txStore.DeleteJoinRequest(ctx, groupID, userID); err != nil {
			return err
		}
		return txStore.AddMember(ctx, groupID, userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrRequestNotFound) {
			s.logger.Debug("accept failed: no pending request",
				"group_id", groupID,
				"user_id", userID)
		} else {
			s.logger.Error("failed to accept join request",
				"error", err,
				"group_id", groupID,
				"user_id", userID)
		}
		return err
	}

	s.logger.Info("join request accepted",
		"group_id", groupID,
		"user_id", userID,
		"admin_id", adminID)
	return nil
}

// RemoveUserRequest rejects a pending join request.
func (s *GroupServiceImpl) RemoveUserRequest(ctx context.Context, groupID, userID, adminID int64) error {
	if err := s.requireAdmin(ctx, adminID, groupID); err != nil {
		return err
	}

	if err := s.groupStore.DeleteJoinRequest(ctx, groupID, userID); err != nil {
		return err
	}

	s.logger.Info("join request rejected",
		"group_id", groupID,
		"user_id", userID,
		"admin_id", adminID)
	return nil
}

// GetGroupsByUserID lists the user's groups and pending requests.
func (s *GroupServiceImpl) GetGroupsByUserID(ctx context.Context, userID int64) ([]*domain.Group, error) {
	return s.groupStore.GetGroupsByUserID(ctx, userID)
}

// GetGroupByID retrieves a single group.
func (s *GroupServiceImpl) GetGroupByID(ctx context.Context, groupID int64) (*domain.Group, error) {
	return s.groupStore.GetGroupByID(ctx, groupID)
}

// GetMembersByGroupID lists a group's members.
func (s *GroupServiceImpl) GetMembersByGroupID(ctx context.Context, groupID int64) ([]*domain.GroupMember, error) {
	return s.groupStore.GetMembersByGroupID(ctx, groupID)
}

// GetRequestsByGroupID lists a group's pending join requests.
func (s *GroupServiceImpl) GetRequestsByGroupID(ctx context.Context, groupID int64) ([]*domain.GroupMember, error) {
	return s.groupStore.GetRequestsByGroupID(ctx, groupID)
}
