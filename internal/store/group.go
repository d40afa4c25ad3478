package store

import (
	"context"
	"database/sql"

	"github.com/bookcircle/bookcircle-api/internal/domain"
)

// GroupStore defines the interface for group, membership, and join-request
// persistence. A (group, user) pair moves between three states: no
// relation, a pending join request, and full membership. Transitions that
// touch more than one table are orchestrated by the group service inside a
// transaction via WithTx.
type GroupStore interface {
	// CreateGroup inserts the group row and populates its ID. It does NOT
	// create the creator's admin/member relations; the service wraps this
	// together with AddAdmin and AddMember in one transaction.
	CreateGroup(ctx context.Context, group *domain.Group) error

	// AddAdmin grants a user administrative privilege over a group.
	// Returns ErrDuplicate if the relation already exists and
	// ErrInvalidEntity if the group or user does not exist.
	AddAdmin(ctx context.Context, groupID, userID int64) error

	// AddMember records a user as an active member of a group.
	// Returns ErrAlreadyMember if the relation already exists and
	// ErrInvalidEntity if the group or user does not exist.
	AddMember(ctx context.Context, groupID, userID int64) error

	// IsAdmin reports whether an admin relation exists for the pair.
	IsAdmin(ctx context.Context, userID, groupID int64) (bool, error)

	// IsMember reports whether a member relation exists for the pair.
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)

	// CreateJoinRequest inserts a pending join request.
	// Returns ErrRequestExists if one already exists for the pair and
	// ErrInvalidEntity if the group or user does not exist.
	CreateJoinRequest(ctx context.Context, req *domain.JoinRequest) error

	// DeleteJoinRequest removes a pending join request.
	// Returns ErrRequestNotFound if no such request exists.
	DeleteJoinRequest(ctx context.Context, groupID, userID int64) error

	// GetGroupByID retrieves a single group with its derived member count.
	// Returns ErrGroupNotFound if the group does not exist.
	GetGroupByID(ctx context.Context, groupID int64) (*domain.Group, error)

	// GetGroupsByUserID returns all groups where the user is a member or
	// has a pending join request, each annotated with the user's
	// membership status and the live member count. Membership takes
	// precedence over a pending request should both rows exist.
	GetGroupsByUserID(ctx context.Context, userID int64) ([]*domain.Group, error)

	// GetMembersByGroupID lists the members of a group. A group with no
	// members yields an empty slice, not an error; ErrGroupNotFound is
	// returned only when the group itself is absent.
	GetMembersByGroupID(ctx context.Context, groupID int64) ([]*domain.GroupMember, error)

	// GetRequestsByGroupID lists the users with pending join requests for
	// a group, with the same empty-slice semantics as GetMembersByGroupID.
	GetRequestsByGroupID(ctx context.Context, groupID int64) ([]*domain.GroupMember, error)

	// WithTx returns a new GroupStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) GroupStore
}
