package domain

import (
	"errors"
	"strings"
	"time"
)

// Group-specific validation errors.
var (
	ErrEmptyGroupName   = errors.New("group name cannot be empty")
	ErrGroupNameTooLong = errors.New("group name must be at most 100 characters long")
)

// MembershipStatus describes the relationship between a viewing user and a
// group: full member, pending join request, or no relationship at all.
type MembershipStatus string

const (
	// MembershipMember marks an active member of the group.
	MembershipMember MembershipStatus = "member"

	// MembershipRequested marks a user with a pending join request.
	MembershipRequested MembershipStatus = "requested"

	// MembershipNone marks a user with no relationship to the group.
	MembershipNone MembershipStatus = ""
)

// Group represents a reading group. MemberCount and MembershipStatus are
// derived values computed by the store relative to a viewing user; they are
// not persisted columns.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`

	MemberCount      int              `json:"member_count"`
	MembershipStatus MembershipStatus `json:"membership_status,omitempty"`
}

// NewGroup creates a new Group with the given fields.
func NewGroup(name, description, imageURL string) (*Group, error) {
	group := &Group{
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		CreatedAt:   time.Now().UTC(),
	}

	if err := group.Validate(); err != nil {
		return nil, err
	}

	return group, nil
}

// Validate checks if the Group has valid data.
func (g *Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyGroupName
	}
	if len(g.Name) > 100 {
		return ErrGroupNameTooLong
	}
	return nil
}

// GroupMember is the projection of a user as listed in a group's member or
// join-request roster.
type GroupMember struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
}

// JoinRequest represents a pending request by a user to join a group,
// optionally suggested by another member.
type JoinRequest struct {
	GroupID     int64  `json:"group_id"`
	UserID      int64  `json:"user_id"`
	SuggesterID *int64 `json:"suggester_id,omitempty"`
}
