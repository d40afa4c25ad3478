package api

import (
	"time"

	"github.com/bookcircle/bookcircle-api/internal/domain"
)

// Common request/response structures

// SignUpRequest defines the payload for the user registration endpoint.
type SignUpRequest struct {
	Username    string `json:"username"    validate:"required,min=3,max=30"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8,max=72"`
	ImageURL    string `json:"image_url"   validate:"omitempty,max=500"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// SignInRequest defines the payload for the user login endpoint.
type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// UpdateDetailsRequest defines the payload for the full profile update
// endpoint. All mutable fields are overwritten, so all are required.
type UpdateDetailsRequest struct {
	Username    string `json:"username"    validate:"required,min=3,max=30"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8,max=72"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`

	// Token is empty for signup: the client signs in afterwards.
	Token string `json:"token,omitempty"`
}

// UserResponse is the transport form of a user profile.
type UserResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	ImageURL    string    `json:"image_url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateGroupRequest defines the payload for the group creation endpoint.
type CreateGroupRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	ImageURL    string `json:"image_url"   validate:"omitempty,max=500"`
}

// GroupResponse is the transport form of a group with its derived fields.
type GroupResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	ImageURL         string    `json:"image_url"`
	CreatedAt        time.Time `json:"created_at"`
	MemberCount      int       `json:"member_count"`
	MembershipStatus string    `json:"membership_status,omitempty"`
}

// NewGroupResponse converts a domain group to its transport form.
func NewGroupResponse(group *domain.Group) GroupResponse {
	return GroupResponse{
		ID:               group.ID,
		Name:             group.Name,
		Description:      group.Description,
		ImageURL:         group.ImageURL,
		CreatedAt:        group.CreatedAt,
		MemberCount:      group.MemberCount,
		MembershipStatus: string(group.MembershipStatus),
	}
}

// NewGroupListResponse converts a slice of domain groups.
func NewGroupListResponse(groups []*domain.Group) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		out = append(out, NewGroupResponse(group))
	}
	return out
}

// AddBookAndReviewRequest defines the payload for posting a review together
// with the book it refers to.
type AddBookAndReviewRequest struct {
	BookTitle    string `json:"book_title"     validate:"required,min=1,max=300"`
	BookAuthor   string `json:"book_author"    validate:"required,min=1,max=200"`
	BookImageURL string `json:"book_image_url" validate:"omitempty,max=500"`
	Content      string `json:"content"        validate:"required,min=1"`
	Rating       int    `json:"rating"         validate:"gte=0,lte=5"`
}

// ReviewResponse defines the successful response for review creation.
type ReviewResponse struct {
	ReviewID int64     `json:"review_id"`
	BookID   int64     `json:"book_id"`
	UserID   int64     `json:"user_id"`
	Content  string    `json:"content"`
	Rating   int       `json:"rating"`
	Date     time.Time `json:"date"`
}
