package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/bookcircle/bookcircle-api/internal/api/shared"
	"github.com/bookcircle/bookcircle-api/internal/service"
)

// PostHandler handles review-feed API requests.
type PostHandler struct {
	postService service.PostService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewPostHandler creates a new PostHandler with the given dependencies.
func NewPostHandler(postService service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		validator:   validator.New(),
		logger:      logger.With("component", "post_handler"),
	}
}

// GetPosts handles the GET /api/posts endpoint.
// Returns the aggregated review feed; an empty feed is an empty array.
func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.GetPosts(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, posts)
}

// AddBookAndReview handles the POST /api/book-review endpoint.
func (h *PostHandler) AddBookAndReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AddBookAndReviewRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	review, err := h.postService.AddBookAndReview(r.Context(), service.AddBookAndReviewParams{
		UserID:       userID,
		BookTitle:    req.BookTitle,
		BookAuthor:   req.BookAuthor,
		BookImageURL: req.BookImageURL,
		Content:      req.Content,
		Rating:       req.Rating,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, ReviewResponse{
		ReviewID: review.ID,
		BookID:   review.BookID,
		UserID:   review.UserID,
		Content:  review.Content,
		Rating:   review.Rating,
		Date:     review.Date,
	})
}
