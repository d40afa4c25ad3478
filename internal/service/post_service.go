package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bookcircle/bookcircle-api/internal/domain"
	"github.com/bookcircle/bookcircle-api/internal/store"
)

// AddBookAndReviewParams carries the payload for posting a review, possibly
// introducing the book to the catalog at the same time.
type AddBookAndReviewParams struct {
	UserID       int64
	BookTitle    string
	BookAuthor   string
	BookImageURL string
	Content      string
	Rating       int
}

// PostService provides the aggregated review feed and review creation.
type PostService interface {
	// GetPosts returns the full review feed, one aggregated row per
	// review, ordered by review date descending.
	GetPosts(ctx context.Context) ([]*domain.Post, error)

	// AddBookAndReview upserts the referenced book and inserts the review
	// in a single transaction.
	AddBookAndReview(ctx context.Context, params AddBookAndReviewParams) (*domain.Review, error)
}

// PostServiceImpl implements the PostService interface.
type PostServiceImpl struct {
	postStore store.PostStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(postStore store.PostStore, db *sql.DB, logger *slog.Logger) *PostServiceImpl {
	return &PostServiceImpl{
		postStore: postStore,
		db:        db,
		logger:    logger.With("component", "post_service"),
	}
}

var _ PostService = (*PostServiceImpl)(nil)

// GetPosts returns the aggregated review feed.
func (s *PostServiceImpl) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.postStore.GetFeed(ctx)
	if err != nil {
		s.logger.Error("failed to fetch review feed", "error", err)
		return nil, err
	}
	return posts, nil
}

// AddBookAndReview upserts the book and inserts the review atomically, so
// a failed review insert never leaves a stray catalog entry from this call.
func (s *PostServiceImpl) AddBookAndReview(
	ctx context.Context,
	params AddBookAndReviewParams,
) (*domain.Review, error) {
	review, err := domain.NewReview(0, params.UserID, params.Content, params.Rating)
	if err != nil {
		s.logger.Debug("review payload failed domain validation", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	book := &domain.Book{
		Title:    params.BookTitle,
		Author:   params.BookAuthor,
		ImageURL: params.BookImageURL,
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.postStore.WithTx(tx)

		if err := txStore.EnsureBook(ctx, book); err != nil {
			return err
		}
		review.BookID = book.ID
		return txStore.CreateReview(ctx, review)
	})
	if err != nil {
		s.logger.Error("failed to add book and review",
			"error", err,
			"user_id", params.UserID)
		return nil, err
	}

	s.logger.Info("review posted",
		"review_id", review.ID,
		"book_id", review.BookID,
		"user_id", params.UserID)
	return review, nil
}
