package store

import (
	"context"
	"database/sql"

	"github.com/bookcircle/bookcircle-api/internal/domain"
)

// PostStore defines the interface for the review feed and its supporting
// book/review rows.
type PostStore interface {
	// GetFeed returns every review joined with its book and author and
	// annotated with distinct engagement counts (a user liking, commenting
	// on, or sharing the same review repeatedly counts once per type).
	// Results are ordered by review date descending. An empty feed yields
	// an empty slice.
	GetFeed(ctx context.Context) ([]*domain.Post, error)

	// EnsureBook inserts the book if no row with the same title and author
	// exists yet, and populates book.ID either way.
	EnsureBook(ctx context.Context, book *domain.Book) error

	// CreateReview inserts a review row and populates its ID.
	// Returns ErrInvalidEntity if the book or user does not exist.
	CreateReview(ctx context.Context, review *domain.Review) error

	// WithTx returns a new PostStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) PostStore
}
