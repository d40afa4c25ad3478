package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/bookcircle/bookcircle-api/internal/domain"
	"github.com/bookcircle/bookcircle-api/internal/platform/logger"
	"github.com/bookcircle/bookcircle-api/internal/store"
)

// PostgresPostStore implements the store.PostStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPostStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPostStore creates a new PostgreSQL implementation of the
// PostStore interface.
func NewPostgresPostStore(db store.DBTX, logger *slog.Logger) *PostgresPostStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPostStore{
		db:     db,
		logger: logger.With(slog.String("component", "post_store")),
	}
}

// Ensure PostgresPostStore implements store.PostStore interface
var _ store.PostStore = (*PostgresPostStore)(nil)

// WithTx returns a new PostStore bound to the given transaction.
func (s *PostgresPostStore) WithTx(tx *sql.Tx) store.PostStore {
	return &PostgresPostStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetFeed implements store.PostStore.GetFeed
// Likes are counted per distinct user; comments and shares per row. The
// DISTINCT in each aggregate keeps the three LEFT JOINs from multiplying
// one another's counts.
func (s *PostgresPostStore) GetFeed(ctx context.Context) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT r.review_id,
		       r.book_id,
		       r.user_id,
		       b.image_url,
		       b.title,
		       b.author,
		       r.content,
		       r.rating,
		       r.review_date,
		       u.username,
		       COUNT(DISTINCT l.user_id)    AS likes_count,
		       COUNT(DISTINCT c.comment_id) AS comments_count,
		       COUNT(DISTINCT sh.share_id)  AS shares_count
		FROM reviewed r
		INNER JOIN users u ON r.user_id = u.user_id
		INNER JOIN book b ON r.book_id = b.book_id
		LEFT JOIN likes l ON l.review_id = r.review_id
		LEFT JOIN comments c ON c.review_id = r.review_id
		LEFT JOIN shares sh ON sh.review_id = r.review_id
		GROUP BY r.review_id,
		         r.book_id,
		         r.user_id,
		         b.image_url,
		         b.title,
		         b.author,
		         r.content,
		         r.rating,
		         r.review_date,
		         u.username
		ORDER BY r.review_date DESC, r.review_id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query review feed",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	posts := []*domain.Post{}
	for rows.Next() {
		var post domain.Post
		err := rows.Scan(
			&post.ReviewID,
			&post.BookID,
			&post.UserID,
			&post.BookImage,
			&post.BookTitle,
			&post.BookAuthor,
			&post.Content,
			&post.Rating,
			&post.Date,
			&post.Username,
			&post.LikesCount,
			&post.CommentsCount,
			&post.SharesCount,
		)
		if err != nil {
			log.Error("failed to scan feed row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning feed rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("review feed fetched", slog.Int("count", len(posts)))
	return posts, nil
}

// EnsureBook implements store.PostStore.EnsureBook
// Books are unique by (title, author); a conflicting insert resolves to the
// existing row's ID instead of failing.
func (s *PostgresPostStore) EnsureBook(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO book (title, author, image_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (title, author) DO UPDATE SET image_url = EXCLUDED.image_url
		RETURNING book_id
	`
	err := s.db.QueryRowContext(ctx, query, book.Title, book.Author, book.ImageURL).
		Scan(&book.ID)
	if err != nil {
		log.Error("failed to ensure book",
			slog.String("error", err.Error()),
			slog.String("title", book.Title))
		return MapError(err)
	}

	return nil
}

// CreateReview implements store.PostStore.CreateReview
func (s *PostgresPostStore) CreateReview(ctx context.Context, review *domain.Review) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := review.Validate(); err != nil {
		log.Warn("review validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO reviewed (book_id, user_id, content, rating, review_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING review_id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		review.BookID,
		review.UserID,
		review.Content,
		review.Rating,
		review.Date,
	).Scan(&review.ID)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("review references missing book or user",
				slog.Int64("book_id", review.BookID),
				slog.Int64("user_id", review.UserID))
		} else {
			log.Error("failed to create review",
				slog.String("error", err.Error()))
		}
		return MapError(err)
	}

	log.Info("review created successfully",
		slog.Int64("review_id", review.ID),
		slog.Int64("book_id", review.BookID),
		slog.Int64("user_id", review.UserID))
	return nil
}
