package domain

import (
	"strings"
	"time"
)

// Post is the aggregated feed view of a single book review: the review row
// joined with its book and author, plus distinct engagement counts. It is a
// read-only projection assembled by the post store.
type Post struct {
	ReviewID   int64     `json:"review_id"`
	BookID     int64     `json:"book_id"`
	UserID     int64     `json:"user_id"`
	BookImage  string    `json:"book_image_url"`
	BookTitle  string    `json:"book_title"`
	BookAuthor string    `json:"book_author"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	Date       time.Time `json:"date"`
	Username   string    `json:"username"`

	// Engagement counts: likes are counted per distinct user, comments and
	// shares per row.
	LikesCount    int `json:"likes_count"`
	CommentsCount int `json:"comments_count"`
	SharesCount   int `json:"shares_count"`
}

// Review is a user's review of a book, as written (not aggregated).
type Review struct {
	ID      int64     `json:"id"`
	BookID  int64     `json:"book_id"`
	UserID  int64     `json:"user_id"`
	Content string    `json:"content"`
	Rating  int       `json:"rating"`
	Date    time.Time `json:"date"`
}

// NewReview creates a Review for the given book and author.
func NewReview(bookID, userID int64, content string, rating int) (*Review, error) {
	review := &Review{
		BookID:  bookID,
		UserID:  userID,
		Content: content,
		Rating:  rating,
		Date:    time.Now().UTC(),
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}

	return review, nil
}

// Validate checks if the Review has valid data.
func (r *Review) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return ErrEmptyContent
	}
	if r.Rating < 0 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// Book is a referenced work that reviews attach to.
type Book struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	ImageURL string `json:"image_url"`
}
