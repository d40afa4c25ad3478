package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookcircle/bookcircle-api/internal/domain"
)

func newPostServiceForTest(t *testing.T) (*PostServiceImpl, *fakePostStore) {
	t.Helper()
	journal := &txJournal{}
	postStore := newFakePostStore(journal)
	svc := NewPostService(postStore, newStubDB(t, journal), testLogger())
	return svc, postStore
}

func TestAddBookAndReview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, postStore := newPostServiceForTest(t)

	review, err := svc.AddBookAndReview(ctx, AddBookAndReviewParams{
		UserID:     7,
		BookTitle:  "The Dispossessed",
		BookAuthor: "Ursula K. Le Guin",
		Content:    "An ambiguous utopia.",
		Rating:     5,
	})
	require.NoError(t, err)

	assert.NotZero(t, review.ID)
	assert.NotZero(t, review.BookID)
	assert.Equal(t, int64(7), review.UserID)
	require.Len(t, postStore.reviews, 1)
}

func TestAddBookAndReview_ReusesExistingBook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newPostServiceForTest(t)

	first, err := svc.AddBookAndReview(ctx, AddBookAndReviewParams{
		UserID:     7,
		BookTitle:  "The Dispossessed",
		BookAuthor: "Ursula K. Le Guin",
		Content:    "First take.",
		Rating:     5,
	})
	require.NoError(t, err)

	second, err := svc.AddBookAndReview(ctx, AddBookAndReviewParams{
		UserID:     8,
		BookTitle:  "The Dispossessed",
		BookAuthor: "Ursula K. Le Guin",
		Content:    "Second take.",
		Rating:     4,
	})
	require.NoError(t, err)

	assert.Equal(t, first.BookID, second.BookID,
		"same title and author should resolve to one catalog entry")
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAddBookAndReview_InvalidPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newPostServiceForTest(t)

	_, err := svc.AddBookAndReview(ctx, AddBookAndReviewParams{
		UserID:     7,
		BookTitle:  "Untitled",
		BookAuthor: "Anon",
		Content:    "   ",
		Rating:     3,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddBookAndReview(ctx, AddBookAndReviewParams{
		UserID:     7,
		BookTitle:  "Untitled",
		BookAuthor: "Anon",
		Content:    "fine",
		Rating:     6,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddBookAndReview_StoreFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, postStore := newPostServiceForTest(t)

	postStore.failCreateReview = errors.New("insert failed")

	_, err := svc.AddBookAndReview(ctx, AddBookAndReviewParams{
		UserID:     7,
		BookTitle:  "Untitled",
		BookAuthor: "Anon",
		Content:    "fine",
		Rating:     3,
	})
	require.Error(t, err)

	assert.Empty(t, postStore.books, "the book upsert must roll back with the failed review")
	assert.Empty(t, postStore.reviews)
}

func TestGetPosts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, postStore := newPostServiceForTest(t)

	// Empty feed is an empty slice, not nil and not an error
	posts, err := svc.GetPosts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	postStore.feed = []*domain.Post{
		{
			ReviewID:      2,
			BookTitle:     "The Dispossessed",
			Username:      "alice",
			Rating:        5,
			Date:          time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			LikesCount:    3,
			CommentsCount: 1,
			SharesCount:   0,
		},
		{
			ReviewID: 1,
			Date:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	posts, err = svc.GetPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(2), posts[0].ReviewID, "newest review comes first")
	assert.Equal(t, 3, posts[0].LikesCount)
}
