// Package review validates and stores customer reviews.
package review

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sleekspace/storefront/internal/model"
)

// Validation failures. Both must be surfaced to the visitor as a blocking
// notice, not logged and dropped.
var (
	ErrMissingRating = errors.New("review: rating is required")
	ErrEmptyComment  = errors.New("review: comment is required")
)

// IsValidationError reports whether err is one of the review validation
// failures.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingRating) || errors.Is(err, ErrEmptyComment)
}

// Board owns the submitted reviews. Reviews are append-only and never
// mutated once stored.
type Board struct {
	mu      sync.Mutex
	reviews []model.Review
}

// New creates an empty Board.
func New() *Board {
	return &Board{}
}

// Submit validates rating and comment and stores a new review. The
// comment is stored trimmed. Ids are opaque random tokens; collisions are
// not guarded against.
func (b *Board) Submit(rating int, comment string) (model.Review, error) {
	if rating < 1 || rating > 5 {
		return model.Review{}, ErrMissingRating
	}
	c := strings.TrimSpace(comment)
	if c == "" {
		return model.Review{}, ErrEmptyComment
	}
	r := model.Review{ID: uuid.NewString(), Rating: rating, Comment: c}
	b.mu.Lock()
	b.reviews = append(b.reviews, r)
	b.mu.Unlock()
	return r, nil
}

// Reviews returns the stored reviews in submission order.
func (b *Board) Reviews() []model.Review {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Review, len(b.reviews))
	copy(out, b.reviews)
	return out
}

// Count returns the number of stored reviews.
func (b *Board) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.reviews)
}
