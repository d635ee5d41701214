package ports

import (
	"context"

	"github.com/yamdb/review-api/internal/core/domain"
)

// ReviewRepository persists reviews. Create must be backed by a storage
// uniqueness constraint on (author, title) and report a violation as
// domain.ErrDuplicateReview.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	ExistsByAuthor(ctx context.Context, titleID, authorID string) (bool, error)
	FindByID(ctx context.Context, titleID, reviewID string) (*domain.Review, error)
	// List returns reviews newest first.
	List(ctx context.Context, titleID string, page PageRequest) (Page[domain.Review], error)
	Update(ctx context.Context, r *domain.Review) error
	Delete(ctx context.Context, titleID, reviewID string) error

	// TitleIDsByAuthor lists the distinct titles an author has reviewed.
	TitleIDsByAuthor(ctx context.Context, authorID string) ([]string, error)
	// AverageScores omits titles that have no reviews.
	AverageScores(ctx context.Context, titleIDs []string) (map[string]float64, error)
}

// CommentRepository persists comments under a review.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) error
	FindByID(ctx context.Context, reviewID, commentID string) (*domain.Comment, error)
	List(ctx context.Context, reviewID string, page PageRequest) (Page[domain.Comment], error)
	Update(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, reviewID, commentID string) error
}

// RatingSnapshot is the result of a cache lookup. A hit with a nil value
// means the title has no reviews. Versions holds the generation of every
// requested title, hit or not.
type RatingSnapshot struct {
	Hits     map[string]*float64
	Versions map[string]int64
}

// RatingCache memoizes derived ratings. Invalidate bumps a title's
// generation; Store is dropped unless version still matches it, so a value
// computed before an invalidation never lands after it.
type RatingCache interface {
	Lookup(ctx context.Context, titleIDs []string) (RatingSnapshot, error)
	Store(ctx context.Context, titleID string, rating *float64, version int64) error
	Invalidate(ctx context.Context, titleID string) error
}
