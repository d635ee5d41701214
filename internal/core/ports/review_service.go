package ports

import (
	"context"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/policy"
)

// ReviewInput creates a review.
type ReviewInput struct {
	Text  string
	Score int
}

// ReviewPatch partially updates a review; nil fields are left unchanged.
type ReviewPatch struct {
	Text  *string
	Score *int
}

// ReviewService manages reviews and keeps title ratings consistent with them.
type ReviewService interface {
	ListReviews(ctx context.Context, titleID string, page PageRequest) (Page[domain.Review], error)
	GetReview(ctx context.Context, titleID, reviewID string) (*domain.Review, error)
	CreateReview(ctx context.Context, actor policy.Actor, titleID string, in ReviewInput) (*domain.Review, error)
	UpdateReview(ctx context.Context, actor policy.Actor, titleID, reviewID string, patch ReviewPatch) (*domain.Review, error)
	DeleteReview(ctx context.Context, actor policy.Actor, titleID, reviewID string) error
}

// CommentService manages comments addressed through their title and review.
type CommentService interface {
	ListComments(ctx context.Context, titleID, reviewID string, page PageRequest) (Page[domain.Comment], error)
	GetComment(ctx context.Context, titleID, reviewID, commentID string) (*domain.Comment, error)
	CreateComment(ctx context.Context, actor policy.Actor, titleID, reviewID, text string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID string, text *string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID string) error
}

// RatingProvider exposes derived title ratings. Invalidate must be called
// whenever the reviews of a title change or the title is removed.
type RatingProvider interface {
	Rating(ctx context.Context, titleID string) (*float64, error)
	Ratings(ctx context.Context, titleIDs []string) (map[string]*float64, error)
	Invalidate(ctx context.Context, titleID string)
}
