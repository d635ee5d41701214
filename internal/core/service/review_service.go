package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/policy"
	"github.com/yamdb/review-api/internal/core/ports"
	"github.com/yamdb/review-api/internal/pkg/metrics"
)

// ReviewService manages reviews and comments under a title.
type ReviewService struct {
	titles   ports.TitleRepository
	reviews  ports.ReviewRepository
	comments ports.CommentRepository
	ratings  ports.RatingProvider
	log      zerolog.Logger
	now      func() time.Time
}

func NewReviewService(
	titles ports.TitleRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	ratings ports.RatingProvider,
	log zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		titles:   titles,
		reviews:  reviews,
		comments: comments,
		ratings:  ratings,
		log:      log,
		now:      time.Now,
	}
}

func (s *ReviewService) ListReviews(ctx context.Context, titleID string, page ports.PageRequest) (ports.Page[domain.Review], error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return ports.Page[domain.Review]{}, err
	}
	return s.reviews.List(ctx, titleID, page.Normalize())
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	return s.reviews.FindByID(ctx, titleID, reviewID)
}

// CreateReview enforces one review per (author, title). The existence check
// only produces a friendlier early error; the repository's uniqueness
// constraint is what settles concurrent submissions.
func (s *ReviewService) CreateReview(ctx context.Context, actor policy.Actor, titleID string, in ports.ReviewInput) (*domain.Review, error) {
	if err := policy.Content.Authorize(actor, policy.ActionCreate); err != nil {
		return nil, err
	}
	if err := errors.Join(domain.ValidateText(in.Text), domain.ValidateScore(in.Score)); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsByAuthor(ctx, titleID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.ReviewsWrittenTotal.WithLabelValues("duplicate").Inc()
		return nil, domain.ErrDuplicateReview
	}

	review := &domain.Review{
		ID:       uuid.NewString(),
		TitleID:  titleID,
		AuthorID: actor.ID,
		Author:   actor.Username,
		Text:     in.Text,
		Score:    in.Score,
		PubDate:  s.now().UTC(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, domain.ErrDuplicateReview) {
			metrics.ReviewsWrittenTotal.WithLabelValues("duplicate").Inc()
			s.log.Info().Str("title_id", titleID).Str("username", actor.Username).Msg("concurrent duplicate review rejected")
		}
		return nil, err
	}
	s.ratings.Invalidate(ctx, titleID)

	metrics.ReviewsWrittenTotal.WithLabelValues("create").Inc()
	s.log.Info().Str("title_id", titleID).Str("review_id", review.ID).Str("username", actor.Username).Msg("review created")
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, actor policy.Actor, titleID, reviewID string, patch ports.ReviewPatch) (*domain.Review, error) {
	review, err := s.reviews.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := policy.Content.AuthorizeObject(actor, policy.ActionUpdate, review); err != nil {
		return nil, err
	}

	if patch.Text != nil {
		if err := domain.ValidateText(*patch.Text); err != nil {
			return nil, err
		}
		review.Text = *patch.Text
	}
	if patch.Score != nil {
		if err := domain.ValidateScore(*patch.Score); err != nil {
			return nil, err
		}
		review.Score = *patch.Score
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	s.ratings.Invalidate(ctx, titleID)

	metrics.ReviewsWrittenTotal.WithLabelValues("update").Inc()
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, actor policy.Actor, titleID, reviewID string) error {
	review, err := s.reviews.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := policy.Content.AuthorizeObject(actor, policy.ActionDelete, review); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, titleID, reviewID); err != nil {
		return err
	}
	s.ratings.Invalidate(ctx, titleID)

	metrics.ReviewsWrittenTotal.WithLabelValues("delete").Inc()
	s.log.Info().Str("title_id", titleID).Str("review_id", reviewID).Str("actor", actor.Username).Msg("review deleted")
	return nil
}

// ── Comments ─────────────────────────────────────────────────────────────────

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID string, page ports.PageRequest) (ports.Page[domain.Comment], error) {
	if _, err := s.reviews.FindByID(ctx, titleID, reviewID); err != nil {
		return ports.Page[domain.Comment]{}, err
	}
	return s.comments.List(ctx, reviewID, page.Normalize())
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID string) (*domain.Comment, error) {
	if _, err := s.reviews.FindByID(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.comments.FindByID(ctx, reviewID, commentID)
}

func (s *ReviewService) CreateComment(ctx context.Context, actor policy.Actor, titleID, reviewID, text string) (*domain.Comment, error) {
	if err := policy.Content.Authorize(actor, policy.ActionCreate); err != nil {
		return nil, err
	}
	if err := domain.ValidateText(text); err != nil {
		return nil, err
	}
	if _, err := s.reviews.FindByID(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:       uuid.NewString(),
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Author:   actor.Username,
		Text:     text,
		PubDate:  s.now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) UpdateComment(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID string, text *string) (*domain.Comment, error) {
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Content.AuthorizeObject(actor, policy.ActionUpdate, comment); err != nil {
		return nil, err
	}
	if text != nil {
		if err := domain.ValidateText(*text); err != nil {
			return nil, err
		}
		comment.Text = *text
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) DeleteComment(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID string) error {
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := policy.Content.AuthorizeObject(actor, policy.ActionDelete, comment); err != nil {
		return err
	}
	return s.comments.Delete(ctx, reviewID, commentID)
}

func (s *ReviewService) requireTitle(ctx context.Context, titleID string) error {
	ok, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTitleNotFound
	}
	return nil
}
