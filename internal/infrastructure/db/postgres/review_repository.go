package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/ports"
)

// ReviewRepository implements ports.ReviewRepository.
type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create relies on idx_reviews_author_title to reject a second review by
// the same author, however the inserts race.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	row := reviewModelFromEntity(rv)
	if err := r.db.WithContext(ctx).Omit("Title", "Author").Create(&row).Error; err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicateReview
		case isForeignKeyViolation(err):
			return domain.ErrTitleNotFound
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) ExistsByAuthor(ctx context.Context, titleID, authorID string) (bool, error) {
	if !validID(titleID) || !validID(authorID) {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&reviewModel{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("review exists: %w", err)
	}
	return n > 0, nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	if !validID(titleID) || !validID(reviewID) {
		return nil, domain.ErrReviewNotFound
	}
	var row reviewModel
	err := r.db.WithContext(ctx).
		Joins("Author").
		Where("reviews.id = ? AND reviews.title_id = ?", reviewID, titleID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	rv := row.toEntity()
	return &rv, nil
}

func (r *ReviewRepository) List(ctx context.Context, titleID string, page ports.PageRequest) (ports.Page[domain.Review], error) {
	page = page.Normalize()
	var out ports.Page[domain.Review]
	if !validID(titleID) {
		return out, nil
	}
	q := r.db.WithContext(ctx).Model(&reviewModel{}).
		Where("reviews.title_id = ?", titleID).
		Session(&gorm.Session{})

	if err := q.Count(&out.Count).Error; err != nil {
		return out, fmt.Errorf("count reviews: %w", err)
	}
	var rows []reviewModel
	err := q.Joins("Author").
		Order("reviews.pub_date DESC").Order("reviews.id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return out, fmt.Errorf("list reviews: %w", err)
	}
	out.Results = make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		out.Results = append(out.Results, row.toEntity())
	}
	return out, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	if !validID(rv.ID) {
		return domain.ErrReviewNotFound
	}
	res := r.db.WithContext(ctx).Model(&reviewModel{}).
		Where("id = ? AND title_id = ?", rv.ID, rv.TitleID).
		Updates(map[string]any{"text": rv.Text, "score": rv.Score})
	if res.Error != nil {
		return fmt.Errorf("update review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// Delete removes the review and, by cascade, its comments.
func (r *ReviewRepository) Delete(ctx context.Context, titleID, reviewID string) error {
	if !validID(titleID) || !validID(reviewID) {
		return domain.ErrReviewNotFound
	}
	res := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Delete(&reviewModel{})
	if res.Error != nil {
		return fmt.Errorf("delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) TitleIDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	if !validID(authorID) {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&reviewModel{}).
		Where("author_id = ?", authorID).
		Distinct("title_id").
		Pluck("title_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("reviewed titles: %w", err)
	}
	return ids, nil
}

// AverageScores computes AVG(score) per title in one grouped query.
func (r *ReviewRepository) AverageScores(ctx context.Context, titleIDs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(titleIDs))
	ids := validIDs(titleIDs)
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		TitleID string
		Rating  float64
	}
	err := r.db.WithContext(ctx).Model(&reviewModel{}).
		Select("title_id, AVG(score)::float8 AS rating").
		Where("title_id IN ?", ids).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("average scores: %w", err)
	}
	for _, row := range rows {
		out[row.TitleID] = row.Rating
	}
	return out, nil
}

// CommentRepository implements ports.CommentRepository.
type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	row := commentModelFromEntity(c)
	if err := r.db.WithContext(ctx).Omit("Review", "Author").Create(&row).Error; err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReviewNotFound
		}
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, reviewID, commentID string) (*domain.Comment, error) {
	if !validID(reviewID) || !validID(commentID) {
		return nil, domain.ErrCommentNotFound
	}
	var row commentModel
	err := r.db.WithContext(ctx).
		Joins("Author").
		Where("comments.id = ? AND comments.review_id = ?", commentID, reviewID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	c := row.toEntity()
	return &c, nil
}

func (r *CommentRepository) List(ctx context.Context, reviewID string, page ports.PageRequest) (ports.Page[domain.Comment], error) {
	page = page.Normalize()
	var out ports.Page[domain.Comment]
	if !validID(reviewID) {
		return out, nil
	}
	q := r.db.WithContext(ctx).Model(&commentModel{}).
		Where("comments.review_id = ?", reviewID).
		Session(&gorm.Session{})

	if err := q.Count(&out.Count).Error; err != nil {
		return out, fmt.Errorf("count comments: %w", err)
	}
	var rows []commentModel
	err := q.Joins("Author").
		Order("comments.pub_date").Order("comments.id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return out, fmt.Errorf("list comments: %w", err)
	}
	out.Results = make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		out.Results = append(out.Results, row.toEntity())
	}
	return out, nil
}

func (r *CommentRepository) Update(ctx context.Context, c *domain.Comment) error {
	if !validID(c.ID) {
		return domain.ErrCommentNotFound
	}
	res := r.db.WithContext(ctx).Model(&commentModel{}).
		Where("id = ? AND review_id = ?", c.ID, c.ReviewID).
		Update("text", c.Text)
	if res.Error != nil {
		return fmt.Errorf("update comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, reviewID, commentID string) error {
	if !validID(reviewID) || !validID(commentID) {
		return domain.ErrCommentNotFound
	}
	res := r.db.WithContext(ctx).
		Where("id = ? AND review_id = ?", commentID, reviewID).
		Delete(&commentModel{})
	if res.Error != nil {
		return fmt.Errorf("delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}
