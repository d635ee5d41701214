package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/ports"
)

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertPendingCode inserts the account or, when the username already exists
// with the same email, rotates its code in the same statement. A username
// held with another email updates no row; an email held by another username
// trips the unique index. Both surface as domain.ErrAccountConflict.
func (r *UserRepository) UpsertPendingCode(ctx context.Context, username, email, codeHash string) (*domain.User, error) {
	now := time.Now().UTC()
	row := userModel{
		ID:               uuid.NewString(),
		Username:         username,
		Email:            email,
		Role:             string(domain.RoleUser),
		ConfirmationCode: codeHash,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		Where:     clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "users.email = excluded.email"}}},
		DoUpdates: clause.AssignmentColumns([]string{"confirmation_code", "updated_at"}),
	}).Create(&row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, domain.ErrAccountConflict
		}
		return nil, fmt.Errorf("upsert pending code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrAccountConflict
	}
	return r.FindByUsername(ctx, username)
}

func (r *UserRepository) ClearPendingCode(ctx context.Context, userID string) error {
	if !validID(userID) {
		return domain.ErrUserNotFound
	}
	res := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{"confirmation_code": "", "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("clear pending code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, domain.ErrUserNotFound
	}
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return row.toEntity(), nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := userModelFromEntity(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return row.toEntity(), nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if !validID(user.ID) {
		return nil, domain.ErrUserNotFound
	}
	row := userModelFromEntity(user)
	res := r.db.WithContext(ctx).Model(&userModel{ID: user.ID}).
		Select("username", "email", "first_name", "last_name", "bio", "role", "updated_at").
		Updates(&row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, domain.ErrAccountConflict
		}
		return nil, fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, user.ID)
}

// Delete removes the account; its reviews and comments cascade.
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	res := r.db.WithContext(ctx).Where("username = ?", username).Delete(&userModel{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, search string, page ports.PageRequest) (ports.Page[*domain.User], error) {
	page = page.Normalize()
	q := r.db.WithContext(ctx).Model(&userModel{})
	if search != "" {
		q = q.Where("username ILIKE ?", likePattern(search))
	}
	q = q.Session(&gorm.Session{})

	var out ports.Page[*domain.User]
	if err := q.Count(&out.Count).Error; err != nil {
		return out, fmt.Errorf("count users: %w", err)
	}
	var rows []userModel
	if err := q.Order("username").Limit(page.Limit).Offset(page.Offset).Find(&rows).Error; err != nil {
		return out, fmt.Errorf("list users: %w", err)
	}
	out.Results = make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		out.Results = append(out.Results, row.toEntity())
	}
	return out, nil
}
