package ports

import (
	"context"

	"github.com/yamdb/review-api/internal/core/domain"
)

// UserRepository is the Identity Store.
type UserRepository interface {
	// UpsertPendingCode atomically creates the account for (username, email)
	// or rotates the pending code of the account that already has exactly
	// that pair. Any other overlap returns domain.ErrAccountConflict.
	UpsertPendingCode(ctx context.Context, username, email, codeHash string) (*domain.User, error)
	// ClearPendingCode drops the pending code of the given account.
	ClearPendingCode(ctx context.Context, userID string) error

	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, username string) error
	List(ctx context.Context, search string, page PageRequest) (Page[*domain.User], error)
}
