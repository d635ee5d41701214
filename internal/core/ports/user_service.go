package ports

import (
	"context"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/policy"
)

// UserInput creates an account on behalf of an admin.
type UserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      string
}

// UserPatch partially updates an account; nil fields are left unchanged.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

// UserService manages accounts. Non-admin actors editing their own record
// can never change their role.
type UserService interface {
	ListUsers(ctx context.Context, actor policy.Actor, search string, page PageRequest) (Page[*domain.User], error)
	CreateUser(ctx context.Context, actor policy.Actor, in UserInput) (*domain.User, error)
	GetUser(ctx context.Context, actor policy.Actor, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, actor policy.Actor, username string, patch UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, actor policy.Actor, username string) error

	Me(ctx context.Context, actor policy.Actor) (*domain.User, error)
	UpdateMe(ctx context.Context, actor policy.Actor, patch UserPatch) (*domain.User, error)
}
