package ports

import (
	"context"

	"github.com/yamdb/review-api/internal/core/domain"
)

// TokenMinter signs bearer tokens for a user.
type TokenMinter interface {
	Mint(user *domain.User) (string, error)
}

// AuthService is the passwordless sign-up and login flow.
type AuthService interface {
	// SignUp issues a fresh confirmation code for (username, email) and
	// dispatches it out of band. The code is never returned.
	SignUp(ctx context.Context, username, email string) (*domain.User, error)
	// IssueToken trades a confirmation code for a bearer token.
	IssueToken(ctx context.Context, username, code string) (string, error)
}
