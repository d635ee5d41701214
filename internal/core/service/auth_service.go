package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/ports"
	"github.com/yamdb/review-api/internal/pkg/metrics"
)

const (
	codeMin  = 100000
	codeSpan = 900000 // codes are uniform over [100000, 999999]
)

// AuthOptions tunes the confirmation code lifecycle.
type AuthOptions struct {
	// SingleUseCodes clears the code after its first successful exchange.
	SingleUseCodes bool
	// CodeHashCost is the bcrypt cost for stored codes.
	CodeHashCost int
}

// AuthService implements passwordless sign-up and token exchange.
type AuthService struct {
	users  ports.UserRepository
	tokens ports.TokenMinter
	queue  ports.NotificationQueue
	audit  ports.AuditLog
	opts   AuthOptions
	log    zerolog.Logger
	code   func() (string, error)
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenMinter,
	queue ports.NotificationQueue,
	audit ports.AuditLog,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.CodeHashCost < bcrypt.MinCost || opts.CodeHashCost > bcrypt.MaxCost {
		opts.CodeHashCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		queue:  queue,
		audit:  audit,
		opts:   opts,
		log:    log,
		code:   generateCode,
	}
}

// SignUp gets or creates the account keyed on (username, email), rotates its
// confirmation code and hands the code to the notification queue.
func (s *AuthService) SignUp(ctx context.Context, username, email string) (*domain.User, error) {
	if err := errors.Join(domain.ValidateUsername(username), domain.ValidateEmail(email)); err != nil {
		metrics.ConfirmationCodesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	code, err := s.code()
	if err != nil {
		return nil, fmt.Errorf("generate confirmation code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.opts.CodeHashCost)
	if err != nil {
		return nil, fmt.Errorf("hash confirmation code: %w", err)
	}

	user, err := s.users.UpsertPendingCode(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrAccountConflict) {
			metrics.ConfirmationCodesTotal.WithLabelValues("conflict").Inc()
			s.log.Info().Str("username", username).Msg("sign-up rejected: username or email taken by another account")
		}
		return nil, err
	}

	s.queue.Enqueue(ports.Notification{Username: user.Username, Email: user.Email, Code: code})
	metrics.ConfirmationCodesTotal.WithLabelValues("issued").Inc()
	s.record(ctx, ports.AuthEventCodeIssued, user)

	s.log.Info().Str("username", user.Username).Msg("confirmation code issued")
	return user, nil
}

// IssueToken verifies the code and mints a bearer token.
func (s *AuthService) IssueToken(ctx context.Context, username, code string) (string, error) {
	if username == "" || code == "" {
		return "", fmt.Errorf("%w: username and confirmation_code are required", domain.ErrValidation)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.TokensIssuedTotal.WithLabelValues("unknown_user").Inc()
		}
		return "", err
	}

	if user.ConfirmationCodeHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCodeHash), []byte(code)) != nil {
		metrics.TokensIssuedTotal.WithLabelValues("mismatch").Inc()
		s.log.Info().Str("username", username).Msg("confirmation code mismatch")
		return "", domain.ErrCodeMismatch
	}

	signed, err := s.tokens.Mint(user)
	if err != nil {
		return "", err
	}

	if s.opts.SingleUseCodes {
		if err := s.users.ClearPendingCode(ctx, user.ID); err != nil {
			return "", fmt.Errorf("consume confirmation code: %w", err)
		}
	}

	metrics.TokensIssuedTotal.WithLabelValues("issued").Inc()
	s.record(ctx, ports.AuthEventTokenIssued, user)
	return signed, nil
}

// record appends to the audit trail; failures are logged, never returned.
func (s *AuthService) record(ctx context.Context, kind ports.AuthEventKind, user *domain.User) {
	if s.audit == nil {
		return
	}
	event := ports.AuthEvent{Kind: kind, Username: user.Username, Role: string(user.Role), At: time.Now().UTC()}
	if err := s.audit.Record(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("username", user.Username).Str("kind", string(kind)).Msg("failed to record auth event")
	}
}

// generateCode returns a six digit code drawn uniformly from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", codeMin+n.Int64()), nil
}
