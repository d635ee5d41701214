package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/policy"
	"github.com/yamdb/review-api/internal/core/ports"
)

// UserService manages accounts. Role state is owned here; the policy engine
// only reads it through tokens.
type UserService struct {
	users   ports.UserRepository
	reviews ports.ReviewRepository
	ratings ports.RatingProvider
	audit   ports.AuditLog
	log     zerolog.Logger
	now     func() time.Time
}

func NewUserService(
	users ports.UserRepository,
	reviews ports.ReviewRepository,
	ratings ports.RatingProvider,
	audit ports.AuditLog,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:   users,
		reviews: reviews,
		ratings: ratings,
		audit:   audit,
		log:     log,
		now:     time.Now,
	}
}

func (s *UserService) ListUsers(ctx context.Context, actor policy.Actor, search string, page ports.PageRequest) (ports.Page[*domain.User], error) {
	if err := policy.Users.Authorize(actor, policy.ActionRead); err != nil {
		return ports.Page[*domain.User]{}, err
	}
	return s.users.List(ctx, search, page.Normalize())
}

func (s *UserService) CreateUser(ctx context.Context, actor policy.Actor, in ports.UserInput) (*domain.User, error) {
	if err := policy.Users.Authorize(actor, policy.ActionCreate); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateProfile(user); err != nil {
		return nil, err
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Str("actor", actor.Username).Msg("user created")
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, actor policy.Actor, username string) (*domain.User, error) {
	if err := policy.Users.Authorize(actor, policy.ActionRead); err != nil {
		return nil, err
	}
	return s.users.FindByUsername(ctx, username)
}

func (s *UserService) UpdateUser(ctx context.Context, actor policy.Actor, username string, patch ports.UserPatch) (*domain.User, error) {
	if err := policy.Users.Authorize(actor, policy.ActionUpdate); err != nil {
		return nil, err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := policy.Users.AuthorizeObject(actor, policy.ActionUpdate, user); err != nil {
		return nil, err
	}
	return s.apply(ctx, actor, user, patch)
}

// DeleteUser removes an account. Its reviews go with it, so the ratings of
// every title it reviewed are invalidated once the delete has committed.
func (s *UserService) DeleteUser(ctx context.Context, actor policy.Actor, username string) error {
	if err := policy.Users.Authorize(actor, policy.ActionDelete); err != nil {
		return err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	titleIDs, err := s.reviews.TitleIDsByAuthor(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}
	for _, id := range titleIDs {
		s.ratings.Invalidate(ctx, id)
	}
	s.log.Info().Str("username", username).Int("reviewed_titles", len(titleIDs)).Str("actor", actor.Username).Msg("user deleted")
	return nil
}

// Me loads the caller's own account.
func (s *UserService) Me(ctx context.Context, actor policy.Actor) (*domain.User, error) {
	if err := policy.Profile.Authorize(actor, policy.ActionRead); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := policy.Profile.AuthorizeObject(actor, policy.ActionRead, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateMe edits the caller's own account. A non-admin caller's role change
// is silently dropped and the current role kept.
func (s *UserService) UpdateMe(ctx context.Context, actor policy.Actor, patch ports.UserPatch) (*domain.User, error) {
	user, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := policy.Profile.AuthorizeObject(actor, policy.ActionUpdate, user); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && patch.Role != nil {
		s.log.Warn().Str("username", user.Username).Str("requested_role", *patch.Role).Msg("self role change ignored")
		patch.Role = nil
	}
	return s.apply(ctx, actor, user, patch)
}

func (s *UserService) apply(ctx context.Context, actor policy.Actor, user *domain.User, patch ports.UserPatch) (*domain.User, error) {
	prevRole := user.Role

	if patch.Username != nil && *patch.Username != user.Username {
		return nil, fmt.Errorf("%w: username cannot be changed", domain.ErrValidation)
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Role != nil {
		role, err := domain.ParseRole(*patch.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if err := validateProfile(user); err != nil {
		return nil, err
	}
	user.UpdatedAt = s.now().UTC()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	if updated.Role != prevRole {
		s.log.Info().Str("username", updated.Username).Str("from", string(prevRole)).Str("to", string(updated.Role)).Str("actor", actor.Username).Msg("role changed")
		if s.audit != nil {
			event := ports.AuthEvent{Kind: ports.AuthEventRoleChanged, Username: updated.Username, Role: string(updated.Role), Actor: actor.Username, At: updated.UpdatedAt}
			if err := s.audit.Record(ctx, event); err != nil {
				s.log.Warn().Err(err).Str("username", updated.Username).Msg("failed to record role change")
			}
		}
	}
	return updated, nil
}

func validateProfile(u *domain.User) error {
	errs := []error{domain.ValidateUsername(u.Username), domain.ValidateEmail(u.Email)}
	if len(u.FirstName) > domain.MaxNameLen || len(u.LastName) > domain.MaxNameLen {
		errs = append(errs, fmt.Errorf("%w: first_name and last_name must be at most %d characters", domain.ErrValidation, domain.MaxNameLen))
	}
	return errors.Join(errs...)
}
