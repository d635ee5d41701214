package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// SelfHandle is the path literal that addresses the caller's own profile.
// It can never be used as a username.
const SelfHandle = "me"

const (
	MaxUsernameLen = 150
	MaxEmailLen    = 254
	MaxNameLen     = 150
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	fieldValidator  = validator.New()
)

// User models an account. ConfirmationCodeHash is the bcrypt hash of the
// pending sign-up code; empty means no code is pending.
type User struct {
	ID                   string    `json:"-"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	Bio                  string    `json:"bio"`
	Role                 Role      `json:"role"`
	Superuser            bool      `json:"-"`
	ConfirmationCodeHash string    `json:"-"`
	CreatedAt            time.Time `json:"-"`
	UpdatedAt            time.Time `json:"-"`
}

// OwnerID makes a user its own owner for self-service checks.
func (u *User) OwnerID() string { return u.ID }

// IsAdmin reports whether the account carries admin capability. The
// superuser flag is equivalent to the admin role.
func (u *User) IsAdmin() bool { return u.Superuser || u.Role.AtLeast(RoleAdmin) }

// ValidateUsername enforces the handle charset, length and the reserved
// self literal.
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username is required", ErrValidation)
	case username == SelfHandle:
		return fmt.Errorf("%w: username %q is reserved", ErrValidation, SelfHandle)
	case len(username) > MaxUsernameLen:
		return fmt.Errorf("%w: username must be at most %d characters", ErrValidation, MaxUsernameLen)
	case !usernamePattern.MatchString(username):
		return fmt.Errorf("%w: username may contain only letters, digits and @.+-_", ErrValidation)
	}
	return nil
}

// ValidateEmail checks the contact address format and length.
func ValidateEmail(email string) error {
	if err := fieldValidator.Var(email, "required,email,max=254"); err != nil {
		return fmt.Errorf("%w: email must be a valid address of at most %d characters", ErrValidation, MaxEmailLen)
	}
	return nil
}
