package domain

import "fmt"

// Role is the access tier of a user. Tiers are ordered: user < moderator < admin.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var roleRank = map[Role]int{
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// ParseRole converts a wire value into a Role. An empty string yields RoleUser.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleUser, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: role must be one of: user moderator admin", ErrValidation)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min] && r.Valid()
}

func (r Role) String() string { return string(r) }
