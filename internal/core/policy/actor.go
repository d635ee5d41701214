package policy

import (
	"net/http"

	"github.com/yamdb/review-api/internal/core/domain"
)

// Actor is the caller of an operation. The zero value is the anonymous actor.
type Actor struct {
	ID        string
	Username  string
	Role      domain.Role
	Superuser bool
}

// Anonymous returns the actor used for requests without credentials.
func Anonymous() Actor { return Actor{} }

// ActorFromUser builds an actor from a stored account.
func ActorFromUser(u *domain.User) Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role, Superuser: u.Superuser}
}

func (a Actor) Authenticated() bool { return a.ID != "" }

// IsAdmin treats the superuser flag as equivalent to the admin role.
func (a Actor) IsAdmin() bool {
	return a.Authenticated() && (a.Superuser || a.Role.AtLeast(domain.RoleAdmin))
}

// IsModerator holds for moderators and every tier above them.
func (a Actor) IsModerator() bool {
	return a.Authenticated() && (a.Superuser || a.Role.AtLeast(domain.RoleModerator))
}

// Action is the kind of operation being authorized.
type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// ActionFromMethod maps an HTTP method onto an Action. Unknown methods are
// treated as updates so they never fall through as safe.
func ActionFromMethod(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	case http.MethodPost:
		return ActionCreate
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionUpdate
	}
}

// Safe reports whether the action cannot mutate state.
func (a Action) Safe() bool { return a == ActionRead }

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Resource is any loaded object whose mutation rights depend on ownership.
type Resource interface {
	OwnerID() string
}
