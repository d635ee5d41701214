// Package policy decides whether an actor may perform an action.
//
// A Policy is a logical OR over independent predicates. Every request is
// checked in two phases: HasPermission before any resource is loaded and
// HasObjectPermission once it is. A predicate grants object access only if
// it also grants the coarse permission, so holding several qualifying
// capabilities (author and moderator, say) can never lock an actor out.
package policy

import (
	"github.com/yamdb/review-api/internal/core/domain"
)

// Predicate is one independently evaluated access rule.
type Predicate struct {
	Name       string
	Permission func(a Actor, act Action) bool
	Object     func(a Actor, act Action, r Resource) bool
}

var ReadOnly = Predicate{
	Name:       "read_only",
	Permission: func(_ Actor, act Action) bool { return act.Safe() },
	Object:     func(_ Actor, act Action, _ Resource) bool { return act.Safe() },
}

var AdminOnly = Predicate{
	Name:       "admin",
	Permission: func(a Actor, _ Action) bool { return a.IsAdmin() },
	Object:     func(a Actor, _ Action, _ Resource) bool { return a.IsAdmin() },
}

var ModeratorOnly = Predicate{
	Name:       "moderator",
	Permission: func(a Actor, _ Action) bool { return a.IsModerator() },
	Object:     func(a Actor, _ Action, _ Resource) bool { return a.IsModerator() },
}

// AuthorOnly lets any authenticated actor create, and only the owner mutate.
var AuthorOnly = Predicate{
	Name:       "author",
	Permission: func(a Actor, _ Action) bool { return a.Authenticated() },
	Object:     isOwner,
}

// SelfOnly grants access to the actor's own account record.
var SelfOnly = Predicate{
	Name:       "self",
	Permission: func(a Actor, act Action) bool { return a.Authenticated() && act != ActionCreate },
	Object:     isOwner,
}

func isOwner(a Actor, _ Action, r Resource) bool {
	return r != nil && a.Authenticated() && r.OwnerID() == a.ID
}

// Policy combines predicates with logical OR.
type Policy struct {
	name       string
	predicates []Predicate
}

// AnyOf builds a policy granted when any of predicates grants.
func AnyOf(name string, predicates ...Predicate) Policy {
	return Policy{name: name, predicates: predicates}
}

var (
	// Catalog guards categories, genres and titles: public reads, admin writes.
	Catalog = AnyOf("catalog", ReadOnly, AdminOnly)
	// Content guards reviews and comments.
	Content = AnyOf("content", ReadOnly, AuthorOnly, ModeratorOnly, AdminOnly)
	// Users guards account management of other users, reads included.
	Users = AnyOf("users", AdminOnly)
	// Profile guards the caller's own account.
	Profile = AnyOf("profile", SelfOnly)
)

func (p Policy) Name() string { return p.name }

// HasPermission is the coarse phase, evaluated before a resource is loaded.
func (p Policy) HasPermission(a Actor, act Action) bool {
	for _, pr := range p.predicates {
		if pr.Permission(a, act) {
			return true
		}
	}
	return false
}

// HasObjectPermission is the object phase, evaluated against a loaded resource.
func (p Policy) HasObjectPermission(a Actor, act Action, r Resource) bool {
	for _, pr := range p.predicates {
		if pr.Permission(a, act) && pr.Object(a, act, r) {
			return true
		}
	}
	return false
}

// Authorize runs the coarse phase and returns the denial error, if any.
func (p Policy) Authorize(a Actor, act Action) error {
	if p.HasPermission(a, act) {
		return nil
	}
	return denial(a)
}

// AuthorizeObject runs the object phase and returns the denial error, if any.
func (p Policy) AuthorizeObject(a Actor, act Action, r Resource) error {
	if p.HasObjectPermission(a, act, r) {
		return nil
	}
	return denial(a)
}

func denial(a Actor) error {
	if !a.Authenticated() {
		return domain.ErrUnauthenticated
	}
	return domain.ErrForbidden
}
