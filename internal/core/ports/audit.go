package ports

import (
	"context"
	"time"
)

// AuthEventKind names an entry in the authentication audit trail.
type AuthEventKind string

const (
	AuthEventCodeIssued  AuthEventKind = "code_issued"
	AuthEventTokenIssued AuthEventKind = "token_issued"
	AuthEventRoleChanged AuthEventKind = "role_changed"
)

// AuthEvent is an append-only audit record.
type AuthEvent struct {
	Kind     AuthEventKind
	Username string
	Role     string
	Actor    string // who caused the event, empty for self-service
	At       time.Time
}

// AuditLog stores auth events. Callers treat failures as non-fatal.
type AuditLog interface {
	Record(ctx context.Context, event AuthEvent) error
}
