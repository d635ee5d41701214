package ports

import "context"

// Notification carries a confirmation code to a contact address.
type Notification struct {
	Username string
	Email    string
	Code     string
}

// Mailer delivers a notification synchronously.
type Mailer interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationQueue accepts notifications for best-effort background
// delivery. Enqueue never blocks on delivery.
type NotificationQueue interface {
	Enqueue(n Notification)
}
