package domain

import "errors"

// Validation and conflicts.
var (
	ErrValidation      = errors.New("validation failed")
	ErrAccountConflict = errors.New("username or email already registered to another account")
	ErrDuplicateReview = errors.New("review for this title already exists")
	ErrDuplicateSlug   = errors.New("slug already exists")
)

// Missing resources.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
)

// Authentication and authorization.
var (
	ErrCodeMismatch    = errors.New("confirmation code mismatch")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
)
