package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yamdb/review-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// pageResponse is the limit/offset envelope used by every list endpoint.
type pageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// --- Auth ---

type signUpRequest struct {
	Username string `json:"username" validate:"required,max=150,username,notme"`
	Email    string `json:"email"    validate:"required,max=254,email"`
}

type signUpResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// confirmationCode accepts the code as a JSON string or number.
type confirmationCode string

func (c *confirmationCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = confirmationCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("confirmation_code must be a string or number")
	}
	*c = confirmationCode(n.String())
	return nil
}

type tokenRequest struct {
	Username         string           `json:"username"          validate:"required"`
	ConfirmationCode confirmationCode `json:"confirmation_code" validate:"required" swaggertype:"string"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// --- Catalog ---

type slugRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

type createTitleRequest struct {
	Name        string   `json:"name"        validate:"required,max=256"`
	Year        int      `json:"year"        validate:"required"`
	Description string   `json:"description" validate:"max=300"`
	Genre       []string `json:"genre"       validate:"required,min=1"`
	Category    string   `json:"category"`
}

type updateTitleRequest struct {
	Name        *string   `json:"name"        validate:"omitempty,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description" validate:"omitempty,max=300"`
	Genre       *[]string `json:"genre"       validate:"omitempty,min=1"`
	Category    *string   `json:"category"`
}

// --- Reviews & comments ---

type createReviewRequest struct {
	Text  string `json:"text"  validate:"required"`
	Score int    `json:"score" validate:"required,min=1,max=10"`
}

type updateReviewRequest struct {
	Text  *string `json:"text"  validate:"omitempty,min=1"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10"`
}

type createCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

type updateCommentRequest struct {
	Text *string `json:"text" validate:"omitempty,min=1"`
}

// --- Users ---

type createUserRequest struct {
	Username  string `json:"username"   validate:"required,max=150,username,notme"`
	Email     string `json:"email"      validate:"required,max=254,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name"  validate:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role"       validate:"omitempty,oneof=user moderator admin"`
}

type updateUserRequest struct {
	Username  *string `json:"username"   validate:"omitempty,max=150,username,notme"`
	Email     *string `json:"email"      validate:"omitempty,max=254,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"       validate:"omitempty,oneof=user moderator admin"`
}

// Response aliases keep the swagger models named after the resources.
type (
	categoryResponse = domain.Category
	genreResponse    = domain.Genre
	titleResponse    = domain.Title
	reviewResponse   = domain.Review
	commentResponse  = domain.Comment
	userResponse     = domain.User
)
