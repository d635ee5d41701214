package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain sentinel errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

var statusBySentinel = []struct {
	err  error
	code int
}{
	// Validation first: an unknown slug in a payload is joined with it.
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrAccountConflict, http.StatusBadRequest},
	{domain.ErrCodeMismatch, http.StatusBadRequest},
	{domain.ErrDuplicateReview, http.StatusConflict},
	{domain.ErrDuplicateSlug, http.StatusConflict},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrTitleNotFound, http.StatusNotFound},
	{domain.ErrReviewNotFound, http.StatusNotFound},
	{domain.ErrCommentNotFound, http.StatusNotFound},
	{domain.ErrCategoryNotFound, http.StatusNotFound},
	{domain.ErrGenreNotFound, http.StatusNotFound},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404/405 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.code, message(err)
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// message flattens joined errors onto one line.
func message(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}
