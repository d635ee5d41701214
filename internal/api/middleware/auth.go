package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/policy"
	"github.com/yamdb/review-api/internal/pkg/token"
)

const actorKey = "actor"

// TokenParser verifies a raw bearer token.
type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

// Authenticate resolves the caller from the Authorization header. Requests
// without the header continue as the anonymous actor; a malformed header or
// an invalid token is rejected outright with a bare ErrInvalidToken. The
// reason is logged, never returned to the client.
func Authenticate(parser TokenParser, log zerolog.Logger) echo.MiddlewareFunc {
	reject := func(c echo.Context, reason string, err error) error {
		log.Debug().Err(err).
			Str("reason", reason).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("bearer token rejected")
		return domain.ErrInvalidToken
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				c.Set(actorKey, policy.Anonymous())
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return reject(c, "malformed authorization header", nil)
			}

			claims, err := parser.Parse(parts[1])
			if err != nil {
				return reject(c, "token verification failed", err)
			}
			role, err := domain.ParseRole(claims.Role)
			if err != nil {
				return reject(c, "unknown role", err)
			}

			c.Set(actorKey, policy.Actor{
				ID:        claims.Subject,
				Username:  claims.Username,
				Role:      role,
				Superuser: claims.Superuser,
			})
			return next(c)
		}
	}
}

// ActorFrom returns the caller resolved by Authenticate, or the anonymous
// actor when the middleware did not run.
func ActorFrom(c echo.Context) policy.Actor {
	if a, ok := c.Get(actorKey).(policy.Actor); ok {
		return a
	}
	return policy.Anonymous()
}
