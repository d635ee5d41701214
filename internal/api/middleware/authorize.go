package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/yamdb/review-api/internal/core/policy"
	"github.com/yamdb/review-api/internal/pkg/metrics"
)

// Authorize runs the coarse phase of p against the request method before
// the handler loads anything. The object phase runs in the service layer
// once the target is known.
func Authorize(p policy.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFrom(c)
			action := policy.ActionFromMethod(c.Request().Method)
			if err := p.Authorize(actor, action); err != nil {
				metrics.PolicyDenialsTotal.WithLabelValues(p.Name(), action.String()).Inc()
				return err
			}
			return next(c)
		}
	}
}
