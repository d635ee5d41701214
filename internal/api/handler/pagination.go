package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/ports"
)

// parsePage reads ?limit= and ?offset=. Absent values fall back to the
// defaults; the service clamps the limit.
func parsePage(c echo.Context) (ports.PageRequest, error) {
	var page ports.PageRequest
	var err error
	if raw := c.QueryParam("limit"); raw != "" {
		if page.Limit, err = strconv.Atoi(raw); err != nil || page.Limit < 0 {
			return page, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrValidation)
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if page.Offset, err = strconv.Atoi(raw); err != nil || page.Offset < 0 {
			return page, fmt.Errorf("%w: offset must be a non-negative integer", domain.ErrValidation)
		}
	}
	return page.Normalize(), nil
}

// newPage wraps results with next/previous links relative to the request.
func newPage[T any](c echo.Context, req ports.PageRequest, page ports.Page[T]) pageResponse[T] {
	out := pageResponse[T]{Count: page.Count, Results: page.Results}
	if out.Results == nil {
		out.Results = []T{}
	}
	if int64(req.Offset+req.Limit) < page.Count {
		next := pageURL(c, req.Limit, req.Offset+req.Limit)
		out.Next = &next
	}
	if req.Offset > 0 {
		prev := pageURL(c, req.Limit, max(req.Offset-req.Limit, 0))
		out.Previous = &prev
	}
	return out
}

func pageURL(c echo.Context, limit, offset int) string {
	u := *c.Request().URL
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.RequestURI()
}
