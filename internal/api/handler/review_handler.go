package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/review-api/internal/api/middleware"
	"github.com/yamdb/review-api/internal/core/ports"
)

// ReviewHandler serves reviews and their comments, always addressed
// through the parent title.
type ReviewHandler struct {
	reviews  ports.ReviewService
	comments ports.CommentService
}

func NewReviewHandler(reviews ports.ReviewService, comments ports.CommentService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, comments: comments}
}

// ListReviews handles GET /v1/titles/:title_id/reviews.
//
// @Summary      List the reviews of a title
// @Description  Newest first.
// @Tags         reviews
// @Produce      json
// @Param        title_id  path      string  true   "Title ID"
// @Param        limit     query     int     false  "Page size"
// @Param        offset    query     int     false  "Page offset"
// @Success      200       {object}  pageResponse[reviewResponse]
// @Failure      404       {object}  errorResponse
// @Router       /v1/titles/{title_id}/reviews [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	res, err := h.reviews.ListReviews(c.Request().Context(), c.Param("title_id"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(c, page, res))
}

// GetReview handles GET /v1/titles/:title_id/reviews/:review_id.
//
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        title_id   path      string  true  "Title ID"
// @Param        review_id  path      string  true  "Review ID"
// @Success      200        {object}  reviewResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/titles/{title_id}/reviews/{review_id} [get]
func (h *ReviewHandler) GetReview(c echo.Context) error {
	r, err := h.reviews.GetReview(c.Request().Context(), c.Param("title_id"), c.Param("review_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// CreateReview handles POST /v1/titles/:title_id/reviews.
//
// @Summary      Review a title
// @Description  One review per author per title; a second attempt is rejected.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      string               true  "Title ID"
// @Param        body      body      createReviewRequest  true  "Review"
// @Success      201       {object}  reviewResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Router       /v1/titles/{title_id}/reviews [post]
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	var req createReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.reviews.CreateReview(c.Request().Context(), middleware.ActorFrom(c), c.Param("title_id"),
		ports.ReviewInput{Text: req.Text, Score: req.Score})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

// UpdateReview handles PATCH /v1/titles/:title_id/reviews/:review_id.
//
// @Summary      Edit a review
// @Description  Allowed for the author, moderators and admins.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id   path      string               true  "Title ID"
// @Param        review_id  path      string               true  "Review ID"
// @Param        body       body      updateReviewRequest  true  "Fields to change"
// @Success      200        {object}  reviewResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/titles/{title_id}/reviews/{review_id} [patch]
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	var req updateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.reviews.UpdateReview(c.Request().Context(), middleware.ActorFrom(c),
		c.Param("title_id"), c.Param("review_id"), ports.ReviewPatch{Text: req.Text, Score: req.Score})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// DeleteReview handles DELETE /v1/titles/:title_id/reviews/:review_id.
//
// @Summary      Delete a review
// @Tags         reviews
// @Security     BearerAuth
// @Param        title_id   path  string  true  "Title ID"
// @Param        review_id  path  string  true  "Review ID"
// @Success      204
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/titles/{title_id}/reviews/{review_id} [delete]
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	err := h.reviews.DeleteReview(c.Request().Context(), middleware.ActorFrom(c), c.Param("title_id"), c.Param("review_id"))
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
