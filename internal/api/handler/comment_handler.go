package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/review-api/internal/api/middleware"
)

// ListComments handles GET /v1/titles/:title_id/reviews/:review_id/comments.
//
// @Summary      List the comments of a review
// @Tags         comments
// @Produce      json
// @Param        title_id   path      string  true   "Title ID"
// @Param        review_id  path      string  true   "Review ID"
// @Param        limit      query     int     false  "Page size"
// @Param        offset     query     int     false  "Page offset"
// @Success      200        {object}  pageResponse[commentResponse]
// @Failure      404        {object}  errorResponse
// @Router       /v1/titles/{title_id}/reviews/{review_id}/comments [get]
func (h *ReviewHandler) ListComments(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	res, err := h.comments.ListComments(c.Request().Context(), c.Param("title_id"), c.Param("review_id"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(c, page, res))
}

// GetComment handles GET /v1/titles/:title_id/reviews/:review_id/comments/:comment_id.
//
// @Summary      Get a comment
// @Tags         comments
// @Produce      json
// @Param        title_id    path      string  true  "Title ID"
// @Param        review_id   path      string  true  "Review ID"
// @Param        comment_id  path      string  true  "Comment ID"
// @Success      200         {object}  commentResponse
// @Failure      404         {object}  errorResponse
// @Router       /v1/titles/{title_id}/reviews/{review_id}/comments/{comment_id} [get]
func (h *ReviewHandler) GetComment(c echo.Context) error {
	cm, err := h.comments.GetComment(c.Request().Context(), c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cm)
}

// CreateComment handles POST /v1/titles/:title_id/reviews/:review_id/comments.
//
// @Summary      Comment on a review
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id   path      string                true  "Title ID"
// @Param        review_id  path      string                true  "Review ID"
// @Param        body       body      createCommentRequest  true  "Comment"
// @Success      201        {object}  commentResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/titles/{title_id}/reviews/{review_id}/comments [post]
func (h *ReviewHandler) CreateComment(c echo.Context) error {
	var req createCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cm, err := h.comments.CreateComment(c.Request().Context(), middleware.ActorFrom(c),
		c.Param("title_id"), c.Param("review_id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cm)
}

// UpdateComment handles PATCH /v1/titles/:title_id/reviews/:review_id/comments/:comment_id.
//
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id    path      string                true  "Title ID"
// @Param        review_id   path      string                true  "Review ID"
// @Param        comment_id  path      string                true  "Comment ID"
// @Param        body        body      updateCommentRequest  true  "Fields to change"
// @Success      200         {object}  commentResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /v1/titles/{title_id}/reviews/{review_id}/comments/{comment_id} [patch]
func (h *ReviewHandler) UpdateComment(c echo.Context) error {
	var req updateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cm, err := h.comments.UpdateComment(c.Request().Context(), middleware.ActorFrom(c),
		c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cm)
}

// DeleteComment handles DELETE /v1/titles/:title_id/reviews/:review_id/comments/:comment_id.
//
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        title_id    path  string  true  "Title ID"
// @Param        review_id   path  string  true  "Review ID"
// @Param        comment_id  path  string  true  "Comment ID"
// @Success      204
// @Failure      401         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /v1/titles/{title_id}/reviews/{review_id}/comments/{comment_id} [delete]
func (h *ReviewHandler) DeleteComment(c echo.Context) error {
	err := h.comments.DeleteComment(c.Request().Context(), middleware.ActorFrom(c),
		c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
