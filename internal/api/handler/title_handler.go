package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/review-api/internal/api/middleware"
	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/ports"
)

// ListTitles handles GET /v1/titles.
//
// @Summary      List titles
// @Description  Every title carries its rating: the mean review score, or null without reviews.
// @Tags         titles
// @Produce      json
// @Param        genre     query     string  false  "Genre slug"
// @Param        category  query     string  false  "Category slug"
// @Param        name      query     string  false  "Name contains"
// @Param        year      query     int     false  "Release year"
// @Param        limit     query     int     false  "Page size"
// @Param        offset    query     int     false  "Page offset"
// @Success      200       {object}  pageResponse[titleResponse]
// @Failure      400       {object}  errorResponse
// @Router       /v1/titles [get]
func (h *CatalogHandler) ListTitles(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	filter := ports.TitleFilter{
		Genre:    c.QueryParam("genre"),
		Category: c.QueryParam("category"),
		Name:     c.QueryParam("name"),
	}
	if raw := c.QueryParam("year"); raw != "" {
		if filter.Year, err = strconv.Atoi(raw); err != nil {
			return fmt.Errorf("%w: year must be an integer", domain.ErrValidation)
		}
	}

	res, err := h.service.ListTitles(c.Request().Context(), filter, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(c, page, res))
}

// GetTitle handles GET /v1/titles/:title_id.
//
// @Summary      Get a title
// @Tags         titles
// @Produce      json
// @Param        title_id  path      string  true  "Title ID"
// @Success      200       {object}  titleResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/titles/{title_id} [get]
func (h *CatalogHandler) GetTitle(c echo.Context) error {
	t, err := h.service.GetTitle(c.Request().Context(), c.Param("title_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// CreateTitle handles POST /v1/titles.
//
// @Summary      Create a title
// @Tags         titles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTitleRequest  true  "Title; genre and category are slugs"
// @Success      201   {object}  titleResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/titles [post]
func (h *CatalogHandler) CreateTitle(c echo.Context) error {
	var req createTitleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	t, err := h.service.CreateTitle(c.Request().Context(), middleware.ActorFrom(c), ports.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Genre:       req.Genre,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// UpdateTitle handles PATCH /v1/titles/:title_id.
//
// @Summary      Partially update a title
// @Tags         titles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      string              true  "Title ID"
// @Param        body      body      updateTitleRequest  true  "Fields to change"
// @Success      200       {object}  titleResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/titles/{title_id} [patch]
func (h *CatalogHandler) UpdateTitle(c echo.Context) error {
	var req updateTitleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	t, err := h.service.UpdateTitle(c.Request().Context(), middleware.ActorFrom(c), c.Param("title_id"), ports.TitlePatch{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Genre:       req.Genre,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTitle handles DELETE /v1/titles/:title_id.
//
// @Summary      Delete a title
// @Description  Its reviews and their comments are deleted with it.
// @Tags         titles
// @Security     BearerAuth
// @Param        title_id  path  string  true  "Title ID"
// @Success      204
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/titles/{title_id} [delete]
func (h *CatalogHandler) DeleteTitle(c echo.Context) error {
	if err := h.service.DeleteTitle(c.Request().Context(), middleware.ActorFrom(c), c.Param("title_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
