package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/review-api/internal/api/middleware"
	"github.com/yamdb/review-api/internal/core/ports"
)

// CatalogHandler serves categories, genres and titles.
type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListCategories handles GET /v1/categories.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        search  query     string  false  "Name contains"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Success      200     {object}  pageResponse[categoryResponse]
// @Failure      400     {object}  errorResponse
// @Router       /v1/categories [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	res, err := h.service.ListCategories(c.Request().Context(), c.QueryParam("search"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(c, page, res))
}

// CreateCategory handles POST /v1/categories.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      slugRequest  true  "Category"
// @Success      201   {object}  categoryResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/categories [post]
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req slugRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cat, err := h.service.CreateCategory(c.Request().Context(), middleware.ActorFrom(c), req.Name, req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

// DeleteCategory handles DELETE /v1/categories/:slug.
//
// @Summary      Delete a category
// @Description  Titles in the category become uncategorised.
// @Tags         categories
// @Security     BearerAuth
// @Param        slug  path  string  true  "Category slug"
// @Success      204
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/categories/{slug} [delete]
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	if err := h.service.DeleteCategory(c.Request().Context(), middleware.ActorFrom(c), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListGenres handles GET /v1/genres.
//
// @Summary      List genres
// @Tags         genres
// @Produce      json
// @Param        search  query     string  false  "Name contains"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Success      200     {object}  pageResponse[genreResponse]
// @Failure      400     {object}  errorResponse
// @Router       /v1/genres [get]
func (h *CatalogHandler) ListGenres(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	res, err := h.service.ListGenres(c.Request().Context(), c.QueryParam("search"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(c, page, res))
}

// CreateGenre handles POST /v1/genres.
//
// @Summary      Create a genre
// @Tags         genres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      slugRequest  true  "Genre"
// @Success      201   {object}  genreResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/genres [post]
func (h *CatalogHandler) CreateGenre(c echo.Context) error {
	var req slugRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	g, err := h.service.CreateGenre(c.Request().Context(), middleware.ActorFrom(c), req.Name, req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, g)
}

// DeleteGenre handles DELETE /v1/genres/:slug.
//
// @Summary      Delete a genre
// @Tags         genres
// @Security     BearerAuth
// @Param        slug  path  string  true  "Genre slug"
// @Success      204
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/genres/{slug} [delete]
func (h *CatalogHandler) DeleteGenre(c echo.Context) error {
	if err := h.service.DeleteGenre(c.Request().Context(), middleware.ActorFrom(c), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// bindAndValidate decodes the JSON body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
