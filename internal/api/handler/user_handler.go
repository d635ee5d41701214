package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/review-api/internal/api/middleware"
	"github.com/yamdb/review-api/internal/core/ports"
)

// UserHandler serves admin account management and the caller's profile.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /v1/users.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Username contains"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Success      200     {object}  pageResponse[userResponse]
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	res, err := h.service.ListUsers(c.Request().Context(), middleware.ActorFrom(c), c.QueryParam("search"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(c, page, res))
}

// Create handles POST /v1/users.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := h.service.CreateUser(c.Request().Context(), middleware.ActorFrom(c), ports.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

// Get handles GET /v1/users/:username.
//
// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  userResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/users/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.service.GetUser(c.Request().Context(), middleware.ActorFrom(c), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// Update handles PATCH /v1/users/:username.
//
// @Summary      Update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string             true  "Username"
// @Param        body      body      updateUserRequest  true  "Fields to change"
// @Success      200       {object}  userResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/users/{username} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := h.service.UpdateUser(c.Request().Context(), middleware.ActorFrom(c), c.Param("username"), req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /v1/users/:username.
//
// @Summary      Delete an account
// @Tags         users
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Success      204
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/users/{username} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), middleware.ActorFrom(c), c.Param("username")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/users/me.
//
// @Summary      Get the caller's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	u, err := h.service.Me(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMe handles PATCH /v1/users/me.
//
// @Summary      Update the caller's profile
// @Description  A role in the payload is ignored unless the caller is an admin.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := h.service.UpdateMe(c.Request().Context(), middleware.ActorFrom(c), req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (r updateUserRequest) patch() ports.UserPatch {
	return ports.UserPatch{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Role:      r.Role,
	}
}
