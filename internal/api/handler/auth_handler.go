package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/review-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUp issues a confirmation code for a (username, email) pair.
//
// @Summary      Request a confirmation code
// @Description  Creates the account on first use and sends a fresh confirmation code to the email address. Repeating the call with the same pair rotates the code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Username and email"
// @Success      200   {object}  signUpResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.SignUp(c.Request().Context(), req.Username, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signUpResponse{Username: user.Username, Email: user.Email})
}

// Token exchanges a confirmation code for a bearer token.
//
// @Summary      Obtain a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Username and confirmation code"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.authService.IssueToken(c.Request().Context(), req.Username, string(req.ConfirmationCode))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tokenResponse{Token: token})
}
