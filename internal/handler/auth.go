package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inventory-api/internal/model"
	"github.com/iliyamo/inventory-api/internal/service"
)

// Authenticator is implemented by service.AuthService.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	Register(ctx context.Context, name, email, password string) (model.PublicUser, error)
	Refresh(ctx context.Context, raw string) (service.TokenPair, error)
	Logout(ctx context.Context, raw string) error
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type registerReq struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Login: verify credentials and return a token pair with the user.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if errs := bind(c, &req); errs != nil {
		return invalidData(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Auth.Login(ctx, normalizeEmail(req.Email), req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Register: create a USER account. No tokens are issued.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if errs := bind(c, &req); errs != nil {
		return invalidData(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Auth.Register(ctx, strings.TrimSpace(req.Name), normalizeEmail(req.Email), req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Refresh: exchange a refresh token for a new pair. The old one is consumed.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if errs := bind(c, &req); errs != nil {
		return invalidData(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout: revoke the presented refresh token. Unknown tokens still get 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if errs := bind(c, &req); errs != nil {
		return invalidData(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.Logout(ctx, req.RefreshToken); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
