package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-finder/internal/dto"
)

// Authenticator exchanges operator credentials for a token.
type Authenticator interface {
	Login(email, password string) (dto.LoginResponse, error)
}

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "email and password are required")
	}

	resp, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		return FromError(c, err, "unable to authenticate")
	}

	return Success(c, http.StatusOK, "login successful", resp)
}
