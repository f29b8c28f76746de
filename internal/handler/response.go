package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-finder/internal/repository"
	"github.com/octobees/contact-finder/internal/service"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{Status: statusSuccess, Message: message, Data: data})
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{Status: statusError, Message: message})
}

// FromError maps domain errors onto HTTP statuses. Unknown errors become a
// 500 carrying fallback rather than the internal error text.
func FromError(c echo.Context, err error, fallback string) error {
	var csvErr service.CSVValidationError
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		return Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrContactNotFound):
		return Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPassInProgress):
		return Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return Error(c, http.StatusUnauthorized, err.Error())
	case errors.As(err, &csvErr):
		return Error(c, http.StatusBadRequest, csvErr.Error())
	default:
		return Error(c, http.StatusInternalServerError, fallback)
	}
}
