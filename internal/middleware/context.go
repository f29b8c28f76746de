package middleware

import "github.com/labstack/echo/v4"

// Context keys used to store request and operator metadata.
const (
	ContextKeyOperatorEmail = "operator_email"
	ContextKeyOperatorRole  = "operator_role"
	ContextKeyRequestID     = "request_id"
)

func deny(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"status": "error", "message": message})
}
