package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-finder/internal/database"
)

// StoreStatus reports the connection state of the contact store.
type StoreStatus interface {
	Status() database.Status
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	store StoreStatus
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(store StoreStatus) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health handles GET /healthz. It answers 503 while the store is unreachable.
func (h *HealthHandler) Health(c echo.Context) error {
	st := h.store.Status()
	data := map[string]string{"database": st.State.String()}
	if st.State != database.StateConnected {
		if st.Err != nil {
			data["error"] = st.Err.Error()
		}
		return c.JSON(http.StatusServiceUnavailable, APIResponse{Status: statusError, Message: "database unavailable", Data: data})
	}
	return Success(c, http.StatusOK, "ok", data)
}
