package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-finder/internal/dto"
	"github.com/octobees/contact-finder/internal/entity"
)

// ContactSearcher is the read side of the contact store.
type ContactSearcher interface {
	Search(ctx context.Context, params dto.SearchParams) (dto.SearchResult, error)
	GetByID(ctx context.Context, id int64) (*entity.Contact, error)
}

// ContactsHandler exposes the public search endpoints.
type ContactsHandler struct {
	searcher ContactSearcher
}

// NewContactsHandler creates a new handler instance.
func NewContactsHandler(searcher ContactSearcher) *ContactsHandler {
	return &ContactsHandler{searcher: searcher}
}

// Search handles GET /api/v1/search requests.
func (h *ContactsHandler) Search(c echo.Context) error {
	result, err := h.searcher.Search(c.Request().Context(), parseSearchParams(c))
	if err != nil {
		return FromError(c, err, "unable to search contacts")
	}
	return c.JSON(http.StatusOK, result)
}

// GetByID handles GET /api/v1/get_by_id?id= and GET /api/v1/contacts/:id.
func (h *ContactsHandler) GetByID(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("id"))
	if raw == "" {
		raw = strings.TrimSpace(c.Param("id"))
	}
	if raw == "" {
		return Error(c, http.StatusBadRequest, "id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return Error(c, http.StatusBadRequest, "id must be a positive integer")
	}

	contact, err := h.searcher.GetByID(c.Request().Context(), id)
	if err != nil {
		return FromError(c, err, "unable to load contact")
	}
	return c.JSON(http.StatusOK, dto.ContactResponse{
		Status:  statusSuccess,
		Message: "contact found",
		Result:  contact,
	})
}

func parseSearchParams(c echo.Context) dto.SearchParams {
	params := dto.SearchParams{
		Query:  c.QueryParam("q"),
		Limit:  parseIntDefault(c.QueryParam("limit"), 0),
		Page:   parseIntDefault(c.QueryParam("page"), 0),
		SortBy: firstParam(c, "sort_by", "sortBy"),
		Order:  c.QueryParam("order"),
	}

	lat, latOK := parseCoordinate(firstParam(c, "near[lat]", "lat"), 90)
	lng, lngOK := parseCoordinate(firstParam(c, "near[lng]", "lng"), 180)
	if latOK && lngOK {
		maxDistance, _ := strconv.ParseFloat(firstParam(c, "near[maxDistance]", "max_distance"), 64)
		if math.IsNaN(maxDistance) || maxDistance < 0 {
			maxDistance = 0
		}
		params.Near = &dto.Near{Lat: lat, Lng: lng, MaxDistance: maxDistance}
	}
	return params
}

func firstParam(c echo.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
			return v
		}
	}
	return ""
}

func parseCoordinate(value string, bound float64) (float64, bool) {
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) > bound {
		return 0, false
	}
	return f, true
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}
