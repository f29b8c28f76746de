package dto

import "github.com/octobees/contact-finder/internal/entity"

// Near restricts a search to contacts around a point.
type Near struct {
	Lat         float64
	Lng         float64
	MaxDistance float64
}

// SearchParams carries the search inputs after query-string parsing.
type SearchParams struct {
	Query  string
	Limit  int
	Page   int
	SortBy string
	Order  string
	Near   *Near
}

// ScoredContact is a contact with its normalized relevance, formatted to
// three decimals.
type ScoredContact struct {
	entity.Contact
	Score string `json:"_score"`
}

// SearchResult is the search response body.
type SearchResult struct {
	Status  string          `json:"status"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	Pages   int             `json:"pages"`
	Results []ScoredContact `json:"results"`
}

// ContactResponse is the get-by-id response body.
type ContactResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  *entity.Contact `json:"result"`
}
