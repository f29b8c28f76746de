package ranking

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/octobees/contact-finder/internal/entity"
)

// Sort keys and directions.
const (
	SortByScore = "score"
	OrderAsc    = "asc"
	OrderDesc   = "desc"
)

// Candidate is a contact with its fuzzy score (0 exact, 1 no match).
type Candidate struct {
	Contact entity.Contact
	Score   float64
}

// Relevance is the normalized relevance of the candidate, 1 being best.
func (c Candidate) Relevance() float64 {
	return 1 - c.Score
}

var comparators = map[string]func(a, b Candidate) int{
	SortByScore: func(a, b Candidate) int { return cmp.Compare(a.Score, b.Score) },
	"id":        func(a, b Candidate) int { return cmp.Compare(a.Contact.ID, b.Contact.ID) },
	"url":       func(a, b Candidate) int { return strings.Compare(a.Contact.URL, b.Contact.URL) },
	"company_commercial_name": func(a, b Candidate) int {
		return strings.Compare(a.Contact.CompanyCommercialName, b.Contact.CompanyCommercialName)
	},
	"company_legal_name": func(a, b Candidate) int {
		return strings.Compare(a.Contact.CompanyLegalName, b.Contact.CompanyLegalName)
	},
	"address": func(a, b Candidate) int {
		return strings.Compare(deref(a.Contact.Address), deref(b.Contact.Address))
	},
	"created_at": func(a, b Candidate) int { return a.Contact.CreatedAt.Compare(b.Contact.CreatedAt) },
	"updated_at": func(a, b Candidate) int { return a.Contact.UpdatedAt.Compare(b.Contact.UpdatedAt) },
	"success": func(a, b Candidate) int {
		return cmp.Compare(boolRank(a.Contact.Success), boolRank(b.Contact.Success))
	},
}

// Sort orders candidates in place by key, which may be snake_case or
// camelCase. Equal values keep their retrieval order, as do unknown keys.
func Sort(candidates []Candidate, key, order string) {
	compare, ok := comparators[snakeCase(key)]
	if !ok {
		return
	}
	desc := !strings.EqualFold(order, OrderAsc)
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

// Page returns the slice bounds for the 1-based page and the page count.
func Page(total, page, limit int) (start, end, pages int) {
	if limit <= 0 || total <= 0 {
		return 0, 0, 0
	}
	if page < 1 {
		page = 1
	}
	pages = int(math.Ceil(float64(total) / float64(limit)))
	start = (page - 1) * limit
	if start > total {
		start = total
	}
	end = min(start+limit, total)
	return start, end, pages
}

func snakeCase(key string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(key) {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}
