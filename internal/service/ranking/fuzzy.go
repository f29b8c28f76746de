package ranking

import (
	"slices"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/octobees/contact-finder/internal/entity"
)

// DefaultThreshold is the highest score, on a 0 (exact) to 1 (no match)
// scale, a candidate may have and still be returned.
const DefaultThreshold = 0.4

// coverageWeight scales the penalty for matching a short query inside a long field.
const coverageWeight = 0.1

// FuzzyScorer scores contacts against a query with edit-distance tolerance.
type FuzzyScorer struct {
	Threshold float64
}

// Score returns the best field score of c for query and whether it passes
// the threshold. The comparison is inclusive.
func (s FuzzyScorer) Score(query string, c entity.Contact) (float64, bool) {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	best := 1.0
	for _, field := range Fields(c) {
		if score := FieldScore(query, field); score < best {
			best = score
			if best == 0 {
				break
			}
		}
	}
	return best, best <= threshold
}

// Fields lists the searchable values of c.
func Fields(c entity.Contact) []string {
	fields := []string{c.CompanyCommercialName, c.CompanyLegalName, c.URL}
	if c.Address != nil {
		fields = append(fields, *c.Address)
	}
	fields = append(fields, c.Phones...)
	fields = append(fields, c.Socials.Values()...)
	fields = append(fields, c.CompanyAllAvailableNames...)
	return fields
}

// FieldScore compares query with the closest same-length window of field.
// The edit ratio of that window is blended with a small penalty for the part
// of the field the query does not cover. 0 is an exact match. Lengths and
// edits are both counted in runes.
func FieldScore(query, field string) float64 {
	q := []rune(strings.ToLower(strings.TrimSpace(query)))
	f := []rune(strings.ToLower(strings.TrimSpace(field)))
	if len(q) == 0 || len(f) == 0 {
		return 1
	}
	if slices.Equal(q, f) {
		return 0
	}

	qLen := len(q)
	if qLen >= len(f) {
		return clamp(float64(editDistance(q, f)) / float64(qLen))
	}

	bestDistance := qLen
	for start := 0; start+qLen <= len(f); start++ {
		if d := editDistance(q, f[start:start+qLen]); d < bestDistance {
			bestDistance = d
			if d == 0 {
				break
			}
		}
	}

	ratio := float64(bestDistance) / float64(qLen)
	coverage := 1 - float64(qLen)/float64(len(f))
	return clamp(ratio + coverageWeight*coverage)
}

// maxAlphabet keeps re-encoded runes in the ASCII range.
const maxAlphabet = 128

// editDistance is the Levenshtein distance between a and b in runes.
// WagnerFischer compares bytes, so both sides are first re-encoded onto a
// shared alphabet of one ASCII byte per distinct rune.
func editDistance(a, b []rune) int {
	alphabet := make(map[rune]byte, maxAlphabet)
	encode := func(rs []rune) (string, bool) {
		out := make([]byte, len(rs))
		for i, r := range rs {
			code, ok := alphabet[r]
			if !ok {
				if len(alphabet) == maxAlphabet {
					return "", false
				}
				code = byte(len(alphabet))
				alphabet[r] = code
			}
			out[i] = code
		}
		return string(out), true
	}

	ea, okA := encode(a)
	eb, okB := encode(b)
	if !okA || !okB {
		// Too many distinct runes; the byte distance can only overstate.
		return smetrics.WagnerFischer(string(a), string(b), 1, 1, 1)
	}
	return smetrics.WagnerFischer(ea, eb, 1, 1, 1)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
