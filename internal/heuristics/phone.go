package heuristics

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used when numbers are written without a country prefix.
const DefaultPhoneRegion = "US"

const (
	minPhoneDigits = 10
	maxPhoneDigits = 11
	maxE164Digits  = 15
)

// Groups of 1-4 digits, optionally parenthesised, separated by spaces, dots or dashes.
var phonePattern = regexp.MustCompile(`(?:\+\s?)?(?:\(\d{1,4}\)|\d{1,4})(?:[ .\-]{0,2}(?:\(\d{1,4}\)|\d{1,4})){2,5}`)

// ExtractPhoneNumbers finds phone-shaped substrings in text and returns their
// E.164 forms, deduplicated in first-seen order. Matches with fewer than 10 or
// more than 11 digits, or that fail structural validation, are dropped.
func ExtractPhoneNumbers(text, region string) []string {
	matches := phonePattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))

	for _, match := range matches {
		raw := stripPhone(match)
		digits := countDigits(raw)
		if digits < minPhoneDigits || digits > maxPhoneDigits {
			continue
		}
		canonical, ok := canonicalize(raw, region)
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

// CanonicalPhone converts a single raw number, such as a tel: link target, to
// E.164. It reports false when the number is not structurally possible.
func CanonicalPhone(raw, region string) (string, bool) {
	raw = stripPhone(raw)
	if digits := countDigits(raw); digits < minPhoneDigits-3 || digits > maxE164Digits {
		return "", false
	}
	return canonicalize(raw, region)
}

// MergePhones appends the numbers of next that are not already in current.
func MergePhones(current []string, next ...string) []string {
	seen := make(map[string]struct{}, len(current)+len(next))
	for _, p := range current {
		seen[p] = struct{}{}
	}
	for _, p := range next {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		current = append(current, p)
	}
	return current
}

func canonicalize(raw, region string) (string, bool) {
	if region == "" {
		region = DefaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsPossibleNumber(number) {
		return "", false
	}
	return phonenumbers.Format(number, phonenumbers.E164), true
}

// stripPhone keeps digits and a leading plus sign.
func stripPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	b.Grow(len(raw))
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
