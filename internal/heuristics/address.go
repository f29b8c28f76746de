package heuristics

import (
	"regexp"
	"strings"
)

// A street number, up to five name tokens and a street-type suffix, or the
// continental "<name>strasse 12" form.
var addressPattern = regexp.MustCompile(`(?i)(?:\b\d{1,6}[a-z]?(?:-\d{1,6})?,?\s+(?:[\p{L}0-9.'\-]+\s+){0,5}(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|place|pl|square|sq|parkway|pkwy|highway|hwy|way|terrace|ter|circle|cir|plaza|suite|ste)\b)|(?:[\p{L}\-]+(?:straße|strasse|str\.|weg|gasse|platz|allee)\s+\d{1,5}[a-z]?\b)`)

// MatchesAddress reports whether text contains an address-shaped substring.
func MatchesAddress(text string) bool {
	return addressPattern.MatchString(text)
}

// ExtractAddressFromText returns the first trimmed line of text that looks
// like a postal address.
func ExtractAddressFromText(text string) (string, bool) {
	for _, line := range SplitLines(text) {
		if addressPattern.MatchString(line) {
			return line, true
		}
	}
	return "", false
}

// SplitLines splits text on line breaks and returns the non-empty trimmed lines.
func SplitLines(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
