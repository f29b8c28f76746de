package extraction

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/octobees/contact-finder/internal/heuristics"
)

const (
	minAddressLen = 16
	maxAddressLen = 299
	footerWindow  = 3
)

var addressStrategies = []strategy[string]{
	{name: "jsonld_address", run: addressFromLinkedData},
	{name: "address_tag", run: addressFromTags},
	{name: "address_selectors", run: addressFromSelectors},
	{name: "footer_window", run: addressFromFooter},
	{name: "map_place_query", run: placeQueryFromMapIframes},
}

func addressFromLinkedData(p *page) (string, bool) {
	for _, block := range linkedData(p) {
		if addr, ok := findInTree(block, pickAddress); ok {
			return addr, true
		}
	}
	return "", false
}

func addressFromTags(p *page) (string, bool) {
	var found string
	p.doc.Find("address").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := flatten(visibleText(s))
		if withinAddressBounds(text) {
			found = text
			return false
		}
		return true
	})
	return found, found != ""
}

// elementPredicate selects address-flavoured elements.
type elementPredicate func(*goquery.Selection) bool

func attrContains(attr, needle string) elementPredicate {
	return func(s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		return ok && strings.Contains(strings.ToLower(v), needle)
	}
}

func attrPresent(attr string) elementPredicate {
	return func(s *goquery.Selection) bool {
		_, ok := s.Attr(attr)
		return ok
	}
}

func attrEquals(attr, want string) elementPredicate {
	return func(s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		return ok && strings.EqualFold(strings.TrimSpace(v), want)
	}
}

var addressSelectors = []elementPredicate{
	attrContains("class", "address"),
	attrContains("class", "location"),
	attrContains("id", "address"),
	attrContains("id", "location"),
	attrPresent("data-location"),
	attrEquals("itemprop", "address"),
}

func addressFromSelectors(p *page) (string, bool) {
	elements := p.doc.Find("body *")
	for _, match := range addressSelectors {
		var found string
		elements.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !match(s) {
				return true
			}
			text := visibleText(s)
			if !withinAddressBounds(flatten(text)) || !heuristics.MatchesAddress(text) {
				return true
			}
			if line, ok := heuristics.ExtractAddressFromText(text); ok {
				found = line
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

func addressFromFooter(p *page) (string, bool) {
	footer := p.doc.Find("footer").First()
	if footer.Length() == 0 {
		return "", false
	}
	lines := heuristics.SplitLines(visibleText(footer))
	for i := range lines {
		end := min(i+footerWindow, len(lines))
		window := strings.Join(lines[i:end], " ")
		if heuristics.MatchesAddress(window) {
			return window, true
		}
	}
	return "", false
}

func withinAddressBounds(text string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	return n >= minAddressLen && n <= maxAddressLen
}

// flatten joins multi-line element text into a single comma separated line.
func flatten(text string) string {
	return strings.Join(heuristics.SplitLines(text), ", ")
}
