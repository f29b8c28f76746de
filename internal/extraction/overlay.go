package extraction

import (
	"regexp"
	"strings"
)

// clickable is an element the overlay dismissal may click, as listed by
// listClickablesScript in document order.
type clickable struct {
	Tag  string `json:"tag"`
	Role string `json:"role"`
	Text string `json:"text"`
	Aria string `json:"aria"`
	Href string `json:"href"`
}

const clickableSelector = `button, [role="button"], a, [aria-label]`

const listClickablesScript = `Array.from(document.querySelectorAll('` + clickableSelector + `')).map((el) => ({
	tag: el.tagName.toLowerCase(),
	role: el.getAttribute("role") || "",
	text: (el.innerText || el.textContent || "").trim(),
	aria: el.getAttribute("aria-label") || "",
	href: el.getAttribute("href") || "",
}))`

// clickScript clicks element %d of the same selection if its text is still %s.
const clickScript = `((i, text) => {
	const el = document.querySelectorAll('` + clickableSelector + `')[i];
	if (!el || (el.innerText || el.textContent || "").trim() !== text) {
		return false;
	}
	el.click();
	return true;
})(%d, %s)`

// pickDismissTarget returns the index of the element to click, or -1.
// The label must appear as a whole word in the text or aria-label. Buttons
// win over other labelled elements, which win over anchors; anchors that
// would navigate are never picked.
func pickDismissTarget(items []clickable, label string) int {
	word, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(label)) + `\b`)
	if err != nil || strings.TrimSpace(label) == "" {
		return -1
	}

	best, bestRank := -1, 3
	for i, it := range items {
		if !word.MatchString(it.Text) && !word.MatchString(it.Aria) {
			continue
		}
		rank := dismissRank(it)
		if rank < bestRank {
			best, bestRank = i, rank
		}
	}
	return best
}

func dismissRank(it clickable) int {
	switch {
	case it.Tag == "a" && !inertHref(it.Href):
		return 3
	case it.Tag == "button" || strings.EqualFold(it.Role, "button"):
		return 0
	case it.Tag != "a":
		return 1
	default:
		return 2
	}
}

func inertHref(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	return h == "" || strings.HasPrefix(h, "#") || strings.HasPrefix(h, "javascript:")
}
