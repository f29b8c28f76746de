package extraction

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/octobees/contact-finder/internal/entity"
	"github.com/octobees/contact-finder/internal/heuristics"
)

var socialDomains = []struct {
	domain   string
	platform string
}{
	{"facebook.com", entity.PlatformFacebook},
	{"instagram.com", entity.PlatformInstagram},
	{"linkedin.com", entity.PlatformLinkedIn},
	{"twitter.com", entity.PlatformTwitter},
	{"x.com", entity.PlatformTwitter},
	{"tiktok.com", entity.PlatformTikTok},
}

func platformFor(u *url.URL) (string, bool) {
	host := strings.ToLower(strings.Trim(u.Hostname(), "."))
	for _, sd := range socialDomains {
		if host == sd.domain || strings.HasSuffix(host, "."+sd.domain) {
			return sd.platform, true
		}
	}
	return "", false
}

// socialLinks assigns the first anchor found for each platform in document order.
func socialLinks(p *page) entity.Socials {
	var socials entity.Socials
	p.doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		u, ok := p.resolve(href)
		if !ok {
			return true
		}
		if platform, ok := platformFor(u); ok {
			u.Host = strings.ToLower(u.Host)
			socials.SetIfEmpty(platform, u.String())
		}
		return !socials.Complete()
	})
	return socials
}

// telPhones canonicalises the targets of tel: links.
func telPhones(p *page, region string) []string {
	var phones []string
	p.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if len(href) < 4 || !strings.EqualFold(href[:4], "tel:") {
			return
		}
		raw, err := url.PathUnescape(href[4:])
		if err != nil {
			raw = href[4:]
		}
		if phone, ok := heuristics.CanonicalPhone(raw, region); ok {
			phones = heuristics.MergePhones(phones, phone)
		}
	})
	return phones
}

var fallbackKeywords = []string{
	"contact", "location", "find us", "where", "directions",
	"about", "terms", "legal", "imprint", "impressum",
}

// fallbackLinks collects same-site links that look like contact or about
// pages, in document order, up to limit.
func fallbackLinks(p *page, limit int) []string {
	if limit <= 0 {
		return nil
	}
	home := heuristics.HostKey(p.url)
	self := withoutFragment(p.url)
	seen := map[string]struct{}{self: {}}
	var links []string

	p.doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		lowerHref := strings.ToLower(strings.TrimSpace(href))
		if strings.HasPrefix(lowerHref, "#") || strings.HasPrefix(lowerHref, "mailto:") ||
			strings.HasPrefix(lowerHref, "tel:") || strings.HasPrefix(lowerHref, "javascript:") {
			return true
		}
		if !containsKeyword(lowerHref) && !containsKeyword(strings.ToLower(s.Text())) {
			return true
		}

		u, ok := p.resolve(href)
		if !ok || heuristics.HostKey(u) != home {
			return true
		}
		link := withoutFragment(u)
		if _, dup := seen[link]; dup {
			return true
		}
		seen[link] = struct{}{}
		links = append(links, link)
		return len(links) < limit
	})
	return links
}

func containsKeyword(s string) bool {
	for _, kw := range fallbackKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func withoutFragment(u *url.URL) string {
	clone := *u
	clone.Fragment = ""
	clone.RawFragment = ""
	return clone.String()
}
