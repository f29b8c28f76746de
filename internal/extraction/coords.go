package extraction

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/octobees/contact-finder/internal/entity"
)

var (
	// "@40.7,-73.9" in place URLs and "!40.7,-73.9" in some embeds.
	mapPairPattern = regexp.MustCompile(`[@!](-?\d+\.?\d*),(-?\d+\.?\d*)`)
	// Embed "pb" parameters carry "!2d<lng>!3d<lat>".
	mapEmbedPattern = regexp.MustCompile(`!2d(-?\d+(?:\.\d+)?)!3d(-?\d+(?:\.\d+)?)`)
	mapQueryPair    = regexp.MustCompile(`[?&](?:q|ll|center|query|daddr)=(-?\d+\.?\d*)(?:,|%2C|%2c)\+?(?:%20)?\s*(-?\d+\.?\d*)`)
	mapPlaceQuery   = regexp.MustCompile(`[?&]q=([^&]+)`)
	osmMarker       = regexp.MustCompile(`[?&]mlat=(-?\d+\.?\d*).*?[?&]mlon=(-?\d+\.?\d*)`)
	icbmPair        = regexp.MustCompile(`^\s*(-?\d+\.?\d*)\s*[,;]\s*(-?\d+\.?\d*)\s*$`)
)

var coordStrategies = []strategy[entity.Coords]{
	{name: "map_iframe", run: coordsFromMapIframes},
	{name: "map_anchor", run: coordsFromMapAnchors},
	{name: "jsonld_geo", run: coordsFromLinkedData},
	{name: "geo_meta", run: coordsFromMeta},
	{name: "osm_iframe", run: coordsFromOSM},
}

func isGoogleMapsURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.Contains(lower, "google.com/maps") || strings.Contains(lower, "maps.google.")
}

func isMapProviderURL(raw string) bool {
	return isGoogleMapsURL(raw) || strings.Contains(strings.ToLower(raw), "maps.apple.com")
}

// coordsFromMapURL recognises coordinate pairs in the URL shapes map
// providers use for embeds and place links.
func coordsFromMapURL(raw string) (entity.Coords, bool) {
	if m := mapPairPattern.FindStringSubmatch(raw); m != nil {
		if c, ok := parsePair(m[1], m[2]); ok {
			return c, true
		}
	}
	if m := mapEmbedPattern.FindStringSubmatch(raw); m != nil {
		if c, ok := parsePair(m[2], m[1]); ok {
			return c, true
		}
	}
	if m := mapQueryPair.FindStringSubmatch(raw); m != nil {
		if c, ok := parsePair(m[1], m[2]); ok {
			return c, true
		}
	}
	return entity.Coords{}, false
}

func coordsFromMapIframes(p *page) (entity.Coords, bool) {
	return firstAttrMatch(p.doc.Find("iframe[src]"), "src", isGoogleMapsURL, coordsFromMapURL)
}

func coordsFromMapAnchors(p *page) (entity.Coords, bool) {
	return firstAttrMatch(p.doc.Find("a[href]"), "href", isMapProviderURL, coordsFromMapURL)
}

func coordsFromLinkedData(p *page) (entity.Coords, bool) {
	for _, block := range linkedData(p) {
		if c, ok := findInTree(block, pickGeo); ok {
			return c, true
		}
	}
	return entity.Coords{}, false
}

func coordsFromMeta(p *page) (entity.Coords, bool) {
	if content, ok := p.doc.Find(`meta[name="geo.position"]`).First().Attr("content"); ok {
		parts := strings.Split(content, ";")
		if len(parts) == 2 {
			if c, ok := parsePair(parts[0], parts[1]); ok {
				return c, true
			}
		}
	}
	if content, ok := p.doc.Find(`meta[name="ICBM"]`).First().Attr("content"); ok {
		if m := icbmPair.FindStringSubmatch(content); m != nil {
			return parsePair(m[1], m[2])
		}
	}
	return entity.Coords{}, false
}

func coordsFromOSM(p *page) (entity.Coords, bool) {
	isOSM := func(src string) bool { return strings.Contains(strings.ToLower(src), "openstreetmap") }
	return firstAttrMatch(p.doc.Find("iframe[src]"), "src", isOSM, func(src string) (entity.Coords, bool) {
		m := osmMarker.FindStringSubmatch(src)
		if m == nil {
			return entity.Coords{}, false
		}
		return parsePair(m[1], m[2])
	})
}

// placeQueryFromMapIframes returns the decoded free-text place query of a
// google maps embed when it is not a coordinate pair.
func placeQueryFromMapIframes(p *page) (string, bool) {
	return firstAttrMatch(p.doc.Find("iframe[src]"), "src", isGoogleMapsURL, func(src string) (string, bool) {
		if _, ok := coordsFromMapURL(src); ok {
			return "", false
		}
		m := mapPlaceQuery.FindStringSubmatch(src)
		if m == nil {
			return "", false
		}
		q, err := url.QueryUnescape(m[1])
		if err != nil {
			return "", false
		}
		q = strings.Join(strings.Fields(q), " ")
		return q, len(q) >= 3
	})
}

func firstAttrMatch[T any](sel *goquery.Selection, attr string, accept func(string) bool, parse func(string) (T, bool)) (T, bool) {
	var (
		found T
		hit   bool
	)
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		if !ok || !accept(v) {
			return true
		}
		found, hit = parse(v)
		return !hit
	})
	return found, hit
}

func parsePair(latRaw, lngRaw string) (entity.Coords, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return entity.Coords{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if err != nil {
		return entity.Coords{}, false
	}
	return validCoords(lat, lng)
}
