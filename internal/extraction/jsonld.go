package extraction

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/octobees/contact-finder/internal/entity"
)

// linkedData decodes every JSON-LD block on the page. Blocks that fail to
// parse are skipped.
func linkedData(p *page) []any {
	var blocks []any
	p.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return
		}
		blocks = append(blocks, v)
	})
	return blocks
}

// findInTree walks v depth first, visiting each object before its children,
// and returns the first value pick accepts. Object keys are visited in sorted
// order so results are deterministic.
func findInTree[T any](v any, pick func(map[string]any) (T, bool)) (T, bool) {
	switch node := v.(type) {
	case map[string]any:
		if found, ok := pick(node); ok {
			return found, true
		}
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if found, ok := findInTree(node[k], pick); ok {
				return found, true
			}
		}
	case []any:
		for _, item := range node {
			if found, ok := findInTree(item, pick); ok {
				return found, true
			}
		}
	}
	var zero T
	return zero, false
}

// pickGeo accepts {geo: {latitude, longitude}} or an object carrying latitude and longitude itself.
func pickGeo(obj map[string]any) (entity.Coords, bool) {
	if geo, ok := obj["geo"].(map[string]any); ok {
		if c, ok := coordsFrom(geo["latitude"], geo["longitude"]); ok {
			return c, true
		}
	}
	return coordsFrom(obj["latitude"], obj["longitude"])
}

var postalFields = []string{"streetAddress", "addressLocality", "addressRegion", "postalCode", "addressCountry"}

// pickAddress accepts a PostalAddress object, an untyped object carrying
// postal fields under "address", or a plain "address" string.
func pickAddress(obj map[string]any) (string, bool) {
	if hasType(obj["@type"], "PostalAddress") {
		if joined := joinPostal(obj); joined != "" {
			return joined, true
		}
	}
	switch addr := obj["address"].(type) {
	case string:
		if addr = strings.TrimSpace(addr); addr != "" {
			return addr, true
		}
	case map[string]any:
		if _, typed := addr["@type"]; !typed {
			if joined := joinPostal(addr); joined != "" {
				return joined, true
			}
		}
	}
	return "", false
}

func joinPostal(obj map[string]any) string {
	parts := make([]string, 0, len(postalFields))
	for _, field := range postalFields {
		if s := scalarString(obj[field]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func hasType(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

// scalarString renders strings and numbers; objects such as
// {"@type": "Country", "name": "US"} yield their name.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		return scalarString(t["name"])
	}
	return ""
}

func coordsFrom(latRaw, lngRaw any) (entity.Coords, bool) {
	lat, ok := toFloat(latRaw)
	if !ok {
		return entity.Coords{}, false
	}
	lng, ok := toFloat(lngRaw)
	if !ok {
		return entity.Coords{}, false
	}
	return validCoords(lat, lng)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func validCoords(lat, lng float64) (entity.Coords, bool) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return entity.Coords{}, false
	}
	return entity.Coords{Lat: lat, Lng: lng}, true
}
