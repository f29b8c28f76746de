package heuristics

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidURL is returned when a source value cannot be turned into a website URL.
var ErrInvalidURL = errors.New("invalid url")

// CanonicalURL turns a raw domain or URL into the canonical key used by the
// contact store: https is assumed when no scheme is given, scheme and host are
// lower-cased, the host is punycode-encoded, the fragment is dropped and an
// empty path becomes "/".
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", ErrInvalidURL
	}

	host, err := idna.Lookup.ToASCII(strings.ToLower(u.Hostname()))
	if err != nil {
		return "", ErrInvalidURL
	}
	if port := u.Port(); port != "" {
		host += ":" + port
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// HostKey returns the lower-cased hostname of u without a leading "www.".
func HostKey(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
