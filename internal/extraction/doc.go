// Package extraction recovers contact signals (phones, postal address,
// coordinates and social profiles) from business websites.
//
// A page is loaded once in a browser session and captured as a Snapshot of
// its rendered HTML and visible text. Every heuristic then runs in Go over
// that snapshot as an ordered cascade: coordinates come from map embeds, map
// links, JSON-LD, geo meta tags and OpenStreetMap embeds; addresses from
// JSON-LD, <address> tags, address-flavoured elements and the footer. When
// the primary page leaves address or coordinates unresolved, up to seven
// same-site contact-like pages are visited and merged in.
package extraction
