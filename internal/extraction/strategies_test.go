package extraction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/octobees/contact-finder/internal/entity"
)

func mustPage(t *testing.T, html string) *page {
	t.Helper()
	p, err := parsePage(Snapshot{URL: home, HTML: html}, home)
	require.NoError(t, err)
	return p
}

func TestCoordStrategies(t *testing.T) {
	tests := map[string]struct {
		html string
		want *entity.Coords
	}{
		"google embed beats meta": {
			html: `<head><meta name="geo.position" content="1;2"></head><body>
<iframe src="https://www.google.com/maps/embed?pb=!1m18!1m12!1m3!1d3022.2!2d-73.9857!3d40.7484!2m3"></iframe></body>`,
			want: &entity.Coords{Lat: 40.7484, Lng: -73.9857},
		},
		"place url pair": {
			html: `<iframe src="https://www.google.com/maps/place/Acme/@52.5200,13.4050,17z"></iframe>`,
			want: &entity.Coords{Lat: 52.52, Lng: 13.405},
		},
		"map anchor query": {
			html: `<a href="https://maps.google.com/?q=51.5074,-0.1278">Directions</a>`,
			want: &entity.Coords{Lat: 51.5074, Lng: -0.1278},
		},
		"apple maps anchor": {
			html: `<a href="https://maps.apple.com/?ll=37.3349,-122.0090">Map</a>`,
			want: &entity.Coords{Lat: 37.3349, Lng: -122.009},
		},
		"meta geo position": {
			html: `<head><meta name="geo.position" content="48.1374;11.5755"></head>`,
			want: &entity.Coords{Lat: 48.1374, Lng: 11.5755},
		},
		"icbm meta": {
			html: `<head><meta name="ICBM" content="35.6895, 139.6917"></head>`,
			want: &entity.Coords{Lat: 35.6895, Lng: 139.6917},
		},
		"openstreetmap marker": {
			html: `<iframe src="https://www.openstreetmap.org/export/embed.html?bbox=2.29,48.85,2.30,48.86&layer=mapnik&mlat=48.8584&mlon=2.2945"></iframe>`,
			want: &entity.Coords{Lat: 48.8584, Lng: 2.2945},
		},
		"out of range pair is ignored": {
			html: `<head><meta name="geo.position" content="123.0;45.0"></head>`,
		},
		"nothing": {
			html: `<body><p>No map here</p></body>`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := firstOf(zap.NewNop(), mustPage(t, tt.html), coordStrategies)
			if tt.want == nil {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, *tt.want, got)
		})
	}
}

func TestAddressStrategies(t *testing.T) {
	tests := map[string]struct {
		html string
		want string
	}{
		"plain jsonld address string": {
			html: `<script type="application/ld+json">{"@graph":[{"@type":"Organization","address":"1 Plain Street, Dublin"}]}</script>`,
			want: "1 Plain Street, Dublin",
		},
		"address tag respects length bounds": {
			html: `<address>Short</address><address>1 Infinite Loop<br>Cupertino, CA 95014</address>`,
			want: "1 Infinite Loop, Cupertino, CA 95014",
		},
		"location class": {
			html: `<div class="Store-Location"><span>Visit</span><p>88 Colin P Kelly Jr St, San Francisco</p></div>`,
			want: "88 Colin P Kelly Jr St, San Francisco",
		},
		"itemprop address": {
			html: `<span itemprop="address">Come see us at 9 Harbour Way, Cork</span>`,
			want: "Come see us at 9 Harbour Way, Cork",
		},
		"selector text must look like an address": {
			html: `<div id="location-picker">Choose your nearest store today</div>`,
		},
		"footer window": {
			html: `<footer><p>Acme Ltd</p><p>Unit 4</p><p>12 Market Road</p><p>London</p></footer>`,
			want: "Acme Ltd Unit 4 12 Market Road",
		},
		"map place query": {
			html: `<iframe src="https://www.google.com/maps/embed/v1/place?key=K&q=Eiffel+Tower,Paris+France"></iframe>`,
			want: "Eiffel Tower,Paris France",
		},
		"address tag beats map place query": {
			html: `<iframe src="https://www.google.com/maps/embed/v1/place?key=K&q=Acme+Bakery"></iframe><address>14 Rue Cler, 75007 Paris</address>`,
			want: "14 Rue Cler, 75007 Paris",
		},
		"nothing": {
			html: `<body><p>Hello</p></body>`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := firstOf(zap.NewNop(), mustPage(t, tt.html), addressStrategies)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindInTree(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{
		"@graph": [
			{"@type": "WebSite", "name": "Acme"},
			{"@type": "Place", "geo": {"latitude": "1.5", "longitude": 2.5},
			 "address": {"streetAddress": "5 Quay Street", "addressCountry": {"@type": "Country", "name": "IE"}}}
		]
	}`), &doc))

	coords, ok := findInTree(doc, pickGeo)
	require.True(t, ok)
	assert.Equal(t, entity.Coords{Lat: 1.5, Lng: 2.5}, coords)

	addr, ok := findInTree(doc, pickAddress)
	require.True(t, ok)
	assert.Equal(t, "5 Quay Street, IE", addr)

	_, ok = findInTree(any([]any{"a", 1.0}), pickGeo)
	assert.False(t, ok)
}

func TestFirstOf_RecoversPanickingStrategy(t *testing.T) {
	strategies := []strategy[string]{
		{name: "boom", run: func(*page) (string, bool) { panic("bad selector") }},
		{name: "miss", run: func(*page) (string, bool) { return "", false }},
		{name: "hit", run: func(*page) (string, bool) { return "found", true }},
	}

	got, ok := firstOf(zap.NewNop(), mustPage(t, "<p></p>"), strategies)
	require.True(t, ok)
	assert.Equal(t, "found", got)
}

func TestSocialLinks(t *testing.T) {
	p := mustPage(t, `<body>
<a href="https://fox.com/news">News</a>
<a href="HTTPS://WWW.INSTAGRAM.COM/Acme">IG</a>
<a href="https://instagram.com/second">IG 2</a>
<a href="//twitter.com/acme">Twitter</a>
<a href="https://www.linkedin.com/company/acme">In</a>
<a href="https://www.tiktok.com/@acme">TikTok</a>
<a href="https://notfacebook.com.evil.io/x">Fake</a>
</body>`)

	socials := socialLinks(p)

	assert.Equal(t, "https://www.instagram.com/Acme", socials.Instagram)
	assert.Equal(t, "https://twitter.com/acme", socials.Twitter)
	assert.Equal(t, "https://www.linkedin.com/company/acme", socials.LinkedIn)
	assert.Equal(t, "https://www.tiktok.com/@acme", socials.TikTok)
	assert.Empty(t, socials.Facebook)
}

func TestTelPhones(t *testing.T) {
	p := mustPage(t, `<a href="tel:%2B1%20555%20123%204567">a</a><a href="TEL:555-123-4567">b</a><a href="tel:12">c</a>`)
	assert.Equal(t, []string{"+15551234567"}, telPhones(p, "US"))
}

func TestFallbackLinks(t *testing.T) {
	p := mustPage(t, `<body>
<a href="/contact">Contact</a>
<a href="/contact#form">Contact form</a>
<a href="https://www.example.com/about">About</a>
<a href="https://evil.com/contact">Contact them</a>
<a href="mailto:contact@example.com">Mail</a>
<a href="/find-us">Find us</a>
<a href="/blog">Blog</a>
<a href="/terms">Terms</a>
<a href="/legal">Legal</a>
<a href="/imprint">Imprint</a>
<a href="/where-we-are">Visit</a>
<a href="/directions">Directions</a>
</body>`)

	assert.Equal(t, []string{
		"https://example.com/contact",
		"https://www.example.com/about",
		"https://example.com/find-us",
		"https://example.com/terms",
		"https://example.com/legal",
		"https://example.com/imprint",
		"https://example.com/where-we-are",
	}, fallbackLinks(p, 7))

	assert.Nil(t, fallbackLinks(p, 0))
}

func TestVisibleText(t *testing.T) {
	p := mustPage(t, "<div>Hello <b>big</b>\n   world<br>next<script>var x = 1</script><p>para</p></div>")
	assert.Equal(t, "Hello big world\nnext\npara", visibleText(p.doc.Find("body")))
}

func TestPickDismissTarget(t *testing.T) {
	tests := map[string]struct {
		items []clickable
		want  int
	}{
		"skips navigating links and look-alike words": {
			items: []clickable{
				{Tag: "a", Text: "Closed Mondays", Href: "/hours"},
				{Tag: "a", Text: "Find your closest store", Href: "/stores"},
				{Tag: "a", Text: "Close", Href: "/somewhere"},
				{Tag: "button", Text: "Close"},
			},
			want: 3,
		},
		"button beats earlier inert anchor": {
			items: []clickable{
				{Tag: "a", Text: "Close", Href: "#"},
				{Tag: "div", Role: "button", Text: "close banner"},
			},
			want: 1,
		},
		"aria label counts": {
			items: []clickable{{Tag: "span", Aria: "Close dialog"}},
			want:  0,
		},
		"javascript anchor is allowed": {
			items: []clickable{{Tag: "a", Text: "CLOSE", Href: "javascript:void(0)"}},
			want:  0,
		},
		"anchor with button role that navigates": {
			items: []clickable{{Tag: "a", Role: "button", Text: "Close", Href: "https://example.com/"}},
			want:  -1,
		},
		"nothing labelled": {
			items: []clickable{{Tag: "button", Text: "Accept all"}, {Tag: "button", Text: "Store closures"}},
			want:  -1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, pickDismissTarget(tc.items, "Close"))
		})
	}
}

func TestListClickablesDecodes(t *testing.T) {
	var items []clickable
	raw := `[{"tag":"button","role":"","text":"Close","aria":"","href":""}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	assert.Equal(t, 0, pickDismissTarget(items, overlayLabel))
}
