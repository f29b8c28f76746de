package heuristics

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPhoneNumbers(t *testing.T) {
	tests := map[string]struct {
		text string
		want []string
	}{
		"formatting variants collapse to one number": {
			text: "Call us: +1 (555) 123-4567 or 555.123.4567, we answer fast.",
			want: []string{"+15551234567"},
		},
		"repeated occurrences": {
			text: "555-123-4567\nFax 555-123-4567\nmain line 555 123 4567",
			want: []string{"+15551234567"},
		},
		"distinct numbers keep first-seen order": {
			text: "Sales (212) 555-0100 / Support 415-555-0199",
			want: []string{"+12125550100", "+14155550199"},
		},
		"too few digits": {
			text: "Open 9-5, call ext 12-34-56",
			want: []string{},
		},
		"too many digits": {
			text: "Order 1234 5678 9012 3456",
			want: []string{},
		},
		"no numbers": {
			text: "Just a friendly paragraph.",
			want: []string{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPhoneNumbers(tt.text, ""))
		})
	}
}

func TestExtractPhoneNumbers_Region(t *testing.T) {
	got := ExtractPhoneNumbers("Tel. 030 1234 5678", "DE")
	require.Len(t, got, 1)
	assert.Equal(t, "+493012345678", got[0])
}

func TestCanonicalPhone(t *testing.T) {
	got, ok := CanonicalPhone("+1-555-123-4567", "")
	require.True(t, ok)
	assert.Equal(t, "+15551234567", got)

	_, ok = CanonicalPhone("12", "")
	assert.False(t, ok)

	_, ok = CanonicalPhone("", "")
	assert.False(t, ok)
}

func TestMergePhones(t *testing.T) {
	got := MergePhones([]string{"+15551234567"}, "+15551234567", "", "+14155550199")
	assert.Equal(t, []string{"+15551234567", "+14155550199"}, got)
}

func TestExtractAddressFromText(t *testing.T) {
	tests := map[string]struct {
		text   string
		want   string
		wantOK bool
	}{
		"single qualifying line is trimmed": {
			text:   "Welcome!\n   123 Main Street, Springfield, IL 62704   \nCall us today",
			want:   "123 Main Street, Springfield, IL 62704",
			wantOK: true,
		},
		"abbreviated suffix": {
			text:   "HQ\n1600 Amphitheatre Pkwy, Mountain View, CA",
			want:   "1600 Amphitheatre Pkwy, Mountain View, CA",
			wantOK: true,
		},
		"first of several lines wins": {
			text:   "10 Downing St\n221B Baker Street",
			want:   "10 Downing St",
			wantOK: true,
		},
		"continental street form": {
			text:   "Impressum\nMusterfirma GmbH\nHauptstraße 5\n10115 Berlin",
			want:   "Hauptstraße 5",
			wantOK: true,
		},
		"no address": {
			text: "We are open 7 days a week.\nCall 555 123 4567",
		},
		"empty": {
			text: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := ExtractAddressFromText(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    string
		wantErr bool
	}{
		"bare domain":    {input: "Example.com", want: "https://example.com/"},
		"keeps scheme":   {input: "http://example.com/contact", want: "http://example.com/contact"},
		"drops fragment": {input: "https://example.com/#top", want: "https://example.com/"},
		"punycode host":  {input: "bücher.de", want: "https://xn--bcher-kva.de/"},
		"keeps port":     {input: "example.com:8443", want: "https://example.com:8443/"},
		"keeps www":      {input: "www.Example.com", want: "https://www.example.com/"},
		"blank":          {input: "   ", wantErr: true},
		"no host":        {input: "https://", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := CanonicalURL(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHostKey_StripsWWWOnly(t *testing.T) {
	for raw, want := range map[string]string{
		"https://www.Example.com/a": "example.com",
		"https://example.com:8443/": "example.com",
		"https://shop.example.com/": "shop.example.com",
	} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, HostKey(u), raw)
	}
}
