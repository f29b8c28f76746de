package entity

import "time"

// Social platform keys recognised by the extractor.
const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformTwitter   = "twitter"
	PlatformTikTok    = "tiktok"
)

// Platforms lists the supported social platforms in traversal order.
var Platforms = []string{PlatformFacebook, PlatformInstagram, PlatformLinkedIn, PlatformTwitter, PlatformTikTok}

// Coords is a latitude/longitude pair in degrees.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Socials stores at most one profile URL per platform.
type Socials struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
}

// Get returns the URL stored for platform.
func (s Socials) Get(platform string) string {
	switch platform {
	case PlatformFacebook:
		return s.Facebook
	case PlatformInstagram:
		return s.Instagram
	case PlatformLinkedIn:
		return s.LinkedIn
	case PlatformTwitter:
		return s.Twitter
	case PlatformTikTok:
		return s.TikTok
	}
	return ""
}

// SetIfEmpty assigns value to the platform slot unless it is already filled.
// It reports whether the slot was written.
func (s *Socials) SetIfEmpty(platform, value string) bool {
	if value == "" || s.Get(platform) != "" {
		return false
	}
	switch platform {
	case PlatformFacebook:
		s.Facebook = value
	case PlatformInstagram:
		s.Instagram = value
	case PlatformLinkedIn:
		s.LinkedIn = value
	case PlatformTwitter:
		s.Twitter = value
	case PlatformTikTok:
		s.TikTok = value
	default:
		return false
	}
	return true
}

// Values returns the non-empty profile URLs in platform order.
func (s Socials) Values() []string {
	out := make([]string, 0, len(Platforms))
	for _, p := range Platforms {
		if v := s.Get(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Complete reports whether every platform slot is filled.
func (s Socials) Complete() bool {
	return len(s.Values()) == len(Platforms)
}

// Contact is the indexed contact record of a single website.
type Contact struct {
	ID                       int64     `json:"id"`
	URL                      string    `json:"url"`
	CompanyCommercialName    string    `json:"company_commercial_name"`
	CompanyLegalName         string    `json:"company_legal_name"`
	CompanyAllAvailableNames []string  `json:"company_all_available_names"`
	Phones                   []string  `json:"phones"`
	Socials                  Socials   `json:"socials"`
	Address                  *string   `json:"address,omitempty"`
	Coords                   *Coords   `json:"coords,omitempty"`
	Success                  bool      `json:"success"`
	Error                    string    `json:"error,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}
