package links

import (
	"fmt"
	"regexp"
)

// Resolution is the transient view-model produced for a pasted URL. It is a
// deterministic function of SourceURL; metadata enrichment is handled
// separately by a Provider.
type Resolution struct {
	SourceURL    string   `json:"sourceUrl"`
	Platform     Platform `json:"-"`
	PlatformName string   `json:"platform"`
	CanonicalID  string   `json:"canonicalId,omitempty"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	EmbedURL     string   `json:"embedUrl,omitempty"`
}

var (
	// youtubeWatchRegex matches watch?v=, youtu.be/ and /embed/ style links.
	// The capture stops at the next query separator or fragment so trailing
	// parameters such as &list=... never leak into the ID.
	youtubeWatchRegex = regexp.MustCompile(`(?:watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)

	// youtubeShortsRegex matches the shorts URL format with the same
	// capture boundaries.
	youtubeShortsRegex = regexp.MustCompile(`youtube\.com/shorts/([^&\n?#]+)`)

	// spotifyEmbedRegex extracts the resource type and ID needed to build a
	// Spotify embed player URL.
	spotifyEmbedRegex = regexp.MustCompile(`spotify\.com/(track|album|playlist)/([a-zA-Z0-9]+)`)
)

// ExtractYouTubeID pulls the video ID out of the supported YouTube URL
// shapes. It returns the empty string when no ID is derivable.
func ExtractYouTubeID(rawURL string) string {
	if m := youtubeWatchRegex.FindStringSubmatch(rawURL); len(m) == 2 && m[1] != "" {
		return m[1]
	}
	if m := youtubeShortsRegex.FindStringSubmatch(rawURL); len(m) == 2 && m[1] != "" {
		return m[1]
	}
	return ""
}

// ThumbnailURL derives a deterministic preview image URL. Only YouTube has
// a client-derivable thumbnail scheme; every other platform returns "".
func ThumbnailURL(platform Platform, canonicalID string) string {
	switch platform {
	case PlatformYouTube:
		if canonicalID == "" {
			return ""
		}
		return fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", canonicalID)
	case PlatformSpotify, PlatformSoundCloud, PlatformAppleMusic, PlatformDeezer, PlatformTidal, PlatformGeneric:
		return ""
	default:
		return ""
	}
}

// EmbedURL derives a player URL suitable for iframe playback. YouTube
// embeds require the canonical ID; Spotify embeds are rebuilt from the raw
// URL's type and ID segments. All other platforms return "".
func EmbedURL(platform Platform, rawURL, canonicalID string) string {
	switch platform {
	case PlatformYouTube:
		if canonicalID == "" {
			return ""
		}
		return fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=1&rel=0", canonicalID)
	case PlatformSpotify:
		m := spotifyEmbedRegex.FindStringSubmatch(rawURL)
		if len(m) != 3 {
			return ""
		}
		return fmt.Sprintf("https://open.spotify.com/embed/%s/%s?utm_source=generator&theme=0", m[1], m[2])
	case PlatformSoundCloud, PlatformAppleMusic, PlatformDeezer, PlatformTidal, PlatformGeneric:
		return ""
	default:
		return ""
	}
}

// Resolve classifies a pasted URL and derives its canonical ID, thumbnail
// and embed URLs. It is pure: the same input always yields the same
// Resolution, and no input produces an error.
func Resolve(rawURL string) Resolution {
	platform := Classify(rawURL)

	var canonicalID string
	if platform == PlatformYouTube {
		canonicalID = ExtractYouTubeID(rawURL)
	}

	return Resolution{
		SourceURL:    rawURL,
		Platform:     platform,
		PlatformName: platform.String(),
		CanonicalID:  canonicalID,
		ThumbnailURL: ThumbnailURL(platform, canonicalID),
		EmbedURL:     EmbedURL(platform, rawURL, canonicalID),
	}
}
