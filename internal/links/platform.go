package links

import "strings"

// Platform identifies the external music service a link points at.
type Platform int

const (
	PlatformGeneric Platform = iota
	PlatformYouTube
	PlatformSpotify
	PlatformSoundCloud
	PlatformAppleMusic
	PlatformDeezer
	PlatformTidal
)

// platformInfo holds the static display attributes for a platform.
type platformInfo struct {
	name          string
	label         string
	color         string
	icon          string
	supportsEmbed bool
}

var platformTable = map[Platform]platformInfo{
	PlatformYouTube:    {name: "youtube", label: "YouTube", color: "red", icon: "▶️", supportsEmbed: true},
	PlatformSpotify:    {name: "spotify", label: "Spotify", color: "green", icon: "🎧", supportsEmbed: true},
	PlatformSoundCloud: {name: "soundcloud", label: "SoundCloud", color: "orange", icon: "☁️", supportsEmbed: false},
	PlatformAppleMusic: {name: "applemusic", label: "Apple Music", color: "pink", icon: "🍎", supportsEmbed: false},
	PlatformDeezer:     {name: "deezer", label: "Deezer", color: "purple", icon: "🎵", supportsEmbed: false},
	PlatformTidal:      {name: "tidal", label: "Tidal", color: "blue", icon: "🌊", supportsEmbed: false},
	PlatformGeneric:    {name: "generic", label: "Link", color: "gray", icon: "🔗", supportsEmbed: false},
}

// classificationRule maps a hostname fragment to a platform. Rules are
// evaluated in order; the first fragment contained in the URL wins.
type classificationRule struct {
	fragment string
	platform Platform
}

var classificationRules = []classificationRule{
	{"youtube.com", PlatformYouTube},
	{"youtu.be", PlatformYouTube},
	{"spotify.com", PlatformSpotify},
	{"soundcloud.com", PlatformSoundCloud},
	{"music.apple", PlatformAppleMusic},
	{"apple.com", PlatformAppleMusic},
	{"deezer.com", PlatformDeezer},
	{"tidal.com", PlatformTidal},
}

// Classify maps an arbitrary string to a platform. It never fails: inputs
// that are not recognisable URLs, including the empty string, classify as
// PlatformGeneric. Matching is case-insensitive substring containment.
func Classify(rawURL string) Platform {
	lowered := strings.ToLower(rawURL)
	for _, rule := range classificationRules {
		if strings.Contains(lowered, rule.fragment) {
			return rule.platform
		}
	}
	return PlatformGeneric
}

// String returns the stable machine name used for persistence and JSON.
func (p Platform) String() string {
	if info, ok := platformTable[p]; ok {
		return info.name
	}
	return platformTable[PlatformGeneric].name
}

// Label returns the human-readable platform name.
func (p Platform) Label() string {
	if info, ok := platformTable[p]; ok {
		return info.label
	}
	return platformTable[PlatformGeneric].label
}

// Color returns the UI color token associated with the platform.
func (p Platform) Color() string {
	if info, ok := platformTable[p]; ok {
		return info.color
	}
	return platformTable[PlatformGeneric].color
}

// Icon returns the icon token associated with the platform.
func (p Platform) Icon() string {
	if info, ok := platformTable[p]; ok {
		return info.icon
	}
	return platformTable[PlatformGeneric].icon
}

// SupportsEmbed reports whether the platform offers in-app iframe playback.
func (p Platform) SupportsEmbed() bool {
	if info, ok := platformTable[p]; ok {
		return info.supportsEmbed
	}
	return false
}

// ParsePlatform converts a stored machine name back into a Platform.
// Unknown names map to PlatformGeneric.
func ParsePlatform(name string) Platform {
	for platform, info := range platformTable {
		if info.name == name {
			return platform
		}
	}
	return PlatformGeneric
}
