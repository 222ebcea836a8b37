package models

import "time"

// User represents an account within the VibeShare platform.
type User struct {
	ID        string
	Email     string
	Username  string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Follow records that one user follows another.
type Follow struct {
	FollowerID string    `json:"followerId"`
	FolloweeID string    `json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Playlist is a user-curated collection of song links.
type Playlist struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"ownerId"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	CoverURL    string      `json:"coverUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Songs       []SongEntry `json:"songs"`
	LikeCount   int         `json:"likeCount"`
	SaveCount   int         `json:"saveCount"`
}

// SongEntry is a single link inside a playlist. It is owned by exactly one
// playlist and is removed together with it. Platform, CanonicalID,
// Thumbnail and EmbedURL are derived by the link resolver when the entry is
// created or updated.
type SongEntry struct {
	ID            string    `json:"id"`
	PlaylistID    string    `json:"playlistId"`
	Position      int       `json:"position"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist,omitempty"`
	URL           string    `json:"url"`
	Platform      string    `json:"platform"`
	CanonicalID   string    `json:"canonicalId,omitempty"`
	Thumbnail     string    `json:"thumbnail,omitempty"`
	EmbedURL      string    `json:"embedUrl,omitempty"`
	ArtworkURL    string    `json:"artworkUrl,omitempty"`
	ArtworkStatus string    `json:"artworkStatus"`
	ArtworkSize   int64     `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

const (
	ArtworkStatusNone    = "none"
	ArtworkStatusPending = "pending"
	ArtworkStatusReady   = "ready"
	ArtworkStatusFailed  = "failed"
)

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
