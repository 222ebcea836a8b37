package handlers

import (
	"context"

	"github.com/vibeshare/backend/internal/artwork"
	"github.com/vibeshare/backend/internal/links"
	"github.com/vibeshare/backend/internal/models"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// SessionManager issues and refreshes authentication tokens for users.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, playlistID, ownerID string) error
	FindByID(ctx context.Context, playlistID string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	ListFeed(ctx context.Context, userID string) ([]models.Playlist, error)
	Like(ctx context.Context, playlistID, userID string) error
	Unlike(ctx context.Context, playlistID, userID string) error
	SaveForUser(ctx context.Context, playlistID, userID string) error
	UnsaveForUser(ctx context.Context, playlistID, userID string) error
}

// FollowStore captures persistence for follow relationships.
type FollowStore interface {
	Create(ctx context.Context, follow models.Follow) error
	Delete(ctx context.Context, followerID, followeeID string) error
	ListFollowing(ctx context.Context, userID string) ([]models.Follow, error)
	ListFollowers(ctx context.Context, userID string) ([]models.Follow, error)
}

// LinkMetadataProvider resolves title and author details for song URLs.
type LinkMetadataProvider interface {
	Lookup(ctx context.Context, url string) (links.Metadata, error)
}

// ArtworkIngestor schedules background mirroring of song thumbnails.
type ArtworkIngestor interface {
	Enqueue(ctx context.Context, job artwork.Job) error
}
