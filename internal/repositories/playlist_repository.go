package repositories

import (
	"context"

	"github.com/vibeshare/backend/internal/models"
)

// PlaylistRepository exposes data access for playlists and their songs.
type PlaylistRepository interface {
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
