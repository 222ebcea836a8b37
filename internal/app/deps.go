package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vibeshare/backend/internal/artwork"
	"github.com/vibeshare/backend/internal/auth"
	"github.com/vibeshare/backend/internal/config"
	"github.com/vibeshare/backend/internal/db"
	"github.com/vibeshare/backend/internal/handlers"
	"github.com/vibeshare/backend/internal/links"
	"github.com/vibeshare/backend/internal/middleware"
	"github.com/vibeshare/backend/internal/repositories"
	"github.com/vibeshare/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains background workers and must be called
// before the process exits.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, func(context.Context) error, error) {
	oembed := links.NewOEmbedProvider(cfg.OEmbedEndpoint, cfg.OEmbedTimeout)
	metadataProvider := links.NewCachingProvider(oembed, cfg.MetadataCacheSize, cfg.MetadataCacheTTL)

	sessionStore := repositories.NewPostgresSessionStore(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)

	deps := handlers.Dependencies{
		Users:        repositories.NewPostgresUserRepository(pool),
		Sessions:     auth.NewManager(15*time.Minute, 24*time.Hour, sessionStore),
		Playlists:    playlists,
		Follows:      repositories.NewPostgresFollowRepository(pool),
		LinkMetadata: metadataProvider,
		AuthLimiter:  middleware.NewIPRateLimiter(cfg.RateLimitRPS, time.Second, cfg.RateLimitBurst, 10*time.Minute),
	}

	cleanup := func(context.Context) error { return nil }

	// Artwork mirroring is optional: without a bucket the derived thumbnail
	// URLs are served directly from the platform hosts.
	if strings.TrimSpace(cfg.ObjectStore.Bucket) == "" {
		return deps, cleanup, nil
	}

	store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure object storage: %w", err)
	}

	fetcher := artwork.NewHTTPFetcher(15 * time.Second)
	ingestor := artwork.NewIngestor(fetcher, store, playlists, artwork.IngestorConfig{
		Workers:   cfg.ArtworkWorkers,
		QueueSize: cfg.ArtworkQueueSize,
	}, slog.Default())

	deps.Artwork = ingestor
	cleanup = func(ctx context.Context) error {
		return ingestor.Shutdown(ctx)
	}

	return deps, cleanup, nil
}
