package repositories

import (
	"context"

	"github.com/vibeshare/backend/internal/models"
)

// FollowRepository defines data access for follow relationships.
type FollowRepository interface {
	Create(ctx context.Context, follow models.Follow) error
	Delete(ctx context.Context, followerID, followeeID string) error
	ListFollowing(ctx context.Context, userID string) ([]models.Follow, error)
	ListFollowers(ctx context.Context, userID string) ([]models.Follow, error)
}
