package handlers

import (
	"net/http"
	"strings"

	"github.com/vibeshare/backend/internal/logging"
)

// FeedHandler serves the playlist feed for a user.
type FeedHandler struct {
	Playlists PlaylistStore
}

// Feed handles GET /api/v1/feed requests. The feed contains the user's own
// playlists and those of everyone they follow, newest first.
func (h FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Playlists == nil {
		logger.Error("playlist store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "feed service unavailable"})
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		logger.Warn("feed missing userId")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "userId is required"})
		return
	}

	playlists, err := h.Playlists.ListFeed(ctx, userID)
	if err != nil {
		logger.Error("failed to load feed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load feed"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlistListResponse{Playlists: playlists})
}
