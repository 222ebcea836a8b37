package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vibeshare/backend/internal/artwork"
	"github.com/vibeshare/backend/internal/links"
	"github.com/vibeshare/backend/internal/logging"
	"github.com/vibeshare/backend/internal/models"
	"github.com/vibeshare/backend/internal/repositories"
)

// PlaylistHandler provides endpoints for creating and fetching playlists.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Metadata  LinkMetadataProvider
	Artwork   ArtworkIngestor
	NowFunc   func() time.Time
}

// Handle dispatches /api/v1/playlists requests: POST creates a playlist,
// GET lists playlists owned by the user in the ownerId query parameter.
func (h PlaylistHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h PlaylistHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Playlists == nil {
		logger.Error("playlist store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "playlist service unavailable"})
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if msg := req.validate(); msg != "" {
		logger.Warn("playlist validation failed", "reason", msg)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     req.OwnerID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CoverURL:    strings.TrimSpace(req.CoverURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	playlist.Songs = h.buildSongs(ctx, req.Songs, now)

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			logger.Warn("playlist owner not found", "ownerId", req.OwnerID)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "owner not found"})
		case errors.Is(err, repositories.ErrConflict):
			logger.Warn("playlist conflict", "playlistId", playlist.ID)
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "playlist already exists"})
		default:
			logger.Error("failed to create playlist", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create playlist"})
		}
		return
	}

	h.enqueueArtwork(ctx, playlist.Songs)

	respondJSON(ctx, w, http.StatusCreated, playlistResponse{Playlist: playlist})
}

func (h PlaylistHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Playlists == nil {
		logger.Error("playlist store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "playlist service unavailable"})
		return
	}

	ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))
	if ownerID == "" {
		logger.Warn("playlist list missing ownerId")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "ownerId is required"})
		return
	}

	playlists, err := h.Playlists.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.Error("failed to list playlists", "error", err, "ownerId", ownerID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list playlists"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlistListResponse{Playlists: playlists})
}

// Get handles GET /api/v1/playlists/get requests.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Playlists == nil {
		logger.Error("playlist store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "playlist service unavailable"})
		return
	}

	playlistID := strings.TrimSpace(r.URL.Query().Get("id"))
	if playlistID == "" {
		logger.Warn("playlist get missing id")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "playlist not found"})
			return
		}
		logger.Error("failed to fetch playlist", "error", err, "playlistId", playlistID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlistResponse{Playlist: playlist})
}

// Update handles POST /api/v1/playlists/update requests. The submitted song
// list replaces the stored one; every song is re-resolved on the way in.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Playlists == nil {
		logger.Error("playlist store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "playlist service unavailable"})
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		logger.Warn("playlist update missing id")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}

	if msg := req.validate(); msg != "" {
		logger.Warn("playlist validation failed", "reason", msg)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          req.ID,
		OwnerID:     req.OwnerID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CoverURL:    strings.TrimSpace(req.CoverURL),
		UpdatedAt:   now,
	}
	playlist.Songs = h.buildSongs(ctx, req.Songs, now)

	if err := h.Playlists.Update(ctx, playlist); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "playlist not found"})
			return
		}
		logger.Error("failed to update playlist", "error", err, "playlistId", req.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update playlist"})
		return
	}

	h.enqueueArtwork(ctx, playlist.Songs)

	respondJSON(ctx, w, http.StatusOK, playlistResponse{Playlist: playlist})
}

// Delete handles POST /api/v1/playlists/delete requests.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Playlists == nil {
		logger.Error("playlist store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "playlist service unavailable"})
		return
	}

	var req playlistRefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.PlaylistID == "" || req.UserID == "" {
		logger.Warn("playlist delete missing identifiers")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "playlistId and userId are required"})
		return
	}

	if err := h.Playlists.Delete(ctx, req.PlaylistID, req.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "playlist not found"})
			return
		}
		logger.Error("failed to delete playlist", "error", err, "playlistId", req.PlaylistID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Like handles POST /api/v1/playlists/like requests.
func (h PlaylistHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.reaction(w, r, "like", func(ctx context.Context, playlistID, userID string) error {
		return h.Playlists.Like(ctx, playlistID, userID)
	})
}

// Unlike handles POST /api/v1/playlists/unlike requests.
func (h PlaylistHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.reaction(w, r, "unlike", func(ctx context.Context, playlistID, userID string) error {
		return h.Playlists.Unlike(ctx, playlistID, userID)
	})
}

// Save handles POST /api/v1/playlists/save requests.
func (h PlaylistHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.reaction(w, r, "save", func(ctx context.Context, playlistID, userID string) error {
		return h.Playlists.SaveForUser(ctx, playlistID, userID)
	})
}

// Unsave handles POST /api/v1/playlists/unsave requests.
func (h PlaylistHandler) Unsave(w http.ResponseWriter, r *http.Request) {
	h.reaction(w, r, "unsave", func(ctx context.Context, playlistID, userID string) error {
		return h.Playlists.UnsaveForUser(ctx, playlistID, userID)
	})
}

func (h PlaylistHandler) reaction(w http.ResponseWriter, r *http.Request, action string, apply func(ctx context.Context, playlistID, userID string) error) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Playlists == nil {
		logger.Error("playlist store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "playlist service unavailable"})
		return
	}

	var req playlistRefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reaction payload", "action", action, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.PlaylistID == "" || req.UserID == "" {
		logger.Warn("reaction missing identifiers", "action", action)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "playlistId and userId are required"})
		return
	}

	if err := apply(ctx, req.PlaylistID, req.UserID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "already recorded"})
		case errors.Is(err, repositories.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "playlist not found"})
		default:
			logger.Error("reaction failed", "action", action, "error", err, "playlistId", req.PlaylistID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to record reaction"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": action + "d"})
}

// buildSongs resolves every submitted link so platform, canonical ID,
// thumbnail and embed URL are stored alongside the entry. Title and artist
// gaps are backfilled from the metadata provider when it can answer.
func (h PlaylistHandler) buildSongs(ctx context.Context, songs []songRequest, now time.Time) []models.SongEntry {
	logger := logging.FromContext(ctx)

	entries := make([]models.SongEntry, 0, len(songs))
	for i, song := range songs {
		resolution := links.Resolve(song.URL)

		entry := models.SongEntry{
			ID:            uuid.NewString(),
			Position:      i,
			Title:         strings.TrimSpace(song.Title),
			Artist:        strings.TrimSpace(song.Artist),
			URL:           resolution.SourceURL,
			Platform:      resolution.PlatformName,
			CanonicalID:   resolution.CanonicalID,
			Thumbnail:     resolution.ThumbnailURL,
			EmbedURL:      resolution.EmbedURL,
			ArtworkStatus: models.ArtworkStatusNone,
			CreatedAt:     now,
		}

		if h.Metadata != nil && (entry.Title == "" || entry.Artist == "") {
			metadata, err := h.Metadata.Lookup(ctx, entry.URL)
			switch {
			case err == nil:
				if entry.Title == "" {
					entry.Title = metadata.Title
				}
				if entry.Artist == "" {
					entry.Artist = metadata.Author
				}
			case errors.Is(err, links.ErrLookupUnsupported):
			default:
				logger.Warn("song metadata lookup failed", "url", entry.URL, "error", err)
			}
		}

		if entry.Thumbnail != "" {
			entry.ArtworkStatus = models.ArtworkStatusPending
		}

		entries = append(entries, entry)
	}

	return entries
}

func (h PlaylistHandler) enqueueArtwork(ctx context.Context, songs []models.SongEntry) {
	if h.Artwork == nil {
		return
	}

	logger := logging.FromContext(ctx)
	for _, song := range songs {
		if song.ArtworkStatus != models.ArtworkStatusPending {
			continue
		}
		job := artwork.Job{SongID: song.ID, ThumbnailURL: song.Thumbnail}
		if err := h.Artwork.Enqueue(ctx, job); err != nil {
			logger.Warn("failed to enqueue artwork job", "songId", song.ID, "error", err)
		}
	}
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type songRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	URL    string `json:"url"`
}

type playlistRequest struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"ownerId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CoverURL    string        `json:"coverUrl"`
	Songs       []songRequest `json:"songs"`
}

func (req playlistRequest) validate() string {
	if strings.TrimSpace(req.OwnerID) == "" {
		return "ownerId is required"
	}
	if strings.TrimSpace(req.Title) == "" {
		return "title is required"
	}
	for _, song := range req.Songs {
		if strings.TrimSpace(song.URL) == "" {
			return "every song needs a url"
		}
	}
	return ""
}

type playlistRefRequest struct {
	PlaylistID string `json:"playlistId"`
	UserID     string `json:"userId"`
}

type playlistResponse struct {
	Playlist models.Playlist `json:"playlist"`
}

type playlistListResponse struct {
	Playlists []models.Playlist `json:"playlists"`
}
