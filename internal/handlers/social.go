package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vibeshare/backend/internal/logging"
	"github.com/vibeshare/backend/internal/models"
	"github.com/vibeshare/backend/internal/repositories"
)

// FollowHandler provides follow and unfollow endpoints.
type FollowHandler struct {
	Follows FollowStore
	NowFunc func() time.Time
}

// Handle dispatches /api/v1/follows requests: POST creates a follow edge,
// GET lists who the user follows (or their followers with direction=followers).
func (h FollowHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.follow(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h FollowHandler) follow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Follows == nil {
		logger.Error("follow store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "follow service unavailable"})
		return
	}

	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid follow payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.FollowerID = strings.TrimSpace(req.FollowerID)
	req.FolloweeID = strings.TrimSpace(req.FolloweeID)
	if req.FollowerID == "" || req.FolloweeID == "" {
		logger.Warn("follow missing identifiers")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "followerId and followeeId are required"})
		return
	}

	if req.FollowerID == req.FolloweeID {
		logger.Warn("follow self rejected", "userId", req.FollowerID)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "cannot follow yourself"})
		return
	}

	follow := models.Follow{
		FollowerID: req.FollowerID,
		FolloweeID: req.FolloweeID,
		CreatedAt:  h.now(),
	}

	if err := h.Follows.Create(ctx, follow); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "already following"})
		case errors.Is(err, repositories.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
		default:
			logger.Error("failed to create follow", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to follow user"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusCreated, followResponse{Follow: follow})
}

func (h FollowHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Follows == nil {
		logger.Error("follow store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "follow service unavailable"})
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		logger.Warn("follow list missing userId")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "userId is required"})
		return
	}

	var (
		follows []models.Follow
		err     error
	)
	if r.URL.Query().Get("direction") == "followers" {
		follows, err = h.Follows.ListFollowers(ctx, userID)
	} else {
		follows, err = h.Follows.ListFollowing(ctx, userID)
	}
	if err != nil {
		logger.Error("failed to list follows", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list follows"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, followListResponse{Follows: follows})
}

// Unfollow handles POST /api/v1/follows/delete requests.
func (h FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Follows == nil {
		logger.Error("follow store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "follow service unavailable"})
		return
	}

	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid unfollow payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.FollowerID = strings.TrimSpace(req.FollowerID)
	req.FolloweeID = strings.TrimSpace(req.FolloweeID)
	if req.FollowerID == "" || req.FolloweeID == "" {
		logger.Warn("unfollow missing identifiers")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "followerId and followeeId are required"})
		return
	}

	if err := h.Follows.Delete(ctx, req.FollowerID, req.FolloweeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "follow not found"})
			return
		}
		logger.Error("failed to delete follow", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to unfollow user"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "unfollowed"})
}

func (h FollowHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type followRequest struct {
	FollowerID string `json:"followerId"`
	FolloweeID string `json:"followeeId"`
}

type followResponse struct {
	Follow models.Follow `json:"follow"`
}

type followListResponse struct {
	Follows []models.Follow `json:"follows"`
}
