package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vibeshare/backend/internal/links"
	"github.com/vibeshare/backend/internal/logging"
)

// LinkHandler resolves song URLs into platform details and embed metadata.
type LinkHandler struct {
	Metadata LinkMetadataProvider
}

// Resolve handles POST /api/v1/links/resolve requests. Metadata enrichment is
// best effort: a failed lookup leaves the metadata field null without failing
// the resolution.
func (h LinkHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid resolve payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		logger.Warn("resolve missing url")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}

	resolution := links.Resolve(req.URL)

	resp := resolveResponse{Link: resolution}
	if h.Metadata != nil {
		metadata, err := h.Metadata.Lookup(ctx, req.URL)
		switch {
		case err == nil:
			resp.Metadata = &linkMetadata{Title: metadata.Title, Author: metadata.Author}
		case errors.Is(err, links.ErrLookupUnsupported):
			// Non-YouTube links have no oEmbed source; leave metadata null.
		default:
			logger.Warn("metadata lookup failed", "url", req.URL, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, resp)
}

type resolveRequest struct {
	URL string `json:"url"`
}

type linkMetadata struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

type resolveResponse struct {
	Link     links.Resolution `json:"link"`
	Metadata *linkMetadata    `json:"metadata"`
}
