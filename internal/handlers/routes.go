package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	link := LinkHandler{Metadata: deps.LinkMetadata}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Metadata: deps.LinkMetadata, Artwork: deps.Artwork}
	follows := FollowHandler{Follows: deps.Follows}
	feed := FeedHandler{Playlists: deps.Playlists}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/v1/auth/password-reset", auth.RequestPasswordReset)
	mux.HandleFunc("/api/v1/links/resolve", link.Resolve)
	mux.HandleFunc("/api/v1/playlists", playlists.Handle)
	mux.HandleFunc("/api/v1/playlists/get", playlists.Get)
	mux.HandleFunc("/api/v1/playlists/update", playlists.Update)
	mux.HandleFunc("/api/v1/playlists/delete", playlists.Delete)
	mux.HandleFunc("/api/v1/playlists/like", playlists.Like)
	mux.HandleFunc("/api/v1/playlists/unlike", playlists.Unlike)
	mux.HandleFunc("/api/v1/playlists/save", playlists.Save)
	mux.HandleFunc("/api/v1/playlists/unsave", playlists.Unsave)
	mux.HandleFunc("/api/v1/follows", follows.Handle)
	mux.HandleFunc("/api/v1/follows/delete", follows.Unfollow)
	mux.HandleFunc("/api/v1/feed", feed.Feed)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users        UserStore
	Sessions     SessionManager
	Playlists    PlaylistStore
	Follows      FollowStore
	LinkMetadata LinkMetadataProvider
	Artwork      ArtworkIngestor
	AuthLimiter  RateLimiter
}
