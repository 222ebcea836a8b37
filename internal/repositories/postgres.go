package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vibeshare/backend/internal/artwork"
	"github.com/vibeshare/backend/internal/db"
	"github.com/vibeshare/backend/internal/models"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, email, username, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, user.ID, user.Email, user.Username, user.Password, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByEmail fetches a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, username, password_hash, created_at, updated_at
        FROM users
        WHERE email = $1
    `, email)

	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.Username, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by email: %w", err)
	}

	return user, nil
}

// FindByID fetches a user by their identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, username, password_hash, created_at, updated_at
        FROM users
        WHERE id = $1
    `, id)

	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.Username, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}

	return user, nil
}

// Update modifies an existing user record.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET email = $2, username = $3, password_hash = $4, updated_at = $5
        WHERE id = $1
    `, user.ID, user.Email, user.Username, user.Password, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PostgresFollowRepository provides PostgreSQL-backed persistence for follow edges.
type PostgresFollowRepository struct {
	pool db.Pool
}

// NewPostgresFollowRepository constructs a follow repository backed by PostgreSQL.
func NewPostgresFollowRepository(pool db.Pool) *PostgresFollowRepository {
	return &PostgresFollowRepository{pool: pool}
}

// Create persists a new follow relationship.
func (r *PostgresFollowRepository) Create(ctx context.Context, follow models.Follow) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO follows (follower_id, followee_id, created_at)
        VALUES ($1, $2, $3)
    `, follow.FollowerID, follow.FolloweeID, follow.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert follow: %w", err)
	}

	return nil
}

// Delete removes a follow relationship.
func (r *PostgresFollowRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM follows
        WHERE follower_id = $1 AND followee_id = $2
    `, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListFollowing returns the users the given user follows.
func (r *PostgresFollowRepository) ListFollowing(ctx context.Context, userID string) ([]models.Follow, error) {
	return r.list(ctx, `
        SELECT follower_id, followee_id, created_at
        FROM follows
        WHERE follower_id = $1
        ORDER BY created_at DESC
    `, userID)
}

// ListFollowers returns the users following the given user.
func (r *PostgresFollowRepository) ListFollowers(ctx context.Context, userID string) ([]models.Follow, error) {
	return r.list(ctx, `
        SELECT follower_id, followee_id, created_at
        FROM follows
        WHERE followee_id = $1
        ORDER BY created_at DESC
    `, userID)
}

func (r *PostgresFollowRepository) list(ctx context.Context, query, userID string) ([]models.Follow, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query follows: %w", err)
	}
	defer rows.Close()

	var follows []models.Follow
	for rows.Next() {
		var follow models.Follow
		if err := rows.Scan(&follow.FollowerID, &follow.FolloweeID, &follow.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		follows = append(follows, follow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follows: %w", err)
	}

	return follows, nil
}

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

const playlistColumns = `
        p.id, p.owner_id, p.title, p.description, p.cover_url, p.created_at, p.updated_at,
        (SELECT COUNT(*) FROM playlist_likes l WHERE l.playlist_id = p.id),
        (SELECT COUNT(*) FROM playlist_saves s WHERE s.playlist_id = p.id)`

// Create stores a new playlist together with its songs.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, title, description, cover_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, playlist.ID, playlist.OwnerID, playlist.Title, playlist.Description, playlist.CoverURL, playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert playlist: %w", err)
	}

	if err := insertSongs(ctx, tx, playlist.ID, playlist.Songs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit playlist: %w", err)
	}

	return nil
}

// Update replaces a playlist's attributes and song list. Only the owner's
// playlist is touched; a mismatched owner reports ErrNotFound.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE playlists
        SET title = $3, description = $4, cover_url = $5, updated_at = $6
        WHERE id = $1 AND owner_id = $2
    `, playlist.ID, playlist.OwnerID, playlist.Title, playlist.Description, playlist.CoverURL, playlist.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM playlist_songs WHERE playlist_id = $1`, playlist.ID); err != nil {
		return fmt.Errorf("clear playlist songs: %w", err)
	}

	if err := insertSongs(ctx, tx, playlist.ID, playlist.Songs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit playlist: %w", err)
	}

	return nil
}

// Delete removes a playlist owned by the provided user. Songs, likes and
// saves cascade with the playlist row.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, playlistID, ownerID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM playlists
        WHERE id = $1 AND owner_id = $2
    `, playlistID, ownerID)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// FindByID loads a playlist with its songs and counters.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, playlistID string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT`+playlistColumns+`
        FROM playlists p
        WHERE p.id = $1
    `, playlistID)

	playlist, err := scanPlaylist(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	songs, err := loadSongs(ctx, conn, []string{playlist.ID})
	if err != nil {
		return models.Playlist{}, err
	}
	playlist.Songs = songs[playlist.ID]

	return playlist, nil
}

// ListByOwner returns the playlists created by the given user, newest first.
func (r *PostgresPlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	return r.listPlaylists(ctx, `
        SELECT`+playlistColumns+`
        FROM playlists p
        WHERE p.owner_id = $1
        ORDER BY p.updated_at DESC
    `, ownerID)
}

// ListFeed returns a reverse chronological feed of playlists from the user
// and the users they follow.
func (r *PostgresPlaylistRepository) ListFeed(ctx context.Context, userID string) ([]models.Playlist, error) {
	return r.listPlaylists(ctx, `
        WITH following AS (
            SELECT followee_id FROM follows WHERE follower_id = $1
        )
        SELECT`+playlistColumns+`
        FROM playlists p
        WHERE p.owner_id = $1 OR p.owner_id IN (SELECT followee_id FROM following)
        ORDER BY p.updated_at DESC
        LIMIT 100
    `, userID)
}

// Like records that a user liked a playlist.
func (r *PostgresPlaylistRepository) Like(ctx context.Context, playlistID, userID string) error {
	return r.insertReaction(ctx, "playlist_likes", playlistID, userID)
}

// Unlike removes a user's like from a playlist.
func (r *PostgresPlaylistRepository) Unlike(ctx context.Context, playlistID, userID string) error {
	return r.deleteReaction(ctx, "playlist_likes", playlistID, userID)
}

// SaveForUser adds a playlist to a user's saved collection.
func (r *PostgresPlaylistRepository) SaveForUser(ctx context.Context, playlistID, userID string) error {
	return r.insertReaction(ctx, "playlist_saves", playlistID, userID)
}

// UnsaveForUser removes a playlist from a user's saved collection.
func (r *PostgresPlaylistRepository) UnsaveForUser(ctx context.Context, playlistID, userID string) error {
	return r.deleteReaction(ctx, "playlist_saves", playlistID, userID)
}

func (r *PostgresPlaylistRepository) insertReaction(ctx context.Context, table, playlistID, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, fmt.Sprintf(`
        INSERT INTO %s (playlist_id, user_id, created_at)
        VALUES ($1, $2, now())
    `, table), playlistID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert into %s: %w", table, err)
	}

	return nil
}

func (r *PostgresPlaylistRepository) deleteReaction(ctx context.Context, table, playlistID, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, fmt.Sprintf(`
        DELETE FROM %s
        WHERE playlist_id = $1 AND user_id = $2
    `, table), playlistID, userID)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkArtworkReady updates a song's artwork location after a successful mirror.
func (r *PostgresPlaylistRepository) MarkArtworkReady(ctx context.Context, songID, location string, size int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE playlist_songs
        SET artwork_status = $2,
            artwork_url = $3,
            artwork_size = $4
        WHERE id = $1
    `, songID, models.ArtworkStatusReady, location, size)
	if err != nil {
		return fmt.Errorf("update song artwork ready: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkArtworkFailed records a failed artwork mirror for the provided song.
func (r *PostgresPlaylistRepository) MarkArtworkFailed(ctx context.Context, songID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE playlist_songs
        SET artwork_status = $2,
            artwork_url = '',
            artwork_size = 0
        WHERE id = $1
    `, songID, models.ArtworkStatusFailed)
	if err != nil {
		return fmt.Errorf("update song artwork failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresPlaylistRepository) listPlaylists(ctx context.Context, query, userID string) ([]models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}

	var playlists []models.Playlist
	var ids []string
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
		ids = append(ids, playlist.ID)
	}

	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return playlists, nil
	}

	songs, err := loadSongs(ctx, conn, ids)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		playlists[i].Songs = songs[playlists[i].ID]
	}

	return playlists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (models.Playlist, error) {
	var playlist models.Playlist
	err := row.Scan(
		&playlist.ID, &playlist.OwnerID, &playlist.Title, &playlist.Description,
		&playlist.CoverURL, &playlist.CreatedAt, &playlist.UpdatedAt,
		&playlist.LikeCount, &playlist.SaveCount,
	)
	return playlist, err
}

func insertSongs(ctx context.Context, tx pgx.Tx, playlistID string, songs []models.SongEntry) error {
	for i, song := range songs {
		status := song.ArtworkStatus
		if strings.TrimSpace(status) == "" {
			status = models.ArtworkStatusNone
		}

		_, err := tx.Exec(ctx, `
            INSERT INTO playlist_songs (
                id, playlist_id, position, title, artist, url,
                platform, canonical_id, thumbnail, embed_url,
                artwork_url, artwork_status, artwork_size, created_at
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        `, song.ID, playlistID, i, song.Title, song.Artist, song.URL,
			song.Platform, song.CanonicalID, song.Thumbnail, song.EmbedURL,
			song.ArtworkURL, status, song.ArtworkSize, song.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrConflict
			}
			return fmt.Errorf("insert playlist song: %w", err)
		}
	}

	return nil
}

func loadSongs(ctx context.Context, conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, playlistIDs []string) (map[string][]models.SongEntry, error) {
	rows, err := conn.Query(ctx, `
        SELECT id, playlist_id, position, title, artist, url,
               platform, canonical_id, thumbnail, embed_url,
               artwork_url, artwork_status, artwork_size, created_at
        FROM playlist_songs
        WHERE playlist_id = ANY($1)
        ORDER BY playlist_id, position
    `, playlistIDs)
	if err != nil {
		return nil, fmt.Errorf("query playlist songs: %w", err)
	}
	defer rows.Close()

	songs := make(map[string][]models.SongEntry)
	for rows.Next() {
		var song models.SongEntry
		if err := rows.Scan(
			&song.ID, &song.PlaylistID, &song.Position, &song.Title, &song.Artist, &song.URL,
			&song.Platform, &song.CanonicalID, &song.Thumbnail, &song.EmbedURL,
			&song.ArtworkURL, &song.ArtworkStatus, &song.ArtworkSize, &song.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		songs[song.PlaylistID] = append(songs[song.PlaylistID], song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}

	return songs, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ FollowRepository = (*PostgresFollowRepository)(nil)
var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
var _ artwork.SongArtworkUpdater = (*PostgresPlaylistRepository)(nil)
