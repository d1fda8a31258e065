package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/soundslike/marquee/internal/models"
)

// ArtistCacheRepository memoizes artist search outcomes per platform.
//
// Negative outcomes (Matched false) are cached too, so a lineup with a
// misspelled artist does not trigger a fresh search on every rebuild.
type ArtistCacheRepository struct {
	db *sql.DB
}

// NewArtistCacheRepository creates a new ArtistCacheRepository with the given database connection
func NewArtistCacheRepository(db *sql.DB) *ArtistCacheRepository {
	return &ArtistCacheRepository{db: db}
}

// Put upserts a cached match, keyed by requested name and platform.
func (r *ArtistCacheRepository) Put(entry *models.CachedArtistMatch) error {
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO artist_matches (requested, platform, artist_id, artist_name, similarity, matched, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(requested, platform) DO UPDATE SET
			artist_id = excluded.artist_id,
			artist_name = excluded.artist_name,
			similarity = excluded.similarity,
			matched = excluded.matched,
			cached_at = excluded.cached_at
	`

	_, err := r.db.Exec(query,
		entry.Requested,
		string(entry.Platform),
		entry.ArtistID,
		entry.ArtistName,
		entry.Similarity,
		entry.Matched,
		entry.CachedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to cache artist match: %w", err)
	}

	return nil
}

// Get retrieves a cached match. Returns nil without error on a cache miss.
func (r *ArtistCacheRepository) Get(requested string, platform models.Platform) (*models.CachedArtistMatch, error) {
	query := `
		SELECT requested, platform, artist_id, artist_name, similarity, matched, cached_at
		FROM artist_matches WHERE requested = ? AND platform = ?
	`

	var entry models.CachedArtistMatch
	var plat string

	err := r.db.QueryRow(query, requested, string(platform)).Scan(
		&entry.Requested,
		&plat,
		&entry.ArtistID,
		&entry.ArtistName,
		&entry.Similarity,
		&entry.Matched,
		&entry.CachedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached match: %w", err)
	}

	entry.Platform = models.Platform(plat)
	return &entry, nil
}

// Purge removes cache entries older than the cutoff. Returns the number of
// rows removed.
func (r *ArtistCacheRepository) Purge(olderThan time.Time) (int, error) {
	result, err := r.db.Exec("DELETE FROM artist_matches WHERE cached_at < ?", olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to purge artist cache: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}

	return int(affected), nil
}
