package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/shared"
)

// BuildRepository persists completed playlist builds.
type BuildRepository struct {
	db *sql.DB
}

// NewBuildRepository creates a new BuildRepository with the given database connection
func NewBuildRepository(db *sql.DB) *BuildRepository {
	return &BuildRepository{db: db}
}

// Create inserts a build record with a generated ID and sequence. The
// record's ID, Sequence, and CreatedAt fields are populated on success.
func (r *BuildRepository) Create(record *models.BuildRecord) error {
	sequence, err := NextSequence(r.db, "builds")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	record.ID = shared.GenerateID()
	record.Sequence = sequence
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO builds (id, sequence, event, platform, playlist_id, playlist_url, playlist_name, requested_artists, found_artists, track_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		record.ID,
		record.Sequence,
		record.Event,
		string(record.Platform),
		record.PlaylistID,
		record.PlaylistURL,
		record.PlaylistName,
		record.RequestedArtists,
		record.FoundArtists,
		record.TrackCount,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert build: %w", err)
	}

	return nil
}

// GetByID retrieves a single build record.
func (r *BuildRepository) GetByID(id string) (*models.BuildRecord, error) {
	query := `
		SELECT id, sequence, event, platform, playlist_id, playlist_url, playlist_name, requested_artists, found_artists, track_count, created_at
		FROM builds WHERE id = ?
	`

	record, err := scanBuild(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("build not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}
	return record, nil
}

// List returns the most recent builds, newest first. A limit of 0 or less
// returns all rows.
func (r *BuildRepository) List(limit int) ([]*models.BuildRecord, error) {
	query := `
		SELECT id, sequence, event, platform, playlist_id, playlist_url, playlist_name, requested_artists, found_artists, track_count, created_at
		FROM builds ORDER BY sequence DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var records []*models.BuildRecord
	for rows.Next() {
		record, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func scanBuild(row scanner) (*models.BuildRecord, error) {
	var record models.BuildRecord
	var platform string

	err := row.Scan(
		&record.ID,
		&record.Sequence,
		&record.Event,
		&platform,
		&record.PlaylistID,
		&record.PlaylistURL,
		&record.PlaylistName,
		&record.RequestedArtists,
		&record.FoundArtists,
		&record.TrackCount,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Platform = models.Platform(platform)
	return &record, nil
}
