package models

import "time"

// BuildRecord is a persisted row describing one playlist build. Records are
// written after a successful build so `marquee history` can list past runs.
type BuildRecord struct {
	ID               string    `json:"id"`
	Sequence         int       `json:"sequence"`
	Event            string    `json:"event"`
	Platform         Platform  `json:"platform"`
	PlaylistID       string    `json:"playlist_id"`
	PlaylistURL      string    `json:"playlist_url,omitempty"`
	PlaylistName     string    `json:"playlist_name"`
	RequestedArtists int       `json:"requested_artists"`
	FoundArtists     int       `json:"found_artists"`
	TrackCount       int       `json:"track_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// CachedArtistMatch is a persisted artist search outcome, keyed by the
// requested name and platform. Caching avoids re-searching a lineup's
// unchanged artists across repeated builds.
type CachedArtistMatch struct {
	Requested  string    `json:"requested"`
	Platform   Platform  `json:"platform"`
	ArtistID   string    `json:"artist_id"`
	ArtistName string    `json:"artist_name"`
	Similarity float64   `json:"similarity"`
	Matched    bool      `json:"matched"`
	CachedAt   time.Time `json:"cached_at"`
}
