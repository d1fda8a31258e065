package models

import (
	"fmt"
	"strings"
)

// Tier is the visual-prominence bucket an artist occupies on a poster.
type Tier string

const (
	TierHeadliner    Tier = "headliner"
	TierSubHeadliner Tier = "sub-headliner"
	TierMidTier      Tier = "mid-tier"
	TierUndercard    Tier = "undercard"
)

// ParseTier maps a lineup-file tier label to a [Tier].
//
// Accepts a few common aliases ("sub", "mid", "opener"). Returns an empty
// tier and an error for anything else; an empty input is valid and means
// "no tier assigned".
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "headliner":
		return TierHeadliner, nil
	case "sub-headliner", "subheadliner", "sub":
		return TierSubHeadliner, nil
	case "mid-tier", "midtier", "mid":
		return TierMidTier, nil
	case "undercard", "opener":
		return TierUndercard, nil
	default:
		return "", fmt.Errorf("unknown tier %q", s)
	}
}

// Platform identifies a streaming platform implementation.
type Platform string

const (
	PlatformSpotify    Platform = "spotify"
	PlatformAppleMusic Platform = "applemusic"
)

// Artist is a single lineup entry. Name is the only required field; Tier and
// Weight are optional hints from the poster-analysis step.
type Artist struct {
	Name   string `json:"name"`
	Tier   Tier   `json:"tier,omitempty"`
	Weight int    `json:"weight,omitempty"` // 1..10 when set
}

// Lineup is the parsed form of a poster: event metadata plus the ordered
// artist list.
type Lineup struct {
	Event   string   `json:"event,omitempty"`
	Artists []Artist `json:"artists"`
}

// ArtistSearchResult is the outcome of one platform artist search: the best
// catalog candidate for a requested name, scored against it.
//
// Matched is derived, never set independently: it holds exactly when
// Similarity meets the acceptance threshold.
type ArtistSearchResult struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Matched    bool    `json:"matched"`
	Similarity float64 `json:"similarity"`
}

// ArtistMatch is the per-input diagnostic record. One exists for every
// requested artist, in input order, regardless of API outcome.
//
// Found distinguishes the two failure shapes: empty means the platform
// returned nothing at all, while a populated Found with Matched false means
// a candidate existed but scored below the threshold and was suppressed.
type ArtistMatch struct {
	Requested  string  `json:"requested"`
	Found      string  `json:"found,omitempty"`
	Similarity float64 `json:"similarity"`
	Matched    bool    `json:"matched"`
}

// Track is a playable track resolved from a platform catalog.
type Track struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	URI          string   `json:"uri,omitempty"`
	Artist       string   `json:"artist"`
	ArtistID     string   `json:"artist_id"`
	Album        string   `json:"album"`
	AlbumArtwork string   `json:"album_artwork,omitempty"`
	DurationMS   int      `json:"duration_ms"`
	PreviewURL   string   `json:"preview_url,omitempty"`
	PlatformURL  string   `json:"platform_url"`
	Platform     Platform `json:"platform"`
}

// CountMode selects how per-artist track quotas are derived.
type CountMode string

const (
	CountTierBased     CountMode = "tier-based"
	CountCustom        CountMode = "custom"
	CountCustomPerTier CountMode = "custom-per-tier"
	CountPerArtist     CountMode = "per-artist"
)

// ParseCountMode maps a flag or config value to a [CountMode]. An empty
// input means "use the default" and parses to the zero value.
func ParseCountMode(s string) (CountMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "tier-based", "tier":
		return CountTierBased, nil
	case "custom":
		return CountCustom, nil
	case "custom-per-tier", "per-tier":
		return CountCustomPerTier, nil
	case "per-artist":
		return CountPerArtist, nil
	default:
		return "", fmt.Errorf("unknown count mode %q", s)
	}
}

// SelectionMode selects which slice of an artist's top tracks is eligible
// for random sampling.
type SelectionMode string

const (
	SelectPopular  SelectionMode = "popular"
	SelectBalanced SelectionMode = "balanced"
	SelectDeepCuts SelectionMode = "deep-cuts"
)

// ParseSelectionMode maps a flag or config value to a [SelectionMode]. An
// empty input means "use the default" and parses to the zero value.
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "popular":
		return SelectPopular, nil
	case "balanced":
		return SelectBalanced, nil
	case "deep-cuts", "deepcuts", "deep":
		return SelectDeepCuts, nil
	default:
		return "", fmt.Errorf("unknown selection mode %q", s)
	}
}

// TrackCountOptions configures the track-count policy and selection pool for
// one resolution run. Numeric fields are clamped to [1,10] wherever they are
// consumed; modes are mutually exclusive per call.
type TrackCountOptions struct {
	Mode            CountMode      `json:"mode,omitempty"`
	CustomCount     int            `json:"custom_count,omitempty"`
	TierCounts      map[Tier]int   `json:"tier_counts,omitempty"`
	PerArtistCounts map[string]int `json:"per_artist_counts,omitempty"`
	SelectionMode   SelectionMode  `json:"selection_mode,omitempty"`
}

// Resolution is the engine's sole output: the flattened track list, the
// number of artists that survived matching, and one diagnostic per input.
type Resolution struct {
	Tracks       []Track       `json:"tracks"`
	FoundArtists int           `json:"found_artists"`
	Matches      []ArtistMatch `json:"artist_matches"`
}

// PlaylistRef identifies a playlist created on a platform.
type PlaylistRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// User is the platform account a playlist is created under.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}
