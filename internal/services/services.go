// package services defines interface Service for music streaming platforms
//
// Spotify, Apple Music
package services

import (
	"context"
	"time"

	"github.com/soundslike/marquee/internal/models"
	"golang.org/x/oauth2"
)

// Service is the capability interface every supported streaming platform
// implements. Resolution-phase operations (SearchArtist, TopTracks) are
// fail-soft: they absorb request failures and return a miss sentinel so a
// single artist never aborts a batch. Playlist operations are hard
// dependencies and return errors for the caller to handle.
type Service interface {
	// Name returns the human-readable platform name (e.g., "Spotify").
	Name() string

	// Platform returns the platform tag stamped onto resolved tracks.
	Platform() models.Platform

	// Budget returns the batch size / inter-batch delay pair matching the
	// platform's documented rate ceiling.
	Budget() Budget

	// Authenticate stores the end-user credential on this service instance.
	// Returns an error if required credentials are missing.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// SearchArtist looks up the best catalog candidate for a requested
	// name. Returns nil on no results or on request failure; never errors.
	SearchArtist(ctx context.Context, name string) *models.ArtistSearchResult

	// TopTracks fetches an artist's top tracks and samples quota of them
	// according to mode. Returns an empty slice on no tracks or on request
	// failure; never errors.
	TopTracks(ctx context.Context, artistID string, quota int, mode models.SelectionMode) []models.Track

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*models.User, error)

	// CreatePlaylist creates an empty playlist owned by userID.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.PlaylistRef, error)

	// AddTracks appends tracks to a playlist, chunking internally to the
	// platform's maximum batch-write size with sequential writes.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// OAuthService is implemented by platforms whose end-user credential is
// obtained through a browser OAuth2 flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the provider's consent page URL for the given state.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 config for callback handling.
	GetOAuthConfig() *oauth2.Config
}

// CoverUploader is the optional capability for platforms that accept custom
// playlist cover images. Callers must treat upload failures as best-effort.
type CoverUploader interface {
	UploadCover(ctx context.Context, playlistID, imageBase64 string) error
}

// Budget is a platform's outbound pacing configuration: at most BatchSize
// concurrent requests, with Delay between consecutive batches.
type Budget struct {
	BatchSize int
	Delay     time.Duration
}

// searchResultLimit is how many candidates one artist search requests; the
// best-scoring candidate of these wins.
const searchResultLimit = 5
