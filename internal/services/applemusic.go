// Apple Music API implementation of [Service]
//
// Apple Music API response types based on https://developer.apple.com/documentation/applemusicapi/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soundslike/marquee/internal/match"
	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/selection"
	"golang.org/x/time/rate"
)

const (
	appleMusicBaseURL  = "https://api.music.apple.com/v1"
	defaultStorefront  = "us"
	topSongsFetchLimit = 25

	// Library playlist writes accept at most 25 songs per request.
	appleMusicMaxTrackWrite = 25
)

type appleMusicArtwork struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// AppleMusicArtist represents an Apple Music catalog artist resource.
type AppleMusicArtist struct {
	ID         string `json:"id"`
	Attributes struct {
		Name string            `json:"name"`
		URL  string            `json:"url"`
		Art  appleMusicArtwork `json:"artwork"`
	} `json:"attributes"`
}

// AppleMusicSong represents an Apple Music catalog song resource.
type AppleMusicSong struct {
	ID         string `json:"id"`
	Attributes struct {
		Name             string            `json:"name"`
		ArtistName       string            `json:"artistName"`
		AlbumName        string            `json:"albumName"`
		DurationInMillis int               `json:"durationInMillis"`
		URL              string            `json:"url"`
		Artwork          appleMusicArtwork `json:"artwork"`
		Previews         []struct {
			URL string `json:"url"`
		} `json:"previews"`
	} `json:"attributes"`
}

type appleMusicSearchResponse struct {
	Results struct {
		Artists struct {
			Data []AppleMusicArtist `json:"data"`
		} `json:"artists"`
	} `json:"results"`
}

type appleMusicTopSongsResponse struct {
	Data []AppleMusicSong `json:"data"`
}

type appleMusicStorefrontResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Name string `json:"name"`
		} `json:"attributes"`
	} `json:"data"`
}

type appleMusicPlaylistResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Name string `json:"name"`
		} `json:"attributes"`
	} `json:"data"`
}

// AppleMusicService implements the Service interface for Apple Music API
// interactions. Catalog reads require the developer token; library writes
// additionally require a Music-User-Token obtained via MusicKit.
type AppleMusicService struct {
	developerToken string
	userToken      string
	storefront     string
	httpClient     *http.Client
	limiter        *rate.Limiter
	rng            *rand.Rand
}

// NewAppleMusicService creates a new Apple Music service. The developer
// token is a service credential held per instance, not shared globally.
func NewAppleMusicService(developerToken string) (*AppleMusicService, error) {
	if developerToken == "" {
		return nil, fmt.Errorf("missing developer token")
	}

	return &AppleMusicService{
		developerToken: developerToken,
		storefront:     defaultStorefront,
		httpClient:     http.DefaultClient,
		limiter:        rate.NewLimiter(rate.Every(250*time.Millisecond), 2),
	}, nil
}

// Authenticate records the user token for library operations. Expects
// "music_user_token" in credentials; "storefront" is optional.
func (s *AppleMusicService) Authenticate(_ context.Context, credentials map[string]string) error {
	userToken, ok := credentials["music_user_token"]
	if !ok || userToken == "" {
		return fmt.Errorf("missing music_user_token in credentials")
	}
	s.userToken = userToken

	if storefront, ok := credentials["storefront"]; ok && storefront != "" {
		s.storefront = storefront
	}
	return nil
}

func (s *AppleMusicService) Name() string {
	return "Apple Music"
}

func (s *AppleMusicService) Platform() models.Platform {
	return models.PlatformAppleMusic
}

// Budget returns Apple Music's batch pacing: up to 5 concurrent requests
// with 500ms between batches. Apple throttles harder than Spotify.
func (s *AppleMusicService) Budget() Budget {
	return Budget{BatchSize: 5, Delay: 500 * time.Millisecond}
}

// SetRandomSource injects the random source used for track sampling.
// Primarily for deterministic tests.
func (s *AppleMusicService) SetRandomSource(rng *rand.Rand) {
	s.rng = rng
}

// doRequest performs an authenticated, rate-limited HTTP request to the
// Apple Music API. Library endpoints require the user token; catalog
// endpoints work with the developer token alone.
func (s *AppleMusicService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	apiURL := appleMusicBaseURL + endpoint

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.developerToken)
	req.Header.Set("Content-Type", "application/json")
	if s.userToken != "" {
		req.Header.Set("Music-User-Token", s.userToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("apple music API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchArtist searches the catalog for a requested name and scores the
// best of up to five candidates. Returns nil on no results or on request
// failure; search is a soft dependency and must not abort a batch.
func (s *AppleMusicService) SearchArtist(ctx context.Context, name string) *models.ArtistSearchResult {
	endpoint := fmt.Sprintf("/catalog/%s/search?types=artists&term=%s&limit=%d",
		s.storefront, url.QueryEscape(name), searchResultLimit)

	var response appleMusicSearchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil
	}

	candidates := response.Results.Artists.Data
	if len(candidates) == 0 {
		return nil
	}

	names := make([]string, len(candidates))
	for i, artist := range candidates {
		names[i] = artist.Attributes.Name
	}

	best, score := match.BestCandidate(name, names)
	winner := candidates[best]

	return &models.ArtistSearchResult{
		ID:         winner.ID,
		Name:       winner.Attributes.Name,
		Matched:    match.Accepted(score),
		Similarity: score,
	}
}

// TopTracks fetches an artist's top songs and samples quota of them.
// Returns an empty slice on no songs or on request failure.
func (s *AppleMusicService) TopTracks(ctx context.Context, artistID string, quota int, mode models.SelectionMode) []models.Track {
	endpoint := fmt.Sprintf("/catalog/%s/artists/%s/view/top-songs?limit=%d",
		s.storefront, artistID, topSongsFetchLimit)

	var response appleMusicTopSongsResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return []models.Track{}
	}

	candidates := make([]models.Track, 0, len(response.Data))
	for _, song := range response.Data {
		candidates = append(candidates, s.mapSong(song, artistID))
	}

	return selection.Tracks(candidates, quota, mode, s.rng)
}

// CurrentUser identifies the authenticated library by its storefront.
// Apple Music exposes no profile endpoint for display name or email.
func (s *AppleMusicService) CurrentUser(ctx context.Context) (*models.User, error) {
	if s.userToken == "" {
		return nil, fmt.Errorf("not authenticated: call Authenticate first")
	}

	var response appleMusicStorefrontResponse
	if err := s.doRequest(ctx, http.MethodGet, "/me/storefront", nil, &response); err != nil {
		return nil, err
	}
	if len(response.Data) == 0 {
		return nil, fmt.Errorf("no storefront associated with user token")
	}

	storefront := response.Data[0]
	s.storefront = storefront.ID

	return &models.User{
		ID:          storefront.ID,
		DisplayName: storefront.Attributes.Name,
	}, nil
}

// CreatePlaylist creates an empty playlist in the user's library. Library
// playlists have no shareable URL until Apple finishes processing them, so
// the returned ref carries only the ID.
func (s *AppleMusicService) CreatePlaylist(ctx context.Context, _, name, description string, _ bool) (*models.PlaylistRef, error) {
	body := map[string]any{
		"attributes": map[string]any{
			"name":        name,
			"description": description,
		},
	}

	var response appleMusicPlaylistResponse
	if err := s.doRequest(ctx, http.MethodPost, "/me/library/playlists", body, &response); err != nil {
		return nil, err
	}
	if len(response.Data) == 0 {
		return nil, fmt.Errorf("playlist created but no resource returned")
	}

	return &models.PlaylistRef{ID: response.Data[0].ID}, nil
}

// AddTracks appends songs to a library playlist in sequential chunks of at
// most 25, Apple Music's batch-write ceiling.
func (s *AppleMusicService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	endpoint := fmt.Sprintf("/me/library/playlists/%s/tracks", playlistID)

	for start := 0; start < len(trackIDs); start += appleMusicMaxTrackWrite {
		end := min(start+appleMusicMaxTrackWrite, len(trackIDs))

		data := make([]map[string]string, 0, end-start)
		for _, id := range trackIDs[start:end] {
			data = append(data, map[string]string{"id": id, "type": "songs"})
		}

		body := map[string]any{"data": data}
		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return fmt.Errorf("failed to add tracks %d-%d: %w", start, end-1, err)
		}
	}

	return nil
}

// mapSong converts an Apple Music song payload to the shared model.
func (s *AppleMusicService) mapSong(song AppleMusicSong, artistID string) models.Track {
	preview := ""
	if len(song.Attributes.Previews) > 0 {
		preview = song.Attributes.Previews[0].URL
	}

	return models.Track{
		ID:           song.ID,
		Name:         song.Attributes.Name,
		URI:          song.ID,
		Artist:       song.Attributes.ArtistName,
		ArtistID:     artistID,
		Album:        song.Attributes.AlbumName,
		AlbumArtwork: artworkURL(song.Attributes.Artwork, 640),
		DurationMS:   song.Attributes.DurationInMillis,
		PreviewURL:   preview,
		PlatformURL:  song.Attributes.URL,
		Platform:     models.PlatformAppleMusic,
	}
}

// artworkURL substitutes concrete dimensions into Apple's templated
// artwork URLs ({w}x{h} placeholders).
func artworkURL(art appleMusicArtwork, size int) string {
	if art.URL == "" {
		return ""
	}
	u := strings.ReplaceAll(art.URL, "{w}", fmt.Sprint(size))
	return strings.ReplaceAll(u, "{h}", fmt.Sprint(size))
}
