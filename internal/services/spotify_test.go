package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// roundTripFunc routes requests through a function. Local to this package
// because the shared testing helpers depend on services and cannot be
// imported here.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body any) *http.Response {
	payload, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(payload)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func authedSpotify(t *testing.T, transport http.RoundTripper) *SpotifyService {
	t.Helper()
	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	srv.token = &oauth2.Token{AccessToken: "test_access_token"}
	srv.httpClient = &http.Client{Transport: transport}
	return srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
				"redirect_uri":  "http://127.0.0.1:9999/callback",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.config.RedirectURL != "http://127.0.0.1:9999/callback" {
				t.Errorf("unexpected redirect URI: %s", srv.config.RedirectURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "s"})
			if err == nil {
				t.Error("expected error for missing client_id")
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "c"})
			if err == nil {
				t.Error("expected error for missing client_secret")
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "c",
				"client_secret": "s",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(srv.config.RedirectURL, "127.0.0.1") {
				t.Errorf("expected loopback default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("WithAccessToken", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{
				"access_token": "test_access_token",
			})
			if err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}
			if srv.token == nil || srv.token.AccessToken != "test_access_token" {
				t.Errorf("expected access token to be stored, got %+v", srv.token)
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			if err := srv.Authenticate(context.Background(), map[string]string{}); err == nil {
				t.Error("expected error for missing credentials")
			}
		})
	})

	t.Run("Service Interface", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "c",
			"client_secret": "s",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var _ Service = srv
		var _ CoverUploader = srv
	})

	t.Run("Budget", func(t *testing.T) {
		srv := authedSpotify(t, nil)
		budget := srv.Budget()
		if budget.BatchSize != 10 {
			t.Errorf("expected batch size 10, got %d", budget.BatchSize)
		}
	})
}

func TestSpotifySearchArtist(t *testing.T) {
	searchBody := func(names ...string) any {
		items := make([]map[string]any, len(names))
		for i, name := range names {
			items[i] = map[string]any{"id": fmt.Sprintf("id%d", i), "name": name}
		}
		return map[string]any{"artists": map[string]any{"items": items}}
	}

	t.Run("accepts a confident match", func(t *testing.T) {
		srv := authedSpotify(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.Contains(req.URL.RawQuery, "limit=5") {
				t.Errorf("expected search limit of 5, got %s", req.URL.RawQuery)
			}
			return jsonResponse(200, searchBody("Tame Impala", "Tame Club")), nil
		}))

		result := srv.SearchArtist(context.Background(), "Tame Impla")
		if result == nil {
			t.Fatal("expected a result")
		}
		if result.Name != "Tame Impala" {
			t.Errorf("expected best candidate 'Tame Impala', got %s", result.Name)
		}
		if !result.Matched {
			t.Errorf("expected match accepted at similarity %f", result.Similarity)
		}
	})

	t.Run("reports a low-confidence match without accepting it", func(t *testing.T) {
		srv := authedSpotify(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(200, searchBody("Completely Different")), nil
		}))

		result := srv.SearchArtist(context.Background(), "Khruangbin")
		if result == nil {
			t.Fatal("expected a diagnostic result for the losing candidate")
		}
		if result.Matched {
			t.Errorf("expected match rejected at similarity %f", result.Similarity)
		}
	})

	t.Run("returns nil on empty results", func(t *testing.T) {
		srv := authedSpotify(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(200, searchBody()), nil
		}))

		if result := srv.SearchArtist(context.Background(), "Nobody"); result != nil {
			t.Errorf("expected nil for empty results, got %+v", result)
		}
	})

	t.Run("returns nil on request failure", func(t *testing.T) {
		srv := authedSpotify(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection failed")
		}))

		if result := srv.SearchArtist(context.Background(), "Anyone"); result != nil {
			t.Errorf("expected nil on transport error, got %+v", result)
		}
	})
}

func TestSpotifyTopTracks(t *testing.T) {
	topTracksBody := func(n int) any {
		tracks := make([]map[string]any, n)
		for i := range tracks {
			tracks[i] = map[string]any{
				"id":          fmt.Sprintf("t%d", i),
				"name":        fmt.Sprintf("Song %d", i),
				"uri":         fmt.Sprintf("spotify:track:t%d", i),
				"duration_ms": 180000,
				"artists":     []map[string]any{{"id": "a1", "name": "Artist"}},
				"album": map[string]any{
					"name":   "Album",
					"images": []map[string]any{{"url": "https://img.example/640.jpg"}},
				},
				"external_urls": map[string]any{"spotify": fmt.Sprintf("https://open.spotify.com/track/t%d", i)},
			}
		}
		return map[string]any{"tracks": tracks}
	}

	t.Run("samples the requested quota", func(t *testing.T) {
		srv := authedSpotify(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.Contains(req.URL.Path, "/artists/a1/top-tracks") {
				t.Errorf("unexpected path %s", req.URL.Path)
			}
			return jsonResponse(200, topTracksBody(10)), nil
		}))

		tracks := srv.TopTracks(context.Background(), "a1", 3, "")
		if len(tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(tracks))
		}
		for _, tr := range tracks {
			if tr.ArtistID != "a1" {
				t.Errorf("expected searched artist ID on track, got %s", tr.ArtistID)
			}
			if tr.Album != "Album" || tr.DurationMS != 180000 {
				t.Errorf("track fields not mapped: %+v", tr)
			}
		}
	})

	t.Run("returns empty slice on request failure", func(t *testing.T) {
		srv := authedSpotify(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection failed")
		}))

		tracks := srv.TopTracks(context.Background(), "a1", 3, "")
		if tracks == nil || len(tracks) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", tracks)
		}
	})
}

func TestSpotifyPlaylistOps(t *testing.T) {
	t.Run("CreatePlaylist", func(t *testing.T) {
		srv := authedSpotify(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodPost || !strings.Contains(req.URL.Path, "/users/u1/playlists") {
				t.Errorf("unexpected request %s %s", req.Method, req.URL.Path)
			}
			return jsonResponse(201, map[string]any{
				"id":            "pl1",
				"name":          "Marquee Mix",
				"external_urls": map[string]any{"spotify": "https://open.spotify.com/playlist/pl1"},
			}), nil
		}))

		ref, err := srv.CreatePlaylist(context.Background(), "u1", "Marquee Mix", "desc", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ref.ID != "pl1" || !strings.Contains(ref.URL, "pl1") {
			t.Errorf("unexpected playlist ref: %+v", ref)
		}
	})

	t.Run("AddTracks chunks at 100", func(t *testing.T) {
		var requests int
		var lastBatch []string
		srv := authedSpotify(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
			requests++
			var body struct {
				URIs []string `json:"uris"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}
			if len(body.URIs) > 100 {
				t.Errorf("chunk of %d exceeds the write ceiling", len(body.URIs))
			}
			lastBatch = body.URIs
			return jsonResponse(201, map[string]any{"snapshot_id": "snap"}), nil
		}))

		ids := make([]string, 250)
		for i := range ids {
			ids[i] = fmt.Sprintf("id%03d", i)
		}

		if err := srv.AddTracks(context.Background(), "pl1", ids); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if requests != 3 {
			t.Errorf("expected 3 sequential chunks for 250 tracks, got %d", requests)
		}
		if len(lastBatch) != 50 {
			t.Errorf("expected final chunk of 50, got %d", len(lastBatch))
		}
		if !strings.HasPrefix(lastBatch[0], "spotify:track:") {
			t.Errorf("expected URIs normalized, got %s", lastBatch[0])
		}
	})

	t.Run("AddTracks surfaces chunk failure", func(t *testing.T) {
		srv := authedSpotify(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(403, map[string]any{"error": "forbidden"}), nil
		}))

		if err := srv.AddTracks(context.Background(), "pl1", []string{"id1"}); err == nil {
			t.Error("expected error from failed write")
		}
	})

	t.Run("UploadCover", func(t *testing.T) {
		srv := authedSpotify(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", req.Method)
			}
			if ct := req.Header.Get("Content-Type"); ct != "image/jpeg" {
				t.Errorf("expected image/jpeg content type, got %s", ct)
			}
			return jsonResponse(202, nil), nil
		}))

		if err := srv.UploadCover(context.Background(), "pl1", "aGVsbG8="); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestSpotifyCurrentUser(t *testing.T) {
	srv := authedSpotify(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/me" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		return jsonResponse(200, map[string]any{
			"id":           "u1",
			"display_name": "Test User",
			"email":        "user@example.com",
		}), nil
	}))

	user, err := srv.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != "u1" || user.DisplayName != "Test User" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestSpotifyRequiresAuthentication(t *testing.T) {
	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "c",
		"client_secret": "s",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if _, err := srv.CurrentUser(context.Background()); err == nil {
		t.Error("expected error before Authenticate")
	}
}
