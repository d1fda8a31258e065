package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func authedAppleMusic(t *testing.T, transport http.RoundTripper) *AppleMusicService {
	t.Helper()
	srv, err := NewAppleMusicService("test_developer_token")
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	if err := srv.Authenticate(context.Background(), map[string]string{
		"music_user_token": "test_user_token",
	}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	srv.httpClient = &http.Client{Transport: transport}
	return srv
}

func TestAppleMusicService(t *testing.T) {
	t.Run("NewAppleMusicService", func(t *testing.T) {
		t.Run("With Developer Token", func(t *testing.T) {
			srv, err := NewAppleMusicService("test_developer_token")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Apple Music" {
				t.Errorf("expected service name 'Apple Music', got %s", srv.Name())
			}
		})

		t.Run("Missing Developer Token", func(t *testing.T) {
			if _, err := NewAppleMusicService(""); err == nil {
				t.Error("expected error for missing developer token")
			}
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewAppleMusicService("test_developer_token")
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("With User Token", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{
				"music_user_token": "test_user_token",
				"storefront":       "gb",
			})
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
			if srv.storefront != "gb" {
				t.Errorf("expected storefront override, got %s", srv.storefront)
			}
		})

		t.Run("Missing User Token", func(t *testing.T) {
			if err := srv.Authenticate(context.Background(), map[string]string{}); err == nil {
				t.Error("expected error for missing music_user_token")
			}
		})
	})

	t.Run("Service Interface", func(t *testing.T) {
		srv, err := NewAppleMusicService("test_developer_token")
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var _ Service = srv

		// Cover upload is a Spotify-only capability.
		var svc Service = srv
		if _, ok := svc.(CoverUploader); ok {
			t.Error("apple music should not advertise cover upload")
		}
	})

	t.Run("Budget", func(t *testing.T) {
		srv, _ := NewAppleMusicService("test_developer_token")
		budget := srv.Budget()
		if budget.BatchSize != 5 {
			t.Errorf("expected batch size 5, got %d", budget.BatchSize)
		}
	})
}

func TestAppleMusicHeaders(t *testing.T) {
	srv := authedAppleMusic(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if auth := req.Header.Get("Authorization"); auth != "Bearer test_developer_token" {
			t.Errorf("unexpected Authorization header: %s", auth)
		}
		if mut := req.Header.Get("Music-User-Token"); mut != "test_user_token" {
			t.Errorf("unexpected Music-User-Token header: %s", mut)
		}
		return jsonResponse(200, map[string]any{"results": map[string]any{}}), nil
	}))

	srv.SearchArtist(context.Background(), "Anyone")
}

func TestAppleMusicSearchArtist(t *testing.T) {
	searchBody := func(names ...string) any {
		data := make([]map[string]any, len(names))
		for i, name := range names {
			data[i] = map[string]any{
				"id":         fmt.Sprintf("am%d", i),
				"attributes": map[string]any{"name": name},
			}
		}
		return map[string]any{
			"results": map[string]any{
				"artists": map[string]any{"data": data},
			},
		}
	}

	t.Run("accepts a confident match", func(t *testing.T) {
		srv := authedAppleMusic(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.Contains(req.URL.Path, "/catalog/us/search") {
				t.Errorf("unexpected path %s", req.URL.Path)
			}
			if !strings.Contains(req.URL.RawQuery, "limit=5") {
				t.Errorf("expected search limit of 5, got %s", req.URL.RawQuery)
			}
			return jsonResponse(200, searchBody("Bonobo", "Bonobo Tribute Band")), nil
		}))

		result := srv.SearchArtist(context.Background(), "Bonobo")
		if result == nil {
			t.Fatal("expected a result")
		}
		if result.ID != "am0" || !result.Matched || result.Similarity != 1.0 {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("reports a low-confidence match without accepting it", func(t *testing.T) {
		srv := authedAppleMusic(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(200, searchBody("Entirely Unrelated Act")), nil
		}))

		result := srv.SearchArtist(context.Background(), "Khruangbin")
		if result == nil {
			t.Fatal("expected a diagnostic result")
		}
		if result.Matched {
			t.Errorf("expected match rejected at similarity %f", result.Similarity)
		}
	})

	t.Run("returns nil on empty results", func(t *testing.T) {
		srv := authedAppleMusic(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(200, searchBody()), nil
		}))

		if result := srv.SearchArtist(context.Background(), "Nobody"); result != nil {
			t.Errorf("expected nil for empty results, got %+v", result)
		}
	})

	t.Run("returns nil on request failure", func(t *testing.T) {
		srv := authedAppleMusic(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection failed")
		}))

		if result := srv.SearchArtist(context.Background(), "Anyone"); result != nil {
			t.Errorf("expected nil on transport error, got %+v", result)
		}
	})
}

func TestAppleMusicTopTracks(t *testing.T) {
	topSongsBody := func(n int) any {
		data := make([]map[string]any, n)
		for i := range data {
			data[i] = map[string]any{
				"id": fmt.Sprintf("song%d", i),
				"attributes": map[string]any{
					"name":             fmt.Sprintf("Song %d", i),
					"artistName":       "Artist",
					"albumName":        "Album",
					"durationInMillis": 200000,
					"url":              fmt.Sprintf("https://music.apple.com/song/song%d", i),
					"artwork":          map[string]any{"url": "https://img.example/{w}x{h}.jpg"},
					"previews":         []map[string]any{{"url": "https://audio.example/preview.m4a"}},
				},
			}
		}
		return map[string]any{"data": data}
	}

	t.Run("samples the requested quota", func(t *testing.T) {
		srv := authedAppleMusic(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.Contains(req.URL.Path, "/artists/am1/view/top-songs") {
				t.Errorf("unexpected path %s", req.URL.Path)
			}
			return jsonResponse(200, topSongsBody(10)), nil
		}))

		tracks := srv.TopTracks(context.Background(), "am1", 4, "")
		if len(tracks) != 4 {
			t.Fatalf("expected 4 tracks, got %d", len(tracks))
		}
		for _, tr := range tracks {
			if tr.ArtistID != "am1" || tr.Album != "Album" {
				t.Errorf("track fields not mapped: %+v", tr)
			}
			if strings.Contains(tr.AlbumArtwork, "{w}") {
				t.Errorf("artwork template not expanded: %s", tr.AlbumArtwork)
			}
		}
	})

	t.Run("returns empty slice on request failure", func(t *testing.T) {
		srv := authedAppleMusic(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection failed")
		}))

		tracks := srv.TopTracks(context.Background(), "am1", 3, "")
		if tracks == nil || len(tracks) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", tracks)
		}
	})
}

func TestAppleMusicPlaylistOps(t *testing.T) {
	t.Run("CreatePlaylist", func(t *testing.T) {
		srv := authedAppleMusic(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodPost || !strings.Contains(req.URL.Path, "/me/library/playlists") {
				t.Errorf("unexpected request %s %s", req.Method, req.URL.Path)
			}
			return jsonResponse(201, map[string]any{
				"data": []map[string]any{{
					"id":         "p.abc",
					"attributes": map[string]any{"name": "Marquee Mix"},
				}},
			}), nil
		}))

		ref, err := srv.CreatePlaylist(context.Background(), "ignored", "Marquee Mix", "desc", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ref.ID != "p.abc" {
			t.Errorf("unexpected playlist ref: %+v", ref)
		}
	})

	t.Run("AddTracks chunks at 25", func(t *testing.T) {
		var requests int
		srv := authedAppleMusic(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
			requests++
			var body struct {
				Data []struct {
					ID   string `json:"id"`
					Type string `json:"type"`
				} `json:"data"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}
			if len(body.Data) > 25 {
				t.Errorf("chunk of %d exceeds the write ceiling", len(body.Data))
			}
			if body.Data[0].Type != "songs" {
				t.Errorf("expected songs resource type, got %s", body.Data[0].Type)
			}
			return jsonResponse(204, nil), nil
		}))

		ids := make([]string, 60)
		for i := range ids {
			ids[i] = fmt.Sprintf("song%02d", i)
		}

		if err := srv.AddTracks(context.Background(), "p.abc", ids); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if requests != 3 {
			t.Errorf("expected 3 sequential chunks for 60 tracks, got %d", requests)
		}
	})

	t.Run("AddTracks surfaces chunk failure", func(t *testing.T) {
		srv := authedAppleMusic(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(403, map[string]any{"errors": []any{}}), nil
		}))

		if err := srv.AddTracks(context.Background(), "p.abc", []string{"song1"}); err == nil {
			t.Error("expected error from failed write")
		}
	})
}

func TestAppleMusicCurrentUser(t *testing.T) {
	t.Run("resolves storefront", func(t *testing.T) {
		srv := authedAppleMusic(t, roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/v1/me/storefront" {
				t.Errorf("unexpected path %s", req.URL.Path)
			}
			return jsonResponse(200, map[string]any{
				"data": []map[string]any{{
					"id":         "gb",
					"attributes": map[string]any{"name": "United Kingdom"},
				}},
			}), nil
		}))

		user, err := srv.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "gb" || user.DisplayName != "United Kingdom" {
			t.Errorf("unexpected user: %+v", user)
		}
		if srv.storefront != "gb" {
			t.Errorf("expected storefront adopted from response, got %s", srv.storefront)
		}
	})

	t.Run("requires authentication", func(t *testing.T) {
		srv, err := NewAppleMusicService("test_developer_token")
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		if _, err := srv.CurrentUser(context.Background()); err == nil {
			t.Error("expected error before Authenticate")
		}
	})
}
