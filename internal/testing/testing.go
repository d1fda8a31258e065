// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/services"
)

// MockService is a test double for [services.Service]
type MockService struct {
	SearchResults map[string]*models.ArtistSearchResult
	Tracks        map[string][]models.Track
	PlaylistErr   error
	AddErr        error
	Added         []string
}

func (m *MockService) Name() string              { return "mock" }
func (m *MockService) Platform() models.Platform { return models.PlatformSpotify }

func (m *MockService) Budget() services.Budget {
	return services.Budget{BatchSize: 5, Delay: time.Millisecond}
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockService) SearchArtist(ctx context.Context, name string) *models.ArtistSearchResult {
	return m.SearchResults[name]
}

func (m *MockService) TopTracks(ctx context.Context, artistID string, quota int, mode models.SelectionMode) []models.Track {
	tracks := m.Tracks[artistID]
	if quota > len(tracks) {
		quota = len(tracks)
	}
	return tracks[:quota]
}

func (m *MockService) CurrentUser(ctx context.Context) (*models.User, error) {
	return &models.User{ID: "mock-user", DisplayName: "Mock User"}, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.PlaylistRef, error) {
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	return &models.PlaylistRef{ID: "mock-playlist", URL: "https://example.com/playlist/mock-playlist"}, nil
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Added = append(m.Added, trackIDs...)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoundTripFunc routes each request through a function, for tests that
// need per-endpoint responses.
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
