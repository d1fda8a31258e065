package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/resolver"
	tu "github.com/soundslike/marquee/internal/testing"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// reviewModel returns a model sitting in the review view with two matched
// artists and one miss.
func reviewModel(t *testing.T, mock *tu.MockService) *Model {
	t.Helper()

	m := NewModel(context.Background(), mock, resolver.NewEngine(nil), models.Lineup{Event: "Desert Daze"}, models.TrackCountOptions{}, PublishOptions{Name: "Desert Daze"})

	resolution := &models.Resolution{
		Tracks: []models.Track{
			{ID: "t1", Name: "Borderline", Artist: "Tame Impala"},
			{ID: "t2", Name: "Elephant", Artist: "Tame Impala"},
			{ID: "t3", Name: "Maria También", Artist: "Khruangbin"},
		},
		FoundArtists: 2,
		Matches: []models.ArtistMatch{
			{Requested: "Tame Impala", Found: "Tame Impala", Similarity: 1.0, Matched: true},
			{Requested: "Khruangbin", Found: "Khruangbin", Similarity: 1.0, Matched: true},
			{Requested: "Ghost Artist", Matched: false},
		},
	}

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(resolutionDoneMsg{resolution: resolution})
	if m.view != ReviewView {
		t.Fatalf("expected review view after resolution, got %v", m.view)
	}
	return m
}

func TestReviewToggle(t *testing.T) {
	t.Run("excluded artists lose their tracks", func(t *testing.T) {
		m := reviewModel(t, &tu.MockService{})

		m.Update(keyRune('x'))

		item, ok := m.matchList.SelectedItem().(artistMatchItem)
		if !ok || !item.excluded {
			t.Fatalf("expected selected item to be excluded, got %+v", item)
		}
		tracks := m.includedTracks()
		if len(tracks) != 1 || tracks[0].Artist != "Khruangbin" {
			t.Errorf("expected only Khruangbin tracks, got %+v", tracks)
		}
	})

	t.Run("toggling twice restores the artist", func(t *testing.T) {
		m := reviewModel(t, &tu.MockService{})

		m.Update(keyRune('x'))
		m.Update(keyRune('x'))

		if got := len(m.includedTracks()); got != 3 {
			t.Errorf("expected all tracks after re-inclusion, got %d", got)
		}
	})

	t.Run("unmatched artists cannot be toggled", func(t *testing.T) {
		m := reviewModel(t, &tu.MockService{})

		m.matchList.Select(2)
		m.Update(keyRune('x'))

		if got := len(m.includedTracks()); got != 3 {
			t.Errorf("expected track list unchanged, got %d tracks", got)
		}
		if len(m.excluded) != 0 {
			t.Errorf("expected no exclusions, got %v", m.excluded)
		}
	})

	t.Run("publish writes only included tracks", func(t *testing.T) {
		mock := &tu.MockService{}
		m := reviewModel(t, mock)

		m.Update(keyRune('x')) // exclude Tame Impala
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != TrackListView {
			t.Fatalf("expected track list view, got %v", m.view)
		}
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %v", m.view)
		}

		_, cmd := m.Update(keyRune('y'))
		if cmd == nil {
			t.Fatal("expected a publish command")
		}
		msg := cmd()
		done, ok := msg.(publishDoneMsg)
		if !ok {
			t.Fatalf("expected publishDoneMsg, got %T", msg)
		}
		if done.err != nil {
			t.Fatalf("expected publish to succeed, got %v", done.err)
		}
		if len(mock.Added) != 1 || mock.Added[0] != "t3" {
			t.Errorf("expected only the Khruangbin track to be added, got %v", mock.Added)
		}
	})
}

func TestResolutionDelivery(t *testing.T) {
	mock := &tu.MockService{
		SearchResults: map[string]*models.ArtistSearchResult{
			"Tame Impala": {ID: "a1", Name: "Tame Impala", Matched: true, Similarity: 1.0},
		},
		Tracks: map[string][]models.Track{
			"a1": {{ID: "t1", Name: "Borderline", Artist: "Tame Impala"}},
		},
	}
	lineup := models.Lineup{Artists: []models.Artist{{Name: "Tame Impala"}}}
	m := NewModel(context.Background(), mock, resolver.NewEngine(nil), lineup, models.TrackCountOptions{}, PublishOptions{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	// Drive the command loop by hand until the resolution message lands.
	cmd := m.Init()
	for i := 0; i < 100 && m.view != ReviewView; i++ {
		if cmd == nil {
			t.Fatal("update loop stalled before the resolution arrived")
		}
		var next tea.Cmd
		_, next = m.Update(cmd())
		cmd = next
	}

	if m.view != ReviewView {
		t.Fatal("resolution never reached the model")
	}
	if m.resolution == nil || len(m.resolution.Tracks) != 1 {
		t.Fatalf("unexpected resolution: %+v", m.resolution)
	}
}
