package resolver

import (
	"fmt"

	"github.com/soundslike/marquee/internal/models"
)

// ProgressUpdate represents a progress event during a resolution run.
//
// Used to send real-time updates to the CLI or TUI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Phase enumerates the resolution pipeline stages.
type Phase int

const (
	SearchArtists Phase = iota
	FilterMatches
	FetchTracks
	Assemble
)

func (p Phase) String() string {
	switch p {
	case SearchArtists:
		return "search_artists"
	case FilterMatches:
		return "filter_matches"
	case FetchTracks:
		return "fetch_tracks"
	case Assemble:
		return "assemble"
	default:
		return ""
	}
}

func searchStartUpdate(total int, platform string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchArtists,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Searching %d artists on %s...", total, platform),
	}
}

func searchArtistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, name),
	}
}

func matchesUpdate(found, total int, matches []models.ArtistMatch) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterMatches,
		Step:    found,
		Total:   total,
		Message: fmt.Sprintf("Matched %d of %d artists", found, total),
		Data:    matches,
	}
}

func fetchStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching top tracks for %d artists...", total),
	}
}

func fetchArtistUpdate(step, total, quota int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d tracks)", step, total, name, quota),
	}
}

func assembledUpdate(trackCount, foundArtists int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Assemble,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Collected %d tracks across %d artists", trackCount, foundArtists),
	}
}
