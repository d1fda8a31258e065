// Package resolver implements the artist-resolution and track-acquisition
// engine.
//
// A resolution run is a linear, two-phase pipeline: search every requested
// artist on the platform (rate-limited batches), keep the confident
// matches, then fetch a per-artist quota of top tracks (rate-limited
// batches again) and flatten the result. Both phases are fail-soft: an
// artist that cannot be found or whose track fetch fails contributes
// nothing, and the run always reaches its terminal state. Diagnostics are
// emitted for every input artist regardless of outcome.
//
// The engine is stateless per call and never mutates its input; calling
// Resolve twice with identical inputs against a deterministic platform
// yields identical matches, though track sampling is intentionally random.
package resolver

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/soundslike/marquee/internal/batch"
	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/services"
	"github.com/soundslike/marquee/internal/shared"
)

// Engine runs lineup resolutions. Construct with [NewEngine]; the zero
// value logs to stderr.
type Engine struct {
	logger *log.Logger
}

// NewEngine creates an Engine. A nil logger falls back to the shared
// default.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{logger: logger}
}

// matchedArtist pairs a lineup entry with its accepted search result and
// computed quota for the fetch phase.
type matchedArtist struct {
	artist models.Artist
	result *models.ArtistSearchResult
	quota  int
}

// Resolve turns a lineup into a concrete track list on svc's platform.
//
// progress may be nil; when set, updates are sent without blocking (slow
// consumers miss intermediate updates rather than stalling the pipeline).
// The returned Resolution always carries one ArtistMatch per input artist,
// in input order.
func (e *Engine) Resolve(ctx context.Context, svc services.Service, artists []models.Artist, opts models.TrackCountOptions, progress chan<- ProgressUpdate) *models.Resolution {
	budget := svc.Budget()
	logger := shared.WithLogger(e.logger, "platform", svc.Name())

	logger.Info("starting resolution", "artists", len(artists), "mode", opts.Mode)
	e.sendProgress(progress, searchStartUpdate(len(artists), svc.Name()))

	// Phase 1: search every artist, misses included.
	searchRunner := batch.NewRunner[models.Artist, *models.ArtistSearchResult](budget.BatchSize, budget.Delay)
	var searched atomic.Int32
	searchResults := searchRunner.Run(ctx, artists, func(ctx context.Context, artist models.Artist) *models.ArtistSearchResult {
		result := svc.SearchArtist(ctx, artist.Name)
		step := int(searched.Add(1))
		e.sendProgress(progress, searchArtistUpdate(step, len(artists), artist.Name))
		return result
	})

	// Phase 2: diagnostics for every input, then filter to accepted
	// matches.
	matches := make([]models.ArtistMatch, len(artists))
	retained := make([]matchedArtist, 0, len(artists))
	for i, artist := range artists {
		result := searchResults[i]
		if result == nil {
			matches[i] = models.ArtistMatch{Requested: artist.Name}
			continue
		}

		matches[i] = models.ArtistMatch{
			Requested:  artist.Name,
			Found:      result.Name,
			Similarity: result.Similarity,
			Matched:    result.Matched,
		}

		if result.Matched {
			retained = append(retained, matchedArtist{
				artist: artist,
				result: result,
				quota:  TrackQuota(artist, opts),
			})
		} else {
			logger.Debug("match suppressed", "requested", artist.Name, "found", result.Name, "similarity", result.Similarity)
		}
	}

	logger.Info("search phase complete", "matched", len(retained), "requested", len(artists))
	e.sendProgress(progress, matchesUpdate(len(retained), len(artists), matches))

	// Phase 3: fetch a quota of top tracks per matched artist.
	e.sendProgress(progress, fetchStartUpdate(len(retained)))
	fetchRunner := batch.NewRunner[matchedArtist, []models.Track](budget.BatchSize, budget.Delay)
	var fetched atomic.Int32
	trackLists := fetchRunner.Run(ctx, retained, func(ctx context.Context, m matchedArtist) []models.Track {
		tracks := svc.TopTracks(ctx, m.result.ID, m.quota, opts.SelectionMode)
		step := int(fetched.Add(1))
		e.sendProgress(progress, fetchArtistUpdate(step, len(retained), m.quota, m.result.Name))
		return tracks
	})

	// Phase 4: flatten in fetch order.
	tracks := make([]models.Track, 0, len(retained))
	for i, list := range trackLists {
		if len(list) == 0 {
			logger.Debug("no tracks resolved", "artist", retained[i].result.Name)
			continue
		}
		tracks = append(tracks, list...)
	}

	logger.Info("resolution complete", "tracks", len(tracks), "found_artists", len(retained))
	e.sendProgress(progress, assembledUpdate(len(tracks), len(retained)))

	return &models.Resolution{
		Tracks:       tracks,
		FoundArtists: len(retained),
		Matches:      matches,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
