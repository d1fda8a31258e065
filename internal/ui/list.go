package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/shared"
)

var (
	_ list.Item = artistMatchItem{}
	_ list.Item = trackItem{}
)

// artistMatchItem wraps [models.ArtistMatch] to implement [list.Item].
// Matched items can be excluded in the review view before building.
type artistMatchItem struct {
	match    models.ArtistMatch
	excluded bool
}

func (i artistMatchItem) FilterValue() string { return i.match.Requested }
func (i artistMatchItem) Title() string       { return i.match.Requested }
func (i artistMatchItem) Description() string {
	switch {
	case i.match.Matched && i.excluded:
		return fmt.Sprintf("excluded • matched %s • %.0f%%", i.match.Found, i.match.Similarity*100)
	case i.match.Matched:
		return fmt.Sprintf("matched %s • %.0f%%", i.match.Found, i.match.Similarity*100)
	case i.match.Found != "":
		return fmt.Sprintf("closest %s • %.0f%% • skipped", i.match.Found, i.match.Similarity*100)
	default:
		return "not found"
	}
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	if i.track.DurationMS > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.track.DurationMS))
	}
	return desc
}
