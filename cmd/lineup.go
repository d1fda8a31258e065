package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// ParseLineup reads a lineup file. JSON files carry the full structure;
// anything else is treated as the line-oriented text format:
//
//	# comment
//	event: Desert Daze 2026
//	Tame Impala, headliner
//	Khruangbin, sub, 2
//	Some Local Band
//
// Tier and weight are optional per line.
func ParseLineup(path string) (*models.Lineup, error) {
	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return nil, err
	}

	var lineup *models.Lineup
	if strings.EqualFold(filepath.Ext(path), ".json") {
		lineup, err = parseLineupJSON(data)
	} else {
		lineup, err = parseLineupText(data)
	}
	if err != nil {
		return nil, err
	}

	if len(lineup.Artists) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrLineupEmpty, path)
	}
	return lineup, nil
}

func parseLineupJSON(data []byte) (*models.Lineup, error) {
	var lineup models.Lineup
	if err := json.Unmarshal(data, &lineup); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	for i, artist := range lineup.Artists {
		if strings.TrimSpace(artist.Name) == "" {
			return nil, fmt.Errorf("%w: artist %d has no name", shared.ErrInvalidInput, i)
		}
		if artist.Tier != "" {
			tier, err := models.ParseTier(string(artist.Tier))
			if err != nil {
				return nil, fmt.Errorf("%w: artist %q: %v", shared.ErrInvalidInput, artist.Name, err)
			}
			lineup.Artists[i].Tier = tier
		}
	}
	return &lineup, nil
}

func parseLineupText(data []byte) (*models.Lineup, error) {
	lineup := &models.Lineup{}

	for n, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if event, ok := strings.CutPrefix(line, "event:"); ok {
			lineup.Event = strings.TrimSpace(event)
			continue
		}

		artist, err := parseArtistLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, n+1, err)
		}
		lineup.Artists = append(lineup.Artists, artist)
	}

	return lineup, nil
}

// parseArtistLine parses "name[, tier[, weight]]".
func parseArtistLine(line string) (models.Artist, error) {
	parts := strings.Split(line, ",")
	artist := models.Artist{Name: strings.TrimSpace(parts[0])}

	if artist.Name == "" {
		return artist, fmt.Errorf("empty artist name")
	}

	if len(parts) > 1 {
		tier, err := models.ParseTier(strings.TrimSpace(parts[1]))
		if err != nil {
			return artist, err
		}
		artist.Tier = tier
	}

	if len(parts) > 2 {
		weight, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return artist, fmt.Errorf("invalid weight %q", strings.TrimSpace(parts[2]))
		}
		artist.Weight = weight
	}

	if len(parts) > 3 {
		return artist, fmt.Errorf("too many fields")
	}

	return artist, nil
}

// LineupShow parses a lineup file and displays it without touching any
// platform.
func (r *Runner) LineupShow(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: lineup file path", shared.ErrMissingArgument)
	}

	lineup, err := ParseLineup(path)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(lineup, true)
	}

	title := lineup.Event
	if title == "" {
		title = path
	}
	r.writePlainHeader(title)
	for _, artist := range lineup.Artists {
		line := artist.Name
		if artist.Tier != "" {
			line = fmt.Sprintf("%s (%s)", line, artist.Tier)
		}
		if artist.Weight != 0 {
			line = fmt.Sprintf("%s [weight %d]", line, artist.Weight)
		}
		r.writePlain("%s\n", line)
	}
	r.writePlain("\n%d artists\n", len(lineup.Artists))

	return nil
}
