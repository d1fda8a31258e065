package main

import (
	"context"
	"fmt"

	"github.com/soundslike/marquee/internal/repositories"
	"github.com/soundslike/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists past playlist builds, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database, run 'marquee setup' first: %w", err)
	}
	defer db.Close()

	records, err := repositories.NewBuildRepository(db).List(limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		r.writePlain("No builds yet. Run 'marquee build <lineup>' to create one.\n")
		return nil
	}

	r.writePlainHeader("Build History")
	for _, record := range records {
		event := record.Event
		if event == "" {
			event = record.PlaylistName
		}
		r.writePlain("#%d  %s  %s  %d/%d artists  %d tracks  %s\n",
			record.Sequence,
			record.CreatedAt.Format("2006-01-02 15:04"),
			event,
			record.FoundArtists,
			record.RequestedArtists,
			record.TrackCount,
			record.Platform,
		)
		if record.PlaylistURL != "" {
			r.writePlain("    %s\n", record.PlaylistURL)
		}
	}

	return nil
}
