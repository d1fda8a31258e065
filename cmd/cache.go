package main

import (
	"context"
	"fmt"
	"time"

	"github.com/soundslike/marquee/internal/repositories"
	"github.com/soundslike/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// CachePurge removes artist match cache entries older than --days.
// Entries are written automatically during 'marquee build' runs.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	days := int(cmd.Int("days"))
	if days < 0 {
		return fmt.Errorf("%w: --days must not be negative", shared.ErrInvalidFlag)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database, run 'marquee setup' first: %w", err)
	}
	defer db.Close()

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	purged, err := repositories.NewArtistCacheRepository(db).Purge(cutoff)
	if err != nil {
		return err
	}

	r.writePlain("✓ Purged %d cached artist matches older than %d days\n", purged, days)
	return nil
}
