package main

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/soundslike/marquee/internal/formatter"
	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/repositories"
	"github.com/soundslike/marquee/internal/resolver"
	"github.com/soundslike/marquee/internal/services"
	"github.com/soundslike/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// buildResult is the JSON shape emitted by `marquee build --json`.
type buildResult struct {
	Event      string               `json:"event,omitempty"`
	Platform   models.Platform      `json:"platform"`
	Playlist   *models.PlaylistRef  `json:"playlist,omitempty"`
	DryRun     bool                 `json:"dry_run,omitempty"`
	TrackCount int                  `json:"track_count"`
	Found      int                  `json:"found_artists"`
	Requested  int                  `json:"requested_artists"`
	Matches    []models.ArtistMatch `json:"artist_matches"`
}

// Build resolves a lineup file and creates a playlist from the result.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: lineup file path", shared.ErrMissingArgument)
	}

	lineup, err := ParseLineup(path)
	if err != nil {
		return err
	}

	svc, err := r.service(cmd)
	if err != nil {
		return err
	}

	opts, err := r.countOptions(cmd, lineup)
	if err != nil {
		return err
	}

	db := r.openDatabase()
	if db != nil {
		defer db.Close()
	}
	if db != nil && !cmd.Bool("no-cache") {
		svc = &cachedService{
			Service: svc,
			cache:   repositories.NewArtistCacheRepository(db),
			logger:  r.logger,
		}
	}

	r.logger.Info("resolving lineup", "event", lineup.Event, "artists", len(lineup.Artists), "platform", svc.Name())

	progress := make(chan resolver.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	resolution := r.engine.Resolve(ctx, svc, lineup.Artists, opts, progress)
	close(progress)
	<-done

	r.writePlainln("%s", string(formatter.MatchReport(resolution.Matches)))

	if resolution.FoundArtists == 0 {
		return fmt.Errorf("%w: none of the %d requested artists could be resolved", shared.ErrNoArtistsMatched, len(lineup.Artists))
	}

	result := buildResult{
		Event:      lineup.Event,
		Platform:   svc.Platform(),
		TrackCount: len(resolution.Tracks),
		Found:      resolution.FoundArtists,
		Requested:  len(lineup.Artists),
		Matches:    resolution.Matches,
	}

	if cmd.Bool("dry-run") {
		result.DryRun = true
		if cmd.Bool("json") {
			return r.writeJSON(result, true)
		}
		export, err := exportResolution(cmd.String("format"), lineup.Event, resolution)
		if err != nil {
			return err
		}
		r.writePlain("%s", string(export))
		r.writePlain("\n(dry run, no playlist created)\n")
		return nil
	}

	ref, err := r.publish(ctx, cmd, svc, lineup, resolution)
	if err != nil {
		return err
	}
	result.Playlist = ref

	record := r.buildRecord(cmd, svc, lineup, resolution, ref)
	r.recordBuild(db, record)
	r.saveMetadata(cmd.String("save"), record)

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlainln("✓ Playlist created with %d tracks from %d artists", len(resolution.Tracks), resolution.FoundArtists)
	if ref.URL != "" {
		r.writePlain("%s\n", ref.URL)
	}
	return nil
}

// cachedService consults the artist-match cache before hitting the
// platform's search endpoint, and writes outcomes through, misses included.
// Cache failures degrade to a plain search.
type cachedService struct {
	services.Service
	cache  *repositories.ArtistCacheRepository
	logger *log.Logger
}

func (c *cachedService) SearchArtist(ctx context.Context, name string) *models.ArtistSearchResult {
	if entry, err := c.cache.Get(name, c.Platform()); err == nil && entry != nil {
		c.logger.Debug("artist cache hit", "requested", name, "matched", entry.Matched)
		if entry.ArtistID == "" {
			return nil
		}
		return &models.ArtistSearchResult{
			ID:         entry.ArtistID,
			Name:       entry.ArtistName,
			Matched:    entry.Matched,
			Similarity: entry.Similarity,
		}
	}

	result := c.Service.SearchArtist(ctx, name)

	entry := &models.CachedArtistMatch{Requested: name, Platform: c.Platform()}
	if result != nil {
		entry.ArtistID = result.ID
		entry.ArtistName = result.Name
		entry.Similarity = result.Similarity
		entry.Matched = result.Matched
	}
	if err := c.cache.Put(entry); err != nil {
		c.logger.Debug("artist cache write failed", "error", err)
	}

	return result
}

// exportResolution renders a resolution in the requested dry-run format.
func exportResolution(format, event string, resolution *models.Resolution) ([]byte, error) {
	switch format {
	case "", "text":
		return formatter.ExportToText(event, resolution)
	case "markdown", "md":
		return formatter.ExportToMarkdown(event, resolution)
	case "csv":
		return formatter.ExportToCSV(resolution)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// countOptions assembles TrackCountOptions from flags, falling back to the
// config file's resolver section. The lineup supplies per-artist weights.
func (r *Runner) countOptions(cmd *cli.Command, lineup *models.Lineup) (models.TrackCountOptions, error) {
	modeFlag := cmd.String("mode")
	if modeFlag == "" {
		modeFlag = r.config.Resolver.Mode
	}
	mode, err := models.ParseCountMode(modeFlag)
	if err != nil {
		return models.TrackCountOptions{}, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	selectionFlag := cmd.String("selection")
	if selectionFlag == "" {
		selectionFlag = r.config.Resolver.SelectionMode
	}
	selection, err := models.ParseSelectionMode(selectionFlag)
	if err != nil {
		return models.TrackCountOptions{}, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	count := int(cmd.Int("count"))
	if count > 0 && mode == "" {
		mode = models.CountCustom
	}
	if count == 0 {
		count = r.config.Resolver.CustomCount
	}

	opts := models.TrackCountOptions{
		Mode:          mode,
		CustomCount:   count,
		SelectionMode: selection,
	}

	switch mode {
	case models.CountCustomPerTier:
		source := r.config.Resolver.TierCounts
		if pairs := cmd.StringSlice("tier-count"); len(pairs) > 0 {
			if source, err = parseCountPairs(pairs); err != nil {
				return models.TrackCountOptions{}, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
			}
		}
		if opts.TierCounts, err = tierCounts(source); err != nil {
			return models.TrackCountOptions{}, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		if len(opts.TierCounts) == 0 {
			return models.TrackCountOptions{}, fmt.Errorf("%w: custom-per-tier mode needs --tier-count or [resolver.tier_counts]", shared.ErrInvalidFlag)
		}
	case models.CountPerArtist:
		overrides := r.config.Resolver.PerArtistCounts
		if pairs := cmd.StringSlice("artist-count"); len(pairs) > 0 {
			if overrides, err = parseCountPairs(pairs); err != nil {
				return models.TrackCountOptions{}, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
			}
		}
		opts.PerArtistCounts = artistCounts(lineup, overrides)
		if len(opts.PerArtistCounts) == 0 {
			return models.TrackCountOptions{}, fmt.Errorf("%w: per-artist mode needs lineup weights, --artist-count, or [resolver.per_artist_counts]", shared.ErrInvalidFlag)
		}
	}

	return opts, nil
}

// parseCountPairs parses repeated "key=count" flag values.
func parseCountPairs(pairs []string) (map[string]int, error) {
	counts := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=count, got %q", pair)
		}
		count, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid count in %q", pair)
		}
		counts[key] = count
	}
	return counts, nil
}

// tierCounts converts string tier keys to the typed policy map.
func tierCounts(source map[string]int) (map[models.Tier]int, error) {
	if len(source) == 0 {
		return nil, nil
	}
	counts := make(map[models.Tier]int, len(source))
	for name, count := range source {
		tier, err := models.ParseTier(name)
		if err != nil {
			return nil, err
		}
		counts[tier] = count
	}
	return counts, nil
}

// artistCounts combines lineup weights with explicit per-artist overrides;
// overrides win on collision.
func artistCounts(lineup *models.Lineup, overrides map[string]int) map[string]int {
	counts := make(map[string]int)
	for _, artist := range lineup.Artists {
		if artist.Weight > 0 {
			counts[artist.Name] = artist.Weight
		}
	}
	for name, count := range overrides {
		counts[name] = count
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

// publish creates the playlist and writes the resolved tracks, then
// attempts the cover upload as a best-effort step.
func (r *Runner) publish(ctx context.Context, cmd *cli.Command, svc services.Service, lineup *models.Lineup, resolution *models.Resolution) (*models.PlaylistRef, error) {
	user, err := svc.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to identify user: %w", err)
	}

	name := cmd.String("name")
	if name == "" {
		name = lineup.Event
	}
	if name == "" {
		name = r.config.Playlist.Name
	}

	description := cmd.String("description")
	if description == "" {
		description = r.config.Playlist.Description
	}

	public := cmd.Bool("public") || r.config.Playlist.Public

	ref, err := svc.CreatePlaylist(ctx, user.ID, name, description, public)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	ids := make([]string, len(resolution.Tracks))
	for i, track := range resolution.Tracks {
		ids[i] = track.ID
	}
	if err := svc.AddTracks(ctx, ref.ID, ids); err != nil {
		return nil, fmt.Errorf("failed to add tracks: %w", err)
	}

	r.uploadCover(ctx, cmd, svc, ref.ID)

	return ref, nil
}

// uploadCover uploads a playlist cover when the platform supports it.
// Failures are logged and ignored; a playlist without a cover is still a
// successful build.
func (r *Runner) uploadCover(ctx context.Context, cmd *cli.Command, svc services.Service, playlistID string) {
	uploader, ok := svc.(services.CoverUploader)
	if !ok {
		return
	}

	coverPath := cmd.String("cover")
	if coverPath == "" {
		coverPath = r.config.Playlist.CoverPath
	}
	if coverPath == "" {
		return
	}

	var data []byte
	var err error
	if strings.HasPrefix(coverPath, "http://") || strings.HasPrefix(coverPath, "https://") {
		data, err = formatter.DownloadImage(coverPath)
	} else {
		data, err = shared.VerifyAndReadFile(coverPath)
	}
	if err != nil {
		r.logger.Warn("skipping cover upload", "error", err)
		return
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	if err := uploader.UploadCover(ctx, playlistID, encoded); err != nil {
		r.logger.Warn("cover upload failed", "error", err)
		return
	}
	r.logger.Info("cover uploaded", "path", coverPath)
}

// openDatabase opens the configured database with an up-to-date schema.
// Persistence is advisory for builds, so failures log and return nil rather
// than aborting.
func (r *Runner) openDatabase() *sql.DB {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("continuing without persistence", "error", err)
		return nil
	}

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("continuing without persistence", "error", err)
		db.Close()
		return nil
	}
	return db
}

// buildRecord assembles the persisted description of a finished build.
func (r *Runner) buildRecord(cmd *cli.Command, svc services.Service, lineup *models.Lineup, resolution *models.Resolution, ref *models.PlaylistRef) *models.BuildRecord {
	name := cmd.String("name")
	if name == "" {
		name = lineup.Event
	}
	if name == "" {
		name = r.config.Playlist.Name
	}

	return &models.BuildRecord{
		Event:            lineup.Event,
		Platform:         svc.Platform(),
		PlaylistID:       ref.ID,
		PlaylistURL:      ref.URL,
		PlaylistName:     name,
		RequestedArtists: len(lineup.Artists),
		FoundArtists:     resolution.FoundArtists,
		TrackCount:       len(resolution.Tracks),
	}
}

// recordBuild appends a row to build history. History is advisory; a
// persistence failure never fails the build.
func (r *Runner) recordBuild(db *sql.DB, record *models.BuildRecord) {
	if db == nil {
		return
	}
	if err := repositories.NewBuildRepository(db).Create(record); err != nil {
		r.logger.Warn("failed to record build", "error", err)
	}
}

// saveMetadata writes build metadata JSON to the --save path. Like the rest
// of the post-publish steps this never fails the build.
func (r *Runner) saveMetadata(path string, record *models.BuildRecord) {
	if path == "" {
		return
	}

	data, err := formatter.ToMetadataJSON(record)
	if err != nil {
		r.logger.Warn("failed to save build metadata", "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		r.logger.Warn("failed to save build metadata", "path", path, "error", err)
		return
	}
	r.logger.Info("build metadata saved", "path", path)
}
