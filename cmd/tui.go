package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soundslike/marquee/internal/shared"
	"github.com/soundslike/marquee/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive review interface for a lineup file.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
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

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/marquee-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	name := cmd.String("name")
	if name == "" {
		name = lineup.Event
	}
	if name == "" {
		name = r.config.Playlist.Name
	}

	publishOpts := ui.PublishOptions{
		Name:        name,
		Description: r.config.Playlist.Description,
		Public:      r.config.Playlist.Public,
	}

	model := ui.NewModel(ctx, svc, r.engine, *lineup, opts, publishOpts)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
