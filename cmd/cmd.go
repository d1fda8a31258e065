// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, lineupCommand, buildCommand, historyCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configFlag is shared by every command that reads config.toml.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// platformFlag selects the streaming platform for a command.
func platformFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Usage:   "Streaming platform (spotify, applemusic)",
		Value:   "spotify",
	}
}

// setupCommand initializes config and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize config file, database, and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authCommand handles platform authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a streaming platform",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthSpotify,
			},
			{
				Name:  "applemusic",
				Usage: "Store Apple Music developer and user tokens",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "developer-token",
						Usage: "Apple Music developer token (signed JWT)",
					},
					&cli.StringFlag{
						Name:  "user-token",
						Usage: "Music-User-Token from a MusicKit authorization",
					},
				},
				Action: r.AuthAppleMusic,
			},
		},
	}
}

// lineupCommand inspects lineup files without touching any platform
func lineupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lineup",
		Usage: "Lineup file operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Parse and display a lineup file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LineupShow,
			},
		},
	}
}

// buildCommand resolves a lineup and creates a playlist
func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Resolve a lineup file into a playlist",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			configFlag(),
			platformFlag(),
			&cli.StringFlag{
				Name:  "name",
				Usage: "Playlist name (defaults to the lineup's event name)",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Playlist description",
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Create the playlist as public",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Track count mode (tier-based, custom, custom-per-tier, per-artist)",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Tracks per artist for custom mode",
			},
			&cli.StringSliceFlag{
				Name:  "tier-count",
				Usage: "Tracks per tier for custom-per-tier mode, as tier=count (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "artist-count",
				Usage: "Tracks for one artist in per-artist mode, as name=count (repeatable)",
			},
			&cli.StringFlag{
				Name:  "selection",
				Usage: "Track selection mode (popular, balanced, deep-cuts)",
			},
			&cli.StringFlag{
				Name:  "cover",
				Usage: "Path or URL of a JPEG cover image (Spotify only)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve and report without creating a playlist",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Dry-run output format (text, markdown, csv)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the artist match cache and search the platform directly",
			},
			&cli.StringFlag{
				Name:  "save",
				Usage: "Write build metadata JSON to this path",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Build,
	}
}

// historyCommand lists past builds
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past playlist builds",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of builds to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// cacheCommand manages the artist match cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Artist match cache operations",
		Commands: []*cli.Command{
			{
				Name:  "purge",
				Usage: "Remove cached artist matches past a certain age",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "days",
						Usage: "Remove entries older than this many days (0 clears everything)",
						Value: 30,
					},
				},
				Action: r.CachePurge,
			},
		},
	}
}

// tuiCommand launches the interactive review interface
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactively review matches before building a playlist",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			configFlag(),
			platformFlag(),
			&cli.StringFlag{
				Name:  "name",
				Usage: "Playlist name (defaults to the lineup's event name)",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Track count mode (tier-based, custom, custom-per-tier, per-artist)",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Tracks per artist for custom mode",
			},
			&cli.StringSliceFlag{
				Name:  "tier-count",
				Usage: "Tracks per tier for custom-per-tier mode, as tier=count (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "artist-count",
				Usage: "Tracks for one artist in per-artist mode, as name=count (repeatable)",
			},
			&cli.StringFlag{
				Name:  "selection",
				Usage: "Track selection mode (popular, balanced, deep-cuts)",
			},
		},
		Action: r.TUI,
	}
}
