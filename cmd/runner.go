package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/soundslike/marquee/internal/resolver"
	"github.com/soundslike/marquee/internal/services"
	"github.com/soundslike/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	spotify    services.Service
	applemusic services.Service
	logger     *log.Logger
	output     io.Writer
	engine     *resolver.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Spotify    services.Service
	AppleMusic services.Service
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		spotify:    opts.Spotify,
		applemusic: opts.AppleMusic,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     resolver.NewEngine(opts.Logger),
	}
}

// SetLogger replaces the runner's logger (and the engine's, which shares it).
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = resolver.NewEngine(logger)
}

// service returns the platform service selected by the --platform flag.
func (r *Runner) service(cmd *cli.Command) (services.Service, error) {
	platform := cmd.String("platform")
	switch platform {
	case "spotify", "":
		if r.spotify == nil {
			return nil, fmt.Errorf("%w: Spotify service not initialized, run 'marquee auth spotify'", shared.ErrServiceUnavailable)
		}
		return r.spotify, nil
	case "applemusic", "apple":
		if r.applemusic == nil {
			return nil, fmt.Errorf("%w: Apple Music service not initialized, run 'marquee auth applemusic'", shared.ErrServiceUnavailable)
		}
		return r.applemusic, nil
	default:
		return nil, fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidFlag, platform)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
