package main

import (
	"context"
	"fmt"
	"os"

	"github.com/soundslike/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config file if none exists, then opens the
// database and brings the schema up to date.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.ensureConfig(configPath)

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Info("migrations applied", "database", config.Database.Path)

	r.writePlain("✓ Setup complete\n")
	r.writePlain("Next: add Spotify credentials to %s and run 'marquee auth spotify'\n", configPath)
	return nil
}

// ensureConfig loads the config at path, creating it from the embedded
// template first when missing. Any failure falls back to defaults so setup
// can still initialize the database.
func (r *Runner) ensureConfig(path string) *shared.Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			return shared.DefaultConfig()
		}
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	return config
}
