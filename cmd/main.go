package main

import (
	"context"
	"errors"
	"os"

	"github.com/soundslike/marquee/internal/services"
	"github.com/soundslike/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	var spotifyService services.Service
	var appleMusicService services.Service

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			if config.Credentials.Spotify.AccessToken != "" {
				svc.Authenticate(context.Background(), map[string]string{
					"access_token": config.Credentials.Spotify.AccessToken,
				})
			}
			spotifyService = svc
		}
	}

	if config.Credentials.AppleMusic.DeveloperToken != "" {
		if svc, err := services.NewAppleMusicService(config.Credentials.AppleMusic.DeveloperToken); err == nil {
			if config.Credentials.AppleMusic.MusicUserToken != "" {
				svc.Authenticate(context.Background(), config.Credentials.AppleMusic.Map())
			}
			appleMusicService = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Spotify:    spotifyService,
		AppleMusic: appleMusicService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "marquee",
		Usage:    "Turn festival lineups into playlists on Spotify & Apple Music",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
