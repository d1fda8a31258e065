package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/soundslike/marquee/internal/server"
	"github.com/soundslike/marquee/internal/services"
	"github.com/soundslike/marquee/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthSpotify runs the browser OAuth2 flow and persists the resulting
// tokens to the config file.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config, err := r.loadOrDefaultConfig(configPath)
	if err != nil {
		return err
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, configPath)
	}

	spotifyService, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(config, spotifyService)
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if err := spotifyService.Authenticate(ctx, map[string]string{"access_token": token.AccessToken}); err != nil {
		return fmt.Errorf("failed to apply token: %w", err)
	}
	r.spotify = spotifyService
	r.config = config

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: marquee build lineup.txt\n")

	return nil
}

// AuthAppleMusic stores the developer token and Music-User-Token in the
// config file. Both come from outside the CLI: the developer token is a
// signed JWT, the user token comes from a MusicKit authorization in a
// browser.
func (r *Runner) AuthAppleMusic(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	developerToken := cmd.String("developer-token")
	userToken := cmd.String("user-token")

	if developerToken == "" && userToken == "" {
		return fmt.Errorf("%w: provide --developer-token and/or --user-token", shared.ErrMissingArgument)
	}

	config, err := r.loadOrDefaultConfig(configPath)
	if err != nil {
		return err
	}

	if developerToken != "" {
		config.Credentials.AppleMusic.DeveloperToken = developerToken
	}
	if userToken != "" {
		config.Credentials.AppleMusic.MusicUserToken = userToken
	}

	if config.Credentials.AppleMusic.DeveloperToken == "" {
		return fmt.Errorf("%w: a developer token is required before storing a user token", shared.ErrMissingCredentials)
	}

	svc, err := services.NewAppleMusicService(config.Credentials.AppleMusic.DeveloperToken)
	if err != nil {
		return fmt.Errorf("failed to create Apple Music service: %w", err)
	}

	if config.Credentials.AppleMusic.MusicUserToken != "" {
		if err := svc.Authenticate(ctx, config.Credentials.AppleMusic.Map()); err != nil {
			return fmt.Errorf("failed to apply user token: %w", err)
		}
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.applemusic = svc
	r.config = config

	r.writePlainln("✓ Apple Music credentials saved")
	if config.Credentials.AppleMusic.MusicUserToken == "" {
		r.writePlain("Add a Music-User-Token with --user-token to enable playlist writes\n")
	} else {
		r.writePlain("You can now use: marquee build lineup.txt --platform applemusic\n")
	}

	return nil
}

// loadOrDefaultConfig prefers the runner's config, then the file at path,
// then defaults.
func (r *Runner) loadOrDefaultConfig(configPath string) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			r.logger.Warnf("failed to load config, using defaults %v", err)
			return shared.DefaultConfig(), nil
		}
		return config, nil
	}
	return shared.DefaultConfig(), nil
}

// doOAuth runs a one-shot loopback callback server through the browser
// consent flow and returns the exchanged token.
func (r *Runner) doOAuth(config *shared.Config, oauthSrv services.OAuthService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for %s authorization...\n", oauthSrv.Name())
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
