// Package server provides the loopback HTTP plumbing for CLI OAuth flows.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs `marquee auth spotify`, a temporary HTTP server starts on the configured
// loopback address, the browser is opened to Spotify's consent page, the handler receives the
// redirect, and the server shuts down after delivering the token to the command.
//
// Apple Music authorization happens in MusicKit on the web and produces a Music-User-Token out
// of band, so it never touches this package.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
