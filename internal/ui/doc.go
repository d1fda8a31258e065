// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for building a playlist from a lineup:
//  1. [ResolveView] : Watch the lineup resolve against the platform catalog
//  2. [ReviewView] : Inspect per-artist match outcomes before committing
//  3. [TrackListView] : Preview the resolved tracks
//  4. [ConfirmView] : Confirm playlist creation
//  5. [PublishView] : Monitor playlist creation and track writes
//  6. [ResultView] : Display the created playlist and any skipped artists
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the resolver engine, providing non-blocking
// status reporting while the lineup resolves.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
