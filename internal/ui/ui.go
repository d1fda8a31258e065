package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/resolver"
	"github.com/soundslike/marquee/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ResolveView ViewState = iota
	ReviewView
	TrackListView
	ConfirmView
	PublishView
	ResultView
)

// PublishOptions carries the playlist settings applied when the user
// confirms the build.
type PublishOptions struct {
	Name        string
	Description string
	Public      bool
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	svc          services.Service
	engine       *resolver.Engine
	lineup       models.Lineup
	countOpts    models.TrackCountOptions
	publishOpts  PublishOptions
	width        int
	height       int
	matchList    list.Model
	trackList    list.Model
	resolution   *models.Resolution
	excluded     map[string]bool
	progressChan chan resolver.ProgressUpdate
	resultChan   chan *models.Resolution
	progress     resolver.ProgressUpdate
	playlist     *models.PlaylistRef
	err          error
	help         help.Model
	keys         keyMap
}

type resolutionDoneMsg struct {
	resolution *models.Resolution
}

type progressUpdateMsg resolver.ProgressUpdate

type publishDoneMsg struct {
	playlist *models.PlaylistRef
	err      error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, svc services.Service, engine *resolver.Engine, lineup models.Lineup, countOpts models.TrackCountOptions, publishOpts PublishOptions) *Model {
	return &Model{
		ctx:         ctx,
		view:        ResolveView,
		svc:         svc,
		engine:      engine,
		lineup:      lineup,
		countOpts:   countOpts,
		publishOpts: publishOpts,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init starts resolving the lineup immediately.
func (m *Model) Init() tea.Cmd {
	return m.startResolution()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// The lists exist only once a resolution has arrived.
		if m.resolution != nil {
			m.matchList.SetSize(msg.Width-4, msg.Height-8)
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ResolveView, PublishView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case ReviewView:
			return m.handleReviewKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = resolver.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case resolutionDoneMsg:
		m.resolution = msg.resolution
		m.progressChan = nil
		m.resultChan = nil
		m.buildLists()
		m.view = ReviewView
		return m, nil

	case publishDoneMsg:
		m.playlist = msg.playlist
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ResolveView:
		return m.renderResolve()
	case ReviewView:
		return m.renderReview()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case PublishView:
		return m.renderPublish()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "x":
		return m, m.toggleSelected()
	case "enter":
		m.buildTrackList()
		m.view = TrackListView
		return m, nil
	}

	var cmd tea.Cmd
	m.matchList, cmd = m.matchList.Update(msg)
	return m, cmd
}

// toggleSelected flips the selected artist between included and excluded.
// Unmatched artists contribute no tracks, so there is nothing to toggle.
func (m *Model) toggleSelected() tea.Cmd {
	item, ok := m.matchList.SelectedItem().(artistMatchItem)
	if !ok || !item.match.Matched {
		return nil
	}

	item.excluded = !item.excluded
	if item.excluded {
		m.excluded[item.match.Requested] = true
	} else {
		delete(m.excluded, item.match.Requested)
	}
	return m.matchList.SetItem(m.matchList.Index(), item)
}

// includedTracks returns the resolution's tracks minus those belonging to
// excluded artists.
func (m *Model) includedTracks() []models.Track {
	if len(m.excluded) == 0 {
		return m.resolution.Tracks
	}

	skip := make(map[string]bool, len(m.excluded))
	for _, match := range m.resolution.Matches {
		if m.excluded[match.Requested] {
			skip[match.Found] = true
		}
	}

	tracks := make([]models.Track, 0, len(m.resolution.Tracks))
	for _, track := range m.resolution.Tracks {
		if !skip[track.Artist] {
			tracks = append(tracks, track)
		}
	}
	return tracks
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ReviewView
		return m, nil
	case "enter":
		if len(m.includedTracks()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = TrackListView
		return m, nil
	case "y":
		m.view = PublishView
		return m, m.startPublish()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = ResolveView
		m.resolution = nil
		m.playlist = nil
		m.err = nil
		return m, m.startResolution()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ReviewView:
		m.matchList, cmd = m.matchList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) buildLists() {
	m.excluded = make(map[string]bool)

	matchItems := make([]list.Item, len(m.resolution.Matches))
	for i, match := range m.resolution.Matches {
		matchItems[i] = artistMatchItem{match: match}
	}
	m.matchList = list.New(matchItems, list.NewDefaultDelegate(), 0, 0)
	m.matchList.Title = fmt.Sprintf("Matched %d of %d artists", m.resolution.FoundArtists, len(m.resolution.Matches))
	// Keeps list index == item index, which SetItem relies on when toggling.
	m.matchList.SetFilteringEnabled(false)
	m.matchList.SetSize(m.width-4, m.height-8)

	m.buildTrackList()
}

func (m *Model) buildTrackList() {
	tracks := m.includedTracks()
	trackItems := make([]list.Item, len(tracks))
	for i, track := range tracks {
		trackItems[i] = trackItem{track: track}
	}
	m.trackList = list.New(trackItems, list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = fmt.Sprintf("%d tracks", len(tracks))
	m.trackList.SetSize(m.width-4, m.height-8)
}

// startResolution runs the engine off the update loop. The resolution comes
// back through a channel and reaches the model only as a message, so no
// goroutine writes model state.
func (m *Model) startResolution() tea.Cmd {
	m.progressChan = make(chan resolver.ProgressUpdate, 50)
	m.resultChan = make(chan *models.Resolution, 1)

	progress, result := m.progressChan, m.resultChan
	go func() {
		resolution := m.engine.Resolve(m.ctx, m.svc, m.lineup.Artists, m.countOpts, progress)
		result <- resolution
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, result := m.progressChan, m.resultChan
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return resolutionDoneMsg{resolution: <-result}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) startPublish() tea.Cmd {
	tracks := m.includedTracks()
	return func() tea.Msg {
		user, err := m.svc.CurrentUser(m.ctx)
		if err != nil {
			return publishDoneMsg{err: fmt.Errorf("failed to identify user: %w", err)}
		}

		ref, err := m.svc.CreatePlaylist(m.ctx, user.ID, m.publishOpts.Name, m.publishOpts.Description, m.publishOpts.Public)
		if err != nil {
			return publishDoneMsg{err: fmt.Errorf("failed to create playlist: %w", err)}
		}

		ids := make([]string, len(tracks))
		for i, track := range tracks {
			ids[i] = track.ID
		}
		if err := m.svc.AddTracks(m.ctx, ref.ID, ids); err != nil {
			return publishDoneMsg{err: fmt.Errorf("failed to add tracks: %w", err)}
		}

		return publishDoneMsg{playlist: ref}
	}
}

func (m *Model) renderResolve() string {
	title := styles.title.Render(fmt.Sprintf("Resolving lineup on %s", m.svc.Name()))

	var phase string
	switch m.progress.Phase {
	case resolver.SearchArtists:
		phase = fmt.Sprintf("Searching artists (%d/%d)", m.progress.Step, m.progress.Total)
	case resolver.FilterMatches:
		phase = "Filtering matches..."
	case resolver.FetchTracks:
		phase = fmt.Sprintf("Fetching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case resolver.Assemble:
		phase = "Assembling track list..."
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderReview() string {
	helpView := m.help.FullHelpView(m.keys.FullHelp())
	return fmt.Sprintf("%s\n\n%s", m.matchList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	confirmKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "build playlist"),
	)
	helpKeys := []key.Binding{confirmKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Create '%s' on %s?", m.publishOpts.Name, m.svc.Name()))
	info := fmt.Sprintf("\nTracks: %d\nArtists: %d of %d matched\n",
		len(m.includedTracks()), m.resolution.FoundArtists, len(m.resolution.Matches))
	if len(m.excluded) > 0 {
		info += fmt.Sprintf("Excluded: %d\n", len(m.excluded))
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderPublish() string {
	title := styles.title.Render("Building Playlist")
	return fmt.Sprintf("%s\n\nWriting %d tracks to %s...", title, len(m.includedTracks()), m.svc.Name())
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Build failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.playlist == nil {
		return styles.err.Render("No playlist created\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Playlist Created!")
	info := fmt.Sprintf("\nPlaylist: %s\nTracks: %d\nArtists: %d of %d matched",
		m.publishOpts.Name, len(m.includedTracks()), m.resolution.FoundArtists, len(m.resolution.Matches))
	if m.playlist.URL != "" {
		info += fmt.Sprintf("\nURL: %s", styles.link.Render(m.playlist.URL))
	}

	var skipped string
	missed := len(m.resolution.Matches) - m.resolution.FoundArtists
	if missed > 0 {
		skipped = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Skipped %d artists:", missed)))
		for _, match := range m.resolution.Matches {
			if !match.Matched {
				skipped += fmt.Sprintf("\n  • %s", match.Requested)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.retry, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, skipped, helpView)
}
