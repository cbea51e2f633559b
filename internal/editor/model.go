// Package editor provides the terminal authoring surface for a collection
// centre block: a centre picker with a live preview of the selection.
package editor

import (
	"context"
	"errors"
	"strings"

	"centre-block/internal/models"
	"centre-block/internal/services"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// DirectoryState tracks the one-off directory load.
type DirectoryState int

const (
	DirectoryIdle DirectoryState = iota
	DirectoryLoading
	DirectoryLoaded
	DirectoryFailed
)

// CentreState tracks resolution of the current selection.
type CentreState int

const (
	CentreNoSelection CentreState = iota
	// CentreAwaitingDirectory: a selection exists but the directory load has
	// not finished, so resolution has not started.
	CentreAwaitingDirectory
	CentreResolving
	CentreReady
	CentreNotFound
	CentreFailed
)

// Inline notices. Kept short; the author can retry or pick again.
const (
	directoryErrorNotice = "Failed to load collection centres."
	centreErrorNotice    = "Failed to load centre details."
	notFoundNotice       = "Centre not found or failed to load."
	saveErrorNotice      = "Selection could not be saved."
)

// CentreResolver resolves a selection against an optional known list.
type CentreResolver interface {
	Resolve(ctx context.Context, id string, known []models.CentreRecord) (models.CentreRecord, error)
}

// SelectionStore persists the block's selection. It may be nil, in which case
// the selection only lives for the session.
type SelectionStore interface {
	SaveSelection(ctx context.Context, centreID string) error
}

// Model holds the editor state.
type Model struct {
	directory services.DirectoryFetcher
	resolver  CentreResolver
	store     SelectionStore
	logr      *zap.Logger

	dirState DirectoryState
	centres  []models.CentreRecord

	selection   string
	centreState CentreState
	display     models.DisplayModel
	// resolveToken identifies the newest resolution request. Results carrying
	// any other token are stale and dropped.
	resolveToken uint64

	notice string

	filter    textinput.Model
	filtering bool
	cursor    int
	spinner   spinner.Model
	width     int
	height    int
}

// New creates an editor for a block whose saved selection is selection.
func New(directory services.DirectoryFetcher, resolver CentreResolver, store SelectionStore, selection string, logr *zap.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "Search centres..."
	ti.Prompt = "/ "
	ti.Width = 30

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		directory: directory,
		resolver:  resolver,
		store:     store,
		logr:      logr,
		selection: strings.TrimSpace(selection),
		filter:    ti,
		spinner:   sp,
	}
	if m.selection != "" {
		m.centreState = CentreAwaitingDirectory
	}
	return m
}

// mountMsg starts the directory load exactly once.
type mountMsg struct{}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return mountMsg{} },
		m.spinner.Tick,
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mountMsg:
		if m.dirState != DirectoryIdle {
			return m, nil
		}
		return m.loadDirectory()

	case directoryLoadedMsg:
		return m.handleDirectoryLoaded(msg)

	case centreResolvedMsg:
		return m.handleCentreResolved(msg), nil

	case selectionSavedMsg:
		if msg.err != nil && msg.centreID == m.selection {
			m.logr.Warn("failed to save selection", zap.String("centre_id", msg.centreID), zap.Error(msg.err))
			m.notice = saveErrorNotice
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.filtering {
		switch msg.String() {
		case "esc", "enter":
			m.filtering = false
			m.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.cursor = 0
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "r":
		return m.retry()

	case "/":
		if m.pickerDisabled() {
			return m, nil
		}
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink

	case "j", "down", "ctrl+n":
		if !m.pickerDisabled() && m.cursor < len(m.options())-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up", "ctrl+p":
		if !m.pickerDisabled() && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "enter", " ":
		if m.pickerDisabled() {
			return m, nil
		}
		opts := m.options()
		if m.cursor < len(opts) {
			return m.SetSelection(opts[m.cursor].id)
		}
		return m, nil

	case "x", "backspace":
		if m.pickerDisabled() {
			return m, nil
		}
		return m.SetSelection("")
	}

	return m, nil
}

// SetSelection changes the chosen centre, persists it and starts resolution
// when the directory load has finished.
func (m Model) SetSelection(id string) (Model, tea.Cmd) {
	id = strings.TrimSpace(id)
	if id == m.selection {
		return m, nil
	}

	m.selection = id
	m.notice = ""
	m, resolve := m.startResolve()
	return m, tea.Batch(m.saveSelection(id), resolve)
}

// startResolve issues a new token, which invalidates anything in flight.
func (m Model) startResolve() (Model, tea.Cmd) {
	m.resolveToken++
	m.display = models.DisplayModel{}

	switch {
	case m.selection == "":
		m.centreState = CentreNoSelection
		return m, nil
	case !m.directoryFinished():
		m.centreState = CentreAwaitingDirectory
		return m, nil
	}

	m.centreState = CentreResolving
	return m, resolveCentre(m.resolver, m.resolveToken, m.selection, m.centres)
}

func (m Model) loadDirectory() (Model, tea.Cmd) {
	m.dirState = DirectoryLoading
	m.notice = ""
	return m, loadDirectory(m.directory)
}

func (m Model) handleDirectoryLoaded(msg directoryLoadedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.logr.Warn("directory load failed", zap.Error(msg.err))
		m.dirState = DirectoryFailed
		m.centres = nil
		m.notice = directoryErrorNotice
	} else {
		m.dirState = DirectoryLoaded
		m.centres = msg.centres
	}
	m.cursor = 0

	if m.selection == "" {
		return m, nil
	}
	// A failed load still gets an attempt; the resolver fetches again itself.
	return m.startResolve()
}

func (m Model) handleCentreResolved(msg centreResolvedMsg) Model {
	if msg.token != m.resolveToken || msg.centreID != m.selection {
		m.logr.Debug("discarding stale centre result",
			zap.String("centre_id", msg.centreID),
			zap.String("selection", m.selection))
		return m
	}

	switch {
	case msg.err == nil:
		m.centreState = CentreReady
		m.display = services.Format(msg.centre)
	case errors.Is(msg.err, services.ErrCentreNotFound):
		m.centreState = CentreNotFound
		m.notice = notFoundNotice
	case errors.Is(msg.err, services.ErrNoSelection):
		m.centreState = CentreNoSelection
	default:
		m.logr.Warn("centre resolution failed", zap.String("centre_id", msg.centreID), zap.Error(msg.err))
		m.centreState = CentreFailed
		m.notice = centreErrorNotice
	}
	return m
}

// retry re-runs whichever step failed.
func (m Model) retry() (Model, tea.Cmd) {
	switch {
	case m.dirState == DirectoryFailed:
		return m.loadDirectory()
	case m.centreState == CentreFailed || m.centreState == CentreNotFound:
		m.notice = ""
		return m.startResolve()
	}
	return m, nil
}

func (m Model) saveSelection(id string) tea.Cmd {
	if m.store == nil {
		return nil
	}
	return saveSelection(m.store, id)
}

func (m Model) directoryFinished() bool {
	return m.dirState == DirectoryLoaded || m.dirState == DirectoryFailed
}

func (m Model) pickerDisabled() bool {
	return m.dirState == DirectoryIdle || m.dirState == DirectoryLoading
}

// Loading reports whether a loading indicator should be shown.
func (m Model) Loading() bool {
	return m.dirState == DirectoryLoading || m.centreState == CentreResolving
}

// Selection returns the current centre id.
func (m Model) Selection() string { return m.selection }

// DirectoryState returns the directory load state.
func (m Model) DirectoryState() DirectoryState { return m.dirState }

// CentreState returns the resolution state of the current selection.
func (m Model) CentreState() CentreState { return m.centreState }

// Display returns the preview model; zero unless CentreState is CentreReady.
func (m Model) Display() models.DisplayModel { return m.display }

// SetSize sets the viewport dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}
