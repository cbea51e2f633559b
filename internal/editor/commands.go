package editor

import (
	"context"

	"centre-block/internal/models"
	"centre-block/internal/services"

	tea "github.com/charmbracelet/bubbletea"
)

type directoryLoadedMsg struct {
	centres []models.CentreRecord
	err     error
}

// centreResolvedMsg carries the token and id the request was started with so
// the model can tell whether it is still wanted.
type centreResolvedMsg struct {
	token    uint64
	centreID string
	centre   models.CentreRecord
	err      error
}

type selectionSavedMsg struct {
	centreID string
	err      error
}

// The directory client's own timeout bounds every call below, so they run on
// a background context.

func loadDirectory(directory services.DirectoryFetcher) tea.Cmd {
	return func() tea.Msg {
		centres, err := directory.FetchAllCentres(context.Background())
		return directoryLoadedMsg{centres: centres, err: err}
	}
}

func resolveCentre(resolver CentreResolver, token uint64, id string, known []models.CentreRecord) tea.Cmd {
	return func() tea.Msg {
		centre, err := resolver.Resolve(context.Background(), id, known)
		return centreResolvedMsg{token: token, centreID: id, centre: centre, err: err}
	}
}

func saveSelection(store SelectionStore, id string) tea.Cmd {
	return func() tea.Msg {
		err := store.SaveSelection(context.Background(), id)
		return selectionSavedMsg{centreID: id, err: err}
	}
}
