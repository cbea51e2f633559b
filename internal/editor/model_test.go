package editor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"centre-block/internal/models"
	"centre-block/internal/services"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDirectory struct {
	centres []models.CentreRecord
	err     error
	calls   atomic.Int32
}

func (f *fakeDirectory) FetchAllCentres(ctx context.Context) ([]models.CentreRecord, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.centres, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (s *fakeStore) SaveSelection(ctx context.Context, centreID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, centreID)
	return s.err
}

func testCentres() []models.CentreRecord {
	return []models.CentreRecord{
		{"id": json.Number("1"), "name": "Auckland Central", "address": "1 Queen St"},
		{"id": json.Number("2"), "name": "Hamilton", "address": "9 Victoria St"},
		{"id": "3", "title": "Tauranga"},
	}
}

func newTestModel(dir *fakeDirectory, store SelectionStore, selection string) Model {
	return New(dir, services.NewResolver(dir), store, selection, zap.NewNop())
}

// runCmd executes cmd and returns every message it produces, flattening
// batches.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// settle feeds cmd's messages back into m until nothing is left.
func settle(m Model, cmd tea.Cmd) Model {
	queue := runCmd(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		var next tea.Cmd
		m, next = m.Update(msg)
		queue = append(queue, runCmd(next)...)
	}
	return m
}

func mount(m Model) Model {
	m, cmd := m.Update(mountMsg{})
	return settle(m, cmd)
}

// resolvedFor pulls the centre result out of a command's messages.
func resolvedFor(t *testing.T, cmd tea.Cmd) centreResolvedMsg {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		if res, ok := msg.(centreResolvedMsg); ok {
			return res
		}
	}
	require.Fail(t, "no centre resolution issued")
	return centreResolvedMsg{}
}

func TestEditor_New(t *testing.T) {
	m := newTestModel(&fakeDirectory{}, nil, "")
	assert.Equal(t, DirectoryIdle, m.DirectoryState())
	assert.Equal(t, CentreNoSelection, m.CentreState())

	m = newTestModel(&fakeDirectory{}, nil, " 2 ")
	assert.Equal(t, "2", m.Selection())
	assert.Equal(t, CentreAwaitingDirectory, m.CentreState())
}

func TestEditor_MountLoadsDirectoryOnce(t *testing.T) {
	dir := &fakeDirectory{centres: testCentres()}
	m := newTestModel(dir, nil, "")

	m, cmd := m.Update(mountMsg{})
	assert.Equal(t, DirectoryLoading, m.DirectoryState())
	assert.True(t, m.Loading())

	m = settle(m, cmd)
	assert.Equal(t, DirectoryLoaded, m.DirectoryState())
	assert.False(t, m.Loading())

	m, cmd = m.Update(mountMsg{})
	assert.Nil(t, cmd)
	assert.Equal(t, int32(1), dir.calls.Load())
}

func TestEditor_SavedSelectionResolvesAfterLoad(t *testing.T) {
	dir := &fakeDirectory{centres: testCentres()}
	m := mount(newTestModel(dir, nil, "2"))

	require.Equal(t, CentreReady, m.CentreState())
	assert.Equal(t, "Hamilton", m.Display().Name)
	assert.Equal(t, int32(1), dir.calls.Load(), "resolution used the loaded list")
}

func TestEditor_SelectionBeforeLoadWaits(t *testing.T) {
	dir := &fakeDirectory{centres: testCentres()}
	m := newTestModel(dir, nil, "")

	m, loadCmd := m.Update(mountMsg{})
	m, cmd := m.SetSelection("1")
	assert.Nil(t, runCmd(cmd), "no resolution before the directory finishes")
	assert.Equal(t, CentreAwaitingDirectory, m.CentreState())

	m = settle(m, loadCmd)
	assert.Equal(t, CentreReady, m.CentreState())
	assert.Equal(t, "Auckland Central", m.Display().Name)
}

func TestEditor_StaleResultIsDiscarded(t *testing.T) {
	m := mount(newTestModel(&fakeDirectory{centres: testCentres()}, nil, ""))

	m, first := m.SetSelection("1")
	m, second := m.SetSelection("2")
	assert.Equal(t, CentreResolving, m.CentreState())

	resultFor1 := resolvedFor(t, first)
	resultFor2 := resolvedFor(t, second)

	// The lookup for 2 completes first, then the slow lookup for 1 lands.
	m, _ = m.Update(resultFor2)
	m, _ = m.Update(resultFor1)

	assert.Equal(t, "2", m.Selection())
	assert.Equal(t, CentreReady, m.CentreState())
	assert.Equal(t, "Hamilton", m.Display().Name)
}

func TestEditor_ResultForReselectedIDStillNeedsCurrentToken(t *testing.T) {
	m := mount(newTestModel(&fakeDirectory{centres: testCentres()}, nil, ""))

	m, first := m.SetSelection("1")
	m, _ = m.SetSelection("2")
	m, third := m.SetSelection("1")

	m, _ = m.Update(resolvedFor(t, first))
	assert.Equal(t, CentreResolving, m.CentreState(), "an older request for the same id is still stale")

	m, _ = m.Update(resolvedFor(t, third))
	assert.Equal(t, CentreReady, m.CentreState())
	assert.Equal(t, "Auckland Central", m.Display().Name)
}

func TestEditor_ClearSelection(t *testing.T) {
	m := mount(newTestModel(&fakeDirectory{centres: testCentres()}, nil, "1"))
	require.Equal(t, CentreReady, m.CentreState())

	m, pending := m.SetSelection("2")
	m, cmd := m.SetSelection("")
	assert.Empty(t, runCmd(cmd))
	assert.Equal(t, CentreNoSelection, m.CentreState())
	assert.Equal(t, models.DisplayModel{}, m.Display())

	m, _ = m.Update(resolvedFor(t, pending))
	assert.Equal(t, CentreNoSelection, m.CentreState(), "late result for a cleared selection is ignored")
}

func TestEditor_DirectoryFailureStillAttemptsResolution(t *testing.T) {
	dir := &fakeDirectory{err: &services.DirectoryError{Kind: services.ApiUnavailable, Err: errors.New("HTTP 500")}}
	m := mount(newTestModel(dir, nil, "1"))

	assert.Equal(t, DirectoryFailed, m.DirectoryState())
	assert.Equal(t, CentreFailed, m.CentreState())
	assert.Equal(t, int32(2), dir.calls.Load(), "the resolver fetched again on its own")
	assert.Equal(t, centreErrorNotice, m.notice)
	assert.NotContains(t, m.View(), "HTTP 500")
	assert.Contains(t, m.View(), centreErrorNotice)
}

func TestEditor_DirectoryFailureNotice(t *testing.T) {
	dir := &fakeDirectory{err: &services.DirectoryError{Kind: services.ApiUnavailable, Err: errors.New("HTTP 500")}}
	m := mount(newTestModel(dir, nil, ""))

	assert.Equal(t, DirectoryFailed, m.DirectoryState())
	assert.Contains(t, m.View(), directoryErrorNotice)

	dir.err = nil
	dir.centres = testCentres()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Equal(t, DirectoryLoading, m.DirectoryState())
	m = settle(m, cmd)
	assert.Equal(t, DirectoryLoaded, m.DirectoryState())
	assert.Empty(t, m.notice)
}

func TestEditor_NotFound(t *testing.T) {
	m := mount(newTestModel(&fakeDirectory{centres: testCentres()}, nil, "99"))

	assert.Equal(t, CentreNotFound, m.CentreState())
	assert.Contains(t, m.View(), notFoundNotice)
}

func TestEditor_PickerSelectsAndSaves(t *testing.T) {
	store := &fakeStore{}
	m := mount(newTestModel(&fakeDirectory{centres: testCentres()}, store, ""))

	// Row 0 clears; row 2 is Hamilton.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(m, cmd)

	assert.Equal(t, "2", m.Selection())
	assert.Equal(t, "Hamilton", m.Display().Name)
	assert.Equal(t, []string{"2"}, store.saved)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(m, cmd)

	assert.Equal(t, "", m.Selection())
	assert.Equal(t, []string{"2", ""}, store.saved)
}

func TestEditor_SaveFailureShowsNotice(t *testing.T) {
	store := &fakeStore{err: errors.New("503")}
	m := mount(newTestModel(&fakeDirectory{centres: testCentres()}, store, ""))

	m, cmd := m.SetSelection("3")
	m = settle(m, cmd)

	assert.Equal(t, CentreReady, m.CentreState())
	assert.Equal(t, saveErrorNotice, m.notice)
}

func TestEditor_PickerDisabledWhileLoading(t *testing.T) {
	m := newTestModel(&fakeDirectory{centres: testCentres()}, nil, "")
	m, _ = m.Update(mountMsg{})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, 0, m.cursor)
	assert.Nil(t, cmd)
	assert.Equal(t, "", m.Selection())
}

func TestEditor_SearchFiltersPicker(t *testing.T) {
	m := mount(newTestModel(&fakeDirectory{centres: testCentres()}, nil, ""))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	require.True(t, m.filtering)
	for _, r := range "tau" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filtering)

	opts := m.options()
	require.Len(t, opts, 2)
	assert.Equal(t, "", opts[0].id)
	assert.Equal(t, "3", opts[1].id)
	assert.Equal(t, "Tauranga", opts[1].label)
}
