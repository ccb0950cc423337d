package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/geofencer/pkg/app"
	"github.com/kass/geofencer/pkg/config"
	"github.com/kass/geofencer/pkg/editor"
	"github.com/kass/geofencer/pkg/logging"
	"github.com/kass/geofencer/pkg/models"
	"github.com/kass/geofencer/pkg/store"
)

func openTestModel(t *testing.T) (model, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	b := &board{}
	open := func() (*app.App, error) {
		return app.Open(context.Background(), config.Default(), logging.Discard(),
			app.WithStore(mem), app.WithDisplay(b),
			app.WithLocation(editor.FixedLocation(models.Coordinate{Lat: 10, Lng: 20})))
	}

	a, err := open()
	require.NoError(t, err)
	t.Cleanup(a.Close)

	m := newModel(b, t.TempDir()+"/share.json", open)
	next, _ := m.Update(openedMsg{app: a})
	return next.(model), mem
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m model, msgs ...tea.Msg) model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func typeLine(s string) []tea.Msg {
	return []tea.Msg{keys(s), tea.KeyMsg{Type: tea.KeyEnter}}
}

func TestAddRegionFlow(t *testing.T) {
	m, _ := openTestModel(t)
	assert.Equal(t, modeBrowse, m.mode)

	m = send(m, keys("a"))
	assert.Equal(t, modeFirst, m.mode)

	m = send(m, typeLine("1.5,2.5")...)
	assert.Equal(t, modeSecond, m.mode)

	m = send(m, typeLine(hereKeyword)...)
	assert.Equal(t, modeTitle, m.mode)

	m = send(m, typeLine("Cabin")...)
	assert.Equal(t, modeBrowse, m.mode)
	assert.False(t, m.failed, m.status)

	regions := m.app.Manager.Regions()
	require.Len(t, regions, 1)
	assert.Equal(t, "Cabin", regions[0].Title())
	assert.Equal(t, models.Coordinate{Lat: 10, Lng: 20}, regions[0].Points()[1])

	shapes, actions := m.board.snapshot()
	assert.Len(t, shapes, 1)
	assert.True(t, actions)
	assert.Contains(t, m.View(), "Cabin")
}

func TestEmptyTitleStaysInPrompt(t *testing.T) {
	m, _ := openTestModel(t)

	m = send(m, keys("a"))
	m = send(m, typeLine("1,2")...)
	m = send(m, typeLine("3,4")...)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeTitle, m.mode)
	assert.True(t, m.failed)
	assert.Equal(t, 0, m.app.Manager.Len())
}

func TestMalformedPointRejected(t *testing.T) {
	m, _ := openTestModel(t)

	m = send(m, keys("a"))
	m = send(m, typeLine("north")...)

	assert.Equal(t, modeFirst, m.mode)
	assert.True(t, m.failed)
}

func TestDeleteAndReset(t *testing.T) {
	m, _ := openTestModel(t)

	for _, title := range []string{"A", "B"} {
		m = send(m, keys("a"))
		m = send(m, typeLine("1,2")...)
		m = send(m, typeLine("3,4")...)
		m = send(m, typeLine(title)...)
	}
	require.Equal(t, 2, m.app.Manager.Len())

	m = send(m, keys("k"), keys("d"))
	regions := m.app.Manager.Regions()
	require.Len(t, regions, 1)
	assert.Equal(t, "B", regions[0].Title())

	m = send(m, keys("R"))
	assert.Equal(t, modeConfirmReset, m.mode)
	m = send(m, keys("y"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 0, m.app.Manager.Len())

	_, actions := m.board.snapshot()
	assert.False(t, actions)
}

func TestEditMovesRegionToEnd(t *testing.T) {
	m, _ := openTestModel(t)

	for _, title := range []string{"A", "B"} {
		m = send(m, keys("a"))
		m = send(m, typeLine("1,2")...)
		m = send(m, typeLine("3,4")...)
		m = send(m, typeLine(title)...)
	}

	// cursor on A
	m = send(m, keys("k"), keys("e"))
	assert.Equal(t, modeFirst, m.mode)
	assert.Equal(t, "1.0,2.0", m.input.Value())
	assert.Equal(t, 1, m.app.Manager.Len())

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeBrowse, m.mode)

	regions := m.app.Manager.Regions()
	require.Len(t, regions, 2)
	assert.Equal(t, "B", regions[0].Title())
	assert.Equal(t, "A", regions[1].Title())
}

func TestAbandonedEditRestoresRegion(t *testing.T) {
	m, _ := openTestModel(t)

	for _, title := range []string{"A", "B"} {
		m = send(m, keys("a"))
		m = send(m, typeLine("1,2")...)
		m = send(m, typeLine("3,4")...)
		m = send(m, typeLine(title)...)
	}

	m = send(m, keys("k"), keys("e"))
	require.Equal(t, 1, m.app.Manager.Len())

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeBrowse, m.mode)

	regions := m.app.Manager.Regions()
	require.Len(t, regions, 2)
	assert.Equal(t, "A", regions[0].Title())
	assert.Equal(t, "B", regions[1].Title())
	assert.Equal(t, 0, m.cursor)
}
