package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kass/geofencer/pkg/app"
	"github.com/kass/geofencer/pkg/editor"
	"github.com/kass/geofencer/pkg/region"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(0, 1)
)

type mode int

const (
	modeLoading mode = iota
	modeBrowse
	modeFirst
	modeSecond
	modeTitle
	modeConfirmReset
)

// hereKeyword stages the current location instead of a typed point
const hereKeyword = "here"

type openedMsg struct {
	app *app.App
	err error
}

type model struct {
	open  func() (*app.App, error)
	app   *app.App
	board *board

	shareFile string

	// region reopened by "e", restored if the edit is abandoned
	editing   region.Region
	editIndex int

	mode    mode
	cursor  int
	spinner spinner.Model
	input   textinput.Model
	status  string
	failed  bool
}

func newModel(b *board, shareFile string, open func() (*app.App, error)) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40

	return model{
		open:      open,
		board:     b,
		shareFile: shareFile,
		mode:      modeLoading,
		spinner:   s,
		input:     ti,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		a, err := m.open()
		return openedMsg{app: a, err: err}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.mode != modeLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case openedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, tea.Quit
		}
		m.app = msg.app
		m.mode = modeBrowse
		if m.app.LoadErr != nil {
			m.setError(fmt.Errorf("some regions could not be loaded: %w", m.app.LoadErr))
		}
		if m.app.Manager.SavesHeld() {
			m.setError(errors.New("store could not be read; changes will not be saved"))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modeFirst, modeSecond, modeTitle:
			return m.updateInput(msg)
		case modeConfirmReset:
			if msg.String() == "y" {
				m.app.Session.OnReset(context.Background())
				m.cursor = 0
				m.setStatus("all regions removed")
			} else {
				m.setStatus("reset cancelled")
			}
			m.mode = modeBrowse
			return m, nil
		}
	}

	return m, nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	regions := m.app.Manager.Regions()

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(regions)-1 {
			m.cursor++
		}

	case "a":
		m.app.Session.Cancel()
		return m.prompt(modeFirst, ""), textinput.Blink

	case "e":
		if len(regions) == 0 {
			return m, nil
		}
		r, err := m.app.Session.OnEditExistingRegion(ctx, regions[m.cursor].ID())
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.editing, m.editIndex = r, m.cursor
		m.clampCursor()
		first, _, _, _ := m.app.Session.Staged()
		return m.prompt(modeFirst, region.FormatPoint(first)), textinput.Blink

	case "d", "delete":
		if len(regions) == 0 {
			return m, nil
		}
		r, err := m.app.Manager.Remove(ctx, regions[m.cursor].ID())
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.clampCursor()
		m.setStatus(fmt.Sprintf("removed %q", r.Title()))

	case "R":
		_, actions := m.board.snapshot()
		if actions {
			m.mode = modeConfirmReset
		}

	case "s":
		_, actions := m.board.snapshot()
		if !actions {
			return m, nil
		}
		err := m.app.Session.OnShare(ctx, editor.SharerFunc(func(_ context.Context, payload string) error {
			return os.WriteFile(m.shareFile, []byte(payload), 0o644)
		}))
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("shared to " + m.shareFile)
	}

	return m, nil
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch msg.Type {
	case tea.KeyEsc:
		m.app.Session.Cancel()
		if m.editing != nil {
			regions := m.app.Manager.Regions()
			index := min(m.editIndex, len(regions))
			m.app.Manager.Replace(ctx, slices.Insert(regions, index, m.editing))
			m.setStatus(fmt.Sprintf("edit of %q abandoned", m.editing.Title()))
			m.cursor = index
			m.editing = nil
		} else {
			m.setStatus("cancelled")
		}
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())

		switch m.mode {
		case modeFirst, modeSecond:
			which := editor.First
			if m.mode == modeSecond {
				which = editor.Second
			}
			if err := m.stagePoint(ctx, which, value); err != nil {
				m.setError(err)
				return m, nil
			}
			if m.mode == modeFirst {
				_, second, _, ok := m.app.Session.Staged()
				prefill := ""
				if ok {
					prefill = region.FormatPoint(second)
				}
				return m.prompt(modeSecond, prefill), nil
			}
			return m.prompt(modeTitle, m.app.Session.PendingTitle()), nil

		case modeTitle:
			r, err := m.app.Session.OnDone(ctx, value)
			if err != nil {
				m.setError(err)
				return m, nil
			}
			m.mode = modeBrowse
			m.editing = nil
			m.input.Blur()
			m.cursor = m.app.Manager.Len() - 1
			m.setStatus(fmt.Sprintf("saved %q", r.Title()))
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) stagePoint(ctx context.Context, which editor.Which, value string) error {
	if value == hereKeyword {
		_, err := m.app.Session.UseCurrentLocation(ctx, which)
		return err
	}

	c, err := region.ParsePoint(value)
	if err != nil {
		return err
	}
	if which == editor.First {
		m.app.Session.SetFirst(c)
	} else {
		m.app.Session.SetSecond(c)
	}
	return nil
}

func (m model) prompt(next mode, value string) model {
	m.mode = next
	m.status = ""
	m.failed = false

	switch next {
	case modeFirst:
		m.input.Placeholder = "first point lat,lng or " + hereKeyword
	case modeSecond:
		m.input.Placeholder = "second point lat,lng or " + hereKeyword
	case modeTitle:
		m.input.Placeholder = "title"
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return m
}

func (m *model) clampCursor() {
	if n := m.app.Manager.Len(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *model) setError(err error) {
	m.status = err.Error()
	m.failed = true
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🌍 Geofencer"))
	b.WriteString("\n")

	if m.mode == modeLoading {
		if m.failed {
			b.WriteString(errorStyle.Render(m.status) + "\n")
			return b.String()
		}
		b.WriteString(m.spinner.View() + " Loading regions...\n")
		return b.String()
	}

	b.WriteString(subtitleStyle.Render("Regions"))
	b.WriteString("\n")
	b.WriteString(m.renderRegions())

	switch m.mode {
	case modeFirst, modeSecond, modeTitle:
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(m.renderStaged() + "\n" + m.input.View()))
		b.WriteString("\n")
	case modeConfirmReset:
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Remove every region? (y/n)"))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.failed {
			b.WriteString(errorStyle.Render("✗ " + m.status))
		} else {
			b.WriteString(infoStyle.Render("• " + m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	_, actions := m.board.snapshot()
	help := "a add • e edit • d delete • q quit"
	if actions {
		help = "a add • e edit • d delete • s share • R reset • q quit"
	}
	if m.mode != modeBrowse {
		help = "enter next • esc cancel"
	}
	b.WriteString(dimStyle.Render(help))

	return b.String()
}

func (m model) renderRegions() string {
	shapes, _ := m.board.snapshot()
	if len(shapes) == 0 {
		return dimStyle.Render("  none yet") + "\n"
	}

	var b strings.Builder
	for i, s := range shapes {
		line := fmt.Sprintf("%s  center %s  radius %.0fm",
			s.Label, region.FormatPoint(s.Circle.Center), s.Circle.RadiusMeters)
		if i == m.cursor && m.mode == modeBrowse {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderStaged() string {
	first, second, firstOK, secondOK := m.app.Session.Staged()

	point := func(c string, ok bool) string {
		if !ok {
			return dimStyle.Render("unset")
		}
		return c
	}

	s := fmt.Sprintf("%s %s\n%s %s",
		subtitleStyle.Render(editor.First.String()+":"), point(region.FormatPoint(first), firstOK),
		subtitleStyle.Render(editor.Second.String()+":"), point(region.FormatPoint(second), secondOK),
	)
	if shape, ok := m.app.Session.CurrentCircle(); ok {
		s += "\n" + infoStyle.Render(fmt.Sprintf("%s radius %.0fm", shape.Label, shape.Circle.RadiusMeters))
	}
	return s
}
