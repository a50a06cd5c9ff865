// Package tui is a terminal controller for the map: pick a mode, toggle the
// orbit and nudge the camera while watching the pose the driver writes.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/skyglow/internal/app"
	"github.com/san-kum/skyglow/internal/config"
	"github.com/san-kum/skyglow/internal/scene"
	"github.com/san-kum/skyglow/internal/view"
	"golang.org/x/sync/errgroup"
)

var (
	cyan, white, dim, dimmer, magenta lipgloss.Style
	green, yellow, red                lipgloss.Style
)

func init() { applyTheme(ThemeNight) }

const (
	historyLen = 120
	nudgeStep  = 5.0
)

type sceneMsg app.Scene

type model struct {
	app     *app.App
	updates <-chan app.Scene

	modes  []scene.Mode
	cursor int

	scene   app.Scene
	history []float64
	err     error

	width  int
	height int
}

func newModel(a *app.App, updates <-chan app.Scene) model {
	s := a.Scene()
	m := model{
		app:     a,
		updates: updates,
		modes:   scene.Modes(),
		scene:   s,
		history: make([]float64, 0, historyLen),
		width:   80,
		height:  24,
	}
	for i, mode := range m.modes {
		if mode == s.Mode {
			m.cursor = i
		}
	}
	return m
}

func waitForScene(c <-chan app.Scene) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-c
		if !ok {
			return nil
		}
		return sceneMsg(s)
	}
}

func (m model) Init() tea.Cmd { return waitForScene(m.updates) }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case sceneMsg:
		m.scene = app.Scene(msg)
		m.record()
		return m, waitForScene(m.updates)
	}
	return m, nil
}

// record appends the value the orbit is currently moving: the bearing for
// the camera, the primary light's x for the light.
func (m *model) record() {
	var v float64
	switch {
	case len(m.scene.Effects) > 0 && len(m.scene.Effects[0].Directional) > 0:
		v = m.scene.Effects[0].Directional[0].Direction.X()
	case m.scene.ViewState != nil:
		v = m.scene.ViewState.Bearing
	default:
		return
	}
	if len(m.history) == historyLen {
		copy(m.history, m.history[1:])
		m.history = m.history[:historyLen-1]
	}
	m.history = append(m.history, v)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.modes)-1 {
			m.cursor++
		}
	case "enter":
		m.err = m.app.SetMode(string(m.modes[m.cursor]))
		m.scene = m.app.Scene()
	case " ":
		m.app.SetAnimating(!m.app.Animating())
		m.scene = m.app.Scene()
	case "left", "h":
		m.nudge(-nudgeStep, 0)
	case "right", "l":
		m.nudge(nudgeStep, 0)
	case "[":
		m.nudge(0, -nudgeStep)
	case "]":
		m.nudge(0, nudgeStep)
	}
	return m, nil
}

// nudge moves the camera by hand, which in the camera variant also stops
// the orbit.
func (m *model) nudge(bearing, pitch float64) {
	v, ok := m.app.ViewState()
	if !ok {
		m.err = errors.New("no camera pose yet")
		return
	}
	v.Bearing += bearing
	v.Pitch = clamp(v.Pitch+pitch, 0, 85)
	m.app.UserViewState(v)
	m.scene = m.app.Scene()
	m.err = nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("s k y g l o w") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n\n")

	for i, mode := range m.modes {
		mark := " "
		if mode == m.scene.Mode {
			mark = green.Render("●")
		}
		if i == m.cursor {
			b.WriteString("    " + mark + cyan.Render(" ▸ ") + white.Render(fmt.Sprintf("%-18s", mode)) + dim.Render(mode.Label()) + "\n")
		} else {
			b.WriteString("    " + mark + "   " + dim.Render(fmt.Sprintf("%-18s", mode)) + dimmer.Render(mode.Label()) + "\n")
		}
	}

	ids := make([]string, len(m.scene.Layers))
	for i, l := range m.scene.Layers {
		ids[i] = l.ID
	}
	b.WriteString("\n    " + dim.Render("layers ") + magenta.Render(strings.Join(ids, " → ")) + "\n")

	statusIcon, statusText := yellow.Render("○"), yellow.Render("stopped")
	if m.scene.Animating {
		statusIcon, statusText = green.Render("●"), green.Render("orbiting")
	}
	b.WriteString(fmt.Sprintf("    %s %s %s\n", statusIcon, statusText, dim.Render(m.scene.Variant)))

	if vs := m.scene.ViewState; vs != nil {
		b.WriteString("    " + pose(*vs) + "\n")
	} else {
		b.WriteString("    " + dim.Render("waiting for camera pose") + "\n")
	}

	c := newCompass(41, 11)
	c.draw(m.scene)
	for _, row := range strings.Split(strings.TrimRight(c.String(), "\n"), "\n") {
		b.WriteString("    " + cyan.Render(row) + "\n")
	}

	if len(m.history) > 1 {
		caption := "bearing"
		if m.scene.Variant == config.VariantLight {
			caption = "light x"
		}
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(48),
			asciigraph.Caption(caption))
		for _, row := range strings.Split(graph, "\n") {
			b.WriteString("    " + dim.Render(row) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n    " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("    ↑↓ select  enter apply  space orbit  ←→ bearing  [] pitch  q quit") + "\n")
	return b.String()
}

func pose(v view.ViewState) string {
	field := func(name string, val float64) string {
		return dim.Render(name+"=") + white.Render(fmt.Sprintf("%.2f", val))
	}
	return strings.Join([]string{
		field("lon", v.Longitude),
		field("lat", v.Latitude),
		field("zoom", v.Zoom),
		field("pitch", v.Pitch),
		field("bearing", v.Bearing),
	}, "  ")
}

// Run drives a with the terminal controller until the user quits or ctx
// ends.
func Run(ctx context.Context, a *app.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan app.Scene, 64)
	a.Watch(app.ObserverFunc(func(s app.Scene) {
		select {
		case updates <- s:
		default:
		}
	}))

	p := tea.NewProgram(newModel(a, updates), tea.WithAltScreen(), tea.WithContext(ctx))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Run(ctx) })
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
