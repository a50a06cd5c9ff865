package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/skyglow/internal/anim"
	"github.com/san-kum/skyglow/internal/app"
	"github.com/san-kum/skyglow/internal/config"
	"github.com/san-kum/skyglow/internal/scene"
	"github.com/san-kum/skyglow/internal/view"
)

func testModel(t *testing.T, mod func(*config.Config)) (model, *app.App) {
	t.Helper()
	cfg := config.DefaultConfig()
	if mod != nil {
		mod(cfg)
	}
	frames := anim.NewTickerFrames(60)
	t.Cleanup(frames.Stop)
	a, err := app.New(cfg, frames, nil)
	if err != nil {
		t.Fatal(err)
	}
	return newModel(a, make(chan app.Scene)), a
}

func press(m model, key tea.KeyMsg) model {
	next, _ := m.Update(key)
	return next.(model)
}

func TestSelectMode(t *testing.T) {
	m, a := testModel(t, nil)
	if m.cursor != 0 {
		t.Fatalf("expected cursor on current mode, got %d", m.cursor)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if a.Mode() != scene.BumpyWatercolor {
		t.Errorf("expected bumpy-watercolor, got %s", a.Mode())
	}
	if m.scene.Mode != scene.BumpyWatercolor {
		t.Errorf("model scene not refreshed: %s", m.scene.Mode)
	}
	if !strings.Contains(m.View(), "bumpyWatercolor") {
		t.Error("view does not list the new layer")
	}
}

func TestCursorBounds(t *testing.T) {
	m, _ := testModel(t, nil)
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor moved above the list: %d", m.cursor)
	}
	for i := 0; i < 10; i++ {
		m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.cursor != len(scene.Modes())-1 {
		t.Errorf("cursor moved past the list: %d", m.cursor)
	}
}

func TestToggleOrbit(t *testing.T) {
	m, a := testModel(t, nil)
	if !a.Animating() {
		t.Fatal("expected orbit on by default")
	}
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if a.Animating() {
		t.Error("space should stop the orbit")
	}
	if !strings.Contains(m.View(), "stopped") {
		t.Error("view does not show the orbit as stopped")
	}
}

func TestNudgeBearing(t *testing.T) {
	m, a := testModel(t, func(c *config.Config) { c.Animation.Enabled = false })

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})

	v, _ := a.ViewState()
	if v.Bearing != -nudgeStep {
		t.Errorf("expected bearing %v, got %v", -nudgeStep, v.Bearing)
	}
	if v.Pitch != 50+nudgeStep {
		t.Errorf("expected pitch %v, got %v", 50+nudgeStep, v.Pitch)
	}
	if m.err != nil {
		t.Errorf("unexpected error %v", m.err)
	}
}

func TestNudgeWithoutPose(t *testing.T) {
	m, _ := testModel(t, func(c *config.Config) { c.View.FromClient = true })
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.err == nil {
		t.Error("expected an error before any pose exists")
	}
	if !strings.Contains(m.View(), "waiting for camera pose") {
		t.Error("view does not report the missing pose")
	}
}

func TestSceneHistory(t *testing.T) {
	m, a := testModel(t, nil)
	s := a.Scene()
	for i := 0; i < historyLen+10; i++ {
		vs := *s.ViewState
		vs.Bearing = float64(i)
		s.ViewState = &vs
		next, cmd := m.Update(sceneMsg(s))
		m = next.(model)
		if cmd == nil {
			t.Fatal("expected the model to keep listening for scenes")
		}
	}
	if len(m.history) != historyLen {
		t.Fatalf("expected %d samples, got %d", historyLen, len(m.history))
	}
	if m.history[historyLen-1] != float64(historyLen+9) {
		t.Errorf("unexpected newest sample %v", m.history[historyLen-1])
	}
	if !strings.Contains(m.View(), "bearing") {
		t.Error("view has no bearing graph")
	}
}

func TestCompass(t *testing.T) {
	c := newCompass(21, 9)
	c.draw(app.Scene{ViewState: &view.ViewState{Bearing: 0, Pitch: 0}})
	out := c.String()

	if !strings.Contains(out, "●") || !strings.Contains(out, "▲") {
		t.Errorf("compass missing centre or needle:\n%s", out)
	}
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(rows) != 9 {
		t.Fatalf("expected 9 rows, got %d", len(rows))
	}
	// bearing 0 points north
	if !strings.Contains(rows[0], "▲") {
		t.Errorf("needle not at the top row:\n%s", out)
	}
}

func TestSetTheme(t *testing.T) {
	defer applyTheme(ThemeNight)

	if err := SetTheme("sodium"); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if cyan.GetForeground() != ThemeSodium.Primary {
		t.Errorf("primary style not updated: %v", cyan.GetForeground())
	}
	if err := SetTheme("vaporwave"); err == nil {
		t.Error("expected error for unknown theme")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names out of sync")
	}
}
