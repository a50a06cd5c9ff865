package server

import (
	"github.com/san-kum/skyglow/internal/app"
	"github.com/san-kum/skyglow/internal/scene"
	"github.com/san-kum/skyglow/internal/view"
)

// Message types. The first three go to the page, the rest come from it.
const (
	TypeModes = "modes"
	TypeScene = "scene"
	TypeError = "error"

	TypeMode      = "mode"
	TypeAnimate   = "animate"
	TypeViewState = "viewState"
	TypeInterrupt = "interrupt"
	TypeFrame     = "frame"
)

type ModeInfo struct {
	ID    scene.Mode `json:"id"`
	Label string     `json:"label"`
}

// Outbound is a message to the page.
type Outbound struct {
	Type    string     `json:"type"`
	Modes   []ModeInfo `json:"modes,omitempty"`
	Current scene.Mode `json:"current,omitempty"`
	Scene   *app.Scene `json:"scene,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Inbound is a message from the page.
type Inbound struct {
	Type      string          `json:"type"`
	Mode      string          `json:"mode,omitempty"`
	On        *bool           `json:"on,omitempty"`
	ViewState *view.ViewState `json:"viewState,omitempty"`
}

func modesMessage(current scene.Mode) Outbound {
	modes := scene.Modes()
	out := Outbound{Type: TypeModes, Current: current, Modes: make([]ModeInfo, len(modes))}
	for i, m := range modes {
		out.Modes[i] = ModeInfo{ID: m, Label: m.Label()}
	}
	return out
}

func sceneMessage(s app.Scene) Outbound {
	return Outbound{Type: TypeScene, Scene: &s}
}

func errorMessage(err error) Outbound {
	return Outbound{Type: TypeError, Error: err.Error()}
}
