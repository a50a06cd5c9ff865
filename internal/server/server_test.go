package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/skyglow/internal/anim"
	"github.com/san-kum/skyglow/internal/app"
	"github.com/san-kum/skyglow/internal/config"
	"github.com/san-kum/skyglow/internal/scene"
)

type harness struct {
	app    *app.App
	frames *anim.SignalFrames
	srv    *Server
	http   *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Animation.Enabled = false
	cfg.Server.WriteTimeout = time.Second

	frames := anim.NewSignalFrames()
	a, err := app.New(cfg, frames, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	s := New(cfg.Server, a, frames, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go s.broadcastLoop(ctx)
	hs := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		cancel()
		hs.Close()
	})
	return &harness{app: a, frames: frames, srv: s, http: hs}
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if msg := read(t, conn); msg.Type != TypeModes {
		t.Fatalf("expected modes first, got %s", msg.Type)
	}
	if msg := read(t, conn); msg.Type != TypeScene {
		t.Fatalf("expected scene second, got %s", msg.Type)
	}
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Outbound
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func write(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestHandshake(t *testing.T) {
	h := newHarness(t)
	url := "ws" + strings.TrimPrefix(h.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	modes := read(t, conn)
	if modes.Type != TypeModes || len(modes.Modes) != 6 {
		t.Fatalf("unexpected modes message %+v", modes)
	}
	if modes.Current != scene.BumpyLight {
		t.Errorf("expected current bumpy-light, got %s", modes.Current)
	}
	if modes.Modes[5].ID != scene.HazyGouache || modes.Modes[5].Label == "" {
		t.Errorf("unexpected last mode %+v", modes.Modes[5])
	}

	sc := read(t, conn)
	if sc.Scene == nil || len(sc.Scene.Layers) != 1 {
		t.Fatalf("unexpected scene message %+v", sc)
	}
	if sc.Scene.ViewState == nil {
		t.Error("expected initial pose in scene")
	}
}

func TestModeChangeBroadcasts(t *testing.T) {
	h := newHarness(t)
	a := h.dial(t)
	b := h.dial(t)

	write(t, a, Inbound{Type: TypeMode, Mode: string(scene.HazyWatercolor)})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := read(t, conn)
		if msg.Type != TypeScene || msg.Scene.Mode != scene.HazyWatercolor {
			t.Fatalf("expected hazy-watercolor scene, got %+v", msg)
		}
		if len(msg.Scene.Layers) != 3 || msg.Scene.Layers[1].ID != "tonerlabel" {
			t.Errorf("unexpected layers %+v", msg.Scene.Layers)
		}
	}
}

func TestRejectedInput(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)

	tests := []struct {
		name string
		msg  Inbound
		want string
	}{
		{"unknown mode", Inbound{Type: TypeMode, Mode: "neon"}, "neon"},
		{"unknown type", Inbound{Type: "zoom"}, "zoom"},
		{"animate without flag", Inbound{Type: TypeAnimate}, "missing"},
		{"pose without body", Inbound{Type: TypeViewState}, "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			write(t, conn, tt.msg)
			msg := read(t, conn)
			if msg.Type != TypeError || !strings.Contains(msg.Error, tt.want) {
				t.Errorf("expected error mentioning %q, got %+v", tt.want, msg)
			}
		})
	}
	if h.app.Mode() != scene.BumpyLight {
		t.Errorf("mode changed to %s", h.app.Mode())
	}
}

func TestFrameAckSignals(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)

	write(t, conn, Inbound{Type: TypeFrame})
	select {
	case <-h.frames.Frames():
	case <-time.After(2 * time.Second):
		t.Fatal("frame ack never reached the frame source")
	}
}

func TestIndexPage(t *testing.T) {
	h := newHarness(t)
	resp, err := http.Get(h.http.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "deck.gl") {
		t.Error("index page does not load deck.gl")
	}
}
