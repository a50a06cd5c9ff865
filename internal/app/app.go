// Package app owns the state behind one map view: the selected mode, the
// camera pose, the light vectors and the orbit driver. Hosts (the websocket
// server, the TUI) read it through Scene and change it only through App's
// methods.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/skyglow/internal/anim"
	"github.com/san-kum/skyglow/internal/config"
	"github.com/san-kum/skyglow/internal/scene"
	"github.com/san-kum/skyglow/internal/view"
	"go.uber.org/zap"
)

// Scene is everything the rendering engine needs for one frame.
type Scene struct {
	Mode      scene.Mode        `json:"mode"`
	Layers    []scene.LayerSpec `json:"layers"`
	Effects   []scene.Lighting  `json:"effects,omitempty"`
	ViewState *view.ViewState   `json:"viewState,omitempty"`
	Animating bool              `json:"animating"`
	Variant   string            `json:"variant"`
	Credits   scene.Credits     `json:"credits"`
}

// Observer is told about every state change, in order. OnScene can run
// inside a state write, so it must hand the scene off rather than call back
// into App.
type Observer interface {
	OnScene(s Scene)
}

type ObserverFunc func(Scene)

func (f ObserverFunc) OnScene(s Scene) { f(s) }

type App struct {
	cfg      *config.Config
	log      *zap.Logger
	composer *scene.Composer
	style    scene.LightingStyle
	credits  scene.Credits

	view   *view.Cell[view.ViewState]
	lights *view.Cell[view.Lights]
	driver *anim.Driver

	// mu guards the snapshot the scene is built from. Cell watchers take it
	// while holding their cell's lock, so nothing may touch a cell under mu.
	mu        sync.RWMutex
	mode      scene.Mode
	pose      *view.ViewState
	light     view.Lights
	observers []Observer

	// ctx is the context loops started by SetAnimating run under. Until Run
	// supplies one it is a placeholder that Run cancels on its way out.
	ctxMu      sync.Mutex
	ctx        context.Context
	cancelIdle context.CancelFunc
}

func New(cfg *config.Config, frames anim.FrameSource, log *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	composer, err := scene.NewComposer(cfg.Scene.Sources, cfg.Scene.Specular)
	if err != nil {
		return nil, err
	}
	mode, _ := scene.ParseMode(cfg.Scene.Mode)

	a := &App{
		cfg:      cfg,
		log:      log,
		composer: composer,
		style:    cfg.LightingStyle(),
		credits:  scene.DefaultCredits(),
		lights:   view.NewCellWith(cfg.Lights()),
		mode:     mode,
	}
	a.ctx, a.cancelIdle = context.WithCancel(context.Background())
	if cfg.View.FromClient {
		a.view = view.NewCell[view.ViewState]()
	} else {
		a.view = view.NewCellWith(cfg.ViewState())
	}

	acfg := cfg.AnimConfig()
	var motion anim.Motion
	switch cfg.Animation.Variant {
	case config.VariantLight:
		motion = anim.NewLightOrbit(a.lights, acfg)
	default:
		motion = anim.NewCameraOrbit(a.view, acfg)
	}
	a.driver, err = anim.New(acfg, motion, frames,
		anim.WithLogger(log.Named("orbit")),
		anim.WithOnStop(func() {
			log.Debug("orbit switched itself off")
			a.notify()
		}))
	if err != nil {
		return nil, fmt.Errorf("orbit: %w", err)
	}
	if !cfg.Animation.Enabled {
		a.driver.Stop()
	}

	if v, _, ok := a.view.Load(); ok {
		a.pose = &v
	}
	a.light, _, _ = a.lights.Load()

	a.view.Watch(func(v view.ViewState) {
		a.mu.Lock()
		a.pose = &v
		a.mu.Unlock()
		a.notify()
	})
	a.lights.Watch(func(l view.Lights) {
		a.mu.Lock()
		a.light = l
		a.mu.Unlock()
		a.notify()
	})
	return a, nil
}

// Run starts the orbit after the configured delay and blocks until ctx is
// done.
func (a *App) Run(ctx context.Context) error {
	a.ctxMu.Lock()
	a.ctx = ctx
	a.ctxMu.Unlock()

	if d := a.cfg.Animation.StartDelay; d > 0 {
		select {
		case <-ctx.Done():
			a.shutdown()
			return nil
		case <-time.After(d):
		}
	}
	if a.driver.Enabled() {
		a.driver.Start(ctx)
	}
	<-ctx.Done()
	a.shutdown()
	return nil
}

// shutdown ends any loop, including one started before Run had a context,
// and waits for it to exit.
func (a *App) shutdown() {
	a.driver.Stop()
	a.cancelIdle()
	<-a.driver.Done()
}

func (a *App) runCtx() context.Context {
	a.ctxMu.Lock()
	defer a.ctxMu.Unlock()
	return a.ctx
}

func (a *App) Watch(o Observer) {
	a.mu.Lock()
	a.observers = append(a.observers, o)
	a.mu.Unlock()
}

func (a *App) Mode() scene.Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// SetMode switches the visualization. An unknown name is rejected and the
// current mode kept.
func (a *App) SetMode(name string) error {
	mode, err := scene.ParseMode(name)
	if err != nil {
		a.log.Warn("rejected mode change", zap.String("mode", name), zap.Stringer("kept", a.Mode()))
		return err
	}
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info("mode changed", zap.Stringer("mode", mode))
		a.notify()
	}
	return nil
}

func (a *App) Animating() bool { return a.driver.Enabled() }

// SetAnimating is the orbit toggle.
func (a *App) SetAnimating(on bool) {
	if on == a.driver.Enabled() {
		return
	}
	a.driver.SetEnabled(a.runCtx(), on)
	a.log.Info("orbit toggled", zap.Bool("on", on))
	a.notify()
}

// Interrupt handles the engine reporting that a transition was cut short by
// the user.
func (a *App) Interrupt() {
	if !a.driver.Enabled() {
		return
	}
	a.driver.Stop()
	a.log.Info("orbit interrupted by engine")
	a.notify()
}

// UserViewState records a pose the user set by hand. In the camera variant
// the driver sees the write and stops itself.
func (a *App) UserViewState(v view.ViewState) {
	v.TransitionDuration = 0
	a.view.Store(v)
}

func (a *App) ViewState() (view.ViewState, bool) {
	v, _, ok := a.view.Load()
	return v, ok
}

func (a *App) Lights() view.Lights {
	l, _, _ := a.lights.Load()
	return l
}

func (a *App) Driver() *anim.Driver { return a.driver }

func (a *App) Scene() Scene {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sceneLocked()
}

func (a *App) sceneLocked() Scene {
	layers, err := a.composer.Compose(a.mode)
	if err != nil {
		// mode is validated on every write
		panic(err)
	}
	s := Scene{
		Mode:      a.mode,
		Layers:    layers,
		Animating: a.driver.Enabled(),
		Variant:   a.cfg.Animation.Variant,
		Credits:   a.credits,
	}
	if a.pose != nil {
		v := *a.pose
		s.ViewState = &v
	}
	if a.cfg.Animation.Variant == config.VariantLight {
		s.Effects = []scene.Lighting{scene.LightingFor(a.light.Primary, a.light.Secondary, a.style)}
	}
	return s
}

func (a *App) notify() {
	a.mu.RLock()
	if len(a.observers) == 0 {
		a.mu.RUnlock()
		return
	}
	obs := make([]Observer, len(a.observers))
	copy(obs, a.observers)
	s := a.sceneLocked()
	a.mu.RUnlock()

	for _, o := range obs {
		o.OnScene(s)
	}
}
