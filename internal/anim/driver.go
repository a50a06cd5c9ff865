package anim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var errInterrupted = errors.New("anim: state written by another writer")

// Driver runs a Motion through a periodic cycle, one tick per frame and
// at most one tick per TickSize.
//
// At most one loop runs per driver. Stop is cooperative: it is observed at
// the next tick boundary, after any wait already in progress.
type Driver struct {
	cfg    Config
	motion Motion
	frames FrameSource
	log    *zap.Logger
	after  func(time.Duration) <-chan time.Time
	onStop func()

	enabled atomic.Bool
	running atomic.Bool
	emitted atomic.Int64

	mu   sync.Mutex
	done chan struct{}
}

type Option func(*Driver)

func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithDelay replaces time.After for the per-tick delay and the readiness
// polls.
func WithDelay(after func(time.Duration) <-chan time.Time) Option {
	return func(d *Driver) { d.after = after }
}

// WithOnStop registers fn to run when the driver switches itself off: after
// another writer took over the state, or after bootstrap gave up. It runs
// on the loop goroutine and is not called for Stop.
func WithOnStop(fn func()) Option {
	return func(d *Driver) { d.onStop = fn }
}

// New returns a driver that is enabled but not running.
func New(cfg Config, motion Motion, frames FrameSource, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		cfg:    cfg,
		motion: motion,
		frames: frames,
		log:    zap.NewNop(),
		after:  time.After,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.enabled.Store(true)
	return d, nil
}

func (d *Driver) Config() Config { return d.cfg }
func (d *Driver) Enabled() bool  { return d.enabled.Load() }
func (d *Driver) Running() bool  { return d.running.Load() }

// Emitted counts the ticks applied over the driver's lifetime.
func (d *Driver) Emitted() int64 { return d.emitted.Load() }

// Done is closed when the current loop exits. It is closed already if no
// loop has been started.
func (d *Driver) Done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return d.done
}

// Start launches the loop unless one is already running, and reports
// whether it did. The loop waits for the motion's state to become
// available before its first tick. ctx ends the loop at shutdown; Stop
// does not use it.
func (d *Driver) Start(ctx context.Context) bool {
	if !d.running.CompareAndSwap(false, true) {
		return false
	}
	done := make(chan struct{})
	d.mu.Lock()
	d.done = done
	d.mu.Unlock()

	go d.run(ctx, done)
	return true
}

func (d *Driver) Stop() {
	d.enabled.Store(false)
}

// SetEnabled is the user's on/off switch. Switching on also starts a loop.
func (d *Driver) SetEnabled(ctx context.Context, on bool) {
	d.enabled.Store(on)
	if on {
		d.Start(ctx)
	}
}

func (d *Driver) run(ctx context.Context, done chan struct{}) {
	defer func() {
		d.running.Store(false)
		close(done)
		// re-enabled while this loop was winding down
		if d.enabled.Load() && ctx.Err() == nil {
			d.Start(ctx)
		}
	}()

	if !d.bootstrap(ctx) {
		return
	}
	d.log.Debug("orbit started",
		zap.Int("loop", d.cfg.FullLoopDuration),
		zap.Duration("tick", d.cfg.TickSize))

	for fresh := true; d.enabled.Load(); fresh = false {
		if !d.motion.Begin(fresh) {
			d.interrupted()
			return
		}
		err := d.cycle(ctx)
		if errors.Is(err, errInterrupted) {
			d.interrupted()
			return
		}
		if err != nil {
			return
		}
	}
	d.log.Debug("orbit stopped", zap.Int64("emitted", d.emitted.Load()))
}

// bootstrap polls until the motion has state to work on.
func (d *Driver) bootstrap(ctx context.Context) bool {
	for attempt := 0; !d.motion.Ready(); attempt++ {
		if d.cfg.BootstrapAttempts > 0 && attempt >= d.cfg.BootstrapAttempts {
			d.log.Warn("orbit never became ready, giving up", zap.Int("attempts", attempt))
			d.selfStop()
			return false
		}
		if attempt == 0 {
			d.log.Debug("waiting for initial state")
		}
		select {
		case <-ctx.Done():
			return false
		case <-d.after(d.cfg.RetryDelay):
		}
	}
	return true
}

func (d *Driver) cycle(ctx context.Context) error {
	tick := 0
	for {
		if err := d.await(ctx); err != nil {
			return err
		}
		t := Tick{
			Index:      tick,
			Phase:      Phase(tick, d.cfg.FullLoopDuration),
			Transition: d.cfg.TickSize,
		}
		if !d.motion.Apply(t) {
			return errInterrupted
		}
		d.emitted.Add(1)
		tick++
		if tick > d.cfg.FullLoopDuration || !d.enabled.Load() {
			return nil
		}
	}
}

// await blocks until both the next frame and the tick delay have arrived,
// in either order.
func (d *Driver) await(ctx context.Context) error {
	frame := d.frames.Frames()
	delay := d.after(d.cfg.TickSize)
	for frame != nil || delay != nil {
		select {
		case <-frame:
			frame = nil
		case <-delay:
			delay = nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (d *Driver) interrupted() {
	d.log.Info("orbit interrupted by another writer", zap.Int64("emitted", d.emitted.Load()))
	d.selfStop()
}

func (d *Driver) selfStop() {
	if d.enabled.CompareAndSwap(true, false) && d.onStop != nil {
		d.onStop()
	}
}
