package anim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/skyglow/internal/view"
)

type spyMotion struct {
	ready       atomic.Bool
	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	mu     sync.Mutex
	ticks  []Tick
	begins []bool
}

func newSpy(ready bool) *spyMotion {
	s := &spyMotion{}
	s.ready.Store(ready)
	return s
}

func (s *spyMotion) Ready() bool { return s.ready.Load() }

func (s *spyMotion) Begin(fresh bool) bool {
	s.mu.Lock()
	s.begins = append(s.begins, fresh)
	s.mu.Unlock()
	return true
}

func (s *spyMotion) Apply(t Tick) bool {
	n := s.inFlight.Add(1)
	for {
		m := s.maxInFlight.Load()
		if n <= m || s.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(100 * time.Microsecond)

	s.mu.Lock()
	s.ticks = append(s.ticks, t)
	s.mu.Unlock()
	s.inFlight.Add(-1)
	return true
}

func (s *spyMotion) indices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.ticks))
	for i, t := range s.ticks {
		out[i] = t.Index
	}
	return out
}

func (s *spyMotion) beginFlags() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.begins...)
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.TickSize = 2 * time.Millisecond
	cfg.RetryDelay = time.Millisecond
	return cfg
}

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		frames *TickerFrames
		d      *Driver
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		frames = NewTickerFrames(1000)
	})

	AfterEach(func() {
		cancel()
		if d != nil {
			Eventually(d.Done()).Should(BeClosed())
		}
		frames.Stop()
		d = nil
	})

	newDriver := func(cfg Config, m Motion, f FrameSource) *Driver {
		drv, err := New(cfg, m, f)
		Expect(err).NotTo(HaveOccurred())
		return drv
	}

	It("rejects an invalid config", func() {
		cfg := DefaultConfig()
		cfg.FullLoopDuration = 0
		_, err := New(cfg, newSpy(true), frames)
		Expect(err).To(HaveOccurred())
	})

	It("runs a single loop no matter how often Start is called", func() {
		spy := newSpy(true)
		cfg := fastConfig()
		d = newDriver(cfg, spy, frames)

		Expect(d.Start(ctx)).To(BeTrue())
		Expect(d.Start(ctx)).To(BeFalse())
		Expect(d.Start(ctx)).To(BeFalse())
		Expect(d.Running()).To(BeTrue())

		window := 100 * time.Millisecond
		time.Sleep(window)
		d.Stop()
		Eventually(d.Done()).Should(BeClosed())

		Expect(spy.maxInFlight.Load()).To(BeEquivalentTo(1))
		Expect(d.Emitted()).To(BeNumerically("<=", int64(window/cfg.TickSize)+5))
	})

	It("stops mutating after Stop", func() {
		spy := newSpy(true)
		d = newDriver(fastConfig(), spy, frames)
		d.Start(ctx)

		Eventually(d.Emitted).Should(BeNumerically(">=", 3))
		d.Stop()
		Eventually(d.Done()).Should(BeClosed())

		n := d.Emitted()
		Consistently(d.Emitted, 50*time.Millisecond).Should(Equal(n))
		Expect(d.Running()).To(BeFalse())
	})

	It("restarts each cycle from tick zero", func() {
		spy := newSpy(true)
		cfg := fastConfig()
		cfg.FullLoopDuration = 4
		d = newDriver(cfg, spy, frames)
		d.Start(ctx)

		Eventually(func() int { return len(spy.indices()) }).Should(BeNumerically(">=", 12))
		d.Stop()
		Eventually(d.Done()).Should(BeClosed())

		Expect(spy.indices()[:12]).To(Equal([]int{0, 1, 2, 3, 4, 0, 1, 2, 3, 4, 0, 1}))
		Expect(spy.beginFlags()[:3]).To(Equal([]bool{true, false, false}))
	})

	It("waits for both a frame and the delay before each tick", func() {
		spy := newSpy(true)
		signals := NewSignalFrames()
		d = newDriver(fastConfig(), spy, signals)
		d.Start(ctx)

		Consistently(d.Emitted, 30*time.Millisecond).Should(BeZero())

		signals.Signal()
		Eventually(d.Emitted).Should(BeEquivalentTo(1))
		Consistently(d.Emitted, 30*time.Millisecond).Should(BeEquivalentTo(1))

		signals.Signal()
		Eventually(d.Emitted).Should(BeEquivalentTo(2))
	})

	It("polls until the motion becomes ready", func() {
		spy := newSpy(false)
		d = newDriver(fastConfig(), spy, frames)

		Expect(d.Start(ctx)).To(BeTrue())
		Consistently(d.Emitted, 30*time.Millisecond).Should(BeZero())
		Expect(d.Running()).To(BeTrue())

		spy.ready.Store(true)
		Eventually(d.Emitted).Should(BeNumerically(">", 0))
	})

	It("gives up quietly after the bootstrap attempts run out", func() {
		cfg := fastConfig()
		cfg.BootstrapAttempts = 3
		d = newDriver(cfg, newSpy(false), frames)
		d.Start(ctx)

		Eventually(d.Done()).Should(BeClosed())
		Expect(d.Enabled()).To(BeFalse())
		Expect(d.Emitted()).To(BeZero())
	})

	It("does nothing when started while disabled", func() {
		spy := newSpy(true)
		d = newDriver(fastConfig(), spy, frames)
		d.Stop()

		Expect(d.Start(ctx)).To(BeTrue())
		Eventually(d.Done()).Should(BeClosed())
		Expect(d.Emitted()).To(BeZero())
	})

	It("resumes when switched back on", func() {
		spy := newSpy(true)
		d = newDriver(fastConfig(), spy, frames)
		d.Start(ctx)
		Eventually(d.Emitted).Should(BeNumerically(">", 0))

		d.Stop()
		Eventually(d.Done()).Should(BeClosed())
		n := d.Emitted()

		d.SetEnabled(ctx, true)
		Eventually(d.Running).Should(BeTrue())
		Eventually(d.Emitted).Should(BeNumerically(">", n))
		Expect(spy.beginFlags()).To(ContainElement(BeTrue()))
	})

	It("reports giving up on bootstrap", func() {
		cfg := fastConfig()
		cfg.BootstrapAttempts = 2
		var stops atomic.Int32
		drv, err := New(cfg, newSpy(false), frames, WithOnStop(func() { stops.Add(1) }))
		Expect(err).NotTo(HaveOccurred())
		d = drv
		d.Start(ctx)

		Eventually(d.Done()).Should(BeClosed())
		Expect(stops.Load()).To(BeEquivalentTo(1))
	})

	It("does not report an explicit Stop", func() {
		var stops atomic.Int32
		drv, err := New(fastConfig(), newSpy(true), frames, WithOnStop(func() { stops.Add(1) }))
		Expect(err).NotTo(HaveOccurred())
		d = drv
		d.Start(ctx)

		Eventually(d.Emitted).Should(BeNumerically(">", 0))
		d.Stop()
		Eventually(d.Done()).Should(BeClosed())
		Expect(stops.Load()).To(BeZero())
	})

	Context("with a camera orbit", func() {
		It("yields to a manual pose write", func() {
			cell := view.NewCellWith(view.ViewState{Longitude: -122.4, Latitude: 37.7, Zoom: 6, Pitch: 50})
			d = newDriver(fastConfig(), NewCameraOrbit(cell, fastConfig()), frames)
			d.Start(ctx)

			Eventually(d.Emitted).Should(BeNumerically(">", 2))
			manual := view.ViewState{Longitude: 2.35, Latitude: 48.85, Zoom: 8, Pitch: 20, Bearing: 45}
			cell.Store(manual)

			Eventually(d.Done()).Should(BeClosed())
			Expect(d.Enabled()).To(BeFalse())

			v, _, _ := cell.Load()
			Expect(v).To(Equal(manual))
		})

		It("reports the takeover to its stop hook", func() {
			cell := view.NewCellWith(view.ViewState{Zoom: 6, Pitch: 50})
			var stops atomic.Int32
			drv, err := New(fastConfig(), NewCameraOrbit(cell, fastConfig()), frames,
				WithOnStop(func() { stops.Add(1) }))
			Expect(err).NotTo(HaveOccurred())
			d = drv
			d.Start(ctx)

			Eventually(d.Emitted).Should(BeNumerically(">", 2))
			cell.Store(view.ViewState{Zoom: 8, Pitch: 20, Bearing: 45})

			Eventually(d.Done()).Should(BeClosed())
			Expect(stops.Load()).To(BeEquivalentTo(1))
		})

		It("starts once the initial pose arrives", func() {
			cell := view.NewCell[view.ViewState]()
			d = newDriver(fastConfig(), NewCameraOrbit(cell, fastConfig()), frames)
			d.Start(ctx)

			Consistently(d.Emitted, 20*time.Millisecond).Should(BeZero())
			cell.Store(view.ViewState{Pitch: 50, Bearing: 0})

			Eventually(func() float64 {
				v, _, _ := cell.Load()
				return v.Bearing
			}).ShouldNot(BeZero())
		})
	})
})
