package anim

import "time"

// FrameSource tells the driver when the host can draw another frame.
type FrameSource interface {
	Frames() <-chan time.Time
}

// TickerFrames is a fixed-rate frame source for hosts without their own
// frame callback.
type TickerFrames struct {
	t *time.Ticker
}

func NewTickerFrames(fps int) *TickerFrames {
	if fps <= 0 {
		fps = 60
	}
	return &TickerFrames{t: time.NewTicker(time.Second / time.Duration(fps))}
}

func (f *TickerFrames) Frames() <-chan time.Time { return f.t.C }
func (f *TickerFrames) Stop()                    { f.t.Stop() }

// SignalFrames is fed by the host, one Signal per frame it has drawn. At
// most one signal is held; extras are dropped, like a missed vsync.
type SignalFrames struct {
	c chan time.Time
}

func NewSignalFrames() *SignalFrames {
	return &SignalFrames{c: make(chan time.Time, 1)}
}

func (f *SignalFrames) Signal() {
	select {
	case f.c <- time.Now():
	default:
	}
}

func (f *SignalFrames) Frames() <-chan time.Time { return f.c }
