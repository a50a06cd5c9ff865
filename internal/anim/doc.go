// Package anim drives the camera orbit and light orbit.
//
// A [Driver] owns one loop. Each tick waits for two things, the host's next
// frame ([FrameSource]) and the tick delay, then asks a [Motion] to write
// the state for the current phase:
//
//	cell := view.NewCellWith(pose)
//	d, _ := anim.New(anim.DefaultConfig(), anim.NewCameraOrbit(cell, cfg), anim.NewTickerFrames(60))
//	d.Start(ctx)
//
// One period is FullLoopDuration ticks; the loop restarts from tick 0 while
// enabled. Because sin(0) = sin(2π) the seam is continuous.
//
// # Writers
//
// The animated state has two possible writers, the driver and the user.
// They never write at the same time: a manual write bumps the cell's
// version, the driver's next compare-and-store fails, and the driver
// disables itself instead of fighting the input.
package anim
