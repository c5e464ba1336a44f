package warpgate

import "time"

// FrameFunc runs once on the next displayed frame.
type FrameFunc func(now time.Duration)

// FrameScheduler is the host's "run this on the next frame" primitive.
type FrameScheduler interface {
	RequestFrame(fn FrameFunc)
}

// FrameLoop is a FrameScheduler stepped by the host once per frame. Requests
// made while a frame is running are deferred to the following frame.
type FrameLoop struct {
	queue []FrameFunc
	spare []FrameFunc
}

// RequestFrame queues fn for the next Step.
func (l *FrameLoop) RequestFrame(fn FrameFunc) {
	l.queue = append(l.queue, fn)
}

// Pending returns the number of callbacks queued for the next Step.
func (l *FrameLoop) Pending() int {
	return len(l.queue)
}

// Step runs every callback queued before the call.
func (l *FrameLoop) Step(now time.Duration) {
	if len(l.queue) == 0 {
		return
	}
	run := l.queue
	l.queue = l.spare[:0]
	for i, fn := range run {
		fn(now)
		run[i] = nil
	}
	l.spare = run[:0]
}

// AnimationDriver keeps a tick function running once per frame until the
// tick reports it is finished or Stop is called.
type AnimationDriver struct {
	sched   FrameScheduler
	tick    func(now time.Duration) bool
	running bool
	gen     uint64
}

// NewAnimationDriver returns a stopped driver. tick returns false when no
// further frames are needed.
func NewAnimationDriver(sched FrameScheduler, tick func(now time.Duration) bool) *AnimationDriver {
	return &AnimationDriver{sched: sched, tick: tick}
}

// Start schedules the next frame. Starting a running driver is a no-op.
func (d *AnimationDriver) Start() {
	if d.running {
		return
	}
	d.running = true
	d.gen++
	d.schedule(d.gen)
}

// Stop deregisters the driver. A frame already queued becomes a no-op.
func (d *AnimationDriver) Stop() {
	d.running = false
	d.gen++
}

// Running reports whether the driver is scheduling frames.
func (d *AnimationDriver) Running() bool {
	return d.running
}

func (d *AnimationDriver) schedule(gen uint64) {
	d.sched.RequestFrame(func(now time.Duration) {
		if !d.running || gen != d.gen {
			return
		}
		if d.tick(now) {
			if d.running && gen == d.gen {
				d.schedule(gen)
			}
			return
		}
		if gen == d.gen {
			d.running = false
		}
	})
}
