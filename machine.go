package warpgate

import (
	"errors"
	"log/slog"
	"time"
)

// ErrTransitionInFlight is returned by operations that are only allowed while
// the machine is idle.
var ErrTransitionInFlight = errors.New("warpgate: transition in flight")

// Durations are the fixed lengths of the timed phases.
type Durations struct {
	Approach time.Duration
	Flash    time.Duration
	Warp     time.Duration
}

// Of returns the duration of phase p. PhaseIdle has none.
func (d Durations) Of(p Phase) time.Duration {
	switch p {
	case PhaseApproach:
		return d.Approach
	case PhaseFlash:
		return d.Flash
	case PhaseWarp:
		return d.Warp
	default:
		return 0
	}
}

// Total returns the length of a whole transition.
func (d Durations) Total() time.Duration {
	return d.Approach + d.Flash + d.Warp
}

// MachineConfig wires a Machine to its collaborators.
type MachineConfig struct {
	Durations Durations
	Approach  Approach
	// FrameInterval converts streak speeds to per-frame distances.
	FrameInterval time.Duration

	Camera  Camera
	Streaks *StreakField
	Store   WorldStore
	// Clock defaults to a MonotonicClock.
	Clock Clock
	// Scheduler defaults to a FrameLoop reachable through Machine.Scheduler.
	Scheduler FrameScheduler
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Machine sequences idle → approach → flash → warp → idle. It is the only
// writer of TransitionState and hands the camera to the Approach during
// PhaseApproach and to the StreakField during PhaseWarp.
type Machine struct {
	state      TransitionState
	phaseStart time.Duration

	durations Durations
	approach  Approach
	frameDT   float64

	camera  Camera
	streaks *StreakField
	store   WorldStore
	clock   Clock
	sched   FrameScheduler
	driver  *AnimationDriver
	logger  *slog.Logger

	hooks []func(PhaseChange)
}

// NewMachine returns an idle machine.
func NewMachine(cfg MachineConfig) *Machine {
	m := &Machine{
		durations: cfg.Durations,
		approach:  cfg.Approach,
		frameDT:   cfg.FrameInterval.Seconds(),
		camera:    cfg.Camera,
		streaks:   cfg.Streaks,
		store:     cfg.Store,
		clock:     cfg.Clock,
		sched:     cfg.Scheduler,
		logger:    cfg.Logger,
	}
	if m.frameDT <= 0 {
		m.frameDT = 1.0 / 60
	}
	if m.clock == nil {
		m.clock = NewMonotonicClock()
	}
	if m.sched == nil {
		m.sched = &FrameLoop{}
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	m.driver = NewAnimationDriver(m.sched, m.Tick)
	return m
}

// RequestTransition starts a transition to dest. Requests made while another
// transition is in flight are dropped.
func (m *Machine) RequestTransition(dest WorldID, target Pose) {
	if m.state.Phase != PhaseIdle {
		m.logger.Debug("transition request dropped",
			"world", dest, "phase", m.state.Phase, "pending", m.state.Pending.Destination)
		return
	}
	if target.LookAt != nil {
		focus := *target.LookAt
		target.LookAt = &focus
	}
	req := &TransitionRequest{Destination: dest, Target: target}
	now := m.clock.Now()

	m.state = TransitionState{Phase: PhaseApproach, Pending: req}
	m.phaseStart = now
	m.emit(PhaseChange{From: PhaseIdle, To: PhaseApproach, Request: *req, At: now})
	m.driver.Start()
}

// Tick advances the machine to clock time now. It returns false once the
// machine is idle and needs no further frames.
func (m *Machine) Tick(now time.Duration) bool {
	phase := m.state.Phase
	if phase == PhaseIdle {
		return false
	}
	req := *m.state.Pending
	d := m.durations.Of(phase)

	p := 1.0
	if d > 0 {
		p = Clamp01(float64(now-m.phaseStart) / float64(d))
	}
	m.state.Progress = p

	switch phase {
	case PhaseApproach:
		m.approach.Apply(m.camera, req.Target, p)
	case PhaseWarp:
		m.streaks.Advance(m.camera, p, m.frameDT)
	}

	if p >= 1 {
		// The next phase starts where this one was due to end, so late frames
		// never stretch the transition.
		m.enter(phase.Next(), req, m.phaseStart+d)
	}
	return m.state.Phase != PhaseIdle
}

func (m *Machine) enter(to Phase, req TransitionRequest, at time.Duration) {
	from := m.state.Phase
	m.state.Phase = to
	m.state.Progress = 0
	m.phaseStart = at

	switch to {
	case PhaseWarp:
		SetPose(m.camera, m.approach.Start)
		m.streaks.Reset()
	case PhaseIdle:
		SetPose(m.camera, m.approach.Start)
		m.streaks.Reset()
		m.state.Pending = nil
		m.store.SetWorld(req.Destination)
	}
	m.emit(PhaseChange{From: from, To: to, Request: req, At: at})
}

func (m *Machine) emit(c PhaseChange) {
	m.logger.Debug("phase change",
		"from", c.From, "to", c.To, "world", c.Request.Destination, "at", c.At)
	for _, fn := range m.hooks {
		fn(c)
	}
}

// OnPhaseChange registers fn to run after every phase boundary.
func (m *Machine) OnPhaseChange(fn func(PhaseChange)) {
	m.hooks = append(m.hooks, fn)
}

// State returns a snapshot of the transition state.
func (m *Machine) State() TransitionState {
	s := m.state
	if s.Pending != nil {
		req := *s.Pending
		s.Pending = &req
	}
	return s
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.state.Phase
}

// InFlight reports whether a transition is running.
func (m *Machine) InFlight() bool {
	return m.state.Phase != PhaseIdle
}

// Durations returns the configured phase durations.
func (m *Machine) Durations() Durations {
	return m.durations
}

// Scheduler returns the scheduler the machine's driver uses.
func (m *Machine) Scheduler() FrameScheduler {
	return m.sched
}

// Retime replaces the phase durations, approach curve and frame interval.
// Only allowed while idle.
func (m *Machine) Retime(d Durations, a Approach, frameInterval time.Duration) error {
	if m.InFlight() {
		return ErrTransitionInFlight
	}
	m.durations = d
	m.approach = a
	if frameInterval > 0 {
		m.frameDT = frameInterval.Seconds()
	}
	return nil
}

// Close deregisters the machine's frame callback. A transition in flight
// stops where it is and is never committed.
func (m *Machine) Close() {
	m.driver.Stop()
}
