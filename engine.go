package warpgate

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"
)

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the monotonic clock, typically with a ManualClock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithStore replaces the in-memory world store.
func WithStore(s WorldStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithCamera replaces the camera built from the configuration.
func WithCamera(c Camera) Option {
	return func(e *Engine) { e.camera = c }
}

// WithLogger sets the logger. SetDebugMode has no effect on its level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRand seeds the streak distribution.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// Engine is the top-level object: it owns the camera, the streak field, the
// phase machine, the portals and the frame loop that drives them.
type Engine struct {
	cfg Config

	clock   Clock
	loop    *FrameLoop
	camera  Camera
	streaks *StreakField
	machine *Machine
	store   WorldStore
	portals []*Portal
	rng     *rand.Rand
	// hostRate is the host's ticks per second, set by SetFrameRate.
	hostRate int

	logger   *slog.Logger
	logLevel *slog.LevelVar
	debug    bool
	stats    debugStats

	runner     *TestRunner
	screenshot func(label string)
	portalBuf  []*Portal
}

// NewEngine validates cfg and builds an idle engine in cfg.InitialWorld.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("warpgate: invalid config: %w", err)
	}
	e := &Engine{cfg: cfg, loop: &FrameLoop{}}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = NewMonotonicClock()
	}
	if e.store == nil {
		e.store = NewMemoryStore(cfg.InitialWorld)
	}
	if e.camera == nil {
		e.camera = newCameraFromConfig(cfg.Camera, cfg.StartPose())
	}
	if e.logger == nil {
		e.logLevel = new(slog.LevelVar)
		e.logLevel.Set(slog.LevelWarn)
		e.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: e.logLevel})).
			With("lib", "warpgate")
	}

	e.streaks = NewStreakField(cfg.Streaks, e.rng)
	e.machine = NewMachine(MachineConfig{
		Durations:     cfg.PhaseDurations(),
		Approach:      cfg.ApproachFor(),
		FrameInterval: cfg.FrameInterval(),
		Camera:        e.camera,
		Streaks:       e.streaks,
		Store:         e.store,
		Clock:         e.clock,
		Scheduler:     e.loop,
		Logger:        e.logger,
	})
	e.machine.OnPhaseChange(e.debugPhaseChange)
	e.portals = buildPortals(&cfg)

	if cfg.Debug {
		e.SetDebugMode(true)
	}
	return e, nil
}

func newCameraFromConfig(c CameraConfig, start Pose) Camera {
	vp := Rect{Width: 640, Height: 480}
	if c.Orthographic {
		return NewOrthographicCamera(vp, start, c.OrthoHeight, c.Near, c.Far)
	}
	return NewPerspectiveCamera(vp, start, c.FOV, c.Near, c.Far)
}

func buildPortals(cfg *Config) []*Portal {
	var portals []*Portal
	for _, w := range cfg.Worlds {
		for _, pc := range w.Portals {
			portals = append(portals, NewPortal(w.ID, pc, cfg.Approach.Standoff))
		}
	}
	return portals
}

// Update runs one host frame: the test runner, portal animation and every
// queued frame callback.
func (e *Engine) Update() {
	if e.runner != nil {
		e.runner.step(e)
	}

	dt := e.cfg.FrameInterval().Seconds()
	world := e.store.CurrentWorld()
	for _, p := range e.portals {
		if p.World == world {
			p.Update(dt)
		}
	}

	now := e.clock.Now()
	if !e.debug {
		e.loop.Step(now)
		return
	}
	t0 := time.Now()
	e.loop.Step(now)
	e.stats.record(time.Since(t0), e.machine.InFlight())
}

// RequestTransition asks the machine to travel to dest, gliding to target
// first. Dropped while another transition is in flight.
func (e *Engine) RequestTransition(dest WorldID, target Pose) {
	e.machine.RequestTransition(dest, target)
}

// EnterPortal starts a transition through p.
func (e *Engine) EnterPortal(p *Portal) {
	e.RequestTransition(p.To, p.TargetPose())
}

// PortalTo returns the portal in the current world leading to dest.
func (e *Engine) PortalTo(dest WorldID) (*Portal, bool) {
	world := e.store.CurrentWorld()
	for _, p := range e.portals {
		if p.World == world && p.To == dest {
			return p, true
		}
	}
	return nil, false
}

// PortalAt returns the portal of the current world under screen point
// (sx, sy). Portals are not clickable while a transition is in flight.
func (e *Engine) PortalAt(sx, sy float64) (*Portal, bool) {
	if e.machine.InFlight() {
		return nil, false
	}
	world := e.store.CurrentWorld()
	for _, p := range e.portals {
		if p.World == world && p.Hit(e.camera, sx, sy) {
			return p, true
		}
	}
	return nil, false
}

// Portals returns the portals of the current world. The returned slice is
// reused by the next call.
func (e *Engine) Portals() []*Portal {
	e.portalBuf = e.portalBuf[:0]
	world := e.store.CurrentWorld()
	for _, p := range e.portals {
		if p.World == world {
			e.portalBuf = append(e.portalBuf, p)
		}
	}
	return e.portalBuf
}

// Frame returns what a render surface should draw this frame.
func (e *Engine) Frame() Frame {
	st := e.machine.State()
	f := Frame{
		World:    e.store.CurrentWorld(),
		Phase:    st.Phase,
		Progress: st.Progress,
	}
	if st.Pending != nil {
		f.Destination = st.Pending.Destination
	}
	switch st.Phase {
	case PhaseFlash:
		f.FlashOpacity = FlashOpacity(st.Progress, e.cfg.Overlay.FlashGain)
	case PhaseWarp:
		f.StreakOpacity, f.GlowOpacity = e.streaks.Opacity()
	}
	return f
}

// Streaks copies the streak particles into dst. See StreakField.Streaks.
func (e *Engine) Streaks(dst []Streak) []Streak {
	return e.streaks.Streaks(dst)
}

// Reconfigure swaps in a new configuration. Refused with
// ErrTransitionInFlight while a transition runs.
func (e *Engine) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("warpgate: invalid config: %w", err)
	}
	if e.machine.InFlight() {
		return ErrTransitionInFlight
	}
	if e.hostRate > 0 {
		cfg.FrameRate = e.hostRate
	}
	if err := e.machine.Retime(cfg.PhaseDurations(), cfg.ApproachFor(), cfg.FrameInterval()); err != nil {
		return err
	}
	if cfg.Streaks != e.cfg.Streaks {
		*e.streaks = *NewStreakField(cfg.Streaks, e.rng)
	}
	if fc, ok := e.camera.(FieldOfViewer); ok && !cfg.Camera.Orthographic {
		fc.SetFOV(cfg.Camera.FOV)
	}
	SetPose(e.camera, cfg.StartPose())
	e.portals = buildPortals(&cfg)
	e.cfg = cfg
	e.logger.Info("configuration reloaded")
	return nil
}

// ReloadFrom loads the YAML file at path and reconfigures the engine.
func (e *Engine) ReloadFrom(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	return e.Reconfigure(cfg)
}

// SetFrameRate tells the engine how many host frames run per second. The
// host rate overrides frame_rate from later reloads.
func (e *Engine) SetFrameRate(tps int) {
	if tps <= 0 {
		return
	}
	e.hostRate = tps
	e.cfg.FrameRate = tps
	e.machine.frameDT = e.cfg.FrameInterval().Seconds()
}

// SetScreenshotFunc installs the function test scripts call for
// "screenshot" steps.
func (e *Engine) SetScreenshotFunc(fn func(label string)) {
	e.screenshot = fn
}

// Close stops the engine's animation driver.
func (e *Engine) Close() {
	e.machine.Close()
}

// Camera returns the engine camera.
func (e *Engine) Camera() Camera { return e.camera }

// Machine returns the phase machine.
func (e *Engine) Machine() *Machine { return e.machine }

// Store returns the world store.
func (e *Engine) Store() WorldStore { return e.store }

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

// Clock returns the engine clock.
func (e *Engine) Clock() Clock { return e.clock }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// World returns the configuration of the current world.
func (e *Engine) World() WorldConfig {
	w, _ := e.cfg.World(e.store.CurrentWorld())
	return w
}
