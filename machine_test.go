package warpgate

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-testutil"
)

const testFrame = 16 * time.Millisecond

type machineRig struct {
	m       *Machine
	loop    *FrameLoop
	clock   *ManualClock
	cam     *PerspectiveCamera
	store   *MemoryStore
	streaks *StreakField
}

func newMachineRig(t *testing.T) *machineRig {
	t.Helper()
	cfg := DefaultConfig()
	r := &machineRig{
		loop:  &FrameLoop{},
		clock: &ManualClock{},
		store: NewMemoryStore(WorldBridge),
	}
	r.cam = NewPerspectiveCamera(testViewport(), cfg.StartPose(), cfg.Camera.FOV, cfg.Camera.Near, cfg.Camera.Far)
	r.streaks = NewStreakField(cfg.Streaks, rand.New(rand.NewPCG(3, 4)))
	r.m = NewMachine(MachineConfig{
		Durations:     cfg.PhaseDurations(),
		Approach:      cfg.ApproachFor(),
		FrameInterval: cfg.FrameInterval(),
		Camera:        r.cam,
		Streaks:       r.streaks,
		Store:         r.store,
		Clock:         r.clock,
		Scheduler:     r.loop,
	})
	return r
}

// run advances the clock frame by frame for d, stepping the loop each frame.
func (r *machineRig) run(d, frame time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		r.clock.Advance(frame)
		r.loop.Step(r.clock.Now())
	}
}

func TestMachineDJExample(t *testing.T) {
	r := newMachineRig(t)
	r.m.RequestTransition(WorldDJ, djTarget())

	r.run(3300*time.Millisecond, testFrame)

	testutil.AssertEqual(t, "world", r.store.CurrentWorld(), WorldDJ)
	testutil.AssertEqual(t, "phase", r.m.Phase(), PhaseIdle)
	if r.m.State().Pending != nil {
		t.Error("Pending not cleared after commit")
	}
	if r.loop.Pending() != 0 {
		t.Errorf("frame callbacks still queued: %d", r.loop.Pending())
	}
}

func TestMachinePhaseOrderAndSingleCommit(t *testing.T) {
	r := newMachineRig(t)

	type seen struct {
		to    Phase
		world WorldID
	}
	var changes []seen
	r.m.OnPhaseChange(func(c PhaseChange) {
		changes = append(changes, seen{c.To, r.store.CurrentWorld()})
	})
	commits := 0
	r.store.Subscribe(func(from, to WorldID) { commits++ })

	r.m.RequestTransition(WorldDJ, djTarget())
	r.run(4*time.Second, testFrame)

	want := []seen{
		{PhaseApproach, WorldBridge},
		{PhaseFlash, WorldBridge},
		{PhaseWarp, WorldBridge},
		{PhaseIdle, WorldDJ},
	}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %+v, want %+v", i, changes[i], want[i])
		}
	}
	testutil.AssertEqual(t, "commits", commits, 1)
}

func TestMachineDropsRequestInFlight(t *testing.T) {
	r := newMachineRig(t)
	r.m.RequestTransition(WorldDJ, djTarget())
	r.run(500*time.Millisecond, testFrame)

	r.m.RequestTransition(WorldGym, Pose{Position: mgl64.Vec3{1.4, 1.2, -2.2}})
	st := r.m.State()
	testutil.AssertEqual(t, "phase", st.Phase, PhaseApproach)
	testutil.AssertEqual(t, "pending", st.Pending.Destination, WorldDJ)

	r.run(1200*time.Millisecond, testFrame)
	r.m.RequestTransition(WorldGym, Pose{})
	testutil.AssertEqual(t, "pending in warp", r.m.State().Pending.Destination, WorldDJ)

	r.run(3*time.Second, testFrame)
	testutil.AssertEqual(t, "world", r.store.CurrentWorld(), WorldDJ)
}

func TestMachineCommitsOnlyWhenWarpEnds(t *testing.T) {
	r := newMachineRig(t)
	r.m.RequestTransition(WorldDJ, djTarget())

	// 100ms frames land exactly on every phase boundary.
	r.run(3100*time.Millisecond, 100*time.Millisecond)
	testutil.AssertEqual(t, "phase before end", r.m.Phase(), PhaseWarp)
	testutil.AssertEqual(t, "world before end", r.store.CurrentWorld(), WorldBridge)

	r.run(100*time.Millisecond, 100*time.Millisecond)
	testutil.AssertEqual(t, "phase at end", r.m.Phase(), PhaseIdle)
	testutil.AssertEqual(t, "world at end", r.store.CurrentWorld(), WorldDJ)
}

func TestMachineProgressFollowsClock(t *testing.T) {
	r := newMachineRig(t)
	r.m.RequestTransition(WorldDJ, djTarget())

	r.clock.Advance(550 * time.Millisecond)
	r.loop.Step(r.clock.Now())
	if p := r.m.State().Progress; !approxEqual(p, 0.5, 1e-9) {
		t.Errorf("approach progress = %f, want 0.5", p)
	}
}

func TestMachineLateFrameCarriesOver(t *testing.T) {
	r := newMachineRig(t)
	r.m.RequestTransition(WorldDJ, djTarget())

	r.clock.Advance(1150 * time.Millisecond)
	r.loop.Step(r.clock.Now())
	testutil.AssertEqual(t, "phase", r.m.Phase(), PhaseFlash)

	// Flash started at 1100ms, not at the late frame.
	r.clock.Set(1250 * time.Millisecond)
	r.loop.Step(r.clock.Now())
	if p := r.m.State().Progress; !approxEqual(p, 0.5, 1e-9) {
		t.Errorf("flash progress = %f, want 0.5", p)
	}
}

func TestMachineCameraHandOff(t *testing.T) {
	r := newMachineRig(t)
	start := r.cam.Position()
	target := djTarget()
	r.m.RequestTransition(WorldDJ, target)

	r.clock.Set(1100 * time.Millisecond)
	r.loop.Step(r.clock.Now())
	if !r.cam.Position().ApproxEqualThreshold(target.Position, epsilon) {
		t.Errorf("camera after approach = %v, want %v", r.cam.Position(), target.Position)
	}

	r.clock.Set(1400 * time.Millisecond)
	r.loop.Step(r.clock.Now()) // flash ends, warp begins
	testutil.AssertEqual(t, "phase", r.m.Phase(), PhaseWarp)
	if !r.cam.Position().ApproxEqualThreshold(start, epsilon) {
		t.Errorf("camera at warp start = %v, want start %v", r.cam.Position(), start)
	}

	r.clock.Set(2300 * time.Millisecond) // warp midpoint
	r.loop.Step(r.clock.Now())
	if !approxEqual(r.cam.FOV(), 110, epsilon) {
		t.Errorf("FOV at warp midpoint = %f, want 110", r.cam.FOV())
	}

	r.clock.Set(3200 * time.Millisecond)
	r.loop.Step(r.clock.Now())
	if !approxEqual(r.cam.FOV(), 50, epsilon) {
		t.Errorf("FOV after warp = %f, want 50", r.cam.FOV())
	}
	if !r.cam.Position().ApproxEqualThreshold(start, epsilon) {
		t.Errorf("camera after warp = %v, want start %v", r.cam.Position(), start)
	}
}

func TestMachineCopiesLookAt(t *testing.T) {
	r := newMachineRig(t)
	look := mgl64.Vec3{-1.4, 1.2, -3}
	r.m.RequestTransition(WorldDJ, Pose{Position: mgl64.Vec3{-1.4, 1.2, -2.2}, LookAt: &look})
	look[0] = 99

	got := *r.m.State().Pending.Target.LookAt
	if got[0] != -1.4 {
		t.Errorf("pending look-at x = %f, want -1.4", got[0])
	}
}

func TestMachineRequestFromCommitCallback(t *testing.T) {
	r := newMachineRig(t)
	r.store.Subscribe(func(from, to WorldID) {
		if to == WorldDJ {
			r.m.RequestTransition(WorldGym, Pose{Position: mgl64.Vec3{1.4, 1.2, -2.2}})
		}
	})

	r.m.RequestTransition(WorldDJ, djTarget())
	r.run(3300*time.Millisecond, testFrame)
	testutil.AssertEqual(t, "world after first", r.store.CurrentWorld(), WorldDJ)
	testutil.AssertEqual(t, "phase after first", r.m.Phase(), PhaseApproach)

	r.run(3300*time.Millisecond, testFrame)
	testutil.AssertEqual(t, "world after second", r.store.CurrentWorld(), WorldGym)
	testutil.AssertEqual(t, "phase after second", r.m.Phase(), PhaseIdle)
}

func TestMachineCloseStopsWithoutCommit(t *testing.T) {
	r := newMachineRig(t)
	r.m.RequestTransition(WorldDJ, djTarget())
	r.run(500*time.Millisecond, testFrame)

	r.m.Close()
	r.run(5*time.Second, testFrame)
	testutil.AssertEqual(t, "world", r.store.CurrentWorld(), WorldBridge)
	testutil.AssertEqual(t, "phase", r.m.Phase(), PhaseApproach)
}

func TestMachineRetimeRefusedInFlight(t *testing.T) {
	r := newMachineRig(t)
	d := Durations{Approach: time.Second, Flash: time.Second, Warp: time.Second}
	if err := r.m.Retime(d, Approach{}, 0); err != nil {
		t.Fatalf("Retime while idle: %v", err)
	}
	testutil.AssertEqual(t, "total", r.m.Durations().Total(), 3*time.Second)

	r.m.RequestTransition(WorldDJ, djTarget())
	err := r.m.Retime(Durations{}, Approach{}, 0)
	if !errors.Is(err, ErrTransitionInFlight) {
		t.Errorf("Retime in flight = %v, want ErrTransitionInFlight", err)
	}
}
