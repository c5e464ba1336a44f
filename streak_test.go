package warpgate

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func testStreakField(t *testing.T) *StreakField {
	t.Helper()
	cfg := DefaultConfig()
	return NewStreakField(cfg.Streaks, rand.New(rand.NewPCG(1, 2)))
}

func testPerspective() *PerspectiveCamera {
	return NewPerspectiveCamera(testViewport(), LookingAt(mgl64.Vec3{0, 1.5, 4}, mgl64.Vec3{0, 1.5, 0}), 50, 0.1, 1000)
}

func assertInBand(t *testing.T, f *StreakField, when string) {
	t.Helper()
	lo, hi := f.Band()
	for i, s := range f.streaks {
		if s.z <= lo || s.z > hi {
			t.Fatalf("%s: streak %d z = %f outside (%f, %f]", when, i, s.z, lo, hi)
		}
	}
}

func TestStreakFieldPoolSize(t *testing.T) {
	f := testStreakField(t)
	if f.Len() != 1200 {
		t.Errorf("Len = %d, want 1200", f.Len())
	}
	got := f.Streaks(nil)
	if len(got) != 1200 {
		t.Errorf("len(Streaks) = %d, want 1200", len(got))
	}
}

func TestStreakFieldInitialDistribution(t *testing.T) {
	f := testStreakField(t)
	cfg := f.config
	assertInBand(t, f, "initial")
	for i, s := range f.streaks {
		// Undo the squash to recover the ring radius.
		r := math.Hypot(s.x, s.y/cfg.Squash)
		if r < cfg.Radius.Min-1e-9 || r > cfg.Radius.Max+1e-9 {
			t.Fatalf("streak %d radius %f outside [%f, %f]", i, r, cfg.Radius.Min, cfg.Radius.Max)
		}
		if s.lengthScale < cfg.LengthScale.Min || s.lengthScale > cfg.LengthScale.Max {
			t.Fatalf("streak %d lengthScale %f out of range", i, s.lengthScale)
		}
	}
}

func TestStreakFieldStaysInBand(t *testing.T) {
	f := testStreakField(t)
	cam := testPerspective()
	const frames = 2000
	for i := range frames {
		f.Advance(cam, float64(i%120)/120, 1.0/60)
	}
	assertInBand(t, f, "after 2000 frames")
}

func TestStreakFieldLargeStepStaysInBand(t *testing.T) {
	f := testStreakField(t)
	// One huge step moves every particle several band lengths.
	f.Advance(testPerspective(), 0.5, 10)
	assertInBand(t, f, "after large step")
}

func TestStreakOpacityAtZero(t *testing.T) {
	f := testStreakField(t)
	f.Advance(testPerspective(), 0, 1.0/60)
	s, g := f.Opacity()
	if s != 0 || g != 0 {
		t.Errorf("Opacity at 0 = (%f, %f), want (0, 0)", s, g)
	}
}

func TestStreakOpacityClamps(t *testing.T) {
	f := testStreakField(t)
	f.Advance(testPerspective(), 5.0/6, 1.0/60)
	s, g := f.Opacity()
	if s != 1 || g != 1 {
		t.Errorf("Opacity at 5/6 = (%f, %f), want (1, 1)", s, g)
	}
	if got := FlashOpacity(5.0/6, 1.2); !approxEqual(got, 1, 1e-12) {
		t.Errorf("FlashOpacity(5/6) = %f, want 1", got)
	}
	if got := FlashOpacity(0.9, 1.2); got != 1 {
		t.Errorf("FlashOpacity(0.9) = %f, want 1", got)
	}
}

func TestStreakFOVPulse(t *testing.T) {
	f := testStreakField(t)
	cam := testPerspective()

	f.Advance(cam, 0, 1.0/60)
	base, ok := f.BaseFOV()
	if !ok || base != 50 {
		t.Fatalf("BaseFOV = (%f, %v), want (50, true)", base, ok)
	}
	if !approxEqual(cam.FOV(), 50, epsilon) {
		t.Errorf("FOV at 0 = %f, want 50", cam.FOV())
	}

	f.Advance(cam, 0.5, 1.0/60)
	if !approxEqual(cam.FOV(), 110, epsilon) {
		t.Errorf("FOV at 0.5 = %f, want 110", cam.FOV())
	}
	if !approxEqual(cam.Position()[2], 4-0.6, epsilon) {
		t.Errorf("camera z at 0.5 = %f, want %f", cam.Position()[2], 4-0.6)
	}

	f.Advance(cam, 1, 1.0/60)
	if !approxEqual(cam.FOV(), 50, epsilon) {
		t.Errorf("FOV at 1 = %f, want 50", cam.FOV())
	}
	if !approxEqual(cam.Position()[2], 4, epsilon) {
		t.Errorf("camera z at 1 = %f, want 4", cam.Position()[2])
	}
}

func TestStreakResetRecordsBaseAgain(t *testing.T) {
	f := testStreakField(t)
	cam := testPerspective()
	f.Advance(cam, 0.2, 1.0/60)
	f.Reset()
	if _, ok := f.BaseFOV(); ok {
		t.Fatal("BaseFOV still set after Reset")
	}
	cam.SetFOV(40)
	f.Advance(cam, 0, 1.0/60)
	if base, _ := f.BaseFOV(); base != 40 {
		t.Errorf("BaseFOV = %f, want 40", base)
	}
}

func TestStreakOrthographicSkipsPulse(t *testing.T) {
	f := testStreakField(t)
	start := mgl64.Vec3{0, 1.5, 4}
	cam := NewOrthographicCamera(testViewport(), LookingAt(start, mgl64.Vec3{0, 1.5, 0}), 6, 0.1, 100)
	before := f.Streaks(nil)

	f.Advance(cam, 0.5, 1.0/60)

	if _, ok := f.BaseFOV(); ok {
		t.Error("BaseFOV recorded for an orthographic camera")
	}
	if cam.Position() != start {
		t.Errorf("camera moved to %v, want %v", cam.Position(), start)
	}
	after := f.Streaks(nil)
	moved := false
	for i := range before {
		if before[i].Z != after[i].Z {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("streaks did not move with an orthographic camera")
	}
}

func TestSpeedScaleSchedule(t *testing.T) {
	tests := []struct {
		t, want float64
	}{
		{0, 0},
		{0.2, 0.125}, // (0.2/0.4)^3
		{0.4, 1},
		{0.55, 1},
		{0.7, 1},
		{0.85, 1 - math.Pow(0.5, 5)},
		{1, 0},
	}
	for _, tt := range tests {
		if got := SpeedScale(tt.t, 0.4, 0.7); !approxEqual(got, tt.want, 1e-9) {
			t.Errorf("SpeedScale(%v) = %f, want %f", tt.t, got, tt.want)
		}
	}
}

func TestStreakSpeedAndLength(t *testing.T) {
	f := testStreakField(t)
	cam := testPerspective()

	f.Advance(cam, 0.5, 1.0/60)
	if sp := f.Speed(); !approxEqual(sp.Speed, 120, epsilon) || sp.Scale != 1 {
		t.Errorf("Speed at cruise = %+v, want 120 at scale 1", sp)
	}
	s := f.streaks[0]
	if want := f.config.MaxLength * s.lengthScale; !approxEqual(s.length, want, epsilon) {
		t.Errorf("length at cruise = %f, want %f", s.length, want)
	}

	f.Advance(cam, 1, 1.0/60)
	if sp := f.Speed(); !approxEqual(sp.Speed, 6, epsilon) {
		t.Errorf("Speed at end = %f, want 6", sp.Speed)
	}
}

func TestPulseTriangle(t *testing.T) {
	tests := []struct{ e, want float64 }{
		{0, 0}, {0.25, 0.5}, {0.5, 1}, {0.75, 0.5}, {1, 0},
	}
	for _, tt := range tests {
		if got := PulseTriangle(tt.e); !approxEqual(got, tt.want, 1e-12) {
			t.Errorf("PulseTriangle(%v) = %f, want %f", tt.e, got, tt.want)
		}
	}
}

func TestStreaksReusesBuffer(t *testing.T) {
	f := testStreakField(t)
	buf := make([]Streak, 0, f.Len())
	out := f.Streaks(buf)
	if &out[0] != &buf[:1][0] {
		t.Error("Streaks did not reuse the provided buffer")
	}
}
