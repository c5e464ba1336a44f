package warpgate

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

func TestTweenFloatReachesTarget(t *testing.T) {
	v := 10.0
	g := TweenFloat(&v, 100, 1.0, ease.Linear)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	if math.Abs(v-55) > 0.5 {
		t.Errorf("v at half = %f, want ~55", v)
	}
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(v-100) > 0.01 {
		t.Errorf("v = %f, want ~100", v)
	}
}

func TestTweenVec3AllComponents(t *testing.T) {
	v := mgl64.Vec3{1, 0, 0}
	target := mgl64.Vec3{0, 1, -2}
	g := TweenVec3(&v, target, 1.0, ease.Linear)

	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	for i := range 3 {
		if math.Abs(v[i]-target[i]) > 0.01 {
			t.Errorf("v[%d] = %f, want %f", i, v[i], target[i])
		}
	}
}

func TestTweenReverse(t *testing.T) {
	v := 0.0
	g := TweenFloat(&v, 1, 0.5, ease.Linear)
	g.Update(0.25)
	g.Update(0.25)
	if !g.Done {
		t.Fatal("expected Done")
	}

	g.Reverse()
	if g.Done {
		t.Fatal("Done after Reverse")
	}
	g.Update(0.25)
	g.Update(0.25)
	if math.Abs(v) > 0.01 {
		t.Errorf("v after reverse = %f, want ~0", v)
	}
}

func TestTweenUpdateAfterDoneIsNoop(t *testing.T) {
	v := 0.0
	g := TweenFloat(&v, 5, 0.5, ease.Linear)
	g.Update(1)
	v = 42
	g.Update(1)
	if v != 42 {
		t.Errorf("finished tween wrote %f", v)
	}
}

func TestTweenWithEasedCurve(t *testing.T) {
	v := 0.0
	g := TweenFloat(&v, 1, 1, ToTween(Smoothstep))
	g.Update(0.25)
	if math.Abs(v-Smoothstep(0.25)) > 1e-4 {
		t.Errorf("v = %f, want %f", v, Smoothstep(0.25))
	}
}
