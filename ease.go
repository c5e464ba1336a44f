package warpgate

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

// Func maps normalized progress in [0, 1] to an eased value. Curves other
// than Clamp01 expect their input already clamped.
type Func func(t float64) float64

// Clamp01 restricts t to [0, 1].
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpVec3 interpolates a and b component-wise by t.
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{
		Lerp(a[0], b[0], t),
		Lerp(a[1], b[1], t),
		Lerp(a[2], b[2], t),
	}
}

// Linear is the identity curve.
func Linear(t float64) float64 { return t }

// Smoothstep is t²(3−2t). Used for the camera approach.
func Smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// Smootherstep is t³(t(6t−15)+10). First and second derivatives are zero at
// both ends, so the FOV pulse starts and stops without a visible kick.
func Smootherstep(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// EaseInCubic is t³.
func EaseInCubic(t float64) float64 {
	return t * t * t
}

// EaseInQuint is t⁵.
func EaseInQuint(t float64) float64 {
	return t * t * t * t * t
}

// FromTween adapts a gween easing function to a normalized curve.
func FromTween(fn ease.TweenFunc) Func {
	return func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
}

// ToTween adapts a normalized curve to gween's (t, begin, change, duration)
// form so it can drive a gween.Tween.
func ToTween(fn Func) ease.TweenFunc {
	return func(t, b, c, d float32) float32 {
		if d <= 0 {
			return b + c
		}
		return b + c*float32(fn(float64(t/d)))
	}
}

var curves = map[string]Func{
	"linear":       Linear,
	"smoothstep":   Smoothstep,
	"smootherstep": Smootherstep,
	"inCubic":      EaseInCubic,
	"inQuint":      EaseInQuint,

	"InQuad":     FromTween(ease.InQuad),
	"OutQuad":    FromTween(ease.OutQuad),
	"InOutQuad":  FromTween(ease.InOutQuad),
	"OutCubic":   FromTween(ease.OutCubic),
	"InOutCubic": FromTween(ease.InOutCubic),
	"InOutQuart": FromTween(ease.InOutQuart),
	"OutQuint":   FromTween(ease.OutQuint),
	"InOutQuint": FromTween(ease.InOutQuint),
	"InSine":     FromTween(ease.InSine),
	"OutSine":    FromTween(ease.OutSine),
	"InOutSine":  FromTween(ease.InOutSine),
	"InOutExpo":  FromTween(ease.InOutExpo),
	"InOutCirc":  FromTween(ease.InOutCirc),
	"OutBack":    FromTween(ease.OutBack),
	"InOutBack":  FromTween(ease.InOutBack),
	"OutBounce":  FromTween(ease.OutBounce),
	"OutElastic": FromTween(ease.OutElastic),
}

// Curve looks up a named easing curve. Names are the built-in curves
// ("linear", "smoothstep", "smootherstep", "inCubic", "inQuint") and the
// gween curves by their Go name ("InOutSine", "OutBack", ...).
func Curve(name string) (Func, bool) {
	fn, ok := curves[name]
	return fn, ok
}
