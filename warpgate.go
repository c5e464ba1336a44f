package warpgate

import (
	"fmt"
	"image/color"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs in RGBA, at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the flash overlay color.
var ColorWhite = Color{1, 1, 1, 1}

// WithAlpha returns c with its alpha replaced by a.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// RGBA converts c to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	to8 := func(v float64) uint8 { return uint8(Clamp01(v)*255 + 0.5) }
	return color.RGBA{R: to8(c.R * c.A), G: to8(c.G * c.A), B: to8(c.B * c.A), A: to8(c.A)}
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa" (leading # optional).
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Aspect returns Width/Height, or 1 for an empty rectangle.
func (r Rect) Aspect() float64 {
	if r.Height <= 0 || r.Width <= 0 {
		return 1
	}
	return r.Width / r.Height
}

// Range is a general-purpose min/max range.
// Used by the streak distribution and potentially other systems.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Random returns a random float64 in [Min, Max). A nil rng uses the global
// source.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	var f float64
	if rng != nil {
		f = rng.Float64()
	} else {
		f = rand.Float64()
	}
	return r.Min + f*(r.Max-r.Min)
}

// WorldID names a mutually exclusive top-level scene.
type WorldID string

// Worlds shipped with the default configuration.
const (
	WorldBridge WorldID = "BRIDGE"
	WorldDJ     WorldID = "DJ"
	WorldGym    WorldID = "GYM"
)

// Pose is a camera placement: a position and an optional point to look at.
type Pose struct {
	Position mgl64.Vec3
	LookAt   *mgl64.Vec3
}

// Focus returns the point the camera should face. Without an explicit
// LookAt the camera faces the pose position itself.
func (p Pose) Focus() mgl64.Vec3 {
	if p.LookAt != nil {
		return *p.LookAt
	}
	return p.Position
}

// LookingAt returns a Pose at position facing target.
func LookingAt(position, target mgl64.Vec3) Pose {
	return Pose{Position: position, LookAt: &target}
}

// TransitionRequest asks for a jump to Destination, gliding the camera to
// Target first. It is immutable once handed to a Machine.
type TransitionRequest struct {
	Destination WorldID
	Target      Pose
}

// TransitionState is a snapshot of the machine. Pending is non-nil exactly
// when Phase is not PhaseIdle.
type TransitionState struct {
	Phase    Phase
	Progress float64
	Pending  *TransitionRequest
}
