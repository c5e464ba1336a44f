package warpgate

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// streak holds per-particle state. Unexported; owned by StreakField.
type streak struct {
	x, y, z     float64
	lengthScale float64 // base length, fixed at creation
	length      float64 // visible length for the current frame
}

// Streak is a read-only copy of one particle, handed to renderers.
type Streak struct {
	X, Y, Z float64
	Length  float64
}

// StreakConfig controls the warp streak field, the FOV pulse and the camera
// dolly.
type StreakConfig struct {
	// Count is the pool size. Particles are never created or destroyed after
	// NewStreakField.
	Count int `yaml:"count"`
	// Range is the depth of the recycle band.
	Range float64 `yaml:"range"`
	// NearThreshold is the z past which a particle wraps back by Range.
	NearThreshold float64 `yaml:"near_threshold"`
	// Radius is the distance of a particle from the forward axis.
	Radius Range `yaml:"radius"`
	// Squash scales the y axis of the ring.
	Squash float64 `yaml:"squash"`
	// LengthScale is the range of per-particle base lengths.
	LengthScale Range `yaml:"length_scale"`

	// MinSpeed and MaxSpeed bound the streak speed in units per second.
	MinSpeed float64 `yaml:"min_speed"`
	MaxSpeed float64 `yaml:"max_speed"`
	// RampIn is the progress at which the speed ramp reaches cruise.
	RampIn float64 `yaml:"ramp_in"`
	// CruiseEnd is the progress at which deceleration starts.
	CruiseEnd float64 `yaml:"cruise_end"`
	// MinLength and MaxLength are the visible length factors at rest and at
	// cruise speed.
	MinLength float64 `yaml:"min_length"`
	MaxLength float64 `yaml:"max_length"`

	// PeakFOV is the field of view in degrees at the middle of the warp.
	PeakFOV float64 `yaml:"peak_fov"`
	// ZPunch is how far the camera dollies forward at the middle of the warp.
	ZPunch float64 `yaml:"z_punch"`
	// PulseCurve names the easing curve applied before the FOV triangle.
	PulseCurve string `yaml:"pulse_curve"`

	// StreakGain and GlowGain scale progress into opacity.
	StreakGain float64 `yaml:"streak_gain"`
	GlowGain   float64 `yaml:"glow_gain"`
}

// SpeedState is derived from progress every frame.
type SpeedState struct {
	Range float64
	// Speed is in units per second.
	Speed float64
	// Scale is the normalized speed in [0, 1].
	Scale float64
}

// StreakField is a fixed pool of depth-recycled streaks plus the camera pulse
// that goes with them. Advance is its only mutator.
type StreakField struct {
	config  StreakConfig
	pulse   Func
	streaks []streak

	speed         SpeedState
	streakOpacity float64
	glowOpacity   float64

	baseFOV float64
	basePos mgl64.Vec3
	baseSet bool
}

// NewStreakField preallocates the pool with a cylindrical distribution around
// the -z axis. A nil rng uses the global source.
func NewStreakField(cfg StreakConfig, rng *rand.Rand) *StreakField {
	n := cfg.Count
	if n <= 0 {
		n = 1200
	}
	pulse, ok := Curve(cfg.PulseCurve)
	if !ok {
		pulse = Smootherstep
	}
	f := &StreakField{
		config:  cfg,
		pulse:   pulse,
		streaks: make([]streak, n),
		speed:   SpeedState{Range: cfg.Range, Speed: cfg.MinSpeed},
	}

	depth := Range{Min: 0, Max: cfg.Range - cfg.NearThreshold}
	if depth.Max < 0 {
		depth.Max = 0
	}
	for i := range f.streaks {
		s := &f.streaks[i]
		r := cfg.Radius.Random(rng)
		a := Range{Min: 0, Max: 2 * math.Pi}.Random(rng)
		s.x = math.Cos(a) * r
		s.y = math.Sin(a) * r * cfg.Squash
		// Start inside (NearThreshold-Range, 0] so the band holds from frame one.
		s.z = -depth.Random(rng)
		s.lengthScale = cfg.LengthScale.Random(rng)
		s.length = cfg.MinLength * s.lengthScale
	}
	return f
}

// Reset forgets the recorded base FOV and camera position. The next Advance
// with a FOV-capable camera records them again.
func (f *StreakField) Reset() {
	f.baseSet = false
	f.streakOpacity = 0
	f.glowOpacity = 0
}

// Advance moves the field to the given warp progress. dt is the render loop's
// frame interval in seconds. Cameras without a field of view skip the pulse
// and the dolly; streaks still move.
func (f *StreakField) Advance(cam Camera, progress, dt float64) {
	t := Clamp01(progress)

	if fc, ok := cam.(FieldOfViewer); ok {
		f.pulseCamera(cam, fc, t)
	}

	scale := SpeedScale(t, f.config.RampIn, f.config.CruiseEnd)
	f.speed = SpeedState{
		Range: f.config.Range,
		Speed: Lerp(f.config.MinSpeed, f.config.MaxSpeed, scale),
		Scale: scale,
	}

	delta := f.speed.Speed * dt
	lengthFactor := Lerp(f.config.MinLength, f.config.MaxLength, scale)
	near, depth := f.config.NearThreshold, f.config.Range
	for i := range f.streaks {
		s := &f.streaks[i]
		s.z += delta
		for s.z > near && depth > 0 {
			s.z -= depth
		}
		s.length = lengthFactor * s.lengthScale
	}

	f.streakOpacity = Clamp01(t * f.config.StreakGain)
	f.glowOpacity = Clamp01(t * f.config.GlowGain)
}

// pulseCamera applies the FOV punch and the forward dolly. Both follow a
// triangle over the eased progress that peaks at the midpoint.
func (f *StreakField) pulseCamera(cam Camera, fc FieldOfViewer, t float64) {
	if !f.baseSet {
		f.baseFOV = fc.FOV()
		f.basePos = cam.Position()
		f.baseSet = true
	}
	tri := PulseTriangle(f.pulse(t))
	fc.SetFOV(Lerp(f.baseFOV, f.config.PeakFOV, tri))

	pos := f.basePos
	pos[2] -= f.config.ZPunch * tri
	cam.SetPosition(pos)
}

// PulseTriangle rises linearly from 0 to 1 over e in [0, 0.5] and falls back
// to 0 over [0.5, 1].
func PulseTriangle(e float64) float64 {
	if e < 0.5 {
		return e / 0.5
	}
	return 1 - (e-0.5)/0.5
}

// SpeedScale is the three-segment streak speed schedule: a cubic ramp-in up
// to rampIn, cruise until cruiseEnd, then a quintic decay to zero at t=1.
func SpeedScale(t, rampIn, cruiseEnd float64) float64 {
	switch {
	case t < rampIn:
		return EaseInCubic(Clamp01(t / rampIn))
	case t < cruiseEnd:
		return 1
	default:
		if cruiseEnd >= 1 {
			return 1
		}
		return 1 - EaseInQuint(Clamp01((t-cruiseEnd)/(1-cruiseEnd)))
	}
}

// Speed returns the speed derived on the last Advance.
func (f *StreakField) Speed() SpeedState {
	return f.speed
}

// Opacity returns the streak and glow opacities of the last Advance.
func (f *StreakField) Opacity() (streaks, glow float64) {
	return f.streakOpacity, f.glowOpacity
}

// BaseFOV returns the recorded base field of view, if any.
func (f *StreakField) BaseFOV() (float64, bool) {
	return f.baseFOV, f.baseSet
}

// Len returns the pool size.
func (f *StreakField) Len() int {
	return len(f.streaks)
}

// Band returns the depth interval (lo, hi] every particle stays inside.
func (f *StreakField) Band() (lo, hi float64) {
	return f.config.NearThreshold - f.config.Range, f.config.NearThreshold
}

// Streaks appends a copy of every particle to dst[:0] and returns it. Reusing
// dst across frames avoids allocation.
func (f *StreakField) Streaks(dst []Streak) []Streak {
	dst = dst[:0]
	for i := range f.streaks {
		s := &f.streaks[i]
		dst = append(dst, Streak{X: s.x, Y: s.y, Z: s.z, Length: s.length})
	}
	return dst
}
