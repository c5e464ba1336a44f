package warpgate

import "github.com/go-gl/mathgl/mgl64"

// OverlayConfig holds the cosmetic constants of the flash and warp layers.
type OverlayConfig struct {
	// FlashGain scales flash progress into opacity so the screen is fully
	// white slightly before the flash ends.
	FlashGain  float64 `yaml:"flash_gain"`
	FlashColor Color   `yaml:"flash_color"`
	// Backdrop replaces the world during the warp.
	Backdrop    Color      `yaml:"backdrop"`
	StreakColor Color      `yaml:"streak_color"`
	StreakWidth float64    `yaml:"streak_width"`
	StreakUnit  float64    `yaml:"streak_unit"`
	GlowColor   Color      `yaml:"glow_color"`
	GlowCenter  mgl64.Vec3 `yaml:"glow_center"`
	GlowRadius  float64    `yaml:"glow_radius"`
	// Stars is the number of faint background stars drawn behind the streaks.
	Stars int `yaml:"stars"`
}

// FlashOpacity returns the flash overlay opacity for flash progress p.
func FlashOpacity(p, gain float64) float64 {
	return Clamp01(p * gain)
}

// Frame is everything a render surface needs to draw one frame of the
// transition. Opacities are zero outside the phase that uses them.
type Frame struct {
	// World is the committed world.
	World    WorldID
	Phase    Phase
	Progress float64
	// Destination is the world being travelled to, empty when idle.
	Destination WorldID

	FlashOpacity  float64
	StreakOpacity float64
	GlowOpacity   float64
}

// ShowsWorld reports whether world content should be drawn this frame. The
// warp replaces it with the backdrop.
func (f Frame) ShowsWorld() bool {
	return f.Phase != PhaseWarp
}
