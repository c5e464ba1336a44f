package warpgate

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfigYAML []byte

// Config is the full engine configuration. Fields left out of a YAML file
// keep their defaults.
type Config struct {
	InitialWorld WorldID         `yaml:"initial_world"`
	FrameRate    int             `yaml:"frame_rate"`
	Durations    DurationsConfig `yaml:"durations"`
	Camera       CameraConfig    `yaml:"camera"`
	Approach     ApproachConfig  `yaml:"approach"`
	Streaks      StreakConfig    `yaml:"streaks"`
	Overlay      OverlayConfig   `yaml:"overlay"`
	Worlds       []WorldConfig   `yaml:"worlds"`
	Debug        bool            `yaml:"debug"`
}

// DurationsConfig is the YAML form of Durations.
type DurationsConfig struct {
	Approach Duration `yaml:"approach"`
	Flash    Duration `yaml:"flash"`
	Warp     Duration `yaml:"warp"`
}

// CameraConfig describes the fixed start pose and the lens.
type CameraConfig struct {
	Position mgl64.Vec3 `yaml:"position"`
	LookAt   mgl64.Vec3 `yaml:"look_at"`
	FOV      float64    `yaml:"fov"`
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
	// Orthographic selects a camera without a field of view. The warp then
	// runs without its FOV pulse.
	Orthographic bool    `yaml:"orthographic"`
	OrthoHeight  float64 `yaml:"ortho_height"`
}

// ApproachConfig tunes the camera glide.
type ApproachConfig struct {
	Curve string `yaml:"curve"`
	// Standoff is how far in front of a portal the camera stops.
	Standoff float64 `yaml:"standoff"`
}

// WorldConfig is one world and the portals placed in it.
type WorldConfig struct {
	ID         WorldID        `yaml:"id"`
	Label      string         `yaml:"label"`
	Background Color          `yaml:"background"`
	Portals    []PortalConfig `yaml:"portals"`
}

// PortalConfig places a portal leading to another world.
type PortalConfig struct {
	To       WorldID    `yaml:"to"`
	Label    string     `yaml:"label"`
	Position mgl64.Vec3 `yaml:"position"`
	Radius   float64    `yaml:"radius"`
}

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

// UnmarshalYAML parses strings such as "1100ms".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a string")
	}
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML parses "#rrggbb" and "#rrggbbaa" strings.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := ParseHexColor(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML writes the color as "#rrggbbaa".
func (c Color) MarshalYAML() (any, error) {
	to8 := func(v float64) uint8 { return uint8(Clamp01(v)*255 + 0.5) }
	return fmt.Sprintf("#%02x%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B), to8(c.A)), nil
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		panic(fmt.Sprintf("warpgate: embedded default config: %v", err))
	}
	return cfg
}

// ParseConfig decodes YAML on top of the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("warpgate: unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("warpgate: invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("warpgate: load config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.FrameRate <= 0 {
		el.Add(fmt.Errorf("frame_rate must be positive"))
	}
	el.Add(c.Durations.Validate())
	el.Add(c.Camera.Validate())
	el.Add(c.Approach.Validate())
	el.Add(validateStreaks(&c.Streaks))
	el.Add(validateOverlay(&c.Overlay))

	if len(c.Worlds) == 0 {
		el.Add(fmt.Errorf("at least one world is required"))
	}
	seen := make(map[WorldID]bool, len(c.Worlds))
	for i, w := range c.Worlds {
		if w.ID == "" {
			el.Add(fmt.Errorf("world %d: id is required", i))
			continue
		}
		if seen[w.ID] {
			el.Add(fmt.Errorf("world %d: duplicate id %q", i, w.ID))
		}
		seen[w.ID] = true
	}
	for _, w := range c.Worlds {
		for j, p := range w.Portals {
			if !seen[p.To] {
				el.Add(fmt.Errorf("world %s portal %d: unknown destination %q", w.ID, j, p.To))
			}
			if p.Radius <= 0 {
				el.Add(fmt.Errorf("world %s portal %d: radius must be positive", w.ID, j))
			}
		}
	}
	if !seen[c.InitialWorld] {
		el.Add(fmt.Errorf("initial_world %q is not a configured world", c.InitialWorld))
	}

	return el.Err()
}

// Validate checks that every timed phase has a positive length.
func (c *DurationsConfig) Validate() error {
	el := errors.NewErrorList()
	if c.Approach <= 0 {
		el.Add(fmt.Errorf("durations.approach must be positive"))
	}
	if c.Flash <= 0 {
		el.Add(fmt.Errorf("durations.flash must be positive"))
	}
	if c.Warp <= 0 {
		el.Add(fmt.Errorf("durations.warp must be positive"))
	}
	return el.Err()
}

func (c *CameraConfig) Validate() error {
	el := errors.NewErrorList()
	if c.Orthographic {
		if c.OrthoHeight <= 0 {
			el.Add(fmt.Errorf("camera.ortho_height must be positive"))
		}
	} else if c.FOV <= 0 || c.FOV >= 180 {
		el.Add(fmt.Errorf("camera.fov must be in (0, 180)"))
	}
	if c.Near <= 0 {
		el.Add(fmt.Errorf("camera.near must be positive"))
	}
	if c.Far <= c.Near {
		el.Add(fmt.Errorf("camera.far must be greater than camera.near"))
	}
	return el.Err()
}

func (c *ApproachConfig) Validate() error {
	el := errors.NewErrorList()
	if _, ok := Curve(c.Curve); !ok {
		el.Add(fmt.Errorf("approach.curve: unknown curve %q", c.Curve))
	}
	if c.Standoff < 0 {
		el.Add(fmt.Errorf("approach.standoff must not be negative"))
	}
	return el.Err()
}

func validateStreaks(c *StreakConfig) error {
	el := errors.NewErrorList()
	if c.Count <= 0 {
		el.Add(fmt.Errorf("streaks.count must be positive"))
	}
	if c.Range <= 0 {
		el.Add(fmt.Errorf("streaks.range must be positive"))
	}
	if c.NearThreshold < 0 || c.NearThreshold >= c.Range {
		el.Add(fmt.Errorf("streaks.near_threshold must be in [0, range)"))
	}
	if c.Radius.Min < 0 || c.Radius.Max < c.Radius.Min {
		el.Add(fmt.Errorf("streaks.radius must satisfy 0 <= min <= max"))
	}
	if c.LengthScale.Min < 0 || c.LengthScale.Max < c.LengthScale.Min {
		el.Add(fmt.Errorf("streaks.length_scale must satisfy 0 <= min <= max"))
	}
	if c.MinSpeed < 0 || c.MaxSpeed < c.MinSpeed {
		el.Add(fmt.Errorf("streaks speeds must satisfy 0 <= min_speed <= max_speed"))
	}
	if c.RampIn <= 0 || c.RampIn > 1 {
		el.Add(fmt.Errorf("streaks.ramp_in must be in (0, 1]"))
	}
	if c.CruiseEnd < c.RampIn || c.CruiseEnd > 1 {
		el.Add(fmt.Errorf("streaks.cruise_end must be in [ramp_in, 1]"))
	}
	if c.PeakFOV <= 0 || c.PeakFOV >= 180 {
		el.Add(fmt.Errorf("streaks.peak_fov must be in (0, 180)"))
	}
	if _, ok := Curve(c.PulseCurve); !ok {
		el.Add(fmt.Errorf("streaks.pulse_curve: unknown curve %q", c.PulseCurve))
	}
	if c.StreakGain <= 0 || c.GlowGain <= 0 {
		el.Add(fmt.Errorf("streaks gains must be positive"))
	}
	return el.Err()
}

func validateOverlay(c *OverlayConfig) error {
	el := errors.NewErrorList()
	if c.FlashGain <= 0 {
		el.Add(fmt.Errorf("overlay.flash_gain must be positive"))
	}
	if c.Stars < 0 {
		el.Add(fmt.Errorf("overlay.stars must not be negative"))
	}
	return el.Err()
}

// PhaseDurations converts the YAML durations.
func (c *Config) PhaseDurations() Durations {
	return Durations{
		Approach: time.Duration(c.Durations.Approach),
		Flash:    time.Duration(c.Durations.Flash),
		Warp:     time.Duration(c.Durations.Warp),
	}
}

// FrameInterval is the time between host frames.
func (c *Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FrameRate)
}

// StartPose is the fixed pose every world opens with.
func (c *Config) StartPose() Pose {
	return LookingAt(c.Camera.Position, c.Camera.LookAt)
}

// ApproachFor builds the Approach from the start pose and the named curve.
func (c *Config) ApproachFor() Approach {
	curve, ok := Curve(c.Approach.Curve)
	if !ok {
		curve = Smoothstep
	}
	return Approach{Start: c.StartPose(), Curve: curve}
}

// World returns the configuration of world id.
func (c *Config) World(id WorldID) (WorldConfig, bool) {
	for _, w := range c.Worlds {
		if w.ID == id {
			return w, true
		}
	}
	return WorldConfig{}, false
}
