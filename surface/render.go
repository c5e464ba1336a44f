// Package surface draws a warpgate Engine with Ebitengine.
package surface

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/phanxgames/warpgate"
)

const (
	starRadius = 100.0
	starDepth  = 50.0
	starAlpha  = 0.5
)

// DrawWorldFunc draws the contents of world w as seen by cam. It runs after
// the background fill and before the portals.
type DrawWorldFunc func(dst *ebiten.Image, w warpgate.WorldConfig, cam warpgate.Camera)

// Renderer draws the engine's current frame: the world and its portals while
// the world is visible, the streak field during warp and the flash overlay on
// top.
type Renderer struct {
	engine *warpgate.Engine

	// DrawWorld is optional.
	DrawWorld DrawWorldFunc
	// ScreenshotDir is where queued screenshots are written.
	ScreenshotDir string

	streakLayer     *ebiten.Image
	streaks         []warpgate.Streak
	stars           []mgl64.Vec3
	screenshotQueue []string
}

// NewRenderer creates a renderer for e. rng places the background stars and
// may be nil.
func NewRenderer(e *warpgate.Engine, rng *rand.Rand) *Renderer {
	r := &Renderer{engine: e, ScreenshotDir: "screenshots"}
	r.placeStars(e.Config().Overlay.Stars, rng)
	return r
}

// placeStars scatters n stars in a shell between starRadius and
// starRadius+starDepth around the origin.
func (r *Renderer) placeStars(n int, rng *rand.Rand) {
	r.stars = r.stars[:0]
	dist := warpgate.Range{Min: starRadius, Max: starRadius + starDepth}
	unit := warpgate.Range{Min: -1, Max: 1}
	for range n {
		var v mgl64.Vec3
		for {
			v = mgl64.Vec3{unit.Random(rng), unit.Random(rng), unit.Random(rng)}
			if l := v.Len(); l > 1e-6 && l <= 1 {
				break
			}
		}
		r.stars = append(r.stars, v.Normalize().Mul(dist.Random(rng)))
	}
}

// Draw renders the current frame onto screen.
func (r *Renderer) Draw(screen *ebiten.Image) {
	r.syncViewport(screen)

	f := r.engine.Frame()
	cfg := r.engine.Config()
	cam := r.engine.Camera()

	if f.ShowsWorld() {
		w := r.engine.World()
		screen.Fill(w.Background.RGBA())
		if r.DrawWorld != nil {
			r.DrawWorld(screen, w, cam)
		}
		r.drawPortals(screen, cam)
	} else {
		screen.Fill(cfg.Overlay.Backdrop.RGBA())
		r.drawStars(screen, cam, f.StreakOpacity)
		r.drawHyperspace(screen, cam, &cfg.Overlay, f)
	}

	if f.FlashOpacity > 0 {
		c := cfg.Overlay.FlashColor
		b := screen.Bounds()
		vector.FillRect(screen, 0, 0, float32(b.Dx()), float32(b.Dy()),
			c.WithAlpha(c.A*f.FlashOpacity).RGBA(), false)
	}

	r.flushScreenshots(screen)
}

func (r *Renderer) syncViewport(screen *ebiten.Image) {
	b := screen.Bounds()
	vp := warpgate.Rect{Width: float64(b.Dx()), Height: float64(b.Dy())}
	cam := r.engine.Camera()
	if cam.Viewport() != vp {
		cam.SetViewport(vp)
	}
}

func (r *Renderer) drawPortals(screen *ebiten.Image, cam warpgate.Camera) {
	for _, p := range r.engine.Portals() {
		cx, cy, _, ok := warpgate.WorldToScreen(cam, p.Position)
		if !ok {
			continue
		}
		rad := projectedRadius(cam, p.Position, p.Radius, cx, cy)
		vector.FillCircle(screen, float32(cx), float32(cy), float32(rad), colornames.Midnightblue, true)
		vector.StrokeCircle(screen, float32(cx), float32(cy), float32(rad), 3, colornames.Lightskyblue, true)
		ebitenutil.DebugPrintAt(screen, p.Label, int(cx-rad), int(cy+rad+4))
	}
}

// drawStars draws the background stars, fading them out as the streaks
// come in.
func (r *Renderer) drawStars(screen *ebiten.Image, cam warpgate.Camera, streakOpacity float64) {
	alpha := starAlpha * (1 - streakOpacity)
	if alpha <= 0 {
		return
	}
	c := warpgate.ColorWhite.WithAlpha(alpha).RGBA()
	for _, s := range r.stars {
		sx, sy, _, ok := warpgate.WorldToScreen(cam, s)
		if !ok {
			continue
		}
		vector.FillRect(screen, float32(sx), float32(sy), 1, 1, c, false)
	}
}

// drawHyperspace draws the streaks and the glow into an offscreen layer and
// adds it onto screen.
func (r *Renderer) drawHyperspace(screen *ebiten.Image, cam warpgate.Camera, o *warpgate.OverlayConfig, f warpgate.Frame) {
	layer := r.layer(screen)
	layer.Clear()

	if f.StreakOpacity > 0 {
		clr := o.StreakColor.WithAlpha(o.StreakColor.A * f.StreakOpacity).RGBA()
		r.streaks = r.engine.Streaks(r.streaks)
		for _, s := range r.streaks {
			tail := mgl64.Vec3{s.X, s.Y, s.Z}
			head := mgl64.Vec3{s.X, s.Y, s.Z + s.Length*o.StreakUnit}
			tx, ty, _, ok1 := warpgate.WorldToScreen(cam, tail)
			hx, hy, _, ok2 := warpgate.WorldToScreen(cam, head)
			if !ok1 || !ok2 {
				continue
			}
			w := max(projectedRadius(cam, tail, o.StreakWidth, tx, ty), 1)
			vector.StrokeLine(layer, float32(tx), float32(ty), float32(hx), float32(hy), float32(w), clr, true)
		}
	}

	if f.GlowOpacity > 0 {
		gx, gy, _, ok := warpgate.WorldToScreen(cam, o.GlowCenter)
		if ok {
			rad := projectedRadius(cam, o.GlowCenter, o.GlowRadius, gx, gy)
			clr := o.GlowColor.WithAlpha(o.GlowColor.A * f.GlowOpacity).RGBA()
			vector.FillCircle(layer, float32(gx), float32(gy), float32(rad), clr, true)
		}
	}

	screen.DrawImage(layer, &ebiten.DrawImageOptions{Blend: ebiten.BlendLighter})
}

func (r *Renderer) layer(screen *ebiten.Image) *ebiten.Image {
	b := screen.Bounds()
	if r.streakLayer != nil {
		lb := r.streakLayer.Bounds()
		if lb.Dx() == b.Dx() && lb.Dy() == b.Dy() {
			return r.streakLayer
		}
		r.streakLayer.Deallocate()
	}
	r.streakLayer = ebiten.NewImage(b.Dx(), b.Dy())
	return r.streakLayer
}

// projectedRadius converts a world-space radius at p, whose projection is
// (cx, cy), to pixels.
func projectedRadius(cam warpgate.Camera, p mgl64.Vec3, radius, cx, cy float64) float64 {
	ex, ey, _, ok := warpgate.WorldToScreen(cam, p.Add(mgl64.Vec3{radius, 0, 0}))
	if !ok {
		return 0
	}
	return math.Hypot(ex-cx, ey-cy)
}
