package warpgate

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 3 float64 fields simultaneously. Create one via
// TweenFloat or TweenVec3 and call Update(dt) each frame; values are written
// straight to the fields. Owners call Update themselves.
type TweenGroup struct {
	tweens   [3]*gween.Tween
	fields   [3]*float64
	from, to [3]float32
	count    int
	duration float32
	fn       ease.TweenFunc
	Done     bool
}

func newTweenGroup(duration float32, fn ease.TweenFunc) *TweenGroup {
	return &TweenGroup{duration: duration, fn: fn}
}

func (g *TweenGroup) add(field *float64, to float64) {
	i := g.count
	g.fields[i] = field
	g.from[i] = float32(*field)
	g.to[i] = float32(to)
	g.tweens[i] = gween.New(g.from[i], g.to[i], g.duration, g.fn)
	g.count++
}

// Update advances all tweens by dt seconds and writes values to the fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// Reverse restarts the group from its end values back to its start values.
func (g *TweenGroup) Reverse() {
	for i := 0; i < g.count; i++ {
		g.from[i], g.to[i] = g.to[i], g.from[i]
		g.tweens[i] = gween.New(g.from[i], g.to[i], g.duration, g.fn)
	}
	g.Done = false
}

// TweenFloat creates a TweenGroup that animates *f to the target value over
// duration seconds.
func TweenFloat(f *float64, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(duration, fn)
	g.add(f, to)
	return g
}

// TweenVec3 creates a TweenGroup that animates all three components of *v.
func TweenVec3(v *mgl64.Vec3, to mgl64.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(duration, fn)
	g.add(&v[0], to[0])
	g.add(&v[1], to[1])
	g.add(&v[2], to[2])
	return g
}
