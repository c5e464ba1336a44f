package warpgate

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

const (
	portalBobHeight = 0.1
	portalBobPeriod = 1.2 // seconds per half cycle
)

// Portal is a clickable doorway placed in one world that leads to another.
type Portal struct {
	World WorldID
	To    WorldID
	Label string
	// Anchor is the configured position; Position floats around it.
	Anchor   mgl64.Vec3
	Position mgl64.Vec3
	Radius   float64

	standoff float64
	bob      float64
	bobTween *TweenGroup
}

// NewPortal creates a portal in world from its configuration. standoff is the
// distance in front of the portal where an approach ends.
func NewPortal(world WorldID, cfg PortalConfig, standoff float64) *Portal {
	p := &Portal{
		World:    world,
		To:       cfg.To,
		Label:    cfg.Label,
		Anchor:   cfg.Position,
		Position: cfg.Position,
		Radius:   cfg.Radius,
		standoff: standoff,
	}
	p.bobTween = TweenFloat(&p.bob, portalBobHeight, portalBobPeriod, ease.InOutSine)
	return p
}

// Update floats the portal up and down.
func (p *Portal) Update(dt float64) {
	p.bobTween.Update(float32(dt))
	if p.bobTween.Done {
		p.bobTween.Reverse()
	}
	p.Position = p.Anchor.Add(mgl64.Vec3{0, p.bob, 0})
}

// TargetPose is where an approach through this portal ends: standoff units in
// front of the anchor, facing it.
func (p *Portal) TargetPose() Pose {
	return LookingAt(p.Anchor.Add(mgl64.Vec3{0, 0, p.standoff}), p.Anchor)
}

// Hit reports whether screen point (sx, sy) falls on the portal as seen by
// cam.
func (p *Portal) Hit(cam Camera, sx, sy float64) bool {
	cx, cy, _, ok := WorldToScreen(cam, p.Position)
	if !ok {
		return false
	}
	ex, ey, _, ok := WorldToScreen(cam, p.Position.Add(mgl64.Vec3{p.Radius, 0, 0}))
	if !ok {
		return false
	}
	r2 := (ex-cx)*(ex-cx) + (ey-cy)*(ey-cy)
	d2 := (sx-cx)*(sx-cx) + (sy-cy)*(sy-cy)
	return d2 <= r2
}
