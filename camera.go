package warpgate

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is the view into a world: a position, a point it faces and a
// screen-space viewport. Only the component that owns the current phase may
// move it.
type Camera interface {
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	// Target returns the point the camera faces.
	Target() mgl64.Vec3
	LookAt(target mgl64.Vec3)
	Viewport() Rect
	SetViewport(vp Rect)
	// View returns the world-to-camera matrix.
	View() mgl64.Mat4
	// Projection returns the camera-to-clip matrix.
	Projection() mgl64.Mat4
}

// FieldOfViewer is implemented by cameras with an adjustable vertical field
// of view. The warp pulse is skipped for cameras that lack it.
type FieldOfViewer interface {
	FOV() float64
	SetFOV(degrees float64)
}

var (
	worldUp        = mgl64.Vec3{0, 1, 0}
	defaultForward = mgl64.Vec3{0, 0, -1}
)

const degenerateLookAt = 1e-9

// view holds the transform state shared by both camera kinds.
type view struct {
	position mgl64.Vec3
	target   mgl64.Vec3
	forward  mgl64.Vec3
	viewport Rect

	viewMatrix mgl64.Mat4
	projMatrix mgl64.Mat4
	viewDirty  bool
	projDirty  bool
}

func newView(viewport Rect, pose Pose) view {
	v := view{
		forward:   defaultForward,
		viewport:  viewport,
		viewDirty: true,
		projDirty: true,
	}
	v.position = pose.Position
	v.target = pose.Focus()
	return v
}

func (v *view) Position() mgl64.Vec3 { return v.position }
func (v *view) Target() mgl64.Vec3   { return v.target }
func (v *view) Viewport() Rect       { return v.viewport }

func (v *view) SetPosition(p mgl64.Vec3) {
	if p != v.position {
		v.position = p
		v.viewDirty = true
	}
}

func (v *view) LookAt(target mgl64.Vec3) {
	if target != v.target {
		v.target = target
		v.viewDirty = true
	}
}

func (v *view) SetViewport(vp Rect) {
	if vp != v.viewport {
		v.viewport = vp
		v.projDirty = true
	}
}

// View recomputes the cached view matrix if dirty. When the camera sits on
// its target the previous facing direction is kept.
func (v *view) View() mgl64.Mat4 {
	if !v.viewDirty {
		return v.viewMatrix
	}
	v.viewDirty = false

	dir := v.target.Sub(v.position)
	if dir.Len() > degenerateLookAt {
		v.forward = dir.Normalize()
	}
	v.viewMatrix = mgl64.LookAtV(v.position, v.position.Add(v.forward), worldUp)
	return v.viewMatrix
}

// PerspectiveCamera is a pinhole camera with a vertical field of view in
// degrees.
type PerspectiveCamera struct {
	view
	fov       float64
	near, far float64
}

// NewPerspectiveCamera creates a perspective camera placed at pose.
func NewPerspectiveCamera(viewport Rect, pose Pose, fov, near, far float64) *PerspectiveCamera {
	return &PerspectiveCamera{
		view: newView(viewport, pose),
		fov:  fov,
		near: near,
		far:  far,
	}
}

// FOV returns the vertical field of view in degrees.
func (c *PerspectiveCamera) FOV() float64 { return c.fov }

// SetFOV sets the vertical field of view in degrees.
func (c *PerspectiveCamera) SetFOV(degrees float64) {
	if degrees != c.fov {
		c.fov = degrees
		c.projDirty = true
	}
}

// Projection recomputes the cached projection matrix if dirty.
func (c *PerspectiveCamera) Projection() mgl64.Mat4 {
	if c.projDirty {
		c.projDirty = false
		c.projMatrix = mgl64.Perspective(mgl64.DegToRad(c.fov), c.viewport.Aspect(), c.near, c.far)
	}
	return c.projMatrix
}

// OrthographicCamera projects without perspective. It has no field of view.
type OrthographicCamera struct {
	view
	height    float64 // world units visible vertically
	near, far float64
}

// NewOrthographicCamera creates an orthographic camera placed at pose.
func NewOrthographicCamera(viewport Rect, pose Pose, height, near, far float64) *OrthographicCamera {
	return &OrthographicCamera{
		view:   newView(viewport, pose),
		height: height,
		near:   near,
		far:    far,
	}
}

// Projection returns the orthographic projection for the current viewport.
func (c *OrthographicCamera) Projection() mgl64.Mat4 {
	if c.projDirty {
		c.projDirty = false
		halfH := c.height / 2
		halfW := halfH * c.viewport.Aspect()
		c.projMatrix = mgl64.Ortho(-halfW, halfW, -halfH, halfH, c.near, c.far)
	}
	return c.projMatrix
}

// SetPose moves cam to pose.Position facing pose.Focus().
func SetPose(cam Camera, pose Pose) {
	cam.SetPosition(pose.Position)
	cam.LookAt(pose.Focus())
}

// WorldToScreen projects a world-space point into cam's viewport. ok is false
// when the point is level with or behind the camera. depth is the normalized
// device depth.
func WorldToScreen(cam Camera, p mgl64.Vec3) (sx, sy, depth float64, ok bool) {
	view := cam.View().Mul4x1(p.Vec4(1))
	if view.Z() >= 0 {
		return 0, 0, 0, false
	}
	clip := cam.Projection().Mul4x1(view)
	w := clip.W()
	if w <= 0 {
		return 0, 0, 0, false
	}
	ndcX, ndcY, ndcZ := clip.X()/w, clip.Y()/w, clip.Z()/w
	vp := cam.Viewport()
	sx = vp.X + (ndcX+1)/2*vp.Width
	sy = vp.Y + (1-ndcY)/2*vp.Height
	return sx, sy, ndcZ, true
}
