package warpgate

// Approach glides the camera from a fixed start pose toward a transition
// target. It holds no per-transition state.
type Approach struct {
	Start Pose
	// Curve shapes progress; nil means Smoothstep.
	Curve Func
}

// At returns the camera pose for the given progress toward target. Progress
// outside [0, 1] is clamped.
func (a Approach) At(target Pose, progress float64) Pose {
	curve := a.Curve
	if curve == nil {
		curve = Smoothstep
	}
	e := curve(Clamp01(progress))
	return LookingAt(LerpVec3(a.Start.Position, target.Position, e), target.Focus())
}

// Apply moves cam to the interpolated pose. Only called while the machine is
// in PhaseApproach.
func (a Approach) Apply(cam Camera, target Pose, progress float64) {
	SetPose(cam, a.At(target, progress))
}
