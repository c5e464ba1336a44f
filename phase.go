package warpgate

import "time"

// Phase is one stage of the transition lifecycle. Phases always run in
// declaration order and wrap back to PhaseIdle.
type Phase uint8

const (
	PhaseIdle     Phase = iota // no transition in flight
	PhaseApproach              // camera glides toward the target
	PhaseFlash                 // full-screen white overlay
	PhaseWarp                  // streak field and FOV pulse
)

var phaseNames = [...]string{"idle", "approach", "flash", "warp"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Next returns the phase that follows p.
func (p Phase) Next() Phase {
	if p >= PhaseWarp {
		return PhaseIdle
	}
	return p + 1
}

// ParsePhase converts a phase name back to a Phase.
func ParsePhase(s string) (Phase, bool) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), true
		}
	}
	return PhaseIdle, false
}

// PhaseChange describes one phase boundary.
type PhaseChange struct {
	From, To Phase
	Request  TransitionRequest
	// At is the clock time the new phase is considered to have started.
	At time.Duration
}
