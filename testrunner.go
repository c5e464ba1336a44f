package warpgate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action   string    `json:"action"`
	Label    string    `json:"label,omitempty"`
	World    WorldID   `json:"world,omitempty"`
	Position []float64 `json:"position,omitempty"`
	LookAt   []float64 `json:"lookAt,omitempty"`
	Phase    string    `json:"phase,omitempty"`
	Frames   int       `json:"frames,omitempty"`
	MS       int       `json:"ms,omitempty"`

	// Decoded at load time.
	target Pose
	phase  Phase
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences transition requests, clock advances and expectations
// across frames for automated testing. Attach to an Engine via SetTestRunner.
//
// Actions:
//
//	request     request a transition to world, with optional position/lookAt
//	portal      enter the current world's portal leading to world
//	wait        do nothing for frames frames
//	advance     move a ManualClock forward by ms milliseconds
//	expect      record a failure unless phase and/or world match
//	screenshot  call the engine's screenshot function with label
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	failures  []string
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to an Engine via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i := range script.Steps {
		if err := script.Steps[i].decode(); err != nil {
			return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

func (st *testStep) decode() error {
	switch st.Action {
	case "request":
		if st.World == "" {
			return fmt.Errorf("request needs a world")
		}
		pos, err := vec3(st.Position, "position")
		if err != nil {
			return err
		}
		st.target = Pose{Position: pos}
		if st.LookAt != nil {
			look, err := vec3(st.LookAt, "lookAt")
			if err != nil {
				return err
			}
			st.target.LookAt = &look
		}
	case "portal":
		if st.World == "" {
			return fmt.Errorf("portal needs a world")
		}
	case "expect":
		if st.Phase == "" && st.World == "" {
			return fmt.Errorf("expect needs a phase or a world")
		}
		if st.Phase != "" {
			p, ok := ParsePhase(st.Phase)
			if !ok {
				return fmt.Errorf("unknown phase %q", st.Phase)
			}
			st.phase = p
		}
	case "advance":
		if st.MS <= 0 {
			return fmt.Errorf("advance needs a positive ms")
		}
	case "wait", "screenshot":
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

func vec3(v []float64, name string) (mgl64.Vec3, error) {
	switch len(v) {
	case 0:
		return mgl64.Vec3{}, nil
	case 3:
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	default:
		return mgl64.Vec3{}, fmt.Errorf("%s needs 3 components, got %d", name, len(v))
	}
}

// SetTestRunner attaches a TestRunner to the engine. The runner's step method
// is called at the start of Engine.Update each frame.
func (e *Engine) SetTestRunner(runner *TestRunner) {
	e.runner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Failures returns the messages of every failed expect step.
func (r *TestRunner) Failures() []string {
	return r.failures
}

// step advances the test runner by one frame. Called from Engine.Update.
func (r *TestRunner) step(e *Engine) {
	if r.done {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		if r.waitCount == 0 && r.cursor >= len(r.steps) {
			r.done = true
		}
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "request":
		e.RequestTransition(st.World, st.target)
	case "portal":
		p, ok := e.PortalTo(st.World)
		if !ok {
			r.fail(st, "no portal to %s in %s", st.World, e.store.CurrentWorld())
			break
		}
		e.EnterPortal(p)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "advance":
		mc, ok := e.clock.(*ManualClock)
		if !ok {
			e.logger.Warn("advance step ignored: engine clock is not manual")
			break
		}
		mc.Advance(time.Duration(st.MS) * time.Millisecond)
	case "expect":
		if st.Phase != "" && e.machine.Phase() != st.phase {
			r.fail(st, "phase = %s, want %s", e.machine.Phase(), st.phase)
		}
		if st.World != "" && e.store.CurrentWorld() != st.World {
			r.fail(st, "world = %s, want %s", e.store.CurrentWorld(), st.World)
		}
	case "screenshot":
		if e.screenshot != nil {
			e.screenshot(st.Label)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}

func (r *TestRunner) fail(st testStep, format string, args ...any) {
	msg := fmt.Sprintf("step %d (%s): ", r.cursor-1, st.Action) + fmt.Sprintf(format, args...)
	if st.Label != "" {
		msg += " [" + st.Label + "]"
	}
	r.failures = append(r.failures, msg)
}
