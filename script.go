package birch

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// scriptStep represents a single action in an input script.
type scriptStep struct {
	Action  string   `json:"action"`
	Actions []string `json:"actions,omitempty"`
	DX      float64  `json:"dx,omitempty"`
	DY      float64  `json:"dy,omitempty"`
	Width   int      `json:"width,omitempty"`
	Height  int      `json:"height,omitempty"`
	Frames  int      `json:"frames,omitempty"`

	set ActionSet
}

// inputScript is the top-level JSON structure for an input script.
type inputScript struct {
	Steps []scriptStep `json:"steps"`
}

// InputScript replays scripted input into an InputBuffer one frame at a time,
// for headless runs and automated tests. Every step takes at least one frame.
//
//	{"steps": [
//	  {"action": "hold", "actions": ["move_forward", "yaw_left"], "frames": 30},
//	  {"action": "release"},
//	  {"action": "press", "actions": ["toggle_doors"]},
//	  {"action": "mouse", "dx": 12, "dy": -4},
//	  {"action": "resize", "width": 1280, "height": 720},
//	  {"action": "wait", "frames": 60}
//	]}
//
// Held actions stay down until the next hold or release step.
type InputScript struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	held      ActionSet
	done      bool
}

// LoadInputScript parses a JSON input script. Unknown step kinds and action
// names are rejected.
func LoadInputScript(jsonData []byte) (*InputScript, error) {
	var script inputScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, errors.Wrap(err, "parse input script")
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse input script: no steps")
	}
	for i := range script.Steps {
		st := &script.Steps[i]
		switch st.Action {
		case "hold", "press":
			for _, name := range st.Actions {
				a, err := ParseAction(name)
				if err != nil {
					return nil, errors.Wrapf(err, "parse input script: step %d", i)
				}
				st.set = st.set.With(a)
			}
		case "release", "mouse", "wait":
		case "resize":
			if st.Width <= 0 || st.Height <= 0 {
				return nil, errors.Errorf("parse input script: step %d: resize to %dx%d", i, st.Width, st.Height)
			}
		default:
			return nil, errors.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &InputScript{steps: script.Steps}, nil
}

// Done reports whether all steps in the script have been executed.
func (r *InputScript) Done() bool {
	return r.done
}

// Step publishes one frame of scripted input to buf.
func (r *InputScript) Step(buf *InputBuffer) {
	if r.done {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		buf.Publish(InputState{Held: r.held})
		r.checkDone()
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	var s InputState
	switch st.Action {
	case "hold":
		r.held = st.set
	case "release":
		r.held = 0
	case "press":
		s.Pressed = st.set
	case "mouse":
		s.MouseDX, s.MouseDY = st.DX, st.DY
	case "resize":
		s.Resized = true
		s.Width, s.Height = st.Width, st.Height
	}
	s.Held = r.held
	buf.Publish(s)

	if st.Frames > 1 {
		r.waitCount = st.Frames - 1 // this frame counts as one
	}
	r.checkDone()
}

func (r *InputScript) checkDone() {
	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}
