package shelf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// scriptStep represents a single action in a gesture script.
type scriptStep struct {
	Action string   `json:"action"`
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	FromX  float64  `json:"fromX,omitempty"`
	FromY  float64  `json:"fromY,omitempty"`
	ToX    float64  `json:"toX,omitempty"`
	ToY    float64  `json:"toY,omitempty"`
	DeltaY float64  `json:"deltaY,omitempty"`
	Key    string   `json:"key,omitempty"`
	Mods   []string `json:"mods,omitempty"`
	Frames int      `json:"frames,omitempty"`
}

// gestureScript is the top-level JSON structure for a gesture script.
type gestureScript struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays a gesture script through a Canvas, one step per
// Update once previously injected events have drained. Attach it with
// Canvas.SetScriptRunner.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

var scriptKeys = map[string]Key{
	"left":  KeyArrowLeft,
	"right": KeyArrowRight,
	"up":    KeyArrowUp,
	"down":  KeyArrowDown,
	"plus":  KeyPlus,
	"+":     KeyPlus,
	"minus": KeyMinus,
	"-":     KeyMinus,
	"0":     Key0,
}

var scriptMods = map[string]KeyModifiers{
	"shift": ModShift,
	"ctrl":  ModCtrl,
	"alt":   ModAlt,
	"meta":  ModMeta,
}

// LoadGestureScript parses a JSON gesture script:
//
//	{"steps": [
//	  {"action": "drag", "fromX": 100, "fromY": 100, "toX": 40, "toY": 70, "frames": 6},
//	  {"action": "wheel", "x": 400, "y": 300, "deltaY": -1, "mods": ["ctrl"]},
//	  {"action": "key", "key": "0"},
//	  {"action": "wait", "frames": 30}
//	]}
//
// Actions are press, move, release, drag, wheel, key, and wait.
func LoadGestureScript(jsonData []byte) (*ScriptRunner, error) {
	var script gestureScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse gesture script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse gesture script: no steps")
	}
	for i, st := range script.Steps {
		if err := validateStep(st); err != nil {
			return nil, fmt.Errorf("parse gesture script: step %d: %w", i, err)
		}
	}
	return &ScriptRunner{steps: script.Steps}, nil
}

func validateStep(st scriptStep) error {
	switch st.Action {
	case "press", "move", "release", "drag", "wheel", "wait":
	case "key":
		if _, ok := scriptKeys[strings.ToLower(st.Key)]; !ok {
			return fmt.Errorf("unknown key %q", st.Key)
		}
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	for _, m := range st.Mods {
		if _, ok := scriptMods[strings.ToLower(m)]; !ok {
			return fmt.Errorf("unknown modifier %q", m)
		}
	}
	return nil
}

func stepModifiers(st scriptStep) KeyModifiers {
	var mods KeyModifiers
	for _, m := range st.Mods {
		mods |= scriptMods[strings.ToLower(m)]
	}
	return mods
}

// SetScriptRunner attaches a ScriptRunner to the canvas. The runner's step
// method is called from Canvas.Update before injected input is processed.
func (c *Canvas) SetScriptRunner(runner *ScriptRunner) {
	c.runner = runner
}

// Done reports whether all steps in the script have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *ScriptRunner) step(c *Canvas) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(c.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	mods := stepModifiers(st)

	switch st.Action {
	case "press":
		c.injectPointer(synthDown, PointerEvent{X: st.X, Y: st.Y, Modifiers: mods})
	case "move":
		c.injectPointer(synthMove, PointerEvent{X: st.X, Y: st.Y, Modifiers: mods})
	case "release":
		c.injectPointer(synthUp, PointerEvent{X: st.X, Y: st.Y, Modifiers: mods})
	case "drag":
		c.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wheel":
		c.InjectWheel(WheelEvent{X: st.X, Y: st.Y, DeltaY: st.DeltaY, Modifiers: mods})
	case "key":
		c.InjectKey(scriptKeys[strings.ToLower(st.Key)], mods)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(c.injectQueue) == 0 {
		r.done = true
	}
}
