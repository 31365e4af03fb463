package game

import "github.com/go-gl/mathgl/mgl64"

// Action is a discrete player command.
type Action int

const (
	ActionBoost Action = iota
	ActionBrake
	ActionFire
	ActionRollLeft
	ActionRollRight
	ActionToggleMode
	ActionPause
)

func (a Action) String() string {
	switch a {
	case ActionBoost:
		return "boost"
	case ActionBrake:
		return "brake"
	case ActionFire:
		return "fire"
	case ActionRollLeft:
		return "roll_left"
	case ActionRollRight:
		return "roll_right"
	case ActionToggleMode:
		return "toggle_mode"
	case ActionPause:
		return "pause"
	default:
		return "unknown"
	}
}

// InputEvent is an edge: Pressed is true on press and false on release.
type InputEvent struct {
	Action  Action
	Pressed bool
}

// InputFrame is everything the input layer reports for one frame.
type InputFrame struct {
	Steer  mgl64.Vec2 // stick in [-1,1]², +Y up
	Events []InputEvent
}

// InputSource is polled once per frame by the driver.
type InputSource interface {
	Poll() InputFrame
}

// ScriptedInput replays frames in order, then repeats the last steer with no
// events. The harness and headless report use it as an autopilot.
type ScriptedInput struct {
	frames []InputFrame
	next   int
}

// NewScriptedInput creates a source from frames.
func NewScriptedInput(frames ...InputFrame) *ScriptedInput {
	return &ScriptedInput{frames: frames}
}

// Push appends frames to the script.
func (s *ScriptedInput) Push(frames ...InputFrame) {
	s.frames = append(s.frames, frames...)
}

// Poll returns the next scripted frame.
func (s *ScriptedInput) Poll() InputFrame {
	if len(s.frames) == 0 {
		return InputFrame{}
	}
	if s.next < len(s.frames) {
		f := s.frames[s.next]
		s.next++
		return f
	}
	return InputFrame{Steer: s.frames[len(s.frames)-1].Steer}
}
