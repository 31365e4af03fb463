package viewer

import (
	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// binding maps keys to an action. repeat re-sends the press every frame the
// key is held, which turns the fire button into autofire.
type binding struct {
	action game.Action
	keys   []ebiten.Key
	repeat bool
}

var defaultBindings = []binding{
	{action: game.ActionBoost, keys: []ebiten.Key{ebiten.KeyShiftLeft, ebiten.KeyShiftRight}},
	{action: game.ActionBrake, keys: []ebiten.Key{ebiten.KeyControlLeft, ebiten.KeyControlRight}},
	{action: game.ActionFire, keys: []ebiten.Key{ebiten.KeySpace}, repeat: true},
	{action: game.ActionRollLeft, keys: []ebiten.Key{ebiten.KeyQ}},
	{action: game.ActionRollRight, keys: []ebiten.Key{ebiten.KeyE}},
	{action: game.ActionToggleMode, keys: []ebiten.Key{ebiten.KeyF}},
	{action: game.ActionPause, keys: []ebiten.Key{ebiten.KeyEscape, ebiten.KeyP}},
}

// Keyboard is a game.InputSource over Ebiten key state. Actions are sent as
// edges: one press event when a binding goes down, one release when it lets go.
type Keyboard struct {
	bindings []binding
	prevDown map[game.Action]bool
	isDown   func(ebiten.Key) bool
}

var _ game.InputSource = (*Keyboard)(nil)

// NewKeyboard returns the default layout: WASD or arrows steer, Shift boosts,
// Ctrl brakes, Space fires, Q/E roll, F toggles flight mode, Esc or P pauses.
func NewKeyboard() *Keyboard {
	return &Keyboard{
		bindings: defaultBindings,
		prevDown: make(map[game.Action]bool),
		isDown:   ebiten.IsKeyPressed,
	}
}

// Poll implements game.InputSource.
func (k *Keyboard) Poll() game.InputFrame {
	var frame game.InputFrame
	frame.Steer = k.steer()

	for _, b := range k.bindings {
		down := false
		for _, key := range b.keys {
			if k.isDown(key) {
				down = true
				break
			}
		}
		was := k.prevDown[b.action]
		switch {
		case down && (!was || b.repeat):
			frame.Events = append(frame.Events, game.InputEvent{Action: b.action, Pressed: true})
		case !down && was:
			frame.Events = append(frame.Events, game.InputEvent{Action: b.action, Pressed: false})
		}
		k.prevDown[b.action] = down
	}
	return frame
}

func (k *Keyboard) steer() mgl64.Vec2 {
	var s mgl64.Vec2
	if k.isDown(ebiten.KeyA) || k.isDown(ebiten.KeyArrowLeft) {
		s[0]--
	}
	if k.isDown(ebiten.KeyD) || k.isDown(ebiten.KeyArrowRight) {
		s[0]++
	}
	if k.isDown(ebiten.KeyW) || k.isDown(ebiten.KeyArrowUp) {
		s[1]++
	}
	if k.isDown(ebiten.KeyS) || k.isDown(ebiten.KeyArrowDown) {
		s[1]--
	}
	if s.Len() > 1 {
		s = s.Normalize()
	}
	return s
}
