package main

import (
	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/go-gl/mathgl/mgl64"
)

// policy selects how the autopilot flies.
type policy string

const (
	policyPassive policy = "passive" // no input, rides the rails
	policyRings   policy = "rings"   // steers through the next ring
	policyGunner  policy = "gunner"  // chases the nearest enemy and fires
)

func validPolicy(p policy) bool {
	switch p {
	case policyPassive, policyRings, policyGunner:
		return true
	}
	return false
}

const (
	engageRange = 60.0 // enemies further ahead than this are ignored
	steerGain   = 0.5  // stick deflection per unit of lateral error
)

// autopilot is a game.InputSource that reads the session and steers toward a
// target in rail-local space.
type autopilot struct {
	s      *game.Session
	policy policy
}

var _ game.InputSource = (*autopilot)(nil)

func (a *autopilot) Poll() game.InputFrame {
	var frame game.InputFrame
	if a.policy == policyPassive {
		return frame
	}

	target, ok := a.target()
	if !ok {
		return frame
	}
	frame.Steer = a.steerToward(target)
	if a.policy == policyGunner {
		frame.Events = append(frame.Events, game.InputEvent{Action: game.ActionFire, Pressed: true})
	}
	return frame
}

// toLocal converts a world point into the current rail frame.
func (a *autopilot) toLocal(p mgl64.Vec3) mgl64.Vec3 {
	origin, rot := a.s.Path.Frame()
	return rot.Conjugate().Rotate(p.Sub(origin))
}

// target picks the closest candidate ahead of the ship.
func (a *autopilot) target() (mgl64.Vec3, bool) {
	var candidates []mgl64.Vec3
	switch a.policy {
	case policyRings:
		for _, r := range a.s.Rings {
			if !r.Passed() {
				candidates = append(candidates, r.Center())
			}
		}
	case policyGunner:
		for _, sc := range a.s.Saucers {
			if sc.Active() {
				candidates = append(candidates, sc.Position())
			}
		}
		for _, t := range a.s.Turrets {
			if t.Active() {
				candidates = append(candidates, t.HeadPosition())
			}
		}
	}

	ship := a.s.Flight.LocalOffset()
	best, bestZ := mgl64.Vec3{}, engageRange
	found := false
	for _, c := range candidates {
		local := a.toLocal(c)
		dz := local.Z() - ship.Z()
		if dz <= 0 || dz > bestZ {
			continue
		}
		best, bestZ, found = local, dz, true
	}
	return best, found
}

// steerToward returns the stick input that closes the lateral gap to a
// rail-local target, honouring the invert-Y setting.
func (a *autopilot) steerToward(local mgl64.Vec3) mgl64.Vec2 {
	ship := a.s.Flight.LocalOffset()
	dx := mgl64.Clamp((local.X()-ship.X())*steerGain, -1, 1)
	dy := mgl64.Clamp((local.Y()-ship.Y())*steerGain, -1, 1)
	if a.s.Aim.InvertY() {
		dy = -dy
	}
	return mgl64.Vec2{dx, dy}
}
