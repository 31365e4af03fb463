package game

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

const (
	ringPassDelay = 0.1  // seconds a passed ring lingers before vanishing
	ringSpinSpeed = 30.0 // degrees per second
	ringRadius    = 3.0
)

// RingGate is a collectible ring. Flying through it once counts one ring;
// it disappears shortly after and can be re-armed with Reset.
type RingGate struct {
	label       string
	center      mgl64.Vec3
	yaw         float64
	passed      bool
	visible     bool
	hideTimer   float64
	hidePending bool

	collider *Collider
	world    *World
	progress *ProgressTracker
	bus      *EventBus
	rec      Recorder
	log      zerolog.Logger
}

// NewRingGate registers a passthrough ring collider at center.
func NewRingGate(label string, center mgl64.Vec3, world *World, progress *ProgressTracker, bus *EventBus, rec Recorder, log zerolog.Logger) *RingGate {
	r := &RingGate{
		label:    label,
		center:   center,
		visible:  true,
		world:    world,
		progress: progress,
		bus:      bus,
		rec:      recorderOrNop(rec),
		log:      log,
	}
	if world != nil {
		r.collider = world.AddSphere(label, TagRing, LayerPassthrough, center, ringRadius)
	}
	return r
}

// Label returns the ring label.
func (r *RingGate) Label() string { return r.label }

// Center returns the ring centre.
func (r *RingGate) Center() mgl64.Vec3 { return r.center }

// Yaw returns the display spin in degrees.
func (r *RingGate) Yaw() float64 { return r.yaw }

// Passed reports whether the ring was collected.
func (r *RingGate) Passed() bool { return r.passed }

// Visible reports whether the ring is still shown.
func (r *RingGate) Visible() bool { return r.visible }

// Tick spins the ring, checks for the player and runs the hide timer.
func (r *RingGate) Tick(dt float64) {
	if !r.visible {
		return
	}
	r.yaw = normalizeDegrees(r.yaw + ringSpinSpeed*dt)

	if r.hidePending {
		r.hideTimer -= dt
		if r.hideTimer <= 0 {
			r.hidePending = false
			r.visible = false
			if r.collider != nil {
				r.collider.SetActive(false)
			}
		}
		return
	}
	if r.passed || r.world == nil {
		return
	}
	for _, c := range r.world.Overlapping(r.center, ringRadius) {
		if c.Tag == TagPlayer {
			r.pass()
			return
		}
	}
}

func (r *RingGate) pass() {
	r.passed = true
	r.hidePending = true
	r.hideTimer = ringPassDelay
	r.log.Debug().Str("ring", r.label).Msg("ring passed")
	r.rec.RingPassed()
	r.bus.Publish(Event{Kind: EventRingPassed, Source: r.label})
	if r.progress == nil {
		r.log.Warn().Str("ring", r.label).Msg("no progress tracker, ring not counted")
		return
	}
	r.progress.AddRing(1)
}

// Reset re-arms and shows the ring.
func (r *RingGate) Reset() {
	r.passed = false
	r.visible = true
	r.hidePending = false
	r.hideTimer = 0
	if r.collider != nil {
		r.collider.SetActive(true)
	}
}
