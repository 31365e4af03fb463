package game

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

const (
	deathDuration   = 2.0   // seconds
	deathSpinSpeed  = 360.0 // degrees per second about the ship's forward axis
	deathDriftSpeed = 5.0   // units per second down and forward
	completeDelay   = 0.5   // seconds before the win screen
)

// sequenceState is the lifecycle shared by one-shot cutscenes.
type sequenceState int

const (
	sequenceIdle sequenceState = iota
	sequenceRunning
	sequenceDone
)

// DeathSequence plays the ship's crash after the player is defeated, then
// publishes GameOver and asks the session to pause.
type DeathSequence struct {
	state    sequenceState
	elapsed  float64
	position mgl64.Vec3
	rotation mgl64.Quat
	spin     float64

	bus    *EventBus
	log    zerolog.Logger
	onDone func()
}

// NewDeathSequence creates an idle sequence. onDone runs once when it ends.
func NewDeathSequence(bus *EventBus, log zerolog.Logger, onDone func()) *DeathSequence {
	return &DeathSequence{
		rotation: mgl64.QuatIdent(),
		bus:      bus,
		log:      log.With().Str("cutscene", "death").Logger(),
		onDone:   onDone,
	}
}

// Start begins the sequence from the ship's pose. Calls while running or
// after completion are ignored.
func (d *DeathSequence) Start(pos mgl64.Vec3, rot mgl64.Quat) {
	if d.state != sequenceIdle {
		return
	}
	d.state = sequenceRunning
	d.elapsed = 0
	d.spin = 0
	d.position = pos
	d.rotation = rot
	d.log.Info().Msg("death sequence started")
	d.bus.Publish(Event{Kind: EventDeathStarted, Source: "player"})
}

// Running reports whether the sequence is playing.
func (d *DeathSequence) Running() bool { return d.state == sequenceRunning }

// Done reports whether the sequence has finished.
func (d *DeathSequence) Done() bool { return d.state == sequenceDone }

// Elapsed returns seconds since Start.
func (d *DeathSequence) Elapsed() float64 { return d.elapsed }

// Pose returns the wreck's position and its rotation including the spin.
func (d *DeathSequence) Pose() (mgl64.Vec3, mgl64.Quat) {
	return d.position, d.rotation.Mul(Euler(0, 0, d.spin))
}

// Tick spins the wreck and drifts it down and forward.
func (d *DeathSequence) Tick(dt float64) {
	if d.state != sequenceRunning {
		return
	}
	d.elapsed += dt
	d.spin = normalizeDegrees(d.spin + deathSpinSpeed*dt)
	drift := Forward(d.rotation).Sub(axisUp).Mul(deathDriftSpeed * dt)
	d.position = d.position.Add(drift)

	if d.elapsed >= deathDuration {
		d.state = sequenceDone
		d.log.Info().Msg("game over")
		d.bus.Publish(Event{Kind: EventGameOver, Source: "player"})
		if d.onDone != nil {
			d.onDone()
		}
	}
}

// Reset returns the sequence to idle.
func (d *DeathSequence) Reset() {
	d.state = sequenceIdle
	d.elapsed = 0
	d.spin = 0
}

// CompleteSequence shows the win screen a short moment after the end of the
// path is reached.
type CompleteSequence struct {
	state   sequenceState
	elapsed float64
	bus     *EventBus
	log     zerolog.Logger
	onDone  func()
}

// NewCompleteSequence creates an idle sequence. onDone runs once when it ends.
func NewCompleteSequence(bus *EventBus, log zerolog.Logger, onDone func()) *CompleteSequence {
	return &CompleteSequence{
		bus:    bus,
		log:    log.With().Str("cutscene", "complete").Logger(),
		onDone: onDone,
	}
}

// Start begins the delay. Repeated calls are ignored.
func (c *CompleteSequence) Start() {
	if c.state != sequenceIdle {
		return
	}
	c.state = sequenceRunning
	c.elapsed = 0
}

// Running reports whether the delay is counting.
func (c *CompleteSequence) Running() bool { return c.state == sequenceRunning }

// Done reports whether Victory has been published.
func (c *CompleteSequence) Done() bool { return c.state == sequenceDone }

// Tick counts down to the win screen.
func (c *CompleteSequence) Tick(dt float64) {
	if c.state != sequenceRunning {
		return
	}
	c.elapsed += dt
	if c.elapsed < completeDelay {
		return
	}
	c.state = sequenceDone
	c.log.Info().Msg("victory")
	c.bus.Publish(Event{Kind: EventVictory, Source: "player"})
	if c.onDone != nil {
		c.onDone()
	}
}

// Reset returns the sequence to idle.
func (c *CompleteSequence) Reset() {
	c.state = sequenceIdle
	c.elapsed = 0
}
