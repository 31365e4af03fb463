package game

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// SaucerConfig tunes the hovering target saucer.
type SaucerConfig struct {
	HoverHeight   float64 `mapstructure:"hoverHeight"`   // amplitude
	HoverSpeed    float64 `mapstructure:"hoverSpeed"`    // angular frequency
	SpinSpeed     float64 `mapstructure:"spinSpeed"`     // degrees per second about Y
	MaxHealth     int     `mapstructure:"maxHealth"`
	BodyRadius    float64 `mapstructure:"bodyRadius"`
	MaxHoverPhase float64 `mapstructure:"maxHoverPhase"` // offsets drawn from [0, this)
}

// DefaultSaucerConfig returns the stock saucer tuning.
func DefaultSaucerConfig() SaucerConfig {
	return SaucerConfig{
		HoverHeight:   1.0,
		HoverSpeed:    1.5,
		SpinSpeed:     90,
		MaxHealth:     25,
		BodyRadius:    1.2,
		MaxHoverPhase: 100,
	}
}

// Saucer bobs up and down around its spawn point and spins. Each saucer gets
// a random phase so a group does not move in lockstep.
type Saucer struct {
	label    string
	cfg      SaucerConfig
	start    mgl64.Vec3
	position mgl64.Vec3
	yaw      float64 // degrees
	phase    float64
	clock    float64
	active   bool

	rng      *rand.Rand
	collider *Collider
	health   *Health
}

// NewSaucer spawns a saucer at start.
func NewSaucer(label string, start mgl64.Vec3, cfg SaucerConfig, rng *rand.Rand, world *World, bus *EventBus, log zerolog.Logger) *Saucer {
	s := &Saucer{
		label:    label,
		cfg:      cfg,
		start:    start,
		position: start,
		active:   true,
		rng:      rng,
	}
	s.phase = s.randomPhase()
	if world != nil {
		s.collider = world.AddSphere(label, TagEnemy, LayerDefault, start, cfg.BodyRadius)
		s.health = NewHealth(label, cfg.MaxHealth, s, bus, log)
		world.AttachHealth(s.collider.ID, s.health)
	}
	return s
}

func (s *Saucer) randomPhase() float64 {
	if s.rng == nil || s.cfg.MaxHoverPhase <= 0 {
		return 0
	}
	return s.rng.Float64() * s.cfg.MaxHoverPhase
}

// Label returns the saucer label.
func (s *Saucer) Label() string { return s.label }

// Position returns the current centre.
func (s *Saucer) Position() mgl64.Vec3 { return s.position }

// Yaw returns the spin angle in degrees, wrapped to [-180,180].
func (s *Saucer) Yaw() float64 { return s.yaw }

// Active reports whether the saucer is alive.
func (s *Saucer) Active() bool { return s.active }

// Health returns the saucer's health, nil without a world.
func (s *Saucer) Health() *Health { return s.health }

// SetActive is called by Health on defeat and reset.
func (s *Saucer) SetActive(on bool) {
	s.active = on
	if s.collider != nil {
		s.collider.SetActive(on)
	}
}

// Tick advances the hover and spin.
func (s *Saucer) Tick(dt float64) {
	if !s.active {
		return
	}
	s.clock += dt
	y := s.start.Y() + math.Sin((s.clock+s.phase)*s.cfg.HoverSpeed)*s.cfg.HoverHeight
	s.position = mgl64.Vec3{s.start.X(), y, s.start.Z()}
	s.yaw = normalizeDegrees(s.yaw + s.cfg.SpinSpeed*dt)
	if s.collider != nil {
		s.collider.Center = s.position
	}
}

// ResetMovement re-anchors the hover at the current position with a fresh
// random phase.
func (s *Saucer) ResetMovement() {
	s.start = s.position
	s.phase = s.randomPhase()
}
