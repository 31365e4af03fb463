package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// TurretConfig is the tuning of one turret. Angles are degrees, times seconds.
type TurretConfig struct {
	DetectionRadius float64    `mapstructure:"detectionRadius"`
	FieldOfView     float64    `mapstructure:"fieldOfView"`   // total cone width
	RotationSpeed   float64    `mapstructure:"rotationSpeed"` // slerp rate per second
	FireRate        float64    `mapstructure:"fireRate"`      // seconds between shots
	AimTolerance    float64    `mapstructure:"aimTolerance"`  // max aim error to fire
	MaxHealth       int        `mapstructure:"maxHealth"`
	BodyRadius      float64    `mapstructure:"bodyRadius"`
	HeadOffset      mgl64.Vec3 `mapstructure:"-"` // head position relative to base
	MuzzleOffset    mgl64.Vec3 `mapstructure:"-"` // muzzle relative to head, in head space
}

// DefaultTurretConfig returns the stock turret tuning.
func DefaultTurretConfig() TurretConfig {
	return TurretConfig{
		DetectionRadius: 25,
		FieldOfView:     90,
		RotationSpeed:   5,
		FireRate:        1,
		AimTolerance:    5,
		MaxHealth:       25,
		BodyRadius:      1,
		HeadOffset:      mgl64.Vec3{0, 1, 0},
		MuzzleOffset:    mgl64.Vec3{0, 0, 1.5},
	}
}

// TargetingState is the per-tick result of a turret's checks.
type TargetingState struct {
	InRange               bool
	InFOV                 bool
	HasLineOfSight        bool
	AimError              float64 // degrees between head forward and target
	FireCooldownRemaining float64
}

// Engaged reports whether all three gating checks pass.
func (s TargetingState) Engaged() bool {
	return s.InRange && s.InFOV && s.HasLineOfSight
}

// Target is something a turret can aim at.
type Target interface {
	TargetPosition() mgl64.Vec3
	TargetCollider() EntityID
}

// Turret is a stationary enemy that tracks and shoots a single target.
type Turret struct {
	label     string
	cfg       TurretConfig
	base      mgl64.Vec3
	facing    mgl64.Quat
	headRot   mgl64.Quat
	fireTimer float64
	state     TargetingState
	enabled   bool // script enabled; false after a setup failure
	active    bool // alive; false once defeated

	target   Target
	pool     *ProjectilePool
	world    *World
	collider *Collider
	health   *Health
	log      zerolog.Logger

	// Shots counts projectiles fired since construction.
	Shots int
}

// NewTurret places a turret at base facing along facing. A missing target or
// pool is logged and leaves the turret disabled.
func NewTurret(label string, base mgl64.Vec3, facing mgl64.Quat, cfg TurretConfig, target Target, pool *ProjectilePool, world *World, bus *EventBus, log zerolog.Logger) *Turret {
	t := &Turret{
		label:     label,
		cfg:       cfg,
		base:      base,
		facing:    facing.Normalize(),
		headRot:   facing.Normalize(),
		fireTimer: cfg.FireRate,
		enabled:   true,
		active:    true,
		target:    target,
		pool:      pool,
		world:     world,
		log:       log.With().Str("turret", label).Logger(),
	}
	if world != nil {
		t.collider = world.AddSphere(label, TagEnemy, LayerDefault, base, cfg.BodyRadius)
		t.health = NewHealth(label, cfg.MaxHealth, t, bus, log)
		world.AttachHealth(t.collider.ID, t.health)
	}
	if target == nil {
		t.log.Warn().Msg("no target found, turret disabled")
		t.enabled = false
	}
	if pool == nil || world == nil {
		t.log.Error().Msg("missing projectile pool or world, turret disabled")
		t.enabled = false
	}
	return t
}

// Label returns the turret label.
func (t *Turret) Label() string { return t.label }

// Config returns the turret tuning.
func (t *Turret) Config() TurretConfig { return t.cfg }

// State returns the most recent targeting evaluation.
func (t *Turret) State() TargetingState { return t.state }

// Enabled reports whether the turret is running its AI.
func (t *Turret) Enabled() bool { return t.enabled }

// Active reports whether the turret is alive.
func (t *Turret) Active() bool { return t.active }

// Health returns the turret's health, nil without a world.
func (t *Turret) Health() *Health { return t.health }

// Base returns the turret base position.
func (t *Turret) Base() mgl64.Vec3 { return t.base }

// HeadPosition returns the world position of the turret head.
func (t *Turret) HeadPosition() mgl64.Vec3 { return t.base.Add(t.cfg.HeadOffset) }

// HeadRotation returns the current head orientation.
func (t *Turret) HeadRotation() mgl64.Quat { return t.headRot }

// MuzzlePosition returns the world position projectiles spawn at.
func (t *Turret) MuzzlePosition() mgl64.Vec3 {
	return t.HeadPosition().Add(t.headRot.Rotate(t.cfg.MuzzleOffset))
}

// FireTimer returns accumulated time toward the next shot.
func (t *Turret) FireTimer() float64 { return t.fireTimer }

// SetActive is called by Health on defeat and reset.
func (t *Turret) SetActive(on bool) {
	t.active = on
	if t.collider != nil {
		t.collider.SetActive(on)
	}
}

// Tick evaluates range, cone and line of sight; when all pass it tracks the
// target and fires once the fire timer and aim error allow. While any check
// fails the head holds still and the fire timer is frozen.
func (t *Turret) Tick(dt float64) {
	if !t.enabled || !t.active {
		return
	}
	t.evaluate()
	if !t.state.Engaged() {
		return
	}

	dir := t.directionToTarget()
	t.headRot = slerpQuat(t.headRot, LookRotation(dir), t.cfg.RotationSpeed*dt)
	t.fireTimer += dt

	if t.fireTimer >= t.cfg.FireRate {
		t.state.AimError = AngleBetween(Forward(t.headRot), dir)
		if t.state.AimError < t.cfg.AimTolerance {
			t.fire()
			t.fireTimer = 0
		}
	}
	t.state.FireCooldownRemaining = math.Max(0, t.cfg.FireRate-t.fireTimer)
}

// evaluate refreshes all three checks. They are computed even when an earlier
// one fails so debug overlays can show each.
func (t *Turret) evaluate() {
	targetPos := t.target.TargetPosition()
	dir := t.directionToTarget()

	t.state.InRange = targetPos.Sub(t.base).Len() < t.cfg.DetectionRadius

	t.state.AimError = AngleBetween(Forward(t.headRot), dir)
	t.state.InFOV = t.state.AimError < t.cfg.FieldOfView/2

	var self EntityID
	if t.collider != nil {
		self = t.collider.ID
	}
	hit, ok := t.world.Raycast(t.HeadPosition(), dir, t.cfg.DetectionRadius, self)
	t.state.HasLineOfSight = ok && hit.Collider.ID == t.target.TargetCollider()

	t.state.FireCooldownRemaining = math.Max(0, t.cfg.FireRate-t.fireTimer)
}

func (t *Turret) directionToTarget() mgl64.Vec3 {
	d := t.target.TargetPosition().Sub(t.HeadPosition())
	if d.Len() < 1e-9 {
		return Forward(t.headRot)
	}
	return d.Normalize()
}

func (t *Turret) fire() {
	t.pool.Fire(t.MuzzlePosition(), t.headRot, TagEnemy)
	t.Shots++
	t.log.Debug().Int("shots", t.Shots).Msg("fired")
}

// ConeEdges returns the left and right edge directions of the view cone in
// the horizontal plane, for debug drawing.
func (t *Turret) ConeEdges() (left, right mgl64.Vec3) {
	half := t.cfg.FieldOfView / 2
	fwd := Forward(t.headRot)
	return YawQuat(-half).Rotate(fwd), YawQuat(half).Rotate(fwd)
}

// Reset revives the turret with its original facing and a primed fire timer.
func (t *Turret) Reset() {
	t.headRot = t.facing
	t.fireTimer = t.cfg.FireRate
	t.state = TargetingState{}
	if t.health != nil {
		t.health.Reset()
	}
}
