package game

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// ProjectileSpec holds the fixed tuning of every projectile in a pool.
type ProjectileSpec struct {
	Speed    float64 `mapstructure:"speed"`    // units per second along local +Z
	Lifetime float64 `mapstructure:"lifetime"` // seconds before self-release
	Damage   int     `mapstructure:"damage"`
	Radius   float64 `mapstructure:"radius"` // collision radius used for the swept test
}

// DefaultProjectileSpec matches the laser prefab: 100 u/s for 2 s, 10 damage.
func DefaultProjectileSpec() ProjectileSpec {
	return ProjectileSpec{Speed: 100, Lifetime: 2, Damage: 10, Radius: 0.1}
}

// Projectile is a pooled laser bolt.
//
// States: inactive (queued in its pool) and flying. It returns itself to the
// pool at most once per launch, on a qualifying hit or on timeout.
type Projectile struct {
	index    int
	active   bool
	Position mgl64.Vec3
	Rotation mgl64.Quat
	ownerTag string
	elapsed  float64
	spec     ProjectileSpec
	pool     *ProjectilePool
	world    *World
	log      zerolog.Logger

	// LastHit is the label of the collider this projectile last struck.
	LastHit string
}

func newProjectile(index int, pool *ProjectilePool, spec ProjectileSpec, world *World, log zerolog.Logger) *Projectile {
	return &Projectile{
		index:    index,
		Rotation: mgl64.QuatIdent(),
		spec:     spec,
		pool:     pool,
		world:    world,
		log:      log,
	}
}

func (p *Projectile) activate() {
	p.active = true
	p.elapsed = 0
	p.LastHit = ""
}

// Active reports whether the projectile is in flight.
func (p *Projectile) Active() bool { return p.active }

// OwnerTag returns the tag this projectile will not hit.
func (p *Projectile) OwnerTag() string { return p.ownerTag }

// Elapsed returns seconds since launch.
func (p *Projectile) Elapsed() float64 { return p.elapsed }

// Spec returns the projectile tuning.
func (p *Projectile) Spec() ProjectileSpec { return p.spec }

// Pool returns the pool that allocated this projectile.
func (p *Projectile) Pool() *ProjectilePool { return p.pool }

// Launch places the projectile and sets its owner. Call right after Acquire.
func (p *Projectile) Launch(pos mgl64.Vec3, rot mgl64.Quat, ownerTag string) {
	p.Position = pos
	p.Rotation = rot
	p.ownerTag = ownerTag
	p.elapsed = 0
}

// Tick moves the projectile and resolves hits. A hit during this tick wins
// over a timeout in the same tick.
func (p *Projectile) Tick(dt float64) {
	if !p.active {
		return
	}
	from := p.Position
	p.Position = from.Add(Forward(p.Rotation).Mul(p.spec.Speed * dt))
	p.elapsed += dt

	if p.world != nil {
		for _, hit := range p.world.Sweep(from, p.Position, p.spec.Radius) {
			if p.hit(hit.Collider) {
				return
			}
		}
	}
	if p.elapsed >= p.spec.Lifetime {
		p.release()
	}
}

// hit applies a collision with c and reports whether it consumed the
// projectile. Passthrough colliders and the owner's own tag are ignored.
func (p *Projectile) hit(c *Collider) bool {
	if c.Layer == LayerPassthrough || c.Tag == p.ownerTag {
		return false
	}
	p.LastHit = c.Label
	if h, ok := p.world.HealthOf(c.ID); ok {
		h.TakeDamage(p.spec.Damage)
	}
	p.release()
	return true
}

func (p *Projectile) release() {
	if !p.active {
		return
	}
	if p.pool == nil {
		p.log.Warn().Int("index", p.index).Msg("projectile has no pool, deactivating in place")
		p.active = false
		return
	}
	if err := p.pool.Release(p); err != nil {
		p.log.Warn().Err(err).Int("index", p.index).Msg("release failed, deactivating in place")
		p.active = false
	}
}
