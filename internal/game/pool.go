package game

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

var (
	// ErrForeignProjectile is returned when releasing a projectile into a pool
	// that did not allocate it.
	ErrForeignProjectile = errors.New("projectile belongs to another pool")
	// ErrNotActive is returned when releasing a projectile that is already
	// back in its pool.
	ErrNotActive = errors.New("projectile is not active")
)

// ProjectilePool is a growable pool of projectiles.
//
// Entries are allocated up front and on exhaustion; they are never freed.
// Inactive entries wait in a FIFO queue so Acquire and Release are O(1).
type ProjectilePool struct {
	name    string
	spec    ProjectileSpec
	entries []*Projectile
	free    []*Projectile
	world   *World
	bus     *EventBus
	rec     Recorder
	log     zerolog.Logger
}

// NewProjectilePool allocates capacity inactive projectiles of the given spec.
func NewProjectilePool(name string, capacity int, spec ProjectileSpec, world *World, bus *EventBus, rec Recorder, log zerolog.Logger) *ProjectilePool {
	if capacity < 0 {
		capacity = 0
	}
	p := &ProjectilePool{
		name:    name,
		spec:    spec,
		entries: make([]*Projectile, 0, capacity),
		free:    make([]*Projectile, 0, capacity),
		world:   world,
		bus:     bus,
		rec:     recorderOrNop(rec),
		log:     log.With().Str("pool", name).Logger(),
	}
	for i := 0; i < capacity; i++ {
		p.free = append(p.free, p.allocate())
	}
	return p
}

func (p *ProjectilePool) allocate() *Projectile {
	pr := newProjectile(len(p.entries), p, p.spec, p.world, p.log)
	p.entries = append(p.entries, pr)
	return pr
}

// Name returns the pool name, e.g. "player" or "enemy".
func (p *ProjectilePool) Name() string { return p.name }

// Len returns the total number of entries, active or not.
func (p *ProjectilePool) Len() int { return len(p.entries) }

// ActiveCount returns how many entries are currently in flight.
func (p *ProjectilePool) ActiveCount() int { return len(p.entries) - len(p.free) }

// Entries returns every entry in allocation order.
func (p *ProjectilePool) Entries() []*Projectile { return p.entries }

// Acquire returns an active projectile. The caller must position it with
// Launch straight away; the pool does not touch spatial state.
func (p *ProjectilePool) Acquire() *Projectile {
	var pr *Projectile
	if len(p.free) > 0 {
		pr = p.free[0]
		p.free[0] = nil
		p.free = p.free[1:]
	} else {
		pr = p.allocate()
		p.log.Warn().Int("size", len(p.entries)).Msg("pool exhausted, growing")
		p.rec.PoolGrew(p.name, len(p.entries))
		p.bus.Publish(Event{Kind: EventPoolGrew, Source: p.name, Value: len(p.entries)})
	}
	pr.activate()
	return pr
}

// Fire acquires a projectile, launches it from pos along rot and reports the
// shot.
func (p *ProjectilePool) Fire(pos mgl64.Vec3, rot mgl64.Quat, ownerTag string) *Projectile {
	pr := p.Acquire()
	pr.Launch(pos, rot, ownerTag)
	p.rec.ProjectileFired(p.name)
	p.bus.Publish(Event{Kind: EventProjectileFired, Source: p.name, Value: p.ActiveCount()})
	return pr
}

// Release returns pr to the pool. It fails for projectiles from another pool
// and for projectiles that are already inactive.
func (p *ProjectilePool) Release(pr *Projectile) error {
	if pr == nil {
		return fmt.Errorf("release into %s: nil projectile", p.name)
	}
	if pr.pool != p {
		return fmt.Errorf("release into %s: %w", p.name, ErrForeignProjectile)
	}
	if !pr.active {
		return fmt.Errorf("release into %s: %w", p.name, ErrNotActive)
	}
	pr.active = false
	p.free = append(p.free, pr)
	return nil
}

// Tick advances every active projectile.
func (p *ProjectilePool) Tick(dt float64) {
	// Index loop: entries may grow if a hit handler fires during the tick.
	for i := 0; i < len(p.entries); i++ {
		if pr := p.entries[i]; pr.active {
			pr.Tick(dt)
		}
	}
}

// ReleaseAll deactivates every entry, e.g. when a new session starts.
func (p *ProjectilePool) ReleaseAll() {
	for _, pr := range p.entries {
		if pr.active {
			_ = p.Release(pr)
		}
	}
}
