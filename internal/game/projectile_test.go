package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

func newProjectileWorld() (*World, *EventBus, *ProjectilePool) {
	w := NewWorld()
	bus := NewEventBus()
	pool := NewProjectilePool("player", 1, DefaultProjectileSpec(), w, bus, nil, zerolog.Nop())
	return w, bus, pool
}

func addTarget(w *World, bus *EventBus, label, tag string, center mgl64.Vec3) *Health {
	c := w.AddSphere(label, tag, LayerDefault, center, 1)
	h := NewHealth(label, 25, c, bus, zerolog.Nop())
	w.AttachHealth(c.ID, h)
	return h
}

func TestProjectile_LifetimeReleasesOnce(t *testing.T) {
	_, _, pool := newProjectileWorld()
	pr := pool.Fire(mgl64.Vec3{}, mgl64.QuatIdent(), TagPlayer)

	for i := 0; i < 7; i++ {
		pool.Tick(0.25)
		if !pr.Active() {
			t.Fatalf("released early at %.2fs", pr.Elapsed())
		}
	}
	pool.Tick(0.25) // 2.0s
	if pr.Active() {
		t.Fatal("expected release at lifetime")
	}
	pool.Tick(0.25)
	pool.Tick(0.25)

	// One free entry: the first acquire reuses it, the second must grow.
	first := pool.Acquire()
	if first != pr || pool.Len() != 1 {
		t.Fatalf("expected reuse of the single entry, len=%d", pool.Len())
	}
	pool.Acquire()
	if pool.Len() != 2 {
		t.Fatalf("entry was queued more than once, len=%d", pool.Len())
	}
}

func TestProjectile_MovesForward(t *testing.T) {
	_, _, pool := newProjectileWorld()
	pr := pool.Fire(mgl64.Vec3{}, mgl64.QuatIdent(), TagPlayer)
	pool.Tick(0.5)
	if !pr.Position.ApproxEqualThreshold(mgl64.Vec3{0, 0, 50}, 1e-9) {
		t.Fatalf("expected 50 units along +Z, got %v", pr.Position)
	}
}

func TestProjectile_HitDamagesAndReleases(t *testing.T) {
	w, bus, pool := newProjectileWorld()
	h := addTarget(w, bus, "saucer-1", TagEnemy, mgl64.Vec3{0, 0, 20})

	pr := pool.Fire(mgl64.Vec3{}, mgl64.QuatIdent(), TagPlayer)
	pool.Tick(0.5) // sweeps 0..50, crossing the target
	if pr.Active() {
		t.Fatal("projectile should release on hit")
	}
	if h.Current() != 15 {
		t.Fatalf("expected 10 damage, health=%d", h.Current())
	}
	if pr.LastHit != "saucer-1" {
		t.Fatalf("LastHit=%q", pr.LastHit)
	}
}

func TestProjectile_IgnoresOwnerTag(t *testing.T) {
	w, bus, pool := newProjectileWorld()
	h := addTarget(w, bus, "wingman", TagPlayer, mgl64.Vec3{0, 0, 20})

	pr := pool.Fire(mgl64.Vec3{}, mgl64.QuatIdent(), TagPlayer)
	pool.Tick(0.5)
	if !pr.Active() {
		t.Fatal("owner-tagged collider should not release the projectile")
	}
	if h.Current() != 25 {
		t.Fatalf("owner-tagged collider took damage: %d", h.Current())
	}
}

func TestProjectile_PassesThroughRings(t *testing.T) {
	w, _, pool := newProjectileWorld()
	w.AddSphere("ring-1", TagRing, LayerPassthrough, mgl64.Vec3{0, 0, 20}, 3)

	pr := pool.Fire(mgl64.Vec3{}, mgl64.QuatIdent(), TagPlayer)
	pool.Tick(0.5)
	if !pr.Active() {
		t.Fatal("passthrough collider should not stop the projectile")
	}
}

func TestProjectile_SceneryAbsorbsWithoutDamage(t *testing.T) {
	w, _, pool := newProjectileWorld()
	w.AddBox("rock", TagScenery, LayerDefault, mgl64.Vec3{0, 0, 10}, mgl64.Vec3{2, 2, 2})

	pr := pool.Fire(mgl64.Vec3{}, mgl64.QuatIdent(), TagPlayer)
	pool.Tick(0.5)
	if pr.Active() || pr.LastHit != "rock" {
		t.Fatalf("scenery should absorb the shot: active=%v hit=%q", pr.Active(), pr.LastHit)
	}
}

func TestProjectile_HitWinsOverTimeout(t *testing.T) {
	w, bus, pool := newProjectileWorld()
	// Target at 195: the last tick before timeout sweeps 150..200.
	h := addTarget(w, bus, "turret-1", TagEnemy, mgl64.Vec3{0, 0, 195})

	pr := pool.Fire(mgl64.Vec3{}, mgl64.QuatIdent(), TagPlayer)
	for i := 0; i < 4; i++ {
		pool.Tick(0.5)
	}
	if pr.Active() {
		t.Fatal("expected release")
	}
	if h.Current() != 15 {
		t.Fatalf("hit on the expiring tick should still damage, health=%d", h.Current())
	}
}

func TestProjectile_OrphanDeactivatesInPlace(t *testing.T) {
	pr := newProjectile(0, nil, DefaultProjectileSpec(), nil, zerolog.Nop())
	pr.activate()
	pr.Launch(mgl64.Vec3{}, mgl64.QuatIdent(), TagPlayer)
	for i := 0; i < 5; i++ {
		pr.Tick(0.5)
	}
	if pr.Active() {
		t.Fatal("projectile without a pool should deactivate itself on timeout")
	}
}
