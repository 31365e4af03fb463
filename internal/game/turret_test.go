package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

type stubTarget struct {
	c *Collider
}

func (s *stubTarget) TargetPosition() mgl64.Vec3 { return s.c.Center }
func (s *stubTarget) TargetCollider() EntityID   { return s.c.ID }

type turretRig struct {
	world  *World
	pool   *ProjectilePool
	target *stubTarget
	turret *Turret
}

// newTurretRig places a turret at the origin facing +Z (head at y=1) and a
// player-tagged target at pos.
func newTurretRig(pos mgl64.Vec3) *turretRig {
	w := NewWorld()
	bus := NewEventBus()
	pool := NewProjectilePool("enemy", 4, DefaultProjectileSpec(), w, bus, nil, zerolog.Nop())
	tgt := &stubTarget{c: w.AddSphere("player", TagPlayer, LayerDefault, pos, 1)}
	tr := NewTurret("turret-1", mgl64.Vec3{}, mgl64.QuatIdent(), DefaultTurretConfig(), tgt, pool, w, bus, zerolog.Nop())
	return &turretRig{world: w, pool: pool, target: tgt, turret: tr}
}

func TestTurret_FiresWhenAllChecksPass(t *testing.T) {
	rig := newTurretRig(mgl64.Vec3{0, 1, 10})
	rig.turret.Tick(SimStep)

	st := rig.turret.State()
	if !st.InRange || !st.InFOV || !st.HasLineOfSight {
		t.Fatalf("expected engaged, got %+v", st)
	}
	if rig.turret.Shots != 1 {
		t.Fatalf("primed timer with zero aim error should fire on the first tick, shots=%d", rig.turret.Shots)
	}
	if rig.pool.ActiveCount() != 1 {
		t.Fatalf("expected one enemy laser in flight, got %d", rig.pool.ActiveCount())
	}
	if got := rig.pool.Entries()[0].OwnerTag(); got != TagEnemy {
		t.Fatalf("enemy laser owner tag %q", got)
	}
}

func TestTurret_EachCheckBlocksFire(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*turretRig)
	}{
		{"out of range", func(r *turretRig) { r.target.c.Center = mgl64.Vec3{0, 1, 30} }},
		{"behind", func(r *turretRig) { r.target.c.Center = mgl64.Vec3{0, 1, -10} }},
		{"blocked", func(r *turretRig) {
			r.world.AddBox("wall", TagScenery, LayerDefault, mgl64.Vec3{0, 1, 5}, mgl64.Vec3{3, 3, 0.5})
		}},
		{"aim error", func(r *turretRig) { r.target.c.Center = mgl64.Vec3{6, 1, 10} }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rig := newTurretRig(mgl64.Vec3{0, 1, 10})
			c.setup(rig)
			rig.turret.Tick(SimStep)
			if rig.turret.Shots != 0 {
				t.Fatalf("fired with state %+v", rig.turret.State())
			}
		})
	}
}

func TestTurret_TracksThenFires(t *testing.T) {
	rig := newTurretRig(mgl64.Vec3{6, 1, 10}) // ~31° off the initial facing
	for i := 0; i < 120 && rig.turret.Shots == 0; i++ {
		rig.turret.Tick(SimStep)
	}
	if rig.turret.Shots == 0 {
		t.Fatalf("turret never converged, aim error %.2f", rig.turret.State().AimError)
	}
	if err := rig.turret.State().AimError; err >= rig.turret.Config().AimTolerance {
		t.Fatalf("fired with aim error %.2f", err)
	}
}

func TestTurret_RespectsFireRate(t *testing.T) {
	rig := newTurretRig(mgl64.Vec3{0, 1, 10})
	rig.turret.Tick(SimStep)
	for i := 0; i < 58; i++ {
		rig.turret.Tick(SimStep)
	}
	if rig.turret.Shots != 1 {
		t.Fatalf("fired again before the fire rate elapsed, shots=%d", rig.turret.Shots)
	}
	for i := 0; i < 3; i++ {
		rig.turret.Tick(SimStep)
	}
	if rig.turret.Shots != 2 {
		t.Fatalf("expected second shot after ~1s, shots=%d", rig.turret.Shots)
	}
}

func TestTurret_TimerFreezesWhileIneligible(t *testing.T) {
	rig := newTurretRig(mgl64.Vec3{0, 1, 10})
	rig.turret.Tick(SimStep) // fires, timer resets
	rig.target.c.Center = mgl64.Vec3{0, 1, 40}
	for i := 0; i < 120; i++ {
		rig.turret.Tick(SimStep)
	}
	if got := rig.turret.FireTimer(); got != 0 {
		t.Fatalf("fire timer advanced to %.3f while out of range", got)
	}
}

func TestTurret_MissingTargetDisables(t *testing.T) {
	w := NewWorld()
	pool := NewProjectilePool("enemy", 1, DefaultProjectileSpec(), w, nil, nil, zerolog.Nop())
	tr := NewTurret("turret-1", mgl64.Vec3{}, mgl64.QuatIdent(), DefaultTurretConfig(), nil, pool, w, nil, zerolog.Nop())
	if tr.Enabled() {
		t.Fatal("turret without a target should disable itself")
	}
	tr.Tick(SimStep) // must not panic
}

func TestTurret_DefeatedStopsAndResetRevives(t *testing.T) {
	rig := newTurretRig(mgl64.Vec3{0, 1, 10})
	rig.turret.Health().TakeDamage(25)
	if rig.turret.Active() {
		t.Fatal("defeated turret should be inactive")
	}
	rig.turret.Tick(SimStep)
	if rig.turret.Shots != 0 {
		t.Fatal("defeated turret fired")
	}
	if _, ok := rig.world.Raycast(mgl64.Vec3{0, 0, -5}, mgl64.Vec3{0, 0, 1}, 10, 0); ok {
		t.Fatal("defeated turret collider still blocks rays")
	}

	rig.turret.Reset()
	rig.turret.Tick(SimStep)
	if !rig.turret.Active() || rig.turret.Shots != 1 {
		t.Fatalf("reset turret: active=%v shots=%d", rig.turret.Active(), rig.turret.Shots)
	}
}
