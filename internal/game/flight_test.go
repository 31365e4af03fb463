package game

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

type fakeCameras struct {
	priority map[CameraID]int
}

func (f *fakeCameras) SetPriority(cam CameraID, p int) { f.priority[cam] = p }

type flightRig struct {
	fc   *FlightController
	path *RailCart
	bus  *EventBus
	pool *ProjectilePool
	cams *fakeCameras
}

func newFlightRig(points ...mgl64.Vec3) *flightRig {
	if len(points) == 0 {
		points = []mgl64.Vec3{{0, 0, 0}, {0, 0, 500}}
	}
	w := NewWorld()
	bus := NewEventBus()
	path := NewRailCart(points)
	pool := NewProjectilePool("player", 4, DefaultProjectileSpec(), w, bus, nil, zerolog.Nop())
	cams := &fakeCameras{priority: map[CameraID]int{}}
	fc := NewFlightController(DefaultFlightConfig(), FlightDeps{
		Path:    path,
		Cameras: cams,
		Aim:     NewAimTarget(DefaultAimConfig()),
		Pool:    pool,
		World:   w,
		Bus:     bus,
		Log:     zerolog.Nop(),
	})
	return &flightRig{fc: fc, path: path, bus: bus, pool: pool, cams: cams}
}

// step ticks the controller then the path, as Session does.
func (r *flightRig) step(n int) {
	for i := 0; i < n; i++ {
		r.fc.Tick(SimStep)
		r.path.Tick(SimStep)
	}
}

func (r *flightRig) hold(frame InputFrame, n int) {
	for i := 0; i < n; i++ {
		r.fc.ApplyInput(frame)
		r.step(1)
	}
}

func press(a Action) InputFrame   { return InputFrame{Events: []InputEvent{{Action: a, Pressed: true}}} }
func release(a Action) InputFrame { return InputFrame{Events: []InputEvent{{Action: a, Pressed: false}}} }

func TestFlight_BoostRaisesSpeed(t *testing.T) {
	r := newFlightRig()
	r.fc.ApplyInput(press(ActionBoost))
	if !r.fc.State().Boosting || r.fc.State().TargetSpeed != 15 {
		t.Fatalf("boost on full tank: %+v", r.fc.State())
	}
	r.step(30)
	if s := r.fc.State().CurrentSpeed; s <= 10 || s > 15 {
		t.Fatalf("speed should approach 15 without overshoot, got %.3f", s)
	}
	if r.path.Speed() != r.fc.State().CurrentSpeed {
		t.Fatalf("path speed %.3f not synced to %.3f", r.path.Speed(), r.fc.State().CurrentSpeed)
	}
}

func TestFlight_BoostRejectedBelowFullFuel(t *testing.T) {
	r := newFlightRig()
	r.fc.ApplyInput(press(ActionBoost))
	r.step(30)
	r.fc.ApplyInput(release(ActionBoost))
	if ratio := r.fc.FuelRatio(); ratio >= 1 {
		t.Fatalf("fuel should have drained, ratio %.3f", ratio)
	}

	r.fc.ApplyInput(press(ActionBoost))
	if r.fc.State().Boosting {
		t.Fatal("boost engaged with fuel below 1.0")
	}
	r.fc.ApplyInput(press(ActionBrake))
	if r.fc.State().Braking {
		t.Fatal("brake engaged with fuel below 1.0")
	}
	if r.fc.State().TargetSpeed != 5 {
		t.Fatalf("target speed should stay at base, got %.2f", r.fc.State().TargetSpeed)
	}
}

func TestFlight_BrakeLowersTarget(t *testing.T) {
	r := newFlightRig()
	r.fc.SetBrake(true)
	if !r.fc.State().Braking || r.fc.State().TargetSpeed != 0 {
		t.Fatalf("brake: %+v", r.fc.State())
	}
	r.fc.SetBrake(false)
	if r.fc.State().TargetSpeed != 5 {
		t.Fatalf("release brake should restore base, got %.2f", r.fc.State().TargetSpeed)
	}
}

func TestFlight_FuelExhaustionClearsFlags(t *testing.T) {
	r := newFlightRig()
	r.fc.SetBoost(true)
	r.step(150) // 2.5s on a 2s tank
	st := r.fc.State()
	if st.Boosting || st.Braking {
		t.Fatalf("flags should clear at empty: %+v", st)
	}
	if st.TargetSpeed != 5 {
		t.Fatalf("target should reset to base, got %.2f", st.TargetSpeed)
	}
}

func TestFlight_FuelRecoveryWaitsForCooldown(t *testing.T) {
	r := newFlightRig()
	r.fc.SetBoost(true)
	r.step(30)
	r.fc.SetBoost(false)
	before := r.fc.FuelRatio()

	r.step(18) // 0.3s, cooldown is 0.4s
	if got := r.fc.FuelRatio(); got != before {
		t.Fatalf("fuel recovered during cooldown: %.4f -> %.4f", before, got)
	}
	r.step(30)
	if got := r.fc.FuelRatio(); got <= before {
		t.Fatalf("fuel did not recover after cooldown: %.4f -> %.4f", before, got)
	}
	r.step(600)
	if got := r.fc.FuelRatio(); got != 1 {
		t.Fatalf("fuel should cap at full, ratio %.4f", got)
	}
}

func TestFlight_BarrelRollNotReentrant(t *testing.T) {
	r := newFlightRig()
	r.fc.TriggerBarrelRoll(1)
	r.step(6)
	st := r.fc.State()
	if !st.Rolling || st.RollAngle >= 0 {
		t.Fatalf("right roll should be under way with a negative angle: %+v", st)
	}

	r.fc.TriggerBarrelRoll(-1)
	r.step(1)
	if r.fc.State().RollAngle >= 0 {
		t.Fatal("second trigger during a roll changed its direction")
	}

	r.step(30)
	st = r.fc.State()
	if st.Rolling || st.RollAngle != 0 {
		t.Fatalf("roll should finish and reset to 0: %+v", st)
	}
}

func TestFlight_FireCooldown(t *testing.T) {
	r := newFlightRig()
	r.fc.Fire()
	r.fc.Fire()
	if r.fc.ShotsFired != 2 {
		t.Fatalf("expected one pair of lasers, got %d", r.fc.ShotsFired)
	}
	for _, p := range r.pool.Entries() {
		if p.Active() && p.OwnerTag() != TagPlayer {
			t.Fatalf("player laser owner %q", p.OwnerTag())
		}
	}
	r.step(7)
	r.fc.ApplyInput(press(ActionFire))
	if r.fc.ShotsFired != 4 {
		t.Fatalf("expected second pair after cooldown, got %d", r.fc.ShotsFired)
	}
}

func TestFlight_SteeringClampedToViewport(t *testing.T) {
	r := newFlightRig()
	r.hold(InputFrame{Steer: mgl64.Vec2{1, 0}}, 180)
	x := r.fc.LocalOffset().X()
	if x > 8+1e-9 || x < 7.9 {
		t.Fatalf("expected offset pinned at the right edge (8), got %.3f", x)
	}
	if r.fc.MeshRotation() == mgl64.QuatIdent() {
		t.Fatal("mesh should tilt while steering")
	}
}

func TestFlight_StickUpInvertedOnRails(t *testing.T) {
	r := newFlightRig()
	r.hold(InputFrame{Steer: mgl64.Vec2{0, 1}}, 60)
	if y := r.fc.LocalOffset().Y(); y >= 0 {
		t.Fatalf("with invert-Y, stick up should move down, y=%.3f", y)
	}
}

func TestFlight_ToggleModeSwapsCameras(t *testing.T) {
	r := newFlightRig()
	var changed []int
	r.bus.Subscribe(EventCameraChanged, func(ev Event) { changed = append(changed, ev.Value) })

	r.fc.ApplyInput(press(ActionToggleMode))
	if r.fc.Mode() != ModeFreeFlight || r.path.Enabled() {
		t.Fatalf("mode=%s pathEnabled=%v", r.fc.Mode(), r.path.Enabled())
	}
	if r.cams.priority[CameraOnRails] != 1 || r.cams.priority[CameraFreeFlight] != 2 {
		t.Fatalf("free flight priorities: %v", r.cams.priority)
	}

	start := r.fc.WorldPosition()
	r.step(60)
	if moved := r.fc.WorldPosition().Sub(start).Len(); moved < 4 {
		t.Fatalf("free flight should fly forward about 5 units, moved %.2f", moved)
	}
	if r.path.Position() != 0 {
		t.Fatalf("path moved while disabled: %.2f", r.path.Position())
	}

	r.fc.ToggleFlightMode()
	if r.fc.Mode() != ModeOnRails || !r.path.Enabled() {
		t.Fatal("toggle back should resume the rails")
	}
	if r.cams.priority[CameraOnRails] != 2 || r.cams.priority[CameraFreeFlight] != 1 {
		t.Fatalf("rails priorities: %v", r.cams.priority)
	}
	if len(changed) != 2 || changed[0] != int(CameraFreeFlight) || changed[1] != int(CameraOnRails) {
		t.Fatalf("camera events %v", changed)
	}
}

func TestFlight_MissionCompleteOnce(t *testing.T) {
	r := newFlightRig(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 1})
	complete := 0
	r.bus.Subscribe(EventMissionComplete, func(Event) { complete++ })

	r.step(120)
	if complete != 1 {
		t.Fatalf("expected exactly one MissionComplete, got %d", complete)
	}
	if r.fc.Enabled() || r.path.Enabled() {
		t.Fatal("controller and path should be disabled at the end")
	}
	r.fc.Disable()
	r.fc.ApplyInput(press(ActionBoost))
	if r.fc.State().Boosting {
		t.Fatal("disabled controller accepted input")
	}
}

func TestFlight_PauseBlocksInput(t *testing.T) {
	r := newFlightRig()
	r.bus.Publish(Event{Kind: EventPaused})
	r.fc.ApplyInput(press(ActionBoost))
	if r.fc.State().Boosting {
		t.Fatal("input accepted while paused")
	}
	r.bus.Publish(Event{Kind: EventResumed})
	r.fc.ApplyInput(press(ActionBoost))
	if !r.fc.State().Boosting {
		t.Fatal("input ignored after resume")
	}
}

func TestFlight_VisualOffsetsFollowBoost(t *testing.T) {
	r := newFlightRig()
	r.fc.SetBoost(true)
	r.step(30)
	if r.fc.ZOffset() <= 0.5 || r.fc.FOV() <= 50 {
		t.Fatalf("boost should push z-offset and FOV up: z=%.2f fov=%.2f", r.fc.ZOffset(), r.fc.FOV())
	}
}

func TestFlight_MissingPathDisables(t *testing.T) {
	fc := NewFlightController(DefaultFlightConfig(), FlightDeps{Log: zerolog.Nop()})
	if fc.Enabled() {
		t.Fatal("controller without a path should disable itself")
	}
	fc.Tick(SimStep)
	fc.ApplyInput(press(ActionFire))
	if fc.ShotsFired != 0 {
		t.Fatal("disabled controller fired")
	}
}

func TestFrameViewport_RoundTrip(t *testing.T) {
	vp := FrameViewport{HalfWidth: 8, HalfHeight: 4.5}
	local := mgl64.Vec3{-3, 2, 7}
	back := vp.FromViewport(vp.ToViewport(local))
	if !back.ApproxEqualThreshold(local, 1e-9) {
		t.Fatalf("round trip %v -> %v", local, back)
	}
	centre := vp.ToViewport(mgl64.Vec3{})
	if math.Abs(centre.X()-0.5) > 1e-9 || math.Abs(centre.Y()-0.5) > 1e-9 {
		t.Fatalf("origin should map to the viewport centre, got %v", centre)
	}
}

func TestFlight_HeldControls(t *testing.T) {
	cases := []struct {
		name  string
		run   func(*flightRig)
		check func(*testing.T, *flightRig)
	}{
		{"brake cancels boost", func(r *flightRig) {
			r.fc.ApplyInput(press(ActionBoost))
			r.fc.ApplyInput(press(ActionBrake))
		}, func(t *testing.T, r *flightRig) {
			st := r.fc.State()
			if st.Boosting || !st.Braking || st.TargetSpeed != 0 {
				t.Fatalf("brake should replace boost: %+v", st)
			}
		}},
		{"boost cancels brake", func(r *flightRig) {
			r.fc.ApplyInput(press(ActionBrake))
			r.fc.ApplyInput(press(ActionBoost))
		}, func(t *testing.T, r *flightRig) {
			st := r.fc.State()
			if !st.Boosting || st.Braking || st.TargetSpeed != 15 {
				t.Fatalf("boost should replace brake: %+v", st)
			}
		}},
		{"pause releases boost", func(r *flightRig) {
			r.fc.ApplyInput(press(ActionBoost))
			r.step(5)
			r.bus.Publish(Event{Kind: EventPaused})
			r.fc.ApplyInput(release(ActionBoost)) // dropped while paused
			r.bus.Publish(Event{Kind: EventResumed})
			r.step(30)
		}, func(t *testing.T, r *flightRig) {
			st := r.fc.State()
			if st.Boosting || st.TargetSpeed != 5 {
				t.Fatalf("boost held across the pause: %+v", st)
			}
			if st.FuelRatio < 0.95 {
				t.Fatalf("fuel kept draining after the pause, ratio %.3f", st.FuelRatio)
			}
		}},
		{"pause releases brake", func(r *flightRig) {
			r.fc.ApplyInput(press(ActionBrake))
			r.step(5)
			r.bus.Publish(Event{Kind: EventPaused})
			r.bus.Publish(Event{Kind: EventResumed})
			r.step(30)
		}, func(t *testing.T, r *flightRig) {
			st := r.fc.State()
			if st.Braking || st.TargetSpeed != 5 {
				t.Fatalf("brake held across the pause: %+v", st)
			}
		}},
		{"free flight ignores the viewport", func(r *flightRig) {
			r.fc.ToggleFlightMode()
			r.hold(InputFrame{Steer: mgl64.Vec2{1, 0}}, 360)
		}, func(t *testing.T, r *flightRig) {
			if x := r.fc.WorldPosition().X(); x <= 8 {
				t.Fatalf("free flight should strafe past the rails edge (8), x=%.3f", x)
			}
		}},
		{"free flight keeps its heading", func(r *flightRig) {
			r.fc.ToggleFlightMode()
			r.hold(InputFrame{Steer: mgl64.Vec2{1, 1}}, 60)
		}, func(t *testing.T, r *flightRig) {
			fwd := Forward(r.fc.WorldRotation())
			if !fwd.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-9) {
				t.Fatalf("stick should strafe, not turn: forward %v", fwd)
			}
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newFlightRig()
			c.run(r)
			c.check(t, r)
		})
	}
}
