package game

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

func TestEventBus_RegistrationOrder(t *testing.T) {
	bus := NewEventBus()
	var order []string
	bus.Subscribe(EventScoreChanged, func(Event) { order = append(order, "a") })
	bus.SubscribeAll(func(Event) { order = append(order, "all") })
	bus.Subscribe(EventScoreChanged, func(Event) { order = append(order, "b") })
	bus.Subscribe(EventRingsChanged, func(Event) { order = append(order, "other") })

	bus.Publish(Event{Kind: EventScoreChanged})
	want := []string{"a", "b", "all"}
	if len(order) != len(want) {
		t.Fatalf("got %v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v want %v", order, want)
		}
	}
	if bus.HandlerCount(EventScoreChanged) != 2 {
		t.Fatalf("handler count %d", bus.HandlerCount(EventScoreChanged))
	}
}

func TestEventBus_NilSafe(t *testing.T) {
	var bus *EventBus
	bus.Subscribe(EventVictory, func(Event) {})
	bus.Publish(Event{Kind: EventVictory})
	if bus.HandlerCount(EventVictory) != 0 {
		t.Fatal("nil bus should report no handlers")
	}
}

func TestRailCart_AdvancesAndClamps(t *testing.T) {
	rc := NewRailCart([]mgl64.Vec3{{0, 0, 0}, {0, 0, 10}, {10, 0, 10}})
	if rc.Length() != 20 {
		t.Fatalf("length %.2f", rc.Length())
	}
	rc.SetSpeed(4)
	rc.Tick(3)
	pos, rot := rc.Frame()
	if !pos.ApproxEqualThreshold(mgl64.Vec3{2, 0, 10}, 1e-9) {
		t.Fatalf("expected (2,0,10) after 12 units, got %v", pos)
	}
	if fwd := Forward(rot); !fwd.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Fatalf("second segment should face +X, got %v", fwd)
	}
	rc.Tick(10)
	if rc.Position() != rc.Length() {
		t.Fatalf("cart should stop at the end, at %.2f", rc.Position())
	}
	rc.SetEnabled(false)
	rc.SetPosition(0)
	rc.Tick(1)
	if rc.Position() != 0 {
		t.Fatal("disabled cart moved")
	}
}

func TestRailCart_Degenerate(t *testing.T) {
	rc := NewRailCart(nil)
	rc.SetSpeed(5)
	rc.Tick(1)
	if rc.Length() != 0 || rc.Position() != 0 {
		t.Fatal("empty path should stay at zero")
	}
	pos, _ := NewRailCart([]mgl64.Vec3{{1, 2, 3}}).Frame()
	if pos != (mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("single point frame %v", pos)
	}
}

func TestAimTarget_DeadzoneAndRecentre(t *testing.T) {
	a := NewAimTarget(AimConfig{MaxRadius: 2, ReturnSpeed: 5, Deadzone: 0.1, InvertY: false})
	a.Update(mgl64.Vec2{0.05, 0}, 0.1)
	if a.Offset() != (mgl64.Vec2{}) {
		t.Fatalf("stick inside the dead zone moved the reticle: %v", a.Offset())
	}
	for i := 0; i < 120; i++ {
		a.Update(mgl64.Vec2{1, 0}, SimStep)
	}
	if s := a.Steering().X(); s < 0.95 || s > 1 {
		t.Fatalf("steering should saturate near 1, got %.3f", s)
	}
	for i := 0; i < 120; i++ {
		a.Update(mgl64.Vec2{}, SimStep)
	}
	if a.Offset().Len() > 0.01 {
		t.Fatalf("reticle should recentre, offset %v", a.Offset())
	}
}

func TestAimTarget_InvertY(t *testing.T) {
	a := NewAimTarget(DefaultAimConfig())
	a.Update(mgl64.Vec2{0, 1}, 0.1)
	if a.Offset().Y() >= 0 {
		t.Fatal("invert-Y should flip stick up to reticle down")
	}
	a.Reset()
	a.SetInvertY(false)
	a.Update(mgl64.Vec2{0, 1}, 0.1)
	if a.Offset().Y() <= 0 || a.InvertY() {
		t.Fatal("non-inverted stick up should move the reticle up")
	}
}

func TestSaucer_HoversAroundStart(t *testing.T) {
	rng := rand.New(rand.NewSource(7)) // #nosec G404 -- test
	w := NewWorld()
	s := NewSaucer("saucer-1", mgl64.Vec3{0, 5, 20}, DefaultSaucerConfig(), rng, w, nil, zerolog.Nop())
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := 0; i < 600; i++ {
		s.Tick(SimStep)
		minY = math.Min(minY, s.Position().Y())
		maxY = math.Max(maxY, s.Position().Y())
	}
	if minY < 4-1e-9 || maxY > 6+1e-9 {
		t.Fatalf("hover left [4,6]: %.3f..%.3f", minY, maxY)
	}
	if maxY-minY < 1.5 {
		t.Fatalf("saucer barely moved: %.3f..%.3f", minY, maxY)
	}
	if s.Position().X() != 0 || s.Position().Z() != 20 {
		t.Fatal("hover should be vertical only")
	}
}

func TestSaucer_PhasesDiffer(t *testing.T) {
	rng := rand.New(rand.NewSource(3)) // #nosec G404 -- test
	a := NewSaucer("a", mgl64.Vec3{}, DefaultSaucerConfig(), rng, nil, nil, zerolog.Nop())
	b := NewSaucer("b", mgl64.Vec3{}, DefaultSaucerConfig(), rng, nil, nil, zerolog.Nop())
	a.Tick(SimStep)
	b.Tick(SimStep)
	if a.Position().Y() == b.Position().Y() {
		t.Fatal("saucers should not bob in lockstep")
	}
}

func TestSaucer_DefeatStopsMovement(t *testing.T) {
	w := NewWorld()
	s := NewSaucer("saucer-1", mgl64.Vec3{}, DefaultSaucerConfig(), nil, w, nil, zerolog.Nop())
	s.Health().TakeDamage(100)
	before := s.Position()
	s.Tick(1)
	if s.Active() || s.Position() != before {
		t.Fatal("defeated saucer should not move")
	}
}

func TestSmoothDamp_ConvergesWithoutOvershoot(t *testing.T) {
	v, vel := 5.0, 0.0
	for i := 0; i < 300; i++ {
		v = smoothDamp(v, 15, &vel, 0.2, SimStep)
		if v > 15 {
			t.Fatalf("overshot to %.4f at step %d", v, i)
		}
	}
	if math.Abs(v-15) > 1e-3 {
		t.Fatalf("did not converge: %.4f", v)
	}
}

func TestSmoothStep(t *testing.T) {
	if smoothStep(0, 1, 0) != 0 || smoothStep(0, 1, 1) != 1 || smoothStep(0, 1, 0.5) != 0.5 {
		t.Fatal("smoothstep endpoints or midpoint wrong")
	}
	if smoothStep(0, 1, 2) != 1 {
		t.Fatal("smoothstep should clamp t")
	}
}

func TestLookRotation_PointsForward(t *testing.T) {
	dir := mgl64.Vec3{1, 1, 0}.Normalize()
	if got := Forward(LookRotation(dir)); !got.ApproxEqualThreshold(dir, 1e-9) {
		t.Fatalf("forward %v want %v", got, dir)
	}
	if a := AngleBetween(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}); math.Abs(a-90) > 1e-9 {
		t.Fatal("right angle expected")
	}
}

func TestLookRotation_KeepsUpright(t *testing.T) {
	for _, dir := range []mgl64.Vec3{{1, 0, 1}, {-1, 0, 0}, {1, 0.5, 2}, {0, 0, -1}} {
		rot := LookRotation(dir)
		if got := Forward(rot); !got.ApproxEqualThreshold(dir.Normalize(), 1e-9) {
			t.Fatalf("forward %v want %v", got, dir.Normalize())
		}
		if r := Right(rot); math.Abs(r.Y()) > 1e-9 {
			t.Fatalf("dir %v rolled: right axis %v", dir, r)
		}
		if u := Up(rot); u.Y() <= 0 {
			t.Fatalf("dir %v turned upside down: up axis %v", dir, u)
		}
	}
	if got := Forward(LookRotation(mgl64.Vec3{0, 2, 0})); !got.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Fatalf("straight up should still point forward along +Y, got %v", got)
	}
}

func TestRailCart_ClimbingTurnDoesNotRoll(t *testing.T) {
	rc := NewRailCart([]mgl64.Vec3{{0, 0, 0}, {0, 0, 10}, {10, 5, 20}})
	rc.SetSpeed(1)
	rc.Tick(15)
	_, rot := rc.Frame()
	if r := Right(rot); math.Abs(r.Y()) > 1e-9 {
		t.Fatalf("climbing turn should keep the wings level, right %v", r)
	}
}

func TestScriptedInput_RepeatsLastSteer(t *testing.T) {
	src := NewScriptedInput(
		InputFrame{Steer: mgl64.Vec2{0.5, 0}, Events: []InputEvent{{Action: ActionFire, Pressed: true}}},
	)
	first := src.Poll()
	if len(first.Events) != 1 {
		t.Fatal("first frame should carry its events")
	}
	next := src.Poll()
	if len(next.Events) != 0 || next.Steer != (mgl64.Vec2{0.5, 0}) {
		t.Fatalf("exhausted script should hold steer without events, got %+v", next)
	}
}
