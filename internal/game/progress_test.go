package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

func TestProgress_AddRingNotifiesRunningTotal(t *testing.T) {
	bus := NewEventBus()
	pt := NewProgressTracker(bus, zerolog.Nop())
	var got []int
	bus.Subscribe(EventRingsChanged, func(ev Event) { got = append(got, ev.Value) })

	for i := 0; i < 3; i++ {
		pt.AddRing(1)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("expected notifications 1,2,3 got %v", got)
	}
	if pt.Rings() != 3 {
		t.Fatalf("rings=%d", pt.Rings())
	}
}

func TestProgress_NegativeAmountsRejected(t *testing.T) {
	bus := NewEventBus()
	pt := NewProgressTracker(bus, zerolog.Nop())
	events := 0
	bus.SubscribeAll(func(Event) { events++ })

	pt.AddRing(-1)
	pt.AddScore(-5)
	if pt.Rings() != 0 || pt.Score() != 0 || events != 0 {
		t.Fatalf("negative amounts changed state: rings=%d score=%d events=%d", pt.Rings(), pt.Score(), events)
	}
}

func TestProgress_ResetZeroesAndNotifies(t *testing.T) {
	bus := NewEventBus()
	pt := NewProgressTracker(bus, zerolog.Nop())
	pt.AddRing(2)
	pt.AddScore(4)

	var rings, score []int
	bus.Subscribe(EventRingsChanged, func(ev Event) { rings = append(rings, ev.Value) })
	bus.Subscribe(EventScoreChanged, func(ev Event) { score = append(score, ev.Value) })
	pt.Reset()
	if pt.Rings() != 0 || pt.Score() != 0 {
		t.Fatal("reset did not zero counters")
	}
	if len(rings) != 1 || rings[0] != 0 || len(score) != 1 || score[0] != 0 {
		t.Fatalf("reset notifications rings=%v score=%v", rings, score)
	}
}

func TestRing_PassedOnceThenHidden(t *testing.T) {
	w := NewWorld()
	bus := NewEventBus()
	pt := NewProgressTracker(bus, zerolog.Nop())
	rec := newCountingRecorder()
	ring := NewRingGate("ring-1", mgl64.Vec3{0, 0, 10}, w, pt, bus, rec, zerolog.Nop())
	player := w.AddSphere("player", TagPlayer, LayerDefault, mgl64.Vec3{0, 0, 0}, 1)

	ring.Tick(SimStep)
	if ring.Passed() {
		t.Fatal("ring passed while the player was far away")
	}

	player.Center = mgl64.Vec3{0, 0, 9}
	ring.Tick(SimStep)
	ring.Tick(SimStep)
	if !ring.Passed() || pt.Rings() != 1 || rec.rings != 1 {
		t.Fatalf("passed=%v rings=%d metric=%d", ring.Passed(), pt.Rings(), rec.rings)
	}
	if !ring.Visible() {
		t.Fatal("ring should linger for the pass delay")
	}

	for i := 0; i < 10; i++ {
		ring.Tick(SimStep)
	}
	if ring.Visible() {
		t.Fatal("ring should hide after the pass delay")
	}
	if pt.Rings() != 1 {
		t.Fatalf("ring counted more than once: %d", pt.Rings())
	}

	ring.Reset()
	if ring.Passed() || !ring.Visible() {
		t.Fatal("reset should re-arm the ring")
	}
}

func TestRing_Spins(t *testing.T) {
	ring := NewRingGate("ring-1", mgl64.Vec3{}, nil, nil, nil, nil, zerolog.Nop())
	for i := 0; i < 60; i++ {
		ring.Tick(SimStep)
	}
	if y := ring.Yaw(); y < 29 || y > 31 {
		t.Fatalf("expected ~30 degrees after 1s, got %.2f", y)
	}
}
