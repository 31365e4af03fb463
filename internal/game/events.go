package game

// EventKind identifies a gameplay notification.
type EventKind int

const (
	EventHealthChanged EventKind = iota // Current, Max
	EventDefeated                       // Source defeated
	EventRingsChanged                   // Value = new total
	EventScoreChanged                   // Value = new total
	EventMissionComplete
	EventDeathStarted
	EventGameOver
	EventVictory
	EventPaused
	EventResumed
	EventCameraChanged // Value = active CameraID
	EventPoolGrew      // Source = pool name, Value = new size
	EventProjectileFired
	EventRingPassed
	eventKindCount
)

func (k EventKind) String() string {
	switch k {
	case EventHealthChanged:
		return "health_changed"
	case EventDefeated:
		return "defeated"
	case EventRingsChanged:
		return "rings_changed"
	case EventScoreChanged:
		return "score_changed"
	case EventMissionComplete:
		return "mission_complete"
	case EventDeathStarted:
		return "death_started"
	case EventGameOver:
		return "game_over"
	case EventVictory:
		return "victory"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventCameraChanged:
		return "camera_changed"
	case EventPoolGrew:
		return "pool_grew"
	case EventProjectileFired:
		return "projectile_fired"
	case EventRingPassed:
		return "ring_passed"
	default:
		return "unknown"
	}
}

// Event is a single notification. Fields not relevant to Kind are zero.
type Event struct {
	Kind    EventKind
	Source  string // label of the emitting entity, e.g. "player", "turret-2"
	Current int
	Max     int
	Value   int
	Health  *Health // emitting track, set for health events
}

// Handler receives events synchronously.
type Handler func(Event)

// EventBus dispatches events to subscribers.
//
// Dispatch is synchronous and single-threaded: Publish returns after every
// handler for the kind has run, in registration order. Handlers may publish
// further events; those are delivered depth-first.
type EventBus struct {
	handlers [eventKindCount][]Handler
	any      []Handler
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers h for one event kind.
func (b *EventBus) Subscribe(kind EventKind, h Handler) {
	if b == nil || h == nil || kind < 0 || kind >= eventKindCount {
		return
	}
	b.handlers[kind] = append(b.handlers[kind], h)
}

// SubscribeAll registers h for every event kind. These run after the
// kind-specific handlers.
func (b *EventBus) SubscribeAll(h Handler) {
	if b == nil || h == nil {
		return
	}
	b.any = append(b.any, h)
}

// Publish delivers ev. A nil bus drops everything, which lets components run
// without observers in tests.
func (b *EventBus) Publish(ev Event) {
	if b == nil || ev.Kind < 0 || ev.Kind >= eventKindCount {
		return
	}
	for _, h := range b.handlers[ev.Kind] {
		h(ev)
	}
	for _, h := range b.any {
		h(ev)
	}
}

// HandlerCount returns the number of kind-specific handlers for kind.
func (b *EventBus) HandlerCount(kind EventKind) int {
	if b == nil || kind < 0 || kind >= eventKindCount {
		return 0
	}
	return len(b.handlers[kind])
}
