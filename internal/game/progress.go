package game

import "github.com/rs/zerolog"

// ProgressTracker counts rings passed and score for one play session.
type ProgressTracker struct {
	rings int
	score int
	bus   *EventBus
	log   zerolog.Logger
}

// NewProgressTracker creates zeroed counters.
func NewProgressTracker(bus *EventBus, log zerolog.Logger) *ProgressTracker {
	return &ProgressTracker{bus: bus, log: log}
}

// Rings returns rings passed so far.
func (pt *ProgressTracker) Rings() int { return pt.rings }

// Score returns the score so far.
func (pt *ProgressTracker) Score() int { return pt.score }

// AddRing adds amount rings. Negative amounts are ignored.
func (pt *ProgressTracker) AddRing(amount int) {
	if amount < 0 {
		return
	}
	pt.rings += amount
	pt.log.Debug().Int("rings", pt.rings).Msg("rings passed")
	pt.bus.Publish(Event{Kind: EventRingsChanged, Value: pt.rings})
}

// AddScore adds amount points. Negative amounts are ignored.
func (pt *ProgressTracker) AddScore(amount int) {
	if amount < 0 {
		return
	}
	pt.score += amount
	pt.log.Debug().Int("score", pt.score).Msg("score")
	pt.bus.Publish(Event{Kind: EventScoreChanged, Value: pt.score})
}

// Reset zeroes both counters and notifies.
func (pt *ProgressTracker) Reset() {
	pt.rings = 0
	pt.score = 0
	pt.bus.Publish(Event{Kind: EventRingsChanged, Value: 0})
	pt.bus.Publish(Event{Kind: EventScoreChanged, Value: 0})
}
