package game

import "github.com/rs/zerolog"

// HealthBand is the HUD colour band for a health ratio.
type HealthBand int

const (
	HealthHealthy  HealthBand = iota // above 50%
	HealthWarning                    // 50% and below
	HealthCritical                   // 25% and below
)

func (b HealthBand) String() string {
	switch b {
	case HealthHealthy:
		return "healthy"
	case HealthWarning:
		return "warning"
	case HealthCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Health tracks hit points for the player ship or an enemy.
//
// current is always within [0, max]. Reaching 0 publishes EventDefeated once
// and deactivates the owner; only Reset brings it back.
type Health struct {
	label    string
	current  int
	max      int
	defeated bool
	owner    Activatable
	bus      *EventBus
	log      zerolog.Logger
}

// NewHealth creates a full Health. max values below 1 are raised to 1.
// owner may be nil.
func NewHealth(label string, max int, owner Activatable, bus *EventBus, log zerolog.Logger) *Health {
	if max < 1 {
		log.Warn().Str("entity", label).Int("max", max).Msg("health max below 1, using 1")
		max = 1
	}
	return &Health{
		label:   label,
		current: max,
		max:     max,
		owner:   owner,
		bus:     bus,
		log:     log,
	}
}

// Label returns the owning entity label.
func (h *Health) Label() string { return h.label }

// Current returns the current hit points.
func (h *Health) Current() int { return h.current }

// Max returns the maximum hit points.
func (h *Health) Max() int { return h.max }

// Defeated reports whether health reached zero since the last Reset.
func (h *Health) Defeated() bool { return h.defeated }

// Ratio returns current/max in [0,1].
func (h *Health) Ratio() float64 {
	return float64(h.current) / float64(h.max)
}

// Band classifies the ratio for display: yellow at or below half, red at or
// below a quarter.
func (h *Health) Band() HealthBand {
	pct := h.Ratio() * 100
	switch {
	case pct <= 25:
		return HealthCritical
	case pct <= 50:
		return HealthWarning
	default:
		return HealthHealthy
	}
}

// TakeDamage subtracts amount, clamping at zero. Negative amounts and damage
// after defeat are ignored.
func (h *Health) TakeDamage(amount int) {
	if amount < 0 || h.defeated {
		return
	}
	h.current -= amount
	if h.current < 0 {
		h.current = 0
	}
	h.log.Debug().Str("entity", h.label).Int("damage", amount).Int("health", h.current).Msg("took damage")
	h.notify()

	if h.current == 0 {
		h.defeat()
	}
}

// Heal adds amount, clamping at max. Negative amounts and heals after defeat
// are ignored.
func (h *Health) Heal(amount int) {
	if amount < 0 || h.defeated {
		return
	}
	h.current += amount
	if h.current > h.max {
		h.current = h.max
	}
	h.log.Debug().Str("entity", h.label).Int("heal", amount).Int("health", h.current).Msg("healed")
	h.notify()
}

// Reset restores full health and reactivates the owner.
func (h *Health) Reset() {
	h.current = h.max
	h.defeated = false
	if h.owner != nil {
		h.owner.SetActive(true)
	}
	h.notify()
}

func (h *Health) defeat() {
	h.defeated = true
	h.log.Info().Str("entity", h.label).Msg("defeated")
	h.bus.Publish(Event{Kind: EventDefeated, Source: h.label, Health: h})
	if h.owner != nil {
		h.owner.SetActive(false)
	}
}

func (h *Health) notify() {
	h.bus.Publish(Event{Kind: EventHealthChanged, Source: h.label, Current: h.current, Max: h.max, Health: h})
}
