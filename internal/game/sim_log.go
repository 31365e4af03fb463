package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event during a headless simulation.
type SimLogEntry struct {
	Tick     int
	Source   string // entity label, or "--" for global events
	Category string // health, progress, flight, pool, session
	Key      string // event name within the category
	Value    string // human-readable detail
	NumVal   float64
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] turret-1     health    defeated         0/25
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-12s %-9s %-16s %s",
		e.Tick, e.Source, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a headless simulation.
// Unlike the viewer's event panel it is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick flight entries are
// also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Verbose reports whether per-tick entries are recorded.
func (sl *SimLog) Verbose() bool { return sl.verbose }

// Add records a new entry.
func (sl *SimLog) Add(tick int, source, category, key, value string, numVal float64) {
	if source == "" {
		source = "--"
	}
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Source:   source,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, source, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, source, category, key, value, numVal)
}

// Attach records every event published on bus. tick is read at publish time.
func (sl *SimLog) Attach(bus *EventBus, tick func() int) {
	bus.SubscribeAll(func(ev Event) {
		category, value, num := describeEvent(ev)
		sl.Add(tick(), ev.Source, category, ev.Kind.String(), value, num)
	})
}

func describeEvent(ev Event) (category, value string, num float64) {
	switch ev.Kind {
	case EventHealthChanged, EventDefeated:
		return "health", fmt.Sprintf("%d/%d", ev.Current, ev.Max), float64(ev.Current)
	case EventRingsChanged, EventScoreChanged, EventRingPassed:
		return "progress", fmt.Sprintf("%d", ev.Value), float64(ev.Value)
	case EventPoolGrew, EventProjectileFired:
		return "pool", fmt.Sprintf("size %d", ev.Value), float64(ev.Value)
	case EventCameraChanged:
		return "flight", fmt.Sprintf("camera %d", ev.Value), float64(ev.Value)
	default:
		return "session", "", 0
	}
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterSource returns entries for one entity label.
func (sl *SimLog) FilterSource(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Source == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of a session.
func (sl *SimLog) Summary(tick int, s *Session) string {
	var sb strings.Builder
	sum := s.Summary()
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)
	fmt.Fprintf(&sb, "Outcome: %s  paused=%v\n", sum.Outcome, s.Paused())
	fmt.Fprintf(&sb, "Distance: %.1f / %.1f\n", sum.Distance, sum.PathLength)
	fmt.Fprintf(&sb, "Rings: %d  Score: %d  Shots: %d\n", sum.Rings, sum.Score, sum.ShotsFired)
	if h := s.Flight.Health(); h != nil {
		fmt.Fprintf(&sb, "Player: %d/%d (%s)  fuel=%.2f  mode=%s\n",
			h.Current(), h.Max(), h.Band(), s.Flight.FuelRatio(), s.Flight.Mode())
	}
	for _, t := range s.Turrets {
		st := t.State()
		fmt.Fprintf(&sb, "Turret %s: active=%v range=%v fov=%v los=%v aimErr=%.1f shots=%d\n",
			t.Label(), t.Active(), st.InRange, st.InFOV, st.HasLineOfSight, st.AimError, t.Shots)
	}
	fmt.Fprintf(&sb, "Pools: player %d/%d  enemy %d/%d\n",
		s.PlayerPool.ActiveCount(), s.PlayerPool.Len(), s.EnemyPool.ActiveCount(), s.EnemyPool.Len())
	return sb.String()
}
