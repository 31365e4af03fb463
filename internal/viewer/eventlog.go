package viewer

import (
	"fmt"
	"image/color"

	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 320
	logMaxEntries = 60
	logLineHeight = 11
)

// LogEntry is a single line in the event log.
type LogEntry struct {
	Tick    int
	Kind    game.EventKind
	Source  string
	Message string
}

// EventLog is a ring buffer of bus events rendered beside the playfield.
type EventLog struct {
	entries []LogEntry
	head    int
	count   int
	// projectile_fired is far too chatty for the panel
	skip map[game.EventKind]bool
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{
		entries: make([]LogEntry, logMaxEntries),
		skip:    map[game.EventKind]bool{game.EventProjectileFired: true},
	}
}

// Attach subscribes the log to every event on bus.
func (el *EventLog) Attach(bus *game.EventBus, tick func() int) {
	bus.SubscribeAll(func(ev game.Event) {
		if el.skip[ev.Kind] {
			return
		}
		el.Add(tick(), ev.Kind, ev.Source, describe(ev))
	})
}

func describe(ev game.Event) string {
	switch ev.Kind {
	case game.EventHealthChanged:
		return fmt.Sprintf("hp %d/%d", ev.Current, ev.Max)
	case game.EventRingsChanged:
		return fmt.Sprintf("rings %d", ev.Value)
	case game.EventScoreChanged:
		return fmt.Sprintf("score %d", ev.Value)
	case game.EventPoolGrew:
		return fmt.Sprintf("pool grew to %d", ev.Value)
	case game.EventCameraChanged:
		if game.CameraID(ev.Value) == game.CameraFreeFlight {
			return "camera free-flight"
		}
		return "camera on-rails"
	default:
		return ev.Kind.String()
	}
}

// Add appends an entry to the log.
func (el *EventLog) Add(tick int, kind game.EventKind, source, msg string) {
	el.entries[el.head] = LogEntry{
		Tick:    tick,
		Kind:    kind,
		Source:  source,
		Message: msg,
	}
	el.head = (el.head + 1) % logMaxEntries
	if el.count < logMaxEntries {
		el.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []LogEntry {
	result := make([]LogEntry, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + logMaxEntries) % logMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

// Clear drops every entry.
func (el *EventLog) Clear() {
	el.head, el.count = 0, 0
}

// entryColour picks the row marker: green for the player, red for enemies,
// amber for session-wide events.
func entryColour(e LogEntry) color.RGBA {
	switch {
	case e.Source == "player":
		return color.RGBA{R: 70, G: 200, B: 90, A: 255}
	case e.Source == "":
		return color.RGBA{R: 220, G: 170, B: 60, A: 255}
	default:
		return color.RGBA{R: 210, G: 70, B: 70, A: 255}
	}
}

// Draw renders the log panel at panelX.
func (el *EventLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 10, B: 16, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 50, B: 80, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 20, G: 20, B: 34, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENT LOG", panelX+8, 2)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+logPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 50, B: 90, A: 200}, false)

	entries := el.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}

	visible := entries[startIdx:]
	recent := 3

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 30, B: 48, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 5, entryColour(e), false)

		src := e.Source
		if src == "" {
			src = "-"
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d [%s] %s", e.Tick, src, e.Message), panelX+12, y)
		y += logLineHeight
	}
}
