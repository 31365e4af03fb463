package viewer

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/atotto/clipboard"
)

// BuildReport formats the current run as plain text for pasting into bug
// reports: summary first, then the event log tail.
func BuildReport(course string, s *game.Session, log *EventLog) string {
	var sb strings.Builder
	sum := s.Summary()
	fs := s.Flight.State()
	h := s.Flight.Health()

	fmt.Fprintf(&sb, "=== RUN REPORT: %s (play %d, tick %d) ===\n", course, s.Plays(), s.Ticks())
	fmt.Fprintf(&sb, "  outcome:   %s\n", sum.Outcome)
	fmt.Fprintf(&sb, "  distance:  %.1f / %.1f\n", sum.Distance, sum.PathLength)
	fmt.Fprintf(&sb, "  elapsed:   %.2fs\n", sum.Elapsed)
	fmt.Fprintf(&sb, "  health:    %d/%d (%s)\n", h.Current(), h.Max(), h.Band())
	fmt.Fprintf(&sb, "  fuel:      %.0f%%\n", fs.FuelRatio*100)
	fmt.Fprintf(&sb, "  mode:      %s\n", fs.Mode)
	fmt.Fprintf(&sb, "  rings:     %d/%d\n", sum.Rings, len(s.Rings))
	fmt.Fprintf(&sb, "  score:     %d\n", sum.Score)
	fmt.Fprintf(&sb, "  shots:     %d\n", sum.ShotsFired)
	fmt.Fprintf(&sb, "  defeated:  %d\n", sum.EnemiesDefeated)
	fmt.Fprintf(&sb, "  pools:     player %d/%d  enemy %d/%d\n",
		s.PlayerPool.ActiveCount(), s.PlayerPool.Len(),
		s.EnemyPool.ActiveCount(), s.EnemyPool.Len())

	if log != nil {
		entries := log.Recent()
		if len(entries) > 0 {
			sb.WriteString("--- events ---\n")
		}
		for _, e := range entries {
			src := e.Source
			if src == "" {
				src = "-"
			}
			fmt.Fprintf(&sb, "%5d [%s] %s\n", e.Tick, src, e.Message)
		}
	}
	return sb.String()
}

// copyReport puts the report on the system clipboard.
func copyReport(report string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard not supported on this system")
	}
	if err := clipboard.WriteAll(report); err != nil {
		return fmt.Errorf("copying report: %w", err)
	}
	return nil
}
