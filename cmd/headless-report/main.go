package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/Rail-Shooter/internal/config"
	"github.com/Garsondee/Rail-Shooter/internal/course"
	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/Garsondee/Rail-Shooter/internal/logging"
	"github.com/Garsondee/Rail-Shooter/internal/store"
	"github.com/Garsondee/Rail-Shooter/internal/telemetry"
	"github.com/rs/zerolog"
)

type runStats struct {
	runIndex int
	seed     int64
	summary  game.RunSummary
	ticks    int

	firstHitTick   int
	firstKillTick  int
	firstRingTick  int
	endTick        int
	damageTaken    int
	hitsTaken      int
	poolGrowth     int
	enemyShots     int
	defeatedLabels map[string]struct{}

	dump  string
	trace []game.SimLogEntry
	tail  []game.SimLogEntry
}

// logOptions selects which parts of a run's event log are printed.
type logOptions struct {
	dump        bool
	trace       string
	tailSeconds float64
}

// extractLog copies the requested slices of the run log into rs.
func extractLog(rs *runStats, sl *game.SimLog, opts logOptions) {
	if opts.dump {
		rs.dump = sl.Format()
	}
	if opts.trace != "" {
		rs.trace = append([]game.SimLogEntry{}, sl.FilterSource(opts.trace)...)
	}
	if opts.tailSeconds > 0 {
		from := rs.ticks - int(opts.tailSeconds/game.SimStep+0.5)
		rs.tail = append([]game.SimLogEntry{}, sl.FilterTickRange(max(from, 0), rs.ticks)...)
	}
}

func main() {
	var runs int
	var seconds float64
	var seedBase int64
	var seedStep int64
	var pilot string
	var coursePath string
	var configDir string
	var dbPath string
	var logLevel string
	var logs logOptions

	flag.IntVar(&runs, "runs", 5, "number of headless runs")
	flag.Float64Var(&seconds, "seconds", 120, "maximum gameplay seconds per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&pilot, "pilot", string(policyGunner), "autopilot policy: passive, rings, gunner")
	flag.StringVar(&coursePath, "course", "", "course YAML file (default: config course, then built-in)")
	flag.StringVar(&configDir, "config", ".", "directory holding "+config.FileName)
	flag.StringVar(&dbPath, "db", "", "record runs into this SQLite file")
	flag.StringVar(&logLevel, "log-level", "warn", "log level for gameplay logging")
	flag.BoolVar(&logs.dump, "dump-log", false, "print every event of each run")
	flag.StringVar(&logs.trace, "trace", "", "print events from one entity label, e.g. player or turret-1")
	flag.Float64Var(&logs.tailSeconds, "tail", 0, "print events from the final N seconds of each run")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if seconds <= 0 {
		fmt.Println("error: -seconds must be > 0")
		return
	}
	if !validPolicy(policy(pilot)) {
		fmt.Printf("error: unsupported pilot %q (supported: passive, rings, gunner)\n", pilot)
		return
	}

	log := logging.New(logLevel, os.Stderr)

	if err := config.Load(configDir); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	cfg, err := config.Get()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode config")
	}

	if coursePath == "" {
		coursePath = cfg.Course
	}
	c, err := course.LoadOrDefault(coursePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load course")
	}

	var db *store.Store
	if dbPath != "" {
		db, err = store.Open(dbPath, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open run database")
		}
		defer db.Close()
	}

	var rec game.Recorder
	if cfg.Telemetry.Enabled {
		counters, err := telemetry.New()
		if err != nil {
			log.Warn().Err(err).Msg("Telemetry disabled")
		} else {
			rec = counters
		}
	}

	maxTicks := int(seconds/game.SimStep + 0.5)
	fmt.Printf("=== Headless Flight Report ===\n")
	fmt.Printf("course=%s pilot=%s runs=%d max_ticks=%d seed_base=%d seed_step=%d\n\n",
		c.Name, pilot, runs, maxTicks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runCourse(i+1, seed, maxTicks, c, cfg, policy(pilot), logs, rec, log)
		all = append(all, stats)
		printRun(stats)
		if db != nil {
			if _, err := db.RecordRun(c.Name, seed, stats.summary); err != nil {
				log.Error().Err(err).Int("run", stats.runIndex).Msg("Failed to record run")
			}
		}
	}

	printAggregate(all)
}

func runCourse(runIndex int, seed int64, maxTicks int, c *course.Course, cfg config.Config, p policy, logs logOptions, rec game.Recorder, log zerolog.Logger) runStats {
	sessCfg := cfg.Session()
	sessCfg.Seed = seed
	tuning := course.Tuning{Turret: cfg.Turret, Saucer: cfg.Saucer}

	opts := []game.SimOption{
		game.WithSessionConfig(sessCfg),
		game.WithPath(c.Points()...),
		game.WithLogger(log),
		game.WithPopulate(func(s *game.Session) { c.Populate(s, tuning) }),
	}
	if rec != nil {
		opts = append(opts, game.WithRecorder(rec))
	}
	ts := game.NewTestSim(opts...)
	ts.Input = &autopilot{s: ts.Session, policy: p}

	end := ts.RunUntil(func(ts *game.TestSim) bool {
		return ts.Session.Over() && ts.Session.Paused()
	}, maxTicks)

	rs := collectStats(runIndex, seed, ts, end)
	extractLog(&rs, ts.SimLog, logs)
	return rs
}

// collectStats reads a finished run out of the session and its log.
func collectStats(runIndex int, seed int64, ts *game.TestSim, end int) runStats {
	rs := runStats{
		runIndex:       runIndex,
		seed:           seed,
		summary:        ts.Session.Summary(),
		ticks:          ts.CurrentTick(),
		endTick:        end,
		defeatedLabels: map[string]struct{}{},
	}

	entries := ts.SimLog.Entries()
	rs.firstHitTick = firstTick(entries, "health", "health_changed", "player")
	rs.firstKillTick = -1
	rs.firstRingTick = firstTick(entries, "progress", "ring_passed", "")

	lastHP := ts.Session.Config().Flight.MaxHealth
	for _, e := range entries {
		switch {
		case e.Category == "health" && e.Key == "health_changed" && e.Source == "player":
			hp := int(e.NumVal)
			if hp < lastHP {
				rs.damageTaken += lastHP - hp
				rs.hitsTaken++
			}
			lastHP = hp
		case e.Category == "health" && e.Key == "defeated" && e.Source != "player":
			rs.defeatedLabels[e.Source] = struct{}{}
			if rs.firstKillTick < 0 {
				rs.firstKillTick = e.Tick
			}
		case e.Category == "pool" && e.Key == "pool_grew":
			rs.poolGrowth++
		case e.Category == "pool" && e.Key == "projectile_fired" && e.Source == "enemy":
			rs.enemyShots++
		}
	}
	return rs
}

func firstTick(entries []game.SimLogEntry, category, key, source string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if source == "" || e.Source == source {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	sum := rs.summary
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s end_tick=%d elapsed=%.2fs distance=%.1f/%.1f\n",
		sum.Outcome, rs.endTick, sum.Elapsed, sum.Distance, sum.PathLength)
	fmt.Printf("progress: rings=%d score=%d shots=%d defeated=%d\n",
		sum.Rings, sum.Score, sum.ShotsFired, sum.EnemiesDefeated)
	fmt.Printf("phase_markers: first_ring=%d first_kill=%d first_hit=%d\n",
		rs.firstRingTick, rs.firstKillTick, rs.firstHitTick)
	fmt.Printf("damage: taken=%d hits=%d enemy_shots=%d pool_growth=%d\n",
		rs.damageTaken, rs.hitsTaken, rs.enemyShots, rs.poolGrowth)
	fmt.Printf("defeated_labels: %s\n", joinSet(rs.defeatedLabels))
	printEntries("trace", rs.trace)
	printEntries("tail", rs.tail)
	if rs.dump != "" {
		fmt.Print("event_log:\n" + rs.dump)
	}
	fmt.Println()
}

func printEntries(title string, entries []game.SimLogEntry) {
	if entries == nil {
		return
	}
	fmt.Printf("%s: %d entries\n", title, len(entries))
	for _, e := range entries {
		fmt.Println("  " + e.String())
	}
}

// outcomeCounts tallies how runs ended.
func outcomeCounts(all []runStats) (victories, gameOvers, unfinished int) {
	for _, rs := range all {
		switch rs.summary.Outcome {
		case game.OutcomeVictory:
			victories++
		case game.OutcomeGameOver:
			gameOvers++
		default:
			unfinished++
		}
	}
	return victories, gameOvers, unfinished
}

func printAggregate(all []runStats) {
	totalRings := 0
	totalScore := 0
	totalShots := 0
	totalDamage := 0
	totalGrowth := 0
	endTicks := make([]int, 0, len(all))
	hitTicks := make([]int, 0, len(all))
	killTicks := make([]int, 0, len(all))
	defeatedGlobal := map[string]struct{}{}
	killCounts := map[string]int{}

	for _, rs := range all {
		totalRings += rs.summary.Rings
		totalScore += rs.summary.Score
		totalShots += rs.summary.ShotsFired
		totalDamage += rs.damageTaken
		totalGrowth += rs.poolGrowth
		if rs.endTick >= 0 {
			endTicks = append(endTicks, rs.endTick)
		}
		if rs.firstHitTick >= 0 {
			hitTicks = append(hitTicks, rs.firstHitTick)
		}
		if rs.firstKillTick >= 0 {
			killTicks = append(killTicks, rs.firstKillTick)
		}
		for label := range rs.defeatedLabels {
			defeatedGlobal[label] = struct{}{}
			killCounts[label]++
		}
	}

	victories, gameOvers, unfinished := outcomeCounts(all)

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d victory=%d game_over=%d unfinished=%d\n", len(all), victories, gameOvers, unfinished)
	fmt.Printf("avg_per_run: rings=%.1f score=%.1f shots=%.1f damage_taken=%.1f pool_growth=%.1f\n",
		avg(totalRings, len(all)), avg(totalScore, len(all)), avg(totalShots, len(all)),
		avg(totalDamage, len(all)), avg(totalGrowth, len(all)))
	fmt.Printf("phase_marker_avg_ticks: end=%s first_hit=%s first_kill=%s\n",
		avgTickString(endTicks), avgTickString(hitTicks), avgTickString(killTicks))
	fmt.Printf("unique_defeated_labels=%d [%s]\n", len(defeatedGlobal), joinSet(defeatedGlobal))

	if len(killCounts) > 0 {
		fmt.Println("\n--- Kill rate per enemy ---")
		labels := make([]string, 0, len(killCounts))
		for l := range killCounts {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Printf("  %-12s %3.0f%%\n", l, float64(killCounts[l])/float64(len(all))*100)
		}
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
