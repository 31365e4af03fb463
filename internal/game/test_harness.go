package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// SimStep is the fixed tick used by the headless harness (60 Hz).
const SimStep = 1.0 / 60.0

// TestSim is a headless harness around a Session. It mirrors the viewer's
// update loop without Ebiten and records every bus event to SimLog.
type TestSim struct {
	Session *Session
	SimLog  *SimLog
	Input   InputSource

	cfg      SessionConfig
	path     []mgl64.Vec3
	verbose  bool
	recorder Recorder
	cameras  CameraRig
	log      zerolog.Logger
	tick     int
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // seed, path, tuning; applied before the session exists
	simOptEntity                      // turrets, saucers, rings, scenery
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.Seed = seed }}
}

// WithVerbose enables per-tick flight entries.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.verbose = v }}
}

// WithPath replaces the default straight path.
func WithPath(points ...mgl64.Vec3) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.path = points }}
}

// WithSessionConfig replaces the whole tuning.
func WithSessionConfig(cfg SessionConfig) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		seed := ts.cfg.Seed
		ts.cfg = cfg
		if cfg.Seed == 0 {
			ts.cfg.Seed = seed
		}
	}}
}

// WithFlightConfig replaces the ship tuning.
func WithFlightConfig(fc FlightConfig) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.Flight = fc }}
}

// WithRecorder installs a metrics recorder.
func WithRecorder(r Recorder) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.recorder = r }}
}

// WithCameras installs a camera rig.
func WithCameras(c CameraRig) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cameras = c }}
}

// WithInput drives the ship from a scripted source.
func WithInput(src InputSource) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.Input = src }}
}

// WithLogger routes session logging to log.
func WithLogger(log zerolog.Logger) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.log = log }}
}

// WithPopulate runs fn against the new session, for adding a whole course.
func WithPopulate(fn func(*Session)) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) { fn(ts.Session) }}
}

// WithTurret adds a turret at base facing along facing.
func WithTurret(label string, base mgl64.Vec3, facing mgl64.Quat, cfg TurretConfig) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.Session.AddTurret(label, base, facing, cfg)
	}}
}

// WithSaucer adds a saucer.
func WithSaucer(label string, pos mgl64.Vec3) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.Session.AddSaucer(label, pos, DefaultSaucerConfig())
	}}
}

// WithRing adds a ring gate.
func WithRing(label string, center mgl64.Vec3) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.Session.AddRing(label, center)
	}}
}

// WithScenery adds a solid box.
func WithScenery(label string, center, halfExtents mgl64.Vec3) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.Session.AddScenery(label, center, halfExtents)
	}}
}

// NewTestSim constructs a TestSim from the given options in two passes:
//  1. Infrastructure (seed, path, tuning) and session construction
//  2. Entities
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		cfg:  DefaultSessionConfig(),
		path: []mgl64.Vec3{{0, 0, 0}, {0, 0, 200}},
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	ts.SimLog = NewSimLog(ts.verbose)
	ts.Session = NewSession(ts.cfg, NewRailCart(ts.path), SessionDeps{
		Cameras:  ts.cameras,
		Recorder: ts.recorder,
		Log:      ts.log,
	})
	ts.SimLog.Attach(ts.Session.Bus, ts.CurrentTick)
	for _, o := range opts {
		if o.kind == simOptEntity {
			o.fn(ts)
		}
	}
	return ts
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.runOneTick()
	}
}

// RunSeconds advances the simulation by whole ticks covering secs.
func (ts *TestSim) RunSeconds(secs float64) {
	ts.RunTicks(int(secs/SimStep + 0.5))
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.tick
		}
	}
	return -1
}

// Press feeds a single input frame outside the scripted source.
func (ts *TestSim) Press(events ...InputEvent) {
	ts.Session.ApplyInput(InputFrame{Events: events})
}

// runOneTick mirrors the viewer's Update: poll input, then tick gameplay.
func (ts *TestSim) runOneTick() {
	ts.tick++
	if ts.Input != nil {
		ts.Session.ApplyInput(ts.Input.Poll())
	}
	ts.Session.Tick(SimStep)

	if ts.SimLog.Verbose() {
		fs := ts.Session.Flight.State()
		ts.SimLog.AddVerbose(ts.tick, PlayerLabel, "flight", "speed",
			fmt.Sprintf("%.2f -> %.2f fuel=%.2f", fs.CurrentSpeed, fs.TargetSpeed, fs.FuelRatio), fs.CurrentSpeed)
	}
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.tick
}
