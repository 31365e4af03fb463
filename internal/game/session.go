package game

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// PlayerLabel names the player ship in events and the world. Courses may not
// reuse it.
const PlayerLabel = "player"

// Outcome is how a play session ended.
type Outcome int

const (
	OutcomeInProgress Outcome = iota
	OutcomeVictory
	OutcomeGameOver
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeGameOver:
		return "game_over"
	default:
		return "in_progress"
	}
}

// SessionConfig is the tuning for a whole play session.
type SessionConfig struct {
	Flight         FlightConfig
	Aim            AimConfig
	Projectile     ProjectileSpec
	PlayerPoolSize int
	EnemyPoolSize  int
	Seed           int64
}

// DefaultSessionConfig returns stock tuning with pools of 20 player and 10
// enemy lasers.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Flight:         DefaultFlightConfig(),
		Aim:            DefaultAimConfig(),
		Projectile:     DefaultProjectileSpec(),
		PlayerPoolSize: 20,
		EnemyPoolSize:  10,
		Seed:           1,
	}
}

// SessionDeps are the optional collaborators of a Session.
type SessionDeps struct {
	Cameras  CameraRig
	Viewport Viewport
	Recorder Recorder
	Log      zerolog.Logger
}

// RunSummary is the result of a play session.
type RunSummary struct {
	Outcome         Outcome
	Rings           int
	Score           int
	ShotsFired      int
	EnemiesDefeated int
	Elapsed         float64 // gameplay seconds, pauses excluded
	Distance        float64
	PathLength      float64
}

// Session owns every gameplay component of one course and ticks them in a
// fixed order. It replaces global managers: components receive what they
// need from here at construction.
type Session struct {
	cfg SessionConfig

	Bus        *EventBus
	World      *World
	PlayerPool *ProjectilePool
	EnemyPool  *ProjectilePool
	Progress   *ProgressTracker
	Path       PathFollower
	Aim        *AimTarget
	Flight     *FlightController
	Turrets    []*Turret
	Saucers    []*Saucer
	Rings      []*RingGate
	Death      *DeathSequence
	Complete   *CompleteSequence

	paused          bool
	elapsed         float64
	ticks           int
	enemiesDefeated int
	plays           int

	rng *rand.Rand
	rec Recorder
	log zerolog.Logger
}

// NewSession builds the player side of a course on path. Enemies, rings and
// scenery are added afterwards.
func NewSession(cfg SessionConfig, path PathFollower, deps SessionDeps) *Session {
	s := &Session{
		cfg:   cfg,
		Bus:   NewEventBus(),
		World: NewWorld(),
		Path:  path,
		rng:   rand.New(rand.NewSource(cfg.Seed)), // #nosec G404 -- gameplay randomness
		rec:   recorderOrNop(deps.Recorder),
		log:   deps.Log,
		plays: 1,
	}
	s.PlayerPool = NewProjectilePool("player", cfg.PlayerPoolSize, cfg.Projectile, s.World, s.Bus, s.rec, s.log)
	s.EnemyPool = NewProjectilePool("enemy", cfg.EnemyPoolSize, cfg.Projectile, s.World, s.Bus, s.rec, s.log)
	s.Progress = NewProgressTracker(s.Bus, s.log)
	s.Aim = NewAimTarget(cfg.Aim)

	s.Flight = NewFlightController(cfg.Flight, FlightDeps{
		Path:     path,
		Cameras:  deps.Cameras,
		Viewport: deps.Viewport,
		Aim:      s.Aim,
		Pool:     s.PlayerPool,
		World:    s.World,
		Bus:      s.Bus,
		Log:      s.log,
	})
	s.Death = NewDeathSequence(s.Bus, s.log, func() { s.SetPaused(true) })
	s.Complete = NewCompleteSequence(s.Bus, s.log, func() { s.SetPaused(true) })

	s.Bus.Subscribe(EventDefeated, s.onDefeated)
	s.Bus.Subscribe(EventMissionComplete, func(Event) { s.Complete.Start() })
	return s
}

// onDefeated tells the player's track apart by identity, never by label.
func (s *Session) onDefeated(ev Event) {
	if ev.Health != nil && ev.Health == s.Flight.Health() {
		s.StartDeathSequence()
		return
	}
	s.enemiesDefeated++
	s.rec.EnemyDefeated(ev.Source)
	s.Progress.AddScore(1)
}

// Config returns the session tuning.
func (s *Session) Config() SessionConfig { return s.cfg }

// Rand returns the session's seeded random source.
func (s *Session) Rand() *rand.Rand { return s.rng }

// AddTurret places a turret aimed at the player.
func (s *Session) AddTurret(label string, base mgl64.Vec3, facing mgl64.Quat, cfg TurretConfig) *Turret {
	t := NewTurret(label, base, facing, cfg, s.Flight, s.EnemyPool, s.World, s.Bus, s.log)
	s.Turrets = append(s.Turrets, t)
	return t
}

// AddSaucer spawns a hovering saucer.
func (s *Session) AddSaucer(label string, pos mgl64.Vec3, cfg SaucerConfig) *Saucer {
	sc := NewSaucer(label, pos, cfg, s.rng, s.World, s.Bus, s.log)
	s.Saucers = append(s.Saucers, sc)
	return sc
}

// AddRing places a ring gate.
func (s *Session) AddRing(label string, center mgl64.Vec3) *RingGate {
	r := NewRingGate(label, center, s.World, s.Progress, s.Bus, s.rec, s.log)
	s.Rings = append(s.Rings, r)
	return r
}

// AddScenery registers a solid box that blocks line of sight and lasers.
func (s *Session) AddScenery(label string, center, halfExtents mgl64.Vec3) *Collider {
	return s.World.AddBox(label, TagScenery, LayerDefault, center, halfExtents)
}

// Paused reports whether gameplay is frozen.
func (s *Session) Paused() bool { return s.paused }

// SetPaused freezes or resumes gameplay and notifies subscribers. Setting the
// current state again does nothing.
func (s *Session) SetPaused(on bool) {
	if s.paused == on {
		return
	}
	s.paused = on
	if on {
		s.log.Info().Msg("paused")
		s.Bus.Publish(Event{Kind: EventPaused})
	} else {
		s.log.Info().Msg("resumed")
		s.Bus.Publish(Event{Kind: EventResumed})
	}
}

// TogglePause flips the pause state. It is ignored once the session is over;
// only Reset leaves the end screens.
func (s *Session) TogglePause() {
	if s.Outcome() != OutcomeInProgress {
		return
	}
	s.SetPaused(!s.paused)
}

// Outcome reports how the session ended, if it has.
func (s *Session) Outcome() Outcome {
	switch {
	case s.Complete.Done():
		return OutcomeVictory
	case s.Death.Done():
		return OutcomeGameOver
	default:
		return OutcomeInProgress
	}
}

// Over reports whether an end screen is showing.
func (s *Session) Over() bool { return s.Outcome() != OutcomeInProgress }

// StartDeathSequence disables the ship and plays the crash. Repeated calls
// are ignored.
func (s *Session) StartDeathSequence() {
	if s.Death.Running() || s.Death.Done() {
		return
	}
	pos, rot := s.Flight.WorldPosition(), s.Flight.WorldRotation()
	s.Flight.Disable()
	s.Death.Start(pos, rot)
}

// ApplyInput routes one frame of input. Pause is handled here; the rest goes
// to the flight controller.
func (s *Session) ApplyInput(frame InputFrame) {
	for _, ev := range frame.Events {
		if ev.Action == ActionPause && ev.Pressed {
			s.TogglePause()
		}
	}
	s.Flight.ApplyInput(frame)
}

// Tick advances gameplay by dt. While paused nothing moves.
func (s *Session) Tick(dt float64) {
	if s.paused {
		return
	}
	s.ticks++
	s.elapsed += dt

	s.Flight.Tick(dt)
	if s.Path != nil {
		s.Path.Tick(dt)
	}
	s.PlayerPool.Tick(dt)
	s.EnemyPool.Tick(dt)
	for _, t := range s.Turrets {
		t.Tick(dt)
	}
	for _, sc := range s.Saucers {
		sc.Tick(dt)
	}
	for _, r := range s.Rings {
		r.Tick(dt)
	}
	s.Death.Tick(dt)
	s.Complete.Tick(dt)
}

// Ticks returns the number of gameplay ticks run this play.
func (s *Session) Ticks() int { return s.ticks }

// Plays returns how many play sessions have started, counting the first.
func (s *Session) Plays() int { return s.plays }

// Summary reports the current state of the play session.
func (s *Session) Summary() RunSummary {
	sum := RunSummary{
		Outcome:         s.Outcome(),
		Rings:           s.Progress.Rings(),
		Score:           s.Progress.Score(),
		ShotsFired:      s.Flight.ShotsFired,
		EnemiesDefeated: s.enemiesDefeated,
		Elapsed:         s.elapsed,
	}
	if s.Path != nil {
		sum.Distance = s.Path.Position()
		sum.PathLength = s.Path.Length()
	}
	return sum
}

// Reset starts a new play session on the same course: counters zeroed,
// enemies revived, rings re-armed, ship back at the start of the path.
func (s *Session) Reset() {
	s.PlayerPool.ReleaseAll()
	s.EnemyPool.ReleaseAll()
	if r, ok := s.Path.(interface{ SetPosition(float64) }); ok {
		r.SetPosition(0)
	}
	s.Flight.Reset()
	s.Flight.ShotsFired = 0
	for _, t := range s.Turrets {
		t.Reset()
	}
	for _, sc := range s.Saucers {
		if h := sc.Health(); h != nil {
			h.Reset()
		}
		sc.ResetMovement()
	}
	for _, r := range s.Rings {
		r.Reset()
	}
	s.Death.Reset()
	s.Complete.Reset()
	s.Progress.Reset()
	s.enemiesDefeated = 0
	s.elapsed = 0
	s.ticks = 0
	s.plays++
	s.SetPaused(false)
	s.log.Info().Int("play", s.plays).Msg("new play session")
}
