// Package viewer drives a game.Session with Ebiten: keyboard input, a
// wireframe chase view, the HUD and an event log panel.
package viewer

import (
	"image/color"
	"math"

	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
)

// SettingsStore persists the invert-Y option.
type SettingsStore interface {
	SetInvertY(inverted bool) (bool, error)
}

// Options configures a Game. Session and Camera are required; the camera
// must be the CameraRig the session was built with.
type Options struct {
	Session  *game.Session
	Camera   *Camera
	Course   string
	Width    int // playfield, excluding the log panel
	Height   int
	Settings SettingsStore
	Log      zerolog.Logger

	// OnRunEnd is called once each time a play ends in victory or game over.
	OnRunEnd func(game.RunSummary)
}

// Game implements ebiten.Game.
type Game struct {
	session  *game.Session
	camera   *Camera
	keyboard *Keyboard
	eventLog *EventLog
	course   string
	settings SettingsStore
	onRunEnd func(game.RunSummary)
	log      zerolog.Logger

	width      int
	height     int
	gameWidth  int
	gameHeight int

	showHelp bool
	status   string // one-line feedback for UI keys
	reported bool   // OnRunEnd already called for this play
	prevKeys map[ebiten.Key]bool

	// Offscreen buffer for HUD text, rendered at 1x then blitted at hudScale.
	hudBuf *ebiten.Image
}

// New creates the viewer and hooks its event log to the session bus.
func New(o Options) *Game {
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 720
	}
	g := &Game{
		session:    o.Session,
		camera:     o.Camera,
		keyboard:   NewKeyboard(),
		eventLog:   NewEventLog(),
		course:     o.Course,
		settings:   o.Settings,
		onRunEnd:   o.OnRunEnd,
		log:        o.Log,
		width:      o.Width + logPanelWidth,
		height:     o.Height,
		gameWidth:  o.Width,
		gameHeight: o.Height,
		showHelp:   true,
		prevKeys:   make(map[ebiten.Key]bool),
	}
	g.camera.Resize(o.Width, o.Height)
	g.eventLog.Attach(g.session.Bus, g.session.Ticks)
	g.hudBuf = ebiten.NewImage(g.gameWidth/hudScale, g.gameHeight/hudScale)
	g.camera.Follow(g.session)
	return g
}

// Size returns the window size including the log panel.
func (g *Game) Size() (int, int) { return g.width, g.height }

func (g *Game) Update() error {
	g.handleInput()
	g.session.ApplyInput(g.keyboard.Poll())
	g.session.Tick(game.SimStep)
	g.camera.Follow(g.session)

	if g.session.Over() && g.session.Paused() && !g.reported {
		g.reported = true
		sum := g.session.Summary()
		g.log.Info().
			Str("outcome", sum.Outcome.String()).
			Int("score", sum.Score).
			Int("rings", sum.Rings).
			Float64("elapsed", sum.Elapsed).
			Msg("Run finished")
		if g.onRunEnd != nil {
			g.onRunEnd(sum)
		}
	}
	return nil
}

// handleInput processes viewer keys (edge-triggered). Gameplay keys go
// through the Keyboard input source.
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	// H: toggle key legend.
	if pressed(ebiten.KeyH) {
		g.showHelp = !g.showHelp
	}

	// R: new play on the same course.
	if pressed(ebiten.KeyR) {
		g.restart()
	}

	// I: flip and persist invert-Y.
	if pressed(ebiten.KeyI) {
		g.toggleInvertY()
	}

	// C: copy the run report.
	if pressed(ebiten.KeyC) {
		if err := copyReport(BuildReport(g.course, g.session, g.eventLog)); err != nil {
			g.log.Warn().Err(err).Msg("Copy report failed")
			g.status = "copy failed"
		} else {
			g.status = "report copied"
		}
	}

	g.prevKeys = currentKeys
}

func (g *Game) restart() {
	g.session.Reset()
	g.eventLog.Clear()
	g.reported = false
	g.status = ""
	g.log.Info().Int("play", g.session.Plays()).Msg("Restarted")
}

func (g *Game) toggleInvertY() {
	inverted := !g.session.Aim.InvertY()
	g.session.Aim.SetInvertY(inverted)
	g.status = "invert-Y off"
	if inverted {
		g.status = "invert-Y on"
	}
	if g.settings == nil {
		return
	}
	if _, err := g.settings.SetInvertY(inverted); err != nil {
		g.log.Error().Err(err).Msg("Saving invert-Y failed")
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 6, G: 8, B: 16, A: 255})

	g.drawWorld(screen)
	g.eventLog.Draw(screen, g.gameWidth, g.height)
	g.drawHUD(screen)
}

var (
	pathCol    = color.RGBA{R: 50, G: 60, B: 90, A: 255}
	ringCol    = color.RGBA{R: 240, G: 200, B: 60, A: 255}
	passedCol  = color.RGBA{R: 90, G: 80, B: 40, A: 255}
	saucerCol  = color.RGBA{R: 200, G: 120, B: 230, A: 255}
	turretCol  = color.RGBA{R: 230, G: 90, B: 70, A: 255}
	sceneryCol = color.RGBA{R: 110, G: 130, B: 150, A: 255}
	playerCol  = color.RGBA{R: 90, G: 230, B: 255, A: 255}
	laserCol   = color.RGBA{R: 120, G: 255, B: 120, A: 255}
	enemyShot  = color.RGBA{R: 255, G: 90, B: 90, A: 255}
	wreckCol   = color.RGBA{R: 255, G: 150, B: 50, A: 255}
)

// drawWorld renders a wireframe of the course through the chase camera.
func (g *Game) drawWorld(screen *ebiten.Image) {
	s := g.session

	if rc, ok := s.Path.(*game.RailCart); ok {
		pts := rc.Points()
		for i := 1; i < len(pts); i++ {
			g.line3(screen, pts[i-1], pts[i], 1, pathCol)
		}
	}

	for _, c := range s.World.Colliders() {
		if c.Tag == game.TagScenery && c.Enabled() {
			g.box3(screen, c.Center, c.HalfExtents, sceneryCol)
		}
	}

	for _, r := range s.Rings {
		if !r.Visible() {
			continue
		}
		col := ringCol
		if r.Passed() {
			col = passedCol
		}
		g.ring3(screen, r.Center(), game.YawQuat(r.Yaw()), 3, col)
	}

	for _, sc := range s.Saucers {
		if !sc.Active() {
			continue
		}
		g.ring3(screen, sc.Position(), game.Euler(90, sc.Yaw(), 0), 1.2, saucerCol)
	}

	for _, t := range s.Turrets {
		if !t.Active() {
			continue
		}
		g.box3(screen, t.Base(), mgl64.Vec3{0.6, 0.6, 0.6}, turretCol)
		head := t.HeadPosition()
		g.line3(screen, head, t.MuzzlePosition(), 2, turretCol)
		left, right := t.ConeEdges()
		reach := t.Config().DetectionRadius
		g.line3(screen, head, head.Add(left.Mul(reach)), 1, color.RGBA{R: 120, G: 50, B: 40, A: 255})
		g.line3(screen, head, head.Add(right.Mul(reach)), 1, color.RGBA{R: 120, G: 50, B: 40, A: 255})
	}

	g.drawLasers(screen, s.PlayerPool, laserCol)
	g.drawLasers(screen, s.EnemyPool, enemyShot)

	switch {
	case s.Death.Running():
		pos, rot := s.Death.Pose()
		g.ship3(screen, pos, rot, wreckCol)
	case !s.Death.Done():
		rot := s.Flight.WorldRotation().Mul(s.Flight.MeshRotation())
		g.ship3(screen, s.Flight.WorldPosition(), rot, playerCol)
	}
}

func (g *Game) drawLasers(screen *ebiten.Image, pool *game.ProjectilePool, col color.RGBA) {
	for _, p := range pool.Entries() {
		if !p.Active() {
			continue
		}
		tail := p.Position.Sub(game.Forward(p.Rotation).Mul(1.5))
		g.line3(screen, tail, p.Position, 2, col)
	}
}

func (g *Game) line3(screen *ebiten.Image, a, b mgl64.Vec3, width float32, col color.RGBA) {
	ax, ay, _, okA := g.camera.Project(a)
	bx, by, _, okB := g.camera.Project(b)
	if !okA || !okB {
		return
	}
	vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), width, col, true)
}

// ring3 draws a circle of radius r in the XY plane of rot.
func (g *Game) ring3(screen *ebiten.Image, center mgl64.Vec3, rot mgl64.Quat, r float64, col color.RGBA) {
	const segments = 24
	prev := center.Add(rot.Rotate(mgl64.Vec3{r, 0, 0}))
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		next := center.Add(rot.Rotate(mgl64.Vec3{r * math.Cos(a), r * math.Sin(a), 0}))
		g.line3(screen, prev, next, 2, col)
		prev = next
	}
}

func (g *Game) box3(screen *ebiten.Image, center, half mgl64.Vec3, col color.RGBA) {
	var c [8]mgl64.Vec3
	for i := range c {
		sx, sy, sz := -1.0, -1.0, -1.0
		if i&1 != 0 {
			sx = 1
		}
		if i&2 != 0 {
			sy = 1
		}
		if i&4 != 0 {
			sz = 1
		}
		c[i] = center.Add(mgl64.Vec3{sx * half.X(), sy * half.Y(), sz * half.Z()})
	}
	edges := [12][2]int{
		{0, 1}, {2, 3}, {4, 5}, {6, 7},
		{0, 2}, {1, 3}, {4, 6}, {5, 7},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		g.line3(screen, c[e[0]], c[e[1]], 1, col)
	}
}

// ship3 draws the ship as a dart pointing along rot.
func (g *Game) ship3(screen *ebiten.Image, pos mgl64.Vec3, rot mgl64.Quat, col color.RGBA) {
	nose := pos.Add(rot.Rotate(mgl64.Vec3{0, 0, 1.5}))
	left := pos.Add(rot.Rotate(mgl64.Vec3{-1.2, 0, -0.8}))
	right := pos.Add(rot.Rotate(mgl64.Vec3{1.2, 0, -0.8}))
	fin := pos.Add(rot.Rotate(mgl64.Vec3{0, 0.6, -0.8}))
	g.line3(screen, nose, left, 2, col)
	g.line3(screen, nose, right, 2, col)
	g.line3(screen, left, right, 2, col)
	g.line3(screen, nose, fin, 1, col)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
