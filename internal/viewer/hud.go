package viewer

import (
	"fmt"
	"image/color"

	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

const hudScale = 2

var bannerFace = text.NewGoXFace(basicfont.Face7x13)

// bandColour is the HUD colour for a health band.
func bandColour(b game.HealthBand) color.RGBA {
	switch b {
	case game.HealthCritical:
		return color.RGBA{R: 220, G: 50, B: 50, A: 255}
	case game.HealthWarning:
		return color.RGBA{R: 230, G: 200, B: 40, A: 255}
	default:
		return color.RGBA{R: 60, G: 210, B: 90, A: 255}
	}
}

// drawBar draws a labelled horizontal meter into dst at 1x.
func drawBar(dst *ebiten.Image, x, y, w, h float32, ratio float64, fill color.RGBA, label string) {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	vector.FillRect(dst, x, y, w, h, color.RGBA{R: 20, G: 20, B: 28, A: 220}, false)
	vector.FillRect(dst, x, y, w*float32(ratio), h, fill, false)
	vector.StrokeRect(dst, x, y, w, h, 1.0, color.RGBA{R: 90, G: 90, B: 120, A: 200}, false)
	ebitenutil.DebugPrintAt(dst, label, int(x+w)+4, int(y)-3)
}

// drawHUD renders meters, counters and the key legend. Text is drawn into
// hudBuf at 1x then composited onto the screen at hudScale.
func (g *Game) drawHUD(screen *ebiten.Image) {
	s := g.session
	fs := s.Flight.State()
	h := s.Flight.Health()

	g.hudBuf.Clear()

	drawBar(g.hudBuf, 6, 6, 100, 7, h.Ratio(), bandColour(h.Band()), fmt.Sprintf("HP %d/%d", h.Current(), h.Max()))

	fuelCol := color.RGBA{R: 70, G: 150, B: 230, A: 255}
	if fs.FuelRatio < 1 {
		fuelCol = color.RGBA{R: 70, G: 90, B: 140, A: 255}
	}
	drawBar(g.hudBuf, 6, 18, 100, 7, fs.FuelRatio, fuelCol, "FUEL")

	ebitenutil.DebugPrintAt(g.hudBuf,
		fmt.Sprintf("RINGS %d/%d  SCORE %d", s.Progress.Rings(), len(s.Rings), s.Progress.Score()), 6, 28)
	ebitenutil.DebugPrintAt(g.hudBuf,
		fmt.Sprintf("%s  %.1f u/s  %3.0f%%", fs.Mode, fs.CurrentSpeed, 100*s.Path.Position()/max(s.Path.Length(), 1e-9)), 6, 40)

	if g.showHelp {
		lines := []string{
			"WASD/arrows steer  Space fire",
			"Shift boost  Ctrl brake  Q/E roll",
			"F flight mode  Esc pause",
			fmt.Sprintf("I invert-Y [%v]  R restart", s.Aim.InvertY()),
			"C copy report  H help",
		}
		const lineH = 12
		const charW = 6
		const padX = 5
		const padY = 4

		maxLen := 0
		for _, l := range lines {
			if len(l) > maxLen {
				maxLen = len(l)
			}
		}
		boxW := float32(maxLen*charW + padX*2)
		boxH := float32(len(lines)*lineH + padY*2)
		bufH := float32(g.gameHeight / hudScale)
		bx := float32(4)
		by := bufH - boxH - 4

		vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 6, B: 12, A: 210}, false)
		vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 60, B: 110, A: 180}, false)
		vector.StrokeLine(g.hudBuf, bx+1, by+1, bx+boxW-1, by+1, 1.0, color.RGBA{R: 80, G: 80, B: 150, A: 80}, false)
		for i, line := range lines {
			ebitenutil.DebugPrintAt(g.hudBuf, line, int(bx)+padX, int(by)+padY+i*lineH)
		}
	}

	if g.status != "" {
		ebitenutil.DebugPrintAt(g.hudBuf, g.status, 6, 52)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(hudScale, hudScale)
	screen.DrawImage(g.hudBuf, opts)

	switch s.Outcome() {
	case game.OutcomeVictory:
		g.drawBanner(screen, "MISSION COMPLETE", color.RGBA{R: 120, G: 230, B: 140, A: 255})
	case game.OutcomeGameOver:
		g.drawBanner(screen, "GAME OVER", color.RGBA{R: 230, G: 70, B: 70, A: 255})
	default:
		if s.Paused() {
			g.drawBanner(screen, "PAUSED", color.RGBA{R: 220, G: 220, B: 240, A: 255})
		}
	}
}

// drawBanner centres a large message over the playfield.
func (g *Game) drawBanner(screen *ebiten.Image, msg string, col color.RGBA) {
	const scale = 4
	w, h := text.Measure(msg, bannerFace, 0)
	x := (float64(g.gameWidth) - w*scale) / 2
	y := (float64(g.gameHeight) - h*scale) / 2

	vector.FillRect(screen, 0, float32(y-12), float32(g.gameWidth), float32(h*scale+24), color.RGBA{A: 150}, false)

	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	text.Draw(screen, msg, bannerFace, op)

	if g.session.Over() {
		ebitenutil.DebugPrintAt(screen, "R to fly again", g.gameWidth/2-42, int(y+h*scale)+16)
	}
}
