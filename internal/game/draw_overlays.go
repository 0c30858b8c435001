package game

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// labelFace is the bitmap font used for viewport labels and the HUD.
var labelFace = text.NewGoXFace(basicfont.Face7x13)

const hudLineHeight = 15

func drawText(dst *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, labelFace, op)
}

// drawPlayerLabels prints each player's slot, device and stick readout in
// the top-left corner of their viewport.
func (g *Game) drawPlayerLabels(screen *ebiten.Image) {
	for _, slot := range Slots {
		cam := g.split.Camera(slot)
		o := viewportOrigin(cam, g.width, g.height)
		x, y := float64(o.X+10), float64(o.Y+8)

		device := "no controller"
		var move, look Vec2
		if p := g.ctx.Scene.FindPlayer(slot); p != nil {
			if d := p.Gamepad(); d != nil {
				device = d.Name()
			}
			move, look = p.MoveInput(), p.LookInput()
		}
		w, _ := text.Measure(device, labelFace, 0)
		boxW := float32(max(w, 150) + 16)
		vector.FillRect(screen, float32(x-6), float32(y-4), boxW, 3*hudLineHeight+6, color.RGBA{R: 0, G: 0, B: 0, A: 150}, false)
		vector.FillRect(screen, float32(x-6), float32(y-4), 3, 3*hudLineHeight+6, slotColor(slot), false)

		drawText(screen, fmt.Sprintf("%s  %s", slot, cam.Name), x, y, slotColor(slot))
		drawText(screen, device, x, y+hudLineHeight, color.White)
		drawText(screen, fmt.Sprintf("move %+.2f,%+.2f  look %+.2f,%+.2f", move.X, move.Y, look.X, look.Y), x, y+2*hudLineHeight, color.RGBA{R: 170, G: 170, B: 170, A: 255})
	}
}

// drawHUD renders the key legend and registry status at the bottom right.
func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{
		g.ctx.Registry.StatusInfo(),
		fmt.Sprintf("level: %s  split: %s  lights: %s", g.ctx.Scene.Name, g.split.Orientation(), g.lightStatus()),
		"[F5] reassign  [F8] checkpoint  [F9] load  [F3] copy status  [H] hud  [Esc] quit",
	}
	if g.notice != "" && time.Now().Before(g.noticeUntil) {
		lines = append(lines, g.notice)
	}

	maxW := 0.0
	for _, l := range lines {
		if w, _ := text.Measure(l, labelFace, 0); w > maxW {
			maxW = w
		}
	}
	const pad = 6
	boxW := float32(maxW + 2*pad)
	boxH := float32(len(lines)*hudLineHeight + 2*pad)
	bx := float32(g.width) - boxW - 4
	by := float32(g.height) - boxH - 4

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, l := range lines {
		drawText(screen, l, float64(bx)+pad, float64(by)+pad+float64(i*hudLineHeight), color.White)
	}
}

func (g *Game) lightStatus() string {
	if g.ctx.culler == nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d", g.ctx.culler.ActiveCount(), g.ctx.culler.TotalCount())
}
