package game

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	gridSpacing   = 2.0 // metres between ground grid lines
	beamFadeStart = 2.0
	beamFadeEnd   = 8.0
)

var (
	gridColor    = color.RGBA{R: 40, G: 52, B: 40, A: 255}
	wallColor    = color.RGBA{R: 120, G: 128, B: 120, A: 255}
	wallShadow   = color.RGBA{R: 70, G: 76, B: 70, A: 255}
	triggerColor = color.RGBA{R: 230, G: 200, B: 60, A: 255}
)

// renderer draws the scene as seen by one camera into its viewport.
type renderer struct {
	scene *Scene
	view  View
	fade  *FadeOutCamera
}

// renderCamera draws cam's view of scene into its viewport of screen.
func renderCamera(screen *ebiten.Image, scene *Scene, cam *Camera, fade *FadeOutCamera) {
	b := screen.Bounds()
	v := NewView(cam, b.Dx(), b.Dy())
	if v.Bounds().Empty() {
		return
	}
	sub, ok := screen.SubImage(v.Bounds()).(*ebiten.Image)
	if !ok {
		return
	}
	sub.Fill(scene.Background)
	r := renderer{scene: scene, view: v, fade: fade}
	r.drawGround(sub)
	r.drawTriggers(sub)
	r.drawWalls(sub)
	r.drawLights(sub)
	r.drawPlayers(sub)
}

func (r renderer) line(dst *ebiten.Image, a, b Vec3, width float32, clr color.Color) {
	x0, y0, x1, y1, ok := r.view.ProjectSegment(a, b)
	if !ok {
		return
	}
	vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y1), width, clr, true)
}

func (r renderer) drawGround(dst *ebiten.Image) {
	lvl := r.scene.Level
	if lvl == nil {
		return
	}
	for x := 0.0; x <= lvl.Width; x += gridSpacing {
		r.line(dst, Vec3{X: x}, Vec3{X: x, Z: lvl.Depth}, 1, gridColor)
	}
	for z := 0.0; z <= lvl.Depth; z += gridSpacing {
		r.line(dst, Vec3{Z: z}, Vec3{X: lvl.Width, Z: z}, 1, gridColor)
	}
}

// drawTriggers outlines each level exit on the ground.
func (r renderer) drawTriggers(dst *ebiten.Image) {
	lvl := r.scene.Level
	if lvl == nil {
		return
	}
	for _, t := range lvl.Triggers {
		c := [4]Vec3{
			{X: t.X, Z: t.Z}, {X: t.X + t.W, Z: t.Z},
			{X: t.X + t.W, Z: t.Z + t.D}, {X: t.X, Z: t.Z + t.D},
		}
		for i := range c {
			r.line(dst, c[i], c[(i+1)%4], 2, triggerColor)
		}
	}
}

// drawWalls draws every wall as a wireframe box, farthest first.
func (r renderer) drawWalls(dst *ebiten.Image) {
	lvl := r.scene.Level
	if lvl == nil {
		return
	}
	type item struct {
		w     Wall
		depth float64
	}
	camPos := r.view.cam.Transform.Position
	items := make([]item, 0, len(lvl.Walls))
	for _, w := range lvl.Walls {
		c := Vec3{X: w.X + w.W/2, Z: w.Z + w.D/2}
		items = append(items, item{w, c.Dist(camPos)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].depth > items[j].depth })

	for _, it := range items {
		w := it.w
		base := [4]Vec3{
			{X: w.X, Z: w.Z}, {X: w.X + w.W, Z: w.Z},
			{X: w.X + w.W, Z: w.Z + w.D}, {X: w.X, Z: w.Z + w.D},
		}
		for i := range base {
			j := (i + 1) % 4
			top0 := base[i].Add(Up.Scale(w.Height))
			top1 := base[j].Add(Up.Scale(w.Height))
			r.line(dst, base[i], base[j], 1, wallShadow)
			r.line(dst, top0, top1, 2, wallColor)
			r.line(dst, base[i], top0, 1, wallShadow)
		}
	}
}

func (r renderer) drawLights(dst *ebiten.Image) {
	for _, l := range r.scene.Lights {
		if !l.Enabled || l.Kind == LightDirectional || !r.view.InCone(l.Position) {
			continue
		}
		x, y, depth, ok := r.view.Project(l.Position)
		if !ok {
			continue
		}
		rad := float32(math.Max(2, 0.25*r.view.PixelScale(depth)))
		vector.FillCircle(dst, float32(x), float32(y), rad, l.Color, true)

		if l.Kind != LightSpot {
			continue
		}
		alpha := 1.0
		if r.fade != nil {
			alpha = r.fade.Fade(l.Position, beamFadeStart, beamFadeEnd)
		}
		if alpha <= 0 {
			continue
		}
		beam := l.Color
		beam.A = uint8(float64(beam.A) * 0.4 * alpha)
		r.line(dst, l.Position, Vec3{X: l.Position.X, Z: l.Position.Z}, float32(math.Max(1, 0.5*r.view.PixelScale(depth))), beam)
	}
}

func (r renderer) drawPlayers(dst *ebiten.Image) {
	for _, p := range r.scene.Players {
		pos := p.Position()
		x, y, depth, ok := r.view.Project(pos.Add(Up.Scale(0.9)))
		if !ok {
			continue
		}
		scale := r.view.PixelScale(depth)
		clr := slotColor(p.Slot())
		vector.FillCircle(dst, float32(x), float32(y), float32(math.Max(3, playerRadius*scale)), clr, true)

		facing := Transform{Yaw: p.Yaw()}.Forward().Scale(0.8)
		head := pos.Add(Up.Scale(0.9))
		r.line(dst, head, head.Add(facing), float32(math.Max(1, 0.1*scale)), color.White)
	}
}

// strokeDivider draws the split-screen divider over the whole screen.
func strokeDivider(screen *ebiten.Image, d Divider) {
	if d.Width <= 0 {
		return
	}
	b := screen.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	x0, y0 := d.From.X*w, (1-d.From.Y)*h
	x1, y1 := d.To.X*w, (1-d.To.Y)*h
	vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), float32(d.Width), d.Color, false)
}

// viewportOrigin is the top-left pixel of cam's viewport, for labels.
func viewportOrigin(cam *Camera, w, h int) image.Point {
	return cam.Viewport.Pixels(w, h).Min
}
