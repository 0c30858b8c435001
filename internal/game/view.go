package game

import (
	"image"
	"math"
)

// View projects world points into one camera's pixel viewport.
type View struct {
	cam    *Camera
	bounds image.Rectangle
	// focal length in pixels derived from the vertical field of view.
	focal   float64
	fwd     Vec3
	right   Vec3
	up      Vec3
	halfTan float64 // tan of half the horizontal field of view
}

// NewView prepares a projection of cam into a screen of w×h pixels.
func NewView(cam *Camera, w, h int) View {
	b := cam.Viewport.Pixels(w, h)
	fov := cam.FieldOfView
	if fov <= 0 {
		fov = 60
	}
	halfV := fov * degToRad / 2
	focal := float64(b.Dy()) / 2 / math.Tan(halfV)
	fwd := cam.Transform.Forward()
	right := cam.Transform.Right()
	aspect := 1.0
	if b.Dy() > 0 {
		aspect = float64(b.Dx()) / float64(b.Dy())
	}
	return View{
		cam:     cam,
		bounds:  b,
		focal:   focal,
		fwd:     fwd,
		right:   right,
		up:      cross(fwd, right),
		halfTan: math.Tan(halfV) * aspect,
	}
}

// Bounds is the viewport in screen pixels.
func (v View) Bounds() image.Rectangle { return v.bounds }

// Project returns the screen position of p and its view depth. ok is false
// for points behind the near plane or beyond the far plane.
func (v View) Project(p Vec3) (x, y, depth float64, ok bool) {
	rel := p.Sub(v.cam.Transform.Position)
	depth = rel.Dot(v.fwd)
	if depth < v.cam.Near || depth > v.cam.Far {
		return 0, 0, depth, false
	}
	x, y = v.screen(p)
	return x, y, depth, true
}

// ProjectSegment projects the segment a-b, clipping it against the near
// plane. ok is false when the whole segment is behind the camera.
func (v View) ProjectSegment(a, b Vec3) (x0, y0, x1, y1 float64, ok bool) {
	pos := v.cam.Transform.Position
	da := a.Sub(pos).Dot(v.fwd)
	db := b.Sub(pos).Dot(v.fwd)
	near := v.cam.Near
	if da < near && db < near {
		return 0, 0, 0, 0, false
	}
	if da < near {
		a = a.Add(b.Sub(a).Scale((near - da) / (db - da)))
	} else if db < near {
		b = b.Add(a.Sub(b).Scale((near - db) / (da - db)))
	}
	x0, y0 = v.screen(a)
	x1, y1 = v.screen(b)
	return x0, y0, x1, y1, true
}

func (v View) screen(p Vec3) (x, y float64) {
	rel := p.Sub(v.cam.Transform.Position)
	depth := math.Max(rel.Dot(v.fwd), v.cam.Near)
	cx := float64(v.bounds.Min.X) + float64(v.bounds.Dx())/2
	cy := float64(v.bounds.Min.Y) + float64(v.bounds.Dy())/2
	return cx + rel.Dot(v.right)/depth*v.focal, cy - rel.Dot(v.up)/depth*v.focal
}

// InCone reports whether p lies inside the horizontal view cone, within the
// far plane. Vertical extent is ignored; it is used to skip off-screen
// objects before projecting them.
func (v View) InCone(p Vec3) bool {
	rel := p.Sub(v.cam.Transform.Position)
	depth := rel.Dot(v.fwd)
	if depth < v.cam.Near || depth > v.cam.Far {
		return false
	}
	return math.Abs(rel.Dot(v.right)) <= depth*v.halfTan
}

// PixelScale returns how many pixels one metre covers at depth.
func (v View) PixelScale(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return v.focal / depth
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}
