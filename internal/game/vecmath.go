package game

import (
	"image"
	"math"
)

const degToRad = math.Pi / 180.0

// Vec2 is a 2D analog value: stick deflection, screen point or XZ offset.
type Vec2 struct {
	X, Y float64
}

// Len returns the magnitude of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Scale multiplies both components by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Normalized returns v scaled to unit length, or the zero vector when v is zero.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Vec3 is a world-space position or direction. Y is up, Z is forward at yaw 0.
type Vec3 struct {
	X, Y, Z float64
}

// Up is the world up axis.
var Up = Vec3{0, 1, 0}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64         { return math.Sqrt(v.Dot(v)) }

// Dist returns the euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }

// Normalized returns v scaled to unit length, or zero when v is zero.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// RotateEuler rotates v by pitch about X then yaw about Y (degrees, roll 0).
// Positive pitch tilts forward downward, positive yaw turns forward toward +X.
func RotateEuler(pitchDeg, yawDeg float64, v Vec3) Vec3 {
	p := pitchDeg * degToRad
	y := yawDeg * degToRad
	sp, cp := math.Sincos(p)
	sy, cy := math.Sincos(y)

	// About X.
	ry := v.Y*cp - v.Z*sp
	rz := v.Y*sp + v.Z*cp
	// About Y.
	return Vec3{
		X: v.X*cy + rz*sy,
		Y: ry,
		Z: -v.X*sy + rz*cy,
	}
}

// Transform is the pose of a scene object. Angles are in degrees.
type Transform struct {
	Position Vec3
	Yaw      float64
	Pitch    float64
}

// Forward is the unit vector the transform faces.
func (t Transform) Forward() Vec3 { return RotateEuler(t.Pitch, t.Yaw, Vec3{0, 0, 1}) }

// Right is the unit vector to the transform's right on the ground plane.
func (t Transform) Right() Vec3 { return RotateEuler(0, t.Yaw, Vec3{1, 0, 0}) }

// TransformDirection maps a local direction into world space.
func (t Transform) TransformDirection(local Vec3) Vec3 {
	return RotateEuler(t.Pitch, t.Yaw, local)
}

// LookAt orients t so that Forward points at p. Leaves t unchanged when p is t's position.
func (t *Transform) LookAt(p Vec3) {
	d := p.Sub(t.Position)
	flat := math.Hypot(d.X, d.Z)
	if flat < 1e-9 && math.Abs(d.Y) < 1e-9 {
		return
	}
	t.Yaw = math.Atan2(d.X, d.Z) / degToRad
	t.Pitch = -math.Atan2(d.Y, flat) / degToRad
}

// SmoothDamp moves current toward target with a critically damped spring.
// velocity carries state between calls; smoothTime is roughly the time to reach target.
func SmoothDamp(current, target Vec3, velocity *Vec3, smoothTime, dt float64) Vec3 {
	if dt <= 0 {
		return current
	}
	return Vec3{
		X: smoothDamp1(current.X, target.X, &velocity.X, smoothTime, dt),
		Y: smoothDamp1(current.Y, target.Y, &velocity.Y, smoothTime, dt),
		Z: smoothDamp1(current.Z, target.Z, &velocity.Z, smoothTime, dt),
	}
}

func smoothDamp1(current, target float64, velocity *float64, smoothTime, dt float64) float64 {
	smoothTime = math.Max(0.0001, smoothTime)
	omega := 2 / smoothTime
	x := omega * dt
	decay := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)

	change := current - target
	temp := (*velocity + omega*change) * dt
	*velocity = (*velocity - omega*temp) * decay
	out := target + (change+temp)*decay

	// No overshoot.
	if (target-current > 0) == (out > target) {
		out = target
		*velocity = 0
	}
	return out
}

// moveTowardsAngle rotates current toward target (degrees) by at most maxDelta.
func moveTowardsAngle(current, target, maxDelta float64) float64 {
	diff := normalizeDegrees(target - current)
	if math.Abs(diff) <= maxDelta {
		return current + diff
	}
	if diff > 0 {
		return current + maxDelta
	}
	return current - maxDelta
}

// normalizeDegrees wraps an angle to [-180, 180].
// Infinities come back as NaN.
func normalizeDegrees(a float64) float64 {
	return math.Remainder(a, 360)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

// Rect is a normalized screen rectangle with its origin at the bottom-left,
// y growing upward. The full screen is Rect{0, 0, 1, 1}.
type Rect struct {
	X, Y, W, H float64
}

// Area returns W*H.
func (r Rect) Area() float64 { return r.W * r.H }

// Overlap returns the area shared by r and o.
func (r Rect) Overlap(o Rect) float64 {
	w := math.Min(r.X+r.W, o.X+o.W) - math.Max(r.X, o.X)
	h := math.Min(r.Y+r.H, o.Y+o.H) - math.Max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Contains reports whether the normalized point lies inside r (right/top edges exclusive).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Pixels converts r to a pixel rectangle on a w×h screen whose y axis grows downward.
func (r Rect) Pixels(w, h int) image.Rectangle {
	x0 := int(math.Round(r.X * float64(w)))
	x1 := int(math.Round((r.X + r.W) * float64(w)))
	y0 := int(math.Round((1 - (r.Y + r.H)) * float64(h)))
	y1 := int(math.Round((1 - r.Y) * float64(h)))
	return image.Rect(x0, y0, x1, y1)
}
