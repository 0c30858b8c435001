package game

import (
	"fmt"
	"math"

	"github.com/solarlune/resolv"
)

const (
	// levelScale converts metres on the ground plane to collision-space units.
	levelScale = 10.0
	// levelCell is the broadphase cell size in collision units (1m).
	levelCell = 10

	tagWall    = "wall"
	tagPlayer  = "player"
	tagTrigger = "trigger"
)

// Wall is an axis-aligned box on the ground plane, in metres.
type Wall struct {
	X, Z, W, D float64
	Height     float64
}

// TriggerZone is a zone on the ground plane that sends both players to the
// Next scene when either walks into it. Triggers do not block movement.
type TriggerZone struct {
	Name       string
	X, Z, W, D float64
	Next       string
}

// Level is the walkable ground plane and its walls. Collision runs on the
// XZ plane; the world has no slopes, so players stay at Y=0.
type Level struct {
	Width, Depth float64
	Walls        []Wall
	Triggers     []TriggerZone
	space        *resolv.Space
	triggerObjs  []*resolv.Object
}

// NewLevel creates an empty level of width×depth metres with a half-metre
// wall around the inside of its edge.
func NewLevel(width, depth float64) *Level {
	l := &Level{
		Width: width,
		Depth: depth,
		space: resolv.NewSpace(int(math.Ceil(width*levelScale)), int(math.Ceil(depth*levelScale)), levelCell, levelCell),
	}
	const t = 0.5
	l.AddWall(Wall{X: 0, Z: 0, W: width, D: t, Height: 2})
	l.AddWall(Wall{X: 0, Z: depth - t, W: width, D: t, Height: 2})
	l.AddWall(Wall{X: 0, Z: t, W: t, D: depth - 2*t, Height: 2})
	l.AddWall(Wall{X: width - t, Z: t, W: t, D: depth - 2*t, Height: 2})
	return l
}

// AddWall adds a solid box.
func (l *Level) AddWall(w Wall) {
	l.Walls = append(l.Walls, w)
	obj := resolv.NewObject(w.X*levelScale, w.Z*levelScale, w.W*levelScale, w.D*levelScale, tagWall)
	l.space.Add(obj)
}

// AddTrigger adds a transition zone. Unnamed triggers are numbered.
func (l *Level) AddTrigger(t TriggerZone) {
	if t.Name == "" {
		t.Name = fmt.Sprintf("trigger-%d", len(l.Triggers)+1)
	}
	l.Triggers = append(l.Triggers, t)
	obj := resolv.NewObject(t.X*levelScale, t.Z*levelScale, t.W*levelScale, t.D*levelScale, tagTrigger)
	l.triggerObjs = append(l.triggerObjs, obj)
	l.space.Add(obj)
}

// triggerAt returns the first trigger b's footprint overlaps.
func (l *Level) triggerAt(b *body) (TriggerZone, bool) {
	if b == nil {
		return TriggerZone{}, false
	}
	o := b.obj
	c := o.Check(0, 0, tagTrigger)
	if c == nil {
		return TriggerZone{}, false
	}
	for i, t := range l.triggerObjs {
		if !overlaps(o.Position.X, o.Position.Y, o.Size.X, o.Size.Y, t) {
			continue
		}
		for _, hit := range c.Objects {
			if hit == t {
				return l.Triggers[i], true
			}
		}
	}
	return TriggerZone{}, false
}

// body is a player's collision footprint.
type body struct {
	obj    *resolv.Object
	radius float64
}

func (l *Level) addBody(pos Vec3, radius float64) *body {
	size := 2 * radius * levelScale
	obj := resolv.NewObject((pos.X-radius)*levelScale, (pos.Z-radius)*levelScale, size, size, tagPlayer)
	l.space.Add(obj)
	return &body{obj: obj, radius: radius}
}

func (l *Level) removeBody(b *body) {
	if b != nil {
		l.space.Remove(b.obj)
	}
}

// move slides b by (dx, dz) metres, stopping at walls one axis at a time,
// and returns the new centre.
func (l *Level) move(b *body, dx, dz float64) (x, z float64) {
	o := b.obj
	o.Position.X += clipAxis(o, dx*levelScale, 0)
	o.Position.Y += clipAxis(o, 0, dz*levelScale)
	o.Update()
	return b.centre()
}

// clipAxis shortens a move along one axis so o stops flush against the
// first wall in its way. The space check is cell-granular, so candidates
// are filtered by real box overlap.
func clipAxis(o *resolv.Object, mx, my float64) float64 {
	c := o.Check(mx, my, tagWall)
	if c == nil {
		return mx + my
	}
	for _, w := range c.Objects {
		if !overlaps(o.Position.X+mx, o.Position.Y+my, o.Size.X, o.Size.Y, w) {
			continue
		}
		switch {
		case mx > 0:
			mx = math.Max(0, math.Min(mx, w.Position.X-(o.Position.X+o.Size.X)))
		case mx < 0:
			mx = math.Min(0, math.Max(mx, w.Position.X+w.Size.X-o.Position.X))
		case my > 0:
			my = math.Max(0, math.Min(my, w.Position.Y-(o.Position.Y+o.Size.Y)))
		case my < 0:
			my = math.Min(0, math.Max(my, w.Position.Y+w.Size.Y-o.Position.Y))
		}
	}
	return mx + my
}

func overlaps(x, y, w, h float64, o *resolv.Object) bool {
	return x < o.Position.X+o.Size.X && x+w > o.Position.X &&
		y < o.Position.Y+o.Size.Y && y+h > o.Position.Y
}

func (b *body) centre() (x, z float64) {
	return b.obj.Position.X/levelScale + b.radius, b.obj.Position.Y/levelScale + b.radius
}
