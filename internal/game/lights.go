package game

import (
	"fmt"
	"image/color"
)

// LightKind is the shape of a light.
type LightKind int

const (
	LightPoint LightKind = iota
	LightSpot
	LightDirectional
)

func (k LightKind) String() string {
	switch k {
	case LightSpot:
		return "spot"
	case LightDirectional:
		return "directional"
	}
	return "point"
}

// Light is a scene light. Spot lights also carry a volumetric beam that the
// renderer fades out near the primary camera.
type Light struct {
	Name      string
	Kind      LightKind
	Position  Vec3
	Range     float64
	Intensity float64
	Color     color.RGBA
	Enabled   bool
	// AlwaysOn lights are never culled.
	AlwaysOn bool
	// Owner is the player slot carrying the light, SlotNone for level lights.
	Owner Slot
}

// LightCuller switches off level lights far from every split-screen camera.
type LightCuller struct {
	ctx      *Context
	distance float64
	interval float64
	elapsed  float64

	active, total int
}

// NewLightCuller creates a culler using the context's culling configuration.
// It runs its first pass on the first Update.
func NewLightCuller(ctx *Context) *LightCuller {
	lc := &LightCuller{
		ctx:      ctx,
		distance: ctx.Config.CullingDistance,
		interval: ctx.Config.CullingInterval.Seconds(),
	}
	lc.elapsed = lc.interval
	return lc
}

// SetCullingDistance changes the radius and re-culls immediately.
func (lc *LightCuller) SetCullingDistance(d float64) {
	lc.distance = d
	lc.Refresh()
}

// CullingDistance returns the current radius.
func (lc *LightCuller) CullingDistance() float64 { return lc.distance }

// Update re-culls once per interval.
func (lc *LightCuller) Update(dt float64) {
	lc.elapsed += dt
	if lc.elapsed < lc.interval {
		return
	}
	lc.elapsed = 0
	lc.Refresh()
}

// cameras returns the enabled cameras lights are culled against: the
// split-screen pair when installed, else every enabled scene camera.
func (lc *LightCuller) cameras() []*Camera {
	var src []*Camera
	if s := lc.ctx.SplitScreen(); s != nil {
		src = s.Cameras()
	} else {
		src = lc.ctx.Scene.Cameras
	}
	var out []*Camera
	for _, c := range src {
		if c != nil && c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// Refresh enables every light within range of a camera and disables the rest.
func (lc *LightCuller) Refresh() {
	cams := lc.cameras()
	lights := lc.ctx.Scene.Lights
	lc.total = len(lights)
	lc.active = 0
	changed := 0
	for _, l := range lights {
		on := lc.keep(l, cams)
		if on != l.Enabled {
			changed++
		}
		l.Enabled = on
		if on {
			lc.active++
		}
	}
	if changed > 0 {
		lc.ctx.report(Diagnostic{Category: CatLights, Key: "culled", Message: lightSummary(lc.active, lc.total)})
	}
}

func (lc *LightCuller) keep(l *Light, cams []*Camera) bool {
	if l.AlwaysOn || l.Kind == LightDirectional || l.Owner.Valid() {
		return true
	}
	for _, c := range cams {
		if c.Transform.Position.Dist(l.Position) <= lc.distance {
			return true
		}
	}
	return false
}

// ActiveCount returns the number of lights left on by the last pass.
func (lc *LightCuller) ActiveCount() int { return lc.active }

// TotalCount returns the number of lights seen by the last pass.
func (lc *LightCuller) TotalCount() int { return lc.total }

func lightSummary(active, total int) string {
	return fmt.Sprintf("%d/%d lights active", active, total)
}

// FadeOutCamera tracks the camera volumetric beams fade against: the enabled
// camera that owns the main display surface.
type FadeOutCamera struct {
	cameras func() []*Camera
	cached  *Camera
}

// NewFadeOutCamera creates a tracker over the given camera list source.
func NewFadeOutCamera(cameras func() []*Camera) *FadeOutCamera {
	f := &FadeOutCamera{cameras: cameras}
	f.ForceUpdate()
	return f
}

// AttachFadeOutCamera creates a tracker over ctx's scene cameras that refreshes whenever
// the context's camera set changes. The returned func detaches it.
func AttachFadeOutCamera(ctx *Context) (*FadeOutCamera, func()) {
	f := NewFadeOutCamera(func() []*Camera { return ctx.Scene.Cameras })
	unregister := ctx.OnCamerasChanged(func(primary *Camera) {
		if primary != nil && primary.Enabled {
			f.cached = primary
			return
		}
		f.ForceUpdate()
	})
	return f, unregister
}

// ForceUpdate re-resolves the camera: the enabled primary camera, else the
// first enabled one.
func (f *FadeOutCamera) ForceUpdate() {
	f.cached = nil
	var first *Camera
	for _, c := range f.cameras() {
		if !c.Enabled {
			continue
		}
		if c.Primary {
			f.cached = c
			return
		}
		if first == nil {
			first = c
		}
	}
	f.cached = first
}

// Camera returns the tracked camera, or nil.
func (f *FadeOutCamera) Camera() *Camera {
	if f.cached != nil && !f.cached.Enabled {
		f.ForceUpdate()
	}
	return f.cached
}

// Transform returns the tracked camera's transform and whether there is one.
func (f *FadeOutCamera) Transform() (Transform, bool) {
	c := f.Camera()
	if c == nil {
		return Transform{}, false
	}
	return c.Transform, true
}

// Fade returns the beam opacity multiplier for a point: 0 within start of
// the camera, 1 beyond end, linear between. With no camera it is 1.
func (f *FadeOutCamera) Fade(p Vec3, start, end float64) float64 {
	t, ok := f.Transform()
	if !ok {
		return 1
	}
	d := t.Position.Dist(p)
	if end <= start {
		if d < start {
			return 0
		}
		return 1
	}
	return clamp01((d - start) / (end - start))
}
