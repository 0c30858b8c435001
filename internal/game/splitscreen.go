package game

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// Orientation selects how the screen is divided.
type Orientation int

const (
	// SplitVertical puts player 1 on the left and player 2 on the right.
	SplitVertical Orientation = iota
	// SplitHorizontal puts player 1 on top and player 2 below.
	SplitHorizontal
)

func (o Orientation) String() string {
	if o == SplitHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseOrientation accepts "vertical" or "horizontal" in any case.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "":
		return SplitVertical, nil
	case "horizontal":
		return SplitHorizontal, nil
	}
	return SplitVertical, fmt.Errorf("unknown split orientation %q", s)
}

var (
	ErrSplitScreenInstalled = errors.New("split screen already installed")
	ErrMissingCamera        = errors.New("split screen needs two cameras")
)

// SplitViewports returns the normalized viewports of camera 1 and camera 2.
func SplitViewports(o Orientation) (Rect, Rect) {
	if o == SplitHorizontal {
		return Rect{0, 0.5, 1, 0.5}, Rect{0, 0, 1, 0.5}
	}
	return Rect{0, 0, 0.5, 1}, Rect{0.5, 0, 0.5, 1}
}

// Divider is the line drawn along the shared viewport edge, in normalized
// y-up coordinates.
type Divider struct {
	From, To Vec2
	Width    float64 // pixels
	Color    color.RGBA
}

// DividerFor returns the divider line for o.
func DividerFor(o Orientation, width float64, clr color.RGBA) Divider {
	d := Divider{Width: width, Color: clr}
	if o == SplitHorizontal {
		d.From, d.To = Vec2{0, 0.5}, Vec2{1, 0.5}
	} else {
		d.From, d.To = Vec2{0.5, 0}, Vec2{0.5, 1}
	}
	return d
}

// SplitScreen owns the two player cameras, their followers and targets.
// At most one is installed per Context.
type SplitScreen struct {
	ctx         *Context
	orientation Orientation
	cams        [2]*Camera
	followers   [2]*CameraFollower
	targets     [2]Target
	divider     Divider
}

// InstallSplitScreen sets up split-screen rendering for cam1 and cam2, which
// must already be part of the scene.
//
// Setup order: competing follow controllers are disabled, viewports and draw
// order assigned, camera 1 made the only primary camera, other primary cameras
// disabled, a single audio listener enforced, the divider built, followers
// attached, and finally players are discovered by slot and bound as targets.
func (c *Context) InstallSplitScreen(cam1, cam2 *Camera) (*SplitScreen, error) {
	if c.split != nil {
		return c.split, ErrSplitScreenInstalled
	}
	if cam1 == nil || cam2 == nil || cam1 == cam2 {
		return nil, ErrMissingCamera
	}

	o, err := ParseOrientation(c.Config.SplitOrientation)
	if err != nil {
		return nil, fmt.Errorf("install split screen: %w", err)
	}
	s := &SplitScreen{ctx: c, orientation: o, cams: [2]*Camera{cam1, cam2}}
	c.split = s

	s.claimScene()
	s.divider = DividerFor(o, c.Config.BorderWidth, c.Config.BorderRGBA())

	follow := c.Config.FollowSettings()
	for i, cam := range s.cams {
		s.followers[i] = NewCameraFollower(cam, Slots[i], follow, c.Registry)
	}

	s.autoDiscover()
	return s, nil
}

// claimScene switches off the current scene's competing controllers and
// primary cameras, then lays out both viewports.
func (s *SplitScreen) claimScene() {
	for _, fc := range s.ctx.Scene.FollowControllers {
		if fc.Enabled() {
			fc.SetEnabled(false)
			s.ctx.report(Diagnostic{Category: CatCamera, Key: "controller_disabled", Message: "competing camera controller"})
		}
	}
	s.configureViewports()
}

func (s *SplitScreen) configureViewports() {
	r1, r2 := SplitViewports(s.orientation)
	cam1, cam2 := s.cams[0], s.cams[1]
	cam1.Viewport, cam2.Viewport = r1, r2
	cam1.Depth, cam2.Depth = 0, 1
	cam1.Enabled, cam2.Enabled = true, true

	cam1.Primary = true
	cam2.Primary = false
	for _, cam := range s.ctx.Scene.Cameras {
		if cam == cam1 || cam == cam2 || !cam.Primary {
			continue
		}
		cam.Primary = false
		cam.Enabled = false
		s.ctx.report(Diagnostic{Category: CatCamera, Key: "camera_disabled", Message: cam.Name})
	}

	s.enforceListener()
	s.ctx.report(Diagnostic{
		Category: CatCamera, Key: "viewports",
		Message: fmt.Sprintf("%s split: %s=%v %s=%v", s.orientation, cam1.Name, r1, cam2.Name, r2),
	})
}

func (s *SplitScreen) enforceListener() {
	chosen := EnsureSingleAudioListener(s.ctx.Scene.Listeners, s.cams[0])
	if chosen != nil {
		s.ctx.report(Diagnostic{Category: CatAudio, Key: "listener", Message: chosen.Name})
	}
}

// autoDiscover binds the slot 1 and slot 2 players when both exist and tells
// camera observers. Reports whether targets were bound.
func (s *SplitScreen) autoDiscover() bool {
	p1 := s.ctx.Scene.FindPlayer(Slot1)
	p2 := s.ctx.Scene.FindPlayer(Slot2)
	if p1 == nil || p2 == nil {
		return false
	}
	s.SetTargets(p1, p2)
	s.ctx.notifyCamerasChanged()
	return true
}

// SceneChanged takes over a newly loaded scene and re-runs player discovery.
func (s *SplitScreen) SceneChanged() bool {
	s.claimScene()
	return s.autoDiscover()
}

// replace makes both followers snap to their next target instead of
// springing from where the previous scene left them.
func (s *SplitScreen) replace() {
	for _, f := range s.followers {
		f.placed = false
	}
}

// SetTargets records the followed target of each slot. Either may be nil.
func (s *SplitScreen) SetTargets(t1, t2 Target) {
	s.targets = [2]Target{t1, t2}
	for i, t := range s.targets {
		if t == nil {
			s.followers[i].SetTarget(nil)
			continue
		}
		if r, ok := t.(CameraReceiver); ok {
			r.AssignCamera(s.cams[i])
		}
		s.followers[i].SetTarget(t)
		s.ctx.report(Diagnostic{Category: CatCamera, Key: "target", Slot: Slots[i], Message: s.cams[i].Name})
	}
	s.enforceListener()
}

// Update re-enables managed cameras that something else switched off.
func (s *SplitScreen) Update() {
	for _, cam := range s.cams {
		if !cam.Enabled {
			cam.Enabled = true
			s.ctx.report(Diagnostic{Severity: SeverityWarn, Category: CatCamera, Key: "reenabled", Message: cam.Name})
		}
	}
}

// LateUpdate advances both followers.
func (s *SplitScreen) LateUpdate(dt float64) {
	for _, f := range s.followers {
		f.LateUpdate(dt)
	}
}

// Camera returns the camera of slot, or nil for an invalid slot.
func (s *SplitScreen) Camera(slot Slot) *Camera {
	if !slot.Valid() {
		return nil
	}
	return s.cams[slot.index()]
}

// Follower returns the follower of slot, or nil for an invalid slot.
func (s *SplitScreen) Follower(slot Slot) *CameraFollower {
	if !slot.Valid() {
		return nil
	}
	return s.followers[slot.index()]
}

// Target returns the followed target of slot, or nil.
func (s *SplitScreen) Target(slot Slot) Target {
	if !slot.Valid() {
		return nil
	}
	return s.targets[slot.index()]
}

// Cameras returns both managed cameras, slot 1 first.
func (s *SplitScreen) Cameras() []*Camera { return s.cams[:] }

// Orientation returns the split orientation.
func (s *SplitScreen) Orientation() Orientation { return s.orientation }

// Divider returns the divider line.
func (s *SplitScreen) Divider() Divider { return s.divider }
