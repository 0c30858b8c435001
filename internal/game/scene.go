package game

import "image/color"

// Camera renders the scene into a normalized viewport.
type Camera struct {
	Name    string
	Enabled bool
	// Primary marks the camera that owns the main display surface.
	Primary     bool
	Viewport    Rect
	Depth       int
	FieldOfView float64 // vertical, degrees
	Near, Far   float64
	Transform   Transform
	// Listener is the audio listener attached to this camera, if any.
	Listener *AudioListener
}

// NewCamera creates an enabled full-screen camera.
func NewCamera(name string) *Camera {
	return &Camera{
		Name:        name,
		Enabled:     true,
		Viewport:    Rect{0, 0, 1, 1},
		FieldOfView: 60,
		Near:        0.3,
		Far:         1000,
	}
}

// AudioListener is a point from which 3D audio is spatialised.
type AudioListener struct {
	Name    string
	Enabled bool
	// Camera is the camera the listener is attached to; nil for free listeners.
	Camera *Camera
}

// Position returns the listener's world position.
func (l *AudioListener) Position() Vec3 {
	if l.Camera == nil {
		return Vec3{}
	}
	return l.Camera.Transform.Position
}

// FollowController is any camera controller that can compete with the
// split-screen followers for a camera.
type FollowController interface {
	SetEnabled(bool)
	Enabled() bool
}

// Target is something a camera follows.
type Target interface {
	TargetTransform() Transform
	// TargetInput returns the input user the follower reads look input
	// from, or nil.
	TargetInput() *InputUser
}

// CameraReceiver is implemented by targets that want to know which camera
// follows them, e.g. for camera-relative movement.
type CameraReceiver interface {
	AssignCamera(*Camera)
}

// Pose is a position on the ground plane and a facing in degrees.
type Pose struct {
	Position Vec3
	Yaw      float64
}

// Scene owns every runtime object of the current level.
type Scene struct {
	Name              string
	Cameras           []*Camera
	Listeners         []*AudioListener
	Lights            []*Light
	Players           []*PlayerController
	FollowControllers []FollowController
	Level             *Level
	Emitters          []*Emitter
	Background        color.RGBA
	// Spawns holds where each slot's player enters the scene.
	Spawns [2]Pose
}

// NewScene creates an empty scene with a walkable level of the given size.
func NewScene(name string, width, depth float64) *Scene {
	return &Scene{
		Name:       name,
		Level:      NewLevel(width, depth),
		Background: color.RGBA{R: 10, G: 12, B: 14, A: 255},
	}
}

// AddCamera adds a camera and returns it.
func (s *Scene) AddCamera(c *Camera) *Camera {
	s.Cameras = append(s.Cameras, c)
	return c
}

// AttachListener creates an enabled listener on cam.
func (s *Scene) AttachListener(cam *Camera) *AudioListener {
	l := &AudioListener{Name: cam.Name + "/listener", Enabled: true, Camera: cam}
	cam.Listener = l
	s.Listeners = append(s.Listeners, l)
	return l
}

// AddListener adds a free-standing listener.
func (s *Scene) AddListener(l *AudioListener) *AudioListener {
	s.Listeners = append(s.Listeners, l)
	return l
}

// adoptCamera moves cam and its listener into s, unless already there.
func (s *Scene) adoptCamera(cam *Camera) {
	for _, c := range s.Cameras {
		if c == cam {
			return
		}
	}
	s.Cameras = append(s.Cameras, cam)
	if cam.Listener != nil {
		s.Listeners = append(s.Listeners, cam.Listener)
	}
}

// AddLight adds a light.
func (s *Scene) AddLight(l *Light) *Light {
	s.Lights = append(s.Lights, l)
	return l
}

// FindPlayer returns the player registered for slot, or nil.
func (s *Scene) FindPlayer(slot Slot) *PlayerController {
	for _, p := range s.Players {
		if p.Slot() == slot {
			return p
		}
	}
	return nil
}

// EnabledListeners returns the listeners currently enabled.
func (s *Scene) EnabledListeners() []*AudioListener {
	var out []*AudioListener
	for _, l := range s.Listeners {
		if l.Enabled {
			out = append(out, l)
		}
	}
	return out
}

func (s *Scene) removePlayer(p *PlayerController) {
	for i, q := range s.Players {
		if q == p {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			return
		}
	}
}

// OverviewCamera is the single-player camera controller: one camera high
// above the level looking down at its centre. The split screen switches it off.
type OverviewCamera struct {
	Camera  *Camera
	enabled bool
}

// NewOverviewCamera places cam above centre and returns an enabled controller for it.
func NewOverviewCamera(cam *Camera, centre Vec3) *OverviewCamera {
	cam.Transform.Position = centre.Add(Vec3{0, 30, -20})
	cam.Transform.LookAt(centre)
	return &OverviewCamera{Camera: cam, enabled: true}
}

func (o *OverviewCamera) SetEnabled(v bool) { o.enabled = v }
func (o *OverviewCamera) Enabled() bool     { return o.enabled }
