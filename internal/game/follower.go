package game

// FollowSettings tune the split-screen orbit cameras.
type FollowSettings struct {
	Distance        float64 // metres behind the target
	Height          float64 // look-at height above the target's feet
	SmoothTime      float64 // seconds for the position spring
	LookSensitivity float64 // follower-local multiplier on top of the global look sensitivity
	MinPitch        float64 // degrees
	MaxPitch        float64 // degrees
}

// lookSensitivityScale converts filtered stick deflection to degrees per second.
const lookSensitivityScale = 100.0

// DefaultFollowSettings returns the shipped third-person tuning.
func DefaultFollowSettings() FollowSettings {
	return FollowSettings{
		Distance:        8,
		Height:          3,
		SmoothTime:      0.1,
		LookSensitivity: 1.95,
		MinPitch:        -40,
		MaxPitch:        70,
	}
}

// CameraFollower orbits one camera around its target from look input.
type CameraFollower struct {
	camera   *Camera
	slot     Slot
	settings FollowSettings
	registry *Registry // nil: look input is used unfiltered

	target   Target
	look     *InputAction
	yaw      float64
	pitch    float64
	velocity Vec3
	placed   bool
}

// NewCameraFollower creates a follower for cam with no target.
func NewCameraFollower(cam *Camera, slot Slot, settings FollowSettings, registry *Registry) *CameraFollower {
	return &CameraFollower{camera: cam, slot: slot, settings: settings, registry: registry}
}

// SetTarget switches the followed target. Yaw snaps to the target's yaw and
// pitch resets to level. The first target also snaps the camera into its
// orbit position; later switches spring there. A nil target freezes the camera.
func (f *CameraFollower) SetTarget(t Target) {
	first := !f.placed
	f.target = t
	f.look = nil
	if t == nil {
		return
	}
	f.yaw = t.TargetTransform().Yaw
	f.pitch = 0
	if first && f.camera != nil {
		f.camera.Transform.Position = f.DesiredPosition()
		f.camera.Transform.LookAt(f.FocusPoint())
		f.velocity = Vec3{}
		f.placed = true
	}

	if user := t.TargetInput(); user != nil {
		f.look = user.FindAction(ActionLook)
		if f.look == nil {
			f.look = user.FindAction("look")
		}
		if f.look != nil {
			f.look.Enable()
		}
	}
}

// Target returns the followed target, or nil.
func (f *CameraFollower) Target() Target { return f.target }

// Camera returns the driven camera.
func (f *CameraFollower) Camera() *Camera { return f.camera }

// Yaw returns the orbit yaw in degrees.
func (f *CameraFollower) Yaw() float64 { return f.yaw }

// Pitch returns the orbit pitch in degrees.
func (f *CameraFollower) Pitch() float64 { return f.pitch }

// FocusPoint is where the camera looks: the target raised by Height.
func (f *CameraFollower) FocusPoint() Vec3 {
	if f.target == nil {
		return Vec3{}
	}
	return f.target.TargetTransform().Position.Add(Up.Scale(f.settings.Height))
}

// DesiredPosition is the orbit point the camera springs toward.
func (f *CameraFollower) DesiredPosition() Vec3 {
	offset := RotateEuler(f.pitch, f.yaw, Vec3{0, 0, -f.settings.Distance})
	return f.FocusPoint().Add(offset)
}

// LateUpdate integrates look input and moves the camera. Runs after players
// have moved for the frame. Does nothing without a target.
func (f *CameraFollower) LateUpdate(dt float64) {
	if f.target == nil || f.camera == nil {
		return
	}

	if f.look != nil {
		in := f.look.ReadValue()
		sens := lookSensitivityScale
		if f.registry != nil {
			s := f.registry.Settings()
			in = s.ProcessRightStick(in)
			sens *= s.LookSensitivity
		}
		f.yaw += in.X * f.settings.LookSensitivity * sens * dt
		f.pitch -= in.Y * f.settings.LookSensitivity * sens * dt
		f.pitch = clamp(f.pitch, f.settings.MinPitch, f.settings.MaxPitch)
	}

	tr := &f.camera.Transform
	tr.Position = SmoothDamp(tr.Position, f.DesiredPosition(), &f.velocity, f.settings.SmoothTime, dt)
	tr.LookAt(f.FocusPoint())
}
