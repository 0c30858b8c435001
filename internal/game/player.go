package game

import (
	"context"
	"fmt"
	"math"
)

const (
	playerRadius = 0.4
	// moveThreshold is the minimum camera-relative input that moves a player.
	moveThreshold = 0.1
)

// PlayerController is one local player: it reads its slot's device through
// the registry every frame and walks on the level relative to its camera.
type PlayerController struct {
	Name string

	ctx       *Context
	slot      Slot
	user      *InputUser
	body      *body
	transform Transform
	camera    *Camera

	moveInput Vec2
	lookInput Vec2
	sprint    float64
	device    Device

	MoveSpeed        float64 // metres per second
	RotationSpeed    float64 // degrees per second
	SprintMultiplier float64

	lifetime context.Context
	cancel   context.CancelFunc
}

// SpawnPlayer creates a player for slot at pos facing yaw, binds its device
// and registers it with the split screen when one is installed.
func (c *Context) SpawnPlayer(name string, slot Slot, pos Vec3, yaw float64) (*PlayerController, error) {
	if !slot.Valid() {
		return nil, fmt.Errorf("spawn %s in slot %d: %w", name, int(slot), ErrInvalidSlot)
	}
	if existing := c.Scene.FindPlayer(slot); existing != nil {
		return nil, fmt.Errorf("spawn %s: slot %s already taken by %s", name, slot, existing.Name)
	}

	lifetime, cancel := context.WithCancel(context.Background())
	p := &PlayerController{
		Name:             name,
		ctx:              c,
		slot:             slot,
		user:             NewInputUser(int(slot)),
		transform:        Transform{Position: pos, Yaw: yaw},
		MoveSpeed:        c.Config.MoveSpeed,
		RotationSpeed:    c.Config.RotationSpeed,
		SprintMultiplier: c.Config.SprintMultiplier,
		lifetime:         lifetime,
		cancel:           cancel,
	}
	if c.Scene.Level != nil {
		p.body = c.Scene.Level.addBody(pos, playerRadius)
	}
	c.Scene.Players = append(c.Scene.Players, p)
	c.Registry.Register(p)

	if s := c.split; s != nil {
		p.camera = s.Camera(slot)
		p.joinSplitScreen(s)
	}
	return p, nil
}

// joinSplitScreen makes p the target of its slot, keeping the other slot's target.
func (p *PlayerController) joinSplitScreen(s *SplitScreen) {
	if p.slot == Slot1 {
		s.SetTargets(p, s.Target(Slot2))
	} else {
		s.SetTargets(s.Target(Slot1), p)
	}
	if s.Target(Slot1) != nil && s.Target(Slot2) != nil {
		p.ctx.notifyCamerasChanged()
	}
}

// Destroy removes the player. Pending pairing checks for it are cancelled.
func (p *PlayerController) Destroy() {
	p.cancel()
	p.ctx.Registry.Unregister(p)
	p.ctx.Scene.removePlayer(p)
	if p.ctx.Scene.Level != nil {
		p.ctx.Scene.Level.removeBody(p.body)
	}
	if s := p.ctx.split; s != nil && s.Target(p.slot) == Target(p) {
		if p.slot == Slot1 {
			s.SetTargets(nil, s.Target(Slot2))
		} else {
			s.SetTargets(s.Target(Slot1), nil)
		}
	}
}

func (p *PlayerController) Slot() Slot                { return p.slot }
func (p *PlayerController) InputUser() *InputUser     { return p.user }
func (p *PlayerController) Lifetime() context.Context { return p.lifetime }

// TargetTransform implements Target.
func (p *PlayerController) TargetTransform() Transform { return p.transform }

// TargetInput implements Target.
func (p *PlayerController) TargetInput() *InputUser { return p.user }

// AssignCamera implements CameraReceiver.
func (p *PlayerController) AssignCamera(cam *Camera) { p.camera = cam }

// Camera returns the camera movement is relative to, or nil.
func (p *PlayerController) Camera() *Camera { return p.camera }

// Position returns the player's feet position.
func (p *PlayerController) Position() Vec3 { return p.transform.Position }

// Yaw returns the facing in degrees.
func (p *PlayerController) Yaw() float64 { return p.transform.Yaw }

// MoveInput is the last filtered left-stick value.
func (p *PlayerController) MoveInput() Vec2 { return p.moveInput }

// LookInput is the last filtered right-stick value.
func (p *PlayerController) LookInput() Vec2 { return p.lookInput }

// Sprint is the last filtered right-trigger value.
func (p *PlayerController) Sprint() float64 { return p.sprint }

// HasGamepad reports whether a device was bound on the last update.
func (p *PlayerController) HasGamepad() bool { return p.device != nil }

// Gamepad returns the device read on the last update, or nil.
func (p *PlayerController) Gamepad() Device { return p.device }

// Update reads input and moves the player.
func (p *PlayerController) Update(dt float64) {
	p.readInput()
	p.move(dt)
}

func (p *PlayerController) readInput() {
	reg := p.ctx.Registry
	d, ok := reg.GetDevice(p.slot)
	if !ok {
		p.device = nil
		p.moveInput, p.lookInput = Vec2{}, Vec2{}
		p.sprint = 0
		return
	}
	p.device = d
	s := reg.Settings()
	p.moveInput = s.ProcessLeftStick(d.Stick(StickLeft))
	p.lookInput = s.ProcessRightStick(d.Stick(StickRight))
	p.sprint = reg.ProcessTrigger(p.slot, TriggerRight)
}

// speed is MoveSpeed scaled by how far the sprint trigger is pulled.
func (p *PlayerController) speed() float64 {
	boost := math.Max(p.SprintMultiplier, 1) - 1
	return p.MoveSpeed * (1 + boost*p.sprint)
}

// worldMove converts the move input to a ground-plane direction relative
// to the camera's heading. Camera pitch does not slow movement.
func (p *PlayerController) worldMove() Vec3 {
	local := Vec3{p.moveInput.X, 0, p.moveInput.Y}
	if p.camera == nil {
		return local
	}
	return RotateEuler(0, p.camera.Transform.Yaw, local)
}

func (p *PlayerController) move(dt float64) {
	m := p.worldMove()
	if m.Len() <= moveThreshold || dt <= 0 {
		return
	}

	step := m.Scale(p.speed() * dt)
	if p.body != nil {
		x, z := p.ctx.Scene.Level.move(p.body, step.X, step.Z)
		p.transform.Position.X, p.transform.Position.Z = x, z
	} else {
		p.transform.Position = p.transform.Position.Add(Vec3{step.X, 0, step.Z})
	}

	want := math.Atan2(m.X, m.Z) / degToRad
	p.transform.Yaw = moveTowardsAngle(p.transform.Yaw, want, p.RotationSpeed*dt)
}
