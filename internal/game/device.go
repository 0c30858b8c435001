package game

import (
	"errors"
	"fmt"
)

// Slot identifies a local player independently of the device driving it.
type Slot int

const (
	SlotNone Slot = 0
	Slot1    Slot = 1
	Slot2    Slot = 2
)

// Slots lists the player slots in order.
var Slots = [...]Slot{Slot1, Slot2}

// Valid reports whether s is 1 or 2.
func (s Slot) Valid() bool { return s == Slot1 || s == Slot2 }

func (s Slot) String() string {
	if !s.Valid() {
		return "P?"
	}
	return fmt.Sprintf("P%d", int(s))
}

// index maps a valid slot to 0 or 1.
func (s Slot) index() int { return int(s) - 1 }

// Stick names one of a gamepad's two analog sticks.
type Stick int

const (
	StickLeft Stick = iota
	StickRight
)

func (s Stick) String() string {
	if s == StickRight {
		return "right"
	}
	return "left"
}

// Trigger names one of a gamepad's analog triggers.
type Trigger int

const (
	TriggerLeft Trigger = iota
	TriggerRight
)

// DeviceID is the platform's handle for a connected gamepad.
type DeviceID int

var (
	ErrDeviceDisconnected = errors.New("device disconnected")
	ErrNoDevice           = errors.New("no device bound to slot")
	ErrInvalidSlot        = errors.New("invalid player slot")
)

// Device is a gamepad-class input device with two analog sticks.
// Stick values use y-up: pushing a stick forward reads positive Y.
type Device interface {
	ID() DeviceID
	Name() string
	Connected() bool
	Stick(Stick) Vec2
	Trigger(Trigger) float64
}

// Platform enumerates connected devices in a stable order.
type Platform interface {
	Devices() []Device
}

// VirtualPad is an in-memory gamepad used by the headless harness, the
// terminal monitor and tests.
type VirtualPad struct {
	id        DeviceID
	name      string
	connected bool
	sticks    [2]Vec2
	triggers  [2]float64
}

func (p *VirtualPad) ID() DeviceID    { return p.id }
func (p *VirtualPad) Name() string    { return p.name }
func (p *VirtualPad) Connected() bool { return p.connected }

func (p *VirtualPad) Stick(s Stick) Vec2 {
	if !p.connected {
		return Vec2{}
	}
	return p.sticks[s]
}

func (p *VirtualPad) Trigger(t Trigger) float64 {
	if !p.connected {
		return 0
	}
	return p.triggers[t]
}

// SetStick sets the raw deflection of a stick.
func (p *VirtualPad) SetStick(s Stick, v Vec2) { p.sticks[s] = v }

// SetTrigger sets the raw value of a trigger.
func (p *VirtualPad) SetTrigger(t Trigger, v float64) { p.triggers[t] = v }

// Release centres both sticks and triggers.
func (p *VirtualPad) Release() {
	p.sticks = [2]Vec2{}
	p.triggers = [2]float64{}
}

// VirtualPlatform is a Platform backed by VirtualPads. Devices are reported
// in connection order.
type VirtualPlatform struct {
	pads   []*VirtualPad
	nextID DeviceID
}

// NewVirtualPlatform creates a platform with n connected pads.
func NewVirtualPlatform(n int) *VirtualPlatform {
	vp := &VirtualPlatform{}
	for i := 0; i < n; i++ {
		vp.Connect(fmt.Sprintf("Virtual Pad %d", i+1))
	}
	return vp
}

// Connect plugs in a new pad.
func (vp *VirtualPlatform) Connect(name string) *VirtualPad {
	p := &VirtualPad{id: vp.nextID, name: name, connected: true}
	vp.nextID++
	vp.pads = append(vp.pads, p)
	return p
}

// Disconnect unplugs a pad. The handle stays valid but reads as disconnected.
func (vp *VirtualPlatform) Disconnect(id DeviceID) bool {
	for i, p := range vp.pads {
		if p.id == id {
			p.connected = false
			vp.pads = append(vp.pads[:i], vp.pads[i+1:]...)
			return true
		}
	}
	return false
}

// Pad returns the i-th connected pad, or nil.
func (vp *VirtualPlatform) Pad(i int) *VirtualPad {
	if i < 0 || i >= len(vp.pads) {
		return nil
	}
	return vp.pads[i]
}

// Devices implements Platform.
func (vp *VirtualPlatform) Devices() []Device {
	out := make([]Device, 0, len(vp.pads))
	for _, p := range vp.pads {
		out = append(out, p)
	}
	return out
}
