package game

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EbitenPlatform exposes ebiten's gamepads as Devices. Pads are reported in
// ascending GamepadID order, which is ebiten's connection order.
type EbitenPlatform struct {
	pads map[ebiten.GamepadID]*ebitenPad
}

// NewEbitenPlatform creates the platform. Call Poll once per frame.
func NewEbitenPlatform() *EbitenPlatform {
	return &EbitenPlatform{pads: make(map[ebiten.GamepadID]*ebitenPad)}
}

// Devices implements Platform.
func (p *EbitenPlatform) Devices() []Device {
	ids := ebiten.AppendGamepadIDs(nil)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Device, 0, len(ids))
	for _, id := range ids {
		pad := p.pad(id)
		if !pad.compatible() {
			continue
		}
		out = append(out, pad)
	}
	return out
}

// Poll returns the pads connected and disconnected since the previous frame.
func (p *EbitenPlatform) Poll() (connected, disconnected []DeviceID) {
	for _, id := range inpututil.AppendJustConnectedGamepadIDs(nil) {
		p.pad(id).connected = true
		connected = append(connected, DeviceID(id))
	}
	for id, pad := range p.pads {
		if inpututil.IsGamepadJustDisconnected(id) {
			pad.connected = false
			delete(p.pads, id)
			disconnected = append(disconnected, DeviceID(id))
		}
	}
	return connected, disconnected
}

func (p *EbitenPlatform) pad(id ebiten.GamepadID) *ebitenPad {
	pad, ok := p.pads[id]
	if !ok {
		pad = &ebitenPad{id: id, name: ebiten.GamepadName(id), connected: true}
		p.pads[id] = pad
	}
	return pad
}

// ebitenPad reads a single ebiten gamepad. Pads with the standard layout use
// the mapped axes; others fall back to raw axes 0-3.
type ebitenPad struct {
	id        ebiten.GamepadID
	name      string
	connected bool
}

func (d *ebitenPad) ID() DeviceID    { return DeviceID(d.id) }
func (d *ebitenPad) Name() string    { return d.name }
func (d *ebitenPad) Connected() bool { return d.connected }

func (d *ebitenPad) compatible() bool {
	return ebiten.IsStandardGamepadLayoutAvailable(d.id) || ebiten.GamepadAxisCount(d.id) >= 4
}

func (d *ebitenPad) Stick(s Stick) Vec2 {
	if !d.connected {
		return Vec2{}
	}
	if ebiten.IsStandardGamepadLayoutAvailable(d.id) {
		h, v := ebiten.StandardGamepadAxisLeftStickHorizontal, ebiten.StandardGamepadAxisLeftStickVertical
		if s == StickRight {
			h, v = ebiten.StandardGamepadAxisRightStickHorizontal, ebiten.StandardGamepadAxisRightStickVertical
		}
		// ebiten reports up as negative.
		return Vec2{
			X: ebiten.StandardGamepadAxisValue(d.id, h),
			Y: -ebiten.StandardGamepadAxisValue(d.id, v),
		}
	}
	axis := ebiten.GamepadAxisType(int(s) * 2)
	if int(axis)+1 >= ebiten.GamepadAxisCount(d.id) {
		return Vec2{}
	}
	return Vec2{
		X: ebiten.GamepadAxisValue(d.id, axis),
		Y: -ebiten.GamepadAxisValue(d.id, axis+1),
	}
}

func (d *ebitenPad) Trigger(t Trigger) float64 {
	if !d.connected || !ebiten.IsStandardGamepadLayoutAvailable(d.id) {
		return 0
	}
	b := ebiten.StandardGamepadButtonFrontBottomLeft
	if t == TriggerRight {
		b = ebiten.StandardGamepadButtonFrontBottomRight
	}
	return ebiten.StandardGamepadButtonValue(d.id, b)
}
