package game

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// defaultPairingVerifyDelay is how long BindController waits before checking
// that no other device slipped onto the consumer.
const defaultPairingVerifyDelay = 100 * time.Millisecond

// InputConsumer is an entity that listens to one player's device.
// Its slot is fixed at construction.
type InputConsumer interface {
	Slot() Slot
	InputUser() *InputUser
	// Lifetime is cancelled when the consumer is destroyed.
	Lifetime() context.Context
}

// Assignment is an immutable slot→device mapping.
type Assignment struct {
	devices [2]Device
}

// Device returns the device bound to slot, if any.
func (a Assignment) Device(slot Slot) (Device, bool) {
	if !slot.Valid() || a.devices[slot.index()] == nil {
		return nil, false
	}
	return a.devices[slot.index()], true
}

// Equal reports whether both assignments bind the same device IDs.
func (a Assignment) Equal(o Assignment) bool {
	for i := range a.devices {
		x, y := a.devices[i], o.devices[i]
		if (x == nil) != (y == nil) {
			return false
		}
		if x != nil && x.ID() != y.ID() {
			return false
		}
	}
	return true
}

// BindOutcome classifies the result of BindController.
type BindOutcome int

const (
	BindPaired BindOutcome = iota
	BindNoDevice
	BindFailed
	BindInvalid
)

func (o BindOutcome) String() string {
	switch o {
	case BindPaired:
		return "paired"
	case BindNoDevice:
		return "no_device"
	case BindFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// BindResult is what BindController did for one consumer.
type BindResult struct {
	Slot    Slot
	Device  Device
	Outcome BindOutcome
	Err     error
}

// Registry maps player slots to physical devices and pairs devices with
// input consumers.
//
// The mapping is published as an immutable Assignment through an atomic
// pointer. Readers always see a whole enumeration: a hot-plug reinitialize
// replaces both slots at once, and GetDevice never mixes slot 1 from one
// enumeration with slot 2 from another.
type Registry struct {
	platform    Platform
	settings    InputSettings
	sched       *Scheduler
	diag        Diagnostics
	verifyDelay time.Duration

	current   atomic.Pointer[Assignment]
	consumers []InputConsumer
	// verifying holds the cancel func of each consumer's pending verification.
	verifying map[InputConsumer]context.CancelFunc

	onAssigned     []func(Slot, Device)
	onDisconnected []func(Slot)
}

// NewRegistry creates the registry and runs the first Reinitialize.
func NewRegistry(platform Platform, settings InputSettings, sched *Scheduler, diag Diagnostics) *Registry {
	if diag == nil {
		diag = DiscardDiagnostics{}
	}
	r := &Registry{
		platform:    platform,
		settings:    settings,
		sched:       sched,
		diag:        diag,
		verifyDelay: defaultPairingVerifyDelay,
		verifying:   make(map[InputConsumer]context.CancelFunc),
	}
	r.current.Store(&Assignment{})
	r.Reinitialize()
	return r
}

// Settings returns the deadzone/sensitivity settings.
func (r *Registry) Settings() InputSettings { return r.settings }

// SetSettings replaces the deadzone/sensitivity settings.
func (r *Registry) SetSettings(s InputSettings) { r.settings = s }

// SetVerifyDelay changes the pairing verification delay.
func (r *Registry) SetVerifyDelay(d time.Duration) { r.verifyDelay = d }

// OnAssigned registers a callback raised for each slot that receives a device.
func (r *Registry) OnAssigned(fn func(Slot, Device)) { r.onAssigned = append(r.onAssigned, fn) }

// OnDisconnected registers a callback raised when a slot's device goes away.
func (r *Registry) OnDisconnected(fn func(Slot)) {
	r.onDisconnected = append(r.onDisconnected, fn)
}

// Reinitialize enumerates connected devices and binds the first to slot 1
// and the second to slot 2. Slots beyond the available devices stay unbound.
func (r *Registry) Reinitialize() {
	var next Assignment
	if r.platform != nil {
		devices := r.platform.Devices()
		for i := 0; i < len(devices) && i < len(next.devices); i++ {
			next.devices[i] = devices[i]
		}
	}
	r.current.Store(&next)

	for _, slot := range Slots {
		d, ok := next.Device(slot)
		if !ok {
			continue
		}
		r.diag.Report(Diagnostic{
			Category: CatDevice, Key: "assigned", Slot: slot,
			Message: fmt.Sprintf("%s (id %d)", d.Name(), d.ID()),
		})
		for _, fn := range r.onAssigned {
			fn(slot, d)
		}
	}
}

// Snapshot returns the current assignment.
func (r *Registry) Snapshot() Assignment { return *r.current.Load() }

// GetDevice returns the device bound to slot.
func (r *Registry) GetDevice(slot Slot) (Device, bool) {
	return r.Snapshot().Device(slot)
}

// HasDevice reports whether slot has a bound device.
func (r *Registry) HasDevice(slot Slot) bool {
	_, ok := r.GetDevice(slot)
	return ok
}

// StatusInfo returns a one-line summary such as "P1: Xbox Controller | P2: Unassigned".
func (r *Registry) StatusInfo() string {
	a := r.Snapshot()
	name := func(s Slot) string {
		if d, ok := a.Device(s); ok {
			return d.Name()
		}
		return "Unassigned"
	}
	return fmt.Sprintf("P1: %s | P2: %s", name(Slot1), name(Slot2))
}

// Register adds c to the consumers re-bound by ForceReassignment and binds it.
func (r *Registry) Register(c InputConsumer) BindResult {
	for _, known := range r.consumers {
		if known == c {
			return r.BindController(c, c.Slot())
		}
	}
	r.consumers = append(r.consumers, c)
	return r.BindController(c, c.Slot())
}

// Unregister forgets c and cancels its pending verification.
func (r *Registry) Unregister(c InputConsumer) {
	r.cancelVerify(c)
	for i, known := range r.consumers {
		if known == c {
			r.consumers = append(r.consumers[:i], r.consumers[i+1:]...)
			return
		}
	}
}

// Consumers returns the registered consumers.
func (r *Registry) Consumers() []InputConsumer {
	return append([]InputConsumer(nil), r.consumers...)
}

// BindController pairs slot's device exclusively with c: previous pairings are
// dropped, the gamepad scheme is activated and auto-switching is disabled.
// A verification pass runs after the verify delay and unpairs any other
// device that got paired in between. It is cancelled with c's lifetime and
// by the next bind of c.
func (r *Registry) BindController(c InputConsumer, slot Slot) BindResult {
	res := BindResult{Slot: slot}
	if c == nil || c.InputUser() == nil {
		res.Outcome = BindInvalid
		res.Err = fmt.Errorf("bind controller: nil consumer")
		r.reportBind(res)
		return res
	}
	r.cancelVerify(c)
	if !slot.Valid() {
		res.Outcome = BindInvalid
		res.Err = fmt.Errorf("bind controller to slot %d: %w", int(slot), ErrInvalidSlot)
		r.reportBind(res)
		return res
	}

	user := c.InputUser()
	user.UnpairAll()

	dev, ok := r.GetDevice(slot)
	if !ok {
		res.Outcome = BindNoDevice
		r.reportBind(res)
		return res
	}
	res.Device = dev

	if err := user.PairWithDevice(dev); err != nil {
		res.Outcome = BindFailed
		res.Err = err
		r.reportBind(res)
		return res
	}
	user.ActivateControlScheme(ControlSchemeGamepad)
	user.SetNeverAutoSwitch(true)
	user.SwitchActionMap(ActionMapPlayer)
	res.Outcome = BindPaired
	r.reportBind(res)

	if r.sched != nil {
		ctx, cancel := context.WithCancel(c.Lifetime())
		r.verifying[c] = cancel
		r.sched.After(ctx, r.verifyDelay, func() {
			delete(r.verifying, c)
			cancel()
			r.verifyPairing(user, slot, dev)
		})
	}
	return res
}

func (r *Registry) cancelVerify(c InputConsumer) {
	if cancel, ok := r.verifying[c]; ok {
		cancel()
		delete(r.verifying, c)
	}
}

func (r *Registry) reportBind(res BindResult) {
	d := Diagnostic{Category: CatPairing, Slot: res.Slot, Err: res.Err}
	switch res.Outcome {
	case BindPaired:
		d.Key = "paired"
		d.Message = res.Device.Name()
	case BindNoDevice:
		d.Severity = SeverityWarn
		d.Key = "no_device"
		d.Message = "slot has no device; player receives no input"
	case BindFailed:
		d.Severity = SeverityWarn
		d.Key = "bind_failed"
		d.Message = "pairing failed"
	default:
		d.Severity = SeverityWarn
		d.Key = "bind_invalid"
		d.Message = "bind rejected"
	}
	r.diag.Report(d)
}

// verifyPairing leaves only dev paired to user.
func (r *Registry) verifyPairing(user *InputUser, slot Slot, dev Device) {
	if !user.IsPaired(dev) {
		r.diag.Report(Diagnostic{
			Severity: SeverityWarn, Category: CatPairing, Key: "verify_lost", Slot: slot,
			Message: fmt.Sprintf("%s no longer paired", dev.Name()),
		})
		return
	}
	for _, other := range user.PairedDevices() {
		if other.ID() == dev.ID() {
			continue
		}
		user.Unpair(other)
		r.diag.Report(Diagnostic{
			Severity: SeverityWarn, Category: CatPairing, Key: "straggler_unpaired", Slot: slot,
			Message: other.Name(),
		})
	}
}

// ForceReassignment re-enumerates devices and re-binds every registered
// consumer to its own slot.
func (r *Registry) ForceReassignment() []BindResult {
	r.Reinitialize()
	results := make([]BindResult, 0, len(r.consumers))
	for _, c := range r.consumers {
		if !c.Slot().Valid() {
			continue
		}
		results = append(results, r.BindController(c, c.Slot()))
	}
	return results
}

// HandleHotPlug reacts to devices appearing or disappearing. Slots that lose
// their device raise the disconnected notification; any change forces a
// reassignment.
func (r *Registry) HandleHotPlug(connected, disconnected []DeviceID) {
	if len(connected) == 0 && len(disconnected) == 0 {
		return
	}
	before := r.Snapshot()
	for _, id := range disconnected {
		for _, slot := range Slots {
			d, ok := before.Device(slot)
			if !ok || d.ID() != id {
				continue
			}
			r.diag.Report(Diagnostic{
				Severity: SeverityWarn, Category: CatDevice, Key: "disconnected", Slot: slot,
				Message: d.Name(),
			})
			for _, fn := range r.onDisconnected {
				fn(slot)
			}
		}
	}
	for _, id := range connected {
		r.diag.Report(Diagnostic{Category: CatDevice, Key: "connected", Message: fmt.Sprintf("id %d", id)})
	}
	r.ForceReassignment()
}

// ProcessInput returns the filtered stick of slot's device, or zero when the
// slot is unbound.
func (r *Registry) ProcessInput(slot Slot, stick Stick) Vec2 {
	d, ok := r.GetDevice(slot)
	if !ok {
		return Vec2{}
	}
	return r.settings.ProcessStick(stick, d.Stick(stick))
}

// ProcessTrigger returns the filtered trigger of slot's device.
func (r *Registry) ProcessTrigger(slot Slot, t Trigger) float64 {
	d, ok := r.GetDevice(slot)
	if !ok {
		return 0
	}
	return r.settings.ProcessTrigger(d.Trigger(t))
}
