package game

import "fmt"

const (
	// ControlSchemeGamepad is the only scheme split-screen players run on.
	ControlSchemeGamepad = "Gamepad"
	// ActionMapPlayer is the gameplay action map.
	ActionMapPlayer = "Player"

	ActionMove = "Move"
	ActionLook = "Look"
)

// InputUser is the set of devices paired to one input consumer, plus the
// consumer's named actions.
type InputUser struct {
	id              int
	paired          []Device
	scheme          string
	actionMap       string
	neverAutoSwitch bool
	actions         map[string]*InputAction
}

// NewInputUser creates a user with the default Move (left stick) and Look
// (right stick) actions, both disabled.
func NewInputUser(id int) *InputUser {
	u := &InputUser{id: id, actions: make(map[string]*InputAction)}
	u.AddAction(ActionMove, StickLeft)
	u.AddAction(ActionLook, StickRight)
	return u
}

// ID returns the user's identifier.
func (u *InputUser) ID() int { return u.id }

// PairWithDevice adds d to the paired set. Pairing an already paired device
// is a no-op.
func (u *InputUser) PairWithDevice(d Device) error {
	if d == nil {
		return ErrNoDevice
	}
	if !d.Connected() {
		return fmt.Errorf("pair %q with user %d: %w", d.Name(), u.id, ErrDeviceDisconnected)
	}
	if u.IsPaired(d) {
		return nil
	}
	u.paired = append(u.paired, d)
	return nil
}

// Unpair removes d from the paired set.
func (u *InputUser) Unpair(d Device) {
	for i, p := range u.paired {
		if p.ID() == d.ID() {
			u.paired = append(u.paired[:i], u.paired[i+1:]...)
			return
		}
	}
}

// UnpairAll clears the paired set.
func (u *InputUser) UnpairAll() { u.paired = u.paired[:0] }

// IsPaired reports whether d is paired to u.
func (u *InputUser) IsPaired(d Device) bool {
	for _, p := range u.paired {
		if p.ID() == d.ID() {
			return true
		}
	}
	return false
}

// PairedDevices returns a copy of the paired set.
func (u *InputUser) PairedDevices() []Device {
	return append([]Device(nil), u.paired...)
}

// ActivateControlScheme switches the active control scheme.
func (u *InputUser) ActivateControlScheme(name string) { u.scheme = name }

// ControlScheme returns the active control scheme.
func (u *InputUser) ControlScheme() string { return u.scheme }

// SetNeverAutoSwitch disables automatic control scheme switching.
func (u *InputUser) SetNeverAutoSwitch(v bool) { u.neverAutoSwitch = v }

// NeverAutoSwitch reports whether automatic scheme switching is disabled.
func (u *InputUser) NeverAutoSwitch() bool { return u.neverAutoSwitch }

// SwitchActionMap selects the current action map.
func (u *InputUser) SwitchActionMap(name string) { u.actionMap = name }

// ActionMap returns the current action map.
func (u *InputUser) ActionMap() string { return u.actionMap }

// AddAction registers (or replaces) a named 2D action bound to a stick.
func (u *InputUser) AddAction(name string, stick Stick) *InputAction {
	a := &InputAction{name: name, stick: stick, user: u}
	u.actions[name] = a
	return a
}

// FindAction returns the named action, or nil.
func (u *InputUser) FindAction(name string) *InputAction {
	return u.actions[name]
}

// InputAction is a named 2D value read from a stick of the user's first
// paired device.
type InputAction struct {
	name    string
	stick   Stick
	enabled bool
	user    *InputUser
}

func (a *InputAction) Name() string  { return a.name }
func (a *InputAction) Enable()       { a.enabled = true }
func (a *InputAction) Disable()      { a.enabled = false }
func (a *InputAction) Enabled() bool { return a.enabled }

// ReadValue returns the raw stick value, or zero when the action is disabled
// or nothing is paired.
func (a *InputAction) ReadValue() Vec2 {
	if !a.enabled || len(a.user.paired) == 0 {
		return Vec2{}
	}
	return a.user.paired[0].Stick(a.stick)
}
