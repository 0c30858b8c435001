package game

// Filter applies a radial deadzone and sensitivity to a raw stick value.
//
// Magnitudes below deadzone read as zero. Above it the magnitude is remapped
// linearly from [deadzone, 1] to [0, 1], clamped, and scaled by sensitivity;
// the direction of raw is preserved.
func Filter(raw Vec2, deadzone, sensitivity float64) Vec2 {
	deadzone = clampDeadzone(deadzone)
	mag := raw.Len()
	if mag < deadzone || mag == 0 {
		return Vec2{}
	}
	remapped := clamp01((mag - deadzone) / (1 - deadzone))
	return raw.Normalized().Scale(remapped * sensitivity)
}

// FilterScalar is the one-axis trigger variant of Filter, clamped to [0, 1].
func FilterScalar(raw, deadzone float64) float64 {
	deadzone = clampDeadzone(deadzone)
	if raw < deadzone {
		return 0
	}
	return clamp01((raw - deadzone) / (1 - deadzone))
}

// clampDeadzone keeps the deadzone inside [0, 1) so the remap never divides by zero.
func clampDeadzone(d float64) float64 {
	const maxDeadzone = 0.999
	return clamp(d, 0, maxDeadzone)
}

// InputSettings are the slot-independent deadzone and sensitivity values
// shared by every player.
type InputSettings struct {
	LeftStickDeadzone  float64
	RightStickDeadzone float64
	TriggerDeadzone    float64
	MoveSensitivity    float64
	LookSensitivity    float64
}

// DefaultInputSettings returns the tuning the game ships with.
func DefaultInputSettings() InputSettings {
	return InputSettings{
		LeftStickDeadzone:  0.15,
		RightStickDeadzone: 0.15,
		TriggerDeadzone:    0.1,
		MoveSensitivity:    1.0,
		LookSensitivity:    1.0,
	}
}

// ProcessLeftStick filters movement input.
func (s InputSettings) ProcessLeftStick(raw Vec2) Vec2 {
	return Filter(raw, s.LeftStickDeadzone, s.MoveSensitivity)
}

// ProcessRightStick filters look input.
func (s InputSettings) ProcessRightStick(raw Vec2) Vec2 {
	return Filter(raw, s.RightStickDeadzone, s.LookSensitivity)
}

// ProcessTrigger filters an analog trigger.
func (s InputSettings) ProcessTrigger(raw float64) float64 {
	return FilterScalar(raw, s.TriggerDeadzone)
}

// ProcessStick dispatches to the left or right stick filter.
func (s InputSettings) ProcessStick(stick Stick, raw Vec2) Vec2 {
	if stick == StickRight {
		return s.ProcessRightStick(raw)
	}
	return s.ProcessLeftStick(raw)
}
