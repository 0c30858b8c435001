package game

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// envPrefix is prepended to every variable name in Config.
const envPrefix = "TWIN_"

// Config holds every tunable of the coop runtime. Values come from the
// environment (TWIN_ prefix) with the defaults below.
type Config struct {
	// Input.
	LeftStickDeadzone  float64       `env:"LEFT_STICK_DEADZONE" envDefault:"0.15"`
	RightStickDeadzone float64       `env:"RIGHT_STICK_DEADZONE" envDefault:"0.15"`
	TriggerDeadzone    float64       `env:"TRIGGER_DEADZONE" envDefault:"0.1"`
	MoveSensitivity    float64       `env:"MOVE_SENSITIVITY" envDefault:"1.0"`
	LookSensitivity    float64       `env:"LOOK_SENSITIVITY" envDefault:"1.0"`
	PairingVerifyDelay time.Duration `env:"PAIRING_VERIFY_DELAY" envDefault:"100ms"`

	// Split screen.
	SplitOrientation string  `env:"SPLIT_ORIENTATION" envDefault:"vertical"`
	BorderWidth      float64 `env:"BORDER_WIDTH" envDefault:"2"`
	BorderColor      string  `env:"BORDER_COLOR" envDefault:"ffffff"`
	FieldOfView      float64 `env:"FIELD_OF_VIEW" envDefault:"60"`

	// Third-person follow.
	FollowDistance        float64 `env:"FOLLOW_DISTANCE" envDefault:"8"`
	FollowHeight          float64 `env:"FOLLOW_HEIGHT" envDefault:"3"`
	FollowSmoothTime      float64 `env:"FOLLOW_SMOOTH_TIME" envDefault:"0.1"`
	FollowLookSensitivity float64 `env:"FOLLOW_LOOK_SENSITIVITY" envDefault:"1.95"`
	MinPitch              float64 `env:"MIN_PITCH" envDefault:"-40"`
	MaxPitch              float64 `env:"MAX_PITCH" envDefault:"70"`

	// Players.
	MoveSpeed     float64 `env:"MOVE_SPEED" envDefault:"5"`
	RotationSpeed float64 `env:"ROTATION_SPEED" envDefault:"720"`
	// SprintMultiplier scales MoveSpeed at full right trigger.
	SprintMultiplier float64 `env:"SPRINT_MULTIPLIER" envDefault:"1.6"`

	// Lights.
	CullingDistance float64       `env:"CULLING_DISTANCE" envDefault:"40"`
	CullingInterval time.Duration `env:"CULLING_INTERVAL" envDefault:"300ms"`

	// Scene transitions.
	TransitionFade time.Duration `env:"TRANSITION_FADE" envDefault:"1s"`

	// Window.
	WindowWidth  int  `env:"WINDOW_WIDTH" envDefault:"1600"`
	WindowHeight int  `env:"WINDOW_HEIGHT" envDefault:"900"`
	Audio        bool `env:"AUDIO" envDefault:"true"`
}

// DefaultConfig returns the tag defaults, ignoring the process environment.
func DefaultConfig() Config {
	cfg, err := LoadConfigFrom(map[string]string{})
	if err != nil {
		// Only reachable if a default tag above is malformed.
		panic(err)
	}
	return cfg
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFrom reads the configuration from an explicit environment map.
func LoadConfigFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{Prefix: envPrefix, Environment: environ}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the runtime cannot work with.
func (c Config) Validate() error {
	var errs []error
	for _, dz := range []struct {
		name  string
		value float64
	}{
		{"left stick deadzone", c.LeftStickDeadzone},
		{"right stick deadzone", c.RightStickDeadzone},
		{"trigger deadzone", c.TriggerDeadzone},
	} {
		if dz.value < 0 || dz.value >= 1 {
			errs = append(errs, fmt.Errorf("%s %.3f outside [0,1)", dz.name, dz.value))
		}
	}
	if c.MoveSensitivity <= 0 || c.LookSensitivity <= 0 {
		errs = append(errs, errors.New("sensitivities must be positive"))
	}
	if _, err := ParseOrientation(c.SplitOrientation); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseHexColor(c.BorderColor); err != nil {
		errs = append(errs, err)
	}
	if c.MinPitch >= c.MaxPitch {
		errs = append(errs, fmt.Errorf("min pitch %.1f must be below max pitch %.1f", c.MinPitch, c.MaxPitch))
	}
	if c.SprintMultiplier < 1 {
		errs = append(errs, fmt.Errorf("sprint multiplier %.2f below 1", c.SprintMultiplier))
	}
	if c.TransitionFade < 0 {
		errs = append(errs, errors.New("transition fade must not be negative"))
	}
	if c.FollowSmoothTime <= 0 {
		errs = append(errs, errors.New("follow smooth time must be positive"))
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		errs = append(errs, errors.New("window size must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// InputSettings extracts the deadzone/sensitivity settings.
func (c Config) InputSettings() InputSettings {
	return InputSettings{
		LeftStickDeadzone:  c.LeftStickDeadzone,
		RightStickDeadzone: c.RightStickDeadzone,
		TriggerDeadzone:    c.TriggerDeadzone,
		MoveSensitivity:    c.MoveSensitivity,
		LookSensitivity:    c.LookSensitivity,
	}
}

// FollowSettings extracts the third-person follow tuning.
func (c Config) FollowSettings() FollowSettings {
	return FollowSettings{
		Distance:        c.FollowDistance,
		Height:          c.FollowHeight,
		SmoothTime:      c.FollowSmoothTime,
		LookSensitivity: c.FollowLookSensitivity,
		MinPitch:        c.MinPitch,
		MaxPitch:        c.MaxPitch,
	}
}

// BorderRGBA returns the divider colour; white if BorderColor is malformed.
func (c Config) BorderRGBA() color.RGBA {
	clr, err := parseHexColor(c.BorderColor)
	if err != nil {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return clr
}

// parseHexColor parses "rrggbb" or "rrggbbaa", with an optional leading '#'.
func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("border colour %q: want rrggbb or rrggbbaa", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("border colour %q: %w", s, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
