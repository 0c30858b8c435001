package game

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const audioSampleRate = beep.SampleRate(44100)

// Emitter is a looping sound at a world position.
type Emitter struct {
	Name     string
	Position Vec3
	// Range is the distance at which the emitter falls silent.
	Range float64
	Gain  float64

	ctrl *beep.Ctrl
	pan  *effects.Pan
	vol  *effects.Volume

	lastGain, lastPan float64
}

// NewEmitter wraps src in pan and volume stages.
func NewEmitter(name string, pos Vec3, rng float64, src beep.Streamer) *Emitter {
	e := &Emitter{Name: name, Position: pos, Range: rng, Gain: 1}
	e.ctrl = &beep.Ctrl{Streamer: src}
	e.pan = &effects.Pan{Streamer: e.ctrl}
	e.vol = &effects.Volume{Streamer: e.pan, Base: 2, Silent: true}
	return e
}

// NewToneEmitter creates an emitter playing a sine tone of freq Hz.
func NewToneEmitter(name string, pos Vec3, rng, freq float64) (*Emitter, error) {
	tone, err := generators.SineTone(audioSampleRate, freq)
	if err != nil {
		return nil, fmt.Errorf("tone emitter %s: %w", name, err)
	}
	return NewEmitter(name, pos, rng, tone), nil
}

// Streamer is the emitter's output stage.
func (e *Emitter) Streamer() beep.Streamer { return e.vol }

// SetPaused pauses or resumes the source.
func (e *Emitter) SetPaused(p bool) { e.ctrl.Paused = p }

// CurrentGain is the linear gain applied on the last mixer update.
func (e *Emitter) CurrentGain() float64 { return e.lastGain }

// CurrentPan is the pan in [-1,1] applied on the last mixer update.
func (e *Emitter) CurrentPan() float64 { return e.lastPan }

func (e *Emitter) apply(gain, pan float64) {
	e.lastGain, e.lastPan = gain, pan
	e.pan.Pan = pan
	if gain <= 0 {
		e.vol.Silent = true
		return
	}
	e.vol.Silent = false
	e.vol.Volume = math.Log2(gain)
}

// SpatialMixer mixes scene emitters as heard from the single enabled audio
// listener.
type SpatialMixer struct {
	scene   *Scene
	mixer   *beep.Mixer
	playing bool
}

// NewSpatialMixer creates a mixer over scene's emitters.
func NewSpatialMixer(scene *Scene) *SpatialMixer {
	m := &SpatialMixer{mixer: &beep.Mixer{}}
	m.setScene(scene)
	return m
}

// setScene swaps the mix over to scene's emitters.
func (m *SpatialMixer) setScene(scene *Scene) {
	m.lock()
	defer m.unlock()
	m.scene = scene
	m.mixer.Clear()
	for _, e := range scene.Emitters {
		m.mixer.Add(e.Streamer())
	}
}

// AddEmitter adds e to the scene and the mix.
func (m *SpatialMixer) AddEmitter(e *Emitter) {
	m.lock()
	defer m.unlock()
	m.scene.Emitters = append(m.scene.Emitters, e)
	m.mixer.Add(e.Streamer())
}

// Streamer returns the mixed output.
func (m *SpatialMixer) Streamer() beep.Streamer { return m.mixer }

// Play opens the speaker and starts the mix.
func (m *SpatialMixer) Play() error {
	if err := speaker.Init(audioSampleRate, audioSampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.mixer)
	m.playing = true
	return nil
}

// Close stops playback.
func (m *SpatialMixer) Close() {
	if m.playing {
		speaker.Clear()
		m.playing = false
	}
}

func (m *SpatialMixer) lock() {
	if m.playing {
		speaker.Lock()
	}
}

func (m *SpatialMixer) unlock() {
	if m.playing {
		speaker.Unlock()
	}
}

// listener returns the enabled listener, or nil.
func (m *SpatialMixer) listener() *AudioListener {
	for _, l := range m.scene.Listeners {
		if l.Enabled {
			return l
		}
	}
	return nil
}

// Update recomputes gain and pan of every emitter.
func (m *SpatialMixer) Update() {
	l := m.listener()
	m.lock()
	defer m.unlock()
	for _, e := range m.scene.Emitters {
		if l == nil {
			e.apply(0, 0)
			continue
		}
		e.apply(spatialize(l, e))
	}
}

// spatialize returns linear gain and pan of e heard from l.
func spatialize(l *AudioListener, e *Emitter) (gain, pan float64) {
	pos := l.Position()
	d := pos.Dist(e.Position)
	if e.Range > 0 {
		gain = e.Gain * clamp01(1-d/e.Range)
	} else {
		gain = e.Gain
	}
	if d < 1e-6 || l.Camera == nil {
		return gain, 0
	}
	dir := e.Position.Sub(pos).Scale(1 / d)
	pan = clamp(dir.Dot(l.Camera.Transform.Right()), -1, 1)
	return gain, pan
}
