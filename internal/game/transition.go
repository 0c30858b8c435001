package game

import (
	"errors"
	"fmt"
	"time"
)

// maxCheckpoints bounds the checkpoint history.
const maxCheckpoints = 10

var (
	ErrUnknownScene     = errors.New("unknown scene")
	ErrTransitionActive = errors.New("scene transition in progress")
	ErrNoCheckpoint     = errors.New("no checkpoint saved")
)

// SceneBuilder creates a fresh instance of a level.
type SceneBuilder func() (*Scene, error)

// Checkpoint is a saved scene name and the poses of the players in it.
type Checkpoint struct {
	Scene string
	Poses map[Slot]Pose
	Frame int
}

type transitionPhase int

const (
	phaseIdle transitionPhase = iota
	phaseFadeOut
	phaseFadeIn
)

// SceneTransitions moves both players between levels. A player walking into
// a level trigger fades the screen to black, the next scene is built and
// loaded into the Context, and the screen fades back in. Every arrival saves
// a checkpoint; loading the last checkpoint rebuilds its scene and puts the
// players back where they stood.
type SceneTransitions struct {
	ctx      *Context
	builders map[string]SceneBuilder
	duration time.Duration

	phase   transitionPhase
	fade    float64
	pending string
	poses   map[Slot]Pose
	inside  [2]string

	checkpoints []Checkpoint
}

// NewSceneTransitions creates the driver and attaches it to ctx. fade is the
// length of each half of a transition.
func NewSceneTransitions(ctx *Context, fade time.Duration) *SceneTransitions {
	st := &SceneTransitions{ctx: ctx, builders: make(map[string]SceneBuilder), duration: fade}
	ctx.SetSceneTransitions(st)
	return st
}

// Register makes name loadable.
func (st *SceneTransitions) Register(name string, build SceneBuilder) {
	st.builders[name] = build
}

// Active reports whether a transition is running.
func (st *SceneTransitions) Active() bool { return st.phase != phaseIdle }

// Fade is the black overlay opacity, 0 when clear.
func (st *SceneTransitions) Fade() float64 { return st.fade }

// TransitionTo starts fading to the named scene.
func (st *SceneTransitions) TransitionTo(name string) error {
	return st.begin(name, nil)
}

func (st *SceneTransitions) begin(name string, poses map[Slot]Pose) error {
	if st.Active() {
		return fmt.Errorf("transition to %s: %w", name, ErrTransitionActive)
	}
	if _, ok := st.builders[name]; !ok {
		return fmt.Errorf("transition to %q: %w", name, ErrUnknownScene)
	}
	st.phase = phaseFadeOut
	st.pending = name
	st.poses = poses
	st.ctx.report(Diagnostic{Category: CatScene, Key: "transition", Message: fmt.Sprintf("%s -> %s", st.ctx.Scene.Name, name)})
	return nil
}

// SaveCheckpoint records the current scene and player poses.
func (st *SceneTransitions) SaveCheckpoint() Checkpoint {
	cp := Checkpoint{Scene: st.ctx.Scene.Name, Poses: make(map[Slot]Pose), Frame: st.ctx.Frame()}
	for _, p := range st.ctx.Scene.Players {
		cp.Poses[p.Slot()] = Pose{Position: p.Position(), Yaw: p.Yaw()}
	}
	st.checkpoints = append(st.checkpoints, cp)
	if len(st.checkpoints) > maxCheckpoints {
		st.checkpoints = st.checkpoints[len(st.checkpoints)-maxCheckpoints:]
	}
	st.ctx.report(Diagnostic{Category: CatScene, Key: "checkpoint", Message: cp.Scene})
	return cp
}

// Checkpoints returns the saved checkpoints, oldest first.
func (st *SceneTransitions) Checkpoints() []Checkpoint {
	return append([]Checkpoint(nil), st.checkpoints...)
}

// LoadLastCheckpoint transitions to the newest checkpoint's scene and
// respawns the players at its poses.
func (st *SceneTransitions) LoadLastCheckpoint() error {
	if len(st.checkpoints) == 0 {
		return ErrNoCheckpoint
	}
	cp := st.checkpoints[len(st.checkpoints)-1]
	return st.begin(cp.Scene, cp.Poses)
}

// Update advances the fade and, when idle, checks players against the
// level's triggers. Triggers fire on entry only.
func (st *SceneTransitions) Update(dt float64) {
	switch st.phase {
	case phaseIdle:
		st.checkTriggers()
	case phaseFadeOut:
		st.fade = st.fadeToward(1, dt)
		if st.fade >= 1 {
			st.load()
			st.phase = phaseFadeIn
		}
	case phaseFadeIn:
		st.fade = st.fadeToward(0, dt)
		if st.fade <= 0 {
			st.phase = phaseIdle
		}
	}
}

func (st *SceneTransitions) fadeToward(target, dt float64) float64 {
	secs := st.duration.Seconds()
	if secs <= 0 {
		return target
	}
	step := dt / secs
	if target > st.fade {
		return clamp(st.fade+step, 0, target)
	}
	return clamp(st.fade-step, target, 1)
}

func (st *SceneTransitions) load() {
	name, poses := st.pending, st.poses
	st.pending, st.poses = "", nil

	next, err := st.builders[name]()
	if err == nil {
		err = st.ctx.LoadScene(next, poses)
	}
	if err != nil {
		st.ctx.report(Diagnostic{Severity: SeverityWarn, Category: CatScene, Key: "load_failed", Message: name, Err: err})
		return
	}
	st.markInside()
	if poses == nil {
		st.SaveCheckpoint()
	}
}

func (st *SceneTransitions) checkTriggers() {
	lvl := st.ctx.Scene.Level
	if lvl == nil {
		return
	}
	for _, p := range st.ctx.Scene.Players {
		trig, ok := lvl.triggerAt(p.body)
		was := st.inside[p.slot.index()]
		if !ok {
			st.inside[p.slot.index()] = ""
			continue
		}
		st.inside[p.slot.index()] = trig.Name
		if trig.Name == was {
			continue
		}
		st.ctx.report(Diagnostic{Category: CatScene, Key: "trigger", Slot: p.slot, Message: trig.Name})
		if err := st.TransitionTo(trig.Next); err != nil {
			st.ctx.report(Diagnostic{Severity: SeverityWarn, Category: CatScene, Key: "trigger_rejected", Slot: p.slot, Message: trig.Name, Err: err})
		}
		return
	}
}

// markInside records the triggers players already stand in after a load,
// so arriving on one does not fire it.
func (st *SceneTransitions) markInside() {
	st.inside = [2]string{}
	lvl := st.ctx.Scene.Level
	if lvl == nil {
		return
	}
	for _, p := range st.ctx.Scene.Players {
		if trig, ok := lvl.triggerAt(p.body); ok {
			st.inside[p.slot.index()] = trig.Name
		}
	}
}
