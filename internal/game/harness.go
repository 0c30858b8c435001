package game

import (
	"fmt"
	"time"
)

// simFrame is the fixed frame time of the headless harness.
const simFrame = time.Second / 60

// CoopSim is a headless two-player harness used by tests and the coop
// report. It mirrors Game.Update with virtual pads and no Ebiten dependency.
type CoopSim struct {
	Config   Config
	Platform *VirtualPlatform
	Scene    *Scene
	Ctx      *Context
	Log      *CoopLog
	Split    *SplitScreen
	Culler   *LightCuller
	Fade     *FadeOutCamera

	// Transitions loads the sim's own level (named "sim") and any WithScene levels.
	Transitions *SceneTransitions

	Cameras [2]*Camera
	Players [2]*PlayerController

	pads        int
	walls       []Wall
	lights      []*Light
	triggers    []TriggerZone
	scenes      map[string]SceneBuilder
	extraCams   []string
	spawns      []playerSpawn
	noSplit     bool
	width       float64
	depth       float64
	overviewCam bool
}

type playerSpawn struct {
	slot Slot
	pos  Vec3
	yaw  float64
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // config, pads, level, cameras: applied first
	simOptPlayer                      // players: spawned after the split screen is installed
)

// SimOption is a builder function applied to a CoopSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*CoopSim)
}

// WithConfig replaces the configuration.
func WithConfig(cfg Config) SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) { cs.Config = cfg }}
}

// WithPads sets the number of virtual pads connected at start.
func WithPads(n int) SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) { cs.pads = n }}
}

// WithOrientation sets the split orientation.
func WithOrientation(o Orientation) SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) { cs.Config.SplitOrientation = o.String() }}
}

// WithLevelSize sets the walkable area in metres.
func WithLevelSize(w, d float64) SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) { cs.width, cs.depth = w, d }}
}

// WithWall adds a wall to the level.
func WithWall(x, z, w, d float64) SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) {
		cs.walls = append(cs.walls, Wall{X: x, Z: z, W: w, D: d, Height: 2})
	}}
}

// WithLight adds a light to the scene.
func WithLight(l *Light) SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) { cs.lights = append(cs.lights, l) }}
}

// WithExtraCamera adds a primary camera with its own listener that the split
// screen has to take over.
func WithExtraCamera(name string) SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) { cs.extraCams = append(cs.extraCams, name) }}
}

// WithOverviewCamera adds the single-player overview controller.
func WithOverviewCamera() SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) { cs.overviewCam = true }}
}

// WithoutSplitScreen leaves the split screen uninstalled.
func WithoutSplitScreen() SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) { cs.noSplit = true }}
}

// WithTrigger adds a level trigger that loads next.
func WithTrigger(name string, x, z, w, d float64, next string) SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) {
		cs.triggers = append(cs.triggers, TriggerZone{Name: name, X: x, Z: z, W: w, D: d, Next: next})
	}}
}

// WithScene registers another loadable level.
func WithScene(name string, build SceneBuilder) SimOption {
	return SimOption{simOptInfra, func(cs *CoopSim) {
		if cs.scenes == nil {
			cs.scenes = make(map[string]SceneBuilder)
		}
		cs.scenes[name] = build
	}}
}

// WithPlayer spawns a player in slot at (x, z) facing yaw degrees.
func WithPlayer(slot Slot, x, z, yaw float64) SimOption {
	return SimOption{simOptPlayer, func(cs *CoopSim) {
		cs.spawns = append(cs.spawns, playerSpawn{slot: slot, pos: Vec3{X: x, Z: z}, yaw: yaw})
	}}
}

// NewCoopSim builds a scene from opts: level and cameras first, then the
// split screen, then players.
func NewCoopSim(opts ...SimOption) (*CoopSim, error) {
	cs := &CoopSim{
		Config: DefaultConfig(),
		Log:    NewCoopLog(),
		pads:   2,
		width:  40,
		depth:  40,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(cs)
		}
	}
	for _, o := range opts {
		if o.kind == simOptPlayer {
			o.fn(cs)
		}
	}

	cs.Platform = NewVirtualPlatform(cs.pads)
	cs.Scene = cs.buildScene()
	for i, slot := range Slots {
		cam := NewCamera(fmt.Sprintf("Camera %s", slot))
		cam.FieldOfView = cs.Config.FieldOfView
		cs.Cameras[i] = cs.Scene.AddCamera(cam)
		cs.Scene.AttachListener(cam)
	}

	cs.Ctx = NewContext(cs.Config, cs.Platform, cs.Scene, cs.Log)
	cs.Culler = NewLightCuller(cs.Ctx)
	cs.Ctx.SetLightCuller(cs.Culler)
	cs.Fade, _ = AttachFadeOutCamera(cs.Ctx)
	cs.Transitions = NewSceneTransitions(cs.Ctx, cs.Config.TransitionFade)
	cs.Transitions.Register(cs.Scene.Name, func() (*Scene, error) { return cs.buildScene(), nil })
	for name, build := range cs.scenes {
		cs.Transitions.Register(name, build)
	}

	if !cs.noSplit {
		split, err := cs.Ctx.InstallSplitScreen(cs.Cameras[0], cs.Cameras[1])
		if err != nil {
			return nil, fmt.Errorf("new coop sim: %w", err)
		}
		cs.Split = split
	}
	for _, sp := range cs.spawns {
		p, err := cs.Ctx.SpawnPlayer(fmt.Sprintf("Player %d", int(sp.slot)), sp.slot, sp.pos, sp.yaw)
		if err != nil {
			return nil, fmt.Errorf("new coop sim: %w", err)
		}
		cs.Players[sp.slot.index()] = p
	}
	return cs, nil
}

// buildScene creates the sim level from the infra options. Players enter it
// at their WithPlayer poses.
func (cs *CoopSim) buildScene() *Scene {
	s := NewScene("sim", cs.width, cs.depth)
	for _, w := range cs.walls {
		s.Level.AddWall(w)
	}
	for _, t := range cs.triggers {
		s.Level.AddTrigger(t)
	}
	for _, l := range cs.lights {
		s.AddLight(l)
	}
	for _, name := range cs.extraCams {
		cam := s.AddCamera(NewCamera(name))
		cam.Primary = true
		s.AttachListener(cam)
	}
	if cs.overviewCam {
		cam := s.AddCamera(NewCamera("Overview"))
		s.FollowControllers = append(s.FollowControllers,
			NewOverviewCamera(cam, Vec3{X: cs.width / 2, Z: cs.depth / 2}))
	}
	for _, sp := range cs.spawns {
		if sp.slot.Valid() {
			s.Spawns[sp.slot.index()] = Pose{Position: sp.pos, Yaw: sp.yaw}
		}
	}
	return s
}

// Pad returns the i-th connected virtual pad, or nil.
func (cs *CoopSim) Pad(i int) *VirtualPad { return cs.Platform.Pad(i) }

// Player returns the player in slot, or nil.
func (cs *CoopSim) Player(slot Slot) *PlayerController {
	if !slot.Valid() {
		return nil
	}
	return cs.Ctx.Scene.FindPlayer(slot)
}

// Step runs one frame.
func (cs *CoopSim) Step() {
	cs.Ctx.Tick(simFrame)
	cs.sync()
}

// sync follows the context onto a newly loaded scene.
func (cs *CoopSim) sync() {
	cs.Scene = cs.Ctx.Scene
	for i, slot := range Slots {
		cs.Players[i] = cs.Scene.FindPlayer(slot)
	}
}

// RunFrames runs n frames.
func (cs *CoopSim) RunFrames(n int) {
	for i := 0; i < n; i++ {
		cs.Step()
	}
}

// RunUntil runs up to maxFrames, stopping once predicate holds. Returns the
// frame at which it held, or -1.
func (cs *CoopSim) RunUntil(predicate func(*CoopSim) bool, maxFrames int) int {
	for i := 0; i < maxFrames; i++ {
		cs.Step()
		if predicate(cs) {
			return cs.Ctx.Frame()
		}
	}
	return -1
}

// Unplug disconnects the i-th connected pad and lets the registry react.
func (cs *CoopSim) Unplug(i int) {
	p := cs.Platform.Pad(i)
	if p == nil {
		return
	}
	cs.Platform.Disconnect(p.ID())
	cs.Ctx.Registry.HandleHotPlug(nil, []DeviceID{p.ID()})
}

// Plug connects a new pad and lets the registry react.
func (cs *CoopSim) Plug(name string) *VirtualPad {
	p := cs.Platform.Connect(name)
	cs.Ctx.Registry.HandleHotPlug([]DeviceID{p.ID()}, nil)
	return p
}

// SimSnapshot is a lightweight summary of the coop state at a frame.
type SimSnapshot struct {
	Frame     int
	Status    string
	Listener  string
	Players   []PlayerSnapshot
	Lights    int
	AllLights int
}

// PlayerSnapshot is a copy of a player's state at a frame.
type PlayerSnapshot struct {
	Slot     Slot
	Name     string
	Device   string
	Position Vec3
	Yaw      float64
	CamYaw   float64
	CamPitch float64
}

// Snapshot returns the current state.
func (cs *CoopSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{
		Frame:     cs.Ctx.Frame(),
		Status:    cs.Ctx.Registry.StatusInfo(),
		Lights:    cs.Culler.ActiveCount(),
		AllLights: cs.Culler.TotalCount(),
	}
	if ls := cs.Scene.EnabledListeners(); len(ls) > 0 {
		snap.Listener = ls[0].Name
	}
	for _, p := range cs.Players {
		if p == nil {
			continue
		}
		ps := PlayerSnapshot{Slot: p.Slot(), Name: p.Name, Device: "-", Position: p.Position(), Yaw: p.Yaw()}
		if d := p.Gamepad(); d != nil {
			ps.Device = d.Name()
		}
		if cs.Split != nil {
			f := cs.Split.Follower(p.Slot())
			ps.CamYaw, ps.CamPitch = f.Yaw(), f.Pitch()
		}
		snap.Players = append(snap.Players, ps)
	}
	return snap
}
