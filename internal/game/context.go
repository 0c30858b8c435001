package game

import (
	"errors"
	"fmt"
	"time"
)

// Context is the process-wide coop state: one registry, at most one split
// screen, one scheduler and one diagnostics sink. Construct one per process
// (or per test) and pass it to whatever needs it.
type Context struct {
	Config    Config
	Scene     *Scene
	Scheduler *Scheduler
	Registry  *Registry

	diag      Diagnostics
	frame     int
	split     *SplitScreen
	observers map[int]func(primary *Camera)
	nextObs   int

	culler      *LightCuller
	mixer       *SpatialMixer
	transitions *SceneTransitions
}

// NewContext wires the registry to platform and scene.
func NewContext(cfg Config, platform Platform, scene *Scene, diag Diagnostics) *Context {
	if diag == nil {
		diag = DiscardDiagnostics{}
	}
	c := &Context{
		Config:    cfg,
		Scene:     scene,
		Scheduler: NewScheduler(),
		diag:      diag,
		observers: make(map[int]func(*Camera)),
	}
	c.Registry = NewRegistry(platform, cfg.InputSettings(), c.Scheduler, frameStamper{c})
	c.Registry.SetVerifyDelay(cfg.PairingVerifyDelay)
	return c
}

// frameStamper stamps the current frame onto diagnostics.
type frameStamper struct{ c *Context }

func (f frameStamper) Report(d Diagnostic) {
	d.Frame = f.c.frame
	f.c.diag.Report(d)
}

func (c *Context) report(d Diagnostic) { frameStamper{c}.Report(d) }

// Frame returns the number of completed Tick calls.
func (c *Context) Frame() int { return c.frame }

// SplitScreen returns the installed split screen, or nil.
func (c *Context) SplitScreen() *SplitScreen { return c.split }

// OnCamerasChanged registers fn to be told when the set of active cameras
// changes. primary is the camera that owns the main display surface.
// The returned func unregisters it.
func (c *Context) OnCamerasChanged(fn func(primary *Camera)) (unregister func()) {
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() { delete(c.observers, id) }
}

func (c *Context) notifyCamerasChanged() {
	var primary *Camera
	if c.split != nil {
		primary = c.split.Camera(Slot1)
	}
	// Map order is random; observers must not depend on each other.
	for _, fn := range c.observers {
		fn(primary)
	}
}

// SetLightCuller attaches a culler updated every Tick.
func (c *Context) SetLightCuller(lc *LightCuller) { c.culler = lc }

// SetSpatialMixer attaches a mixer updated every Tick.
func (c *Context) SetSpatialMixer(m *SpatialMixer) { c.mixer = m }

// SetSceneTransitions attaches the trigger/fade driver updated every Tick.
func (c *Context) SetSceneTransitions(st *SceneTransitions) { c.transitions = st }

// LoadScene replaces the current scene with next. Every player is destroyed
// and respawned in next at its slot's pose in poses, or at next.Spawns when
// poses has none. The split-screen cameras carry over with their listeners,
// the split screen takes over next, and camera observers are told.
func (c *Context) LoadScene(next *Scene, poses map[Slot]Pose) error {
	if next == nil {
		return errors.New("load scene: nil scene")
	}
	prev := c.Scene
	leaving := append([]*PlayerController(nil), prev.Players...)
	for _, p := range leaving {
		p.Destroy()
	}
	if s := c.split; s != nil {
		for _, cam := range s.cams {
			next.adoptCamera(cam)
		}
		s.replace()
	}
	c.Scene = next
	if c.mixer != nil {
		c.mixer.setScene(next)
	}

	var errs []error
	for _, p := range leaving {
		pose, ok := poses[p.slot]
		if !ok {
			pose = next.Spawns[p.slot.index()]
		}
		if _, err := c.SpawnPlayer(p.Name, p.slot, pose.Position, pose.Yaw); err != nil {
			errs = append(errs, err)
		}
	}
	c.report(Diagnostic{Category: CatScene, Key: "loaded", Message: fmt.Sprintf("%s -> %s", prev.Name, next.Name)})
	if c.split != nil {
		c.split.SceneChanged()
	}
	if c.culler != nil {
		c.culler.Refresh()
	}
	if len(errs) > 0 {
		return fmt.Errorf("load scene %s: %w", next.Name, errors.Join(errs...))
	}
	return nil
}

// Tick runs one frame: scheduled continuations, players, scene transitions,
// camera maintenance, followers, then light culling and audio panning.
func (c *Context) Tick(dt time.Duration) {
	c.frame++
	secs := dt.Seconds()

	c.Scheduler.Advance(dt)
	for _, p := range append([]*PlayerController(nil), c.Scene.Players...) {
		p.Update(secs)
	}
	if c.transitions != nil {
		c.transitions.Update(secs)
	}
	if c.split != nil {
		c.split.Update()
		c.split.LateUpdate(secs)
	}
	if c.culler != nil {
		c.culler.Update(secs)
	}
	if c.mixer != nil {
		c.mixer.Update()
	}
}
