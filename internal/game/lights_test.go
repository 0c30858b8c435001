package game

import (
	"math"
	"testing"
	"time"
)

func cullingContext(distance float64) (*Context, *Camera, *CoopLog) {
	cfg := DefaultConfig()
	cfg.CullingDistance = distance
	scene := NewScene("lights", 100, 100)
	cam := scene.AddCamera(NewCamera("cam"))
	log := NewCoopLog()
	return NewContext(cfg, NewVirtualPlatform(0), scene, log), cam, log
}

func TestLightCuller_CullsByDistance(t *testing.T) {
	ctx, _, log := cullingContext(10)
	near := ctx.Scene.AddLight(&Light{Name: "near", Kind: LightPoint, Position: Vec3{X: 5}, Enabled: true})
	far := ctx.Scene.AddLight(&Light{Name: "far", Kind: LightPoint, Position: Vec3{X: 50}, Enabled: true})

	lc := NewLightCuller(ctx)
	lc.Refresh()
	if !near.Enabled || far.Enabled {
		t.Fatalf("near=%v far=%v, want true,false", near.Enabled, far.Enabled)
	}
	if lc.ActiveCount() != 1 || lc.TotalCount() != 2 {
		t.Fatalf("active=%d total=%d", lc.ActiveCount(), lc.TotalCount())
	}
	if log.Count(CatLights, "culled") != 1 {
		t.Fatalf("expected one culled entry, log:\n%s", log.Format())
	}

	lc.Refresh()
	if log.Count(CatLights, "culled") != 1 {
		t.Fatal("an unchanged pass should not report")
	}

	lc.SetCullingDistance(60)
	if !far.Enabled || lc.CullingDistance() != 60 {
		t.Fatal("widening the radius should re-enable the far light")
	}
}

func TestLightCuller_Exemptions(t *testing.T) {
	ctx, _, _ := cullingContext(5)
	lights := []*Light{
		{Name: "always", Kind: LightPoint, Position: Vec3{X: 80}, AlwaysOn: true},
		{Name: "sun", Kind: LightDirectional, Position: Vec3{X: 80}},
		{Name: "torch", Kind: LightSpot, Position: Vec3{X: 80}, Owner: Slot2},
		{Name: "lamp", Kind: LightPoint, Position: Vec3{X: 80}, Enabled: true},
	}
	for _, l := range lights {
		ctx.Scene.AddLight(l)
	}
	NewLightCuller(ctx).Refresh()
	for _, l := range lights[:3] {
		if !l.Enabled {
			t.Fatalf("%s should never be culled", l.Name)
		}
	}
	if lights[3].Enabled {
		t.Fatal("distant level lamp should be culled")
	}
}

func TestLightCuller_IgnoresDisabledCameras(t *testing.T) {
	ctx, cam, _ := cullingContext(10)
	l := ctx.Scene.AddLight(&Light{Name: "l", Kind: LightPoint, Position: Vec3{X: 1}, Enabled: true})
	cam.Enabled = false
	NewLightCuller(ctx).Refresh()
	if l.Enabled {
		t.Fatal("a disabled camera should not keep lights on")
	}
}

func TestLightCuller_RunsOnInterval(t *testing.T) {
	ctx, cam, _ := cullingContext(10)
	l := ctx.Scene.AddLight(&Light{Name: "l", Kind: LightPoint, Position: Vec3{X: 50}, Enabled: true})
	lc := NewLightCuller(ctx)

	lc.Update(0)
	if l.Enabled {
		t.Fatal("first update should cull immediately")
	}

	cam.Transform.Position = Vec3{X: 45}
	interval := ctx.Config.CullingInterval.Seconds()
	lc.Update(interval / 2)
	if l.Enabled {
		t.Fatal("culling ran before the interval elapsed")
	}
	lc.Update(interval / 2)
	if !l.Enabled {
		t.Fatal("culling should run once the interval elapsed")
	}
}

func TestLightCuller_UsesSplitCameras(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CullingDistance = 10
	cfg.CullingInterval = time.Millisecond
	near2 := &Light{Name: "p2-lamp", Kind: LightPoint, Position: Vec3{X: 35, Y: 3, Z: 30}}
	middle := &Light{Name: "middle", Kind: LightPoint, Position: Vec3{X: 20, Y: 3, Z: 20}, Enabled: true}
	cs := newSim(t,
		WithConfig(cfg),
		WithLight(near2),
		WithLight(middle),
		WithPlayer(Slot1, 5, 5, 0),
		WithPlayer(Slot2, 35, 35, 0),
	)
	cs.Step()
	if !near2.Enabled || middle.Enabled {
		t.Fatalf("p2-lamp=%v middle=%v, want true,false", near2.Enabled, middle.Enabled)
	}
	snap := cs.Snapshot()
	if snap.Lights != 1 || snap.AllLights != 2 {
		t.Fatalf("snapshot lights %d/%d", snap.Lights, snap.AllLights)
	}
}

func TestFadeOutCamera_PicksEnabledPrimary(t *testing.T) {
	a := NewCamera("a")
	a.Primary, a.Enabled = true, false
	b := NewCamera("b")
	c := NewCamera("c")
	c.Primary = true
	cams := []*Camera{a, b, c}

	f := NewFadeOutCamera(func() []*Camera { return cams })
	if f.Camera() != c {
		t.Fatalf("camera = %v, want c", f.Camera().Name)
	}
	c.Enabled = false
	if f.Camera() != b {
		t.Fatal("disabled camera should be replaced by the first enabled one")
	}
	b.Enabled = false
	if f.Camera() != nil {
		t.Fatal("no enabled cameras should yield nil")
	}
	if got := f.Fade(Vec3{}, 2, 8); got != 1 {
		t.Fatalf("fade without a camera = %.2f, want 1", got)
	}
	if _, ok := f.Transform(); ok {
		t.Fatal("Transform should report no camera")
	}
}

func TestFadeOutCamera_Fade(t *testing.T) {
	cam := NewCamera("cam")
	f := NewFadeOutCamera(func() []*Camera { return []*Camera{cam} })
	for _, tc := range []struct {
		dist, want float64
	}{
		{1, 0}, {2, 0}, {5, 0.5}, {8, 1}, {20, 1},
	} {
		if got := f.Fade(Vec3{Z: tc.dist}, 2, 8); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Fade at %.0fm = %.3f, want %.3f", tc.dist, got, tc.want)
		}
	}
	if f.Fade(Vec3{Z: 1}, 3, 3) != 0 || f.Fade(Vec3{Z: 4}, 3, 3) != 1 {
		t.Fatal("equal start and end should act as a step")
	}
}

func TestFadeOutCamera_FollowsCameraChanges(t *testing.T) {
	cs := newSim(t, WithExtraCamera("Main"), WithPlayer(Slot1, 5, 5, 0), WithPlayer(Slot2, 10, 5, 0))
	if cs.Fade.Camera() != cs.Split.Camera(Slot1) {
		t.Fatalf("fade camera = %s, want camera 1", cs.Fade.Camera().Name)
	}
}
