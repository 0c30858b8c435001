package game

import (
	"errors"
	"image"
	"testing"
)

func twoPlayerSim(t *testing.T, opts ...SimOption) *CoopSim {
	t.Helper()
	base := []SimOption{
		WithPlayer(Slot1, 10, 10, 0),
		WithPlayer(Slot2, 30, 10, 0),
	}
	cs, err := NewCoopSim(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewCoopSim: %v", err)
	}
	return cs
}

func TestSplitScreen_VerticalViewports(t *testing.T) {
	cs := twoPlayerSim(t)
	c1, c2 := cs.Split.Camera(Slot1), cs.Split.Camera(Slot2)
	if c1.Viewport != (Rect{0, 0, 0.5, 1}) {
		t.Fatalf("camera 1 viewport = %v, want left half", c1.Viewport)
	}
	if c2.Viewport != (Rect{0.5, 0, 0.5, 1}) {
		t.Fatalf("camera 2 viewport = %v, want right half", c2.Viewport)
	}
	if c1.Depth != 0 || c2.Depth != 1 {
		t.Fatalf("depths = %d,%d, want 0,1", c1.Depth, c2.Depth)
	}
	if !c1.Primary || c2.Primary {
		t.Fatal("camera 1 alone should be primary")
	}
}

func TestSplitScreen_HorizontalPutsPlayerOneOnTop(t *testing.T) {
	cs := twoPlayerSim(t, WithOrientation(SplitHorizontal))
	c1, c2 := cs.Split.Camera(Slot1), cs.Split.Camera(Slot2)
	if got := c1.Viewport.Pixels(1600, 900); got != image.Rect(0, 0, 1600, 450) {
		t.Fatalf("camera 1 pixels = %v, want top half", got)
	}
	if got := c2.Viewport.Pixels(1600, 900); got != image.Rect(0, 450, 1600, 900) {
		t.Fatalf("camera 2 pixels = %v, want bottom half", got)
	}
	d := cs.Split.Divider()
	if d.From != (Vec2{0, 0.5}) || d.To != (Vec2{1, 0.5}) {
		t.Fatalf("divider = %v→%v, want horizontal midline", d.From, d.To)
	}
}

func TestSplitViewports_PartitionTheScreen(t *testing.T) {
	for _, o := range []Orientation{SplitVertical, SplitHorizontal} {
		a, b := SplitViewports(o)
		if a.Area()+b.Area() != 1 {
			t.Fatalf("%s: areas sum to %.3f", o, a.Area()+b.Area())
		}
		if a.Overlap(b) != 0 {
			t.Fatalf("%s: viewports overlap by %.3f", o, a.Overlap(b))
		}
		for _, p := range [][2]float64{{0.25, 0.25}, {0.75, 0.75}, {0.25, 0.75}, {0.75, 0.25}} {
			in := 0
			if a.Contains(p[0], p[1]) {
				in++
			}
			if b.Contains(p[0], p[1]) {
				in++
			}
			if in != 1 {
				t.Fatalf("%s: point %v covered %d times", o, p, in)
			}
		}
	}
}

func TestSplitScreen_DisablesOtherPrimaryCamera(t *testing.T) {
	cs := twoPlayerSim(t, WithExtraCamera("Main Camera"))
	main := cs.Scene.Cameras[0]
	if main.Name != "Main Camera" {
		t.Fatalf("unexpected first camera %q", main.Name)
	}
	if main.Enabled || main.Primary {
		t.Fatal("the old main camera should be disabled and lose its primary flag")
	}
	if cs.Log.Count(CatCamera, "camera_disabled") != 1 {
		t.Fatalf("expected one camera_disabled entry, log:\n%s", cs.Log.Format())
	}

	ls := cs.Scene.EnabledListeners()
	if len(ls) != 1 || ls[0].Camera != cs.Split.Camera(Slot1) {
		t.Fatalf("expected only camera 1's listener enabled, got %d", len(ls))
	}
}

func TestSplitScreen_DisablesCompetingController(t *testing.T) {
	cs := twoPlayerSim(t, WithOverviewCamera())
	for _, fc := range cs.Scene.FollowControllers {
		if fc.Enabled() {
			t.Fatal("competing follow controller still enabled")
		}
	}
	if cs.Log.Count(CatCamera, "controller_disabled") != 1 {
		t.Fatalf("expected controller_disabled, log:\n%s", cs.Log.Format())
	}
}

func TestSplitScreen_ReenablesDisabledCamera(t *testing.T) {
	cs := twoPlayerSim(t)
	cam := cs.Split.Camera(Slot2)
	cam.Enabled = false
	cs.Step()
	if !cam.Enabled {
		t.Fatal("managed camera should be re-enabled on the next frame")
	}
	last, ok := cs.Log.LastOf(CatCamera, "reenabled")
	if !ok || last.Severity != SeverityWarn || last.Message != cam.Name {
		t.Fatalf("expected a reenabled warning for %s, got %+v", cam.Name, last)
	}
}

func TestSplitScreen_SecondInstallFails(t *testing.T) {
	cs := twoPlayerSim(t)
	again, err := cs.Ctx.InstallSplitScreen(cs.Cameras[0], cs.Cameras[1])
	if !errors.Is(err, ErrSplitScreenInstalled) {
		t.Fatalf("err = %v, want ErrSplitScreenInstalled", err)
	}
	if again != cs.Split {
		t.Fatal("second install should return the installed split screen")
	}
}

func TestSplitScreen_RejectsMissingCamera(t *testing.T) {
	cs, err := NewCoopSim(WithoutSplitScreen())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cs.Ctx.InstallSplitScreen(cs.Cameras[0], nil); !errors.Is(err, ErrMissingCamera) {
		t.Fatalf("nil camera: err = %v", err)
	}
	if _, err := cs.Ctx.InstallSplitScreen(cs.Cameras[0], cs.Cameras[0]); !errors.Is(err, ErrMissingCamera) {
		t.Fatalf("same camera twice: err = %v", err)
	}
	if cs.Ctx.SplitScreen() != nil {
		t.Fatal("failed installs must not register a split screen")
	}
}

func TestSplitScreen_RejectsBadOrientation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SplitOrientation = "diagonal"
	scene := NewScene("t", 10, 10)
	c1 := scene.AddCamera(NewCamera("a"))
	c2 := scene.AddCamera(NewCamera("b"))
	ctx := NewContext(cfg, NewVirtualPlatform(0), scene, nil)
	if _, err := ctx.InstallSplitScreen(c1, c2); err == nil {
		t.Fatal("expected an orientation error")
	}
}

func TestSplitScreen_DiscoversPlayersSpawnedFirst(t *testing.T) {
	cs, err := NewCoopSim(
		WithoutSplitScreen(),
		WithPlayer(Slot2, 30, 10, 90),
		WithPlayer(Slot1, 10, 10, 0),
	)
	if err != nil {
		t.Fatal(err)
	}
	var notified []*Camera
	cs.Ctx.OnCamerasChanged(func(primary *Camera) { notified = append(notified, primary) })

	split, err := cs.Ctx.InstallSplitScreen(cs.Cameras[0], cs.Cameras[1])
	if err != nil {
		t.Fatal(err)
	}
	for _, slot := range Slots {
		p := cs.Player(slot)
		if split.Target(slot) != Target(p) {
			t.Fatalf("%s target not bound", slot)
		}
		if p.Camera() != split.Camera(slot) {
			t.Fatalf("%s should move relative to its own camera", slot)
		}
	}
	if len(notified) != 1 || notified[0] != split.Camera(Slot1) {
		t.Fatalf("observers notified %d times", len(notified))
	}
}

func TestSplitScreen_ObserversFireWhenSecondPlayerJoins(t *testing.T) {
	cs, err := NewCoopSim()
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	unregister := cs.Ctx.OnCamerasChanged(func(*Camera) { calls++ })

	if _, err := cs.Ctx.SpawnPlayer("one", Slot1, Vec3{X: 5, Z: 5}, 0); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Fatal("observers should wait for both players")
	}
	if _, err := cs.Ctx.SpawnPlayer("two", Slot2, Vec3{X: 8, Z: 5}, 0); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if cs.Fade.Camera() != cs.Split.Camera(Slot1) {
		t.Fatal("fade camera should track camera 1")
	}

	unregister()
	cs.Split.SceneChanged()
	if calls != 1 {
		t.Fatal("unregistered observer was called")
	}
}

func TestSplitScreen_SingleListenerAfterTargets(t *testing.T) {
	cs := twoPlayerSim(t, WithExtraCamera("Cinematic"))
	for _, l := range cs.Scene.Listeners {
		l.Enabled = true
	}
	cs.Split.SetTargets(cs.Player(Slot1), cs.Player(Slot2))
	if n := len(cs.Scene.EnabledListeners()); n != 1 {
		t.Fatalf("enabled listeners = %d, want 1", n)
	}
	if snap := cs.Snapshot(); snap.Listener != "Camera P1/listener" {
		t.Fatalf("listener = %q", snap.Listener)
	}
}

func TestParseOrientation(t *testing.T) {
	for in, want := range map[string]Orientation{
		"vertical": SplitVertical, "Horizontal": SplitHorizontal, " HORIZONTAL ": SplitHorizontal, "": SplitVertical,
	} {
		got, err := ParseOrientation(in)
		if err != nil || got != want {
			t.Fatalf("ParseOrientation(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseOrientation("diagonal"); err == nil {
		t.Fatal("expected error for diagonal")
	}
}
