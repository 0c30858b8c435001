package game

import (
	"errors"
	"math"
	"testing"
)

func newSim(t *testing.T, opts ...SimOption) *CoopSim {
	t.Helper()
	cs, err := NewCoopSim(opts...)
	if err != nil {
		t.Fatalf("NewCoopSim: %v", err)
	}
	return cs
}

func TestPlayer_MovesRelativeToCamera(t *testing.T) {
	cs := newSim(t, WithPlayer(Slot1, 10, 10, 90), WithPlayer(Slot2, 30, 30, 0))
	p := cs.Player(Slot1)
	if math.Abs(p.Camera().Transform.Yaw-90) > 1e-6 {
		t.Fatalf("camera should start behind the player facing +X, yaw=%.2f", p.Camera().Transform.Yaw)
	}

	cs.Pad(0).SetStick(StickLeft, Vec2{0, 1})
	cs.RunFrames(30)

	pos := p.Position()
	if pos.X-10 < 2 {
		t.Fatalf("forward on the stick should walk along the camera's heading (+X), pos=%+v", pos)
	}
	if math.Abs(pos.Z-10) > 0.1 {
		t.Fatalf("unexpected sideways drift, pos=%+v", pos)
	}
	if other := cs.Player(Slot2).Position(); other != (Vec3{X: 30, Z: 30}) {
		t.Fatalf("player 2 moved on player 1's input: %+v", other)
	}
}

func TestPlayer_TurnsTowardMovement(t *testing.T) {
	cs := newSim(t, WithoutSplitScreen(), WithPlayer(Slot1, 10, 10, 0))
	cs.Pad(0).SetStick(StickLeft, Vec2{1, 0})
	cs.RunFrames(10)
	p := cs.Player(Slot1)
	if math.Abs(p.Yaw()-90) > 1e-9 {
		t.Fatalf("yaw = %.2f, want 90", p.Yaw())
	}
	if p.Position().X <= 10 {
		t.Fatalf("player should move +X without a camera, pos=%+v", p.Position())
	}
}

func TestPlayer_IgnoresInputBelowThreshold(t *testing.T) {
	cs := newSim(t, WithoutSplitScreen(), WithPlayer(Slot1, 10, 10, 0))
	p := cs.Player(Slot1)
	for _, raw := range []Vec2{{0, 0.1}, {0, 0.2}} {
		cs.Pad(0).SetStick(StickLeft, raw)
		cs.RunFrames(30)
		if p.Position() != (Vec3{X: 10, Z: 10}) {
			t.Fatalf("stick %+v moved the player to %+v", raw, p.Position())
		}
	}
}

func TestPlayer_SprintTriggerScalesSpeed(t *testing.T) {
	walk := newSim(t, WithoutSplitScreen(), WithPlayer(Slot1, 10, 10, 0))
	run := newSim(t, WithoutSplitScreen(), WithPlayer(Slot1, 10, 10, 0))
	walk.Pad(0).SetStick(StickLeft, Vec2{0, 1})
	run.Pad(0).SetStick(StickLeft, Vec2{0, 1})
	run.Pad(0).SetTrigger(TriggerRight, 1)
	walk.RunFrames(30)
	run.RunFrames(30)

	p := run.Player(Slot1)
	if p.Sprint() != 1 {
		t.Fatalf("sprint = %.2f, want 1", p.Sprint())
	}
	walked := walk.Player(Slot1).Position().Z - 10
	ran := p.Position().Z - 10
	want := walked * p.SprintMultiplier
	if math.Abs(ran-want) > 1e-6 {
		t.Fatalf("sprint distance = %.3f, want %.3f (walk %.3f)", ran, want, walked)
	}

	// A light touch stays inside the trigger deadzone.
	run.Pad(0).SetTrigger(TriggerRight, 0.05)
	run.Step()
	if p.Sprint() != 0 {
		t.Fatalf("sprint inside deadzone = %.2f, want 0", p.Sprint())
	}
}

func TestPlayer_StopsAtWall(t *testing.T) {
	cs := newSim(t,
		WithoutSplitScreen(),
		WithWall(5, 14, 20, 1),
		WithPlayer(Slot1, 10, 10, 0),
	)
	cs.Pad(0).SetStick(StickLeft, Vec2{0, 1})
	cs.RunFrames(120)

	z := cs.Player(Slot1).Position().Z
	if z > 14-playerRadius+0.05 {
		t.Fatalf("player walked into the wall, z=%.3f", z)
	}
	if z < 13 {
		t.Fatalf("player stopped short of the wall, z=%.3f", z)
	}
}

func TestPlayer_WithoutDeviceReadsNothing(t *testing.T) {
	cs := newSim(t, WithPads(1), WithPlayer(Slot1, 10, 10, 0), WithPlayer(Slot2, 20, 10, 0))
	cs.Pad(0).SetStick(StickLeft, Vec2{0, 1})
	cs.Step()

	p2 := cs.Player(Slot2)
	if p2.HasGamepad() || p2.MoveInput() != (Vec2{}) {
		t.Fatal("slot 2 has no pad and must read zero input")
	}
	if !cs.Player(Slot1).HasGamepad() {
		t.Fatal("slot 1 should have the only pad")
	}
	if cs.Log.Count(CatPairing, "no_device") != 1 {
		t.Fatalf("expected one no_device warning, log:\n%s", cs.Log.Format())
	}
}

func TestSpawnPlayer_Errors(t *testing.T) {
	cs := newSim(t, WithPlayer(Slot1, 10, 10, 0))
	if _, err := cs.Ctx.SpawnPlayer("bad", Slot(3), Vec3{}, 0); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("err = %v, want ErrInvalidSlot", err)
	}
	if _, err := cs.Ctx.SpawnPlayer("dup", Slot1, Vec3{X: 5, Z: 5}, 0); err == nil {
		t.Fatal("expected an error for a taken slot")
	}
	if n := len(cs.Scene.Players); n != 1 {
		t.Fatalf("players = %d, want 1", n)
	}
}

func TestPlayer_VerificationRunsAfterDelay(t *testing.T) {
	cs := newSim(t, WithPads(2), WithPlayer(Slot1, 10, 10, 0))
	user := cs.Player(Slot1).InputUser()
	_ = user.PairWithDevice(cs.Pad(1))

	cs.RunFrames(5)
	if len(user.PairedDevices()) != 2 {
		t.Fatal("verification ran before 100ms of frame time")
	}
	cs.RunFrames(2)
	paired := user.PairedDevices()
	if len(paired) != 1 || paired[0].ID() != cs.Pad(0).ID() {
		t.Fatalf("expected only pad 1 after verification, got %d", len(paired))
	}
}

func TestPlayer_DestroyCancelsVerification(t *testing.T) {
	cs := newSim(t, WithPlayer(Slot1, 10, 10, 0), WithPlayer(Slot2, 20, 10, 0))
	p := cs.Player(Slot1)
	user := p.InputUser()
	_ = user.PairWithDevice(cs.Pad(1))

	p.Destroy()
	cs.RunFrames(12)

	if p.Lifetime().Err() == nil {
		t.Fatal("lifetime should be cancelled")
	}
	if len(user.PairedDevices()) != 2 {
		t.Fatal("verification ran for a destroyed player")
	}
	if cs.Ctx.Scheduler.Pending() != 0 {
		t.Fatalf("pending tasks = %d, want 0", cs.Ctx.Scheduler.Pending())
	}
	if cs.Scene.FindPlayer(Slot1) != nil {
		t.Fatal("destroyed player still in the scene")
	}
	if len(cs.Ctx.Registry.Consumers()) != 1 {
		t.Fatal("destroyed player still registered")
	}
	if cs.Split.Target(Slot1) != nil || cs.Split.Target(Slot2) != Target(cs.Player(Slot2)) {
		t.Fatal("only slot 1's target should be cleared")
	}

	if _, err := cs.Ctx.SpawnPlayer("again", Slot1, Vec3{X: 12, Z: 10}, 0); err != nil {
		t.Fatalf("slot should be free after destroy: %v", err)
	}
}
