package game

import (
	"image"
	"math"
	"testing"
)

func near3(a, b Vec3) bool { return a.Dist(b) < 1e-9 }

func TestRotateEuler_Axes(t *testing.T) {
	if got := RotateEuler(0, 90, Vec3{Z: 1}); !near3(got, Vec3{X: 1}) {
		t.Fatalf("yaw 90 forward = %+v, want +X", got)
	}
	if got := RotateEuler(90, 0, Vec3{Z: 1}); !near3(got, Vec3{Y: -1}) {
		t.Fatalf("pitch 90 forward = %+v, want straight down", got)
	}
	if got := (Transform{Yaw: 90, Pitch: 45}).Right(); !near3(got, Vec3{Z: -1}) {
		t.Fatalf("right ignores pitch: got %+v", got)
	}
}

func TestLookAt_RoundTrip(t *testing.T) {
	tr := Transform{Position: Vec3{X: 1, Y: 5, Z: 1}}
	target := Vec3{X: 4, Y: 1, Z: 5}
	tr.LookAt(target)
	want := target.Sub(tr.Position).Normalized()
	if !near3(tr.Forward(), want) {
		t.Fatalf("forward = %+v, want %+v", tr.Forward(), want)
	}
	if tr.Pitch <= 0 {
		t.Fatalf("looking down should give positive pitch, got %.2f", tr.Pitch)
	}

	before := tr
	tr.LookAt(tr.Position)
	if tr != before {
		t.Fatal("looking at its own position should not change the transform")
	}
}

func TestSmoothDamp_NoOvershoot(t *testing.T) {
	var vel Vec3
	pos := Vec3{}
	target := Vec3{X: 10, Y: -4, Z: 3}
	for i := 0; i < 600; i++ {
		pos = SmoothDamp(pos, target, &vel, 0.1, 1.0/60)
		if pos.X > target.X+1e-9 || pos.Y < target.Y-1e-9 || pos.Z > target.Z+1e-9 {
			t.Fatalf("overshoot at step %d: %+v", i, pos)
		}
	}
	if !near3(pos, target) {
		t.Fatalf("did not settle: %+v", pos)
	}
	if got := SmoothDamp(pos, Vec3{}, &vel, 0.1, 0); got != pos {
		t.Fatal("zero dt should not move")
	}
}

func TestMoveTowardsAngle_Wraps(t *testing.T) {
	if got := moveTowardsAngle(170, -170, 5); got != 175 {
		t.Fatalf("got %.1f, want 175 (short way round)", got)
	}
	if got := moveTowardsAngle(170, -170, 90); normalizeDegrees(got) != -170 {
		t.Fatalf("got %.1f, want -170", normalizeDegrees(got))
	}
}

func TestNormalizeDegrees(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{
		{0, 0}, {190, -170}, {-190, 170}, {720, 0}, {-1070, 10},
	} {
		if got := normalizeDegrees(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("normalizeDegrees(%.0f) = %.3f, want %.0f", tc.in, got, tc.want)
		}
	}
	for _, a := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if got := normalizeDegrees(a); !math.IsNaN(got) {
			t.Fatalf("normalizeDegrees(%v) = %v, want NaN", a, got)
		}
	}
}

func TestRect_Pixels(t *testing.T) {
	for _, tc := range []struct {
		r    Rect
		want image.Rectangle
	}{
		{Rect{0, 0, 1, 1}, image.Rect(0, 0, 800, 600)},
		{Rect{0, 0, 0.5, 1}, image.Rect(0, 0, 400, 600)},
		{Rect{0, 0.5, 1, 0.5}, image.Rect(0, 0, 800, 300)},
		{Rect{0, 0, 1, 0.5}, image.Rect(0, 300, 800, 600)},
	} {
		if got := tc.r.Pixels(800, 600); got != tc.want {
			t.Fatalf("%v.Pixels = %v, want %v", tc.r, got, tc.want)
		}
	}
}

func TestVec2_Normalized(t *testing.T) {
	if (Vec2{}).Normalized() != (Vec2{}) {
		t.Fatal("zero vector should stay zero")
	}
	if got := (Vec2{3, 4}).Normalized(); math.Abs(got.Len()-1) > 1e-12 {
		t.Fatalf("len = %.6f", got.Len())
	}
}
