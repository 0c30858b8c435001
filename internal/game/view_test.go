package game

import (
	"math"
	"testing"
)

func testView() View {
	cam := NewCamera("cam")
	cam.Viewport = Rect{0.5, 0, 0.5, 1}
	cam.FieldOfView = 90
	return NewView(cam, 800, 600)
}

func TestView_ProjectCentre(t *testing.T) {
	v := testView()
	x, y, depth, ok := v.Project(Vec3{Z: 10})
	if !ok || depth != 10 {
		t.Fatalf("ok=%v depth=%.2f", ok, depth)
	}
	if x != 600 || y != 300 {
		t.Fatalf("straight ahead projects to (%.1f, %.1f), want viewport centre (600, 300)", x, y)
	}
}

func TestView_ProjectAxes(t *testing.T) {
	v := testView()
	x, _, _, _ := v.Project(Vec3{X: 1, Z: 10})
	if x <= 600 {
		t.Fatal("+X should be right of centre")
	}
	_, y, _, _ := v.Project(Vec3{Y: 1, Z: 10})
	if y >= 300 {
		t.Fatal("+Y should be above centre")
	}
	// 90° vertical FOV: a point at 45° up lands on the top edge.
	_, y, _, _ = v.Project(Vec3{Y: 10, Z: 10})
	if math.Abs(y) > 1e-9 {
		t.Fatalf("45° up projects to y=%.3f, want 0", y)
	}
}

func TestView_ProjectBehindCamera(t *testing.T) {
	v := testView()
	if _, _, _, ok := v.Project(Vec3{Z: -5}); ok {
		t.Fatal("point behind the camera should not project")
	}
	if _, _, _, ok := v.Project(Vec3{Z: 0.1}); ok {
		t.Fatal("point inside the near plane should not project")
	}
}

func TestView_ProjectSegmentClipsNearPlane(t *testing.T) {
	v := testView()
	if _, _, _, _, ok := v.ProjectSegment(Vec3{Z: -5}, Vec3{X: 1, Z: -1}); ok {
		t.Fatal("segment fully behind should be rejected")
	}
	x0, _, x1, _, ok := v.ProjectSegment(Vec3{X: 1, Z: -5}, Vec3{X: 1, Z: 10})
	if !ok {
		t.Fatal("segment crossing the near plane should be clipped, not rejected")
	}
	if x0 <= x1 {
		t.Fatal("the clipped end is nearer, so it lands further from centre")
	}
}

func TestView_InCone(t *testing.T) {
	v := testView()
	if !v.InCone(Vec3{Z: 10}) {
		t.Fatal("straight ahead should be in the cone")
	}
	if v.InCone(Vec3{Z: -10}) || v.InCone(Vec3{X: 50, Z: 10}) {
		t.Fatal("behind and far off-axis points should be outside")
	}
	if v.PixelScale(0) != 0 || v.PixelScale(10) <= v.PixelScale(20) {
		t.Fatal("pixel scale should shrink with depth")
	}
}
