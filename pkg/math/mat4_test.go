package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M, got %v", result)
	}
}

func TestTranslateScale(t *testing.T) {
	m := Translate(Vec3{10, 20, 30}).Mul(ScaleMat(Vec3{2, 2, 2}))
	got := m.TransformVec3(Vec3{1, 2, 3})
	want := Vec3{12, 24, 36}
	if got != want {
		t.Errorf("TransformVec3: got %v, want %v", got, want)
	}
}

func TestTransformMatrixMatchesApply(t *testing.T) {
	tr := Transform{
		Position:    Vec3{1, -2, 3},
		Orientation: QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/3)),
		Scale:       Vec3{2, 1, 0.5},
	}
	p := Vec3{0.5, 4, -1}
	a := tr.Apply(p)
	b := tr.Matrix().TransformVec3(p)
	if !a.ApproxEqual(b, 1e-4) {
		t.Errorf("Apply = %v, Matrix().TransformVec3 = %v", a, b)
	}
}

func TestCompose(t *testing.T) {
	parent := Transform{
		Position:    Vec3{10, 0, 0},
		Orientation: QuatFromAxisAngle(Vec3{Z: 1}, float32(math.Pi/2)),
		Scale:       Vec3{2, 2, 2},
	}
	local := TransformIdentity()
	local.Position = Vec3{1, 0, 0}

	world := Compose(parent, local)
	if !world.Position.ApproxEqual(Vec3{10, 2, 0}, 1e-5) {
		t.Errorf("world position = %v, want (10,2,0)", world.Position)
	}
	if world.Scale != (Vec3{2, 2, 2}) {
		t.Errorf("world scale = %v", world.Scale)
	}

	back := parent.InverseApply(world.Position)
	if !back.ApproxEqual(local.Position, 1e-5) {
		t.Errorf("InverseApply = %v, want %v", back, local.Position)
	}
}
