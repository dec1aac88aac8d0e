package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	length := float32(math.Sqrt(float64(n.Dot(n))))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2))

	if r := q1.Slerp(q2, 0); !r.ApproxEqual(q1, 1e-4) {
		t.Errorf("Slerp at t=0 should equal q1, got %v", r)
	}
	if r := q1.Slerp(q2, 1); !r.ApproxEqual(q2, 1e-4) {
		t.Errorf("Slerp at t=1 should equal q2, got %v", r)
	}

	// Halfway through a 90 degree turn is 45 degrees.
	result := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if math.Abs(float64(result.W-expectedW)) > 0.01 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, result.W)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Z: 1}, float32(math.Pi/2))
	got := q.Rotate(Vec3{X: 1})
	if !got.ApproxEqual(Vec3{Y: 1}, 1e-5) {
		t.Errorf("Rotate X by 90deg around Z = %v, want (0,1,0)", got)
	}

	back := q.Conjugate().Rotate(got)
	if !back.ApproxEqual(Vec3{X: 1}, 1e-5) {
		t.Errorf("Conjugate should undo rotation, got %v", back)
	}
}

func TestQuatFromEuler(t *testing.T) {
	q := QuatFromEuler(Vec3{Z: float32(math.Pi / 2)})
	want := QuatFromAxisAngle(Vec3{Z: 1}, float32(math.Pi/2))
	if !q.ApproxEqual(want, 1e-5) {
		t.Errorf("QuatFromEuler(z=90) = %v, want %v", q, want)
	}

	// X is applied before Z.
	q = QuatFromEuler(Vec3{X: float32(math.Pi / 2), Z: float32(math.Pi / 2)})
	got := q.Rotate(Vec3{Y: 1})
	if !got.ApproxEqual(Vec3{Z: 1}, 1e-5) {
		t.Errorf("euler XZ rotate(0,1,0) = %v, want (0,0,1)", got)
	}
}

func TestQuatToMat4(t *testing.T) {
	m := QuatIdentity().ToMat4()
	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(m[i]-identity[i])) > 0.0001 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}
