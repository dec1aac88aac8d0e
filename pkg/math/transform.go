package math

// Transform is a position, orientation and scale triple.
// Composition applies scale, then rotation, then translation.
type Transform struct {
	Position    Vec3
	Orientation Quat
	Scale       Vec3
}

// TransformIdentity returns the neutral transform.
func TransformIdentity() Transform {
	return Transform{Orientation: QuatIdentity(), Scale: Vec3One()}
}

// Compose returns parent ∘ local, the transform of a child expressed in the
// parent's space.
func Compose(parent, local Transform) Transform {
	return Transform{
		Position:    parent.Position.Add(parent.Orientation.Rotate(parent.Scale.Mul(local.Position))),
		Orientation: parent.Orientation.Mul(local.Orientation).Normalize(),
		Scale:       parent.Scale.Mul(local.Scale),
	}
}

// Apply transforms a point from local space into the space of t.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.Position.Add(t.Orientation.Rotate(t.Scale.Mul(p)))
}

// InverseApply transforms a point from the space of t back into local space.
func (t Transform) InverseApply(p Vec3) Vec3 {
	return t.Orientation.Conjugate().Rotate(p.Sub(t.Position)).Div(t.Scale)
}

// Matrix returns the transform as a column-major matrix.
func (t Transform) Matrix() Mat4 {
	return Translate(t.Position).Mul(t.Orientation.ToMat4()).Mul(ScaleMat(t.Scale))
}
