package object

import (
	"github.com/Faultbox/ketsji/pkg/math"
)

// The node setters mark the node dirty; world values are read from the
// cache computed by the last transform pass.

// SetLocalPosition sets the node position relative to its parent.
func (g *GameObject) SetLocalPosition(p math.Vec3) {
	if g.node != nil {
		g.node.SetLocalPosition(p)
	}
}

// SetLocalOrientation sets the node orientation relative to its parent.
func (g *GameObject) SetLocalOrientation(q math.Quat) {
	if g.node != nil {
		g.node.SetLocalOrientation(q)
	}
}

// SetLocalScale sets the node scale relative to its parent.
func (g *GameObject) SetLocalScale(s math.Vec3) {
	if g.node != nil {
		g.node.SetLocalScale(s)
	}
}

// SetWorldPosition moves the node so that its world position becomes p
// after the next transform pass.
func (g *GameObject) SetWorldPosition(p math.Vec3) {
	if g.node != nil {
		g.node.SetWorldPosition(p)
	}
}

// LocalPosition returns the node position relative to its parent.
func (g *GameObject) LocalPosition() math.Vec3 {
	if g.node == nil {
		return math.Vec3{}
	}
	return g.node.LocalPosition()
}

// WorldPosition returns the cached world position.
func (g *GameObject) WorldPosition() math.Vec3 {
	if g.node == nil {
		return math.Vec3{}
	}
	return g.node.WorldPosition()
}

// WorldOrientation returns the cached world orientation.
func (g *GameObject) WorldOrientation() math.Quat {
	if g.node == nil {
		return math.QuatIdentity()
	}
	return g.node.WorldOrientation()
}

// WorldScale returns the cached world scale.
func (g *GameObject) WorldScale() math.Vec3 {
	if g.node == nil {
		return math.Vec3One()
	}
	return g.node.WorldScale()
}

// WorldTransform returns the cached world transform.
func (g *GameObject) WorldTransform() math.Transform {
	if g.node == nil {
		return math.TransformIdentity()
	}
	return g.node.WorldTransform()
}

// Parent returns the parent object, or nil for a root.
func (g *GameObject) Parent() Object {
	if g.node == nil || g.node.Parent() == nil {
		return nil
	}
	o, _ := g.node.Parent().Client().(Object)
	return o
}

// Children returns the direct children.
func (g *GameObject) Children() []Object {
	if g.node == nil {
		return nil
	}
	out := make([]Object, 0, len(g.node.Children()))
	for _, n := range g.node.Children() {
		if o, ok := n.Client().(Object); ok {
			out = append(out, o)
		}
	}
	return out
}

// SetParent attaches g below parent keeping its current world transform.
// It reports false when the link would create a cycle.
func (g *GameObject) SetParent(parent *GameObject) bool {
	if g.node == nil || parent == nil || parent.node == nil || parent == g {
		return false
	}
	world := g.node.WorldTransform()
	if !parent.node.AddChild(g.node) {
		return false
	}
	pw := parent.node.WorldTransform()
	inv := pw.Orientation.Conjugate()
	g.node.SetLocalTransform(math.Transform{
		Position:    pw.InverseApply(world.Position),
		Orientation: inv.Mul(world.Orientation).Normalize(),
		Scale:       world.Scale.Div(pw.Scale),
	})
	return true
}

// RemoveParent detaches g from its parent; the world transform becomes the
// local one.
func (g *GameObject) RemoveParent() {
	if g.node == nil || g.node.Parent() == nil {
		return
	}
	world := g.node.WorldTransform()
	g.node.Parent().RemoveChild(g.node)
	g.node.SetLocalTransform(world)
}

// UpdateTransform pushes the world transform to a kinematic physics body.
func (g *GameObject) UpdateTransform() {
	if g.physics == nil || g.node == nil || g.physics.Dynamic() {
		return
	}
	g.physics.SetTransform(g.node.WorldTransform())
}

// SyncFromPhysics moves the node to the simulated transform of a dynamic
// body. It reports whether the node changed.
func (g *GameObject) SyncFromPhysics() bool {
	if g.physics == nil || g.node == nil || !g.physics.Dynamic() {
		return false
	}
	t := g.physics.Transform()
	g.node.SetWorldPosition(t.Position)
	if g.node.Parent() == nil {
		g.node.SetLocalOrientation(t.Orientation)
	}
	return true
}
