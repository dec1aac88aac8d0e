// Package scenegraph implements the runtime transform hierarchy. Each node
// keeps its local transform and a world transform cached by the last
// update pass.
package scenegraph

import (
	"slices"

	"github.com/Faultbox/ketsji/pkg/math"
)

// Node is an element of the transform hierarchy.
type Node struct {
	parent   *Node
	children []*Node

	local math.Transform
	world math.Transform
	dirty bool

	controllers []Controller

	// client is the object this node belongs to. Not owned.
	client any
}

// New returns a root node with an identity transform.
func New(client any) *Node {
	return &Node{
		local:  math.TransformIdentity(),
		world:  math.TransformIdentity(),
		dirty:  true,
		client: client,
	}
}

// Client returns the object the node belongs to.
func (n *Node) Client() any { return n.client }

// SetClient rebinds the node to another object.
func (n *Node) SetClient(c any) { n.client = c }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// AddChild reparents child under n. A node cannot become its own descendant.
func (n *Node) AddChild(child *Node) bool {
	if child == nil || child == n || child.isAncestorOf(n) {
		return false
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	child.markDirty()
	return true
}

// RemoveChild detaches child from n, making it a root. Removing a node that
// is not a child is a no-op.
func (n *Node) RemoveChild(child *Node) {
	i := slices.Index(n.children, child)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	child.markDirty()
}

func (n *Node) isAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// LocalTransform returns the local transform.
func (n *Node) LocalTransform() math.Transform { return n.local }

// LocalPosition returns the local position.
func (n *Node) LocalPosition() math.Vec3 { return n.local.Position }

// LocalOrientation returns the local orientation.
func (n *Node) LocalOrientation() math.Quat { return n.local.Orientation }

// LocalScale returns the local scale.
func (n *Node) LocalScale() math.Vec3 { return n.local.Scale }

// SetLocalTransform replaces the local transform.
func (n *Node) SetLocalTransform(t math.Transform) {
	n.local = t
	n.markDirty()
}

// SetLocalPosition sets the local position. World data is not recomputed
// until the next update pass.
func (n *Node) SetLocalPosition(p math.Vec3) {
	n.local.Position = p
	n.markDirty()
}

// SetLocalOrientation sets the local orientation.
func (n *Node) SetLocalOrientation(q math.Quat) {
	n.local.Orientation = q.Normalize()
	n.markDirty()
}

// SetLocalScale sets the local scale.
func (n *Node) SetLocalScale(s math.Vec3) {
	n.local.Scale = s
	n.markDirty()
}

// SetWorldPosition moves the node so that its world position becomes p,
// using the parent's cached world transform.
func (n *Node) SetWorldPosition(p math.Vec3) {
	if n.parent == nil {
		n.SetLocalPosition(p)
		return
	}
	n.SetLocalPosition(n.parent.world.InverseApply(p))
}

// WorldTransform returns the cached world transform.
func (n *Node) WorldTransform() math.Transform { return n.world }

// WorldPosition returns the cached world position.
func (n *Node) WorldPosition() math.Vec3 { return n.world.Position }

// WorldOrientation returns the cached world orientation.
func (n *Node) WorldOrientation() math.Quat { return n.world.Orientation }

// WorldScale returns the cached world scale.
func (n *Node) WorldScale() math.Vec3 { return n.world.Scale }

// Dirty reports whether the world transform is stale.
func (n *Node) Dirty() bool { return n.dirty }

func (n *Node) markDirty() { n.dirty = true }

// UpdateWorldTransform recomputes the world transform of n alone from its
// parent's cached world and its own local transform.
func (n *Node) UpdateWorldTransform() {
	if n.parent == nil {
		n.world = n.local
	} else {
		n.world = math.Compose(n.parent.world, n.local)
	}
	n.dirty = false
}

// UpdateTree recomputes world transforms top-down for n and its
// descendants. Clean subtrees under a clean parent are skipped.
func (n *Node) UpdateTree() {
	n.updateTree(false)
}

func (n *Node) updateTree(parentChanged bool) {
	changed := parentChanged || n.dirty
	if changed {
		n.UpdateWorldTransform()
	}
	for _, c := range n.children {
		c.updateTree(changed)
	}
}

// AddController attaches c to n. n takes ownership.
func (n *Node) AddController(c Controller) {
	if c == nil || slices.Contains(n.controllers, c) {
		return
	}
	n.controllers = append(n.controllers, c)
	c.SetNode(n)
}

// RemoveController detaches c from n. Removing a controller that is not
// attached is a no-op.
func (n *Node) RemoveController(c Controller) {
	i := slices.Index(n.controllers, c)
	if i < 0 {
		return
	}
	n.controllers = slices.Delete(n.controllers, i, i+1)
	c.SetNode(nil)
}

// RemoveAllControllers detaches every controller.
func (n *Node) RemoveAllControllers() {
	cs := n.controllers
	n.controllers = nil
	for _, c := range cs {
		c.SetNode(nil)
	}
}

// Controllers returns the attached controllers. The slice must not be modified.
func (n *Node) Controllers() []Controller { return n.controllers }

// SetSimulatedTime evaluates every controller of n at frame, and those of
// its descendants when recurse is set.
func (n *Node) SetSimulatedTime(frame float64, recurse bool) {
	for _, c := range n.controllers {
		c.SetSimulatedTime(frame)
		if c.Update() {
			n.markDirty()
		}
	}
	if recurse {
		for _, child := range n.children {
			child.SetSimulatedTime(frame, true)
		}
	}
}

// Clone returns a detached copy of n carrying its local transform.
// Children, controllers and the client are not copied.
func (n *Node) Clone(client any) *Node {
	c := New(client)
	c.local = n.local
	c.world = n.world
	return c
}
