package ipo

import (
	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/engine/scenegraph"
	"github.com/Faultbox/ketsji/pkg/library"
	"github.com/Faultbox/ketsji/pkg/math"
)

// TransformController animates the local transform of a node.
type TransformController struct {
	node   *scenegraph.Node
	target action.Target
	frame  float64

	reset, force, add, local bool
	base                     math.Transform

	location [3]*library.Channel
	euler    [3]*library.Channel
	quat     [4]*library.Channel // w, x, y, z
	scale    [3]*library.Channel

	hasLocation, hasEuler, hasQuat, hasScale bool
}

func newTransformController(clip *library.Action, target action.Target) *TransformController {
	c := &TransformController{target: target, base: math.TransformIdentity()}
	for _, ch := range clip.Channels {
		switch ch.Path {
		case PathLocation:
			if ch.Index >= 0 && ch.Index < 3 {
				c.location[ch.Index] = ch
				c.hasLocation = true
			}
		case PathRotationEuler:
			if ch.Index >= 0 && ch.Index < 3 {
				c.euler[ch.Index] = ch
				c.hasEuler = true
			}
		case PathRotationQuat:
			if ch.Index >= 0 && ch.Index < 4 {
				c.quat[ch.Index] = ch
				c.hasQuat = true
			}
		case PathScale:
			if ch.Index >= 0 && ch.Index < 3 {
				c.scale[ch.Index] = ch
				c.hasScale = true
			}
		}
	}
	if !c.hasLocation && !c.hasEuler && !c.hasQuat && !c.hasScale {
		return nil
	}
	return c
}

// SetNode implements scenegraph.Controller.
func (c *TransformController) SetNode(n *scenegraph.Node) { c.node = n }

// SetOption implements scenegraph.Controller.
func (c *TransformController) SetOption(opt scenegraph.Option, v bool) {
	switch opt {
	case scenegraph.OptionReset:
		c.reset = v
	case scenegraph.OptionIpoAsForce:
		c.force = v
	case scenegraph.OptionIpoAdd:
		c.add = v
	case scenegraph.OptionLocal:
		c.local = v
	}
}

// SetSimulatedTime implements scenegraph.Controller.
func (c *TransformController) SetSimulatedTime(frame float64) { c.frame = frame }

// Update writes the sampled transform to the node.
func (c *TransformController) Update() bool {
	if c.node == nil {
		return false
	}
	if c.reset {
		c.base = c.node.LocalTransform()
		c.reset = false
	}

	t := c.node.LocalTransform()
	changed := false

	if c.hasLocation {
		v := c.sample3(c.location, 0)
		switch {
		case c.force:
			if fr, ok := c.target.(ForceReceiver); ok {
				fr.ApplyForce(v, c.local)
			}
		case c.add && c.local:
			t.Position = c.base.Position.Add(c.base.Orientation.Rotate(v))
			changed = true
		case c.add:
			t.Position = c.base.Position.Add(v)
			changed = true
		default:
			t.Position = c.overlay3(c.location, t.Position)
			changed = true
		}
	}

	if c.hasQuat || c.hasEuler {
		var q math.Quat
		if c.hasQuat {
			q = c.sampleQuat()
		} else {
			q = math.QuatFromEuler(c.sample3(c.euler, 0))
		}
		if c.add {
			q = c.base.Orientation.Mul(q)
		}
		t.Orientation = q.Normalize()
		changed = true
	}

	if c.hasScale {
		if c.add {
			t.Scale = c.base.Scale.Mul(c.sample3(c.scale, 1))
		} else {
			t.Scale = c.overlay3(c.scale, t.Scale)
		}
		changed = true
	}

	if changed {
		c.node.SetLocalTransform(t)
	}
	return changed
}

// sample3 evaluates three component channels, using def for missing ones.
func (c *TransformController) sample3(chs [3]*library.Channel, def float32) math.Vec3 {
	v := [3]float32{def, def, def}
	for i, ch := range chs {
		if ch != nil {
			v[i] = float32(ch.Sample(c.frame))
		}
	}
	return math.Vec3FromArray(v)
}

// overlay3 replaces the animated components of cur.
func (c *TransformController) overlay3(chs [3]*library.Channel, cur math.Vec3) math.Vec3 {
	v := cur.Array()
	for i, ch := range chs {
		if ch != nil {
			v[i] = float32(ch.Sample(c.frame))
		}
	}
	return math.Vec3FromArray(v)
}

func (c *TransformController) sampleQuat() math.Quat {
	q := [4]float32{1, 0, 0, 0}
	for i, ch := range c.quat {
		if ch != nil {
			q[i] = float32(ch.Sample(c.frame))
		}
	}
	return math.Quat{W: q[0], X: q[1], Y: q[2], Z: q[3]}
}
