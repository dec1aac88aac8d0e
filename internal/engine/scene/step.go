package scene

import (
	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/engine/object"
)

// Suspend freezes the scene at time now.
func (s *Scene) Suspend(now float64) {
	if s.suspended {
		return
	}
	s.suspended = true
	s.suspendedAt = now
}

// Resume continues a suspended scene. The time spent suspended is hidden
// from the animation clock.
func (s *Scene) Resume(now float64) {
	if !s.suspended {
		return
	}
	s.suspended = false
	s.suspendedDelta += now - s.suspendedAt
}

// Suspended reports whether the scene is suspended.
func (s *Scene) Suspended() bool { return s.suspended }

// SuspendedDelta returns the total time spent suspended.
func (s *Scene) SuspendedDelta() float64 { return s.suspendedDelta }

// ClockContext hides the time spent suspended from raw.
func (s *Scene) ClockContext(raw action.ClockContext) action.ClockContext {
	raw.CurrentTime -= s.suspendedDelta
	return raw
}

// Step runs one frame: physics, then animation, then the transform pass,
// then the physics sync of kinematic bodies.
func (s *Scene) Step(clock action.ClockContext, dt float64) {
	if s.suspended {
		return
	}
	clock = s.ClockContext(clock)

	s.physics.Step(dt)
	for _, o := range s.objects {
		o.Base().SyncFromPhysics()
	}

	// Objects are independent; one object's animation never stops another's.
	for _, o := range s.objects {
		g := o.Base()
		g.UpdateActionManager(clock, !g.Culled())
	}

	for _, o := range s.objects {
		if n := o.Base().Node(); n != nil && n.Parent() == nil {
			n.UpdateTree()
		}
	}

	for _, o := range s.objects {
		o.Base().UpdateTransform()
		if d, ok := o.(*object.DeformableObject); ok {
			d.UpdateDeformer(clock.CurrentTime * clock.FrameRate)
		}
	}
}
