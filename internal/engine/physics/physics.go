// Package physics is a minimal kinematic physics environment. Dynamic bodies
// integrate gravity and applied forces; static bodies only hold a transform.
package physics

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/logger"
	"github.com/Faultbox/ketsji/pkg/library"
	"github.com/Faultbox/ketsji/pkg/math"
)

// ErrUnsupportedBody is returned for physics types the environment cannot simulate.
var ErrUnsupportedBody = errors.New("unsupported physics body")

// BodyType selects how a body is simulated.
type BodyType uint8

const (
	BodyStatic BodyType = iota
	BodyDynamic
)

func (t BodyType) String() string {
	if t == BodyDynamic {
		return "dynamic"
	}
	return "static"
}

// DefaultGravity points down the Z axis.
var DefaultGravity = math.Vec3{Z: -9.81}

// Controller is the physics handle owned by a game object.
type Controller interface {
	SetTransform(t math.Transform)
	Transform() math.Transform
	ApplyForce(force math.Vec3, local bool)
	// Dynamic reports whether the simulation drives the transform.
	Dynamic() bool
	Clone() Controller
	Close()
}

// Environment owns every body of one scene.
type Environment struct {
	Gravity math.Vec3

	bodies []*Body
	log    *zap.Logger
}

// NewEnvironment creates an empty environment with DefaultGravity.
func NewEnvironment() *Environment {
	return &Environment{
		Gravity: DefaultGravity,
		log:     logger.Named("physics"),
	}
}

// CreatePhysicsController builds the body described by obj, placed at t.
// Objects with no physics block or "no_collision" get no body.
func (e *Environment) CreatePhysicsController(obj *library.Object, t math.Transform) (Controller, error) {
	if obj.Physics == nil {
		return nil, nil
	}
	var typ BodyType
	switch obj.Physics.Type {
	case "", "static":
		typ = BodyStatic
	case "dynamic", "rigid_body":
		typ = BodyDynamic
	case "no_collision":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q on %s", ErrUnsupportedBody, obj.Physics.Type, obj.Name)
	}
	mass := obj.Physics.Mass
	if mass <= 0 {
		mass = 1
	}
	return e.AddBody(obj.Name, typ, mass, t), nil
}

// AddBody creates a body and adds it to the environment.
func (e *Environment) AddBody(name string, typ BodyType, mass float32, t math.Transform) *Body {
	b := &Body{env: e, name: name, typ: typ, mass: mass, transform: t}
	e.bodies = append(e.bodies, b)
	return b
}

// Bodies returns the live bodies. The slice must not be modified.
func (e *Environment) Bodies() []*Body { return e.bodies }

// Step integrates every dynamic body over dt seconds.
func (e *Environment) Step(dt float64) {
	if dt <= 0 {
		return
	}
	h := float32(dt)
	for _, b := range e.bodies {
		if b.typ != BodyDynamic {
			b.force = math.Vec3{}
			continue
		}
		accel := e.Gravity.Add(b.force.Scale(1 / b.mass))
		b.velocity = b.velocity.Add(accel.Scale(h))
		b.transform.Position = b.transform.Position.Add(b.velocity.Scale(h))
		b.force = math.Vec3{}
	}
}

// Merge moves every body of other into e. other is left empty.
func (e *Environment) Merge(other *Environment) {
	if other == nil || other == e {
		return
	}
	for _, b := range other.bodies {
		b.env = e
	}
	e.bodies = append(e.bodies, other.bodies...)
	e.log.Debug("merged bodies", zap.Int("count", len(other.bodies)))
	other.bodies = nil
}

func (e *Environment) remove(b *Body) {
	for i, o := range e.bodies {
		if o == b {
			e.bodies = append(e.bodies[:i], e.bodies[i+1:]...)
			return
		}
	}
}

// Body is a simulated rigid body.
type Body struct {
	env       *Environment
	name      string
	typ       BodyType
	mass      float32
	transform math.Transform
	velocity  math.Vec3
	force     math.Vec3 // accumulated until the next Step
	closed    bool
}

// Name returns the name of the object the body was created for.
func (b *Body) Name() string { return b.name }

// Type returns the body type.
func (b *Body) Type() BodyType { return b.typ }

// Dynamic implements Controller.
func (b *Body) Dynamic() bool { return b.typ == BodyDynamic }

// Velocity returns the linear velocity.
func (b *Body) Velocity() math.Vec3 { return b.velocity }

// SetTransform teleports the body.
func (b *Body) SetTransform(t math.Transform) { b.transform = t }

// Transform returns the simulated transform.
func (b *Body) Transform() math.Transform { return b.transform }

// ApplyForce accumulates force for the next step. Local forces are rotated
// by the body orientation.
func (b *Body) ApplyForce(force math.Vec3, local bool) {
	if local {
		force = b.transform.Orientation.Rotate(force)
	}
	b.force = b.force.Add(force)
}

// Clone returns a new body in the same environment with the same state.
func (b *Body) Clone() Controller {
	if b.env == nil {
		c := *b
		return &c
	}
	c := b.env.AddBody(b.name, b.typ, b.mass, b.transform)
	c.velocity = b.velocity
	return c
}

// Close removes the body from its environment. It is safe to call twice.
func (b *Body) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.env != nil {
		b.env.remove(b)
		b.env = nil
	}
}

// Closed reports whether Close has been called.
func (b *Body) Closed() bool { return b.closed }
