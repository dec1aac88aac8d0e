// Package object implements runtime game objects: the owner of a scene-graph
// node, its action layers, mesh bindings and physics/graphic controllers.
package object

import (
	"errors"
	"slices"

	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/engine/physics"
	"github.com/Faultbox/ketsji/internal/engine/scenegraph"
	"github.com/Faultbox/ketsji/pkg/library"
	"github.com/Faultbox/ketsji/pkg/math"
)

// ErrNoNode is returned when an operation needs a scene-graph node the
// object no longer has.
var ErrNoNode = errors.New("object has no scene-graph node")

// Host is the scene an object lives in. Objects keep it as a non-owning
// back reference.
type Host interface {
	Name() string
	ActionEnvironment() action.Environment
	ActionLayers() int
	WorldSink() action.ParameterSink
	// ClockContext maps the engine clock to the host's animation time.
	ClockContext(raw action.ClockContext) action.ClockContext
}

// Cloneable is implemented by objects that can be replicated. Clone returns
// a shallow copy on which ProcessReplica has already run; ProcessReplica
// replaces owned sub-resources with copies and keeps shared ones.
type Cloneable interface {
	Clone() Object
	ProcessReplica()
}

// Object is any game object variant.
type Object interface {
	Cloneable
	Base() *GameObject
}

// GraphicController is the render-side handle of an object.
type GraphicController interface {
	SetBounds(b AABB)
	Clone() GraphicController
	Close()
}

// GameObject is a live object in a scene.
type GameObject struct {
	name     string
	kind     library.ObjectKind
	layer    int
	visible  bool
	occluder bool
	culled   bool
	color    [4]float32

	node    *scenegraph.Node
	actions *action.Manager // created on first use
	physics physics.Controller
	graphic GraphicController
	meshes  []*Mesh
	host    Host

	libID   library.ID
	libPath string

	light  *LightData
	camera *CameraData
	aabb   AABB

	self   Object
	closed bool
}

// New returns a visible white object with a fresh node at the origin.
func New(name string, kind library.ObjectKind) *GameObject {
	g := &GameObject{
		name:    name,
		kind:    kind,
		visible: true,
		color:   [4]float32{1, 1, 1, 1},
	}
	g.self = g
	g.node = scenegraph.New(g)
	switch kind {
	case library.KindLight:
		g.light = &LightData{Energy: 1, Color: [3]float32{1, 1, 1}}
	case library.KindCamera:
		g.camera = &CameraData{Lens: 50, ClipStart: 0.1, ClipEnd: 100}
	}
	return g
}

// Base implements Object.
func (g *GameObject) Base() *GameObject { return g }

// Self returns the outermost variant wrapping g.
func (g *GameObject) Self() Object { return g.self }

// Name returns the object name.
func (g *GameObject) Name() string { return g.name }

// SetName renames the object.
func (g *GameObject) SetName(name string) { g.name = name }

// Kind returns the authored object type.
func (g *GameObject) Kind() library.ObjectKind { return g.kind }

// Node returns the owned scene-graph node, nil once closed.
func (g *GameObject) Node() *scenegraph.Node { return g.node }

// Host returns the scene the object belongs to.
func (g *GameObject) Host() Host { return g.host }

// SetHost moves the object to another scene. Material bindings of the
// object's meshes are not changed.
func (g *GameObject) SetHost(h Host) { g.host = h }

// LibraryID returns the datablock the object was converted from.
func (g *GameObject) LibraryID() library.ID { return g.libID }

// LibraryPath returns the normalised path of the library it came from.
func (g *GameObject) LibraryPath() string { return g.libPath }

// SetLibrary records where the object was converted from.
func (g *GameObject) SetLibrary(id library.ID, path string) {
	g.libID = id
	g.libPath = path
}

// Layer returns the rendering layer.
func (g *GameObject) Layer() int { return g.layer }

// SetLayer sets the rendering layer.
func (g *GameObject) SetLayer(l int) { g.layer = l }

// Visible reports the visibility flag.
func (g *GameObject) Visible() bool { return g.visible }

// SetVisible sets visibility, on the children too when recursive is set.
func (g *GameObject) SetVisible(v, recursive bool) {
	g.visible = v
	if recursive {
		for _, c := range g.Children() {
			c.Base().SetVisible(v, true)
		}
	}
}

// Occluder reports the occluder flag.
func (g *GameObject) Occluder() bool { return g.occluder }

// SetOccluder sets the occluder flag, on the children too when recursive is set.
func (g *GameObject) SetOccluder(v, recursive bool) {
	g.occluder = v
	if recursive {
		for _, c := range g.Children() {
			c.Base().SetOccluder(v, true)
		}
	}
}

// Culled reports whether the object was outside the view last frame.
func (g *GameObject) Culled() bool { return g.culled }

// SetCulled is set by the culling pass. Culled objects advance their
// actions without applying poses.
func (g *GameObject) SetCulled(v bool) { g.culled = v }

// Color returns the object color.
func (g *GameObject) Color() [4]float32 { return g.color }

// SetColor sets the object color.
func (g *GameObject) SetColor(c [4]float32) { g.color = c }

// Light returns the lamp parameters, nil for other kinds.
func (g *GameObject) Light() *LightData { return g.light }

// Camera returns the camera parameters, nil for other kinds.
func (g *GameObject) Camera() *CameraData { return g.camera }

// SetPhysicsController hands c to the object. The object must have a node.
func (g *GameObject) SetPhysicsController(c physics.Controller) error {
	if c != nil && g.node == nil {
		return ErrNoNode
	}
	if g.physics != nil && g.physics != c {
		g.physics.Close()
	}
	g.physics = c
	return nil
}

// PhysicsController returns the physics handle or nil.
func (g *GameObject) PhysicsController() physics.Controller { return g.physics }

// SetGraphicController hands c to the object.
func (g *GameObject) SetGraphicController(c GraphicController) {
	if g.graphic != nil && g.graphic != c {
		g.graphic.Close()
	}
	g.graphic = c
	if c != nil {
		c.SetBounds(g.aabb)
	}
}

// GraphicController returns the graphic handle or nil.
func (g *GameObject) GraphicController() GraphicController { return g.graphic }

// ApplyForce forwards force to the physics controller, if any.
func (g *GameObject) ApplyForce(force math.Vec3, local bool) {
	if g.physics != nil {
		g.physics.ApplyForce(force, local)
	}
}

// Closed reports whether Close has been called.
func (g *GameObject) Closed() bool { return g.closed }

// Close stops every action and destroys the controllers and node the
// object owns. Children are detached, not closed.
func (g *GameObject) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.actions != nil {
		g.actions.RemoveTaggedActions(func(*library.Action) bool { return true })
		g.actions.UpdateIPOs()
		g.actions = nil
	}
	if g.physics != nil {
		g.physics.Close()
		g.physics = nil
	}
	if g.graphic != nil {
		g.graphic.Close()
		g.graphic = nil
	}
	if g.node != nil {
		if p := g.node.Parent(); p != nil {
			p.RemoveChild(g.node)
		}
		for _, c := range slices.Clone(g.node.Children()) {
			g.node.RemoveChild(c)
		}
		g.node.RemoveAllControllers()
		g.node.SetClient(nil)
		g.node = nil
	}
	g.meshes = nil
}

// Clone implements Cloneable.
func (g *GameObject) Clone() Object {
	c := *g
	c.self = &c
	c.ProcessReplica()
	return &c
}

// ProcessReplica implements Cloneable. The replica gets its own node,
// controllers and parameter blocks; meshes are shared.
func (g *GameObject) ProcessReplica() {
	g.closed = false
	g.actions = nil
	if g.node != nil {
		g.node = g.node.Clone(g.self)
	} else {
		g.node = scenegraph.New(g.self)
	}
	if g.physics != nil {
		g.physics = g.physics.Clone()
	}
	if g.graphic != nil {
		g.graphic = g.graphic.Clone()
	}
	g.meshes = append([]*Mesh(nil), g.meshes...)
	if g.light != nil {
		l := *g.light
		g.light = &l
	}
	if g.camera != nil {
		c := *g.camera
		g.camera = &c
	}
}
