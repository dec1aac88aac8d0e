// Package library holds the authoring data model: a Main is one parsed
// library file containing scenes, objects, meshes, materials, actions and
// script texts. Runtime code never mutates a Main; it is converted into live
// objects by the converter.
package library

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrNotFound is returned by lookups for datablocks that do not exist.
var ErrNotFound = errors.New("datablock not found")

// Code identifies the kind of a datablock.
type Code string

// Datablock codes.
const (
	CodeScene    Code = "SC"
	CodeObject   Code = "OB"
	CodeMesh     Code = "ME"
	CodeMaterial Code = "MA"
	CodeAction   Code = "AC"
	CodeText     Code = "TX"
)

// ID is the stable key of a datablock inside one Main.
// It is a plain value and survives conversion; runtime registries key on it.
type ID struct {
	Code Code
	Name string
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return id.Code == "" && id.Name == ""
}

func (id ID) String() string {
	return string(id.Code) + id.Name
}

// ObjectKind is the authored type of an object.
type ObjectKind string

// Object kinds.
const (
	KindEmpty    ObjectKind = "empty"
	KindMesh     ObjectKind = "mesh"
	KindArmature ObjectKind = "armature"
	KindCamera   ObjectKind = "camera"
	KindLight    ObjectKind = "light"
	KindText     ObjectKind = "text"
	KindNavMesh  ObjectKind = "navmesh"
)

func (k ObjectKind) valid() bool {
	switch k {
	case KindEmpty, KindMesh, KindArmature, KindCamera, KindLight, KindText, KindNavMesh:
		return true
	}
	return false
}

// Scene is an authored scene: a set of objects plus world settings.
type Scene struct {
	ID      ID       `yaml:"-"`
	Name    string   `yaml:"name"`
	Layers  []int    `yaml:"layers,omitempty"` // active layers; empty means all
	Objects []string `yaml:"objects"`
	World   Params   `yaml:"world,omitempty"`
	Camera  string   `yaml:"camera,omitempty"`
}

// LayerActive reports whether objects on layer are active in this scene.
func (s *Scene) LayerActive(layer int) bool {
	if len(s.Layers) == 0 {
		return true
	}
	for _, l := range s.Layers {
		if l == layer {
			return true
		}
	}
	return false
}

// Physics describes the physics body of an object.
type Physics struct {
	Type   string  `yaml:"type"` // static, dynamic, rigid_body, no_collision
	Shape  string  `yaml:"shape,omitempty"`
	Mass   float32 `yaml:"mass,omitempty"`
	Radius float32 `yaml:"radius,omitempty"`
}

// Light holds lamp parameters.
type Light struct {
	Type     string     `yaml:"type,omitempty"`
	Energy   float32    `yaml:"energy"`
	Color    [3]float32 `yaml:"color"`
	Distance float32    `yaml:"distance,omitempty"`
}

// Camera holds camera parameters.
type Camera struct {
	Lens      float32 `yaml:"lens"`
	ClipStart float32 `yaml:"clip_start"`
	ClipEnd   float32 `yaml:"clip_end"`
}

// Object is an authored object.
type Object struct {
	ID       ID          `yaml:"-"`
	Name     string      `yaml:"name"`
	Kind     ObjectKind  `yaml:"type"`
	Parent   string      `yaml:"parent,omitempty"`
	Location [3]float32  `yaml:"location"`
	Rotation [3]float32  `yaml:"rotation"` // XYZ euler, radians
	Scale    *[3]float32 `yaml:"scale,omitempty"`
	Layer    int         `yaml:"layer,omitempty"`
	Mesh     string      `yaml:"mesh,omitempty"`
	Visible  *bool       `yaml:"visible,omitempty"`
	Occluder bool        `yaml:"occluder,omitempty"`
	Color    *[4]float32 `yaml:"color,omitempty"`
	Physics  *Physics    `yaml:"physics,omitempty"`
	SoftBody bool        `yaml:"soft_body,omitempty"`
	Light    *Light      `yaml:"light,omitempty"`
	Camera   *Camera     `yaml:"camera,omitempty"`
}

// ScaleOrOne returns the authored scale, defaulting to (1, 1, 1).
func (o *Object) ScaleOrOne() [3]float32 {
	if o.Scale == nil {
		return [3]float32{1, 1, 1}
	}
	return *o.Scale
}

// IsVisible returns the authored visibility, defaulting to true.
func (o *Object) IsVisible() bool {
	return o.Visible == nil || *o.Visible
}

// ColorOrWhite returns the object color, defaulting to opaque white.
func (o *Object) ColorOrWhite() [4]float32 {
	if o.Color == nil {
		return [4]float32{1, 1, 1, 1}
	}
	return *o.Color
}

// Bounds is an axis-aligned box in mesh space.
type Bounds struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

// Mesh is authored geometry. Only the data the runtime needs is kept.
type Mesh struct {
	ID        ID       `yaml:"-"`
	Name      string   `yaml:"name"`
	Materials []string `yaml:"materials,omitempty"`
	Vertices  int      `yaml:"vertices,omitempty"`
	Bounds    Bounds   `yaml:"bounds"`
}

// Material is an authored material with named parameters.
type Material struct {
	ID     ID     `yaml:"-"`
	Name   string `yaml:"name"`
	Params Params `yaml:"params,omitempty"`
}

// Text is a script or text datablock.
type Text struct {
	ID     ID     `yaml:"-"`
	Name   string `yaml:"name"`
	Source string `yaml:"source,omitempty"`
}

// Main is one parsed library.
type Main struct {
	Path      string      `yaml:"-"`
	Name      string      `yaml:"name"`
	Encoding  string      `yaml:"encoding,omitempty"`
	Scenes    []*Scene    `yaml:"scenes"`
	Objects   []*Object   `yaml:"objects"`
	Meshes    []*Mesh     `yaml:"meshes,omitempty"`
	Materials []*Material `yaml:"materials,omitempty"`
	Actions   []*Action   `yaml:"actions,omitempty"`
	Texts     []*Text     `yaml:"texts,omitempty"`

	scenes    map[string]*Scene
	objects   map[string]*Object
	meshes    map[string]*Mesh
	materials map[string]*Material
	actions   map[string]*Action
	texts     map[string]*Text

	freed atomic.Bool
}

// New returns an empty Main for path. Datablocks added to it later must go
// through the Add methods so lookups see them.
func New(path string) *Main {
	m := &Main{Path: path}
	m.index()
	return m
}

// Scene returns the scene called name.
func (m *Main) Scene(name string) (*Scene, error) {
	return lookup(m.scenes, CodeScene, name)
}

// Object returns the object called name.
func (m *Main) Object(name string) (*Object, error) {
	return lookup(m.objects, CodeObject, name)
}

// Mesh returns the mesh called name.
func (m *Main) Mesh(name string) (*Mesh, error) {
	return lookup(m.meshes, CodeMesh, name)
}

// Material returns the material called name.
func (m *Main) Material(name string) (*Material, error) {
	return lookup(m.materials, CodeMaterial, name)
}

// Action returns the action called name.
func (m *Main) Action(name string) (*Action, error) {
	return lookup(m.actions, CodeAction, name)
}

// Text returns the text called name.
func (m *Main) Text(name string) (*Text, error) {
	return lookup(m.texts, CodeText, name)
}

// AddAction adds an action created at runtime.
func (m *Main) AddAction(a *Action) error {
	if _, ok := m.actions[a.Name]; ok {
		return fmt.Errorf("action %q already exists", a.Name)
	}
	a.ID = ID{Code: CodeAction, Name: a.Name}
	a.prepare()
	m.Actions = append(m.Actions, a)
	m.actions[a.Name] = a
	return nil
}

// AddMesh adds a mesh created at runtime.
func (m *Main) AddMesh(me *Mesh) error {
	if _, ok := m.meshes[me.Name]; ok {
		return fmt.Errorf("mesh %q already exists", me.Name)
	}
	me.ID = ID{Code: CodeMesh, Name: me.Name}
	m.Meshes = append(m.Meshes, me)
	m.meshes[me.Name] = me
	return nil
}

// Free marks the library as released. It reports false if it already was.
func (m *Main) Free() bool {
	return m.freed.CompareAndSwap(false, true)
}

// Freed reports whether Free has been called.
func (m *Main) Freed() bool {
	return m.freed.Load()
}

func lookup[T any](idx map[string]*T, code Code, name string) (*T, error) {
	if v, ok := idx[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, ID{Code: code, Name: name})
}

func (m *Main) index() {
	m.scenes = make(map[string]*Scene, len(m.Scenes))
	m.objects = make(map[string]*Object, len(m.Objects))
	m.meshes = make(map[string]*Mesh, len(m.Meshes))
	m.materials = make(map[string]*Material, len(m.Materials))
	m.actions = make(map[string]*Action, len(m.Actions))
	m.texts = make(map[string]*Text, len(m.Texts))
}
