package object

import (
	"slices"

	"github.com/Faultbox/ketsji/pkg/library"
)

// Material is a runtime material. Its parameters start as a copy of the
// authored ones and are changed by material channels.
type Material struct {
	name   string
	id     library.ID
	params library.Params
	scene  Host
}

// NewMaterial converts an authored material.
func NewMaterial(m *library.Material) *Material {
	return &Material{name: m.Name, id: m.ID, params: m.Params.Clone()}
}

// Name returns the material name.
func (m *Material) Name() string { return m.name }

// ID returns the authored datablock ID.
func (m *Material) ID() library.ID { return m.id }

// Param returns the value of a parameter.
func (m *Material) Param(name string) ([]float64, bool) {
	v, ok := m.params[name]
	return v, ok
}

// SetParameter implements action.ParameterSink. The parameter grows to
// fit index.
func (m *Material) SetParameter(path string, index int, value float64) {
	if index < 0 {
		return
	}
	if m.params == nil {
		m.params = library.Params{}
	}
	v := m.params[path]
	for len(v) <= index {
		v = append(v, 0)
	}
	v[index] = value
	m.params[path] = v
}

// Scene returns the scene the material is bound to.
func (m *Material) Scene() Host { return m.scene }

// InitScene binds the material to scene.
func (m *Material) InitScene(scene Host) { m.scene = scene }

// Mesh is runtime geometry. Meshes are shared by reference between an
// object and its replicas.
type Mesh struct {
	name      string
	id        library.ID
	materials []*Material
	bounds    AABB
	vertices  int
	scene     Host
}

// NewMesh converts an authored mesh using already converted materials.
func NewMesh(m *library.Mesh, materials []*Material) *Mesh {
	return &Mesh{
		name:      m.Name,
		id:        m.ID,
		materials: materials,
		bounds:    AABBFromLibrary(m.Bounds),
		vertices:  m.Vertices,
	}
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

// ID returns the authored datablock ID.
func (m *Mesh) ID() library.ID { return m.id }

// Materials returns the bound materials.
func (m *Mesh) Materials() []*Material { return m.materials }

// Bounds returns the mesh-space bounds.
func (m *Mesh) Bounds() AABB { return m.bounds }

// Vertices returns the vertex count.
func (m *Mesh) Vertices() int { return m.vertices }

// Scene returns the scene the mesh is bound to.
func (m *Mesh) Scene() Host { return m.scene }

// ReplaceScene binds the mesh and its materials to scene.
func (m *Mesh) ReplaceScene(scene Host) {
	m.scene = scene
	for _, mat := range m.materials {
		mat.InitScene(scene)
	}
}

// Meshes returns the meshes the object references.
func (g *GameObject) Meshes() []*Mesh { return g.meshes }

// AddMesh references m and refreshes the bounds.
func (g *GameObject) AddMesh(m *Mesh) {
	if m == nil || slices.Contains(g.meshes, m) {
		return
	}
	g.meshes = append(g.meshes, m)
	g.UpdateBounds()
}

// RemoveMeshes drops every mesh reference.
func (g *GameObject) RemoveMeshes() {
	g.meshes = nil
	g.UpdateBounds()
}

// ReplaceMesh makes m the only mesh of the object.
func (g *GameObject) ReplaceMesh(m *Mesh) {
	g.meshes = g.meshes[:0]
	if m != nil {
		g.meshes = append(g.meshes, m)
	}
	g.UpdateBounds()
}

// Bounds returns the union of the mesh bounds.
func (g *GameObject) Bounds() AABB { return g.aabb }

// UpdateBounds recomputes the bounds and hands them to the graphic controller.
func (g *GameObject) UpdateBounds() {
	var b AABB
	for _, m := range g.meshes {
		b = b.Union(m.Bounds())
	}
	g.aabb = b
	if g.graphic != nil {
		g.graphic.SetBounds(b)
	}
}
