package object

import (
	"errors"

	"github.com/Faultbox/ketsji/pkg/library"
	"github.com/Faultbox/ketsji/pkg/math"
)

// ErrNoMesh is returned when a deformer is requested for an object without
// geometry.
var ErrNoMesh = errors.New("object has no mesh to deform")

// Deformer modifies the geometry of one mesh for one object.
type Deformer interface {
	Mesh() *Mesh
	// Apply deforms for frame and reports whether anything changed.
	Apply(frame float64) bool
	// Clone returns a deformer for owner sharing the mesh.
	Clone(owner *DeformableObject) Deformer
}

// SoftBodyDeformer follows the owner's world transform; each update
// records the pose the geometry is deformed to.
type SoftBodyDeformer struct {
	owner   *DeformableObject
	mesh    *Mesh
	pose    math.Transform
	updates int
}

// NewSoftBodyDeformer returns a deformer for mesh on owner.
func NewSoftBodyDeformer(owner *DeformableObject, mesh *Mesh) *SoftBodyDeformer {
	return &SoftBodyDeformer{owner: owner, mesh: mesh, pose: math.TransformIdentity()}
}

// Mesh implements Deformer.
func (d *SoftBodyDeformer) Mesh() *Mesh { return d.mesh }

// Apply implements Deformer.
func (d *SoftBodyDeformer) Apply(float64) bool {
	pose := d.owner.WorldTransform()
	if pose == d.pose && d.updates > 0 {
		return false
	}
	d.pose = pose
	d.updates++
	return true
}

// Clone implements Deformer.
func (d *SoftBodyDeformer) Clone(owner *DeformableObject) Deformer {
	return &SoftBodyDeformer{owner: owner, mesh: d.mesh, pose: d.pose}
}

// Owner returns the object being deformed.
func (d *SoftBodyDeformer) Owner() *DeformableObject { return d.owner }

// Pose returns the pose of the last applied update.
func (d *SoftBodyDeformer) Pose() math.Transform { return d.pose }

// Updates returns how many updates changed the geometry.
func (d *SoftBodyDeformer) Updates() int { return d.updates }

// DeformableObject is a game object owning at most one deformer.
type DeformableObject struct {
	GameObject
	deformer  Deformer
	lastFrame float64
}

// NewDeformable returns a deformable object without a deformer.
func NewDeformable(name string, kind library.ObjectKind) *DeformableObject {
	d := &DeformableObject{GameObject: *New(name, kind), lastFrame: -1}
	d.self = d
	d.node.SetClient(d)
	return d
}

// Deformer returns the owned deformer or nil.
func (d *DeformableObject) Deformer() Deformer { return d.deformer }

// SetDeformer replaces the deformer.
func (d *DeformableObject) SetDeformer(df Deformer) {
	d.deformer = df
	d.lastFrame = -1
}

// LoadDeformer creates a soft-body deformer on the first mesh.
func (d *DeformableObject) LoadDeformer() error {
	if len(d.meshes) == 0 {
		return ErrNoMesh
	}
	d.SetDeformer(NewSoftBodyDeformer(d, d.meshes[0]))
	return nil
}

// UpdateDeformer applies the deformer once per frame.
func (d *DeformableObject) UpdateDeformer(frame float64) bool {
	if d.deformer == nil || frame == d.lastFrame {
		return false
	}
	d.lastFrame = frame
	return d.deformer.Apply(frame)
}

// Close implements the GameObject teardown and drops the deformer.
func (d *DeformableObject) Close() {
	d.GameObject.Close()
	d.deformer = nil
}

// Clone implements Cloneable.
func (d *DeformableObject) Clone() Object {
	c := *d
	c.self = &c
	c.ProcessReplica()
	return &c
}

// ProcessReplica implements Cloneable. The deformer is deep copied.
func (d *DeformableObject) ProcessReplica() {
	d.GameObject.ProcessReplica()
	if d.deformer != nil {
		d.deformer = d.deformer.Clone(d)
	}
	d.lastFrame = -1
}
