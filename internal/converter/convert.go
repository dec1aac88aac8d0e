package converter

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/engine/object"
	"github.com/Faultbox/ketsji/internal/engine/physics"
	"github.com/Faultbox/ketsji/pkg/library"
	"github.com/Faultbox/ketsji/pkg/math"
)

// MeshConverter turns authored meshes into runtime meshes. Converting the
// same mesh twice in one pass returns the first result.
type MeshConverter interface {
	ConvertMesh(me *library.Mesh, main *library.Main, sc *SceneConverter) (*object.Mesh, error)
}

// PhysicsFactory creates the physics body of an object. It may return a
// nil controller for objects without physics.
type PhysicsFactory interface {
	CreatePhysicsController(obj *library.Object, t math.Transform) (physics.Controller, error)
}

// DefaultMeshConverter converts meshes and their materials as authored.
type DefaultMeshConverter struct{}

// ConvertMesh implements MeshConverter.
func (DefaultMeshConverter) ConvertMesh(me *library.Mesh, main *library.Main, sc *SceneConverter) (*object.Mesh, error) {
	if m, ok := sc.FindMesh(me.ID); ok {
		return m, nil
	}
	mats := make([]*object.Material, 0, len(me.Materials))
	for _, name := range me.Materials {
		lm, err := main.Material(name)
		if err != nil {
			return nil, fmt.Errorf("mesh %s: %w", me.Name, err)
		}
		mat, ok := sc.FindMaterial(lm.ID)
		if !ok {
			mat = object.NewMaterial(lm)
			sc.RegisterMaterial(mat, lm.ID)
		}
		mats = append(mats, mat)
	}
	m := object.NewMesh(me, mats)
	sc.RegisterMesh(m, me.ID)
	return m, nil
}

// services are the collaborators of a conversion pass.
type services struct {
	meshes  MeshConverter
	physics PhysicsFactory // nil: use the scene's environment
	log     *zap.Logger
	verbose bool
}

func (sv services) physicsFor(sc *SceneConverter) PhysicsFactory {
	if sv.physics != nil {
		return sv.physics
	}
	return sc.Scene().Physics()
}

// convertScene converts every object of ls into the scene of sc. Objects
// on inactive layers become replica templates. Per-object failures are
// joined into the returned error; the remaining objects are converted.
func convertScene(main *library.Main, ls *library.Scene, sc *SceneConverter, sv services) error {
	var errs []error
	for _, name := range ls.Objects {
		lo, err := main.Object(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		o, err := convertObject(main, lo, sc, sv)
		if err != nil {
			errs = append(errs, fmt.Errorf("object %s: %w", name, err))
		}
		if o == nil {
			continue
		}
		sc.RegisterObject(o, lo.ID)
		if ls.LayerActive(lo.Layer) {
			sc.Scene().AddObject(o)
		} else {
			sc.Scene().AddInactive(o)
		}
		if sv.verbose {
			sv.log.Info("converted object", zap.String("object", name), zap.String("type", string(lo.Kind)))
		}
	}

	// Parent links need every object of the scene.
	for _, name := range ls.Objects {
		lo, err := main.Object(name)
		if err != nil || lo.Parent == "" {
			continue
		}
		child, ok := sc.FindObject(lo.ID)
		if !ok {
			continue
		}
		lp, err := main.Object(lo.Parent)
		if err != nil {
			continue
		}
		parent, ok := sc.FindObject(lp.ID)
		if !ok {
			errs = append(errs, fmt.Errorf("object %s: parent %s is not in scene %s", name, lo.Parent, ls.Name))
			continue
		}
		parent.Base().Node().AddChild(child.Base().Node())
		info := sc.ObjectInfo(lp)
		info.Children = append(info.Children, lo.ID)
	}

	all := slices.Concat(sc.Scene().Objects(), sc.Scene().InactiveObjects())
	for _, o := range all {
		if n := o.Base().Node(); n.Parent() == nil {
			n.UpdateTree()
		}
	}
	for _, o := range all {
		if pc := o.Base().PhysicsController(); pc != nil {
			pc.SetTransform(o.Base().WorldTransform())
		}
	}
	sc.Scene().World().Load(ls.World)
	return errors.Join(errs...)
}

// convertObject builds the runtime object for lo. It returns the object
// even when a part of it failed to convert.
func convertObject(main *library.Main, lo *library.Object, sc *SceneConverter, sv services) (object.Object, error) {
	sc.ObjectInfo(lo)

	var o object.Object
	var deformable *object.DeformableObject
	if lo.SoftBody {
		deformable = object.NewDeformable(lo.Name, lo.Kind)
		o = deformable
	} else {
		o = object.New(lo.Name, lo.Kind)
	}
	g := o.Base()
	g.SetLibrary(lo.ID, main.Path)
	g.SetLayer(lo.Layer)
	g.SetVisible(lo.IsVisible(), false)
	g.SetOccluder(lo.Occluder, false)
	g.SetColor(lo.ColorOrWhite())
	if l := object.LightFromLibrary(lo.Light); l != nil {
		g.SetLight(l)
	}
	if c := object.CameraFromLibrary(lo.Camera); c != nil {
		g.SetCamera(c)
	}

	t := math.Transform{
		Position:    math.Vec3FromArray(lo.Location),
		Orientation: math.QuatFromEuler(math.Vec3FromArray(lo.Rotation)).Normalize(),
		Scale:       math.Vec3FromArray(lo.ScaleOrOne()),
	}
	g.Node().SetLocalTransform(t)
	g.SetGraphicController(&object.CullingBounds{})

	var errs []error
	if lo.Mesh != "" {
		me, err := main.Mesh(lo.Mesh)
		if err == nil {
			var m *object.Mesh
			m, err = sv.meshes.ConvertMesh(me, main, sc)
			if err == nil {
				g.AddMesh(m)
			}
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if lo.Physics != nil {
		ctrl, err := sv.physicsFor(sc).CreatePhysicsController(lo, t)
		switch {
		case err != nil:
			errs = append(errs, err)
		case ctrl != nil:
			if err := g.SetPhysicsController(ctrl); err != nil {
				ctrl.Close()
				errs = append(errs, err)
			}
		}
	}

	if deformable != nil {
		if err := deformable.LoadDeformer(); err != nil {
			errs = append(errs, err)
		}
	}
	return o, errors.Join(errs...)
}

// convertMeshes converts every mesh of main, for mesh-only loads.
func convertMeshes(main *library.Main, sc *SceneConverter, sv services) error {
	var errs []error
	for _, me := range main.Meshes {
		if _, err := sv.meshes.ConvertMesh(me, main, sc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// convertActions registers every clip of main.
func convertActions(main *library.Main, sc *SceneConverter) {
	for _, a := range main.Actions {
		sc.RegisterAction(a)
	}
}
