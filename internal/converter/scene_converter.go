package converter

import (
	"github.com/Faultbox/ketsji/internal/engine/object"
	"github.com/Faultbox/ketsji/internal/engine/scene"
	"github.com/Faultbox/ketsji/pkg/library"
)

// ObjectInfo is conversion data shared by every runtime object made from
// one authored object.
type ObjectInfo struct {
	Source   *library.Object
	Children []library.ID
}

// SceneConverter holds the lookups of one conversion pass into one scene.
// After Finalize every lookup misses.
type SceneConverter struct {
	scene   *scene.Scene
	libPath string

	objects   *registry[object.Object]
	meshes    *registry[*object.Mesh]
	materials *registry[*object.Material]
	actions   []*library.Action
	infos     map[library.ID]*ObjectInfo

	finalized bool
}

// NewSceneConverter starts a pass converting the library at libPath into s.
func NewSceneConverter(s *scene.Scene, libPath string) *SceneConverter {
	return &SceneConverter{
		scene:     s,
		libPath:   libPath,
		objects:   newRegistry[object.Object](),
		meshes:    newRegistry[*object.Mesh](),
		materials: newRegistry[*object.Material](),
		infos:     make(map[library.ID]*ObjectInfo),
	}
}

// Scene returns the scene being filled.
func (sc *SceneConverter) Scene() *scene.Scene { return sc.scene }

// LibraryPath returns the path of the library being converted.
func (sc *SceneConverter) LibraryPath() string { return sc.libPath }

// Finalized reports whether Finalize has run.
func (sc *SceneConverter) Finalized() bool { return sc.finalized }

// RegisterObject records o as the conversion of the datablock id.
func (sc *SceneConverter) RegisterObject(o object.Object, id library.ID) {
	if sc.finalized {
		return
	}
	sc.objects.register(id, o)
}

// UnregisterObject forgets o, unless its datablock was registered again
// for another object since.
func (sc *SceneConverter) UnregisterObject(o object.Object) bool {
	return sc.objects.unregister(o.Base().LibraryID(), o)
}

// FindObject returns the object converted from id.
func (sc *SceneConverter) FindObject(id library.ID) (object.Object, bool) {
	return sc.objects.find(id)
}

// RegisterMesh records m. Meshes with a zero id are owned but cannot be
// looked up.
func (sc *SceneConverter) RegisterMesh(m *object.Mesh, id library.ID) {
	if sc.finalized {
		return
	}
	sc.meshes.register(id, m)
}

// FindMesh returns the mesh converted from id.
func (sc *SceneConverter) FindMesh(id library.ID) (*object.Mesh, bool) {
	return sc.meshes.find(id)
}

// RegisterMaterial records m.
func (sc *SceneConverter) RegisterMaterial(m *object.Material, id library.ID) {
	if sc.finalized {
		return
	}
	sc.materials.register(id, m)
}

// FindMaterial returns the material converted from id.
func (sc *SceneConverter) FindMaterial(id library.ID) (*object.Material, bool) {
	return sc.materials.find(id)
}

// RegisterAction makes a clip part of the pass.
func (sc *SceneConverter) RegisterAction(a *library.Action) {
	if sc.finalized {
		return
	}
	sc.actions = append(sc.actions, a)
	sc.scene.RegisterAction(a, sc.libPath)
}

// Actions returns the clips registered in the pass.
func (sc *SceneConverter) Actions() []*library.Action { return sc.actions }

// ObjectInfo returns the info of obj, creating it on first use.
func (sc *SceneConverter) ObjectInfo(obj *library.Object) *ObjectInfo {
	if info, ok := sc.infos[obj.ID]; ok {
		return info
	}
	info := &ObjectInfo{Source: obj}
	sc.infos[obj.ID] = info
	return info
}

// Counts returns the number of objects, meshes and materials registered.
func (sc *SceneConverter) Counts() (objects, meshes, materials int) {
	return sc.objects.len(), sc.meshes.len(), sc.materials.len()
}

// Finalize binds every converted mesh and material to target and ends the
// pass.
func (sc *SceneConverter) Finalize(target *scene.Scene) {
	if sc.finalized {
		return
	}
	for _, m := range sc.meshes.all() {
		target.AddMesh(m, sc.libPath)
	}
	for _, m := range sc.materials.all() {
		m.InitScene(target)
	}
	sc.objects.clear()
	sc.meshes.clear()
	sc.materials.clear()
	clear(sc.infos)
	sc.finalized = true
}
