package scene

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/engine/object"
	"github.com/Faultbox/ketsji/pkg/library"
)

// MergeScene moves every object, clip, mesh and physics body of other into
// s. other is left empty.
func (s *Scene) MergeScene(other *Scene) {
	if other == nil || other == s {
		return
	}
	for _, o := range other.objects {
		s.AddObject(o)
	}
	for _, o := range other.inactive {
		s.AddInactive(o)
	}
	for name, e := range other.clips {
		if _, ok := s.clips[name]; !ok {
			s.clips[name] = e
		}
	}
	for _, e := range other.meshes {
		s.AddMesh(e.mesh, e.libPath)
	}
	s.physics.Merge(other.physics)

	s.log.Debug("merged scene",
		zap.String("from", other.Name()),
		zap.Int("objects", len(other.objects)),
		zap.Int("inactive", len(other.inactive)),
		zap.Int("actions", len(other.clips)))

	other.objects = nil
	other.inactive = nil
	other.clips = make(map[string]clipEntry)
	other.meshes = nil
}

// RemoveLibrary removes every object, clip and mesh converted from the
// library at libPath. Layers of remaining objects playing one of its clips
// are stopped. It returns the number of objects removed.
func (s *Scene) RemoveLibrary(libPath string) int {
	var doomed []object.Object
	for _, o := range slices.Concat(s.objects, s.inactive) {
		if o.Base().LibraryPath() == libPath {
			doomed = append(doomed, o)
		}
	}
	removed := 0
	for _, o := range doomed {
		if !o.Base().Closed() && s.RemoveObject(o) {
			removed++
		}
	}

	clips := map[*library.Action]bool{}
	for name, e := range s.clips {
		if e.libPath == libPath {
			clips[e.clip] = true
			delete(s.clips, name)
		}
	}
	if len(clips) > 0 {
		tagged := func(a *library.Action) bool { return clips[a] }
		for _, o := range s.objects {
			o.Base().RemoveTaggedActions(tagged)
		}
	}

	s.meshes = slices.DeleteFunc(s.meshes, func(e meshEntry) bool { return e.libPath == libPath })

	s.log.Info("removed library",
		zap.String("library", libPath),
		zap.Int("objects", removed),
		zap.Int("actions", len(clips)))
	return removed
}
