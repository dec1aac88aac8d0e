// Package scene provides the live scene: the active and inactive object
// lists, the clip registry, and the per-frame update pass.
package scene

import (
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/engine/ipo"
	"github.com/Faultbox/ketsji/internal/engine/object"
	"github.com/Faultbox/ketsji/internal/engine/physics"
	"github.com/Faultbox/ketsji/internal/logger"
	"github.com/Faultbox/ketsji/pkg/library"
)

// Config contains scene configuration options.
type Config struct {
	Name          string
	ActionLayers  int
	Controllers   action.ControllerFactory
	Hook          action.MaterialUpdateHook
	ExpandFraming bool // fill the viewport instead of letterboxing
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		ActionLayers: action.MaxLayers,
		Controllers:  ipo.NewFactory(),
	}
}

// clipEntry is a registered clip and the library it came from.
type clipEntry struct {
	clip    *library.Action
	libPath string
}

// meshEntry is a mesh owned by the scene and the library it came from.
type meshEntry struct {
	mesh    *object.Mesh
	libPath string
}

// Scene is a live scene. It is only touched from the main goroutine.
type Scene struct {
	id     uuid.UUID
	config Config

	// Objects
	objects  []object.Object
	inactive []object.Object // replica templates

	// Shared data
	clips  map[string]clipEntry
	meshes []meshEntry
	world  *World

	physics *physics.Environment

	// Suspension
	suspended      bool
	suspendedAt    float64
	suspendedDelta float64

	log *zap.Logger
}

// New creates an empty scene.
func New(cfg Config) *Scene {
	if cfg.ActionLayers <= 0 {
		cfg.ActionLayers = action.MaxLayers
	}
	if cfg.Controllers == nil {
		cfg.Controllers = ipo.NewFactory()
	}
	id := uuid.New()
	return &Scene{
		id:      id,
		config:  cfg,
		clips:   make(map[string]clipEntry),
		world:   NewWorld(),
		physics: physics.NewEnvironment(),
		log:     logger.Named("scene").With(zap.String("scene", cfg.Name), zap.Stringer("id", id)),
	}
}

// ID returns the unique runtime ID of the scene.
func (s *Scene) ID() uuid.UUID { return s.id }

// Name returns the scene name.
func (s *Scene) Name() string { return s.config.Name }

// ExpandFraming reports whether the scene is framed to fill the viewport.
func (s *Scene) ExpandFraming() bool { return s.config.ExpandFraming }

// World returns the world parameters.
func (s *Scene) World() *World { return s.world }

// WorldSink implements object.Host.
func (s *Scene) WorldSink() action.ParameterSink { return s.world }

// Physics returns the physics environment.
func (s *Scene) Physics() *physics.Environment { return s.physics }

// ActionLayers implements object.Host.
func (s *Scene) ActionLayers() int { return s.config.ActionLayers }

// ActionEnvironment implements object.Host.
func (s *Scene) ActionEnvironment() action.Environment {
	return action.Environment{
		Clips:       s,
		Controllers: s.config.Controllers,
		Hook:        s.config.Hook,
		Logger:      logger.Named("action"),
	}
}

// ActionByName implements action.ClipResolver.
func (s *Scene) ActionByName(name string) (*library.Action, bool) {
	e, ok := s.clips[name]
	return e.clip, ok
}

// RegisterAction makes clip playable in the scene. A clip with the same
// name is replaced.
func (s *Scene) RegisterAction(clip *library.Action, libPath string) {
	if old, ok := s.clips[clip.Name]; ok && old.clip != clip {
		s.log.Debug("replacing action",
			zap.String("action", clip.Name),
			zap.String("old_library", old.libPath),
			zap.String("library", libPath))
	}
	s.clips[clip.Name] = clipEntry{clip: clip, libPath: libPath}
}

// Actions returns the number of registered clips.
func (s *Scene) Actions() int { return len(s.clips) }

// AddMesh makes the scene own m.
func (s *Scene) AddMesh(m *object.Mesh, libPath string) {
	if slices.ContainsFunc(s.meshes, func(e meshEntry) bool { return e.mesh == m }) {
		return
	}
	s.meshes = append(s.meshes, meshEntry{mesh: m, libPath: libPath})
	m.ReplaceScene(s)
}

// Meshes returns the meshes owned by the scene.
func (s *Scene) Meshes() []*object.Mesh {
	out := make([]*object.Mesh, len(s.meshes))
	for i, e := range s.meshes {
		out[i] = e.mesh
	}
	return out
}

// AddObject adds o to the active objects.
func (s *Scene) AddObject(o object.Object) {
	o.Base().SetHost(s)
	s.objects = append(s.objects, o)
}

// AddInactive adds o to the inactive objects used as replica templates.
func (s *Scene) AddInactive(o object.Object) {
	o.Base().SetHost(s)
	s.inactive = append(s.inactive, o)
}

// Objects returns the active objects. The slice must not be modified.
func (s *Scene) Objects() []object.Object { return s.objects }

// InactiveObjects returns the replica templates. The slice must not be modified.
func (s *Scene) InactiveObjects() []object.Object { return s.inactive }

// ObjectByName returns the first active object called name.
func (s *Scene) ObjectByName(name string) (object.Object, bool) {
	return findByName(s.objects, name)
}

// InactiveByName returns the replica template called name.
func (s *Scene) InactiveByName(name string) (object.Object, bool) {
	return findByName(s.inactive, name)
}

func findByName(objs []object.Object, name string) (object.Object, bool) {
	for _, o := range objs {
		if o.Base().Name() == name {
			return o, true
		}
	}
	return nil, false
}

// RemoveObject closes o and its descendants and removes them from the
// scene. It reports false if o is not in the scene.
func (s *Scene) RemoveObject(o object.Object) bool {
	if !slices.Contains(s.objects, o) && !slices.Contains(s.inactive, o) {
		return false
	}
	for _, d := range descendants(o) {
		s.detach(d)
	}
	s.detach(o)
	return true
}

func (s *Scene) detach(o object.Object) {
	s.objects = slices.DeleteFunc(s.objects, func(x object.Object) bool { return x == o })
	s.inactive = slices.DeleteFunc(s.inactive, func(x object.Object) bool { return x == o })
	o.Base().Close()
}

// descendants lists the subtree below o, deepest first.
func descendants(o object.Object) []object.Object {
	var out []object.Object
	for _, c := range o.Base().Children() {
		out = append(out, descendants(c)...)
		out = append(out, c)
	}
	return out
}

// Destroy closes every object.
func (s *Scene) Destroy() {
	for _, o := range slices.Concat(s.objects, s.inactive) {
		o.Base().Close()
	}
	s.objects = nil
	s.inactive = nil
	s.clips = make(map[string]clipEntry)
	s.meshes = nil
}
