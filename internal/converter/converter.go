// Package converter turns libraries into live scenes. It converts the
// startup library synchronously and links further libraries on a worker
// pool, merging finished loads into live scenes from the main goroutine.
package converter

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/config"
	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/engine/object"
	"github.com/Faultbox/ketsji/internal/engine/scene"
	"github.com/Faultbox/ketsji/internal/logger"
	"github.com/Faultbox/ketsji/pkg/encoding"
	"github.com/Faultbox/ketsji/pkg/library"
)

var (
	// ErrAlreadyLoaded is returned when a library path is loaded or loading.
	ErrAlreadyLoaded = errors.New("library already loaded")
	// ErrNotLoaded is returned for paths that have no loaded library.
	ErrNotLoaded = errors.New("library not loaded")
	// ErrInvalidGroup is returned for unknown import groups.
	ErrInvalidGroup = errors.New("invalid library group")
)

// Options are the load option flags.
type Options uint16

const (
	LoadActions Options = 1 << iota
	Verbose
	LoadScripts
	Async
)

func (o Options) String() string {
	if o == 0 {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		flag Options
		name string
	}{{LoadActions, "actions"}, {Verbose, "verbose"}, {LoadScripts, "scripts"}, {Async, "async"}} {
		if o&f.flag != 0 {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

// Group selects what a library load imports.
type Group string

const (
	GroupScene  Group = "Scene"
	GroupMesh   Group = "Mesh"
	GroupAction Group = "Action"
)

// ParseGroup validates a group name.
func ParseGroup(s string) (Group, error) {
	switch g := Group(s); g {
	case GroupScene, GroupMesh, GroupAction:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGroup, s)
}

// Config contains converter options.
type Config struct {
	Workers                int
	QueueSize              int
	TextEncoding           string
	ActionLayers           int
	AlwaysUseExpandFraming bool

	Meshes      MeshConverter            // nil: DefaultMeshConverter
	Physics     PhysicsFactory           // nil: the physics environment of each scene
	Controllers action.ControllerFactory // nil: ipo controllers
}

// DefaultConfig returns a default converter configuration.
func DefaultConfig() Config {
	return Config{
		Workers:      4,
		QueueSize:    16,
		TextEncoding: "utf-8",
		ActionLayers: action.MaxLayers,
	}
}

// ConfigFrom picks the converter settings out of the engine configuration.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	c.Workers = cfg.Converter.Workers
	c.QueueSize = cfg.Converter.QueueSize
	c.AlwaysUseExpandFraming = cfg.Converter.AlwaysUseExpandFraming
	c.TextEncoding = cfg.Data.TextEncoding
	c.ActionLayers = cfg.Engine.MaxActionLayers
	return c
}

// Converter owns every loaded library.
type Converter struct {
	cfg  Config
	main *library.Main
	pool *Pool
	log  *zap.Logger

	// mu guards the status registry and the merge queue, which loading
	// goroutines write, the dynamic libraries and the tracked scenes.
	mu         sync.Mutex
	status     map[string]*LibLoadStatus
	mergeQueue []*LibLoadStatus
	dynamic    []*library.Main
	scenes     []*scene.Scene
	removed    map[*scene.Scene]struct{}
}

// New returns a converter for the startup library main.
func New(main *library.Main, cfg Config) (*Converter, error) {
	if cfg.Meshes == nil {
		cfg.Meshes = DefaultMeshConverter{}
	}
	if cfg.ActionLayers <= 0 {
		cfg.ActionLayers = action.MaxLayers
	}
	pool, err := NewPool(cfg.Workers, cfg.QueueSize)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	if main == nil {
		main = library.New("")
	}
	return &Converter{
		cfg:    cfg,
		main:   main,
		pool:   pool,
		log:    logger.Named("converter"),
		status:  make(map[string]*LibLoadStatus),
		removed: make(map[*scene.Scene]struct{}),
	}, nil
}

// Main returns the startup library.
func (c *Converter) Main() *library.Main { return c.main }

// SetAlwaysUseExpandFraming changes the framing of scenes converted later.
func (c *Converter) SetAlwaysUseExpandFraming(v bool) { c.cfg.AlwaysUseExpandFraming = v }

func (c *Converter) newScene(name string) *scene.Scene {
	return scene.New(scene.Config{
		Name:          name,
		ActionLayers:  c.cfg.ActionLayers,
		Controllers:   c.cfg.Controllers,
		ExpandFraming: c.cfg.AlwaysUseExpandFraming,
	})
}

func (c *Converter) services(opts Options) services {
	return services{meshes: c.cfg.Meshes, physics: c.cfg.Physics, log: c.log, verbose: opts&Verbose != 0}
}

// ConvertScene converts the scene called name of the startup library into
// a new live scene. Every clip of the startup library is playable in it.
// Objects that fail to convert are logged and skipped.
func (c *Converter) ConvertScene(name string) (*scene.Scene, error) {
	ls, err := c.main.Scene(encoding.NormalizeName(name))
	if err != nil {
		return nil, err
	}
	s := c.newScene(ls.Name)
	sc := NewSceneConverter(s, c.main.Path)
	convertActions(c.main, sc)
	if err := convertScene(c.main, ls, sc, c.services(0)); err != nil {
		c.log.Warn("scene converted with errors", zap.String("scene", ls.Name), zap.Error(err))
	}
	sc.Finalize(s)
	c.track(s)

	c.log.Info("converted scene",
		zap.String("scene", ls.Name),
		zap.Int("objects", len(s.Objects())),
		zap.Int("inactive", len(s.InactiveObjects())),
		zap.Int("actions", s.Actions()))
	return s, nil
}

func (c *Converter) track(s *scene.Scene) {
	c.mu.Lock()
	c.trackLocked(s)
	c.mu.Unlock()
}

func (c *Converter) trackLocked(s *scene.Scene) {
	delete(c.removed, s)
	if !slices.Contains(c.scenes, s) {
		c.scenes = append(c.scenes, s)
	}
}

// RemoveScene stops tracking s. Freed libraries no longer touch it and
// loads still in flight for it fail at merge.
func (c *Converter) RemoveScene(s *scene.Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scenes = slices.DeleteFunc(c.scenes, func(x *scene.Scene) bool { return x == s })
	c.removed[s] = struct{}{}
}

// Scenes returns the live scenes the converter filled.
func (c *Converter) Scenes() []*scene.Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.scenes)
}

// SceneForName returns the authored scene called name from the startup or
// a dynamic library.
func (c *Converter) SceneForName(name string) (*library.Scene, error) {
	name = encoding.NormalizeName(name)
	if ls, err := c.main.Scene(name); err == nil {
		return ls, nil
	}
	for _, m := range c.MainDynamic() {
		if ls, err := m.Scene(name); err == nil {
			return ls, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", library.ErrNotFound, library.ID{Code: library.CodeScene, Name: name})
}

// InactiveSceneNames lists the startup scenes not converted yet.
func (c *Converter) InactiveSceneNames() []string {
	scenes := c.Scenes()
	var out []string
	for _, ls := range c.main.Scenes {
		if !slices.ContainsFunc(scenes, func(s *scene.Scene) bool { return s.Name() == ls.Name }) {
			out = append(out, ls.Name)
		}
	}
	return out
}

// CreateMainDynamic adds an empty library for path, for data created at
// runtime.
func (c *Converter) CreateMainDynamic(path string) (*library.Main, error) {
	path = encoding.NormalizePath(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadedLocked(path) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, path)
	}
	m := library.New(path)
	c.dynamic = append(c.dynamic, m)
	return m, nil
}

// MainDynamicPath returns the dynamic library loaded from path.
func (c *Converter) MainDynamicPath(path string) (*library.Main, bool) {
	path = encoding.NormalizePath(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dynamicLocked(path)
}

func (c *Converter) dynamicLocked(path string) (*library.Main, bool) {
	for _, m := range c.dynamic {
		if m.Path == path {
			return m, true
		}
	}
	return nil, false
}

// MainDynamic returns every dynamic library in load order.
func (c *Converter) MainDynamic() []*library.Main {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.dynamic)
}

// Status returns the record of the load of path.
func (c *Converter) Status(path string) (*LibLoadStatus, bool) {
	path = encoding.NormalizePath(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.status[path]
	return st, ok
}

// loadedLocked reports whether path is loaded or loading.
func (c *Converter) loadedLocked(path string) bool {
	if _, ok := c.status[path]; ok {
		return true
	}
	_, ok := c.dynamicLocked(path)
	return ok
}

// ConvertMeshSpecial converts the mesh called name into s, searching the
// startup library and then the dynamic ones.
func (c *Converter) ConvertMeshSpecial(s *scene.Scene, name string) (*object.Mesh, error) {
	name = encoding.NormalizeName(name)
	mains := append([]*library.Main{c.main}, c.MainDynamic()...)
	for _, m := range mains {
		me, err := m.Mesh(name)
		if err != nil {
			continue
		}
		sc := NewSceneConverter(s, m.Path)
		mesh, err := c.cfg.Meshes.ConvertMesh(me, m, sc)
		if err != nil {
			return nil, err
		}
		sc.Finalize(s)
		return mesh, nil
	}
	return nil, fmt.Errorf("%w: %s", library.ErrNotFound, library.ID{Code: library.CodeMesh, Name: name})
}

// PrintStats logs what the converter holds.
func (c *Converter) PrintStats() {
	c.mu.Lock()
	inFlight, queued := 0, len(c.mergeQueue)
	for _, st := range c.status {
		if s := st.State(); s == StateQueued || s == StateLoading {
			inFlight++
		}
	}
	dynamic := len(c.dynamic)
	scenes := slices.Clone(c.scenes)
	c.mu.Unlock()

	c.log.Info("converter stats",
		zap.Int("dynamic_libraries", dynamic),
		zap.Int("loading", inFlight),
		zap.Int("merge_queue", queued),
		zap.Int("scenes", len(scenes)))
	for _, s := range scenes {
		c.log.Info("scene stats",
			zap.String("scene", s.Name()),
			zap.Int("objects", len(s.Objects())),
			zap.Int("inactive", len(s.InactiveObjects())),
			zap.Int("meshes", len(s.Meshes())),
			zap.Int("actions", s.Actions()))
	}
}

// Close waits for outstanding loads, merges them, stops the pool and
// frees every dynamic library.
func (c *Converter) Close() error {
	var err error
	c.FinalizeAsyncLoads()
	err = multierr.Append(err, c.pool.Shutdown())
	for _, m := range c.MainDynamic() {
		if !c.FreeBlendFile(m) {
			err = multierr.Append(err, fmt.Errorf("freeing %s: %w", m.Path, ErrNotLoaded))
		}
	}
	c.mu.Lock()
	c.scenes = nil
	c.mu.Unlock()
	return err
}
