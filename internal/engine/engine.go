// Package engine drives live scenes: it owns the converter, advances the
// logic clock and runs the frame pass of every scene in order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/config"
	"github.com/Faultbox/ketsji/internal/converter"
	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/engine/scene"
	"github.com/Faultbox/ketsji/internal/logger"
	"github.com/Faultbox/ketsji/pkg/library"
)

// ErrNoStartupScene is returned by Start when no scene is configured.
var ErrNoStartupScene = errors.New("no startup scene configured")

// Engine is the frame driver.
type Engine struct {
	config    *config.Config
	running   bool
	clock     *Clock
	converter *converter.Converter
	watcher   *converter.Watcher
	scenes    []*scene.Scene
	frames    uint64
	log       *zap.Logger
}

// New creates an engine for cfg. The startup library is parsed when
// configured; otherwise the engine starts with an empty one.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	log := logger.Named("engine")

	var main *library.Main
	if cfg.Data.StartupLibrary != "" {
		path, err := cfg.ResolveLibrary(cfg.Data.StartupLibrary)
		if err != nil {
			return nil, err
		}
		main, err = library.ParseFile(path, library.Options{Encoding: cfg.Data.TextEncoding})
		if err != nil {
			return nil, fmt.Errorf("loading startup library: %w", err)
		}
		log.Info("loaded startup library",
			zap.String("path", path),
			zap.Int("scenes", len(main.Scenes)),
			zap.Int("objects", len(main.Objects)),
			zap.Int("actions", len(main.Actions)))
	}

	conv, err := converter.New(main, converter.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("creating converter: %w", err)
	}
	e := &Engine{
		config:    cfg,
		clock:     NewClock(),
		converter: conv,
		log:       log,
	}
	if cfg.Converter.HotReload {
		e.watcher, err = converter.NewWatcher(cfg.Converter.QueueSize)
		if err != nil {
			_ = conv.Close()
			return nil, fmt.Errorf("creating library watcher: %w", err)
		}
	}
	return e, nil
}

// Converter returns the library converter.
func (e *Engine) Converter() *converter.Converter { return e.converter }

// Clock returns the logic clock.
func (e *Engine) Clock() *Clock { return e.clock }

// Scenes returns the running scenes in update order.
func (e *Engine) Scenes() []*scene.Scene { return e.scenes }

// Frames returns the number of frames stepped.
func (e *Engine) Frames() uint64 { return e.frames }

// FrameRate returns the animation frame rate.
func (e *Engine) FrameRate() float64 { return e.config.Engine.AnimFrameRate }

// ClockContext returns the clock handed to actions this frame.
func (e *Engine) ClockContext() action.ClockContext {
	return action.ClockContext{CurrentTime: e.clock.Elapsed(), FrameRate: e.FrameRate()}
}

// StartScene converts the startup scene called name and runs it.
func (e *Engine) StartScene(name string) (*scene.Scene, error) {
	s, err := e.converter.ConvertScene(name)
	if err != nil {
		return nil, err
	}
	e.AddScene(s)
	return s, nil
}

// Start converts the configured startup scene and starts the clock.
func (e *Engine) Start() (*scene.Scene, error) {
	name := e.config.Engine.StartupScene
	if name == "" {
		if len(e.converter.Main().Scenes) == 0 {
			return nil, ErrNoStartupScene
		}
		name = e.converter.Main().Scenes[0].Name
	}
	s, err := e.StartScene(name)
	if err != nil {
		return nil, err
	}
	e.clock.Start()
	e.running = true
	return s, nil
}

// AddScene runs s after the scenes already running.
func (e *Engine) AddScene(s *scene.Scene) {
	if !slices.Contains(e.scenes, s) {
		e.scenes = append(e.scenes, s)
	}
}

// RemoveScene stops running s and destroys it.
func (e *Engine) RemoveScene(s *scene.Scene) {
	if !slices.Contains(e.scenes, s) {
		return
	}
	e.scenes = slices.DeleteFunc(e.scenes, func(x *scene.Scene) bool { return x == s })
	e.converter.RemoveScene(s)
	s.Destroy()
}

// LinkLibrary loads the library at path into target and, with hot reload
// enabled, watches its file.
func (e *Engine) LinkLibrary(path string, group converter.Group, target *scene.Scene, opts converter.Options) (*converter.LibLoadStatus, error) {
	resolved, err := e.config.ResolveLibrary(path)
	if err != nil {
		return nil, err
	}
	st, err := e.converter.LinkBlendFilePath(resolved, group, target, opts)
	if err != nil {
		return st, err
	}
	if e.watcher != nil {
		if werr := e.watcher.Add(st.Path()); werr != nil {
			e.log.Warn("cannot watch library", zap.String("library", st.Path()), zap.Error(werr))
		}
	}
	return st, nil
}

// Step runs one frame of dt seconds: finished loads are merged, changed
// libraries reloaded, then every scene is stepped.
func (e *Engine) Step(dt float64) {
	e.clock.Advance(dt)
	e.converter.MergeAsyncLoads()
	e.reloadChanged()

	clock := e.ClockContext()
	for _, s := range e.scenes {
		s.Step(clock, dt)
	}
	e.frames++
}

func (e *Engine) reloadChanged() {
	if e.watcher == nil {
		return
	}
	for {
		select {
		case path := <-e.watcher.Changes():
			if _, err := e.converter.Reload(path); err != nil {
				e.log.Warn("reload failed", zap.String("library", path), zap.Error(err))
				continue
			}
			e.log.Info("reloaded library", zap.String("library", path))
		default:
			return
		}
	}
}

// Run steps frames at the configured tick rate until ctx is done, Stop is
// called or maxFrames frames ran. Zero maxFrames runs without a limit.
func (e *Engine) Run(ctx context.Context, maxFrames uint64) error {
	if !e.clock.Running() {
		e.clock.Start()
	}
	e.running = true

	dt := 1 / e.config.Engine.TickRate
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	e.log.Info("starting frame loop", zap.Float64("tick_rate", e.config.Engine.TickRate))
	for e.running {
		select {
		case <-ctx.Done():
			e.running = false
			return ctx.Err()
		case <-ticker.C:
		}
		e.Step(dt)
		if maxFrames > 0 && e.frames >= maxFrames {
			e.running = false
		}
	}
	return nil
}

// Stop ends Run after the current frame.
func (e *Engine) Stop() { e.running = false }

// Shutdown stops the clock, destroys the scenes and releases every library.
func (e *Engine) Shutdown() error {
	e.log.Info("shutting down", zap.Uint64("frames", e.frames))
	e.running = false
	e.clock.Stop()

	var err error
	if e.watcher != nil {
		err = multierr.Append(err, e.watcher.Close())
	}
	err = multierr.Append(err, e.converter.Close())
	for _, s := range e.scenes {
		s.Destroy()
	}
	e.scenes = nil
	return err
}
