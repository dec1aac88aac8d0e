package converter

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/engine/scene"
	"github.com/Faultbox/ketsji/pkg/encoding"
	"github.com/Faultbox/ketsji/pkg/library"
)

// ErrDiscarded is the error of loads freed before they were merged.
var ErrDiscarded = errors.New("library freed before merge")

// ErrSceneRemoved fails a load whose target scene was removed before merge.
var ErrSceneRemoved = errors.New("target scene removed")

// LinkBlendFilePath loads the library file at path into target.
func (c *Converter) LinkBlendFilePath(path string, group Group, target *scene.Scene, opts Options) (*LibLoadStatus, error) {
	return c.LinkBlendFile(library.Source{Path: path}, group, target, opts)
}

// LinkBlendFileMemory loads a library from data, known under path, into target.
func (c *Converter) LinkBlendFileMemory(data []byte, path string, group Group, target *scene.Scene, opts Options) (*LibLoadStatus, error) {
	if data == nil {
		data = []byte{}
	}
	return c.LinkBlendFile(library.Source{Path: path, Data: data}, group, target, opts)
}

// LinkBlendFile loads src into target. With the Async option the returned
// status is still loading; MergeAsyncLoads later merges it. Otherwise the
// load is converted and merged before returning, and its error returned.
func (c *Converter) LinkBlendFile(src library.Source, group Group, target *scene.Scene, opts Options) (*LibLoadStatus, error) {
	if _, err := ParseGroup(string(group)); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.New("link library: nil target scene")
	}
	src.Path = encoding.NormalizePath(src.Path)
	if src.Path == "" {
		return nil, errors.New("link library: empty path")
	}

	st := newStatus(src, group, target, opts)
	c.mu.Lock()
	if c.loadedLocked(src.Path) {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, src.Path)
	}
	c.status[src.Path] = st
	c.mu.Unlock()

	log := c.log.With(zap.String("library", src.Path), zap.Stringer("load", st.ID()))
	log.Debug("linking library", zap.String("group", string(group)), zap.Stringer("options", opts))

	if opts&Async != 0 {
		if err := c.pool.Submit(func() { c.load(st) }); err != nil {
			c.mu.Lock()
			delete(c.status, src.Path)
			c.mu.Unlock()
			return nil, err
		}
		return st, nil
	}

	c.load(st)
	c.merge(func(s *LibLoadStatus) bool { return s == st })
	return st, st.Err()
}

// load runs on a pool goroutine for async loads. It only touches st and
// the detached scenes it creates.
func (c *Converter) load(st *LibLoadStatus) {
	defer func() {
		if r := recover(); r != nil {
			st.fail(fmt.Errorf("loading %s: panic: %v", st.path, r))
		}
		c.mu.Lock()
		c.mergeQueue = append(c.mergeQueue, st)
		c.mu.Unlock()
	}()

	st.started = time.Now()
	st.setState(StateLoading)

	main, err := st.source.Load(library.Options{Encoding: c.cfg.TextEncoding})
	if err != nil {
		st.fail(err)
		return
	}
	main.Path = st.path
	st.addProgress(0.25)

	converters, err := c.convertGroup(main, st)
	if err != nil {
		st.fail(err)
		return
	}
	if st.options&LoadScripts != 0 {
		for _, t := range main.Texts {
			st.scripts = append(st.scripts, t.Name)
		}
	}
	st.complete(main, converters)
}

// convertGroup builds detached scenes for what st imports.
func (c *Converter) convertGroup(main *library.Main, st *LibLoadStatus) ([]*SceneConverter, error) {
	sv := c.services(st.options)
	var converters []*SceneConverter
	newConverter := func(name string) *SceneConverter {
		sc := NewSceneConverter(c.newScene(name), main.Path)
		converters = append(converters, sc)
		return sc
	}

	switch st.group {
	case GroupScene:
		if len(main.Scenes) == 0 {
			return nil, fmt.Errorf("%s: %w: no scenes", main.Path, library.ErrNotFound)
		}
		step := 0.75 / float64(len(main.Scenes))
		for _, ls := range main.Scenes {
			sc := newConverter(ls.Name)
			if st.options&LoadActions != 0 {
				convertActions(main, sc)
			}
			if err := convertScene(main, ls, sc, sv); err != nil {
				// Broken objects are skipped; the rest of the scene loads.
				c.log.Warn("library scene converted with errors",
					zap.String("library", main.Path), zap.String("scene", ls.Name), zap.Error(err))
			}
			st.addProgress(step)
		}
	case GroupMesh:
		sc := newConverter(main.Name)
		if err := convertMeshes(main, sc, sv); err != nil {
			return nil, err
		}
		if st.options&LoadActions != 0 {
			convertActions(main, sc)
		}
	case GroupAction:
		convertActions(main, newConverter(main.Name))
	}
	return converters, nil
}

// MergeAsyncLoads merges every finished load into its target scene. It
// must run on the main goroutine, never during a frame update. Finish
// callbacks run after the merge, outside the lock.
func (c *Converter) MergeAsyncLoads() {
	c.merge(func(*LibLoadStatus) bool { return true })
}

func (c *Converter) merge(match func(*LibLoadStatus) bool) {
	var finished []*LibLoadStatus

	c.mu.Lock()
	kept := c.mergeQueue[:0]
	for _, st := range c.mergeQueue {
		if !match(st) {
			kept = append(kept, st)
			continue
		}
		c.mergeLocked(st)
		finished = append(finished, st)
	}
	clear(c.mergeQueue[len(kept):])
	c.mergeQueue = kept
	c.mu.Unlock()

	for _, st := range finished {
		st.finish()
	}
}

func (c *Converter) mergeLocked(st *LibLoadStatus) {
	log := c.log.With(zap.String("library", st.path), zap.Stringer("load", st.id))

	if st.discarded && st.State() != StateFailed {
		if st.main != nil {
			st.main.Free()
		}
		st.fail(ErrDiscarded)
	}
	if _, gone := c.removed[st.target]; gone && st.State() != StateFailed {
		if st.main != nil {
			st.main.Free()
		}
		st.fail(fmt.Errorf("merging into %s: %w", st.target.Name(), ErrSceneRemoved))
	}
	if st.State() == StateFailed {
		if c.status[st.path] == st {
			delete(c.status, st.path)
		}
		log.Warn("library load failed", zap.Error(st.err))
		return
	}

	target := st.target
	objects := 0
	for _, sc := range st.converters {
		objects += len(sc.Scene().Objects())
		target.MergeScene(sc.Scene())
		sc.Finalize(target)
	}
	st.converters = nil
	c.dynamic = append(c.dynamic, st.main)
	c.trackLocked(target)
	st.setState(StateMerged)

	log.Info("merged library",
		zap.String("scene", target.Name()),
		zap.String("group", string(st.group)),
		zap.Int("objects", objects),
		zap.Duration("took", st.Duration()))
}

// FinalizeAsyncLoads waits for every queued load and merges them.
func (c *Converter) FinalizeAsyncLoads() {
	c.pool.Wait()
	c.MergeAsyncLoads()
}

// FreeBlendFile frees a merged library, removing every object, clip and
// mesh it produced from the tracked scenes. Freeing twice is a logged no-op.
func (c *Converter) FreeBlendFile(m *library.Main) bool {
	if m == nil {
		return false
	}
	c.mu.Lock()
	idx := -1
	for i, d := range c.dynamic {
		if d == m {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		c.log.Warn("library not loaded", zap.String("library", m.Path))
		return false
	}
	if !m.Free() {
		c.mu.Unlock()
		c.log.Warn("library already freed", zap.String("library", m.Path))
		return false
	}
	c.dynamic = append(c.dynamic[:idx], c.dynamic[idx+1:]...)
	if st, ok := c.status[m.Path]; ok && st.main == m {
		delete(c.status, m.Path)
	}
	scenes := slices.Clone(c.scenes)
	c.mu.Unlock()

	removed := 0
	for _, s := range scenes {
		removed += s.RemoveLibrary(m.Path)
	}
	c.log.Info("freed library", zap.String("library", m.Path), zap.Int("objects", removed))
	return true
}

// FreeBlendFilePath frees the library loaded from path. A load still in
// flight is discarded when it would be merged.
func (c *Converter) FreeBlendFilePath(path string) bool {
	path = encoding.NormalizePath(path)
	if m, ok := c.MainDynamicPath(path); ok {
		return c.FreeBlendFile(m)
	}

	c.mu.Lock()
	st, ok := c.status[path]
	if ok && st.State() != StateMerged {
		st.discarded = true
		delete(c.status, path)
	}
	c.mu.Unlock()
	if !ok {
		c.log.Warn("library not loaded", zap.String("library", path))
		return false
	}
	c.log.Info("discarding library load", zap.String("library", path))
	return true
}

// Reload frees the library at path and links it again with the group,
// target and options of its last load. A file that no longer parses leaves
// the loaded library in place.
func (c *Converter) Reload(path string) (*LibLoadStatus, error) {
	st, ok := c.Status(path)
	if !ok || st.State() != StateMerged {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, path)
	}
	if st.source.Data == nil {
		if _, err := st.source.Load(library.Options{Encoding: c.cfg.TextEncoding}); err != nil {
			return nil, err
		}
	}
	c.FreeBlendFilePath(path)
	return c.LinkBlendFile(st.source, st.group, st.target, st.options)
}
