package converter

import (
	stdmath "math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Faultbox/ketsji/internal/engine/scene"
	"github.com/Faultbox/ketsji/pkg/library"
)

// LoadState is the life cycle stage of a library load.
type LoadState int32

const (
	StateQueued LoadState = iota
	StateLoading
	StateCompleted
	StateMerged
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateLoading:
		return "loading"
	case StateCompleted:
		return "completed"
	case StateMerged:
		return "merged"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// LibLoadStatus tracks one library load. State and progress may be read at
// any time; the other results are stable once Done is closed.
type LibLoadStatus struct {
	id      uuid.UUID
	path    string
	source  library.Source
	group   Group
	options Options
	target  *scene.Scene

	state    atomic.Int32
	progress atomic.Uint64 // float64 bits

	// Written by the loading goroutine before the status is queued for merge.
	err        error
	main       *library.Main
	converters []*SceneConverter
	scripts    []string
	started    time.Time
	finished   time.Time

	// Main goroutine only.
	onFinish  func(*LibLoadStatus)
	discarded bool

	done chan struct{}
}

func newStatus(src library.Source, group Group, target *scene.Scene, opts Options) *LibLoadStatus {
	return &LibLoadStatus{
		id:      uuid.New(),
		path:    src.Path,
		source:  src,
		group:   group,
		options: opts,
		target:  target,
		done:    make(chan struct{}),
	}
}

// ID returns the unique ID of the load.
func (s *LibLoadStatus) ID() uuid.UUID { return s.id }

// Path returns the normalised library path.
func (s *LibLoadStatus) Path() string { return s.path }

// Group returns what the load imports.
func (s *LibLoadStatus) Group() Group { return s.group }

// Options returns the load options.
func (s *LibLoadStatus) Options() Options { return s.options }

// Target returns the scene the load merges into.
func (s *LibLoadStatus) Target() *scene.Scene { return s.target }

// State returns the current stage.
func (s *LibLoadStatus) State() LoadState { return LoadState(s.state.Load()) }

func (s *LibLoadStatus) setState(st LoadState) { s.state.Store(int32(st)) }

// Progress returns the completed fraction in [0, 1].
func (s *LibLoadStatus) Progress() float64 {
	return stdmath.Float64frombits(s.progress.Load())
}

func (s *LibLoadStatus) addProgress(p float64) {
	for {
		old := s.progress.Load()
		next := stdmath.Min(1, stdmath.Float64frombits(old)+p)
		if s.progress.CompareAndSwap(old, stdmath.Float64bits(next)) {
			return
		}
	}
}

func (s *LibLoadStatus) setProgress(p float64) { s.progress.Store(stdmath.Float64bits(p)) }

// Err returns why the load failed.
func (s *LibLoadStatus) Err() error { return s.err }

// Main returns the loaded library, nil if the load failed.
func (s *LibLoadStatus) Main() *library.Main {
	if s.State() == StateFailed {
		return nil
	}
	return s.main
}

// Scripts returns the names of the script texts found when LoadScripts
// was requested.
func (s *LibLoadStatus) Scripts() []string { return s.scripts }

// Duration returns how long loading took.
func (s *LibLoadStatus) Duration() time.Duration {
	if s.finished.IsZero() {
		return 0
	}
	return s.finished.Sub(s.started)
}

// SetFinishCallback registers fn to run on the main goroutine once the
// load is merged or has failed. It must be set before MergeAsyncLoads.
func (s *LibLoadStatus) SetFinishCallback(fn func(*LibLoadStatus)) { s.onFinish = fn }

// Done is closed once the load is merged or has failed.
func (s *LibLoadStatus) Done() <-chan struct{} { return s.done }

func (s *LibLoadStatus) fail(err error) {
	s.err = err
	s.main = nil
	s.converters = nil
	s.finished = time.Now()
	s.setState(StateFailed)
}

func (s *LibLoadStatus) complete(main *library.Main, converters []*SceneConverter) {
	s.main = main
	s.converters = converters
	s.finished = time.Now()
	s.setProgress(1)
	s.setState(StateCompleted)
}

// finish runs the callback and releases waiters.
func (s *LibLoadStatus) finish() {
	if s.onFinish != nil {
		s.onFinish(s)
	}
	close(s.done)
}
