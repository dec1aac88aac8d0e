package action

import (
	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/logger"
	"github.com/Faultbox/ketsji/pkg/library"
)

// Manager holds the action layers of one object. The number of layers is
// fixed at construction; slots are filled lazily.
type Manager struct {
	target Target
	env    Environment
	log    *zap.Logger
	layers []*Action
}

// NewManager returns a manager with layers slots, or MaxLayers when layers
// is not positive.
func NewManager(target Target, env Environment, layers int) *Manager {
	if layers <= 0 {
		layers = MaxLayers
	}
	l := env.Logger
	if l == nil {
		l = logger.Named("action")
	}
	env.Logger = l
	return &Manager{
		target: target,
		env:    env,
		log:    l,
		layers: make([]*Action, layers),
	}
}

// Layers returns the number of layer slots.
func (m *Manager) Layers() int { return len(m.layers) }

func (m *Manager) valid(layer int) bool {
	if layer < 0 || layer >= len(m.layers) {
		m.log.Warn("action layer out of range",
			zap.Error(ErrInvalidLayer),
			zap.Int("layer", layer),
			zap.Int("layers", len(m.layers)),
			zap.String("object", m.target.Name()))
		return false
	}
	return true
}

// Action returns the action on layer, or nil when the slot is empty or the
// layer is out of range.
func (m *Manager) Action(layer int) *Action {
	if layer < 0 || layer >= len(m.layers) {
		return nil
	}
	return m.layers[layer]
}

// Play starts clip name on layer. See Action.Play for the result.
func (m *Manager) Play(layer int, name string, p PlayParams, clock ClockContext) bool {
	if !m.valid(layer) {
		return false
	}
	a := m.layers[layer]
	if a == nil {
		a = New(m.target, m.env)
		m.layers[layer] = a
	}
	return a.Play(name, p, clock)
}

// Stop makes layer idle.
func (m *Manager) Stop(layer int) {
	if !m.valid(layer) {
		return
	}
	if a := m.layers[layer]; a != nil {
		a.Stop()
	}
}

// IsDone reports whether layer is idle. Empty slots are idle.
func (m *Manager) IsDone(layer int) bool {
	if a := m.Action(layer); a != nil {
		return a.IsDone()
	}
	return true
}

// Frame returns the local frame of layer.
func (m *Manager) Frame(layer int) float64 {
	if a := m.Action(layer); a != nil {
		return a.Frame()
	}
	return 0
}

// Name returns the clip playing on layer.
func (m *Manager) Name(layer int) string {
	if a := m.Action(layer); a != nil {
		return a.Name()
	}
	return ""
}

// Clip returns the clip playing on layer.
func (m *Manager) Clip(layer int) *library.Action {
	if a := m.Action(layer); a != nil {
		return a.Clip()
	}
	return nil
}

// SetFrame moves the local frame of layer.
func (m *Manager) SetFrame(layer int, frame float64) {
	if !m.valid(layer) {
		return
	}
	if a := m.layers[layer]; a != nil {
		a.SetFrame(frame)
	}
}

// SetPlayMode changes the play mode of layer.
func (m *Manager) SetPlayMode(layer int, mode PlayMode) {
	if !m.valid(layer) {
		return
	}
	if a := m.layers[layer]; a != nil {
		a.SetPlayMode(mode)
	}
}

// RemoveTaggedActions stops every layer whose clip matches tagged. It is
// used when the library owning a clip goes away.
func (m *Manager) RemoveTaggedActions(tagged func(*library.Action) bool) int {
	n := 0
	for _, a := range m.layers {
		if a != nil && a.Clip() != nil && tagged(a.Clip()) {
			a.Stop()
			n++
		}
	}
	return n
}

// IsActive reports whether any layer is playing.
func (m *Manager) IsActive() bool {
	for _, a := range m.layers {
		if a != nil && !a.IsDone() {
			return true
		}
	}
	return false
}

// Update advances every layer.
func (m *Manager) Update(clock ClockContext, applyToObject bool) {
	for _, a := range m.layers {
		if a != nil {
			a.Update(clock, applyToObject)
		}
	}
}

// UpdateIPOs applies pending frames and tears down finished layers.
func (m *Manager) UpdateIPOs() {
	for _, a := range m.layers {
		if a != nil {
			a.UpdateIPOs()
		}
	}
}
