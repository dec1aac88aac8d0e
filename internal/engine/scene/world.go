package scene

import (
	"github.com/Faultbox/ketsji/pkg/library"
)

// World holds the scene-wide parameters animated by world channels, such
// as mist and ambient color.
type World struct {
	params library.Params
}

// NewWorld returns empty world settings.
func NewWorld() *World {
	return &World{params: library.Params{}}
}

// Load replaces the parameters with a copy of authored ones.
func (w *World) Load(p library.Params) {
	w.params = p.Clone()
	if w.params == nil {
		w.params = library.Params{}
	}
}

// Param returns the value of a parameter.
func (w *World) Param(name string) ([]float64, bool) {
	v, ok := w.params[name]
	return v, ok
}

// SetParameter implements action.ParameterSink.
func (w *World) SetParameter(path string, index int, value float64) {
	if index < 0 {
		return
	}
	v := w.params[path]
	for len(v) <= index {
		v = append(v, 0)
	}
	v[index] = value
	w.params[path] = v
}
