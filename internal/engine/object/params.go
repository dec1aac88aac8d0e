package object

import (
	"github.com/Faultbox/ketsji/pkg/library"
	"github.com/Faultbox/ketsji/pkg/math"
)

// LightData holds the animatable parameters of a lamp.
type LightData struct {
	Type     string
	Energy   float32
	Color    [3]float32
	Distance float32
}

// LightFromLibrary copies lamp parameters.
func LightFromLibrary(l *library.Light) *LightData {
	if l == nil {
		return nil
	}
	return &LightData{Type: l.Type, Energy: l.Energy, Color: l.Color, Distance: l.Distance}
}

// SetParameter implements action.ParameterSink.
func (l *LightData) SetParameter(path string, index int, value float64) {
	switch path {
	case "energy":
		l.Energy = float32(value)
	case "distance":
		l.Distance = float32(value)
	case "color":
		if index >= 0 && index < 3 {
			l.Color[index] = float32(value)
		}
	}
}

// CameraData holds the animatable parameters of a camera.
type CameraData struct {
	Lens      float32
	ClipStart float32
	ClipEnd   float32
}

// CameraFromLibrary copies camera parameters.
func CameraFromLibrary(c *library.Camera) *CameraData {
	if c == nil {
		return nil
	}
	return &CameraData{Lens: c.Lens, ClipStart: c.ClipStart, ClipEnd: c.ClipEnd}
}

// SetParameter implements action.ParameterSink.
func (c *CameraData) SetParameter(path string, index int, value float64) {
	switch path {
	case "lens":
		c.Lens = float32(value)
	case "clip_start":
		c.ClipStart = float32(value)
	case "clip_end":
		c.ClipEnd = float32(value)
	}
}

// colorSink writes the object color channel.
type colorSink struct {
	g *GameObject
}

func (s colorSink) SetParameter(path string, index int, value float64) {
	if index >= 0 && index < 4 {
		s.g.color[index] = float32(value)
	}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
	Valid    bool
}

// AABBFromLibrary converts authored bounds.
func AABBFromLibrary(b library.Bounds) AABB {
	return AABB{Min: math.Vec3FromArray(b.Min), Max: math.Vec3FromArray(b.Max), Valid: true}
}

// Union returns the box enclosing a and b.
func (a AABB) Union(b AABB) AABB {
	switch {
	case !b.Valid:
		return a
	case !a.Valid:
		return b
	}
	return AABB{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max), Valid: true}
}

// Size returns the box extent.
func (a AABB) Size() math.Vec3 {
	if !a.Valid {
		return math.Vec3{}
	}
	return a.Max.Sub(a.Min)
}

// CullingBounds is the default graphic controller: it keeps the bounds
// the culling pass tests against.
type CullingBounds struct {
	bounds AABB
	closed bool
}

// SetBounds implements GraphicController.
func (c *CullingBounds) SetBounds(b AABB) { c.bounds = b }

// Bounds returns the last bounds set.
func (c *CullingBounds) Bounds() AABB { return c.bounds }

// Clone implements GraphicController.
func (c *CullingBounds) Clone() GraphicController {
	return &CullingBounds{bounds: c.bounds}
}

// Close implements GraphicController.
func (c *CullingBounds) Close() { c.closed = true }

// Closed reports whether Close was called.
func (c *CullingBounds) Closed() bool { return c.closed }

// SetLight replaces the lamp parameters.
func (g *GameObject) SetLight(l *LightData) { g.light = l }

// SetCamera replaces the camera parameters.
func (g *GameObject) SetCamera(c *CameraData) { g.camera = c }
