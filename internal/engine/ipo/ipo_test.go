package ipo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/engine/scenegraph"
	"github.com/Faultbox/ketsji/pkg/library"
	"github.com/Faultbox/ketsji/pkg/math"
)

type target struct {
	node   *scenegraph.Node
	forces []math.Vec3
	local  []bool
}

func newTarget() *target {
	t := &target{}
	t.node = scenegraph.New(t)
	return t
}

func (t *target) Name() string             { return "T" }
func (t *target) Node() *scenegraph.Node   { return t.node }
func (t *target) Kind() library.ObjectKind { return library.KindMesh }

func (t *target) ParameterSinks(action.ChannelGroup) []action.ParameterSink { return nil }

func (t *target) UpdateIPO(frame float64, recurse bool) { t.node.SetSimulatedTime(frame, recurse) }

func (t *target) ApplyForce(f math.Vec3, local bool) {
	t.forces = append(t.forces, f)
	t.local = append(t.local, local)
}

type sink struct {
	name   string
	values map[string]float64
}

func newSink(name string) *sink { return &sink{name: name, values: map[string]float64{}} }

func (s *sink) Name() string { return s.name }

func (s *sink) SetParameter(path string, index int, value float64) {
	s.values[path] = value
}

func linear(path string, index int, keys ...library.Keyframe) *library.Channel {
	return &library.Channel{Path: path, Index: index, Interpolation: library.InterpLinear, Keys: keys}
}

func key(frame, value float64) library.Keyframe { return library.Keyframe{Frame: frame, Value: value} }

func clipOf(channels ...*library.Channel) *library.Action {
	return &library.Action{Name: "clip", FrameRange: [2]float64{0, 10}, Channels: channels}
}

func attach(t *testing.T, tg *target, clip *library.Action, opts map[scenegraph.Option]bool) scenegraph.Controller {
	t.Helper()
	c := NewFactory().CreateController(action.GroupTransform, clip, tg, nil)
	require.NotNil(t, c)
	for o, v := range opts {
		c.SetOption(o, v)
	}
	tg.node.AddController(c)
	return c
}

func TestFactoryNoTransformChannels(t *testing.T) {
	clip := clipOf(linear("color", 0, key(0, 0)))
	assert.Nil(t, NewFactory().CreateController(action.GroupTransform, clip, newTarget(), nil))
	assert.Nil(t, NewFactory().CreateController(action.GroupWorld, clip, newTarget(), newSink("w")))
	assert.Nil(t, NewFactory().CreateController(action.GroupObjectColor, clip, newTarget(), nil), "no sink")
	assert.Nil(t, NewFactory().CreateController(action.GroupTransform, nil, newTarget(), nil))
}

func TestTransformLocation(t *testing.T) {
	tg := newTarget()
	tg.node.SetLocalPosition(math.Vec3{Y: 5})
	attach(t, tg, clipOf(linear(PathLocation, 0, key(0, 0), key(10, 10))), nil)

	tg.UpdateIPO(4, false)
	assert.Equal(t, math.Vec3{X: 4, Y: 5}, tg.node.LocalPosition(), "unanimated components are kept")
	assert.True(t, tg.node.Dirty())
}

func TestTransformAdditive(t *testing.T) {
	tg := newTarget()
	tg.node.SetLocalPosition(math.Vec3{X: 1, Y: 2, Z: 3})
	attach(t, tg, clipOf(linear(PathLocation, 2, key(0, 0), key(10, 1))),
		map[scenegraph.Option]bool{scenegraph.OptionReset: true, scenegraph.OptionIpoAdd: true})

	tg.UpdateIPO(5, false)
	assert.True(t, tg.node.LocalPosition().ApproxEqual(math.Vec3{X: 1, Y: 2, Z: 3.5}, 1e-5))

	// the base is captured once per reset
	tg.UpdateIPO(10, false)
	assert.True(t, tg.node.LocalPosition().ApproxEqual(math.Vec3{X: 1, Y: 2, Z: 4}, 1e-5))
}

func TestTransformAsForce(t *testing.T) {
	tg := newTarget()
	attach(t, tg, clipOf(linear(PathLocation, 0, key(0, 2), key(10, 2))),
		map[scenegraph.Option]bool{scenegraph.OptionIpoAsForce: true, scenegraph.OptionLocal: true})

	tg.UpdateIPO(3, false)
	require.Len(t, tg.forces, 1)
	assert.Equal(t, math.Vec3{X: 2}, tg.forces[0])
	assert.True(t, tg.local[0])
	assert.Equal(t, math.Vec3{}, tg.node.LocalPosition(), "forces do not move the node directly")
}

func TestTransformRotationAndScale(t *testing.T) {
	tg := newTarget()
	half := 1.5707963
	attach(t, tg, clipOf(
		linear(PathRotationEuler, 2, key(0, 0), key(10, half)),
		linear(PathScale, 0, key(0, 1), key(10, 3)),
	), nil)

	tg.UpdateIPO(10, false)
	want := math.QuatFromAxisAngle(math.Vec3{Z: 1}, float32(half))
	assert.True(t, tg.node.LocalOrientation().ApproxEqual(want, 1e-4))
	assert.InDelta(t, 3, tg.node.LocalScale().X, 1e-5)
	assert.InDelta(t, 1, tg.node.LocalScale().Y, 1e-5)
}

func TestTransformQuaternion(t *testing.T) {
	tg := newTarget()
	attach(t, tg, clipOf(
		linear(PathRotationQuat, 0, key(0, 0)),
		linear(PathRotationQuat, 3, key(0, 1)),
	), nil)

	tg.UpdateIPO(0, false)
	assert.True(t, tg.node.LocalOrientation().ApproxEqual(math.Quat{Z: 1}, 1e-5))
}

func TestDetachedControllerIsInert(t *testing.T) {
	tg := newTarget()
	c := attach(t, tg, clipOf(linear(PathLocation, 0, key(0, 7))), nil)
	tg.node.RemoveController(c)

	c.SetSimulatedTime(0)
	assert.False(t, c.Update())
	assert.Equal(t, math.Vec3{}, tg.node.LocalPosition())
}

func TestParameterController(t *testing.T) {
	tests := []struct {
		name  string
		group action.ChannelGroup
		path  string
		sink  string
		param string
	}{
		{"world", action.GroupWorld, "world.mist_start", "World", "mist_start"},
		{"color", action.GroupObjectColor, "color", "Hero", "color"},
		{"light", action.GroupLight, "light.energy", "Lamp", "energy"},
		{"camera", action.GroupCamera, "camera.lens", "Cam", "lens"},
		{"any material", action.GroupMaterial, "material.diffuse_color", "Skin", "diffuse_color"},
		{"named material", action.GroupMaterial, "material[Skin].alpha", "Skin", "alpha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := newTarget()
			s := newSink(tt.sink)
			c := NewFactory().CreateController(tt.group, clipOf(linear(tt.path, 0, key(0, 0), key(10, 1))), tg, s)
			require.NotNil(t, c)
			tg.node.AddController(c)
			tg.node.UpdateTree()
			require.False(t, tg.node.Dirty())

			tg.UpdateIPO(5, false)
			assert.InDelta(t, 0.5, s.values[tt.param], 1e-9)
			assert.False(t, tg.node.Dirty(), "parameter channels leave the node alone")
		})
	}
}

func TestNamedMaterialMismatch(t *testing.T) {
	clip := clipOf(linear("material[Skin].alpha", 0, key(0, 1)))
	assert.Nil(t, NewFactory().CreateController(action.GroupMaterial, clip, newTarget(), newSink("Steel")))
	assert.Nil(t, NewFactory().CreateController(action.GroupMaterial, clipOf(linear("materialx", 0)), newTarget(), newSink("Skin")))
}
