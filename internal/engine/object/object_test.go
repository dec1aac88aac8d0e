package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/engine/ipo"
	"github.com/Faultbox/ketsji/internal/engine/physics"
	"github.com/Faultbox/ketsji/pkg/library"
	"github.com/Faultbox/ketsji/pkg/math"
)

type worldSink struct{ values map[string]float64 }

func (w *worldSink) SetParameter(path string, index int, value float64) { w.values[path] = value }

type host struct {
	clips map[string]*library.Action
	world action.ParameterSink
	delay float64
}

func newHost(clips ...*library.Action) *host {
	h := &host{clips: map[string]*library.Action{}, world: &worldSink{values: map[string]float64{}}}
	for _, c := range clips {
		h.clips[c.Name] = c
	}
	return h
}

func (h *host) Name() string                    { return "Scene" }
func (h *host) ActionLayers() int               { return 4 }
func (h *host) WorldSink() action.ParameterSink { return h.world }

func (h *host) ClockContext(raw action.ClockContext) action.ClockContext {
	raw.CurrentTime -= h.delay
	return raw
}

func (h *host) ActionEnvironment() action.Environment {
	return action.Environment{Clips: h, Controllers: ipo.NewFactory()}
}

func (h *host) ActionByName(name string) (*library.Action, bool) {
	a, ok := h.clips[name]
	return a, ok
}

func clip(name, path string, index int, keys ...library.Keyframe) *library.Action {
	return &library.Action{
		Name:       name,
		FrameRange: [2]float64{keys[0].Frame, keys[len(keys)-1].Frame},
		Channels:   []*library.Channel{{Path: path, Index: index, Interpolation: library.InterpLinear, Keys: keys}},
	}
}

func at(t float64) action.ClockContext { return action.ClockContext{CurrentTime: t, FrameRate: 1} }

func walk() *library.Action {
	return clip("Walk", ipo.PathLocation, 0, library.Keyframe{Frame: 1, Value: 0}, library.Keyframe{Frame: 10, Value: 9})
}

func TestNewDefaults(t *testing.T) {
	g := New("Hero", library.KindMesh)
	assert.Equal(t, "Hero", g.Name())
	assert.True(t, g.Visible())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, g.Color())
	require.NotNil(t, g.Node())
	assert.Same(t, g, g.Node().Client())
	assert.Nil(t, g.Light())
	assert.True(t, g.IsActionDone(0), "no manager means nothing plays")
	assert.Nil(t, g.ActionManager())

	assert.NotNil(t, New("Lamp", library.KindLight).Light())
	assert.NotNil(t, New("Cam", library.KindCamera).Camera())
}

func TestPlayActionMovesNode(t *testing.T) {
	g := New("Hero", library.KindMesh)
	g.SetHost(newHost(walk()))
	g.SetLocalPosition(math.Vec3{Y: 2})

	require.True(t, g.PlayAction("Walk", 0, action.DefaultPlayParams(1, 10), at(0)))
	assert.Equal(t, 4, g.ActionManager().Layers())

	g.UpdateActionManager(at(4), true)
	g.Node().UpdateTree()
	assert.InDelta(t, 5, g.ActionFrame(0), 1e-9)
	assert.Equal(t, "Walk", g.ActionName(0))
	assert.True(t, g.WorldPosition().ApproxEqual(math.Vec3{X: 4, Y: 2}, 1e-5))

	// culled: the clock advances, the pose stays
	g.UpdateActionManager(at(6), false)
	g.Node().UpdateTree()
	assert.InDelta(t, 7, g.ActionFrame(0), 1e-9)
	assert.True(t, g.WorldPosition().ApproxEqual(math.Vec3{X: 4, Y: 2}, 1e-5))

	g.UpdateActionManager(at(20), true)
	assert.True(t, g.IsActionDone(0))
	assert.Empty(t, g.Node().Controllers(), "finished actions leave no controllers")
}

func TestPlayActionWithoutHost(t *testing.T) {
	g := New("Orphan", library.KindMesh)
	assert.False(t, g.PlayAction("Walk", 0, action.DefaultPlayParams(1, 10), at(0)))
	assert.True(t, g.IsActionDone(0))
}

func TestPlayActionUsesHostTime(t *testing.T) {
	h := newHost(walk())
	h.delay = 3
	g := New("Hero", library.KindMesh)
	g.SetHost(h)

	// Played at engine time 5, which the host maps to 2.
	require.True(t, g.PlayAction("Walk", 0, action.DefaultPlayParams(1, 10), at(5)))
	g.UpdateActionManager(at(4), true)
	assert.InDelta(t, 3, g.ActionFrame(0), 1e-9)
	assert.False(t, g.IsActionDone(0))
}

func TestParameterChannels(t *testing.T) {
	blink := &library.Action{
		Name:       "Blink",
		FrameRange: [2]float64{0, 10},
		Channels: []*library.Channel{
			{Path: "color", Index: 3, Interpolation: library.InterpLinear, Keys: []library.Keyframe{{Frame: 0, Value: 1}, {Frame: 10, Value: 0}}},
			{Path: "material.alpha", Index: 0, Interpolation: library.InterpLinear, Keys: []library.Keyframe{{Frame: 0, Value: 0}, {Frame: 10, Value: 1}}},
			{Path: "world.mist", Index: 0, Interpolation: library.InterpConstant, Keys: []library.Keyframe{{Frame: 0, Value: 3}}},
		},
	}
	h := newHost(blink)
	mat := NewMaterial(&library.Material{Name: "Skin"})
	g := New("Hero", library.KindMesh)
	g.SetHost(h)
	g.AddMesh(NewMesh(&library.Mesh{Name: "Body"}, []*Material{mat}))

	require.True(t, g.PlayAction("Blink", 1, action.DefaultPlayParams(0, 10), at(0)))
	g.UpdateActionManager(at(5), true)

	assert.InDelta(t, 0.5, g.Color()[3], 1e-6)
	alpha, ok := mat.Param("alpha")
	require.True(t, ok)
	assert.InDelta(t, 0.5, alpha[0], 1e-9)
	assert.Equal(t, 3.0, h.world.(*worldSink).values["mist"])
}

func TestLightChannels(t *testing.T) {
	h := newHost(clip("Flicker", "light.energy", 0, library.Keyframe{Frame: 0, Value: 0}, library.Keyframe{Frame: 4, Value: 2}))
	lamp := New("Lamp", library.KindLight)
	lamp.SetHost(h)

	require.True(t, lamp.PlayAction("Flicker", 0, action.DefaultPlayParams(0, 4), at(0)))
	lamp.UpdateActionManager(at(2), true)
	assert.InDelta(t, 1, lamp.Light().Energy, 1e-6)

	// the same channel does nothing on a mesh
	mesh := New("Box", library.KindMesh)
	mesh.SetHost(h)
	require.True(t, mesh.PlayAction("Flicker", 0, action.DefaultPlayParams(0, 4), at(0)))
	assert.Empty(t, mesh.Node().Controllers())
}

func TestSetParentKeepsWorld(t *testing.T) {
	parent := New("Hero", library.KindMesh)
	child := New("Sword", library.KindMesh)
	parent.SetLocalPosition(math.Vec3{X: 10})
	child.SetLocalPosition(math.Vec3{X: 12, Z: 1})
	parent.Node().UpdateTree()
	child.Node().UpdateTree()

	require.True(t, child.SetParent(parent))
	assert.Same(t, parent, child.Parent())
	require.Len(t, parent.Children(), 1)
	assert.True(t, child.LocalPosition().ApproxEqual(math.Vec3{X: 2, Z: 1}, 1e-5))

	parent.Node().UpdateTree()
	assert.True(t, child.WorldPosition().ApproxEqual(math.Vec3{X: 12, Z: 1}, 1e-5))

	assert.False(t, parent.SetParent(child), "cycles are rejected")

	child.RemoveParent()
	assert.Nil(t, child.Parent())
	assert.True(t, child.LocalPosition().ApproxEqual(math.Vec3{X: 12, Z: 1}, 1e-5))
}

func TestRecursiveFlags(t *testing.T) {
	parent := New("Hero", library.KindMesh)
	child := New("Sword", library.KindMesh)
	require.True(t, child.SetParent(parent))

	parent.SetVisible(false, false)
	assert.True(t, child.Visible())
	parent.SetVisible(false, true)
	assert.False(t, child.Visible())

	parent.SetOccluder(true, true)
	assert.True(t, child.Occluder())
}

func TestPhysicsSync(t *testing.T) {
	env := physics.NewEnvironment()
	env.Gravity = math.Vec3{}

	crate := New("Crate", library.KindMesh)
	body := env.AddBody("Crate", physics.BodyDynamic, 1, math.TransformIdentity())
	require.NoError(t, crate.SetPhysicsController(body))

	crate.ApplyForce(math.Vec3{Y: 3}, false)
	env.Step(1)
	assert.True(t, crate.SyncFromPhysics())
	crate.Node().UpdateTree()
	assert.True(t, crate.WorldPosition().ApproxEqual(math.Vec3{Y: 3}, 1e-5))

	wall := New("Wall", library.KindMesh)
	static := env.AddBody("Wall", physics.BodyStatic, 1, math.TransformIdentity())
	require.NoError(t, wall.SetPhysicsController(static))
	wall.SetLocalPosition(math.Vec3{X: 5})
	wall.Node().UpdateTree()
	assert.False(t, wall.SyncFromPhysics())
	wall.UpdateTransform()
	assert.Equal(t, math.Vec3{X: 5}, static.Transform().Position)
}

func TestPhysicsControllerNeedsNode(t *testing.T) {
	env := physics.NewEnvironment()
	g := New("Crate", library.KindMesh)
	b := env.AddBody("Crate", physics.BodyStatic, 1, math.TransformIdentity())
	require.NoError(t, g.SetPhysicsController(b))

	g.Close()
	assert.True(t, b.Closed(), "controllers are destroyed with the object")
	assert.Nil(t, g.Node())
	assert.ErrorIs(t, g.SetPhysicsController(env.AddBody("x", physics.BodyStatic, 1, math.TransformIdentity())), ErrNoNode)
}

func TestCloseDetaches(t *testing.T) {
	parent := New("Hero", library.KindMesh)
	a, b := New("A", library.KindMesh), New("B", library.KindMesh)
	require.True(t, a.SetParent(parent))
	require.True(t, b.SetParent(parent))
	gfx := &CullingBounds{}
	parent.SetGraphicController(gfx)
	parent.SetHost(newHost(walk()))
	require.True(t, parent.PlayAction("Walk", 0, action.DefaultPlayParams(1, 10), at(0)))

	parent.Close()
	parent.Close()
	assert.True(t, parent.Closed())
	assert.True(t, gfx.Closed())
	assert.Nil(t, a.Parent())
	assert.Nil(t, b.Parent())
	assert.False(t, parent.PlayAction("Walk", 0, action.DefaultPlayParams(1, 10), at(1)))
}

func TestBounds(t *testing.T) {
	g := New("Hero", library.KindMesh)
	gfx := &CullingBounds{}
	g.SetGraphicController(gfx)
	assert.False(t, gfx.Bounds().Valid)

	m1 := NewMesh(&library.Mesh{Name: "A", Bounds: library.Bounds{Min: [3]float32{-1, -1, 0}, Max: [3]float32{1, 1, 2}}}, nil)
	m2 := NewMesh(&library.Mesh{Name: "B", Bounds: library.Bounds{Min: [3]float32{0, 0, -3}, Max: [3]float32{4, 1, 0}}}, nil)
	g.AddMesh(m1)
	g.AddMesh(m2)
	g.AddMesh(m1)
	assert.Len(t, g.Meshes(), 2)
	assert.Equal(t, math.Vec3{X: -1, Y: -1, Z: -3}, gfx.Bounds().Min)
	assert.Equal(t, math.Vec3{X: 4, Y: 1, Z: 2}, gfx.Bounds().Max)
	assert.Equal(t, math.Vec3{X: 5, Y: 2, Z: 5}, g.Bounds().Size())

	g.ReplaceMesh(m2)
	assert.Equal(t, []*Mesh{m2}, g.Meshes())
	g.RemoveMeshes()
	assert.False(t, g.Bounds().Valid)
}

func TestMeshReplaceScene(t *testing.T) {
	mat := NewMaterial(&library.Material{Name: "Steel", Params: library.Params{"roughness": {0.2}}})
	m := NewMesh(&library.Mesh{Name: "Blade"}, []*Material{mat})
	h := newHost()
	m.ReplaceScene(h)
	assert.Same(t, h, m.Scene())
	assert.Same(t, h, mat.Scene())

	mat.SetParameter("diffuse_color", 2, 0.5)
	v, _ := mat.Param("diffuse_color")
	assert.Equal(t, []float64{0, 0, 0.5}, v)
}
