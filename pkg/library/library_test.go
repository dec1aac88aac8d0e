package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadVillage(t *testing.T) *Main {
	t.Helper()
	m, err := ParseFile(filepath.Join("testdata", "village.yaml"), Options{})
	require.NoError(t, err)
	return m
}

func TestParseFile(t *testing.T) {
	m := loadVillage(t)

	assert.Equal(t, "village", m.Name)
	assert.Len(t, m.Scenes, 1)
	assert.Len(t, m.Objects, 6)
	assert.Len(t, m.Meshes, 3)
	assert.Len(t, m.Materials, 4)
	assert.Len(t, m.Actions, 2)

	hero, err := m.Object("Hero")
	require.NoError(t, err)
	assert.Equal(t, ID{Code: CodeObject, Name: "Hero"}, hero.ID)
	assert.Equal(t, KindMesh, hero.Kind)
	assert.Equal(t, [3]float32{1, 2, 0}, hero.Location)
	assert.Equal(t, [3]float32{1, 1, 1}, hero.ScaleOrOne())
	assert.True(t, hero.IsVisible())
	require.NotNil(t, hero.Physics)
	assert.Equal(t, "dynamic", hero.Physics.Type)

	ghost, err := m.Object("Ghost")
	require.NoError(t, err)
	assert.False(t, ghost.IsVisible())
	assert.True(t, ghost.SoftBody)

	scene, err := m.Scene("Village")
	require.NoError(t, err)
	assert.True(t, scene.LayerActive(1))
	assert.False(t, scene.LayerActive(2))
	assert.Equal(t, Param{0.2, 0.3, 0.5}, scene.World["horizon_color"])
	assert.Equal(t, Param{5}, scene.World["mist_start"])
}

func TestLookupNotFound(t *testing.T) {
	m := loadVillage(t)
	_, err := m.Action("Run")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = m.Mesh("Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActionFrameRange(t *testing.T) {
	m := loadVillage(t)

	walk, err := m.Action("Walk")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{1, 10}, walk.FrameRange)

	// Derived from keys when not authored.
	blink, err := m.Action("Blink")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{1, 9}, blink.FrameRange)
	assert.True(t, blink.HasPath("color"))
	assert.True(t, blink.HasPrefix("material."))
	assert.False(t, blink.HasPrefix("world."))
}

func TestChannelSample(t *testing.T) {
	linear := &Channel{Interpolation: InterpLinear, Keys: []Keyframe{{1, 0}, {11, 10}}}
	tests := []struct {
		frame, want float64
	}{
		{0, 0}, // before first key
		{1, 0},
		{6, 5},
		{11, 10},
		{20, 10}, // after last key
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, linear.Sample(tt.frame), 1e-9, "frame %v", tt.frame)
	}

	constant := &Channel{Interpolation: InterpConstant, Keys: []Keyframe{{1, 1}, {5, 0}, {9, 1}}}
	assert.Equal(t, 1.0, constant.Sample(4.9))
	assert.Equal(t, 0.0, constant.Sample(5))
	assert.Equal(t, 0.0, constant.Sample(8))

	assert.Equal(t, 0.0, (&Channel{}).Sample(3))
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"duplicate object": "objects:\n  - {name: A}\n  - {name: A}\n",
		"unknown mesh":     "objects:\n  - {name: A, type: mesh, mesh: M}\n",
		"unknown parent":   "objects:\n  - {name: A, parent: B}\n",
		"parent cycle":     "objects:\n  - {name: A, parent: B}\n  - {name: B, parent: A}\n",
		"unknown material": "meshes:\n  - {name: M, materials: [X]}\n",
		"bad type":         "objects:\n  - {name: A, type: blob}\n",
		"unknown field":    "objects:\n  - {name: A, colour: [1, 1, 1, 1]}\n",
		"short keyframe":   "actions:\n  - name: X\n    channels:\n      - {path: location, keys: [[1]]}\n",
		"scene object":     "scenes:\n  - {name: S, objects: [Nope]}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), name+".yaml", Options{})
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseLegacyEncoding(t *testing.T) {
	// "Café" in windows-1252
	doc := append([]byte("objects:\n  - name: Caf"), 0xE9, '\n')
	m, err := Parse(doc, "legacy.yaml", Options{Encoding: "windows-1252"})
	require.NoError(t, err)
	_, err = m.Object("Café")
	assert.NoError(t, err)
}

func TestSourceLoad(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "village.yaml"))
	require.NoError(t, err)

	m, err := Source{Path: "mem/village.yaml", Data: data}.Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "mem/village.yaml", m.Path)

	_, err = Source{Path: filepath.Join(t.TempDir(), "missing.yaml")}.Load(Options{})
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	m := loadVillage(t)
	data, err := Marshal(m)
	require.NoError(t, err)

	again, err := Parse(data, "again.yaml", Options{})
	require.NoError(t, err)
	walk, err := again.Action("Walk")
	require.NoError(t, err)
	assert.Equal(t, []Keyframe{{1, 0}, {10, 9}}, walk.Channels[0].Keys)
}

func TestRuntimeAdditionsAndFree(t *testing.T) {
	m := New("dynamic.yaml")
	require.NoError(t, m.AddAction(&Action{Name: "Spin", Channels: []*Channel{{Path: "rotation_euler", Index: 2, Keys: []Keyframe{{0, 0}, {4, 3}}}}}))
	assert.Error(t, m.AddAction(&Action{Name: "Spin"}))

	spin, err := m.Action("Spin")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{0, 4}, spin.FrameRange)

	require.NoError(t, m.AddMesh(&Mesh{Name: "Box"}))
	_, err = m.Mesh("Box")
	assert.NoError(t, err)

	assert.True(t, m.Free())
	assert.False(t, m.Free())
	assert.True(t, m.Freed())
}
