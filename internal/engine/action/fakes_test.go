package action

import (
	"github.com/Faultbox/ketsji/internal/engine/scenegraph"
	"github.com/Faultbox/ketsji/pkg/library"
)

type fakeSink struct {
	name   string
	values map[string]float64
}

func (s *fakeSink) SetParameter(path string, index int, value float64) {
	if s.values == nil {
		s.values = map[string]float64{}
	}
	s.values[path] = value
}

type fakeTarget struct {
	name    string
	kind    library.ObjectKind
	node    *scenegraph.Node
	sinks   map[ChannelGroup][]ParameterSink
	pushed  []float64
	recurse []bool
}

func newFakeTarget(name string) *fakeTarget {
	t := &fakeTarget{name: name, kind: library.KindMesh, sinks: map[ChannelGroup][]ParameterSink{}}
	t.node = scenegraph.New(t)
	return t
}

func (t *fakeTarget) Name() string             { return t.name }
func (t *fakeTarget) Node() *scenegraph.Node   { return t.node }
func (t *fakeTarget) Kind() library.ObjectKind { return t.kind }

func (t *fakeTarget) ParameterSinks(g ChannelGroup) []ParameterSink { return t.sinks[g] }

func (t *fakeTarget) UpdateIPO(frame float64, recurse bool) {
	t.pushed = append(t.pushed, frame)
	t.recurse = append(t.recurse, recurse)
	t.node.SetSimulatedTime(frame, recurse)
}

type fakeController struct {
	group    ChannelGroup
	node     *scenegraph.Node
	attached int
	detached int
	options  map[scenegraph.Option]bool
	frames   []float64
}

func (c *fakeController) SetNode(n *scenegraph.Node) {
	if n == nil {
		c.detached++
	} else {
		c.attached++
	}
	c.node = n
}

func (c *fakeController) SetOption(opt scenegraph.Option, v bool) { c.options[opt] = v }
func (c *fakeController) SetSimulatedTime(frame float64)          { c.frames = append(c.frames, frame) }
func (c *fakeController) Update() bool                            { return true }

var groupPrefix = map[ChannelGroup]string{
	GroupWorld:       "world.",
	GroupObjectColor: "color",
	GroupMaterial:    "material.",
	GroupLight:       "light.",
	GroupCamera:      "camera.",
}

type fakeFactory struct {
	created []*fakeController
}

func (f *fakeFactory) CreateController(g ChannelGroup, clip *library.Action, _ Target, _ ParameterSink) scenegraph.Controller {
	if g != GroupTransform && !clip.HasPrefix(groupPrefix[g]) {
		return nil
	}
	c := &fakeController{group: g, options: map[scenegraph.Option]bool{}}
	f.created = append(f.created, c)
	return c
}

func (f *fakeFactory) count(g ChannelGroup) int {
	n := 0
	for _, c := range f.created {
		if c.group == g {
			n++
		}
	}
	return n
}

type clipSet map[string]*library.Action

func (s clipSet) ActionByName(name string) (*library.Action, bool) {
	a, ok := s[name]
	return a, ok
}

func clip(name string, paths ...string) *library.Action {
	a := &library.Action{Name: name}
	for _, p := range paths {
		a.Channels = append(a.Channels, &library.Channel{
			Path: p,
			Keys: []library.Keyframe{{Frame: 1, Value: 0}, {Frame: 10, Value: 1}},
		})
	}
	return a
}

type countingHook struct {
	calls  int
	frames []float64
}

func (h *countingHook) UpdateMaterials(_ Target, frame float64) {
	h.calls++
	h.frames = append(h.frames, frame)
}

func testEnv(clips ...*library.Action) (Environment, *fakeFactory) {
	set := clipSet{}
	for _, c := range clips {
		set[c.Name] = c
	}
	f := &fakeFactory{}
	return Environment{Clips: set, Controllers: f}, f
}

func at(t float64) ClockContext {
	return ClockContext{CurrentTime: t, FrameRate: 1}
}

