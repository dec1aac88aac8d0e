// Package action implements per-object layered animation playback.
//
// An Action plays one clip on one layer. It advances a local frame from an
// explicit clock, creates the scene-graph controllers that evaluate the clip
// and hands the current frame to its target when asked to apply. A Manager
// holds a fixed number of layers per object.
package action

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/engine/scenegraph"
	"github.com/Faultbox/ketsji/pkg/library"
)

// MaxLayers is the default number of action layers per object.
const MaxLayers = 8

// ErrInvalidLayer is reported for layer indices outside the manager's range.
var ErrInvalidLayer = errors.New("invalid action layer")

// PlayMode selects what happens when the local frame reaches the end.
type PlayMode int

// Play modes.
const (
	PlayOnce PlayMode = iota
	Loop
	PingPong
)

func (m PlayMode) String() string {
	switch m {
	case PlayOnce:
		return "play"
	case Loop:
		return "loop"
	case PingPong:
		return "ping_pong"
	}
	return "unknown"
}

// ParsePlayMode converts a play mode name. Unknown names map to PlayOnce.
func ParsePlayMode(s string) PlayMode {
	switch s {
	case "loop":
		return Loop
	case "ping_pong", "pingpong":
		return PingPong
	}
	return PlayOnce
}

// BlendMode selects how a layer combines with the layers below it.
type BlendMode int

// Blend modes.
const (
	BlendMix BlendMode = iota
	BlendAdd
)

// IpoFlags tune how the transform controllers apply animated values.
type IpoFlags uint8

// IPO flags.
const (
	IpoForce IpoFlags = 1 << iota // apply location as a physics force
	IpoLocal                      // force and additive values in local space
	IpoAdd                        // add on top of the pose at play time
	IpoChild                      // also evaluate the children's controllers
)

// ClockContext carries the time an update runs at.
// CurrentTime is in seconds, FrameRate in animation frames per second.
type ClockContext struct {
	CurrentTime float64
	FrameRate   float64
}

// ChannelGroup partitions the properties a clip can animate. Each group is
// served by its own controller.
type ChannelGroup int

// Channel groups.
const (
	GroupTransform ChannelGroup = iota
	GroupWorld
	GroupObjectColor
	GroupMaterial
	GroupLight
	GroupCamera
)

func (g ChannelGroup) String() string {
	switch g {
	case GroupTransform:
		return "transform"
	case GroupWorld:
		return "world"
	case GroupObjectColor:
		return "object_color"
	case GroupMaterial:
		return "material"
	case GroupLight:
		return "light"
	case GroupCamera:
		return "camera"
	}
	return "unknown"
}

// ParameterSink receives animated parameter values.
type ParameterSink interface {
	SetParameter(path string, index int, value float64)
}

// Target is the object an action animates. Actions keep it as a non-owning
// back reference.
type Target interface {
	Name() string
	Node() *scenegraph.Node
	Kind() library.ObjectKind
	// ParameterSinks returns the sinks animated for group. The transform
	// group has none; it works on the node.
	ParameterSinks(group ChannelGroup) []ParameterSink
	// UpdateIPO pushes frame to the scene-graph controllers of the target,
	// and of its children when recurse is set.
	UpdateIPO(frame float64, recurse bool)
}

// ClipResolver finds clips by name, usually the scene's action registry.
type ClipResolver interface {
	ActionByName(name string) (*library.Action, bool)
}

// ControllerFactory builds the scene-graph controller evaluating one group
// of clip on target. It returns nil when the clip does not animate the group.
type ControllerFactory interface {
	CreateController(group ChannelGroup, clip *library.Action, target Target, sink ParameterSink) scenegraph.Controller
}

// MaterialUpdateHook runs once per applied update, before the pose is
// pushed to the target.
type MaterialUpdateHook interface {
	UpdateMaterials(target Target, frame float64)
}

// Environment bundles the collaborators an action needs.
type Environment struct {
	Clips       ClipResolver
	Controllers ControllerFactory
	Hook        MaterialUpdateHook
	Logger      *zap.Logger
}

// PlayParams are the arguments of a play request.
type PlayParams struct {
	Start, End  float64
	Priority    int // higher wins
	BlendIn     float64
	Mode        PlayMode
	LayerWeight float64
	IpoFlags    IpoFlags
	Speed       float64
	BlendMode   BlendMode
}

// DefaultPlayParams returns parameters playing start..end once at normal speed.
func DefaultPlayParams(start, end float64) PlayParams {
	return PlayParams{Start: start, End: end, Speed: 1}
}
