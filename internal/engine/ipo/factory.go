// Package ipo builds the scene-graph controllers that evaluate animation
// clips: one transform controller per object and parameter controllers for
// world, object color, material, light and camera channels.
package ipo

import (
	"strings"

	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/engine/scenegraph"
	"github.com/Faultbox/ketsji/pkg/library"
	"github.com/Faultbox/ketsji/pkg/math"
)

// Channel paths of the transform group.
const (
	PathLocation      = "location"
	PathRotationEuler = "rotation_euler"
	PathRotationQuat  = "rotation_quaternion"
	PathScale         = "scale"
)

// Parameter path prefixes. Material channels may target one material with
// "material[Name].param".
const (
	PrefixWorld    = "world."
	PrefixColor    = "color"
	PrefixMaterial = "material"
	PrefixLight    = "light."
	PrefixCamera   = "camera."
)

// ForceReceiver is implemented by targets that accept animated location as
// a physics force.
type ForceReceiver interface {
	ApplyForce(force math.Vec3, local bool)
}

// Named is implemented by sinks that can be addressed individually.
type Named interface {
	Name() string
}

// Factory implements action.ControllerFactory.
type Factory struct{}

// NewFactory returns a controller factory.
func NewFactory() *Factory { return &Factory{} }

// CreateController returns the controller for group, or nil when clip has
// no channels for it.
func (f *Factory) CreateController(group action.ChannelGroup, clip *library.Action, target action.Target, sink action.ParameterSink) scenegraph.Controller {
	if clip == nil {
		return nil
	}
	if group == action.GroupTransform {
		c := newTransformController(clip, target)
		if c == nil {
			return nil
		}
		return c
	}
	if sink == nil {
		return nil
	}
	channels := parameterChannels(group, clip, sink)
	if len(channels) == 0 {
		return nil
	}
	return &ParameterController{group: group, channels: channels, sink: sink}
}

// boundChannel is a clip channel with the parameter name the sink sees.
type boundChannel struct {
	param   string
	channel *library.Channel
}

func parameterChannels(group action.ChannelGroup, clip *library.Action, sink action.ParameterSink) []boundChannel {
	var out []boundChannel
	for _, c := range clip.Channels {
		if param, ok := matchParameter(group, c.Path, sink); ok {
			out = append(out, boundChannel{param: param, channel: c})
		}
	}
	return out
}

// matchParameter maps a channel path to the parameter name for group.
func matchParameter(group action.ChannelGroup, path string, sink action.ParameterSink) (string, bool) {
	switch group {
	case action.GroupWorld:
		return strings.CutPrefix(path, PrefixWorld)
	case action.GroupObjectColor:
		return path, path == PrefixColor
	case action.GroupLight:
		return strings.CutPrefix(path, PrefixLight)
	case action.GroupCamera:
		return strings.CutPrefix(path, PrefixCamera)
	case action.GroupMaterial:
		rest, ok := strings.CutPrefix(path, PrefixMaterial)
		if !ok {
			return "", false
		}
		if param, ok := strings.CutPrefix(rest, "."); ok {
			return param, true
		}
		// material[Name].param
		if !strings.HasPrefix(rest, "[") {
			return "", false
		}
		name, param, ok := strings.Cut(rest[1:], "].")
		if !ok {
			return "", false
		}
		if n, isNamed := sink.(Named); !isNamed || n.Name() != name {
			return "", false
		}
		return param, true
	}
	return "", false
}
