package ipo

import (
	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/internal/engine/scenegraph"
)

// ParameterController feeds sampled channel values to a parameter sink.
// It never changes the node it is attached to.
type ParameterController struct {
	group    action.ChannelGroup
	node     *scenegraph.Node
	channels []boundChannel
	sink     action.ParameterSink
	frame    float64
}

// Group returns the channel group the controller serves.
func (c *ParameterController) Group() action.ChannelGroup { return c.group }

// SetNode implements scenegraph.Controller.
func (c *ParameterController) SetNode(n *scenegraph.Node) { c.node = n }

// SetOption implements scenegraph.Controller. Parameter channels ignore options.
func (c *ParameterController) SetOption(scenegraph.Option, bool) {}

// SetSimulatedTime implements scenegraph.Controller.
func (c *ParameterController) SetSimulatedTime(frame float64) { c.frame = frame }

// Update implements scenegraph.Controller.
func (c *ParameterController) Update() bool {
	if c.node == nil {
		return false
	}
	for _, b := range c.channels {
		c.sink.SetParameter(b.param, b.channel.Index, b.channel.Sample(c.frame))
	}
	return false
}
