package library

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Interpolation selects how a channel is evaluated between keys.
type Interpolation string

// Interpolation modes.
const (
	InterpLinear   Interpolation = "linear"
	InterpConstant Interpolation = "constant"
)

// Keyframe is one (frame, value) pair. In YAML it is written as [frame, value].
type Keyframe struct {
	Frame float64
	Value float64
}

// UnmarshalYAML accepts [frame, value] or {frame: f, value: v}.
func (k *Keyframe) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var pair []float64
		if err := value.Decode(&pair); err != nil {
			return fmt.Errorf("line %d: keyframe: %w", value.Line, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: keyframe needs [frame, value], got %d numbers", value.Line, len(pair))
		}
		k.Frame, k.Value = pair[0], pair[1]
		return nil
	case yaml.MappingNode:
		var kv struct {
			Frame float64 `yaml:"frame"`
			Value float64 `yaml:"value"`
		}
		if err := value.Decode(&kv); err != nil {
			return fmt.Errorf("line %d: keyframe: %w", value.Line, err)
		}
		k.Frame, k.Value = kv.Frame, kv.Value
		return nil
	}
	return fmt.Errorf("line %d: keyframe must be a list or a mapping", value.Line)
}

// MarshalYAML writes the keyframe in its compact form.
func (k Keyframe) MarshalYAML() (any, error) {
	return []float64{k.Frame, k.Value}, nil
}

// Channel animates one component of one property.
// Path names the property ("location", "color", "material.diffuse_color",
// "world.mist_start", ...); Index picks the vector component.
type Channel struct {
	Path          string        `yaml:"path"`
	Index         int           `yaml:"index,omitempty"`
	Interpolation Interpolation `yaml:"interpolation,omitempty"`
	Keys          []Keyframe    `yaml:"keys"`
}

// Sample evaluates the channel at frame. Frames outside the key range hold
// the nearest key value.
func (c *Channel) Sample(frame float64) float64 {
	if len(c.Keys) == 0 {
		return 0
	}
	if len(c.Keys) == 1 {
		return c.Keys[0].Value
	}

	var prev, next int
	for i := range c.Keys {
		if c.Keys[i].Frame > frame {
			next = i
			break
		}
		prev = i
		next = i
	}

	// Before the first key or at/after the last one.
	if prev == next {
		return c.Keys[prev].Value
	}

	k0, k1 := c.Keys[prev], c.Keys[next]
	if c.Interpolation == InterpConstant || k1.Frame == k0.Frame {
		return k0.Value
	}
	t := (frame - k0.Frame) / (k1.Frame - k0.Frame)
	return k0.Value + t*(k1.Value-k0.Value)
}

// Action is an animation clip: a named set of channels.
type Action struct {
	ID         ID         `yaml:"-"`
	Name       string     `yaml:"name"`
	FrameRange [2]float64 `yaml:"frame_range,omitempty"`
	Channels   []*Channel `yaml:"channels"`
}

// HasPath reports whether any channel animates path.
func (a *Action) HasPath(path string) bool {
	for _, c := range a.Channels {
		if c.Path == path {
			return true
		}
	}
	return false
}

// HasPrefix reports whether any channel path starts with prefix.
func (a *Action) HasPrefix(prefix string) bool {
	for _, c := range a.Channels {
		if strings.HasPrefix(c.Path, prefix) {
			return true
		}
	}
	return false
}

// ChannelsWithPrefix returns the channels whose path starts with prefix.
func (a *Action) ChannelsWithPrefix(prefix string) []*Channel {
	var out []*Channel
	for _, c := range a.Channels {
		if strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Channel returns the channel for path and index, or nil.
func (a *Action) Channel(path string, index int) *Channel {
	for _, c := range a.Channels {
		if c.Path == path && c.Index == index {
			return c
		}
	}
	return nil
}

// prepare sorts keys and derives the frame range when it was not authored.
func (a *Action) prepare() {
	first, last := 0.0, 0.0
	seen := false
	for _, c := range a.Channels {
		if c.Interpolation == "" {
			c.Interpolation = InterpLinear
		}
		slices.SortStableFunc(c.Keys, func(x, y Keyframe) int {
			switch {
			case x.Frame < y.Frame:
				return -1
			case x.Frame > y.Frame:
				return 1
			}
			return 0
		})
		if len(c.Keys) == 0 {
			continue
		}
		if !seen || c.Keys[0].Frame < first {
			first = c.Keys[0].Frame
		}
		if !seen || c.Keys[len(c.Keys)-1].Frame > last {
			last = c.Keys[len(c.Keys)-1].Frame
		}
		seen = true
	}
	if a.FrameRange == [2]float64{} && seen {
		a.FrameRange = [2]float64{first, last}
	}
}
