package object

import (
	"github.com/Faultbox/ketsji/internal/engine/action"
	"github.com/Faultbox/ketsji/pkg/library"
)

// actionManager returns the manager, creating it on first use.
func (g *GameObject) actionManager() *action.Manager {
	if g.actions == nil {
		var env action.Environment
		layers := action.MaxLayers
		if g.host != nil {
			env = g.host.ActionEnvironment()
			layers = g.host.ActionLayers()
		}
		g.actions = action.NewManager(g, env, layers)
	}
	return g.actions
}

// ActionManager returns the manager, or nil if no action was ever played.
func (g *GameObject) ActionManager() *action.Manager { return g.actions }

// PlayAction plays the clip called name on layer. clock is the engine
// clock; the host shifts it to its own animation time.
func (g *GameObject) PlayAction(name string, layer int, p action.PlayParams, clock action.ClockContext) bool {
	if g.closed {
		return false
	}
	if g.host != nil {
		clock = g.host.ClockContext(clock)
	}
	return g.actionManager().Play(layer, name, p, clock)
}

// StopAction stops layer. Its controllers go away on the next update.
func (g *GameObject) StopAction(layer int) {
	if g.actions != nil {
		g.actions.Stop(layer)
	}
}

// ActionFrame returns the current frame of layer.
func (g *GameObject) ActionFrame(layer int) float64 {
	if g.actions == nil {
		return 0
	}
	return g.actions.Frame(layer)
}

// SetActionFrame jumps layer to frame.
func (g *GameObject) SetActionFrame(layer int, frame float64) {
	if g.actions != nil {
		g.actions.SetFrame(layer, frame)
	}
}

// IsActionDone reports whether layer has nothing left to play.
func (g *GameObject) IsActionDone(layer int) bool {
	if g.actions == nil {
		return true
	}
	return g.actions.IsDone(layer)
}

// ActionName returns the clip name playing on layer.
func (g *GameObject) ActionName(layer int) string {
	if g.actions == nil {
		return ""
	}
	return g.actions.Name(layer)
}

// SetPlayMode changes the play mode of layer.
func (g *GameObject) SetPlayMode(layer int, mode action.PlayMode) {
	if g.actions != nil {
		g.actions.SetPlayMode(layer, mode)
	}
}

// RemoveTaggedActions stops every layer whose clip matches tagged.
func (g *GameObject) RemoveTaggedActions(tagged func(*library.Action) bool) int {
	if g.actions == nil {
		return 0
	}
	return g.actions.RemoveTaggedActions(tagged)
}

// UpdateActionManager advances every layer to clock, then pushes the
// resulting poses. Both passes finish for all layers before the other starts.
func (g *GameObject) UpdateActionManager(clock action.ClockContext, applyToObject bool) {
	if g.actions == nil {
		return
	}
	g.actions.Update(clock, applyToObject)
	g.actions.UpdateIPOs()
}

// ParameterSinks implements action.Target.
func (g *GameObject) ParameterSinks(group action.ChannelGroup) []action.ParameterSink {
	switch group {
	case action.GroupWorld:
		if g.host != nil {
			if s := g.host.WorldSink(); s != nil {
				return []action.ParameterSink{s}
			}
		}
	case action.GroupObjectColor:
		return []action.ParameterSink{colorSink{g}}
	case action.GroupMaterial:
		var out []action.ParameterSink
		seen := map[*Material]bool{}
		for _, m := range g.meshes {
			for _, mat := range m.Materials() {
				if !seen[mat] {
					seen[mat] = true
					out = append(out, mat)
				}
			}
		}
		return out
	case action.GroupLight:
		if g.light != nil {
			return []action.ParameterSink{g.light}
		}
	case action.GroupCamera:
		if g.camera != nil {
			return []action.ParameterSink{g.camera}
		}
	}
	return nil
}

// UpdateIPO implements action.Target.
func (g *GameObject) UpdateIPO(frame float64, recurse bool) {
	if g.node != nil {
		g.node.SetSimulatedTime(frame, recurse)
	}
}
