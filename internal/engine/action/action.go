package action

import (
	stdmath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/engine/scenegraph"
	"github.com/Faultbox/ketsji/internal/logger"
	"github.com/Faultbox/ketsji/pkg/library"
	"github.com/Faultbox/ketsji/pkg/math"
)

// Action plays one clip on one layer of a target.
//
// A fresh Action is idle (done). Play moves it to playing; it stays there
// for looping modes and returns to done when a PlayOnce clip reaches its end
// or Stop is called. Controllers created by Play are torn down lazily by the
// UpdateIPOs call following the transition to done.
type Action struct {
	target Target
	env    Environment
	log    *zap.Logger

	clip *library.Action

	start, end  float64
	localFrame  float64
	priority    int
	mode        PlayMode
	blendIn     float64
	blendFrame  float64
	blendStart  float64
	layerWeight float64
	blendMode   BlendMode
	ipoFlags    IpoFlags
	speed       float64

	startTime  float64
	prevUpdate float64

	controllers []scenegraph.Controller

	done            bool
	appliedToObject bool
	pendingApply    bool
	calcLocalTime   bool
}

// New returns an idle action for target.
func New(target Target, env Environment) *Action {
	l := env.Logger
	if l == nil {
		l = logger.Named("action")
	}
	return &Action{
		target:        target,
		env:           env,
		log:           l,
		done:          true,
		calcLocalTime: true,
		prevUpdate:    -1,
		speed:         1,
	}
}

// Play starts clip name with the given parameters at clock time.
//
// It reports false without changing anything when a clip with strictly
// higher priority is still playing, or when the request repeats the running
// one (same clip, start, end, priority and speed). It also reports false,
// leaving the action done, when the clip cannot be resolved.
func (a *Action) Play(name string, p PlayParams, clock ClockContext) bool {
	if !a.done && p.Priority < a.priority {
		return false
	}
	if !a.done && a.clip != nil && a.clip.Name == name &&
		a.start == p.Start && a.end == p.End &&
		a.priority == p.Priority && a.speed == p.Speed {
		return false
	}

	a.clearControllers()

	clip, ok := a.resolve(name)
	if !ok {
		a.log.Warn("action not found", zap.String("action", name), zap.String("object", a.target.Name()))
		a.clip = nil
		a.done = true
		return false
	}
	a.clip = clip
	a.priority = p.Priority
	a.ipoFlags = p.IpoFlags

	a.createControllers()

	a.start = p.Start
	a.end = p.End
	a.localFrame = p.Start
	a.mode = p.Mode
	a.blendIn = p.BlendIn
	a.blendFrame = 0
	a.blendStart = clock.CurrentTime
	a.layerWeight = p.LayerWeight
	a.blendMode = p.BlendMode
	a.speed = p.Speed
	a.startTime = clock.CurrentTime

	a.done = false
	a.appliedToObject = false
	a.pendingApply = false
	a.calcLocalTime = true
	a.prevUpdate = -1

	a.log.Debug("action started",
		zap.String("action", name),
		zap.String("object", a.target.Name()),
		zap.Float64("start", p.Start),
		zap.Float64("end", p.End),
		zap.Stringer("mode", p.Mode),
		zap.Int("controllers", len(a.controllers)))
	return true
}

func (a *Action) resolve(name string) (*library.Action, bool) {
	if a.env.Clips == nil {
		return nil, false
	}
	return a.env.Clips.ActionByName(name)
}

// createControllers offers every channel group to the factory and attaches
// what it returns to the target's node.
func (a *Action) createControllers() {
	if a.env.Controllers == nil {
		return
	}
	a.addController(GroupTransform, nil)
	for _, group := range []ChannelGroup{GroupWorld, GroupObjectColor, GroupMaterial} {
		for _, sink := range a.target.ParameterSinks(group) {
			a.addController(group, sink)
		}
	}
	switch a.target.Kind() {
	case library.KindLight:
		for _, sink := range a.target.ParameterSinks(GroupLight) {
			a.addController(GroupLight, sink)
		}
	case library.KindCamera:
		for _, sink := range a.target.ParameterSinks(GroupCamera) {
			a.addController(GroupCamera, sink)
		}
	}
}

func (a *Action) addController(group ChannelGroup, sink ParameterSink) {
	node := a.target.Node()
	if node == nil {
		return
	}
	c := a.env.Controllers.CreateController(group, a.clip, a.target, sink)
	if c == nil {
		return
	}
	c.SetOption(scenegraph.OptionReset, true)
	c.SetOption(scenegraph.OptionIpoAsForce, a.ipoFlags&IpoForce != 0)
	c.SetOption(scenegraph.OptionIpoAdd, a.ipoFlags&IpoAdd != 0)
	c.SetOption(scenegraph.OptionLocal, a.ipoFlags&IpoLocal != 0)
	node.AddController(c)
	a.controllers = append(a.controllers, c)
}

func (a *Action) clearControllers() {
	if node := a.target.Node(); node != nil {
		for _, c := range a.controllers {
			node.RemoveController(c)
		}
	}
	a.controllers = nil
}

// Update advances the local frame to clock time. With applyToObject false
// only the clock advances; otherwise the frame is queued for the next
// UpdateIPOs.
func (a *Action) Update(clock ClockContext, applyToObject bool) {
	if a.clip == nil {
		return
	}
	if (a.done || a.prevUpdate == clock.CurrentTime) && a.appliedToObject == applyToObject {
		return
	}
	a.prevUpdate = clock.CurrentTime

	if a.calcLocalTime {
		a.setLocalTime(clock)
	} else {
		a.resetStartTime(clock)
		a.calcLocalTime = true
	}

	a.handleBoundary(clock)

	if a.blendIn > 0 && a.blendFrame < a.blendIn {
		a.incrementBlending(clock)
	}

	a.appliedToObject = applyToObject
	if !applyToObject {
		return
	}
	if a.env.Hook != nil {
		a.env.Hook.UpdateMaterials(a.target, a.localFrame)
	}
	a.pendingApply = true
}

// direction is +1 when start <= end and -1 otherwise.
func (a *Action) direction() float64 {
	if a.end < a.start {
		return -1
	}
	return 1
}

func (a *Action) setLocalTime(clock ClockContext) {
	dt := (clock.CurrentTime - a.startTime) * clock.FrameRate * a.speed
	a.localFrame = a.start + a.direction()*dt
}

// resetStartTime rebases the start time so that integration continues from
// a frame set with SetFrame.
func (a *Action) resetStartTime(clock ClockContext) {
	a.rebase(clock, (a.localFrame-a.start)*a.direction())
	a.setLocalTime(clock)
}

// rebase moves the start time so that the current time maps to progress
// frames past start.
func (a *Action) rebase(clock ClockContext, progress float64) {
	rate := clock.FrameRate * a.speed
	if rate == 0 {
		a.startTime = clock.CurrentTime
		return
	}
	a.startTime = clock.CurrentTime - progress/rate
}

func (a *Action) handleBoundary(clock ClockContext) {
	span := stdmath.Abs(a.end - a.start)
	progress := (a.localFrame - a.start) * a.direction()

	switch a.mode {
	case Loop:
		if progress >= 0 && progress <= span {
			return
		}
		// One cycle covers span+1 frames: the end frame is shown before
		// wrapping to start. Overshoot carries into the next cycle.
		period := span + 1
		offset := stdmath.Mod(progress, period)
		if offset < 0 {
			offset += period
		}
		a.localFrame = a.start + a.direction()*stdmath.Min(offset, span)
		a.rebase(clock, offset)
	case PingPong:
		// Leaving the range on either side lands on end and turns around,
		// so a negative speed bounces between the two ends as well.
		if progress >= 0 && progress < span {
			return
		}
		a.localFrame = a.end
		a.startTime = clock.CurrentTime
		a.start, a.end = a.end, a.start
	default:
		// Reaching end exactly is still playing; the clip finishes once
		// the clock moves past it. Any exit clamps to end.
		if progress >= 0 && progress <= span {
			return
		}
		a.localFrame = a.end
		a.done = true
	}
}

func (a *Action) incrementBlending(clock ClockContext) {
	a.blendFrame = math.Clamp((clock.CurrentTime-a.blendStart)*clock.FrameRate, 0, a.blendIn)
}

// UpdateIPOs pushes a pending frame to the target and tears the controllers
// down once the action is done.
func (a *Action) UpdateIPOs() {
	if len(a.controllers) == 0 {
		return
	}
	if a.pendingApply {
		a.target.UpdateIPO(a.localFrame, a.ipoFlags&IpoChild != 0)
		a.pendingApply = false
	}
	if a.done {
		a.clearControllers()
	}
}

// Stop makes the action idle. Its controllers are removed by the next UpdateIPOs.
func (a *Action) Stop() {
	a.done = true
	a.pendingApply = false
	a.clip = nil
}

// SetFrame moves the local frame, clamped to the clip range. The next Update
// continues from there.
func (a *Action) SetFrame(frame float64) {
	a.localFrame = math.Clamp(frame, a.start, a.end)
	a.calcLocalTime = false
}

// SetPlayMode changes the play mode of the running clip.
func (a *Action) SetPlayMode(mode PlayMode) { a.mode = mode }

// IsDone reports whether the action is idle.
func (a *Action) IsDone() bool { return a.done }

// Frame returns the local frame.
func (a *Action) Frame() float64 { return a.localFrame }

// Name returns the name of the playing clip, or "" when idle.
func (a *Action) Name() string {
	if a.clip == nil {
		return ""
	}
	return a.clip.Name
}

// Clip returns the playing clip.
func (a *Action) Clip() *library.Action { return a.clip }

// Priority returns the priority of the last accepted play request.
func (a *Action) Priority() int { return a.priority }

// Speed returns the playback speed.
func (a *Action) Speed() float64 { return a.speed }

// Mode returns the play mode.
func (a *Action) Mode() PlayMode { return a.mode }

// Range returns the current start and end frames. PingPong swaps them at
// every turn.
func (a *Action) Range() (start, end float64) { return a.start, a.end }

// LayerWeight returns the weight of this layer.
func (a *Action) LayerWeight() float64 { return a.layerWeight }

// BlendMode returns the blend mode.
func (a *Action) BlendMode() BlendMode { return a.blendMode }

// BlendWeight returns the blend-in progress in [0, 1].
func (a *Action) BlendWeight() float64 {
	if a.blendIn <= 0 {
		return 1
	}
	return a.blendFrame / a.blendIn
}

// ControllerCount returns the number of controllers the action owns.
func (a *Action) ControllerCount() int { return len(a.controllers) }
