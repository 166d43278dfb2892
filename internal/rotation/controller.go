package rotation

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strider/internal/event"
	"github.com/Versifine/strider/internal/pathing"
	"github.com/Versifine/strider/internal/terrain"
)

type Mode int

const (
	Inactive Mode = iota
	PathFollow
	TargetLock
)

func (m Mode) String() string {
	switch m {
	case PathFollow:
		return "path_follow"
	case TargetLock:
		return "target_lock"
	default:
		return "inactive"
	}
}

// Agent is the entity whose view is being steered.
type Agent interface {
	Position() mgl64.Vec3
	Rotation() (yaw, pitch float32)
	SetRotation(yaw, pitch float32)
}

type Publisher interface {
	Publish(eventName string, evt any)
}

// Controller drives the agent's view one render frame at a time. It either looks
// ahead along a path or locks onto a point, never both. A Controller is not safe for
// concurrent use; every call must come from the goroutine that calls OnRender.
type Controller struct {
	agent    Agent
	blocks   terrain.BlockAccess
	events   Publisher
	rng      *rand.Rand
	settings Settings

	mode   Mode
	path   pathing.Path
	cursor int

	smoothYaw   float32
	smoothPitch float32

	session *aimSession
}

// NewController returns an inactive controller. A nil rng gets a randomly seeded one.
func NewController(agent Agent, blocks terrain.BlockAccess, rng *rand.Rand) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Controller{
		agent:    agent,
		blocks:   blocks,
		rng:      rng,
		settings: DefaultSettings(),
	}
}

func (c *Controller) SetEvents(p Publisher) {
	c.events = p
}

// Configure replaces the tuning used by sessions started afterwards. A running session
// keeps the settings it started with.
func (c *Controller) Configure(s Settings) {
	c.settings = s
}

func (c *Controller) Mode() Mode {
	return c.mode
}

func (c *Controller) Active() bool {
	return c.mode != Inactive
}

// Orientation is the smoothed view, without jitter.
func (c *Controller) Orientation() (yaw, pitch float32) {
	return c.smoothYaw, c.smoothPitch
}

func (c *Controller) Cursor() int {
	return c.cursor
}

// Follow starts looking along path from its first waypoint. A running aim session is
// dropped without invoking its callback.
func (c *Controller) Follow(path pathing.Path) {
	if path.Empty() {
		return
	}
	c.dropSession()
	c.path = path
	c.cursor = 0
	c.seedFromAgent()
	c.mode = PathFollow
}

// SetCursor tells the controller which waypoint the walker is heading to.
func (c *Controller) SetCursor(i int) {
	c.cursor = max(i, 0)
}

func (c *Controller) StopFollowing() {
	if c.mode != PathFollow {
		return
	}
	c.path = pathing.Path{}
	c.cursor = 0
	c.mode = Inactive
}

// LookAt locks onto point with the configured one-shot profile. onDone runs once, when
// the aim settles or the watchdog fires.
func (c *Controller) LookAt(point mgl64.Vec3, sneaking bool, onDone func()) {
	if c.agent == nil {
		slog.Warn("Cannot aim: no agent", "target", point)
		return
	}
	c.lock(newAimSession(c.rng, c.settings.Aim, point, sneaking, onDone))
	slog.Debug("Aim started", "target", point, "pattern", c.session.pattern, "overshoot_yaw", c.session.overshootYaw, "overshoot_pitch", c.session.overshootPitch)
}

// LookAtBlock aims at a reliable point on block's upper-middle area.
func (c *Controller) LookAtBlock(b terrain.BlockPos, sneaking bool, onDone func()) {
	point := blockCenter(b)
	if c.agent != nil {
		point = OptimalBlockTarget(c.eye(sneaking), b)
	}
	c.LookAt(point, sneaking, onDone)
}

// Hold keeps tracking block with profile until Cancel or another session replaces it.
// A profile that completes behaves like LookAtBlock without a callback.
func (c *Controller) Hold(b terrain.BlockPos, sneaking bool, profile AimProfile) {
	if c.agent == nil {
		slog.Warn("Cannot hold: no agent", "block", b)
		return
	}
	target := jitteredCenter(c.rng, b, profile.OffsetRange)
	s := newAimSession(c.rng, profile, target, sneaking, nil)
	s.block, s.hasBlock = b, true
	c.lock(s)
	slog.Debug("Hold started", "block", b, "pattern", s.pattern)
}

// Aimed reports whether a target lock is within tol degrees of its target on both axes.
func (c *Controller) Aimed(tol float32) bool {
	if c.mode != TargetLock || c.session == nil || c.agent == nil {
		return false
	}
	yaw, pitch := Bearing(c.eye(c.session.sneaking), c.session.target)
	return absf(AngleDiff(c.smoothYaw, yaw)) <= tol && absf(pitch-c.smoothPitch) <= tol
}

// Cancel ends a target lock without invoking its callback.
func (c *Controller) Cancel() {
	if c.mode != TargetLock {
		return
	}
	s := c.session
	c.dropSession()
	c.mode = Inactive
	c.publish(event.EventAimCancelled, event.AimEvent{
		Yaw:     c.smoothYaw,
		Pitch:   c.smoothPitch,
		Elapsed: s.elapsed.Milliseconds(),
	})
}

// Stop clears every mode.
func (c *Controller) Stop() {
	c.dropSession()
	c.path = pathing.Path{}
	c.cursor = 0
	c.mode = Inactive
}

// OnRender advances the view by one frame of length dt.
func (c *Controller) OnRender(dt time.Duration) {
	if c.mode == Inactive || c.agent == nil || dt <= 0 {
		return
	}
	step := min(dt, MaxFrameStep).Seconds()

	switch c.mode {
	case PathFollow:
		c.renderPath(step)
	case TargetLock:
		c.renderTarget(dt, step)
	}
}

func (c *Controller) renderPath(dt float64) {
	if c.cursor >= c.path.Len() {
		return
	}
	pos := c.agent.Position()
	eye := pos.Add(mgl64.Vec3{0, StandingEyeHeight, 0})

	target, ok := SelectTarget(eye, c.path, c.cursor, c.blocks, c.settings.Lookahead)
	if !ok {
		return
	}
	yaw := YawTo(pos, target)
	pitch := PredictPitch(c.path, c.cursor)

	diff := AngleDiff(c.smoothYaw, yaw)
	boost := float32(1)
	if absf(diff) > c.settings.CornerThreshold {
		boost = c.settings.CornerBoost
	}

	c.smoothYaw = NormalizeAngle(c.smoothYaw + diff*decayAlpha(c.settings.YawSpeed*boost, dt))
	c.smoothPitch += (pitch - c.smoothPitch) * decayAlpha(c.settings.PitchSpeed, dt)
	c.smoothPitch = Clamp(c.smoothPitch, pathPitchMin, pathPitchMax)

	c.agent.SetRotation(c.smoothYaw, c.smoothPitch)
}

func (c *Controller) renderTarget(elapsed time.Duration, dt float64) {
	s := c.session
	if s == nil {
		c.mode = Inactive
		return
	}

	s.elapsed += elapsed
	if s.profile.Timeout > 0 && s.elapsed > s.profile.Timeout {
		slog.Warn("Aim timed out, completing", "elapsed_ms", s.elapsed.Milliseconds())
		c.finish(true)
		return
	}

	s.retarget(c.rng)

	trueYaw, truePitch := Bearing(c.eye(s.sneaking), s.target)
	aimYaw, aimPitch := trueYaw, truePitch
	pending := s.overshootPending()
	if pending {
		aimYaw += s.overshootYaw
		aimPitch += s.overshootPitch
	}

	yawDiff := AngleDiff(c.smoothYaw, aimYaw)
	pitchDiff := aimPitch - c.smoothPitch
	if pending && absf(yawDiff) < overshootDoneYaw && absf(pitchDiff) < overshootDonePitch {
		s.overshot = true
		slog.Debug("Overshoot reached, correcting back")
	}

	s.updateJitter(c.rng, absf(AngleDiff(c.smoothYaw, trueYaw))+absf(truePitch-c.smoothPitch))

	p := s.profile
	yawRate := p.Speed * s.variance * s.pattern.Multiplier(absf(yawDiff), true)
	pitchRate := p.Speed * p.PitchSpeedRatio * s.variance * s.pattern.Multiplier(absf(pitchDiff), false)

	c.smoothYaw = NormalizeAngle(c.smoothYaw + yawDiff*decayAlpha(yawRate, dt))
	c.smoothPitch = ClampPitch(c.smoothPitch + pitchDiff*decayAlpha(pitchRate, dt))
	c.agent.SetRotation(NormalizeAngle(c.smoothYaw+s.jitterYaw), ClampPitch(c.smoothPitch+s.jitterPitch))

	if p.holds() || s.overshootPending() {
		return
	}
	if absf(AngleDiff(c.smoothYaw, trueYaw)) < p.CompletionThreshold && absf(truePitch-c.smoothPitch) < p.CompletionThreshold {
		s.jitterYaw, s.jitterPitch = 0, 0
		c.smoothYaw, c.smoothPitch = trueYaw, truePitch
		c.agent.SetRotation(trueYaw, truePitch)
		c.finish(false)
	}
}

// finish ends the active session and runs its callback exactly once.
func (c *Controller) finish(timedOut bool) {
	s := c.session
	c.session = nil
	c.mode = Inactive
	if s == nil {
		return
	}
	done := s.onDone
	s.onDone = nil

	slog.Info("Aim finished", "yaw", c.smoothYaw, "pitch", c.smoothPitch, "timed_out", timedOut)
	c.publish(event.EventAimFinished, event.AimEvent{
		Yaw:      c.smoothYaw,
		Pitch:    c.smoothPitch,
		TimedOut: timedOut,
		Elapsed:  s.elapsed.Milliseconds(),
	})
	if done != nil {
		runCallback(done)
	}
}

func runCallback(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Aim callback panicked", "panic", r)
		}
	}()
	fn()
}

func (c *Controller) lock(s *aimSession) {
	c.dropSession()
	c.path = pathing.Path{}
	c.cursor = 0
	c.seedFromAgent()
	c.session = s
	c.mode = TargetLock
}

func (c *Controller) dropSession() {
	if c.session != nil {
		c.session.onDone = nil
		c.session = nil
	}
}

// seedFromAgent starts smoothing from wherever the agent is currently looking.
func (c *Controller) seedFromAgent() {
	if c.agent == nil {
		return
	}
	c.smoothYaw, c.smoothPitch = c.agent.Rotation()
}

func (c *Controller) eye(sneaking bool) mgl64.Vec3 {
	return c.agent.Position().Add(mgl64.Vec3{0, EyeHeight(sneaking), 0})
}

func (c *Controller) publish(name string, evt any) {
	if c.events == nil {
		return
	}
	c.events.Publish(name, evt)
}
