package rotation

import (
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strider/internal/config"
	"github.com/Versifine/strider/internal/terrain"
)

const (
	overshootDoneYaw   = 0.5
	overshootDonePitch = 0.4
)

// AimProfile parametrizes a target-lock session. A single state machine serves both
// one-shot aims, which complete once within CompletionThreshold, and holds, which keep
// tracking a block until cancelled.
type AimProfile struct {
	Speed           float32
	PitchSpeedRatio float32

	OvershootChance     float32
	OvershootAmount     float32
	OvershootMinMult    float32
	OvershootMaxMult    float32
	OvershootPitchRatio float32

	VarianceMin float32
	VarianceMax float32

	JitterAmount    float32
	JitterEvery     int
	JitterOffDist   float32
	JitterNearDist  float32
	JitterNearScale float32

	// CompletionThreshold of zero means the session never completes on its own.
	CompletionThreshold float32
	// Timeout of zero disables the watchdog.
	Timeout time.Duration

	// Retargeting re-rolls a random offset around the held block every
	// RetargetMinFrames..RetargetMaxFrames frames. Zero frames disables it.
	RetargetMinFrames int
	RetargetMaxFrames int
	OffsetRange       float64
}

// WarpProfile is the one-shot profile used for precise aims such as teleport targets.
func WarpProfile(cfg config.AimConfig) AimProfile {
	p := AimProfile{
		Speed:               cfg.RotationSpeed,
		PitchSpeedRatio:     0.88,
		OvershootAmount:     cfg.OvershootAmount,
		OvershootMinMult:    0.6,
		OvershootMaxMult:    1.3,
		OvershootPitchRatio: 0.6,
		VarianceMin:         1 - cfg.SpeedVariation*0.5,
		VarianceMax:         1 + cfg.SpeedVariation*0.5,
		JitterAmount:        0.15,
		JitterEvery:         3,
		JitterOffDist:       1.5,
		JitterNearDist:      5,
		JitterNearScale:     0.5,
		CompletionThreshold: 0.35,
		Timeout:             time.Duration(cfg.TimeoutMs) * time.Millisecond,
	}
	if cfg.EnableOvershoot {
		p.OvershootChance = 0.7
	}
	return p
}

// HoldProfile keeps the view on a block while it is being worked on. It never
// completes and slowly wanders around the block centre.
func HoldProfile() AimProfile {
	return AimProfile{
		Speed:               9.5,
		PitchSpeedRatio:     0.88,
		OvershootChance:     0.12,
		OvershootAmount:     0.8,
		OvershootMinMult:    0.4,
		OvershootMaxMult:    1.3,
		OvershootPitchRatio: 0.5,
		VarianceMin:         0.80,
		VarianceMax:         1.15,
		JitterAmount:        0.08,
		JitterEvery:         8,
		JitterOffDist:       1.5,
		JitterNearDist:      3,
		JitterNearScale:     1.04,
		RetargetMinFrames:   30,
		RetargetMaxFrames:   50,
		OffsetRange:         0.20,
	}
}

func (p AimProfile) holds() bool {
	return p.CompletionThreshold <= 0
}

type aimSession struct {
	profile  AimProfile
	target   mgl64.Vec3
	block    terrain.BlockPos
	hasBlock bool
	sneaking bool
	onDone   func()

	elapsed time.Duration

	overshootYaw   float32
	overshootPitch float32
	overshot       bool
	variance       float32
	pattern        SpeedPattern

	jitterYaw    float32
	jitterPitch  float32
	jitterFrames int

	sinceRetarget int
	retargetEvery int
}

func newAimSession(rng *rand.Rand, profile AimProfile, target mgl64.Vec3, sneaking bool, onDone func()) *aimSession {
	s := &aimSession{
		profile:  profile,
		target:   target,
		sneaking: sneaking,
		onDone:   onDone,
	}
	s.overshootYaw, s.overshootPitch = overshootOffsets(rng, profile)
	s.variance = speedVariance(rng, profile)
	s.pattern = SpeedPattern(rng.IntN(int(patternCount)))
	s.retargetEvery = s.nextRetarget(rng)
	return s
}

func (s *aimSession) overshootPending() bool {
	return !s.overshot && (s.overshootYaw != 0 || s.overshootPitch != 0)
}

func (s *aimSession) nextRetarget(rng *rand.Rand) int {
	lo, hi := s.profile.RetargetMinFrames, s.profile.RetargetMaxFrames
	if lo <= 0 {
		return 0
	}
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// retarget moves a held aim to a fresh offset around the block centre once enough
// frames have passed.
func (s *aimSession) retarget(rng *rand.Rand) {
	if !s.hasBlock || s.retargetEvery <= 0 {
		return
	}
	s.sinceRetarget++
	if s.sinceRetarget < s.retargetEvery {
		return
	}
	s.target = jitteredCenter(rng, s.block, s.profile.OffsetRange)
	s.sinceRetarget = 0
	s.retargetEvery = s.nextRetarget(rng)
}

// updateJitter refreshes the hand-tremor offset every JitterEvery frames. dist is the
// summed angular error to the true target.
func (s *aimSession) updateJitter(rng *rand.Rand, dist float32) {
	p := s.profile
	if p.JitterEvery <= 0 || p.JitterAmount <= 0 {
		return
	}
	s.jitterFrames++
	if s.jitterFrames < p.JitterEvery {
		return
	}
	s.jitterFrames = 0

	if dist < p.JitterOffDist {
		s.jitterYaw, s.jitterPitch = 0, 0
		return
	}
	scale := float32(1)
	if dist < p.JitterNearDist {
		scale = p.JitterNearScale
	}
	s.jitterYaw = jitterSample(rng, p.JitterAmount*scale)
	s.jitterPitch = jitterSample(rng, p.JitterAmount*scale)
}

func blockCenter(b terrain.BlockPos) mgl64.Vec3 {
	return mgl64.Vec3{float64(b.X) + 0.5, float64(b.Y) + 0.5, float64(b.Z) + 0.5}
}

func jitteredCenter(rng *rand.Rand, b terrain.BlockPos, spread float64) mgl64.Vec3 {
	c := blockCenter(b)
	if spread <= 0 {
		return c
	}
	return c.Add(mgl64.Vec3{
		(rng.Float64() - 0.5) * spread,
		(rng.Float64() - 0.5) * spread,
		(rng.Float64() - 0.5) * spread,
	})
}

// OptimalBlockTarget picks a point on block that a ray from eye reliably hits: the
// upper-middle of the block, nudged slightly towards the viewer and kept well inside
// the faces.
func OptimalBlockTarget(eye mgl64.Vec3, b terrain.BlockPos) mgl64.Vec3 {
	center := blockCenter(b)
	bx, by, bz := float64(b.X), float64(b.Y), float64(b.Z)

	y := by + 0.75
	if eye.Y() > by+1.8 {
		y = by + 0.65
	}

	dx := center.X() - eye.X()
	dz := center.Z() - eye.Z()
	x, z := center.X(), center.Z()
	if dx > 1 || dx < -1 {
		x += mgl64.Clamp(-sign(dx)*0.05, -0.08, 0.08)
	}
	if dz > 1 || dz < -1 {
		z += mgl64.Clamp(-sign(dz)*0.05, -0.08, 0.08)
	}

	return mgl64.Vec3{
		mgl64.Clamp(x, bx+0.4, bx+0.6),
		mgl64.Clamp(y, by+0.65, by+0.82),
		mgl64.Clamp(z, bz+0.4, bz+0.6),
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
