package rotation

import (
	"math"
	"math/rand/v2"
)

// SpeedPattern shapes how rotation speed varies with the remaining angular distance.
// One pattern is picked at random per aim session.
type SpeedPattern int

const (
	PatternSmooth SpeedPattern = iota
	PatternQuickStart
	PatternAccelerate
	PatternSteady
	PatternBurst

	patternCount
)

func (p SpeedPattern) String() string {
	switch p {
	case PatternSmooth:
		return "smooth"
	case PatternQuickStart:
		return "quick_start"
	case PatternAccelerate:
		return "accelerate"
	case PatternSteady:
		return "steady"
	case PatternBurst:
		return "burst"
	default:
		return "unknown"
	}
}

// distance bands in degrees: far, mid, near.
var (
	yawBands   = [3]float32{30, 15, 5}
	pitchBands = [3]float32{20, 10, 4}
)

// Multiplier returns the speed factor for the given remaining distance on one axis.
func (p SpeedPattern) Multiplier(dist float32, yaw bool) float32 {
	b := pitchBands
	if yaw {
		b = yawBands
	}
	far, mid, near := b[0], b[1], b[2]

	switch p {
	case PatternSmooth:
		switch {
		case dist > far:
			return 1.15
		case dist > mid:
			return 1.1
		case dist < near:
			return 0.75
		}
		return 1.0
	case PatternQuickStart:
		switch {
		case dist > far:
			return 1.35
		case dist > mid:
			return 1.15
		case dist > near:
			return 0.9
		}
		return 0.7
	case PatternAccelerate:
		switch {
		case dist > far:
			return 0.9
		case dist > mid:
			return 1.3
		case dist < near:
			return 0.75
		}
		return 1.05
	case PatternSteady:
		switch {
		case dist > far:
			return 1.05
		case dist < near:
			return 0.95
		}
		return 1.0
	case PatternBurst:
		switch {
		case dist > far:
			return 1.25
		case dist > mid:
			return 1.35
		case dist > near:
			return 1.1
		}
		return 0.8
	}
	return 1.0
}

// overshootOffsets rolls the optional deliberate overshoot of an aim session.
func overshootOffsets(rng *rand.Rand, p AimProfile) (float32, float32) {
	if p.OvershootChance <= 0 || p.OvershootAmount == 0 || rng.Float32() >= p.OvershootChance {
		return 0, 0
	}
	mult := p.OvershootMinMult + rng.Float32()*(p.OvershootMaxMult-p.OvershootMinMult)
	angle := rng.Float64() * 2 * math.Pi
	yaw := float32(math.Cos(angle)) * p.OvershootAmount * mult
	pitch := float32(math.Sin(angle)) * p.OvershootAmount * mult * p.OvershootPitchRatio
	return yaw, pitch
}

func speedVariance(rng *rand.Rand, p AimProfile) float32 {
	if p.VarianceMax <= p.VarianceMin {
		return max(p.VarianceMin, 0.01)
	}
	return p.VarianceMin + rng.Float32()*(p.VarianceMax-p.VarianceMin)
}

// jitterSample is a symmetric random offset in [-amount, amount).
func jitterSample(rng *rand.Rand, amount float32) float32 {
	return float32((rng.Float64() - 0.5) * 2 * float64(amount))
}
