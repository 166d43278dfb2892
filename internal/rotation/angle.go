package rotation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NormalizeAngle wraps an angle in degrees into (-180, 180].
func NormalizeAngle(v float32) float32 {
	r := math.Mod(float64(v), 360)
	if r <= -180 {
		r += 360
	} else if r > 180 {
		r -= 360
	}
	return float32(r)
}

// AngleDiff is the signed shortest rotation from `from` to `to`, in (-180, 180].
func AngleDiff(from, to float32) float32 {
	return NormalizeAngle(to - from)
}

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampPitch(pitch float32) float32 {
	return Clamp(pitch, -90, 90)
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Bearing returns the yaw and pitch that point from eye at target. Yaw 0 faces +Z and
// grows clockwise seen from above; positive pitch looks down.
func Bearing(eye, target mgl64.Vec3) (float32, float32) {
	d := target.Sub(eye)
	yaw := float32(math.Atan2(-d.X(), d.Z()) * 180.0 / math.Pi)
	horizontal := math.Hypot(d.X(), d.Z())
	pitch := float32(-math.Atan2(d.Y(), horizontal) * 180.0 / math.Pi)
	return NormalizeAngle(yaw), ClampPitch(pitch)
}

// YawTo is Bearing without the vertical component.
func YawTo(from, target mgl64.Vec3) float32 {
	d := target.Sub(from)
	return NormalizeAngle(float32(math.Atan2(-d.X(), d.Z()) * 180.0 / math.Pi))
}

// decayAlpha is the fraction of the remaining error removed in dt seconds when
// converging exponentially at rate per second.
func decayAlpha(rate float32, dt float64) float32 {
	return float32(1 - math.Exp(-float64(rate)*dt))
}

func horizontalDist(a, b mgl64.Vec3) float64 {
	return math.Hypot(b.X()-a.X(), b.Z()-a.Z())
}
