package rotation

import "github.com/Versifine/strider/internal/pathing"

const (
	basePitch    = 8.0
	climbPitch   = -15.0
	descendPitch = 20.0

	pitchScanNodes = 6
	stepThreshold  = 0.3
	steepStep      = 0.9
	gradualTotal   = 1.0
)

// PredictPitch estimates a resting pitch from the elevation changes over the next few
// waypoints: a mild downward look on flat ground, up ahead of climbs, down ahead of
// descents.
func PredictPitch(path pathing.Path, cursor int) float32 {
	n := path.Len()
	if cursor < 0 || cursor >= n {
		return basePitch
	}
	check := min(pitchScanNodes, n-cursor-1)
	if check <= 0 {
		return basePitch
	}

	var totalDy, maxUp, maxDown float64
	ups, downs := 0, 0
	for i := cursor + 1; i <= cursor+check; i++ {
		dy := float64(path.At(i).Y - path.At(i-1).Y)
		switch {
		case dy > stepThreshold:
			ups++
			maxUp = max(maxUp, dy)
			totalDy += dy
		case dy < -stepThreshold:
			downs++
			maxDown = min(maxDown, dy)
			totalDy += dy
		}
	}

	switch {
	case ups >= 2 || maxUp >= steepStep:
		return mix(basePitch, climbPitch, intensity(ups))
	case downs >= 2 || maxDown <= -steepStep:
		return mix(basePitch, descendPitch, intensity(downs))
	case totalDy > gradualTotal:
		return mix(basePitch, climbPitch, 0.5)
	case totalDy < -gradualTotal:
		return mix(basePitch, descendPitch, 0.5)
	}
	return basePitch
}

// intensity grows with the number of steps observed and saturates at three.
func intensity(steps int) float32 {
	return min(float32(steps)/3, 1)
}

func mix(from, to, k float32) float32 {
	return to*k + from*(1-k)
}
