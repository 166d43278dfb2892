package rotation

import (
	"time"

	"github.com/Versifine/strider/internal/config"
)

const (
	StandingEyeHeight = 1.62
	SneakingEyeHeight = 1.32

	// MaxFrameStep bounds the integration step of a single frame.
	MaxFrameStep = 50 * time.Millisecond

	defaultCornerThreshold = 25.0
	pathPitchMin           = -50.0
	pathPitchMax           = 60.0
)

func EyeHeight(sneaking bool) float64 {
	if sneaking {
		return SneakingEyeHeight
	}
	return StandingEyeHeight
}

// Settings is the immutable per-session tuning of the controller. It is derived from
// config once, when a path or aim session starts.
type Settings struct {
	YawSpeed        float32
	PitchSpeed      float32
	CornerBoost     float32
	CornerThreshold float32
	Lookahead       LookaheadOptions
	Aim             AimProfile
}

func DefaultSettings() Settings {
	return SettingsFrom(config.Default())
}

func SettingsFrom(cfg *config.Config) Settings {
	if cfg == nil {
		cfg = config.Default()
	}
	r := cfg.Rotation
	return Settings{
		YawSpeed:        r.YawSpeed,
		PitchSpeed:      r.PitchSpeed,
		CornerBoost:     r.CornerBoost,
		CornerThreshold: defaultCornerThreshold,
		Lookahead: LookaheadOptions{
			Nodes:       r.Lookahead,
			MinDist:     r.LookaheadMinDist,
			MaxDist:     r.LookaheadMaxDist,
			LineOfSight: r.EnableLOS,
			CornerDot:   r.CornerDot,
		},
		Aim: WarpProfile(cfg.Aim),
	}
}
