package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Pathfinder PathfinderConfig `yaml:"pathfinder"`
	Rotation   RotationConfig   `yaml:"rotation"`
	Aim        AimConfig        `yaml:"aim"`
	Sim        SimConfig        `yaml:"sim"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type PathfinderConfig struct {
	Endpoint          string `yaml:"endpoint"`
	Executable        string `yaml:"executable"`
	DefaultMap        string `yaml:"default_map"`
	AutoStart         bool   `yaml:"auto_start"`
	KeepaliveInterval int    `yaml:"keepalive_interval_ms"`
	RequestTimeout    int    `yaml:"request_timeout_ms"`
	RouteFile         string `yaml:"route_file"`
}

// RotationConfig holds the path-follow knobs.
type RotationConfig struct {
	YawSpeed         float32 `yaml:"yaw_speed"`
	PitchSpeed       float32 `yaml:"pitch_speed"`
	Lookahead        int     `yaml:"lookahead"`
	LookaheadMinDist float64 `yaml:"lookahead_min_dist"`
	LookaheadMaxDist float64 `yaml:"lookahead_max_dist"`
	EnableLOS        bool    `yaml:"enable_los"`
	CornerBoost      float32 `yaml:"corner_boost"`
	CornerDot        float64 `yaml:"corner_dot"`
}

// AimConfig holds the target-lock knobs.
type AimConfig struct {
	RotationSpeed   float32 `yaml:"rotation_speed"`
	OvershootAmount float32 `yaml:"overshoot_amount"`
	EnableOvershoot bool    `yaml:"enable_overshoot"`
	SpeedVariation  float32 `yaml:"speed_variation"`
	TimeoutMs       int     `yaml:"timeout_ms"`
}

type SimConfig struct {
	Scene         string     `yaml:"scene"`
	Spawn         [3]float64 `yaml:"spawn"`
	TickInterval  int        `yaml:"tick_interval_ms"`
	FrameInterval int        `yaml:"frame_interval_ms"`
	Console       bool       `yaml:"console"`
}

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Pathfinder: PathfinderConfig{
			Endpoint:          "http://localhost:3000",
			DefaultMap:        "hub",
			AutoStart:         true,
			KeepaliveInterval: 60000,
			RequestTimeout:    10000,
		},
		Rotation: RotationConfig{
			YawSpeed:         7.0,
			PitchSpeed:       4.5,
			Lookahead:        8,
			LookaheadMinDist: 4.0,
			LookaheadMaxDist: 15.0,
			EnableLOS:        true,
			CornerBoost:      1.5,
			CornerDot:        0.5,
		},
		Aim: AimConfig{
			RotationSpeed:   8.5,
			OvershootAmount: 1.5,
			EnableOvershoot: true,
			SpeedVariation:  0.3,
			TimeoutMs:       2000,
		},
		Sim: SimConfig{
			TickInterval:  50,
			FrameInterval: 16,
		},
	}
}

// Load reads path and overlays it on Default, so omitted keys keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
