package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestLoad 使用表驱动测试覆盖配置加载的核心场景
func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		createFile bool
		content    string
		wantErr    bool
		validate   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:       "正常加载有效YAML",
			createFile: true,
			content: `logging:
  level: "debug"
  file: "strider.log"
pathfinder:
  endpoint: "http://127.0.0.1:4000"
  default_map: "mines"
rotation:
  yaw_speed: 9
  lookahead: 5
  enable_los: false
aim:
  rotation_speed: 10.5
  enable_overshoot: false
sim:
  spawn: [1.5, 64, -2.5]
`,
			wantErr: false,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, 期望 %q", cfg.Logging.Level, "debug")
				}
				if cfg.Logging.File != "strider.log" {
					t.Errorf("Logging.File = %q, 期望 %q", cfg.Logging.File, "strider.log")
				}
				if cfg.Pathfinder.Endpoint != "http://127.0.0.1:4000" {
					t.Errorf("Pathfinder.Endpoint = %q, 期望 %q", cfg.Pathfinder.Endpoint, "http://127.0.0.1:4000")
				}
				if cfg.Pathfinder.DefaultMap != "mines" {
					t.Errorf("Pathfinder.DefaultMap = %q, 期望 %q", cfg.Pathfinder.DefaultMap, "mines")
				}
				if cfg.Rotation.YawSpeed != 9 {
					t.Errorf("Rotation.YawSpeed = %v, 期望 9", cfg.Rotation.YawSpeed)
				}
				if cfg.Rotation.Lookahead != 5 {
					t.Errorf("Rotation.Lookahead = %d, 期望 5", cfg.Rotation.Lookahead)
				}
				if cfg.Rotation.EnableLOS {
					t.Error("Rotation.EnableLOS 应为 false")
				}
				// 未写出的键保留默认值
				if cfg.Rotation.PitchSpeed != 4.5 {
					t.Errorf("Rotation.PitchSpeed = %v, 期望默认值 4.5", cfg.Rotation.PitchSpeed)
				}
				if cfg.Aim.RotationSpeed != 10.5 {
					t.Errorf("Aim.RotationSpeed = %v, 期望 10.5", cfg.Aim.RotationSpeed)
				}
				if cfg.Aim.EnableOvershoot {
					t.Error("Aim.EnableOvershoot 应为 false")
				}
				if cfg.Aim.TimeoutMs != 2000 {
					t.Errorf("Aim.TimeoutMs = %d, 期望默认值 2000", cfg.Aim.TimeoutMs)
				}
				if cfg.Sim.Spawn != [3]float64{1.5, 64, -2.5} {
					t.Errorf("Sim.Spawn = %v, 期望 [1.5 64 -2.5]", cfg.Sim.Spawn)
				}
			},
		},
		{
			name:       "文件不存在",
			createFile: false,
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !os.IsNotExist(err) {
					t.Errorf("期望文件不存在错误，实际: %v", err)
				}
			},
		},
		{
			name:       "YAML格式错误",
			createFile: true,
			content: `rotation:
  yaw_speed: [7
aim:
  rotation_speed: 8.5
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "yaml") {
					t.Errorf("期望返回YAML解析错误，实际: %v", err)
				}
			},
		},
		{
			name:       "空文件",
			createFile: true,
			content:    "",
			wantErr:    false,
			validate: func(t *testing.T, cfg *Config, err error) {
				// 空文件得到完整的默认配置
				def := Default()
				if cfg.Rotation != def.Rotation {
					t.Errorf("Rotation = %+v, 期望默认值 %+v", cfg.Rotation, def.Rotation)
				}
				if cfg.Aim != def.Aim {
					t.Errorf("Aim = %+v, 期望默认值 %+v", cfg.Aim, def.Aim)
				}
				if cfg.Logging.Level != "info" {
					t.Errorf("Logging.Level = %q, 期望 %q", cfg.Logging.Level, "info")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "config.yaml")

			if tt.createFile {
				if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("创建测试配置文件失败: %v", err)
				}
			}

			cfg, err := Load(configPath)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && cfg == nil {
				t.Fatalf("Load() 返回了 nil 配置")
			}

			if tt.validate != nil {
				tt.validate(t, cfg, err)
			}
		})
	}
}

// TestDefaultMatchesDocumentedKnobs 默认值与文档一致
func TestDefaultMatchesDocumentedKnobs(t *testing.T) {
	cfg := Default()
	if cfg.Rotation.Lookahead != 8 || cfg.Rotation.LookaheadMinDist != 4 || cfg.Rotation.LookaheadMaxDist != 15 {
		t.Errorf("lookahead 默认值错误: %+v", cfg.Rotation)
	}
	if !cfg.Rotation.EnableLOS {
		t.Error("EnableLOS 默认应为 true")
	}
	if cfg.Rotation.CornerBoost != 1.5 {
		t.Errorf("CornerBoost = %v, 期望 1.5", cfg.Rotation.CornerBoost)
	}
	if cfg.Aim.OvershootAmount != 1.5 || !cfg.Aim.EnableOvershoot || cfg.Aim.SpeedVariation != 0.3 {
		t.Errorf("aim 默认值错误: %+v", cfg.Aim)
	}
}

// TestStoreSetIgnoresNil Set(nil) 不覆盖当前配置
func TestStoreSetIgnoresNil(t *testing.T) {
	store := NewStore(nil)
	if store.Get() == nil {
		t.Fatal("NewStore(nil) 应提供默认配置")
	}
	before := store.Get()
	store.Set(nil)
	if store.Get() != before {
		t.Error("Set(nil) 不应替换配置")
	}
}

// TestWatchReloadsOnWrite 文件写入后 Store 得到新配置
func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("rotation:\n  yaw_speed: 7\n"), 0o644); err != nil {
		t.Fatalf("创建测试配置文件失败: %v", err)
	}
	initial, err := Load(path)
	if err != nil {
		t.Fatalf("Load() 返回错误: %v", err)
	}
	store := NewStore(initial)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, store) }()

	// 等待 watcher 注册目录
	time.Sleep(150 * time.Millisecond)
	if err := os.WriteFile(path, []byte("rotation:\n  yaw_speed: 12\n"), 0o644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if store.Get().Rotation.YawSpeed == 12 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if got := store.Get().Rotation.YawSpeed; got != 12 {
		t.Fatalf("YawSpeed = %v, 期望重新加载后为 12", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch() 返回错误: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch() 未在取消后返回")
	}
}
