package terrain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scene is the YAML description of a test world:
//
//	fills:
//	  - block: stone
//	    from: [-8, 63, -8]
//	    to: [24, 63, 8]
//	  - block: glass
//	    from: [4, 64, 0]
type Scene struct {
	Fills []SceneFill `yaml:"fills"`
}

type SceneFill struct {
	Block string `yaml:"block"`
	From  []int  `yaml:"from"`
	To    []int  `yaml:"to"`
}

func LoadScene(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(data)
}

func ParseScene(data []byte) (*Grid, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return scene.Build()
}

func (s Scene) Build() (*Grid, error) {
	grid := NewGrid()
	for i, fill := range s.Fills {
		if fill.Block == "" {
			return nil, fmt.Errorf("scene fill %d: missing block", i)
		}
		from, err := toBlockPos(fill.From)
		if err != nil {
			return nil, fmt.Errorf("scene fill %d from: %w", i, err)
		}
		to := from
		if len(fill.To) > 0 {
			to, err = toBlockPos(fill.To)
			if err != nil {
				return nil, fmt.Errorf("scene fill %d to: %w", i, err)
			}
		}
		grid.Fill(from, to, fill.Block)
	}
	return grid, nil
}

func toBlockPos(v []int) (BlockPos, error) {
	if len(v) != 3 {
		return BlockPos{}, fmt.Errorf("want 3 coordinates, got %d", len(v))
	}
	return BlockPos{X: v[0], Y: v[1], Z: v[2]}, nil
}
