// Package terrain answers the two questions the controllers ask of the world: is a
// voxel solid to walk into, and can the eye see through it.
package terrain

import "strings"

// BlockAccess is the world view consumed by the occlusion test and by the simulated
// body. GetBlockState reports false for voxels that are not loaded.
type BlockAccess interface {
	GetBlockState(x, y, z int) (int32, bool)
	GetBlockNameByStateID(stateID int32) (string, bool)
	IsSolid(x, y, z int) bool
}

type Opacity int

const (
	Opaque Opacity = iota
	Transparent
)

func (o Opacity) String() string {
	switch o {
	case Opaque:
		return "opaque"
	case Transparent:
		return "transparent"
	default:
		return "unknown"
	}
}

// Classify reports whether a block with the given name lets sight through. Unknown
// names are opaque.
func Classify(name string) Opacity {
	if traitsOf(name).transparent {
		return Transparent
	}
	return Opaque
}

// ClassifyState classifies the block behind a state id. State 0 is air.
func ClassifyState(blocks BlockAccess, stateID int32) Opacity {
	if stateID == 0 {
		return Transparent
	}
	if blocks == nil {
		return Opaque
	}
	name, ok := blocks.GetBlockNameByStateID(stateID)
	if !ok {
		return Opaque
	}
	return Classify(name)
}

// Passable reports whether a body can walk through the block.
func Passable(name string) bool {
	return traitsOf(name).passable
}

func NormalizeBlockName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.TrimPrefix(normalized, "minecraft:")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	return normalized
}
