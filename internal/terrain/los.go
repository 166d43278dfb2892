package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SamplesPerBlock is the minimum sampling density along a sight line.
const SamplesPerBlock = 2

// LineOfSight samples the segment from eye to target and reports false as soon as a
// sampled voxel is opaque. A nil world counts as clear, as do unloaded voxels, so a
// missing world never stalls traversal. Segments shorter than one block are clear.
func LineOfSight(blocks BlockAccess, from, to mgl64.Vec3) bool {
	if blocks == nil {
		return true
	}
	delta := to.Sub(from)
	dist := delta.Len()
	if dist < 1 {
		return true
	}

	steps := int(math.Ceil(dist * SamplesPerBlock))
	for i := 1; i < steps; i++ {
		p := from.Add(delta.Mul(float64(i) / float64(steps)))
		if Occludes(blocks, int(math.Floor(p.X())), int(math.Floor(p.Y())), int(math.Floor(p.Z()))) {
			return false
		}
	}
	return true
}

// Occludes reports whether the voxel at x,y,z blocks sight.
func Occludes(blocks BlockAccess, x, y, z int) bool {
	stateID, ok := blocks.GetBlockState(x, y, z)
	if !ok || stateID == 0 {
		return false
	}
	name, ok := blocks.GetBlockNameByStateID(stateID)
	if !ok {
		return blocks.IsSolid(x, y, z)
	}
	return Classify(name) == Opaque
}
