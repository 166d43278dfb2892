package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type BlockStore interface {
	IsSolid(x, y, z int) bool
}

const (
	axisX = 0
	axisY = 1
	axisZ = 2
)

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// PlayerAABB is the agent's box with feet at pos.
func PlayerAABB(pos mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{pos.X() - PlayerHalfWidth, pos.Y(), pos.Z() - PlayerHalfWidth},
		Max: mgl64.Vec3{pos.X() + PlayerHalfWidth, pos.Y() + PlayerHeight, pos.Z() + PlayerHalfWidth},
	}
}

func (a AABB) Offset(d mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

func (a AABB) Intersects(b AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Min[i] >= b.Max[i] || a.Max[i] <= b.Min[i] {
			return false
		}
	}
	return true
}

func CollidesWithBlock(box AABB, blocks BlockStore) bool {
	if blocks == nil {
		return false
	}
	for y := floorForMin(box.Min.Y()); y <= floorForMax(box.Max.Y()); y++ {
		for x := floorForMin(box.Min.X()); x <= floorForMax(box.Max.X()); x++ {
			for z := floorForMin(box.Min.Z()); z <= floorForMax(box.Max.Z()); z++ {
				if !blocks.IsSolid(x, y, z) {
					continue
				}
				cell := AABB{
					Min: mgl64.Vec3{float64(x), float64(y), float64(z)},
					Max: mgl64.Vec3{float64(x + 1), float64(y + 1), float64(z + 1)},
				}
				if box.Intersects(cell) {
					return true
				}
			}
		}
	}
	return false
}

// ResolveMovement moves pos by velocity one axis at a time (Y, X, Z), stopping at the
// first solid block on each axis. A blocked axis has its velocity zeroed.
func ResolveMovement(pos, velocity mgl64.Vec3, blocks BlockStore) (mgl64.Vec3, mgl64.Vec3) {
	for _, axis := range [3]int{axisY, axisX, axisZ} {
		pos[axis], velocity[axis] = resolveAxis(pos, axis, velocity[axis], blocks)
	}
	return pos, velocity
}

func resolveAxis(pos mgl64.Vec3, axis int, delta float64, blocks BlockStore) (float64, float64) {
	if blocks == nil || nearlyZero(delta) {
		return pos[axis] + delta, delta
	}

	box := PlayerAABB(pos)
	u, v := (axis+1)%3, (axis+2)%3
	uMin, uMax := floorForMin(box.Min[u]), floorForMax(box.Max[u])
	vMin, vMax := floorForMin(box.Min[v]), floorForMax(box.Max[v])

	solidLayer := func(a int) bool {
		var cell [3]int
		cell[axis] = a
		for i := uMin; i <= uMax; i++ {
			for j := vMin; j <= vMax; j++ {
				cell[u], cell[v] = i, j
				if blocks.IsSolid(cell[0], cell[1], cell[2]) {
					return true
				}
			}
		}
		return false
	}

	allowed := delta
	if delta > 0 {
		end := int(math.Floor(box.Max[axis] + delta))
		for a := int(math.Floor(box.Max[axis])); a <= end; a++ {
			if solidLayer(a) {
				allowed = math.Min(allowed, float64(a)-box.Max[axis])
				break
			}
		}
	} else {
		end := int(math.Floor(box.Min[axis] + delta))
		for a := int(math.Floor(box.Min[axis] - CollisionAxisTolerance)); a >= end; a-- {
			if solidLayer(a) {
				allowed = math.Max(allowed, float64(a+1)-box.Min[axis])
				break
			}
		}
	}

	if !nearlyEqual(allowed, delta) {
		return pos[axis] + allowed, 0
	}
	return pos[axis] + delta, delta
}

func floorForMin(v float64) int {
	return int(math.Floor(v + CollisionAxisTolerance))
}

func floorForMax(v float64) int {
	return int(math.Floor(v - CollisionAxisTolerance))
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}
