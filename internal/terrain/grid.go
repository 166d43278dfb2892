package terrain

import "sync"

type BlockPos struct {
	X int
	Y int
	Z int
}

// Grid is an in-memory voxel world. Every position is loaded; positions never set hold
// air. State ids are assigned per distinct block name in first-use order, 0 being air.
type Grid struct {
	mu     sync.RWMutex
	states map[BlockPos]int32
	names  []string
	ids    map[string]int32
}

func NewGrid() *Grid {
	return &Grid{
		states: make(map[BlockPos]int32),
		names:  []string{"air"},
		ids:    map[string]int32{"air": 0},
	}
}

func (g *Grid) Set(x, y, z int, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.stateIDLocked(name)
	pos := BlockPos{X: x, Y: y, Z: z}
	if id == 0 {
		delete(g.states, pos)
		return
	}
	g.states[pos] = id
}

// Fill sets every voxel of the inclusive box spanned by a and b.
func (g *Grid) Fill(a, b BlockPos, name string) {
	minX, maxX := order(a.X, b.X)
	minY, maxY := order(a.Y, b.Y)
	minZ, maxZ := order(a.Z, b.Z)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				g.Set(x, y, z, name)
			}
		}
	}
}

func (g *Grid) GetBlockState(x, y, z int) (int32, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.states[BlockPos{X: x, Y: y, Z: z}], true
}

func (g *Grid) GetBlockNameByStateID(stateID int32) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if stateID < 0 || int(stateID) >= len(g.names) {
		return "", false
	}
	return g.names[stateID], true
}

// IsSolid reports whether a body collides with the voxel.
func (g *Grid) IsSolid(x, y, z int) bool {
	stateID, _ := g.GetBlockState(x, y, z)
	if stateID == 0 {
		return false
	}
	name, ok := g.GetBlockNameByStateID(stateID)
	if !ok {
		return true
	}
	return !Passable(name)
}

// BlockName is a convenience for debugging and tests.
func (g *Grid) BlockName(x, y, z int) string {
	stateID, _ := g.GetBlockState(x, y, z)
	name, _ := g.GetBlockNameByStateID(stateID)
	return name
}

func (g *Grid) stateIDLocked(name string) int32 {
	normalized := NormalizeBlockName(name)
	if normalized == "" {
		normalized = "air"
	}
	if id, ok := g.ids[normalized]; ok {
		return id
	}
	id := int32(len(g.names))
	g.names = append(g.names, normalized)
	g.ids[normalized] = id
	return id
}

func order(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
