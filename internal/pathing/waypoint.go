package pathing

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Waypoint is one traversable voxel of a path as produced by the pathfinder.
type Waypoint struct {
	X        int
	Y        int
	Z        int
	TopBound float32
	Weight   float32
	Liquid   bool
}

// Center is the point the walker steers to: the middle of the voxel's floor.
func (w Waypoint) Center() mgl64.Vec3 {
	return mgl64.Vec3{float64(w.X) + 0.5, float64(w.Y), float64(w.Z) + 0.5}
}

// AimPoint is the point the eye aims at when looking along the path, one block above
// the floor.
func (w Waypoint) AimPoint() mgl64.Vec3 {
	return mgl64.Vec3{float64(w.X) + 0.5, float64(w.Y) + 1, float64(w.Z) + 0.5}
}

func (w Waypoint) String() string {
	return fmt.Sprintf("Node(%d, %d, %d)", w.X, w.Y, w.Z)
}

// Path is an ordered waypoint sequence plus an optional coarse keynode subset. A Path
// is never modified after construction; a new pathfind result replaces it whole.
type Path struct {
	nodes    []Waypoint
	keynodes []Waypoint
}

func NewPath(nodes, keynodes []Waypoint) Path {
	return Path{
		nodes:    append([]Waypoint(nil), nodes...),
		keynodes: append([]Waypoint(nil), keynodes...),
	}
}

func (p Path) Len() int {
	return len(p.nodes)
}

func (p Path) Empty() bool {
	return len(p.nodes) == 0
}

// At returns the i-th waypoint. i must be in [0, Len()).
func (p Path) At(i int) Waypoint {
	return p.nodes[i]
}

// Nodes returns a copy of the waypoints.
func (p Path) Nodes() []Waypoint {
	return append([]Waypoint(nil), p.nodes...)
}

func (p Path) Keynodes() []Waypoint {
	return append([]Waypoint(nil), p.keynodes...)
}

func (p Path) Last() (Waypoint, bool) {
	if len(p.nodes) == 0 {
		return Waypoint{}, false
	}
	return p.nodes[len(p.nodes)-1], true
}
