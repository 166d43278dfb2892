package rotation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strider/internal/pathing"
	"github.com/Versifine/strider/internal/terrain"
)

func straightPath(n int) pathing.Path {
	nodes := make([]pathing.Waypoint, n)
	for i := range nodes {
		nodes[i] = pathing.Waypoint{X: 0, Y: 64, Z: i}
	}
	return pathing.NewPath(nodes, nil)
}

func pathOf(coords ...[3]int) pathing.Path {
	nodes := make([]pathing.Waypoint, len(coords))
	for i, c := range coords {
		nodes[i] = pathing.Waypoint{X: c[0], Y: c[1], Z: c[2]}
	}
	return pathing.NewPath(nodes, nil)
}

func defaultLookahead() LookaheadOptions {
	return LookaheadOptions{Nodes: 8, MinDist: 4, MaxDist: 15, LineOfSight: true, CornerDot: DefaultCornerDot}
}

func TestIsCorner(t *testing.T) {
	turn := pathOf([3]int{0, 0, 0}, [3]int{0, 0, 1}, [3]int{0, 0, 2}, [3]int{1, 0, 2}, [3]int{2, 0, 2})
	tests := []struct {
		name string
		path pathing.Path
		i    int
		want bool
	}{
		{"colinear", turn, 1, false},
		{"right angle", turn, 2, true},
		{"first node", turn, 0, false},
		{"last node", turn, 4, false},
		{"vertical only step", pathOf([3]int{0, 0, 0}, [3]int{0, 1, 0}, [3]int{0, 1, 1}), 1, false},
		{"shallow diagonal", pathOf([3]int{0, 0, 0}, [3]int{0, 0, 1}, [3]int{1, 0, 2}), 1, false},
		{"reversal", pathOf([3]int{0, 0, 0}, [3]int{0, 0, 1}, [3]int{0, 0, 0}), 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCorner(tt.path, tt.i, DefaultCornerDot); got != tt.want {
				t.Fatalf("IsCorner(%d)=%v want %v", tt.i, got, tt.want)
			}
		})
	}
}

func TestSelectTargetStraightPath(t *testing.T) {
	path := straightPath(20)
	eye := mgl64.Vec3{0.5, 65.62, 0.5}

	got, ok := SelectTarget(eye, path, 0, nil, defaultLookahead())
	if !ok {
		t.Fatal("SelectTarget returned !ok")
	}
	want := path.At(8).AimPoint()
	if !got.ApproxEqual(want) {
		t.Fatalf("target=%v want %v", got, want)
	}
}

func TestSelectTargetStopsAtWall(t *testing.T) {
	path := straightPath(20)
	grid := terrain.NewGrid()
	grid.Fill(terrain.BlockPos{X: -2, Y: 60, Z: 5}, terrain.BlockPos{X: 2, Y: 70, Z: 5}, "stone")
	eye := mgl64.Vec3{0.5, 65.62, 0.5}

	got, _ := SelectTarget(eye, path, 0, grid, defaultLookahead())
	want := path.At(4).AimPoint()
	if !got.ApproxEqual(want) {
		t.Fatalf("target=%v want %v", got, want)
	}

	// With line of sight off the wall is ignored.
	opts := defaultLookahead()
	opts.LineOfSight = false
	got, _ = SelectTarget(eye, path, 0, grid, opts)
	if want := path.At(8).AimPoint(); !got.ApproxEqual(want) {
		t.Fatalf("target without LOS=%v want %v", got, want)
	}
}

func TestSelectTargetStopsAtCorner(t *testing.T) {
	path := pathOf([3]int{0, 0, 0}, [3]int{0, 0, 1}, [3]int{0, 0, 2}, [3]int{1, 0, 2}, [3]int{2, 0, 2})
	opts := defaultLookahead()
	opts.MinDist = 0
	eye := mgl64.Vec3{0.5, 1.62, 0.5}

	got, _ := SelectTarget(eye, path, 0, nil, opts)
	if want := path.At(2).AimPoint(); !got.ApproxEqual(want) {
		t.Fatalf("target=%v want corner %v", got, want)
	}
}

func TestSelectTargetFallsBackToCursor(t *testing.T) {
	path := straightPath(10)
	opts := defaultLookahead()
	opts.MaxDist = 1
	eye := mgl64.Vec3{50, 65.62, 50}

	got, ok := SelectTarget(eye, path, 3, nil, opts)
	if !ok {
		t.Fatal("SelectTarget returned !ok")
	}
	if want := path.At(3).AimPoint(); !got.ApproxEqual(want) {
		t.Fatalf("target=%v want cursor node %v", got, want)
	}
}

func TestSelectTargetCursorOutOfRange(t *testing.T) {
	path := straightPath(3)
	if _, ok := SelectTarget(mgl64.Vec3{}, path, 3, nil, defaultLookahead()); ok {
		t.Fatal("cursor past end should not select a target")
	}
	if _, ok := SelectTarget(mgl64.Vec3{}, pathing.Path{}, 0, nil, defaultLookahead()); ok {
		t.Fatal("empty path should not select a target")
	}
}

func TestSelectTargetLastNodeInsideMinDist(t *testing.T) {
	// Near the end of the path every node is closer than MinDist; the last one is
	// still accepted.
	path := straightPath(3)
	eye := mgl64.Vec3{0.5, 65.62, 0.5}

	got, _ := SelectTarget(eye, path, 0, nil, defaultLookahead())
	if want := path.At(2).AimPoint(); !got.ApproxEqual(want) {
		t.Fatalf("target=%v want %v", got, want)
	}
}
