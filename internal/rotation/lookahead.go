package rotation

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strider/internal/pathing"
	"github.com/Versifine/strider/internal/terrain"
)

const (
	defaultLookaheadNodes = 8
	defaultLookaheadMax   = 15.0
	DefaultCornerDot      = 0.5
)

type LookaheadOptions struct {
	Nodes       int
	MinDist     float64
	MaxDist     float64
	LineOfSight bool
	// CornerDot is the cosine below which the turn at a waypoint counts as a corner.
	CornerDot float64
}

func (o LookaheadOptions) normalized() LookaheadOptions {
	if o.Nodes <= 0 {
		o.Nodes = defaultLookaheadNodes
	}
	if o.MaxDist <= 0 {
		o.MaxDist = defaultLookaheadMax
	}
	if o.MinDist < 0 {
		o.MinDist = 0
	}
	return o
}

// SelectTarget picks the aim point for path following. It scans forward from cursor
// over at most opts.Nodes waypoints and keeps the farthest visible one within the
// distance band, stopping early at the first visible corner so the turn is seen before
// it is reached. When nothing qualifies the cursor waypoint is used. ok is false only
// when cursor is outside the path.
func SelectTarget(eye mgl64.Vec3, path pathing.Path, cursor int, blocks terrain.BlockAccess, opts LookaheadOptions) (target mgl64.Vec3, ok bool) {
	n := path.Len()
	if cursor < 0 || cursor >= n {
		return mgl64.Vec3{}, false
	}
	opts = opts.normalized()

	last := min(cursor+opts.Nodes, n-1)
	found := false
	for i := cursor; i <= last; i++ {
		candidate := path.At(i).AimPoint()
		dist := horizontalDist(eye, candidate)
		if dist < opts.MinDist && i < last {
			continue
		}
		if dist > opts.MaxDist {
			break
		}

		if opts.LineOfSight && !terrain.LineOfSight(blocks, eye, candidate) {
			if found {
				break
			}
			continue
		}

		target, found = candidate, true
		if i > cursor && IsCorner(path, i, opts.CornerDot) {
			break
		}
	}

	if !found {
		return path.At(cursor).AimPoint(), true
	}
	return target, true
}

// IsCorner reports whether the horizontal direction changes sharply at waypoint i.
// The first and last waypoints are never corners, and neither is a waypoint whose
// incoming or outgoing horizontal segment has zero length.
func IsCorner(path pathing.Path, i int, threshold float64) bool {
	if i <= 0 || i >= path.Len()-1 {
		return false
	}
	prev, cur, next := path.At(i-1), path.At(i), path.At(i+1)

	in := mgl64.Vec2{float64(cur.X - prev.X), float64(cur.Z - prev.Z)}
	out := mgl64.Vec2{float64(next.X - cur.X), float64(next.Z - cur.Z)}
	if in.Len() == 0 || out.Len() == 0 {
		return false
	}
	return in.Normalize().Dot(out.Normalize()) < threshold
}
