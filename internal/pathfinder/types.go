package pathfinder

import (
	"context"
	"errors"
	"fmt"

	"github.com/Versifine/strider/internal/pathing"
)

// ErrNoPath is returned when the pathfinder answers but finds no route.
var ErrNoPath = errors.New("pathfinder: no path")

// Source produces paths between two block positions.
type Source interface {
	Pathfind(ctx context.Context, req Request) (pathing.Path, error)
}

type Flags struct {
	UseWarpPoints bool
	UseEtherwarp  bool
	UseKeynodes   bool
	UseSpline     bool
	PerfectPath   bool
}

// DefaultFlags asks for a plain walking path with keynodes.
func DefaultFlags() Flags {
	return Flags{UseKeynodes: true}
}

type Request struct {
	Start [3]int
	End   [3]int
	Flags Flags
}

func (r Request) String() string {
	return fmt.Sprintf("%s -> %s", coord(r.Start), coord(r.End))
}

type PathfindRequest struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	UseWarpPoints bool   `json:"use_warp_points"`
	UseEtherwarp  bool   `json:"use_etherwarp"`
	UseKeynodes   bool   `json:"use_keynodes"`
	UseSpline     bool   `json:"use_spline"`
	IsPerfectPath bool   `json:"is_perfect_path"`
}

type PathfindResponse struct {
	Path     []Node `json:"path"`
	Keynodes []Node `json:"keynodes"`
}

type Node struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Z          int     `json:"z"`
	TopBound   float32 `json:"top_bound"`
	PathWeight float32 `json:"path_weight"`
	IsLiquid   bool    `json:"is_liquid"`
}

func (r Request) wire() PathfindRequest {
	return PathfindRequest{
		Start:         coord(r.Start),
		End:           coord(r.End),
		UseWarpPoints: r.Flags.UseWarpPoints,
		UseEtherwarp:  r.Flags.UseEtherwarp,
		UseKeynodes:   r.Flags.UseKeynodes,
		UseSpline:     r.Flags.UseSpline,
		IsPerfectPath: r.Flags.PerfectPath,
	}
}

func coord(v [3]int) string {
	return fmt.Sprintf("%d,%d,%d", v[0], v[1], v[2])
}

func toWaypoints(nodes []Node) []pathing.Waypoint {
	out := make([]pathing.Waypoint, len(nodes))
	for i, n := range nodes {
		out[i] = pathing.Waypoint{
			X:        n.X,
			Y:        n.Y,
			Z:        n.Z,
			TopBound: n.TopBound,
			Weight:   n.PathWeight,
			Liquid:   n.IsLiquid,
		}
	}
	return out
}
