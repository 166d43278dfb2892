package pathfinder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Versifine/strider/internal/pathing"
)

// FileSource serves canned routes from a YAML file, for running without a pathfinding
// server.
//
//	routes:
//	  - name: square
//	    start: [0, 64, 0]
//	    end: [4, 64, 4]
//	    nodes: [[0, 64, 0], [4, 64, 0], [4, 64, 4]]
type FileSource struct {
	Routes []Route `yaml:"routes"`
}

type Route struct {
	Name     string   `yaml:"name"`
	Start    [3]int   `yaml:"start"`
	End      [3]int   `yaml:"end"`
	Nodes    [][3]int `yaml:"nodes"`
	Keynodes [][3]int `yaml:"keynodes"`
}

func LoadFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes %s: %w", path, err)
	}
	src, err := ParseFileSource(data)
	if err != nil {
		return nil, fmt.Errorf("parse routes %s: %w", path, err)
	}
	return src, nil
}

func ParseFileSource(data []byte) (*FileSource, error) {
	var src FileSource
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, err
	}
	for i, r := range src.Routes {
		if len(r.Nodes) == 0 {
			return nil, fmt.Errorf("route %d (%s): %w", i, r.Name, errors.New("no nodes"))
		}
	}
	return &src, nil
}

// Pathfind returns the route ending at req.End, preferring one that also starts at
// req.Start.
func (s *FileSource) Pathfind(ctx context.Context, req Request) (pathing.Path, error) {
	if err := ctx.Err(); err != nil {
		return pathing.Path{}, err
	}
	var match *Route
	for i := range s.Routes {
		r := &s.Routes[i]
		if r.End != req.End {
			continue
		}
		if r.Start == req.Start {
			match = r
			break
		}
		if match == nil {
			match = r
		}
	}
	if match == nil {
		return pathing.Path{}, fmt.Errorf("route %s: %w", req, ErrNoPath)
	}
	return pathing.NewPath(routeNodes(match.Nodes), routeNodes(match.Keynodes)), nil
}

// Route looks a route up by name.
func (s *FileSource) Route(name string) (pathing.Path, bool) {
	for _, r := range s.Routes {
		if r.Name == name {
			return pathing.NewPath(routeNodes(r.Nodes), routeNodes(r.Keynodes)), true
		}
	}
	return pathing.Path{}, false
}

func routeNodes(coords [][3]int) []pathing.Waypoint {
	out := make([]pathing.Waypoint, len(coords))
	for i, c := range coords {
		out[i] = pathing.Waypoint{X: c[0], Y: c[1], Z: c[2]}
	}
	return out
}
