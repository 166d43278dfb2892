package pathing

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strider/internal/event"
)

const (
	// ReachThreshold is the distance at which a waypoint counts as reached.
	ReachThreshold = 1.0
	jumpRise       = 0.5
)

// Mover is the agent being walked. Intents hold for one tick; the agent clears them
// after applying.
type Mover interface {
	Position() mgl64.Vec3
	PressForward()
	PressJump()
}

// Steering receives path progress so the view can look ahead of the walker.
type Steering interface {
	Follow(path Path)
	SetCursor(i int)
	StopFollowing()
}

type Publisher interface {
	Publish(eventName string, evt any)
}

// Walker advances a cursor along a path once per tick and pushes the agent towards the
// current waypoint. It is not safe for concurrent use.
type Walker struct {
	mover  Mover
	steer  Steering
	events Publisher

	path    Path
	cursor  int
	walking bool
}

func NewWalker(mover Mover, steer Steering, events Publisher) *Walker {
	return &Walker{
		mover:  mover,
		steer:  steer,
		events: events,
	}
}

// Start begins walking path from its first waypoint, replacing any current path.
// Empty paths are ignored.
func (w *Walker) Start(path Path) {
	if path.Empty() {
		slog.Warn("Cannot start walking: empty path")
		return
	}
	w.path = path
	w.cursor = 0
	w.walking = true
	if w.steer != nil {
		w.steer.Follow(path)
	}
	slog.Info("Started walking path", "nodes", path.Len(), "keynodes", len(path.keynodes))
	w.publish(event.EventPathStarted)
}

// Stop abandons the current path and releases path steering. It always clears the
// walker; path.stopped is published only if a path was being walked.
func (w *Walker) Stop() {
	walking := w.walking
	if walking {
		w.publish(event.EventPathStopped)
	}
	w.halt()
	if walking {
		slog.Info("Stopped walking")
	}
}

func (w *Walker) Tick() {
	if !w.walking {
		return
	}
	if w.mover == nil {
		slog.Warn("No agent to walk, stopping")
		w.Stop()
		return
	}
	if w.cursor >= w.path.Len() {
		w.complete()
		return
	}

	pos := w.mover.Position()
	target := w.path.At(w.cursor).Center()
	if pos.Sub(target).Len() < ReachThreshold {
		w.cursor++
		if w.steer != nil {
			w.steer.SetCursor(w.cursor)
		}
		if w.cursor >= w.path.Len() {
			w.complete()
			return
		}
		slog.Debug("Reached node", "cursor", w.cursor, "nodes", w.path.Len())
		target = w.path.At(w.cursor).Center()
	}

	w.mover.PressForward()
	if target.Y() > pos.Y()+jumpRise {
		w.mover.PressJump()
	}
}

func (w *Walker) Walking() bool {
	return w.walking
}

func (w *Walker) Cursor() int {
	return w.cursor
}

func (w *Walker) Len() int {
	return w.path.Len()
}

func (w *Walker) Path() Path {
	return w.path
}

func (w *Walker) complete() {
	slog.Info("Reached end of path", "nodes", w.path.Len())
	w.publish(event.EventPathCompleted)
	w.halt()
}

func (w *Walker) halt() {
	w.path = Path{}
	w.cursor = 0
	w.walking = false
	if w.steer != nil {
		w.steer.StopFollowing()
	}
}

func (w *Walker) publish(name string) {
	if w.events == nil {
		return
	}
	w.events.Publish(name, event.PathEvent{Nodes: w.path.Len(), Cursor: w.cursor})
}
