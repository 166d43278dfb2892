package control

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strider/internal/body"
	"github.com/Versifine/strider/internal/config"
	"github.com/Versifine/strider/internal/event"
	"github.com/Versifine/strider/internal/pathfinder"
	"github.com/Versifine/strider/internal/pathing"
	"github.com/Versifine/strider/internal/rotation"
	"github.com/Versifine/strider/internal/terrain"
)

const (
	defaultTickInterval  = 50 * time.Millisecond
	defaultFrameInterval = 16 * time.Millisecond
	commandChanSize      = 64

	// aimedTolerance is how close the view must be, in degrees, for Status.Aimed.
	aimedTolerance = 2
)

// ErrStopped is returned by calls made after Run has returned.
var ErrStopped = errors.New("runtime stopped")

// Status is a point-in-time view of the runtime.
type Status struct {
	Position mgl64.Vec3
	Yaw      float32
	Pitch    float32
	OnGround bool
	Mode     rotation.Mode
	Aimed    bool
	Walking  bool
	Cursor   int
	PathLen  int
	Fetching bool
}

// Runtime is the single owner of the walker and the orientation controller. Run drives
// both from one goroutine: game ticks advance the walker and the body, render frames
// advance the view, and every public method is funnelled through the command channel.
type Runtime struct {
	body    *body.Body
	walker  *pathing.Walker
	ctrl    *rotation.Controller
	fetcher *pathfinder.Fetcher
	store   *config.Store
	bus     *event.Bus

	tickInterval  time.Duration
	frameInterval time.Duration
	hold          rotation.AimProfile

	commands chan func(ctx context.Context)
	done     chan struct{}

	// Owned by the Run goroutine.
	pendingID uint64
	pendingFn func(error)
}

type Options struct {
	TickInterval  time.Duration
	FrameInterval time.Duration
	Rand          *rand.Rand
	// Hold is the profile used by Hold. A zero Speed selects rotation.HoldProfile.
	Hold rotation.AimProfile
}

func New(b *body.Body, blocks terrain.BlockAccess, src pathfinder.Source, store *config.Store, bus *event.Bus, opts Options) *Runtime {
	if store == nil {
		store = config.NewStore(nil)
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = defaultFrameInterval
	}
	if opts.Hold.Speed <= 0 {
		opts.Hold = rotation.HoldProfile()
	}

	ctrl := rotation.NewController(b, blocks, opts.Rand)
	ctrl.SetEvents(bus)
	ctrl.Configure(rotation.SettingsFrom(store.Get()))

	r := &Runtime{
		body:          b,
		ctrl:          ctrl,
		store:         store,
		bus:           bus,
		tickInterval:  opts.TickInterval,
		frameInterval: opts.FrameInterval,
		hold:          opts.Hold,
		commands:      make(chan func(ctx context.Context), commandChanSize),
		done:          make(chan struct{}),
	}
	r.walker = pathing.NewWalker(b, ctrl, bus)
	if src != nil {
		r.fetcher = pathfinder.NewFetcher(src)
	}
	return r
}

// Run blocks until ctx is done. It must be called at most once.
func (r *Runtime) Run(ctx context.Context) error {
	defer close(r.done)

	tick := time.NewTicker(r.tickInterval)
	defer tick.Stop()
	frame := time.NewTicker(r.frameInterval)
	defer frame.Stop()

	var results <-chan pathfinder.Result
	if r.fetcher != nil {
		results = r.fetcher.Results()
	}

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return nil
		case fn := <-r.commands:
			fn(ctx)
		case <-tick.C:
			r.tick()
		case now := <-frame.C:
			r.render(now.Sub(last))
			last = now
		case res := <-results:
			r.handleResult(res)
		}
	}
}

// GoTo pathfinds from the body's block to end and walks the result. onResult, if set,
// is called on the control goroutine with nil once walking starts or with the failure.
// A newer GoTo supersedes one still in flight; the superseded onResult is never called.
func (r *Runtime) GoTo(end [3]int, flags pathfinder.Flags, onResult func(error)) error {
	return r.enqueue(func(ctx context.Context) {
		if r.fetcher == nil {
			report(onResult, pathfinder.ErrNoPath)
			return
		}
		req := pathfinder.Request{Start: blockOf(r.body.Position()), End: end, Flags: flags}
		r.pendingID = r.fetcher.Fetch(ctx, req)
		r.pendingFn = onResult
		slog.Info("Pathfinding", "request", req.String())
	})
}

// FollowPath walks a path that is already known.
func (r *Runtime) FollowPath(path pathing.Path) error {
	return r.enqueue(func(context.Context) {
		r.abandonFetch()
		r.startPath(path)
	})
}

func (r *Runtime) LookAt(point mgl64.Vec3, onDone func()) error {
	return r.enqueue(func(context.Context) {
		r.walker.Stop()
		r.configure()
		r.ctrl.LookAt(point, r.body.Snapshot().Sneaking, onDone)
	})
}

func (r *Runtime) LookAtBlock(b terrain.BlockPos, onDone func()) error {
	return r.enqueue(func(context.Context) {
		r.walker.Stop()
		r.configure()
		r.ctrl.LookAtBlock(b, r.body.Snapshot().Sneaking, onDone)
	})
}

// Hold keeps the view on b until Cancel or Stop.
func (r *Runtime) Hold(b terrain.BlockPos) error {
	return r.enqueue(func(context.Context) {
		r.walker.Stop()
		r.configure()
		r.ctrl.Hold(b, r.body.Snapshot().Sneaking, r.hold)
	})
}

// Cancel drops the current aim session without calling its callback.
func (r *Runtime) Cancel() error {
	return r.enqueue(func(context.Context) {
		r.ctrl.Cancel()
	})
}

// Stop abandons any pathfind, stops walking and releases the view.
func (r *Runtime) Stop() error {
	return r.enqueue(func(context.Context) {
		r.abandonFetch()
		r.walker.Stop()
		r.ctrl.Stop()
	})
}

func (r *Runtime) Teleport(pos mgl64.Vec3) error {
	return r.enqueue(func(context.Context) {
		r.walker.Stop()
		r.body.Teleport(pos)
	})
}

// Status waits for the control goroutine to take a snapshot.
func (r *Runtime) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	err := r.enqueue(func(context.Context) {
		reply <- r.status()
	})
	if err != nil {
		return Status{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-r.done:
		return Status{}, ErrStopped
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

func (r *Runtime) enqueue(fn func(ctx context.Context)) error {
	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	select {
	case r.commands <- fn:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

// tick runs one game tick: the walker sets this tick's intents, then the body moves.
func (r *Runtime) tick() {
	r.walker.Tick()
	r.body.Tick()
}

func (r *Runtime) render(dt time.Duration) {
	r.ctrl.OnRender(dt)
}

func (r *Runtime) handleResult(res pathfinder.Result) {
	if res.ID != r.pendingID {
		return
	}
	fn := r.pendingFn
	r.pendingID, r.pendingFn = 0, nil

	if res.Err == nil && res.Path.Empty() {
		res.Err = pathfinder.ErrNoPath
	}
	if res.Err != nil {
		slog.Warn("Pathfind failed", "request", res.Request.String(), "error", res.Err)
		r.bus.Publish(event.EventPathFailed, event.PathFailedEvent{
			Start: res.Request.Start,
			End:   res.Request.End,
			Err:   res.Err,
		})
		report(fn, res.Err)
		return
	}

	slog.Info("Path found", "nodes", res.Path.Len(), "keynodes", len(res.Path.Keynodes()))
	r.startPath(res.Path)
	report(fn, nil)
}

func (r *Runtime) startPath(path pathing.Path) {
	r.configure()
	r.walker.Start(path)
}

// configure applies the current config; running sessions keep what they started with.
func (r *Runtime) configure() {
	r.ctrl.Configure(rotation.SettingsFrom(r.store.Get()))
}

func (r *Runtime) abandonFetch() {
	if r.fetcher == nil || r.pendingID == 0 {
		return
	}
	r.fetcher.Cancel()
	r.pendingID, r.pendingFn = 0, nil
}

func (r *Runtime) status() Status {
	snap := r.body.Snapshot()
	return Status{
		Position: snap.Position,
		Yaw:      snap.Yaw,
		Pitch:    snap.Pitch,
		OnGround: snap.OnGround,
		Mode:     r.ctrl.Mode(),
		Aimed:    r.ctrl.Aimed(aimedTolerance),
		Walking:  r.walker.Walking(),
		Cursor:   r.walker.Cursor(),
		PathLen:  r.walker.Len(),
		Fetching: r.pendingID != 0,
	}
}

func (r *Runtime) shutdown() {
	r.abandonFetch()
	r.walker.Stop()
	r.ctrl.Stop()
}

func report(fn func(error), err error) {
	if fn == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Path result callback panicked", "panic", rec)
		}
	}()
	fn(err)
}

func blockOf(pos mgl64.Vec3) [3]int {
	return [3]int{
		int(math.Floor(pos.X())),
		int(math.Floor(pos.Y())),
		int(math.Floor(pos.Z())),
	}
}
