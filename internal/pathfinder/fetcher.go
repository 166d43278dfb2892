package pathfinder

import (
	"context"
	"sync"

	"github.com/Versifine/strider/internal/pathing"
)

// Result is the outcome of one background pathfind.
type Result struct {
	ID      uint64
	Request Request
	Path    pathing.Path
	Err     error
}

// Fetcher runs pathfinds off the control goroutine and hands back only the newest
// result. Starting a new fetch cancels the one in flight and discards any undelivered
// older result.
type Fetcher struct {
	src     Source
	results chan Result

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewFetcher(src Source) *Fetcher {
	return &Fetcher{
		src:     src,
		results: make(chan Result, 1),
	}
}

func (f *Fetcher) Results() <-chan Result {
	return f.results
}

// Fetch starts a pathfind and returns its ID.
func (f *Fetcher) Fetch(ctx context.Context, req Request) uint64 {
	ctx, cancel := context.WithCancel(ctx)

	f.mu.Lock()
	f.supersedeLocked()
	f.seq++
	id := f.seq
	f.cancel = cancel
	f.mu.Unlock()

	go func() {
		defer cancel()
		path, err := f.src.Pathfind(ctx, req)
		f.deliver(Result{ID: id, Request: req, Path: path, Err: err})
	}()
	return id
}

// Cancel abandons the fetch in flight, if any. Its result is never delivered.
func (f *Fetcher) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supersedeLocked()
	f.seq++
}

func (f *Fetcher) supersedeLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	select {
	case <-f.results:
	default:
	}
}

func (f *Fetcher) deliver(r Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID != f.seq {
		return
	}
	f.cancel = nil
	select {
	case <-f.results:
	default:
	}
	f.results <- r
}
