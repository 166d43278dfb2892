package pathfinder

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

type mapSwitcher interface {
	LoadMap(ctx context.Context, name string) error
}

// MapForArea maps an in-world area name onto the pathfinder map that covers it.
func MapForArea(area string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(area)) {
	case "hub":
		return "hub", true
	case "mines", "mine", "dwarven", "crystal":
		return "mines", true
	case "galatea", "garden":
		return "galatea", true
	default:
		return "", false
	}
}

// MapLoader switches the pathfinder map when the agent changes area. Loads run one at a
// time on the Run goroutine; repeated reports of the same area are ignored.
type MapLoader struct {
	switcher mapSwitcher
	requests chan string

	mu      sync.Mutex
	last    string
	pending string
}

func NewMapLoader(switcher mapSwitcher) *MapLoader {
	return &MapLoader{
		switcher: switcher,
		requests: make(chan string, 1),
	}
}

// Observe reports the agent's current area. It never blocks and returns whether a load
// was queued.
func (m *MapLoader) Observe(area string) bool {
	if _, ok := MapForArea(area); !ok {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if area == m.last || area == m.pending {
		return false
	}
	m.pending = area
	select {
	case <-m.requests:
	default:
	}
	m.requests <- area
	return true
}

// Last is the area whose map was most recently loaded.
func (m *MapLoader) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Reset forgets the loaded area so the next Observe loads again.
func (m *MapLoader) Reset() {
	m.mu.Lock()
	m.last = ""
	m.mu.Unlock()
}

func (m *MapLoader) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case area := <-m.requests:
			m.load(ctx, area)
		}
	}
}

func (m *MapLoader) load(ctx context.Context, area string) {
	name, _ := MapForArea(area)
	slog.Info("Detected area change, loading map", "area", area, "map", name)
	err := m.switcher.LoadMap(ctx, name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == area {
		m.pending = ""
	}
	if err != nil {
		slog.Error("Failed to load map", "map", name, "error", err)
		return
	}
	m.last = area
}
