package pathfinder

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"
)

const readyPoll = 250 * time.Millisecond

// Launch starts the pathfinding server executable in its own directory. The process is
// killed when ctx is done.
func Launch(ctx context.Context, executable string) (*exec.Cmd, error) {
	abs, err := filepath.Abs(executable)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, abs)
	cmd.Dir = filepath.Dir(abs)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start pathfinder %s: %w", abs, err)
	}
	slog.Info("Started pathfinder process", "path", abs, "pid", cmd.Process.Pid)
	return cmd, nil
}

// WaitReady polls the server until it answers a keepalive or timeout passes.
func WaitReady(ctx context.Context, p pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPoll)
	defer ticker.Stop()
	for {
		err := p.Keepalive(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("pathfinder not ready: %w", err)
		case <-ticker.C:
		}
	}
}
