package pathfinder

import (
	"context"
	"log/slog"
	"time"
)

const keepaliveDelay = 5 * time.Second

type pinger interface {
	Keepalive(ctx context.Context) error
}

// RunKeepalive pings p every interval, starting after a short delay, until ctx is done.
// Failures are logged and do not stop the loop.
func RunKeepalive(ctx context.Context, p pinger, interval time.Duration) error {
	return runKeepalive(ctx, p, keepaliveDelay, interval)
}

func runKeepalive(ctx context.Context, p pinger, delay, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Duration(defaultConfig.KeepaliveInterval) * time.Millisecond
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := p.Keepalive(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("Keepalive failed", "error", err)
		} else {
			slog.Debug("Keepalive sent")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
