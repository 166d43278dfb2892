package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/Versifine/strider/internal/body"
	"github.com/Versifine/strider/internal/config"
	"github.com/Versifine/strider/internal/control"
	"github.com/Versifine/strider/internal/debug"
	"github.com/Versifine/strider/internal/event"
	"github.com/Versifine/strider/internal/logger"
	"github.com/Versifine/strider/internal/pathfinder"
	"github.com/Versifine/strider/internal/terrain"
)

const pathfinderStartTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, *configPath, cfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Strider stopped", "error", err)
		logger.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, cfg *config.Config) error {
	world := terrain.NewGrid()
	if cfg.Sim.Scene != "" {
		var err error
		world, err = terrain.LoadScene(cfg.Sim.Scene)
		if err != nil {
			return err
		}
		slog.Info("Scene loaded", "path", cfg.Sim.Scene)
	}

	agentBody := body.New(mgl64.Vec3(cfg.Sim.Spawn), world)
	store := config.NewStore(cfg)
	bus := event.NewBus()
	logEvents(bus)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return config.Watch(ctx, configPath, store)
	})

	var (
		src    pathfinder.Source
		routes debug.RouteBook
		maps   debug.MapSwitcher
	)
	if cfg.Pathfinder.RouteFile != "" {
		file, err := pathfinder.LoadFileSource(cfg.Pathfinder.RouteFile)
		if err != nil {
			return err
		}
		src, routes = file, file
		slog.Info("Using route file", "path", cfg.Pathfinder.RouteFile, "routes", len(file.Routes))
	} else {
		client := pathfinder.NewClient(&cfg.Pathfinder)
		src = client
		if err := startPathfinder(ctx, g, client); err != nil {
			return err
		}
		loader := pathfinder.NewMapLoader(client)
		loader.Observe(client.Config().DefaultMap)
		maps = loader
		g.Go(func() error {
			return loader.Run(ctx)
		})
		g.Go(func() error {
			interval := time.Duration(client.Config().KeepaliveInterval) * time.Millisecond
			return pathfinder.RunKeepalive(ctx, client, interval)
		})
	}

	rt := control.New(agentBody, world, src, store, bus, control.Options{
		TickInterval:  time.Duration(cfg.Sim.TickInterval) * time.Millisecond,
		FrameInterval: time.Duration(cfg.Sim.FrameInterval) * time.Millisecond,
	})
	g.Go(func() error {
		return rt.Run(ctx)
	})

	if cfg.Sim.Console {
		console := debug.NewConsole(rt, agentBody, routes, maps, world)
		g.Go(func() error {
			return console.Start(ctx)
		})
	}

	slog.Info("Strider running", "spawn", cfg.Sim.Spawn, "endpoint", cfg.Pathfinder.Endpoint)
	return g.Wait()
}

// startPathfinder launches the local server when configured to and waits for it. A
// server that never answers is logged; keepalives keep reporting it.
func startPathfinder(ctx context.Context, g *errgroup.Group, client *pathfinder.Client) error {
	pcfg := client.Config()
	if !pcfg.AutoStart || pcfg.Executable == "" {
		return nil
	}
	cmd, err := pathfinder.Launch(ctx, pcfg.Executable)
	if err != nil {
		return err
	}
	g.Go(func() error {
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			slog.Warn("Pathfinder process exited", "error", err)
		}
		return nil
	})
	if err := pathfinder.WaitReady(ctx, client, pathfinderStartTimeout); err != nil {
		slog.Warn("Pathfinder did not come up", "error", err)
	}
	return nil
}

func logEvents(bus *event.Bus) {
	for _, name := range []string{event.EventPathStarted, event.EventPathCompleted, event.EventPathStopped} {
		bus.Subscribe(name, func(raw any) {
			evt, ok := raw.(event.PathEvent)
			if !ok {
				return
			}
			slog.Debug("Path event", "event", name, "nodes", evt.Nodes, "cursor", evt.Cursor)
		})
	}
	bus.Subscribe(event.EventPathFailed, func(raw any) {
		evt, ok := raw.(event.PathFailedEvent)
		if !ok {
			return
		}
		slog.Warn("No path", "start", evt.Start, "end", evt.End, "error", evt.Err)
	})
	for _, name := range []string{event.EventAimFinished, event.EventAimCancelled} {
		bus.Subscribe(name, func(raw any) {
			evt, ok := raw.(event.AimEvent)
			if !ok {
				return
			}
			slog.Debug("Aim event", "event", name, "yaw", evt.Yaw, "pitch", evt.Pitch, "timed_out", evt.TimedOut, "elapsed_ms", evt.Elapsed)
		})
	}
}
