package pathfinder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/strider/internal/config"
	"github.com/Versifine/strider/internal/pathing"
)

// Client talks to the local pathfinding server.
type Client struct {
	client  http.Client
	config  config.PathfinderConfig
	baseURL string

	mu         sync.Mutex
	currentMap string
}

var defaultConfig = config.PathfinderConfig{
	Endpoint:          "http://localhost:3000",
	KeepaliveInterval: 60000,
	RequestTimeout:    10000,
}

func NewClient(cfg *config.PathfinderConfig) *Client {
	if cfg == nil {
		cfg = &defaultConfig
	}
	c := &Client{
		client:  http.Client{},
		config:  *cfg,
		baseURL: strings.TrimRight(cfg.Endpoint, "/"),
	}
	if c.baseURL == "" {
		c.baseURL = defaultConfig.Endpoint
	}
	return c
}

func (c *Client) Config() config.PathfinderConfig {
	return c.config
}

func (c *Client) CurrentMap() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentMap
}

// Pathfind asks the server for a path. An empty answer is ErrNoPath.
func (c *Client) Pathfind(ctx context.Context, req Request) (pathing.Path, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	jsonData, err := json.Marshal(req.wire())
	if err != nil {
		return pathing.Path{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pathfind", bytes.NewBuffer(jsonData))
	if err != nil {
		return pathing.Path{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.do(httpReq)
	if err != nil {
		return pathing.Path{}, fmt.Errorf("pathfind %s: %w", req, err)
	}

	var resp PathfindResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return pathing.Path{}, fmt.Errorf("pathfind %s: decode response: %w", req, err)
	}
	if len(resp.Path) == 0 {
		return pathing.Path{}, fmt.Errorf("pathfind %s: %w", req, ErrNoPath)
	}

	slog.Info("Pathfinding successful", "nodes", len(resp.Path), "keynodes", len(resp.Keynodes))
	return pathing.NewPath(toWaypoints(resp.Path), toWaypoints(resp.Keynodes)), nil
}

// LoadMap switches the server to the named map.
func (c *Client) LoadMap(ctx context.Context, name string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	u := c.baseURL + "/api/loadmap?map=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("load map %q: %w", name, err)
	}

	c.mu.Lock()
	c.currentMap = name
	c.mu.Unlock()
	slog.Info("Loaded map", "map", name)
	return nil
}

// Keepalive pings the server so it does not shut itself down.
func (c *Client) Keepalive(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/keepalive", nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		slog.Error("Pathfinder request failed", "url", req.URL.Path, "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, time.Duration(c.config.RequestTimeout)*time.Millisecond)
	}
	return context.WithCancel(ctx)
}
