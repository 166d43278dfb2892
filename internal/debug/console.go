package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"

	"github.com/Versifine/strider/internal/control"
	"github.com/Versifine/strider/internal/pathfinder"
	"github.com/Versifine/strider/internal/pathing"
	"github.com/Versifine/strider/internal/terrain"
)

const defaultStatusInterval = 100 * time.Millisecond

// Runtime is the part of control.Runtime the console drives.
type Runtime interface {
	GoTo(end [3]int, flags pathfinder.Flags, onResult func(error)) error
	FollowPath(path pathing.Path) error
	LookAt(point mgl64.Vec3, onDone func()) error
	LookAtBlock(b terrain.BlockPos, onDone func()) error
	Hold(b terrain.BlockPos) error
	Cancel() error
	Stop() error
	Teleport(pos mgl64.Vec3) error
	Status(ctx context.Context) (control.Status, error)
}

type Stance interface {
	SetSneaking(on bool)
	SetSprint(on bool)
}

type RouteBook interface {
	Route(name string) (pathing.Path, bool)
}

type MapSwitcher interface {
	Observe(area string) bool
	Last() string
	Reset()
}

type BlockNamer interface {
	BlockName(x, y, z int) string
}

// Console is a raw-terminal operator console. Keys toggle stance; ':' opens a command
// line for goto, look, hold and friends.
type Console struct {
	rt     Runtime
	stance Stance
	routes RouteBook
	maps   MapSwitcher
	blocks BlockNamer
	out    io.Writer

	statusInterval time.Duration

	mu          sync.Mutex
	sneaking    bool
	sprinting   bool
	commandMode bool
	commandBuf  []rune
	statusWidth int
}

// NewConsole builds a console. routes, maps and blocks may be nil; their commands then
// report that they are unavailable.
func NewConsole(rt Runtime, stance Stance, routes RouteBook, maps MapSwitcher, blocks BlockNamer) *Console {
	return &Console{
		rt:             rt,
		stance:         stance,
		routes:         routes,
		maps:           maps,
		blocks:         blocks,
		out:            os.Stdout,
		statusInterval: defaultStatusInterval,
	}
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.rt == nil {
		return fmt.Errorf("console runtime is nil")
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("console needs a terminal on stdin")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprint(c.out, "[debug] console started (X stop, C cancel aim, [ sneak, ] sprint, : command, Ctrl-C quit)\r\n")
	c.renderStatusLine(ctx)

	go c.statusLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if b == 3 { // Ctrl-C; raw mode swallows SIGINT
			return context.Canceled
		}
		c.handleKey(ctx, b)
	}
}

func (c *Console) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(c.statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.renderStatusLine(ctx)
		}
	}
}

func (c *Console) handleKey(ctx context.Context, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(ctx, b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'x', 'X':
		c.call("stop", c.rt.Stop())
	case 'c', 'C':
		c.call("cancel", c.rt.Cancel())
	case '[':
		c.toggleSneak()
	case ']':
		c.toggleSprint()
	}
	c.renderStatusLine(ctx)
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(ctx context.Context, b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(ctx, cmd)
		}
		c.renderStatusLine(ctx)
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine(ctx)
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(ctx context.Context, cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "goto":
		c.handleGoto(parts)
	case "route":
		c.handleRoute(parts)
	case "look":
		c.handleLook(parts)
	case "lookblock":
		pos, ok := c.blockArgs(parts, ":lookblock <x> <y> <z>")
		if !ok {
			return
		}
		c.call("lookblock", c.rt.LookAtBlock(pos, func() {
			fmt.Fprintf(c.out, "[debug] aimed at block %v\r\n", pos)
		}))
	case "hold":
		pos, ok := c.blockArgs(parts, ":hold <x> <y> <z>")
		if !ok {
			return
		}
		c.call("hold", c.rt.Hold(pos))
		fmt.Fprintf(c.out, "[debug] holding block %v (C to release)\r\n", pos)
	case "cancel":
		c.call("cancel", c.rt.Cancel())
	case "stop":
		c.call("stop", c.rt.Stop())
	case "tp":
		x, y, z, ok := c.floatArgs(parts, ":tp <x> <y> <z>")
		if !ok {
			return
		}
		c.call("tp", c.rt.Teleport(mgl64.Vec3{x, y, z}))
		fmt.Fprintf(c.out, "[debug] teleported to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "state":
		s, err := c.rt.Status(ctx)
		if err != nil {
			fmt.Fprintf(c.out, "[debug] state unavailable: %v\r\n", err)
			return
		}
		fmt.Fprintf(c.out, "[debug] pos=(%.3f,%.3f,%.3f) yaw=%.1f pitch=%.1f ground=%t mode=%s aimed=%t walking=%t cursor=%d/%d fetching=%t\r\n",
			s.Position.X(), s.Position.Y(), s.Position.Z(),
			s.Yaw, s.Pitch, s.OnGround, s.Mode, s.Aimed,
			s.Walking, s.Cursor, s.PathLen, s.Fetching,
		)
	case "block":
		pos, ok := c.blockArgs(parts, ":block <x> <y> <z>")
		if !ok {
			return
		}
		if c.blocks == nil {
			fmt.Fprint(c.out, "[debug] no block world loaded\r\n")
			return
		}
		name := c.blocks.BlockName(pos.X, pos.Y, pos.Z)
		fmt.Fprintf(c.out, "[debug] block %v: %s (%s)\r\n", pos, name, terrain.Classify(name))
	case "map":
		c.handleMap(parts)
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

// handleMap parses ":map [<area> [reload]]". Without an area it shows the loaded map.
func (c *Console) handleMap(parts []string) {
	if len(parts) > 3 || (len(parts) == 3 && parts[2] != "reload") {
		fmt.Fprint(c.out, "[debug] usage: :map [<area> [reload]]\r\n")
		return
	}
	if c.maps == nil {
		fmt.Fprint(c.out, "[debug] no pathfinder server configured\r\n")
		return
	}
	if len(parts) == 1 {
		last := c.maps.Last()
		if last == "" {
			last = "none"
		}
		fmt.Fprintf(c.out, "[debug] loaded area: %s\r\n", last)
		return
	}
	if len(parts) == 3 {
		c.maps.Reset()
	}
	if c.maps.Observe(parts[1]) {
		fmt.Fprintf(c.out, "[debug] loading map for %s\r\n", parts[1])
	} else {
		fmt.Fprintf(c.out, "[debug] %s: unknown area or already loaded\r\n", parts[1])
	}
}

// handleGoto parses ":goto x y z [warp] [etherwarp] [nokeynodes] [spline] [perfect]".
func (c *Console) handleGoto(parts []string) {
	if len(parts) < 4 {
		fmt.Fprint(c.out, "[debug] usage: :goto <x> <y> <z> [warp|etherwarp|nokeynodes|spline|perfect]...\r\n")
		return
	}
	pos, ok := c.blockArgs(parts[:4], ":goto <x> <y> <z>")
	if !ok {
		return
	}
	flags := pathfinder.DefaultFlags()
	for _, opt := range parts[4:] {
		switch opt {
		case "warp":
			flags.UseWarpPoints = true
		case "etherwarp":
			flags.UseEtherwarp = true
		case "nokeynodes":
			flags.UseKeynodes = false
		case "spline":
			flags.UseSpline = true
		case "perfect":
			flags.PerfectPath = true
		default:
			fmt.Fprintf(c.out, "[debug] unknown goto option: %s\r\n", opt)
			return
		}
	}

	end := [3]int{pos.X, pos.Y, pos.Z}
	fmt.Fprintf(c.out, "[debug] calculating path to %d,%d,%d...\r\n", end[0], end[1], end[2])
	c.call("goto", c.rt.GoTo(end, flags, func(err error) {
		if err != nil {
			fmt.Fprintf(c.out, "[debug] failed to find path: %v\r\n", err)
			return
		}
		fmt.Fprint(c.out, "[debug] path found, walking\r\n")
	}))
}

func (c *Console) handleRoute(parts []string) {
	if len(parts) != 2 {
		fmt.Fprint(c.out, "[debug] usage: :route <name>\r\n")
		return
	}
	if c.routes == nil {
		fmt.Fprint(c.out, "[debug] no route file loaded\r\n")
		return
	}
	path, ok := c.routes.Route(parts[1])
	if !ok {
		fmt.Fprintf(c.out, "[debug] route %s not found\r\n", parts[1])
		return
	}
	c.call("route", c.rt.FollowPath(path))
	fmt.Fprintf(c.out, "[debug] walking route %s (%d nodes)\r\n", parts[1], path.Len())
}

func (c *Console) handleLook(parts []string) {
	x, y, z, ok := c.floatArgs(parts, ":look <x> <y> <z>")
	if !ok {
		return
	}
	c.call("look", c.rt.LookAt(mgl64.Vec3{x, y, z}, func() {
		fmt.Fprintf(c.out, "[debug] aimed at (%.3f, %.3f, %.3f)\r\n", x, y, z)
	}))
}

func (c *Console) floatArgs(parts []string, usage string) (float64, float64, float64, bool) {
	if len(parts) != 4 {
		fmt.Fprintf(c.out, "[debug] usage: %s\r\n", usage)
		return 0, 0, 0, false
	}
	x, err1 := strconv.ParseFloat(parts[1], 64)
	y, err2 := strconv.ParseFloat(parts[2], 64)
	z, err3 := strconv.ParseFloat(parts[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Fprintf(c.out, "[debug] invalid %s args\r\n", parts[0])
		return 0, 0, 0, false
	}
	return x, y, z, true
}

func (c *Console) blockArgs(parts []string, usage string) (terrain.BlockPos, bool) {
	if len(parts) != 4 {
		fmt.Fprintf(c.out, "[debug] usage: %s\r\n", usage)
		return terrain.BlockPos{}, false
	}
	x, err1 := strconv.Atoi(parts[1])
	y, err2 := strconv.Atoi(parts[2])
	z, err3 := strconv.Atoi(parts[3])
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Fprintf(c.out, "[debug] invalid %s args\r\n", parts[0])
		return terrain.BlockPos{}, false
	}
	return terrain.BlockPos{X: x, Y: y, Z: z}, true
}

func (c *Console) call(name string, err error) {
	if err != nil {
		fmt.Fprintf(c.out, "[debug] %s: %v\r\n", name, err)
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  X: stop walking and release the view\r\n")
	fmt.Fprint(c.out, "  C: cancel the current aim\r\n")
	fmt.Fprint(c.out, "  [: toggle sneak\r\n")
	fmt.Fprint(c.out, "  ]: toggle sprint\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :goto <x> <y> <z> [warp|etherwarp|nokeynodes|spline|perfect]...\r\n")
	fmt.Fprint(c.out, "  :route <name>\r\n")
	fmt.Fprint(c.out, "  :look <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :lookblock <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :hold <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :cancel\r\n")
	fmt.Fprint(c.out, "  :stop\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :block <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :map [<area> [reload]]\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine(ctx context.Context) {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	sneaking, sprinting := c.sneaking, c.sprinting
	width := c.statusWidth
	c.mu.Unlock()

	s, err := c.rt.Status(ctx)
	if err != nil {
		return
	}

	line := fmt.Sprintf(
		"[%s %d/%d | SPR:%s SNK:%s | YAW:%.1f PIT:%.1f | X:%.2f Y:%.2f Z:%.2f ground:%t]",
		s.Mode,
		s.Cursor,
		s.PathLen,
		boolLabel(sprinting),
		boolLabel(sneaking),
		s.Yaw,
		s.Pitch,
		s.Position.X(),
		s.Position.Y(),
		s.Position.Z(),
		s.OnGround,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (c *Console) toggleSneak() {
	c.mu.Lock()
	c.sneaking = !c.sneaking
	if c.sneaking {
		c.sprinting = false
	}
	sneaking, sprinting := c.sneaking, c.sprinting
	c.mu.Unlock()
	c.applyStance(sneaking, sprinting)
	slog.Debug("debug sneak toggled", "enabled", sneaking)
}

func (c *Console) toggleSprint() {
	c.mu.Lock()
	c.sprinting = !c.sprinting
	if c.sprinting {
		c.sneaking = false
	}
	sneaking, sprinting := c.sneaking, c.sprinting
	c.mu.Unlock()
	c.applyStance(sneaking, sprinting)
	slog.Debug("debug sprint toggled", "enabled", sprinting)
}

func (c *Console) applyStance(sneaking, sprinting bool) {
	if c.stance == nil {
		return
	}
	c.stance.SetSneaking(sneaking)
	c.stance.SetSprint(sprinting)
}
