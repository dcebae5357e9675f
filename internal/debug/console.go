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

	"github.com/Versifine/stride/internal/kcc"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"
)

const (
	defaultRenderInterval = 50 * time.Millisecond
	defaultMovePulse      = 180 * time.Millisecond
	yawStep               = 5.0
)

type ControlledBody interface {
	State() kcc.State
	Output() kcc.Output
	Config() kcc.Config
	Teleport(feet mgl64.Vec3)
}

// Console drives one body from a raw terminal. It is the body's sim.Driver:
// the simulation pulls one input per tick through Intent.
type Console struct {
	body      ControlledBody
	query     kcc.ShapeQuery
	out       io.Writer
	now       func() time.Time
	render    time.Duration
	movePulse time.Duration

	mu            sync.Mutex
	yawDeg        float64
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	jumpQueued    bool
	holdJump      bool
	crouch        bool
	commandMode   bool
	commandBuf    []rune
	statusWidth   int
}

func NewConsole(body ControlledBody, query kcc.ShapeQuery) *Console {
	return &Console{
		body:      body,
		query:     query,
		out:       os.Stdout,
		now:       time.Now,
		render:    defaultRenderInterval,
		movePulse: defaultMovePulse,
	}
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.body == nil {
		return fmt.Errorf("console body is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprint(c.out, "[debug] console started (W/A/S/D pulse, Space jump, ] hold jump, C crouch, arrows yaw, :)\r\n")
	c.renderStatusLine()

	go c.renderLoop(ctx)

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
		c.handleKey(reader, b)
	}
}

// Intent turns the keys seen since the last tick into controller input.
func (c *Console) Intent(_ context.Context, _ uint64, _ kcc.State) (kcc.Input, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expirePulsesLocked(c.now())
	var move mgl64.Vec2
	if !c.forwardUntil.IsZero() {
		move[1]++
	}
	if !c.backwardUntil.IsZero() {
		move[1]--
	}
	if !c.rightUntil.IsZero() {
		move[0]++
	}
	if !c.leftUntil.IsZero() {
		move[0]--
	}

	in := kcc.Input{
		Move:        move,
		Yaw:         mgl64.DegToRad(c.yawDeg),
		JumpPressed: c.jumpQueued,
		JumpHeld:    c.jumpQueued || c.holdJump,
		CrouchHeld:  c.crouch,
	}
	c.jumpQueued = false
	return in, nil
}

func (c *Console) renderLoop(ctx context.Context) {
	ticker := time.NewTicker(c.render)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.renderStatusLine()
		}
	}
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulse(&c.forwardUntil, &c.backwardUntil)
	case 's', 'S':
		c.pulse(&c.backwardUntil, &c.forwardUntil)
	case 'a', 'A':
		c.pulse(&c.leftUntil, &c.rightUntil)
	case 'd', 'D':
		c.pulse(&c.rightUntil, &c.leftUntil)
	case ' ':
		c.mu.Lock()
		c.jumpQueued = true
		c.mu.Unlock()
	case ']':
		c.mu.Lock()
		c.holdJump = !c.holdJump
		enabled := c.holdJump
		c.mu.Unlock()
		slog.Debug("debug hold jump toggled", "enabled", enabled)
	case 'c', 'C':
		c.mu.Lock()
		c.crouch = !c.crouch
		enabled := c.crouch
		c.mu.Unlock()
		slog.Debug("debug crouch toggled", "enabled", enabled)
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.adjustYaw(yawStep)
		case 'C': // right
			c.adjustYaw(-yawStep)
		}
	}
	c.renderStatusLine()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s \r:%s", buf, buf)
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

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		s := c.body.State()
		fmt.Fprintf(c.out, "[debug] feet=(%.3f,%.3f,%.3f) vel=(%.3f,%.3f,%.3f) ground=%t crouch=%t coyote=%v buffer=%v\r\n",
			s.Feet().X(), s.Feet().Y(), s.Feet().Z(),
			s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z(),
			s.Grounded, s.Crouched, s.CoyoteTimer, s.JumpBufferTimer,
		)
	case "tp":
		if len(parts) != 4 {
			fmt.Fprint(c.out, "[debug] usage: :tp <x> <y> <z>\r\n")
			return
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		y, err2 := strconv.ParseFloat(parts[2], 64)
		z, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Fprint(c.out, "[debug] invalid tp args\r\n")
			return
		}
		c.body.Teleport(mgl64.Vec3{x, y, z})
		fmt.Fprintf(c.out, "[debug] teleported to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "probe":
		c.probe()
	case "yaw":
		if len(parts) != 2 {
			fmt.Fprint(c.out, "[debug] usage: :yaw <degrees>\r\n")
			return
		}
		deg, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			fmt.Fprint(c.out, "[debug] invalid yaw\r\n")
			return
		}
		c.mu.Lock()
		c.yawDeg = normalizeYaw(deg)
		c.mu.Unlock()
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

// probe prints what the ground detector sees under the body right now.
func (c *Console) probe() {
	if c.query == nil {
		fmt.Fprint(c.out, "[debug] no shape query attached\r\n")
		return
	}
	s := c.body.State()
	g := kcc.DetectGround(c.query, s.Shape, s.Position, s.Velocity.Y(), c.body.Config())
	if !g.HasHit {
		fmt.Fprint(c.out, "[debug] probe: nothing below within step range\r\n")
		return
	}
	n := g.Hit.Normal
	fmt.Fprintf(c.out, "[debug] probe: dist=%.4f normal=(%.3f,%.3f,%.3f) walkable=%t grounded=%t\r\n",
		g.Hit.Distance, n.X(), n.Y(), n.Z(), g.Walkable, g.Grounded)
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  W/S/A/D: pulse movement (~180ms)\r\n")
	fmt.Fprint(c.out, "  Space: jump\r\n")
	fmt.Fprint(c.out, "  ]: toggle hold jump (auto jump)\r\n")
	fmt.Fprint(c.out, "  C: toggle crouch\r\n")
	fmt.Fprint(c.out, "  Arrow Left/Right: yaw +/-5\r\n")
	fmt.Fprint(c.out, "  X: clear all input\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :yaw <degrees>\r\n")
	fmt.Fprint(c.out, "  :probe\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	yaw := c.yawDeg
	crouch := c.crouch
	hold := c.holdJump
	width := c.statusWidth
	c.mu.Unlock()

	out := c.body.Output()
	s := c.body.State()

	line := fmt.Sprintf(
		"[YAW:%.1f CRH:%s HLD:%s | X:%.2f Y:%.2f Z:%.2f eye:%.2f | speed:%.2f ground:%t]",
		yaw,
		boolLabel(crouch),
		boolLabel(hold),
		out.Position.X(),
		out.Position.Y(),
		out.Position.Z(),
		out.EyePosition.Y(),
		s.HorizontalSpeed(),
		out.Grounded,
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

func (c *Console) pulse(on, opposite *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*on = c.now().Add(c.movePulse)
	*opposite = time.Time{}
}

func (c *Console) adjustYaw(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yawDeg = normalizeYaw(c.yawDeg + delta)
}

func (c *Console) expirePulsesLocked(now time.Time) {
	for _, until := range []*time.Time{&c.forwardUntil, &c.backwardUntil, &c.leftUntil, &c.rightUntil} {
		if !until.IsZero() && !now.Before(*until) {
			*until = time.Time{}
		}
	}
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.forwardUntil = time.Time{}
	c.backwardUntil = time.Time{}
	c.leftUntil = time.Time{}
	c.rightUntil = time.Time{}
	c.jumpQueued = false
	c.holdJump = false
	c.crouch = false
	c.mu.Unlock()
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func normalizeYaw(yaw float64) float64 {
	for yaw <= -180 {
		yaw += 360
	}
	for yaw > 180 {
		yaw -= 360
	}
	return yaw
}
