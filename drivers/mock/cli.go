package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/nanoncore/nano-devctl/types"
)

// Exchange is one step of a scripted dialogue: the line the device
// expects to receive and what it prints in reply. An empty Line accepts
// any input. Do, when set, runs as the line is accepted and stands for the
// device-side effect of the command.
type Exchange struct {
	Line  string
	Reply string
	Do    func()
}

// CLI replays a scripted dialogue as a types.CLISession. Replies are
// buffered and consumed by Expect the way a terminal stream would be.
type CLI struct {
	mu      sync.Mutex
	script  []Exchange
	pending string
	sent    []string
	before  []string
	closed  int
}

var _ types.CLISession = (*CLI)(nil)

// NewCLI starts a dialogue. banner is printed before any input, usually
// the ready prompt.
func NewCLI(banner string, script ...Exchange) *CLI {
	return &CLI{pending: banner, script: script}
}

// Sent returns every line sent so far.
func (c *CLI) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

// Remaining is the number of unconsumed script steps.
func (c *CLI) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.script)
}

// Closed reports how many times Close was called.
func (c *CLI) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Expect implements types.CLISession. A prompt that never appears is a
// TimeoutError, like a silent device.
func (c *CLI) Expect(ctx context.Context, literals ...string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return -1, types.Wrap(types.KindTimeout, err, "cli: expect %q", literals)
	}
	if c.closed > 0 {
		return -1, types.Errorf(types.KindConnection, "cli: session closed")
	}
	for i, lit := range literals {
		if pos := strings.Index(c.pending, lit); pos >= 0 {
			c.before = splitCRLF(c.pending[:pos])
			c.pending = c.pending[pos+len(lit):]
			return i, nil
		}
	}
	return -1, types.Errorf(types.KindTimeout, "cli: waiting for %q", literals)
}

// Send implements types.CLISession. A line that differs from the script is
// a ConsoleError.
func (c *CLI) Send(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed > 0 {
		return types.Errorf(types.KindConnection, "cli: session closed")
	}
	c.sent = append(c.sent, line)
	if len(c.script) == 0 {
		return nil
	}
	step := c.script[0]
	if step.Line != "" && step.Line != line {
		return types.Errorf(types.KindConsole, "cli: sent %q, device expected %q", line, step.Line)
	}
	c.script = c.script[1:]
	c.pending += step.Reply
	if step.Do != nil {
		step.Do()
	}
	return nil
}

// DoCmd implements types.CLISession.
func (c *CLI) DoCmd(ctx context.Context, line string, prompts ...string) (int, error) {
	if err := c.Send(line); err != nil {
		return -1, err
	}
	idx, err := c.Expect(ctx, prompts...)
	if err != nil {
		return -1, types.Wrap(types.KindConsole, err, "cli: %q", line)
	}
	return idx, nil
}

// LinesBefore implements types.CLISession.
func (c *CLI) LinesBefore() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.before...)
}

// Close implements types.CLISession.
func (c *CLI) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func splitCRLF(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
