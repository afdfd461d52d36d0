// Package console is the operator terminal: it draws what the sequencer
// tells it to and turns typed lines into control-loop commands.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"launch_control/internal/logger"
	"launch_control/internal/sequencer"
)

const dryRunPrefix = "[DRY RUN] "

// Console implements sequencer.Presenter on a line terminal. The status
// line is redrawn in place on every countdown update.
type Console struct {
	in     io.Reader
	out    io.Writer
	log    *logger.Logger
	prefix string

	mu        sync.Mutex
	state     sequencer.State
	directive sequencer.Directive
	label     string
	midLine   bool

	launch  Launcher
	journal JournalReader
}

type Option func(*Console)

// WithDryRun marks every status line so the display never claims a live
// igniter.
func WithDryRun(on bool) Option {
	return func(c *Console) {
		if on {
			c.prefix = dryRunPrefix
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Console) {
		c.log = log
	}
}

func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:  in,
		out: out,
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ApplyDirective prints the new status and the controls now offered.
func (c *Console) ApplyDirective(s sequencer.State, d sequencer.Directive) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.directive = d

	c.endLine()
	fmt.Fprintln(c.out, c.statusLine())
	if ctl := controls(d); ctl != "" {
		fmt.Fprintf(c.out, "  controls: %s\n", ctl)
	}
}

// UpdateCountdown redraws the status line with label.
func (c *Console) UpdateCountdown(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.label = label
	if !c.directive.CountdownVisible {
		return
	}
	fmt.Fprintf(c.out, "\r%s", c.statusLine())
	c.midLine = true
}

// printf writes a message on a line of its own.
func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) endLine() {
	if c.midLine {
		fmt.Fprintln(c.out)
		c.midLine = false
	}
}

func (c *Console) statusLine() string {
	line := c.prefix + "[" + c.directive.Status + "]"
	if c.directive.CountdownVisible && c.label != "" {
		line += " " + c.label
	}
	return line
}

// controls lists the operator commands d offers, in console spelling.
func controls(d sequencer.Directive) string {
	var out []string
	if d.Arm {
		out = append(out, "arm")
	}
	if d.StartCountdown {
		out = append(out, "start")
	}
	if d.Halt {
		out = append(out, "halt")
	}
	if d.Resume {
		out = append(out, "resume")
	}
	if d.Abort {
		out = append(out, "abort")
	}
	if d.ConfigInput {
		out = append(out, "config")
	}
	return strings.Join(out, " ")
}
