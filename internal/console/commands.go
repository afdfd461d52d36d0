package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"launch_control/internal/models"
	"launch_control/internal/sequencer"
	"launch_control/internal/service"

	"github.com/google/shlex"
)

// Launcher is the control loop as the console sees it.
type Launcher interface {
	Do(ctx context.Context, cmd service.Command) (service.Result, error)
}

// JournalReader lists session journal entries.
type JournalReader interface {
	List(ctx context.Context, f service.JournalFilter) ([]models.LaunchEvent, error)
}

var (
	errUsage          = errors.New("usage")
	errUnknownCommand = errors.New("unknown command")
)

var operatorEvents = map[string]sequencer.Event{
	"arm":    sequencer.EventArm,
	"abort":  sequencer.EventAbort,
	"start":  sequencer.EventStartCountdown,
	"halt":   sequencer.EventHalt,
	"resume": sequencer.EventResume,
}

const helpText = `commands:
  arm                          arm the igniter
  start                        start the countdown
  halt                         freeze the countdown
  resume                       continue a halted countdown
  abort                        return to standby from anywhere
  config <seconds> <pulse>     countdown length in seconds; pulse width in hundredths
                               of a unit, sent to the board as whole tenths
  status                       show state, countdown and configuration
  log [TYPE] [N]               session journal (TRANSITION, CONFIG, FIRE, REJECTED)
  help                         this text
  quit                         leave`

// Run reads commands from the console input until EOF, quit or ctx is
// canceled.
func (c *Console) Run(ctx context.Context, launch Launcher, journal JournalReader) error {
	c.launch = launch
	c.journal = journal

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			quit, err := c.Exec(ctx, line)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, service.ErrStopped) {
					return nil
				}
				c.log.Debugw("console_command_failed", "line", line, "err", err)
				c.printf("error: %v", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// Exec runs one command line. It reports whether the operator asked to quit.
func (c *Console) Exec(ctx context.Context, line string) (bool, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", line, err)
	}
	if len(words) == 0 {
		return false, nil
	}

	name, args := strings.ToLower(words[0]), words[1:]
	if ev, ok := operatorEvents[name]; ok {
		return false, c.event(ctx, name, ev)
	}

	switch name {
	case "config":
		return false, c.config(ctx, args)
	case "status":
		return false, c.status(ctx)
	case "log":
		return false, c.journalList(ctx, args)
	case "help", "?":
		c.printf("%s", helpText)
		return false, nil
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("%w %q, try help", errUnknownCommand, name)
	}
}

func (c *Console) event(ctx context.Context, name string, ev sequencer.Event) error {
	res, err := c.launch.Do(ctx, service.EventCommand(ev))
	if err != nil {
		return err
	}
	if !res.Accepted {
		c.printf("%s is not available while %s", name, res.Snapshot.State)
	}
	return nil
}

func (c *Console) config(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: config <seconds> <pulse-hundredths>", errUsage)
	}
	seconds, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("countdown seconds: %w", err)
	}
	hundredths, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("pulse width: %w", err)
	}
	cfg, err := sequencer.NewConfiguration(seconds, hundredths)
	if err != nil {
		return err
	}

	res, err := c.launch.Do(ctx, service.ConfigCommand(cfg))
	if err != nil {
		return err
	}
	if res.Snapshot.State.DefersConfig() {
		c.printf("config saved: %s, applies after the next abort", describeConfig(cfg))
		return nil
	}
	c.printf("config applied: %s", describeConfig(cfg))
	return nil
}

func (c *Console) status(ctx context.Context) error {
	res, err := c.launch.Do(ctx, service.StatusCommand())
	if err != nil {
		return err
	}
	s := res.Snapshot
	c.printf("%sstate %s  %s  next %s  config %s  launches %d",
		c.prefix, s.State, s.Label, formatPulse(s.Pulse), describeConfig(s.Config), s.Launches)
	return nil
}

func (c *Console) journalList(ctx context.Context, args []string) error {
	if c.journal == nil {
		return errors.New("journal is not available")
	}
	var f service.JournalFilter
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil {
			f.Limit = n
			continue
		}
		f.Type = a
	}

	events, err := c.journal.List(ctx, f)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		c.printf("journal is empty")
		return nil
	}
	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %-10s  %s", e.OccurredAt.Local().Format("15:04:05.000"), e.Type, e.Description)
	}
	c.printf("%s", b.String())
	return nil
}

func describeConfig(cfg sequencer.Configuration) string {
	return fmt.Sprintf("%d s countdown, %s", cfg.DurationSeconds(), formatPulse(cfg.PulseTenths))
}

// formatPulse shows the pulse exactly as the board receives it.
func formatPulse(tenths uint8) string {
	return fmt.Sprintf("pulse %d (wire byte 0x%02X)", tenths, tenths)
}
