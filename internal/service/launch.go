package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"launch_control/internal/clock"
	"launch_control/internal/logger"
	"launch_control/internal/models"
	"launch_control/internal/protocol"
	"launch_control/internal/sequencer"
)

var ErrStopped = errors.New("control loop is not running")

// LaunchDeps are the collaborators the control loop is assembled from.
type LaunchDeps struct {
	Config    sequencer.Configuration
	Clock     clock.Clock
	Firer     sequencer.Firer
	Presenter sequencer.Presenter
}

// LaunchService owns the sequencer and is its only caller. Operator
// commands and clock ticks are processed one at a time on the Run
// goroutine.
type LaunchService struct {
	seq      *sequencer.Sequencer
	clock    clock.Clock
	journal  Journal
	log      *logger.Logger
	commands chan Command

	stopOnce sync.Once
	stopped  chan struct{}
}

func NewLaunchService(deps LaunchDeps, journal Journal, log *logger.Logger) *LaunchService {
	if log == nil {
		log = logger.Nop()
	}
	s := &LaunchService{
		clock:    deps.Clock,
		journal:  journal,
		log:      log,
		commands: make(chan Command),
		stopped:  make(chan struct{}),
	}
	s.seq = sequencer.New(deps.Config, deps.Clock, deps.Firer, deps.Presenter,
		sequencer.WithLogger(log),
		sequencer.WithTransitionHook(s.recordTransition),
		sequencer.WithFireHook(s.recordFire),
		sequencer.WithConfigHook(s.recordConfig),
	)
	return s
}

// Run processes commands and ticks until ctx is canceled. The clock is
// stopped on return.
func (s *LaunchService) Run(ctx context.Context) {
	defer s.stopOnce.Do(func() { close(s.stopped) })
	defer s.clock.Stop()

	ticks := s.clock.C()
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("control_loop_stopped", "state", s.seq.State().String())
			return
		case cmd := <-s.commands:
			res := s.process(cmd)
			if cmd.reply != nil {
				cmd.reply <- res
			}
		case <-ticks:
			s.seq.Tick()
		}
	}
}

// Do hands cmd to the control loop and waits until it has been processed.
func (s *LaunchService) Do(ctx context.Context, cmd Command) (Result, error) {
	cmd.reply = make(chan Result, 1)
	select {
	case s.commands <- cmd:
	case <-s.stopped:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case res := <-cmd.reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (s *LaunchService) process(cmd Command) Result {
	switch cmd.Kind {
	case CmdEvent:
		from := s.seq.State()
		accepted := s.seq.Handle(cmd.Event)
		if !accepted {
			s.record(models.LaunchEvent{
				Type:        models.EventRejected,
				Description: fmt.Sprintf("%s ignored in %s", cmd.Event, from),
				Metadata:    map[string]any{"event": cmd.Event.String(), "state": from.String()},
			})
		}
		return Result{Accepted: accepted, Snapshot: s.seq.Snapshot()}
	case CmdConfig:
		s.seq.ApplyConfig(cmd.Config)
		return Result{Accepted: true, Snapshot: s.seq.Snapshot()}
	case CmdStatus:
		s.seq.Render()
		return Result{Accepted: true, Snapshot: s.seq.Snapshot()}
	default:
		s.log.Warnw("unknown_command", "kind", int(cmd.Kind))
		return Result{Snapshot: s.seq.Snapshot()}
	}
}

func (s *LaunchService) recordTransition(tr sequencer.Transition) {
	s.record(models.LaunchEvent{
		Type:        models.EventTransition,
		Description: fmt.Sprintf("%s -> %s on %s", tr.From, tr.To, tr.Event),
		Metadata: map[string]any{
			"from":      tr.From.String(),
			"to":        tr.To.String(),
			"event":     tr.Event.String(),
			"remaining": sequencer.FormatLabel(tr.Remaining),
		},
	})
}

func (s *LaunchService) recordFire(f protocol.Frame) {
	s.record(models.LaunchEvent{
		Type:        models.EventFire,
		Description: "fire frame " + f.String(),
		Metadata: map[string]any{
			"frame":        f.String(),
			"pulse_tenths": int(f.PulseTenths()),
		},
	})
}

func (s *LaunchService) recordConfig(cfg sequencer.Configuration, reset bool) {
	desc := fmt.Sprintf("duration %ds, pulse %d tenths", cfg.DurationSeconds(), cfg.PulseTenths)
	if !reset {
		desc += " (deferred until Standby)"
	}
	s.record(models.LaunchEvent{
		Type:        models.EventConfig,
		Description: desc,
		Metadata: map[string]any{
			"duration_ds":  cfg.DurationDeciseconds,
			"pulse_tenths": int(cfg.PulseTenths),
			"reset":        reset,
		},
	})
}

func (s *LaunchService) record(e models.LaunchEvent) {
	if s.journal != nil {
		s.journal.Record(e)
	}
}
