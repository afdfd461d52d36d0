// Package sequencer is the launch control core: a five-state machine that
// gates when a fire frame may be sent.
//
// A Sequencer is not safe for concurrent use. Its owner feeds it operator
// events and clock ticks from a single goroutine, one at a time.
package sequencer

import (
	"launch_control/internal/clock"
	"launch_control/internal/logger"
	"launch_control/internal/protocol"
)

// Presenter receives display updates. Calls happen on the sequencer's
// goroutine and must not block.
type Presenter interface {
	ApplyDirective(s State, d Directive)
	UpdateCountdown(label string)
}

// Firer sends the fire frame for a pulse width.
type Firer interface {
	Fire(pulseTenths uint8) protocol.Frame
}

// Sequencer owns the current state, the countdown value and the
// configuration.
type Sequencer struct {
	state     State
	remaining int
	cfg       Configuration
	pulse     uint8
	launches  int

	clock     clock.Clock
	firer     Firer
	presenter Presenter
	log       *logger.Logger

	onTransition func(Transition)
	onFire       func(protocol.Frame)
	onConfig     func(cfg Configuration, reset bool)
}

// Option configures a Sequencer.
type Option func(*Sequencer)

func WithLogger(log *logger.Logger) Option {
	return func(s *Sequencer) {
		s.log = log
	}
}

// WithTransitionHook is called after every state change.
func WithTransitionHook(fn func(Transition)) Option {
	return func(s *Sequencer) {
		s.onTransition = fn
	}
}

// WithFireHook is called after a fire frame has been handed to the Firer.
func WithFireHook(fn func(protocol.Frame)) Option {
	return func(s *Sequencer) {
		s.onFire = fn
	}
}

// WithConfigHook is called on every ApplyConfig. reset reports whether the
// countdown value was reinitialized.
func WithConfigHook(fn func(cfg Configuration, reset bool)) Option {
	return func(s *Sequencer) {
		s.onConfig = fn
	}
}

// New builds a sequencer and enters Standby with cfg.
func New(cfg Configuration, c clock.Clock, firer Firer, presenter Presenter, opts ...Option) *Sequencer {
	s := &Sequencer{
		cfg:       cfg,
		clock:     c,
		firer:     firer,
		presenter: presenter,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = Standby
	s.enter(Standby)
	s.presenter.ApplyDirective(Standby, DirectiveFor(Standby))
	return s
}

// Handle processes an operator event. It reports whether a transition was
// taken; events with no transition from the current state are ignored.
func (s *Sequencer) Handle(ev Event) bool {
	if ev.internal() {
		s.log.Warnw("internal_event_rejected", "event", ev.String(), "state", s.state.String())
		return false
	}
	return s.dispatch(ev)
}

// Tick advances the countdown by one decisecond. Ticks only count in
// Countdown and Launched; anything else is a stale tick and is dropped.
func (s *Sequencer) Tick() {
	if s.state != Countdown && s.state != Launched {
		return
	}
	s.remaining--
	s.presenter.UpdateCountdown(FormatLabel(s.remaining))

	if s.state == Countdown && s.remaining <= 0 {
		s.dispatch(EventCountdownExpired)
	}
}

// ApplyConfig replaces the configuration. In Standby, Armed and Halted the
// countdown value and pulse width are reinitialized at once. In Countdown
// and Launched the running count is left alone and the new values take
// effect on the next Standby entry.
func (s *Sequencer) ApplyConfig(cfg Configuration) {
	s.cfg = cfg
	reset := !s.state.DefersConfig()
	if reset {
		s.load()
	}
	s.log.Infow("config_applied",
		"duration_ds", cfg.DurationDeciseconds,
		"pulse_tenths", cfg.PulseTenths,
		"state", s.state.String(),
		"reset", reset,
	)
	if s.onConfig != nil {
		s.onConfig(cfg, reset)
	}
}

// Render re-sends the current directive and label to the presenter.
func (s *Sequencer) Render() {
	s.presenter.ApplyDirective(s.state, DirectiveFor(s.state))
	s.presenter.UpdateCountdown(FormatLabel(s.remaining))
}

func (s *Sequencer) State() State {
	return s.state
}

// Remaining returns the countdown value in deciseconds.
func (s *Sequencer) Remaining() int {
	return s.remaining
}

// Snapshot is a copy of the sequencer's observable values.
type Snapshot struct {
	State     State
	Remaining int
	Label     string
	Config    Configuration
	Pulse     uint8 // pulse width the next fire will carry
	Launches  int
}

func (s *Sequencer) Snapshot() Snapshot {
	return Snapshot{
		State:     s.state,
		Remaining: s.remaining,
		Label:     FormatLabel(s.remaining),
		Config:    s.cfg,
		Pulse:     s.pulse,
		Launches:  s.launches,
	}
}

func (s *Sequencer) dispatch(ev Event) bool {
	to, ok := Next(s.state, ev)
	if !ok {
		s.log.Debugw("event_ignored", "event", ev.String(), "state", s.state.String())
		return false
	}

	from := s.state
	s.state = to
	s.enter(to)
	s.presenter.ApplyDirective(to, DirectiveFor(to))

	s.log.Infow("state_changed", "from", from.String(), "to", to.String(), "event", ev.String())
	if s.onTransition != nil {
		s.onTransition(Transition{From: from, To: to, Event: ev, Remaining: s.remaining})
	}
	return true
}

// enter runs the entry action for st.
func (s *Sequencer) enter(st State) {
	switch st {
	case Standby:
		s.clock.Stop()
		s.load()
	case Countdown:
		s.clock.Start()
	case Halted:
		s.clock.Stop()
	case Launched:
		s.fire()
	}
}

// load reinitializes the countdown value and pulse width from the
// current configuration.
func (s *Sequencer) load() {
	s.remaining = s.cfg.DurationDeciseconds
	s.pulse = s.cfg.PulseTenths
	s.presenter.UpdateCountdown(FormatLabel(s.remaining))
}

func (s *Sequencer) fire() {
	f := s.firer.Fire(s.pulse)
	s.launches++
	s.log.Infow("fire_frame_sent", "frame", f.String(), "pulse_tenths", f.PulseTenths(), "launch", s.launches)
	if s.onFire != nil {
		s.onFire(f)
	}
}
