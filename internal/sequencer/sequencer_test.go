package sequencer

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"launch_control/internal/protocol"
)

// ---- Test doubles ----

type fakeClock struct {
	running bool
	starts  int
	stops   int
}

func (c *fakeClock) Start()              { c.running = true; c.starts++ }
func (c *fakeClock) Stop()               { c.running = false; c.stops++ }
func (c *fakeClock) Running() bool       { return c.running }
func (c *fakeClock) C() <-chan time.Time { return nil }

type recordingSender struct {
	frames [][]byte
}

func (r *recordingSender) Send(b []byte) { r.frames = append(r.frames, b) }

type directiveCall struct {
	state State
	d     Directive
}

type recordingPresenter struct {
	directives []directiveCall
	labels     []string
}

func (p *recordingPresenter) ApplyDirective(s State, d Directive) {
	p.directives = append(p.directives, directiveCall{s, d})
}
func (p *recordingPresenter) UpdateCountdown(label string) { p.labels = append(p.labels, label) }

func (p *recordingPresenter) lastDirective(t *testing.T) directiveCall {
	t.Helper()
	if len(p.directives) == 0 {
		t.Fatalf("no directive applied")
	}
	return p.directives[len(p.directives)-1]
}

func (p *recordingPresenter) lastLabel(t *testing.T) string {
	t.Helper()
	if len(p.labels) == 0 {
		t.Fatalf("no label drawn")
	}
	return p.labels[len(p.labels)-1]
}

type harness struct {
	seq    *Sequencer
	clock  *fakeClock
	sender *recordingSender
	enc    *protocol.Encoder
	pres   *recordingPresenter
}

func newHarness(t *testing.T, durationSeconds, pulseHundredths int, opts ...Option) *harness {
	t.Helper()
	cfg, err := NewConfiguration(durationSeconds, pulseHundredths)
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}
	h := &harness{
		clock:  &fakeClock{},
		sender: &recordingSender{},
		pres:   &recordingPresenter{},
	}
	h.enc = protocol.NewEncoder(h.sender)
	h.seq = New(cfg, h.clock, h.enc, h.pres, opts...)
	return h
}

func (h *harness) mustHandle(t *testing.T, ev Event, want State) {
	t.Helper()
	if !h.seq.Handle(ev) {
		t.Fatalf("%s from %s was ignored", ev, h.seq.State())
	}
	if h.seq.State() != want {
		t.Fatalf("after %s: state = %s, want %s", ev, h.seq.State(), want)
	}
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.seq.Tick()
	}
}

// driveTo reaches st by the shortest operator path.
func (h *harness) driveTo(t *testing.T, st State) {
	t.Helper()
	switch st {
	case Standby:
	case Armed:
		h.mustHandle(t, EventArm, Armed)
	case Countdown:
		h.driveTo(t, Armed)
		h.mustHandle(t, EventStartCountdown, Countdown)
	case Halted:
		h.driveTo(t, Countdown)
		h.mustHandle(t, EventHalt, Halted)
	case Launched:
		h.driveTo(t, Countdown)
		h.ticks(h.seq.Remaining())
		if h.seq.State() != Launched {
			t.Fatalf("countdown did not reach Launched, state=%s remaining=%d", h.seq.State(), h.seq.Remaining())
		}
	}
}

// ---- Tests ----

func TestNew_EntersStandby(t *testing.T) {
	h := newHarness(t, 10, 250)

	if h.seq.State() != Standby {
		t.Fatalf("initial state = %s", h.seq.State())
	}
	if h.seq.Remaining() != 100 {
		t.Fatalf("initial remaining = %d, want 100", h.seq.Remaining())
	}
	if h.clock.running {
		t.Fatalf("clock must be stopped in Standby")
	}
	if got := h.pres.lastDirective(t); got.state != Standby || got.d != DirectiveFor(Standby) {
		t.Fatalf("initial directive = %+v", got)
	}
	if got := h.pres.lastLabel(t); got != "T-00:10.0" {
		t.Fatalf("initial label = %q", got)
	}
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from State
		ev   Event
		to   State
	}{
		{Standby, EventArm, Armed},
		{Armed, EventAbort, Standby},
		{Armed, EventStartCountdown, Countdown},
		{Countdown, EventHalt, Halted},
		{Countdown, EventAbort, Standby},
		{Halted, EventResume, Countdown},
		{Halted, EventAbort, Standby},
		{Launched, EventAbort, Standby},
	}
	for _, tc := range cases {
		t.Run(tc.from.String()+"/"+tc.ev.String(), func(t *testing.T) {
			h := newHarness(t, 1, 100)
			h.driveTo(t, tc.from)
			h.mustHandle(t, tc.ev, tc.to)
		})
	}
}

func TestInvalidEventsAreIgnored(t *testing.T) {
	operator := []Event{EventArm, EventAbort, EventStartCountdown, EventHalt, EventResume}
	for _, st := range allStates() {
		for _, ev := range operator {
			if _, ok := Next(st, ev); ok {
				continue
			}
			t.Run(st.String()+"/"+ev.String(), func(t *testing.T) {
				h := newHarness(t, 1, 100)
				h.driveTo(t, st)
				before := h.seq.Snapshot()
				nDirectives := len(h.pres.directives)

				if h.seq.Handle(ev) {
					t.Fatalf("expected %s to be ignored in %s", ev, st)
				}
				if h.seq.Snapshot() != before {
					t.Fatalf("ignored event changed state: %+v -> %+v", before, h.seq.Snapshot())
				}
				if len(h.pres.directives) != nDirectives {
					t.Fatalf("ignored event re-rendered the display")
				}
			})
		}
	}
}

func TestHandle_RejectsInternalExpiry(t *testing.T) {
	h := newHarness(t, 10, 100)
	h.driveTo(t, Countdown)

	if h.seq.Handle(EventCountdownExpired) {
		t.Fatalf("operator must not be able to raise countdown-expired")
	}
	if h.seq.State() != Countdown || len(h.sender.frames) != 0 {
		t.Fatalf("state=%s frames=%d", h.seq.State(), len(h.sender.frames))
	}
}

func TestAbortFromEveryNonStandbyState(t *testing.T) {
	for _, st := range []State{Armed, Countdown, Halted, Launched} {
		t.Run(st.String(), func(t *testing.T) {
			h := newHarness(t, 2, 100)
			h.driveTo(t, st)
			h.mustHandle(t, EventAbort, Standby)

			if h.clock.running {
				t.Fatalf("clock still running after abort from %s", st)
			}
			if h.seq.Remaining() != 20 {
				t.Fatalf("remaining after abort = %d, want 20", h.seq.Remaining())
			}
			if got := h.pres.lastDirective(t); got.state != Standby {
				t.Fatalf("display shows %s after abort", got.state)
			}
		})
	}
}

func TestSingleFireAcrossCycles(t *testing.T) {
	var launched int
	h := newHarness(t, 1, 250, WithTransitionHook(func(tr Transition) {
		if tr.From == Countdown && tr.To == Launched {
			launched++
		}
	}))

	for cycle := 0; cycle < 3; cycle++ {
		h.mustHandle(t, EventArm, Armed)
		h.mustHandle(t, EventStartCountdown, Countdown)
		h.ticks(10)
		if h.seq.State() != Launched {
			t.Fatalf("cycle %d: state = %s", cycle, h.seq.State())
		}
		// post-launch ticks keep counting up and never refire
		h.ticks(25)
		h.mustHandle(t, EventAbort, Standby)
	}

	if len(h.sender.frames) != 3 || launched != 3 {
		t.Fatalf("frames=%d launches=%d, want 3 and 3", len(h.sender.frames), launched)
	}
	for i, f := range h.sender.frames {
		if !bytes.Equal(f, []byte{0x4E, 0x02, 0x4C}) {
			t.Fatalf("frame %d = % X", i, f)
		}
	}
	if h.seq.Snapshot().Launches != 3 {
		t.Fatalf("snapshot launches = %d", h.seq.Snapshot().Launches)
	}
}

func TestExpiryFiresOnTheZeroTick(t *testing.T) {
	h := newHarness(t, 1, 100)
	h.driveTo(t, Countdown)

	h.ticks(9)
	if h.seq.State() != Countdown || len(h.sender.frames) != 0 {
		t.Fatalf("fired early: state=%s frames=%d", h.seq.State(), len(h.sender.frames))
	}
	h.seq.Tick()
	if h.seq.State() != Launched || len(h.sender.frames) != 1 {
		t.Fatalf("zero tick: state=%s frames=%d", h.seq.State(), len(h.sender.frames))
	}
	if h.seq.Remaining() != 0 {
		t.Fatalf("remaining at launch = %d", h.seq.Remaining())
	}
	if !h.clock.running {
		t.Fatalf("clock should keep running after launch")
	}

	h.ticks(5)
	if got := h.pres.lastLabel(t); got != "T+00:00.5" {
		t.Fatalf("post-launch label = %q", got)
	}
	if len(h.sender.frames) != 1 {
		t.Fatalf("refired after launch: %d frames", len(h.sender.frames))
	}
}

func TestZeroDurationFiresOnFirstTick(t *testing.T) {
	h := newHarness(t, 0, 100)
	h.driveTo(t, Countdown)
	h.seq.Tick()

	if h.seq.State() != Launched || len(h.sender.frames) != 1 {
		t.Fatalf("state=%s frames=%d", h.seq.State(), len(h.sender.frames))
	}
}

func TestHaltResumeContinuity(t *testing.T) {
	h := newHarness(t, 10, 100)
	h.driveTo(t, Countdown)

	h.ticks(30)
	if h.seq.Remaining() != 70 {
		t.Fatalf("after 30 ticks remaining = %d", h.seq.Remaining())
	}
	h.mustHandle(t, EventHalt, Halted)
	if h.clock.running {
		t.Fatalf("clock running while halted")
	}

	// stale ticks while halted are dropped
	h.ticks(3)
	if h.seq.Remaining() != 70 {
		t.Fatalf("halted value drifted to %d", h.seq.Remaining())
	}

	h.mustHandle(t, EventResume, Countdown)
	if !h.clock.running {
		t.Fatalf("clock not restarted on resume")
	}
	h.seq.Tick()
	if h.seq.Remaining() != 69 {
		t.Fatalf("after resume+tick remaining = %d, want 69", h.seq.Remaining())
	}
}

func TestTicksIgnoredOutsideCountdown(t *testing.T) {
	for _, st := range []State{Standby, Armed, Halted} {
		t.Run(st.String(), func(t *testing.T) {
			h := newHarness(t, 5, 100)
			h.driveTo(t, st)
			before := h.seq.Remaining()
			h.ticks(4)
			if h.seq.Remaining() != before {
				t.Fatalf("tick changed value in %s: %d -> %d", st, before, h.seq.Remaining())
			}
		})
	}
}

func TestDisplayDeterminism(t *testing.T) {
	// Countdown via Armed
	a := newHarness(t, 10, 100)
	a.driveTo(t, Countdown)
	viaArmed := a.pres.lastDirective(t)

	// Countdown via Halted
	b := newHarness(t, 10, 100)
	b.driveTo(t, Halted)
	b.mustHandle(t, EventResume, Countdown)
	viaHalted := b.pres.lastDirective(t)

	if viaArmed != viaHalted {
		t.Fatalf("Countdown directive depends on path: %+v vs %+v", viaArmed, viaHalted)
	}

	// Standby via initial entry and via abort from each state
	initial := newHarness(t, 10, 100).pres.lastDirective(t)
	for _, st := range []State{Armed, Countdown, Halted, Launched} {
		h := newHarness(t, 1, 100)
		h.driveTo(t, st)
		h.mustHandle(t, EventAbort, Standby)
		if got := h.pres.lastDirective(t); got != initial {
			t.Fatalf("Standby via %s = %+v, want %+v", st, got, initial)
		}
	}
}

func TestConfigApplyIsolationDuringCountdown(t *testing.T) {
	var resets []bool
	h := newHarness(t, 10, 100, WithConfigHook(func(_ Configuration, reset bool) {
		resets = append(resets, reset)
	}))
	h.driveTo(t, Countdown)
	h.ticks(5)

	next, err := NewConfiguration(60, 500)
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}
	h.seq.ApplyConfig(next)

	if h.seq.Remaining() != 95 {
		t.Fatalf("in-flight value changed to %d", h.seq.Remaining())
	}
	if h.seq.Snapshot().Pulse != 1 {
		t.Fatalf("in-flight pulse changed to %d", h.seq.Snapshot().Pulse)
	}

	h.mustHandle(t, EventAbort, Standby)
	if h.seq.Remaining() != 600 || h.seq.Snapshot().Pulse != 5 {
		t.Fatalf("Standby did not pick up new config: %+v", h.seq.Snapshot())
	}
	if len(resets) != 1 || resets[0] {
		t.Fatalf("config hook resets = %v", resets)
	}
}

func TestConfigApplyAfterLaunchKeepsElapsedCount(t *testing.T) {
	var resets []bool
	h := newHarness(t, 1, 100, WithConfigHook(func(_ Configuration, reset bool) {
		resets = append(resets, reset)
	}))
	h.driveTo(t, Launched)
	h.ticks(2)

	next, _ := NewConfiguration(30, 500)
	h.seq.ApplyConfig(next)
	h.ticks(1)

	if h.seq.State() != Launched {
		t.Fatalf("state = %s", h.seq.State())
	}
	if got := h.pres.lastLabel(t); got != "T+00:00.3" {
		t.Fatalf("label after config in Launched = %q, want T+00:00.3", got)
	}
	if len(resets) != 1 || resets[0] {
		t.Fatalf("config hook resets = %v", resets)
	}

	h.mustHandle(t, EventAbort, Standby)
	if h.seq.Remaining() != 300 || h.seq.Snapshot().Pulse != 5 {
		t.Fatalf("Standby did not pick up new config: %+v", h.seq.Snapshot())
	}
}

func TestDefersConfig(t *testing.T) {
	want := map[State]bool{Standby: false, Armed: false, Countdown: true, Halted: false, Launched: true}
	for st, w := range want {
		if st.DefersConfig() != w {
			t.Errorf("%s.DefersConfig() = %v, want %v", st, st.DefersConfig(), w)
		}
	}
}

func TestConfigApplyWhileClockStoppedResets(t *testing.T) {
	for _, st := range []State{Standby, Armed, Halted} {
		t.Run(st.String(), func(t *testing.T) {
			h := newHarness(t, 1, 100)
			h.driveTo(t, st)

			cfg, _ := NewConfiguration(3, 900)
			h.seq.ApplyConfig(cfg)

			if h.seq.Remaining() != 30 {
				t.Fatalf("remaining = %d, want 30", h.seq.Remaining())
			}
			if h.seq.Snapshot().Pulse != 9 {
				t.Fatalf("pulse = %d, want 9", h.seq.Snapshot().Pulse)
			}
			if got := h.pres.lastLabel(t); got != "T-00:03.0" {
				t.Fatalf("label = %q", got)
			}
			if h.seq.State() != st {
				t.Fatalf("config apply changed state to %s", h.seq.State())
			}
		})
	}
}

func TestFireUsesLatchedPulse(t *testing.T) {
	var fired []protocol.Frame
	h := newHarness(t, 1, 250, WithFireHook(func(f protocol.Frame) { fired = append(fired, f) }))
	h.driveTo(t, Launched)

	if len(fired) != 1 || fired[0] != protocol.NewFireFrame(2) {
		t.Fatalf("fire hook got %v", fired)
	}
}

func TestRender_ReplaysCurrentDisplay(t *testing.T) {
	h := newHarness(t, 61, 100)
	h.driveTo(t, Halted)
	h.seq.Render()

	if got := h.pres.lastDirective(t); got.state != Halted || got.d != DirectiveFor(Halted) {
		t.Fatalf("render directive = %+v", got)
	}
	if got := h.pres.lastLabel(t); got != "T-01:01.0" {
		t.Fatalf("render label = %q", got)
	}
}

func TestNewConfiguration(t *testing.T) {
	cases := []struct {
		name      string
		seconds   int
		hundredth int
		want      Configuration
		wantErr   error
	}{
		{"ten seconds, 2.5 s pulse", 10, 250, Configuration{100, 2}, nil},
		{"truncates sub-tenth", 1, 199, Configuration{10, 1}, nil},
		{"zero", 0, 0, Configuration{0, 0}, nil},
		{"max byte", 5, 25599, Configuration{50, 255}, nil},
		{"pulse too wide", 5, 25600, Configuration{}, ErrPulseOutOfRange},
		{"negative pulse", 5, -100, Configuration{}, ErrPulseOutOfRange},
		{"negative duration", -1, 100, Configuration{}, ErrNegativeDuration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfiguration(tc.seconds, tc.hundredth)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
