package sequencer

// Directive is what the display shows for a state: the status text, whether
// the countdown label is visible, and which controls are offered.
type Directive struct {
	Status           string
	CountdownVisible bool

	Arm            bool
	StartCountdown bool
	Abort          bool
	Halt           bool
	Resume         bool

	ConfigInput bool
}

// directives is keyed by State. It never depends on the countdown value or
// on how the state was reached.
var directives = [stateCount]Directive{
	Standby: {
		Status:      "Standby",
		Arm:         true,
		ConfigInput: true,
	},
	Armed: {
		Status:           "Armed",
		CountdownVisible: true,
		StartCountdown:   true,
		Abort:            true,
	},
	Countdown: {
		Status:           "Launching",
		CountdownVisible: true,
		Abort:            true,
		Halt:             true,
	},
	Halted: {
		Status:           "Halted",
		CountdownVisible: true,
		Abort:            true,
		Resume:           true,
	},
	Launched: {
		Status:           "Launched",
		CountdownVisible: true,
		Abort:            true,
	},
}

// DirectiveFor returns the display directive for s.
func DirectiveFor(s State) Directive {
	if s < 0 || s >= stateCount {
		return Directive{}
	}
	return directives[s]
}
