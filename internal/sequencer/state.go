package sequencer

// State is the sequencer's current operator-intent state.
type State int

const (
	Standby State = iota
	Armed
	Countdown
	Halted
	Launched

	stateCount
)

var stateNames = [stateCount]string{
	Standby:   "STANDBY",
	Armed:     "ARMED",
	Countdown: "COUNTDOWN",
	Halted:    "HALTED",
	Launched:  "LAUNCHED",
}

func (s State) String() string {
	if s < 0 || s >= stateCount {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// DefersConfig reports whether a configuration applied in s waits for the
// next Standby entry. The clock runs in both states, and the count it drives
// must not jump.
func (s State) DefersConfig() bool {
	return s == Countdown || s == Launched
}

// Event is a named input to the sequencer.
type Event int

const (
	EventArm Event = iota
	EventAbort
	EventStartCountdown
	EventHalt
	EventResume
	// EventCountdownExpired is raised by the sequencer itself when the
	// countdown reaches zero. Handle ignores it.
	EventCountdownExpired
)

func (e Event) String() string {
	switch e {
	case EventArm:
		return "arm"
	case EventAbort:
		return "abort"
	case EventStartCountdown:
		return "start-countdown"
	case EventHalt:
		return "halt"
	case EventResume:
		return "resume"
	case EventCountdownExpired:
		return "countdown-expired"
	default:
		return "unknown"
	}
}

func (e Event) internal() bool {
	return e == EventCountdownExpired
}

type transitionKey struct {
	from  State
	event Event
}

// transitions is the complete (state, event) -> next state table.
// Pairs not listed are ignored.
var transitions = map[transitionKey]State{
	{Standby, EventArm}:                Armed,
	{Armed, EventAbort}:                Standby,
	{Armed, EventStartCountdown}:       Countdown,
	{Countdown, EventHalt}:             Halted,
	{Countdown, EventAbort}:            Standby,
	{Countdown, EventCountdownExpired}: Launched,
	{Halted, EventResume}:              Countdown,
	{Halted, EventAbort}:               Standby,
	{Launched, EventAbort}:             Standby,
}

// Next reports the state the event leads to from s, if any.
func Next(s State, e Event) (State, bool) {
	to, ok := transitions[transitionKey{s, e}]
	return to, ok
}

// Transition describes one state change.
type Transition struct {
	From      State
	To        State
	Event     Event
	Remaining int // CountdownValue after the entry action ran
}
