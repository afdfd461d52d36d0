package sequencer

func allStates() []State {
	return []State{Standby, Armed, Countdown, Halted, Launched}
}

// offers reports whether d shows the control for e.
func offers(d Directive, e Event) bool {
	switch e {
	case EventArm:
		return d.Arm
	case EventStartCountdown:
		return d.StartCountdown
	case EventAbort:
		return d.Abort
	case EventHalt:
		return d.Halt
	case EventResume:
		return d.Resume
	default:
		return false
	}
}
