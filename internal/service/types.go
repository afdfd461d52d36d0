package service

import "launch_control/internal/sequencer"

// CommandKind selects what a Command asks the control loop to do.
type CommandKind int

const (
	CmdEvent  CommandKind = iota // raise Event
	CmdConfig                    // apply Config
	CmdStatus                    // re-render and report a snapshot
)

// Command is an operator request funneled into the control loop.
type Command struct {
	Kind   CommandKind
	Event  sequencer.Event
	Config sequencer.Configuration

	reply chan Result
}

// EventCommand wraps an operator event.
func EventCommand(ev sequencer.Event) Command {
	return Command{Kind: CmdEvent, Event: ev}
}

// ConfigCommand wraps a configuration apply.
func ConfigCommand(cfg sequencer.Configuration) Command {
	return Command{Kind: CmdConfig, Config: cfg}
}

// StatusCommand asks for a re-render and a snapshot.
func StatusCommand() Command {
	return Command{Kind: CmdStatus}
}

// Result is the outcome of a processed Command.
type Result struct {
	// Accepted is false when an operator event had no transition from the
	// current state.
	Accepted bool
	Snapshot sequencer.Snapshot
}

// JournalFilter selects session journal entries.
type JournalFilter struct {
	Type  string // "", "TRANSITION", "CONFIG", "FIRE", "REJECTED"
	Limit int    // 0 means no limit
}
