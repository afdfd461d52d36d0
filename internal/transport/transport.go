// Package transport carries fire frames to the igniter board.
//
// Send is fire-and-forget: it never blocks the caller and reports nothing
// back. A frame that fails to reach the wire is logged and dropped, never
// retried, because repeating a fire command is unsafe.
package transport

import "errors"

// Transport is the igniter link.
type Transport interface {
	// Open establishes the link. A failure is fatal for the caller: the
	// sequencer must not become operable without a working link.
	Open() error
	Send(b []byte)
	Close() error
}

var ErrOpen = errors.New("cannot open igniter link")
