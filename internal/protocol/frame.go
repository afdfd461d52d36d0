// Package protocol encodes the igniter board's fire command.
//
// The wire format is exactly three bytes: 'N', the pulse width in tenths,
// 'L'. There is no acknowledgement and no response; the board fires once
// per frame.
package protocol

import (
	"errors"
	"fmt"
)

const (
	FrameStart byte = 'N'
	FrameEnd   byte = 'L'
	FrameSize       = 3
)

var (
	ErrFrameSize   = errors.New("fire frame must be exactly 3 bytes")
	ErrFrameMarker = errors.New("fire frame markers must be 'N' ... 'L'")
)

// Frame is a single fire command.
type Frame [FrameSize]byte

// NewFireFrame builds the frame for the given pulse width.
func NewFireFrame(pulseTenths uint8) Frame {
	return Frame{FrameStart, pulseTenths, FrameEnd}
}

// PulseTenths returns the pulse width carried by the frame.
func (f Frame) PulseTenths() uint8 {
	return f[1]
}

// Bytes returns a fresh copy of the frame for transmission.
func (f Frame) Bytes() []byte {
	b := make([]byte, FrameSize)
	copy(b, f[:])
	return b
}

func (f Frame) String() string {
	return fmt.Sprintf("% X", f[:])
}

// ParseFrame validates a received frame.
func ParseFrame(b []byte) (Frame, error) {
	var f Frame
	if len(b) != FrameSize {
		return f, fmt.Errorf("%w: got %d", ErrFrameSize, len(b))
	}
	if b[0] != FrameStart || b[2] != FrameEnd {
		return f, fmt.Errorf("%w: got % X", ErrFrameMarker, b)
	}
	copy(f[:], b)
	return f, nil
}
