package sequencer

import (
	"errors"
	"fmt"
)

// MaxPulseTenths is the largest pulse width the one-byte wire field carries.
const MaxPulseTenths = 255

var (
	ErrNegativeDuration = errors.New("countdown duration must not be negative")
	ErrPulseOutOfRange  = errors.New("pulse width out of range")
)

// Configuration is the operator-applied countdown setup. It is replaced as
// a whole on every apply.
type Configuration struct {
	DurationDeciseconds int
	PulseTenths         uint8
}

// NewConfiguration converts operator units into a Configuration.
// durationSeconds is whole seconds; pulseHundredths is divided by 100 and
// truncated to whole tenths. Values that do not fit the wire byte are
// rejected rather than narrowed.
func NewConfiguration(durationSeconds, pulseHundredths int) (Configuration, error) {
	if durationSeconds < 0 {
		return Configuration{}, fmt.Errorf("%w: %d s", ErrNegativeDuration, durationSeconds)
	}
	if pulseHundredths < 0 {
		return Configuration{}, fmt.Errorf("%w: %d is negative", ErrPulseOutOfRange, pulseHundredths)
	}
	tenths := pulseHundredths / 100
	if tenths > MaxPulseTenths {
		return Configuration{}, fmt.Errorf("%w: %d hundredths is %d tenths, max %d",
			ErrPulseOutOfRange, pulseHundredths, tenths, MaxPulseTenths)
	}
	return Configuration{
		DurationDeciseconds: durationSeconds * 10,
		PulseTenths:         uint8(tenths),
	}, nil
}

// DurationSeconds returns the duration in whole seconds.
func (c Configuration) DurationSeconds() int {
	return c.DurationDeciseconds / 10
}
