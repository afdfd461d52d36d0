package transport

import (
	"sync"

	"launch_control/internal/logger"
	"launch_control/internal/protocol"
)

// DryRun validates and logs frames instead of writing them. It is only
// used when the operator explicitly asks for it.
type DryRun struct {
	log *logger.Logger

	mu     sync.Mutex
	frames []protocol.Frame
}

func NewDryRun(log *logger.Logger) *DryRun {
	if log == nil {
		log = logger.Nop()
	}
	return &DryRun{log: log}
}

func (d *DryRun) Open() error {
	d.log.Warnw("dry_run_link_opened", "note", "fire frames are logged, not sent")
	return nil
}

func (d *DryRun) Send(b []byte) {
	f, err := protocol.ParseFrame(b)
	if err != nil {
		d.log.Errorw("dry_run_invalid_frame", "err", err)
		return
	}
	d.mu.Lock()
	d.frames = append(d.frames, f)
	d.mu.Unlock()
	d.log.Warnw("dry_run_fire", "frame", f.String(), "pulse_tenths", f.PulseTenths())
}

func (d *DryRun) Close() error {
	return nil
}

// Frames returns the frames received so far.
func (d *DryRun) Frames() []protocol.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]protocol.Frame, len(d.frames))
	copy(out, d.frames)
	return out
}
