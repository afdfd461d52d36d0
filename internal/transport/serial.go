package transport

import (
	"fmt"
	"io"
	"sync"

	"launch_control/internal/logger"

	"go.bug.st/serial"
)

const (
	DefaultPort = "/dev/ttyACM0"
	DefaultBaud = 9600

	sendQueueSize = 8
)

// SerialConfig selects the port and line speed. The frame is always sent
// as 8 data bits, no parity, one stop bit.
type SerialConfig struct {
	Port string
	Baud int
}

type openFunc func(name string, mode *serial.Mode) (io.WriteCloser, error)

func openSerialPort(name string, mode *serial.Mode) (io.WriteCloser, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Serial writes frames to a serial port from a dedicated writer goroutine.
type Serial struct {
	name string
	mode *serial.Mode
	open openFunc
	log  *logger.Logger

	mu     sync.Mutex
	port   io.WriteCloser
	queue  chan []byte
	done   chan struct{}
	closed bool
}

func NewSerial(cfg SerialConfig, log *logger.Logger) *Serial {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.Baud <= 0 {
		cfg.Baud = DefaultBaud
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Serial{
		name: cfg.Port,
		mode: &serial.Mode{
			BaudRate: cfg.Baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		open: openSerialPort,
		log:  log,
	}
}

func (s *Serial) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return nil
	}

	port, err := s.open(s.name, s.mode)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrOpen, s.name, err)
	}
	s.port = port
	s.queue = make(chan []byte, sendQueueSize)
	s.done = make(chan struct{})
	go s.writer(port, s.queue, s.done)

	s.log.Infow("serial_opened", "port", s.name, "baud", s.mode.BaudRate)
	return nil
}

// Send queues b for the writer goroutine and returns immediately.
func (s *Serial) Send(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue == nil || s.closed {
		s.log.Errorw("serial_send_dropped", "port", s.name, "reason", "link not open", "frame", fmt.Sprintf("% X", b))
		return
	}
	select {
	case s.queue <- b:
	default:
		s.log.Errorw("serial_send_dropped", "port", s.name, "reason", "queue full", "frame", fmt.Sprintf("% X", b))
	}
}

func (s *Serial) writer(port io.Writer, queue <-chan []byte, done chan<- struct{}) {
	defer close(done)
	for b := range queue {
		n, err := port.Write(b)
		if err != nil {
			s.log.Errorw("serial_write_failed", "port", s.name, "frame", fmt.Sprintf("% X", b), "err", err)
			continue
		}
		if n != len(b) {
			s.log.Errorw("serial_short_write", "port", s.name, "written", n, "want", len(b))
			continue
		}
		s.log.Infow("serial_frame_written", "port", s.name, "frame", fmt.Sprintf("% X", b))
	}
}

// Close flushes queued frames and closes the port.
func (s *Serial) Close() error {
	s.mu.Lock()
	if s.port == nil || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	done, port := s.done, s.port
	s.mu.Unlock()

	<-done
	if err := port.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.name, err)
	}
	s.log.Infow("serial_closed", "port", s.name)
	return nil
}

// Name returns the port path.
func (s *Serial) Name() string {
	return s.name
}
