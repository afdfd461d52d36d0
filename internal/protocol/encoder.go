package protocol

// Sender is the part of the transport the encoder needs. Send must not
// block the caller; delivery failures are the transport's concern.
type Sender interface {
	Send(b []byte)
}

// Encoder turns a fire request into exactly one frame on the sender.
// A failed delivery is never retried: the igniter line is one-shot.
type Encoder struct {
	sender Sender
	sent   int
}

func NewEncoder(sender Sender) *Encoder {
	return &Encoder{sender: sender}
}

// Fire builds the frame for pulseTenths and hands it to the sender once.
func (e *Encoder) Fire(pulseTenths uint8) Frame {
	f := NewFireFrame(pulseTenths)
	e.sender.Send(f.Bytes())
	e.sent++
	return f
}

// Sent reports how many frames this encoder has handed to the sender.
func (e *Encoder) Sent() int {
	return e.sent
}
