package link

import "github.com/gridwatch/meshtap/internal/wire"

// state is the receiver's finite state machine position.
type state uint8

const (
	stateIdle state = iota
	stateNoise
	stateStartOfFrame
	stateFrame
	stateFrameEscape
	stateGiant
	stateGiantEscape
)

// Counters describes the internal state transitions of a Receiver. Every
// field is a monotonic, process-lifetime count; all are copy-valued for
// cheap snapshotting.
type Counters struct {
	// Frames is the number of valid frames successfully received.
	Frames uint64
	// Runts is the number of frames discarded for being too short.
	Runts uint64
	// Giants is the number of frames discarded for being too long.
	Giants uint64
	// Checksums is the number of frames discarded for a bad CRC.
	Checksums uint64
	// Noise is the number of inter-frame periods where line noise was seen.
	Noise uint64
}

// Receiver converts a stream of bytes into a stream of Frames, tolerating
// line noise and resynchronizing whenever possible. It never blocks and
// never allocates an unbounded buffer: the frame body buffer is capped at
// MaxFrameSize.
type Receiver struct {
	sink     Sink
	state    state
	counters Counters
	buffer   []byte
}

// NewReceiver creates a Receiver that delivers decoded frames to sink.
func NewReceiver(sink Sink) *Receiver {
	return &Receiver{sink: sink, buffer: make([]byte, 0, MaxFrameSize)}
}

// Counters returns a snapshot of the receiver's counters.
func (r *Receiver) Counters() Counters { return r.counters }

// ResetCounters zeroes the receiver's counters.
func (r *Receiver) ResetCounters() { r.counters = Counters{} }

// Write feeds buffer through the state machine, synchronously invoking the
// sink for every frame it completes. It always consumes the entire buffer
// and never returns an error; n == len(buffer) always.
func (r *Receiver) Write(buffer []byte) (n int, err error) {
	for _, b := range buffer {
		r.pushByte(b)
	}
	return len(buffer), nil
}

func (r *Receiver) pushByte(b byte) {
	next := r.state

	switch r.state {
	case stateIdle:
		switch b {
		case 0x00, 0xFF:
			next = stateIdle
		case 0x7E:
			next = stateStartOfFrame
		default:
			next = stateNoise
		}
	case stateNoise:
		switch b {
		case 0x00, 0xFF:
			next = stateIdle
		case 0x7E:
			next = stateStartOfFrame
		default:
			next = stateNoise
		}
	case stateStartOfFrame:
		if b == 0x07 {
			next = stateFrame
		} else {
			next = stateNoise
		}
	case stateFrame:
		switch {
		case b == 0x7E:
			next = stateFrameEscape
		case len(r.buffer) < MaxFrameSize:
			r.buffer = append(r.buffer, b)
			next = stateFrame
		default:
			next = stateGiant
		}
	case stateFrameEscape:
		switch {
		case b == 0x08:
			r.finishFrame()
			r.buffer = r.buffer[:0]
			next = stateIdle
		default:
			if value, ok := unescapeByte(b); ok {
				if len(r.buffer) < MaxFrameSize {
					r.buffer = append(r.buffer, value)
					next = stateFrame
				} else {
					next = stateGiant
				}
			} else {
				r.buffer = r.buffer[:0]
				next = stateNoise
			}
		}
	case stateGiant:
		if b == 0x7E {
			next = stateGiantEscape
		} else {
			next = stateGiant
		}
	case stateGiantEscape:
		switch b {
		case 0x07:
			next = stateFrame
		case 0x08:
			next = stateIdle
		default:
			next = stateGiant
		}
	}

	if next == stateNoise && r.state != stateNoise {
		r.counters.Noise++
	}
	if next == stateGiant && r.state != stateGiant && r.state != stateGiantEscape {
		r.buffer = r.buffer[:0]
		r.counters.Giants++
	}

	r.state = next
}

// finishFrame validates the accumulated buffer and, if valid, delivers it to
// the sink. It is called exactly once per terminator (0x7E 0x08) reached
// from the Frame/FrameEscape states.
func (r *Receiver) finishFrame() {
	if len(r.buffer) < 6 {
		r.counters.Runts++
		return
	}

	body := r.buffer[:len(r.buffer)-2]
	crcBytes := r.buffer[len(r.buffer)-2:]
	expected := uint16(crcBytes[0]) | uint16(crcBytes[1])<<8
	if crc16(body) != expected {
		r.counters.Checksums++
		return
	}

	addr := wire.ParseLinkAddress([2]byte{body[0], body[1]})
	frameType := Type(uint16(body[2])<<8 | uint16(body[3]))
	payload := make([]byte, len(body)-4)
	copy(payload, body[4:])

	r.counters.Frames++
	r.sink.Frame(Frame{Address: addr, Type: frameType, Payload: payload})
}
