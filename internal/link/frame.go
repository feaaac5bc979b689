// Package link implements the gateway link layer: preamble hunt, byte
// de-escaping, length-bounded frame assembly, CRC verification, and
// noise-tolerant resynchronization. It is a synchronous, allocation-light
// finite state machine: bytes go in via Receiver.Write, Frames come out via
// the Sink passed to NewReceiver.
package link

import "github.com/gridwatch/meshtap/internal/wire"

// MaxFrameSize is the largest post-unescape frame body the receiver will
// accumulate before discarding it as a giant.
const MaxFrameSize = 256

// Type is a link-layer frame type code.
type Type uint16

// Known frame types. Names mirror the gateway-transport callbacks they feed
// (see internal/transport); any other value increments the transport
// layer's unhandled-frame-type counter rather than this layer's.
const (
	TypeReceiveRequest           Type = 0x0148
	TypeReceiveResponse          Type = 0x0149
	TypeCommandRequest           Type = 0x0B0F
	TypeCommandResponse          Type = 0x0B10
	TypePingRequest              Type = 0x0B00
	TypePingResponse             Type = 0x0B01
	TypeEnumerationStartRequest  Type = 0x0014
	TypeEnumerationStartResponse Type = 0x0015
	TypeEnumerationRequest       Type = 0x0038
	TypeEnumerationResponse      Type = 0x0039
	TypeAssignGatewayIDRequest   Type = 0x003C
	TypeAssignGatewayIDResponse  Type = 0x003D
	TypeIdentifyRequest          Type = 0x003A
	TypeIdentifyResponse         Type = 0x003B
	TypeVersionRequest           Type = 0x000A
	TypeVersionResponse          Type = 0x000B
	TypeEnumerationEndRequest    Type = 0x0E02
	TypeEnumerationEndResponse   Type = 0x0006
)

// Frame is a fully decoded link-layer frame.
type Frame struct {
	Address wire.LinkAddress
	Type    Type
	Payload []byte
}

// Sink receives decoded Frames from a Receiver.
type Sink interface {
	Frame(f Frame)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Frame)

// Frame implements Sink.
func (f SinkFunc) Frame(frame Frame) { f(frame) }
