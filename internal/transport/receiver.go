package transport

import (
	"unicode/utf8"

	"github.com/gridwatch/meshtap/internal/link"
	"github.com/gridwatch/meshtap/internal/wire"
)

type pendingKey struct {
	gateway  wire.GatewayID
	sequence uint8
}

// Receiver demultiplexes link.Frames by frame type, maintaining per-gateway
// packet-number tracking and command request/response pairing, and
// delivers the resulting semantic events to a Sink. It implements
// link.Sink, so it can be handed directly to a link.Receiver.
type Receiver struct {
	sink Sink

	rxPacketNumbers        map[wire.GatewayID]uint16
	commandSequenceNumbers map[wire.GatewayID]uint8
	pendingCommands        map[pendingKey]Command

	counters Counters
}

// NewReceiver creates a Receiver that delivers events to sink.
func NewReceiver(sink Sink) *Receiver {
	return &Receiver{
		sink:                   sink,
		rxPacketNumbers:        make(map[wire.GatewayID]uint16),
		commandSequenceNumbers: make(map[wire.GatewayID]uint8),
		pendingCommands:        make(map[pendingKey]Command),
	}
}

// Counters returns a snapshot of the receiver's counters.
func (r *Receiver) Counters() Counters { return r.counters }

// ResetCounters zeroes the receiver's counters.
func (r *Receiver) ResetCounters() { r.counters = Counters{} }

// Frame implements link.Sink, dispatching f by its link-layer frame type.
func (r *Receiver) Frame(f link.Frame) {
	switch f.Type {
	case link.TypeReceiveRequest:
		r.receiveRequest(f)
	case link.TypeReceiveResponse:
		r.receiveResponse(f)
	case link.TypeCommandRequest:
		r.commandRequest(f)
	case link.TypeCommandResponse:
		r.commandResponse(f)
	case link.TypePingRequest:
		r.counters.PingRequests++
	case link.TypePingResponse:
		r.counters.PingResponses++
	case link.TypeEnumerationStartRequest:
		r.enumerationStartRequest(f)
	case link.TypeEnumerationStartResponse:
		r.counters.EnumerationStartResponses++
	case link.TypeEnumerationRequest:
		r.counters.EnumerationRequests++
	case link.TypeEnumerationResponse:
		r.enumerationResponse(f)
	case link.TypeAssignGatewayIDRequest:
		r.counters.AssignGatewayIDRequests++
	case link.TypeAssignGatewayIDResponse:
		r.counters.AssignGatewayIDResponses++
	case link.TypeIdentifyRequest:
		r.counters.IdentifyRequests++
	case link.TypeIdentifyResponse:
		r.identifyResponse(f)
	case link.TypeVersionRequest:
		r.counters.VersionRequests++
	case link.TypeVersionResponse:
		r.versionResponse(f)
	case link.TypeEnumerationEndRequest:
		r.counters.EnumerationEndRequests++
	case link.TypeEnumerationEndResponse:
		if f.Address.IsFrom() {
			r.counters.EnumerationEndResponses++
			r.sink.EnumerationEnded(f.Address.ID)
		} else {
			r.counters.InvalidEnumerationEndResponses++
		}
	default:
		r.counters.UnhandledFrameType++
	}
}

func (r *Receiver) receiveRequest(f link.Frame) {
	if f.Address.IsFrom() {
		r.counters.InvalidReceiveRequests++
		return
	}
	req, err := parseReceiveRequest(f.Payload)
	if err != nil {
		r.counters.InvalidReceiveRequests++
		return
	}

	r.sink.SlotCounterCaptured(f.Address.ID)
	r.counters.ReceiveRequests++
	r.rxPacketNumbers[f.Address.ID] = req.packetNumber
}

func (r *Receiver) receiveResponse(f link.Frame) {
	if !f.Address.IsFrom() {
		r.counters.InvalidReceiveResponses++
		return
	}
	gatewayID := f.Address.ID

	priorPacketNumber, ok := r.rxPacketNumbers[gatewayID]
	if !ok {
		r.counters.ReceiveResponseFromUnknownGateway++
		return
	}

	resp, packets, err := decodeReceiveResponse(f.Payload, priorPacketNumber)
	if err != nil {
		r.counters.InvalidReceiveResponses++
		return
	}

	r.counters.ReceiveResponses++
	r.rxPacketNumbers[gatewayID] = resp.packetNumber
	r.sink.SlotCounterObserved(gatewayID, wire.SlotCounter(resp.slotCounter))

	truncated := forEachReceivedPacket(packets, func(header wire.ReceivedPacketHeader, data []byte) {
		r.counters.ReceivePackets++
		r.sink.PacketReceived(gatewayID, header, data)
	})
	r.counters.ReceivePacketTooShort += uint64(truncated)
}

func (r *Receiver) commandRequest(f link.Frame) {
	if f.Address.IsFrom() {
		r.counters.InvalidCommandRequests++
		return
	}
	packetType, sequence, tail, err := parseCommandRequestHeader(f.Payload)
	if err != nil {
		r.counters.InvalidCommandRequests++
		return
	}
	gatewayID := f.Address.ID

	retransmission := false
	if prior, ok := r.commandSequenceNumbers[gatewayID]; ok && prior == sequence {
		retransmission = true
	} else {
		r.commandSequenceNumbers[gatewayID] = sequence
	}

	// Per the protocol notes, a retransmitted request does not disturb the
	// pending entry a prior transmission may have already recorded.
	if !retransmission {
		payload := make([]byte, len(tail))
		copy(payload, tail)
		r.pendingCommands[pendingKey{gatewayID, sequence}] = Command{Type: packetType, Payload: payload}
	}

	if retransmission {
		r.counters.RetransmittedCommandRequests++
	} else {
		r.counters.CommandRequests++
	}
}

func (r *Receiver) commandResponse(f link.Frame) {
	if !f.Address.IsFrom() {
		r.counters.InvalidCommandResponses++
		return
	}
	packetType, sequence, tail, err := parseCommandResponseHeader(f.Payload)
	if err != nil {
		r.counters.InvalidCommandResponses++
		return
	}
	gatewayID := f.Address.ID

	key := pendingKey{gatewayID, sequence}
	request, ok := r.pendingCommands[key]
	if !ok {
		r.counters.RetransmittedCommandResponses++
		return
	}
	delete(r.pendingCommands, key)

	r.counters.CommandResponses++

	responsePayload := make([]byte, len(tail))
	copy(responsePayload, tail)
	response := Command{Type: packetType, Payload: responsePayload}

	r.sink.CommandExecuted(gatewayID, request, response)
}

func (r *Receiver) enumerationStartRequest(f link.Frame) {
	if f.Address.IsTo() && f.Address.ID == wire.Unassigned {
		gatewayID, err := parseEnumerationStartRequest(f.Payload)
		if err != nil {
			r.counters.InvalidEnumerationStartRequests++
			return
		}
		r.counters.EnumerationStartRequests++
		r.sink.EnumerationStarted(gatewayID)
		return
	}
	r.counters.InvalidEnumerationStartRequests++
}

func (r *Receiver) identifyResponse(f link.Frame) {
	if !f.Address.IsFrom() {
		r.counters.InvalidIdentifyResponses++
		return
	}
	addr, err := parseIdentifyResponse(f.Payload)
	if err != nil {
		r.counters.InvalidIdentifyResponses++
		return
	}
	r.counters.IdentifyResponses++
	r.sink.GatewayIdentityObserved(f.Address.ID, addr)
}

func (r *Receiver) enumerationResponse(f link.Frame) {
	if !f.Address.IsFrom() {
		r.counters.InvalidEnumerationResponses++
		return
	}
	addr, err := parseIdentifyResponse(f.Payload)
	if err != nil {
		r.counters.InvalidEnumerationResponses++
		return
	}
	r.counters.EnumerationResponses++
	r.sink.GatewayIdentityObserved(f.Address.ID, addr)
}

func (r *Receiver) versionResponse(f link.Frame) {
	if !f.Address.IsFrom() {
		r.counters.InvalidVersionResponses++
		return
	}
	if len(f.Payload) == 0 || !utf8.Valid(f.Payload) {
		r.counters.InvalidVersionResponses++
		return
	}
	r.counters.VersionResponses++
	r.sink.GatewayVersionObserved(f.Address.ID, string(f.Payload))
}
