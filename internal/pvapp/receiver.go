package pvapp

import (
	"unicode/utf8"

	"github.com/gridwatch/meshtap/internal/transport"
	"github.com/gridwatch/meshtap/internal/wire"
)

// Receiver interposes on a transport.Receiver's events, forwarding every
// call unchanged to sink and additionally attempting the typed decodes
// spec'd for this layer: node table pages, power reports, topology
// reports, and string request/response pairs. It implements
// transport.Sink, so it can be handed directly to a transport.Receiver.
type Receiver struct {
	sink     Sink
	counters Counters
}

// NewReceiver creates a Receiver that forwards to and additionally
// decodes for sink.
func NewReceiver(sink Sink) *Receiver {
	return &Receiver{sink: sink}
}

// Counters returns a snapshot of the receiver's counters.
func (r *Receiver) Counters() Counters { return r.counters }

// ResetCounters zeroes the receiver's counters.
func (r *Receiver) ResetCounters() { r.counters = Counters{} }

func (r *Receiver) EnumerationStarted(gatewayID wire.GatewayID) {
	r.sink.EnumerationStarted(gatewayID)
}

func (r *Receiver) GatewayIdentityObserved(gatewayID wire.GatewayID, address wire.LongAddress) {
	r.sink.GatewayIdentityObserved(gatewayID, address)
}

func (r *Receiver) GatewayVersionObserved(gatewayID wire.GatewayID, version string) {
	r.sink.GatewayVersionObserved(gatewayID, version)
}

func (r *Receiver) EnumerationEnded(gatewayID wire.GatewayID) {
	r.sink.EnumerationEnded(gatewayID)
}

func (r *Receiver) SlotCounterCaptured(gatewayID wire.GatewayID) {
	r.sink.SlotCounterCaptured(gatewayID)
}

func (r *Receiver) SlotCounterObserved(gatewayID wire.GatewayID, slotCounter wire.SlotCounter) {
	r.sink.SlotCounterObserved(gatewayID, slotCounter)
}

// PacketReceived forwards header/data unchanged, then attempts a typed
// decode keyed by the packet's application type. An unrecognized node
// address or a malformed payload only bumps a counter; it never blocks the
// forwarded call above.
func (r *Receiver) PacketReceived(gatewayID wire.GatewayID, header wire.ReceivedPacketHeader, data []byte) {
	r.sink.PacketReceived(gatewayID, header, data)

	nodeID, err := wire.NewNodeID(header.NodeAddress)
	if err != nil {
		r.counters.InvalidReceivedPacketNodeIDs++
		return
	}

	switch header.PacketType {
	case wire.PacketTypeStringResponse:
		if !utf8.Valid(data) {
			r.counters.InvalidStringResponses++
			return
		}
		r.counters.StringResponses++
		r.sink.StringResponse(gatewayID, nodeID, string(data))
	case wire.PacketTypeTopologyReport:
		report, err := parseTopologyReport(data)
		if err != nil {
			r.counters.InvalidTopologyReports++
			return
		}
		r.counters.TopologyReports++
		r.sink.TopologyReport(gatewayID, nodeID, report)
	case wire.PacketTypePowerReport:
		report, err := parsePowerReport(data)
		if err != nil {
			r.counters.InvalidPowerReports++
			return
		}
		r.counters.PowerReports++
		r.sink.PowerReport(gatewayID, nodeID, report)
	}
}

// CommandExecuted forwards request/response unchanged, then attempts a
// typed decode for the command pairings this layer understands.
func (r *Receiver) CommandExecuted(gatewayID wire.GatewayID, request, response transport.Command) {
	r.sink.CommandExecuted(gatewayID, request, response)

	switch {
	case request.Type == wire.PacketTypeNodeTableRequest && response.Type == wire.PacketTypeNodeTableResponse:
		r.nodeTableCommand(gatewayID, request.Payload, response.Payload)
	case request.Type == wire.PacketTypeStringRequest && response.Type == wire.PacketTypeStringResponse:
		r.stringCommand(gatewayID, request.Payload, response.Payload)
	}
}

func (r *Receiver) nodeTableCommand(gatewayID wire.GatewayID, request, response []byte) {
	startAt, err := parseNodeTableRequest(request)
	if err != nil {
		r.counters.InvalidNodeTableRequests++
		return
	}

	entries, err := parseNodeTableResponse(response)
	if err != nil {
		r.counters.InvalidNodeTableResponses++
		return
	}

	r.sink.NodeTablePage(gatewayID, startAt, entries)
}

func (r *Receiver) stringCommand(gatewayID wire.GatewayID, request, response []byte) {
	if len(request) < 2 {
		r.counters.InvalidStringCommands++
		return
	}
	nodeAddress := wire.NodeAddress(uint16(request[0])<<8 | uint16(request[1]))
	node, err := wire.NewNodeID(nodeAddress)
	if err != nil {
		r.counters.InvalidStringCommands++
		return
	}

	text := request[2:]
	if !utf8.Valid(text) {
		r.counters.InvalidStringCommands++
		return
	}

	if len(response) != 0 {
		r.counters.InvalidStringCommands++
		return
	}

	r.counters.StringCommands++
	r.sink.StringRequest(gatewayID, node, string(text))
}
