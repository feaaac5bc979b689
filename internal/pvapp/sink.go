package pvapp

import (
	"github.com/gridwatch/meshtap/internal/transport"
	"github.com/gridwatch/meshtap/internal/wire"
)

// Sink receives pvapp's typed events in addition to everything
// transport.Sink already reports; Receiver forwards every transport.Sink
// call unchanged before attempting the typed decode that may produce one
// of these additional calls.
type Sink interface {
	transport.Sink

	// StringRequest reports a decoded STRING_REQUEST/STRING_RESPONSE
	// command pair's request text.
	StringRequest(gatewayID wire.GatewayID, nodeID wire.NodeID, request string)

	// StringResponse reports a STRING_RESPONSE packet received outside a
	// command pairing (i.e. an unsolicited node-originated string).
	StringResponse(gatewayID wire.GatewayID, nodeID wire.NodeID, response string)

	// NodeTablePage reports one page of a node table walk.
	NodeTablePage(gatewayID wire.GatewayID, startAddress wire.NodeAddress, entries []NodeTableResponseEntry)

	// TopologyReport reports a decoded TOPOLOGY_REPORT packet.
	TopologyReport(gatewayID wire.GatewayID, nodeID wire.NodeID, report TopologyReport)

	// PowerReport reports a decoded POWER_REPORT packet.
	PowerReport(gatewayID wire.GatewayID, nodeID wire.NodeID, report PowerReport)
}
