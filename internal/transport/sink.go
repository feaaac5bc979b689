package transport

import "github.com/gridwatch/meshtap/internal/wire"

// Sink receives the semantic events a Receiver produces. All callbacks are
// synchronous and made from within Receiver.Frame; implementations must not
// retain slices passed to PacketReceived or CommandExecuted beyond the call.
type Sink interface {
	// EnumerationStarted reports that the controller began an enumeration
	// round using the given transient gateway id.
	EnumerationStarted(enumerationGatewayID wire.GatewayID)

	// GatewayIdentityObserved reports a gateway's hardware address. During
	// enumeration this may be reported against the transient enumeration
	// id, in which case it is not yet unique.
	GatewayIdentityObserved(gatewayID wire.GatewayID, address wire.LongAddress)

	// GatewayVersionObserved reports a gateway's firmware version string.
	GatewayVersionObserved(gatewayID wire.GatewayID, version string)

	// EnumerationEnded reports that an enumeration round has concluded.
	EnumerationEnded(gatewayID wire.GatewayID)

	// SlotCounterCaptured reports that a gateway captured its slot counter
	// while processing a receive request; the value itself follows later
	// via SlotCounterObserved.
	SlotCounterCaptured(gatewayID wire.GatewayID)

	// SlotCounterObserved reports the slot counter value captured a receive
	// cycle ago (typically 4-50ms).
	SlotCounterObserved(gatewayID wire.GatewayID, slotCounter wire.SlotCounter)

	// PacketReceived reports one PV network packet pulled out of a receive
	// response's trailing packet sequence.
	PacketReceived(gatewayID wire.GatewayID, header wire.ReceivedPacketHeader, data []byte)

	// CommandExecuted reports a completed command request/response pair.
	CommandExecuted(gatewayID wire.GatewayID, request, response Command)
}
