package wire

import "fmt"

// PacketType is the application-layer packet type byte carried inside PV
// network packets and command request/response pairs. It is a shared wire
// type rather than owned by a single layer: the transport layer stores it
// in pending-command bookkeeping and the application layer interprets it.
type PacketType uint8

// Known application packet types.
const (
	PacketTypeStringRequest              PacketType = 0x06
	PacketTypeStringResponse             PacketType = 0x07
	PacketTypeTopologyReport             PacketType = 0x09
	PacketTypeGatewayRadioConfigRequest  PacketType = 0x0D
	PacketTypeGatewayRadioConfigResponse PacketType = 0x0E
	PacketTypePVConfigRequest            PacketType = 0x13
	PacketTypePVConfigResponse           PacketType = 0x18
	PacketTypeBroadcast                  PacketType = 0x22
	PacketTypeBroadcastAck               PacketType = 0x23
	PacketTypeNodeTableRequest           PacketType = 0x26
	PacketTypeNodeTableResponse          PacketType = 0x27
	PacketTypeLongNetworkStatusRequest   PacketType = 0x2D
	PacketTypeNetworkStatusRequest       PacketType = 0x2E
	PacketTypeNetworkStatusResponse      PacketType = 0x2F
	PacketTypePowerReport                PacketType = 0x31
)

var packetTypeNames = map[PacketType]string{
	PacketTypeStringRequest:              "STRING_REQUEST",
	PacketTypeStringResponse:             "STRING_RESPONSE",
	PacketTypeTopologyReport:             "TOPOLOGY_REPORT",
	PacketTypeGatewayRadioConfigRequest:  "GATEWAY_RADIO_CONFIGURATION_REQUEST",
	PacketTypeGatewayRadioConfigResponse: "GATEWAY_RADIO_CONFIGURATION_RESPONSE",
	PacketTypePVConfigRequest:            "PV_CONFIGURATION_REQUEST",
	PacketTypePVConfigResponse:           "PV_CONFIGURATION_RESPONSE",
	PacketTypeBroadcast:                  "BROADCAST",
	PacketTypeBroadcastAck:               "BROADCAST_ACK",
	PacketTypeNodeTableRequest:           "NODE_TABLE_REQUEST",
	PacketTypeNodeTableResponse:          "NODE_TABLE_RESPONSE",
	PacketTypeLongNetworkStatusRequest:   "LONG_NETWORK_STATUS_REQUEST",
	PacketTypeNetworkStatusRequest:       "NETWORK_STATUS_REQUEST",
	PacketTypeNetworkStatusResponse:      "NETWORK_STATUS_RESPONSE",
	PacketTypePowerReport:                "POWER_REPORT",
}

func (t PacketType) String() string {
	if name, ok := packetTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint8(t))
}
