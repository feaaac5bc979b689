// Package pvapp interposes on internal/transport's Sink, adding typed
// decoding for the application-layer payloads carried inside receive
// responses and command request/response pairs: node table pages, power
// reports, topology reports, and string requests/responses.
package pvapp

import (
	"errors"

	"github.com/gridwatch/meshtap/internal/wire"
)

// ErrPayloadTooShort is returned when a fixed-layout record is truncated.
var ErrPayloadTooShort = errors.New("pvapp: payload too short")

// NodeTableResponseEntry is one row of a node table page: a node's
// permanent hardware address paired with its current mesh address.
type NodeTableResponseEntry struct {
	LongAddress wire.LongAddress
	NodeAddress wire.NodeAddress
}

const nodeTableResponseEntrySize = 10

func parseNodeTableResponseEntry(b []byte) NodeTableResponseEntry {
	var e NodeTableResponseEntry
	copy(e.LongAddress[:], b[:8])
	e.NodeAddress = wire.NodeAddress(uint16(b[8])<<8 | uint16(b[9]))
	return e
}

// nodeTableRequestSize is the encoded size of a NODE_TABLE_REQUEST payload:
// just the address to resume the page walk from.
const nodeTableRequestSize = 2

// parseNodeTableRequest decodes a NODE_TABLE_REQUEST payload's start
// address.
func parseNodeTableRequest(b []byte) (wire.NodeAddress, error) {
	if len(b) != nodeTableRequestSize {
		return 0, ErrPayloadTooShort
	}
	return wire.NodeAddress(uint16(b[0])<<8 | uint16(b[1])), nil
}

// parseNodeTableResponse decodes a NODE_TABLE_RESPONSE payload: a 16-bit
// count followed by that many fixed-size entries. The count must equal the
// number of entries actually present.
func parseNodeTableResponse(b []byte) ([]NodeTableResponseEntry, error) {
	if len(b) < 2 {
		return nil, ErrPayloadTooShort
	}
	count := int(uint16(b[0])<<8 | uint16(b[1]))
	b = b[2:]
	if len(b) != count*nodeTableResponseEntrySize {
		return nil, ErrPayloadTooShort
	}
	entries := make([]NodeTableResponseEntry, count)
	for i := range entries {
		entries[i] = parseNodeTableResponseEntry(b[i*nodeTableResponseEntrySize:])
	}
	return entries, nil
}

// TopologyReport is a node's view of its place in the mesh: its short
// address, its own and its next hop's node id, its permanent hardware
// address, and the signal strength it heard its next hop at.
type TopologyReport struct {
	ShortAddress uint16
	NodeAddress  wire.NodeAddress
	NextHop      wire.NodeAddress
	LongAddress  wire.LongAddress
	RSSI         wire.RSSI
}

// topologyReportSize is the encoded size of a TopologyReport: short
// address (2) + node address (2) + next hop (2) + 2 unknown bytes + long
// address (8) + rssi (1) + 5 unknown trailing bytes.
const topologyReportSize = 2 + 2 + 2 + 2 + 8 + 1 + 5

func parseTopologyReport(b []byte) (TopologyReport, error) {
	if len(b) != topologyReportSize {
		return TopologyReport{}, ErrPayloadTooShort
	}
	var r TopologyReport
	r.ShortAddress = uint16(b[0])<<8 | uint16(b[1])
	r.NodeAddress = wire.NodeAddress(uint16(b[2])<<8 | uint16(b[3]))
	r.NextHop = wire.NodeAddress(uint16(b[4])<<8 | uint16(b[5]))
	copy(r.LongAddress[:], b[8:16])
	r.RSSI = wire.RSSI(b[16])
	return r, nil
}

// PowerReport is a node's raw telemetry sample, still in wire units; see
// internal/observer for the conversion to physical units.
type PowerReport struct {
	VoltageInVoltageOut wire.U12Pair
	DutyCycle           uint8
	CurrentTemperature  wire.U12Pair
	SlotCounter         wire.SlotCounter
	RSSI                wire.RSSI
}

// powerReportSize is the encoded size of a PowerReport: two packed 12-bit
// pairs (3 bytes each), a duty cycle byte, 3 unknown bytes, the slot
// counter (2 bytes), and an rssi byte.
const powerReportSize = 3 + 1 + 3 + 3 + 2 + 1

func parsePowerReport(b []byte) (PowerReport, error) {
	if len(b) != powerReportSize {
		return PowerReport{}, ErrPayloadTooShort
	}
	var r PowerReport
	r.VoltageInVoltageOut = wire.ParseU12Pair([3]byte{b[0], b[1], b[2]})
	r.DutyCycle = b[3]
	r.CurrentTemperature = wire.ParseU12Pair([3]byte{b[4], b[5], b[6]})
	r.SlotCounter = wire.SlotCounter(uint16(b[10])<<8 | uint16(b[11]))
	r.RSSI = wire.RSSI(b[12])
	return r, nil
}
