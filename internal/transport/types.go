// Package transport decodes link-layer frames into the gateway's
// request/response subprotocols: receive request/response (slot-counter and
// packet-number tracking), command request/response pairing, enumeration
// progress, and the handful of frame types that only ever bump a counter.
package transport

import (
	"errors"

	"github.com/gridwatch/meshtap/internal/wire"
)

// Command is one side of a paired command request/response: its packet
// type tag and the bytes that follow the fixed header.
type Command struct {
	Type    wire.PacketType
	Payload []byte
}

// ErrPayloadTooShort is returned by the fixed-header decoders below when the
// frame payload doesn't carry enough bytes for the shape it claims to be.
var ErrPayloadTooShort = errors.New("transport: payload too short")

// receiveRequest is the receive request frame payload: {unknown[2],
// packet_number u16 BE, unknown u8}.
type receiveRequest struct {
	packetNumber uint16
}

func parseReceiveRequest(b []byte) (receiveRequest, error) {
	if len(b) != 5 {
		return receiveRequest{}, ErrPayloadTooShort
	}
	return receiveRequest{packetNumber: uint16(b[2])<<8 | uint16(b[3])}, nil
}

// commandRequestHeaderSize is the size of the fixed header preceding a
// command request's opaque tail: {unknown[3], packet_type, sequence}.
const commandRequestHeaderSize = 5

func parseCommandRequestHeader(b []byte) (packetType wire.PacketType, sequence uint8, tail []byte, err error) {
	if len(b) < commandRequestHeaderSize {
		return 0, 0, nil, ErrPayloadTooShort
	}
	return wire.PacketType(b[3]), b[4], b[commandRequestHeaderSize:], nil
}

// commandResponseHeaderSize is the size of the fixed header preceding a
// command response's opaque tail: {unknown, tx_free, unknown, packet_type,
// sequence}.
const commandResponseHeaderSize = 5

func parseCommandResponseHeader(b []byte) (packetType wire.PacketType, sequence uint8, tail []byte, err error) {
	if len(b) < commandResponseHeaderSize {
		return 0, 0, nil, ErrPayloadTooShort
	}
	return wire.PacketType(b[3]), b[4], b[commandResponseHeaderSize:], nil
}

// parseEnumerationStartRequest decodes {unknown[4], enum_addr[2]} and
// extracts the enumeration gateway id, which must be a To(...) address.
// The caller is responsible for checking that the frame itself was
// addressed To(Unassigned); this only validates the payload's inner field.
func parseEnumerationStartRequest(b []byte) (wire.GatewayID, error) {
	if len(b) != 6 {
		return 0, ErrPayloadTooShort
	}
	addr := wire.ParseLinkAddress([2]byte{b[4], b[5]})
	if addr.IsFrom() {
		return 0, ErrPayloadTooShort
	}
	return addr.ID, nil
}

// parseIdentifyResponse decodes {long_address[8], gateway_addr[2]}, shared
// by identify responses and enumeration responses.
func parseIdentifyResponse(b []byte) (wire.LongAddress, error) {
	if len(b) != 10 {
		return wire.LongAddress{}, ErrPayloadTooShort
	}
	var addr wire.LongAddress
	copy(addr[:], b[:8])
	return addr, nil
}

// forEachReceivedPacket walks a concatenated sequence of
// (ReceivedPacketHeader, data) records, invoking fn for each complete one.
// It returns the number of truncated records found at the end of data (0 or
// 1, since iteration stops at the first truncated record).
func forEachReceivedPacket(data []byte, fn func(header wire.ReceivedPacketHeader, payload []byte)) (truncated int) {
	for len(data) > 0 {
		if len(data) < wire.ReceivedPacketHeaderSize {
			return 1
		}
		header := wire.ParseReceivedPacketHeader(data[:wire.ReceivedPacketHeaderSize])
		data = data[wire.ReceivedPacketHeaderSize:]

		if len(data) < int(header.DataLength) {
			return 1
		}
		payload := data[:header.DataLength]
		data = data[header.DataLength:]

		fn(header, payload)
	}
	return 0
}
