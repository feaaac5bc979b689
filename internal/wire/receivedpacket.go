package wire

import "fmt"

// ReceivedPacketHeader precedes each packet multiplexed inside a receive
// response's trailing packet sequence.
type ReceivedPacketHeader struct {
	PacketType   PacketType
	NodeAddress  NodeAddress
	ShortAddress uint16
	DSN          uint8
	DataLength   uint8
}

// ReceivedPacketHeaderSize is the encoded size of a ReceivedPacketHeader.
const ReceivedPacketHeaderSize = 7

// ParseReceivedPacketHeader decodes a fixed ReceivedPacketHeaderSize-byte
// header. The caller must ensure len(b) >= ReceivedPacketHeaderSize.
func ParseReceivedPacketHeader(b []byte) ReceivedPacketHeader {
	return ReceivedPacketHeader{
		PacketType:   PacketType(b[0]),
		NodeAddress:  NodeAddress(uint16(b[1])<<8 | uint16(b[2])),
		ShortAddress: uint16(b[3])<<8 | uint16(b[4]),
		DSN:          b[5],
		DataLength:   b[6],
	}
}

func (h ReceivedPacketHeader) String() string {
	return fmt.Sprintf("%s from %s (dsn=%d, len=%d)", h.PacketType, h.NodeAddress, h.DSN, h.DataLength)
}
