package transport

import "errors"

// ErrReceiveResponseUnknownStatus is returned when the status bitmask's
// fixed bits (0xFFE0) don't match the only pattern this protocol version
// recognizes (0x00E0).
var ErrReceiveResponseUnknownStatus = errors.New("transport: unknown receive response status")

// receiveResponse is a receive response payload decoded into its most
// general form: every optional field present, or not, per the status
// bitmask.
type receiveResponse struct {
	rxBuffersUsed *uint8
	txBuffersFree *uint8
	unknownA      *[2]byte
	unknownB      *[2]byte
	packetNumber  uint16
	slotCounter   uint16
}

// decodeReceiveResponse implements the left-to-right cursor described in
// spec.md §4.2 and Design Note §9: inspect the status bitmask once, then for
// each optional field either consume fixed bytes or skip it, finally
// requiring at least 2 trailing bytes for the slot counter. priorPacketNumber
// is the gateway's last known packet number, used to reconstruct the full
// value when the bitmask says only a low byte follows.
//
// Returns the decoded fields and the remaining bytes (the concatenated
// ReceivedPacketHeader/data sequence).
func decodeReceiveResponse(b []byte, priorPacketNumber uint16) (receiveResponse, []byte, error) {
	if len(b) < 5 {
		return receiveResponse{}, nil, ErrPayloadTooShort
	}

	status := uint16(b[0])<<8 | uint16(b[1])
	if status&0xFFE0 != 0x00E0 {
		return receiveResponse{}, nil, ErrReceiveResponseUnknownStatus
	}
	rest := b[2:]

	var resp receiveResponse

	if status&0x0001 == 0 {
		if len(rest) < 1 {
			return receiveResponse{}, nil, ErrPayloadTooShort
		}
		v := rest[0]
		resp.rxBuffersUsed = &v
		rest = rest[1:]
	}

	if status&0x0002 == 0 {
		if len(rest) < 1 {
			return receiveResponse{}, nil, ErrPayloadTooShort
		}
		v := rest[0]
		resp.txBuffersFree = &v
		rest = rest[1:]
	}

	if status&0x0004 == 0 {
		if len(rest) < 2 {
			return receiveResponse{}, nil, ErrPayloadTooShort
		}
		v := [2]byte{rest[0], rest[1]}
		resp.unknownA = &v
		rest = rest[2:]
	}

	if status&0x0008 == 0 {
		if len(rest) < 2 {
			return receiveResponse{}, nil, ErrPayloadTooShort
		}
		v := [2]byte{rest[0], rest[1]}
		resp.unknownB = &v
		rest = rest[2:]
	}

	if status&0x0010 == 0 {
		if len(rest) < 2 {
			return receiveResponse{}, nil, ErrPayloadTooShort
		}
		resp.packetNumber = uint16(rest[0])<<8 | uint16(rest[1])
		rest = rest[2:]
	} else {
		if len(rest) < 1 {
			return receiveResponse{}, nil, ErrPayloadTooShort
		}
		resp.packetNumber = reconstructPacketNumber(rest[0], priorPacketNumber)
		rest = rest[1:]
	}

	if len(rest) < 2 {
		return receiveResponse{}, nil, ErrPayloadTooShort
	}
	resp.slotCounter = uint16(rest[0])<<8 | uint16(rest[1])
	rest = rest[2:]

	return resp, rest, nil
}

// reconstructPacketNumber rebuilds a full 16-bit packet number from its low
// byte and the previously known full value, carrying the high byte forward
// unless lo has wrapped past the previous low byte.
func reconstructPacketNumber(lo uint8, prior uint16) uint16 {
	oldHi := byte(prior >> 8)
	oldLo := byte(prior)
	hi := oldHi
	if lo < oldLo {
		hi++
	}
	return uint16(hi)<<8 | uint16(lo)
}
