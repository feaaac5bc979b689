package link

// Encode renders f into its wire form, including preamble and terminator.
// This is the reference direction described in spec.md §4.1: production
// code only ever decodes; Encode exists so tests (e.g. this package's
// receiver tests) can synthesize frames.
func Encode(f Frame) []byte {
	var start []byte
	if f.Address.IsFrom() {
		start = []byte{0xFF, 0x7E, 0x07}
	} else {
		start = []byte{0x00, 0xFF, 0xFF, 0x7E, 0x07}
	}

	body := make([]byte, 0, 4+len(f.Payload)+2)
	addrBytes := f.Address.MarshalWire()
	body = append(body, addrBytes[0], addrBytes[1])
	body = append(body, byte(f.Type>>8), byte(f.Type))
	body = append(body, f.Payload...)

	crc := crc16(body)
	body = append(body, byte(crc), byte(crc>>8))

	out := make([]byte, 0, len(start)+escapedLen(body)+2)
	out = append(out, start...)
	out = escape(out, body)
	out = append(out, 0x7E, 0x08)
	return out
}
