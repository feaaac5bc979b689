package link

// escapeTable maps a byte eligible for escaping to the second byte of its
// two-byte escape sequence (0x7E followed by the mapped value).
var escapeTable = map[byte]byte{
	0x7E: 0x00,
	0x24: 0x01,
	0x23: 0x02,
	0x25: 0x03,
	0xA4: 0x04,
	0xA3: 0x05,
	0xA5: 0x06,
}

// unescapeTable is escapeTable inverted: the byte following 0x7E maps back
// to the original data byte.
var unescapeTable = map[byte]byte{
	0x00: 0x7E,
	0x01: 0x24,
	0x02: 0x23,
	0x03: 0x25,
	0x04: 0xA4,
	0x05: 0xA3,
	0x06: 0xA5,
}

// unescapeByte reverses the escape table lookup. ok is false if b does not
// follow a valid escape sequence.
func unescapeByte(b byte) (value byte, ok bool) {
	value, ok = unescapeTable[b]
	return value, ok
}

// escapedLen returns the length of escape(data).
func escapedLen(data []byte) int {
	n := len(data)
	for _, b := range data {
		if _, ok := escapeTable[b]; ok {
			n++
		}
	}
	return n
}

// escape appends the escaped form of data to dst and returns the result.
func escape(dst []byte, data []byte) []byte {
	for _, b := range data {
		if esc, ok := escapeTable[b]; ok {
			dst = append(dst, 0x7E, esc)
			continue
		}
		dst = append(dst, b)
	}
	return dst
}
