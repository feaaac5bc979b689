// Package barcode implements the checksummed base-16 projection of a PV
// node's 8-byte hardware address used on printed barcode labels: one
// manufacturer-prefix nibble, a dash, up to nine hex digits with leading
// zeros skipped, and a single check character.
//
// The check character comes from a nibble-wise CRC-4 whose table is
// reproduced verbatim below; it is not derived from a general-purpose CRC
// polynomial, it is simply the table the PV-OEM barcode printers use.
package barcode

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gridwatch/meshtap/internal/wire"
)

// ErrNotBarcodeForm is returned by Format when the address does not carry
// the manufacturer OUI and therefore has no barcode projection.
var ErrNotBarcodeForm = errors.New("barcode: address does not carry the manufacturer OUI")

// ErrInvalidBarcode is returned by Parse when s is not a syntactically or
// checksum-valid barcode.
var ErrInvalidBarcode = errors.New("barcode: invalid barcode string")

// hexDigits are the nibble-to-ASCII digits used when emitting the address
// body, i.e. ordinary uppercase hex.
const hexDigits = "0123456789ABCDEF"

// checkAlphabet is the 16-symbol alphabet used for the trailing check
// character. It is disjoint from 0-9A-F so a barcode can never be confused
// with a bare hex dump.
const checkAlphabet = "GHJKLMNPRSTVWXYZ"

// crcTable is the fixed 256-entry nibble-wise CRC-4 table used by the
// PV-OEM barcode format. Each entry maps (byte XOR (crc<<4)) & 0xFF to the
// next 4-bit CRC state. See https://stackoverflow.com/q/54507106 for the
// original observation that a CRC this small is unusual but real.
var crcTable = [256]byte{
	0x0, 0x3, 0x6, 0x5, 0xc, 0xf, 0xa, 0x9, 0xb, 0x8, 0xd, 0xe, 0x7, 0x4, 0x1, 0x2, 0x5, 0x6, 0x3,
	0x0, 0x9, 0xa, 0xf, 0xc, 0xe, 0xd, 0x8, 0xb, 0x2, 0x1, 0x4, 0x7, 0xa, 0x9, 0xc, 0xf, 0x6, 0x5,
	0x0, 0x3, 0x1, 0x2, 0x7, 0x4, 0xd, 0xe, 0xb, 0x8, 0xf, 0xc, 0x9, 0xa, 0x3, 0x0, 0x5, 0x6, 0x4,
	0x7, 0x2, 0x1, 0x8, 0xb, 0xe, 0xd, 0x7, 0x4, 0x1, 0x2, 0xb, 0x8, 0xd, 0xe, 0xc, 0xf, 0xa, 0x9,
	0x0, 0x3, 0x6, 0x5, 0x2, 0x1, 0x4, 0x7, 0xe, 0xd, 0x8, 0xb, 0x9, 0xa, 0xf, 0xc, 0x5, 0x6, 0x3,
	0x0, 0xd, 0xe, 0xb, 0x8, 0x1, 0x2, 0x7, 0x4, 0x6, 0x5, 0x0, 0x3, 0xa, 0x9, 0xc, 0xf, 0x8, 0xb,
	0xe, 0xd, 0x4, 0x7, 0x2, 0x1, 0x3, 0x0, 0x5, 0x6, 0xf, 0xc, 0x9, 0xa, 0xe, 0xd, 0x8, 0xb, 0x2,
	0x1, 0x4, 0x7, 0x5, 0x6, 0x3, 0x0, 0x9, 0xa, 0xf, 0xc, 0xb, 0x8, 0xd, 0xe, 0x7, 0x4, 0x1, 0x2,
	0x0, 0x3, 0x6, 0x5, 0xc, 0xf, 0xa, 0x9, 0x4, 0x7, 0x2, 0x1, 0x8, 0xb, 0xe, 0xd, 0xf, 0xc, 0x9,
	0xa, 0x3, 0x0, 0x5, 0x6, 0x1, 0x2, 0x7, 0x4, 0xd, 0xe, 0xb, 0x8, 0xa, 0x9, 0xc, 0xf, 0x6, 0x5,
	0x0, 0x3, 0x9, 0xa, 0xf, 0xc, 0x5, 0x6, 0x3, 0x0, 0x2, 0x1, 0x4, 0x7, 0xe, 0xd, 0x8, 0xb, 0xc,
	0xf, 0xa, 0x9, 0x0, 0x3, 0x6, 0x5, 0x7, 0x4, 0x1, 0x2, 0xb, 0x8, 0xd, 0xe, 0x3, 0x0, 0x5, 0x6,
	0xf, 0xc, 0x9, 0xa, 0x8, 0xb, 0xe, 0xd, 0x4, 0x7, 0x2, 0x1, 0x6, 0x5, 0x0, 0x3, 0xa, 0x9, 0xc,
	0xf, 0xd, 0xe, 0xb, 0x8, 0x1, 0x2, 0x7, 0x4,
}

// CRC4 computes the check value for addr, returning the check character
// from checkAlphabet.
func CRC4(addr wire.LongAddress) byte {
	crc := byte(2)
	for _, b := range addr {
		crc = crcTable[b^(crc<<4)]
	}
	return checkAlphabet[crc]
}

// Format renders addr as a barcode string, or ErrNotBarcodeForm if addr does
// not carry the manufacturer OUI.
func Format(addr wire.LongAddress) (string, error) {
	if !addr.HasManufacturerOUI() {
		return "", ErrNotBarcodeForm
	}

	var b strings.Builder
	b.WriteByte(hexDigits[addr[3]>>4])
	b.WriteByte('-')

	nibbles := [9]byte{
		addr[3] & 0xF,
		addr[4] >> 4, addr[4] & 0xF,
		addr[5] >> 4, addr[5] & 0xF,
		addr[6] >> 4, addr[6] & 0xF,
		addr[7] >> 4, addr[7] & 0xF,
	}

	skipping := true
	for i, n := range nibbles {
		if skipping && n == 0 && i < len(nibbles)-1 {
			continue
		}
		skipping = false
		b.WriteByte(hexDigits[n])
	}

	b.WriteByte(CRC4(addr))
	return b.String(), nil
}

// Parse decodes a barcode string back into a LongAddress, validating its
// check character. It returns ErrInvalidBarcode if s is malformed or its
// checksum does not match.
func Parse(s string) (wire.LongAddress, error) {
	if len(s) < 4 || s[1] != '-' {
		return wire.LongAddress{}, ErrInvalidBarcode
	}

	lead, err := strconv.ParseUint(s[0:1], 16, 8)
	if err != nil {
		return wire.LongAddress{}, ErrInvalidBarcode
	}

	body := s[2 : len(s)-1]
	if len(body) == 0 || len(body) > 9 {
		return wire.LongAddress{}, ErrInvalidBarcode
	}
	rest, err := strconv.ParseUint(body, 16, 36)
	if err != nil {
		return wire.LongAddress{}, ErrInvalidBarcode
	}

	checksum := s[len(s)-1]

	addrValue := rest | ((0x04C05B0 | lead) << 36)
	var addr wire.LongAddress
	for i := 7; i >= 0; i-- {
		addr[i] = byte(addrValue)
		addrValue >>= 8
	}

	if CRC4(addr) != checksum {
		return wire.LongAddress{}, ErrInvalidBarcode
	}
	return addr, nil
}
