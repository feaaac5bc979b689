package wire

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ManufacturerOUI is the 3-byte prefix expected on every gateway hardware
// address; addresses carrying it get a barcode projection (internal/barcode),
// others print as raw hex.
var ManufacturerOUI = [3]byte{0x04, 0xC0, 0x5B}

// LongAddress is an opaque, globally unique, permanent 8-byte hardware
// address assigned to a gateway or mesh node.
type LongAddress [8]byte

// HasManufacturerOUI reports whether a carries the expected OUI prefix.
func (a LongAddress) HasManufacturerOUI() bool {
	return a[0] == ManufacturerOUI[0] && a[1] == ManufacturerOUI[1] && a[2] == ManufacturerOUI[2]
}

// String renders the address as colon-separated hex. Callers that want the
// barcode projection for OUI-matching addresses should use internal/barcode
// directly; wire stays free of that dependency to avoid a cycle between the
// raw data type and its codecs.
func (a LongAddress) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X:%02X:%02X",
		a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7])
}

// MarshalJSON renders the address as an array of 8 bytes, matching the event
// sink shape described in spec.md §6.
func (a LongAddress) MarshalJSON() ([]byte, error) {
	out := make([]int, 8)
	for i, b := range a {
		out[i] = int(b)
	}
	return json.Marshal(out)
}

// MarshalCSV renders the address as compact hex when a LongAddress field is
// marshaled by gocsv. cmd/meshtap's --csv rows have no LongAddress field;
// addresses appear in their Detail text in String() form.
func (a LongAddress) MarshalCSV() (string, error) {
	return hex.EncodeToString(a[:]), nil
}
