// Package source provides the byte-level connections a gateway is reached
// over: a physical RS-485 serial port or a TCP relay.
package source

import (
	"errors"
	"io"
)

// ErrWriteUnsupported is returned by Write on a connection opened read-only.
var ErrWriteUnsupported = errors.New("source: write not supported on a read-only connection")

// Connection is a byte source that may also accept writes. Implementations
// that are read-only return ErrWriteUnsupported from Write rather than
// silently discarding data.
type Connection interface {
	io.ReadWriteCloser
}
