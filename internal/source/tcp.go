package source

import (
	"fmt"
	"net"
)

// TCP is a Connection to a gateway reached over a TCP relay. A read-only
// connection rejects writes with ErrWriteUnsupported rather than silently
// discarding them.
type TCP struct {
	conn     net.Conn
	readOnly bool
}

// DialTCP connects to hostname:port. When readOnly is true, Write always
// fails.
func DialTCP(hostname string, port uint16, readOnly bool) (*TCP, error) {
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", hostname, port))
	if err != nil {
		return nil, err
	}
	return &TCP{conn: conn, readOnly: readOnly}, nil
}

func (t *TCP) Read(buf []byte) (int, error) {
	return t.conn.Read(buf)
}

func (t *TCP) Write(buf []byte) (int, error) {
	if t.readOnly {
		return 0, ErrWriteUnsupported
	}
	return t.conn.Write(buf)
}

func (t *TCP) Close() error {
	return t.conn.Close()
}
