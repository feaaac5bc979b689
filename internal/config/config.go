// Package config resolves a source configuration, selected by the caller
// (typically from CLI flags), into an open internal/source.Connection.
package config

import (
	"errors"
	"fmt"

	"github.com/gridwatch/meshtap/internal/source"
)

// ConnectionMode selects whether a TCP connection accepts writes.
type ConnectionMode string

const (
	ConnectionModeReadOnly  ConnectionMode = "readonly"
	ConnectionModeReadWrite ConnectionMode = "readwrite"
)

// DefaultTCPPort is the port a TCP source connects to when none is given.
const DefaultTCPPort uint16 = 7160

// ParseConnectionMode accepts the canonical names and their short aliases
// ("ro", "rw"); it defaults to ConnectionModeReadOnly for an empty string.
func ParseConnectionMode(s string) (ConnectionMode, error) {
	switch s {
	case "", "readonly", "ro":
		return ConnectionModeReadOnly, nil
	case "readwrite", "rw":
		return ConnectionModeReadWrite, nil
	default:
		return "", fmt.Errorf("config: unrecognized connection mode %q", s)
	}
}

// SerialSourceConfig selects a physical serial port by name.
type SerialSourceConfig struct {
	Name string
}

// TCPConnectionConfig selects a TCP relay endpoint.
type TCPConnectionConfig struct {
	Hostname string
	Port     uint16
	Mode     ConnectionMode
}

// SourceConfig selects exactly one of a serial or a TCP source. Exactly one
// of Serial and TCP must be non-nil before calling Open.
type SourceConfig struct {
	Serial *SerialSourceConfig
	TCP    *TCPConnectionConfig
}

// Open resolves the configuration to a live connection.
func (c SourceConfig) Open() (source.Connection, error) {
	switch {
	case c.Serial != nil && c.TCP != nil:
		return nil, errors.New("config: only one of Serial or TCP may be set")
	case c.Serial != nil:
		return source.OpenSerial(c.Serial.Name)
	case c.TCP != nil:
		port := c.TCP.Port
		if port == 0 {
			port = DefaultTCPPort
		}
		readOnly := c.TCP.Mode != ConnectionModeReadWrite
		return source.DialTCP(c.TCP.Hostname, port, readOnly)
	default:
		return nil, errors.New("config: no source configured")
	}
}
