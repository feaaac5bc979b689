package source

import (
	"time"

	"go.bug.st/serial"
)

// serialMode is the line configuration every gateway's RS-485 port runs:
// 38400 8N1, no flow control.
var serialMode = &serial.Mode{
	BaudRate: 38400,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

const serialReadTimeout = 5 * time.Millisecond

// Serial is a Connection backed by a physical RS-485 serial port.
type Serial struct {
	port serial.Port
}

// OpenSerial opens name at 38400 8N1 with no flow control.
func OpenSerial(name string) (*Serial, error) {
	port, err := serial.Open(name, serialMode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		port.Close()
		return nil, err
	}
	return &Serial{port: port}, nil
}

// Read blocks until at least one byte arrives, retrying silently across the
// port's internal read timeout rather than surfacing it as an error.
func (s *Serial) Read(buf []byte) (int, error) {
	for {
		n, err := s.port.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (s *Serial) Write(buf []byte) (int, error) {
	return s.port.Write(buf)
}

func (s *Serial) Close() error {
	return s.port.Close()
}

// ListPorts lists the names of the serial ports available on this machine.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
