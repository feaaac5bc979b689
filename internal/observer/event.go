package observer

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gridwatch/meshtap/internal/barcode"
	"github.com/gridwatch/meshtap/internal/pvapp"
	"github.com/gridwatch/meshtap/internal/wire"
)

// Gateway identifies the gateway an event passed through.
type Gateway struct {
	ID      wire.GatewayID    `json:"id"`
	Address *wire.LongAddress `json:"address,omitempty"`
}

// Node identifies the mesh node an event is about.
type Node struct {
	ID      wire.NodeID       `json:"id"`
	Address *wire.LongAddress `json:"address,omitempty"`
	Barcode *string           `json:"barcode,omitempty"`
}

func nodeOf(id wire.NodeID, address *wire.LongAddress) Node {
	n := Node{ID: id, Address: address}
	if address != nil {
		if s, err := barcode.Format(*address); err == nil {
			n.Barcode = &s
		}
	}
	return n
}

// PowerReportEvent is the decoded, physically-scaled form of a power
// report, timestamped against the reporting gateway's slot clock.
type PowerReportEvent struct {
	Gateway       Gateway   `json:"gateway"`
	Node          Node      `json:"node"`
	Timestamp     time.Time `json:"timestamp"`
	VoltageIn     float64   `json:"voltage_in"`
	VoltageOut    float64   `json:"voltage_out"`
	Current       float64   `json:"current"`
	DCDCDutyCycle float64   `json:"dc_dc_duty_cycle"`
	Temperature   float64   `json:"temperature"`
	RSSI          wire.RSSI `json:"rssi"`
}

func newPowerReportEvent(gateway Gateway, node Node, timestamp time.Time, report pvapp.PowerReport) PowerReportEvent {
	voltageIn, voltageOut := report.VoltageInVoltageOut.A, report.VoltageInVoltageOut.B
	current, temperature := report.CurrentTemperature.A, report.CurrentTemperature.B

	// The low 12 bits of the temperature field are a two's-complement
	// value; sign-extend bit 0x800 into the top nibble before scaling.
	signed := int16(temperature)
	if temperature&0x800 != 0 {
		signed = int16(temperature | 0xF000)
	}

	return PowerReportEvent{
		Gateway:       gateway,
		Node:          node,
		Timestamp:     timestamp,
		VoltageIn:     float64(voltageIn) / 20.0,
		VoltageOut:    float64(voltageOut) / 10.0,
		Current:       float64(current) / 200.0,
		DCDCDutyCycle: float64(report.DutyCycle) / 255.0,
		Temperature:   float64(signed) / 10.0,
		RSSI:          report.RSSI,
	}
}

// Sink receives the events an Observer produces. The default JSON event
// stream (spec'd output) only ever calls PowerReport; the other methods
// carry supplementary events surfaced only by sinks that opt into them
// (e.g. a --verbose CLI mode), never mixed into the default stream.
type Sink interface {
	PowerReport(event PowerReportEvent)
	NodeTableUpdated(gateway wire.GatewayID, nodes NodeTable)
	TopologyObserved(gateway wire.GatewayID, node wire.NodeID, report pvapp.TopologyReport)
	GatewayVersionObserved(gateway wire.GatewayID, version string)
	GatewayIdentityObserved(gateway wire.GatewayID, address wire.LongAddress)
}

// JSONLineSink writes events as one JSON object per line to w, each
// wrapped in a single-key object naming its event type (e.g.
// {"PowerReport": {...}}). Writes are serialized under a mutex the way
// the teacher's eventsocket.Server guards its client set, even though a
// single-threaded caller never needs the protection; Verbose controls
// whether the supplementary event types are written at all.
type JSONLineSink struct {
	w       io.Writer
	mu      sync.Mutex
	Verbose bool
}

// NewJSONLineSink creates a JSONLineSink writing to w.
func NewJSONLineSink(w io.Writer) *JSONLineSink {
	return &JSONLineSink{w: w}
}

func (s *JSONLineSink) writeLine(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(map[string]any{key: value})
	if err != nil {
		return
	}
	fmt.Fprintln(s.w, string(b))
}

func (s *JSONLineSink) PowerReport(event PowerReportEvent) { s.writeLine("PowerReport", event) }

func (s *JSONLineSink) NodeTableUpdated(gateway wire.GatewayID, nodes NodeTable) {
	if !s.Verbose {
		return
	}
	s.writeLine("NodeTableUpdated", struct {
		Gateway wire.GatewayID `json:"gateway"`
		Nodes   NodeTable      `json:"nodes"`
	}{gateway, nodes})
}

func (s *JSONLineSink) TopologyObserved(gateway wire.GatewayID, node wire.NodeID, report pvapp.TopologyReport) {
	if !s.Verbose {
		return
	}
	s.writeLine("TopologyObserved", struct {
		Gateway wire.GatewayID       `json:"gateway"`
		Node    wire.NodeID          `json:"node"`
		Raw     pvapp.TopologyReport `json:"raw"`
	}{gateway, node, report})
}

func (s *JSONLineSink) GatewayVersionObserved(gateway wire.GatewayID, version string) {
	if !s.Verbose {
		return
	}
	s.writeLine("GatewayVersionObserved", struct {
		Gateway wire.GatewayID `json:"gateway"`
		Version string         `json:"version"`
	}{gateway, version})
}

func (s *JSONLineSink) GatewayIdentityObserved(gateway wire.GatewayID, address wire.LongAddress) {
	if !s.Verbose {
		return
	}
	s.writeLine("GatewayIdentityObserved", struct {
		Gateway wire.GatewayID   `json:"gateway"`
		Address wire.LongAddress `json:"address"`
	}{gateway, address})
}
