package observer

import (
	"testing"
	"time"

	"github.com/gridwatch/meshtap/internal/pvapp"
	"github.com/gridwatch/meshtap/internal/wire"
)

func TestNewPowerReportEventNegativeTemperature(t *testing.T) {
	gateway := Gateway{ID: 1}
	node := Node{ID: 1}
	timestamp := time.Unix(1723500000, 0)

	report := pvapp.PowerReport{
		VoltageInVoltageOut: wire.U12Pair{A: 500, B: 250},
		DutyCycle:           255,
		CurrentTemperature:  wire.U12Pair{A: 200, B: 0xFFF},
		SlotCounter:         0,
		RSSI:                100,
	}

	event := newPowerReportEvent(gateway, node, timestamp, report)

	if event.VoltageIn != 25.0 || event.VoltageOut != 25.0 {
		t.Errorf("got voltage_in=%v voltage_out=%v", event.VoltageIn, event.VoltageOut)
	}
	if event.Current != 1.0 {
		t.Errorf("got current=%v, want 1.0", event.Current)
	}
	if event.DCDCDutyCycle != 1.0 {
		t.Errorf("got dc_dc_duty_cycle=%v, want 1.0", event.DCDCDutyCycle)
	}
	if event.Temperature != -0.1 {
		t.Errorf("got temperature=%v, want -0.1", event.Temperature)
	}
	if event.RSSI != 100 {
		t.Errorf("got rssi=%v, want 100", event.RSSI)
	}
}

func TestNewPowerReportEventPositiveTemperature(t *testing.T) {
	report := pvapp.PowerReport{
		CurrentTemperature: wire.U12Pair{A: 0, B: 100},
	}
	event := newPowerReportEvent(Gateway{}, Node{}, time.Time{}, report)
	if event.Temperature != 10.0 {
		t.Errorf("got temperature=%v, want 10.0", event.Temperature)
	}
}

type recordingSink struct {
	powerReports []PowerReportEvent
}

func (s *recordingSink) PowerReport(event PowerReportEvent) {
	s.powerReports = append(s.powerReports, event)
}
func (s *recordingSink) NodeTableUpdated(wire.GatewayID, NodeTable)                         {}
func (s *recordingSink) TopologyObserved(wire.GatewayID, wire.NodeID, pvapp.TopologyReport) {}
func (s *recordingSink) GatewayVersionObserved(wire.GatewayID, string)                      {}
func (s *recordingSink) GatewayIdentityObserved(wire.GatewayID, wire.LongAddress)           {}
