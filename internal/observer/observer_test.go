package observer

import (
	"testing"

	"github.com/gridwatch/meshtap/internal/pvapp"
	"github.com/gridwatch/meshtap/internal/wire"
)

func TestEnumerationDiscardsTransientAddress(t *testing.T) {
	sink := &recordingSink{}
	o := NewObserver(sink)

	o.EnumerationStarted(0x0001)
	o.GatewayIdentityObserved(0x0001, wire.LongAddress{0x04, 0xC0, 0x5B, 0, 0, 0, 0, 1})
	o.GatewayIdentityObserved(0x1201, wire.LongAddress{0x04, 0xC0, 0x5B, 0, 0, 0, 0, 2})
	o.EnumerationEnded(0x0001)

	state := o.PersistentState()
	if _, ok := state.GatewayIdentities[0x0001]; ok {
		t.Error("the transient enumeration address should have been discarded")
	}
	if addr, ok := state.GatewayIdentities[0x1201]; !ok || addr != (wire.LongAddress{0x04, 0xC0, 0x5B, 0, 0, 0, 0, 2}) {
		t.Errorf("got %+v", state.GatewayIdentities)
	}
}

func TestIdentityObservedOutsideEnumerationGoesDirectToPersistentState(t *testing.T) {
	sink := &recordingSink{}
	o := NewObserver(sink)

	o.GatewayIdentityObserved(0x1201, wire.LongAddress{1, 2, 3, 4, 5, 6, 7, 8})
	if addr, ok := o.PersistentState().GatewayIdentities[0x1201]; !ok || addr != (wire.LongAddress{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("got %+v", o.PersistentState().GatewayIdentities)
	}
}

func TestPowerReportDiscardedWithoutSlotClock(t *testing.T) {
	sink := &recordingSink{}
	o := NewObserver(sink)

	o.PowerReport(0x1201, 2, pvapp.PowerReport{})
	if len(sink.powerReports) != 0 {
		t.Errorf("got %d power reports, want 0", len(sink.powerReports))
	}
}

func TestPowerReportEmittedAfterSlotCounterCycle(t *testing.T) {
	sink := &recordingSink{}
	o := NewObserver(sink)

	o.SlotCounterCaptured(0x1201)
	o.SlotCounterObserved(0x1201, 0x2100)

	o.PowerReport(0x1201, 2, pvapp.PowerReport{
		VoltageInVoltageOut: wire.U12Pair{A: 500, B: 250},
		CurrentTemperature:  wire.U12Pair{A: 200, B: 100},
		SlotCounter:         0x2100,
		RSSI:                50,
	})

	if len(sink.powerReports) != 1 {
		t.Fatalf("got %d power reports, want 1", len(sink.powerReports))
	}
	event := sink.powerReports[0]
	if event.Gateway.ID != 0x1201 || event.Node.ID != 2 {
		t.Errorf("got %+v", event)
	}
	if event.VoltageIn != 25.0 || event.VoltageOut != 25.0 {
		t.Errorf("got voltage_in=%v voltage_out=%v", event.VoltageIn, event.VoltageOut)
	}
}

func TestNodeTableCommitReflectedInPersistentStateAndSink(t *testing.T) {
	sink := &recordingSink{}
	o := NewObserver(sink)

	long := wire.LongAddress{0x04, 0xC0, 0x5B, 0, 0, 0, 0, 9}
	o.NodeTablePage(0x1201, 0, []pvapp.NodeTableResponseEntry{{LongAddress: long, NodeAddress: 5}})
	o.NodeTablePage(0x1201, 6, nil)

	table, ok := o.PersistentState().GatewayNodeTables[0x1201]
	if !ok || table[5] != long {
		t.Errorf("got %+v", table)
	}
}

func TestCounters(t *testing.T) {
	sink := &recordingSink{}
	o := NewObserver(sink)

	o.NodeTablePage(0x1201, 0, nil)
	o.PowerReport(0x1201, 2, pvapp.PowerReport{})
	o.GatewayIdentityObserved(0x1201, wire.LongAddress{})

	counters := o.Counters()
	if counters.NodeTablePages != 1 || counters.NodeTablesCommitted != 1 {
		t.Errorf("got %+v", counters)
	}
	if counters.PowerReportsDiscardedNoClock != 1 {
		t.Errorf("got %+v", counters)
	}
	if counters.GatewayIdentitiesObserved != 1 {
		t.Errorf("got %+v", counters)
	}

	o.ResetCounters()
	if o.Counters() != (Counters{}) {
		t.Errorf("got %+v after reset, want zero value", o.Counters())
	}
}
