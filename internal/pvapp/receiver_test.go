package pvapp

import (
	"testing"

	"github.com/gridwatch/meshtap/internal/transport"
	"github.com/gridwatch/meshtap/internal/wire"
)

type event struct {
	kind    string
	gateway wire.GatewayID
	a, b    any
}

type testSink struct {
	events []event
}

func (s *testSink) EnumerationStarted(id wire.GatewayID) {
	s.events = append(s.events, event{kind: "EnumerationStarted", gateway: id})
}
func (s *testSink) GatewayIdentityObserved(id wire.GatewayID, addr wire.LongAddress) {
	s.events = append(s.events, event{kind: "GatewayIdentityObserved", gateway: id, a: addr})
}
func (s *testSink) GatewayVersionObserved(id wire.GatewayID, version string) {
	s.events = append(s.events, event{kind: "GatewayVersionObserved", gateway: id, a: version})
}
func (s *testSink) EnumerationEnded(id wire.GatewayID) {
	s.events = append(s.events, event{kind: "EnumerationEnded", gateway: id})
}
func (s *testSink) SlotCounterCaptured(id wire.GatewayID) {
	s.events = append(s.events, event{kind: "SlotCounterCaptured", gateway: id})
}
func (s *testSink) SlotCounterObserved(id wire.GatewayID, sc wire.SlotCounter) {
	s.events = append(s.events, event{kind: "SlotCounterObserved", gateway: id, a: sc})
}
func (s *testSink) PacketReceived(id wire.GatewayID, header wire.ReceivedPacketHeader, data []byte) {
	s.events = append(s.events, event{kind: "PacketReceived", gateway: id, a: header, b: append([]byte{}, data...)})
}
func (s *testSink) CommandExecuted(id wire.GatewayID, request, response transport.Command) {
	s.events = append(s.events, event{kind: "CommandExecuted", gateway: id, a: request, b: response})
}
func (s *testSink) StringRequest(id wire.GatewayID, node wire.NodeID, request string) {
	s.events = append(s.events, event{kind: "StringRequest", gateway: id, a: node, b: request})
}
func (s *testSink) StringResponse(id wire.GatewayID, node wire.NodeID, response string) {
	s.events = append(s.events, event{kind: "StringResponse", gateway: id, a: node, b: response})
}
func (s *testSink) NodeTablePage(id wire.GatewayID, start wire.NodeAddress, entries []NodeTableResponseEntry) {
	s.events = append(s.events, event{kind: "NodeTablePage", gateway: id, a: start, b: entries})
}
func (s *testSink) TopologyReport(id wire.GatewayID, node wire.NodeID, report TopologyReport) {
	s.events = append(s.events, event{kind: "TopologyReport", gateway: id, a: node, b: report})
}
func (s *testSink) PowerReport(id wire.GatewayID, node wire.NodeID, report PowerReport) {
	s.events = append(s.events, event{kind: "PowerReport", gateway: id, a: node, b: report})
}

func header(packetType wire.PacketType, node wire.NodeAddress, dataLength uint8) wire.ReceivedPacketHeader {
	return wire.ReceivedPacketHeader{PacketType: packetType, NodeAddress: node, DataLength: dataLength}
}

func TestPacketReceivedAlwaysForwarded(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)
	rx.PacketReceived(0x1201, header(wire.PacketTypeBroadcast, 5, 0), nil)

	if len(sink.events) != 1 || sink.events[0].kind != "PacketReceived" {
		t.Fatalf("got events %+v", sink.events)
	}
}

func TestStringResponse(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)
	rx.PacketReceived(0x1201, header(wire.PacketTypeStringResponse, 5, 5), []byte("hello"))

	if len(sink.events) != 2 || sink.events[1].kind != "StringResponse" {
		t.Fatalf("got events %+v", sink.events)
	}
	if sink.events[1].a != wire.NodeID(5) || sink.events[1].b != "hello" {
		t.Errorf("got %+v", sink.events[1])
	}
	if c := rx.Counters(); c.StringResponses != 1 {
		t.Errorf("got counters %+v", c)
	}
}

func TestStringResponseInvalidUTF8(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)
	rx.PacketReceived(0x1201, header(wire.PacketTypeStringResponse, 5, 2), []byte{0xFF, 0xFE})

	if c := rx.Counters(); c.InvalidStringResponses != 1 {
		t.Errorf("got counters %+v", c)
	}
}

func TestPacketReceivedInvalidNodeID(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)
	rx.PacketReceived(0x1201, header(wire.PacketTypeStringResponse, wire.ZeroAddress, 2), []byte("ok"))

	if c := rx.Counters(); c.InvalidReceivedPacketNodeIDs != 1 {
		t.Errorf("got counters %+v", c)
	}
	// The unchanged forward still happens before the node id is validated.
	if len(sink.events) != 1 {
		t.Fatalf("got events %+v", sink.events)
	}
}

func TestTopologyReport(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)

	data := make([]byte, topologyReportSize)
	data[0], data[1] = 0x00, 0x10 // short address
	data[2], data[3] = 0x00, 0x05 // node address
	data[4], data[5] = 0x00, 0x01 // next hop
	copy(data[8:16], []byte{0x04, 0xC0, 0x5B, 0x30, 0x00, 0x02, 0xBE, 0x16})
	data[16] = 0x7F // rssi

	rx.PacketReceived(0x1201, header(wire.PacketTypeTopologyReport, 5, uint8(len(data))), data)

	if len(sink.events) != 2 || sink.events[1].kind != "TopologyReport" {
		t.Fatalf("got events %+v", sink.events)
	}
	report := sink.events[1].b.(TopologyReport)
	if report.ShortAddress != 0x0010 || report.NodeAddress != 5 || report.NextHop != 1 || report.RSSI != 0x7F {
		t.Errorf("got %+v", report)
	}
	want := wire.LongAddress{0x04, 0xC0, 0x5B, 0x30, 0x00, 0x02, 0xBE, 0x16}
	if report.LongAddress != want {
		t.Errorf("got long address %v, want %v", report.LongAddress, want)
	}
	if c := rx.Counters(); c.TopologyReports != 1 {
		t.Errorf("got counters %+v", c)
	}
}

func TestTopologyReportTooShort(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)
	rx.PacketReceived(0x1201, header(wire.PacketTypeTopologyReport, 5, 3), []byte{1, 2, 3})
	if c := rx.Counters(); c.InvalidTopologyReports != 1 {
		t.Errorf("got counters %+v", c)
	}
}

func TestPowerReport(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)

	data := []byte{
		0x2b, 0x61, 0x58, // vin_vout U12Pair -> (0x2b6, 0x158)
		0x80,             // duty cycle
		0x2b, 0x61, 0x58, // current_temperature U12Pair
		0x00, 0x00, 0x00, // unknown
		0x21, 0x31, // slot counter
		0x45, // rssi
	}
	rx.PacketReceived(0x1201, header(wire.PacketTypePowerReport, 5, uint8(len(data))), data)

	if len(sink.events) != 2 || sink.events[1].kind != "PowerReport" {
		t.Fatalf("got events %+v", sink.events)
	}
	report := sink.events[1].b.(PowerReport)
	if report.VoltageInVoltageOut != (wire.U12Pair{A: 0x2b6, B: 0x158}) {
		t.Errorf("got vin_vout %+v", report.VoltageInVoltageOut)
	}
	if report.DutyCycle != 0x80 || report.SlotCounter != 0x2131 || report.RSSI != 0x45 {
		t.Errorf("got %+v", report)
	}
	if c := rx.Counters(); c.PowerReports != 1 {
		t.Errorf("got counters %+v", c)
	}
}

func TestPowerReportTooShort(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)
	rx.PacketReceived(0x1201, header(wire.PacketTypePowerReport, 5, 2), []byte{1, 2})
	if c := rx.Counters(); c.InvalidPowerReports != 1 {
		t.Errorf("got counters %+v", c)
	}
}

func TestNodeTableCommand(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)

	request := []byte{0x00, 0x02}
	response := []byte{
		0x00, 0x02,
		0x04, 0xC0, 0x5B, 0x40, 0x00, 0xA2, 0x34, 0x6F, 0x00, 0x02,
		0x04, 0xC0, 0x5B, 0x40, 0x00, 0xA2, 0x34, 0x71, 0x00, 0x03,
	}
	rx.CommandExecuted(0x1201,
		transport.Command{Type: wire.PacketTypeNodeTableRequest, Payload: request},
		transport.Command{Type: wire.PacketTypeNodeTableResponse, Payload: response},
	)

	if len(sink.events) != 2 || sink.events[1].kind != "NodeTablePage" {
		t.Fatalf("got events %+v", sink.events)
	}
	if sink.events[1].a != wire.NodeAddress(2) {
		t.Errorf("got start address %v, want 2", sink.events[1].a)
	}
	entries := sink.events[1].b.([]NodeTableResponseEntry)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].NodeAddress != 2 || entries[1].NodeAddress != 3 {
		t.Errorf("got entries %+v", entries)
	}
}

func TestNodeTableCommandCountMismatch(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)

	request := []byte{0x00, 0x00}
	response := []byte{0x00, 0x01} // claims one entry, has zero
	rx.CommandExecuted(0x1201,
		transport.Command{Type: wire.PacketTypeNodeTableRequest, Payload: request},
		transport.Command{Type: wire.PacketTypeNodeTableResponse, Payload: response},
	)
	if c := rx.Counters(); c.InvalidNodeTableResponses != 1 {
		t.Errorf("got counters %+v", c)
	}
}

func TestStringCommand(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)

	request := append([]byte{0x00, 0x05}, []byte("status?")...)
	rx.CommandExecuted(0x1201,
		transport.Command{Type: wire.PacketTypeStringRequest, Payload: request},
		transport.Command{Type: wire.PacketTypeStringResponse, Payload: nil},
	)

	if len(sink.events) != 2 || sink.events[1].kind != "StringRequest" {
		t.Fatalf("got events %+v", sink.events)
	}
	if sink.events[1].a != wire.NodeID(5) || sink.events[1].b != "status?" {
		t.Errorf("got %+v", sink.events[1])
	}
	if c := rx.Counters(); c.StringCommands != 1 {
		t.Errorf("got counters %+v", c)
	}
}

func TestStringCommandNonEmptyResponseRejected(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)

	request := append([]byte{0x00, 0x05}, []byte("status?")...)
	rx.CommandExecuted(0x1201,
		transport.Command{Type: wire.PacketTypeStringRequest, Payload: request},
		transport.Command{Type: wire.PacketTypeStringResponse, Payload: []byte{0x01}},
	)
	if c := rx.Counters(); c.InvalidStringCommands != 1 {
		t.Errorf("got counters %+v", c)
	}
}

func TestCommandExecutedUnhandledPairingStillForwarded(t *testing.T) {
	sink := &testSink{}
	rx := NewReceiver(sink)
	rx.CommandExecuted(0x1201,
		transport.Command{Type: wire.PacketTypeBroadcast},
		transport.Command{Type: wire.PacketTypeBroadcastAck},
	)
	if len(sink.events) != 1 || sink.events[0].kind != "CommandExecuted" {
		t.Fatalf("got events %+v", sink.events)
	}
}
