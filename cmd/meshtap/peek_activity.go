package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/gridwatch/meshtap/internal/link"
	"github.com/gridwatch/meshtap/internal/pvapp"
	"github.com/gridwatch/meshtap/internal/transport"
	"github.com/gridwatch/meshtap/internal/wire"
)

var peekActivityCSV bool

var peekActivityCmd = &cobra.Command{
	Use:   "peek-activity",
	Short: "Print transport and PV application layer activity",
	Run: func(cmd *cobra.Command, args []string) {
		conn := openSource()
		defer conn.Close()
		peekActivity(conn, peekActivityCSV)
	},
}

func init() {
	peekActivityCmd.Flags().BoolVar(&peekActivityCSV, "csv", false, "emit a CSV table instead of log lines")
	rootCmd.AddCommand(peekActivityCmd)
}

// activityRow is one logged event, flattened for --csv output via gocsv.
type activityRow struct {
	Kind      string
	GatewayID wire.GatewayID
	Detail    string
}

type activitySink struct {
	slotCounters map[wire.GatewayID]wire.SlotCounter
	rows         []activityRow
	csv          bool
}

func newActivitySink(csv bool) *activitySink {
	return &activitySink{slotCounters: make(map[wire.GatewayID]wire.SlotCounter), csv: csv}
}

func (s *activitySink) emit(kind string, gatewayID wire.GatewayID, detail string) {
	if s.csv {
		s.rows = append(s.rows, activityRow{Kind: kind, GatewayID: gatewayID, Detail: detail})
		return
	}
	log.Printf("%s: %s %s", kind, gatewayID, detail)
}

func (s *activitySink) EnumerationStarted(enumerationGatewayID wire.GatewayID) {
	s.emit("enumeration_started", enumerationGatewayID, "")
}

func (s *activitySink) GatewayIdentityObserved(gatewayID wire.GatewayID, address wire.LongAddress) {
	s.emit("gateway_identity_observed", gatewayID, fmt.Sprintf("%v", address))
}

func (s *activitySink) GatewayVersionObserved(gatewayID wire.GatewayID, version string) {
	s.emit("gateway_version_observed", gatewayID, version)
}

func (s *activitySink) EnumerationEnded(gatewayID wire.GatewayID) {
	s.emit("enumeration_ended", gatewayID, "")
}

func (s *activitySink) SlotCounterCaptured(wire.GatewayID) {}

func (s *activitySink) SlotCounterObserved(gatewayID wire.GatewayID, slotCounter wire.SlotCounter) {
	last, ok := s.slotCounters[gatewayID]
	print := !ok || last.Epoch() != slotCounter.Epoch() || (uint16(last)&0x3FFF)/1000 != (uint16(slotCounter)&0x3FFF)/1000
	s.slotCounters[gatewayID] = slotCounter
	if print {
		s.emit("slot_counter", gatewayID, fmt.Sprintf("%s", slotCounter))
	}
}

func (s *activitySink) PacketReceived(gatewayID wire.GatewayID, header wire.ReceivedPacketHeader, data []byte) {
	switch header.PacketType {
	case wire.PacketTypeStringResponse, wire.PacketTypePowerReport, wire.PacketTypeTopologyReport:
		return
	}
	s.emit("packet_received", gatewayID, fmt.Sprintf("%s %x", header.PacketType, data))
}

func (s *activitySink) CommandExecuted(gatewayID wire.GatewayID, request, response transport.Command) {
	switch request.Type {
	case wire.PacketTypeStringRequest, wire.PacketTypeNodeTableRequest:
		return
	}
	s.emit("command_executed", gatewayID, fmt.Sprintf("%s %x => %s %x", request.Type, request.Payload, response.Type, response.Payload))
}

func (s *activitySink) StringRequest(gatewayID wire.GatewayID, nodeID wire.NodeID, request string) {
	s.emit("string_request", gatewayID, fmt.Sprintf("%s %q", nodeID, request))
}

func (s *activitySink) StringResponse(gatewayID wire.GatewayID, nodeID wire.NodeID, response string) {
	s.emit("string_response", gatewayID, fmt.Sprintf("%s %q", nodeID, response))
}

func (s *activitySink) NodeTablePage(gatewayID wire.GatewayID, startAddress wire.NodeAddress, entries []pvapp.NodeTableResponseEntry) {
	s.emit("node_table_page", gatewayID, fmt.Sprintf("start=%s n=%d", startAddress, len(entries)))
}

func (s *activitySink) TopologyReport(gatewayID wire.GatewayID, nodeID wire.NodeID, report pvapp.TopologyReport) {
	s.emit("topology_report", gatewayID, fmt.Sprintf("%s %+v", nodeID, report))
}

func (s *activitySink) PowerReport(gatewayID wire.GatewayID, nodeID wire.NodeID, report pvapp.PowerReport) {
	s.emit("power_report", gatewayID, fmt.Sprintf("%s %+v", nodeID, report))
}

func peekActivity(r io.Reader, csv bool) {
	sink := newActivitySink(csv)
	rx := link.NewReceiver(transport.NewReceiver(pvapp.NewReceiver(sink)))

	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			rx.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Println("error reading:", err)
			os.Exit(1)
		}
	}

	if csv {
		if err := gocsv.Marshal(sink.rows, os.Stdout); err != nil {
			log.Println("error writing csv:", err)
			os.Exit(1)
		}
	}
}
