// Package metrics registers the prometheus instruments that mirror the
// decode pipeline's per-layer counter snapshots, so a long-running observe
// process can be scraped the way the layers' own Counters structs are
// inspected programmatically.
package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gridwatch/meshtap/internal/link"
	"github.com/gridwatch/meshtap/internal/observer"
	"github.com/gridwatch/meshtap/internal/pvapp"
	"github.com/gridwatch/meshtap/internal/transport"
)

var (
	// LinkOutcomes tracks the link layer's frame-level decode outcomes.
	LinkOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshtap_link_outcomes_total",
			Help: "Link layer frame decode outcomes by kind.",
		}, []string{"outcome"})

	// TransportOutcomes tracks the transport layer's packet/command demux
	// outcomes.
	TransportOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshtap_transport_outcomes_total",
			Help: "Transport layer decode outcomes by kind.",
		}, []string{"outcome"})

	// PVAppOutcomes tracks the typed application-layer decode outcomes.
	PVAppOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshtap_pvapp_outcomes_total",
			Help: "Application layer decode outcomes by kind.",
		}, []string{"outcome"})

	// ObserverOutcomes tracks the observer layer's stateful outcomes: node
	// table pages/commits, topology reports, power reports emitted or
	// discarded, slot-clock rebuilds, and identity/version observations.
	ObserverOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshtap_observer_outcomes_total",
			Help: "Observer layer outcomes by kind.",
		}, []string{"outcome"})
)

func init() {
	log.Println("Prometheus metrics in meshtap.metrics are registered.")
}

// PublishLink adds delta's counts to LinkOutcomes. Callers typically call
// Receiver.Counters followed by Receiver.ResetCounters and pass the
// snapshot here, so each publish reports only what changed since the last
// one.
func PublishLink(delta link.Counters) {
	LinkOutcomes.WithLabelValues("frame").Add(float64(delta.Frames))
	LinkOutcomes.WithLabelValues("runt").Add(float64(delta.Runts))
	LinkOutcomes.WithLabelValues("giant").Add(float64(delta.Giants))
	LinkOutcomes.WithLabelValues("checksum").Add(float64(delta.Checksums))
	LinkOutcomes.WithLabelValues("noise").Add(float64(delta.Noise))
}

// PublishTransport adds delta's counts to TransportOutcomes.
func PublishTransport(delta transport.Counters) {
	add := func(outcome string, n uint64) {
		if n > 0 {
			TransportOutcomes.WithLabelValues(outcome).Add(float64(n))
		}
	}
	add("unhandled_frame_type", delta.UnhandledFrameType)
	add("invalid_receive_request", delta.InvalidReceiveRequests)
	add("receive_request", delta.ReceiveRequests)
	add("invalid_receive_response", delta.InvalidReceiveResponses)
	add("receive_response_unknown_gateway", delta.ReceiveResponseFromUnknownGateway)
	add("receive_response", delta.ReceiveResponses)
	add("receive_packet", delta.ReceivePackets)
	add("receive_packet_too_short", delta.ReceivePacketTooShort)
	add("invalid_command_request", delta.InvalidCommandRequests)
	add("retransmitted_command_request", delta.RetransmittedCommandRequests)
	add("command_request", delta.CommandRequests)
	add("invalid_command_response", delta.InvalidCommandResponses)
	add("retransmitted_command_response", delta.RetransmittedCommandResponses)
	add("command_response", delta.CommandResponses)
	add("ping_request", delta.PingRequests)
	add("ping_response", delta.PingResponses)
	add("enumeration_start_request", delta.EnumerationStartRequests)
	add("invalid_enumeration_start_request", delta.InvalidEnumerationStartRequests)
	add("enumeration_start_response", delta.EnumerationStartResponses)
	add("enumeration_request", delta.EnumerationRequests)
	add("enumeration_response", delta.EnumerationResponses)
	add("invalid_enumeration_response", delta.InvalidEnumerationResponses)
	add("version_request", delta.VersionRequests)
	add("version_response", delta.VersionResponses)
	add("invalid_version_response", delta.InvalidVersionResponses)
	add("enumeration_end_request", delta.EnumerationEndRequests)
	add("enumeration_end_response", delta.EnumerationEndResponses)
	add("invalid_enumeration_end_response", delta.InvalidEnumerationEndResponses)
	add("assign_gateway_id_request", delta.AssignGatewayIDRequests)
	add("assign_gateway_id_response", delta.AssignGatewayIDResponses)
	add("identify_request", delta.IdentifyRequests)
	add("identify_response", delta.IdentifyResponses)
	add("invalid_identify_response", delta.InvalidIdentifyResponses)
}

// PublishPVApp adds delta's counts to PVAppOutcomes.
func PublishPVApp(delta pvapp.Counters) {
	add := func(outcome string, n uint64) {
		if n > 0 {
			PVAppOutcomes.WithLabelValues(outcome).Add(float64(n))
		}
	}
	add("invalid_received_packet_node_id", delta.InvalidReceivedPacketNodeIDs)
	add("invalid_power_report", delta.InvalidPowerReports)
	add("power_report", delta.PowerReports)
	add("invalid_topology_report", delta.InvalidTopologyReports)
	add("topology_report", delta.TopologyReports)
	add("invalid_node_table_request", delta.InvalidNodeTableRequests)
	add("invalid_node_table_response", delta.InvalidNodeTableResponses)
	add("invalid_string_command", delta.InvalidStringCommands)
	add("string_command", delta.StringCommands)
	add("invalid_string_response", delta.InvalidStringResponses)
	add("string_response", delta.StringResponses)
}

// PublishObserver adds delta's counts to ObserverOutcomes.
func PublishObserver(delta observer.Counters) {
	add := func(outcome string, n uint64) {
		if n > 0 {
			ObserverOutcomes.WithLabelValues(outcome).Add(float64(n))
		}
	}
	add("node_table_page", delta.NodeTablePages)
	add("node_table_committed", delta.NodeTablesCommitted)
	add("topology_report_observed", delta.TopologyReportsObserved)
	add("power_report_emitted", delta.PowerReportsEmitted)
	add("power_report_discarded_no_clock", delta.PowerReportsDiscardedNoClock)
	add("power_report_discarded_bad_counter", delta.PowerReportsDiscardedBadCounter)
	add("slot_clock_rebuild", delta.SlotClockRebuilds)
	add("gateway_identity_observed", delta.GatewayIdentitiesObserved)
	add("gateway_version_observed", delta.GatewayVersionsObserved)
}
