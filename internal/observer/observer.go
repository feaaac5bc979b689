package observer

import (
	"fmt"
	"time"

	"github.com/m-lab/go/logx"

	"github.com/gridwatch/meshtap/internal/pvapp"
	"github.com/gridwatch/meshtap/internal/transport"
	"github.com/gridwatch/meshtap/internal/wire"
)

var noSlotClockLog = logx.NewLogEvery(nil, time.Minute)

// PersistentState is the durable, infrequently-changing facts an Observer
// has accumulated about the gateways it has seen: their node tables,
// hardware addresses, and firmware versions.
type PersistentState struct {
	GatewayNodeTables map[wire.GatewayID]NodeTable
	GatewayIdentities map[wire.GatewayID]wire.LongAddress
	GatewayVersions   map[wire.GatewayID]string
}

func newPersistentState() PersistentState {
	return PersistentState{
		GatewayNodeTables: make(map[wire.GatewayID]NodeTable),
		GatewayIdentities: make(map[wire.GatewayID]wire.LongAddress),
		GatewayVersions:   make(map[wire.GatewayID]string),
	}
}

type enumerationState struct {
	enumerationGatewayID wire.GatewayID
	gatewayIdentities    map[wire.GatewayID]wire.LongAddress
	gatewayVersions      map[wire.GatewayID]string
}

func (e *enumerationState) identityObserved(gateway wire.GatewayID, address wire.LongAddress) {
	if gateway == e.enumerationGatewayID {
		// The transient enumeration address; a persistent one follows
		// shortly, so discard this.
		return
	}
	e.gatewayIdentities[gateway] = address
}

// Observer accumulates the persistent and transient state spec'd for the
// observer layer, and emits PowerReport (and, opt-in, supplementary)
// events to a Sink as it goes. It implements pvapp.Sink, so it can be
// handed directly to a pvapp.Receiver.
type Observer struct {
	sink     Sink
	counters Counters

	persistent  PersistentState
	enumerating *enumerationState

	capturedSlotCounters map[wire.GatewayID]time.Time
	slotClocks           map[wire.GatewayID]*slotClock
	nodeTableBuilders    map[wire.GatewayID]*nodeTableBuilder
}

// NewObserver creates an Observer starting from an empty PersistentState
// and emitting events to sink.
func NewObserver(sink Sink) *Observer {
	return FromPersistentState(sink, newPersistentState())
}

// FromPersistentState creates an Observer seeded with a previously saved
// PersistentState, e.g. to resume after a restart without forgetting
// gateway identities and node tables.
func FromPersistentState(sink Sink, state PersistentState) *Observer {
	return &Observer{
		sink:                 sink,
		persistent:           state,
		capturedSlotCounters: make(map[wire.GatewayID]time.Time),
		slotClocks:           make(map[wire.GatewayID]*slotClock),
		nodeTableBuilders:    make(map[wire.GatewayID]*nodeTableBuilder),
	}
}

// PersistentState returns the observer's current durable state.
func (o *Observer) PersistentState() PersistentState { return o.persistent }

func (o *Observer) gateway(id wire.GatewayID) Gateway {
	g := Gateway{ID: id}
	if addr, ok := o.persistent.GatewayIdentities[id]; ok {
		g.Address = &addr
	}
	return g
}

func (o *Observer) node(gatewayID wire.GatewayID, id wire.NodeID) Node {
	var address *wire.LongAddress
	if table, ok := o.persistent.GatewayNodeTables[gatewayID]; ok {
		if addr, ok := table[id]; ok {
			address = &addr
		}
	}
	return nodeOf(id, address)
}

func (o *Observer) EnumerationStarted(enumerationGatewayID wire.GatewayID) {
	o.enumerating = &enumerationState{
		enumerationGatewayID: enumerationGatewayID,
		gatewayIdentities:    make(map[wire.GatewayID]wire.LongAddress),
		gatewayVersions:      make(map[wire.GatewayID]string),
	}
}

func (o *Observer) GatewayIdentityObserved(gatewayID wire.GatewayID, address wire.LongAddress) {
	o.counters.GatewayIdentitiesObserved++
	if o.enumerating != nil {
		o.enumerating.identityObserved(gatewayID, address)
		return
	}
	o.persistent.GatewayIdentities[gatewayID] = address
	o.sink.GatewayIdentityObserved(gatewayID, address)
}

func (o *Observer) GatewayVersionObserved(gatewayID wire.GatewayID, version string) {
	o.counters.GatewayVersionsObserved++
	if o.enumerating != nil {
		o.enumerating.gatewayVersions[gatewayID] = version
		return
	}
	o.persistent.GatewayVersions[gatewayID] = version
	o.sink.GatewayVersionObserved(gatewayID, version)
}

func (o *Observer) EnumerationEnded(wire.GatewayID) {
	if o.enumerating == nil {
		return
	}
	o.persistent.GatewayIdentities = o.enumerating.gatewayIdentities
	o.persistent.GatewayVersions = o.enumerating.gatewayVersions
	o.enumerating = nil
}

func (o *Observer) SlotCounterCaptured(gatewayID wire.GatewayID) {
	o.capturedSlotCounters[gatewayID] = time.Now()
}

func (o *Observer) SlotCounterObserved(gatewayID wire.GatewayID, sc wire.SlotCounter) {
	capturedAt, ok := o.capturedSlotCounters[gatewayID]
	if !ok {
		return
	}
	delete(o.capturedSlotCounters, gatewayID)

	clock, ok := o.slotClocks[gatewayID]
	if !ok {
		clock, err := newSlotClock(sc, capturedAt)
		if err != nil {
			return
		}
		o.slotClocks[gatewayID] = clock
		return
	}
	if rebuilt, err := clock.set(sc, capturedAt); err == nil && rebuilt {
		o.counters.SlotClockRebuilds++
	}
}

func (o *Observer) PacketReceived(wire.GatewayID, wire.ReceivedPacketHeader, []byte) {}

func (o *Observer) CommandExecuted(wire.GatewayID, transport.Command, transport.Command) {}

func (o *Observer) StringRequest(wire.GatewayID, wire.NodeID, string) {}

func (o *Observer) StringResponse(wire.GatewayID, wire.NodeID, string) {}

func (o *Observer) NodeTablePage(gatewayID wire.GatewayID, startAddress wire.NodeAddress, entries []pvapp.NodeTableResponseEntry) {
	o.counters.NodeTablePages++
	builder, ok := o.nodeTableBuilders[gatewayID]
	if !ok {
		builder = &nodeTableBuilder{}
		o.nodeTableBuilders[gatewayID] = builder
	}

	table, committed := builder.push(startAddress, entries)
	if !committed {
		return
	}
	o.counters.NodeTablesCommitted++
	o.persistent.GatewayNodeTables[gatewayID] = table
	o.sink.NodeTableUpdated(gatewayID, table)
}

func (o *Observer) TopologyReport(gatewayID wire.GatewayID, nodeID wire.NodeID, report pvapp.TopologyReport) {
	o.counters.TopologyReportsObserved++
	o.sink.TopologyObserved(gatewayID, nodeID, report)
}

func (o *Observer) PowerReport(gatewayID wire.GatewayID, nodeID wire.NodeID, report pvapp.PowerReport) {
	clock, ok := o.slotClocks[gatewayID]
	if !ok {
		o.counters.PowerReportsDiscardedNoClock++
		noSlotClockLog.Println(fmt.Sprintf("discarding power report from gateway %s: no slot clock yet", gatewayID))
		return
	}

	timestamp, err := clock.get(report.SlotCounter)
	if err != nil {
		o.counters.PowerReportsDiscardedBadCounter++
		noSlotClockLog.Println(fmt.Sprintf("discarding power report from gateway %s: invalid slot counter %s", gatewayID, report.SlotCounter))
		return
	}

	o.counters.PowerReportsEmitted++
	event := newPowerReportEvent(o.gateway(gatewayID), o.node(gatewayID, nodeID), timestamp, report)
	o.sink.PowerReport(event)
}
