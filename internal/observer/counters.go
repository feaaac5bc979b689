package observer

// Counters is a process-lifetime tally of the outcomes the observer layer
// produces, distinct from the decode-outcome counters kept by the layers
// beneath it. All fields are resettable via Observer.ResetCounters.
type Counters struct {
	NodeTablePages      uint64
	NodeTablesCommitted uint64

	TopologyReportsObserved uint64

	PowerReportsEmitted             uint64
	PowerReportsDiscardedNoClock    uint64
	PowerReportsDiscardedBadCounter uint64

	SlotClockRebuilds uint64

	GatewayIdentitiesObserved uint64
	GatewayVersionsObserved   uint64
}

// Counters returns a snapshot of the observer's counters.
func (o *Observer) Counters() Counters { return o.counters }

// ResetCounters zeroes the observer's counters.
func (o *Observer) ResetCounters() { o.counters = Counters{} }
