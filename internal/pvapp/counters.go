package pvapp

// Counters tallies pvapp's decode outcomes, additional to whatever the
// wrapped transport.Sink already counts.
type Counters struct {
	InvalidReceivedPacketNodeIDs uint64
	InvalidPowerReports          uint64
	PowerReports                 uint64
	InvalidTopologyReports       uint64
	TopologyReports              uint64
	InvalidNodeTableRequests     uint64
	InvalidNodeTableResponses    uint64
	InvalidStringCommands        uint64
	StringCommands               uint64
	InvalidStringResponses       uint64
	StringResponses              uint64
}
