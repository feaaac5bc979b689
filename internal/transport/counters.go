package transport

// Counters is a process-lifetime tally of every decode outcome the receiver
// can produce, one field per distinct success or rejection reason. All
// fields are resettable via Receiver.ResetCounters.
type Counters struct {
	UnhandledFrameType uint64

	InvalidReceiveRequests uint64
	ReceiveRequests        uint64

	InvalidReceiveResponses           uint64
	ReceiveResponseFromUnknownGateway uint64
	ReceiveResponses                  uint64
	ReceivePackets                    uint64
	ReceivePacketTooShort             uint64

	InvalidCommandRequests       uint64
	RetransmittedCommandRequests uint64
	CommandRequests              uint64

	InvalidCommandResponses       uint64
	RetransmittedCommandResponses uint64
	CommandResponses              uint64

	PingRequests  uint64
	PingResponses uint64

	EnumerationStartRequests        uint64
	InvalidEnumerationStartRequests uint64
	EnumerationStartResponses       uint64
	EnumerationRequests             uint64
	EnumerationResponses            uint64
	InvalidEnumerationResponses     uint64

	VersionRequests         uint64
	VersionResponses        uint64
	InvalidVersionResponses uint64

	EnumerationEndRequests        uint64
	EnumerationEndResponses       uint64
	InvalidEnumerationEndResponses uint64

	AssignGatewayIDRequests  uint64
	AssignGatewayIDResponses uint64

	IdentifyRequests         uint64
	IdentifyResponses        uint64
	InvalidIdentifyResponses uint64
}
