package wire

// RSSI is a raw received-signal-strength byte as carried in a power report.
// The mesh reports it as an unsigned magnitude rather than a signed dBm
// value; callers that need dBm should consult the node's radio datasheet,
// which taptap's original implementation does not attempt.
type RSSI uint8
