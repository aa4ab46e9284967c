package rtp

// Packetizer is the capability every codec packetizer implements. The
// core engine (mount, method handler, SDP generator) talks only to
// this interface, so H.265 or MJPEG packetizers can be added without
// touching anything above them.
//
// Implementations must be safe to hand to another goroutine (a Mount
// guards all access with its own lock, but nothing stops a caller from
// holding a reference across goroutines between calls).
type Packetizer interface {
	// Packetize turns one encoded frame into an ordered list of RTP
	// packets and advances the timestamp by timestampIncrement.
	Packetize(frame []byte, timestampIncrement uint32) []Packet

	CodecName() string
	ClockRateHz() uint32
	PayloadType() byte

	// SDPAttributes returns, in the order they must appear in SDP, the
	// "a=" attribute lines (without the "a=" prefix) describing this
	// codec's media format.
	SDPAttributes() []string

	// NextSequence and NextTimestamp peek at the values the next
	// packet will carry, without consuming them. Used for RTP-Info.
	NextSequence() uint16
	NextTimestamp() uint32
}
