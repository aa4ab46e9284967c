// Package rtp builds RTP (RFC 3550) packets and, in package rtp/h264.go,
// packetizes H.264 Annex-B bitstreams into them (RFC 6184).
package rtp

import (
	"math/rand"

	errors "golang.org/x/xerrors"
)

// headerSize is the fixed 12-byte RTP header (RFC 3550 §5.1): no CSRC,
// no extension, no padding.
const headerSize = 12

const version = 2

// HeaderState holds the per-stream mutable fields of an RTP header:
// the random SSRC chosen at construction, and the sequence/timestamp
// counters that advance as packets are emitted. One HeaderState
// corresponds to exactly one RTP stream.
type HeaderState struct {
	payloadType byte
	ssrc        uint32

	sequence uint16

	// timestamp is kept at 64 bits internally so repeated advances
	// never wrap during arithmetic; only the low 32 bits go on the wire.
	timestamp uint64
}

// NewHeaderState creates header state for a stream with the given
// payload type and a random SSRC, as required by RFC 3550 §8.1.
func NewHeaderState(payloadType byte) *HeaderState {
	return &HeaderState{
		payloadType: payloadType,
		ssrc:        rand.Uint32(),
	}
}

// Sequence returns the sequence number of the next packet to be built,
// without consuming it.
func (h *HeaderState) Sequence() uint16 {
	return h.sequence
}

// Timestamp returns the timestamp of the next packet to be built
// (low 32 bits of the internal counter), without consuming it.
func (h *HeaderState) Timestamp() uint32 {
	return uint32(h.timestamp)
}

// PayloadType returns the RTP payload type carried by every packet
// built from this header state.
func (h *HeaderState) PayloadType() byte {
	return h.payloadType
}

// AdvanceTimestamp moves the timestamp forward between frames. It must
// never be called within a frame — only once all of a frame's packets
// have been built.
func (h *HeaderState) AdvanceTimestamp(n uint32) {
	h.timestamp += uint64(n)
}

// Build serializes a 12-byte RTP header for the given payload length
// and marker bit, appends it to dst, and advances the sequence number.
// version=2, padding=0, extension=0, CSRC count=0 per RFC 3550 §5.1.
func (h *HeaderState) Build(dst []byte, marker bool, payloadLen int) []byte {
	dst = append(dst,
		byte(version<<6),
		joinMarkerAndPT(marker, h.payloadType),
		byte(h.sequence>>8), byte(h.sequence),
		byte(h.timestamp>>24), byte(h.timestamp>>16), byte(h.timestamp>>8), byte(h.timestamp),
		byte(h.ssrc>>24), byte(h.ssrc>>16), byte(h.ssrc>>8), byte(h.ssrc),
	)
	h.sequence++
	return dst
}

func joinMarkerAndPT(marker bool, pt byte) byte {
	if marker {
		return 0x80 | (pt & 0x7f)
	}
	return pt & 0x7f
}

// Packet is a single serialized RTP packet (12-byte header + payload).
type Packet []byte

// ParsedHeader is the result of decoding a wire-format RTP header,
// used by tests and by any future receive-side code.
type ParsedHeader struct {
	Marker      bool
	PayloadType byte
	Sequence    uint16
	Timestamp   uint32
	SSRC        uint32
}

// ParseHeader decodes the fixed 12-byte RTP header from buf. It rejects
// short buffers and versions other than 2, mirroring the validation an
// RTP receiver must perform per RFC 3550 §5.1.
func ParseHeader(buf []byte) (ParsedHeader, []byte, error) {
	var h ParsedHeader
	if len(buf) < headerSize {
		return h, nil, errors.Errorf("rtp: short header: %d bytes", len(buf))
	}
	if v := buf[0] >> 6; v != version {
		return h, nil, errors.Errorf("rtp: unsupported version %d", v)
	}
	h.Marker = buf[1]&0x80 != 0
	h.PayloadType = buf[1] & 0x7f
	h.Sequence = uint16(buf[2])<<8 | uint16(buf[3])
	h.Timestamp = uint32(buf[4])<<24 | uint32(buf[5])<<16 | uint32(buf[6])<<8 | uint32(buf[7])
	h.SSRC = uint32(buf[8])<<24 | uint32(buf[9])<<16 | uint32(buf[10])<<8 | uint32(buf[11])
	return h, buf[headerSize:], nil
}
