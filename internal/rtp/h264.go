package rtp

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// H.264 RTP packetization, per RFC 6184. Single-NAL packets (§5.6) and
// FU-A fragmentation (§5.8); SPS/PPS are auto-captured from the first
// keyframe to feed SDP's sprop-parameter-sets and profile-level-id.

const (
	naluTypeSPS  = 7
	naluTypePPS  = 8
	naluTypeFUA  = 28
	defaultMTU   = 1400
	defaultH264PT = 96
	h264ClockRate = 90000
)

// H264Packetizer implements rtp.Packetizer for Annex-B H.264 bitstreams.
type H264Packetizer struct {
	header *HeaderState
	mtu    int

	sps []byte
	pps []byte
}

// NewH264Packetizer creates a packetizer with the default dynamic
// payload type (96) and a random SSRC.
func NewH264Packetizer() *H264Packetizer {
	return NewH264PacketizerPT(defaultH264PT)
}

// NewH264PacketizerPT creates a packetizer with the given payload type.
func NewH264PacketizerPT(pt byte) *H264Packetizer {
	return &H264Packetizer{
		header: NewHeaderState(pt),
		mtu:    defaultMTU,
	}
}

// ExtractNALUnits scans an Annex-B byte stream for 3- and 4-byte start
// codes and returns the NAL units between them. A NAL extends from the
// byte after its start code to the byte before the next start code (or
// end of input for the last one); zero-length NALs are skipped. Start
// codes of mixed length are tracked individually so 3- and 4-byte codes
// can be interleaved in the same stream.
func ExtractNALUnits(data []byte) [][]byte {
	type start struct {
		offset int // offset of first NAL byte
		scLen  int // length of the start code that produced this entry
	}

	var starts []start
	i := 0
	for i < len(data) {
		if i+4 <= len(data) && data[i] == 0 && data[i+1] == 0 && data[i+2] == 0 && data[i+3] == 1 {
			starts = append(starts, start{i + 4, 4})
			i += 4
		} else if i+3 <= len(data) && data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			starts = append(starts, start{i + 3, 3})
			i += 3
		} else {
			i++
		}
	}

	var nalus [][]byte
	for idx, s := range starts {
		end := len(data)
		if idx+1 < len(starts) {
			next := starts[idx+1]
			end = next.offset - next.scLen
		}
		if s.offset < end {
			nalus = append(nalus, data[s.offset:end])
		}
	}
	return nalus
}

// captureParameterSets remembers the first SPS and first PPS seen, per
// spec: subsequent frames never overwrite an already-captured set.
func (p *H264Packetizer) captureParameterSets(nalu []byte) {
	if len(nalu) == 0 {
		return
	}
	switch nalu[0] & 0x1f {
	case naluTypeSPS:
		if p.sps == nil {
			p.sps = append([]byte(nil), nalu...)
		}
	case naluTypePPS:
		if p.pps == nil {
			p.pps = append([]byte(nil), nalu...)
		}
	}
}

// Packetize implements rtp.Packetizer. The timestamp advances exactly
// once per call, even when the frame yields zero packets (empty input
// or no start code found), matching the reference implementation's
// unconditional pacing.
func (p *H264Packetizer) Packetize(frame []byte, timestampIncrement uint32) []Packet {
	nalus := ExtractNALUnits(frame)

	var packets []Packet
	for i, nalu := range nalus {
		p.captureParameterSets(nalu)
		isLastNAL := i == len(nalus)-1
		packets = append(packets, p.packetizeNAL(nalu, isLastNAL)...)
	}

	p.header.AdvanceTimestamp(timestampIncrement)
	return packets
}

func (p *H264Packetizer) packetizeNAL(nalu []byte, isLastNAL bool) []Packet {
	if len(nalu) == 0 {
		return nil
	}

	if len(nalu) <= p.mtu {
		buf := make([]byte, 0, headerSize+len(nalu))
		buf = p.header.Build(buf, isLastNAL, len(nalu))
		buf = append(buf, nalu...)
		return []Packet{buf}
	}

	return p.fragmentFUA(nalu, isLastNAL)
}

// fragmentFUA splits a NAL larger than the MTU into FU-A fragments per
// RFC 6184 §5.8.
func (p *H264Packetizer) fragmentFUA(nalu []byte, isLastNAL bool) []Packet {
	naluHeader := nalu[0]
	naluType := naluHeader & 0x1f
	indicator := (naluHeader & 0x60) | naluTypeFUA
	payload := nalu[1:]

	maxFragment := p.mtu - 2
	var packets []Packet

	for offset := 0; offset < len(payload); {
		end := offset + maxFragment
		last := end >= len(payload)
		if last {
			end = len(payload)
		}
		chunk := payload[offset:end]

		var fuHeader byte = naluType
		if offset == 0 {
			fuHeader |= 0x80 // Start bit
		}
		if last {
			fuHeader |= 0x40 // End bit
		}

		marker := isLastNAL && last

		buf := make([]byte, 0, headerSize+2+len(chunk))
		buf = p.header.Build(buf, marker, 2+len(chunk))
		buf = append(buf, indicator, fuHeader)
		buf = append(buf, chunk...)
		packets = append(packets, buf)

		offset = end
	}

	return packets
}

func (p *H264Packetizer) CodecName() string    { return "H264" }
func (p *H264Packetizer) ClockRateHz() uint32  { return h264ClockRate }
func (p *H264Packetizer) PayloadType() byte    { return p.header.PayloadType() }
func (p *H264Packetizer) NextSequence() uint16 { return p.header.Sequence() }
func (p *H264Packetizer) NextTimestamp() uint32 { return p.header.Timestamp() }

// SDPAttributes returns rtpmap, fmtp, and control lines in the order
// required by spec: rtpmap before fmtp, since many clients parse
// sequentially. profile-level-id and sprop-parameter-sets are included
// only once SPS/PPS have been captured from a keyframe.
func (p *H264Packetizer) SDPAttributes() []string {
	pt := p.PayloadType()
	attrs := make([]string, 0, 3)
	attrs = append(attrs, sprintfRtpmap(pt, p.CodecName(), p.ClockRateHz()))

	fmtp := sprintfFmtpBase(pt)
	if len(p.sps) >= 4 {
		fmtp += ";profile-level-id=" + hex.EncodeToString(p.sps[1:4])
	}
	if p.sps != nil && p.pps != nil {
		fmtp += ";sprop-parameter-sets=" +
			base64.StdEncoding.EncodeToString(p.sps) + "," +
			base64.StdEncoding.EncodeToString(p.pps)
	}
	attrs = append(attrs, fmtp)
	attrs = append(attrs, "control:track1")
	return attrs
}

func sprintfRtpmap(pt byte, codec string, clockRate uint32) string {
	return fmt.Sprintf("rtpmap:%d %s/%d", pt, codec, clockRate)
}

func sprintfFmtpBase(pt byte) string {
	return fmt.Sprintf("fmtp:%d packetization-mode=1", pt)
}
