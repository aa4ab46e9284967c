package rtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNALUnitsFourByteStartCodes(t *testing.T) {
	data := []byte{
		0, 0, 0, 1, 0x67, 0xaa, 0xbb,
		0, 0, 0, 1, 0x68, 0xcc,
		0, 0, 0, 1, 0x65, 0x01, 0x02, 0x03,
	}
	nalus := ExtractNALUnits(data)
	require.Len(t, nalus, 3)
	assert.Equal(t, []byte{0x67, 0xaa, 0xbb}, nalus[0])
	assert.Equal(t, []byte{0x68, 0xcc}, nalus[1])
	assert.Equal(t, []byte{0x65, 0x01, 0x02, 0x03}, nalus[2])
}

func TestExtractNALUnitsMixedStartCodes(t *testing.T) {
	data := []byte{
		0, 0, 1, 0x67, 0xaa, // 3-byte start code
		0, 0, 0, 1, 0x68, 0xbb, // 4-byte start code
	}
	nalus := ExtractNALUnits(data)
	require.Len(t, nalus, 2)
	assert.Equal(t, []byte{0x67, 0xaa}, nalus[0])
	assert.Equal(t, []byte{0x68, 0xbb}, nalus[1])
}

func TestExtractNALUnitsEmpty(t *testing.T) {
	assert.Nil(t, ExtractNALUnits(nil))
	assert.Nil(t, ExtractNALUnits([]byte{1, 2, 3}))
}

func TestPacketizeSingleNALFitsInOnePacket(t *testing.T) {
	p := NewH264Packetizer()
	frame := append([]byte{0, 0, 0, 1}, append([]byte{0x65}, make([]byte, 100)...)...)

	packets := p.Packetize(frame, 3000)
	require.Len(t, packets, 1)
	assert.Equal(t, byte(0x65), packets[0][headerSize])
	assert.True(t, packets[0][1]&0x80 != 0, "marker bit set on sole packet")
}

func TestPacketizeFUAFragmentsOversizedNAL(t *testing.T) {
	p := NewH264Packetizer()
	naluHeader := byte(0x65) // type 5, nal_ref_idc in top bits
	payload := make([]byte, defaultMTU*2)
	for i := range payload {
		payload[i] = byte(i)
	}
	frame := append([]byte{0, 0, 0, 1, naluHeader}, payload...)

	packets := p.Packetize(frame, 3000)
	require.True(t, len(packets) > 1)

	first := packets[0]
	assert.Equal(t, byte(naluTypeFUA)|(naluHeader&0x60), first[headerSize])
	assert.True(t, first[headerSize+1]&0x80 != 0, "start bit on first fragment")
	assert.False(t, first[headerSize+1]&0x40 != 0, "no end bit on first fragment")
	assert.False(t, first[1]&0x80 != 0, "no marker on first fragment")

	last := packets[len(packets)-1]
	assert.True(t, last[headerSize+1]&0x40 != 0, "end bit on last fragment")
	assert.True(t, last[1]&0x80 != 0, "marker on last fragment")
}

func TestPacketizeAdvancesTimestampEvenWithNoNALUnits(t *testing.T) {
	p := NewH264Packetizer()
	before := p.NextTimestamp()
	packets := p.Packetize([]byte{1, 2, 3}, 3000)
	assert.Empty(t, packets)
	assert.Equal(t, before+3000, p.NextTimestamp())
}

func TestSDPAttributesOrderAndCapture(t *testing.T) {
	p := NewH264Packetizer()
	attrs := p.SDPAttributes()
	require.Len(t, attrs, 3)
	assert.Contains(t, attrs[0], "rtpmap:")
	assert.Contains(t, attrs[1], "fmtp:")
	assert.Equal(t, "control:track1", attrs[2])
	assert.NotContains(t, attrs[1], "sprop-parameter-sets")

	sps := []byte{0x67, 0x42, 0x00, 0x1f, 0xaa}
	pps := []byte{0x68, 0xce, 0x3c, 0x80}
	frame := append([]byte{0, 0, 0, 1}, sps...)
	frame = append(frame, 0, 0, 0, 1)
	frame = append(frame, pps...)
	p.Packetize(frame, 3000)

	attrs = p.SDPAttributes()
	assert.Contains(t, attrs[1], "profile-level-id=42001f")
	assert.Contains(t, attrs[1], "sprop-parameter-sets=")
}

func TestCaptureParameterSetsFirstWins(t *testing.T) {
	p := NewH264Packetizer()
	first := append([]byte{0, 0, 0, 1}, []byte{0x67, 1, 2, 3}...)
	second := append([]byte{0, 0, 0, 1}, []byte{0x67, 9, 9, 9}...)

	p.Packetize(first, 0)
	p.Packetize(second, 0)

	assert.Equal(t, []byte{0x67, 1, 2, 3}, p.sps)
}
