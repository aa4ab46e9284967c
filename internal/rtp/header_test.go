package rtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndParseHeaderRoundTrip(t *testing.T) {
	h := NewHeaderState(96)
	buf := h.Build(nil, true, 4)
	buf = append(buf, 1, 2, 3, 4)

	parsed, rest, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.True(t, parsed.Marker)
	assert.Equal(t, byte(96), parsed.PayloadType)
	assert.Equal(t, uint16(0), parsed.Sequence)
	assert.Equal(t, []byte{1, 2, 3, 4}, rest)
}

func TestBuildIncrementsSequence(t *testing.T) {
	h := NewHeaderState(96)
	assert.Equal(t, uint16(0), h.Sequence())
	h.Build(nil, false, 0)
	assert.Equal(t, uint16(1), h.Sequence())
	h.Build(nil, false, 0)
	assert.Equal(t, uint16(2), h.Sequence())
}

func TestAdvanceTimestamp(t *testing.T) {
	h := NewHeaderState(96)
	assert.Equal(t, uint32(0), h.Timestamp())
	h.AdvanceTimestamp(3000)
	assert.Equal(t, uint32(3000), h.Timestamp())
}

func TestParseHeaderRejectsShortBuffer(t *testing.T) {
	_, _, err := ParseHeader(make([]byte, 4))
	assert.Error(t, err)
}

func TestParseHeaderRejectsBadVersion(t *testing.T) {
	buf := make([]byte, headerSize)
	buf[0] = 0x00 // version 0
	_, _, err := ParseHeader(buf)
	assert.Error(t, err)
}
