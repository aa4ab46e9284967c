package rtsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClientPorts(t *testing.T) {
	ports, ok := parseClientPorts("RTP/AVP;unicast;client_port=5000-5001")
	assert.True(t, ok)
	assert.Equal(t, uint16(5000), ports.rtpPort)
	assert.Equal(t, uint16(5001), ports.rtcpPort)
}

func TestParseClientPortsMissing(t *testing.T) {
	_, ok := parseClientPorts("RTP/AVP;unicast")
	assert.False(t, ok)
}

func TestParseClientPortsMalformed(t *testing.T) {
	_, ok := parseClientPorts("RTP/AVP;client_port=bad")
	assert.False(t, ok)
}

func TestIsTCPInterleaved(t *testing.T) {
	assert.True(t, isTCPInterleaved("RTP/AVP/TCP;unicast;interleaved=0-1"))
	assert.True(t, isTCPInterleaved("RTP/AVP;unicast;interleaved=0-1"))
	assert.False(t, isTCPInterleaved("RTP/AVP;unicast;client_port=5000-5001"))
}

func TestTransportHeader(t *testing.T) {
	tr := Transport{ClientRTPPort: 5000, ClientRTCPPort: 5001, ServerRTPPort: 6000, ServerRTCPPort: 6001}
	assert.Equal(t, "RTP/AVP;unicast;client_port=5000-5001;server_port=6000-6001", tr.Header())
}
