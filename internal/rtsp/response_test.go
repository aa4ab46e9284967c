package rtsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseBytesStatusLineAndHeaderOrder(t *testing.T) {
	resp := NewResponse(StatusOK, "rtspd/1.0", 5)
	resp.SetHeader("Public", SupportedMethods)

	out := string(resp.Bytes())
	lines := strings.Split(out, "\r\n")

	assert.Equal(t, "RTSP/1.0 200 OK", lines[0])
	assert.Equal(t, "Server: rtspd/1.0", lines[1])
	assert.Equal(t, "CSeq: 5", lines[2])
	assert.Equal(t, "Public: "+SupportedMethods, lines[3])
}

func TestResponseSetBodySetsContentLength(t *testing.T) {
	resp := NewResponse(StatusOK, "rtspd/1.0", 1)
	resp.SetBody([]byte("v=0\r\n"), "application/sdp")

	out := string(resp.Bytes())
	assert.Contains(t, out, "Content-Type: application/sdp")
	assert.Contains(t, out, "Content-Length: 5")
	assert.True(t, strings.HasSuffix(out, "v=0\r\n"))
}

func TestSetHeaderReplacesExisting(t *testing.T) {
	resp := NewResponse(StatusOK, "rtspd/1.0", 0)
	resp.SetHeader("Session", "abc")
	resp.SetHeader("Session", "def")

	out := string(resp.Bytes())
	assert.Contains(t, out, "Session: def")
	assert.NotContains(t, out, "abc")
}

func TestUnknownStatusReason(t *testing.T) {
	assert.Equal(t, "Unknown", Status(999).Reason())
}
