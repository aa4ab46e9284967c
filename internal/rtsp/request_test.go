package rtsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestBasic(t *testing.T) {
	lines := []string{
		"DESCRIBE rtsp://host:8554/stream RTSP/1.0",
		"CSeq: 2",
		"Accept: application/sdp",
	}
	req, err := ParseRequest(lines)
	require.NoError(t, err)
	assert.Equal(t, MethodDescribe, req.Method)
	assert.Equal(t, "rtsp://host:8554/stream", req.URI)
	assert.Equal(t, "RTSP/1.0", req.Version)
	assert.Equal(t, 2, req.CSeq())

	v, ok := req.Header("accept")
	assert.True(t, ok)
	assert.Equal(t, "application/sdp", v)
}

func TestParseRequestEmpty(t *testing.T) {
	_, err := ParseRequest(nil)
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, EmptyRequest, perr.Kind)
}

func TestParseRequestMalformedRequestLine(t *testing.T) {
	_, err := ParseRequest([]string{"GARBAGE"})
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, InvalidRequestLine, perr.Kind)
}

func TestParseRequestMalformedHeader(t *testing.T) {
	lines := []string{
		"OPTIONS * RTSP/1.0",
		"not-a-header-line",
	}
	_, err := ParseRequest(lines)
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, InvalidHeader, perr.Kind)
}

func TestCSeqDefaultsToZero(t *testing.T) {
	req, err := ParseRequest([]string{"OPTIONS * RTSP/1.0"})
	require.NoError(t, err)
	assert.Equal(t, 0, req.CSeq())
}
