// Package sdp assembles SDP (RFC 4566) session descriptions for a
// single video mount, in the exact attribute order RTSP clients expect
// to parse sequentially.
package sdp

import (
	"fmt"
	"strings"
)

// MediaSource is the subset of a mount's codec state the generator needs.
// internal/mount.Mount satisfies this.
type MediaSource interface {
	PayloadType() byte
	SDPAttributes() []string
}

// Origin holds the literal fields of the SDP "o=" line plus the
// session name, all configurable on the server (spec §6).
type Origin struct {
	Username       string
	SessionID      string
	SessionVersion string
	SessionName    string
}

type writer struct {
	strings.Builder
}

func (w *writer) line(format string, a ...interface{}) {
	fmt.Fprintf(&w.Builder, format, a...)
	w.Builder.WriteString("\r\n")
}

// Generate assembles a full SDP session description for the given
// media source, advertised at host, using origin for the o=/s= fields.
// Output is CRLF-joined and CRLF-terminated, in this fixed order:
//
//	v=0
//	o=<user> <sid> <ver> IN IP4 <host>
//	s=<name>
//	c=IN IP4 <host>
//	t=0 0
//	a=tool:<server-agent>
//	a=sendonly
//	m=video 0 RTP/AVP <pt>
//	<codec sdp attributes, in their declared order>
func Generate(src MediaSource, host string, origin Origin, serverAgent string) string {
	var w writer

	w.line("v=0")
	w.line("o=%s %s %s IN IP4 %s", origin.Username, origin.SessionID, origin.SessionVersion, host)
	w.line("s=%s", origin.SessionName)
	w.line("c=IN IP4 %s", host)
	w.line("t=0 0")
	w.line("a=tool:%s", serverAgent)
	w.line("a=sendonly")
	w.line("m=video 0 RTP/AVP %d", src.PayloadType())
	for _, attr := range src.SDPAttributes() {
		w.line("a=%s", attr)
	}

	return w.String()
}
