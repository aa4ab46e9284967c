package rtsp

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Transport is the negotiated RTP/RTCP port pair for one session,
// immutable once SETUP completes (RFC 2326 §12.39).
type Transport struct {
	ClientRTPPort  uint16
	ClientRTCPPort uint16
	ServerRTPPort  uint16
	ServerRTCPPort uint16

	// ClientAddr is where RTP packets for this session are sent:
	// the TCP peer's IP with ClientRTPPort.
	ClientAddr net.Addr
}

// Header renders the server's Transport response header value, e.g.
// "RTP/AVP;unicast;client_port=5000-5001;server_port=5002-5003".
func (t Transport) Header() string {
	return fmt.Sprintf(
		"RTP/AVP;unicast;client_port=%d-%d;server_port=%d-%d",
		t.ClientRTPPort, t.ClientRTCPPort, t.ServerRTPPort, t.ServerRTCPPort,
	)
}

// clientPorts holds just the client-requested RTP/RTCP port pair,
// parsed from an inbound SETUP's Transport header.
type clientPorts struct {
	rtpPort  uint16
	rtcpPort uint16
}

// parseClientPorts extracts "client_port=RTP-RTCP" from a semicolon
// separated Transport header value (RFC 2326 §12.39). It returns false
// if no such token is present or either port fails to parse.
func parseClientPorts(header string) (clientPorts, bool) {
	for _, token := range strings.Split(header, ";") {
		token = strings.TrimSpace(token)
		rest, ok := strings.CutPrefix(token, "client_port=")
		if !ok {
			continue
		}

		parts := strings.SplitN(rest, "-", 2)
		if len(parts) != 2 {
			return clientPorts{}, false
		}
		rtp, err1 := strconv.ParseUint(parts[0], 10, 16)
		rtcp, err2 := strconv.ParseUint(parts[1], 10, 16)
		if err1 != nil || err2 != nil {
			return clientPorts{}, false
		}
		return clientPorts{rtpPort: uint16(rtp), rtcpPort: uint16(rtcp)}, true
	}
	return clientPorts{}, false
}

// isTCPInterleaved reports whether a Transport header requests the
// TCP-interleaved transport mode, which this engine rejects with 461.
func isTCPInterleaved(header string) bool {
	return strings.Contains(header, "RTP/AVP/TCP") || strings.Contains(header, "interleaved=")
}

