package rtspd

import "github.com/tidewave/rtspd/internal/sdp"

// Config holds the server's static configuration: where it listens,
// which path it advertises by default, and the literal fields SDP
// descriptions are generated with.
type Config struct {
	// Bind is the "host:port" the RTSP TCP listener binds, e.g.
	// "0.0.0.0:8554".
	Bind string

	// DefaultMount is the path used when a client's DESCRIBE/SETUP URI
	// has no exact mount match (see internal/mount.Registry).
	DefaultMount string

	// PublicHost overrides the address advertised in SDP's o=/c= lines
	// and DESCRIBE's Content-Base. Left empty, the host is parsed out
	// of the request URI instead; if the URI carries no host, the TCP
	// peer (client) address is used.
	PublicHost string

	// PublicPort overrides the port advertised in DESCRIBE's
	// Content-Base URI, for deployments behind NAT/port-forwarding
	// where the advertised port differs from Bind's. Left zero while
	// PublicHost is set, the connection's own local port is used; with
	// both left unset, Content-Base is the request URI unchanged.
	PublicPort uint16

	SDPUsername      string
	SDPSessionID     string
	SDPSessionVersion string
	SDPSessionName   string

	// ServerAgent is sent in every response's Server header and SDP's
	// a=tool: line.
	ServerAgent string
}

// DefaultConfig returns a Config with the conventional single-mount
// defaults used by the CLI when no flags override them.
func DefaultConfig() Config {
	return Config{
		Bind:              "0.0.0.0:8554",
		DefaultMount:      "/stream",
		SDPUsername:       "-",
		SDPSessionID:      "0",
		SDPSessionVersion: "0",
		SDPSessionName:    "rtspd",
		ServerAgent:       "rtspd/1.0",
	}
}

func (c Config) origin() sdp.Origin {
	return sdp.Origin{
		Username:       c.SDPUsername,
		SessionID:      c.SDPSessionID,
		SessionVersion: c.SDPSessionVersion,
		SessionName:    c.SDPSessionName,
	}
}
