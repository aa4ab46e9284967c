package rtsp

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/tidewave/rtspd/internal/mount"
	"github.com/tidewave/rtspd/internal/sdp"
)

// SupportedMethods is advertised in OPTIONS' Public header, in the
// order RFC 2326 §10 lists them.
const SupportedMethods = "OPTIONS, DESCRIBE, SETUP, PLAY, PAUSE, TEARDOWN, GET_PARAMETER"

// Handler dispatches parsed requests against the shared mount registry
// and session manager. One Handler is shared by every connection; a
// connection's own state (which session IDs it owns) lives in Conn.
type Handler struct {
	Mounts      *mount.Registry
	Sessions    *Manager
	ServerAgent string
	Origin      sdp.Origin

	// PublicHost is used in SDP's o=/c= lines when non-empty. If empty,
	// the host from the request URI is used, or failing that the TCP
	// peer's address (see resolveHost).
	PublicHost string

	// PublicPort overrides the port in DESCRIBE's Content-Base URI.
	// Zero with PublicHost set means "use the connection's own local
	// port"; with both unset, Content-Base is the request URI unchanged.
	PublicPort uint16
}

// Conn tracks per-connection state: the session IDs this connection
// has created, so TCP disconnect can clean them up, and the client's
// address for binding Transport.ClientAddr.
type Conn struct {
	RemoteAddr net.Addr
	LocalAddr  net.Addr
	SessionIDs []string
}

func (c *Conn) trackSession(id string) {
	c.SessionIDs = append(c.SessionIDs, id)
}

// Handle dispatches req to the appropriate method handler and returns
// the response to write back. It never returns an error: malformed or
// unsupported requests become error responses, matching RFC 2326's
// request/response model.
func (h *Handler) Handle(req *Request, conn *Conn) *Response {
	cseq := req.CSeq()

	switch req.Method {
	case MethodOptions:
		return h.handleOptions(cseq)
	case MethodDescribe:
		return h.handleDescribe(req, cseq, conn)
	case MethodSetup:
		return h.handleSetup(req, cseq, conn)
	case MethodPlay:
		return h.handlePlay(req, cseq)
	case MethodPause:
		return h.handlePause(req, cseq)
	case MethodTeardown:
		return h.handleTeardown(req, cseq, conn)
	case MethodGetParameter:
		return h.handleGetParameter(req, cseq)
	default:
		return NewResponse(StatusNotImplemented, h.ServerAgent, cseq)
	}
}

func (h *Handler) handleOptions(cseq int) *Response {
	resp := NewResponse(StatusOK, h.ServerAgent, cseq)
	resp.SetHeader("Public", SupportedMethods)
	return resp
}

func (h *Handler) handleDescribe(req *Request, cseq int, conn *Conn) *Response {
	m, ok := h.Mounts.ResolveFromURI(req.URI)
	if !ok {
		return NewResponse(StatusNotFound, h.ServerAgent, cseq)
	}

	host := resolveHost(req.URI, h.PublicHost, conn.RemoteAddr)

	body := sdp.Generate(m, host, h.Origin, h.ServerAgent)
	resp := NewResponse(StatusOK, h.ServerAgent, cseq)
	resp.SetHeader("Content-Base", h.contentBase(req.URI, conn))
	resp.SetBody([]byte(body), "application/sdp")
	return resp
}

// contentBase rewrites uri's authority with PublicHost/PublicPort when
// either is configured, so a client behind NAT gets back a usable
// absolute URI for subsequent SETUP requests.
func (h *Handler) contentBase(uri string, conn *Conn) string {
	if h.PublicHost == "" && h.PublicPort == 0 {
		return uri
	}
	rest, ok := strings.CutPrefix(uri, "rtsp://")
	if !ok {
		return uri
	}
	slash := strings.IndexByte(rest, '/')
	path := ""
	if slash >= 0 {
		path = rest[slash:]
	}

	host := resolveHost(uri, h.PublicHost, conn.RemoteAddr)
	port := h.PublicPort
	if port == 0 {
		port = portOf(conn.LocalAddr)
	}
	if port == 0 {
		return fmt.Sprintf("rtsp://%s%s", host, path)
	}
	return fmt.Sprintf("rtsp://%s:%d%s", host, port, path)
}

func (h *Handler) handleSetup(req *Request, cseq int, conn *Conn) *Response {
	m, ok := h.Mounts.ResolveFromURI(req.URI)
	if !ok {
		return NewResponse(StatusNotFound, h.ServerAgent, cseq)
	}

	transportHeader, ok := req.Header("Transport")
	if !ok {
		return NewResponse(StatusBadRequest, h.ServerAgent, cseq)
	}
	if isTCPInterleaved(transportHeader) {
		resp := NewResponse(StatusUnsupportedTransport, h.ServerAgent, cseq)
		resp.SetHeader("Unsupported", "RTP/AVP/TCP")
		return resp
	}
	client, ok := parseClientPorts(transportHeader)
	if !ok {
		return NewResponse(StatusBadRequest, h.ServerAgent, cseq)
	}

	serverRTP, serverRTCP, err := h.Sessions.AllocateServerPorts()
	if err != nil {
		return NewResponse(StatusInternalServerError, h.ServerAgent, cseq)
	}

	// SETUP always creates a new session, even if one already exists
	// for this URI; the reference server never updates in place.
	session := h.Sessions.CreateSession(req.URI)
	session.SetTransport(Transport{
		ClientRTPPort:  client.rtpPort,
		ClientRTCPPort: client.rtcpPort,
		ServerRTPPort:  serverRTP,
		ServerRTCPPort: serverRTCP,
		ClientAddr:     conn.RemoteAddr,
	})
	conn.trackSession(session.ID)
	m.Subscribe(session.ID)

	resp := NewResponse(StatusOK, h.ServerAgent, cseq)
	resp.SetHeader("Session", session.HeaderValue())
	resp.SetHeader("Transport", session.GetTransport().Header())
	return resp
}

func (h *Handler) handlePlay(req *Request, cseq int) *Response {
	session, resp := h.requireSession(req, cseq)
	if resp != nil {
		return resp
	}
	if session.GetTransport() == nil {
		return NewResponse(StatusBadRequest, h.ServerAgent, cseq)
	}

	m, ok := h.Mounts.ResolveFromURI(session.URI)
	if !ok {
		return NewResponse(StatusNotFound, h.ServerAgent, cseq)
	}

	session.SetState(Playing)

	resp = NewResponse(StatusOK, h.ServerAgent, cseq)
	resp.SetHeader("Session", session.HeaderValue())
	resp.SetHeader("RTP-Info", rtpInfoHeader(req.URI, m))
	return resp
}

func (h *Handler) handlePause(req *Request, cseq int) *Response {
	session, resp := h.requireSession(req, cseq)
	if resp != nil {
		return resp
	}
	session.SetState(Paused)

	resp = NewResponse(StatusOK, h.ServerAgent, cseq)
	resp.SetHeader("Session", session.HeaderValue())
	return resp
}

func (h *Handler) handleTeardown(req *Request, cseq int, conn *Conn) *Response {
	session, resp := h.requireSession(req, cseq)
	if resp != nil {
		return resp
	}

	h.Mounts.UnsubscribeAll(session.ID)
	h.Sessions.RemoveSession(session.ID)
	removeTrackedSession(conn, session.ID)

	resp = NewResponse(StatusOK, h.ServerAgent, cseq)
	return resp
}

func (h *Handler) handleGetParameter(req *Request, cseq int) *Response {
	// Unlike PLAY/PAUSE/TEARDOWN, a missing or unknown Session does not
	// fail the request: GET_PARAMETER always answers 200, and only
	// echoes Session back when it named a still-live session.
	resp := NewResponse(StatusOK, h.ServerAgent, cseq)
	if id, ok := sessionIDFromHeader(req); ok {
		if session, ok := h.Sessions.GetSession(id); ok {
			resp.SetHeader("Session", session.HeaderValue())
		}
	}
	return resp
}

func sessionIDFromHeader(req *Request) (string, bool) {
	id, ok := req.Header("Session")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(strings.SplitN(id, ";", 2)[0]), true
}

// requireSession extracts and resolves the Session header, responding
// 454 Session Not Found if it is absent or names no live session.
func (h *Handler) requireSession(req *Request, cseq int) (*Session, *Response) {
	id, ok := sessionIDFromHeader(req)
	if !ok {
		return nil, NewResponse(StatusSessionNotFound, h.ServerAgent, cseq)
	}
	session, ok := h.Sessions.GetSession(id)
	if !ok {
		return nil, NewResponse(StatusSessionNotFound, h.ServerAgent, cseq)
	}
	return session, nil
}

func removeTrackedSession(conn *Conn, id string) {
	for i, sid := range conn.SessionIDs {
		if sid == id {
			conn.SessionIDs = append(conn.SessionIDs[:i], conn.SessionIDs[i+1:]...)
			return
		}
	}
}

// rtpInfoHeader builds the RTP-Info header for a just-started PLAY,
// referring to the next packet to be sent (not the last one sent),
// since nothing has been sent yet on a fresh PLAY.
func rtpInfoHeader(uri string, m *mount.Mount) string {
	return fmt.Sprintf("url=%s;seq=%d;rtptime=%d", uri, m.NextSequence(), m.NextTimestamp())
}

// resolveHost implements the server's advertised-host precedence: an
// explicit PublicHost always wins; otherwise the host is parsed out of
// the request URI's authority; otherwise the TCP peer address is used.
func resolveHost(uri string, publicHost string, remoteAddr net.Addr) string {
	if publicHost != "" {
		return publicHost
	}
	if host, ok := hostFromURI(uri); ok {
		return host
	}
	return hostOf(remoteAddr)
}

// hostFromURI extracts the host component out of an rtsp(s):// URI's
// authority, discarding any port and userinfo-free path suffix.
func hostFromURI(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, "rtsp://")
	if !ok {
		rest, ok = strings.CutPrefix(uri, "rtsps://")
	}
	if !ok {
		return "", false
	}
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		rest = rest[:slash]
	}
	if colon := strings.IndexByte(rest, ':'); colon >= 0 {
		rest = rest[:colon]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}

func hostOf(addr net.Addr) string {
	if addr == nil {
		return "0.0.0.0"
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

func portOf(addr net.Addr) uint16 {
	if addr == nil {
		return 0
	}
	_, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return 0
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(port)
}
