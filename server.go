// Package rtspd implements a single-process RTSP (RFC 2326) server
// that streams live H.264 video over RTP (RFC 3550, RFC 6184) to
// unicast UDP clients. It owns no capture pipeline of its own: callers
// push raw Annex-B frames in via SendFrame, and the server handles
// signaling, packetization, and fan-out to every subscribed session.
package rtspd

import (
	"net"
	"strconv"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/tidewave/rtspd/internal/logging"
	"github.com/tidewave/rtspd/internal/mount"
	"github.com/tidewave/rtspd/internal/rtp"
	"github.com/tidewave/rtspd/internal/rtsp"
	"github.com/tidewave/rtspd/internal/udp"
)

var log = logging.DefaultLogger.WithTag("rtspd")

// Viewer describes one currently-playing session, for diagnostics and
// the Server.GetViewers accessor.
type Viewer struct {
	SessionID      string
	URI            string
	ClientAddr     net.Addr
	ClientRTPPort  uint16
}

// Server is the top-level orchestrator: it wires the TCP signaling
// server, the mount registry, the session manager, and the outbound
// UDP sender into one unit with a single Start/Stop lifecycle.
type Server struct {
	config Config

	mounts   *mount.Registry
	sessions *rtsp.Manager
	sender   *udp.Sender
	tcp      *rtsp.Server

	running int32
}

// New constructs a Server from config. It does not bind any sockets
// until Start is called, except that it validates config.Bind eagerly.
func New(config Config) (*Server, error) {
	if err := validateBindAddr(config.Bind); err != nil {
		return nil, err
	}

	mounts := mount.NewRegistry()
	if config.DefaultMount != "" {
		mounts.SetDefault(config.DefaultMount)
	}
	sessions := rtsp.NewManager()

	handler := &rtsp.Handler{
		Mounts:      mounts,
		Sessions:    sessions,
		ServerAgent: config.ServerAgent,
		Origin:      config.origin(),
		PublicHost:  config.PublicHost,
		PublicPort:  config.PublicPort,
	}

	return &Server{
		config:   config,
		mounts:   mounts,
		sessions: sessions,
		tcp:      rtsp.NewServer(handler),
	}, nil
}

// validateBindAddr requires addr to parse as "host:port" with an
// explicit, non-zero port, per spec.md §4.12/§6.
func validateBindAddr(addr string) error {
	if addr == "" {
		return ErrInvalidBindAddress
	}
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.Wrap(ErrInvalidBindAddress, err.Error())
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return errors.Wrap(ErrInvalidBindAddress, err.Error())
	}
	if port == 0 {
		return errors.Wrap(ErrInvalidBindAddress, "port must be non-zero")
	}
	return nil
}

// AddMount registers a stream endpoint at path, owned by packetizer.
// Call this before Start; mounts added afterward are immediately
// available to new SETUPs but any already-negotiated session predates
// the mount and is unaffected.
func (s *Server) AddMount(path string, packetizer rtp.Packetizer) *mount.Mount {
	return s.mounts.Add(path, packetizer)
}

// Start binds the UDP sender and the RTSP TCP listener.
func (s *Server) Start() error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrAlreadyRunning
	}

	sender, err := udp.NewSender()
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		return errors.Wrap(err, "rtspd: start")
	}
	s.sender = sender

	if err := s.tcp.Start(s.config.Bind); err != nil {
		sender.Close()
		atomic.StoreInt32(&s.running, 0)
		return errors.Wrap(err, "rtspd: start")
	}
	return nil
}

// Stop closes the TCP listener and the UDP sender. In-flight
// connections close on their next read.
func (s *Server) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrNotStarted
	}
	tcpErr := s.tcp.Stop()
	udpErr := s.sender.Close()
	if tcpErr != nil {
		return errors.Wrap(tcpErr, "rtspd: stop")
	}
	return udpErr
}

// SendFrame packetizes an Annex-B frame on the default mount and fans
// it out to every currently-playing session subscribed there. Returns
// the number of sessions reached, not the number of packets sent.
func (s *Server) SendFrame(frame []byte, timestampIncrement uint32) (int, error) {
	return s.SendFrameTo(s.config.DefaultMount, frame, timestampIncrement)
}

// SendFrameTo packetizes frame on the mount at path and fans the
// resulting RTP packets out to that mount's playing subscribers.
// Returns the number of sessions reached, not the number of packets
// sent; per-packet send failures are logged but do not abort the fan-out.
func (s *Server) SendFrameTo(path string, frame []byte, timestampIncrement uint32) (int, error) {
	if atomic.LoadInt32(&s.running) == 0 {
		return 0, ErrNotStarted
	}
	m, ok := s.mounts.Get(path)
	if !ok {
		return 0, ErrMountNotFound
	}

	packets := m.Packetize(frame, timestampIncrement)
	subscribers := m.SubscribedIDs()
	reached := 0
	for _, sessionID := range subscribers {
		session, ok := s.sessions.GetSession(sessionID)
		if !ok || !session.IsPlaying() || session.GetTransport() == nil {
			continue
		}
		for _, pkt := range packets {
			if err := s.sendToSession(session, pkt); err != nil {
				log.Warn("send to session %s failed: %v", sessionID, err)
			}
		}
		reached++
	}
	return reached, nil
}

// SendRTPPacket sends one already-built RTP packet to a single named
// session, bypassing packetization. It is an error to call this for a
// session that is not Playing or has no negotiated transport.
func (s *Server) SendRTPPacket(sessionID string, packet rtp.Packet) error {
	if atomic.LoadInt32(&s.running) == 0 {
		return ErrNotStarted
	}
	session, ok := s.sessions.GetSession(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	if !session.IsPlaying() {
		return ErrSessionNotPlaying
	}
	if session.GetTransport() == nil {
		return ErrTransportNotConfigured
	}
	return s.sendToSession(session, packet)
}

// BroadcastRTPPacket sends one already-built RTP packet to every
// playing, transport-configured session subscribed to the default
// mount. Per-session send failures are logged and do not abort the
// fan-out; a session whose send failed is not counted. Callers needing
// per-session errors should use SendRTPPacket instead. Returns how many
// sessions were reached.
func (s *Server) BroadcastRTPPacket(packet rtp.Packet) (int, error) {
	if atomic.LoadInt32(&s.running) == 0 {
		return 0, ErrNotStarted
	}
	m, ok := s.mounts.Get(s.config.DefaultMount)
	if !ok {
		return 0, ErrMountNotFound
	}

	reached := 0
	for _, sessionID := range m.SubscribedIDs() {
		session, ok := s.sessions.GetSession(sessionID)
		if !ok || !session.IsPlaying() || session.GetTransport() == nil {
			continue
		}
		if err := s.sendToSession(session, packet); err != nil {
			log.Warn("broadcast to session %s failed: %v", sessionID, err)
			continue
		}
		reached++
	}
	return reached, nil
}

func (s *Server) sendToSession(session *rtsp.Session, packet rtp.Packet) error {
	transport := session.GetTransport()
	if transport == nil {
		return ErrTransportNotConfigured
	}
	ip := clientIP(transport.ClientAddr)
	_, err := s.sender.SendTo(packet, ip, transport.ClientRTPPort)
	return err
}

func clientIP(addr net.Addr) net.IP {
	if addr == nil {
		return nil
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return nil
	}
	return net.ParseIP(host)
}

// GetViewers returns a snapshot of every currently-playing session that
// has a negotiated transport (sessions still mid-SETUP are excluded).
func (s *Server) GetViewers() []Viewer {
	sessions := s.sessions.GetPlayingSessions()
	viewers := make([]Viewer, 0, len(sessions))
	for _, session := range sessions {
		t := session.GetTransport()
		if t == nil {
			continue
		}
		viewers = append(viewers, Viewer{
			SessionID:     session.ID,
			URI:           session.URI,
			ClientAddr:    t.ClientAddr,
			ClientRTPPort: t.ClientRTPPort,
		})
	}
	return viewers
}

// SessionManager exposes the session registry for diagnostics.
func (s *Server) SessionManager() *rtsp.Manager { return s.sessions }

// Mounts exposes the mount registry for diagnostics.
func (s *Server) Mounts() *mount.Registry { return s.mounts }

// Config returns the configuration the server was constructed with.
func (s *Server) Config() Config { return s.config }
