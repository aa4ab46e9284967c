package rtsp

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Server owns the TCP listener and spawns one goroutine per client
// connection, each running its own parse/dispatch/reply loop until
// the client disconnects, a socket error occurs, or the server stops.
// TEARDOWN ends a session, not the connection.
type Server struct {
	Handler *Handler

	listener net.Listener
	running  int32
}

// NewServer creates a TCP-based RTSP server around handler. It does
// not listen until Start is called.
func NewServer(handler *Handler) *Server {
	return &Server{Handler: handler}
}

// Start binds addr and begins accepting connections in the
// background. It returns once the listener is bound.
func (s *Server) Start(addr string) error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return errors.New("rtsp: server already running")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		return errors.Wrapf(err, "rtsp: listen %s", addr)
	}
	s.listener = ln

	go s.acceptLoop()
	log.Info("listening on %s", addr)
	return nil
}

// Stop closes the listener, which unblocks acceptLoop and lets it exit.
// In-flight connections close when their next read returns.
func (s *Server) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if atomic.LoadInt32(&s.running) == 0 {
				return
			}
			log.Warn("accept error: %v", err)
			continue
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(netConn net.Conn) {
	defer netConn.Close()

	conn := &Conn{RemoteAddr: netConn.RemoteAddr(), LocalAddr: netConn.LocalAddr()}
	reader := bufio.NewReader(netConn)

	defer s.cleanup(conn)

	for {
		lines, err := readRequestLines(reader)
		if err != nil {
			if err != io.EOF {
				log.Debug("connection %s read error: %v", conn.RemoteAddr, err)
			}
			return
		}
		if atomic.LoadInt32(&s.running) == 0 {
			return
		}
		if len(lines) == 0 {
			continue
		}

		req, err := ParseRequest(lines)
		if err != nil {
			netConn.Write(NewResponse(StatusBadRequest, s.Handler.ServerAgent, 0).Bytes())
			continue
		}

		resp := s.Handler.Handle(req, conn)
		if _, err := netConn.Write(resp.Bytes()); err != nil {
			log.Debug("connection %s write error: %v", conn.RemoteAddr, err)
			return
		}
	}
}

// readRequestLines reads CRLF (or bare LF) terminated lines up to and
// excluding the blank line that terminates an RTSP request's headers.
func readRequestLines(reader *bufio.Reader) ([]string, error) {
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if len(lines) > 0 {
				return lines, nil
			}
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if len(lines) == 0 {
				continue
			}
			return lines, nil
		}
		lines = append(lines, line)
	}
}

func (s *Server) cleanup(conn *Conn) {
	for _, id := range conn.SessionIDs {
		s.Handler.Mounts.UnsubscribeAll(id)
	}
	s.Handler.Sessions.RemoveSessions(conn.SessionIDs)
}
