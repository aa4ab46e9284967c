package rtsp

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tidewave/rtspd/internal/logging"
)

var log = logging.DefaultLogger.WithTag("rtsp")

// DefaultTimeoutSeconds is advertised in the Session response header.
// The core does not enforce it; client-initiated keepalive
// (GET_PARAMETER) is required, per spec §9 Open Questions.
const DefaultTimeoutSeconds = 60

// State is a session's position in the RTSP playback state machine
// (RFC 2326 §A.1): Ready -> Playing <-> Paused, torn down from any state.
type State int

const (
	Ready State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Session is a server-side RTSP session, created by SETUP and removed
// by TEARDOWN or TCP disconnect.
type Session struct {
	ID  string
	URI string

	mu        sync.RWMutex
	transport *Transport
	state     State

	TimeoutSeconds int
}

func newSession(id, uri string) *Session {
	return &Session{ID: id, URI: uri, state: Ready, TimeoutSeconds: DefaultTimeoutSeconds}
}

// SetTransport records the negotiated Transport for this session
// (called once, during SETUP).
func (s *Session) SetTransport(t Transport) {
	s.mu.Lock()
	s.transport = &t
	s.mu.Unlock()
}

// GetTransport returns the negotiated transport, or nil if SETUP hasn't
// completed.
func (s *Session) GetTransport() *Transport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transport
}

// SetState transitions the session's playback state.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// State returns the session's current playback state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsPlaying reports whether the session is currently in the Playing state.
func (s *Session) IsPlaying() bool {
	return s.State() == Playing
}

// HeaderValue renders the RTSP Session response header value, e.g.
// "000000000000002a;timeout=60".
func (s *Session) HeaderValue() string {
	return fmt.Sprintf("%s;timeout=%d", s.ID, s.TimeoutSeconds)
}

const (
	serverPortMin = 5000
	serverPortMax = 65534
)

// Manager is the thread-safe registry of live sessions, plus the
// monotonic server-port allocator shared across all SETUPs.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	idCounter   uint64
	portCounter uint64 // next RTP port to hand out; RTCP is +1
}

// NewManager creates an empty session manager with the port allocator
// starting at 5000.
func NewManager() *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		portCounter: serverPortMin,
	}
}

// CreateSession allocates a fresh 16-hex-digit session ID, registers a
// new Ready-state session for uri, and returns it.
func (m *Manager) CreateSession(uri string) *Session {
	id := atomic.AddUint64(&m.idCounter, 1)
	session := newSession(fmt.Sprintf("%016x", id), uri)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	log.Debug("session %s created for %s", session.ID, uri)
	return session
}

// GetSession looks up a session by ID.
func (m *Manager) GetSession(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// RemoveSession deletes and returns a session by ID, if present.
func (m *Manager) RemoveSession(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	return s, ok
}

// RemoveSessions deletes all of the given IDs and returns how many
// were actually present. Used during TCP disconnect cleanup.
func (m *Manager) RemoveSessions(ids []string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for _, id := range ids {
		if _, ok := m.sessions[id]; ok {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// GetPlayingSessions returns a snapshot of all sessions currently in
// the Playing state.
func (m *Manager) GetPlayingSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Session
	for _, s := range m.sessions {
		if s.IsPlaying() {
			out = append(out, s)
		}
	}
	return out
}

// ErrPortRangeExhausted signals the server-port allocator wrapped
// around without finding room, which cannot happen in the current
// fixed-step allocator but is kept as a defensive boundary per spec §4.6.
type ErrPortRangeExhausted struct{}

func (ErrPortRangeExhausted) Error() string { return "server port range exhausted" }

// AllocateServerPorts hands out the next (RTP, RTCP) port pair from
// the monotonic counter, stepping by 2 and wrapping to 5000 once past
// 65534. RTP ports are always even; RTCP is RTP+1.
func (m *Manager) AllocateServerPorts() (rtp, rtcp uint16, err error) {
	next := atomic.AddUint64(&m.portCounter, 2) - 2
	if next > serverPortMax {
		atomic.StoreUint64(&m.portCounter, serverPortMin)
		next = atomic.AddUint64(&m.portCounter, 2) - 2
		if next > serverPortMax {
			return 0, 0, ErrPortRangeExhausted{}
		}
	}
	return uint16(next), uint16(next + 1), nil
}
