// Package mount implements named RTSP stream endpoints: each Mount
// owns exactly one codec packetizer and the set of session IDs
// currently subscribed to it.
package mount

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/tidewave/rtspd/internal/logging"
	"github.com/tidewave/rtspd/internal/rtp"
)

var log = logging.DefaultLogger.WithTag("mount")

// DefaultPath is the conventional path for a server's single stream.
const DefaultPath = "/stream"

// Mount is a named endpoint (e.g. "/stream") with its own packetizer
// and subscriber set. Packetization is serialized under an exclusive
// lock because it advances sequence/timestamp state; the subscriber
// set uses a separate reader/writer lock since reads dominate during
// RTP fan-out.
type Mount struct {
	path string

	packetizerMu sync.Mutex
	packetizer   rtp.Packetizer

	subscribersMu sync.RWMutex
	subscribers   []string
}

// New creates a mount at path, owning packetizer.
func New(path string, packetizer rtp.Packetizer) *Mount {
	return &Mount{path: path, packetizer: packetizer}
}

// Path returns the mount's registered path.
func (m *Mount) Path() string {
	return m.path
}

// Packetize delegates to the owned packetizer under its exclusive lock.
func (m *Mount) Packetize(data []byte, timestampIncrement uint32) []rtp.Packet {
	m.packetizerMu.Lock()
	defer m.packetizerMu.Unlock()
	return m.packetizer.Packetize(data, timestampIncrement)
}

// PayloadType returns the underlying packetizer's RTP payload type.
func (m *Mount) PayloadType() byte {
	m.packetizerMu.Lock()
	defer m.packetizerMu.Unlock()
	return m.packetizer.PayloadType()
}

// SDPAttributes delegates to the packetizer's SDP attribute lines.
func (m *Mount) SDPAttributes() []string {
	m.packetizerMu.Lock()
	defer m.packetizerMu.Unlock()
	return m.packetizer.SDPAttributes()
}

// ClockRateHz returns the underlying packetizer's clock rate.
func (m *Mount) ClockRateHz() uint32 {
	m.packetizerMu.Lock()
	defer m.packetizerMu.Unlock()
	return m.packetizer.ClockRateHz()
}

// NextSequence peeks the sequence number of the next packet to be
// built, for the RTP-Info response header.
func (m *Mount) NextSequence() uint16 {
	m.packetizerMu.Lock()
	defer m.packetizerMu.Unlock()
	return m.packetizer.NextSequence()
}

// NextTimestamp peeks the timestamp of the next packet to be built,
// for the RTP-Info response header.
func (m *Mount) NextTimestamp() uint32 {
	m.packetizerMu.Lock()
	defer m.packetizerMu.Unlock()
	return m.packetizer.NextTimestamp()
}

// Subscribe adds sessionID to the subscriber set. Idempotent: a
// session already present is left alone.
func (m *Mount) Subscribe(sessionID string) {
	m.subscribersMu.Lock()
	defer m.subscribersMu.Unlock()
	for _, id := range m.subscribers {
		if id == sessionID {
			return
		}
	}
	m.subscribers = append(m.subscribers, sessionID)
	log.Debug("session %s subscribed to %s", sessionID, m.path)
}

// Unsubscribe removes sessionID from the subscriber set. A no-op if
// the ID is not present.
func (m *Mount) Unsubscribe(sessionID string) {
	m.subscribersMu.Lock()
	defer m.subscribersMu.Unlock()
	for i, id := range m.subscribers {
		if id == sessionID {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			log.Debug("session %s unsubscribed from %s", sessionID, m.path)
			return
		}
	}
}

// SubscribedIDs returns a snapshot of the currently subscribed session IDs.
func (m *Mount) SubscribedIDs() []string {
	m.subscribersMu.RLock()
	defer m.subscribersMu.RUnlock()
	out := make([]string, len(m.subscribers))
	copy(out, m.subscribers)
	return out
}

// Registry maps mount paths to Mounts, with an optional default mount
// used as a fallback when a requested path has no exact match.
type Registry struct {
	mu          sync.RWMutex
	mounts      map[string]*Mount
	defaultPath string
}

// NewRegistry creates an empty mount registry.
func NewRegistry() *Registry {
	return &Registry{mounts: make(map[string]*Mount)}
}

// Add registers mount at path, replacing any prior mount there.
func (r *Registry) Add(path string, packetizer rtp.Packetizer) *Mount {
	m := New(path, packetizer)
	r.mu.Lock()
	r.mounts[path] = m
	r.mu.Unlock()
	log.Info("mount registered: %s", path)
	return m
}

// SetDefault designates path as the fallback mount for ResolveFromURI.
// The caller is responsible for ensuring a mount is registered there.
func (r *Registry) SetDefault(path string) {
	r.mu.Lock()
	r.defaultPath = path
	r.mu.Unlock()
}

// Get looks up a mount by exact path.
func (r *Registry) Get(path string) (*Mount, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mounts[path]
	return m, ok
}

// MustGet looks up a mount by exact path, returning a wrapped
// not-found error suitable for propagating to callers.
func (r *Registry) MustGet(path string) (*Mount, error) {
	m, ok := r.Get(path)
	if !ok {
		return nil, errors.Errorf("mount not found: %s", path)
	}
	return m, nil
}

// ResolveFromURI extracts a mount path from an RTSP URI and looks it
// up, falling back to the default mount (if one is set) when there is
// no exact match.
func (r *Registry) ResolveFromURI(uri string) (*Mount, bool) {
	path := ExtractPath(uri)
	if m, ok := r.Get(path); ok {
		return m, true
	}

	r.mu.RLock()
	def := r.defaultPath
	r.mu.RUnlock()
	if def == "" {
		return nil, false
	}
	return r.Get(def)
}

// UnsubscribeAll removes sessionID from every registered mount's
// subscriber set. Used during TCP disconnect cleanup.
func (r *Registry) UnsubscribeAll(sessionID string) {
	r.mu.RLock()
	mounts := make([]*Mount, 0, len(r.mounts))
	for _, m := range r.mounts {
		mounts = append(mounts, m)
	}
	r.mu.RUnlock()

	for _, m := range mounts {
		m.Unsubscribe(sessionID)
	}
}

// ExtractPath derives a mount path from an RTSP request URI.
//
//	rtsp://host:8554/stream/track1 -> /stream
//	rtsp://host:8554/stream        -> /stream
//	rtsp://host:8554               -> /stream (default sentinel)
//	*                              -> /stream (default sentinel)
//	/camera1                       -> /camera1
func ExtractPath(uri string) string {
	var path string
	switch {
	case strings.HasPrefix(uri, "rtsp://"):
		path = pathAfterScheme(uri[len("rtsp://"):])
	case strings.HasPrefix(uri, "rtsps://"):
		path = pathAfterScheme(uri[len("rtsps://"):])
	case strings.HasPrefix(uri, "/"):
		path = uri
	default:
		return DefaultPath
	}

	if pos := strings.LastIndex(path, "/track"); pos > 0 {
		path = path[:pos]
	}
	return path
}

func pathAfterScheme(rest string) string {
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i:]
	}
	return DefaultPath
}
