package rtspd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewave/rtspd/internal/rtp"
)

func TestNewRejectsEmptyBind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bind = ""
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrInvalidBindAddress)
}

func TestNewRejectsMalformedBind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bind = "not-a-host-port"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewRejectsPortZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bind = "127.0.0.1:0"
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrInvalidBindAddress)
}

func TestSendFrameToBeforeStartIsNotStarted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bind = "127.0.0.1:18554"
	srv, err := New(cfg)
	require.NoError(t, err)
	srv.AddMount(cfg.DefaultMount, rtp.NewH264Packetizer())

	_, err = srv.SendFrame([]byte{0, 0, 0, 1, 0x65}, 3000)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestStartStopLifecycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bind = "127.0.0.1:18555"
	srv, err := New(cfg)
	require.NoError(t, err)
	srv.AddMount(cfg.DefaultMount, rtp.NewH264Packetizer())

	require.NoError(t, srv.Start())
	assert.ErrorIs(t, srv.Start(), ErrAlreadyRunning)

	require.NoError(t, srv.Stop())
	assert.ErrorIs(t, srv.Stop(), ErrNotStarted)
}

func TestSendFrameToUnknownMount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bind = "127.0.0.1:18556"
	srv, err := New(cfg)
	require.NoError(t, err)
	srv.AddMount(cfg.DefaultMount, rtp.NewH264Packetizer())
	require.NoError(t, srv.Start())
	defer srv.Stop()

	_, err = srv.SendFrameTo("/nonexistent", []byte{0, 0, 0, 1, 0x65}, 3000)
	assert.ErrorIs(t, err, ErrMountNotFound)
}

func TestGetViewersEmptyInitially(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bind = "127.0.0.1:18557"
	srv, err := New(cfg)
	require.NoError(t, err)
	assert.Empty(t, srv.GetViewers())
}

func TestSendRTPPacketUnknownSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bind = "127.0.0.1:18558"
	srv, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	err = srv.SendRTPPacket("deadbeefdeadbeef", rtp.Packet{0})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBroadcastRTPPacketUnknownDefaultMountIsMountNotFound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bind = "127.0.0.1:18559"
	cfg.DefaultMount = "/nonexistent"
	srv, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	reached, err := srv.BroadcastRTPPacket(rtp.Packet{0})
	assert.ErrorIs(t, err, ErrMountNotFound)
	assert.Equal(t, 0, reached)
}

func TestBroadcastRTPPacketSkipsNonPlayingSessions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bind = "127.0.0.1:18560"
	srv, err := New(cfg)
	require.NoError(t, err)
	srv.AddMount(cfg.DefaultMount, rtp.NewH264Packetizer())
	require.NoError(t, srv.Start())
	defer srv.Stop()

	m, ok := srv.Mounts().Get(cfg.DefaultMount)
	require.True(t, ok)
	session := srv.SessionManager().CreateSession("rtsp://host/stream")
	m.Subscribe(session.ID)

	reached, err := srv.BroadcastRTPPacket(rtp.Packet{0})
	require.NoError(t, err)
	assert.Equal(t, 0, reached)
}
