package rtsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionAssignsUniqueIDs(t *testing.T) {
	m := NewManager()
	s1 := m.CreateSession("rtsp://host/stream")
	s2 := m.CreateSession("rtsp://host/stream")

	assert.NotEqual(t, s1.ID, s2.ID)
	assert.Len(t, s1.ID, 16)
}

func TestSetupAlwaysCreatesNewSession(t *testing.T) {
	m := NewManager()
	s1 := m.CreateSession("rtsp://host/stream")
	s2 := m.CreateSession("rtsp://host/stream")
	assert.NotEqual(t, s1.ID, s2.ID)

	_, ok1 := m.GetSession(s1.ID)
	_, ok2 := m.GetSession(s2.ID)
	assert.True(t, ok1)
	assert.True(t, ok2)
}

func TestGetPlayingSessionsFiltersState(t *testing.T) {
	m := NewManager()
	s1 := m.CreateSession("rtsp://host/a")
	s2 := m.CreateSession("rtsp://host/b")
	s1.SetState(Playing)

	playing := m.GetPlayingSessions()
	require.Len(t, playing, 1)
	assert.Equal(t, s1.ID, playing[0].ID)
	_ = s2
}

func TestRemoveSessionsReturnsCount(t *testing.T) {
	m := NewManager()
	s1 := m.CreateSession("rtsp://host/a")
	s2 := m.CreateSession("rtsp://host/b")

	removed := m.RemoveSessions([]string{s1.ID, s2.ID, "nonexistent"})
	assert.Equal(t, 2, removed)
	_, ok := m.GetSession(s1.ID)
	assert.False(t, ok)
}

func TestAllocateServerPortsIncrementsByTwo(t *testing.T) {
	m := NewManager()
	rtp1, rtcp1, err := m.AllocateServerPorts()
	require.NoError(t, err)
	rtp2, rtcp2, err := m.AllocateServerPorts()
	require.NoError(t, err)

	assert.Equal(t, rtp1+1, rtcp1)
	assert.Equal(t, rtp1+2, rtp2)
	assert.Equal(t, rtp2+1, rtcp2)
}

func TestAllocateServerPortsWrapsAtMax(t *testing.T) {
	m := NewManager()
	m.portCounter = serverPortMax + 2 // counter value once 65534 has been handed out

	rtp, _, err := m.AllocateServerPorts()
	require.NoError(t, err)
	assert.Equal(t, uint16(serverPortMin), rtp)
}

func TestSessionHeaderValue(t *testing.T) {
	m := NewManager()
	s := m.CreateSession("rtsp://host/a")
	assert.Contains(t, s.HeaderValue(), ";timeout=60")
}
