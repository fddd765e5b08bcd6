package chat

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSendAfterClose(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Send("before"))

	s.Close()
	s.Close() // idempotent

	assert.ErrorIs(t, s.Send("after"), ErrSessionClosed)
}

func TestSessionStalledPeerTimesOut(t *testing.T) {
	// The peer end never reads, so the writer stalls on its first line
	// and the queue backs up.
	peer, conn := net.Pipe()
	t.Cleanup(func() { _ = peer.Close() })

	s := NewSession(conn, 1, 100*time.Millisecond)
	t.Cleanup(s.Close)

	require.NoError(t, s.Send("a"))
	require.NoError(t, s.Send("b"))

	err := s.Send("c")
	assert.ErrorIs(t, err, ErrSendQueueFull)
}
