package chat

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopClosesListenerAndSessions(t *testing.T) {
	srv := startTestServer(t, &recordSink{}, 8)

	alice := dialClient(t, srv, "alice|green|blue")
	alice.expect("Welcome to the Terminal, alice")
	addr := srv.Addr().String()

	srv.Stop()

	alice.expectClosed()
	assert.Equal(t, 0, srv.Registry().Len())

	_, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	require.Error(t, err, "listener must stop accepting after Stop")
}
