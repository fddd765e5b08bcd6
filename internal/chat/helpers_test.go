package chat

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSession wires a session to one end of a net.Pipe and drains the
// other end into a line channel. The channel closes when the session's
// connection does.
func newTestSession(t *testing.T) (*Session, <-chan string) {
	t.Helper()
	peer, conn := net.Pipe()
	s := NewSession(conn, 32, time.Second)

	lines := make(chan string, 128)
	go func() {
		r := bufio.NewReader(peer)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimRight(line, "\n")
		}
	}()

	t.Cleanup(func() {
		s.Close()
		_ = peer.Close()
	})
	return s, lines
}

// waitForContains drains ch until a line containing want shows up,
// skipping unrelated traffic (join notices, help text, sound tokens).
func waitForContains(t *testing.T, ch <-chan string, want string) string {
	t.Helper()
	deadline := time.NewTimer(2 * time.Second)
	defer deadline.Stop()
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				t.Fatalf("stream closed while waiting for line containing %q", want)
			}
			if strings.Contains(s, want) {
				return s
			}
		case <-deadline.C:
			t.Fatalf("timeout waiting for line containing %q", want)
		}
	}
}

type soundEvent struct {
	username string
	kind     SoundKind
}

// recordSink captures notification events instead of emitting tokens.
type recordSink struct {
	mu     sync.Mutex
	events []soundEvent
}

func (r *recordSink) Notify(s *Session, kind SoundKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, soundEvent{username: s.Username, kind: kind})
}

func (r *recordSink) kinds(username string) []SoundKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []SoundKind
	for _, ev := range r.events {
		if ev.username == username {
			out = append(out, ev.kind)
		}
	}
	return out
}
