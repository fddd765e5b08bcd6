package chat

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Session is the server-side state for one connected client. The conn is
// read only by the owning handler; writes go through the out channel and
// a single writer goroutine, so a stalled peer never blocks a broadcaster
// past the send timeout.
type Session struct {
	ID         uuid.UUID
	Username   string
	UserColor  string
	ArrowColor string

	notify         atomic.Bool
	mentionPending atomic.Bool

	conn        net.Conn
	out         chan string
	sendTimeout time.Duration
	done        chan struct{}
	closeOnce   sync.Once
}

func NewSession(conn net.Conn, outBuffer int, sendTimeout time.Duration) *Session {
	if outBuffer <= 0 {
		outBuffer = 32
	}
	if sendTimeout <= 0 {
		sendTimeout = 2 * time.Second
	}
	s := &Session{
		ID:          uuid.New(),
		conn:        conn,
		out:         make(chan string, outBuffer),
		sendTimeout: sendTimeout,
		done:        make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

func (s *Session) Notify() bool             { return s.notify.Load() }
func (s *Session) SetNotify(v bool)         { s.notify.Store(v) }
func (s *Session) MentionPending() bool     { return s.mentionPending.Load() }
func (s *Session) SetMentionPending(v bool) { s.mentionPending.Store(v) }

// Send queues one outbound line. A queue still full after the send
// timeout means the peer has stalled; callers treat that as a delivery
// failure for this recipient.
func (s *Session) Send(line string) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	t := time.NewTimer(s.sendTimeout)
	defer t.Stop()
	select {
	case s.out <- line:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-t.C:
		return ErrSendQueueFull
	}
}

// Close is idempotent. The writer goroutine drains what was queued before
// the close and releases the connection.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) writeLoop() {
	w := bufio.NewWriter(s.conn)
	defer func() {
		_ = w.Flush()
		_ = s.conn.Close()
	}()

	for {
		select {
		case line := <-s.out:
			if !s.writeLine(w, line) {
				return
			}
		case <-s.done:
			for {
				select {
				case line := <-s.out:
					if !s.writeLine(w, line) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (s *Session) writeLine(w *bufio.Writer, line string) bool {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.sendTimeout))
	if _, err := w.WriteString(line + "\n"); err != nil {
		return false
	}
	return w.Flush() == nil
}
