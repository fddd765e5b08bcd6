package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
)

type connHandler struct {
	session   *Session
	reg       *Registry
	router    *Router
	logger    *slog.Logger
	closeOnce sync.Once
}

// HandleConn owns one client connection from handshake to teardown. It is
// the only goroutine that reads from conn.
func HandleConn(conn net.Conn, reg *Registry, router *Router, cfg Config, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &connHandler{
		session: NewSession(conn, cfg.OutBuffer, cfg.SendTimeout),
		reg:     reg,
		router:  router,
		logger:  logger,
	}
	h.run(conn)
}

func (h *connHandler) run(conn net.Conn) {
	// Any exit path that didn't already close gracefully is abrupt. The
	// sync.Once inside close makes the double call harmless.
	defer h.close(false)

	reader := bufio.NewReader(conn)

	line, err := readLine(reader)
	if err != nil {
		return
	}
	username, userColor, arrowColor, err := parseHandshake(line)
	if err != nil {
		h.logger.Warn("malformed handshake", "addr", conn.RemoteAddr().String(), "error", err)
		return
	}
	if err := h.reg.Register(h.session, username, userColor, arrowColor); err != nil {
		h.rejectHandshake(username, err)
		return
	}

	h.router.AnnounceJoin(h.session)
	h.sendWelcome()

	for {
		line, err := readLine(reader)
		if err != nil {
			return
		}
		if h.dispatch(line) {
			h.close(true)
			return
		}
	}
}

// dispatch handles one input line; it reports true when the client asked
// to exit.
func (h *connHandler) dispatch(line string) bool {
	cmd, err := ParseLine(line)
	if err != nil {
		var malformed *MalformedCommandError
		if errors.As(err, &malformed) {
			_ = h.session.Send(Colorize("red", "[!] Invalid command format.") + " " + malformed.Usage)
		}
		return false
	}

	switch cmd.Kind {
	case CmdExit:
		_ = h.session.Send("Bye")
		return true

	case CmdSetNotify:
		h.reg.SetNotify(h.session.ID, cmd.Notify)
		setting := "False"
		if cmd.Notify {
			setting = "True"
		}
		_ = h.session.Send(Colorize("green", "[*] Notification setting updated: "+setting))

	case CmdListUsers:
		_ = h.session.Send("USERS: " + strings.Join(h.reg.Usernames(), ","))

	case CmdHelp:
		h.sendHelp()

	case CmdPrivateMessage:
		if err := h.router.SendPrivate(h.session, cmd.Recipient, cmd.Text); err != nil {
			_ = h.session.Send(Colorize("red", "[!] User "+cmd.Recipient+" not found."))
		}

	case CmdPlainText:
		if cmd.Text == "" {
			return false
		}
		h.router.Broadcast(FormatChatLine(h.session, cmd.Text), OriginSession(h.session.ID))
	}
	return false
}

// close is the single terminal transition. Registered sessions leave the
// registry and get a departure broadcast; a session that never finished
// its handshake just releases the connection.
func (h *connHandler) close(graceful bool) {
	h.closeOnce.Do(func() {
		removed, ok := h.reg.Unregister(h.session.ID)
		h.session.Close()
		if ok {
			h.router.AnnounceDeparture(removed.Username, graceful)
		}
	})
}

func (h *connHandler) rejectHandshake(username string, err error) {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		_ = h.session.Send(Colorize("red", "[!] Username "+username+" is already taken."))
	case errors.Is(err, ErrUsernameInvalid):
		_ = h.session.Send(Colorize("red", "[!] Invalid username."))
	case errors.Is(err, ErrServerFull):
		_ = h.session.Send(Colorize("red", "[!] Server is full, try again later."))
	default:
		_ = h.session.Send(Colorize("red", "[!] Registration failed."))
	}
	h.logger.Info("handshake rejected", "username", username, "reason", err)
}

func (h *connHandler) sendWelcome() {
	_ = h.session.Send(Colorize("green", "[+] Welcome to the Terminal, "+h.session.Username+"!"))
	h.sendHelp()
}

func (h *connHandler) sendHelp() {
	for _, line := range []string{
		"Available commands:",
		"  /exit                - disconnect",
		"  /msg <user> <text>   - private message",
		"  /notify <True|False> - sound on every message",
		"  /users               - list connected users",
		"  /help                - this text",
		"  @<user>              - mention someone (plays a sound)",
	} {
		_ = h.session.Send(line)
	}
}

// parseHandshake splits the one-shot `username|color|arrowColor` hello.
func parseHandshake(line string) (username, userColor, arrowColor string, err error) {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("handshake: want 3 fields, got %d", len(parts))
	}
	username = strings.TrimSpace(parts[0])
	if username == "" {
		return "", "", "", fmt.Errorf("handshake: empty username")
	}
	return username, parts[1], parts[2], nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF && line != "" {
		// last line without newline
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF {
		return "", io.EOF
	}
	return "", fmt.Errorf("read: %w", err)
}
