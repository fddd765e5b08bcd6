package chat

import "github.com/google/uuid"

// CommandKind tells the handler how to dispatch one parsed input line.
type CommandKind int

const (
	CmdPlainText CommandKind = iota
	CmdExit
	CmdSetNotify
	CmdPrivateMessage
	CmdListUsers
	CmdHelp
)

// Command is the result of parsing one line of client input. Only the
// fields relevant to Kind are populated.
type Command struct {
	Kind      CommandKind
	Notify    bool
	Recipient string
	Text      string
}

// SoundKind tags a notification event for the client-side sound player.
type SoundKind string

const (
	SoundNotify  SoundKind = "notify"
	SoundMention SoundKind = "mention"
	SoundPrivate SoundKind = "private"
)

// SoundTokenPrefix marks a server-originated control line. Clients strip
// the prefix and play the named sound instead of printing the line.
const SoundTokenPrefix = "PLAY_SOUND|"

// BroadcastOrigin identifies who initiated a broadcast: the server console
// or a remote session. The origin session is excluded from its own fan-out.
type BroadcastOrigin struct {
	sessionID uuid.UUID
	server    bool
}

func OriginServer() BroadcastOrigin { return BroadcastOrigin{server: true} }

func OriginSession(id uuid.UUID) BroadcastOrigin {
	return BroadcastOrigin{sessionID: id}
}

// Is reports whether the origin is the session with the given id.
func (o BroadcastOrigin) Is(id uuid.UUID) bool {
	return !o.server && o.sessionID == id
}

var (
	ErrUsernameTaken     = errorString("username_taken")
	ErrUsernameInvalid   = errorString("username_invalid")
	ErrServerFull        = errorString("server_full")
	ErrRecipientNotFound = errorString("recipient_not_found")
	ErrSendQueueFull     = errorString("send_queue_full")
	ErrSessionClosed     = errorString("session_closed")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// MalformedCommandError is returned for a recognized command with bad
// arguments. It carries the usage hint echoed back to the sender.
type MalformedCommandError struct {
	Usage string
}

func (e *MalformedCommandError) Error() string { return "malformed command: " + e.Usage }
