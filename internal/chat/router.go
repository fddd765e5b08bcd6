package chat

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"
)

var mentionRe = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// Router computes message fan-out: broadcasts, private messages and
// @mention rewriting. It reaches sessions only through registry
// snapshots and never holds one across a blocking send on another
// goroutine's behalf.
type Router struct {
	reg    *Registry
	sink   NotificationSink
	logger *slog.Logger
}

func NewRouter(reg *Registry, sink NotificationSink, logger *slog.Logger) *Router {
	if sink == nil {
		sink = SoundSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{reg: reg, sink: sink, logger: logger}
}

// Broadcast rewrites mentions once, then delivers the identical text to
// every registered session except the origin. Fan-out is best effort and
// isolated per recipient: a failed send drops that recipient as an
// implicit disconnect and delivery to the rest continues.
func (r *Router) Broadcast(text string, origin BroadcastOrigin) {
	start := time.Now()
	processed := r.ProcessMentions(text, origin)

	for _, s := range r.reg.Snapshot() {
		if origin.Is(s.ID) {
			continue
		}
		if err := s.Send(processed); err != nil {
			r.dropRecipient(s, err)
			continue
		}
		if s.MentionPending() {
			s.SetMentionPending(false)
		}
		if s.Notify() {
			r.sink.Notify(s, SoundNotify)
		}
	}

	MessagesTotal.WithLabelValues("broadcast").Inc()
	MessageProcessingDuration.WithLabelValues("broadcast").Observe(time.Since(start).Seconds())
}

// ProcessMentions rewrites each @name token that resolves to a live
// session other than the origin: the token takes that user's color, the
// user's mention-pending flag is raised and a mention event goes to the
// sink. Unresolvable tokens, and the origin's own name, stay verbatim.
func (r *Router) ProcessMentions(text string, origin BroadcastOrigin) string {
	return mentionRe.ReplaceAllStringFunc(text, func(tok string) string {
		s, ok := r.reg.LookupByUsername(tok[1:])
		if !ok || origin.Is(s.ID) {
			return tok
		}
		s.SetMentionPending(true)
		r.sink.Notify(s, SoundMention)
		return Colorize(s.UserColor, tok)
	})
}

// SendPrivate delivers a whisper to one recipient and a confirmation copy
// to the sender. A transport failure toward the recipient drops the
// recipient and notifies the sender instead of propagating.
func (r *Router) SendPrivate(sender *Session, recipientName, text string) error {
	recipient, ok := r.reg.LookupByUsername(recipientName)
	if !ok {
		return ErrRecipientNotFound
	}

	start := time.Now()
	ts := time.Now().Format("15:04:05")
	toRecipient := fmt.Sprintf("%s %s %s",
		Colorize("yellow", fmt.Sprintf("[PM %s] %s *whispers*", ts, sender.Username)),
		Colorize(sender.ArrowColor, "---->"),
		text)
	toSender := fmt.Sprintf("%s %s %s",
		Colorize("purple", fmt.Sprintf("[PM %s to %s]", ts, recipient.Username)),
		Colorize(sender.ArrowColor, "---->"),
		text)

	if err := recipient.Send(toRecipient); err != nil {
		r.dropRecipient(recipient, err)
		_ = sender.Send(Colorize("red", "[!] User "+recipientName+" disconnected."))
	} else {
		r.sink.Notify(recipient, SoundPrivate)
		if err := sender.Send(toSender); err != nil {
			// The sender's own handler tears the session down on its
			// next read; just leave a trace.
			r.logger.Warn("confirmation copy failed", "username", sender.Username, "error", err)
		}
	}

	MessagesTotal.WithLabelValues("private").Inc()
	MessageProcessingDuration.WithLabelValues("private").Observe(time.Since(start).Seconds())
	return nil
}

// AnnounceDeparture broadcasts that a user is gone. The wording depends
// on whether the user said /exit or the transport just died.
func (r *Router) AnnounceDeparture(username string, graceful bool) {
	reason := "disconnected unexpectedly"
	if graceful {
		reason = "left gracefully"
	}
	r.Broadcast(Colorize("yellow", "[-] "+username+" has "+reason+"."), OriginServer())
}

// AnnounceJoin broadcasts a join notice to everyone but the newcomer.
func (r *Router) AnnounceJoin(s *Session) {
	r.Broadcast(Colorize("yellow", "[+] "+s.Username+" has joined the Terminal!"), OriginSession(s.ID))
}

// dropRecipient treats a failed send as an implicit disconnect: the
// session leaves the registry and its departure is announced, while the
// operation that discovered the failure carries on.
func (r *Router) dropRecipient(s *Session, err error) {
	DeliveryFailures.Inc()
	r.logger.Warn("delivery failed, dropping recipient", "username", s.Username, "error", err)

	removed, ok := r.reg.Unregister(s.ID)
	s.Close()
	if ok {
		r.AnnounceDeparture(removed.Username, false)
	}
}

// FormatChatLine renders a user's chat line: colorized name tag,
// colorized arrow, raw text.
func FormatChatLine(s *Session, text string) string {
	return Colorize(s.UserColor, "["+s.Username+"]") + " " + Colorize(s.ArrowColor, "|---->") + " " + text
}
