package chat

// NotificationSink receives sound events for delivered messages. The core
// never plays audio itself; it only tags who should hear what.
type NotificationSink interface {
	Notify(s *Session, kind SoundKind)
}

// SoundSink is the default sink: it emits a PLAY_SOUND control line over
// the recipient's own outbound stream for the client to interpret.
type SoundSink struct{}

func (SoundSink) Notify(s *Session, kind SoundKind) {
	// Best effort. A broken recipient is discovered by the next real
	// message sent to it.
	_ = s.Send(SoundTokenPrefix + string(kind))
}
