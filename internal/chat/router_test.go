package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessMentionsRewritesKnownUsers(t *testing.T) {
	reg := NewRegistry(8, discardLogger())
	sink := &recordSink{}
	router := NewRouter(reg, sink, discardLogger())

	alice, _ := newTestSession(t)
	sender, _ := newTestSession(t)
	require.NoError(t, reg.Register(alice, "alice", "red", "blue"))
	require.NoError(t, reg.Register(sender, "carol", "green", "blue"))

	got := router.ProcessMentions("hello @alice and @bob", OriginSession(sender.ID))

	assert.Contains(t, got, "\x1b[38;5;9m", "alice's token should carry her color")
	assert.Contains(t, got, "@alice")
	assert.Contains(t, got, "@bob", "unresolvable token stays verbatim")
	assert.NotContains(t, got, "\x1b[38;5;9m@bob")

	assert.True(t, alice.MentionPending())
	assert.Equal(t, []SoundKind{SoundMention}, sink.kinds("alice"))
}

func TestProcessMentionsIgnoresSenderOwnName(t *testing.T) {
	reg := NewRegistry(8, discardLogger())
	sink := &recordSink{}
	router := NewRouter(reg, sink, discardLogger())

	alice, _ := newTestSession(t)
	require.NoError(t, reg.Register(alice, "alice", "red", "blue"))

	got := router.ProcessMentions("it's me, @alice", OriginSession(alice.ID))

	assert.Equal(t, "it's me, @alice", got)
	assert.False(t, alice.MentionPending())
	assert.Empty(t, sink.kinds("alice"))
}

func TestBroadcastExcludesOrigin(t *testing.T) {
	reg := NewRegistry(8, discardLogger())
	sink := &recordSink{}
	router := NewRouter(reg, sink, discardLogger())

	alice, aliceLines := newTestSession(t)
	bob, bobLines := newTestSession(t)
	carol, carolLines := newTestSession(t)
	require.NoError(t, reg.Register(alice, "alice", "green", "blue"))
	require.NoError(t, reg.Register(bob, "bob", "red", "yellow"))
	require.NoError(t, reg.Register(carol, "carol", "pink", "brown"))

	router.Broadcast("hello everyone", OriginSession(alice.ID))

	assert.Equal(t, "hello everyone", waitForContains(t, bobLines, "hello"))
	assert.Equal(t, "hello everyone", waitForContains(t, carolLines, "hello"))

	select {
	case line := <-aliceLines:
		t.Fatalf("origin received its own broadcast: %q", line)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcastHonorsNotifyPreference(t *testing.T) {
	reg := NewRegistry(8, discardLogger())
	sink := &recordSink{}
	router := NewRouter(reg, sink, discardLogger())

	alice, _ := newTestSession(t)
	bob, bobLines := newTestSession(t)
	require.NoError(t, reg.Register(alice, "alice", "green", "blue"))
	require.NoError(t, reg.Register(bob, "bob", "red", "yellow"))

	router.Broadcast("quiet one", OriginSession(alice.ID))
	waitForContains(t, bobLines, "quiet one")
	assert.Empty(t, sink.kinds("bob"))

	reg.SetNotify(bob.ID, true)
	router.Broadcast("loud one", OriginSession(alice.ID))
	waitForContains(t, bobLines, "loud one")
	assert.Equal(t, []SoundKind{SoundNotify}, sink.kinds("bob"))
}

func TestBroadcastDropsFailedRecipientAndContinues(t *testing.T) {
	reg := NewRegistry(8, discardLogger())
	sink := &recordSink{}
	router := NewRouter(reg, sink, discardLogger())

	alice, aliceLines := newTestSession(t)
	bob, _ := newTestSession(t)
	carol, carolLines := newTestSession(t)
	require.NoError(t, reg.Register(alice, "alice", "green", "blue"))
	require.NoError(t, reg.Register(bob, "bob", "red", "yellow"))
	require.NoError(t, reg.Register(carol, "carol", "pink", "brown"))

	// Simulated transport death: bob's session is already closed, so any
	// send toward it fails.
	bob.Close()

	router.Broadcast("still here?", OriginServer())

	waitForContains(t, aliceLines, "still here?")
	waitForContains(t, carolLines, "still here?")

	_, ok := reg.LookupByUsername("bob")
	assert.False(t, ok, "failed recipient must leave the registry")

	waitForContains(t, aliceLines, "bob has disconnected unexpectedly")
	waitForContains(t, carolLines, "bob has disconnected unexpectedly")
}

func TestSendPrivateDeliversBothCopies(t *testing.T) {
	reg := NewRegistry(8, discardLogger())
	sink := &recordSink{}
	router := NewRouter(reg, sink, discardLogger())

	alice, aliceLines := newTestSession(t)
	bob, bobLines := newTestSession(t)
	require.NoError(t, reg.Register(alice, "alice", "green", "blue"))
	require.NoError(t, reg.Register(bob, "bob", "red", "yellow"))

	require.NoError(t, router.SendPrivate(alice, "bob", "secret"))

	got := waitForContains(t, bobLines, "secret")
	assert.Contains(t, got, "[PM")
	assert.Contains(t, got, "alice")
	assert.Contains(t, got, "*whispers*")

	echo := waitForContains(t, aliceLines, "secret")
	assert.Contains(t, echo, "to bob")

	assert.Equal(t, []SoundKind{SoundPrivate}, sink.kinds("bob"))
}

func TestSendPrivateUnknownRecipient(t *testing.T) {
	reg := NewRegistry(8, discardLogger())
	router := NewRouter(reg, &recordSink{}, discardLogger())

	alice, _ := newTestSession(t)
	require.NoError(t, reg.Register(alice, "alice", "green", "blue"))

	assert.ErrorIs(t, router.SendPrivate(alice, "ghost", "boo"), ErrRecipientNotFound)
}

func TestSendPrivateFailedRecipientIsDropped(t *testing.T) {
	reg := NewRegistry(8, discardLogger())
	sink := &recordSink{}
	router := NewRouter(reg, sink, discardLogger())

	alice, aliceLines := newTestSession(t)
	bob, _ := newTestSession(t)
	require.NoError(t, reg.Register(alice, "alice", "green", "blue"))
	require.NoError(t, reg.Register(bob, "bob", "red", "yellow"))

	bob.Close()

	require.NoError(t, router.SendPrivate(alice, "bob", "anyone home?"))

	waitForContains(t, aliceLines, "User bob disconnected")
	_, ok := reg.LookupByUsername("bob")
	assert.False(t, ok)
	assert.Empty(t, sink.kinds("bob"))
}
