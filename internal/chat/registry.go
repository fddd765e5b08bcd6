package chat

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Usernames must stay mentionable, so they share the mention token charset.
var usernameRe = regexp.MustCompile(`^\w+$`)

// Registry is the shared directory of active sessions, indexed by
// connection id and by username. The two maps mutate only together, under
// the lock, so every observable state has exactly one username per live
// session and vice versa.
type Registry struct {
	mu         sync.RWMutex
	sessions   map[uuid.UUID]*Session
	byUsername map[string]uuid.UUID
	maxClients int
	logger     *slog.Logger
}

func NewRegistry(maxClients int, logger *slog.Logger) *Registry {
	if maxClients <= 0 {
		maxClients = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions:   make(map[uuid.UUID]*Session),
		byUsername: make(map[string]uuid.UUID),
		maxClients: maxClients,
		logger:     logger,
	}
}

// Register claims a username for the session and inserts it into both
// maps. The duplicate check and the insert happen in one critical
// section, so at most one registration for a given name ever succeeds.
func (r *Registry) Register(s *Session, username, userColor, arrowColor string) error {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 16 || !usernameRe.MatchString(username) {
		return ErrUsernameInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.maxClients {
		return ErrServerFull
	}
	if _, exists := r.byUsername[username]; exists {
		return ErrUsernameTaken
	}

	s.Username = username
	s.UserColor = userColor
	s.ArrowColor = arrowColor
	r.sessions[s.ID] = s
	r.byUsername[username] = s.ID

	ConnectedClients.Set(float64(len(r.sessions)))
	MessagesTotal.WithLabelValues("register").Inc()
	r.logger.Info("user registered", "username", username, "session", s.ID.String())
	return nil
}

// Unregister removes the session from both maps. It is idempotent: the
// second call for the same id reports ok=false and changes nothing.
func (r *Registry) Unregister(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	delete(r.sessions, id)
	delete(r.byUsername, s.Username)

	ConnectedClients.Set(float64(len(r.sessions)))
	MessagesTotal.WithLabelValues("unregister").Inc()
	r.logger.Info("user left", "username", s.Username)
	return s, true
}

func (r *Registry) LookupByUsername(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[name]
	if !ok {
		return nil, false
	}
	return r.sessions[id], true
}

// Snapshot returns a point-in-time copy of the session set. Iterating the
// copy is safe even when a callback removes sessions mid-fan-out.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.sessions)
}

// ForEachSession applies f to a snapshot of the sessions.
func (r *Registry) ForEachSession(f func(*Session)) {
	for _, s := range r.Snapshot() {
		f(s)
	}
}

// SetNotify updates one session's notification preference.
func (r *Registry) SetNotify(id uuid.UUID, v bool) bool {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.SetNotify(v)
	}
	return ok
}

// SetMentionPending updates one session's mention-pending flag.
func (r *Registry) SetMentionPending(id uuid.UUID, v bool) bool {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.SetMentionPending(v)
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Usernames returns the registered names in sorted order.
func (r *Registry) Usernames() []string {
	r.mu.RLock()
	names := lo.Keys(r.byUsername)
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// CloseAll tears down every session at server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.Close()
		delete(r.sessions, id)
		delete(r.byUsername, s.Username)
	}
	ConnectedClients.Set(0)
}
