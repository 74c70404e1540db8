// Package session owns the authenticated identity for one running client
// instance. The session is held in memory and mirrored to a persistent
// key/value slot so a restart picks up where the user left off.
package session

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/V-ini-t86/broker-platform/internal/domain"
	"github.com/V-ini-t86/broker-platform/internal/storage"
)

// sessionKey is the fixed name of the persisted session record.
const sessionKey = "broker_user"

// placeholderID is assigned to every session; the login flow has no real
// identity provider behind it.
const placeholderID = "1"

// avatarURLPrefix seeds a deterministic avatar from the broker id.
const avatarURLPrefix = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// Store holds the current Session. A Session exists if and only if the user
// is authenticated; every mutation synchronously updates the persistent copy.
type Store struct {
	mu      sync.RWMutex
	current *domain.Session
	kv      storage.KV
	log     *slog.Logger
}

// NewStore creates a Store backed by the given key/value storage.
func NewStore(kv storage.KV, log *slog.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Login constructs a Session from the chosen broker and submitted
// credentials, adopts it, and persists it. Credential validation is the
// caller's responsibility (see the auth package); Login itself never rejects.
func (s *Store) Login(brokerID string, creds domain.Credentials) (*domain.Session, error) {
	name, _, _ := strings.Cut(creds.Email, "@")

	sess := &domain.Session{
		ID:          placeholderID,
		DisplayName: name,
		Email:       creds.Email,
		BrokerID:    brokerID,
		AvatarURL:   avatarURLPrefix + brokerID,
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(sessionKey, string(data)); err != nil {
		return nil, err
	}
	s.current = sess
	s.log.Info("session created", "broker", brokerID, "user", name)
	return sess, nil
}

// Logout clears the in-memory session and removes the persisted copy. It is
// idempotent: logging out while already logged out is a no-op.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	if err := s.kv.Delete(sessionKey); err != nil {
		return err
	}
	s.current = nil
	s.log.Info("session cleared")
	return nil
}

// Restore adopts a previously persisted session, if one exists. It is meant
// to be called once at startup. A missing or unparseable record leaves the
// store unauthenticated without error.
func (s *Store) Restore() {
	v, ok, err := s.kv.Get(sessionKey)
	if err != nil {
		s.log.Warn("reading persisted session", "error", err)
		return
	}
	if !ok {
		return
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(v), &sess); err != nil {
		s.log.Warn("parsing persisted session", "error", err)
		return
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.log.Info("session restored", "broker", sess.BrokerID, "user", sess.DisplayName)
}

// Current returns the active session, or nil when unauthenticated. Callers
// must treat the result as read-only.
func (s *Store) Current() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsAuthenticated reports whether a session exists.
func (s *Store) IsAuthenticated() bool {
	return s.Current() != nil
}
