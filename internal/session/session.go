// Package session holds per-session state: the resolved credential and
// the last transcript. It replaces ambient framework session state with a
// store passed explicitly to the handlers that need it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/voicelab/voiceprobe/internal/credentials"
)

// ErrNotFound signals that the session holds no value for the requested
// key (or the session does not exist at all).
var ErrNotFound = errors.New("session value not found")

// Store keeps one credential and one transcript per session. Credentials
// are written once per save and overwrite any previous value; there is no
// refresh within a session's lifetime.
type Store interface {
	SaveCredential(ctx context.Context, sessionID string, cred *credentials.Credential) error
	Credential(ctx context.Context, sessionID string) (*credentials.Credential, error)
	SaveTranscript(ctx context.Context, sessionID, transcript string) error
	Transcript(ctx context.Context, sessionID string) (string, error)
}

const sweepInterval = time.Minute

type memoryEntry struct {
	cred          *credentials.Credential
	transcript    string
	hasTranscript bool
	expires       time.Time
}

// MemoryStore is the in-process fallback used when Redis is unavailable.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	m := &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*memoryEntry),
	}
	go m.cleanup()
	return m
}

func (m *MemoryStore) SaveCredential(_ context.Context, sessionID string, cred *credentials.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(sessionID)
	e.cred = cred
	return nil
}

func (m *MemoryStore) Credential(_ context.Context, sessionID string) (*credentials.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sessionID]
	if !ok || e.cred == nil || time.Now().After(e.expires) {
		return nil, ErrNotFound
	}
	return e.cred, nil
}

func (m *MemoryStore) SaveTranscript(_ context.Context, sessionID, transcript string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(sessionID)
	e.transcript = transcript
	e.hasTranscript = true
	return nil
}

// Transcript returns the stored transcript, which may legitimately be
// empty when recognition yielded zero segments. Absence and emptiness are
// distinct.
func (m *MemoryStore) Transcript(_ context.Context, sessionID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sessionID]
	if !ok || !e.hasTranscript || time.Now().After(e.expires) {
		return "", ErrNotFound
	}
	return e.transcript, nil
}

// entry returns the live entry for sessionID, creating or replacing an
// expired one. Callers must hold the write lock.
func (m *MemoryStore) entry(sessionID string) *memoryEntry {
	e, ok := m.sessions[sessionID]
	if !ok || time.Now().After(e.expires) {
		e = &memoryEntry{}
		m.sessions[sessionID] = e
	}
	e.expires = time.Now().Add(m.ttl)
	return e
}

func (m *MemoryStore) cleanup() {
	for {
		time.Sleep(sweepInterval)
		m.sweep(time.Now())
	}
}

// sweep drops sessions whose TTL has passed so an idle process does not
// accumulate dead entries.
func (m *MemoryStore) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if now.After(e.expires) {
			delete(m.sessions, id)
		}
	}
}
