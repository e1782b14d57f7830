package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/clustergraph/pkg/controller"
	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
)

var errSessionLimit = errors.New("session limit reached")

// session pairs a controller with the lock that serializes its mutators.
type session struct {
	id      string
	mu      sync.Mutex
	ctrl    *controller.Controller
	created time.Time
	used    time.Time
}

// sessionStore holds live sessions keyed by UUID.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	max      int
	now      func() time.Time
}

func newSessionStore(max int) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		max:      max,
		now:      time.Now,
	}
}

// add registers ctrl under a fresh session ID.
func (s *sessionStore) add(ctrl *controller.Controller) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		return nil, fmt.Errorf("%w (%d)", errSessionLimit, s.max)
	}
	now := s.now()
	sess := &session{
		id:      uuid.NewString(),
		ctrl:    ctrl,
		created: now,
		used:    now,
	}
	s.sessions[sess.id] = sess
	return sess, nil
}

// get returns the session and marks it used.
func (s *sessionStore) get(id string) (*session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, cgerrors.New(cgerrors.ErrCodeNotFound, "session %q not found", id)
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, cgerrors.New(cgerrors.ErrCodeNotFound, "session %q not found", id)
	}

	sess.mu.Lock()
	sess.used = s.now()
	sess.mu.Unlock()
	return sess, nil
}

// remove deletes a session. It reports whether the session existed.
func (s *sessionStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// sweep removes sessions idle for longer than maxIdle and returns how many
// were removed.
func (s *sessionStore) sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.used.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
