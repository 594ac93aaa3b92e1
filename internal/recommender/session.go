// internal/recommender/session.go
package recommender

import (
	"sync"
	"time"

	"college-recommender/internal/common/metrics"
	"college-recommender/internal/models"
)

// session holds the cached outcome of one full recommendation run: the
// profile fingerprint it was computed for, and the scored-but-untruncated
// candidate list whose sub-scores make weight-only re-ranking cheap.
type session struct {
	id          string
	fingerprint string
	scored      []models.ScoredCandidate
	createdAt   time.Time
	lastAccess  time.Time
}

// sessionStore is an in-memory arena with TTL expiry and a size cap.
// Writes follow last-writer-wins: a profile change simply replaces the
// session's contents under the lock.
type sessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*session
	ttl         time.Duration
	maxSessions int
}

func newSessionStore(ttl time.Duration, maxSessions int) *sessionStore {
	return &sessionStore{
		sessions:    make(map[string]*session),
		ttl:         ttl,
		maxSessions: maxSessions,
	}
}

func (s *sessionStore) put(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess.createdAt = now
	sess.lastAccess = now
	s.sessions[sess.id] = sess

	s.evictLocked(now)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

// get returns the session and touches its access time. Expired sessions
// read as absent.
func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}

	now := time.Now()
	if s.ttl > 0 && now.Sub(sess.lastAccess) > s.ttl {
		delete(s.sessions, id)
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
		return nil, false
	}

	sess.lastAccess = now
	return sess, true
}

// evictLocked drops expired sessions, then the least recently used ones
// until the store fits the cap. Caller holds the lock.
func (s *sessionStore) evictLocked(now time.Time) {
	if s.ttl > 0 {
		for id, sess := range s.sessions {
			if now.Sub(sess.lastAccess) > s.ttl {
				delete(s.sessions, id)
			}
		}
	}

	for s.maxSessions > 0 && len(s.sessions) > s.maxSessions {
		var oldestID string
		var oldest time.Time
		for id, sess := range s.sessions {
			if oldestID == "" || sess.lastAccess.Before(oldest) {
				oldestID = id
				oldest = sess.lastAccess
			}
		}
		delete(s.sessions, oldestID)
	}
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
