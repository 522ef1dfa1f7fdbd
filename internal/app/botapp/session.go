package botapp

import (
	"sync"
	"time"

	profilessvc "github.com/kolotovalexander/znakomstva-shahter/internal/services/profiles"
)

type dialogState int

const (
	stateIdle dialogState = iota
	stateName
	stateAge
	stateGender
	statePreference
	stateBio
	statePhoto
	stateConfirm
	stateBrowsing
)

// session holds the per-user dialogue state. Only that user's dispatch
// worker touches the fields, so no lock beyond the store's map mutex is
// needed.
type session struct {
	userID int64
	chatID int64
	state  dialogState
	draft  profilessvc.Draft

	// browsing cycle: keyset cursor plus cards passed within the cycle.
	// Passes are deliberately not persisted, a new cycle resurfaces them.
	afterID   int64
	excluded  []int64
	currentID int64

	lastSeen time.Time
}

func (s *session) resetCycle() {
	s.afterID = 0
	s.excluded = nil
	s.currentID = 0
}

func (s *session) resetDialogue() {
	s.state = stateIdle
	s.draft = profilessvc.Draft{}
	s.resetCycle()
}

type sessionStore struct {
	mu     sync.Mutex
	byUser map[int64]*session
	now    func() time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		byUser: make(map[int64]*session),
		now:    time.Now,
	}
}

func (s *sessionStore) get(userID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byUser[userID]
	if !ok {
		sess = &session{userID: userID, state: stateIdle}
		s.byUser[userID] = sess
	}
	sess.lastSeen = s.now()
	return sess
}

func (s *sessionStore) reap(idleTTL time.Duration) int {
	if idleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idleTTL)
	removed := 0
	for userID, sess := range s.byUser {
		if sess.lastSeen.Before(cutoff) {
			delete(s.byUser, userID)
			removed++
		}
	}
	return removed
}
