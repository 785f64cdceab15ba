package storage

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/imagetranslator/internal/models"
)

var ErrNotFound = errors.New("session not found")

// SessionStore keeps sessions in memory for the life of the process.
// Callers always receive copies.
type SessionStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, false
	}
	cp := *session
	return &cp, true
}

func (s *SessionStore) Set(session *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	s.sessions[cp.ID] = &cp
}

// Update applies fn to the stored session under the write lock, so the
// last caller to settle wins.
func (s *SessionStore) Update(sessionID string, fn func(*models.Session)) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrNotFound
	}
	fn(session)
	session.UpdatedAt = time.Now()
	cp := *session
	return &cp, nil
}

// GetAll returns every session, oldest first.
func (s *SessionStore) GetAll() []*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Session, 0, len(s.sessions))
	for _, v := range s.sessions {
		cp := *v
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return exists
}
