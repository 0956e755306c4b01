package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atende-insights/backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// Session owns one dashboard's record set and filter state. The record set
// is replaced wholesale on import; filters are merged partially from the UI.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	calls   []models.ServiceCall
	filters models.FilterState
}

// FilterPatch is a partial filter update. Nil fields leave the dimension
// unchanged.
type FilterPatch struct {
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	Channels          *[]string  `json:"channels"`
	Houses            *[]string  `json:"houses"`
	Themes            *[]string  `json:"themes"`
	OnlyNoInteraction *bool      `json:"onlyNoInteraction"`
}

func (s *Session) Replace(calls []models.ServiceCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = calls
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Session) MergeFilters(patch FilterPatch) models.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.StartDate != nil {
		s.filters.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		s.filters.EndDate = patch.EndDate
	}
	if patch.Channels != nil {
		s.filters.Channels = *patch.Channels
	}
	if patch.Houses != nil {
		s.filters.Houses = *patch.Houses
	}
	if patch.Themes != nil {
		s.filters.Themes = *patch.Themes
	}
	if patch.OnlyNoInteraction != nil {
		s.filters.OnlyNoInteraction = *patch.OnlyNoInteraction
	}
	return s.filters
}

func (s *Session) ResetFilters() models.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = models.FilterState{}
	return s.filters
}

func (s *Session) Filters() models.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// UpdateCallTheme overrides the theme of one record. Reports whether the
// record exists; already-classified records are otherwise untouched by rule
// changes.
func (s *Session) UpdateCallTheme(id string, theme string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.calls {
		if s.calls[i].ID == id {
			s.calls[i].Tema = theme
			return true
		}
	}
	return false
}

// Filtered applies the current filter state to the record set. The lock is
// held through filtering so theme overrides never race with reads; the
// returned slice holds copies.
func (s *Session) Filtered() []models.ServiceCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ApplyFilters(s.calls, s.filters)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// SessionManager is the registry of live dashboard sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: map[string]*Session{}}
}

func (m *SessionManager) Create() *Session {
	s := &Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}
