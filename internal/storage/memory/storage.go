package memory

import (
	"context"
	"sync"

	"github.com/seedytypey/raceserver/internal/model"
	"github.com/seedytypey/raceserver/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions map[model.SessionID]*model.PlayerSession
	quotes   []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions: make(map[model.SessionID]*model.PlayerSession),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.PlayerSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.PlayerSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) SessionCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// Quote operations

func (s *Storage) SaveQuotes(ctx context.Context, quotes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = make([]string, len(quotes))
	copy(s.quotes, quotes)
	return nil
}

func (s *Storage) GetQuotes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.quotes == nil {
		return nil, model.ErrQuotesNotLoaded
	}
	result := make([]string, len(s.quotes))
	copy(result, s.quotes)
	return result, nil
}
