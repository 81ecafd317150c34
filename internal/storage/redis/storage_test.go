package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/seedytypey/raceserver/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	session := &model.PlayerSession{
		ID:          "session-1",
		DisplayName: "Alice",
		AvatarID:    "happy",
		GamesPlayed: 4,
		Wins:        2,
		CreatedAt:   time.Now(),
	}

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(session.ID, retrieved.ID)
	s.Equal(session.DisplayName, retrieved.DisplayName)
	s.Equal(session.Wins, retrieved.Wins)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSessionTTL() {
	session := &model.PlayerSession{ID: "session-1", DisplayName: "Alice"}
	_ = s.storage.SaveSession(s.ctx, session)

	ttl := s.mini.TTL(sessionKey(session.ID))
	s.True(ttl > 0, "Session should have TTL")
}

func (s *StorageSuite) TestSessionCount() {
	count, err := s.storage.SessionCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)

	_ = s.storage.SaveSession(s.ctx, &model.PlayerSession{ID: "session-1"})
	_ = s.storage.SaveSession(s.ctx, &model.PlayerSession{ID: "session-2"})
	// Re-saving the same id must not inflate the count
	_ = s.storage.SaveSession(s.ctx, &model.PlayerSession{ID: "session-1"})

	count, err = s.storage.SessionCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

// Quote tests

func (s *StorageSuite) TestSaveAndGetQuotes() {
	quotes := []string{
		"The quick brown fox jumps over the lazy dog.",
		"Pack my box with five dozen liquor jugs.",
	}

	err := s.storage.SaveQuotes(s.ctx, quotes)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetQuotes(s.ctx)
	s.Require().NoError(err)
	s.Equal(quotes, retrieved) // Order preserved (LIST)
}

func (s *StorageSuite) TestGetQuotesNotLoaded() {
	_, err := s.storage.GetQuotes(s.ctx)
	s.ErrorIs(err, model.ErrQuotesNotLoaded)
}

func (s *StorageSuite) TestSaveQuotesReplacesExisting() {
	_ = s.storage.SaveQuotes(s.ctx, []string{"old quote one", "old quote two"})
	_ = s.storage.SaveQuotes(s.ctx, []string{"new quote"})

	retrieved, err := s.storage.GetQuotes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"new quote"}, retrieved)
}

func (s *StorageSuite) TestQuotesNoTTL() {
	_ = s.storage.SaveQuotes(s.ctx, []string{"a quote"})

	ttl := s.mini.TTL(quotesKey())
	s.Equal(time.Duration(0), ttl, "Quotes should not have TTL")
}
