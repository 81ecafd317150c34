package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seedytypey/raceserver/internal/model"
	"github.com/seedytypey/raceserver/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.PlayerSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, sessionIndexKey(), string(session.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.PlayerSession, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.PlayerSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SessionCount reports how many sessions have ever been saved. Index
// members are not pruned when a session key expires, so the count may
// slightly overstate live sessions. It is a diagnostic, not an invariant.
func (s *Storage) SessionCount(ctx context.Context) (int, error) {
	count, err := s.client.SCard(ctx, sessionIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Quote operations

func (s *Storage) SaveQuotes(ctx context.Context, quotes []string) error {
	key := quotesKey()

	// Replace the quote list atomically
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)

	if len(quotes) > 0 {
		// Convert []string to []interface{} for RPush
		values := make([]interface{}, len(quotes))
		for i, q := range quotes {
			values[i] = q
		}
		pipe.RPush(ctx, key, values...)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetQuotes(ctx context.Context) ([]string, error) {
	quotes, err := s.client.LRange(ctx, quotesKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, model.ErrQuotesNotLoaded
	}
	return quotes, nil
}
