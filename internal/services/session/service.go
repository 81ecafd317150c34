package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/seedytypey/raceserver/internal/dependencies/clock"
	"github.com/seedytypey/raceserver/internal/dependencies/random"
	"github.com/seedytypey/raceserver/internal/model"
	"github.com/seedytypey/raceserver/internal/storage"
)

// Alphabet for minted session ids
const sessionIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// sessionIDLength is the length of minted session ids
const sessionIDLength = 16

// Service manages durable player identities
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new session service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// Identify upserts a player identity. A client may present an id from a
// previous visit; if the id is unknown or absent a fresh one is minted.
// Blank name and avatar fall back to defaults.
func (s *Service) Identify(ctx context.Context, id model.SessionID, displayName, avatarID string) (*model.PlayerSession, error) {
	if displayName == "" {
		displayName = model.DefaultDisplayName
	}
	if avatarID == "" {
		avatarID = model.DefaultAvatarID
	}

	now := s.clock.Now()

	if id != "" {
		existing, err := s.storage.GetSession(ctx, id)
		if err == nil {
			existing.DisplayName = displayName
			existing.AvatarID = avatarID
			existing.LastSeenAt = now
			if err := s.storage.SaveSession(ctx, existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
		if !errors.Is(err, model.ErrSessionNotFound) {
			return nil, err
		}
	}

	session := &model.PlayerSession{
		ID:          s.mintID(id),
		DisplayName: displayName,
		AvatarID:    avatarID,
		CreatedAt:   now,
		LastSeenAt:  now,
	}
	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("new session created",
		slog.String("session_id", string(session.ID)),
		slog.String("display_name", session.DisplayName),
	)
	return session, nil
}

// mintID keeps a client-supplied id if present so the client's stored
// identity stays stable, otherwise generates a fresh random id.
func (s *Service) mintID(requested model.SessionID) model.SessionID {
	if requested != "" {
		return requested
	}
	return model.SessionID(s.random.String(sessionIDLength, sessionIDAlphabet))
}

// Get looks up a session by id
func (s *Service) Get(ctx context.Context, id model.SessionID) (*model.PlayerSession, error) {
	return s.storage.GetSession(ctx, id)
}

// UpdateProfile changes the stored display name and/or avatar. Empty
// arguments leave the corresponding field unchanged.
func (s *Service) UpdateProfile(ctx context.Context, id model.SessionID, displayName, avatarID string) (*model.PlayerSession, error) {
	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if displayName != "" {
		session.DisplayName = displayName
	}
	if avatarID != "" {
		session.AvatarID = avatarID
	}
	session.LastSeenAt = s.clock.Now()
	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RecordRaceOutcome bumps the games-played counter, and the win counter if
// the player won. An unknown id is a silent no-op; race bookkeeping must not
// fail because an identity expired.
func (s *Service) RecordRaceOutcome(ctx context.Context, id model.SessionID, won bool) error {
	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	session.GamesPlayed++
	if won {
		session.Wins++
	}
	session.LastSeenAt = s.clock.Now()
	return s.storage.SaveSession(ctx, session)
}

// Count reports how many sessions are known
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.storage.SessionCount(ctx)
}
