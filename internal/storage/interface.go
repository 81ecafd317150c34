package storage

import (
	"context"

	"github.com/seedytypey/raceserver/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.PlayerSession) error
	GetSession(ctx context.Context, id model.SessionID) (*model.PlayerSession, error)
	SessionCount(ctx context.Context) (int, error)

	// Quote operations
	SaveQuotes(ctx context.Context, quotes []string) error
	GetQuotes(ctx context.Context) ([]string, error)
}
