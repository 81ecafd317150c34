package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/seedytypey/raceserver/internal/dependencies/clock"
	"github.com/seedytypey/raceserver/internal/dependencies/random"
	"github.com/seedytypey/raceserver/internal/services/quotes"
	"github.com/seedytypey/raceserver/internal/services/race"
	"github.com/seedytypey/raceserver/internal/services/room"
	"github.com/seedytypey/raceserver/internal/services/session"
	"github.com/seedytypey/raceserver/internal/storage"
	"github.com/seedytypey/raceserver/internal/storage/memory"
	redisstorage "github.com/seedytypey/raceserver/internal/storage/redis"
	"github.com/seedytypey/raceserver/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	QuoteService   *quotes.Service
	SessionService *session.Service
	RoomDirectory  *room.Directory
	Coordinator    *race.Coordinator

	// Websocket plumbing
	Hub         *ws.Hub
	Broadcaster *ws.Broadcaster
	Gateway     *ws.Gateway
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RaceConfig holds race timing settings (optional)
	// If zero value, defaults to race.DefaultConfig()
	RaceConfig race.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default race config if not provided
	raceCfg := cfg.RaceConfig
	if raceCfg.TickInterval == 0 {
		raceCfg = race.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, raceCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, raceCfg race.Config, logger *slog.Logger) *App {
	// Create services
	quoteService := quotes.New(store, rnd)
	sessionService := session.New(store, clk, rnd, logger)
	roomDirectory := room.NewDirectory(quoteService, clk, rnd, logger)

	// Create websocket plumbing; the hub's run loop is started by the caller
	hub := ws.NewHub(logger)
	broadcaster := ws.NewBroadcaster(hub, logger)

	coordinator := race.NewCoordinator(raceCfg, roomDirectory, sessionService, quoteService, clk, broadcaster, logger)
	gateway := ws.NewGateway(coordinator, sessionService, hub, broadcaster, rnd, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		QuoteService:   quoteService,
		SessionService: sessionService,
		RoomDirectory:  roomDirectory,
		Coordinator:    coordinator,
		Hub:            hub,
		Broadcaster:    broadcaster,
		Gateway:        gateway,
	}
}
