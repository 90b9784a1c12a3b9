package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/hectoduel/hectoduel/internal/dependencies/clock"
	"github.com/hectoduel/hectoduel/internal/dependencies/random"
	"github.com/hectoduel/hectoduel/internal/services/duel"
	"github.com/hectoduel/hectoduel/internal/services/matchmaking"
	"github.com/hectoduel/hectoduel/internal/services/puzzle"
	"github.com/hectoduel/hectoduel/internal/services/rating"
	"github.com/hectoduel/hectoduel/internal/sse"
	"github.com/hectoduel/hectoduel/internal/storage"
	"github.com/hectoduel/hectoduel/internal/storage/memory"
	redisstorage "github.com/hectoduel/hectoduel/internal/storage/redis"
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
	RatingService   *rating.Service
	PuzzleGenerator puzzle.Generator
	DuelManager     *duel.Manager
	Coordinator     *matchmaking.Coordinator
	HubManager      *sse.HubManager
	Broadcaster     *sse.Broadcaster
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
	// DuelConfig holds duel timing parameters (optional)
	// If zero value, defaults to duel.DefaultConfig()
	DuelConfig duel.Config
	// MatchmakingConfig holds matchmaking parameters (optional)
	// If zero value, defaults to matchmaking.DefaultConfig()
	MatchmakingConfig matchmaking.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

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

	clk := clock.New()
	rnd := random.New()

	duelCfg := cfg.DuelConfig
	if duelCfg.TimeLimit == 0 {
		duelCfg = duel.DefaultConfig()
	}
	mmCfg := cfg.MatchmakingConfig
	if mmCfg.MatchTimeout == 0 {
		mmCfg = matchmaking.DefaultConfig()
	}

	generator := puzzle.New(rnd, logger)
	return newWithDependencies(store, clk, rnd, generator, duelCfg, mmCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	generator puzzle.Generator,
	duelCfg duel.Config,
	mmCfg matchmaking.Config,
	logger *slog.Logger,
) *App {
	ratingService := rating.New()
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	duelManager := duel.NewManager(store, ratingService, generator, broadcaster, clk, duelCfg, logger)
	coordinator := matchmaking.New(duelManager, broadcaster, clk, mmCfg, logger)

	// Connection presence drives disconnect grace in live duels
	hubManager.SetPresenceListener(duelManager)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		RatingService:   ratingService,
		PuzzleGenerator: generator,
		DuelManager:     duelManager,
		Coordinator:     coordinator,
		HubManager:      hubManager,
		Broadcaster:     broadcaster,
	}
}

// Start launches the actor loops. Call Stop to shut them down.
func (a *App) Start() {
	go a.DuelManager.Run()
	go a.Coordinator.Run()
}

// Stop shuts down the actor loops
func (a *App) Stop() {
	a.Coordinator.Stop()
	a.DuelManager.Stop()
}
