// Package factory wires the application's components together.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/rpsduel-go/internal/account"
	"github.com/mcoot/rpsduel-go/internal/dependencies/clock"
	"github.com/mcoot/rpsduel-go/internal/dependencies/random"
	"github.com/mcoot/rpsduel-go/internal/scoreboard"
	"github.com/mcoot/rpsduel-go/internal/session"
	"github.com/mcoot/rpsduel-go/internal/storage"
	"github.com/mcoot/rpsduel-go/internal/storage/memory"
	redisstorage "github.com/mcoot/rpsduel-go/internal/storage/redis"
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
	Scoreboard  *scoreboard.Service
	Accounts    *account.Service
	Coordinator *session.Coordinator
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
	// AccountConfig holds configuration for the account service (optional)
	// If zero value, defaults to account.DefaultConfig()
	AccountConfig account.Config
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

	accountCfg := cfg.AccountConfig
	if accountCfg.SessionDuration == 0 {
		accountCfg = account.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, accountCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, accountCfg account.Config, logger *slog.Logger) *App {
	scoreboardService := scoreboard.New(store, logger)
	accountService := account.New(store, clk, accountCfg, logger)
	coordinator := session.New(session.Config{
		Scoreboard: scoreboardService,
		Authorizer: accountService,
		Random:     rnd,
		Clock:      clk,
		Logger:     logger,
	})

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Scoreboard:  scoreboardService,
		Accounts:    accountService,
		Coordinator: coordinator,
	}
}
