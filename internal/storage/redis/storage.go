package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/rpsduel-go/internal/model"
	"github.com/mcoot/rpsduel-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Win counts live in a single sorted set so ranked reads are one ZREVRANGE.
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

// Scoreboard operations

func (s *Storage) IncrementWins(ctx context.Context, name model.ParticipantName) (int, error) {
	total, err := s.client.ZIncrBy(ctx, scoreboardKey(), 1, string(name)).Result()
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (s *Storage) GetWins(ctx context.Context, name model.ParticipantName) (int, error) {
	score, err := s.client.ZScore(ctx, scoreboardKey(), string(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return int(score), nil
}

func (s *Storage) TopScores(ctx context.Context, limit int) ([]model.ScoreRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	entries, err := s.client.ZRevRangeWithScores(ctx, scoreboardKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	records := make([]model.ScoreRecord, 0, len(entries))
	for _, e := range entries {
		name, ok := e.Member.(string)
		if !ok {
			continue
		}
		records = append(records, model.ScoreRecord{
			Name: model.ParticipantName(name),
			Wins: int(e.Score),
		})
	}
	return records, nil
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, accountKey(account.Name), data, 0).Err()
}

func (s *Storage) GetAccount(ctx context.Context, name model.ParticipantName) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}
