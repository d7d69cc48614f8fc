// Package scoreboard owns persistent win counts and ranking queries.
// The session core only asks for increments and ranked reads; storage
// choice (memory or Redis) is hidden behind the storage interface.
package scoreboard

import (
	"context"
	"log/slog"

	"github.com/mcoot/rpsduel-go/internal/model"
	"github.com/mcoot/rpsduel-go/internal/storage"
)

// DefaultRankingLimit bounds ranking broadcasts and API reads.
const DefaultRankingLimit = 10

// Service provides win tracking and rankings over a storage backend
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new scoreboard service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "scoreboard")),
	}
}

// RecordWin increments the win count for a participant
func (s *Service) RecordWin(ctx context.Context, name model.ParticipantName) error {
	total, err := s.storage.IncrementWins(ctx, name)
	if err != nil {
		return err
	}
	s.logger.Debug("win recorded",
		slog.String("name", string(name)),
		slog.Int("total", total))
	return nil
}

// WinsFor returns the current win count for a participant
func (s *Service) WinsFor(ctx context.Context, name model.ParticipantName) (int, error) {
	return s.storage.GetWins(ctx, name)
}

// Rankings returns the top scores in descending order. A non-positive limit
// falls back to DefaultRankingLimit.
func (s *Service) Rankings(ctx context.Context, limit int) ([]model.ScoreRecord, error) {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	return s.storage.TopScores(ctx, limit)
}
