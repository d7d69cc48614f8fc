package storage

import (
	"context"

	"github.com/mcoot/rpsduel-go/internal/model"
)

// Storage defines the interface for data persistence. It backs the two
// collaborators the session core keeps at arm's length: the scoreboard and
// registered accounts. Live session state (registry, queue, lobbies,
// matches) is deliberately not stored here; it dies with the process.
type Storage interface {
	// Scoreboard operations
	IncrementWins(ctx context.Context, name model.ParticipantName) (int, error)
	GetWins(ctx context.Context, name model.ParticipantName) (int, error)
	TopScores(ctx context.Context, limit int) ([]model.ScoreRecord, error)

	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, name model.ParticipantName) (*model.Account, error)
}
