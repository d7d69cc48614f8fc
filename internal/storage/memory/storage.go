package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/rpsduel-go/internal/model"
	"github.com/mcoot/rpsduel-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	wins     map[model.ParticipantName]int
	accounts map[model.ParticipantName]*model.Account
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		wins:     make(map[model.ParticipantName]int),
		accounts: make(map[model.ParticipantName]*model.Account),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Scoreboard operations

func (s *Storage) IncrementWins(ctx context.Context, name model.ParticipantName) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wins[name]++
	return s.wins[name], nil
}

func (s *Storage) GetWins(ctx context.Context, name model.ParticipantName) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wins[name], nil
}

func (s *Storage) TopScores(ctx context.Context, limit int) ([]model.ScoreRecord, error) {
	s.mu.RLock()
	records := make([]model.ScoreRecord, 0, len(s.wins))
	for name, wins := range s.wins {
		records = append(records, model.ScoreRecord{Name: name, Wins: wins})
	}
	s.mu.RUnlock()

	// Descending by wins, name ascending as tiebreak for a stable ranking
	sort.Slice(records, func(i, j int) bool {
		if records[i].Wins != records[j].Wins {
			return records[i].Wins > records[j].Wins
		}
		return records[i].Name < records[j].Name
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.Name] = account
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, name model.ParticipantName) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[name]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}
