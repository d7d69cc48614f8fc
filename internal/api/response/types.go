package response

import (
	"time"

	"github.com/mcoot/rpsduel-go/internal/account"
	"github.com/mcoot/rpsduel-go/internal/model"
)

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Name         string    `json:"name"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *account.Session) AuthResponse {
	return AuthResponse{
		Name:         string(s.Name),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// RankingEntry is one row in a rankings response
type RankingEntry struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// RankingsResponse is the response for the rankings endpoint
type RankingsResponse struct {
	Rankings []RankingEntry `json:"rankings"`
}

// RankingsFromRecords converts score records to a rankings response
func RankingsFromRecords(records []model.ScoreRecord) RankingsResponse {
	entries := make([]RankingEntry, len(records))
	for i, r := range records {
		entries[i] = RankingEntry{Name: string(r.Name), Wins: r.Wins}
	}
	return RankingsResponse{Rankings: entries}
}
