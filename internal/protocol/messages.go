// Package protocol defines the wire messages exchanged with participants.
// Each message carries a discriminant type tag and a tag-specific payload.
package protocol

import "github.com/mcoot/rpsduel-go/internal/model"

// Inbound message types (client -> server)
const (
	TypeJoin          = "join"
	TypeQuickMatch    = "quick_match"
	TypePlayComputer  = "play_computer"
	TypeCreatePrivate = "create_private_game"
	TypeJoinPrivate   = "join_private_game"
	TypeSubmitChoice  = "submit_choice"
	TypeSetReady      = "set_ready"
	TypeLeave         = "leave"
)

// Outbound message types (server -> client)
const (
	TypeJoined       = "joined"
	TypeError        = "error"
	TypeMatchFound   = "match_found"
	TypeLobbyCreated = "lobby_created"
	TypeRoundResult  = "round_result"
	TypeOpponentLeft = "opponent_left"
	TypeNewRound     = "new_round"
	TypeOnlineCount  = "online_count"
	TypeRankings     = "rankings"
)

// AutomatedOpponentName is the display value used for the automated opponent
// in outbound payloads. It is presentation only; the session core tracks the
// automated opponent as a tagged variant, never by this string.
const AutomatedOpponentName = "computer"

// ClientMessage is an inbound unit. Fields beyond Type are tag-specific.
type ClientMessage struct {
	Type       string `json:"type"`
	Name       string `json:"name,omitempty"`        // join
	AuthToken  string `json:"auth_token,omitempty"`  // join (registered names)
	LobbyToken string `json:"lobby_token,omitempty"` // join_private_game
	Choice     string `json:"choice,omitempty"`      // submit_choice
	Ready      *bool  `json:"ready,omitempty"`       // set_ready
}

// ServerMessage is an outbound unit. Fields beyond Type are tag-specific.
type ServerMessage struct {
	Type           string         `json:"type"`
	Name           string         `json:"name,omitempty"`
	Code           string         `json:"code,omitempty"`
	Message        string         `json:"message,omitempty"`
	Opponent       string         `json:"opponent,omitempty"`
	LobbyToken     string         `json:"lobby_token,omitempty"`
	Outcome        string         `json:"outcome,omitempty"`
	Choice         string         `json:"choice,omitempty"`
	OpponentChoice string         `json:"opponent_choice,omitempty"`
	Count          int            `json:"count,omitempty"`
	Rankings       []RankingEntry `json:"rankings,omitempty"`
}

// RankingEntry is one row of a rankings broadcast.
type RankingEntry struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// Joined acknowledges a successful join.
func Joined(name model.ParticipantName) ServerMessage {
	return ServerMessage{Type: TypeJoined, Name: string(name)}
}

// MatchFound notifies a participant of their new opponent.
func MatchFound(opponent model.Opponent) ServerMessage {
	return ServerMessage{Type: TypeMatchFound, Opponent: OpponentName(opponent)}
}

// LobbyCreated delivers a freshly minted lobby token to its host.
func LobbyCreated(token model.LobbyToken) ServerMessage {
	return ServerMessage{Type: TypeLobbyCreated, LobbyToken: string(token)}
}

// RoundResult reports a resolved round from the recipient's perspective.
func RoundResult(outcome model.Outcome, own, theirs model.Choice, opponent model.Opponent) ServerMessage {
	return ServerMessage{
		Type:           TypeRoundResult,
		Outcome:        string(outcome),
		Choice:         string(own),
		OpponentChoice: string(theirs),
		Opponent:       OpponentName(opponent),
	}
}

// OpponentLeft notifies the surviving side of a torn-down match.
func OpponentLeft() ServerMessage {
	return ServerMessage{Type: TypeOpponentLeft}
}

// NewRound signals both sides to start another round of the same match.
func NewRound() ServerMessage {
	return ServerMessage{Type: TypeNewRound}
}

// OnlineCount reports the current number of registered participants.
func OnlineCount(count int) ServerMessage {
	return ServerMessage{Type: TypeOnlineCount, Count: count}
}

// Rankings carries a scoreboard snapshot.
func Rankings(records []model.ScoreRecord) ServerMessage {
	entries := make([]RankingEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, RankingEntry{Name: string(r.Name), Wins: r.Wins})
	}
	return ServerMessage{Type: TypeRankings, Rankings: entries}
}

// OpponentName renders an opponent for outbound payloads.
func OpponentName(o model.Opponent) string {
	if o.IsAutomated() {
		return AutomatedOpponentName
	}
	return string(o.Name)
}
