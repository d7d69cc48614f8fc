package model

import "time"

// ParticipantName uniquely identifies a connected participant.
// Names are case-sensitive and chosen at join time; at most one live
// participant may hold a given name.
type ParticipantName string

// Choice is a round submission from the rock/paper/scissors alphabet.
type Choice string

const (
	ChoiceRock     Choice = "rock"
	ChoicePaper    Choice = "paper"
	ChoiceScissors Choice = "scissors"

	// ChoiceNone is the zero pending choice.
	ChoiceNone Choice = ""
)

// Choices lists the three recognized symbols in a fixed order.
var Choices = []Choice{ChoiceRock, ChoicePaper, ChoiceScissors}

// Valid reports whether c is one of the three recognized symbols.
func (c Choice) Valid() bool {
	switch c {
	case ChoiceRock, ChoicePaper, ChoiceScissors:
		return true
	}
	return false
}

// Outcome is a round result from one participant's perspective.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeDraw Outcome = "draw"
)

// Mirror returns the outcome from the other participant's perspective.
func (o Outcome) Mirror() Outcome {
	switch o {
	case OutcomeWin:
		return OutcomeLose
	case OutcomeLose:
		return OutcomeWin
	}
	return OutcomeDraw
}

// ScoreRecord is a scoreboard entry: display name and accumulated wins.
type ScoreRecord struct {
	Name ParticipantName `json:"name"`
	Wins int             `json:"wins"`
}

// Account holds credentials for a registered display name.
// Stored separately from live session state; the session core never sees it.
type Account struct {
	Name         ParticipantName `json:"name"`
	PasswordHash string          `json:"password_hash"` // bcrypt hash
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
