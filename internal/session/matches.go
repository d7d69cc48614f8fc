package session

import (
	"github.com/mcoot/rpsduel-go/internal/model"
)

// MatchTable is the source of truth for who is paired with whom. A match
// between two humans is two symmetric entries; a match against the
// automated opponent is a single entry with no reciprocal, since the
// automated side is never looked up as a live participant.
//
// Not safe for concurrent use on its own; the coordinator serializes access.
type MatchTable struct {
	opponents map[model.ParticipantName]model.Opponent
}

// NewMatchTable creates an empty match table
func NewMatchTable() *MatchTable {
	return &MatchTable{
		opponents: make(map[model.ParticipantName]model.Opponent),
	}
}

// Pair installs the symmetric entries for a human-vs-human match. It fails
// if either side already has an opponent; overwriting would orphan the
// previous opponent's entry.
func (t *MatchTable) Pair(a, b model.ParticipantName) error {
	if _, ok := t.opponents[a]; ok {
		return model.ErrAlreadyMatched
	}
	if _, ok := t.opponents[b]; ok {
		return model.ErrAlreadyMatched
	}
	t.opponents[a] = model.HumanOpponent(b)
	t.opponents[b] = model.HumanOpponent(a)
	return nil
}

// PairAutomated matches a participant against the automated opponent
func (t *MatchTable) PairAutomated(name model.ParticipantName) error {
	if _, ok := t.opponents[name]; ok {
		return model.ErrAlreadyMatched
	}
	t.opponents[name] = model.AutomatedOpponent()
	return nil
}

// OpponentOf returns the current opponent of a name, if any
func (t *MatchTable) OpponentOf(name model.ParticipantName) (model.Opponent, bool) {
	opponent, ok := t.opponents[name]
	return opponent, ok
}

// Unpair removes a participant's match, both directed entries for a human
// pairing. Idempotent.
func (t *MatchTable) Unpair(name model.ParticipantName) {
	opponent, ok := t.opponents[name]
	if !ok {
		return
	}
	delete(t.opponents, name)
	if !opponent.IsAutomated() {
		delete(t.opponents, opponent.Name)
	}
}

// Len returns the number of directed match entries
func (t *MatchTable) Len() int {
	return len(t.opponents)
}
