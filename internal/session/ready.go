package session

import (
	"github.com/mcoot/rpsduel-go/internal/model"
)

// ReadyNegotiator tracks each participant's vote to continue after a round
// resolves. Votes default to false, are reset to false when both sides
// agree to continue, and are destroyed with the match.
//
// A "false" vote is not stored: it is an explicit intent to leave and tears
// the match down immediately, so only positive votes need tracking.
//
// Not safe for concurrent use on its own; the coordinator serializes access.
type ReadyNegotiator struct {
	votes map[model.ParticipantName]bool
}

// NewReadyNegotiator creates an empty negotiator
func NewReadyNegotiator() *ReadyNegotiator {
	return &ReadyNegotiator{
		votes: make(map[model.ParticipantName]bool),
	}
}

// SetVote records a participant's continue vote
func (n *ReadyNegotiator) SetVote(name model.ParticipantName, wantsContinue bool) {
	if !wantsContinue {
		delete(n.votes, name)
		return
	}
	n.votes[name] = true
}

// Vote returns a participant's current continue vote
func (n *ReadyNegotiator) Vote(name model.ParticipantName) bool {
	return n.votes[name]
}

// Clear drops any votes for the given names. Used on match teardown.
func (n *ReadyNegotiator) Clear(names ...model.ParticipantName) {
	for _, name := range names {
		delete(n.votes, name)
	}
}
