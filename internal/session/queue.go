package session

import (
	"slices"

	"github.com/mcoot/rpsduel-go/internal/model"
)

// Queue is the FIFO quick-match queue: names waiting for an unspecified
// opponent, oldest first.
//
// Not safe for concurrent use on its own; the coordinator serializes access.
type Queue struct {
	names []model.ParticipantName
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a name. No-op if the name is already waiting.
func (q *Queue) Enqueue(name model.ParticipantName) {
	if q.Contains(name) {
		return
	}
	q.names = append(q.names, name)
}

// Remove drops a name from the queue. Removing an absent name is a no-op.
func (q *Queue) Remove(name model.ParticipantName) {
	if i := slices.Index(q.names, name); i >= 0 {
		q.names = slices.Delete(q.names, i, i+1)
	}
}

// Contains reports whether a name is waiting
func (q *Queue) Contains(name model.ParticipantName) bool {
	return slices.Contains(q.names, name)
}

// Len returns the number of waiting names
func (q *Queue) Len() int {
	return len(q.names)
}

// DrainPairs forms matches from the queue in strict FIFO order. Names for
// which online reports false are silently dropped; survivors are paired
// oldest-first. An unpaired survivor stays at the head of the queue.
func (q *Queue) DrainPairs(online func(model.ParticipantName) bool) [][2]model.ParticipantName {
	survivors := q.names[:0:0]
	for _, name := range q.names {
		if online(name) {
			survivors = append(survivors, name)
		}
	}

	var pairs [][2]model.ParticipantName
	for len(survivors) >= 2 {
		pairs = append(pairs, [2]model.ParticipantName{survivors[0], survivors[1]})
		survivors = survivors[2:]
	}

	q.names = slices.Clone(survivors)
	return pairs
}
