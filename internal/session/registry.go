package session

import (
	"github.com/mcoot/rpsduel-go/internal/model"
)

// participant is the live state held per registered display name.
type participant struct {
	conn   Conn
	choice model.Choice
}

// Registry maps display names to live connections and pending round choices.
//
// Not safe for concurrent use on its own: the coordinator serializes all
// access to it alongside the other session tables.
type Registry struct {
	participants map[model.ParticipantName]*participant
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[model.ParticipantName]*participant),
	}
}

// Register claims a display name for a connection. At most one live
// participant may hold a name; a second claim is rejected.
func (r *Registry) Register(name model.ParticipantName, conn Conn) error {
	if _, taken := r.participants[name]; taken {
		return model.ErrNameTaken
	}
	r.participants[name] = &participant{conn: conn}
	return nil
}

// Unregister releases a display name. No-op if absent.
func (r *Registry) Unregister(name model.ParticipantName) {
	delete(r.participants, name)
}

// IsOnline reports whether a name is currently registered
func (r *Registry) IsOnline(name model.ParticipantName) bool {
	_, ok := r.participants[name]
	return ok
}

// Conn returns the connection handle for a name
func (r *Registry) Conn(name model.ParticipantName) (Conn, bool) {
	p, ok := r.participants[name]
	if !ok {
		return nil, false
	}
	return p.conn, true
}

// SetChoice stores a participant's pending round choice. No-op if absent.
func (r *Registry) SetChoice(name model.ParticipantName, choice model.Choice) {
	if p, ok := r.participants[name]; ok {
		p.choice = choice
	}
}

// Choice peeks at a participant's pending choice without clearing it.
// Clearing is an explicit caller action so both sides of a resolved round
// are cleared together.
func (r *Registry) Choice(name model.ParticipantName) model.Choice {
	if p, ok := r.participants[name]; ok {
		return p.choice
	}
	return model.ChoiceNone
}

// ClearChoices resets the pending choice for each given name. Absent names
// are ignored.
func (r *Registry) ClearChoices(names ...model.ParticipantName) {
	for _, name := range names {
		if p, ok := r.participants[name]; ok {
			p.choice = model.ChoiceNone
		}
	}
}

// Count returns the number of registered participants
func (r *Registry) Count() int {
	return len(r.participants)
}

// Conns returns a snapshot of all live connection handles, for broadcast
// fan-out outside the coordinator's critical section.
func (r *Registry) Conns() []Conn {
	conns := make([]Conn, 0, len(r.participants))
	for _, p := range r.participants {
		conns = append(conns, p.conn)
	}
	return conns
}
