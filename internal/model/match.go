package model

// OpponentKind distinguishes a human opponent from the automated one.
type OpponentKind string

const (
	OpponentHuman     OpponentKind = "human"
	OpponentAutomated OpponentKind = "automated"
)

// Opponent is one side of a match as seen by the other side. The automated
// opponent is an explicit variant rather than a sentinel name, so every
// lookup site has to handle it.
type Opponent struct {
	Kind OpponentKind
	Name ParticipantName // empty for the automated opponent
}

// HumanOpponent returns an Opponent referring to a registered participant.
func HumanOpponent(name ParticipantName) Opponent {
	return Opponent{Kind: OpponentHuman, Name: name}
}

// AutomatedOpponent returns the automated opponent variant.
func AutomatedOpponent() Opponent {
	return Opponent{Kind: OpponentAutomated}
}

// IsAutomated reports whether o is the automated opponent.
func (o Opponent) IsAutomated() bool {
	return o.Kind == OpponentAutomated
}
