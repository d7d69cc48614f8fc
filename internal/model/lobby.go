package model

import "time"

// LobbyToken is the capability for joining a private lobby. It is the only
// credential needed to join, so tokens are long and generated from
// crypto-grade randomness.
type LobbyToken string

// Lobby is a single-use pairing request: one host waiting for exactly one
// guest. A lobby is consumed (removed) the moment a guest joins.
type Lobby struct {
	Token     LobbyToken
	Host      ParticipantName
	CreatedAt time.Time
}
