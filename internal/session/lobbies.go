package session

import (
	"github.com/mcoot/rpsduel-go/internal/dependencies/clock"
	"github.com/mcoot/rpsduel-go/internal/dependencies/random"
	"github.com/mcoot/rpsduel-go/internal/model"
)

const (
	// lobbyTokenLength is long enough that tokens work as unguessable
	// capabilities; the token is the only credential needed to join.
	lobbyTokenLength   = 24
	lobbyTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// LobbyManager tracks open private-lobby pairing requests by token.
// A lobby is single-use: it is deleted the moment it is consumed into a
// match, so a token can never pair a second guest.
//
// Not safe for concurrent use on its own; the coordinator serializes access.
type LobbyManager struct {
	lobbies map[model.LobbyToken]*model.Lobby
	random  random.Random
	clock   clock.Clock
}

// NewLobbyManager creates an empty lobby manager
func NewLobbyManager(rnd random.Random, clk clock.Clock) *LobbyManager {
	return &LobbyManager{
		lobbies: make(map[model.LobbyToken]*model.Lobby),
		random:  rnd,
		clock:   clk,
	}
}

// Create opens a lobby hosted by the given name and returns it
func (m *LobbyManager) Create(host model.ParticipantName) *model.Lobby {
	var token model.LobbyToken
	for {
		token = model.LobbyToken(m.random.String(lobbyTokenLength, lobbyTokenAlphabet))
		if _, exists := m.lobbies[token]; !exists {
			break
		}
	}

	lobby := &model.Lobby{
		Token:     token,
		Host:      host,
		CreatedAt: m.clock.Now(),
	}
	m.lobbies[token] = lobby
	return lobby
}

// Get looks up an open lobby by token
func (m *LobbyManager) Get(token model.LobbyToken) (*model.Lobby, bool) {
	lobby, ok := m.lobbies[token]
	return lobby, ok
}

// Consume removes a lobby once it has been turned into a match
func (m *LobbyManager) Consume(token model.LobbyToken) {
	delete(m.lobbies, token)
}

// RemoveHostedBy drops every open lobby hosted by the given name. Called on
// leave/disconnect so a departed host leaves no joinable garbage behind.
func (m *LobbyManager) RemoveHostedBy(name model.ParticipantName) {
	for token, lobby := range m.lobbies {
		if lobby.Host == name {
			delete(m.lobbies, token)
		}
	}
}

// Len returns the number of open lobbies
func (m *LobbyManager) Len() int {
	return len(m.lobbies)
}
