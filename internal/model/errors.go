package model

import "errors"

// Common errors used across the application
var (
	// Registry errors
	ErrInvalidName   = errors.New("display name is empty")
	ErrNameTaken     = errors.New("display name already in use")
	ErrNotRegistered = errors.New("participant is not registered")

	// Lobby errors
	ErrLobbyNotFound = errors.New("lobby not found")
	ErrLobbySelfJoin = errors.New("cannot join your own lobby")
	ErrLobbyFull     = errors.New("lobby already has a guest")

	// Match errors
	ErrAlreadyMatched = errors.New("participant already has an opponent")
	ErrNoMatch        = errors.New("participant has no active match")

	// Round errors
	ErrInvalidChoice = errors.New("choice is not a recognized symbol")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")
)
