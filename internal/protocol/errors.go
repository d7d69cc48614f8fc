package protocol

import (
	"errors"

	"github.com/mcoot/rpsduel-go/internal/model"
)

// Error codes for typed error notifications
const (
	CodeInvalidName    = "INVALID_NAME"
	CodeNameTaken      = "NAME_TAKEN"
	CodeNotRegistered  = "NOT_REGISTERED"
	CodeLobbyNotFound  = "LOBBY_NOT_FOUND"
	CodeLobbySelfJoin  = "LOBBY_SELF_JOIN"
	CodeLobbyFull      = "LOBBY_FULL"
	CodeAlreadyMatched = "ALREADY_MATCHED"
	CodeNoMatch        = "NO_MATCH"
	CodeInvalidChoice  = "INVALID_CHOICE"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInternal       = "INTERNAL_ERROR"
)

// Error builds a typed error notification.
func Error(code, message string) ServerMessage {
	return ServerMessage{Type: TypeError, Code: code, Message: message}
}

// FromError maps a session error to the typed error notification sent to the
// offending participant. Unrecognized errors map to an internal error so
// collaborator failures never leak detail onto the wire.
func FromError(err error) ServerMessage {
	switch {
	case errors.Is(err, model.ErrInvalidName):
		return Error(CodeInvalidName, "display name must not be empty")
	case errors.Is(err, model.ErrNameTaken):
		return Error(CodeNameTaken, "display name already in use")
	case errors.Is(err, model.ErrNotRegistered):
		return Error(CodeNotRegistered, "join before sending commands")
	case errors.Is(err, model.ErrLobbyNotFound):
		return Error(CodeLobbyNotFound, "no lobby with that token")
	case errors.Is(err, model.ErrLobbySelfJoin):
		return Error(CodeLobbySelfJoin, "cannot join your own lobby")
	case errors.Is(err, model.ErrLobbyFull):
		return Error(CodeLobbyFull, "lobby already has a guest")
	case errors.Is(err, model.ErrAlreadyMatched):
		return Error(CodeAlreadyMatched, "already in a match")
	case errors.Is(err, model.ErrNoMatch):
		return Error(CodeNoMatch, "no active match")
	case errors.Is(err, model.ErrInvalidChoice):
		return Error(CodeInvalidChoice, "choice must be rock, paper or scissors")
	default:
		return Error(CodeInternal, "internal error")
	}
}
