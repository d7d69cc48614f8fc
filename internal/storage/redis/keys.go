package redis

import (
	"fmt"

	"github.com/mcoot/rpsduel-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "rpsduel"

// scoreboardKey returns the Redis key for the win-count sorted set
func scoreboardKey() string {
	return fmt.Sprintf("%s:scoreboard", keyPrefix)
}

// accountKey returns the Redis key for an Account
func accountKey(name model.ParticipantName) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, name)
}
