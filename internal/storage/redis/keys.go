package redis

import (
	"fmt"

	"github.com/seedytypey/raceserver/internal/model"
)

// Key prefix for all race server data
const keyPrefix = "typerace"

// sessionKey returns the Redis key for a PlayerSession
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionIndexKey returns the Redis key for the SET of known session ids
func sessionIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// quotesKey returns the Redis key for the quote list
func quotesKey() string {
	return fmt.Sprintf("%s:quotes", keyPrefix)
}
