package ws

import (
	"errors"

	"github.com/seedytypey/raceserver/internal/model"
)

// errorMessage converts a service error into the human-readable text sent
// back to the originating connection. Unknown errors get a generic
// message rather than leaking internals.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrNotIdentified):
		return "You must identify before joining a room"
	case errors.Is(err, model.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, model.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, model.ErrRoomNotJoinable):
		return "Room is not accepting players right now"
	case errors.Is(err, model.ErrAlreadyInRoom):
		return "You are already in a room"
	case errors.Is(err, model.ErrNotInRoom):
		return "You are not in a room"
	case errors.Is(err, model.ErrNotHost):
		return "Only the host can start the race"
	case errors.Is(err, model.ErrInsufficientPlayers):
		return "At least 2 players are needed to start"
	case errors.Is(err, model.ErrWrongRoomStatus):
		return "That action is not available right now"
	case errors.Is(err, model.ErrRaceNotFinished):
		return "The race has not finished yet"
	case errors.Is(err, model.ErrRoomCreation):
		return "Could not create a room, please try again"
	default:
		return "Something went wrong, please try again"
	}
}
