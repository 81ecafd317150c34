package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNotIdentified   = errors.New("connection has not identified")

	// Room errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrRoomNotJoinable = errors.New("room is not accepting players")
	ErrAlreadyInRoom   = errors.New("player is already in a room")
	ErrNotInRoom       = errors.New("player is not in a room")
	ErrRoomCreation    = errors.New("could not allocate a unique room code")

	// Race errors
	ErrNotHost             = errors.New("player is not the host")
	ErrInsufficientPlayers = errors.New("not enough players to start race")
	ErrRaceNotFinished     = errors.New("race is not finished")
	ErrWrongRoomStatus     = errors.New("action not valid for current room status")

	// Quote errors
	ErrQuotesNotLoaded = errors.New("no quotes loaded")
)
