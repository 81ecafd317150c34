package model

import "time"

// SessionID uniquely identifies a player identity across reconnects
type SessionID string

// ConnectionID uniquely identifies a live transport connection
type ConnectionID string

// DefaultDisplayName is used when a client identifies without a name
const DefaultDisplayName = "Player"

// DefaultAvatarID is used when a client identifies without a character
const DefaultAvatarID = "happy"

// PlayerSession is a durable player identity keyed by a client-generated id.
// Created on first identify, updated on every later identify from the same id
// and at race completion. Never deleted while the server runs.
type PlayerSession struct {
	ID          SessionID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarID    string    `json:"avatar_id"`
	GamesPlayed int       `json:"games_played"`
	Wins        int       `json:"wins"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// RoomPlayer is the live, per-connection view of a race participant.
// The session reference is lookup-only; the connection does not own it.
type RoomPlayer struct {
	ConnectionID ConnectionID
	SessionID    SessionID
	DisplayName  string
	AvatarID     string // snapshot, may lag the session if updated mid-race
	Ready        bool
	Progress     int // 0-100, client-reported
	WPM          int
	Accuracy     int
	Finished     bool
	// FinishOffsetMillis is time since race start when the player first
	// reached 100% progress; nil until then.
	FinishOffsetMillis *int64
	// Disconnected marks a player who left mid-race. The slot stays in the
	// roster with frozen progress until the race resolves.
	Disconnected bool
	JoinedAt     time.Time
}

// InitialAccuracy is the accuracy value before any report arrives
const InitialAccuracy = 100

// ResetForRace clears the per-race fields ahead of a new race
func (p *RoomPlayer) ResetForRace() {
	p.Progress = 0
	p.WPM = 0
	p.Finished = false
	p.FinishOffsetMillis = nil
}
