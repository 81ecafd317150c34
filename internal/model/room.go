package model

import "time"

// RoomID identifies a race arena. The public matchmaking room uses the
// literal id "public"; private rooms use a random 6-character code.
type RoomID string

// PublicRoomID is the id of the single public matchmaking room
const PublicRoomID RoomID = "public"

// RoomCapacity is the maximum number of players in any room
const RoomCapacity = 4

// RoomStatus represents where a room is in the race lifecycle
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"  // Gathering players / readiness
	RoomStatusCounting RoomStatus = "counting" // Countdown in progress
	RoomStatusRacing   RoomStatus = "racing"   // Race underway
	RoomStatusFinished RoomStatus = "finished" // Results published, awaiting reset
)

// Room is one race arena: a roster of connected players plus shared race
// state. Status transitions happen only through the race coordinator.
type Room struct {
	ID RoomID
	// HostConnectionID is set only for private rooms (the creator, or a
	// successor if the creator left).
	HostConnectionID ConnectionID
	Players          []*RoomPlayer // insertion order = join order
	Status           RoomStatus
	Quote            string
	StartedAt        *time.Time // set when racing begins
	IsPrivate        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// GetPlayer returns the player with the given connection id, or nil
func (r *Room) GetPlayer(connID ConnectionID) *RoomPlayer {
	for _, p := range r.Players {
		if p.ConnectionID == connID {
			return p
		}
	}
	return nil
}

// ReadyCount returns how many players have toggled ready
func (r *Room) ReadyCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Ready {
			count++
		}
	}
	return count
}

// AllFinished reports whether every still-connected player has finished
// the current race. Disconnected slots are frozen and never finish, so
// they do not hold the race open.
func (r *Room) AllFinished() bool {
	for _, p := range r.Players {
		if !p.Disconnected && !p.Finished {
			return false
		}
	}
	return true
}

// ConnectedCount returns how many players have not disconnected
func (r *Room) ConnectedCount() int {
	count := 0
	for _, p := range r.Players {
		if !p.Disconnected {
			count++
		}
	}
	return count
}

// IsFull reports whether the room is at capacity
func (r *Room) IsFull() bool {
	return len(r.Players) >= RoomCapacity
}

// RaceResult is one row of the ranked result list published when a race
// finishes. Finishers rank ahead of non-finishers; see the coordinator's
// ranking rule.
type RaceResult struct {
	Rank               int          `json:"rank"`
	ConnectionID       ConnectionID `json:"connection_id"`
	SessionID          SessionID    `json:"player_id"`
	DisplayName        string       `json:"name"`
	AvatarID           string       `json:"character"`
	Progress           int          `json:"progress"`
	WPM                int          `json:"wpm"`
	Accuracy           int          `json:"accuracy"`
	Finished           bool         `json:"finished"`
	FinishOffsetMillis *int64       `json:"finish_offset_ms"`
}

// RoomSummary is a read-only snapshot for the diagnostics API
type RoomSummary struct {
	ID          RoomID     `json:"id"`
	PlayerCount int        `json:"player_count"`
	Status      RoomStatus `json:"status"`
	IsPrivate   bool       `json:"is_private"`
}
