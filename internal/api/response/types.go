package response

import (
	"github.com/seedytypey/raceserver/internal/model"
)

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}

// Room represents a room in diagnostics responses
type Room struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	Status      string `json:"status"`
	IsPrivate   bool   `json:"isPrivate"`
}

// RoomFromSummary converts a model.RoomSummary to a response Room
func RoomFromSummary(s model.RoomSummary) Room {
	return Room{
		ID:          string(s.ID),
		PlayerCount: s.PlayerCount,
		Status:      string(s.Status),
		IsPrivate:   s.IsPrivate,
	}
}

// Rooms is the room listing response
type Rooms struct {
	Rooms []Room `json:"rooms"`
}

// Stats is the server statistics response
type Stats struct {
	TotalRooms       int `json:"totalRooms"`
	TotalPlayers     int `json:"totalPlayers"`
	ConnectedClients int `json:"connectedClients"`
	ActiveRaces      int `json:"activeRaces"`
}
