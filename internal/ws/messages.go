package ws

import (
	"encoding/json"

	"github.com/seedytypey/raceserver/internal/model"
)

// Envelope is the wire framing for both directions: a named event with a
// JSON payload
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client intent event names. Some intents have a legacy alias kept for
// older clients.
const (
	EventIdentify          = "identify"
	EventJoinPublicRoom    = "joinPublicRoom"
	EventJoinPublicRace    = "joinPublicRace"
	EventCreatePrivateRoom = "createPrivateRoom"
	EventJoinPrivateRoom   = "joinPrivateRoom"
	EventPlayerReady       = "playerReady"
	EventStartPrivateRace  = "startPrivateRace"
	EventTypingProgress    = "typingProgress"
	EventPlayerProgress    = "playerProgress"
	EventUpdatePlayer      = "updatePlayer"
	EventUpdateCharacter   = "updateCharacter"
	EventPlayAgain         = "playAgain"
	EventLeaveRoom         = "leaveRoom"
)

// Server event names. Room-scoped events carry a public/private prefix
// matching the room kind.
const (
	EventIdentified              = "identified"
	EventRoomInfo                = "roomInfo"
	EventPrivateRoomCreated      = "privateRoomCreated"
	EventPublicRoomUpdated       = "publicRoomUpdated"
	EventPrivateRoomUpdated      = "privateRoomUpdated"
	EventPublicCountdownStarted  = "publicCountdownStarted"
	EventPrivateCountdownStarted = "privateCountdownStarted"
	EventPublicCountdown         = "publicCountdown"
	EventPrivateCountdown        = "privateCountdown"
	EventPublicRaceStarted       = "publicRaceStarted"
	EventPrivateRaceStarted      = "privateRaceStarted"
	EventRaceCompleted           = "raceCompleted"
	EventPlayerLeft              = "playerLeft"
	EventError                   = "error"
)

// Client intent payloads

type IdentifyPayload struct {
	PlayerID  string `json:"playerId,omitempty"`
	Name      string `json:"name"`
	Character string `json:"character"`
}

type JoinPublicPayload struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

type JoinPrivatePayload struct {
	RoomID string `json:"roomId"`
}

type ReadyPayload struct {
	IsReady *bool `json:"isReady"`
}

type ProgressPayload struct {
	Progress int `json:"progress"`
	WPM      int `json:"wpm"`
	Accuracy int `json:"accuracy"`
}

type UpdatePlayerPayload struct {
	Name      string `json:"name,omitempty"`
	Character string `json:"character,omitempty"`
}

// Server event payloads

type IdentifiedPayload struct {
	PlayerID string     `json:"playerId"`
	Player   PlayerView `json:"player"`
}

type PrivateRoomCreatedPayload struct {
	RoomID string   `json:"roomId"`
	Room   RoomView `json:"room"`
}

type CountdownPayload struct {
	Countdown int `json:"countdown"`
}

type RaceStartedPayload struct {
	Quote     string `json:"quote"`
	StartTime int64  `json:"startTime"`
}

type RaceCompletedPayload struct {
	Results []model.RaceResult `json:"results"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// PlayerView is the client-facing shape of a session or roster entry
type PlayerView struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	GamesPlayed int    `json:"gamesPlayed"`
	Wins        int    `json:"wins"`
}

// RoomPlayerView is one roster slot in a room snapshot
type RoomPlayerView struct {
	PlayerID     string `json:"playerId"`
	Name         string `json:"name"`
	Character    string `json:"character"`
	IsReady      bool   `json:"isReady"`
	Progress     int    `json:"progress"`
	WPM          int    `json:"wpm"`
	Accuracy     int    `json:"accuracy"`
	Finished     bool   `json:"finished"`
	Disconnected bool   `json:"disconnected,omitempty"`
}

// RoomView is the full room snapshot broadcast after any change
type RoomView struct {
	RoomID       string           `json:"roomId"`
	IsPrivate    bool             `json:"isPrivate"`
	Status       string           `json:"status"`
	HostPlayerID string           `json:"hostPlayerId,omitempty"`
	Quote        string           `json:"quote"`
	ReadyCount   int              `json:"readyPlayers"`
	TotalPlayers int              `json:"totalPlayers"`
	Players      []RoomPlayerView `json:"players"`
}

// NewPlayerView converts a session record for the wire
func NewPlayerView(sess *model.PlayerSession) PlayerView {
	return PlayerView{
		PlayerID:    string(sess.ID),
		Name:        sess.DisplayName,
		Character:   sess.AvatarID,
		GamesPlayed: sess.GamesPlayed,
		Wins:        sess.Wins,
	}
}

// NewRoomView converts a room aggregate for the wire
func NewRoomView(r *model.Room) RoomView {
	players := make([]RoomPlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, RoomPlayerView{
			PlayerID:     string(p.ConnectionID),
			Name:         p.DisplayName,
			Character:    p.AvatarID,
			IsReady:      p.Ready,
			Progress:     p.Progress,
			WPM:          p.WPM,
			Accuracy:     p.Accuracy,
			Finished:     p.Finished,
			Disconnected: p.Disconnected,
		})
	}
	return RoomView{
		RoomID:       string(r.ID),
		IsPrivate:    r.IsPrivate,
		Status:       string(r.Status),
		HostPlayerID: string(r.HostConnectionID),
		Quote:        r.Quote,
		ReadyCount:   r.ReadyCount(),
		TotalPlayers: len(r.Players),
		Players:      players,
	}
}

// encode wraps a payload in an envelope and marshals it
func encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
