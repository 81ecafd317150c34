package room

import (
	"log/slog"

	"github.com/seedytypey/raceserver/internal/dependencies/clock"
	"github.com/seedytypey/raceserver/internal/dependencies/random"
	"github.com/seedytypey/raceserver/internal/model"
	"github.com/seedytypey/raceserver/internal/services/quotes"
)

const (
	// RoomCodeLength is the length of generated private room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// maxCodeAttempts bounds collision retries when generating a code
	maxCodeAttempts = 10
)

// Directory owns the live set of rooms: one optional public matchmaking
// room plus a code-keyed map of private rooms. It manages rosters and
// lookup only; status transitions belong to the race coordinator, which
// also serializes all calls into the directory. No persistence, process
// lifetime only.
type Directory struct {
	quotes *quotes.Service
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	publicRoom   *model.Room
	privateRooms map[model.RoomID]*model.Room
}

// NewDirectory creates a new room directory
func NewDirectory(
	quotes *quotes.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Directory {
	return &Directory{
		quotes:       quotes,
		clock:        clock,
		random:       random,
		logger:       logger,
		privateRooms: make(map[model.RoomID]*model.Room),
	}
}

// GetOrCreatePublicRoom returns the current public room while it is still
// accepting players (Waiting or Counting, below capacity). Otherwise it
// mints a fresh one, replacing the prior reference so a joiner never lands
// in a room mid-race. A superseded room keeps running for the players
// already in it; they hold it through their connection state.
func (d *Directory) GetOrCreatePublicRoom() (*model.Room, error) {
	if r := d.publicRoom; r != nil {
		if (r.Status == model.RoomStatusWaiting || r.Status == model.RoomStatusCounting) && !r.IsFull() {
			return r, nil
		}
	}

	quote, err := d.quotes.RandomQuote()
	if err != nil {
		return nil, err
	}

	now := d.clock.Now()
	room := &model.Room{
		ID:        model.PublicRoomID,
		Status:    model.RoomStatusWaiting,
		Quote:     quote,
		IsPrivate: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.publicRoom = room

	d.logger.Info("public room created")
	return room, nil
}

// CreatePrivateRoom creates a room with a fresh 6-character code and the
// host as its first player
func (d *Directory) CreatePrivateRoom(host *model.RoomPlayer) (*model.Room, error) {
	code, err := d.generateCode()
	if err != nil {
		return nil, err
	}

	quote, err := d.quotes.RandomQuote()
	if err != nil {
		return nil, err
	}

	now := d.clock.Now()
	host.JoinedAt = now
	room := &model.Room{
		ID:               code,
		HostConnectionID: host.ConnectionID,
		Players:          []*model.RoomPlayer{host},
		Status:           model.RoomStatusWaiting,
		Quote:            quote,
		IsPrivate:        true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	d.privateRooms[code] = room

	d.logger.Info("private room created",
		slog.String("room_id", string(code)),
		slog.String("host", string(host.ConnectionID)),
	)
	return room, nil
}

func (d *Directory) generateCode() (model.RoomID, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := model.RoomID(d.random.String(RoomCodeLength, RoomCodeAlphabet))
		if _, taken := d.privateRooms[code]; !taken {
			return code, nil
		}
	}
	return "", model.ErrRoomCreation
}

// GetPrivateRoom looks up a private room by code
func (d *Directory) GetPrivateRoom(code model.RoomID) (*model.Room, error) {
	room, ok := d.privateRooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// AddPlayer appends a player to the room's roster, preserving join order.
// Private rooms only accept players while Waiting; the public room also
// accepts them during the countdown, matching its rollover predicate.
func (d *Directory) AddPlayer(room *model.Room, player *model.RoomPlayer) error {
	if room.GetPlayer(player.ConnectionID) != nil {
		return model.ErrAlreadyInRoom
	}
	if room.IsFull() {
		return model.ErrRoomFull
	}

	joinable := room.Status == model.RoomStatusWaiting ||
		(!room.IsPrivate && room.Status == model.RoomStatusCounting)
	if !joinable {
		return model.ErrRoomNotJoinable
	}

	now := d.clock.Now()
	player.JoinedAt = now
	room.Players = append(room.Players, player)
	room.UpdatedAt = now
	return nil
}

// RemovePlayer drops the connection from the room's roster and returns the
// removed record. An empty room is deregistered: the public reference is
// cleared, private rooms are deleted from the map.
func (d *Directory) RemovePlayer(room *model.Room, connID model.ConnectionID) (*model.RoomPlayer, error) {
	for i, p := range room.Players {
		if p.ConnectionID != connID {
			continue
		}
		room.Players = append(room.Players[:i], room.Players[i+1:]...)
		room.UpdatedAt = d.clock.Now()

		if len(room.Players) == 0 {
			d.forget(room)
		}
		return p, nil
	}
	return nil, model.ErrNotInRoom
}

func (d *Directory) forget(room *model.Room) {
	if room.IsPrivate {
		delete(d.privateRooms, room.ID)
	} else if d.publicRoom == room {
		d.publicRoom = nil
	}
	d.logger.Info("room cleaned up",
		slog.String("room_id", string(room.ID)),
		slog.Bool("is_private", room.IsPrivate),
	)
}

// Rooms returns every room currently registered in the directory
func (d *Directory) Rooms() []*model.Room {
	rooms := make([]*model.Room, 0, len(d.privateRooms)+1)
	if d.publicRoom != nil {
		rooms = append(rooms, d.publicRoom)
	}
	for _, r := range d.privateRooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// Summaries returns a read-only snapshot of every registered room
func (d *Directory) Summaries() []model.RoomSummary {
	rooms := d.Rooms()
	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, model.RoomSummary{
			ID:          r.ID,
			PlayerCount: len(r.Players),
			Status:      r.Status,
			IsPrivate:   r.IsPrivate,
		})
	}
	return summaries
}
