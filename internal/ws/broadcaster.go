package ws

import (
	"log/slog"

	"github.com/seedytypey/raceserver/internal/model"
	"github.com/seedytypey/raceserver/internal/services/race"
)

// Broadcaster fans race coordinator events out to the room's connected
// clients. It is called with the coordinator lock held, so it only
// marshals and queues; the hub's buffered sends never block.
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		logger: logger.With(slog.String("component", "ws-broadcaster")),
	}
}

var _ race.Notifier = (*Broadcaster)(nil)

// roomEvent picks the public or private variant of a room-scoped event name
func roomEvent(r *model.Room, publicEvent, privateEvent string) string {
	if r.IsPrivate {
		return privateEvent
	}
	return publicEvent
}

// broadcast sends an event to every connected member of the room
func (b *Broadcaster) broadcast(r *model.Room, event string, payload any) {
	message, err := encode(event, payload)
	if err != nil {
		b.logger.Error("ws failed to encode broadcast",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	for _, p := range r.Players {
		if p.Disconnected {
			continue
		}
		b.hub.Send(p.ConnectionID, message)
	}
}

// SendDirect sends an event to a single connection
func (b *Broadcaster) SendDirect(connID model.ConnectionID, event string, payload any) {
	message, err := encode(event, payload)
	if err != nil {
		b.logger.Error("ws failed to encode direct message",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	b.hub.Send(connID, message)
}

// SendError sends a direct error reply to one connection
func (b *Broadcaster) SendError(connID model.ConnectionID, message string) {
	b.SendDirect(connID, EventError, ErrorPayload{Message: message})
}

func (b *Broadcaster) RoomUpdated(r *model.Room) {
	b.broadcast(r, roomEvent(r, EventPublicRoomUpdated, EventPrivateRoomUpdated), NewRoomView(r))
}

func (b *Broadcaster) CountdownStarted(r *model.Room, countdown int) {
	b.broadcast(r, roomEvent(r, EventPublicCountdownStarted, EventPrivateCountdownStarted),
		CountdownPayload{Countdown: countdown})
}

func (b *Broadcaster) CountdownTick(r *model.Room, countdown int) {
	b.broadcast(r, roomEvent(r, EventPublicCountdown, EventPrivateCountdown),
		CountdownPayload{Countdown: countdown})
}

func (b *Broadcaster) RaceStarted(r *model.Room) {
	payload := RaceStartedPayload{Quote: r.Quote}
	if r.StartedAt != nil {
		payload.StartTime = r.StartedAt.UnixMilli()
	}
	b.broadcast(r, roomEvent(r, EventPublicRaceStarted, EventPrivateRaceStarted), payload)
}

func (b *Broadcaster) RaceCompleted(r *model.Room, results []model.RaceResult) {
	b.broadcast(r, EventRaceCompleted, RaceCompletedPayload{Results: results})
}

func (b *Broadcaster) PlayerLeft(r *model.Room, player *model.RoomPlayer) {
	payload := PlayerLeftPayload{
		PlayerID: string(player.ConnectionID),
		Name:     player.DisplayName,
	}
	message, err := encode(EventPlayerLeft, payload)
	if err != nil {
		b.logger.Error("ws failed to encode player left",
			slog.Any("error", err))
		return
	}
	for _, p := range r.Players {
		if p.Disconnected || p.ConnectionID == player.ConnectionID {
			continue
		}
		b.hub.Send(p.ConnectionID, message)
	}
}
