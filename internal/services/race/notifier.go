package race

import "github.com/seedytypey/raceserver/internal/model"

// Notifier receives room lifecycle events for fan-out to connected
// clients. The coordinator calls it with its own lock held, so
// implementations must not call back into the coordinator and must not
// block.
type Notifier interface {
	// RoomUpdated fires after any membership, readiness or progress change
	RoomUpdated(room *model.Room)
	// CountdownStarted fires when a room enters Counting
	CountdownStarted(room *model.Room, countdown int)
	// CountdownTick fires once per interval with the decremented count
	CountdownTick(room *model.Room, countdown int)
	// RaceStarted fires when a room enters Racing
	RaceStarted(room *model.Room)
	// RaceCompleted fires once with the ranked results
	RaceCompleted(room *model.Room, results []model.RaceResult)
	// PlayerLeft fires when a player leaves or disconnects
	PlayerLeft(room *model.Room, player *model.RoomPlayer)
}

// NopNotifier discards all events
type NopNotifier struct{}

var _ Notifier = NopNotifier{}

func (NopNotifier) RoomUpdated(*model.Room)                        {}
func (NopNotifier) CountdownStarted(*model.Room, int)              {}
func (NopNotifier) CountdownTick(*model.Room, int)                 {}
func (NopNotifier) RaceStarted(*model.Room)                        {}
func (NopNotifier) RaceCompleted(*model.Room, []model.RaceResult)  {}
func (NopNotifier) PlayerLeft(*model.Room, *model.RoomPlayer)      {}
