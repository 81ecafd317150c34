package race

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/seedytypey/raceserver/internal/dependencies/clock"
	"github.com/seedytypey/raceserver/internal/model"
	"github.com/seedytypey/raceserver/internal/services/quotes"
	"github.com/seedytypey/raceserver/internal/services/room"
	"github.com/seedytypey/raceserver/internal/services/session"
)

// Coordinator drives the Waiting -> Counting -> Racing -> Finished state
// machine for every room. A single mutex serializes all room mutations,
// including timer callbacks, so each operation is an atomic step with
// respect to room state and no two mutations of the same room interleave.
type Coordinator struct {
	mu sync.Mutex

	cfg       Config
	directory *room.Directory
	sessions  *session.Service
	quotes    *quotes.Service
	clock     clock.Clock
	notifier  Notifier
	logger    *slog.Logger

	// Per-room timer state. A generation counter invalidates scheduled
	// callbacks on every transition so a stale tick never fires into a
	// room that has already moved on.
	states map[*model.Room]*roomState
}

type roomState struct {
	gen   uint64
	timer *time.Timer
}

// NewCoordinator creates a new race coordinator
func NewCoordinator(
	cfg Config,
	directory *room.Directory,
	sessions *session.Service,
	quotes *quotes.Service,
	clock clock.Clock,
	notifier Notifier,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		directory: directory,
		sessions:  sessions,
		quotes:    quotes,
		clock:     clock,
		notifier:  notifier,
		logger:    logger,
		states:    make(map[*model.Room]*roomState),
	}
}

// newRoomPlayer builds the live roster record from a session snapshot
func newRoomPlayer(connID model.ConnectionID, sess *model.PlayerSession) *model.RoomPlayer {
	return &model.RoomPlayer{
		ConnectionID: connID,
		SessionID:    sess.ID,
		DisplayName:  sess.DisplayName,
		AvatarID:     sess.AvatarID,
		Accuracy:     model.InitialAccuracy,
	}
}

// JoinPublic places the connection into the current public matchmaking
// room, rolling over to a fresh one if the current room is full or racing
func (c *Coordinator) JoinPublic(ctx context.Context, connID model.ConnectionID, sess *model.PlayerSession) (*model.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.directory.GetOrCreatePublicRoom()
	if err != nil {
		return nil, err
	}
	if err := c.directory.AddPlayer(r, newRoomPlayer(connID, sess)); err != nil {
		return nil, err
	}

	c.notifier.RoomUpdated(r)
	c.evaluatePublicEligibility(r)
	return r, nil
}

// CreatePrivate creates a private room with the connection as host
func (c *Coordinator) CreatePrivate(ctx context.Context, connID model.ConnectionID, sess *model.PlayerSession) (*model.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.directory.CreatePrivateRoom(newRoomPlayer(connID, sess))
	if err != nil {
		return nil, err
	}
	c.notifier.RoomUpdated(r)
	return r, nil
}

// JoinPrivate places the connection into the private room with the given code
func (c *Coordinator) JoinPrivate(ctx context.Context, code model.RoomID, connID model.ConnectionID, sess *model.PlayerSession) (*model.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.directory.GetPrivateRoom(code)
	if err != nil {
		return nil, err
	}
	if err := c.directory.AddPlayer(r, newRoomPlayer(connID, sess)); err != nil {
		return nil, err
	}

	c.notifier.RoomUpdated(r)
	return r, nil
}

// SetReady toggles the connection's ready flag. Public rooms re-evaluate
// start eligibility after every toggle.
func (c *Coordinator) SetReady(ctx context.Context, r *model.Room, connID model.ConnectionID, ready bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	player := r.GetPlayer(connID)
	if player == nil {
		return model.ErrNotInRoom
	}
	if r.Status != model.RoomStatusWaiting {
		return model.ErrWrongRoomStatus
	}

	player.Ready = ready
	r.UpdatedAt = c.clock.Now()

	c.notifier.RoomUpdated(r)
	if !r.IsPrivate {
		c.evaluatePublicEligibility(r)
	}
	return nil
}

// StartPrivate begins the countdown in a private room. Host only, gated
// by the minimum roster size; the host's own ready flag is irrelevant.
func (c *Coordinator) StartPrivate(ctx context.Context, r *model.Room, connID model.ConnectionID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !r.IsPrivate || r.HostConnectionID != connID {
		return model.ErrNotHost
	}
	if r.Status != model.RoomStatusWaiting {
		return model.ErrWrongRoomStatus
	}
	if len(r.Players) < c.cfg.MinPlayers {
		return model.ErrInsufficientPlayers
	}

	c.beginCountdown(r)
	return nil
}

// UpdatePlayer changes the connection's roster snapshot (name/avatar).
// Empty arguments leave the corresponding field unchanged.
func (c *Coordinator) UpdatePlayer(ctx context.Context, r *model.Room, connID model.ConnectionID, displayName, avatarID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	player := r.GetPlayer(connID)
	if player == nil {
		return model.ErrNotInRoom
	}

	if displayName != "" {
		player.DisplayName = displayName
	}
	if avatarID != "" {
		player.AvatarID = avatarID
	}
	r.UpdatedAt = c.clock.Now()

	c.notifier.RoomUpdated(r)
	return nil
}

// ReportProgress records a typing progress report. Reports outside Racing,
// or after the player has finished, are silently dropped.
func (c *Coordinator) ReportProgress(ctx context.Context, r *model.Room, connID model.ConnectionID, progress, wpm, accuracy int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	player := r.GetPlayer(connID)
	if player == nil {
		return model.ErrNotInRoom
	}
	if r.Status != model.RoomStatusRacing || player.Finished || player.Disconnected {
		return nil
	}

	// Values are taken as reported; no server-side recomputation
	player.Progress = progress
	player.WPM = wpm
	player.Accuracy = accuracy

	now := c.clock.Now()
	if player.Progress >= 100 {
		player.Finished = true
		offset := now.Sub(*r.StartedAt).Milliseconds()
		player.FinishOffsetMillis = &offset
	}
	r.UpdatedAt = now

	c.notifier.RoomUpdated(r)

	if r.AllFinished() || now.Sub(*r.StartedAt) > c.cfg.RaceTimeLimit {
		c.finishRace(ctx, r)
	}
	return nil
}

// PlayAgain resets a finished room back to Waiting with a fresh quote.
// Any member may trigger it; the room then waits for the normal start
// eligibility again.
func (c *Coordinator) PlayAgain(ctx context.Context, r *model.Room, connID model.ConnectionID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.GetPlayer(connID) == nil {
		return model.ErrNotInRoom
	}
	if r.Status != model.RoomStatusFinished {
		return model.ErrRaceNotFinished
	}

	quote, err := c.quotes.RandomQuote()
	if err != nil {
		return err
	}

	c.bump(r)
	r.Status = model.RoomStatusWaiting
	r.Quote = quote
	r.StartedAt = nil
	for _, p := range r.Players {
		p.Ready = false
		p.Accuracy = model.InitialAccuracy
		p.ResetForRace()
	}
	r.UpdatedAt = c.clock.Now()

	c.notifier.RoomUpdated(r)
	return nil
}

// Leave removes the connection from its room. This is the unconditional
// cleanup path for both explicit leaves and transport disconnects. A
// mid-race leaver keeps a frozen, disconnected slot in the roster until
// the race resolves; in any other status the slot is removed immediately.
func (c *Coordinator) Leave(ctx context.Context, r *model.Room, connID model.ConnectionID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	player := r.GetPlayer(connID)
	if player == nil {
		return model.ErrNotInRoom
	}

	if r.Status == model.RoomStatusRacing && !player.Disconnected {
		player.Disconnected = true
		c.notifier.PlayerLeft(r, player)

		if r.ConnectedCount() == 0 {
			c.teardown(r)
			return nil
		}

		c.transferHost(r)
		c.notifier.RoomUpdated(r)
		if r.AllFinished() {
			c.finishRace(ctx, r)
		}
		return nil
	}

	if _, err := c.directory.RemovePlayer(r, connID); err != nil {
		return err
	}
	c.notifier.PlayerLeft(r, player)

	if len(r.Players) == 0 {
		c.dropState(r)
		return nil
	}

	c.transferHost(r)
	c.notifier.RoomUpdated(r)

	// A countdown must not run to a start the roster can no longer support
	if r.Status == model.RoomStatusCounting && len(r.Players) < c.cfg.MinPlayers {
		c.bump(r)
		r.Status = model.RoomStatusWaiting
		r.UpdatedAt = c.clock.Now()
		c.notifier.RoomUpdated(r)
	}
	return nil
}

// transferHost hands host privileges to the oldest remaining connected
// member when the host is gone
func (c *Coordinator) transferHost(r *model.Room) {
	if !r.IsPrivate {
		return
	}
	if current := r.GetPlayer(r.HostConnectionID); current != nil && !current.Disconnected {
		return
	}
	for _, p := range r.Players {
		if !p.Disconnected {
			r.HostConnectionID = p.ConnectionID
			return
		}
	}
}

// evaluatePublicEligibility starts the countdown when the public start
// rule holds: everyone ready with at least the minimum roster, or the
// room simply filled up
func (c *Coordinator) evaluatePublicEligibility(r *model.Room) {
	if r.Status != model.RoomStatusWaiting {
		return
	}
	ready := r.ReadyCount()
	total := len(r.Players)

	consensus := ready >= c.cfg.MinPlayers && ready == total
	full := total >= model.RoomCapacity
	if consensus || full {
		c.beginCountdown(r)
	}
}

// beginCountdown moves the room to Counting and schedules the tick chain
func (c *Coordinator) beginCountdown(r *model.Room) {
	c.bump(r)
	r.Status = model.RoomStatusCounting
	r.UpdatedAt = c.clock.Now()

	c.logger.Info("countdown started",
		slog.String("room_id", string(r.ID)),
		slog.Int("players", len(r.Players)),
	)
	c.notifier.CountdownStarted(r, c.cfg.CountdownTicks)
	c.scheduleTick(r, c.cfg.CountdownTicks-1)
}

func (c *Coordinator) scheduleTick(r *model.Room, remaining int) {
	c.schedule(r, c.cfg.TickInterval, func() {
		if remaining <= 0 {
			c.startRace(r)
			return
		}
		c.notifier.CountdownTick(r, remaining)
		c.scheduleTick(r, remaining-1)
	})
}

// startRace moves the room to Racing, resets per-race fields and arms the
// race time limit
func (c *Coordinator) startRace(r *model.Room) {
	c.bump(r)
	r.Status = model.RoomStatusRacing
	now := c.clock.Now()
	r.StartedAt = &now
	for _, p := range r.Players {
		p.ResetForRace()
	}
	r.UpdatedAt = now

	c.logger.Info("race started",
		slog.String("room_id", string(r.ID)),
		slog.Int("players", len(r.Players)),
	)
	c.notifier.RaceStarted(r)

	c.schedule(r, c.cfg.RaceTimeLimit, func() {
		if r.Status == model.RoomStatusRacing {
			c.finishRace(context.Background(), r)
		}
	})
}

// finishRace moves the room to Finished, publishes ranked results once,
// records win/loss counters and drops disconnected slots
func (c *Coordinator) finishRace(ctx context.Context, r *model.Room) {
	c.bump(r)
	r.Status = model.RoomStatusFinished
	r.UpdatedAt = c.clock.Now()

	results := rankPlayers(r.Players)
	c.logger.Info("race finished",
		slog.String("room_id", string(r.ID)),
		slog.Int("players", len(results)),
	)
	c.notifier.RaceCompleted(r, results)

	for _, res := range results {
		won := res.Rank == 1 && res.Finished
		if err := c.sessions.RecordRaceOutcome(ctx, res.SessionID, won); err != nil {
			c.logger.Error("failed to record race outcome",
				slog.String("session_id", string(res.SessionID)),
				slog.Any("error", err),
			)
		}
	}

	// Disconnected slots were only kept alive for the results
	for _, p := range append([]*model.RoomPlayer(nil), r.Players...) {
		if p.Disconnected {
			_, _ = c.directory.RemovePlayer(r, p.ConnectionID)
		}
	}
	if len(r.Players) == 0 {
		c.dropState(r)
	}
}

// rankPlayers orders finishers ascending by finish offset, then
// non-finishers descending by progress. Stable for ties, preserving join
// order.
func rankPlayers(players []*model.RoomPlayer) []model.RaceResult {
	ordered := append([]*model.RoomPlayer(nil), players...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Finished != b.Finished {
			return a.Finished
		}
		if a.Finished {
			return *a.FinishOffsetMillis < *b.FinishOffsetMillis
		}
		return a.Progress > b.Progress
	})

	results := make([]model.RaceResult, len(ordered))
	for i, p := range ordered {
		results[i] = model.RaceResult{
			Rank:               i + 1,
			ConnectionID:       p.ConnectionID,
			SessionID:          p.SessionID,
			DisplayName:        p.DisplayName,
			AvatarID:           p.AvatarID,
			Progress:           p.Progress,
			WPM:                p.WPM,
			Accuracy:           p.Accuracy,
			Finished:           p.Finished,
			FinishOffsetMillis: p.FinishOffsetMillis,
		}
	}
	return results
}

// Timer plumbing. Each room carries a generation counter; every state
// transition bumps it and stops the pending timer, so a callback that was
// already in flight sees a stale generation and drops itself.

func (c *Coordinator) state(r *model.Room) *roomState {
	st, ok := c.states[r]
	if !ok {
		st = &roomState{}
		c.states[r] = st
	}
	return st
}

func (c *Coordinator) bump(r *model.Room) {
	st := c.state(r)
	st.gen++
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
}

func (c *Coordinator) schedule(r *model.Room, d time.Duration, fn func()) {
	st := c.state(r)
	gen := st.gen
	st.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		current, ok := c.states[r]
		if !ok || current.gen != gen {
			return
		}
		fn()
	})
}

func (c *Coordinator) teardown(r *model.Room) {
	for _, p := range append([]*model.RoomPlayer(nil), r.Players...) {
		_, _ = c.directory.RemovePlayer(r, p.ConnectionID)
	}
	c.dropState(r)
}

func (c *Coordinator) dropState(r *model.Room) {
	if st, ok := c.states[r]; ok {
		if st.timer != nil {
			st.timer.Stop()
		}
		delete(c.states, r)
	}
}

// Summaries returns a read-only snapshot of the registered rooms, taken
// under the coordinator lock so diagnostics never observe a half-applied
// mutation
func (c *Coordinator) Summaries() []model.RoomSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directory.Summaries()
}

// Stats returns aggregate counts for the diagnostics API
func (c *Coordinator) Stats() (totalRooms, playersInRooms, activeRaces int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := c.directory.Rooms()
	totalRooms = len(rooms)
	for _, r := range rooms {
		playersInRooms += len(r.Players)
		if r.Status == model.RoomStatusRacing {
			activeRaces++
		}
	}
	return totalRooms, playersInRooms, activeRaces
}
