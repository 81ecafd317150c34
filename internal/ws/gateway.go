package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seedytypey/raceserver/internal/dependencies/random"
	"github.com/seedytypey/raceserver/internal/model"
	"github.com/seedytypey/raceserver/internal/services/race"
	"github.com/seedytypey/raceserver/internal/services/session"
)

const (
	// connIDLength is the length of minted connection ids
	connIDLength = 12
	// connIDAlphabet is the characters used in connection ids
	connIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The server fronts a browser game; origin policy is handled upstream
		return true
	},
}

// connState is the gateway's per-connection view: the identified session,
// if any, and the room the connection currently occupies
type connState struct {
	sess *model.PlayerSession
	room *model.Room
}

// Gateway is the single message-dispatch surface. Every inbound intent
// maps to one coordinator or session operation; every service error is
// converted to a direct error reply to the originating connection and
// never propagates further.
type Gateway struct {
	coordinator *race.Coordinator
	sessions    *session.Service
	hub         *Hub
	broadcaster *Broadcaster
	random      random.Random
	logger      *slog.Logger

	mu    sync.Mutex
	conns map[model.ConnectionID]*connState
}

// NewGateway creates a new Gateway
func NewGateway(
	coordinator *race.Coordinator,
	sessions *session.Service,
	hub *Hub,
	broadcaster *Broadcaster,
	random random.Random,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		coordinator: coordinator,
		sessions:    sessions,
		hub:         hub,
		broadcaster: broadcaster,
		random:      random,
		logger:      logger.With(slog.String("component", "ws-gateway")),
		conns:       make(map[model.ConnectionID]*connState),
	}
}

// ServeHTTP makes the gateway mountable as the upgrade endpoint
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.ServeWS(w, r)
}

// ServeWS upgrades the request and starts the connection's pumps
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}

	connID := model.ConnectionID("conn-" + g.random.String(connIDLength, connIDAlphabet))
	client := &Client{
		id:          connID,
		hub:         g.hub,
		gateway:     g,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
		logger:      g.logger,
	}

	g.mu.Lock()
	g.conns[connID] = &connState{}
	g.mu.Unlock()

	g.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

// handleDisconnect is the unconditional cleanup path for a dropped
// connection
func (g *Gateway) handleDisconnect(c *Client) {
	g.mu.Lock()
	state, ok := g.conns[c.id]
	delete(g.conns, c.id)
	g.mu.Unlock()
	if !ok {
		return
	}

	if state.room != nil {
		if err := g.coordinator.Leave(context.Background(), state.room, c.id); err != nil {
			g.logger.Warn("ws disconnect cleanup failed",
				slog.String("connection_id", string(c.id)),
				slog.Any("error", err))
		}
	}
}

// handleMessage dispatches one inbound envelope
func (g *Gateway) handleMessage(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.broadcaster.SendError(c.id, "Invalid message")
		return
	}

	ctx := context.Background()

	var err error
	switch env.Event {
	case EventIdentify:
		err = g.handleIdentify(ctx, c, env.Data)
	case EventJoinPublicRoom, EventJoinPublicRace:
		err = g.handleJoinPublic(ctx, c, env.Data)
	case EventCreatePrivateRoom:
		err = g.handleCreatePrivate(ctx, c)
	case EventJoinPrivateRoom:
		err = g.handleJoinPrivate(ctx, c, env.Data)
	case EventPlayerReady:
		err = g.handleReady(ctx, c, env.Data)
	case EventStartPrivateRace:
		err = g.handleStartPrivate(ctx, c)
	case EventTypingProgress, EventPlayerProgress:
		err = g.handleProgress(ctx, c, env.Data)
	case EventUpdatePlayer, EventUpdateCharacter:
		err = g.handleUpdatePlayer(ctx, c, env.Data)
	case EventPlayAgain:
		err = g.handlePlayAgain(ctx, c)
	case EventLeaveRoom:
		err = g.handleLeave(ctx, c)
	default:
		g.logger.Warn("ws unknown event",
			slog.String("connection_id", string(c.id)),
			slog.String("event", env.Event))
		g.broadcaster.SendError(c.id, "Unknown event")
		return
	}

	if err != nil {
		g.logger.Info("ws intent rejected",
			slog.String("connection_id", string(c.id)),
			slog.String("event", env.Event),
			slog.Any("error", err))
		g.broadcaster.SendError(c.id, errorMessage(err))
	}
}

func (g *Gateway) state(connID model.ConnectionID) *connState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conns[connID]
}

// identified returns the connection's session, or ErrNotIdentified if the
// client has not introduced itself yet
func (g *Gateway) identified(connID model.ConnectionID) (*connState, error) {
	state := g.state(connID)
	if state == nil || state.sess == nil {
		return nil, model.ErrNotIdentified
	}
	return state, nil
}

func (g *Gateway) handleIdentify(ctx context.Context, c *Client, data json.RawMessage) error {
	var p IdentifyPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
	}

	sess, err := g.sessions.Identify(ctx, model.SessionID(p.PlayerID), p.Name, p.Character)
	if err != nil {
		return err
	}

	g.mu.Lock()
	if state := g.conns[c.id]; state != nil {
		state.sess = sess
	}
	g.mu.Unlock()

	g.broadcaster.SendDirect(c.id, EventIdentified, IdentifiedPayload{
		PlayerID: string(sess.ID),
		Player:   NewPlayerView(sess),
	})
	return nil
}

func (g *Gateway) handleJoinPublic(ctx context.Context, c *Client, data json.RawMessage) error {
	state, err := g.identified(c.id)
	if err != nil {
		return err
	}
	if state.room != nil {
		return model.ErrAlreadyInRoom
	}

	var p JoinPublicPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
	}
	// A join may carry a fresher name/character than the identify did
	if p.Name != "" || p.Character != "" {
		sess, err := g.sessions.UpdateProfile(ctx, state.sess.ID, p.Name, p.Character)
		if err != nil {
			return err
		}
		state.sess = sess
	}

	room, err := g.coordinator.JoinPublic(ctx, c.id, state.sess)
	if err != nil {
		return err
	}
	state.room = room

	g.broadcaster.SendDirect(c.id, EventRoomInfo, NewRoomView(room))
	return nil
}

func (g *Gateway) handleCreatePrivate(ctx context.Context, c *Client) error {
	state, err := g.identified(c.id)
	if err != nil {
		return err
	}
	if state.room != nil {
		return model.ErrAlreadyInRoom
	}

	room, err := g.coordinator.CreatePrivate(ctx, c.id, state.sess)
	if err != nil {
		return err
	}
	state.room = room

	g.broadcaster.SendDirect(c.id, EventPrivateRoomCreated, PrivateRoomCreatedPayload{
		RoomID: string(room.ID),
		Room:   NewRoomView(room),
	})
	return nil
}

func (g *Gateway) handleJoinPrivate(ctx context.Context, c *Client, data json.RawMessage) error {
	state, err := g.identified(c.id)
	if err != nil {
		return err
	}
	if state.room != nil {
		return model.ErrAlreadyInRoom
	}

	var p JoinPrivatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	room, err := g.coordinator.JoinPrivate(ctx, model.RoomID(p.RoomID), c.id, state.sess)
	if err != nil {
		return err
	}
	state.room = room

	g.broadcaster.SendDirect(c.id, EventRoomInfo, NewRoomView(room))
	return nil
}

func (g *Gateway) handleReady(ctx context.Context, c *Client, data json.RawMessage) error {
	state, err := g.identified(c.id)
	if err != nil {
		return err
	}
	if state.room == nil {
		return model.ErrNotInRoom
	}

	var p ReadyPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
	}
	// A bare playerReady means ready; toggling off is explicit
	ready := true
	if p.IsReady != nil {
		ready = *p.IsReady
	}

	return g.coordinator.SetReady(ctx, state.room, c.id, ready)
}

func (g *Gateway) handleStartPrivate(ctx context.Context, c *Client) error {
	state, err := g.identified(c.id)
	if err != nil {
		return err
	}
	if state.room == nil {
		return model.ErrNotInRoom
	}
	return g.coordinator.StartPrivate(ctx, state.room, c.id)
}

func (g *Gateway) handleProgress(ctx context.Context, c *Client, data json.RawMessage) error {
	state, err := g.identified(c.id)
	if err != nil {
		return err
	}
	if state.room == nil {
		return model.ErrNotInRoom
	}

	var p ProgressPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	return g.coordinator.ReportProgress(ctx, state.room, c.id, p.Progress, p.WPM, p.Accuracy)
}

func (g *Gateway) handleUpdatePlayer(ctx context.Context, c *Client, data json.RawMessage) error {
	state, err := g.identified(c.id)
	if err != nil {
		return err
	}

	var p UpdatePlayerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	sess, err := g.sessions.UpdateProfile(ctx, state.sess.ID, p.Name, p.Character)
	if err != nil {
		return err
	}
	state.sess = sess

	if state.room != nil {
		return g.coordinator.UpdatePlayer(ctx, state.room, c.id, p.Name, p.Character)
	}
	return nil
}

func (g *Gateway) handlePlayAgain(ctx context.Context, c *Client) error {
	state, err := g.identified(c.id)
	if err != nil {
		return err
	}
	if state.room == nil {
		return model.ErrNotInRoom
	}
	return g.coordinator.PlayAgain(ctx, state.room, c.id)
}

func (g *Gateway) handleLeave(ctx context.Context, c *Client) error {
	state, err := g.identified(c.id)
	if err != nil {
		return err
	}
	if state.room == nil {
		return model.ErrNotInRoom
	}

	err = g.coordinator.Leave(ctx, state.room, c.id)
	state.room = nil
	return err
}
