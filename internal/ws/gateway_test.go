package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/seedytypey/raceserver/internal/dependencies/clock"
	"github.com/seedytypey/raceserver/internal/dependencies/random"
	"github.com/seedytypey/raceserver/internal/services/quotes"
	"github.com/seedytypey/raceserver/internal/services/race"
	"github.com/seedytypey/raceserver/internal/services/room"
	"github.com/seedytypey/raceserver/internal/services/session"
	"github.com/seedytypey/raceserver/internal/storage/memory"
	"github.com/seedytypey/raceserver/internal/testutil"
)

type GatewaySuite struct {
	suite.Suite
	server *httptest.Server
	hub    *Hub
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	logger := testutil.NopLogger()
	store := memory.New()
	clk := clock.New()
	rnd := random.New()

	sessions := session.New(store, clk, rnd, logger)
	quoteService := quotes.New(store, rnd)
	s.Require().NoError(quoteService.LoadQuotes([]string{"the quick brown fox"}))
	directory := room.NewDirectory(quoteService, clk, rnd, logger)

	s.hub = NewHub(logger)
	go s.hub.Run()
	broadcaster := NewBroadcaster(s.hub, logger)

	coordinator := race.NewCoordinator(race.Config{
		CountdownTicks: 2,
		TickInterval:   5 * time.Millisecond,
		RaceTimeLimit:  60 * time.Second,
		MinPlayers:     2,
	}, directory, sessions, quoteService, clk, broadcaster, logger)

	gateway := NewGateway(coordinator, sessions, s.hub, broadcaster, rnd, logger)
	s.server = httptest.NewServer(gateway)
}

func (s *GatewaySuite) TearDownTest() {
	s.server.Close()
	s.hub.Stop()
}

func (s *GatewaySuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *GatewaySuite) send(conn *websocket.Conn, event string, payload any) {
	data, err := json.Marshal(payload)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteJSON(Envelope{Event: event, Data: data}))
}

// waitFor reads envelopes until the wanted event arrives, discarding
// everything else
func (s *GatewaySuite) waitFor(conn *websocket.Conn, event string) json.RawMessage {
	deadline := time.Now().Add(2 * time.Second)
	s.Require().NoError(conn.SetReadDeadline(deadline))
	for {
		var env Envelope
		err := conn.ReadJSON(&env)
		s.Require().NoError(err, "waiting for %q", event)
		if env.Event == event {
			return env.Data
		}
	}
}

func (s *GatewaySuite) identify(conn *websocket.Conn, name string) IdentifiedPayload {
	s.send(conn, EventIdentify, IdentifyPayload{Name: name, Character: "robot"})
	var identified IdentifiedPayload
	s.Require().NoError(json.Unmarshal(s.waitFor(conn, EventIdentified), &identified))
	return identified
}

func (s *GatewaySuite) TestIdentify() {
	conn := s.dial()

	identified := s.identify(conn, "Alice")
	s.NotEmpty(identified.PlayerID)
	s.Equal("Alice", identified.Player.Name)
	s.Equal("robot", identified.Player.Character)
}

func (s *GatewaySuite) TestIdentifyDefaults() {
	conn := s.dial()
	s.send(conn, EventIdentify, IdentifyPayload{})

	var identified IdentifiedPayload
	s.Require().NoError(json.Unmarshal(s.waitFor(conn, EventIdentified), &identified))
	s.Equal("Player", identified.Player.Name)
	s.Equal("happy", identified.Player.Character)
}

func (s *GatewaySuite) TestRoomActionBeforeIdentifyRejected() {
	conn := s.dial()
	s.send(conn, EventJoinPublicRoom, JoinPublicPayload{})

	var errPayload ErrorPayload
	s.Require().NoError(json.Unmarshal(s.waitFor(conn, EventError), &errPayload))
	s.Contains(errPayload.Message, "identify")
}

func (s *GatewaySuite) TestUnknownEventRejected() {
	conn := s.dial()
	s.send(conn, "teleport", struct{}{})

	var errPayload ErrorPayload
	s.Require().NoError(json.Unmarshal(s.waitFor(conn, EventError), &errPayload))
	s.Equal("Unknown event", errPayload.Message)
}

func (s *GatewaySuite) TestPublicRaceFlow() {
	alice := s.dial()
	bob := s.dial()
	s.identify(alice, "Alice")
	s.identify(bob, "Bob")

	s.send(alice, EventJoinPublicRoom, JoinPublicPayload{})
	var info RoomView
	s.Require().NoError(json.Unmarshal(s.waitFor(alice, EventRoomInfo), &info))
	s.Equal("public", info.RoomID)
	s.Equal(1, info.TotalPlayers)

	s.send(bob, EventJoinPublicRoom, JoinPublicPayload{})
	s.waitFor(bob, EventRoomInfo)

	// Both ready; consensus starts the countdown
	s.send(alice, EventPlayerReady, ReadyPayload{})
	s.send(bob, EventPlayerReady, ReadyPayload{})

	var countdown CountdownPayload
	s.Require().NoError(json.Unmarshal(s.waitFor(alice, EventPublicCountdownStarted), &countdown))
	s.Equal(2, countdown.Countdown)

	var started RaceStartedPayload
	s.Require().NoError(json.Unmarshal(s.waitFor(alice, EventPublicRaceStarted), &started))
	s.Equal("the quick brown fox", started.Quote)
	s.NotZero(started.StartTime)
	s.waitFor(bob, EventPublicRaceStarted)

	// Alice finishes first; Bob waits to observe it before finishing so
	// the finish order is deterministic
	s.send(alice, EventTypingProgress, ProgressPayload{Progress: 100, WPM: 90, Accuracy: 99})
	s.waitFor(bob, EventPublicRoomUpdated)
	s.send(bob, EventTypingProgress, ProgressPayload{Progress: 100, WPM: 60, Accuracy: 95})

	var completed RaceCompletedPayload
	s.Require().NoError(json.Unmarshal(s.waitFor(bob, EventRaceCompleted), &completed))
	s.Require().Len(completed.Results, 2)
	s.Equal("Alice", completed.Results[0].DisplayName)
	s.Equal(1, completed.Results[0].Rank)
	s.Equal("Bob", completed.Results[1].DisplayName)
	s.True(completed.Results[0].Finished)
}

func (s *GatewaySuite) TestPrivateRoomFlow() {
	host := s.dial()
	guest := s.dial()
	s.identify(host, "Host")
	s.identify(guest, "Guest")

	s.send(host, EventCreatePrivateRoom, struct{}{})
	var created PrivateRoomCreatedPayload
	s.Require().NoError(json.Unmarshal(s.waitFor(host, EventPrivateRoomCreated), &created))
	s.Len(created.RoomID, 6)
	s.True(created.Room.IsPrivate)

	// Wrong code is a direct error, not fatal
	s.send(guest, EventJoinPrivateRoom, JoinPrivatePayload{RoomID: "WRONG1"})
	var errPayload ErrorPayload
	s.Require().NoError(json.Unmarshal(s.waitFor(guest, EventError), &errPayload))
	s.Equal("Room not found", errPayload.Message)

	s.send(guest, EventJoinPrivateRoom, JoinPrivatePayload{RoomID: created.RoomID})
	var info RoomView
	s.Require().NoError(json.Unmarshal(s.waitFor(guest, EventRoomInfo), &info))
	s.Equal(2, info.TotalPlayers)

	// Only the host may start
	s.send(guest, EventStartPrivateRace, struct{}{})
	s.Require().NoError(json.Unmarshal(s.waitFor(guest, EventError), &errPayload))
	s.Contains(errPayload.Message, "host")

	s.send(host, EventStartPrivateRace, struct{}{})
	s.waitFor(guest, EventPrivateCountdownStarted)
	s.waitFor(host, EventPrivateRaceStarted)
}

func (s *GatewaySuite) TestDisconnectBroadcastsPlayerLeft() {
	alice := s.dial()
	bob := s.dial()
	s.identify(alice, "Alice")
	s.identify(bob, "Bob")

	s.send(alice, EventJoinPublicRoom, JoinPublicPayload{})
	s.waitFor(alice, EventRoomInfo)
	s.send(bob, EventJoinPublicRoom, JoinPublicPayload{})
	s.waitFor(bob, EventRoomInfo)

	s.Require().NoError(bob.Close())

	var left PlayerLeftPayload
	s.Require().NoError(json.Unmarshal(s.waitFor(alice, EventPlayerLeft), &left))
	s.Equal("Bob", left.Name)
}

func (s *GatewaySuite) TestLeaveRoomThenRejoin() {
	alice := s.dial()
	s.identify(alice, "Alice")

	s.send(alice, EventJoinPublicRoom, JoinPublicPayload{})
	s.waitFor(alice, EventRoomInfo)

	s.send(alice, EventLeaveRoom, struct{}{})
	s.send(alice, EventJoinPublicRoom, JoinPublicPayload{})
	var info RoomView
	s.Require().NoError(json.Unmarshal(s.waitFor(alice, EventRoomInfo), &info))
	s.Equal(1, info.TotalPlayers)
}
