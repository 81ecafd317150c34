package room

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/seedytypey/raceserver/internal/dependencies/mocks"
	"github.com/seedytypey/raceserver/internal/model"
	"github.com/seedytypey/raceserver/internal/services/quotes"
	"github.com/seedytypey/raceserver/internal/storage/memory"
	"github.com/seedytypey/raceserver/internal/testutil"
)

type DirectorySuite struct {
	suite.Suite
	clock     *mocks.MockClock
	random    *mocks.MockRandom
	quotes    *quotes.Service
	directory *Directory
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.quotes = quotes.New(memory.New(), s.random)
	s.Require().NoError(s.quotes.LoadQuotes([]string{"a quote to type"}))
	s.directory = NewDirectory(s.quotes, s.clock, s.random, testutil.NopLogger())
}

func (s *DirectorySuite) player(connID string) *model.RoomPlayer {
	return &model.RoomPlayer{
		ConnectionID: model.ConnectionID(connID),
		SessionID:    model.SessionID("sess-" + connID),
		DisplayName:  connID,
		AvatarID:     model.DefaultAvatarID,
		Accuracy:     100,
	}
}

// Public room tests

func (s *DirectorySuite) TestGetOrCreatePublicRoomLazilyCreates() {
	room, err := s.directory.GetOrCreatePublicRoom()
	s.Require().NoError(err)
	s.Equal(model.PublicRoomID, room.ID)
	s.Equal(model.RoomStatusWaiting, room.Status)
	s.Equal("a quote to type", room.Quote)
	s.False(room.IsPrivate)
	s.Empty(room.Players)
}

func (s *DirectorySuite) TestGetOrCreatePublicRoomReusesWhileJoinable() {
	first, err := s.directory.GetOrCreatePublicRoom()
	s.Require().NoError(err)

	again, err := s.directory.GetOrCreatePublicRoom()
	s.Require().NoError(err)
	s.Same(first, again)

	// Still reused during the countdown
	first.Status = model.RoomStatusCounting
	again, err = s.directory.GetOrCreatePublicRoom()
	s.Require().NoError(err)
	s.Same(first, again)
}

func (s *DirectorySuite) TestGetOrCreatePublicRoomRollsOverWhenRacing() {
	first, err := s.directory.GetOrCreatePublicRoom()
	s.Require().NoError(err)
	_ = s.directory.AddPlayer(first, s.player("c1"))
	first.Status = model.RoomStatusRacing

	fresh, err := s.directory.GetOrCreatePublicRoom()
	s.Require().NoError(err)
	s.NotSame(first, fresh)
	s.Equal(model.RoomStatusWaiting, fresh.Status)

	// The superseded room keeps its roster for the race still in flight
	s.Len(first.Players, 1)
}

func (s *DirectorySuite) TestGetOrCreatePublicRoomRollsOverWhenFull() {
	first, err := s.directory.GetOrCreatePublicRoom()
	s.Require().NoError(err)
	for i := 0; i < model.RoomCapacity; i++ {
		s.Require().NoError(s.directory.AddPlayer(first, s.player(fmt.Sprintf("c%d", i))))
	}

	fresh, err := s.directory.GetOrCreatePublicRoom()
	s.Require().NoError(err)
	s.NotSame(first, fresh)
}

// Private room tests

func (s *DirectorySuite) TestCreatePrivateRoom() {
	s.random.QueueString("ABC234")

	room, err := s.directory.CreatePrivateRoom(s.player("host"))
	s.Require().NoError(err)
	s.Equal(model.RoomID("ABC234"), room.ID)
	s.True(room.IsPrivate)
	s.Equal(model.ConnectionID("host"), room.HostConnectionID)
	s.Require().Len(room.Players, 1)
	s.Equal(model.ConnectionID("host"), room.Players[0].ConnectionID)

	found, err := s.directory.GetPrivateRoom("ABC234")
	s.Require().NoError(err)
	s.Same(room, found)
}

func (s *DirectorySuite) TestCreatePrivateRoomRegeneratesOnCollision() {
	s.random.QueueString("ABC234")
	_, err := s.directory.CreatePrivateRoom(s.player("host1"))
	s.Require().NoError(err)

	s.random.QueueString("ABC234", "XYZ789")
	room, err := s.directory.CreatePrivateRoom(s.player("host2"))
	s.Require().NoError(err)
	s.Equal(model.RoomID("XYZ789"), room.ID)
}

func (s *DirectorySuite) TestCreatePrivateRoomExhaustsRetries() {
	s.random.QueueString("ABC234")
	_, err := s.directory.CreatePrivateRoom(s.player("host1"))
	s.Require().NoError(err)

	// Every retry collides; MockRandom returns "" once the queue drains,
	// so queue the same taken code for each attempt
	for i := 0; i < maxCodeAttempts; i++ {
		s.random.QueueString("ABC234")
	}
	_, err = s.directory.CreatePrivateRoom(s.player("host2"))
	s.ErrorIs(err, model.ErrRoomCreation)
}

func (s *DirectorySuite) TestGetPrivateRoomNotFound() {
	_, err := s.directory.GetPrivateRoom("NOPE99")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// Roster tests

func (s *DirectorySuite) TestAddPlayerPreservesJoinOrder() {
	room, _ := s.directory.GetOrCreatePublicRoom()

	s.Require().NoError(s.directory.AddPlayer(room, s.player("c1")))
	s.Require().NoError(s.directory.AddPlayer(room, s.player("c2")))
	s.Require().NoError(s.directory.AddPlayer(room, s.player("c3")))

	s.Equal(model.ConnectionID("c1"), room.Players[0].ConnectionID)
	s.Equal(model.ConnectionID("c2"), room.Players[1].ConnectionID)
	s.Equal(model.ConnectionID("c3"), room.Players[2].ConnectionID)
}

func (s *DirectorySuite) TestAddPlayerDuplicateConnection() {
	room, _ := s.directory.GetOrCreatePublicRoom()
	s.Require().NoError(s.directory.AddPlayer(room, s.player("c1")))

	err := s.directory.AddPlayer(room, s.player("c1"))
	s.ErrorIs(err, model.ErrAlreadyInRoom)
	s.Len(room.Players, 1)
}

func (s *DirectorySuite) TestAddPlayerCapacityNeverExceeded() {
	room, _ := s.directory.GetOrCreatePublicRoom()
	for i := 0; i < model.RoomCapacity; i++ {
		s.Require().NoError(s.directory.AddPlayer(room, s.player(fmt.Sprintf("c%d", i))))
	}

	err := s.directory.AddPlayer(room, s.player("overflow"))
	s.ErrorIs(err, model.ErrRoomFull)
	s.Len(room.Players, model.RoomCapacity)
}

func (s *DirectorySuite) TestAddPlayerWrongStatusPrivate() {
	s.random.QueueString("ABC234")
	room, _ := s.directory.CreatePrivateRoom(s.player("host"))

	for _, status := range []model.RoomStatus{
		model.RoomStatusCounting,
		model.RoomStatusRacing,
		model.RoomStatusFinished,
	} {
		room.Status = status
		err := s.directory.AddPlayer(room, s.player("late"))
		s.ErrorIs(err, model.ErrRoomNotJoinable, "status %s", status)
	}
}

func (s *DirectorySuite) TestAddPlayerPublicDuringCountdown() {
	room, _ := s.directory.GetOrCreatePublicRoom()
	_ = s.directory.AddPlayer(room, s.player("c1"))
	room.Status = model.RoomStatusCounting

	err := s.directory.AddPlayer(room, s.player("c2"))
	s.NoError(err)
}

func (s *DirectorySuite) TestRemovePlayer() {
	room, _ := s.directory.GetOrCreatePublicRoom()
	_ = s.directory.AddPlayer(room, s.player("c1"))
	_ = s.directory.AddPlayer(room, s.player("c2"))

	removed, err := s.directory.RemovePlayer(room, "c1")
	s.Require().NoError(err)
	s.Equal(model.ConnectionID("c1"), removed.ConnectionID)
	s.Len(room.Players, 1)
}

func (s *DirectorySuite) TestRemovePlayerNotInRoom() {
	room, _ := s.directory.GetOrCreatePublicRoom()
	_, err := s.directory.RemovePlayer(room, "ghost")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *DirectorySuite) TestRemoveLastPlayerDeletesPrivateRoom() {
	s.random.QueueString("ABC234")
	room, _ := s.directory.CreatePrivateRoom(s.player("host"))

	_, err := s.directory.RemovePlayer(room, "host")
	s.Require().NoError(err)

	_, err = s.directory.GetPrivateRoom("ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *DirectorySuite) TestRemoveLastPlayerDereferencesPublicRoom() {
	room, _ := s.directory.GetOrCreatePublicRoom()
	_ = s.directory.AddPlayer(room, s.player("c1"))

	_, err := s.directory.RemovePlayer(room, "c1")
	s.Require().NoError(err)

	fresh, err := s.directory.GetOrCreatePublicRoom()
	s.Require().NoError(err)
	s.NotSame(room, fresh)
}

// Snapshot tests

func (s *DirectorySuite) TestSummaries() {
	pub, _ := s.directory.GetOrCreatePublicRoom()
	_ = s.directory.AddPlayer(pub, s.player("c1"))
	s.random.QueueString("ABC234")
	_, _ = s.directory.CreatePrivateRoom(s.player("host"))

	summaries := s.directory.Summaries()
	s.Len(summaries, 2)

	byID := make(map[model.RoomID]model.RoomSummary)
	for _, sum := range summaries {
		byID[sum.ID] = sum
	}
	s.Equal(1, byID[model.PublicRoomID].PlayerCount)
	s.False(byID[model.PublicRoomID].IsPrivate)
	s.Equal(1, byID["ABC234"].PlayerCount)
	s.True(byID["ABC234"].IsPrivate)
}
