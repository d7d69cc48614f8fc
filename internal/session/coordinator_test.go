package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rpsduel-go/internal/dependencies/mocks"
	"github.com/mcoot/rpsduel-go/internal/model"
	"github.com/mcoot/rpsduel-go/internal/protocol"
	"github.com/mcoot/rpsduel-go/internal/scoreboard"
	"github.com/mcoot/rpsduel-go/internal/storage/memory"
	"github.com/mcoot/rpsduel-go/internal/testutil"
)

// fakeConn records everything sent to it, in order.
type fakeConn struct {
	msgs []protocol.ServerMessage
}

func (c *fakeConn) Send(msg protocol.ServerMessage) {
	c.msgs = append(c.msgs, msg)
}

func (c *fakeConn) ofType(msgType string) []protocol.ServerMessage {
	var out []protocol.ServerMessage
	for _, msg := range c.msgs {
		if msg.Type == msgType {
			out = append(out, msg)
		}
	}
	return out
}

func (c *fakeConn) reset() {
	c.msgs = nil
}

// failingScoreboard rejects every write. It carries no state so background
// retries cannot race the test.
type failingScoreboard struct{}

func (failingScoreboard) RecordWin(context.Context, model.ParticipantName) error {
	return errors.New("storage unavailable")
}

func (failingScoreboard) Rankings(context.Context, int) ([]model.ScoreRecord, error) {
	return nil, nil
}

// denyingAuthorizer rejects a single name and admits everyone else.
type denyingAuthorizer struct {
	denied model.ParticipantName
}

func (a denyingAuthorizer) Authorize(_ context.Context, name model.ParticipantName, _ string) error {
	if name == a.denied {
		return errors.New("bad token")
	}
	return nil
}

type CoordinatorTestSuite struct {
	suite.Suite

	ctx        context.Context
	random     *mocks.MockRandom
	clock      *mocks.MockClock
	storage    *memory.Storage
	scoreboard *scoreboard.Service
	coord      *Coordinator
}

func TestCoordinatorTestSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}

func (s *CoordinatorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.random = mocks.NewMockRandom()
	s.clock = mocks.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s.storage = memory.New()
	s.scoreboard = scoreboard.New(s.storage, testutil.NopLogger())
	s.coord = New(Config{
		Scoreboard: s.scoreboard,
		Random:     s.random,
		Clock:      s.clock,
		Logger:     testutil.NopLogger(),
	})
}

// join registers a name and returns its recorded connection.
func (s *CoordinatorTestSuite) join(name model.ParticipantName) *fakeConn {
	conn := &fakeConn{}
	s.Require().NoError(s.coord.Join(s.ctx, name, "", conn))
	conn.reset()
	return conn
}

// matchPair joins and quick-matches two names, clearing their inboxes.
func (s *CoordinatorTestSuite) matchPair(a, b model.ParticipantName) (*fakeConn, *fakeConn) {
	connA := s.join(a)
	connB := s.join(b)
	s.Require().NoError(s.coord.QuickMatch(s.ctx, a))
	s.Require().NoError(s.coord.QuickMatch(s.ctx, b))
	connA.reset()
	connB.reset()
	return connA, connB
}

func (s *CoordinatorTestSuite) TestJoinAcknowledgesAndBroadcastsCount() {
	connA := &fakeConn{}
	s.Require().NoError(s.coord.Join(s.ctx, "alice", "", connA))

	joined := connA.ofType(protocol.TypeJoined)
	s.Require().Len(joined, 1)
	s.Equal("alice", joined[0].Name)

	counts := connA.ofType(protocol.TypeOnlineCount)
	s.Require().Len(counts, 1)
	s.Equal(1, counts[0].Count)

	connB := &fakeConn{}
	s.Require().NoError(s.coord.Join(s.ctx, "bob", "", connB))

	// Both participants see the updated count.
	counts = connA.ofType(protocol.TypeOnlineCount)
	s.Require().Len(counts, 2)
	s.Equal(2, counts[1].Count)
	s.Equal(2, s.coord.OnlineCount())
}

func (s *CoordinatorTestSuite) TestJoinRejectsEmptyName() {
	err := s.coord.Join(s.ctx, "", "", &fakeConn{})
	s.ErrorIs(err, model.ErrInvalidName)
}

func (s *CoordinatorTestSuite) TestJoinRejectsTakenName() {
	s.join("alice")

	conn := &fakeConn{}
	err := s.coord.Join(s.ctx, "alice", "", conn)
	s.ErrorIs(err, model.ErrNameTaken)
	s.Empty(conn.msgs)
}

func (s *CoordinatorTestSuite) TestJoinConsultsAuthorizer() {
	coord := New(Config{
		Scoreboard: s.scoreboard,
		Authorizer: denyingAuthorizer{denied: "alice"},
		Random:     s.random,
		Clock:      s.clock,
		Logger:     testutil.NopLogger(),
	})

	s.Error(coord.Join(s.ctx, "alice", "stale-token", &fakeConn{}))
	s.Equal(0, coord.OnlineCount())

	s.NoError(coord.Join(s.ctx, "bob", "", &fakeConn{}))
}

func (s *CoordinatorTestSuite) TestQuickMatchPairsInArrivalOrder() {
	connA := s.join("alice")
	connB := s.join("bob")
	connC := s.join("carol")

	s.Require().NoError(s.coord.QuickMatch(s.ctx, "alice"))
	s.Empty(connA.ofType(protocol.TypeMatchFound))

	s.Require().NoError(s.coord.QuickMatch(s.ctx, "bob"))

	found := connA.ofType(protocol.TypeMatchFound)
	s.Require().Len(found, 1)
	s.Equal("bob", found[0].Opponent)

	found = connB.ofType(protocol.TypeMatchFound)
	s.Require().Len(found, 1)
	s.Equal("alice", found[0].Opponent)

	// Carol waits alone.
	s.Require().NoError(s.coord.QuickMatch(s.ctx, "carol"))
	s.Empty(connC.ofType(protocol.TypeMatchFound))
}

func (s *CoordinatorTestSuite) TestQuickMatchRequiresJoin() {
	err := s.coord.QuickMatch(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrNotRegistered)
}

func (s *CoordinatorTestSuite) TestQuickMatchRejectsMatchedParticipant() {
	s.matchPair("alice", "bob")

	err := s.coord.QuickMatch(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAlreadyMatched)
}

func (s *CoordinatorTestSuite) TestQuickMatchSkipsDisconnectedEntrants() {
	s.join("alice")
	s.Require().NoError(s.coord.QuickMatch(s.ctx, "alice"))
	s.coord.Disconnect(s.ctx, "alice")

	connB := s.join("bob")
	connC := s.join("carol")
	s.Require().NoError(s.coord.QuickMatch(s.ctx, "bob"))
	s.Require().NoError(s.coord.QuickMatch(s.ctx, "carol"))

	found := connB.ofType(protocol.TypeMatchFound)
	s.Require().Len(found, 1)
	s.Equal("carol", found[0].Opponent)
	s.Require().Len(connC.ofType(protocol.TypeMatchFound), 1)
}

func (s *CoordinatorTestSuite) TestRoundResolvesOnSecondSubmission() {
	connA, connB := s.matchPair("alice", "bob")

	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "alice", "rock"))
	s.Empty(connA.ofType(protocol.TypeRoundResult))
	s.Empty(connB.ofType(protocol.TypeRoundResult))

	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "bob", "scissors"))

	results := connA.ofType(protocol.TypeRoundResult)
	s.Require().Len(results, 1)
	s.Equal(string(model.OutcomeWin), results[0].Outcome)
	s.Equal(string(model.ChoiceRock), results[0].Choice)
	s.Equal(string(model.ChoiceScissors), results[0].OpponentChoice)
	s.Equal("bob", results[0].Opponent)

	results = connB.ofType(protocol.TypeRoundResult)
	s.Require().Len(results, 1)
	s.Equal(string(model.OutcomeLose), results[0].Outcome)
	s.Equal(string(model.ChoiceScissors), results[0].Choice)
	s.Equal(string(model.ChoiceRock), results[0].OpponentChoice)

	wins, err := s.scoreboard.WinsFor(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, wins)
	wins, err = s.scoreboard.WinsFor(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(0, wins)
}

func (s *CoordinatorTestSuite) TestWinBroadcastsRankings() {
	connA, connB := s.matchPair("alice", "bob")

	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "alice", "paper"))
	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "bob", "rock"))

	for _, conn := range []*fakeConn{connA, connB} {
		rankings := conn.ofType(protocol.TypeRankings)
		s.Require().Len(rankings, 1)
		s.Require().Len(rankings[0].Rankings, 1)
		s.Equal("alice", rankings[0].Rankings[0].Name)
		s.Equal(1, rankings[0].Rankings[0].Wins)
	}
}

func (s *CoordinatorTestSuite) TestDrawDoesNotScore() {
	connA, connB := s.matchPair("alice", "bob")

	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "alice", "rock"))
	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "bob", "rock"))

	results := connA.ofType(protocol.TypeRoundResult)
	s.Require().Len(results, 1)
	s.Equal(string(model.OutcomeDraw), results[0].Outcome)
	s.Require().Len(connB.ofType(protocol.TypeRoundResult), 1)

	wins, err := s.scoreboard.WinsFor(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(0, wins)
}

func (s *CoordinatorTestSuite) TestResubmissionOverwritesPendingChoice() {
	connA, _ := s.matchPair("alice", "bob")

	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "alice", "rock"))
	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "alice", "paper"))
	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "bob", "rock"))

	results := connA.ofType(protocol.TypeRoundResult)
	s.Require().Len(results, 1)
	s.Equal(string(model.OutcomeWin), results[0].Outcome)
	s.Equal(string(model.ChoicePaper), results[0].Choice)
}

func (s *CoordinatorTestSuite) TestSubmitChoiceValidation() {
	connA, _ := s.matchPair("alice", "bob")

	s.ErrorIs(s.coord.SubmitChoice(s.ctx, "alice", "lizard"), model.ErrInvalidChoice)
	s.ErrorIs(s.coord.SubmitChoice(s.ctx, "ghost", "rock"), model.ErrNotRegistered)

	connC := s.join("carol")
	s.ErrorIs(s.coord.SubmitChoice(s.ctx, "carol", "rock"), model.ErrNoMatch)
	s.Empty(connC.msgs)
	s.Empty(connA.ofType(protocol.TypeRoundResult))
}

func (s *CoordinatorTestSuite) TestNextRoundAfterBothReady() {
	connA, connB := s.matchPair("alice", "bob")

	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "alice", "rock"))
	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "bob", "scissors"))
	connA.reset()
	connB.reset()

	s.Require().NoError(s.coord.SetReady(s.ctx, "alice", true))
	s.Empty(connA.ofType(protocol.TypeNewRound))
	s.Empty(connB.ofType(protocol.TypeNewRound))

	s.Require().NoError(s.coord.SetReady(s.ctx, "bob", true))
	s.Require().Len(connA.ofType(protocol.TypeNewRound), 1)
	s.Require().Len(connB.ofType(protocol.TypeNewRound), 1)

	// Votes reset: the next round needs a fresh agreement.
	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "alice", "rock"))
	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "bob", "rock"))
	s.Require().NoError(s.coord.SetReady(s.ctx, "alice", true))
	s.Len(connA.ofType(protocol.TypeNewRound), 1)
}

func (s *CoordinatorTestSuite) TestDecliningReadyTearsDownMatch() {
	connA, connB := s.matchPair("alice", "bob")

	s.Require().NoError(s.coord.SetReady(s.ctx, "alice", false))

	s.Require().Len(connB.ofType(protocol.TypeOpponentLeft), 1)
	s.Empty(connA.ofType(protocol.TypeOpponentLeft))

	// Both sides are free again.
	s.ErrorIs(s.coord.SetReady(s.ctx, "alice", true), model.ErrNoMatch)
	s.ErrorIs(s.coord.SetReady(s.ctx, "bob", true), model.ErrNoMatch)
	s.NoError(s.coord.QuickMatch(s.ctx, "alice"))
}

func (s *CoordinatorTestSuite) TestLeaveNotifiesOpponentOnce() {
	_, connB := s.matchPair("alice", "bob")

	s.coord.Leave(s.ctx, "alice")
	s.coord.Leave(s.ctx, "alice")
	s.coord.Disconnect(s.ctx, "alice")

	s.Len(connB.ofType(protocol.TypeOpponentLeft), 1)
}

func (s *CoordinatorTestSuite) TestLeaveKeepsParticipantRegistered() {
	connA, _ := s.matchPair("alice", "bob")

	s.coord.Leave(s.ctx, "alice")

	s.Equal(2, s.coord.OnlineCount())

	// Still registered, so alice can go straight back to hosting.
	s.random.QueueString("lobby-token")
	s.Require().NoError(s.coord.CreateLobby(s.ctx, "alice"))
	s.Len(connA.ofType(protocol.TypeLobbyCreated), 1)
}

func (s *CoordinatorTestSuite) TestDisconnectReleasesNameAndBroadcasts() {
	connA := s.join("alice")
	connB := s.join("bob")
	connA.reset()
	connB.reset()

	s.coord.Disconnect(s.ctx, "alice")

	s.Equal(1, s.coord.OnlineCount())
	counts := connB.ofType(protocol.TypeOnlineCount)
	s.Require().Len(counts, 1)
	s.Equal(1, counts[0].Count)
	s.Empty(connA.msgs)

	// The name is free for a new connection.
	s.NoError(s.coord.Join(s.ctx, "alice", "", &fakeConn{}))
}

func (s *CoordinatorTestSuite) TestTeardownClearsStaleChoice() {
	_, _ = s.matchPair("alice", "bob")
	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "bob", "rock"))

	s.coord.Disconnect(s.ctx, "alice")

	// Bob's next match must not inherit the pending rock.
	connC := s.join("carol")
	s.Require().NoError(s.coord.QuickMatch(s.ctx, "bob"))
	s.Require().NoError(s.coord.QuickMatch(s.ctx, "carol"))
	connC.reset()

	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "carol", "paper"))
	s.Empty(connC.ofType(protocol.TypeRoundResult))
}

func (s *CoordinatorTestSuite) TestPlayComputerResolvesImmediately() {
	conn := s.join("alice")
	s.random.QueueIntn(2) // scissors

	s.Require().NoError(s.coord.PlayComputer(s.ctx, "alice"))

	found := conn.ofType(protocol.TypeMatchFound)
	s.Require().Len(found, 1)
	s.Equal(protocol.AutomatedOpponentName, found[0].Opponent)

	s.Require().NoError(s.coord.SubmitChoice(s.ctx, "alice", "rock"))

	results := conn.ofType(protocol.TypeRoundResult)
	s.Require().Len(results, 1)
	s.Equal(string(model.OutcomeWin), results[0].Outcome)
	s.Equal(string(model.ChoiceScissors), results[0].OpponentChoice)
	s.Equal(protocol.AutomatedOpponentName, results[0].Opponent)

	wins, err := s.scoreboard.WinsFor(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, wins)
}

func (s *CoordinatorTestSuite) TestPlayComputerReadyStartsNewRoundImmediately() {
	conn := s.join("alice")
	s.Require().NoError(s.coord.PlayComputer(s.ctx, "alice"))
	conn.reset()

	s.Require().NoError(s.coord.SetReady(s.ctx, "alice", true))
	s.Len(conn.ofType(protocol.TypeNewRound), 1)
}

func (s *CoordinatorTestSuite) TestPrivateLobbyFlow() {
	connA := s.join("alice")
	connB := s.join("bob")
	s.random.QueueString("lobby-token")

	s.Require().NoError(s.coord.CreateLobby(s.ctx, "alice"))

	created := connA.ofType(protocol.TypeLobbyCreated)
	s.Require().Len(created, 1)
	s.Equal("lobby-token", created[0].LobbyToken)

	s.Require().NoError(s.coord.JoinLobby(s.ctx, "bob", "lobby-token"))

	found := connA.ofType(protocol.TypeMatchFound)
	s.Require().Len(found, 1)
	s.Equal("bob", found[0].Opponent)
	found = connB.ofType(protocol.TypeMatchFound)
	s.Require().Len(found, 1)
	s.Equal("alice", found[0].Opponent)
}

func (s *CoordinatorTestSuite) TestLobbyTokenIsSingleUse() {
	s.join("alice")
	s.join("bob")
	carol := s.join("carol")
	s.random.QueueString("lobby-token")

	s.Require().NoError(s.coord.CreateLobby(s.ctx, "alice"))
	s.Require().NoError(s.coord.JoinLobby(s.ctx, "bob", "lobby-token"))

	err := s.coord.JoinLobby(s.ctx, "carol", "lobby-token")
	s.ErrorIs(err, model.ErrLobbyNotFound)
	s.Empty(carol.ofType(protocol.TypeMatchFound))
}

func (s *CoordinatorTestSuite) TestLobbyRejectsFabricatedToken() {
	s.join("alice")
	err := s.coord.JoinLobby(s.ctx, "alice", "no-such-token")
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

func (s *CoordinatorTestSuite) TestLobbyRejectsSelfJoin() {
	s.join("alice")
	s.random.QueueString("lobby-token")
	s.Require().NoError(s.coord.CreateLobby(s.ctx, "alice"))

	err := s.coord.JoinLobby(s.ctx, "alice", "lobby-token")
	s.ErrorIs(err, model.ErrLobbySelfJoin)

	// The failed join must not consume the lobby.
	bob := s.join("bob")
	s.Require().NoError(s.coord.JoinLobby(s.ctx, "bob", "lobby-token"))
	s.Len(bob.ofType(protocol.TypeMatchFound), 1)
}

func (s *CoordinatorTestSuite) TestLobbyRejectsBusyHost() {
	s.join("carol")
	s.random.QueueString("lobby-token")
	s.Require().NoError(s.coord.CreateLobby(s.ctx, "carol"))

	// Carol starts another match while the lobby is still open.
	s.Require().NoError(s.coord.PlayComputer(s.ctx, "carol"))

	s.join("dave")
	err := s.coord.JoinLobby(s.ctx, "dave", "lobby-token")
	s.ErrorIs(err, model.ErrLobbyFull)
}

func (s *CoordinatorTestSuite) TestLobbyJoinRemovesBothFromQueue() {
	connA := s.join("alice")
	s.join("bob")
	s.random.QueueString("lobby-token")

	s.Require().NoError(s.coord.QuickMatch(s.ctx, "alice"))
	s.Require().NoError(s.coord.CreateLobby(s.ctx, "alice"))
	s.Require().NoError(s.coord.JoinLobby(s.ctx, "bob", "lobby-token"))
	connA.reset()

	// A later entrant must not be paired against either of them.
	connC := s.join("carol")
	s.Require().NoError(s.coord.QuickMatch(s.ctx, "carol"))
	s.Empty(connC.ofType(protocol.TypeMatchFound))
	s.Empty(connA.ofType(protocol.TypeMatchFound))
}

func (s *CoordinatorTestSuite) TestDepartedHostLobbyIsRemoved() {
	s.join("alice")
	s.random.QueueString("lobby-token")
	s.Require().NoError(s.coord.CreateLobby(s.ctx, "alice"))
	s.coord.Disconnect(s.ctx, "alice")

	s.join("bob")
	err := s.coord.JoinLobby(s.ctx, "bob", "lobby-token")
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

func (s *CoordinatorTestSuite) TestScoreboardFailureDoesNotBlockRound() {
	coord := New(Config{
		Scoreboard: failingScoreboard{},
		Random:     s.random,
		Clock:      s.clock,
		Logger:     testutil.NopLogger(),
	})

	connA := &fakeConn{}
	connB := &fakeConn{}
	s.Require().NoError(coord.Join(s.ctx, "alice", "", connA))
	s.Require().NoError(coord.Join(s.ctx, "bob", "", connB))
	s.Require().NoError(coord.QuickMatch(s.ctx, "alice"))
	s.Require().NoError(coord.QuickMatch(s.ctx, "bob"))

	s.Require().NoError(coord.SubmitChoice(s.ctx, "alice", "rock"))
	s.Require().NoError(coord.SubmitChoice(s.ctx, "bob", "scissors"))

	s.Len(connA.ofType(protocol.TypeRoundResult), 1)
	s.Len(connB.ofType(protocol.TypeRoundResult), 1)
}
