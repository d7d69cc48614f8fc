// Package session implements the connection/matchmaking/round state machine:
// the registry of connected participants, the FIFO quick-match queue, the
// private-lobby join protocol, per-pair round resolution, and the post-round
// ready negotiation.
//
// All shared state is guarded by a single mutex owned by the Coordinator.
// Mutating operations collect their outbound notifications under the lock
// and deliver them after unlocking, so no collaborator or transport call
// ever runs inside the critical section.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/rpsduel-go/internal/dependencies/clock"
	"github.com/mcoot/rpsduel-go/internal/dependencies/random"
	"github.com/mcoot/rpsduel-go/internal/game"
	"github.com/mcoot/rpsduel-go/internal/model"
	"github.com/mcoot/rpsduel-go/internal/protocol"
)

const (
	winRecordRetries    = 3
	winRecordRetryDelay = time.Second
	winRecordTimeout    = 5 * time.Second
)

// Scoreboard is the external collaborator owning persistent win counts.
// A limit of 0 on Rankings means the collaborator's default.
type Scoreboard interface {
	RecordWin(ctx context.Context, name model.ParticipantName) error
	Rankings(ctx context.Context, limit int) ([]model.ScoreRecord, error)
}

// Authorizer is the external auth collaborator consulted at join time.
// A nil Authorizer leaves every display name open to anyone.
type Authorizer interface {
	Authorize(ctx context.Context, name model.ParticipantName, token string) error
}

// Coordinator orchestrates the session state machine in response to inbound
// events and drives outbound notifications.
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	queue    *Queue
	lobbies  *LobbyManager
	matches  *MatchTable
	ready    *ReadyNegotiator

	scoreboard Scoreboard
	authorizer Authorizer
	random     random.Random
	logger     *slog.Logger
}

// Config holds the coordinator's collaborators
type Config struct {
	Scoreboard Scoreboard
	Authorizer Authorizer // optional
	Random     random.Random
	Clock      clock.Clock
	Logger     *slog.Logger
}

// New creates a coordinator with empty session state
func New(cfg Config) *Coordinator {
	return &Coordinator{
		registry:   NewRegistry(),
		queue:      NewQueue(),
		lobbies:    NewLobbyManager(cfg.Random, cfg.Clock),
		matches:    NewMatchTable(),
		ready:      NewReadyNegotiator(),
		scoreboard: cfg.Scoreboard,
		authorizer: cfg.Authorizer,
		random:     cfg.Random,
		logger:     cfg.Logger.With(slog.String("component", "session")),
	}
}

// delivery is one pending outbound notification.
type delivery struct {
	conn Conn
	msg  protocol.ServerMessage
}

// outbox accumulates notifications under the lock for delivery after it.
type outbox []delivery

func (o *outbox) add(conn Conn, msg protocol.ServerMessage) {
	if conn != nil {
		*o = append(*o, delivery{conn: conn, msg: msg})
	}
}

func (o outbox) flush() {
	for _, d := range o {
		d.conn.Send(d.msg)
	}
}

// Join registers a display name for a connection and acknowledges it.
// Registered names must present a valid auth token; the authorizer is
// consulted before the state lock is taken, never under it.
func (c *Coordinator) Join(ctx context.Context, name model.ParticipantName, authToken string, conn Conn) error {
	if name == "" {
		return model.ErrInvalidName
	}

	if c.authorizer != nil {
		if err := c.authorizer.Authorize(ctx, name, authToken); err != nil {
			return err
		}
	}

	var out outbox
	c.mu.Lock()
	if err := c.registry.Register(name, conn); err != nil {
		c.mu.Unlock()
		return err
	}
	out.add(conn, protocol.Joined(name))
	c.mu.Unlock()
	out.flush()

	c.logger.Info("participant joined", slog.String("name", string(name)))
	c.broadcastRoster(ctx)
	return nil
}

// QuickMatch puts a participant in the FIFO queue and forms any matches the
// queue now allows.
func (c *Coordinator) QuickMatch(ctx context.Context, name model.ParticipantName) error {
	var out outbox
	c.mu.Lock()
	if !c.registry.IsOnline(name) {
		c.mu.Unlock()
		return model.ErrNotRegistered
	}
	if _, matched := c.matches.OpponentOf(name); matched {
		c.mu.Unlock()
		return model.ErrAlreadyMatched
	}

	c.queue.Enqueue(name)
	pairs := c.queue.DrainPairs(c.registry.IsOnline)
	for _, pair := range pairs {
		c.formMatchLocked(pair[0], pair[1], &out)
	}
	c.mu.Unlock()
	out.flush()

	for _, pair := range pairs {
		c.logger.Info("quick match formed",
			slog.String("a", string(pair[0])),
			slog.String("b", string(pair[1])))
	}
	return nil
}

// formMatchLocked pairs two names and queues match_found to both.
// Caller holds the lock and guarantees neither side is already matched.
func (c *Coordinator) formMatchLocked(a, b model.ParticipantName, out *outbox) {
	if err := c.matches.Pair(a, b); err != nil {
		// Queue and match table invariants should make this unreachable.
		c.logger.Error("pairing failed",
			slog.String("a", string(a)),
			slog.String("b", string(b)),
			slog.String("error", err.Error()))
		return
	}
	c.queue.Remove(a)
	c.queue.Remove(b)
	c.ready.Clear(a, b)

	if conn, ok := c.registry.Conn(a); ok {
		out.add(conn, protocol.MatchFound(model.HumanOpponent(b)))
	}
	if conn, ok := c.registry.Conn(b); ok {
		out.add(conn, protocol.MatchFound(model.HumanOpponent(a)))
	}
}

// PlayComputer matches a participant against the automated opponent.
func (c *Coordinator) PlayComputer(ctx context.Context, name model.ParticipantName) error {
	var out outbox
	c.mu.Lock()
	if !c.registry.IsOnline(name) {
		c.mu.Unlock()
		return model.ErrNotRegistered
	}
	if err := c.matches.PairAutomated(name); err != nil {
		c.mu.Unlock()
		return err
	}
	c.queue.Remove(name)
	c.ready.Clear(name)
	if conn, ok := c.registry.Conn(name); ok {
		out.add(conn, protocol.MatchFound(model.AutomatedOpponent()))
	}
	c.mu.Unlock()
	out.flush()

	c.logger.Info("automated match formed", slog.String("name", string(name)))
	return nil
}

// CreateLobby opens a private lobby hosted by the participant and delivers
// the join token to them.
func (c *Coordinator) CreateLobby(ctx context.Context, name model.ParticipantName) error {
	var out outbox
	c.mu.Lock()
	if !c.registry.IsOnline(name) {
		c.mu.Unlock()
		return model.ErrNotRegistered
	}
	lobby := c.lobbies.Create(name)
	if conn, ok := c.registry.Conn(name); ok {
		out.add(conn, protocol.LobbyCreated(lobby.Token))
	}
	c.mu.Unlock()
	out.flush()

	c.logger.Info("private lobby created", slog.String("host", string(name)))
	return nil
}

// JoinLobby consumes a private lobby into a match. Checked in order: the
// lobby must exist, the guest must differ from the host, and the host must
// still be free to play.
func (c *Coordinator) JoinLobby(ctx context.Context, name model.ParticipantName, token model.LobbyToken) error {
	var out outbox
	c.mu.Lock()
	if !c.registry.IsOnline(name) {
		c.mu.Unlock()
		return model.ErrNotRegistered
	}

	lobby, ok := c.lobbies.Get(token)
	if !ok {
		c.mu.Unlock()
		return model.ErrLobbyNotFound
	}
	if lobby.Host == name {
		c.mu.Unlock()
		return model.ErrLobbySelfJoin
	}
	if _, matched := c.matches.OpponentOf(name); matched {
		c.mu.Unlock()
		return model.ErrAlreadyMatched
	}
	if _, matched := c.matches.OpponentOf(lobby.Host); matched {
		// Host went off and started another match; the lobby is unusable.
		c.mu.Unlock()
		return model.ErrLobbyFull
	}

	// Consume before pairing so the token can never pair a second guest.
	c.lobbies.Consume(token)
	c.formMatchLocked(lobby.Host, name, &out)
	c.mu.Unlock()
	out.flush()

	c.logger.Info("private match formed",
		slog.String("host", string(lobby.Host)),
		slog.String("guest", string(name)))
	return nil
}

// SubmitChoice stores a round submission and resolves the round once both
// sides of the match have chosen. Against the automated opponent the second
// choice is synthesized immediately.
func (c *Coordinator) SubmitChoice(ctx context.Context, name model.ParticipantName, raw string) error {
	choice, err := game.ParseChoice(raw)
	if err != nil {
		return err
	}

	var out outbox
	var winner model.ParticipantName

	c.mu.Lock()
	if !c.registry.IsOnline(name) {
		c.mu.Unlock()
		return model.ErrNotRegistered
	}
	opponent, matched := c.matches.OpponentOf(name)
	if !matched {
		c.mu.Unlock()
		return model.ErrNoMatch
	}

	c.registry.SetChoice(name, choice)

	if opponent.IsAutomated() {
		theirs := game.RandomChoice(c.random)
		outcome := game.Resolve(choice, theirs)
		c.registry.ClearChoices(name)
		if conn, ok := c.registry.Conn(name); ok {
			out.add(conn, protocol.RoundResult(outcome, choice, theirs, opponent))
		}
		if outcome == model.OutcomeWin {
			winner = name
		}
	} else if theirs := c.registry.Choice(opponent.Name); theirs != model.ChoiceNone {
		// Both sides in: resolve from one snapshot and clear both choices
		// together, all inside the critical section.
		outcome := game.Resolve(choice, theirs)
		c.registry.ClearChoices(name, opponent.Name)
		if conn, ok := c.registry.Conn(name); ok {
			out.add(conn, protocol.RoundResult(outcome, choice, theirs, opponent))
		}
		if conn, ok := c.registry.Conn(opponent.Name); ok {
			out.add(conn, protocol.RoundResult(outcome.Mirror(), theirs, choice, model.HumanOpponent(name)))
		}
		switch outcome {
		case model.OutcomeWin:
			winner = name
		case model.OutcomeLose:
			winner = opponent.Name
		}
	}
	c.mu.Unlock()
	out.flush()

	if winner != "" {
		c.recordWin(ctx, winner)
	}
	return nil
}

// SetReady records a post-round continue vote. Both sides voting continue
// starts a new round of the same match; a false vote is an explicit leave
// and tears the match down immediately.
func (c *Coordinator) SetReady(ctx context.Context, name model.ParticipantName, wantsContinue bool) error {
	var out outbox
	c.mu.Lock()
	if !c.registry.IsOnline(name) {
		c.mu.Unlock()
		return model.ErrNotRegistered
	}
	opponent, matched := c.matches.OpponentOf(name)
	if !matched {
		c.mu.Unlock()
		return model.ErrNoMatch
	}

	if !wantsContinue {
		c.teardownLocked(name, &out)
		c.mu.Unlock()
		out.flush()
		return nil
	}

	if opponent.IsAutomated() {
		// The automated opponent is always ready.
		if conn, ok := c.registry.Conn(name); ok {
			out.add(conn, protocol.NewRound())
		}
	} else {
		c.ready.SetVote(name, true)
		if c.ready.Vote(opponent.Name) {
			c.ready.SetVote(name, false)
			c.ready.SetVote(opponent.Name, false)
			if conn, ok := c.registry.Conn(name); ok {
				out.add(conn, protocol.NewRound())
			}
			if conn, ok := c.registry.Conn(opponent.Name); ok {
				out.add(conn, protocol.NewRound())
			}
		}
	}
	c.mu.Unlock()
	out.flush()
	return nil
}

// Leave runs teardown for an explicit leave. The participant stays
// registered and may queue or host again.
func (c *Coordinator) Leave(ctx context.Context, name model.ParticipantName) {
	var out outbox
	c.mu.Lock()
	c.teardownLocked(name, &out)
	c.mu.Unlock()
	out.flush()
}

// Disconnect runs teardown for a transport-level disconnect and
// additionally releases the display name. Safe to invoke more than once.
func (c *Coordinator) Disconnect(ctx context.Context, name model.ParticipantName) {
	var out outbox
	c.mu.Lock()
	wasOnline := c.registry.IsOnline(name)
	c.teardownLocked(name, &out)
	c.registry.Unregister(name)
	c.mu.Unlock()
	out.flush()

	if wasOnline {
		c.logger.Info("participant disconnected", slog.String("name", string(name)))
		c.broadcastRoster(ctx)
	}
}

// teardownLocked removes every trace of a participant's current activity:
// opponent notified, match unpaired, queue entry and hosted lobbies gone.
// Every sub-step is a no-op when there is nothing to remove, so the whole
// procedure is idempotent. Caller holds the lock.
func (c *Coordinator) teardownLocked(name model.ParticipantName, out *outbox) {
	if opponent, matched := c.matches.OpponentOf(name); matched {
		if !opponent.IsAutomated() {
			if conn, ok := c.registry.Conn(opponent.Name); ok {
				out.add(conn, protocol.OpponentLeft())
			}
			c.registry.ClearChoices(opponent.Name)
			c.ready.Clear(opponent.Name)
		}
		c.matches.Unpair(name)
	}
	c.registry.ClearChoices(name)
	c.ready.Clear(name)
	c.queue.Remove(name)
	c.lobbies.RemoveHostedBy(name)
}

// OnlineCount returns the number of registered participants.
func (c *Coordinator) OnlineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Count()
}

// recordWin credits a round win to the scoreboard. The round result has
// already been delivered; a scoreboard failure is logged and retried in the
// background and never rolls gameplay back.
func (c *Coordinator) recordWin(ctx context.Context, name model.ParticipantName) {
	if err := c.scoreboard.RecordWin(ctx, name); err != nil {
		c.logger.Warn("win record failed, retrying in background",
			slog.String("name", string(name)),
			slog.String("error", err.Error()))
		go c.retryRecordWin(name)
		return
	}
	c.broadcastRankings(context.WithoutCancel(ctx))
}

func (c *Coordinator) retryRecordWin(name model.ParticipantName) {
	for attempt := 1; attempt <= winRecordRetries; attempt++ {
		time.Sleep(winRecordRetryDelay)

		ctx, cancel := context.WithTimeout(context.Background(), winRecordTimeout)
		err := c.scoreboard.RecordWin(ctx, name)
		cancel()
		if err == nil {
			c.broadcastRankings(context.Background())
			return
		}
		c.logger.Warn("win record retry failed",
			slog.String("name", string(name)),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
	}
	c.logger.Error("win record dropped after retries", slog.String("name", string(name)))
}

// broadcastRoster pushes the online count and current rankings to every
// registered participant. The registry is snapshotted under the lock; all
// sending and the scoreboard read happen outside it.
func (c *Coordinator) broadcastRoster(ctx context.Context) {
	c.mu.Lock()
	conns := c.registry.Conns()
	count := c.registry.Count()
	c.mu.Unlock()

	msg := protocol.OnlineCount(count)
	for _, conn := range conns {
		conn.Send(msg)
	}
	c.sendRankings(ctx, conns)
}

// broadcastRankings pushes current rankings to every registered participant.
func (c *Coordinator) broadcastRankings(ctx context.Context) {
	c.mu.Lock()
	conns := c.registry.Conns()
	c.mu.Unlock()
	c.sendRankings(ctx, conns)
}

func (c *Coordinator) sendRankings(ctx context.Context, conns []Conn) {
	if len(conns) == 0 {
		return
	}
	records, err := c.scoreboard.Rankings(ctx, 0)
	if err != nil {
		c.logger.Warn("ranking fetch failed", slog.String("error", err.Error()))
		return
	}
	msg := protocol.Rankings(records)
	for _, conn := range conns {
		conn.Send(msg)
	}
}
