package round

import (
	"context"
	"errors"
	"sync"
	"time"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/game"
	"rps_ultimate/internal/logger"
	"rps_ultimate/internal/peer"
	"rps_ultimate/internal/session"
)

const (
	CountdownSteps = 3
	ChatLogLimit   = 50

	defaultEventBuffer = 256
	archiveTimeout     = 5 * time.Second
)

var ErrNotPeerMode = errors.New("not in peer mode")

// Config holds the series choice and the cosmetic delays of a session.
// Zero delays make every transition synchronous.
type Config struct {
	Series        domain.SeriesConfig
	CountdownStep time.Duration
	RevealDelay   time.Duration
	LeaveDelay    time.Duration
	EventBuffer   int
}

// Peer is the outbound half of a peer transport.
type Peer interface {
	SendMove(m domain.Move) error
	SendChat(text string) (peer.Chat, error)
	SendInfo(p domain.Profile, series int) error
	SendRestart() error
	Close() error
}

// Recorder archives resolved rounds outside the session.
type Recorder interface {
	RecordRound(ctx context.Context, rec *domain.RoundRecord) error
}

// Snapshot is a read-only copy of the coordinator state.
type Snapshot struct {
	State        State                 `json:"state"`
	Mode         domain.GameMode       `json:"mode"`
	Series       domain.SeriesConfig   `json:"series"`
	SeriesLabel  string                `json:"series_label"`
	Match        session.MatchState    `json:"match"`
	Stats        domain.LifetimeStats  `json:"stats"`
	RoundsPlayed int                   `json:"rounds_played"`
	History      []domain.RoundSummary `json:"history"`
	LastRound    *domain.RoundSummary  `json:"last_round,omitempty"`
	SeriesWinner string                `json:"series_winner,omitempty"`
	Local        domain.Profile        `json:"local"`
	Opponent     domain.Profile        `json:"opponent"`
	RoomCode     string                `json:"room_code,omitempty"`
	Chat         []ChatMessage         `json:"chat,omitempty"`
}

// Coordinator runs the round state machine for one local player against
// either the AI or a remote peer. All state changes happen under mu, so
// callbacks from timers and the transport are serialised with user input.
type Coordinator struct {
	mu sync.Mutex

	mode     domain.GameMode
	cfg      Config
	state    State
	tracker  *session.Tracker
	local    domain.Profile
	opponent domain.Profile

	ai       *game.Opponent
	peer     Peer
	host     bool
	paired   bool
	leaving  bool
	roomCode string

	round         *game.Round
	countdownDone bool
	last          *domain.RoundSummary
	seriesWinner  session.Side
	chat          []ChatMessage

	recorder Recorder
	events   chan Event
	timer    *time.Timer
	epoch    uint64

	ctx    context.Context
	cancel context.CancelFunc
}

func newCoordinator(mode domain.GameMode, tracker *session.Tracker, local domain.Profile, cfg Config) *Coordinator {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		mode:    mode,
		cfg:     cfg,
		state:   StateIdle,
		tracker: tracker,
		local:   local,
		round:   game.NewRound(),
		events:  make(chan Event, cfg.EventBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// NewAI starts a single-player session against the adaptive opponent.
func NewAI(tracker *session.Tracker, local domain.Profile, ai *game.Opponent, cfg Config) *Coordinator {
	c := newCoordinator(domain.GameModeAI, tracker, local, cfg)
	c.ai = ai
	c.opponent = domain.AIProfile
	c.paired = true
	tracker.ResetSeries()
	return c
}

// NewPeer prepares a multiplayer session. Moves are refused until the
// peer is attached and the other side has announced itself.
func NewPeer(tracker *session.Tracker, local domain.Profile, roomCode string, host bool, cfg Config) *Coordinator {
	c := newCoordinator(domain.GameModePeer, tracker, local, cfg)
	c.roomCode = roomCode
	c.host = host
	c.opponent = domain.Profile{Name: "Opponent", Avatar: "👤"}
	tracker.ResetSeries()
	return c
}

// AttachPeer wires the outbound transport. The joining side introduces
// itself right away; the host waits for the peer to join.
func (c *Coordinator) AttachPeer(p Peer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.peer = p
	if !c.host {
		c.sendInfoLocked()
	}
}

func (c *Coordinator) SetRecorder(r Recorder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recorder = r
}

// Events delivers view notifications in the order they happened.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SubmitMove locks in the local move. It returns false, changing nothing,
// when a round is already in flight or the session cannot take moves.
func (c *Coordinator) SubmitMove(m domain.Move) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reason := c.rejectReasonLocked(m); reason != "" {
		MovesRejected.WithLabelValues(string(c.mode), reason).Inc()
		return false
	}
	if err := c.round.SetLocal(m); err != nil {
		return false
	}
	c.state = StateAwaitingOpponent

	if c.mode == domain.GameModePeer && c.peer != nil {
		if err := c.peer.SendMove(m); err != nil {
			logger.Warn("failed to send move", "room", c.roomCode, "error", err)
			c.connectionLostLocked(err)
			return true
		}
	}

	c.startCountdownLocked()
	c.tryResolveLocked()
	return true
}

func (c *Coordinator) rejectReasonLocked(m domain.Move) string {
	switch {
	case !m.Valid():
		return RejectInvalid
	case c.state == StateClosed:
		return RejectClosed
	case !c.paired:
		return RejectUnpaired
	case c.state != StateIdle:
		return RejectInFlight
	}
	return ""
}

func (c *Coordinator) startCountdownLocked() {
	if c.cfg.CountdownStep <= 0 {
		c.countdownDone = true
		return
	}
	c.countdownDone = false
	c.countdownStepLocked(CountdownSteps)
}

func (c *Coordinator) countdownStepLocked(remaining int) {
	if remaining == 0 {
		c.countdownDone = true
		c.tryResolveLocked()
		return
	}
	c.emit(Countdown{Remaining: remaining})
	c.after(c.cfg.CountdownStep, func() {
		c.countdownStepLocked(remaining - 1)
	})
}

func (c *Coordinator) tryResolveLocked() {
	if c.state != StateAwaitingOpponent || !c.countdownDone {
		return
	}
	if c.mode == domain.GameModeAI && !c.round.HasRemote() {
		// the AI only sees moves from earlier rounds
		_ = c.round.SetRemote(c.ai.NextMove(c.tracker.PlayerMoves()))
	}
	if !c.round.IsComplete() {
		return
	}
	c.resolveLocked()
}

func (c *Coordinator) resolveLocked() {
	c.state = StateResolving

	summary, _ := c.round.Result()
	c.round = game.NewRound()

	winner := c.tracker.RecordRound(c.ctx, summary.Outcome)
	c.tracker.AppendPlayerMove(summary.P1Move)
	c.tracker.AppendHistory(summary)
	c.last = &summary

	RoundsResolved.WithLabelValues(string(c.mode), string(summary.Outcome)).Inc()
	c.archiveLocked(summary)

	c.emit(RoundResolved{
		Summary: summary,
		Winner:  winner,
		Match:   c.tracker.Match(),
		Stats:   c.tracker.Stats(),
	})

	c.state = StateSeriesCheck
	if side := c.checkSeriesLocked(); side != session.SideNone {
		c.state = StateSeriesComplete
		c.seriesWinner = side
		SeriesCompleted.WithLabelValues(string(c.mode), side.String()).Inc()

		name := c.local.Name
		if side == session.SideOpponent {
			name = c.opponent.Name
		}
		c.emit(SeriesWon{
			Winner:  side,
			Name:    name,
			Series:  c.cfg.Series,
			Match:   c.tracker.Match(),
			Message: name + " wins the " + c.cfg.Series.Label() + " series! 🏆",
		})
		return
	}

	if c.cfg.RevealDelay <= 0 {
		c.becomeIdleLocked()
		return
	}
	c.after(c.cfg.RevealDelay, c.becomeIdleLocked)
}

// checkSeriesLocked looks at the local side first; both sides can never
// reach the threshold on the same round.
func (c *Coordinator) checkSeriesLocked() session.Side {
	if c.cfg.Series.Unlimited() {
		return session.SideNone
	}
	target := c.cfg.Series.Threshold()
	m := c.tracker.Match()
	if m.P1SeriesScore >= target {
		return session.SidePlayer
	}
	if m.P2SeriesScore >= target {
		return session.SideOpponent
	}
	return session.SideNone
}

func (c *Coordinator) becomeIdleLocked() {
	c.state = StateIdle
	c.emit(Ready{})
}

func (c *Coordinator) archiveLocked(summary domain.RoundSummary) {
	if c.recorder == nil {
		return
	}
	rec := &domain.RoundRecord{
		PlayerID:     c.tracker.PlayerID(),
		Mode:         c.mode,
		Outcome:      summary.Outcome,
		PlayerMove:   summary.P1Move,
		OpponentMove: summary.P2Move,
		SeriesLength: c.cfg.Series.TargetLength,
	}
	if c.roomCode != "" {
		code := c.roomCode
		rec.RoomCode = &code
	}

	recorder := c.recorder
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := recorder.RecordRound(ctx, rec); err != nil {
			logger.Warn("failed to archive round", "player", rec.PlayerID, "error", err)
		}
	}()
}

// ResetMatch zeroes the board scores and the round log. Series scores
// and any round in flight are left alone.
func (c *Coordinator) ResetMatch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	c.tracker.ResetMatch()
	c.emit(MatchReset{Series: c.cfg.Series, Match: c.tracker.Match()})
}

// NewSeries starts over with a fresh series. In peer mode the series
// length stays the one the host picked and the peer is asked to restart.
// A peer only honours restart requests after the series is over, so in peer
// mode the call is ignored before that. It reports whether it restarted.
func (c *Coordinator) NewSeries(series domain.SeriesConfig) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return false
	}
	if c.mode == domain.GameModePeer && c.state != StateSeriesComplete {
		logger.Debug("restart ignored before series end", "room", c.roomCode, "state", c.state)
		return false
	}
	if c.mode == domain.GameModeAI {
		c.cfg.Series = series
	}
	c.restartLocked()

	if c.mode == domain.GameModePeer && c.peer != nil {
		if err := c.peer.SendRestart(); err != nil {
			logger.Warn("failed to send restart request", "room", c.roomCode, "error", err)
		}
	}
	return true
}

func (c *Coordinator) restartLocked() {
	c.cancelTimerLocked()
	c.tracker.ResetSeries()
	c.round = game.NewRound()
	c.countdownDone = false
	c.last = nil
	c.seriesWinner = session.SideNone
	c.state = StateIdle

	c.emit(MatchReset{Series: c.cfg.Series, Match: c.tracker.Match()})
	c.emit(Ready{})
}

// SendChat sends a chat line to the peer and keeps it in the local log.
func (c *Coordinator) SendChat(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != domain.GameModePeer || c.peer == nil {
		return ErrNotPeerMode
	}
	msg, err := c.peer.SendChat(text)
	if err != nil {
		return err
	}
	c.appendChatLocked(ChatMessage{ID: msg.ID, Sender: c.local.Name, Text: msg.Text, SentAt: msg.SentAt, Mine: true})
	return nil
}

func (c *Coordinator) appendChatLocked(m ChatMessage) {
	c.chat = append(c.chat, m)
	if len(c.chat) > ChatLogLimit {
		c.chat = append(c.chat[:0], c.chat[len(c.chat)-ChatLogLimit:]...)
	}
}

// Exit returns to mode selection: timers are cancelled, the round in
// flight is dropped and the peer connection is released.
func (c *Coordinator) Exit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exitLocked()
}

func (c *Coordinator) exitLocked() {
	if c.state == StateClosed {
		return
	}
	c.cancelTimerLocked()
	c.state = StateClosed
	c.round = game.NewRound()

	if c.peer != nil {
		if err := c.peer.Close(); err != nil {
			logger.Debug("peer close", "room", c.roomCode, "error", err)
		}
	}
	c.emit(Exited{})
	c.cancel()
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:        c.state,
		Mode:         c.mode,
		Series:       c.cfg.Series,
		SeriesLabel:  c.cfg.Series.Label(),
		Match:        c.tracker.Match(),
		Stats:        c.tracker.Stats(),
		RoundsPlayed: c.tracker.RoundsPlayed(),
		History:      c.tracker.History(),
		Local:        c.local,
		Opponent:     c.opponent,
		RoomCode:     c.roomCode,
	}
	if c.last != nil {
		last := *c.last
		s.LastRound = &last
	}
	if c.seriesWinner != session.SideNone {
		s.SeriesWinner = c.seriesWinner.String()
	}
	if len(c.chat) > 0 {
		s.Chat = append([]ChatMessage(nil), c.chat...)
	}
	return s
}

// after runs fn under the lock once d has elapsed, unless the session
// moved on in the meantime. Only one timer is pending at a time.
func (c *Coordinator) after(d time.Duration, fn func()) {
	c.cancelTimerLocked()
	epoch := c.epoch
	c.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			return
		}
		c.timer = nil
		fn()
	})
}

func (c *Coordinator) cancelTimerLocked() {
	c.epoch++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// emit never blocks: a view that stops reading loses events rather than
// stalling the session.
func (c *Coordinator) emit(e Event) {
	select {
	case c.events <- e:
	default:
		logger.Warn("view event dropped", "mode", c.mode, "event", e)
	}
}
