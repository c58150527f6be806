package session

import (
	"context"
	"time"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/logger"
)

const (
	MoveHistoryLimit = 20
	RoundLogLimit    = 10

	saveTimeout = 3 * time.Second
)

// StatsSaver persists lifetime stats after every round.
type StatsSaver interface {
	SaveStats(ctx context.Context, playerID string, stats domain.LifetimeStats) error
}

// Side identifies a player within a match.
type Side int

const (
	SideNone Side = iota
	SidePlayer
	SideOpponent
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideOpponent:
		return "opponent"
	}
	return "none"
}

// MatchState holds the scores shown on the board.
type MatchState struct {
	P1Score       int `json:"p1_score"`
	P2Score       int `json:"p2_score"`
	Ties          int `json:"ties"`
	P1SeriesScore int `json:"p1_series_score"`
	P2SeriesScore int `json:"p2_series_score"`
}

// Tracker owns the scores, lifetime stats and histories of one local
// player. It is not safe for concurrent use; the round coordinator
// serialises access.
type Tracker struct {
	playerID string
	saver    StatsSaver

	match        MatchState
	stats        domain.LifetimeStats
	moves        []domain.Move
	log          []domain.RoundSummary
	roundsPlayed int
}

func NewTracker(playerID string, stats domain.LifetimeStats, saver StatsSaver) *Tracker {
	return &Tracker{
		playerID: playerID,
		saver:    saver,
		stats:    stats,
		moves:    make([]domain.Move, 0, MoveHistoryLimit),
		log:      make([]domain.RoundSummary, 0, RoundLogLimit),
	}
}

// RecordRound applies a round outcome seen from the local player and
// persists the lifetime stats. It returns the side that took the round.
func (t *Tracker) RecordRound(ctx context.Context, outcome domain.Outcome) Side {
	winner := SideNone

	switch outcome {
	case domain.OutcomeWin:
		winner = SidePlayer
		t.match.P1Score++
		t.match.P1SeriesScore++
		t.stats.Wins++
		t.stats.CurrentStreak++
		if t.stats.CurrentStreak > t.stats.LongestStreak {
			t.stats.LongestStreak = t.stats.CurrentStreak
		}
	case domain.OutcomeLose:
		winner = SideOpponent
		t.match.P2Score++
		t.match.P2SeriesScore++
		t.stats.Losses++
		t.stats.CurrentStreak = 0
	default:
		t.match.Ties++
		t.stats.Ties++
	}
	t.roundsPlayed++

	t.persist(ctx)
	return winner
}

func (t *Tracker) persist(ctx context.Context) {
	if t.saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	if err := t.saver.SaveStats(ctx, t.playerID, t.stats); err != nil {
		logger.Warn("failed to persist stats", "player", t.playerID, "error", err)
	}
}

// AppendHistory puts entry at the front of the round log.
func (t *Tracker) AppendHistory(entry domain.RoundSummary) {
	t.log = append(t.log, domain.RoundSummary{})
	copy(t.log[1:], t.log)
	t.log[0] = entry
	if len(t.log) > RoundLogLimit {
		t.log = t.log[:RoundLogLimit]
	}
}

// AppendPlayerMove records a move for the opponent's analysis, oldest out first.
func (t *Tracker) AppendPlayerMove(m domain.Move) {
	t.moves = append(t.moves, m)
	if len(t.moves) > MoveHistoryLimit {
		t.moves = append(t.moves[:0], t.moves[len(t.moves)-MoveHistoryLimit:]...)
	}
}

// ClearPlayerMoves forgets the analysed moves, used when the player renames.
func (t *Tracker) ClearPlayerMoves() {
	t.moves = t.moves[:0]
}

func (t *Tracker) ResetMatch() {
	t.match.P1Score = 0
	t.match.P2Score = 0
	t.match.Ties = 0
	t.log = t.log[:0]
}

func (t *Tracker) ResetSeries() {
	t.ResetMatch()
	t.match.P1SeriesScore = 0
	t.match.P2SeriesScore = 0
}

func (t *Tracker) PlayerID() string { return t.playerID }

func (t *Tracker) Match() MatchState { return t.match }

func (t *Tracker) Stats() domain.LifetimeStats { return t.stats }

func (t *Tracker) RoundsPlayed() int { return t.roundsPlayed }

func (t *Tracker) PlayerMoves() []domain.Move {
	out := make([]domain.Move, len(t.moves))
	copy(out, t.moves)
	return out
}

func (t *Tracker) History() []domain.RoundSummary {
	out := make([]domain.RoundSummary, len(t.log))
	copy(out, t.log)
	return out
}

// Store persists the local player's settings and lifetime stats as
// string-encoded key/value pairs. Absent keys read as zero values.
type Store interface {
	StatsSaver
	LoadPlayer(ctx context.Context, playerID string) (domain.Player, error)
	SaveProfile(ctx context.Context, playerID string, p domain.Profile) error
	ClearProfile(ctx context.Context, playerID string) error
	SaveTheme(ctx context.Context, playerID string, theme domain.Theme) error
}
