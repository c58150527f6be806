package session

import (
	"context"
	"errors"
	"testing"

	"rps_ultimate/internal/domain"
)

type recordingSaver struct {
	saved []domain.LifetimeStats
	err   error
}

func (r *recordingSaver) SaveStats(_ context.Context, _ string, stats domain.LifetimeStats) error {
	r.saved = append(r.saved, stats)
	return r.err
}

func TestStreakAccumulatesAndResetsOnLoss(t *testing.T) {
	tr := NewTracker("p1", domain.LifetimeStats{}, nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		tr.RecordRound(ctx, domain.OutcomeWin)
	}
	s := tr.Stats()
	if s.CurrentStreak != 4 || s.LongestStreak != 4 {
		t.Fatalf("after 4 wins got streak=%d longest=%d", s.CurrentStreak, s.LongestStreak)
	}

	tr.RecordRound(ctx, domain.OutcomeTie)
	if got := tr.Stats().CurrentStreak; got != 4 {
		t.Fatalf("tie changed streak to %d", got)
	}

	tr.RecordRound(ctx, domain.OutcomeLose)
	s = tr.Stats()
	if s.CurrentStreak != 0 || s.LongestStreak != 4 {
		t.Fatalf("after loss got streak=%d longest=%d", s.CurrentStreak, s.LongestStreak)
	}
	if s.Wins != 4 || s.Losses != 1 || s.Ties != 1 {
		t.Fatalf("unexpected totals %+v", s)
	}
}

func TestRecordRoundScoresAndWinner(t *testing.T) {
	tr := NewTracker("p1", domain.LifetimeStats{}, nil)
	ctx := context.Background()

	cases := []struct {
		outcome domain.Outcome
		want    Side
	}{
		{domain.OutcomeWin, SidePlayer},
		{domain.OutcomeLose, SideOpponent},
		{domain.OutcomeTie, SideNone},
		{domain.OutcomeLose, SideOpponent},
	}
	for _, tc := range cases {
		if got := tr.RecordRound(ctx, tc.outcome); got != tc.want {
			t.Fatalf("RecordRound(%s) = %s; want %s", tc.outcome, got, tc.want)
		}
	}

	want := MatchState{P1Score: 1, P2Score: 2, Ties: 1, P1SeriesScore: 1, P2SeriesScore: 2}
	if got := tr.Match(); got != want {
		t.Fatalf("Match() = %+v; want %+v", got, want)
	}
	if tr.RoundsPlayed() != 4 {
		t.Fatalf("RoundsPlayed() = %d", tr.RoundsPlayed())
	}
}

func TestRecordRoundPersistsEveryRound(t *testing.T) {
	saver := &recordingSaver{err: errors.New("store down")}
	tr := NewTracker("p1", domain.LifetimeStats{Wins: 10, LongestStreak: 3}, saver)

	tr.RecordRound(context.Background(), domain.OutcomeWin)
	tr.RecordRound(context.Background(), domain.OutcomeTie)

	if len(saver.saved) != 2 {
		t.Fatalf("expected 2 saves, got %d", len(saver.saved))
	}
	if saver.saved[1].Wins != 11 || saver.saved[1].Ties != 1 {
		t.Fatalf("unexpected persisted stats %+v", saver.saved[1])
	}
	// a failing store never rolls back in-memory stats
	if tr.Stats().Wins != 11 {
		t.Fatalf("in-memory wins = %d", tr.Stats().Wins)
	}
}

func TestMoveHistoryEvictsOldestFirst(t *testing.T) {
	tr := NewTracker("p1", domain.LifetimeStats{}, nil)
	for i := 0; i < 25; i++ {
		tr.AppendPlayerMove(domain.Moves[i%3])
	}

	got := tr.PlayerMoves()
	if len(got) != MoveHistoryLimit {
		t.Fatalf("len = %d; want %d", len(got), MoveHistoryLimit)
	}
	for i, m := range got {
		if want := domain.Moves[(i+5)%3]; m != want {
			t.Fatalf("moves[%d] = %s; want %s", i, m, want)
		}
	}
}

func TestHistoryIsMostRecentFirstAndBounded(t *testing.T) {
	tr := NewTracker("p1", domain.LifetimeStats{}, nil)
	for i := 0; i < 12; i++ {
		tr.AppendHistory(domain.RoundSummary{Outcome: domain.OutcomeTie, P1Move: domain.Moves[i%3], P2Move: domain.Moves[i%3]})
	}

	h := tr.History()
	if len(h) != RoundLogLimit {
		t.Fatalf("len = %d; want %d", len(h), RoundLogLimit)
	}
	if h[0].P1Move != domain.Moves[11%3] {
		t.Fatalf("newest entry = %+v", h[0])
	}
	if h[9].P1Move != domain.Moves[2%3] {
		t.Fatalf("oldest kept entry = %+v", h[9])
	}
}

func TestResetMatchKeepsSeries(t *testing.T) {
	tr := NewTracker("p1", domain.LifetimeStats{}, nil)
	ctx := context.Background()
	tr.RecordRound(ctx, domain.OutcomeWin)
	tr.RecordRound(ctx, domain.OutcomeTie)
	tr.AppendHistory(domain.RoundSummary{Outcome: domain.OutcomeWin})

	tr.ResetMatch()
	want := MatchState{P1SeriesScore: 1}
	if got := tr.Match(); got != want {
		t.Fatalf("after ResetMatch got %+v", got)
	}
	if len(tr.History()) != 0 {
		t.Fatalf("history not cleared")
	}

	tr.ResetSeries()
	if got := tr.Match(); got != (MatchState{}) {
		t.Fatalf("after ResetSeries got %+v", got)
	}
	if tr.Stats().Wins != 1 {
		t.Fatalf("lifetime stats touched by reset")
	}
}
