package main

import (
	"fmt"
	"strings"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/round"
	"rps_ultimate/internal/session"
)

// render prints one event and reports whether the session is over.
func render(e round.Event) bool {
	switch e := e.(type) {
	case round.Countdown:
		fmt.Printf("%d... ", e.Remaining)
		if e.Remaining == 1 {
			fmt.Println()
		}
	case round.RoundResolved:
		s := e.Summary
		fmt.Printf("%s %s vs %s %s -> %s\n", s.P1Move.Glyph(), s.P1Move, s.P2Move, s.P2Move.Glyph(), headline(s.Outcome))
		printMatch(e.Match)
	case round.SeriesWon:
		fmt.Println(e.Message)
		fmt.Println("type /again for a new series")
	case round.Ready:
		fmt.Println("Make your move!")
	case round.MatchReset:
		fmt.Printf("New board: %s\n", e.Series.Label())
	case round.OpponentInfo:
		fmt.Printf("Opponent: %s %s\n", e.Profile.Avatar, e.Profile.Name)
	case round.PeerJoined:
		fmt.Println("A player joined the room")
	case round.ChatReceived:
		fmt.Printf("[%s] %s: %s\n", e.Message.SentAt.Format("15:04"), e.Message.Sender, e.Message.Text)
	case round.RestartRequested:
		fmt.Println("Opponent wants a rematch")
	case round.OpponentLeft:
		fmt.Println("Opponent left the game")
	case round.ConnectionClosed:
		fmt.Println("Connection lost:", e.Err)
	case round.Exited:
		fmt.Println("Bye!")
		return true
	}
	return false
}

func headline(o domain.Outcome) string {
	switch o {
	case domain.OutcomeWin:
		return "You win!"
	case domain.OutcomeLose:
		return "You lose!"
	}
	return "It's a tie!"
}

func printMatch(m session.MatchState) {
	fmt.Printf("Score %d - %d (ties %d) | series %d - %d\n", m.P1Score, m.P2Score, m.Ties, m.P1SeriesScore, m.P2SeriesScore)
}

func printStats(s round.Snapshot) {
	fmt.Printf("%s | %s vs %s | %s\n", s.SeriesLabel, s.Local.Name, s.Opponent.Name, s.State)
	printMatch(s.Match)
	st := s.Stats
	fmt.Printf("Lifetime %d-%d-%d, streak %d (best %d), win rate %.1f%%, opponent %.1f%%, rounds this session %d\n",
		st.Wins, st.Losses, st.Ties, st.CurrentStreak, st.LongestStreak, st.WinRate(), st.OpponentWinRate(), s.RoundsPlayed)

	var b strings.Builder
	for _, h := range s.History {
		fmt.Fprintf(&b, "  %s%s %s\n", h.P1Move.Glyph(), h.P2Move.Glyph(), h.Outcome)
	}
	fmt.Print(b.String())
}
