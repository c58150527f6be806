package round

import (
	"time"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/session"
)

// Event is a notification for the view layer. The concrete types below
// are the only implementations.
type Event interface {
	event()
}

// Countdown is emitted once per step before the moves are revealed.
type Countdown struct {
	Remaining int
}

// RoundResolved carries both moves, the outcome and the updated scores.
type RoundResolved struct {
	Summary domain.RoundSummary
	Winner  session.Side
	Match   session.MatchState
	Stats   domain.LifetimeStats
}

// SeriesWon freezes the series score at the moment a side reached the threshold.
type SeriesWon struct {
	Winner  session.Side
	Name    string
	Series  domain.SeriesConfig
	Match   session.MatchState
	Message string
}

// Ready means a new move will be accepted.
type Ready struct{}

// MatchReset follows a board reset or a new series.
type MatchReset struct {
	Series domain.SeriesConfig
	Match  session.MatchState
}

type OpponentInfo struct {
	Profile domain.Profile
}

type PeerJoined struct{}

type ChatReceived struct {
	Message ChatMessage
}

type RestartRequested struct{}

type OpponentLeft struct{}

// ConnectionClosed reports a transport failure or an unexpected close.
type ConnectionClosed struct {
	Err error
}

// Exited means the session returned to mode selection.
type Exited struct{}

// ChatMessage is one line of the in-game chat.
type ChatMessage struct {
	ID     string    `json:"id"`
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
	Mine   bool      `json:"mine"`
}

func (Countdown) event()        {}
func (RoundResolved) event()    {}
func (SeriesWon) event()        {}
func (Ready) event()            {}
func (MatchReset) event()       {}
func (OpponentInfo) event()     {}
func (PeerJoined) event()       {}
func (ChatReceived) event()     {}
func (RestartRequested) event() {}
func (OpponentLeft) event()     {}
func (ConnectionClosed) event() {}
func (Exited) event()           {}
