package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidMove = errors.New("invalid move")

// Move - ход игрока
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// Moves lists every valid move in fixed priority order.
var Moves = [3]Move{MoveRock, MovePaper, MoveScissors}

func ParseMove(s string) (Move, error) {
	m := Move(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	return m, nil
}

func (m Move) Valid() bool {
	switch m {
	case MoveRock, MovePaper, MoveScissors:
		return true
	}
	return false
}

// Glyph returns the hand emoji shown for the move.
func (m Move) Glyph() string {
	switch m {
	case MoveRock:
		return "✊"
	case MovePaper:
		return "🖐️"
	case MoveScissors:
		return "✌️"
	}
	return "❓"
}

// Outcome - результат раунда с точки зрения первого игрока
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeTie  Outcome = "tie"
)

// Invert returns the same outcome seen from the other side.
func (o Outcome) Invert() Outcome {
	switch o {
	case OutcomeWin:
		return OutcomeLose
	case OutcomeLose:
		return OutcomeWin
	}
	return o
}

// GameMode - режим игры
type GameMode string

const (
	GameModeAI   GameMode = "ai"
	GameModePeer GameMode = "peer"
)

// RoundSummary is one entry of the on-screen round log.
type RoundSummary struct {
	Outcome Outcome `json:"outcome"`
	P1Move  Move    `json:"p1_move"`
	P2Move  Move    `json:"p2_move"`
}

// RoundRecord - запись архива раундов
type RoundRecord struct {
	ID           int64     `db:"id" json:"id"`
	PlayerID     string    `db:"player_id" json:"player_id"`
	Mode         GameMode  `db:"mode" json:"mode"`
	RoomCode     *string   `db:"room_code" json:"room_code,omitempty"`
	Outcome      Outcome   `db:"outcome" json:"outcome"`
	PlayerMove   Move      `db:"player_move" json:"player_move"`
	OpponentMove Move      `db:"opponent_move" json:"opponent_move"`
	SeriesLength int       `db:"series_length" json:"series_length"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
