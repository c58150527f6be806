package repository

import (
	"context"
	"time"

	"rps_ultimate/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoundRepository struct {
	db *pgxpool.Pool
}

func NewRoundRepository(db *pgxpool.Pool) *RoundRepository {
	return &RoundRepository{db: db}
}

// RecordRound сохраняет сыгранный раунд в архив
func (r *RoundRepository) RecordRound(ctx context.Context, rec *domain.RoundRecord) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO rounds
			(player_id, mode, room_code, outcome, player_move, opponent_move, series_length)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		rec.PlayerID,
		rec.Mode,
		rec.RoomCode,
		rec.Outcome,
		rec.PlayerMove,
		rec.OpponentMove,
		rec.SeriesLength,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// GetByPlayer returns the newest rounds of a player first.
func (r *RoundRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*domain.RoundRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, player_id, mode, room_code, outcome, player_move, opponent_move,
				series_length, created_at
		 FROM rounds
		 WHERE player_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRounds(rows)
}

// RoundStats - агрегированная статистика игрока за период
type RoundStats struct {
	PlayerID  string                  `json:"player_id"`
	Total     int                     `json:"total"`
	Wins      int                     `json:"wins"`
	Losses    int                     `json:"losses"`
	Ties      int                     `json:"ties"`
	Favourite domain.Move             `json:"favourite_move,omitempty"`
	ByMode    map[domain.GameMode]int `json:"by_mode"`
}

func (r *RoundRepository) GetPlayerStats(ctx context.Context, playerID string, since time.Time) (*RoundStats, error) {
	stats := &RoundStats{PlayerID: playerID, ByMode: make(map[domain.GameMode]int)}

	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE outcome = 'win'),
			COUNT(*) FILTER (WHERE outcome = 'lose'),
			COUNT(*) FILTER (WHERE outcome = 'tie'),
			COALESCE(MODE() WITHIN GROUP (ORDER BY player_move), '')
		 FROM rounds
		 WHERE player_id = $1 AND created_at >= $2`,
		playerID, since,
	).Scan(&stats.Total, &stats.Wins, &stats.Losses, &stats.Ties, &stats.Favourite)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT mode, COUNT(*) FROM rounds
		 WHERE player_id = $1 AND created_at >= $2
		 GROUP BY mode`,
		playerID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			mode domain.GameMode
			n    int
		)
		if err := rows.Scan(&mode, &n); err != nil {
			return nil, err
		}
		stats.ByMode[mode] = n
	}
	return stats, rows.Err()
}

func scanRounds(rows pgx.Rows) ([]*domain.RoundRecord, error) {
	var result []*domain.RoundRecord

	for rows.Next() {
		var rec domain.RoundRecord
		if err := rows.Scan(
			&rec.ID, &rec.PlayerID, &rec.Mode, &rec.RoomCode, &rec.Outcome,
			&rec.PlayerMove, &rec.OpponentMove, &rec.SeriesLength, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &rec)
	}

	return result, rows.Err()
}
