package repository

import (
	"strconv"

	"rps_ultimate/internal/domain"
)

// Field names of the persisted player state.
const (
	fieldUsername      = "username"
	fieldAvatar        = "avatar"
	fieldTheme         = "mode"
	fieldWins          = "wins"
	fieldLosses        = "losses"
	fieldTies          = "ties"
	fieldLongestStreak = "longestStreak"
)

func statsFields(s domain.LifetimeStats) map[string]string {
	return map[string]string{
		fieldWins:          strconv.Itoa(s.Wins),
		fieldLosses:        strconv.Itoa(s.Losses),
		fieldTies:          strconv.Itoa(s.Ties),
		fieldLongestStreak: strconv.Itoa(s.LongestStreak),
	}
}

// playerFromFields decodes stored values; bad or missing numbers read as 0.
func playerFromFields(id string, f map[string]string) domain.Player {
	atoi := func(key string) int {
		n, err := strconv.Atoi(f[key])
		if err != nil || n < 0 {
			return 0
		}
		return n
	}

	return domain.Player{
		ID: id,
		Profile: domain.Profile{
			Name:   f[fieldUsername],
			Avatar: f[fieldAvatar],
		},
		Theme: domain.ParseTheme(f[fieldTheme]),
		Stats: domain.LifetimeStats{
			Wins:          atoi(fieldWins),
			Losses:        atoi(fieldLosses),
			Ties:          atoi(fieldTies),
			LongestStreak: atoi(fieldLongestStreak),
		},
	}
}
