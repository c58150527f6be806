package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrNameTooShort   = errors.New("name must be at least 2 characters")
	ErrNameTooLong    = errors.New("name must be 20 characters or less")
	ErrAvatarRequired = errors.New("you must select an avatar")
)

const (
	MinNameLength = 2
	MaxNameLength = 20

	DefaultAvatar = "🧑"
)

// Theme - сохранённая тема интерфейса
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func ParseTheme(s string) Theme {
	if Theme(s) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// Profile is what the other side sees of a player.
type Profile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// AIProfile is the constant identity of the computer opponent.
var AIProfile = Profile{Name: "Smarter AI", Avatar: "🤖"}

// NewProfile trims and validates a display name and avatar glyph.
func NewProfile(name, avatar string) (Profile, error) {
	name = strings.TrimSpace(name)
	avatar = strings.TrimSpace(avatar)

	n := utf8.RuneCountInString(name)
	if n < MinNameLength {
		return Profile{}, ErrNameTooShort
	}
	if n > MaxNameLength {
		return Profile{}, ErrNameTooLong
	}
	if avatar == "" {
		return Profile{}, ErrAvatarRequired
	}
	return Profile{Name: name, Avatar: avatar}, nil
}

// LifetimeStats accumulate across sessions for the local player.
// CurrentStreak lives only as long as the process; the rest is persisted.
type LifetimeStats struct {
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	Ties          int `json:"ties"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

func (s LifetimeStats) Total() int {
	return s.Wins + s.Losses + s.Ties
}

// WinRate is the percentage of rounds won, 0 when nothing was played.
func (s LifetimeStats) WinRate() float64 {
	return percent(s.Wins, s.Total())
}

// OpponentWinRate is the percentage of rounds the opponent took.
func (s LifetimeStats) OpponentWinRate() float64 {
	return percent(s.Losses, s.Total())
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Player - локальный игрок с сохранёнными настройками
type Player struct {
	ID      string        `json:"id"`
	Profile Profile       `json:"profile"`
	Theme   Theme         `json:"theme"`
	Stats   LifetimeStats `json:"stats"`
}

// Registered reports whether the player has picked a name and avatar.
func (p Player) Registered() bool {
	return p.Profile.Name != "" && p.Profile.Avatar != ""
}
