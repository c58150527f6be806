package service

import (
	"context"
	"errors"
	"fmt"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/session"

	"github.com/google/uuid"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerService owns profiles and preferences. Stats are written by the
// session tracker after every round.
type PlayerService struct {
	store session.Store
}

func NewPlayerService(store session.Store) *PlayerService {
	return &PlayerService{store: store}
}

// Register creates a player with a fresh id and returns its token.
func (s *PlayerService) Register(ctx context.Context, name, avatar string) (domain.Player, string, error) {
	profile, err := domain.NewProfile(name, avatar)
	if err != nil {
		return domain.Player{}, "", err
	}

	id := uuid.NewString()
	if err := s.store.SaveProfile(ctx, id, profile); err != nil {
		return domain.Player{}, "", fmt.Errorf("save profile: %w", err)
	}

	token, err := GenerateJWT(id)
	if err != nil {
		return domain.Player{}, "", fmt.Errorf("sign token: %w", err)
	}

	p, err := s.store.LoadPlayer(ctx, id)
	if err != nil {
		return domain.Player{}, "", err
	}
	return p, token, nil
}

// Get returns a player that exists, registered or not. An id with no
// stored fields at all is unknown.
func (s *PlayerService) Get(ctx context.Context, id string) (domain.Player, error) {
	p, err := s.store.LoadPlayer(ctx, id)
	if err != nil {
		return domain.Player{}, err
	}
	if !p.Registered() && p.Stats.Total() == 0 {
		return domain.Player{}, ErrPlayerNotFound
	}
	return p, nil
}

// UpdateProfile sets a new name and avatar for an existing id.
func (s *PlayerService) UpdateProfile(ctx context.Context, id, name, avatar string) (domain.Player, error) {
	profile, err := domain.NewProfile(name, avatar)
	if err != nil {
		return domain.Player{}, err
	}
	if err := s.store.SaveProfile(ctx, id, profile); err != nil {
		return domain.Player{}, fmt.Errorf("save profile: %w", err)
	}
	return s.store.LoadPlayer(ctx, id)
}

// ClearProfile forgets name and avatar. Lifetime stats are kept.
func (s *PlayerService) ClearProfile(ctx context.Context, id string) error {
	return s.store.ClearProfile(ctx, id)
}

func (s *PlayerService) SetTheme(ctx context.Context, id, theme string) (domain.Theme, error) {
	t := domain.ParseTheme(theme)
	if err := s.store.SaveTheme(ctx, id, t); err != nil {
		return "", fmt.Errorf("save theme: %w", err)
	}
	return t, nil
}
