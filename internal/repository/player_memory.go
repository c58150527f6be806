package repository

import (
	"context"
	"sync"

	"rps_ultimate/internal/domain"
)

// MemoryPlayerRepository is used when no Redis is configured.
type MemoryPlayerRepository struct {
	mu      sync.RWMutex
	players map[string]map[string]string
}

func NewMemoryPlayerRepository() *MemoryPlayerRepository {
	return &MemoryPlayerRepository{players: make(map[string]map[string]string)}
}

func (r *MemoryPlayerRepository) LoadPlayer(_ context.Context, playerID string) (domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return playerFromFields(playerID, r.players[playerID]), nil
}

func (r *MemoryPlayerRepository) set(playerID string, kv map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.players[playerID]
	if !ok {
		f = make(map[string]string)
		r.players[playerID] = f
	}
	for k, v := range kv {
		f[k] = v
	}
}

func (r *MemoryPlayerRepository) SaveStats(_ context.Context, playerID string, stats domain.LifetimeStats) error {
	r.set(playerID, statsFields(stats))
	return nil
}

func (r *MemoryPlayerRepository) SaveProfile(_ context.Context, playerID string, p domain.Profile) error {
	r.set(playerID, map[string]string{fieldUsername: p.Name, fieldAvatar: p.Avatar})
	return nil
}

func (r *MemoryPlayerRepository) ClearProfile(_ context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.players[playerID]; ok {
		delete(f, fieldUsername)
		delete(f, fieldAvatar)
	}
	return nil
}

func (r *MemoryPlayerRepository) SaveTheme(_ context.Context, playerID string, theme domain.Theme) error {
	r.set(playerID, map[string]string{fieldTheme: string(theme)})
	return nil
}
