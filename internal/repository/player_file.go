package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"rps_ultimate/internal/domain"
)

// FilePlayerRepository stores players of a local client in one JSON file.
type FilePlayerRepository struct {
	mu   sync.Mutex
	path string
}

func NewFilePlayerRepository(path string) *FilePlayerRepository {
	return &FilePlayerRepository{path: path}
}

func (r *FilePlayerRepository) read() (map[string]map[string]string, error) {
	all := make(map[string]map[string]string)
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (r *FilePlayerRepository) write(all map[string]map[string]string) error {
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func (r *FilePlayerRepository) update(playerID string, fn func(f map[string]string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.read()
	if err != nil {
		return err
	}
	f, ok := all[playerID]
	if !ok {
		f = make(map[string]string)
		all[playerID] = f
	}
	fn(f)
	return r.write(all)
}

func (r *FilePlayerRepository) LoadPlayer(_ context.Context, playerID string) (domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.read()
	if err != nil {
		return domain.Player{}, err
	}
	return playerFromFields(playerID, all[playerID]), nil
}

func (r *FilePlayerRepository) SaveStats(_ context.Context, playerID string, stats domain.LifetimeStats) error {
	return r.update(playerID, func(f map[string]string) {
		for k, v := range statsFields(stats) {
			f[k] = v
		}
	})
}

func (r *FilePlayerRepository) SaveProfile(_ context.Context, playerID string, p domain.Profile) error {
	return r.update(playerID, func(f map[string]string) {
		f[fieldUsername] = p.Name
		f[fieldAvatar] = p.Avatar
	})
}

func (r *FilePlayerRepository) ClearProfile(_ context.Context, playerID string) error {
	return r.update(playerID, func(f map[string]string) {
		delete(f, fieldUsername)
		delete(f, fieldAvatar)
	})
}

func (r *FilePlayerRepository) SaveTheme(_ context.Context, playerID string, theme domain.Theme) error {
	return r.update(playerID, func(f map[string]string) {
		f[fieldTheme] = string(theme)
	})
}
