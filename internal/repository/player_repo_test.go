package repository

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/session"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// exerciseStore runs the same checks against every session.Store.
func exerciseStore(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()
	id := uuid.NewString()

	p, err := store.LoadPlayer(ctx, id)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if p.Registered() || p.Stats != (domain.LifetimeStats{}) || p.Theme != domain.ThemeDark {
		t.Fatalf("absent player should read as zero, got %+v", p)
	}

	if err := store.SaveProfile(ctx, id, domain.Profile{Name: "Alice", Avatar: "🧑"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	stats := domain.LifetimeStats{Wins: 3, Losses: 2, Ties: 1, CurrentStreak: 2, LongestStreak: 3}
	if err := store.SaveStats(ctx, id, stats); err != nil {
		t.Fatalf("save stats: %v", err)
	}
	if err := store.SaveTheme(ctx, id, domain.ThemeLight); err != nil {
		t.Fatalf("save theme: %v", err)
	}

	p, err = store.LoadPlayer(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Profile.Name != "Alice" || p.Theme != domain.ThemeLight {
		t.Fatalf("unexpected player %+v", p)
	}
	// the current streak is not persisted
	want := domain.LifetimeStats{Wins: 3, Losses: 2, Ties: 1, LongestStreak: 3}
	if p.Stats != want {
		t.Fatalf("stats = %+v; want %+v", p.Stats, want)
	}

	if err := store.ClearProfile(ctx, id); err != nil {
		t.Fatalf("clear: %v", err)
	}
	p, _ = store.LoadPlayer(ctx, id)
	if p.Registered() || p.Stats.Wins != 3 {
		t.Fatalf("clear should drop name only, got %+v", p)
	}
}

func TestMemoryPlayerRepository(t *testing.T) {
	exerciseStore(t, NewMemoryPlayerRepository())
}

func TestFilePlayerRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "players.json")
	exerciseStore(t, NewFilePlayerRepository(path))

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not written: %v", err)
	}
}

func TestPlayerFromFieldsIgnoresGarbage(t *testing.T) {
	p := playerFromFields("x", map[string]string{fieldWins: "abc", fieldLosses: "-4", fieldTies: "2"})
	if p.Stats.Wins != 0 || p.Stats.Losses != 0 || p.Stats.Ties != 2 {
		t.Fatalf("unexpected stats %+v", p.Stats)
	}
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisPlayerRepositoryIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: db})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}

	exerciseStore(t, NewRedisPlayerRepository(rdb))
}
