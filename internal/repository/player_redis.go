package repository

import (
	"context"

	"rps_ultimate/internal/domain"

	redis "github.com/redis/go-redis/v9"
)

const playerKeyPrefix = "rps:player:"

// RedisPlayerRepository keeps each player in one hash.
type RedisPlayerRepository struct {
	rdb *redis.Client
}

func NewRedisPlayerRepository(rdb *redis.Client) *RedisPlayerRepository {
	return &RedisPlayerRepository{rdb: rdb}
}

func playerKey(id string) string {
	return playerKeyPrefix + id
}

func (r *RedisPlayerRepository) LoadPlayer(ctx context.Context, playerID string) (domain.Player, error) {
	fields, err := r.rdb.HGetAll(ctx, playerKey(playerID)).Result()
	if err != nil {
		return domain.Player{}, err
	}
	return playerFromFields(playerID, fields), nil
}

func (r *RedisPlayerRepository) SaveStats(ctx context.Context, playerID string, stats domain.LifetimeStats) error {
	values := make(map[string]interface{}, 4)
	for k, v := range statsFields(stats) {
		values[k] = v
	}
	return r.rdb.HSet(ctx, playerKey(playerID), values).Err()
}

func (r *RedisPlayerRepository) SaveProfile(ctx context.Context, playerID string, p domain.Profile) error {
	return r.rdb.HSet(ctx, playerKey(playerID), fieldUsername, p.Name, fieldAvatar, p.Avatar).Err()
}

func (r *RedisPlayerRepository) ClearProfile(ctx context.Context, playerID string) error {
	return r.rdb.HDel(ctx, playerKey(playerID), fieldUsername, fieldAvatar).Err()
}

func (r *RedisPlayerRepository) SaveTheme(ctx context.Context, playerID string, theme domain.Theme) error {
	return r.rdb.HSet(ctx, playerKey(playerID), fieldTheme, string(theme)).Err()
}
